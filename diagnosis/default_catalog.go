package diagnosis

import "github.com/giygas/telehealth-api/entities"

var (
	cetirizine  = entities.MedicineRecord{ID: 1, Name: "Cetirizine", Company: "Zyrtec", Price: 120, Description: "Antihistamine for allergy relief", Dosage: "10mg tablet", Type: "antihistamine"}
	paracetamol = entities.MedicineRecord{ID: 2, Name: "Paracetamol", Company: "Crocin", Price: 25, Description: "Fever reducer and pain reliever", Dosage: "500mg tablet", Type: "painkiller"}
	ibuprofen   = entities.MedicineRecord{ID: 5, Name: "Ibuprofen", Company: "Brufen", Price: 40, Description: "Anti-inflammatory pain reliever", Dosage: "400mg tablet", Type: "anti-inflammatory"}
)

func withDescription(m entities.MedicineRecord, description string) entities.MedicineRecord {
	m.Description = description
	return m
}

// DefaultEntries returns the built-in catalog in definition order
func DefaultEntries() []Entry {
	return []Entry{
		{Label: "Common Cold", Medicines: []entities.MedicineRecord{
			cetirizine,
			paracetamol,
			{ID: 3, Name: "Vitamin C", Company: "Limcee", Price: 150, Description: "Immune system support", Dosage: "500mg chewable tablet", Type: "supplement"},
		}},
		{Label: "Flu", Medicines: []entities.MedicineRecord{
			{ID: 4, Name: "Oseltamivir", Company: "Tamiflu", Price: 450, Description: "Antiviral medication for influenza", Dosage: "75mg capsule", Type: "antiviral"},
			paracetamol,
			ibuprofen,
		}},
		{Label: "Migraine Headache", Medicines: []entities.MedicineRecord{
			{ID: 6, Name: "Sumatriptan", Company: "Imitrex", Price: 320, Description: "For migraine relief", Dosage: "50mg tablet", Type: "migraine"},
			{ID: 5, Name: "Ibuprofen", Company: "Brufen", Price: 40, Description: "Pain reliever", Dosage: "400mg tablet", Type: "painkiller"},
		}},
		{Label: "Allergic Rhinitis", Medicines: []entities.MedicineRecord{
			cetirizine,
			{ID: 7, Name: "Montelukast", Company: "Singulair", Price: 180, Description: "For asthma and allergy symptoms", Dosage: "10mg tablet", Type: "asthma"},
			{ID: 8, Name: "Loratadine", Company: "Claritin", Price: 110, Description: "Non-drowsy allergy relief", Dosage: "10mg tablet", Type: "antihistamine"},
		}},
		{Label: "Strep Throat", Medicines: []entities.MedicineRecord{
			{ID: 9, Name: "Amoxicillin", Company: "Amoxil", Price: 200, Description: "Antibiotic for bacterial infections", Dosage: "500mg capsule", Type: "antibiotic"},
			withDescription(paracetamol, "Pain and fever relief"),
		}},
		{Label: "Urinary Tract Infection", Medicines: []entities.MedicineRecord{
			{ID: 10, Name: "Ciprofloxacin", Company: "Cipro", Price: 280, Description: "Antibiotic for UTI", Dosage: "500mg tablet", Type: "antibiotic"},
			{ID: 11, Name: "Paracetamol", Company: "Crocin", Price: 25, Description: "Pain relief", Dosage: "500mg tablet", Type: "painkiller"},
		}},
		{Label: "Acid Reflux/GERD", Medicines: []entities.MedicineRecord{
			{ID: 12, Name: "Omeprazole", Company: "Prilosec", Price: 160, Description: "Reduces stomach acid production", Dosage: "20mg capsule", Type: "ppi"},
			{ID: 13, Name: "Antacid", Company: "Gaviscon", Price: 90, Description: "Fast-acting heartburn relief", Dosage: "Chewable tablet", Type: "antacid"},
		}},
		{Label: "Diarrhea", Medicines: []entities.MedicineRecord{
			{ID: 14, Name: "Loperamide", Company: "Imodium", Price: 85, Description: "Anti-diarrheal medication", Dosage: "2mg capsule", Type: "antidiarrheal"},
			{ID: 15, Name: "Oral Rehydration Salts", Company: "Electral", Price: 50, Description: "Prevents dehydration", Dosage: "Powder sachet", Type: "electrolyte"},
		}},
		{Label: "Bronchitis", Medicines: []entities.MedicineRecord{
			{ID: 16, Name: "Azithromycin", Company: "Zithromax", Price: 220, Description: "Antibiotic for respiratory infections", Dosage: "500mg tablet", Type: "antibiotic"},
			{ID: 17, Name: "Salbutamol", Company: "Ventolin", Price: 190, Description: "Bronchodilator inhaler", Dosage: "100mcg/dose", Type: "bronchodilator"},
			withDescription(paracetamol, "Fever reducer"),
		}},
		{Label: "Hypertension", Medicines: []entities.MedicineRecord{
			{ID: 18, Name: "Amlodipine", Company: "Norvasc", Price: 150, Description: "Calcium channel blocker", Dosage: "5mg tablet", Type: "antihypertensive"},
			{ID: 19, Name: "Losartan", Company: "Cozaar", Price: 180, Description: "Angiotensin receptor blocker", Dosage: "50mg tablet", Type: "antihypertensive"},
		}},
		{Label: "Type 2 Diabetes", Medicines: []entities.MedicineRecord{
			{ID: 20, Name: "Metformin", Company: "Glucophage", Price: 130, Description: "Improves insulin sensitivity", Dosage: "500mg tablet", Type: "antidiabetic"},
			{ID: 21, Name: "Glibenclamide", Company: "Daonil", Price: 140, Description: "Stimulates insulin secretion", Dosage: "5mg tablet", Type: "antidiabetic"},
		}},
		{Label: "Vitamin Deficiency", Medicines: []entities.MedicineRecord{
			{ID: 22, Name: "Multivitamin", Company: "Supradyn", Price: 200, Description: "Complete daily vitamins", Dosage: "1 tablet daily", Type: "supplement"},
			{ID: 23, Name: "Vitamin D", Company: "Calcirol", Price: 175, Description: "Vitamin D supplement", Dosage: "60K IU capsule", Type: "supplement"},
		}},
	}
}

// DefaultCatalog returns the built-in catalog
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultEntries())
	if err != nil {
		// built-in data has unique labels
		panic(err)
	}
	return c
}
