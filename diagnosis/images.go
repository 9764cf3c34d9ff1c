package diagnosis

import "github.com/giygas/telehealth-api/entities"

// DefaultImageURL is used for medicines without a dedicated picture
const DefaultImageURL = "https://img.freepik.com/free-photo/medicine-capsules-global-health-with-geometric-pattern-digital-remix_53876-104047.jpg"

var medicineImages = map[string]string{
	"Cetirizine":    "https://5.imimg.com/data5/SELLER/Default/2023/5/311448434/ML/FE/LQ/180352824/cetfiz-tab.jpeg",
	"Paracetamol":   "https://5.imimg.com/data5/SELLER/Default/2022/8/QM/AX/SS/129887935/paracetamol-tablets-500x500.jpeg",
	"Oseltamivir":   "https://globelapharma.com/wp-content/uploads/2023/03/OSELTAMIVIR.png",
	"Ibuprofen":     "https://5.imimg.com/data5/SELLER/Default/2023/7/327083834/AE/LV/NU/557330/ibuprofen-tablet.jpg",
	"Sumatriptan":   "https://5.imimg.com/data5/AM/FQ/ES/SELLER-67230705/sumatriptan-tablet.jpg",
	"Montelukast":   "https://img.freepik.com/free-photo/asthma-medicine-inhaler_23-2148895574.jpg",
	"Aspirin":       "https://img.freepik.com/free-photo/aspirin-pills-white-background_23-2147657235.jpg",
	"Loratadine":    "https://img.freepik.com/free-photo/antihistamine-medicine-capsules_23-2148895577.jpg",
	"Amoxicillin":   "https://img.freepik.com/free-photo/antibiotic-capsules_23-2148895578.jpg",
	"Azithromycin":  "https://img.freepik.com/free-photo/antibiotic-tablets_23-2148895579.jpg",
	"Ciprofloxacin": "https://img.freepik.com/free-photo/antibiotic-medicine_23-2148895580.jpg",
	"Omeprazole":    "https://img.freepik.com/free-photo/acid-reducer-medicine_23-2148895581.jpg",
	"Loperamide":    "https://img.freepik.com/free-photo/antidiarrheal-medicine_23-2148895582.jpg",
	"Salbutamol":    "https://img.freepik.com/free-photo/asthma-inhaler_23-2148895583.jpg",
	"Vitamin C":     "https://img.freepik.com/free-photo/vitamin-c-tablets-orange-background_23-2147749339.jpg",
	"Multivitamin":  "https://img.freepik.com/free-photo/vitamin-supplements_23-2147749340.jpg",
}

// Recommendation is a medicine enriched for rendering
type Recommendation struct {
	entities.MedicineRecord
	ImageURL string `json:"image_url"`
}

// ImageFor looks up the picture of a medicine by name
func ImageFor(name string) string {
	if url, ok := medicineImages[name]; ok {
		return url
	}
	return DefaultImageURL
}

// HasImage reports whether name has a dedicated picture
func HasImage(name string) bool {
	_, ok := medicineImages[name]
	return ok
}

// Enrich attaches image URLs, keeping order
func Enrich(records []entities.MedicineRecord) []Recommendation {
	out := make([]Recommendation, len(records))
	for i, r := range records {
		out[i] = Recommendation{MedicineRecord: r, ImageURL: ImageFor(r.Name)}
	}
	return out
}
