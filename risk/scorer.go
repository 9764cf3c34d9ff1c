package risk

// Tier is the risk classification derived from the total score
type Tier string

const (
	TierLow    Tier = "Low"
	TierMedium Tier = "Medium"
	TierHigh   Tier = "High"
)

const (
	highThreshold   = 15
	mediumThreshold = 8
)

// Label returns the display text of the tier
func (t Tier) Label() string {
	return string(t) + " Risk"
}

// Advice returns the fixed advice text for the tier
func (t Tier) Advice() string {
	switch t {
	case TierHigh:
		return "Consult a doctor immediately. Lifestyle changes and medical intervention are strongly recommended."
	case TierMedium:
		return "Monitor your health regularly. Consider lifestyle improvements and consult a doctor if symptoms arise."
	default:
		return "Maintain your healthy habits! Regular check-ups are still advised."
	}
}

// TierForScore maps a total score to its tier
func TierForScore(score int) Tier {
	switch {
	case score >= highThreshold:
		return TierHigh
	case score >= mediumThreshold:
		return TierMedium
	default:
		return TierLow
	}
}

// Factor names used as keys of RiskAssessment.Contributions
const (
	FactorAge           = "age"
	FactorGender        = "gender"
	FactorBMI           = "bmi"
	FactorBloodPressure = "blood_pressure"
	FactorCholesterol   = "cholesterol"
	FactorGlucose       = "glucose"
	FactorSmoking       = "smoking"
	FactorAlcohol       = "alcohol"
	FactorActivity      = "activity"
	FactorSleep         = "sleep"
	FactorDiabetes      = "history_diabetes"
	FactorHypertension  = "history_hypertension"
	FactorHeartDisease  = "history_heart_disease"
)

// RiskAssessment is the result of Evaluate
type RiskAssessment struct {
	Score               int                 `json:"score"`
	Tier                Tier                `json:"tier"`
	Label               string              `json:"label"`
	BMI                 float64             `json:"bmi"`
	BMICategory         BMICategory         `json:"bmi_category"`
	BPCategory          BPCategory          `json:"blood_pressure_category"`
	CholesterolCategory CholesterolCategory `json:"cholesterol_category"`
	GlucoseCategory     GlucoseCategory     `json:"glucose_category"`
	Advice              string              `json:"advice"`
	Contributions       map[string]int      `json:"contributions"`
}

// Evaluate scores the input. It is pure: the same input always yields the
// same assessment. Callers must ensure HeightCm > 0.
func Evaluate(in PatientRiskInput) RiskAssessment {
	bmi := BMI(in.HeightCm, in.WeightKg)
	contributions := make(map[string]int)

	add := func(factor string, points int) {
		if points > 0 {
			contributions[factor] += points
		}
	}

	add(FactorAge, ageWeight(in.Age))
	if in.Gender == GenderMale {
		add(FactorGender, 1)
	}
	add(FactorBMI, bmiWeight(bmi))
	add(FactorBloodPressure, bpWeight(in.Systolic, in.Diastolic))
	add(FactorCholesterol, cholesterolWeight(in.Cholesterol))
	add(FactorGlucose, glucoseWeight(in.Glucose))
	add(FactorSmoking, smokingWeight(in.Smoking))
	add(FactorAlcohol, alcoholWeight(in.Alcohol))
	add(FactorActivity, activityWeight(in.Activity))
	if in.SleepHours < 6 || in.SleepHours > 9 {
		add(FactorSleep, 1)
	}

	if in.hasCondition("diabetes") {
		add(FactorDiabetes, 3)
	}
	if in.hasCondition("hypertension") {
		add(FactorHypertension, 2)
	}
	if in.hasCondition("heart disease") {
		add(FactorHeartDisease, 4)
	}

	score := 0
	for _, points := range contributions {
		score += points
	}

	tier := TierForScore(score)

	return RiskAssessment{
		Score:               score,
		Tier:                tier,
		Label:               tier.Label(),
		BMI:                 bmi,
		BMICategory:         CategorizeBMI(bmi),
		BPCategory:          CategorizeBP(in.Systolic, in.Diastolic),
		CholesterolCategory: CategorizeCholesterol(in.Cholesterol),
		GlucoseCategory:     CategorizeGlucose(in.Glucose),
		Advice:              tier.Advice(),
		Contributions:       contributions,
	}
}

func ageWeight(age int) int {
	switch {
	case age > 50:
		return 2
	case age > 40:
		return 1
	}
	return 0
}

// bmiWeight applies to the rounded BMI
func bmiWeight(bmi float64) int {
	switch {
	case bmi >= 30:
		return 3
	case bmi >= 25:
		return 2
	case bmi < 18.5:
		return 1
	}
	return 0
}

func bpWeight(systolic, diastolic int) int {
	switch {
	case systolic >= 140 || diastolic >= 90:
		return 3
	case systolic >= 130 || diastolic >= 85:
		return 2
	}
	return 0
}

func cholesterolWeight(mgdl int) int {
	switch {
	case mgdl >= 240:
		return 3
	case mgdl >= 200:
		return 2
	}
	return 0
}

func glucoseWeight(mgdl int) int {
	switch {
	case mgdl >= 126:
		return 3
	case mgdl >= 100:
		return 1
	}
	return 0
}

func smokingWeight(s SmokingStatus) int {
	switch s {
	case SmokingCurrent:
		return 4
	case SmokingFormer:
		return 2
	}
	return 0
}

func alcoholWeight(a AlcoholUse) int {
	switch a {
	case AlcoholHeavy:
		return 2
	case AlcoholModerate:
		return 1
	}
	return 0
}

func activityWeight(a ActivityLevel) int {
	switch a {
	case ActivitySedentary:
		return 2
	case ActivityLight:
		return 1
	}
	return 0
}
