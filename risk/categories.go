package risk

import "math"

type BMICategory string

const (
	BMIUnderweight BMICategory = "Underweight"
	BMINormal      BMICategory = "Normal"
	BMIOverweight  BMICategory = "Overweight"
	BMIObese       BMICategory = "Obese"
)

type BPCategory string

const (
	BPNormal   BPCategory = "Normal"
	BPElevated BPCategory = "Elevated"
	BPHigh     BPCategory = "High (Hypertension)"
)

type CholesterolCategory string

const (
	CholesterolNormal     CholesterolCategory = "Normal"
	CholesterolBorderline CholesterolCategory = "Borderline High"
	CholesterolHigh       CholesterolCategory = "High"
)

type GlucoseCategory string

const (
	GlucoseNormal      GlucoseCategory = "Normal"
	GlucosePrediabetes GlucoseCategory = "Prediabetes"
	GlucoseHigh        GlucoseCategory = "High (Diabetes)"
)

// BMI returns weight / height² rounded to one decimal. heightCm must be > 0.
func BMI(heightCm, weightKg float64) float64 {
	m := heightCm / 100
	return math.Round(weightKg/(m*m)*10) / 10
}

func CategorizeBMI(bmi float64) BMICategory {
	switch {
	case bmi < 18.5:
		return BMIUnderweight
	case bmi < 25:
		return BMINormal
	case bmi < 30:
		return BMIOverweight
	default:
		return BMIObese
	}
}

func CategorizeBP(systolic, diastolic int) BPCategory {
	switch {
	case systolic >= 140 || diastolic >= 90:
		return BPHigh
	case systolic >= 130 || diastolic >= 85:
		return BPElevated
	default:
		return BPNormal
	}
}

func CategorizeCholesterol(mgdl int) CholesterolCategory {
	switch {
	case mgdl >= 240:
		return CholesterolHigh
	case mgdl >= 200:
		return CholesterolBorderline
	default:
		return CholesterolNormal
	}
}

func CategorizeGlucose(mgdl int) GlucoseCategory {
	switch {
	case mgdl >= 126:
		return GlucoseHigh
	case mgdl >= 100:
		return GlucosePrediabetes
	default:
		return GlucoseNormal
	}
}
