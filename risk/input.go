// Package risk scores patient vitals and lifestyle answers into a three-tier
// health risk classification.
package risk

import (
	"fmt"
	"strings"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

type SmokingStatus string

const (
	SmokingNever   SmokingStatus = "never"
	SmokingFormer  SmokingStatus = "former"
	SmokingCurrent SmokingStatus = "current"
)

type AlcoholUse string

const (
	AlcoholNone     AlcoholUse = "none"
	AlcoholModerate AlcoholUse = "moderate"
	AlcoholHeavy    AlcoholUse = "heavy"
)

type ActivityLevel string

const (
	ActivitySedentary ActivityLevel = "sedentary"
	ActivityLight     ActivityLevel = "light"
	ActivityActive    ActivityLevel = "active"
)

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ParseGender parses a gender form value
func ParseGender(s string) (Gender, error) {
	switch g := Gender(normalize(s)); g {
	case GenderMale, GenderFemale, GenderOther:
		return g, nil
	}
	return "", fmt.Errorf("unknown gender %q", s)
}

// ParseSmoking parses a smoking status form value
func ParseSmoking(s string) (SmokingStatus, error) {
	switch v := SmokingStatus(normalize(s)); v {
	case SmokingNever, SmokingFormer, SmokingCurrent:
		return v, nil
	}
	return "", fmt.Errorf("unknown smoking status %q", s)
}

// ParseAlcohol parses an alcohol use form value
func ParseAlcohol(s string) (AlcoholUse, error) {
	switch v := AlcoholUse(normalize(s)); v {
	case AlcoholNone, AlcoholModerate, AlcoholHeavy:
		return v, nil
	}
	return "", fmt.Errorf("unknown alcohol use %q", s)
}

// ParseActivity parses an activity level form value
func ParseActivity(s string) (ActivityLevel, error) {
	switch v := ActivityLevel(normalize(s)); v {
	case ActivitySedentary, ActivityLight, ActivityActive:
		return v, nil
	}
	return "", fmt.Errorf("unknown activity level %q", s)
}

// PatientRiskInput is one submission of the risk form. History holds
// lower-cased condition tokens, see ParseHistory.
type PatientRiskInput struct {
	Age         int           `json:"age"`
	Gender      Gender        `json:"gender"`
	HeightCm    float64       `json:"height_cm"`
	WeightKg    float64       `json:"weight_kg"`
	Systolic    int           `json:"systolic"`
	Diastolic   int           `json:"diastolic"`
	Cholesterol int           `json:"cholesterol"`
	Glucose     int           `json:"glucose"`
	Smoking     SmokingStatus `json:"smoking"`
	Alcohol     AlcoholUse    `json:"alcohol"`
	Activity    ActivityLevel `json:"activity"`
	SleepHours  float64       `json:"sleep_hours"`
	History     []string      `json:"history"`
}

// ParseHistory splits a comma-separated history field into trimmed,
// lower-cased tokens. Empty tokens are dropped.
func ParseHistory(csv string) []string {
	parts := strings.Split(csv, ",")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := normalize(p); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

func (in PatientRiskInput) hasCondition(condition string) bool {
	for _, h := range in.History {
		if h == condition {
			return true
		}
	}
	return false
}
