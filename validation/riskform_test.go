package validation

import (
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/giygas/telehealth-api/risk"
)

func TestParseRiskFormMixedJSON(t *testing.T) {
	body := `{
		"age": 52, "gender": "Male", "height_cm": "175", "weight_kg": 92.5,
		"systolic": 145, "diastolic": "95", "cholesterol": 250, "glucose": 130,
		"smoking": "current", "alcohol": "HEAVY", "activity": "sedentary",
		"sleep_hours": 5, "history": "Diabetes, heart disease,,"
	}`
	var form RiskForm
	if err := json.Unmarshal([]byte(body), &form); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	in, err := ParseRiskForm(form)
	if err != nil {
		t.Fatalf("ParseRiskForm: %v", err)
	}

	if in.Age != 52 || in.Gender != risk.GenderMale || in.HeightCm != 175 || in.WeightKg != 92.5 {
		t.Errorf("unexpected vitals: %+v", in)
	}
	if in.Diastolic != 95 || in.Alcohol != risk.AlcoholHeavy || in.SleepHours != 5 {
		t.Errorf("unexpected fields: %+v", in)
	}
	if !slices.Equal(in.History, []string{"diabetes", "heart disease"}) {
		t.Errorf("history = %v", in.History)
	}
}

func TestParseRiskFormCollectsErrors(t *testing.T) {
	form := RiskForm{
		Age:         "forty",
		Gender:      "unknown",
		HeightCm:    "0",
		WeightKg:    "70",
		Systolic:    "120",
		Diastolic:   "80",
		Cholesterol: "",
		Glucose:     "90",
		Smoking:     "never",
		Alcohol:     "none",
		Activity:    "active",
		SleepHours:  "30",
	}

	_, err := ParseRiskForm(form)
	var fe FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}

	want := map[string]string{
		"age":         "must be a whole number",
		"gender":      "unknown gender",
		"height_cm":   "greater than 0",
		"cholesterol": "is required",
		"sleep_hours": "between 0 and 24",
	}
	if len(fe) != len(want) {
		t.Errorf("got %d field errors, want %d: %v", len(fe), len(want), fe)
	}
	for field, msg := range want {
		if !strings.Contains(fe[field], msg) {
			t.Errorf("%s = %q, want %q", field, fe[field], msg)
		}
	}
	if !strings.HasPrefix(err.Error(), "invalid fields: age:") {
		t.Errorf("fields should be listed in order: %s", err.Error())
	}
}

func TestFormValueRejectsObjects(t *testing.T) {
	var form RiskForm
	if err := json.Unmarshal([]byte(`{"age": {"n": 1}}`), &form); err == nil {
		t.Fatal("expected an error for an object value")
	}
	if err := json.Unmarshal([]byte(`{"age": null}`), &form); err != nil || form.Age != "" {
		t.Fatalf("null should decode to empty: %v %q", err, form.Age)
	}
}
