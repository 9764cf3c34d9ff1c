package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/giygas/telehealth-api/risk"
)

// FormValue accepts a JSON string or number, the way HTML forms and API
// clients send the same field
type FormValue string

func (f *FormValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FormValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected a string or number: %w", err)
	}
	*f = FormValue(n.String())
	return nil
}

// RiskForm is one submission of the risk form. History is comma separated.
type RiskForm struct {
	Age         FormValue `json:"age"`
	Gender      FormValue `json:"gender"`
	HeightCm    FormValue `json:"height_cm"`
	WeightKg    FormValue `json:"weight_kg"`
	Systolic    FormValue `json:"systolic"`
	Diastolic   FormValue `json:"diastolic"`
	Cholesterol FormValue `json:"cholesterol"`
	Glucose     FormValue `json:"glucose"`
	Smoking     FormValue `json:"smoking"`
	Alcohol     FormValue `json:"alcohol"`
	Activity    FormValue `json:"activity"`
	SleepHours  FormValue `json:"sleep_hours"`
	History     FormValue `json:"history"`
}

// FieldErrors maps a form field to its problem
type FieldErrors map[string]string

func (e FieldErrors) Add(field, msg string) {
	if _, exists := e[field]; !exists {
		e[field] = msg
	}
}

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, field := range slices.Sorted(maps.Keys(e)) {
		parts = append(parts, field+": "+e[field])
	}
	return "invalid fields: " + strings.Join(parts, "; ")
}

// OrNil returns nil for an empty set so callers can return it directly
func (e FieldErrors) OrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

type formParser struct {
	errs FieldErrors
}

func (p *formParser) required(field string, v FormValue) (string, bool) {
	s := strings.TrimSpace(string(v))
	if s == "" {
		p.errs.Add(field, "is required")
		return "", false
	}
	return s, true
}

func (p *formParser) intField(field string, v FormValue) int {
	s, ok := p.required(field, v)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		p.errs.Add(field, "must be a whole number")
	}
	return n
}

func (p *formParser) floatField(field string, v FormValue) float64 {
	s, ok := p.required(field, v)
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.errs.Add(field, "must be a number")
	}
	return f
}

func parseEnum[T any](p *formParser, field string, v FormValue, parse func(string) (T, error)) T {
	var zero T
	s, ok := p.required(field, v)
	if !ok {
		return zero
	}
	out, err := parse(s)
	if err != nil {
		p.errs.Add(field, err.Error())
		return zero
	}
	return out
}

// ParseRiskForm converts and range-checks a form. All field problems are
// returned together as FieldErrors.
func ParseRiskForm(form RiskForm) (risk.PatientRiskInput, error) {
	p := &formParser{errs: FieldErrors{}}

	in := risk.PatientRiskInput{
		Age:         p.intField("age", form.Age),
		Gender:      parseEnum(p, "gender", form.Gender, risk.ParseGender),
		HeightCm:    p.floatField("height_cm", form.HeightCm),
		WeightKg:    p.floatField("weight_kg", form.WeightKg),
		Systolic:    p.intField("systolic", form.Systolic),
		Diastolic:   p.intField("diastolic", form.Diastolic),
		Cholesterol: p.intField("cholesterol", form.Cholesterol),
		Glucose:     p.intField("glucose", form.Glucose),
		Smoking:     parseEnum(p, "smoking", form.Smoking, risk.ParseSmoking),
		Alcohol:     parseEnum(p, "alcohol", form.Alcohol, risk.ParseAlcohol),
		Activity:    parseEnum(p, "activity", form.Activity, risk.ParseActivity),
		SleepHours:  p.floatField("sleep_hours", form.SleepHours),
		History:     risk.ParseHistory(string(form.History)),
	}

	if err := NewDataValidator().ValidateRiskInput(in); err != nil {
		var fe FieldErrors
		if errors.As(err, &fe) {
			for field, msg := range fe {
				p.errs.Add(field, msg)
			}
		}
	}

	if err := p.errs.OrNil(); err != nil {
		return risk.PatientRiskInput{}, err
	}
	return in, nil
}
