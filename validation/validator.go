// Package validation checks user input, risk form values and catalog
// integrity before they reach the domain packages.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/giygas/telehealth-api/diagnosis"
	"github.com/giygas/telehealth-api/interfaces"
	"github.com/giygas/telehealth-api/logging"
	"github.com/giygas/telehealth-api/risk"
)

const (
	maxInputLength = 100
	maxInputWords  = 10
	maxRepeatRun   = 10
)

var (
	// letters of any script, digits, spaces and the punctuation found in
	// names and diagnosis labels such as "Acid Reflux/GERD"
	inputRegex = regexp.MustCompile(`^[\p{L}\p{M}0-9\s\-.,'/()+]+$`)

	dangerousPatterns = []string{
		"<script", "javascript:", "onerror=", "onload=",
		"union select", "drop table", "delete from", "insert into", "--", "/*", "*/",
		"$(", "${", "`",
		"../", "..\\", "%2e%2e",
		"{$ne:", "{$where:",
	}
)

// ErrInvalidCharacters marks input that is only rejected for its character
// set, as opposed to dangerous content
var ErrInvalidCharacters = errors.New("input contains invalid characters")

type DataValidatorImpl struct{}

var _ interfaces.Validator = (*DataValidatorImpl)(nil)

func NewDataValidator() *DataValidatorImpl {
	return &DataValidatorImpl{}
}

// ValidateInput accepts short free text: patient names, diagnoses and
// dashboard searches
func (v *DataValidatorImpl) ValidateInput(input string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("input cannot be empty")
	}
	if !utf8.ValidString(input) {
		return fmt.Errorf("input is not valid UTF-8")
	}
	if utf8.RuneCountInString(input) > maxInputLength {
		return fmt.Errorf("input too long: maximum %d characters", maxInputLength)
	}
	if len(strings.Fields(input)) > maxInputWords {
		return fmt.Errorf("input too complex: maximum %d words allowed", maxInputWords)
	}

	lower := strings.ToLower(input)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lower, pattern) {
			return fmt.Errorf("input contains potentially dangerous content")
		}
	}

	if !inputRegex.MatchString(input) {
		return fmt.Errorf("%w. Only letters, numbers, spaces and - . , ' / ( ) + are allowed", ErrInvalidCharacters)
	}

	if hasExcessiveRepetition(input) {
		return fmt.Errorf("input contains excessive character repetition")
	}
	return nil
}

// hasExcessiveRepetition reports a run of more than maxRepeatRun identical runes
func hasExcessiveRepetition(input string) bool {
	var prev rune
	run := 0
	for _, r := range input {
		if r == prev {
			run++
		} else {
			prev, run = r, 1
		}
		if run > maxRepeatRun {
			return true
		}
	}
	return false
}

// ValidateRiskInput checks the ranges the scorer relies on. Enum fields are
// already typed, so only the numbers are checked here.
func (v *DataValidatorImpl) ValidateRiskInput(in risk.PatientRiskInput) error {
	errs := FieldErrors{}
	if in.Age <= 0 || in.Age > 130 {
		errs.Add("age", "must be between 1 and 130")
	}
	if in.HeightCm <= 0 {
		errs.Add("height_cm", "must be greater than 0")
	}
	if in.WeightKg <= 0 {
		errs.Add("weight_kg", "must be greater than 0")
	}
	if in.Systolic <= 0 {
		errs.Add("systolic", "must be greater than 0")
	}
	if in.Diastolic <= 0 {
		errs.Add("diastolic", "must be greater than 0")
	}
	if in.Cholesterol <= 0 {
		errs.Add("cholesterol", "must be greater than 0")
	}
	if in.Glucose <= 0 {
		errs.Add("glucose", "must be greater than 0")
	}
	if in.SleepHours < 0 || in.SleepHours > 24 {
		errs.Add("sleep_hours", "must be between 0 and 24")
	}
	return errs.OrNil()
}

// ReportCatalogQuality lists catalog problems without rejecting the
// catalog. Findings are logged as warnings.
func (v *DataValidatorImpl) ReportCatalogQuality(catalog *diagnosis.Catalog, aliases map[string]string) *interfaces.CatalogQualityReport {
	report := &interfaces.CatalogQualityReport{
		DuplicateMedicineIDs:  map[string][]int{},
		MedicinesWithoutImage: []string{},
		DanglingAliases:       []string{},
		EmptyDiagnoses:        []string{},
	}
	if catalog == nil {
		return report
	}

	missingImage := map[string]bool{}
	for _, entry := range catalog.Entries() {
		if len(entry.Medicines) == 0 {
			report.EmptyDiagnoses = append(report.EmptyDiagnoses, entry.Label)
		}

		seen := map[int]bool{}
		for _, m := range entry.Medicines {
			if seen[m.ID] && !slices.Contains(report.DuplicateMedicineIDs[entry.Label], m.ID) {
				report.DuplicateMedicineIDs[entry.Label] = append(report.DuplicateMedicineIDs[entry.Label], m.ID)
			}
			seen[m.ID] = true

			if !diagnosis.HasImage(m.Name) && !missingImage[m.Name] {
				missingImage[m.Name] = true
				report.MedicinesWithoutImage = append(report.MedicinesWithoutImage, m.Name)
			}
		}
	}

	for alias, label := range aliases {
		if !catalog.Has(label) {
			report.DanglingAliases = append(report.DanglingAliases, alias)
		}
	}
	slices.Sort(report.DanglingAliases)
	slices.Sort(report.MedicinesWithoutImage)

	if report.HasIssues() {
		logging.Warn("Catalog quality issues found",
			"duplicate_ids", len(report.DuplicateMedicineIDs),
			"without_image", len(report.MedicinesWithoutImage),
			"dangling_aliases", len(report.DanglingAliases),
			"empty_diagnoses", len(report.EmptyDiagnoses),
		)
	}
	return report
}
