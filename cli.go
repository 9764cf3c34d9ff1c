package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/giygas/telehealth-api/catalogparser"
	"github.com/giygas/telehealth-api/diagnosis"
	"github.com/giygas/telehealth-api/risk"
	"github.com/giygas/telehealth-api/validation"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func assessCmd() *cobra.Command {
	var (
		age, systolic, diastolic, cholesterol, glucose int
		height, weight, sleep                          float64
		gender, smoking, alcohol, activity, history    string
		asJSON                                         bool
	)

	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Score a risk form from the command line",
		RunE: func(cmd *cobra.Command, args []string) error {
			form := validation.RiskForm{
				Age:         validation.FormValue(strconv.Itoa(age)),
				Gender:      validation.FormValue(gender),
				HeightCm:    validation.FormValue(strconv.FormatFloat(height, 'f', -1, 64)),
				WeightKg:    validation.FormValue(strconv.FormatFloat(weight, 'f', -1, 64)),
				Systolic:    validation.FormValue(strconv.Itoa(systolic)),
				Diastolic:   validation.FormValue(strconv.Itoa(diastolic)),
				Cholesterol: validation.FormValue(strconv.Itoa(cholesterol)),
				Glucose:     validation.FormValue(strconv.Itoa(glucose)),
				Smoking:     validation.FormValue(smoking),
				Alcohol:     validation.FormValue(alcohol),
				Activity:    validation.FormValue(activity),
				SleepHours:  validation.FormValue(strconv.FormatFloat(sleep, 'f', -1, 64)),
				History:     validation.FormValue(history),
			}

			in, err := validation.ParseRiskForm(form)
			if err != nil {
				return err
			}
			assessment := risk.Evaluate(in)

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, assessment)
			}

			fmt.Fprintf(out, "%s (score %d)\n", assessment.Label, assessment.Score)
			fmt.Fprintf(out, "BMI %.1f: %s\n", assessment.BMI, assessment.BMICategory)
			fmt.Fprintf(out, "Blood pressure: %s\n", assessment.BPCategory)
			fmt.Fprintf(out, "Cholesterol: %s\n", assessment.CholesterolCategory)
			fmt.Fprintf(out, "Glucose: %s\n", assessment.GlucoseCategory)

			factors := make([]string, 0, len(assessment.Contributions))
			for f := range assessment.Contributions {
				factors = append(factors, f)
			}
			sort.Strings(factors)
			for _, f := range factors {
				fmt.Fprintf(out, "  %-14s +%d\n", f, assessment.Contributions[f])
			}
			fmt.Fprintln(out, assessment.Advice)
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&age, "age", 0, "Age in years")
	f.StringVar(&gender, "gender", "", "male, female or other")
	f.Float64Var(&height, "height", 0, "Height in cm")
	f.Float64Var(&weight, "weight", 0, "Weight in kg")
	f.IntVar(&systolic, "systolic", 0, "Systolic blood pressure (mmHg)")
	f.IntVar(&diastolic, "diastolic", 0, "Diastolic blood pressure (mmHg)")
	f.IntVar(&cholesterol, "cholesterol", 0, "Total cholesterol (mg/dL)")
	f.IntVar(&glucose, "glucose", 0, "Fasting glucose (mg/dL)")
	f.StringVar(&smoking, "smoking", "never", "never, former or current")
	f.StringVar(&alcohol, "alcohol", "none", "none, moderate or heavy")
	f.StringVar(&activity, "activity", "active", "sedentary, light or active")
	f.Float64Var(&sleep, "sleep", 7, "Average sleep hours per night")
	f.StringVar(&history, "history", "", "Comma separated conditions, e.g. diabetes,hypertension")
	f.BoolVar(&asJSON, "json", false, "Print the assessment as JSON")
	for _, name := range []string{"age", "gender", "height", "weight", "systolic", "diastolic", "cholesterol", "glucose"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func diagnoseCmd() *cobra.Command {
	var (
		catalogFile string
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "diagnose <text>",
		Short: "Resolve a diagnosis and list the recommended medicines",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			err := validation.NewDataValidator().ValidateInput(text)
			if err != nil && !errors.Is(err, validation.ErrInvalidCharacters) {
				return err
			}

			catalog, err := catalogparser.NewCatalogParser(catalogFile, "").ParseCatalog(cmd.Context())
			if err != nil {
				return err
			}
			resolver := diagnosis.NewResolver(catalog, diagnosis.DefaultAliases())

			out := cmd.OutOrStdout()
			match, ok := resolver.Resolve(text)
			if !ok {
				if asJSON {
					return writeJSON(out, map[string]any{"matched": false, "recommendations": []diagnosis.Recommendation{}})
				}
				fmt.Fprintln(out, "No matching disease found. Please try a different description.")
				return nil
			}

			recs := diagnosis.Enrich(catalog.Recommend(match.Label))
			if asJSON {
				return writeJSON(out, map[string]any{
					"matched":         true,
					"label":           match.Label,
					"method":          match.Method,
					"recommendations": recs,
				})
			}

			fmt.Fprintf(out, "%s (%s match)\n", match.Label, match.Method)
			for _, r := range recs {
				fmt.Fprintf(out, "  #%d %s (%s) %s, %s\n", r.ID, r.Name, r.Company, r.Dosage, r.Description)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&catalogFile, "catalog-file", "", "TSV catalog to use instead of the built-in one")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}
