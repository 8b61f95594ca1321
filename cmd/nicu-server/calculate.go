package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nicu/fluidcalc/internal/config"
	"github.com/nicu/fluidcalc/internal/domain/nicu"
	"github.com/nicu/fluidcalc/pkg/nutrition"
)

// caseDocument is the input of the calculate command: one patient and the
// plan prescribed for them.
type caseDocument struct {
	Patient struct {
		PatientID             string  `json:"patient_id"`
		GestationalAgeAtBirth float64 `json:"gestational_age_at_birth"`
		BirthWeight           int     `json:"birth_weight"`
		CurrentWeight         int     `json:"current_weight"`
		PostnatalAge          int     `json:"postnatal_age"`
		Phototherapy          string  `json:"phototherapy"`
		ClinicalCondition     string  `json:"clinical_condition"`
	} `json:"patient"`
	NutritionPlan struct {
		Date                    string  `json:"date"`
		TotalFluidTarget        float64 `json:"total_fluid_target"`
		EnteralVolume           float64 `json:"enteral_volume"`
		TPNType                 string  `json:"tpn_type"`
		TPNVolume               float64 `json:"tpn_volume"`
		LipidType               string  `json:"lipid_type"`
		LipidVolume             float64 `json:"lipid_volume"`
		GlucoseConcentration    string  `json:"glucose_concentration"`
		GlucoseVolume           float64 `json:"glucose_volume"`
		EnteralFeedingType      string  `json:"enteral_feeding_type"`
		EnteralFeedingFrequency int     `json:"enteral_feeding_frequency"`
		BMFConcentration        float64 `json:"bmf_concentration"`
	} `json:"nutrition_plan"`
}

func (d caseDocument) requests() (nicu.PatientRequest, nicu.PlanRequest) {
	p, n := d.Patient, d.NutritionPlan
	patient := nicu.PatientRequest{
		PatientID:         p.PatientID,
		GestationalAge:    p.GestationalAgeAtBirth,
		BirthWeight:       p.BirthWeight,
		CurrentWeight:     p.CurrentWeight,
		PostnatalAge:      p.PostnatalAge,
		Phototherapy:      p.Phototherapy,
		ClinicalCondition: p.ClinicalCondition,
	}
	plan := nicu.PlanRequest{
		PatientID:               p.PatientID,
		Date:                    n.Date,
		TotalFluidTarget:        n.TotalFluidTarget,
		EnteralVolume:           n.EnteralVolume,
		TPNType:                 n.TPNType,
		TPNVolume:               n.TPNVolume,
		LipidType:               n.LipidType,
		LipidVolume:             n.LipidVolume,
		GlucoseConcentration:    n.GlucoseConcentration,
		GlucoseVolume:           n.GlucoseVolume,
		EnteralFeedingType:      n.EnteralFeedingType,
		EnteralFeedingFrequency: n.EnteralFeedingFrequency,
		BMFConcentration:        n.BMFConcentration,
	}
	return patient, plan
}

func calculateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Calculate one patient's plan and write its export record",
		RunE: func(cmd *cobra.Command, args []string) error {
			input, _ := cmd.Flags().GetString("input")
			output, _ := cmd.Flags().GetString("output")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			// Logs go to stderr so stdout carries only the export.
			logger := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(cfg.ZerologLevel())

			ctx := context.Background()
			ref, pool, err := loadReference(ctx, cfg, logger)
			if err != nil {
				return err
			}
			if pool != nil {
				defer pool.Close()
			}

			in, err := os.Open(input)
			if err != nil {
				return err
			}
			defer in.Close()

			var out io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			exp, err := runCalculate(ctx, in, ref, logger)
			if err != nil {
				return err
			}
			if err := writeExport(out, exp); err != nil {
				return err
			}
			if output != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Nutrition plan exported to %s\n", output)
			}
			return nil
		},
	}
	cmd.Flags().String("input", "", "JSON file with \"patient\" and \"nutrition_plan\"")
	cmd.Flags().String("output", "", "Write the export here instead of stdout")
	cmd.MarkFlagRequired("input")
	return cmd
}

// runCalculate runs one case through the same service the API uses.
func runCalculate(ctx context.Context, r io.Reader, ref *nutrition.ReferenceData, logger zerolog.Logger) (*nutrition.Export, error) {
	var doc caseDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}
	patientReq, planReq := doc.requests()

	svc := nicu.NewService(nicu.NewPatientRepoMemory(), nicu.NewPlanRepoMemory(), ref, logger)
	patient, err := svc.CreatePatient(ctx, patientReq)
	if err != nil {
		return nil, err
	}
	planReq.PatientID = patient.ID
	plan, err := svc.CreatePlan(ctx, planReq)
	if err != nil {
		return nil, err
	}
	return svc.Export(ctx, plan.PlanID)
}

func writeExport(w io.Writer, exp *nutrition.Export) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(exp)
}
