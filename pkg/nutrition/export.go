package nutrition

// DateLayout is the format used for plan dates in exports and requests.
const DateLayout = "2006-01-02"

// PatientExport is the patient section of an export record.
type PatientExport struct {
	Patient
	WeightCategory WeightCategory `json:"weight_category"`
}

// PlanExport is the prescription section of an export record.
type PlanExport struct {
	PlanID                  string  `json:"plan_id"`
	Date                    string  `json:"date"`
	TotalFluidTarget        float64 `json:"total_fluid_target"`
	EnteralVolume           float64 `json:"enteral_volume"`
	ParenteralVolume        float64 `json:"parenteral_volume"`
	TotalFluid              float64 `json:"total_fluid"`
	TPNType                 string  `json:"tpn_type"`
	TPNVolume               float64 `json:"tpn_volume"`
	LipidType               string  `json:"lipid_type"`
	LipidVolume             float64 `json:"lipid_volume"`
	GlucoseConcentration    string  `json:"glucose_concentration"`
	GlucoseVolume           float64 `json:"glucose_volume"`
	EnteralFeedingType      string  `json:"enteral_feeding_type"`
	EnteralFeedingFrequency int     `json:"enteral_feeding_frequency"`
	BMFConcentration        float64 `json:"bmf_concentration"`
}

// Export is the single assembled record for a calculated plan.
type Export struct {
	Patient          PatientExport `json:"patient"`
	NutritionPlan    PlanExport    `json:"nutrition_plan"`
	CalculatedValues Totals        `json:"calculated_values"`
	Recommendations  []string      `json:"recommendations"`
	FeedingSchedule  []FeedingSlot `json:"feeding_schedule"`
}

// BuildExport recalculates plan and assembles the export record. Writing it
// anywhere is up to the caller.
func BuildExport(p Patient, plan NutritionPlan, ref *ReferenceData) (Export, error) {
	calculated, err := CalculateNutritionValues(plan, ref)
	if err != nil {
		return Export{}, err
	}

	return Export{
		Patient: PatientExport{
			Patient:        p,
			WeightCategory: p.WeightCategory(),
		},
		NutritionPlan: PlanExport{
			PlanID:                  calculated.PlanID,
			Date:                    calculated.Date.Format(DateLayout),
			TotalFluidTarget:        calculated.TotalFluidTarget,
			EnteralVolume:           calculated.EnteralVolume,
			ParenteralVolume:        calculated.ParenteralVolume(),
			TotalFluid:              calculated.TotalFluid(),
			TPNType:                 calculated.TPNType,
			TPNVolume:               calculated.TPNVolume,
			LipidType:               calculated.LipidType,
			LipidVolume:             calculated.LipidVolume,
			GlucoseConcentration:    calculated.GlucoseConcentration,
			GlucoseVolume:           calculated.GlucoseVolume,
			EnteralFeedingType:      calculated.EnteralFeedingType,
			EnteralFeedingFrequency: calculated.EnteralFeedingFrequency,
			BMFConcentration:        calculated.BMFConcentration,
		},
		CalculatedValues: calculated.Totals,
		Recommendations:  GenerateRecommendations(p, calculated, ref),
		FeedingSchedule:  GenerateFeedingSchedule(calculated),
	}, nil
}
