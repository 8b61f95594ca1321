package nutrition

import "time"

// Totals are the values derived from a plan's prescription. Energy is in
// kcal/kg/day, macronutrients in g/kg/day, electrolytes in mmol/kg/day and
// the glucose infusion rate in mg/kg/min.
type Totals struct {
	Energy              float64 `json:"total_energy"`
	Protein             float64 `json:"total_protein"`
	Carbohydrate        float64 `json:"total_carbohydrate"`
	Fat                 float64 `json:"total_fat"`
	Sodium              float64 `json:"total_sodium"`
	Potassium           float64 `json:"total_potassium"`
	Calcium             float64 `json:"total_calcium"`
	Phosphate           float64 `json:"total_phosphate"`
	Magnesium           float64 `json:"total_magnesium"`
	GlucoseInfusionRate float64 `json:"glucose_infusion_rate"`
}

// NutritionPlan is one day's prescription for a patient. All volumes are in
// ml/kg/day.
type NutritionPlan struct {
	PlanID    string    `json:"plan_id"`
	PatientID string    `json:"patient_id"`
	Date      time.Time `json:"date"`

	// TotalFluidTarget is informational and never enforced.
	TotalFluidTarget float64 `json:"total_fluid_target"`

	EnteralVolume        float64 `json:"enteral_volume"`
	TPNType              string  `json:"tpn_type"`
	TPNVolume            float64 `json:"tpn_volume"`
	LipidType            string  `json:"lipid_type"`
	LipidVolume          float64 `json:"lipid_volume"`
	GlucoseConcentration string  `json:"glucose_concentration"`
	GlucoseVolume        float64 `json:"glucose_volume"`

	EnteralFeedingType      string  `json:"enteral_feeding_type"`
	EnteralFeedingFrequency int     `json:"enteral_feeding_frequency"` // feeds per 24h
	BMFConcentration        float64 `json:"bmf_concentration"`         // g/100ml

	Totals Totals `json:"calculated_values"`
}

// ParenteralVolume is the sum of all IV volumes.
func (p NutritionPlan) ParenteralVolume() float64 {
	return p.TPNVolume + p.LipidVolume + p.GlucoseVolume
}

// TotalFluid is enteral plus parenteral volume.
func (p NutritionPlan) TotalFluid() float64 {
	return p.EnteralVolume + p.ParenteralVolume()
}

// VolumePerFeed splits the enteral volume evenly across feeds. ok is false
// when no feeding frequency is set.
func (p NutritionPlan) VolumePerFeed() (volume float64, ok bool) {
	if p.EnteralFeedingFrequency <= 0 {
		return 0, false
	}
	return p.EnteralVolume / float64(p.EnteralFeedingFrequency), true
}
