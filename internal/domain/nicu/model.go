package nicu

import (
	"fmt"
	"time"

	"github.com/nicu/fluidcalc/pkg/nutrition"
)

// Solutions used when a plan request leaves them out.
const (
	DefaultTPNType              = "NICU-mix"
	DefaultLipidType            = "Intralipid_20%"
	DefaultGlucoseConcentration = "10%"
)

// PatientRequest is the body of POST /patients. Field names follow the
// bedside form.
type PatientRequest struct {
	PatientID         string  `json:"patientId"`
	GestationalAge    float64 `json:"gestationalAge"`
	BirthWeight       int     `json:"birthWeight"`
	CurrentWeight     int     `json:"currentWeight"`
	PostnatalAge      int     `json:"postnatalAge"`
	Phototherapy      string  `json:"phototherapy"`
	ClinicalCondition string  `json:"clinicalCondition"`
}

// Fields validates the request and converts it to engine input.
func (r PatientRequest) Fields() (nutrition.PatientFields, error) {
	if r.BirthWeight <= 0 {
		return nutrition.PatientFields{}, fmt.Errorf("%w: birthWeight must be positive", ErrInvalidInput)
	}
	if r.CurrentWeight < 0 {
		return nutrition.PatientFields{}, fmt.Errorf("%w: currentWeight must not be negative", ErrInvalidInput)
	}
	if r.PostnatalAge < 1 {
		return nutrition.PatientFields{}, fmt.Errorf("%w: postnatalAge must be at least 1", ErrInvalidInput)
	}
	if r.GestationalAge < 0 {
		return nutrition.PatientFields{}, fmt.Errorf("%w: gestationalAge must not be negative", ErrInvalidInput)
	}
	photo, err := nutrition.ParsePhototherapy(r.Phototherapy)
	if err != nil {
		return nutrition.PatientFields{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nutrition.PatientFields{
		ID:                    r.PatientID,
		GestationalAgeAtBirth: r.GestationalAge,
		BirthWeight:           r.BirthWeight,
		CurrentWeight:         r.CurrentWeight,
		PostnatalAge:          r.PostnatalAge,
		Phototherapy:          photo,
		ClinicalCondition:     nutrition.ClinicalCondition(r.ClinicalCondition),
	}, nil
}

// PlanRequest is the body of POST /nutrition-plans. Volumes are ml/kg/day.
type PlanRequest struct {
	PatientID               string  `json:"patientId"`
	Date                    string  `json:"date"` // YYYY-MM-DD, today when empty
	TotalFluidTarget        float64 `json:"totalFluidTarget"`
	EnteralVolume           float64 `json:"enteralVolume"`
	TPNType                 string  `json:"tpnType"`
	TPNVolume               float64 `json:"tpnVolume"`
	LipidType               string  `json:"lipidType"`
	LipidVolume             float64 `json:"lipidVolume"`
	GlucoseConcentration    string  `json:"glucoseConcentration"`
	GlucoseVolume           float64 `json:"glucoseVolume"`
	EnteralFeedingType      string  `json:"enteralFeedingType"`
	EnteralFeedingFrequency int     `json:"enteralFeedingFrequency"`
	BMFConcentration        float64 `json:"bmfConcentration"`
}

// Plan validates the request and builds an uncalculated plan. now supplies
// the date when none is given.
func (r PlanRequest) Plan(now time.Time) (nutrition.NutritionPlan, error) {
	if r.PatientID == "" {
		return nutrition.NutritionPlan{}, fmt.Errorf("%w: patientId is required", ErrInvalidInput)
	}
	for name, v := range map[string]float64{
		"enteralVolume": r.EnteralVolume,
		"tpnVolume":     r.TPNVolume,
		"lipidVolume":   r.LipidVolume,
		"glucoseVolume": r.GlucoseVolume,
	} {
		if v < 0 {
			return nutrition.NutritionPlan{}, fmt.Errorf("%w: %s must not be negative", ErrInvalidInput, name)
		}
	}

	date := now
	if r.Date != "" {
		d, err := time.Parse(nutrition.DateLayout, r.Date)
		if err != nil {
			return nutrition.NutritionPlan{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
		}
		date = d
	}

	plan := nutrition.NutritionPlan{
		PatientID:               r.PatientID,
		Date:                    date,
		TotalFluidTarget:        r.TotalFluidTarget,
		EnteralVolume:           r.EnteralVolume,
		TPNType:                 r.TPNType,
		TPNVolume:               r.TPNVolume,
		LipidType:               r.LipidType,
		LipidVolume:             r.LipidVolume,
		GlucoseConcentration:    r.GlucoseConcentration,
		GlucoseVolume:           r.GlucoseVolume,
		EnteralFeedingType:      r.EnteralFeedingType,
		EnteralFeedingFrequency: r.EnteralFeedingFrequency,
		BMFConcentration:        r.BMFConcentration,
	}
	if plan.TPNType == "" {
		plan.TPNType = DefaultTPNType
	}
	if plan.LipidType == "" {
		plan.LipidType = DefaultLipidType
	}
	if plan.GlucoseConcentration == "" {
		plan.GlucoseConcentration = DefaultGlucoseConcentration
	}
	return plan, nil
}

// PatientSummary is a patient with its classification and fluid range.
type PatientSummary struct {
	nutrition.Patient
	WeightCategory    nutrition.WeightCategory `json:"weight_category"`
	AgeCategory       nutrition.AgeCategory    `json:"age_category"`
	FluidRequirements nutrition.Range          `json:"fluid_requirements"`
}

// CalculatedValues are a plan's totals plus its volume sums.
type CalculatedValues struct {
	nutrition.Totals
	TotalParenteralVolume float64 `json:"total_parenteral_volume"`
	TotalFluid            float64 `json:"total_fluid"`
}

// PlanResult is what clinicians see after submitting a plan.
type PlanResult struct {
	PlanID           string                  `json:"plan_id"`
	PatientID        string                  `json:"patient_id"`
	CalculatedValues CalculatedValues        `json:"calculated_values"`
	Recommendations  []string                `json:"recommendations"`
	FeedingSchedule  []nutrition.FeedingSlot `json:"feeding_schedule"`
}
