package nutrition

import (
	"fmt"
	"strings"
)

// WeightCategory buckets a patient by current weight.
type WeightCategory string

const (
	WeightPrematureLT1000g     WeightCategory = "premature_lt_1000g"
	WeightPremature1000To1500g WeightCategory = "premature_1000_1500g"
	WeightPrematureGT1500g     WeightCategory = "premature_gt_1500g"
	WeightTerm                 WeightCategory = "term"
)

// WeightCategories lists every weight category in ascending weight order.
var WeightCategories = []WeightCategory{
	WeightPrematureLT1000g,
	WeightPremature1000To1500g,
	WeightPrematureGT1500g,
	WeightTerm,
}

// AgeCategory buckets a patient by postnatal age in days.
type AgeCategory string

const (
	AgeDay1      AgeCategory = "day_1"
	AgeDay2      AgeCategory = "day_2"
	AgeDay3      AgeCategory = "day_3"
	AgeDay4      AgeCategory = "day_4"
	AgeDay5To7   AgeCategory = "day_5_7"
	AgeDay8To14  AgeCategory = "day_8_14"
	AgeDay15Plus AgeCategory = "day_15_plus"
)

// AgeCategories lists every postnatal age category in chronological order.
var AgeCategories = []AgeCategory{
	AgeDay1, AgeDay2, AgeDay3, AgeDay4, AgeDay5To7, AgeDay8To14, AgeDay15Plus,
}

// Phototherapy is the intensity of light therapy a patient receives.
type Phototherapy string

const (
	PhototherapyNone   Phototherapy = "none"
	PhototherapySingle Phototherapy = "single"
	PhototherapyDouble Phototherapy = "double"
)

// ParsePhototherapy accepts the labels clinicians type ("Single", "double",
// "None") case-insensitively. An empty label means no phototherapy.
func ParsePhototherapy(s string) (Phototherapy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return PhototherapyNone, nil
	case "single":
		return PhototherapySingle, nil
	case "double":
		return PhototherapyDouble, nil
	}
	return "", fmt.Errorf("unknown phototherapy %q: want none, single or double", s)
}

// Active reports whether any phototherapy is being given.
func (p Phototherapy) Active() bool {
	return p != "" && p != PhototherapyNone
}

// ClinicalCondition is a free-form tag. Only Sepsis and Hyperglycemia change
// the output; every other value is carried through unchanged.
type ClinicalCondition string

const (
	ConditionNormal        ClinicalCondition = "Normal"
	ConditionSepsis        ClinicalCondition = "Sepsis"
	ConditionHyperglycemia ClinicalCondition = "Hyperglycemia"
)

// Recognized reports whether the condition is one the engine knows about.
func (c ClinicalCondition) Recognized() bool {
	switch c {
	case ConditionNormal, ConditionSepsis, ConditionHyperglycemia:
		return true
	}
	return false
}

// PatientFields are the raw clinical inputs used to build a Patient.
type PatientFields struct {
	ID                    string
	GestationalAgeAtBirth float64 // weeks
	BirthWeight           int     // grams
	CurrentWeight         int     // grams, 0 when not measured
	PostnatalAge          int     // days
	Phototherapy          Phototherapy
	ClinicalCondition     ClinicalCondition
}

// Patient is a neonate as seen by the calculator.
type Patient struct {
	ID                    string            `json:"patient_id"`
	GestationalAgeAtBirth float64           `json:"gestational_age_at_birth"`
	BirthWeight           int               `json:"birth_weight"`
	CurrentWeight         int               `json:"current_weight"`
	PostnatalAge          int               `json:"postnatal_age"`
	Phototherapy          Phototherapy      `json:"phototherapy"`
	ClinicalCondition     ClinicalCondition `json:"clinical_condition"`
}

// NewPatient builds a Patient. A current weight that is not above the birth
// weight is discarded in favour of the birth weight.
func NewPatient(f PatientFields) Patient {
	p := Patient{
		ID:                    f.ID,
		GestationalAgeAtBirth: f.GestationalAgeAtBirth,
		BirthWeight:           f.BirthWeight,
		PostnatalAge:          f.PostnatalAge,
		Phototherapy:          f.Phototherapy,
		ClinicalCondition:     f.ClinicalCondition,
	}
	if p.Phototherapy == "" {
		p.Phototherapy = PhototherapyNone
	}
	if p.ClinicalCondition == "" {
		p.ClinicalCondition = ConditionNormal
	}
	p.SetCurrentWeight(f.CurrentWeight)
	return p
}

// SetCurrentWeight records a new weighing, applying the same birth-weight floor
// as NewPatient.
func (p *Patient) SetCurrentWeight(grams int) {
	if grams > p.BirthWeight {
		p.CurrentWeight = grams
		return
	}
	p.CurrentWeight = p.BirthWeight
}

// WeightCategory classifies the current weight.
func (p Patient) WeightCategory() WeightCategory {
	return ClassifyWeight(p.CurrentWeight)
}

// PostnatalAgeCategory classifies the postnatal age.
func (p Patient) PostnatalAgeCategory() AgeCategory {
	return ClassifyPostnatalAge(p.PostnatalAge)
}

// ClassifyWeight maps a weight in grams to its category.
func ClassifyWeight(grams int) WeightCategory {
	switch {
	case grams < 1000:
		return WeightPrematureLT1000g
	case grams < 1500:
		return WeightPremature1000To1500g
	case grams < 2500:
		return WeightPrematureGT1500g
	default:
		return WeightTerm
	}
}

// ClassifyPostnatalAge maps an age in days to its category. Values outside
// the table (including zero and negatives) fall into day_15_plus.
func ClassifyPostnatalAge(days int) AgeCategory {
	switch {
	case days == 1:
		return AgeDay1
	case days == 2:
		return AgeDay2
	case days == 3:
		return AgeDay3
	case days == 4:
		return AgeDay4
	case days >= 5 && days <= 7:
		return AgeDay5To7
	case days >= 8 && days <= 14:
		return AgeDay8To14
	default:
		return AgeDay15Plus
	}
}

// Classification is the pair of buckets used for table lookups.
type Classification struct {
	WeightCategory WeightCategory `json:"weight_category"`
	AgeCategory    AgeCategory    `json:"age_category"`
}

// Classify returns both categories for a patient.
func Classify(p Patient) Classification {
	return Classification{
		WeightCategory: p.WeightCategory(),
		AgeCategory:    p.PostnatalAgeCategory(),
	}
}
