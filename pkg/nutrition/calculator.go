package nutrition

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidConcentration is returned when a glucose concentration label is
// not of the form "<number>%".
var ErrInvalidConcentration = errors.New("invalid glucose concentration")

const minutesPerDay = 24 * 60

// FluidRequirement returns the daily fluid range for a patient in ml/kg/day.
//
// A weight/age pair missing from the table yields {0, 0} rather than an
// error, and the phototherapy delta is only applied when the pair exists.
// Callers relying on the range must treat {0, 0} as "unknown".
func FluidRequirement(p Patient, ref *ReferenceData) Range {
	base, ok := ref.fluidRequirement(p.WeightCategory(), p.PostnatalAgeCategory())
	if !ok {
		return Range{}
	}
	if p.Phototherapy.Active() {
		adj := ref.PhototherapyAdjustments[strings.ToLower(string(p.Phototherapy))]
		base.Min += adj.Min
		base.Max += adj.Max
	}
	return base
}

// CalculateTotals derives the nutrient totals of a plan from its parenteral
// prescription. Unknown TPN, lipid or glucose keys contribute nothing.
// Enteral feeds and fortifier are not counted.
func CalculateTotals(plan NutritionPlan, ref *ReferenceData) (Totals, error) {
	var t Totals
	if ref == nil {
		return t, nil
	}

	if plan.TPNVolume > 0 {
		if tpn, ok := ref.TPNCompositions[plan.TPNType]; ok {
			v := plan.TPNVolume
			t.Energy += tpn.EnergyKcalPerML * v
			t.Protein += tpn.ProteinGPerML * v
			t.Carbohydrate += tpn.CarbohydrateGPerML * v
			t.Fat += tpn.FatGPerML * v
			t.Sodium += tpn.SodiumMmolPerML * v
			t.Potassium += tpn.PotassiumMmolPerML * v
			t.Calcium += tpn.CalciumMmolPerML * v
			t.Phosphate += tpn.PhosphateMmolPerML * v
			t.Magnesium += tpn.MagnesiumMmolPerML * v
		}
	}

	if plan.LipidVolume > 0 {
		if lipid, ok := ref.LipidSolutions[plan.LipidType]; ok {
			t.Energy += lipid.EnergyKcalPerML * plan.LipidVolume
			t.Fat += lipid.FatGPerML * plan.LipidVolume
		}
	}

	if plan.GlucoseVolume > 0 {
		if glucose, ok := ref.GlucoseSolutions[plan.GlucoseConcentration]; ok {
			t.Energy += glucose.EnergyKcalPerML * plan.GlucoseVolume
			t.Carbohydrate += glucose.CarbohydrateGPerML * plan.GlucoseVolume

			gir, err := GlucoseInfusionRate(plan.GlucoseConcentration, plan.GlucoseVolume)
			if err != nil {
				return Totals{}, err
			}
			t.GlucoseInfusionRate = gir
		}
	}

	return t, nil
}

// CalculateNutritionValues returns a copy of plan with Totals replaced by a
// fresh calculation.
func CalculateNutritionValues(plan NutritionPlan, ref *ReferenceData) (NutritionPlan, error) {
	totals, err := CalculateTotals(plan, ref)
	if err != nil {
		return plan, fmt.Errorf("calculate plan %s: %w", plan.PlanID, err)
	}
	plan.Totals = totals
	return plan, nil
}

// GlucoseInfusionRate converts a glucose volume in ml/kg/day at the given
// percent concentration to mg/kg/min.
func GlucoseInfusionRate(concentration string, volume float64) (float64, error) {
	percent, err := ParseConcentration(concentration)
	if err != nil {
		return 0, err
	}
	mgPerML := percent * 10
	return mgPerML * volume / minutesPerDay, nil
}

// ParseConcentration extracts the number from a label such as "12.5%".
func ParseConcentration(label string) (float64, error) {
	s := strings.TrimSpace(label)
	if !strings.HasSuffix(s, "%") {
		return 0, fmt.Errorf("%w: %q has no %% suffix", ErrInvalidConcentration, label)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "%")), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidConcentration, label)
	}
	return v, nil
}

// LookupMisses lists the prescribed solutions that have a volume but no entry
// in the reference tables. They contribute zero to the totals; the list
// exists so callers can log it.
func LookupMisses(plan NutritionPlan, ref *ReferenceData) []string {
	if ref == nil {
		return nil
	}
	var misses []string
	if plan.TPNVolume > 0 {
		if _, ok := ref.TPNCompositions[plan.TPNType]; !ok {
			misses = append(misses, "tpn:"+plan.TPNType)
		}
	}
	if plan.LipidVolume > 0 {
		if _, ok := ref.LipidSolutions[plan.LipidType]; !ok {
			misses = append(misses, "lipid:"+plan.LipidType)
		}
	}
	if plan.GlucoseVolume > 0 {
		if _, ok := ref.GlucoseSolutions[plan.GlucoseConcentration]; !ok {
			misses = append(misses, "glucose:"+plan.GlucoseConcentration)
		}
	}
	return misses
}

// MacronutrientRequirements are the target ranges used by the
// recommendation engine.
type MacronutrientRequirements struct {
	GlucoseMgKgMin Range `json:"glucose_mg_kg_min"`
	ProteinGKgDay  Range `json:"protein_g_kg_day"`
	FatGKgDay      Range `json:"fat_g_kg_day"`
}

var macronutrientTable = map[WeightCategory]MacronutrientRequirements{
	WeightPrematureLT1000g: {
		GlucoseMgKgMin: Range{Min: 4, Max: 12},
		ProteinGKgDay:  Range{Min: 2.5, Max: 3.5},
		FatGKgDay:      Range{Min: 2.5, Max: 3.5},
	},
	WeightPremature1000To1500g: {
		GlucoseMgKgMin: Range{Min: 4, Max: 12},
		ProteinGKgDay:  Range{Min: 2.5, Max: 3.5},
		FatGKgDay:      Range{Min: 2.5, Max: 3.5},
	},
	WeightPrematureGT1500g: {
		GlucoseMgKgMin: Range{Min: 4, Max: 12},
		ProteinGKgDay:  Range{Min: 2.0, Max: 3.0},
		FatGKgDay:      Range{Min: 2.0, Max: 3.0},
	},
	WeightTerm: {
		GlucoseMgKgMin: Range{Min: 2.5, Max: 5.0},
		ProteinGKgDay:  Range{Min: 1.5, Max: 2.5},
		FatGKgDay:      Range{Min: 1.0, Max: 3.0},
	},
}

// MacronutrientRequirementsFor returns the targets for a patient. They
// depend on the weight category only.
func MacronutrientRequirementsFor(p Patient) MacronutrientRequirements {
	return macronutrientTable[p.WeightCategory()]
}
