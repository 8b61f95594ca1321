package nutrition

import (
	"math"
	"testing"
)

// testReference returns a subset of the standard tables large enough for
// the scenarios below.
func testReference() *ReferenceData {
	ref := NewReferenceData()
	ref.SetFluidRequirement(WeightPrematureLT1000g, AgeDay3, Range{Min: 120, Max: 140})
	ref.SetFluidRequirement(WeightPrematureLT1000g, AgeDay15Plus, Range{Min: 140, Max: 160})
	ref.SetFluidRequirement(WeightTerm, AgeDay1, Range{Min: 40, Max: 60})
	ref.SetFluidRequirement(WeightTerm, AgeDay2, Range{Min: 50, Max: 70})
	ref.PhototherapyAdjustments["single"] = Range{Min: 10, Max: 20}
	ref.PhototherapyAdjustments["double"] = Range{Min: 20, Max: 30}
	ref.TPNCompositions["NICU-mix"] = TPNComposition{
		EnergyKcalPerML:    0.29,
		ProteinGPerML:      0.0743,
		SodiumMmolPerML:    0.0543,
		PotassiumMmolPerML: 0.0714,
		CalciumMmolPerML:   0.0257,
		PhosphateMmolPerML: 0.0343,
		MagnesiumMmolPerML: 0.00429,
	}
	ref.LipidSolutions["Intralipid_20%"] = LipidComposition{EnergyKcalPerML: 1.8, FatGPerML: 0.2}
	ref.GlucoseSolutions["10%"] = GlucoseComposition{EnergyKcalPerML: 0.4, CarbohydrateGPerML: 0.1}
	ref.GlucoseSolutions["12.5%"] = GlucoseComposition{EnergyKcalPerML: 0.5, CarbohydrateGPerML: 0.125}
	return ref
}

// extremelyPretermPatient is 950 g on day 3 under single phototherapy.
func extremelyPretermPatient() Patient {
	return NewPatient(PatientFields{
		ID:                    "P001",
		GestationalAgeAtBirth: 26,
		BirthWeight:           950,
		PostnatalAge:          3,
		Phototherapy:          PhototherapySingle,
		ClinicalCondition:     ConditionNormal,
	})
}

func standardPlan() NutritionPlan {
	return NutritionPlan{
		PlanID:                  "NP001",
		PatientID:               "P001",
		TotalFluidTarget:        150,
		EnteralVolume:           30,
		TPNType:                 "NICU-mix",
		TPNVolume:               80,
		LipidType:               "Intralipid_20%",
		LipidVolume:             20,
		GlucoseConcentration:    "10%",
		GlucoseVolume:           20,
		EnteralFeedingType:      "Breast milk",
		EnteralFeedingFrequency: 12,
	}
}

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}
