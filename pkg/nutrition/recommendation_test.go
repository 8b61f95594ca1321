package nutrition

import (
	"reflect"
	"testing"
)

func TestGenerateRecommendations_StandardPlan(t *testing.T) {
	ref := testReference()
	plan, err := CalculateNutritionValues(standardPlan(), ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := GenerateRecommendations(extremelyPretermPatient(), plan, ref)
	want := []string{
		"Increase glucose infusion rate to at least 4 mg/kg/min (current: 1.39 mg/kg/min)",
		"Consider reducing protein intake to maximum 3.5 g/kg/day (current: 5.94 g/kg/day)",
		"Consider reducing fat intake to maximum 3.5 g/kg/day (current: 4.00 g/kg/day)",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("recommendations mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestGenerateRecommendations_OrderAndFluidLow(t *testing.T) {
	p := NewPatient(PatientFields{BirthWeight: 3200, PostnatalAge: 1, ClinicalCondition: ConditionSepsis})
	plan := NutritionPlan{EnteralVolume: 30}
	got := GenerateRecommendations(p, plan, testReference())
	want := []string{
		"Increase total fluid intake to at least 40 ml/kg/day (current: 30 ml/kg/day)",
		"Increase glucose infusion rate to at least 2.5 mg/kg/min (current: 0.00 mg/kg/min)",
		"Increase protein intake to at least 1.5 g/kg/day (current: 0.00 g/kg/day)",
		"Increase fat intake to at least 1 g/kg/day (current: 0.00 g/kg/day)",
		SepsisAdvisory,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("recommendations mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestGenerateRecommendations_FluidHigh(t *testing.T) {
	p := NewPatient(PatientFields{BirthWeight: 3200, PostnatalAge: 1})
	plan := NutritionPlan{EnteralVolume: 60.5, Totals: Totals{GlucoseInfusionRate: 3, Protein: 2, Fat: 2}}
	got := GenerateRecommendations(p, plan, testReference())
	want := []string{"Consider reducing total fluid intake to maximum 60 ml/kg/day (current: 60.5 ml/kg/day)"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("recommendations mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestGenerateRecommendations_WithinRangeIsEmpty(t *testing.T) {
	p := NewPatient(PatientFields{BirthWeight: 3200, PostnatalAge: 1})
	plan := NutritionPlan{EnteralVolume: 50, Totals: Totals{GlucoseInfusionRate: 2.5, Protein: 2.5, Fat: 1}}
	got := GenerateRecommendations(p, plan, testReference())
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil list, got %#v", got)
	}
}

func TestGenerateRecommendations_MissingFluidPairFailsOpen(t *testing.T) {
	p := NewPatient(PatientFields{BirthWeight: 1800, PostnatalAge: 2})
	plan := NutritionPlan{EnteralVolume: 30, Totals: Totals{GlucoseInfusionRate: 5, Protein: 2.5, Fat: 2.5}}
	got := GenerateRecommendations(p, plan, testReference())
	want := []string{"Consider reducing total fluid intake to maximum 0 ml/kg/day (current: 30 ml/kg/day)"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("recommendations mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestGenerateRecommendations_ConditionAdvisories(t *testing.T) {
	ref := testReference()
	plan := NutritionPlan{EnteralVolume: 50, Totals: Totals{GlucoseInfusionRate: 2.5, Protein: 2.5, Fat: 1}}

	sepsis := NewPatient(PatientFields{BirthWeight: 3200, PostnatalAge: 1, ClinicalCondition: ConditionSepsis})
	if got := GenerateRecommendations(sepsis, plan, ref); !reflect.DeepEqual(got, []string{SepsisAdvisory}) {
		t.Errorf("sepsis: got %q", got)
	}

	hyper := NewPatient(PatientFields{BirthWeight: 3200, PostnatalAge: 1, ClinicalCondition: ConditionHyperglycemia})
	if got := GenerateRecommendations(hyper, plan, ref); !reflect.DeepEqual(got, []string{HyperglycemiaAdvisory}) {
		t.Errorf("hyperglycemia: got %q", got)
	}

	other := NewPatient(PatientFields{BirthWeight: 3200, PostnatalAge: 1, ClinicalCondition: "Jaundice"})
	if got := GenerateRecommendations(other, plan, ref); len(got) != 0 {
		t.Errorf("unrecognized condition should add nothing, got %q", got)
	}
}

func TestFormatNumber(t *testing.T) {
	cases := map[float64]string{130: "130", 2.5: "2.5", 0.125: "0.125", 150.25: "150.25"}
	for in, want := range cases {
		if got := formatNumber(in); got != want {
			t.Errorf("formatNumber(%v) = %q, want %q", in, got, want)
		}
	}
}
