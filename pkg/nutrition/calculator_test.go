package nutrition

import (
	"errors"
	"testing"
)

func TestFluidRequirement_SinglePhototherapy(t *testing.T) {
	got := FluidRequirement(extremelyPretermPatient(), testReference())
	if got != (Range{Min: 130, Max: 160}) {
		t.Errorf("expected {130 160}, got %+v", got)
	}
}

func TestFluidRequirement_DoublePhototherapy(t *testing.T) {
	p := NewPatient(PatientFields{BirthWeight: 3200, CurrentWeight: 3150, PostnatalAge: 2, Phototherapy: PhototherapyDouble})
	got := FluidRequirement(p, testReference())
	if got != (Range{Min: 70, Max: 100}) {
		t.Errorf("expected {70 100}, got %+v", got)
	}
}

func TestFluidRequirement_NoPhototherapy(t *testing.T) {
	p := NewPatient(PatientFields{BirthWeight: 3200, PostnatalAge: 1})
	got := FluidRequirement(p, testReference())
	if got != (Range{Min: 40, Max: 60}) {
		t.Errorf("expected {40 60}, got %+v", got)
	}
}

func TestFluidRequirement_MissingPairIsZero(t *testing.T) {
	p := NewPatient(PatientFields{BirthWeight: 1800, PostnatalAge: 2, Phototherapy: PhototherapySingle})
	got := FluidRequirement(p, testReference())
	if got != (Range{}) {
		t.Errorf("expected zero range for missing pair, got %+v", got)
	}
}

func TestFluidRequirement_NilReference(t *testing.T) {
	if got := FluidRequirement(extremelyPretermPatient(), nil); got != (Range{}) {
		t.Errorf("expected zero range, got %+v", got)
	}
}

func TestCalculateTotals_StandardPlan(t *testing.T) {
	totals, err := CalculateTotals(standardPlan(), testReference())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	approx(t, "energy", totals.Energy, 0.29*80+1.8*20+0.4*20)
	approx(t, "protein", totals.Protein, 0.0743*80)
	approx(t, "carbohydrate", totals.Carbohydrate, 0.1*20)
	approx(t, "fat", totals.Fat, 0.2*20)
	approx(t, "sodium", totals.Sodium, 0.0543*80)
	approx(t, "potassium", totals.Potassium, 0.0714*80)
	approx(t, "calcium", totals.Calcium, 0.0257*80)
	approx(t, "phosphate", totals.Phosphate, 0.0343*80)
	approx(t, "magnesium", totals.Magnesium, 0.00429*80)
	approx(t, "gir", totals.GlucoseInfusionRate, 2000.0/1440.0)
}

func TestCalculateTotals_UnknownTPNTypeContributesZero(t *testing.T) {
	plan := NutritionPlan{TPNType: "Mystery-mix", TPNVolume: 80}
	totals, err := CalculateTotals(plan, testReference())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if totals != (Totals{}) {
		t.Errorf("expected zero totals, got %+v", totals)
	}
}

func TestCalculateTotals_ZeroVolumesSkipLookup(t *testing.T) {
	plan := NutritionPlan{TPNType: "NICU-mix", LipidType: "Intralipid_20%", GlucoseConcentration: "10%"}
	totals, err := CalculateTotals(plan, testReference())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if totals != (Totals{}) {
		t.Errorf("expected zero totals, got %+v", totals)
	}
}

func TestCalculateTotals_InvalidConcentration(t *testing.T) {
	ref := testReference()
	ref.GlucoseSolutions["ten"] = GlucoseComposition{EnergyKcalPerML: 0.4, CarbohydrateGPerML: 0.1}
	_, err := CalculateTotals(NutritionPlan{GlucoseConcentration: "ten", GlucoseVolume: 20}, ref)
	if !errors.Is(err, ErrInvalidConcentration) {
		t.Fatalf("expected ErrInvalidConcentration, got %v", err)
	}
}

func TestCalculateTotals_UnknownConcentrationIsNotParsed(t *testing.T) {
	totals, err := CalculateTotals(NutritionPlan{GlucoseConcentration: "bogus", GlucoseVolume: 20}, testReference())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if totals.GlucoseInfusionRate != 0 {
		t.Errorf("expected zero GIR, got %v", totals.GlucoseInfusionRate)
	}
}

func TestCalculateNutritionValues_Idempotent(t *testing.T) {
	ref := testReference()
	first, err := CalculateNutritionValues(standardPlan(), ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := CalculateNutritionValues(first, ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Totals != second.Totals {
		t.Errorf("totals changed between runs: %+v vs %+v", first.Totals, second.Totals)
	}
}

func TestCalculateNutritionValues_ResetsStaleTotals(t *testing.T) {
	plan := NutritionPlan{PlanID: "NP-stale", Totals: Totals{Energy: 500, GlucoseInfusionRate: 9}}
	got, err := CalculateNutritionValues(plan, testReference())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Totals != (Totals{}) {
		t.Errorf("expected totals reset to zero, got %+v", got.Totals)
	}
	if plan.Totals.Energy != 500 {
		t.Error("input plan should not be modified")
	}
}

func TestCalculateNutritionValues_WrapsPlanID(t *testing.T) {
	ref := testReference()
	ref.GlucoseSolutions["x"] = GlucoseComposition{}
	_, err := CalculateNutritionValues(NutritionPlan{PlanID: "NP9", GlucoseConcentration: "x", GlucoseVolume: 1}, ref)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrInvalidConcentration) {
		t.Errorf("expected wrapped ErrInvalidConcentration, got %v", err)
	}
}

func TestGlucoseInfusionRate(t *testing.T) {
	gir, err := GlucoseInfusionRate("10%", 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	approx(t, "gir", gir, 10*10*20/1440.0)

	gir, err = GlucoseInfusionRate("12.5%", 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	approx(t, "gir", gir, 12.5*10*60/1440.0)
}

func TestParseConcentration(t *testing.T) {
	for label, want := range map[string]float64{"5%": 5, "12.5%": 12.5, " 25 %": 25} {
		got, err := ParseConcentration(label)
		if err != nil {
			t.Errorf("ParseConcentration(%q): unexpected error: %v", label, err)
			continue
		}
		if got != want {
			t.Errorf("ParseConcentration(%q) = %v, want %v", label, got, want)
		}
	}
	for _, label := range []string{"10", "abc%", "%", ""} {
		if _, err := ParseConcentration(label); !errors.Is(err, ErrInvalidConcentration) {
			t.Errorf("ParseConcentration(%q): expected ErrInvalidConcentration, got %v", label, err)
		}
	}
}

func TestParenteralAndTotalFluid(t *testing.T) {
	plan := standardPlan()
	if plan.ParenteralVolume() != 120 {
		t.Errorf("expected parenteral volume 120, got %v", plan.ParenteralVolume())
	}
	if plan.TotalFluid() != 150 {
		t.Errorf("expected total fluid 150, got %v", plan.TotalFluid())
	}
}

func TestLookupMisses(t *testing.T) {
	plan := NutritionPlan{
		TPNType: "Mystery-mix", TPNVolume: 10,
		LipidType: "Intralipid_20%", LipidVolume: 5,
		GlucoseConcentration: "11%", GlucoseVolume: 5,
	}
	misses := LookupMisses(plan, testReference())
	if len(misses) != 2 {
		t.Fatalf("expected 2 misses, got %v", misses)
	}
	if misses[0] != "tpn:Mystery-mix" || misses[1] != "glucose:11%" {
		t.Errorf("unexpected misses %v", misses)
	}
}

func TestMacronutrientRequirementsFor(t *testing.T) {
	cases := map[int]MacronutrientRequirements{
		800:  {GlucoseMgKgMin: Range{4, 12}, ProteinGKgDay: Range{2.5, 3.5}, FatGKgDay: Range{2.5, 3.5}},
		1200: {GlucoseMgKgMin: Range{4, 12}, ProteinGKgDay: Range{2.5, 3.5}, FatGKgDay: Range{2.5, 3.5}},
		2000: {GlucoseMgKgMin: Range{4, 12}, ProteinGKgDay: Range{2.0, 3.0}, FatGKgDay: Range{2.0, 3.0}},
		3000: {GlucoseMgKgMin: Range{2.5, 5.0}, ProteinGKgDay: Range{1.5, 2.5}, FatGKgDay: Range{1.0, 3.0}},
	}
	for grams, want := range cases {
		p := NewPatient(PatientFields{BirthWeight: grams, PostnatalAge: 10})
		if got := MacronutrientRequirementsFor(p); got != want {
			t.Errorf("weight %d: got %+v, want %+v", grams, got, want)
		}
	}
}
