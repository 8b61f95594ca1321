package reference

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nicu/fluidcalc/pkg/nutrition"
)

func TestDefault(t *testing.T) {
	ref, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}

	for _, w := range nutrition.WeightCategories {
		if len(ref.FluidRequirements[w]) != len(nutrition.AgeCategories) {
			t.Errorf("%s: expected %d age buckets, got %d", w, len(nutrition.AgeCategories), len(ref.FluidRequirements[w]))
		}
	}
	if got := ref.FluidRequirements[nutrition.WeightPrematureLT1000g][nutrition.AgeDay3]; got != (nutrition.Range{Min: 120, Max: 140}) {
		t.Errorf("premature_lt_1000g/day_3 = %+v", got)
	}
	if got := ref.FluidRequirements[nutrition.WeightTerm][nutrition.AgeDay8To14]; got != (nutrition.Range{Min: 140, Max: 170}) {
		t.Errorf("term/day_8_14 = %+v", got)
	}
	if got := ref.PhototherapyAdjustments["double"]; got != (nutrition.Range{Min: 20, Max: 30}) {
		t.Errorf("double phototherapy = %+v", got)
	}
	if ref.TPNCompositions["Samenstelling_B"].SodiumMmolPerML != 0.00714 {
		t.Errorf("unexpected Samenstelling_B sodium %v", ref.TPNCompositions["Samenstelling_B"].SodiumMmolPerML)
	}
	if len(ref.GlucoseSolutions) != 7 {
		t.Errorf("expected 7 glucose solutions, got %d", len(ref.GlucoseSolutions))
	}
	if ref.LipidSolutions["SMOF_20%"].FatGPerML != 0.2 {
		t.Errorf("unexpected SMOF fat %v", ref.LipidSolutions["SMOF_20%"].FatGPerML)
	}
}

func TestDefault_ScenarioFluidRequirement(t *testing.T) {
	ref, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}
	p := nutrition.NewPatient(nutrition.PatientFields{BirthWeight: 950, PostnatalAge: 3, Phototherapy: nutrition.PhototherapySingle})
	if got := nutrition.FluidRequirement(p, ref); got != (nutrition.Range{Min: 130, Max: 160}) {
		t.Errorf("expected {130 160}, got %+v", got)
	}
}

func TestParse_LegacyWeightKeys(t *testing.T) {
	fluid := `{"fluid_requirements": {
		"premature_less_1000g": {"day_1": {"min": 80, "max": 100}},
		"premature_greater_1500g": {"day_1": {"min": 60, "max": 80}},
		"phototherapy_adjustment": {"Single": {"min": 10, "max": 20}}
	}}`
	ref, err := Parse([]byte(fluid), []byte(`{}`), []byte(`{}`))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if got := ref.FluidRequirements[nutrition.WeightPrematureLT1000g][nutrition.AgeDay1]; got.Max != 100 {
		t.Errorf("legacy premature_less_1000g not mapped: %+v", got)
	}
	if got := ref.FluidRequirements[nutrition.WeightPrematureGT1500g][nutrition.AgeDay1]; got.Min != 60 {
		t.Errorf("legacy premature_greater_1500g not mapped: %+v", got)
	}
	if _, ok := ref.PhototherapyAdjustments["single"]; !ok {
		t.Error("phototherapy keys should be lower-cased")
	}
}

func TestParse_UnknownCategory(t *testing.T) {
	cases := []string{
		`{"fluid_requirements": {"giant": {"day_1": {"min": 1, "max": 2}}}}`,
		`{"fluid_requirements": {"term": {"day_99": {"min": 1, "max": 2}}}}`,
	}
	for _, fluid := range cases {
		if _, err := Parse([]byte(fluid), []byte(`{}`), []byte(`{}`)); err == nil {
			t.Errorf("expected error for %s", fluid)
		}
	}
}

func TestParse_Malformed(t *testing.T) {
	good := `{"fluid_requirements": {"term": {"day_1": {"min": 40, "max": 60}}}}`
	if _, err := Parse([]byte(`{`), []byte(`{}`), []byte(`{}`)); err == nil {
		t.Error("expected error for malformed fluid file")
	}
	if _, err := Parse([]byte(`{}`), []byte(`{}`), []byte(`{}`)); err == nil {
		t.Error("expected error for empty fluid table")
	}
	_, err := Parse([]byte(good), []byte(`[]`), []byte(`{}`))
	if err == nil || !strings.Contains(err.Error(), TPNFile) {
		t.Errorf("expected error naming %s, got %v", TPNFile, err)
	}
	_, err = Parse([]byte(good), []byte(`{}`), []byte(`{"glucose_solutions": 3}`))
	if err == nil || !strings.Contains(err.Error(), SolutionFile) {
		t.Errorf("expected error naming %s, got %v", SolutionFile, err)
	}
}

func TestWriteDirLoadDir(t *testing.T) {
	ref, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}
	dir := t.TempDir()
	if err := WriteDir(dir, ref); err != nil {
		t.Fatalf("WriteDir() error: %v", err)
	}
	for _, name := range []string{FluidFile, TPNFile, SolutionFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s to be written: %v", name, err)
		}
	}

	loaded, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir() error: %v", err)
	}
	if loaded.FluidRequirements[nutrition.WeightTerm][nutrition.AgeDay1] != ref.FluidRequirements[nutrition.WeightTerm][nutrition.AgeDay1] {
		t.Error("term/day_1 changed after write and reload")
	}
	if loaded.TPNCompositions["NICU-mix"] != ref.TPNCompositions["NICU-mix"] {
		t.Error("NICU-mix changed after write and reload")
	}
	if loaded.PhototherapyAdjustments["single"] != ref.PhototherapyAdjustments["single"] {
		t.Error("single phototherapy changed after write and reload")
	}
}

func TestLoadDir_MissingFile(t *testing.T) {
	_, err := LoadDir(t.TempDir())
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestParseWeightCategory(t *testing.T) {
	for _, w := range nutrition.WeightCategories {
		got, err := ParseWeightCategory(string(w))
		if err != nil || got != w {
			t.Errorf("ParseWeightCategory(%q) = %q, %v", w, got, err)
		}
	}
}
