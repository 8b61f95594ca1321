package reference

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/nicu/fluidcalc/pkg/nutrition"
)

// File names of the three reference tables.
const (
	FluidFile    = "fluid_requirements.json"
	TPNFile      = "tpn_compositions.json"
	SolutionFile = "solution_compositions.json"
)

const phototherapyKey = "phototherapy_adjustment"

//go:embed data/*.json
var embedded embed.FS

// Older table files used these names for two of the weight categories.
var legacyWeightKeys = map[string]nutrition.WeightCategory{
	"premature_less_1000g":    nutrition.WeightPrematureLT1000g,
	"premature_greater_1500g": nutrition.WeightPrematureGT1500g,
}

// FluidDocument is the on-disk layout of fluid_requirements.json. The
// phototherapy deltas live under the "phototherapy_adjustment" key of the
// same map as the weight categories.
type FluidDocument struct {
	FluidRequirements map[string]map[string]nutrition.Range `json:"fluid_requirements"`
}

// SolutionDocument is the on-disk layout of solution_compositions.json.
type SolutionDocument struct {
	GlucoseSolutions map[string]nutrition.GlucoseComposition `json:"glucose_solutions"`
	LipidSolutions   map[string]nutrition.LipidComposition   `json:"lipid_solutions"`
}

// Default returns the tables compiled into the binary.
func Default() (*nutrition.ReferenceData, error) {
	return LoadFS(embedded, "data")
}

// LoadDir reads the three table files from a directory.
func LoadDir(dir string) (*nutrition.ReferenceData, error) {
	return LoadFS(os.DirFS(dir), ".")
}

// LoadFS reads the three table files from dir inside fsys.
func LoadFS(fsys fs.FS, dir string) (*nutrition.ReferenceData, error) {
	read := func(name string) ([]byte, error) {
		b, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return b, nil
	}

	fluid, err := read(FluidFile)
	if err != nil {
		return nil, err
	}
	tpn, err := read(TPNFile)
	if err != nil {
		return nil, err
	}
	solutions, err := read(SolutionFile)
	if err != nil {
		return nil, err
	}
	return Parse(fluid, tpn, solutions)
}

// Parse builds ReferenceData from the raw contents of the three files.
func Parse(fluid, tpn, solutions []byte) (*nutrition.ReferenceData, error) {
	ref := nutrition.NewReferenceData()

	var fd FluidDocument
	if err := json.Unmarshal(fluid, &fd); err != nil {
		return nil, fmt.Errorf("parse %s: %w", FluidFile, err)
	}
	if len(fd.FluidRequirements) == 0 {
		return nil, fmt.Errorf("parse %s: no fluid_requirements", FluidFile)
	}
	for key, byAge := range fd.FluidRequirements {
		if key == phototherapyKey {
			for intensity, rng := range byAge {
				ref.PhototherapyAdjustments[strings.ToLower(intensity)] = rng
			}
			continue
		}
		w, err := ParseWeightCategory(key)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", FluidFile, err)
		}
		for ageKey, rng := range byAge {
			a, err := ParseAgeCategory(ageKey)
			if err != nil {
				return nil, fmt.Errorf("parse %s: %s: %w", FluidFile, key, err)
			}
			ref.SetFluidRequirement(w, a, rng)
		}
	}

	if err := json.Unmarshal(tpn, &ref.TPNCompositions); err != nil {
		return nil, fmt.Errorf("parse %s: %w", TPNFile, err)
	}

	var sd SolutionDocument
	if err := json.Unmarshal(solutions, &sd); err != nil {
		return nil, fmt.Errorf("parse %s: %w", SolutionFile, err)
	}
	for k, v := range sd.GlucoseSolutions {
		ref.GlucoseSolutions[k] = v
	}
	for k, v := range sd.LipidSolutions {
		ref.LipidSolutions[k] = v
	}

	return ref, nil
}

// ParseWeightCategory accepts the current category names and the legacy
// aliases.
func ParseWeightCategory(s string) (nutrition.WeightCategory, error) {
	if w, ok := legacyWeightKeys[s]; ok {
		return w, nil
	}
	for _, w := range nutrition.WeightCategories {
		if string(w) == s {
			return w, nil
		}
	}
	return "", fmt.Errorf("unknown weight category %q", s)
}

// ParseAgeCategory validates a postnatal age category name.
func ParseAgeCategory(s string) (nutrition.AgeCategory, error) {
	for _, a := range nutrition.AgeCategories {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown age category %q", s)
}

// Documents renders ref back into the three on-disk layouts.
func Documents(ref *nutrition.ReferenceData) (FluidDocument, map[string]nutrition.TPNComposition, SolutionDocument) {
	fd := FluidDocument{FluidRequirements: make(map[string]map[string]nutrition.Range)}
	for w, byAge := range ref.FluidRequirements {
		m := make(map[string]nutrition.Range, len(byAge))
		for a, rng := range byAge {
			m[string(a)] = rng
		}
		fd.FluidRequirements[string(w)] = m
	}
	if len(ref.PhototherapyAdjustments) > 0 {
		adj := make(map[string]nutrition.Range, len(ref.PhototherapyAdjustments))
		for k, v := range ref.PhototherapyAdjustments {
			adj[k] = v
		}
		fd.FluidRequirements[phototherapyKey] = adj
	}

	return fd, ref.TPNCompositions, SolutionDocument{
		GlucoseSolutions: ref.GlucoseSolutions,
		LipidSolutions:   ref.LipidSolutions,
	}
}

// WriteDir writes ref to dir as the three JSON files.
func WriteDir(dir string, ref *nutrition.ReferenceData) error {
	fd, tpn, sd := Documents(ref)
	files := map[string]any{FluidFile: fd, TPNFile: tpn, SolutionFile: sd}
	for name, doc := range files {
		b, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("encode %s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), append(b, '\n'), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}
