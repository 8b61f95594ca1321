package nutrition

// Range is an inclusive min/max pair. Units depend on where it is used.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// TPNComposition holds per-ml nutrient densities of a TPN mixture.
type TPNComposition struct {
	EnergyKcalPerML    float64 `json:"energy_kcal_per_ml"`
	ProteinGPerML      float64 `json:"protein_g_per_ml"`
	CarbohydrateGPerML float64 `json:"carbohydrate_g_per_ml"`
	FatGPerML          float64 `json:"fat_g_per_ml"`
	SodiumMmolPerML    float64 `json:"sodium_mmol_per_ml"`
	PotassiumMmolPerML float64 `json:"potassium_mmol_per_ml"`
	CalciumMmolPerML   float64 `json:"calcium_mmol_per_ml"`
	PhosphateMmolPerML float64 `json:"phosphate_mmol_per_ml"`
	MagnesiumMmolPerML float64 `json:"magnesium_mmol_per_ml"`
}

// LipidComposition holds per-ml densities of a lipid emulsion.
type LipidComposition struct {
	EnergyKcalPerML float64 `json:"energy_kcal_per_ml"`
	FatGPerML       float64 `json:"fat_g_per_ml"`
}

// GlucoseComposition holds per-ml densities of a glucose solution.
type GlucoseComposition struct {
	EnergyKcalPerML    float64 `json:"energy_kcal_per_ml"`
	CarbohydrateGPerML float64 `json:"carbohydrate_g_per_ml"`
}

// ReferenceData is the set of lookup tables every calculation reads from.
// It is built once at startup and must not be mutated afterwards; a single
// instance is shared by all requests.
type ReferenceData struct {
	// FluidRequirements is keyed by weight category, then age category.
	FluidRequirements map[WeightCategory]map[AgeCategory]Range
	// PhototherapyAdjustments is keyed by the lower-cased intensity label.
	PhototherapyAdjustments map[string]Range
	TPNCompositions         map[string]TPNComposition
	LipidSolutions          map[string]LipidComposition
	GlucoseSolutions        map[string]GlucoseComposition
}

// NewReferenceData returns an empty, non-nil set of tables.
func NewReferenceData() *ReferenceData {
	return &ReferenceData{
		FluidRequirements:       make(map[WeightCategory]map[AgeCategory]Range),
		PhototherapyAdjustments: make(map[string]Range),
		TPNCompositions:         make(map[string]TPNComposition),
		LipidSolutions:          make(map[string]LipidComposition),
		GlucoseSolutions:        make(map[string]GlucoseComposition),
	}
}

// SetFluidRequirement registers the base range for a weight/age pair.
func (r *ReferenceData) SetFluidRequirement(w WeightCategory, a AgeCategory, rng Range) {
	byAge, ok := r.FluidRequirements[w]
	if !ok {
		byAge = make(map[AgeCategory]Range)
		r.FluidRequirements[w] = byAge
	}
	byAge[a] = rng
}

func (r *ReferenceData) fluidRequirement(w WeightCategory, a AgeCategory) (Range, bool) {
	if r == nil {
		return Range{}, false
	}
	byAge, ok := r.FluidRequirements[w]
	if !ok {
		return Range{}, false
	}
	rng, ok := byAge[a]
	return rng, ok
}
