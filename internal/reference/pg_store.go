package reference

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/nicu/fluidcalc/internal/platform/db"
	"github.com/nicu/fluidcalc/pkg/nutrition"
)

// ErrNotSeeded is returned by PGStore.Load when the fluid table is empty.
var ErrNotSeeded = errors.New("reference tables are empty; run \"nicu-server reference seed\"")

// Pool is what PGStore needs from a connection pool. *pgxpool.Pool
// satisfies it.
type Pool interface {
	db.Querier
	db.Beginner
}

// PGStore keeps the reference tables in Postgres (ref_* tables created by
// migration 001).
type PGStore struct {
	pool   Pool
	logger zerolog.Logger
}

func NewPGStore(pool Pool, logger zerolog.Logger) *PGStore {
	return &PGStore{
		pool:   pool,
		logger: logger.With().Str("component", "reference-store").Logger(),
	}
}

func (s *PGStore) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, s.pool)
}

// Load reads every ref_* table into a fresh ReferenceData.
func (s *PGStore) Load(ctx context.Context) (*nutrition.ReferenceData, error) {
	ref := nutrition.NewReferenceData()

	if err := s.loadFluid(ctx, ref); err != nil {
		return nil, err
	}
	if len(ref.FluidRequirements) == 0 {
		return nil, ErrNotSeeded
	}
	if err := s.loadPhototherapy(ctx, ref); err != nil {
		return nil, err
	}
	if err := s.loadTPN(ctx, ref); err != nil {
		return nil, err
	}
	if err := s.loadLipids(ctx, ref); err != nil {
		return nil, err
	}
	if err := s.loadGlucose(ctx, ref); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int("weight_categories", len(ref.FluidRequirements)).
		Int("tpn", len(ref.TPNCompositions)).
		Int("lipids", len(ref.LipidSolutions)).
		Int("glucose", len(ref.GlucoseSolutions)).
		Msg("reference data loaded from postgres")
	return ref, nil
}

func (s *PGStore) loadFluid(ctx context.Context, ref *nutrition.ReferenceData) error {
	rows, err := s.conn(ctx).Query(ctx,
		`SELECT weight_category, age_category, min_ml_kg_day, max_ml_kg_day FROM ref_fluid_requirement`)
	if err != nil {
		return fmt.Errorf("query ref_fluid_requirement: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var wKey, aKey string
		var rng nutrition.Range
		if err := rows.Scan(&wKey, &aKey, &rng.Min, &rng.Max); err != nil {
			return fmt.Errorf("scan ref_fluid_requirement: %w", err)
		}
		w, err := ParseWeightCategory(wKey)
		if err != nil {
			return fmt.Errorf("ref_fluid_requirement: %w", err)
		}
		a, err := ParseAgeCategory(aKey)
		if err != nil {
			return fmt.Errorf("ref_fluid_requirement: %w", err)
		}
		ref.SetFluidRequirement(w, a, rng)
	}
	return rows.Err()
}

func (s *PGStore) loadPhototherapy(ctx context.Context, ref *nutrition.ReferenceData) error {
	rows, err := s.conn(ctx).Query(ctx,
		`SELECT intensity, min_ml_kg_day, max_ml_kg_day FROM ref_phototherapy_adjustment`)
	if err != nil {
		return fmt.Errorf("query ref_phototherapy_adjustment: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var intensity string
		var rng nutrition.Range
		if err := rows.Scan(&intensity, &rng.Min, &rng.Max); err != nil {
			return fmt.Errorf("scan ref_phototherapy_adjustment: %w", err)
		}
		ref.PhototherapyAdjustments[intensity] = rng
	}
	return rows.Err()
}

func (s *PGStore) loadTPN(ctx context.Context, ref *nutrition.ReferenceData) error {
	rows, err := s.conn(ctx).Query(ctx, `
		SELECT name, energy_kcal_per_ml, protein_g_per_ml, carbohydrate_g_per_ml, fat_g_per_ml,
			sodium_mmol_per_ml, potassium_mmol_per_ml, calcium_mmol_per_ml,
			phosphate_mmol_per_ml, magnesium_mmol_per_ml
		FROM ref_tpn_composition`)
	if err != nil {
		return fmt.Errorf("query ref_tpn_composition: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var c nutrition.TPNComposition
		if err := rows.Scan(&name, &c.EnergyKcalPerML, &c.ProteinGPerML, &c.CarbohydrateGPerML, &c.FatGPerML,
			&c.SodiumMmolPerML, &c.PotassiumMmolPerML, &c.CalciumMmolPerML,
			&c.PhosphateMmolPerML, &c.MagnesiumMmolPerML); err != nil {
			return fmt.Errorf("scan ref_tpn_composition: %w", err)
		}
		ref.TPNCompositions[name] = c
	}
	return rows.Err()
}

func (s *PGStore) loadLipids(ctx context.Context, ref *nutrition.ReferenceData) error {
	rows, err := s.conn(ctx).Query(ctx, `SELECT name, energy_kcal_per_ml, fat_g_per_ml FROM ref_lipid_solution`)
	if err != nil {
		return fmt.Errorf("query ref_lipid_solution: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var c nutrition.LipidComposition
		if err := rows.Scan(&name, &c.EnergyKcalPerML, &c.FatGPerML); err != nil {
			return fmt.Errorf("scan ref_lipid_solution: %w", err)
		}
		ref.LipidSolutions[name] = c
	}
	return rows.Err()
}

func (s *PGStore) loadGlucose(ctx context.Context, ref *nutrition.ReferenceData) error {
	rows, err := s.conn(ctx).Query(ctx,
		`SELECT concentration, energy_kcal_per_ml, carbohydrate_g_per_ml FROM ref_glucose_solution`)
	if err != nil {
		return fmt.Errorf("query ref_glucose_solution: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var c nutrition.GlucoseComposition
		if err := rows.Scan(&name, &c.EnergyKcalPerML, &c.CarbohydrateGPerML); err != nil {
			return fmt.Errorf("scan ref_glucose_solution: %w", err)
		}
		ref.GlucoseSolutions[name] = c
	}
	return rows.Err()
}

// Seed upserts every entry of ref in a single transaction and returns the
// number of rows written.
func (s *PGStore) Seed(ctx context.Context, ref *nutrition.ReferenceData) (int, error) {
	count := 0
	err := db.WithTx(ctx, s.pool, func(ctx context.Context) error {
		q := s.conn(ctx)

		for w, byAge := range ref.FluidRequirements {
			for a, rng := range byAge {
				if _, err := q.Exec(ctx, `
					INSERT INTO ref_fluid_requirement (weight_category, age_category, min_ml_kg_day, max_ml_kg_day)
					VALUES ($1, $2, $3, $4)
					ON CONFLICT (weight_category, age_category)
					DO UPDATE SET min_ml_kg_day = EXCLUDED.min_ml_kg_day,
						max_ml_kg_day = EXCLUDED.max_ml_kg_day, updated_at = NOW()`,
					string(w), string(a), rng.Min, rng.Max); err != nil {
					return fmt.Errorf("seed fluid requirement %s/%s: %w", w, a, err)
				}
				count++
			}
		}

		for intensity, rng := range ref.PhototherapyAdjustments {
			if _, err := q.Exec(ctx, `
				INSERT INTO ref_phototherapy_adjustment (intensity, min_ml_kg_day, max_ml_kg_day)
				VALUES ($1, $2, $3)
				ON CONFLICT (intensity)
				DO UPDATE SET min_ml_kg_day = EXCLUDED.min_ml_kg_day,
					max_ml_kg_day = EXCLUDED.max_ml_kg_day, updated_at = NOW()`,
				intensity, rng.Min, rng.Max); err != nil {
				return fmt.Errorf("seed phototherapy %s: %w", intensity, err)
			}
			count++
		}

		for name, c := range ref.TPNCompositions {
			if _, err := q.Exec(ctx, `
				INSERT INTO ref_tpn_composition (name, energy_kcal_per_ml, protein_g_per_ml,
					carbohydrate_g_per_ml, fat_g_per_ml, sodium_mmol_per_ml, potassium_mmol_per_ml,
					calcium_mmol_per_ml, phosphate_mmol_per_ml, magnesium_mmol_per_ml)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
				ON CONFLICT (name)
				DO UPDATE SET energy_kcal_per_ml = EXCLUDED.energy_kcal_per_ml,
					protein_g_per_ml = EXCLUDED.protein_g_per_ml,
					carbohydrate_g_per_ml = EXCLUDED.carbohydrate_g_per_ml,
					fat_g_per_ml = EXCLUDED.fat_g_per_ml,
					sodium_mmol_per_ml = EXCLUDED.sodium_mmol_per_ml,
					potassium_mmol_per_ml = EXCLUDED.potassium_mmol_per_ml,
					calcium_mmol_per_ml = EXCLUDED.calcium_mmol_per_ml,
					phosphate_mmol_per_ml = EXCLUDED.phosphate_mmol_per_ml,
					magnesium_mmol_per_ml = EXCLUDED.magnesium_mmol_per_ml,
					updated_at = NOW()`,
				name, c.EnergyKcalPerML, c.ProteinGPerML, c.CarbohydrateGPerML, c.FatGPerML,
				c.SodiumMmolPerML, c.PotassiumMmolPerML, c.CalciumMmolPerML,
				c.PhosphateMmolPerML, c.MagnesiumMmolPerML); err != nil {
				return fmt.Errorf("seed tpn %s: %w", name, err)
			}
			count++
		}

		for name, c := range ref.LipidSolutions {
			if _, err := q.Exec(ctx, `
				INSERT INTO ref_lipid_solution (name, energy_kcal_per_ml, fat_g_per_ml)
				VALUES ($1, $2, $3)
				ON CONFLICT (name)
				DO UPDATE SET energy_kcal_per_ml = EXCLUDED.energy_kcal_per_ml,
					fat_g_per_ml = EXCLUDED.fat_g_per_ml, updated_at = NOW()`,
				name, c.EnergyKcalPerML, c.FatGPerML); err != nil {
				return fmt.Errorf("seed lipid %s: %w", name, err)
			}
			count++
		}

		for name, c := range ref.GlucoseSolutions {
			if _, err := q.Exec(ctx, `
				INSERT INTO ref_glucose_solution (concentration, energy_kcal_per_ml, carbohydrate_g_per_ml)
				VALUES ($1, $2, $3)
				ON CONFLICT (concentration)
				DO UPDATE SET energy_kcal_per_ml = EXCLUDED.energy_kcal_per_ml,
					carbohydrate_g_per_ml = EXCLUDED.carbohydrate_g_per_ml, updated_at = NOW()`,
				name, c.EnergyKcalPerML, c.CarbohydrateGPerML); err != nil {
				return fmt.Errorf("seed glucose %s: %w", name, err)
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info().Int("rows", count).Msg("reference data seeded")
	return count, nil
}
