package nicu

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nicu/fluidcalc/pkg/nutrition"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrInvalidInput = errors.New("invalid input")
)

// Service resolves patient and plan ids and runs the nutrition engine
// against the shared reference tables.
type Service struct {
	patients PatientRepository
	plans    PlanRepository
	ref      *nutrition.ReferenceData
	logger   zerolog.Logger

	planLocks keyedMutex
	now       func() time.Time
}

func NewService(patients PatientRepository, plans PlanRepository, ref *nutrition.ReferenceData, logger zerolog.Logger) *Service {
	return &Service{
		patients: patients,
		plans:    plans,
		ref:      ref,
		logger:   logger.With().Str("component", "nicu-service").Logger(),
		now:      time.Now,
	}
}

// Reference returns the tables the service calculates with.
func (s *Service) Reference() *nutrition.ReferenceData {
	return s.ref
}

// -- Patients --

func (s *Service) CreatePatient(ctx context.Context, req PatientRequest) (*nutrition.Patient, error) {
	fields, err := req.Fields()
	if err != nil {
		return nil, err
	}
	if fields.ID == "" {
		fields.ID = "P-" + shortID(8)
	}
	p := nutrition.NewPatient(fields)
	if !p.ClinicalCondition.Recognized() {
		s.logger.Debug().Str("patient_id", p.ID).Str("condition", string(p.ClinicalCondition)).
			Msg("clinical condition has no effect on recommendations")
	}
	if err := s.patients.Save(ctx, &p); err != nil {
		return nil, fmt.Errorf("save patient %s: %w", p.ID, err)
	}
	s.logger.Info().Str("patient_id", p.ID).
		Str("weight_category", string(p.WeightCategory())).
		Str("age_category", string(p.PostnatalAgeCategory())).
		Msg("patient registered")
	return &p, nil
}

func (s *Service) GetPatient(ctx context.Context, id string) (*nutrition.Patient, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("patient %s: %w", id, err)
	}
	return p, nil
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*nutrition.Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}

// FluidRequirement returns the patient's daily fluid range. A {0, 0} range
// means the reference tables have no entry for the patient's categories.
func (s *Service) FluidRequirement(ctx context.Context, patientID string) (nutrition.Range, error) {
	p, err := s.GetPatient(ctx, patientID)
	if err != nil {
		return nutrition.Range{}, err
	}
	rng := nutrition.FluidRequirement(*p, s.ref)
	if rng == (nutrition.Range{}) {
		s.logger.Warn().Str("patient_id", p.ID).
			Str("weight_category", string(p.WeightCategory())).
			Str("age_category", string(p.PostnatalAgeCategory())).
			Msg("no fluid requirement in reference tables")
	}
	return rng, nil
}

// Summary returns a patient with its categories and fluid range.
func (s *Service) Summary(ctx context.Context, patientID string) (*PatientSummary, error) {
	p, err := s.GetPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	c := nutrition.Classify(*p)
	return &PatientSummary{
		Patient:           *p,
		WeightCategory:    c.WeightCategory,
		AgeCategory:       c.AgeCategory,
		FluidRequirements: nutrition.FluidRequirement(*p, s.ref),
	}, nil
}

// -- Nutrition plans --

// CreatePlan stores a new, uncalculated plan for an existing patient.
func (s *Service) CreatePlan(ctx context.Context, req PlanRequest) (*nutrition.NutritionPlan, error) {
	plan, err := req.Plan(s.now())
	if err != nil {
		return nil, err
	}
	if _, err := s.GetPatient(ctx, plan.PatientID); err != nil {
		return nil, err
	}
	plan.PlanID = fmt.Sprintf("NP-%s-%s-%s", plan.PatientID, plan.Date.Format("20060102"), shortID(4))
	if err := s.plans.Create(ctx, &plan); err != nil {
		return nil, fmt.Errorf("create plan %s: %w", plan.PlanID, err)
	}
	s.logger.Info().Str("plan_id", plan.PlanID).Str("patient_id", plan.PatientID).Msg("nutrition plan created")
	return &plan, nil
}

func (s *Service) GetPlan(ctx context.Context, id string) (*nutrition.NutritionPlan, error) {
	p, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("nutrition plan %s: %w", id, err)
	}
	return p, nil
}

func (s *Service) ListPlansByPatient(ctx context.Context, patientID string, limit, offset int) ([]*nutrition.NutritionPlan, int, error) {
	if _, err := s.GetPatient(ctx, patientID); err != nil {
		return nil, 0, err
	}
	return s.plans.ListByPatient(ctx, patientID, limit, offset)
}

// Calculate recomputes and stores a plan's totals. Calculations for the
// same plan are serialised.
func (s *Service) Calculate(ctx context.Context, planID string) (*nutrition.NutritionPlan, error) {
	unlock := s.planLocks.lock(planID)
	defer unlock()

	plan, err := s.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	if misses := nutrition.LookupMisses(*plan, s.ref); len(misses) > 0 {
		s.logger.Warn().Str("plan_id", planID).Strs("missing", misses).
			Msg("prescribed solutions not in reference tables; counted as zero")
	}

	calculated, err := nutrition.CalculateNutritionValues(*plan, s.ref)
	if err != nil {
		return nil, err
	}
	if err := s.plans.Update(ctx, &calculated); err != nil {
		return nil, fmt.Errorf("store plan %s: %w", planID, err)
	}

	s.logger.Debug().Str("plan_id", planID).
		Float64("energy", calculated.Totals.Energy).
		Float64("protein", calculated.Totals.Protein).
		Float64("gir", calculated.Totals.GlucoseInfusionRate).
		Msg("nutrition values calculated")
	return &calculated, nil
}

// calculateWithPatient recalculates a plan and resolves its patient.
func (s *Service) calculateWithPatient(ctx context.Context, planID string) (*nutrition.NutritionPlan, *nutrition.Patient, error) {
	plan, err := s.Calculate(ctx, planID)
	if err != nil {
		return nil, nil, err
	}
	patient, err := s.GetPatient(ctx, plan.PatientID)
	if err != nil {
		return nil, nil, err
	}
	return plan, patient, nil
}

// Recommendations recalculates the plan and compares it with the patient's
// targets.
func (s *Service) Recommendations(ctx context.Context, planID string) ([]string, error) {
	plan, patient, err := s.calculateWithPatient(ctx, planID)
	if err != nil {
		return nil, err
	}
	return nutrition.GenerateRecommendations(*patient, *plan, s.ref), nil
}

func (s *Service) FeedingSchedule(ctx context.Context, planID string) ([]nutrition.FeedingSlot, error) {
	plan, err := s.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	return nutrition.GenerateFeedingSchedule(*plan), nil
}

// Evaluate recalculates a plan and returns everything shown after submission.
func (s *Service) Evaluate(ctx context.Context, planID string) (*PlanResult, error) {
	plan, patient, err := s.calculateWithPatient(ctx, planID)
	if err != nil {
		return nil, err
	}
	return &PlanResult{
		PlanID:    plan.PlanID,
		PatientID: plan.PatientID,
		CalculatedValues: CalculatedValues{
			Totals:                plan.Totals,
			TotalParenteralVolume: plan.ParenteralVolume(),
			TotalFluid:            plan.TotalFluid(),
		},
		Recommendations: nutrition.GenerateRecommendations(*patient, *plan, s.ref),
		FeedingSchedule: nutrition.GenerateFeedingSchedule(*plan),
	}, nil
}

// Export recalculates a plan and assembles its export record.
func (s *Service) Export(ctx context.Context, planID string) (*nutrition.Export, error) {
	plan, patient, err := s.calculateWithPatient(ctx, planID)
	if err != nil {
		return nil, err
	}
	exp, err := nutrition.BuildExport(*patient, *plan, s.ref)
	if err != nil {
		return nil, err
	}
	return &exp, nil
}

func shortID(n int) string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:n]
}

// keyedMutex hands out one mutex per key.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
