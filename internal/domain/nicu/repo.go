package nicu

import (
	"context"

	"github.com/nicu/fluidcalc/pkg/nutrition"
)

// PatientRepository stores patients by id. Save replaces an existing patient
// with the same id.
type PatientRepository interface {
	Save(ctx context.Context, p *nutrition.Patient) error
	GetByID(ctx context.Context, id string) (*nutrition.Patient, error)
	List(ctx context.Context, limit, offset int) ([]*nutrition.Patient, int, error)
}

type PlanRepository interface {
	Create(ctx context.Context, p *nutrition.NutritionPlan) error
	GetByID(ctx context.Context, id string) (*nutrition.NutritionPlan, error)
	Update(ctx context.Context, p *nutrition.NutritionPlan) error
	ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*nutrition.NutritionPlan, int, error)
}
