package nicu

import (
	"context"
	"sync"

	"github.com/nicu/fluidcalc/pkg/nutrition"
	"github.com/nicu/fluidcalc/pkg/pagination"
)

// Patients and plans live only for the lifetime of the process. Stored
// values are copied in and out so callers never share memory with the store.

type patientRepoMemory struct {
	mu    sync.RWMutex
	byID  map[string]nutrition.Patient
	order []string
}

func NewPatientRepoMemory() PatientRepository {
	return &patientRepoMemory{byID: make(map[string]nutrition.Patient)}
}

func (r *patientRepoMemory) Save(_ context.Context, p *nutrition.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[p.ID]; !ok {
		r.order = append(r.order, p.ID)
	}
	r.byID[p.ID] = *p
	return nil
}

func (r *patientRepoMemory) GetByID(_ context.Context, id string) (*nutrition.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *patientRepoMemory) List(_ context.Context, limit, offset int) ([]*nutrition.Patient, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	start, end := pagination.Params{Limit: limit, Offset: offset}.Bounds(len(r.order))
	out := make([]*nutrition.Patient, 0, end-start)
	for _, id := range r.order[start:end] {
		p := r.byID[id]
		out = append(out, &p)
	}
	return out, len(r.order), nil
}

type planRepoMemory struct {
	mu        sync.RWMutex
	byID      map[string]nutrition.NutritionPlan
	byPatient map[string][]string
}

func NewPlanRepoMemory() PlanRepository {
	return &planRepoMemory{
		byID:      make(map[string]nutrition.NutritionPlan),
		byPatient: make(map[string][]string),
	}
}

func (r *planRepoMemory) Create(_ context.Context, p *nutrition.NutritionPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[p.PlanID]; ok {
		return ErrConflict
	}
	r.byID[p.PlanID] = *p
	r.byPatient[p.PatientID] = append(r.byPatient[p.PatientID], p.PlanID)
	return nil
}

func (r *planRepoMemory) GetByID(_ context.Context, id string) (*nutrition.NutritionPlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *planRepoMemory) Update(_ context.Context, p *nutrition.NutritionPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[p.PlanID]; !ok {
		return ErrNotFound
	}
	r.byID[p.PlanID] = *p
	return nil
}

func (r *planRepoMemory) ListByPatient(_ context.Context, patientID string, limit, offset int) ([]*nutrition.NutritionPlan, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := r.byPatient[patientID]
	start, end := pagination.Params{Limit: limit, Offset: offset}.Bounds(len(ids))
	out := make([]*nutrition.NutritionPlan, 0, end-start)
	for _, id := range ids[start:end] {
		p := r.byID[id]
		out = append(out, &p)
	}
	return out, len(ids), nil
}
