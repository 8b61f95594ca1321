package nicu

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nicu/fluidcalc/internal/platform/middleware"
	"github.com/nicu/fluidcalc/internal/reference"
	"github.com/nicu/fluidcalc/pkg/nutrition"
	"github.com/nicu/fluidcalc/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	ref := api.Group("/reference", middleware.ETag(middleware.ReferenceCacheConfig()))
	ref.GET("/fluid-requirements", h.GetFluidTable)
	ref.GET("/tpn-compositions", h.GetTPNTable)
	ref.GET("/solution-compositions", h.GetSolutionTable)

	api.POST("/patients", h.CreatePatient)
	api.GET("/patients", h.ListPatients)
	api.GET("/patients/:id", h.GetPatient)
	api.GET("/patients/:id/fluid-requirements", h.GetFluidRequirements)
	api.GET("/patients/:id/nutrition-plans", h.ListPatientPlans)

	api.POST("/nutrition-plans", h.CreatePlan)
	api.GET("/nutrition-plans/:id", h.GetPlan)
	api.POST("/nutrition-plans/:id/calculate", h.CalculatePlan)
	api.GET("/nutrition-plans/:id/recommendations", h.GetRecommendations)
	api.GET("/nutrition-plans/:id/feeding-schedule", h.GetFeedingSchedule)
	api.GET("/nutrition-plans/:id/export", h.ExportPlan)
}

// httpError maps service errors to HTTP status codes.
func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidInput):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, nutrition.ErrInvalidConcentration):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

// -- Reference tables --

func (h *Handler) GetFluidTable(c echo.Context) error {
	fluid, _, _ := reference.Documents(h.svc.Reference())
	return c.JSON(http.StatusOK, fluid)
}

func (h *Handler) GetTPNTable(c echo.Context) error {
	_, tpn, _ := reference.Documents(h.svc.Reference())
	return c.JSON(http.StatusOK, tpn)
}

func (h *Handler) GetSolutionTable(c echo.Context) error {
	_, _, solutions := reference.Documents(h.svc.Reference())
	return c.JSON(http.StatusOK, solutions)
}

// -- Patients --

func (h *Handler) CreatePatient(c echo.Context) error {
	var req PatientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.CreatePatient(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPatient(c echo.Context) error {
	summary, err := h.svc.Summary(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *Handler) ListPatients(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListPatients(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset).WithLinks(c.Request().URL.Path))
}

func (h *Handler) GetFluidRequirements(c echo.Context) error {
	summary, err := h.svc.Summary(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"patient_id":         summary.ID,
		"weight_category":    summary.WeightCategory,
		"age_category":       summary.AgeCategory,
		"phototherapy":       summary.Phototherapy,
		"fluid_requirements": summary.FluidRequirements,
	})
}

func (h *Handler) ListPatientPlans(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListPlansByPatient(c.Request().Context(), c.Param("id"), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset).WithLinks(c.Request().URL.Path))
}

// -- Nutrition plans --

// CreatePlan stores the plan and answers with its evaluation.
func (h *Handler) CreatePlan(c echo.Context) error {
	var req PlanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	plan, err := h.svc.CreatePlan(ctx, req)
	if err != nil {
		return httpError(err)
	}
	result, err := h.svc.Evaluate(ctx, plan.PlanID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, result)
}

func (h *Handler) GetPlan(c echo.Context) error {
	plan, err := h.svc.GetPlan(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, plan)
}

func (h *Handler) CalculatePlan(c echo.Context) error {
	plan, err := h.svc.Calculate(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, plan)
}

func (h *Handler) GetRecommendations(c echo.Context) error {
	recs, err := h.svc.Recommendations(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"plan_id":         c.Param("id"),
		"recommendations": recs,
	})
}

func (h *Handler) GetFeedingSchedule(c echo.Context) error {
	slots, err := h.svc.FeedingSchedule(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"plan_id":          c.Param("id"),
		"feeding_schedule": slots,
	})
}

func (h *Handler) ExportPlan(c echo.Context) error {
	exp, err := h.svc.Export(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, exp)
}
