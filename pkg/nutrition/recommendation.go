package nutrition

import (
	"fmt"
	"strconv"
)

const (
	SepsisAdvisory        = "In sepsis, consider reducing lipid intake and monitoring triglyceride levels"
	HyperglycemiaAdvisory = "In hyperglycemia, consider reducing glucose infusion rate and monitoring blood glucose levels"
)

// GenerateRecommendations compares an already calculated plan against the
// patient's targets. Messages are ordered fluid, glucose, protein, fat and
// then the condition advisory; within one category at most one message is
// produced.
func GenerateRecommendations(p Patient, plan NutritionPlan, ref *ReferenceData) []string {
	recs := []string{}

	fluid := FluidRequirement(p, ref)
	total := plan.TotalFluid()
	if total < fluid.Min {
		recs = append(recs, fmt.Sprintf("Increase total fluid intake to at least %s ml/kg/day (current: %s ml/kg/day)",
			formatNumber(fluid.Min), formatNumber(total)))
	} else if total > fluid.Max {
		recs = append(recs, fmt.Sprintf("Consider reducing total fluid intake to maximum %s ml/kg/day (current: %s ml/kg/day)",
			formatNumber(fluid.Max), formatNumber(total)))
	}

	macro := MacronutrientRequirementsFor(p)
	recs = appendRangeCheck(recs, "glucose infusion rate", "mg/kg/min", plan.Totals.GlucoseInfusionRate, macro.GlucoseMgKgMin)
	recs = appendRangeCheck(recs, "protein intake", "g/kg/day", plan.Totals.Protein, macro.ProteinGKgDay)
	recs = appendRangeCheck(recs, "fat intake", "g/kg/day", plan.Totals.Fat, macro.FatGKgDay)

	switch p.ClinicalCondition {
	case ConditionSepsis:
		recs = append(recs, SepsisAdvisory)
	case ConditionHyperglycemia:
		recs = append(recs, HyperglycemiaAdvisory)
	}

	return recs
}

func appendRangeCheck(recs []string, what, unit string, current float64, target Range) []string {
	switch {
	case current < target.Min:
		return append(recs, fmt.Sprintf("Increase %s to at least %s %s (current: %.2f %s)",
			what, formatNumber(target.Min), unit, current, unit))
	case current > target.Max:
		return append(recs, fmt.Sprintf("Consider reducing %s to maximum %s %s (current: %.2f %s)",
			what, formatNumber(target.Max), unit, current, unit))
	}
	return recs
}

// formatNumber prints the shortest decimal form: 130, 2.5, 0.125.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
