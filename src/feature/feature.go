package feature

import (
	"inkwell-entitlement/src/license"
)

// Feature is a capability flag gated by the resolved plan.
type Feature string

const (
	AdvancedDashboard Feature = "advanced_dashboard"
	UserRoles         Feature = "user_roles"
	AIWriting         Feature = "ai_writing"
)

// planFeatures maps each plan to the features it unlocks. Availability
// depends only on reaching the pro tier; the ai_pro tier changes AI
// routing, not the feature set.
var planFeatures = map[license.Plan]map[Feature]bool{
	license.PlanCommunity: {},
	license.PlanPro: {
		AdvancedDashboard: true,
		UserRoles:         true,
		AIWriting:         true,
	},
	license.PlanAIPro: {
		AdvancedDashboard: true,
		UserRoles:         true,
		AIWriting:         true,
	},
}

// Has reports whether the plan unlocks the feature. Unknown plans behave
// like community.
func Has(plan license.Plan, f Feature) bool {
	features, ok := planFeatures[plan]
	if !ok {
		return false
	}
	return features[f]
}

// For returns the features unlocked by the plan.
func For(plan license.Plan) []Feature {
	res := make([]Feature, 0)
	for _, f := range []Feature{AdvancedDashboard, UserRoles, AIWriting} {
		if Has(plan, f) {
			res = append(res, f)
		}
	}
	return res
}
