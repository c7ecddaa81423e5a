package license

// Plan is the resolved entitlement tier of an installation.
type Plan string

const (
	PlanCommunity Plan = "community"
	PlanPro       Plan = "pro"
	PlanAIPro     Plan = "ai_pro"
)

// PlanFromRemote maps a plan string returned by the verification service to
// an internal Plan. The mapping is total: anything the service could return
// that is not a recognized tier lands on the community plan instead of
// passing through.
func PlanFromRemote(s string) Plan {
	switch s {
	case "community":
		return PlanCommunity
	case "pro":
		return PlanPro
	case "ai-pro":
		return PlanAIPro
	default:
		return PlanCommunity
	}
}
