package users

import "strings"

// Plan constants (single source of truth)
const (
	PlanFree    = "FREE"
	PlanBasic   = "BASIC"
	PlanPremium = "PREMIUM"
)

// Subscription status values written by the webhook synchronizer.
const (
	SubStatusActive   = "ACTIVE"
	SubStatusCanceled = "CANCELED"
	SubStatusPastDue  = "PAST_DUE"
	SubStatusInactive = "INACTIVE"
)

// NormalizePlan maps free-form plan metadata ("premium", " Basic ") to a
// plan constant. Unknown values return "".
func NormalizePlan(s string) string {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case PlanFree:
		return PlanFree
	case PlanBasic:
		return PlanBasic
	case PlanPremium:
		return PlanPremium
	}
	return ""
}

// PlanRank orders plans for access checks: FREE < BASIC < PREMIUM.
func PlanRank(plan string) int {
	switch plan {
	case PlanPremium:
		return 2
	case PlanBasic:
		return 1
	default:
		return 0
	}
}

// MemberDiscountPercent is the checkout discount granted per plan.
func MemberDiscountPercent(plan string) int64 {
	switch plan {
	case PlanPremium:
		return 20
	case PlanBasic:
		return 10
	default:
		return 0
	}
}
