package stripe

import (
	"strings"

	"learning-platform/internal/domain/users"
)

// NormalizeSubscriptionStatus maps Stripe's subscription status vocabulary to
// the internal enumeration stored on users.subscription_status.
func NormalizeSubscriptionStatus(s string) string {
	switch strings.TrimSpace(s) {
	case "active":
		return users.SubStatusActive
	case "canceled":
		return users.SubStatusCanceled
	case "past_due":
		return users.SubStatusPastDue
	default:
		return users.SubStatusInactive
	}
}
