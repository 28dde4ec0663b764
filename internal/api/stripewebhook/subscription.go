package stripewebhooks

import (
	"fmt"

	"learning-platform/internal/domain/users"
	stripeinfra "learning-platform/internal/infra/stripe"

	"github.com/stripe/stripe-go/v75"
)

// handleSubscriptionCreated activates a plan for the user named in the
// subscription metadata. Missing metadata aborts with no mutation: there is
// nothing sensible to upsert without knowing who subscribed to what.
func (h *Handler) handleSubscriptionCreated(sub *stripe.Subscription) error {
	if sub.ID == "" {
		return fmt.Errorf("subscription event missing id")
	}

	userID := parseUserID(sub.Metadata)
	plan := ""
	if sub.Metadata != nil {
		plan = users.NormalizePlan(sub.Metadata["plan"])
	}
	if userID == 0 || plan == "" {
		fmt.Println("⚠️ subscription.created missing user_id/plan metadata:", sub.ID)
		return nil
	}

	updates := map[string]interface{}{
		"plan":                plan,
		"subscription_id":     sub.ID,
		"subscription_status": users.SubStatusActive,
	}
	if sub.Customer != nil && sub.Customer.ID != "" {
		updates["stripe_customer_id"] = sub.Customer.ID
	}

	return h.db.Model(&users.User{}).
		Where("id = ?", userID).
		Updates(updates).Error
}

// handleSubscriptionUpdated maps Stripe's status vocabulary onto the internal
// one and applies it to every user holding that subscription id (expected
// cardinality: one, enforced by the unique index).
func (h *Handler) handleSubscriptionUpdated(sub *stripe.Subscription) error {
	if sub.ID == "" {
		return fmt.Errorf("subscription event missing id")
	}

	status := stripeinfra.NormalizeSubscriptionStatus(string(sub.Status))

	return h.db.Model(&users.User{}).
		Where("subscription_id = ?", sub.ID).
		Update("subscription_status", status).Error
}

// handleSubscriptionDeleted downgrades the user to FREE regardless of prior
// state and clears the subscription reference.
func (h *Handler) handleSubscriptionDeleted(sub *stripe.Subscription) error {
	if sub.ID == "" {
		return fmt.Errorf("subscription event missing id")
	}

	return h.db.Model(&users.User{}).
		Where("subscription_id = ?", sub.ID).
		Updates(map[string]interface{}{
			"plan":                users.PlanFree,
			"subscription_status": users.SubStatusCanceled,
			"subscription_id":     nil,
		}).Error
}
