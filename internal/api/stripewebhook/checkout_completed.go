package stripewebhooks

import (
	"errors"
	"fmt"
	"strconv"

	"learning-platform/internal/domain/billing"
	"learning-platform/internal/domain/users"

	"github.com/stripe/stripe-go/v75"

	"gorm.io/gorm"
)

// handleCheckoutCompleted attaches the Stripe customer to the user for
// subscription checkouts, and for one-off payment checkouts backfills the
// PENDING payment row when checkout was initiated outside this API. The
// actual reconciliation waits for payment_intent.succeeded.
func (h *Handler) handleCheckoutCompleted(session *stripe.CheckoutSession) error {
	if session.ID == "" {
		return errors.New("checkout session missing id")
	}

	userID := parseUserID(session.Metadata)
	if userID == 0 && session.ClientReferenceID != "" {
		if uid, err := strconv.ParseUint(session.ClientReferenceID, 10, 64); err == nil {
			userID = uint(uid)
		}
	}

	if session.Customer != nil && session.Customer.ID != "" && userID != 0 {
		if err := h.db.Model(&users.User{}).
			Where("id = ?", userID).
			Update("stripe_customer_id", session.Customer.ID).Error; err != nil {
			return fmt.Errorf("failed to attach stripe customer: %w", err)
		}
	}

	if session.Mode != stripe.CheckoutSessionModePayment {
		return nil
	}
	if session.PaymentIntent == nil || session.PaymentIntent.ID == "" {
		return errors.New("payment-mode checkout session missing payment intent")
	}

	var pay billing.Payment
	err := h.db.Where("stripe_payment_intent_id = ?", session.PaymentIntent.ID).First(&pay).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	sessionID := session.ID
	discount := int64(0)
	if session.TotalDetails != nil {
		discount = session.TotalDetails.AmountDiscount
	}
	pay = billing.Payment{
		UserID:                userID,
		StripePaymentIntentID: session.PaymentIntent.ID,
		StripeSessionID:       &sessionID,
		Amount:                session.AmountTotal,
		DiscountAmount:        discount,
		CourseIDs:             session.Metadata["course_ids"],
		Status:                billing.StatusPending,
	}
	if err := h.db.Create(&pay).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return fmt.Errorf("failed to backfill payment for session %s: %w", session.ID, err)
	}

	return nil
}
