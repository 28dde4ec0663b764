package stripewebhooks

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learning-platform/internal/domain/billing"
	"learning-platform/internal/domain/users"
	"learning-platform/internal/testutil"
)

func TestCheckoutCompleted_SubscriptionModeAttachesCustomer(t *testing.T) {
	db, _, r := newTestWebhook(t)

	user := testutil.TestUser(t, db)

	payload := eventPayload(t, "checkout.session.completed", map[string]interface{}{
		"id":                   "cs_test_1",
		"mode":                 "subscription",
		"customer":             map[string]interface{}{"id": "cus_checkout_1"},
		"client_reference_id":  fmt.Sprint(user.ID),
	})
	require.Equal(t, http.StatusOK, deliverSigned(r, payload).Code)

	var got users.User
	require.NoError(t, db.First(&got, user.ID).Error)
	require.NotNil(t, got.StripeCustomerID)
	assert.Equal(t, "cus_checkout_1", *got.StripeCustomerID)
}

func TestCheckoutCompleted_PaymentModeBackfillsPendingPayment(t *testing.T) {
	db, _, r := newTestWebhook(t)

	user := testutil.TestUser(t, db)
	course := testutil.TestCourse(t, db)

	payload := eventPayload(t, "checkout.session.completed", map[string]interface{}{
		"id":             "cs_test_2",
		"mode":           "payment",
		"amount_total":   7000,
		"payment_intent": map[string]interface{}{"id": "pi_from_session"},
		"total_details":  map[string]interface{}{"amount_discount": 700},
		"metadata": map[string]string{
			"user_id":    fmt.Sprint(user.ID),
			"course_ids": fmt.Sprint(course.ID),
		},
	})
	require.Equal(t, http.StatusOK, deliverSigned(r, payload).Code)

	var pay billing.Payment
	require.NoError(t, db.Where("stripe_payment_intent_id = ?", "pi_from_session").First(&pay).Error)
	assert.Equal(t, billing.StatusPending, pay.Status)
	assert.Equal(t, int64(7000), pay.Amount)
	assert.Equal(t, int64(700), pay.DiscountAmount)
	assert.Equal(t, user.ID, pay.UserID)
	require.NotNil(t, pay.StripeSessionID)
	assert.Equal(t, "cs_test_2", *pay.StripeSessionID)
}

func TestCheckoutCompleted_DoesNotDuplicateExistingPayment(t *testing.T) {
	db, _, r := newTestWebhook(t)

	user := testutil.TestUser(t, db)
	testutil.TestPayment(t, db, user.ID, testutil.WithIntentID("pi_existing"))

	payload := eventPayload(t, "checkout.session.completed", map[string]interface{}{
		"id":             "cs_test_3",
		"mode":           "payment",
		"amount_total":   9999,
		"payment_intent": map[string]interface{}{"id": "pi_existing"},
	})
	require.Equal(t, http.StatusOK, deliverSigned(r, payload).Code)

	var count int64
	db.Model(&billing.Payment{}).Where("stripe_payment_intent_id = ?", "pi_existing").Count(&count)
	assert.Equal(t, int64(1), count)
}
