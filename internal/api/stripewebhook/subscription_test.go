package stripewebhooks

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learning-platform/internal/domain/users"
	"learning-platform/internal/testutil"
)

func TestSubscriptionCreated_ActivatesPlan(t *testing.T) {
	db, _, r := newTestWebhook(t)

	user := testutil.TestUser(t, db)

	payload := eventPayload(t, "customer.subscription.created", map[string]interface{}{
		"id":       "sub_test_1",
		"status":   "active",
		"customer": map[string]interface{}{"id": "cus_test_1"},
		"metadata": map[string]string{
			"user_id": fmt.Sprint(user.ID),
			"plan":    "premium",
		},
	})
	require.Equal(t, http.StatusOK, deliverSigned(r, payload).Code)

	var got users.User
	require.NoError(t, db.First(&got, user.ID).Error)
	assert.Equal(t, users.PlanPremium, got.Plan)
	require.NotNil(t, got.SubscriptionId)
	assert.Equal(t, "sub_test_1", *got.SubscriptionId)
	require.NotNil(t, got.SubscriptionStatus)
	assert.Equal(t, users.SubStatusActive, *got.SubscriptionStatus)
	require.NotNil(t, got.StripeCustomerID)
	assert.Equal(t, "cus_test_1", *got.StripeCustomerID)
}

func TestSubscriptionCreated_MissingMetadataMutatesNothing(t *testing.T) {
	db, _, r := newTestWebhook(t)

	user := testutil.TestUser(t, db)

	payload := eventPayload(t, "customer.subscription.created", map[string]interface{}{
		"id":     "sub_test_2",
		"status": "active",
	})
	require.Equal(t, http.StatusOK, deliverSigned(r, payload).Code)

	var got users.User
	require.NoError(t, db.First(&got, user.ID).Error)
	assert.Equal(t, users.PlanFree, got.Plan)
	assert.Nil(t, got.SubscriptionId)
	assert.Nil(t, got.SubscriptionStatus)
}

func TestSubscriptionUpdated_MapsProviderStatus(t *testing.T) {
	tests := []struct {
		provider string
		want     string
	}{
		{"active", users.SubStatusActive},
		{"canceled", users.SubStatusCanceled},
		{"past_due", users.SubStatusPastDue},
		{"paused", users.SubStatusInactive},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			db, _, r := newTestWebhook(t)

			user := testutil.TestUser(t, db,
				testutil.WithPlan(users.PlanBasic),
				testutil.WithSubscription("sub_upd", users.SubStatusActive))

			payload := eventPayload(t, "customer.subscription.updated", map[string]interface{}{
				"id":     "sub_upd",
				"status": tt.provider,
			})
			require.Equal(t, http.StatusOK, deliverSigned(r, payload).Code)

			var got users.User
			require.NoError(t, db.First(&got, user.ID).Error)
			require.NotNil(t, got.SubscriptionStatus)
			assert.Equal(t, tt.want, *got.SubscriptionStatus)
			// Status sync never touches the plan.
			assert.Equal(t, users.PlanBasic, got.Plan)
		})
	}
}

func TestSubscriptionDeleted_AlwaysResetsToFree(t *testing.T) {
	for _, priorPlan := range []string{users.PlanBasic, users.PlanPremium} {
		t.Run(priorPlan, func(t *testing.T) {
			db, _, r := newTestWebhook(t)

			user := testutil.TestUser(t, db,
				testutil.WithPlan(priorPlan),
				testutil.WithSubscription("sub_del", users.SubStatusPastDue))

			payload := eventPayload(t, "customer.subscription.deleted", map[string]interface{}{
				"id":     "sub_del",
				"status": "canceled",
			})
			require.Equal(t, http.StatusOK, deliverSigned(r, payload).Code)

			var got users.User
			require.NoError(t, db.First(&got, user.ID).Error)
			assert.Equal(t, users.PlanFree, got.Plan)
			require.NotNil(t, got.SubscriptionStatus)
			assert.Equal(t, users.SubStatusCanceled, *got.SubscriptionStatus)
			assert.Nil(t, got.SubscriptionId)
		})
	}
}

func TestSubscriptionDeleted_UnknownSubscriptionIsNoop(t *testing.T) {
	db, _, r := newTestWebhook(t)

	user := testutil.TestUser(t, db,
		testutil.WithPlan(users.PlanPremium),
		testutil.WithSubscription("sub_keep", users.SubStatusActive))

	payload := eventPayload(t, "customer.subscription.deleted", map[string]interface{}{
		"id":     "sub_someone_else",
		"status": "canceled",
	})
	require.Equal(t, http.StatusOK, deliverSigned(r, payload).Code)

	var got users.User
	require.NoError(t, db.First(&got, user.ID).Error)
	assert.Equal(t, users.PlanPremium, got.Plan)
	require.NotNil(t, got.SubscriptionId)
	assert.Equal(t, "sub_keep", *got.SubscriptionId)
}
