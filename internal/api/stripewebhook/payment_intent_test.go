package stripewebhooks

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learning-platform/internal/domain/billing"
	"learning-platform/internal/domain/courses"
	"learning-platform/internal/domain/oplog"
	"learning-platform/internal/testutil"
)

func TestAllocateAmounts(t *testing.T) {
	tests := []struct {
		name  string
		total int64
		n     int
		want  []int64
	}{
		{"even split", 9000, 3, []int64{3000, 3000, 3000}},
		{"remainder goes to first course", 10000, 3, []int64{3334, 3333, 3333}},
		{"two courses odd total", 9999, 2, []int64{5000, 4999}},
		{"single course", 5000, 1, []int64{5000}},
		{"zero total", 0, 3, []int64{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := allocateAmounts(tt.total, tt.n)
			assert.Equal(t, tt.want, got)

			sum := int64(0)
			for _, s := range got {
				sum += s
			}
			assert.Equal(t, tt.total, sum, "shares must sum to the total")
		})
	}
}

func succeededPayload(t *testing.T, intentID string, amount int64, userID uint, courseIDs string) []byte {
	t.Helper()
	return eventPayload(t, "payment_intent.succeeded", map[string]interface{}{
		"id":     intentID,
		"amount": amount,
		"metadata": map[string]string{
			"user_id":    fmt.Sprint(userID),
			"course_ids": courseIDs,
		},
		"latest_charge": map[string]interface{}{
			"id":          "ch_test_1",
			"receipt_url": "https://pay.stripe.com/receipts/test",
		},
	})
}

func TestPaymentSucceeded_CreatesOneRegistrationPerCourse(t *testing.T) {
	db, mail, r := newTestWebhook(t)

	user := testutil.TestUser(t, db)
	c1 := testutil.TestCourse(t, db)
	c2 := testutil.TestCourse(t, db)
	csv := fmt.Sprintf("%d,%d", c1.ID, c2.ID)
	payment := testutil.TestPayment(t, db, user.ID,
		testutil.WithAmount(9999, 0),
		testutil.WithCourseIDs(csv))

	w := deliverSigned(r, succeededPayload(t, payment.StripePaymentIntentID, 9999, user.ID, csv))
	require.Equal(t, http.StatusOK, w.Code)

	var got billing.Payment
	require.NoError(t, db.First(&got, payment.ID).Error)
	assert.Equal(t, billing.StatusSucceeded, got.Status)
	require.NotNil(t, got.ReceiptURL)
	assert.Equal(t, "https://pay.stripe.com/receipts/test", *got.ReceiptURL)

	var regs []courses.Registration
	require.NoError(t, db.Where("user_id = ?", user.ID).Order("course_id ASC").Find(&regs).Error)
	require.Len(t, regs, 2)

	// 9999 over two courses: floor share 4999, remainder on the first.
	assert.Equal(t, int64(5000), regs[0].AllocatedAmount)
	assert.Equal(t, int64(4999), regs[1].AllocatedAmount)
	assert.Equal(t, courses.RegStatusConfirmed, regs[0].Status)
	assert.Equal(t, courses.AttendanceRegistered, regs[0].Attendance)

	for _, id := range []uint{c1.ID, c2.ID} {
		var course courses.LiveCourse
		require.NoError(t, db.First(&course, id).Error)
		assert.Equal(t, 1, course.CurrentParticipants)
	}

	require.Len(t, mail.confirmations, 1)
	assert.Len(t, mail.confirmations[0], 2)
	assert.Equal(t, []string{user.Email}, mail.confirmedTo)
}

func TestPaymentSucceeded_RedeliveryIsIdempotent(t *testing.T) {
	db, mail, r := newTestWebhook(t)

	user := testutil.TestUser(t, db)
	c1 := testutil.TestCourse(t, db)
	c2 := testutil.TestCourse(t, db)
	csv := fmt.Sprintf("%d,%d", c1.ID, c2.ID)
	payment := testutil.TestPayment(t, db, user.ID,
		testutil.WithAmount(10000, 0),
		testutil.WithCourseIDs(csv))

	payload := succeededPayload(t, payment.StripePaymentIntentID, 10000, user.ID, csv)
	require.Equal(t, http.StatusOK, deliverSigned(r, payload).Code)
	require.Equal(t, http.StatusOK, deliverSigned(r, payload).Code)

	var regCount int64
	db.Model(&courses.Registration{}).Where("user_id = ?", user.ID).Count(&regCount)
	assert.Equal(t, int64(2), regCount)

	// The counter moved exactly once per course.
	for _, id := range []uint{c1.ID, c2.ID} {
		var course courses.LiveCourse
		require.NoError(t, db.First(&course, id).Error)
		assert.Equal(t, 1, course.CurrentParticipants)
	}

	// No second confirmation for a redelivery that registered nothing new.
	assert.Len(t, mail.confirmations, 1)
}

func TestPaymentSucceeded_MissingMetadataSkipsRegistrations(t *testing.T) {
	db, mail, r := newTestWebhook(t)

	user := testutil.TestUser(t, db)
	payment := testutil.TestPayment(t, db, user.ID)

	payload := eventPayload(t, "payment_intent.succeeded", map[string]interface{}{
		"id":     payment.StripePaymentIntentID,
		"amount": payment.Amount,
	})
	w := deliverSigned(r, payload)
	require.Equal(t, http.StatusOK, w.Code)

	var got billing.Payment
	require.NoError(t, db.First(&got, payment.ID).Error)
	assert.Equal(t, billing.StatusSucceeded, got.Status)

	var regCount int64
	db.Model(&courses.Registration{}).Count(&regCount)
	assert.Zero(t, regCount)
	assert.Empty(t, mail.confirmedTo)
}

func TestPaymentSucceeded_MailFailureKeepsRegistrations(t *testing.T) {
	db, mail, r := newTestWebhook(t)
	mail.failSend = true

	user := testutil.TestUser(t, db)
	course := testutil.TestCourse(t, db)
	payment := testutil.TestPayment(t, db, user.ID,
		testutil.WithCourseIDs(fmt.Sprint(course.ID)))

	payload := succeededPayload(t, payment.StripePaymentIntentID, payment.Amount, user.ID, fmt.Sprint(course.ID))
	w := deliverSigned(r, payload)
	require.Equal(t, http.StatusOK, w.Code)

	var regCount int64
	db.Model(&courses.Registration{}).Where("user_id = ?", user.ID).Count(&regCount)
	assert.Equal(t, int64(1), regCount)

	var logCount int64
	db.Model(&oplog.ErrorLog{}).Where("message = ?", "confirmation email failed").Count(&logCount)
	assert.Equal(t, int64(1), logCount)
}

func TestPaymentSucceeded_BackfillsMissingPaymentRow(t *testing.T) {
	db, _, r := newTestWebhook(t)

	user := testutil.TestUser(t, db)
	course := testutil.TestCourse(t, db)

	payload := succeededPayload(t, "pi_external_checkout", 5000, user.ID, fmt.Sprint(course.ID))
	w := deliverSigned(r, payload)
	require.Equal(t, http.StatusOK, w.Code)

	var pay billing.Payment
	require.NoError(t, db.Where("stripe_payment_intent_id = ?", "pi_external_checkout").First(&pay).Error)
	assert.Equal(t, billing.StatusSucceeded, pay.Status)
	assert.Equal(t, int64(5000), pay.Amount)
	assert.Equal(t, user.ID, pay.UserID)

	var regCount int64
	db.Model(&courses.Registration{}).Where("user_id = ?", user.ID).Count(&regCount)
	assert.Equal(t, int64(1), regCount)
}

func TestPaymentFailed_MarksFailedAndNotifies(t *testing.T) {
	db, mail, r := newTestWebhook(t)

	user := testutil.TestUser(t, db)
	payment := testutil.TestPayment(t, db, user.ID)

	payload := eventPayload(t, "payment_intent.payment_failed", map[string]interface{}{
		"id":       payment.StripePaymentIntentID,
		"amount":   payment.Amount,
		"metadata": map[string]string{"user_id": fmt.Sprint(user.ID)},
	})
	w := deliverSigned(r, payload)
	require.Equal(t, http.StatusOK, w.Code)

	var got billing.Payment
	require.NoError(t, db.First(&got, payment.ID).Error)
	assert.Equal(t, billing.StatusFailed, got.Status)

	var regCount int64
	db.Model(&courses.Registration{}).Count(&regCount)
	assert.Zero(t, regCount)

	assert.Equal(t, []string{user.Email}, mail.failedTo)
}

func TestPaymentFailed_NeverDowngradesSucceeded(t *testing.T) {
	db, _, r := newTestWebhook(t)

	user := testutil.TestUser(t, db)
	payment := testutil.TestPayment(t, db, user.ID,
		testutil.WithStatus(billing.StatusSucceeded))

	payload := eventPayload(t, "payment_intent.payment_failed", map[string]interface{}{
		"id": payment.StripePaymentIntentID,
	})
	require.Equal(t, http.StatusOK, deliverSigned(r, payload).Code)

	var got billing.Payment
	require.NoError(t, db.First(&got, payment.ID).Error)
	assert.Equal(t, billing.StatusSucceeded, got.Status)
}

func TestPaymentCanceled_MarksCancelled(t *testing.T) {
	db, _, r := newTestWebhook(t)

	user := testutil.TestUser(t, db)
	payment := testutil.TestPayment(t, db, user.ID)

	payload := eventPayload(t, "payment_intent.canceled", map[string]interface{}{
		"id": payment.StripePaymentIntentID,
	})
	require.Equal(t, http.StatusOK, deliverSigned(r, payload).Code)

	var got billing.Payment
	require.NoError(t, db.First(&got, payment.ID).Error)
	assert.Equal(t, billing.StatusCancelled, got.Status)
}
