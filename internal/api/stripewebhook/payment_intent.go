package stripewebhooks

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"learning-platform/internal/domain/billing"
	"learning-platform/internal/domain/courses"
	"learning-platform/internal/domain/oplog"
	"learning-platform/internal/domain/users"
	"learning-platform/internal/infra/mailer"

	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/charge"

	"gorm.io/gorm"
)

// handlePaymentSucceeded reconciles a successful PaymentIntent: marks the
// payment SUCCEEDED (with receipt URL backfill), creates one registration per
// course id in the metadata, bumps participant counters, and sends a single
// confirmation email for the newly created registrations.
//
// Stripe may deliver this event more than once, possibly concurrently. The
// existence check plus the (user_id, course_id) unique index make the
// registration path idempotent; counters only move when a row was actually
// inserted.
func (h *Handler) handlePaymentSucceeded(pi *stripe.PaymentIntent) error {
	if pi.ID == "" {
		return errors.New("payment intent missing id")
	}

	var pay billing.Payment
	if err := h.db.Where("stripe_payment_intent_id = ?", pi.ID).First(&pay).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to load payment %s: %w", pi.ID, err)
		}
		// Checkout initiated outside this API (or the PENDING insert was
		// lost); backfill a payment row from the event itself.
		pay = billing.Payment{
			StripePaymentIntentID: pi.ID,
			Amount:                pi.Amount,
			CourseIDs:             pi.Metadata["course_ids"],
			Status:                billing.StatusPending,
		}
		if uid := parseUserID(pi.Metadata); uid != 0 {
			pay.UserID = uid
		}
		if err := h.db.Create(&pay).Error; err != nil {
			return fmt.Errorf("failed to backfill payment %s: %w", pi.ID, err)
		}
	}

	updates := map[string]interface{}{"status": billing.StatusSucceeded}
	if url := h.lookupReceiptURL(pi); url != "" {
		updates["receipt_url"] = url
	}
	if err := h.db.Model(&billing.Payment{}).
		Where("id = ?", pay.ID).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to mark payment succeeded: %w", err)
	}

	userID := parseUserID(pi.Metadata)
	courseIDs := parseCourseIDs(pi.Metadata["course_ids"])
	if userID == 0 || len(courseIDs) == 0 {
		// Non-fatal: subscriptions and one-off charges without course
		// metadata land here.
		fmt.Println("ℹ️ payment_intent.succeeded without user/course metadata:", pi.ID)
		return nil
	}

	var user users.User
	if err := h.db.Where("id = ?", userID).First(&user).Error; err != nil {
		return fmt.Errorf("user %d not found for payment %s: %w", userID, pi.ID, err)
	}

	total := pay.Amount
	if total == 0 {
		total = pi.Amount
	}
	amounts := allocateAmounts(total, len(courseIDs))
	discounts := allocateAmounts(pay.DiscountAmount, len(courseIDs))

	var confirmed []mailer.RegisteredCourse
	for i, courseID := range courseIDs {
		created, course, err := h.registerCourse(user.ID, courseID, pay.ID, amounts[i], discounts[i])
		if err != nil {
			fmt.Printf("❌ Failed to register user %d for course %d: %v\n", user.ID, courseID, err)
			oplog.Record(h.db, "webhook.payment_intent.succeeded", "registration failed", err)
			continue
		}
		if created {
			confirmed = append(confirmed, mailer.RegisteredCourse{
				Title:     course.Title,
				StartsAt:  course.StartsAt.Format("2006-01-02 15:04"),
				AmountJPY: amounts[i],
			})
		}
	}

	// Best effort: a failed email never rolls back registrations.
	if len(confirmed) > 0 {
		if err := h.mail.SendRegistrationConfirmation(user.Email, confirmed); err != nil {
			fmt.Println("❌ Failed to send registration confirmation:", err)
			oplog.Record(h.db, "webhook.payment_intent.succeeded", "confirmation email failed", err)
		}
	}

	return nil
}

// registerCourse creates the registration for one course and bumps the
// participant counter. Returns created=false when the registration already
// exists (duplicate delivery).
func (h *Handler) registerCourse(userID, courseID, paymentID uint, amount, discount int64) (bool, *courses.LiveCourse, error) {
	var course courses.LiveCourse
	if err := h.db.Where("id = ?", courseID).First(&course).Error; err != nil {
		return false, nil, fmt.Errorf("course %d not found: %w", courseID, err)
	}

	var existing courses.Registration
	err := h.db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&existing).Error
	if err == nil {
		return false, &course, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil, err
	}

	reg := courses.Registration{
		UserID:            userID,
		CourseID:          courseID,
		PaymentID:         &paymentID,
		AllocatedAmount:   amount,
		AllocatedDiscount: discount,
		Status:            courses.RegStatusConfirmed,
		Attendance:        courses.AttendanceRegistered,
	}
	if err := h.db.Create(&reg).Error; err != nil {
		// A concurrent delivery won the race; the unique index is the
		// real idempotency guarantee, the read above is just the fast path.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, &course, nil
		}
		return false, nil, err
	}

	if err := h.db.Model(&courses.LiveCourse{}).
		Where("id = ?", courseID).
		UpdateColumn("current_participants", gorm.Expr("current_participants + 1")).Error; err != nil {
		return true, &course, err
	}

	return true, &course, nil
}

func (h *Handler) handlePaymentFailed(pi *stripe.PaymentIntent) error {
	if pi.ID == "" {
		return errors.New("payment intent missing id")
	}

	if err := h.db.Model(&billing.Payment{}).
		Where("stripe_payment_intent_id = ? AND status <> ?", pi.ID, billing.StatusSucceeded).
		Update("status", billing.StatusFailed).Error; err != nil {
		return fmt.Errorf("failed to mark payment failed: %w", err)
	}

	// Best-effort notification so the user knows no registration was created.
	if userID := parseUserID(pi.Metadata); userID != 0 {
		var user users.User
		if err := h.db.Where("id = ?", userID).First(&user).Error; err == nil {
			if err := h.mail.SendPaymentFailed(user.Email, pi.Amount); err != nil {
				fmt.Println("❌ Failed to send payment-failed email:", err)
				oplog.Record(h.db, "webhook.payment_intent.payment_failed", "notification email failed", err)
			}
		}
	}

	return nil
}

func (h *Handler) handlePaymentCanceled(pi *stripe.PaymentIntent) error {
	if pi.ID == "" {
		return errors.New("payment intent missing id")
	}

	return h.db.Model(&billing.Payment{}).
		Where("stripe_payment_intent_id = ? AND status <> ?", pi.ID, billing.StatusSucceeded).
		Update("status", billing.StatusCancelled).Error
}

// lookupReceiptURL pulls the receipt URL off the event's latest charge, with
// a secondary API lookup when the event only carries the charge id. Both
// paths are best effort.
func (h *Handler) lookupReceiptURL(pi *stripe.PaymentIntent) string {
	if pi.LatestCharge == nil || pi.LatestCharge.ID == "" {
		return ""
	}
	if pi.LatestCharge.ReceiptURL != "" {
		return pi.LatestCharge.ReceiptURL
	}
	if stripe.Key == "" {
		return ""
	}
	ch, err := charge.Get(pi.LatestCharge.ID, nil)
	if err != nil {
		fmt.Println("⚠️ Failed to fetch charge for receipt URL:", err)
		return ""
	}
	return ch.ReceiptURL
}

// allocateAmounts splits total across n shares using floor division, with the
// remainder assigned to the first share so the parts always sum to total.
func allocateAmounts(total int64, n int) []int64 {
	shares := make([]int64, n)
	if n == 0 {
		return shares
	}
	base := total / int64(n)
	remainder := total - base*int64(n)
	for i := range shares {
		shares[i] = base
	}
	shares[0] += remainder
	return shares
}

func parseUserID(md map[string]string) uint {
	if md == nil {
		return 0
	}
	s := md["user_id"]
	if s == "" {
		return 0
	}
	uid, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return uint(uid)
}

// parseCourseIDs splits the comma-separated course_ids metadata value,
// dropping anything that does not parse as an id.
func parseCourseIDs(csv string) []uint {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	ids := make([]uint, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil || id == 0 {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids
}
