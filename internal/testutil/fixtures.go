package testutil

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"learning-platform/internal/domain/billing"
	"learning-platform/internal/domain/courses"
	"learning-platform/internal/domain/users"
)

var fixtureSeq int64

func nextSeq() int64 {
	fixtureSeq++
	return fixtureSeq
}

func TestUser(t *testing.T, db *gorm.DB, opts ...func(*users.User)) *users.User {
	t.Helper()

	seq := nextSeq()
	user := &users.User{
		Name:         fmt.Sprintf("testuser_%d", seq),
		Email:        fmt.Sprintf("test_%d_%d@example.com", seq, time.Now().UnixNano()),
		AuthProvider: "local",
		Role:         "user",
		Plan:         users.PlanFree,
	}
	for _, opt := range opts {
		opt(user)
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

func WithPlan(plan string) func(*users.User) {
	return func(u *users.User) { u.Plan = plan }
}

func WithSubscription(subID, status string) func(*users.User) {
	return func(u *users.User) {
		u.SubscriptionId = &subID
		u.SubscriptionStatus = &status
	}
}

func TestCourse(t *testing.T, db *gorm.DB, opts ...func(*courses.LiveCourse)) *courses.LiveCourse {
	t.Helper()

	seq := nextSeq()
	course := &courses.LiveCourse{
		Title:           fmt.Sprintf("Seminar %d", seq),
		Instructor:      "Instructor",
		PriceJPY:        5000,
		StartsAt:        time.Now().Add(72 * time.Hour),
		DurationMinutes: 90,
		MaxParticipants: 50,
		IsPublished:     true,
	}
	for _, opt := range opts {
		opt(course)
	}
	if err := db.Create(course).Error; err != nil {
		t.Fatalf("Failed to create test course: %v", err)
	}
	return course
}

func WithStartsAt(at time.Time) func(*courses.LiveCourse) {
	return func(c *courses.LiveCourse) { c.StartsAt = at }
}

func WithCapacity(max, current int) func(*courses.LiveCourse) {
	return func(c *courses.LiveCourse) {
		c.MaxParticipants = max
		c.CurrentParticipants = current
	}
}

func TestPayment(t *testing.T, db *gorm.DB, userID uint, opts ...func(*billing.Payment)) *billing.Payment {
	t.Helper()

	payment := &billing.Payment{
		UserID:                userID,
		StripePaymentIntentID: fmt.Sprintf("pi_test_%d", nextSeq()),
		Amount:                5000,
		Status:                billing.StatusPending,
	}
	for _, opt := range opts {
		opt(payment)
	}
	if err := db.Create(payment).Error; err != nil {
		t.Fatalf("Failed to create test payment: %v", err)
	}
	return payment
}

func WithAmount(amount, discount int64) func(*billing.Payment) {
	return func(p *billing.Payment) {
		p.Amount = amount
		p.DiscountAmount = discount
	}
}

func WithCourseIDs(csv string) func(*billing.Payment) {
	return func(p *billing.Payment) { p.CourseIDs = csv }
}

func WithIntentID(id string) func(*billing.Payment) {
	return func(p *billing.Payment) { p.StripePaymentIntentID = id }
}

func WithStatus(status string) func(*billing.Payment) {
	return func(p *billing.Payment) { p.Status = status }
}
