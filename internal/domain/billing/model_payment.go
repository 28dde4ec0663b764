package billing

import (
	"learning-platform/internal/domain/users"
	"time"
)

// Payment status lifecycle: PENDING -> SUCCEEDED | FAILED | CANCELLED.
// A SUCCEEDED payment is immutable except for receipt URL backfill.
const (
	StatusPending   = "PENDING"
	StatusSucceeded = "SUCCEEDED"
	StatusFailed    = "FAILED"
	StatusCancelled = "CANCELLED"
)

type Payment struct {
	ID                    uint `gorm:"primaryKey"`
	UserID                uint
	User                  users.User
	StripePaymentIntentID string  `gorm:"uniqueIndex:idx_payments_stripe_payment_intent_id"`
	StripeSessionID       *string `gorm:"uniqueIndex:idx_payments_stripe_session_id"`

	// Amounts in JPY (zero-decimal currency, minor units == major units).
	Amount         int64
	DiscountAmount int64

	Status     string `gorm:"type:varchar(20);not null;default:'PENDING'"`
	ReceiptURL *string

	// Snapshot of the course ids this payment covers, comma-separated,
	// mirrored into the PaymentIntent metadata.
	CourseIDs string

	CreatedAt time.Time
	UpdatedAt time.Time
}
