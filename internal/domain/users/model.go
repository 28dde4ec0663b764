package users

import (
	"time"
)

type User struct {
	ID           uint    `gorm:"primaryKey"`
	Name         string
	Email        string  `gorm:"not null;uniqueIndex:idx_users_email"`
	Password     *string `gorm:""`
	AuthProvider string  `gorm:"type:varchar(20);not null;default:'local'"`
	GoogleSub    *string `gorm:"uniqueIndex:idx_users_google_sub"`
	Role         string

	Plan string `gorm:"type:varchar(20);not null;default:'FREE'"`

	SubscriptionId     *string `gorm:"column:subscription_id;uniqueIndex:idx_users_subscription_id"`
	SubscriptionStatus *string `gorm:"column:subscription_status"`
	StripeCustomerID   *string `gorm:"column:stripe_customer_id;uniqueIndex:idx_users_stripe_customer_id"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
