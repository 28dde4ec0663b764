package courses

import (
	"learning-platform/internal/domain/users"
	"time"
)

// Registration status / attendance values.
const (
	RegStatusConfirmed = "CONFIRMED"
	RegStatusCancelled = "CANCELLED"

	AttendanceRegistered = "REGISTERED"
	AttendanceAttended   = "ATTENDED"
	AttendanceAbsent     = "ABSENT"
)

type LiveCourse struct {
	ID          uint `gorm:"primaryKey"`
	Title       string `gorm:"not null"`
	Description string
	Instructor  string

	// PriceJPY is the seminar fee before any member discount.
	PriceJPY int64

	StartsAt        time.Time `gorm:"index"`
	DurationMinutes int
	ZoomJoinURL     *string

	MaxParticipants     int
	// CurrentParticipants is only ever moved with a SQL expression so that
	// concurrent webhook deliveries cannot lose increments.
	CurrentParticipants int `gorm:"not null;default:0"`

	IsPublished bool `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Registration links a user to a live course through a payment. The
// (user_id, course_id) unique index is the idempotency anchor for webhook
// redelivery: a second insert for the same pair fails with a duplicate-key
// error and is treated as already-registered.
type Registration struct {
	ID       uint `gorm:"primaryKey"`
	UserID   uint `gorm:"not null;uniqueIndex:idx_registrations_user_course"`
	User     users.User
	CourseID uint `gorm:"not null;uniqueIndex:idx_registrations_user_course"`
	Course   LiveCourse `gorm:"foreignKey:CourseID"`

	PaymentID *uint

	// Share of the payment allocated to this course (JPY).
	AllocatedAmount   int64
	AllocatedDiscount int64

	Status     string `gorm:"type:varchar(20);not null;default:'CONFIRMED'"`
	Attendance string `gorm:"type:varchar(20);not null;default:'REGISTERED'"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
