package oplog

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ErrorLog rows back the admin error-log dashboard. Webhook handlers swallow
// their errors so the provider is never retried for a parsed event; the
// swallowed error lands here instead of disappearing into stdout.
type ErrorLog struct {
	ID        uint   `gorm:"primaryKey"`
	Source    string `gorm:"type:varchar(60);not null;index"`
	Message   string `gorm:"not null"`
	Detail    string
	CreatedAt time.Time `gorm:"index"`
}

// Record persists an error log entry, best effort. It must never fail the
// caller: a broken log table should not turn a swallowed error into a 500.
func Record(db *gorm.DB, source, message string, err error) {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	if dbErr := db.Create(&ErrorLog{Source: source, Message: message, Detail: detail}).Error; dbErr != nil {
		fmt.Println("❌ Failed to write error log:", dbErr)
	}
}
