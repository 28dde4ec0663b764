package courses

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCancellationRefund(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		hoursUntil  time.Duration
		wantPercent int64
		wantAllowed bool
	}{
		{"more than a day ahead", 25 * time.Hour, 100, true},
		{"exactly 24h ahead", 24 * time.Hour, 100, true},
		{"ten hours ahead", 10 * time.Hour, 50, true},
		{"exactly 2h ahead", 2 * time.Hour, 50, true},
		{"one hour ahead", 1 * time.Hour, 0, false},
		{"already started", -30 * time.Minute, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			percent, allowed := CancellationRefund(now.Add(tt.hoursUntil), now)
			assert.Equal(t, tt.wantPercent, percent)
			assert.Equal(t, tt.wantAllowed, allowed)
		})
	}
}
