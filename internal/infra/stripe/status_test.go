package stripe

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"learning-platform/internal/domain/users"
)

func TestNormalizeSubscriptionStatus(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"active", users.SubStatusActive},
		{"canceled", users.SubStatusCanceled},
		{"past_due", users.SubStatusPastDue},
		{"trialing", users.SubStatusInactive},
		{"unpaid", users.SubStatusInactive},
		{"incomplete", users.SubStatusInactive},
		{"", users.SubStatusInactive},
		{"  active  ", users.SubStatusActive},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeSubscriptionStatus(tt.in), "input %q", tt.in)
	}
}
