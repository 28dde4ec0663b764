package courses

import "time"

// Cancellation refund tiers, counted from the seminar start time:
//
//	>= 24h before start: full refund
//	>=  2h before start: half refund
//	<    2h before start: cancellation refused
const (
	fullRefundWindow = 24 * time.Hour
	halfRefundWindow = 2 * time.Hour
)

// CancellationRefund returns the refund percentage for cancelling a seminar
// registration at time now, and whether cancellation is allowed at all.
func CancellationRefund(startsAt, now time.Time) (percent int64, allowed bool) {
	until := startsAt.Sub(now)
	switch {
	case until >= fullRefundWindow:
		return 100, true
	case until >= halfRefundWindow:
		return 50, true
	default:
		return 0, false
	}
}
