package courses

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"learning-platform/database"
	"learning-platform/internal/domain/billing"
	"learning-platform/internal/domain/courses"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/refund"
	"gorm.io/gorm"
)

// CancelRegistration cancels the caller's seminar registration under the
// tiered refund policy: full refund a day or more ahead, half refund down to
// two hours before start, refused inside two hours.
func CancelRegistration(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var reg courses.Registration
	if err := database.DB.
		Preload("Course").
		Where("id = ? AND user_id = ?", c.Param("id"), userID).
		First(&reg).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Registration not found"})
		return
	}

	if reg.Status != courses.RegStatusConfirmed {
		c.JSON(http.StatusConflict, gin.H{"error": "Registration is not active"})
		return
	}

	percent, allowed := courses.CancellationRefund(reg.Course.StartsAt, time.Now())
	if !allowed {
		c.JSON(http.StatusConflict, gin.H{
			"error":          "Cancellation is no longer possible for this seminar",
			"refund_percent": 0,
		})
		return
	}

	refundAmount := reg.AllocatedAmount * percent / 100
	if refundAmount > 0 {
		if err := refundPayment(&reg, refundAmount); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Refund failed", "details": err.Error()})
			return
		}
	}

	if err := database.DB.Model(&courses.Registration{}).
		Where("id = ?", reg.ID).
		Update("status", courses.RegStatusCancelled).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel registration"})
		return
	}

	// Free the seat; the counter invariant tracks CONFIRMED registrations.
	if err := database.DB.Model(&courses.LiveCourse{}).
		Where("id = ? AND current_participants > 0", reg.CourseID).
		UpdateColumn("current_participants", gorm.Expr("current_participants - 1")).Error; err != nil {
		fmt.Println("❌ Failed to decrement participant counter:", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         courses.RegStatusCancelled,
		"refund_percent": percent,
		"refund_amount":  refundAmount,
	})
}

func refundPayment(reg *courses.Registration, amount int64) error {
	if reg.PaymentID == nil {
		return nil
	}

	var pay billing.Payment
	if err := database.DB.Where("id = ?", *reg.PaymentID).First(&pay).Error; err != nil {
		return fmt.Errorf("payment not found: %w", err)
	}
	if pay.StripePaymentIntentID == "" {
		return nil
	}

	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")
	if stripe.Key == "" {
		return fmt.Errorf("stripe key not configured")
	}

	_, err := refund.New(&stripe.RefundParams{
		PaymentIntent: stripe.String(pay.StripePaymentIntentID),
		Amount:        stripe.Int64(amount),
	})
	return err
}
