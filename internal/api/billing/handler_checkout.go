package billing

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"learning-platform/database"
	"learning-platform/internal/domain/billing"
	"learning-platform/internal/domain/courses"
	"learning-platform/internal/domain/users"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/customer"
	"github.com/stripe/stripe-go/v75/paymentintent"
)

// CreateCourseCheckout prices the requested seminars, applies the member
// discount for the caller's plan, creates a PaymentIntent carrying the
// user/course metadata the webhook reconciler keys on, and records the
// payment as PENDING. Registrations are only created when the
// payment_intent.succeeded webhook arrives.
func CreateCourseCheckout(c *gin.Context) {
	var body struct {
		CourseIDs []uint `json:"course_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || len(body.CourseIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid course_ids"})
		return
	}

	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")
	if stripe.Key == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Stripe key not configured"})
		return
	}

	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return
	}

	var user users.User
	if err := database.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	var selected []courses.LiveCourse
	total := int64(0)
	for _, id := range body.CourseIDs {
		var course courses.LiveCourse
		if err := database.DB.Where("id = ? AND is_published = ?", id, true).First(&course).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Course %d not found", id)})
			return
		}

		if course.MaxParticipants > 0 && course.CurrentParticipants >= course.MaxParticipants {
			c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("Course %q is full", course.Title)})
			return
		}

		var existing courses.Registration
		if err := database.DB.Where("user_id = ? AND course_id = ?", userID, id).First(&existing).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("Already registered for %q", course.Title)})
			return
		}

		selected = append(selected, course)
		total += course.PriceJPY
	}

	discount := total * users.MemberDiscountPercent(user.Plan) / 100
	final := total - discount
	if final <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to charge"})
		return
	}

	if err := ensureStripeCustomer(&user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Stripe customer"})
		return
	}

	courseIDs := joinCourseIDs(body.CourseIDs)
	pi, err := paymentintent.New(&stripe.PaymentIntentParams{
		Amount:   stripe.Int64(final),
		Currency: stripe.String(string(stripe.CurrencyJPY)),
		Customer: user.StripeCustomerID,
		Metadata: map[string]string{
			"user_id":    fmt.Sprint(user.ID),
			"course_ids": courseIDs,
		},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create payment intent", "details": err.Error()})
		return
	}

	payment := billing.Payment{
		UserID:                user.ID,
		StripePaymentIntentID: pi.ID,
		Amount:                final,
		DiscountAmount:        discount,
		CourseIDs:             courseIDs,
		Status:                billing.StatusPending,
	}
	if err := database.DB.Create(&payment).Error; err != nil {
		fmt.Println("❌ Failed to record pending payment:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record payment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"client_secret": pi.ClientSecret,
		"amount":        final,
		"discount":      discount,
	})
}

func ensureStripeCustomer(user *users.User) error {
	if user.StripeCustomerID != nil && *user.StripeCustomerID != "" {
		return nil
	}

	cus, err := customer.New(&stripe.CustomerParams{
		Email: stripe.String(user.Email),
		Metadata: map[string]string{
			"user_id": fmt.Sprint(user.ID),
			"app_env": os.Getenv("APP_ENV"),
		},
	})
	if err != nil {
		return err
	}

	if err := database.DB.Model(&users.User{}).
		Where("id = ?", user.ID).
		Update("stripe_customer_id", cus.ID).Error; err != nil {
		return err
	}

	user.StripeCustomerID = stripe.String(cus.ID)
	return nil
}

func joinCourseIDs(ids []uint) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ",")
}
