package users

import (
	"net/http"

	"learning-platform/database"
	"learning-platform/internal/domain/users"

	"github.com/gin-gonic/gin"
)

type MeResponse struct {
	ID                 uint    `json:"id"`
	Name               string  `json:"name"`
	Email              string  `json:"email"`
	Role               string  `json:"role"`
	Plan               string  `json:"plan"`
	SubscriptionStatus *string `json:"subscription_status,omitempty"`
	HasStripeCustomer  bool    `json:"has_stripe_customer"`
}

func GetCurrentUser(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var user users.User
	if err := database.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, MeResponse{
		ID:                 user.ID,
		Name:               user.Name,
		Email:              user.Email,
		Role:               user.Role,
		Plan:               user.Plan,
		SubscriptionStatus: user.SubscriptionStatus,
		HasStripeCustomer:  user.StripeCustomerID != nil && *user.StripeCustomerID != "",
	})
}
