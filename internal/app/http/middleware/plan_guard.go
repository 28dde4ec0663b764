package middleware

import (
	"net/http"

	"learning-platform/database"
	"learning-platform/internal/domain/users"

	"github.com/gin-gonic/gin"
)

// RequirePlan gates premium content on the user's current plan. The plan is
// read from the database, not the token: webhook-driven downgrades must take
// effect before the JWT expires.
func RequirePlan(minPlan string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")
		if userID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var user users.User
		if err := database.DB.Where("id = ?", userID).First(&user).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}

		if users.PlanRank(user.Plan) < users.PlanRank(minPlan) {
			c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{
				"error": "This content requires the " + minPlan + " plan",
			})
			return
		}

		c.Next()
	}
}
