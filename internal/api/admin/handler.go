package admin

import (
	"net/http"
	"time"

	"learning-platform/database"
	"learning-platform/internal/domain/billing"
	"learning-platform/internal/domain/courses"
	"learning-platform/internal/domain/oplog"
	"learning-platform/internal/domain/users"

	"github.com/gin-gonic/gin"
)

type AdminUser struct {
	ID                 uint    `json:"id"`
	Name               string  `json:"name"`
	Email              string  `json:"email"`
	Role               string  `json:"role"`
	Plan               string  `json:"plan"`
	SubscriptionStatus *string `json:"subscription_status,omitempty"`
	StripeCustomerID   *string `json:"stripe_customer_id,omitempty"`
	SubscriptionID     *string `json:"subscription_id,omitempty"`
}

type AdminPayment struct {
	ID             uint    `json:"id"`
	Email          string  `json:"email"`
	Amount         int64   `json:"amount"`
	DiscountAmount int64   `json:"discount_amount"`
	Status         string  `json:"status"`
	CourseIDs      string  `json:"course_ids"`
	ReceiptURL     *string `json:"receipt_url,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

type AdminStats struct {
	TotalUsers       int64            `json:"total_users"`
	TotalRevenue     int64            `json:"total_revenue"`
	RecentRevenue    int64            `json:"recent_revenue"`
	UsersPerPlan     map[string]int64 `json:"users_per_plan"`
	UpcomingSeminars int64            `json:"upcoming_seminars"`
}

func Dashboard(c *gin.Context) {
	stats := AdminStats{UsersPerPlan: map[string]int64{}}

	if err := database.DB.Model(&users.User{}).Count(&stats.TotalUsers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}

	for _, plan := range []string{users.PlanFree, users.PlanBasic, users.PlanPremium} {
		var n int64
		database.DB.Model(&users.User{}).Where("plan = ?", plan).Count(&n)
		stats.UsersPerPlan[plan] = n
	}

	type sumRow struct{ Total int64 }
	var row sumRow
	database.DB.Model(&billing.Payment{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("status = ?", billing.StatusSucceeded).
		Scan(&row)
	stats.TotalRevenue = row.Total

	database.DB.Model(&billing.Payment{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("status = ? AND created_at > ?", billing.StatusSucceeded, time.Now().AddDate(0, -1, 0)).
		Scan(&row)
	stats.RecentRevenue = row.Total

	database.DB.Model(&courses.LiveCourse{}).
		Where("is_published = ? AND starts_at > ?", true, time.Now()).
		Count(&stats.UpcomingSeminars)

	c.JSON(http.StatusOK, stats)
}

func ListAllUsers(c *gin.Context) {
	var list []users.User
	if err := database.DB.Order("created_at DESC").Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
		return
	}

	out := make([]AdminUser, 0, len(list))
	for _, u := range list {
		out = append(out, AdminUser{
			ID:                 u.ID,
			Name:               u.Name,
			Email:              u.Email,
			Role:               u.Role,
			Plan:               u.Plan,
			SubscriptionStatus: u.SubscriptionStatus,
			StripeCustomerID:   u.StripeCustomerID,
			SubscriptionID:     u.SubscriptionId,
		})
	}
	c.JSON(http.StatusOK, out)
}

func ListAllPayments(c *gin.Context) {
	var payments []billing.Payment
	if err := database.DB.
		Preload("User").
		Order("created_at DESC").
		Limit(200).
		Find(&payments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payments"})
		return
	}

	out := make([]AdminPayment, 0, len(payments))
	for _, p := range payments {
		out = append(out, AdminPayment{
			ID:             p.ID,
			Email:          p.User.Email,
			Amount:         p.Amount,
			DiscountAmount: p.DiscountAmount,
			Status:         p.Status,
			CourseIDs:      p.CourseIDs,
			ReceiptURL:     p.ReceiptURL,
			CreatedAt:      p.CreatedAt.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, out)
}

// ListErrorLogs backs the admin error-log dashboard: the swallowed webhook
// handler errors end up here.
func ListErrorLogs(c *gin.Context) {
	var logs []oplog.ErrorLog
	if err := database.DB.
		Order("created_at DESC").
		Limit(200).
		Find(&logs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load error logs"})
		return
	}
	c.JSON(http.StatusOK, logs)
}
