package routes

import (
	"learning-platform/config"
	"learning-platform/database"
	adminapi "learning-platform/internal/api/admin"
	authapi "learning-platform/internal/api/auth"
	billingapi "learning-platform/internal/api/billing"
	coursesapi "learning-platform/internal/api/courses"
	stripewebhooks "learning-platform/internal/api/stripewebhook"
	usersapi "learning-platform/internal/api/users"
	"learning-platform/internal/app/http/middleware"
	"learning-platform/internal/domain/users"
	"learning-platform/internal/infra/mailer"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	// The webhook endpoint verifies its own signature and must see the raw
	// body, so it bypasses the sanitization middleware entirely.
	webhook := stripewebhooks.New(database.DB, mailer.NewSMTP(), config.STRIPE_WEBHOOK_SECRET)
	r.POST("/webhook", webhook.HandleWebhook)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	public := r.Group("/")
	public.Use(middleware.SanitizeAndCleanInputMiddleware())

	public.POST("/register", authapi.Register)
	public.POST("/login", authapi.Login)
	public.GET("/plans", billingapi.ListPlansFromStripe)
	public.GET("/courses", coursesapi.ListCourses)
	public.GET("/courses/:id", coursesapi.GetCourse)

	public.GET("/auth/google", authapi.GoogleStart)
	public.GET("/auth/google/callback", authapi.GoogleCallback)

	// Authenticated
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware())
	auth.GET("/me", usersapi.GetCurrentUser)
	auth.GET("/payments", billingapi.GetPaymentHistory)
	auth.POST("/checkout/courses", billingapi.CreateCourseCheckout)
	auth.POST("/checkout/subscription", billingapi.CreateSubscriptionCheckout)
	auth.POST("/billing-portal", billingapi.CreateBillingPortal)

	auth.GET("/registrations", coursesapi.ListMyRegistrations)
	auth.POST("/registrations/:id/cancel", coursesapi.CancelRegistration)

	// Premium-gated sample surface; the guard reads the plan from the DB so
	// webhook downgrades apply immediately.
	premium := auth.Group("/")
	premium.Use(middleware.RequirePlan(users.PlanPremium))
	premium.GET("/premium/library", coursesapi.ListCourses)

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRole("admin"))
	admin.GET("/dashboard", adminapi.Dashboard)
	admin.GET("/users", adminapi.ListAllUsers)
	admin.GET("/payments", adminapi.ListAllPayments)
	admin.GET("/error-logs", adminapi.ListErrorLogs)
	admin.POST("/courses", coursesapi.CreateCourse)
	admin.PUT("/courses/:id", coursesapi.UpdateCourse)
}
