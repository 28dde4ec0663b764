package stripewebhooks

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"learning-platform/internal/domain/oplog"
	"learning-platform/internal/infra/mailer"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/webhook"

	"gorm.io/gorm"
)

// Handler processes Stripe webhook deliveries. Stripe delivers at least once
// and retries on any non-2xx response, so once an event parses and its
// signature checks out, the endpoint always acknowledges with 200: individual
// event handlers swallow their own errors and record them for the admin
// error-log view instead of triggering a retry storm.
type Handler struct {
	db             *gorm.DB
	mail           mailer.Mailer
	endpointSecret string
}

func New(db *gorm.DB, mail mailer.Mailer, endpointSecret string) *Handler {
	return &Handler{db: db, mail: mail, endpointSecret: endpointSecret}
}

func (h *Handler) HandleWebhook(c *gin.Context) {
	if h.endpointSecret == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "STRIPE_WEBHOOK_SECRET not configured"})
		return
	}

	payload, err := readStripeBody(c, 65536)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Error reading request body"})
		return
	}

	// Fail closed: a bad signature terminates the request with zero side
	// effects.
	event, err := webhook.ConstructEventWithOptions(
		payload,
		c.GetHeader("Stripe-Signature"),
		h.endpointSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		fmt.Println("❌ Stripe signature verification failed:", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Signature verification failed"})
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		h.dispatch(string(event.Type), event.Data.Raw, &session, func() error {
			return h.handleCheckoutCompleted(&session)
		})

	case "customer.subscription.created":
		var sub stripe.Subscription
		h.dispatch(string(event.Type), event.Data.Raw, &sub, func() error {
			return h.handleSubscriptionCreated(&sub)
		})

	case "customer.subscription.updated":
		var sub stripe.Subscription
		h.dispatch(string(event.Type), event.Data.Raw, &sub, func() error {
			return h.handleSubscriptionUpdated(&sub)
		})

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		h.dispatch(string(event.Type), event.Data.Raw, &sub, func() error {
			return h.handleSubscriptionDeleted(&sub)
		})

	case "payment_intent.succeeded":
		var pi stripe.PaymentIntent
		h.dispatch(string(event.Type), event.Data.Raw, &pi, func() error {
			return h.handlePaymentSucceeded(&pi)
		})

	case "payment_intent.payment_failed":
		var pi stripe.PaymentIntent
		h.dispatch(string(event.Type), event.Data.Raw, &pi, func() error {
			return h.handlePaymentFailed(&pi)
		})

	case "payment_intent.canceled":
		var pi stripe.PaymentIntent
		h.dispatch(string(event.Type), event.Data.Raw, &pi, func() error {
			return h.handlePaymentCanceled(&pi)
		})

	default:
		// Acknowledge unknown events to avoid retries.
		fmt.Println("ℹ️ Ignoring unhandled Stripe event type:", event.Type)
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// dispatch unmarshals the event payload into dst and runs the handler,
// swallowing both parse and handler errors.
func (h *Handler) dispatch(eventType string, raw json.RawMessage, dst interface{}, run func() error) {
	if err := json.Unmarshal(raw, dst); err != nil {
		fmt.Printf("❌ Failed to parse %s payload: %v\n", eventType, err)
		oplog.Record(h.db, "webhook."+eventType, "failed to parse event payload", err)
		return
	}
	if err := run(); err != nil {
		fmt.Printf("❌ Webhook handler %s failed: %v\n", eventType, err)
		oplog.Record(h.db, "webhook."+eventType, "handler failed", err)
	}
}

func readStripeBody(c *gin.Context, maxBytes int64) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	return io.ReadAll(c.Request.Body)
}
