package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"learning-platform/config"
)

// RegisteredCourse is one line item of a confirmation email.
type RegisteredCourse struct {
	Title     string
	StartsAt  string
	AmountJPY int64
}

// Mailer sends transactional mail. The webhook reconciler treats every send
// as best effort: a failure is logged, never rolled back into persistence.
type Mailer interface {
	SendRegistrationConfirmation(to string, courses []RegisteredCourse) error
	SendPaymentFailed(to string, amountJPY int64) error
}

// SMTPMailer sends through the SMTP relay configured in the environment.
type SMTPMailer struct{}

func NewSMTP() *SMTPMailer {
	return &SMTPMailer{}
}

func (m *SMTPMailer) SendRegistrationConfirmation(to string, courses []RegisteredCourse) error {
	var b strings.Builder
	b.WriteString("Your seminar registration is confirmed.\n\n")
	for _, c := range courses {
		fmt.Fprintf(&b, "- %s (%s) ¥%d\n", c.Title, c.StartsAt, c.AmountJPY)
	}
	b.WriteString("\nJoin links are available on your account page:\n")
	b.WriteString(config.APP_URL + "/account\n")

	return m.send(to, "Seminar Registration Confirmed", b.String())
}

func (m *SMTPMailer) SendPaymentFailed(to string, amountJPY int64) error {
	body := fmt.Sprintf(
		"Your payment of ¥%d could not be completed.\n\nNo seminar registration was created. Please check your payment method and try again:\n%s/account\n",
		amountJPY, config.APP_URL,
	)
	return m.send(to, "Payment Failed", body)
}

func (m *SMTPMailer) send(to, subject, body string) error {
	from := config.SMTP_FROM
	host := config.SMTP_HOST
	port := config.SMTP_PORT

	auth := smtp.PlainAuth("", from, config.SMTP_PASSWORD, host)

	message := []byte("Subject: " + subject + "\r\n" +
		"From: " + from + "\r\n" +
		"To: " + to + "\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"\r\n" +
		body + "\r\n")

	err := smtp.SendMail(host+":"+port, auth, from, []string{to}, message)
	if err != nil {
		fmt.Println("❌ SMTP error:", err)
	}
	return err
}
