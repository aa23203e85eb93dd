package utils

import (
	"context"
	"fmt"
	"html"
	"shop-api/models"
	"strings"

	"github.com/keighl/postmark"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// Message is a single outgoing email.
type Message struct {
	To       string
	ToName   string
	Subject  string
	HTMLBody string
	TextBody string
}

// Mailer delivers transactional email.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// PostmarkMailer sends email through Postmark.
type PostmarkMailer struct {
	client *postmark.Client
	from   string
}

// NewPostmarkMailer creates a PostmarkMailer for the given server token.
func NewPostmarkMailer(serverToken, from string) *PostmarkMailer {
	return &PostmarkMailer{client: postmark.NewClient(serverToken, ""), from: from}
}

func (m *PostmarkMailer) Send(_ context.Context, msg Message) error {
	_, err := m.client.SendEmail(postmark.Email{
		From:     m.from,
		To:       msg.To,
		Subject:  msg.Subject,
		HtmlBody: msg.HTMLBody,
		TextBody: msg.TextBody,
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendGridMailer sends email through the SendGrid v3 API.
type SendGridMailer struct {
	client *sendgrid.Client
	from   *mail.Email
}

// NewSendGridMailer creates a SendGridMailer for the given API key.
func NewSendGridMailer(apiKey, from string) *SendGridMailer {
	return &SendGridMailer{client: sendgrid.NewSendClient(apiKey), from: mail.NewEmail("", from)}
}

func sendgridMessage(from *mail.Email, msg Message) *mail.SGMailV3 {
	return mail.NewSingleEmail(from, msg.Subject, mail.NewEmail(msg.ToName, msg.To), msg.TextBody, msg.HTMLBody)
}

func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	resp, err := m.client.SendWithContext(ctx, sendgridMessage(m.from, msg))
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("failed to send email: sendgrid status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// LogMailer writes emails to the log instead of sending them.
type LogMailer struct {
	Logger *zap.Logger
}

func (m LogMailer) Send(_ context.Context, msg Message) error {
	m.Logger.Info("email",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.TextBody),
	)
	return nil
}

// OrderConfirmation renders the order-placed email sent to the customer.
func OrderConfirmation(name, email string, order *models.Order) Message {
	var text strings.Builder
	fmt.Fprintf(&text, "Dear %s,\n\nThank you for your purchase! Your order %s has been placed.\n\n", name, order.DisplayID())
	for _, item := range order.OrderItems {
		fmt.Fprintf(&text, "  %d x %s @ $%.2f\n", item.Quantity, item.Name, item.Price)
	}
	fmt.Fprintf(&text, "\nSubtotal: $%.2f\nShipping: $%.2f\nTax: $%.2f\nTotal: $%.2f\nPayment method: %s\n",
		order.Subtotal, order.ShippingCost, order.Tax, order.Total, order.PaymentMethod)

	htmlBody := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>Thank you for your purchase! Your order <strong>%s</strong> has been placed successfully.<br><br>Total Amount: <strong>$%.2f</strong><br>Payment Method: <strong>%s</strong><br><br>Thank you for shopping with us!",
		html.EscapeString(name),
		order.DisplayID(),
		order.Total,
		html.EscapeString(order.PaymentMethod),
	)

	return Message{
		To:       email,
		ToName:   name,
		Subject:  "Order Confirmation " + order.DisplayID(),
		HTMLBody: htmlBody,
		TextBody: text.String(),
	}
}
