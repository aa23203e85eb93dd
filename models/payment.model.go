package models

import "time"

// PaymentResult records the outcome reported by the payment provider
type PaymentResult struct {
	ID           string    `bson:"id" json:"id"`
	Status       string    `bson:"status" json:"status"`
	UpdateTime   time.Time `bson:"update_time" json:"update_time"`
	EmailAddress string    `bson:"email_address" json:"email_address"`
}

// Payment statuses.
const (
	PaymentCompleted = "COMPLETED"
)

// CashOnDelivery is the only payment method that leaves an order unpaid at checkout.
const CashOnDelivery = "Cash on Delivery"
