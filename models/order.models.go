package models

import (
	"encoding/json"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
)

// DefaultTrackingNumber is stored until an admin assigns a real one.
const DefaultTrackingNumber = "Pending"

// IsValid checks if the status is one of the known values
func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is defined from s.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo checks the adjacency list. Staying in the same state is allowed.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if s == target {
		return true
	}
	switch s {
	case StatusProcessing:
		return target == StatusShipped || target == StatusCancelled
	case StatusShipped:
		return target == StatusDelivered || target == StatusCancelled
	}
	return false
}

// OrderItem is a frozen snapshot of a product at checkout time
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"product" json:"product"`
	Name      string             `bson:"name" json:"name"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Price     float64            `bson:"price" json:"price"`
	Image     Image              `bson:"image" json:"image"`
}

// ShippingAddress is where an order is delivered
type ShippingAddress struct {
	Name    string `bson:"name" json:"name"`
	Street  string `bson:"street" json:"street"`
	City    string `bson:"city" json:"city"`
	State   string `bson:"state" json:"state"`
	Zip     string `bson:"zip" json:"zip"`
	Country string `bson:"country" json:"country"`
	Phone   string `bson:"phone" json:"phone"`
}

// MissingField returns the name of the first empty field, or "" if the address is complete.
func (a ShippingAddress) MissingField() string {
	fields := []struct {
		name  string
		value string
	}{
		{"name", a.Name},
		{"street", a.Street},
		{"city", a.City},
		{"state", a.State},
		{"zip", a.Zip},
		{"country", a.Country},
		{"phone", a.Phone},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return f.name
		}
	}
	return ""
}

// OrderOwner is the subset of the owning user shown alongside an order.
type OrderOwner struct {
	ID    primitive.ObjectID `json:"_id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
}

// Order represents a placed order
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID          primitive.ObjectID `bson:"user" json:"userId"`
	Owner           *OrderOwner        `bson:"-" json:"user,omitempty"`
	OrderItems      []OrderItem        `bson:"orderItems" json:"orderItems"`
	ShippingAddress ShippingAddress    `bson:"shippingAddress" json:"shippingAddress"`
	PaymentMethod   string             `bson:"paymentMethod" json:"paymentMethod"`
	PaymentResult   *PaymentResult     `bson:"paymentResult,omitempty" json:"paymentResult,omitempty"`
	Subtotal        float64            `bson:"subtotal" json:"subtotal"`
	ShippingCost    float64            `bson:"shippingCost" json:"shippingCost"`
	Tax             float64            `bson:"tax" json:"tax"`
	Total           float64            `bson:"total" json:"total"`
	Status          OrderStatus        `bson:"status" json:"status"`
	TrackingNumber  string             `bson:"trackingNumber" json:"trackingNumber"`
	IsPaid          bool               `bson:"isPaid" json:"isPaid"`
	PaidAt          *time.Time         `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	IsDelivered     bool               `bson:"isDelivered" json:"isDelivered"`
	DeliveredAt     *time.Time         `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// DisplayID is the short customer-facing reference derived from the trailing id characters.
func (o *Order) DisplayID() string {
	hex := o.ID.Hex()
	return "#" + strings.ToUpper(hex[len(hex)-8:])
}

// BelongsTo reports whether userID owns the order.
func (o *Order) BelongsTo(userID primitive.ObjectID) bool {
	return o.UserID == userID
}

type orderJSON Order

// MarshalJSON adds the derived displayId to the stored fields.
func (o Order) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		orderJSON
		DisplayID string `json:"displayId"`
	}{orderJSON(o), o.DisplayID()})
}

// StatusChange describes a conditional status update applied atomically by the store.
type StatusChange struct {
	Status         OrderStatus
	TrackingNumber string
	// DeliveredAt is set when the change marks the order delivered.
	DeliveredAt *time.Time
	// From, when non-empty, restricts the update to orders currently in one of these states.
	From []OrderStatus
	// RequireUndelivered restricts the update to orders not yet delivered.
	RequireUndelivered bool
}

// Allows reports whether the change's preconditions hold for o.
func (c StatusChange) Allows(o *Order) bool {
	if c.RequireUndelivered && o.IsDelivered {
		return false
	}
	if len(c.From) == 0 {
		return true
	}
	for _, s := range c.From {
		if o.Status == s {
			return true
		}
	}
	return false
}

// Apply mutates o according to the change. Preconditions are not checked.
func (c StatusChange) Apply(o *Order, now time.Time) {
	o.Status = c.Status
	if c.TrackingNumber != "" {
		o.TrackingNumber = c.TrackingNumber
	}
	if c.DeliveredAt != nil {
		o.IsDelivered = true
		o.DeliveredAt = c.DeliveredAt
	}
	o.UpdatedAt = now
}
