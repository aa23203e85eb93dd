package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem represents a line in the cart. Product is only set on hydrated reads.
type CartItem struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	ProductID primitive.ObjectID `bson:"product" json:"productId"`
	Product   *Product           `bson:"-" json:"product,omitempty"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

// Cart represents a user's shopping cart
type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID    primitive.ObjectID `bson:"user" json:"userId"`
	Items     []CartItem         `bson:"items" json:"items"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Item returns the line with the given line-item id, or nil.
func (c *Cart) Item(itemID primitive.ObjectID) *CartItem {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return &c.Items[i]
		}
	}
	return nil
}

// ItemForProduct returns the line holding productID, or nil.
func (c *Cart) ItemForProduct(productID primitive.ObjectID) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// TotalQuantity sums the quantities of all lines.
func (c *Cart) TotalQuantity() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}
