package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrIncompleteImage is returned by BeforeSave when the image lacks an id or URL.
	ErrIncompleteImage = errors.New("product image requires both public_id and url")
	// ErrNegativePrice is returned by BeforeSave for prices below zero.
	ErrNegativePrice = errors.New("product price cannot be negative")
)

// Product represents a catalog product
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	Price       float64            `bson:"price" json:"price"`
	Description string             `bson:"description" json:"description"`
	CategoryID  primitive.ObjectID `bson:"category" json:"categoryId"`
	Category    *Category          `bson:"-" json:"category,omitempty"`
	Image       Image              `bson:"image" json:"image"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// BeforeSave is the persistence guard every store runs before writing a product.
func (p *Product) BeforeSave() error {
	if !p.Image.Complete() {
		return ErrIncompleteImage
	}
	if p.Price < 0 {
		return ErrNegativePrice
	}
	return nil
}
