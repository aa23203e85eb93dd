package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Field limits for categories.
const (
	MaxCategoryNameLen        = 50
	MaxCategoryDescriptionLen = 500
)

// Category groups products in the catalog
type Category struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
