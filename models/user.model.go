package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a user can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// Image references an object stored on the image host.
type Image struct {
	PublicID string `bson:"public_id" json:"public_id"`
	URL      string `bson:"url" json:"url"`
}

// Complete reports whether both the storage id and the URL are present.
func (i Image) Complete() bool {
	return strings.TrimSpace(i.PublicID) != "" && strings.TrimSpace(i.URL) != ""
}

// User represents a customer or administrator account
type User struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Name      string               `bson:"name" json:"name"`
	Email     string               `bson:"email" json:"email"`
	Password  string               `bson:"password,omitempty" json:"-"`
	Role      string               `bson:"role" json:"role"`
	Address   string               `bson:"address" json:"address"`
	Image     Image                `bson:"image" json:"image"`
	Orders    []primitive.ObjectID `bson:"orders" json:"orders"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Public returns a copy of the user without the credential hash.
func (u User) Public() User {
	u.Password = ""
	if u.Orders == nil {
		u.Orders = []primitive.ObjectID{}
	}
	return u
}

// NormalizeEmail lower-cases and trims an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ProfileUpdate carries the fields a user may change on their own profile.
// Image is only replaced when non-nil.
type ProfileUpdate struct {
	Name    string
	Email   string
	Address string
	Image   *Image
}
