// Package store defines the persistence contracts used by the services.
// mongostore implements them on MongoDB; memstore keeps everything in process
// for tests and local development.
package store

import (
	"context"
	"errors"
	"shop-api/models"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate is returned when a unique index would be violated.
	ErrDuplicate = errors.New("store: duplicate key")
	// ErrConflict is returned when a conditional update's precondition no longer holds.
	ErrConflict = errors.New("store: precondition failed")
)

// UserStore persists user accounts. Every read except FindCredentials omits the password hash.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	FindCredentials(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, update models.ProfileUpdate) (*models.User, error)
	UpdateRole(ctx context.Context, id primitive.ObjectID, role string) (*models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	AppendOrder(ctx context.Context, userID, orderID primitive.ObjectID) error
}

// CategoryStore persists catalog categories. Names are unique.
type CategoryStore interface {
	Create(ctx context.Context, category *models.Category) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	CategoryID *primitive.ObjectID
	Search     string
}

// ProductStore persists products. Implementations call Product.BeforeSave on every write.
type ProductStore interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	CountByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error)
}

// CartStore persists one cart per user. AddItem is an atomic increment-or-insert.
type CartStore interface {
	GetOrCreate(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	AddItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (*models.Cart, error)
	SetItemQuantity(ctx context.Context, userID, itemID primitive.ObjectID, quantity int) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID, itemID primitive.ObjectID) (*models.Cart, error)
	Clear(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
}

// OrderFilter narrows order listings. A nil UserID lists every order.
type OrderFilter struct {
	UserID *primitive.ObjectID
}

// OrderStore persists orders. ChangeStatus returns ErrConflict when the change's preconditions fail.
type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]models.Order, error)
	ChangeStatus(ctx context.Context, id primitive.ObjectID, change models.StatusChange) (*models.Order, error)
	MarkPaid(ctx context.Context, id primitive.ObjectID, paidAt time.Time, result models.PaymentResult) (*models.Order, error)
}

// Stores bundles one implementation of each collection.
type Stores struct {
	Users      UserStore
	Categories CategoryStore
	Products   ProductStore
	Carts      CartStore
	Orders     OrderStore
}
