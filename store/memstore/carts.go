package memstore

import (
	"context"
	"shop-api/models"
	"shop-api/store"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartStore is an in-memory store.CartStore. A single mutex makes every
// mutation atomic, matching the conditional updates of the Mongo store.
type CartStore struct {
	mu    sync.Mutex
	carts map[primitive.ObjectID]*models.Cart
}

// NewCartStore creates an empty CartStore.
func NewCartStore() *CartStore {
	return &CartStore{carts: make(map[primitive.ObjectID]*models.Cart)}
}

func (s *CartStore) getOrCreateLocked(userID primitive.ObjectID) *models.Cart {
	cart, ok := s.carts[userID]
	if !ok {
		ts := now()
		cart = &models.Cart{
			ID:        primitive.NewObjectID(),
			UserID:    userID,
			Items:     []models.CartItem{},
			CreatedAt: ts,
			UpdatedAt: ts,
		}
		s.carts[userID] = cart
	}
	return cart
}

func (s *CartStore) GetOrCreate(_ context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return cloneCart(s.getOrCreateLocked(userID)), nil
}

func (s *CartStore) AddItem(_ context.Context, userID, productID primitive.ObjectID, quantity int) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.getOrCreateLocked(userID)
	if item := cart.ItemForProduct(productID); item != nil {
		item.Quantity += quantity
	} else {
		cart.Items = append(cart.Items, models.CartItem{
			ID:        primitive.NewObjectID(),
			ProductID: productID,
			Quantity:  quantity,
		})
	}
	cart.UpdatedAt = now()
	return cloneCart(cart), nil
}

func (s *CartStore) SetItemQuantity(_ context.Context, userID, itemID primitive.ObjectID, quantity int) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.carts[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	item := cart.Item(itemID)
	if item == nil {
		return nil, store.ErrNotFound
	}
	item.Quantity = quantity
	cart.UpdatedAt = now()
	return cloneCart(cart), nil
}

func (s *CartStore) RemoveItem(_ context.Context, userID, itemID primitive.ObjectID) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.getOrCreateLocked(userID)
	kept := cart.Items[:0]
	for _, item := range cart.Items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	cart.Items = kept
	cart.UpdatedAt = now()
	return cloneCart(cart), nil
}

func (s *CartStore) Clear(_ context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.getOrCreateLocked(userID)
	cart.Items = []models.CartItem{}
	cart.UpdatedAt = now()
	return cloneCart(cart), nil
}
