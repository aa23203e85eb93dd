package services

import (
	"context"
	"errors"
	"shop-api/metrics"
	"shop-api/models"
	"shop-api/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartService maintains one cart per user. Every operation returns the cart
// with each line's product resolved.
type CartService struct {
	carts    store.CartStore
	products store.ProductStore
}

// NewCartService creates a CartService.
func NewCartService(carts store.CartStore, products store.ProductStore) *CartService {
	return &CartService{carts: carts, products: products}
}

// Get returns the user's cart, creating an empty one on first access.
func (s *CartService) Get(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, Internal(err)
	}
	return s.hydrate(ctx, cart)
}

// AddItem adds quantity of a product, incrementing the existing line if present.
func (s *CartService) AddItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, Validation("Quantity must be at least 1")
	}
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return nil, storeError(err, "Product")
	}
	cart, err := s.carts.AddItem(ctx, userID, productID, quantity)
	if err != nil {
		return nil, Internal(err)
	}
	metrics.CartItemsAdded.Add(float64(quantity))
	return s.hydrate(ctx, cart)
}

// UpdateItemQuantity sets the quantity of one line.
func (s *CartService) UpdateItemQuantity(ctx context.Context, userID, itemID primitive.ObjectID, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, Validation("Quantity must be at least 1")
	}
	cart, err := s.carts.SetItemQuantity(ctx, userID, itemID, quantity)
	if errors.Is(err, store.ErrNotFound) {
		return nil, NotFound("Item not found in cart")
	}
	if err != nil {
		return nil, Internal(err)
	}
	return s.hydrate(ctx, cart)
}

// RemoveItem drops one line by its line-item id. Removing an absent line is not an error.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID primitive.ObjectID) (*models.Cart, error) {
	cart, err := s.carts.RemoveItem(ctx, userID, itemID)
	if err != nil {
		return nil, Internal(err)
	}
	return s.hydrate(ctx, cart)
}

// Clear empties the cart. The cart itself is kept.
func (s *CartService) Clear(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	cart, err := s.carts.Clear(ctx, userID)
	if err != nil {
		return nil, Internal(err)
	}
	return s.hydrate(ctx, cart)
}

func (s *CartService) hydrate(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	if len(cart.Items) == 0 {
		return cart, nil
	}
	ids := make([]primitive.ObjectID, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, Internal(err)
	}
	byID := make(map[primitive.ObjectID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for i := range cart.Items {
		if p, ok := byID[cart.Items[i].ProductID]; ok {
			cart.Items[i].Product = &p
		}
	}
	return cart, nil
}
