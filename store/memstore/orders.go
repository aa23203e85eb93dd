package memstore

import (
	"context"
	"shop-api/models"
	"shop-api/store"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStore is an in-memory store.OrderStore.
type OrderStore struct {
	mu     sync.RWMutex
	orders map[primitive.ObjectID]*models.Order
}

// NewOrderStore creates an empty OrderStore.
func NewOrderStore() *OrderStore {
	return &OrderStore{orders: make(map[primitive.ObjectID]*models.Order)}
}

func (s *OrderStore) Create(_ context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	ts := now()
	order.CreatedAt, order.UpdatedAt = ts, ts
	s.orders[order.ID] = cloneOrder(order)
	return nil
}

func (s *OrderStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneOrder(o), nil
}

func (s *OrderStore) List(_ context.Context, filter store.OrderFilter) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Order{}
	for _, o := range s.orders {
		if filter.UserID != nil && o.UserID != *filter.UserID {
			continue
		}
		out = append(out, *cloneOrder(o))
	}
	sortNewestFirst(out, func(o models.Order) (time.Time, primitive.ObjectID) { return o.CreatedAt, o.ID })
	return out, nil
}

func (s *OrderStore) ChangeStatus(_ context.Context, id primitive.ObjectID, change models.StatusChange) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if !change.Allows(o) {
		return nil, store.ErrConflict
	}
	change.Apply(o, now())
	return cloneOrder(o), nil
}

func (s *OrderStore) MarkPaid(_ context.Context, id primitive.ObjectID, paidAt time.Time, result models.PaymentResult) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	o.IsPaid = true
	o.PaidAt = &paidAt
	o.PaymentResult = &result
	o.UpdatedAt = now()
	return cloneOrder(o), nil
}
