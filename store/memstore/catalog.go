package memstore

import (
	"context"
	"shop-api/models"
	"shop-api/store"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CategoryStore is an in-memory store.CategoryStore.
type CategoryStore struct {
	mu         sync.RWMutex
	categories map[primitive.ObjectID]models.Category
}

// NewCategoryStore creates an empty CategoryStore.
func NewCategoryStore() *CategoryStore {
	return &CategoryStore{categories: make(map[primitive.ObjectID]models.Category)}
}

func (s *CategoryStore) nameTaken(name string, except primitive.ObjectID) bool {
	for id, c := range s.categories {
		if id != except && c.Name == name {
			return true
		}
	}
	return false
}

func (s *CategoryStore) Create(_ context.Context, category *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nameTaken(category.Name, primitive.NilObjectID) {
		return store.ErrDuplicate
	}
	if category.ID.IsZero() {
		category.ID = primitive.NewObjectID()
	}
	ts := now()
	category.CreatedAt, category.UpdatedAt = ts, ts
	s.categories[category.ID] = *category
	return nil
}

func (s *CategoryStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.categories[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (s *CategoryStore) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Category{}
	for id := range idSet(ids) {
		if c, ok := s.categories[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *CategoryStore) List(_ context.Context) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sortNewestFirst(out, func(c models.Category) (time.Time, primitive.ObjectID) { return c.CreatedAt, c.ID })
	return out, nil
}

func (s *CategoryStore) Update(_ context.Context, category *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.categories[category.ID]
	if !ok {
		return store.ErrNotFound
	}
	if s.nameTaken(category.Name, category.ID) {
		return store.ErrDuplicate
	}
	category.CreatedAt = existing.CreatedAt
	category.UpdatedAt = now()
	s.categories[category.ID] = *category
	return nil
}

func (s *CategoryStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.categories, id)
	return nil
}

// ProductStore is an in-memory store.ProductStore.
type ProductStore struct {
	mu       sync.RWMutex
	products map[primitive.ObjectID]models.Product
}

// NewProductStore creates an empty ProductStore.
func NewProductStore() *ProductStore {
	return &ProductStore{products: make(map[primitive.ObjectID]models.Product)}
}

func (s *ProductStore) Create(_ context.Context, product *models.Product) error {
	if err := product.BeforeSave(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	ts := now()
	product.CreatedAt, product.UpdatedAt = ts, ts
	stored := *product
	stored.Category = nil
	s.products[product.ID] = stored
	return nil
}

func (s *ProductStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (s *ProductStore) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Product{}
	for id := range idSet(ids) {
		if p, ok := s.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *ProductStore) List(_ context.Context, filter store.ProductFilter) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := []models.Product{}
	for _, p := range s.products {
		if filter.CategoryID != nil && p.CategoryID != *filter.CategoryID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		out = append(out, p)
	}
	sortNewestFirst(out, func(p models.Product) (time.Time, primitive.ObjectID) { return p.CreatedAt, p.ID })
	return out, nil
}

func (s *ProductStore) Update(_ context.Context, product *models.Product) error {
	if err := product.BeforeSave(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.products[product.ID]
	if !ok {
		return store.ErrNotFound
	}
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = now()
	stored := *product
	stored.Category = nil
	s.products[product.ID] = stored
	return nil
}

func (s *ProductStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *ProductStore) CountByCategory(_ context.Context, categoryID primitive.ObjectID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, p := range s.products {
		if p.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}
