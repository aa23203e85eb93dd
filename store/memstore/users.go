package memstore

import (
	"context"
	"shop-api/models"
	"shop-api/store"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserStore is an in-memory store.UserStore.
type UserStore struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]*models.User
}

// NewUserStore creates an empty UserStore.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[primitive.ObjectID]*models.User)}
}

func (s *UserStore) emailTaken(email string, except primitive.ObjectID) bool {
	for id, u := range s.users {
		if id != except && u.Email == email {
			return true
		}
	}
	return false
}

func public(u *models.User) *models.User {
	c := cloneUser(u)
	c.Password = ""
	return c
}

func (s *UserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emailTaken(user.Email, primitive.NilObjectID) {
		return store.ErrDuplicate
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	ts := now()
	user.CreatedAt, user.UpdatedAt = ts, ts
	if user.Orders == nil {
		user.Orders = []primitive.ObjectID{}
	}
	s.users[user.ID] = cloneUser(user)
	return nil
}

func (s *UserStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return public(u), nil
}

func (s *UserStore) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := idSet(ids)
	out := []models.User{}
	for id, u := range s.users {
		if _, ok := want[id]; ok {
			out = append(out, *public(u))
		}
	}
	return out, nil
}

func (s *UserStore) FindCredentials(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *UserStore) List(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *public(u))
	}
	sortNewestFirst(out, func(u models.User) (time.Time, primitive.ObjectID) { return u.CreatedAt, u.ID })
	return out, nil
}

func (s *UserStore) UpdateProfile(_ context.Context, id primitive.ObjectID, update models.ProfileUpdate) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if s.emailTaken(update.Email, id) {
		return nil, store.ErrDuplicate
	}
	u.Name = update.Name
	u.Email = update.Email
	u.Address = update.Address
	if update.Image != nil {
		u.Image = *update.Image
	}
	u.UpdatedAt = now()
	return public(u), nil
}

func (s *UserStore) UpdateRole(_ context.Context, id primitive.ObjectID, role string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	u.Role = role
	u.UpdatedAt = now()
	return public(u), nil
}

func (s *UserStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *UserStore) AppendOrder(_ context.Context, userID, orderID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	u.Orders = append(u.Orders, orderID)
	return nil
}
