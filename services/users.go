package services

import (
	"context"
	"errors"
	"shop-api/models"
	"shop-api/store"
	"shop-api/utils"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserService is the admin view of user accounts.
type UserService struct {
	users store.UserStore
}

// NewUserService creates a UserService.
func NewUserService(users store.UserStore) *UserService {
	return &UserService{users: users}
}

// List returns every user, newest first.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, Internal(err)
	}
	for i := range users {
		users[i] = users[i].Public()
	}
	return users, nil
}

// Get returns one user.
func (s *UserService) Get(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "User")
	}
	public := user.Public()
	return &public, nil
}

// Delete removes a user. Admins cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, caller Identity, id primitive.ObjectID) error {
	if caller.UserID == id {
		return Validation("You cannot delete your own account")
	}
	return storeError(s.users.Delete(ctx, id), "User")
}

// UpdateRole sets the role of a user. Admins cannot demote themselves.
func (s *UserService) UpdateRole(ctx context.Context, caller Identity, id primitive.ObjectID, role string) (*models.User, error) {
	if !models.ValidRole(role) {
		return nil, Validation("Invalid role. Must be one of: user, admin")
	}
	if caller.UserID == id && role != models.RoleAdmin {
		return nil, Validation("You cannot change your own role")
	}
	user, err := s.users.UpdateRole(ctx, id, role)
	if err != nil {
		return nil, storeError(err, "User")
	}
	public := user.Public()
	return &public, nil
}

// CreateAdmin provisions an admin account from the command line. No image is
// required for operator accounts.
func (s *UserService) CreateAdmin(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = models.NormalizeEmail(email)
	switch {
	case name == "":
		return nil, Validation("Name is required")
	case !validEmail(email):
		return nil, Validation("Please provide a valid email")
	case len(password) < MinPasswordLen:
		return nil, Validation("Password must be at least %d characters", MinPasswordLen)
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, Internal(err)
	}
	user := &models.User{Name: name, Email: email, Password: hash, Role: models.RoleAdmin}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, Conflict("User already exists")
		}
		return nil, Internal(err)
	}
	public := user.Public()
	return &public, nil
}
