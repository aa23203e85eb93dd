package services

import (
	"context"
	"errors"
	"shop-api/metrics"
	"shop-api/models"
	"shop-api/store"
	"shop-api/utils"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MinPasswordLen is the shortest password accepted at signup.
const MinPasswordLen = 6

// invalidCredentials is the single message for unknown email and wrong password.
const invalidCredentials = "Invalid email or password"

// AuthService handles signup, login, profiles and token authentication.
type AuthService struct {
	users  store.UserStore
	tokens *utils.TokenManager
	images ImageStore
}

// NewAuthService creates an AuthService. images may be nil.
func NewAuthService(users store.UserStore, tokens *utils.TokenManager, images ImageStore) *AuthService {
	return &AuthService{users: users, tokens: tokens, images: images}
}

// SignupInput is the data needed to create an account.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Address  string
	Image    models.Image
}

// Session is a signed token plus the public projection of its user.
type Session struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func validEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}

// Signup creates a user with a hashed password and returns a session.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	name := strings.TrimSpace(in.Name)
	email := models.NormalizeEmail(in.Email)
	switch {
	case name == "":
		return nil, Validation("Name is required")
	case !validEmail(email):
		return nil, Validation("Please provide a valid email")
	case len(in.Password) < MinPasswordLen:
		return nil, Validation("Password must be at least %d characters", MinPasswordLen)
	case !in.Image.Complete():
		return nil, Validation("Image public_id and url are required")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, Internal(err)
	}
	user := &models.User{
		Name:     name,
		Email:    email,
		Password: hash,
		Role:     models.RoleUser,
		Address:  strings.TrimSpace(in.Address),
		Image:    in.Image,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, Conflict("User already exists")
		}
		return nil, Internal(err)
	}
	return s.session(user)
}

// Login checks the credentials and returns a session. Unknown email and wrong
// password fail identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.FindCredentials(ctx, models.NormalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		return nil, Unauthenticated(invalidCredentials)
	}
	if err != nil {
		return nil, Internal(err)
	}
	if !utils.CheckPassword(user.Password, password) {
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		return nil, Unauthenticated(invalidCredentials)
	}
	metrics.LoginAttempts.WithLabelValues("success").Inc()
	return s.session(user)
}

func (s *AuthService) session(user *models.User) (*Session, error) {
	token, err := s.tokens.Generate(user.ID.Hex(), user.Role)
	if err != nil {
		return nil, Internal(err)
	}
	return &Session{Token: token, User: user.Public()}, nil
}

// GetProfile returns the caller's own public record.
func (s *AuthService) GetProfile(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "User")
	}
	public := user.Public()
	return &public, nil
}

// UpdateProfile changes name, email, address and optionally the image. Empty
// fields keep their current value; role and password are never touched.
func (s *AuthService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, update models.ProfileUpdate) (*models.User, error) {
	current, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "User")
	}

	merged := models.ProfileUpdate{
		Name:    strings.TrimSpace(update.Name),
		Email:   models.NormalizeEmail(update.Email),
		Address: strings.TrimSpace(update.Address),
		Image:   update.Image,
	}
	if merged.Name == "" {
		merged.Name = current.Name
	}
	if merged.Email == "" {
		merged.Email = current.Email
	}
	if merged.Address == "" {
		merged.Address = current.Address
	}
	if !validEmail(merged.Email) {
		return nil, Validation("Please provide a valid email")
	}
	if merged.Image != nil && !merged.Image.Complete() {
		return nil, Validation("Image public_id and url are required")
	}

	user, err := s.users.UpdateProfile(ctx, userID, merged)
	if errors.Is(err, store.ErrDuplicate) {
		return nil, Conflict("Email is already in use")
	}
	if err != nil {
		return nil, storeError(err, "User")
	}
	if merged.Image != nil && merged.Image.PublicID != current.Image.PublicID {
		removeImage(ctx, s.images, current.Image.PublicID)
	}
	public := user.Public()
	return &public, nil
}

// Authenticate verifies a bearer token and loads its user so role changes
// apply to tokens already issued. A token whose user is gone still resolves to
// the id and role it carries; handlers report the missing user themselves.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, Unauthenticated("Not authorized, no token")
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, Unauthenticated("Not authorized, token failed")
	}
	id, err := primitive.ObjectIDFromHex(claims.ID)
	if err != nil {
		return nil, Unauthenticated("Not authorized, token failed")
	}
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return &Identity{UserID: id, Role: claims.Role}, nil
	}
	if err != nil {
		return nil, Internal(err)
	}
	return &Identity{UserID: user.ID, Role: user.Role, Name: user.Name, Email: user.Email}, nil
}
