package services

import (
	"context"
	"errors"
	"shop-api/logger"
	"shop-api/models"
	"shop-api/store"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var validate = validator.New()

// Identity is the authenticated caller, resolved from a session token.
type Identity struct {
	UserID primitive.ObjectID
	Role   string
	Name   string
	Email  string
}

// IsAdmin reports whether the caller holds the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

// ImageStore removes uploaded image objects. Removal is best-effort: the
// record pointing at the image has already changed when it is called.
type ImageStore interface {
	Delete(ctx context.Context, publicID string) error
}

// ParseID parses a hex object id. Malformed ids cannot resolve, so they are
// reported as "<entity> not found".
func ParseID(raw, entity string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, NotFound("%s not found", entity)
	}
	return id, nil
}

// storeError maps a store failure onto a service error.
func storeError(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return NotFound("%s not found", entity)
	case errors.Is(err, store.ErrDuplicate):
		return Conflict("%s already exists", entity)
	default:
		var serr *Error
		if errors.As(err, &serr) {
			return serr
		}
		return Internal(err)
	}
}

func removeImage(ctx context.Context, images ImageStore, publicID string) {
	if images == nil || publicID == "" {
		return
	}
	if err := images.Delete(ctx, publicID); err != nil {
		logger.FromContext(ctx).Warn("failed to delete image", zap.String("public_id", publicID), zap.Error(err))
	}
}

func utcNow() time.Time {
	return time.Now().UTC()
}
