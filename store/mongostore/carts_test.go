package mongostore

import (
	"context"
	"shop-api/store"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// unreachableDatabase returns a database handle whose server never answers.
func unreachableDatabase(t *testing.T) *mongo.Database {
	t.Helper()
	client, err := mongo.Connect(context.Background(), options.Client().
		ApplyURI("mongodb://127.0.0.1:1").
		SetServerSelectionTimeout(time.Second))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })
	return client.Database("shop_test")
}

func TestCartAddItemWrapsDriverErrors(t *testing.T) {
	carts := NewCartStore(unreachableDatabase(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := carts.AddItem(ctx, primitive.NewObjectID(), primitive.NewObjectID(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cart add item")
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, store.ErrConflict)
}
