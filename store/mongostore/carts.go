package mongostore

import (
	"context"
	"errors"
	"fmt"
	"shop-api/metrics"
	"shop-api/models"
	"shop-api/store"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// upsertAttempts bounds the retries when two requests race to create the same cart.
const upsertAttempts = 3

// CartStore is the MongoDB store.CartStore. Every mutation is a single
// conditional update on the cart document; nothing is read-modify-written.
type CartStore struct {
	Collection *mongo.Collection
}

// NewCartStore creates a CartStore over the carts collection.
func NewCartStore(db *mongo.Database) *CartStore {
	return &CartStore{Collection: db.Collection(CartsCollection)}
}

var returnAfter = options.FindOneAndUpdate().SetReturnDocument(options.After)

// upsert applies update to the user's cart, creating it when missing. The
// unique index on user turns a lost creation race into a duplicate-key error,
// after which the update is retried against the now existing document.
func (s *CartStore) upsert(ctx context.Context, userID primitive.ObjectID, update bson.M) (*models.Cart, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After).SetUpsert(true)
	for attempt := 0; attempt < upsertAttempts; attempt++ {
		var cart models.Cart
		err := s.Collection.FindOneAndUpdate(ctx, bson.M{"user": userID}, update, opts).Decode(&cart)
		if mongo.IsDuplicateKeyError(err) {
			continue
		}
		if err != nil {
			return nil, translate(err)
		}
		if cart.Items == nil {
			cart.Items = []models.CartItem{}
		}
		return &cart, nil
	}
	return nil, fmt.Errorf("cart upsert: %w", store.ErrConflict)
}

func (s *CartStore) GetOrCreate(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	defer metrics.ObserveStoreOp(CartsCollection, "get_or_create", time.Now())

	ts := now()
	return s.upsert(ctx, userID, bson.M{
		"$setOnInsert": bson.M{"items": bson.A{}, "createdAt": ts, "updatedAt": ts},
	})
}

func (s *CartStore) AddItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (*models.Cart, error) {
	defer metrics.ObserveStoreOp(CartsCollection, "add_item", time.Now())

	for attempt := 0; attempt < upsertAttempts; attempt++ {
		ts := now()

		// Existing line: increment it in place.
		var cart models.Cart
		err := s.Collection.FindOneAndUpdate(ctx,
			bson.M{"user": userID, "items.product": productID},
			bson.M{
				"$inc": bson.M{"items.$.quantity": quantity},
				"$set": bson.M{"updatedAt": ts},
			},
			returnAfter,
		).Decode(&cart)
		if err == nil {
			return &cart, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("cart add item: %w", translate(err))
		}

		// No line for the product yet: push one, creating the cart if needed.
		// The $ne guard stops a concurrent push of the same product from
		// producing a second line; that case falls back to the increment.
		item := models.CartItem{ID: primitive.NewObjectID(), ProductID: productID, Quantity: quantity}
		err = s.Collection.FindOneAndUpdate(ctx,
			bson.M{"user": userID, "items.product": bson.M{"$ne": productID}},
			bson.M{
				"$push":        bson.M{"items": item},
				"$set":         bson.M{"updatedAt": ts},
				"$setOnInsert": bson.M{"createdAt": ts},
			},
			options.FindOneAndUpdate().SetReturnDocument(options.After).SetUpsert(true),
		).Decode(&cart)
		if mongo.IsDuplicateKeyError(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("cart add item: %w", translate(err))
		}
		return &cart, nil
	}
	return nil, fmt.Errorf("cart add item: %w", store.ErrConflict)
}

func (s *CartStore) SetItemQuantity(ctx context.Context, userID, itemID primitive.ObjectID, quantity int) (*models.Cart, error) {
	defer metrics.ObserveStoreOp(CartsCollection, "set_quantity", time.Now())

	var cart models.Cart
	err := s.Collection.FindOneAndUpdate(ctx,
		bson.M{"user": userID, "items._id": itemID},
		bson.M{"$set": bson.M{"items.$.quantity": quantity, "updatedAt": now()}},
		returnAfter,
	).Decode(&cart)
	if err != nil {
		return nil, translate(err)
	}
	return &cart, nil
}

func (s *CartStore) RemoveItem(ctx context.Context, userID, itemID primitive.ObjectID) (*models.Cart, error) {
	defer metrics.ObserveStoreOp(CartsCollection, "remove_item", time.Now())

	ts := now()
	return s.upsert(ctx, userID, bson.M{
		"$pull":        bson.M{"items": bson.M{"_id": itemID}},
		"$set":         bson.M{"updatedAt": ts},
		"$setOnInsert": bson.M{"createdAt": ts},
	})
}

func (s *CartStore) Clear(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	defer metrics.ObserveStoreOp(CartsCollection, "clear", time.Now())

	ts := now()
	return s.upsert(ctx, userID, bson.M{
		"$set":         bson.M{"items": bson.A{}, "updatedAt": ts},
		"$setOnInsert": bson.M{"createdAt": ts},
	})
}
