package mongostore

import (
	"context"
	"errors"
	"shop-api/metrics"
	"shop-api/models"
	"shop-api/store"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OrderStore is the MongoDB store.OrderStore.
type OrderStore struct {
	Collection *mongo.Collection
}

// NewOrderStore creates an OrderStore over the orders collection.
func NewOrderStore(db *mongo.Database) *OrderStore {
	return &OrderStore{Collection: db.Collection(OrdersCollection)}
}

func (s *OrderStore) Create(ctx context.Context, order *models.Order) error {
	defer metrics.ObserveStoreOp(OrdersCollection, "insert", time.Now())

	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	ts := now()
	order.CreatedAt, order.UpdatedAt = ts, ts
	_, err := s.Collection.InsertOne(ctx, order)
	return translate(err)
}

func (s *OrderStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	defer metrics.ObserveStoreOp(OrdersCollection, "find", time.Now())

	var order models.Order
	if err := s.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (s *OrderStore) List(ctx context.Context, filter store.OrderFilter) ([]models.Order, error) {
	defer metrics.ObserveStoreOp(OrdersCollection, "find", time.Now())

	query := bson.M{}
	if filter.UserID != nil {
		query["user"] = *filter.UserID
	}
	cursor, err := s.Collection.Find(ctx, query, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, err
	}
	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// statusChangeQuery turns the change's preconditions into a filter so the
// check and the write happen in one server-side operation.
func statusChangeQuery(id primitive.ObjectID, change models.StatusChange) bson.M {
	query := bson.M{"_id": id}
	if change.RequireUndelivered {
		query["isDelivered"] = bson.M{"$ne": true}
	}
	if len(change.From) > 0 {
		query["status"] = bson.M{"$in": change.From}
	}
	return query
}

func statusChangeUpdate(change models.StatusChange, ts time.Time) bson.M {
	set := bson.M{"status": change.Status, "updatedAt": ts}
	if change.TrackingNumber != "" {
		set["trackingNumber"] = change.TrackingNumber
	}
	if change.DeliveredAt != nil {
		set["isDelivered"] = true
		set["deliveredAt"] = *change.DeliveredAt
	}
	return bson.M{"$set": set}
}

func (s *OrderStore) ChangeStatus(ctx context.Context, id primitive.ObjectID, change models.StatusChange) (*models.Order, error) {
	defer metrics.ObserveStoreOp(OrdersCollection, "change_status", time.Now())

	var order models.Order
	err := s.Collection.FindOneAndUpdate(ctx,
		statusChangeQuery(id, change),
		statusChangeUpdate(change, now()),
		returnAfter,
	).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Either the order is gone or a precondition failed.
		n, countErr := s.Collection.CountDocuments(ctx, bson.M{"_id": id})
		if countErr != nil {
			return nil, countErr
		}
		if n == 0 {
			return nil, store.ErrNotFound
		}
		return nil, store.ErrConflict
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *OrderStore) MarkPaid(ctx context.Context, id primitive.ObjectID, paidAt time.Time, result models.PaymentResult) (*models.Order, error) {
	defer metrics.ObserveStoreOp(OrdersCollection, "mark_paid", time.Now())

	var order models.Order
	err := s.Collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"isPaid":        true,
		"paidAt":        paidAt,
		"paymentResult": result,
		"updatedAt":     now(),
	}}, returnAfter).Decode(&order)
	if err != nil {
		return nil, translate(err)
	}
	return &order, nil
}
