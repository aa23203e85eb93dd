package mongostore

import (
	"context"
	"shop-api/metrics"
	"shop-api/models"
	"shop-api/store"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// withoutPassword is applied to every user read except FindCredentials.
var withoutPassword = bson.M{"password": 0}

// UserStore is the MongoDB store.UserStore.
type UserStore struct {
	Collection *mongo.Collection
}

// NewUserStore creates a UserStore over the users collection.
func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{Collection: db.Collection(UsersCollection)}
}

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	defer metrics.ObserveStoreOp(UsersCollection, "insert", time.Now())

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	ts := now()
	user.CreatedAt, user.UpdatedAt = ts, ts
	if user.Orders == nil {
		user.Orders = []primitive.ObjectID{}
	}
	_, err := s.Collection.InsertOne(ctx, user)
	return translate(err)
}

func (s *UserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	defer metrics.ObserveStoreOp(UsersCollection, "find", time.Now())

	var user models.User
	err := s.Collection.FindOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(withoutPassword)).Decode(&user)
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *UserStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	defer metrics.ObserveStoreOp(UsersCollection, "find", time.Now())

	users := []models.User{}
	if len(ids) == 0 {
		return users, nil
	}
	cursor, err := s.Collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().SetProjection(withoutPassword))
	if err != nil {
		return nil, err
	}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *UserStore) FindCredentials(ctx context.Context, email string) (*models.User, error) {
	defer metrics.ObserveStoreOp(UsersCollection, "find", time.Now())

	var user models.User
	if err := s.Collection.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	defer metrics.ObserveStoreOp(UsersCollection, "find", time.Now())

	cursor, err := s.Collection.Find(ctx, bson.M{}, options.Find().SetSort(newestFirst).SetProjection(withoutPassword))
	if err != nil {
		return nil, err
	}
	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *UserStore) findAndUpdate(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.User, error) {
	set["updatedAt"] = now()
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(withoutPassword)

	var user models.User
	err := s.Collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *UserStore) UpdateProfile(ctx context.Context, id primitive.ObjectID, update models.ProfileUpdate) (*models.User, error) {
	defer metrics.ObserveStoreOp(UsersCollection, "update", time.Now())

	set := bson.M{
		"name":    update.Name,
		"email":   update.Email,
		"address": update.Address,
	}
	if update.Image != nil {
		set["image"] = *update.Image
	}
	return s.findAndUpdate(ctx, id, set)
}

func (s *UserStore) UpdateRole(ctx context.Context, id primitive.ObjectID, role string) (*models.User, error) {
	defer metrics.ObserveStoreOp(UsersCollection, "update", time.Now())
	return s.findAndUpdate(ctx, id, bson.M{"role": role})
}

func (s *UserStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer metrics.ObserveStoreOp(UsersCollection, "delete", time.Now())

	result, err := s.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *UserStore) AppendOrder(ctx context.Context, userID, orderID primitive.ObjectID) error {
	defer metrics.ObserveStoreOp(UsersCollection, "update", time.Now())

	result, err := s.Collection.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$push": bson.M{"orders": orderID},
		"$set":  bson.M{"updatedAt": now()},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
