package mongostore

import (
	"shop-api/models"
	"shop-api/store"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(mongo.ErrNoDocuments), store.ErrNotFound)

	dup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key"}}}
	assert.ErrorIs(t, translate(dup), store.ErrDuplicate)
}

func TestProductQuery(t *testing.T) {
	assert.Equal(t, bson.M{}, productQuery(store.ProductFilter{}))

	categoryID := primitive.NewObjectID()
	query := productQuery(store.ProductFilter{CategoryID: &categoryID, Search: "a.b"})
	assert.Equal(t, categoryID, query["category"])
	assert.Equal(t, primitive.Regex{Pattern: `a\.b`, Options: "i"}, query["name"])
}

func TestStatusChangeQuery(t *testing.T) {
	id := primitive.NewObjectID()

	plain := statusChangeQuery(id, models.StatusChange{Status: models.StatusShipped})
	assert.Equal(t, bson.M{"_id": id}, plain)

	guarded := statusChangeQuery(id, models.StatusChange{
		Status:             models.StatusCancelled,
		RequireUndelivered: true,
		From:               []models.OrderStatus{models.StatusProcessing, models.StatusShipped},
	})
	assert.Equal(t, bson.M{"$ne": true}, guarded["isDelivered"])
	assert.Equal(t, bson.M{"$in": []models.OrderStatus{models.StatusProcessing, models.StatusShipped}}, guarded["status"])
}

func TestStatusChangeUpdate(t *testing.T) {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	update := statusChangeUpdate(models.StatusChange{Status: models.StatusDelivered, DeliveredAt: &ts, TrackingNumber: "TRK"}, ts)
	set := update["$set"].(bson.M)
	assert.Equal(t, models.StatusDelivered, set["status"])
	assert.Equal(t, true, set["isDelivered"])
	assert.Equal(t, ts, set["deliveredAt"])
	assert.Equal(t, "TRK", set["trackingNumber"])

	update = statusChangeUpdate(models.StatusChange{Status: models.StatusShipped}, ts)
	set = update["$set"].(bson.M)
	assert.NotContains(t, set, "isDelivered")
	assert.NotContains(t, set, "trackingNumber")
}
