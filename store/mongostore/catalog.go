package mongostore

import (
	"context"
	"regexp"
	"shop-api/metrics"
	"shop-api/models"
	"shop-api/store"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CategoryStore is the MongoDB store.CategoryStore.
type CategoryStore struct {
	Collection *mongo.Collection
}

// NewCategoryStore creates a CategoryStore over the categories collection.
func NewCategoryStore(db *mongo.Database) *CategoryStore {
	return &CategoryStore{Collection: db.Collection(CategoriesCollection)}
}

func (s *CategoryStore) Create(ctx context.Context, category *models.Category) error {
	defer metrics.ObserveStoreOp(CategoriesCollection, "insert", time.Now())

	if category.ID.IsZero() {
		category.ID = primitive.NewObjectID()
	}
	ts := now()
	category.CreatedAt, category.UpdatedAt = ts, ts
	_, err := s.Collection.InsertOne(ctx, category)
	return translate(err)
}

func (s *CategoryStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	defer metrics.ObserveStoreOp(CategoriesCollection, "find", time.Now())

	var category models.Category
	if err := s.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&category); err != nil {
		return nil, translate(err)
	}
	return &category, nil
}

func (s *CategoryStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Category, error) {
	defer metrics.ObserveStoreOp(CategoriesCollection, "find", time.Now())

	categories := []models.Category{}
	if len(ids) == 0 {
		return categories, nil
	}
	cursor, err := s.Collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	defer metrics.ObserveStoreOp(CategoriesCollection, "find", time.Now())

	cursor, err := s.Collection.Find(ctx, bson.M{}, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, err
	}
	categories := []models.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *CategoryStore) Update(ctx context.Context, category *models.Category) error {
	defer metrics.ObserveStoreOp(CategoriesCollection, "update", time.Now())

	category.UpdatedAt = now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.Collection.FindOneAndUpdate(ctx, bson.M{"_id": category.ID}, bson.M{"$set": bson.M{
		"name":        category.Name,
		"description": category.Description,
		"updatedAt":   category.UpdatedAt,
	}}, opts).Decode(category)
	return translate(err)
}

func (s *CategoryStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer metrics.ObserveStoreOp(CategoriesCollection, "delete", time.Now())

	result, err := s.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ProductStore is the MongoDB store.ProductStore.
type ProductStore struct {
	Collection *mongo.Collection
}

// NewProductStore creates a ProductStore over the products collection.
func NewProductStore(db *mongo.Database) *ProductStore {
	return &ProductStore{Collection: db.Collection(ProductsCollection)}
}

func (s *ProductStore) Create(ctx context.Context, product *models.Product) error {
	if err := product.BeforeSave(); err != nil {
		return err
	}
	defer metrics.ObserveStoreOp(ProductsCollection, "insert", time.Now())

	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	ts := now()
	product.CreatedAt, product.UpdatedAt = ts, ts
	_, err := s.Collection.InsertOne(ctx, product)
	return translate(err)
}

func (s *ProductStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	defer metrics.ObserveStoreOp(ProductsCollection, "find", time.Now())

	var product models.Product
	if err := s.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (s *ProductStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	defer metrics.ObserveStoreOp(ProductsCollection, "find", time.Now())

	products := []models.Product{}
	if len(ids) == 0 {
		return products, nil
	}
	cursor, err := s.Collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// productQuery builds the find filter for a listing.
func productQuery(filter store.ProductFilter) bson.M {
	query := bson.M{}
	if filter.CategoryID != nil {
		query["category"] = *filter.CategoryID
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
	}
	return query
}

func (s *ProductStore) List(ctx context.Context, filter store.ProductFilter) ([]models.Product, error) {
	defer metrics.ObserveStoreOp(ProductsCollection, "find", time.Now())

	cursor, err := s.Collection.Find(ctx, productQuery(filter), options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, err
	}
	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *ProductStore) Update(ctx context.Context, product *models.Product) error {
	if err := product.BeforeSave(); err != nil {
		return err
	}
	defer metrics.ObserveStoreOp(ProductsCollection, "update", time.Now())

	product.UpdatedAt = now()
	result, err := s.Collection.UpdateOne(ctx, bson.M{"_id": product.ID}, bson.M{"$set": bson.M{
		"name":        product.Name,
		"price":       product.Price,
		"description": product.Description,
		"category":    product.CategoryID,
		"image":       product.Image,
		"updatedAt":   product.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *ProductStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer metrics.ObserveStoreOp(ProductsCollection, "delete", time.Now())

	result, err := s.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *ProductStore) CountByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error) {
	defer metrics.ObserveStoreOp(ProductsCollection, "count", time.Now())
	return s.Collection.CountDocuments(ctx, bson.M{"category": categoryID})
}
