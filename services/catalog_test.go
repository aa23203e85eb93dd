package services

import (
	"context"
	"shop-api/models"
	"shop-api/store"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCategoryLifecycle(t *testing.T) {
	f := newFixture(t, OrderOptions{})
	ctx := context.Background()

	watches, err := f.catalog.CreateCategory(ctx, CategoryInput{Name: " Watches ", Description: "Wrist watches"})
	require.NoError(t, err)
	assert.Equal(t, "Watches", watches.Name)

	_, err = f.catalog.CreateCategory(ctx, CategoryInput{Name: "Watches"})
	assert.True(t, IsKind(err, KindConflict))

	_, err = f.catalog.CreateCategory(ctx, CategoryInput{Name: strings.Repeat("x", models.MaxCategoryNameLen+1)})
	assert.True(t, IsKind(err, KindValidation))
	_, err = f.catalog.CreateCategory(ctx, CategoryInput{Name: "Long", Description: strings.Repeat("x", models.MaxCategoryDescriptionLen+1)})
	assert.True(t, IsKind(err, KindValidation))
	_, err = f.catalog.CreateCategory(ctx, CategoryInput{})
	assert.True(t, IsKind(err, KindValidation))

	phones, err := f.catalog.CreateCategory(ctx, CategoryInput{Name: "Phones"})
	require.NoError(t, err)

	list, err := f.catalog.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Phones", list[0].Name)

	updated, err := f.catalog.UpdateCategory(ctx, phones.ID, CategoryInput{Name: "Smartphones"})
	require.NoError(t, err)
	assert.Equal(t, "Smartphones", updated.Name)

	_, err = f.catalog.UpdateCategory(ctx, phones.ID, CategoryInput{Name: "Watches"})
	assert.True(t, IsKind(err, KindConflict))

	require.NoError(t, f.catalog.DeleteCategory(ctx, phones.ID))
	_, err = f.catalog.GetCategory(ctx, phones.ID)
	assert.True(t, IsKind(err, KindNotFound))
	assert.True(t, IsKind(f.catalog.DeleteCategory(ctx, phones.ID), KindNotFound))
}

func TestDeleteCategoryInUse(t *testing.T) {
	f := newFixture(t, OrderOptions{})
	ctx := context.Background()
	product := f.product(t, "Chrono", 120)

	err := f.catalog.DeleteCategory(ctx, product.CategoryID)
	assert.True(t, IsKind(err, KindConflict))

	require.NoError(t, f.catalog.DeleteProduct(ctx, product.ID))
	assert.NoError(t, f.catalog.DeleteCategory(ctx, product.CategoryID))
}

func TestCreateProductRequiresCompleteImage(t *testing.T) {
	f := newFixture(t, OrderOptions{})
	ctx := context.Background()
	category, err := f.catalog.CreateCategory(ctx, CategoryInput{Name: "Watches"})
	require.NoError(t, err)

	noURL := models.Image{PublicID: "p1"}
	_, err = f.catalog.CreateProduct(ctx, ProductInput{
		Name: ptr("Chrono"), Price: ptr(10.0), CategoryID: &category.ID, Image: &noURL,
	})
	assert.True(t, IsKind(err, KindValidation))

	_, err = f.catalog.CreateProduct(ctx, ProductInput{Name: ptr("Chrono"), Price: ptr(10.0), CategoryID: &category.ID})
	assert.True(t, IsKind(err, KindValidation))

	products, err := f.catalog.ListProducts(ctx, store.ProductFilter{})
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestCreateProductValidation(t *testing.T) {
	f := newFixture(t, OrderOptions{})
	ctx := context.Background()
	category, err := f.catalog.CreateCategory(ctx, CategoryInput{Name: "Watches"})
	require.NoError(t, err)
	image := testImage("p1")
	unknown := primitive.NewObjectID()

	_, err = f.catalog.CreateProduct(ctx, ProductInput{Name: ptr("Chrono"), Price: ptr(-1.0), CategoryID: &category.ID, Image: &image})
	assert.True(t, IsKind(err, KindValidation))

	_, err = f.catalog.CreateProduct(ctx, ProductInput{Name: ptr("Chrono"), Price: ptr(1.0), CategoryID: &unknown, Image: &image})
	assert.True(t, IsKind(err, KindValidation))
	assert.EqualError(t, err, "Invalid category")

	_, err = f.catalog.CreateProduct(ctx, ProductInput{Name: ptr(" "), Price: ptr(1.0), CategoryID: &category.ID, Image: &image})
	assert.True(t, IsKind(err, KindValidation))
}

func TestListProductsResolvesCategory(t *testing.T) {
	f := newFixture(t, OrderOptions{})
	ctx := context.Background()
	f.product(t, "Chrono", 120)
	f.product(t, "Diver", 300)

	products, err := f.catalog.ListProducts(ctx, store.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Diver", products[0].Name)
	for _, p := range products {
		require.NotNil(t, p.Category)
		assert.Equal(t, "Watches", p.Category.Name)
	}

	other, err := f.catalog.CreateCategory(ctx, CategoryInput{Name: "Phones"})
	require.NoError(t, err)
	filtered, err := f.catalog.ListProducts(ctx, store.ProductFilter{CategoryID: &other.ID})
	require.NoError(t, err)
	assert.Empty(t, filtered)
}

func TestUpdateProduct(t *testing.T) {
	f := newFixture(t, OrderOptions{})
	ctx := context.Background()
	product := f.product(t, "Chrono", 120)

	updated, err := f.catalog.UpdateProduct(ctx, product.ID, ProductInput{Price: ptr(99.5)})
	require.NoError(t, err)
	assert.Equal(t, "Chrono", updated.Name)
	assert.Equal(t, 99.5, updated.Price)
	assert.Equal(t, product.Image, updated.Image)
	require.NotNil(t, updated.Category)
	assert.Empty(t, f.images.deleted)

	newImage := testImage("chrono-v2")
	updated, err = f.catalog.UpdateProduct(ctx, product.ID, ProductInput{Image: &newImage})
	require.NoError(t, err)
	assert.Equal(t, newImage, updated.Image)
	assert.Equal(t, []string{product.Image.PublicID}, f.images.deleted)

	_, err = f.catalog.UpdateProduct(ctx, product.ID, ProductInput{Image: &models.Image{URL: "x"}})
	assert.True(t, IsKind(err, KindValidation))

	_, err = f.catalog.UpdateProduct(ctx, primitive.NewObjectID(), ProductInput{Price: ptr(1.0)})
	assert.True(t, IsKind(err, KindNotFound))
}

func TestDeleteProductRemovesImage(t *testing.T) {
	f := newFixture(t, OrderOptions{})
	ctx := context.Background()
	product := f.product(t, "Chrono", 120)

	require.NoError(t, f.catalog.DeleteProduct(ctx, product.ID))
	assert.Equal(t, []string{product.Image.PublicID}, f.images.deleted)

	_, err := f.catalog.GetProduct(ctx, product.ID)
	assert.True(t, IsKind(err, KindNotFound))
}
