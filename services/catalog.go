package services

import (
	"context"
	"errors"
	"shop-api/models"
	"shop-api/store"
	"strings"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CatalogService manages categories and products.
type CatalogService struct {
	categories store.CategoryStore
	products   store.ProductStore
	images     ImageStore
}

// NewCatalogService creates a CatalogService. images may be nil.
func NewCatalogService(categories store.CategoryStore, products store.ProductStore, images ImageStore) *CatalogService {
	return &CatalogService{categories: categories, products: products, images: images}
}

// CategoryInput carries the writable category fields.
type CategoryInput struct {
	Name        string
	Description string
}

func (in CategoryInput) normalize() (CategoryInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	switch {
	case in.Name == "":
		return in, Validation("Category name is required")
	case utf8.RuneCountInString(in.Name) > models.MaxCategoryNameLen:
		return in, Validation("Category name cannot exceed %d characters", models.MaxCategoryNameLen)
	case utf8.RuneCountInString(in.Description) > models.MaxCategoryDescriptionLen:
		return in, Validation("Category description cannot exceed %d characters", models.MaxCategoryDescriptionLen)
	}
	return in, nil
}

func categoryError(err error) error {
	if errors.Is(err, store.ErrDuplicate) {
		return Conflict("Category already exists")
	}
	return storeError(err, "Category")
}

// ListCategories returns every category, newest first.
func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, Internal(err)
	}
	return categories, nil
}

// GetCategory returns one category.
func (s *CatalogService) GetCategory(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, categoryError(err)
	}
	return category, nil
}

// CreateCategory adds a category. Names are unique.
func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	category := &models.Category{Name: in.Name, Description: in.Description}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, categoryError(err)
	}
	return category, nil
}

// UpdateCategory replaces name and description. An empty description keeps the old one.
func (s *CatalogService) UpdateCategory(ctx context.Context, id primitive.ObjectID, in CategoryInput) (*models.Category, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, categoryError(err)
	}
	if strings.TrimSpace(in.Name) == "" {
		in.Name = category.Name
	}
	if strings.TrimSpace(in.Description) == "" {
		in.Description = category.Description
	}
	in, err = in.normalize()
	if err != nil {
		return nil, err
	}
	category.Name, category.Description = in.Name, in.Description
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, categoryError(err)
	}
	return category, nil
}

// DeleteCategory removes a category that no product references.
func (s *CatalogService) DeleteCategory(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.categories.FindByID(ctx, id); err != nil {
		return categoryError(err)
	}
	n, err := s.products.CountByCategory(ctx, id)
	if err != nil {
		return Internal(err)
	}
	if n > 0 {
		return Conflict("Cannot delete category: %d product(s) still reference it", n)
	}
	return categoryError(s.categories.Delete(ctx, id))
}

// ProductInput carries the writable product fields. On update, nil pointers
// keep the current value.
type ProductInput struct {
	Name        *string
	Price       *float64
	Description *string
	CategoryID  *primitive.ObjectID
	Image       *models.Image
}

func productError(err error) error {
	switch {
	case errors.Is(err, models.ErrIncompleteImage):
		return Validation("Product image public_id and url are required")
	case errors.Is(err, models.ErrNegativePrice):
		return Validation("Price cannot be negative")
	}
	return storeError(err, "Product")
}

// ListProducts returns products newest first with their category resolved.
func (s *CatalogService) ListProducts(ctx context.Context, filter store.ProductFilter) ([]models.Product, error) {
	products, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, Internal(err)
	}
	if err := s.resolveCategories(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct returns one product with its category resolved.
func (s *CatalogService) GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, productError(err)
	}
	return s.withCategory(ctx, product)
}

// CreateProduct adds a product. Name, category and a complete image are required.
func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	product := &models.Product{}
	if in.Name == nil || in.CategoryID == nil || in.Image == nil || in.Price == nil {
		return nil, Validation("Name, price, category and image are required")
	}
	if err := s.applyProductInput(ctx, product, in); err != nil {
		return nil, err
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, productError(err)
	}
	return s.withCategory(ctx, product)
}

// UpdateProduct applies a partial update. A replaced image is removed from the image store.
func (s *CatalogService) UpdateProduct(ctx context.Context, id primitive.ObjectID, in ProductInput) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, productError(err)
	}
	oldImage := product.Image
	if err := s.applyProductInput(ctx, product, in); err != nil {
		return nil, err
	}
	if err := s.products.Update(ctx, product); err != nil {
		return nil, productError(err)
	}
	if product.Image.PublicID != oldImage.PublicID {
		removeImage(ctx, s.images, oldImage.PublicID)
	}
	return s.withCategory(ctx, product)
}

// DeleteProduct removes a product and, best-effort, its image.
func (s *CatalogService) DeleteProduct(ctx context.Context, id primitive.ObjectID) error {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return productError(err)
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return productError(err)
	}
	removeImage(ctx, s.images, product.Image.PublicID)
	return nil
}

func (s *CatalogService) applyProductInput(ctx context.Context, product *models.Product, in ProductInput) error {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Validation("Product name is required")
		}
		product.Name = name
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return Validation("Price cannot be negative")
		}
		product.Price = *in.Price
	}
	if in.Description != nil {
		product.Description = strings.TrimSpace(*in.Description)
	}
	if in.Image != nil {
		if !in.Image.Complete() {
			return Validation("Product image public_id and url are required")
		}
		product.Image = *in.Image
	}
	if in.CategoryID != nil {
		if _, err := s.categories.FindByID(ctx, *in.CategoryID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return Validation("Invalid category")
			}
			return Internal(err)
		}
		product.CategoryID = *in.CategoryID
	}
	return nil
}

func (s *CatalogService) withCategory(ctx context.Context, product *models.Product) (*models.Product, error) {
	products := []models.Product{*product}
	if err := s.resolveCategories(ctx, products); err != nil {
		return nil, err
	}
	return &products[0], nil
}

// resolveCategories fills Product.Category with one batched lookup.
func (s *CatalogService) resolveCategories(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]primitive.ObjectID, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.CategoryID)
	}
	categories, err := s.categories.FindByIDs(ctx, ids)
	if err != nil {
		return Internal(err)
	}
	byID := make(map[primitive.ObjectID]models.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}
	for i := range products {
		if c, ok := byID[products[i].CategoryID]; ok {
			products[i].Category = &c
		}
	}
	return nil
}
