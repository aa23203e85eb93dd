package services

import (
	"context"
	"shop-api/models"
	"shop-api/store"
	"shop-api/store/memstore"
	"shop-api/utils"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeImages struct {
	mu      sync.Mutex
	deleted []string
}

func (f *fakeImages) Delete(_ context.Context, publicID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, publicID)
	return nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []utils.Message
}

func (f *fakeMailer) Send(_ context.Context, msg utils.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return nil
}

type fixture struct {
	stores  store.Stores
	images  *fakeImages
	mailer  *fakeMailer
	auth    *AuthService
	catalog *CatalogService
	carts   *CartService
	orders  *OrderService
	users   *UserService
}

func newFixture(t *testing.T, opts OrderOptions) *fixture {
	t.Helper()
	stores := memstore.New()
	images := &fakeImages{}
	mailer := &fakeMailer{}
	return &fixture{
		stores:  stores,
		images:  images,
		mailer:  mailer,
		auth:    NewAuthService(stores.Users, utils.NewTokenManager("test-secret", 30*24*time.Hour), images),
		catalog: NewCatalogService(stores.Categories, stores.Products, images),
		carts:   NewCartService(stores.Carts, stores.Products),
		orders:  NewOrderService(stores.Orders, stores.Products, stores.Users, mailer, opts),
		users:   NewUserService(stores.Users),
	}
}

func testImage(id string) models.Image {
	return models.Image{PublicID: id, URL: "https://img.example.com/" + id + ".jpg"}
}

func (f *fixture) signup(t *testing.T, name, email string) Identity {
	t.Helper()
	session, err := f.auth.Signup(context.Background(), SignupInput{
		Name:     name,
		Email:    email,
		Password: "secret123",
		Address:  "1 Main St",
		Image:    testImage("avatar-" + name),
	})
	require.NoError(t, err)
	return Identity{UserID: session.User.ID, Role: session.User.Role, Name: session.User.Name, Email: session.User.Email}
}

func (f *fixture) admin(t *testing.T) Identity {
	t.Helper()
	id := f.signup(t, "Admin", "admin@example.com")
	_, err := f.stores.Users.UpdateRole(context.Background(), id.UserID, models.RoleAdmin)
	require.NoError(t, err)
	id.Role = models.RoleAdmin
	return id
}

func (f *fixture) product(t *testing.T, name string, price float64) *models.Product {
	t.Helper()
	ctx := context.Background()
	categories, err := f.catalog.ListCategories(ctx)
	require.NoError(t, err)
	var categoryID primitive.ObjectID
	if len(categories) > 0 {
		categoryID = categories[0].ID
	} else {
		category, err := f.catalog.CreateCategory(ctx, CategoryInput{Name: "Watches", Description: "Wrist watches"})
		require.NoError(t, err)
		categoryID = category.ID
	}
	image := testImage("product-" + name)
	product, err := f.catalog.CreateProduct(ctx, ProductInput{
		Name:       &name,
		Price:      &price,
		CategoryID: &categoryID,
		Image:      &image,
	})
	require.NoError(t, err)
	return product
}

func ptr[T any](v T) *T {
	return &v
}
