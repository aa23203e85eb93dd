package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"shop-api/middleware"
	"shop-api/models"
	"shop-api/store"
	"shop-api/store/memstore"
	"shop-api/utils"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeImages struct {
	mu       sync.Mutex
	uploaded []string
	deleted  []string
}

func (f *fakeImages) Upload(_ context.Context, folder string, r io.Reader) (models.Image, error) {
	if _, err := io.ReadAll(r); err != nil {
		return models.Image{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id := folder + "/img" + string(rune('a'+len(f.uploaded)))
	f.uploaded = append(f.uploaded, id)
	return models.Image{PublicID: id, URL: "https://cdn.example.com/" + id}, nil
}

func (f *fakeImages) Delete(_ context.Context, publicID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, publicID)
	return nil
}

type testApp struct {
	handler http.Handler
	stores  store.Stores
	images  *fakeImages
}

func newTestApp(t *testing.T, mutate func(*Deps)) *testApp {
	t.Helper()
	stores := memstore.New()
	images := &fakeImages{}
	deps := Deps{
		Stores:      stores,
		Tokens:      utils.NewTokenManager("integration-secret", time.Hour),
		Images:      images,
		MaxBodySize: 1 << 20,
	}
	if mutate != nil {
		mutate(&deps)
	}
	return &testApp{handler: NewHandler(deps), stores: stores, images: images}
}

type result struct {
	code int
	body map[string]any
	raw  []byte
}

func (r result) str(key string) string {
	s, _ := r.body[key].(string)
	return s
}

func (r result) obj(key string) map[string]any {
	m, _ := r.body[key].(map[string]any)
	return m
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) result {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	res := result{code: rec.Code, raw: rec.Body.Bytes()}
	if json.Valid(res.raw) {
		_ = json.Unmarshal(res.raw, &res.body)
	}
	return res
}

func image(id string) map[string]string {
	return map[string]string{"public_id": id, "url": "https://cdn.example.com/" + id + ".jpg"}
}

func (a *testApp) signup(t *testing.T, name, email string) (token, id string) {
	t.Helper()
	res := a.do(t, http.MethodPost, "/api/auth/signup", "", map[string]any{
		"name":     name,
		"email":    email,
		"password": "secret123",
		"address":  "1 Main St",
		"image":    image("avatar-" + name),
	})
	require.Equal(t, http.StatusCreated, res.code, string(res.raw))
	return res.str("token"), res.obj("user")["_id"].(string)
}

func (a *testApp) admin(t *testing.T) string {
	t.Helper()
	token, id := a.signup(t, "Admin", "admin@example.com")
	oid, err := primitive.ObjectIDFromHex(id)
	require.NoError(t, err)
	_, err = a.stores.Users.UpdateRole(context.Background(), oid, models.RoleAdmin)
	require.NoError(t, err)
	return token
}

func (a *testApp) product(t *testing.T, adminToken, name string, price float64) string {
	t.Helper()
	res := a.do(t, http.MethodPost, "/api/categories", adminToken, map[string]string{"name": "Cat " + name})
	require.Equal(t, http.StatusCreated, res.code, string(res.raw))
	categoryID := res.obj("category")["_id"].(string)

	res = a.do(t, http.MethodPost, "/api/products", adminToken, map[string]any{
		"name":        name,
		"price":       price,
		"description": "A " + name,
		"category":    categoryID,
		"image":       image("product-" + name),
	})
	require.Equal(t, http.StatusCreated, res.code, string(res.raw))
	return res.obj("product")["_id"].(string)
}

var address = map[string]string{
	"name":    "Ada Lovelace",
	"street":  "12 Analytical Way",
	"city":    "London",
	"state":   "LDN",
	"zip":     "N1 9GU",
	"country": "UK",
	"phone":   "+44 20 7946 0000",
}

func TestCheckoutLifecycle(t *testing.T) {
	app := newTestApp(t, nil)
	adminToken := app.admin(t)
	productID := app.product(t, adminToken, "Chronograph", 19.99)

	app.signup(t, "Ada", "ada@example.com")
	login := app.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ADA@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, login.code, string(login.raw))
	token := login.str("token")
	require.NotEmpty(t, token)
	assert.Nil(t, login.obj("user")["password"])

	res := app.do(t, http.MethodPost, "/api/cart", token, map[string]any{"productId": productID})
	require.Equal(t, http.StatusOK, res.code, string(res.raw))
	res = app.do(t, http.MethodPost, "/api/cart", token, map[string]any{"productId": productID, "quantity": 2})
	require.Equal(t, http.StatusOK, res.code, string(res.raw))

	res = app.do(t, http.MethodGet, "/api/cart", token, nil)
	require.Equal(t, http.StatusOK, res.code)
	items := res.obj("cart")["items"].([]any)
	require.Len(t, items, 1)
	line := items[0].(map[string]any)
	assert.Equal(t, float64(3), line["quantity"])
	assert.Equal(t, "Chronograph", line["product"].(map[string]any)["name"])

	res = app.do(t, http.MethodPost, "/api/orders", token, map[string]any{
		"orderItems":      []map[string]any{{"product": productID, "quantity": 3, "name": "ignored", "price": 0.01}},
		"shippingAddress": address,
		"paymentMethod":   "Credit Card",
		"shippingCost":    "5.00",
		"tax":             2.10,
		"subtotal":        1,
		"total":           1,
	})
	require.Equal(t, http.StatusCreated, res.code, string(res.raw))
	order := res.obj("order")
	orderID := order["_id"].(string)
	assert.Equal(t, "Processing", order["status"])
	assert.Equal(t, "Pending", order["trackingNumber"])
	assert.InDelta(t, 59.97, order["subtotal"], 0.0001)
	assert.InDelta(t, 67.07, order["total"], 0.0001)
	assert.Equal(t, true, order["isPaid"])
	assert.Equal(t, "Chronograph", order["orderItems"].([]any)[0].(map[string]any)["name"])
	assert.Len(t, order["displayId"], 9)

	res = app.do(t, http.MethodGet, "/api/orders", token, nil)
	require.Equal(t, http.StatusOK, res.code)
	assert.Len(t, res.body["orders"], 1)

	res = app.do(t, http.MethodPut, "/api/orders/"+orderID+"/status", adminToken, map[string]string{
		"status": "Delivered", "trackingNumber": "TRK-1",
	})
	require.Equal(t, http.StatusOK, res.code, string(res.raw))
	assert.Equal(t, true, res.obj("order")["isDelivered"])
	assert.Equal(t, "TRK-1", res.obj("order")["trackingNumber"])

	res = app.do(t, http.MethodPut, "/api/orders/"+orderID+"/cancel", token, nil)
	assert.Equal(t, http.StatusBadRequest, res.code)
	assert.Equal(t, "Cannot cancel a delivered order", res.str("error"))

	res = app.do(t, http.MethodGet, "/api/orders/"+orderID, token, nil)
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, "Delivered", res.obj("order")["status"])
}

func TestAdminCatalogFlow(t *testing.T) {
	app := newTestApp(t, nil)
	adminToken := app.admin(t)

	res := app.do(t, http.MethodPost, "/api/categories", adminToken, map[string]string{
		"name": "Watches", "description": "Wrist watches",
	})
	require.Equal(t, http.StatusCreated, res.code, string(res.raw))
	categoryID := res.obj("category")["_id"].(string)

	res = app.do(t, http.MethodPost, "/api/categories", adminToken, map[string]string{"name": "Watches"})
	assert.Equal(t, http.StatusBadRequest, res.code)

	res = app.do(t, http.MethodPost, "/api/products", adminToken, map[string]any{
		"name":     "Diver",
		"price":    "249.50",
		"category": categoryID,
		"image":    image("diver"),
	})
	require.Equal(t, http.StatusCreated, res.code, string(res.raw))
	productID := res.obj("product")["_id"].(string)

	res = app.do(t, http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, res.code)
	products := res.body["products"].([]any)
	require.Len(t, products, 1)
	listed := products[0].(map[string]any)
	assert.Equal(t, "Diver", listed["name"])
	assert.Equal(t, 249.5, listed["price"])
	assert.Equal(t, "Watches", listed["category"].(map[string]any)["name"])

	res = app.do(t, http.MethodGet, "/api/products?category="+categoryID, "", nil)
	require.Equal(t, http.StatusOK, res.code)
	assert.Len(t, res.body["products"], 1)
	res = app.do(t, http.MethodGet, "/api/products?category="+primitive.NewObjectID().Hex(), "", nil)
	require.Equal(t, http.StatusOK, res.code)
	assert.Empty(t, res.body["products"])

	res = app.do(t, http.MethodDelete, "/api/categories/"+categoryID, adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, res.code)

	res = app.do(t, http.MethodPut, "/api/products/"+productID, adminToken, map[string]any{"image": image("diver-v2")})
	require.Equal(t, http.StatusOK, res.code, string(res.raw))
	assert.Contains(t, app.images.deleted, "diver")

	res = app.do(t, http.MethodDelete, "/api/products/"+productID, adminToken, nil)
	require.Equal(t, http.StatusOK, res.code)
	res = app.do(t, http.MethodDelete, "/api/categories/"+categoryID, adminToken, nil)
	require.Equal(t, http.StatusOK, res.code)

	res = app.do(t, http.MethodGet, "/api/products/"+productID, "", nil)
	assert.Equal(t, http.StatusNotFound, res.code)
	assert.Equal(t, "Product not found", res.str("error"))
}

func TestAuthorization(t *testing.T) {
	app := newTestApp(t, nil)
	adminToken := app.admin(t)
	userToken, _ := app.signup(t, "Ada", "ada@example.com")
	productID := app.product(t, adminToken, "Chronograph", 10)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		want   int
	}{
		{"profile without token", http.MethodGet, "/api/auth/profile", "", nil, http.StatusUnauthorized},
		{"profile with garbage token", http.MethodGet, "/api/auth/profile", "garbage", nil, http.StatusUnauthorized},
		{"cart without token", http.MethodGet, "/api/cart", "", nil, http.StatusUnauthorized},
		{"user creates category", http.MethodPost, "/api/categories", userToken, map[string]string{"name": "X"}, http.StatusForbidden},
		{"user deletes product", http.MethodDelete, "/api/products/" + productID, userToken, nil, http.StatusForbidden},
		{"user lists users", http.MethodGet, "/api/users", userToken, nil, http.StatusForbidden},
		{"admin lists users", http.MethodGet, "/api/users", adminToken, nil, http.StatusOK},
		{"public product list", http.MethodGet, "/api/products", "", nil, http.StatusOK},
		{"public categories", http.MethodGet, "/api/categories", "", nil, http.StatusOK},
		{"unknown route", http.MethodGet, "/api/nope", "", nil, http.StatusNotFound},
		{"wrong method", http.MethodPatch, "/api/products", "", nil, http.StatusMethodNotAllowed},
		{"wrong method on protected route", http.MethodPatch, "/api/cart", userToken, nil, http.StatusMethodNotAllowed},
		{"wrong method on admin route", http.MethodPost, "/api/users", adminToken, nil, http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := app.do(t, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.want, res.code, string(res.raw))
			if tt.want >= 400 {
				assert.Equal(t, false, res.body["success"])
				assert.NotEmpty(t, res.str("error"))
			}
		})
	}
}

func TestOrderOwnership(t *testing.T) {
	app := newTestApp(t, nil)
	adminToken := app.admin(t)
	productID := app.product(t, adminToken, "Chronograph", 10)
	adaToken, _ := app.signup(t, "Ada", "ada@example.com")
	bobToken, _ := app.signup(t, "Bob", "bob@example.com")

	res := app.do(t, http.MethodPost, "/api/orders", adaToken, map[string]any{
		"orderItems":      []map[string]any{{"product": productID, "quantity": 1}},
		"shippingAddress": address,
		"paymentMethod":   "Cash on Delivery",
	})
	require.Equal(t, http.StatusCreated, res.code, string(res.raw))
	orderID := res.obj("order")["_id"].(string)
	assert.Equal(t, false, res.obj("order")["isPaid"])

	res = app.do(t, http.MethodGet, "/api/orders/"+orderID, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, res.code)
	res = app.do(t, http.MethodPut, "/api/orders/"+orderID+"/cancel", bobToken, nil)
	assert.Equal(t, http.StatusForbidden, res.code)
	res = app.do(t, http.MethodGet, "/api/orders", bobToken, nil)
	assert.Empty(t, res.body["orders"])

	res = app.do(t, http.MethodGet, "/api/orders", adminToken, nil)
	require.Len(t, res.body["orders"], 1)
	owner := res.body["orders"].([]any)[0].(map[string]any)["user"].(map[string]any)
	assert.Equal(t, "ada@example.com", owner["email"])

	res = app.do(t, http.MethodPut, "/api/orders/"+orderID+"/pay", adminToken, nil)
	require.Equal(t, http.StatusOK, res.code, string(res.raw))
	assert.Equal(t, true, res.obj("order")["isPaid"])
	assert.Equal(t, "ada@example.com", res.obj("order")["paymentResult"].(map[string]any)["email_address"])

	res = app.do(t, http.MethodPut, "/api/orders/"+orderID+"/cancel", adaToken, nil)
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, "Cancelled", res.obj("order")["status"])

	res = app.do(t, http.MethodGet, "/api/orders/not-an-id", adaToken, nil)
	assert.Equal(t, http.StatusNotFound, res.code)
	assert.Equal(t, "Order not found", res.str("error"))
}

func TestStrictTransitions(t *testing.T) {
	app := newTestApp(t, func(d *Deps) { d.StrictTransitions = true })
	adminToken := app.admin(t)
	productID := app.product(t, adminToken, "Chronograph", 10)
	token, _ := app.signup(t, "Ada", "ada@example.com")

	res := app.do(t, http.MethodPost, "/api/orders", token, map[string]any{
		"orderItems":      []map[string]any{{"product": productID, "quantity": 1}},
		"shippingAddress": address,
		"paymentMethod":   "Cash on Delivery",
	})
	require.Equal(t, http.StatusCreated, res.code, string(res.raw))
	orderID := res.obj("order")["_id"].(string)

	res = app.do(t, http.MethodPut, "/api/orders/"+orderID+"/status", adminToken, map[string]string{"status": "Delivered"})
	assert.Equal(t, http.StatusBadRequest, res.code)
	res = app.do(t, http.MethodPut, "/api/orders/"+orderID+"/status", adminToken, map[string]string{"status": "Shipped"})
	assert.Equal(t, http.StatusOK, res.code)
	res = app.do(t, http.MethodPut, "/api/orders/"+orderID+"/status", adminToken, map[string]string{"status": "Lost"})
	assert.Equal(t, http.StatusBadRequest, res.code)
}

func TestRequestValidation(t *testing.T) {
	app := newTestApp(t, nil)
	token, _ := app.signup(t, "Ada", "ada@example.com")

	tests := []struct {
		name    string
		method  string
		path    string
		token   string
		body    any
		wantErr string
	}{
		{"unknown field", http.MethodPost, "/api/auth/login", "", map[string]string{"email": "a@b.co", "password": "x", "otp": "1"}, `Unknown field "otp"`},
		{"missing password", http.MethodPost, "/api/auth/login", "", map[string]string{"email": "a@b.co"}, "password is required"},
		{"bad email", http.MethodPost, "/api/auth/signup", "", map[string]any{"name": "X", "email": "nope", "password": "secret123", "image": image("x")}, "email must be a valid email"},
		{"short password", http.MethodPost, "/api/auth/signup", "", map[string]any{"name": "X", "email": "x@example.com", "password": "123", "image": image("x")}, "password must be at least 6"},
		{"empty body", http.MethodPost, "/api/cart", token, nil, "Request body is required"},
		{"no order items", http.MethodPost, "/api/orders", token, map[string]any{"orderItems": []any{}, "shippingAddress": address, "paymentMethod": "Cash on Delivery"}, "No order items"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := app.do(t, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, http.StatusBadRequest, res.code, string(res.raw))
			assert.Equal(t, tt.wantErr, res.str("error"))
		})
	}

	res := app.do(t, http.MethodPost, "/api/auth/signup", "", map[string]any{
		"name": "Ada", "email": "ada@example.com", "password": "secret123", "image": image("x"),
	})
	assert.Equal(t, http.StatusBadRequest, res.code)
	assert.Equal(t, "User already exists", res.str("error"))

	res = app.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ada@example.com", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, res.code)
	assert.Equal(t, "Invalid email or password", res.str("error"))
}

func TestAuthRateLimit(t *testing.T) {
	app := newTestApp(t, func(d *Deps) { d.AuthLimiter = middleware.NewMemoryLimiter(2, time.Minute) })

	body := map[string]string{"email": "ghost@example.com", "password": "secret123"}
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, app.do(t, http.MethodPost, "/api/auth/login", "", body).code)
	}
	assert.Equal(t, []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}, codes)

	res := app.do(t, http.MethodGet, "/api/categories", "", nil)
	assert.Equal(t, http.StatusOK, res.code)
}

func TestProfileAndUsers(t *testing.T) {
	app := newTestApp(t, nil)
	adminToken := app.admin(t)
	token, id := app.signup(t, "Ada", "ada@example.com")

	res := app.do(t, http.MethodPut, "/api/auth/update-profile", token, map[string]any{
		"address": "2 New St",
		"image":   image("avatar-new"),
	})
	require.Equal(t, http.StatusOK, res.code, string(res.raw))
	assert.Equal(t, "2 New St", res.obj("user")["address"])
	assert.Equal(t, "Ada", res.obj("user")["name"])
	assert.Contains(t, app.images.deleted, "avatar-Ada")

	res = app.do(t, http.MethodGet, "/api/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, "user", res.obj("user")["role"])

	res = app.do(t, http.MethodPut, "/api/users/"+id+"/role", adminToken, map[string]string{"role": "admin"})
	require.Equal(t, http.StatusOK, res.code, string(res.raw))
	res = app.do(t, http.MethodGet, "/api/users", token, nil)
	assert.Equal(t, http.StatusOK, res.code, "promotion applies to existing tokens")

	res = app.do(t, http.MethodPut, "/api/users/"+id+"/role", adminToken, map[string]string{"role": "root"})
	assert.Equal(t, http.StatusBadRequest, res.code)

	res = app.do(t, http.MethodDelete, "/api/users/"+id, adminToken, nil)
	require.Equal(t, http.StatusOK, res.code)
	res = app.do(t, http.MethodGet, "/api/auth/profile", token, nil)
	assert.Equal(t, http.StatusNotFound, res.code, string(res.raw))
	assert.Equal(t, "User not found", res.str("error"))
}

func TestUploads(t *testing.T) {
	app := newTestApp(t, nil)
	token, _ := app.signup(t, "Ada", "ada@example.com")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "avatar.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG\r\n\x1a\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/uploads?folder=avatars", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	app.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var body struct {
		Image models.Image `json:"image"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "avatars/imga", body.Image.PublicID)
	assert.True(t, body.Image.Complete())

	res := app.do(t, http.MethodPost, "/api/uploads?folder=../etc", token, nil)
	assert.Equal(t, http.StatusBadRequest, res.code)

	disabled := newTestApp(t, func(d *Deps) { d.Images = nil })
	token, _ = disabled.signup(t, "Bob", "bob@example.com")
	res = disabled.do(t, http.MethodPost, "/api/uploads", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, res.code)
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t, nil)
	res := app.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, "ok", res.str("status"))

	res = app.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, res.code)
	assert.Contains(t, string(res.raw), "shop_http_requests_total")

	down := newTestApp(t, func(d *Deps) {
		d.Ping = func(context.Context) error { return errors.New("no primary") }
	})
	res = down.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, res.code)
}
