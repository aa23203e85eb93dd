package client

import (
	"context"
	"net/http"
	"net/url"
	"shop-api/models"
)

// SignupRequest is the body of Signup.
type SignupRequest struct {
	Name     string       `json:"name"`
	Email    string       `json:"email"`
	Password string       `json:"password"`
	Address  string       `json:"address,omitempty"`
	Image    models.Image `json:"image"`
}

// ProfileUpdate is the body of UpdateProfile. Empty fields are left unchanged.
type ProfileUpdate struct {
	Name    string        `json:"name,omitempty"`
	Email   string        `json:"email,omitempty"`
	Address string        `json:"address,omitempty"`
	Image   *models.Image `json:"image,omitempty"`
}

// ProductRequest is the body of CreateProduct and UpdateProduct.
type ProductRequest struct {
	Name        *string       `json:"name,omitempty"`
	Price       *float64      `json:"price,omitempty"`
	Description *string       `json:"description,omitempty"`
	Category    *string       `json:"category,omitempty"`
	Image       *models.Image `json:"image,omitempty"`
}

// OrderItem is one requested checkout line.
type OrderItem struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

// OrderRequest is the body of CreateOrder.
type OrderRequest struct {
	OrderItems      []OrderItem            `json:"orderItems"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
	ShippingCost    float64                `json:"shippingCost"`
	Tax             float64                `json:"tax"`
}

type sessionResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

type userResponse struct {
	User models.User `json:"user"`
}

type usersResponse struct {
	Users []models.User `json:"users"`
}

type categoryResponse struct {
	Category models.Category `json:"category"`
}

type categoriesResponse struct {
	Categories []models.Category `json:"categories"`
}

type productResponse struct {
	Product models.Product `json:"product"`
}

type productsResponse struct {
	Products []models.Product `json:"products"`
}

type cartResponse struct {
	Cart models.Cart `json:"cart"`
}

type orderResponse struct {
	Order models.Order `json:"order"`
}

type ordersResponse struct {
	Orders []models.Order `json:"orders"`
}

func (c *Client) session(ctx context.Context, path string, body any) (*models.User, error) {
	var out sessionResponse
	if err := c.do(ctx, http.MethodPost, path, nil, body, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out.User, nil
}

// Signup creates an account and keeps its session token.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*models.User, error) {
	return c.session(ctx, "/api/auth/signup", req)
}

// Login authenticates and keeps the session token.
func (c *Client) Login(ctx context.Context, email, password string) (*models.User, error) {
	return c.session(ctx, "/api/auth/login", map[string]string{"email": email, "password": password})
}

// Profile returns the caller's profile.
func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	var out userResponse
	if err := c.do(ctx, http.MethodGet, "/api/auth/profile", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// UpdateProfile changes the caller's profile.
func (c *Client) UpdateProfile(ctx context.Context, req ProfileUpdate) (*models.User, error) {
	var out userResponse
	if err := c.do(ctx, http.MethodPut, "/api/auth/update-profile", nil, req, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Categories lists every category.
func (c *Client) Categories(ctx context.Context) ([]models.Category, error) {
	var out categoriesResponse
	if err := c.do(ctx, http.MethodGet, "/api/categories", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

// CreateCategory adds a category (admin).
func (c *Client) CreateCategory(ctx context.Context, name, description string) (*models.Category, error) {
	var out categoryResponse
	body := map[string]string{"name": name, "description": description}
	if err := c.do(ctx, http.MethodPost, "/api/categories", nil, body, &out); err != nil {
		return nil, err
	}
	return &out.Category, nil
}

// DeleteCategory removes a category (admin).
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/categories/"+url.PathEscape(id), nil, nil, nil)
}

// Products lists products. A non-empty categoryID narrows the list.
func (c *Client) Products(ctx context.Context, categoryID string) ([]models.Product, error) {
	var query url.Values
	if categoryID != "" {
		query = url.Values{"category": {categoryID}}
	}
	var out productsResponse
	if err := c.do(ctx, http.MethodGet, "/api/products", query, nil, &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

// Product returns one product.
func (c *Client) Product(ctx context.Context, id string) (*models.Product, error) {
	var out productResponse
	if err := c.do(ctx, http.MethodGet, "/api/products/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.Product, nil
}

// CreateProduct adds a product (admin).
func (c *Client) CreateProduct(ctx context.Context, req ProductRequest) (*models.Product, error) {
	var out productResponse
	if err := c.do(ctx, http.MethodPost, "/api/products", nil, req, &out); err != nil {
		return nil, err
	}
	return &out.Product, nil
}

// UpdateProduct changes a product (admin).
func (c *Client) UpdateProduct(ctx context.Context, id string, req ProductRequest) (*models.Product, error) {
	var out productResponse
	if err := c.do(ctx, http.MethodPut, "/api/products/"+url.PathEscape(id), nil, req, &out); err != nil {
		return nil, err
	}
	return &out.Product, nil
}

// DeleteProduct removes a product (admin).
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/products/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) cart(ctx context.Context, method, path string, body any) (*models.Cart, error) {
	var out cartResponse
	if err := c.do(ctx, method, path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out.Cart, nil
}

// Cart returns the caller's cart.
func (c *Client) Cart(ctx context.Context) (*models.Cart, error) {
	return c.cart(ctx, http.MethodGet, "/api/cart", nil)
}

// AddToCart adds quantity units of a product.
func (c *Client) AddToCart(ctx context.Context, productID string, quantity int) (*models.Cart, error) {
	return c.cart(ctx, http.MethodPost, "/api/cart", map[string]any{"productId": productID, "quantity": quantity})
}

// UpdateCartItem sets the quantity of a cart line.
func (c *Client) UpdateCartItem(ctx context.Context, itemID string, quantity int) (*models.Cart, error) {
	return c.cart(ctx, http.MethodPut, "/api/cart/"+url.PathEscape(itemID), map[string]int{"quantity": quantity})
}

// RemoveCartItem removes a cart line.
func (c *Client) RemoveCartItem(ctx context.Context, itemID string) (*models.Cart, error) {
	return c.cart(ctx, http.MethodDelete, "/api/cart/"+url.PathEscape(itemID), nil)
}

// ClearCart empties the cart.
func (c *Client) ClearCart(ctx context.Context) (*models.Cart, error) {
	return c.cart(ctx, http.MethodDelete, "/api/cart", nil)
}

func (c *Client) order(ctx context.Context, method, path string, body any) (*models.Order, error) {
	var out orderResponse
	if err := c.do(ctx, method, path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out.Order, nil
}

// CreateOrder places an order.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*models.Order, error) {
	return c.order(ctx, http.MethodPost, "/api/orders", req)
}

// Orders lists the caller's orders, or every order for admins.
func (c *Client) Orders(ctx context.Context) ([]models.Order, error) {
	var out ordersResponse
	if err := c.do(ctx, http.MethodGet, "/api/orders", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

// Order returns one order.
func (c *Client) Order(ctx context.Context, id string) (*models.Order, error) {
	return c.order(ctx, http.MethodGet, "/api/orders/"+url.PathEscape(id), nil)
}

// CancelOrder cancels an undelivered order.
func (c *Client) CancelOrder(ctx context.Context, id string) (*models.Order, error) {
	return c.order(ctx, http.MethodPut, "/api/orders/"+url.PathEscape(id)+"/cancel", nil)
}

// UpdateOrderStatus moves an order to status (admin).
func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus, trackingNumber string) (*models.Order, error) {
	body := map[string]string{"status": string(status)}
	if trackingNumber != "" {
		body["trackingNumber"] = trackingNumber
	}
	return c.order(ctx, http.MethodPut, "/api/orders/"+url.PathEscape(id)+"/status", body)
}

// PayOrder marks an order paid (admin). result may be nil.
func (c *Client) PayOrder(ctx context.Context, id string, result *models.PaymentResult) (*models.Order, error) {
	var body any
	if result != nil {
		body = result
	}
	return c.order(ctx, http.MethodPut, "/api/orders/"+url.PathEscape(id)+"/pay", body)
}

// Users lists every account (admin).
func (c *Client) Users(ctx context.Context) ([]models.User, error) {
	var out usersResponse
	if err := c.do(ctx, http.MethodGet, "/api/users", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

// SetUserRole changes a user's role (admin).
func (c *Client) SetUserRole(ctx context.Context, id, role string) (*models.User, error) {
	var out userResponse
	body := map[string]string{"role": role}
	if err := c.do(ctx, http.MethodPut, "/api/users/"+url.PathEscape(id)+"/role", nil, body, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// DeleteUser removes an account (admin).
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/users/"+url.PathEscape(id), nil, nil, nil)
}
