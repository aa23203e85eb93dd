package routes

import (
	"net/http"
	"shop-api/controllers"
	"shop-api/metrics"
	"shop-api/middleware"
	"shop-api/response"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Controllers bundles the handlers the router dispatches to.
type Controllers struct {
	Users      *controllers.UserController
	Categories *controllers.CategoryController
	Products   *controllers.ProductController
	Cart       *controllers.CartController
	Orders     *controllers.OrderController
	Admin      *controllers.AdminUserController
	Uploads    *controllers.UploadController
	Health     *controllers.HealthController
}

// Options configures the middleware around the routes.
type Options struct {
	Logger      *zap.Logger
	Auth        middleware.Authenticator
	AuthLimiter middleware.Limiter
	MaxBodySize int64
}

// NewRouter builds the application router with its global middleware.
func NewRouter(c Controllers, opts Options) *mux.Router {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.Fail(w, http.StatusNotFound, "Route not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.Fail(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	router.Use(metrics.Middleware, middleware.RequestLogger(log), middleware.Recovery)
	if opts.MaxBodySize > 0 {
		router.Use(middleware.BodyLimit(opts.MaxBodySize))
	}

	RegisterRoutes(router, c, opts)
	return router
}

// RegisterRoutes sets up all the routes for the application. Every route
// lives on the api router itself and carries its own middleware, so a known
// path with the wrong method answers 405.
func RegisterRoutes(router *mux.Router, c Controllers, opts Options) {
	router.Handle("/metrics", metrics.Handler()).Methods("GET")
	router.HandleFunc("/healthz", c.Health.Health).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()

	authenticated := middleware.AuthMiddleware(opts.Auth)
	protected := func(h http.HandlerFunc) http.Handler {
		return authenticated(h)
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return authenticated(middleware.AdminMiddleware(h))
	}
	limited := func(h http.HandlerFunc) http.Handler {
		if opts.AuthLimiter == nil {
			return h
		}
		return middleware.RateLimit(opts.AuthLimiter, "auth")(h)
	}

	// Public routes
	api.Handle("/auth/signup", limited(c.Users.Register)).Methods("POST")
	api.Handle("/auth/login", limited(c.Users.Login)).Methods("POST")

	api.HandleFunc("/categories", c.Categories.GetCategories).Methods("GET")
	api.HandleFunc("/categories/{id}", c.Categories.GetCategoryByID).Methods("GET")
	api.HandleFunc("/products", c.Products.GetProducts).Methods("GET")
	api.HandleFunc("/products/{id}", c.Products.GetProductByID).Methods("GET")

	// Protected routes
	api.Handle("/auth/profile", protected(c.Users.GetProfile)).Methods("GET")
	api.Handle("/auth/update-profile", protected(c.Users.UpdateProfile)).Methods("PUT")

	// Cart routes
	api.Handle("/cart", protected(c.Cart.GetCart)).Methods("GET")
	api.Handle("/cart", protected(c.Cart.AddToCart)).Methods("POST")
	api.Handle("/cart", protected(c.Cart.ClearCart)).Methods("DELETE")
	api.Handle("/cart/{itemId}", protected(c.Cart.UpdateCartItem)).Methods("PUT")
	api.Handle("/cart/{itemId}", protected(c.Cart.RemoveFromCart)).Methods("DELETE")

	// Order routes
	api.Handle("/orders", protected(c.Orders.CreateOrder)).Methods("POST")
	api.Handle("/orders", protected(c.Orders.GetOrders)).Methods("GET")
	api.Handle("/orders/{id}", protected(c.Orders.GetOrderByID)).Methods("GET")
	api.Handle("/orders/{id}/cancel", protected(c.Orders.CancelOrder)).Methods("PUT")

	api.Handle("/uploads", protected(c.Uploads.UploadImage)).Methods("POST")

	// Admin routes
	api.Handle("/categories", admin(c.Categories.CreateCategory)).Methods("POST")
	api.Handle("/categories/{id}", admin(c.Categories.UpdateCategory)).Methods("PUT")
	api.Handle("/categories/{id}", admin(c.Categories.DeleteCategory)).Methods("DELETE")

	api.Handle("/products", admin(c.Products.CreateProduct)).Methods("POST")
	api.Handle("/products/{id}", admin(c.Products.UpdateProduct)).Methods("PUT")
	api.Handle("/products/{id}", admin(c.Products.DeleteProduct)).Methods("DELETE")

	api.Handle("/orders/{id}/status", admin(c.Orders.UpdateOrderStatus)).Methods("PUT")
	api.Handle("/orders/{id}/pay", admin(c.Orders.UpdateOrderPaymentStatus)).Methods("PUT")

	api.Handle("/users", admin(c.Admin.GetUsers)).Methods("GET")
	api.Handle("/users/{id}", admin(c.Admin.GetUserByID)).Methods("GET")
	api.Handle("/users/{id}", admin(c.Admin.DeleteUser)).Methods("DELETE")
	api.Handle("/users/{id}/role", admin(c.Admin.UpdateUserRole)).Methods("PUT")
}
