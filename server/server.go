// Package server wires stores, services and controllers into the HTTP handler
// and runs it.
package server

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"shop-api/config"
	"shop-api/controllers"
	"shop-api/middleware"
	"shop-api/routes"
	"shop-api/services"
	"shop-api/store"
	"shop-api/utils"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// ImageStore uploads and deletes image objects.
type ImageStore interface {
	controllers.Uploader
	services.ImageStore
}

// Deps are the collaborators the handler is built from. Mailer, Images,
// AuthLimiter and Ping are optional.
type Deps struct {
	Stores            store.Stores
	Tokens            *utils.TokenManager
	Mailer            utils.Mailer
	Images            ImageStore
	AuthLimiter       middleware.Limiter
	Ping              func(ctx context.Context) error
	Logger            *zap.Logger
	StrictTransitions bool
	MaxBodySize       int64
}

// NewHandler builds the services and controllers and returns the router.
func NewHandler(d Deps) *mux.Router {
	var images services.ImageStore
	var uploader controllers.Uploader
	if d.Images != nil {
		images, uploader = d.Images, d.Images
	}

	auth := services.NewAuthService(d.Stores.Users, d.Tokens, images)
	catalog := services.NewCatalogService(d.Stores.Categories, d.Stores.Products, images)
	cart := services.NewCartService(d.Stores.Carts, d.Stores.Products)
	orders := services.NewOrderService(d.Stores.Orders, d.Stores.Products, d.Stores.Users, d.Mailer,
		services.OrderOptions{StrictTransitions: d.StrictTransitions})
	users := services.NewUserService(d.Stores.Users)

	return routes.NewRouter(routes.Controllers{
		Users:      controllers.NewUserController(auth),
		Categories: controllers.NewCategoryController(catalog),
		Products:   controllers.NewProductController(catalog),
		Cart:       controllers.NewCartController(cart),
		Orders:     controllers.NewOrderController(orders),
		Admin:      controllers.NewAdminUserController(users),
		Uploads:    controllers.NewUploadController(uploader),
		Health:     controllers.NewHealthController(d.Ping),
	}, routes.Options{
		Logger:      d.Logger,
		Auth:        auth,
		AuthLimiter: d.AuthLimiter,
		MaxBodySize: d.MaxBodySize,
	})
}

// Run serves handler until ctx is cancelled or SIGINT/SIGTERM arrives, then
// drains in-flight requests for up to cfg.ShutdownTimeout.
func Run(ctx context.Context, addr string, handler http.Handler, cfg config.HTTPConfig, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
