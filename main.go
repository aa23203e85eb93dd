// main.go
package main

import (
	"context"
	"fmt"
	"os"
	"shop-api/config"
	"shop-api/logger"
	"shop-api/media"
	"shop-api/middleware"
	"shop-api/server"
	"shop-api/store"
	"shop-api/store/memstore"
	"shop-api/store/mongostore"
	"shop-api/utils"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "shop-api",
	Short:         "REST backend for the mobile shop",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(adminCmd)
	rootCmd.AddCommand(seedCmd)
}

// environment is what every command needs: configuration, a logger and the stores.
type environment struct {
	cfg    *config.Config
	log    *zap.Logger
	stores store.Stores
	ping   func(ctx context.Context) error
	close  func()
}

func setup(ctx context.Context) (*environment, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})

	env := &environment{cfg: cfg, log: log, close: func() { _ = log.Sync() }}
	switch cfg.Store.Driver {
	case "memory":
		log.Warn("using in-memory store, data is lost on restart")
		env.stores = memstore.New()
	default:
		connectCtx, cancel := context.WithTimeout(ctx, cfg.Mongo.Timeout)
		defer cancel()
		client, err := mongostore.Connect(connectCtx, mongostore.Options{
			URI:            cfg.Mongo.URI,
			ConnectTimeout: cfg.Mongo.Timeout,
			MaxPoolSize:    cfg.Mongo.MaxPoolSize,
		})
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.Mongo.Database)
		if err := mongostore.EnsureIndexes(connectCtx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		log.Info("connected to MongoDB", zap.String("database", cfg.Mongo.Database))
		env.stores = mongostore.New(db)
		env.ping = func(ctx context.Context) error { return client.Ping(ctx, nil) }
		env.close = func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Error("failed to disconnect from MongoDB", zap.Error(err))
			}
			_ = log.Sync()
		}
	}
	return env, nil
}

func serve(ctx context.Context) error {
	env, err := setup(ctx)
	if err != nil {
		return err
	}
	defer env.close()
	cfg, log := env.cfg, env.log

	deps := server.Deps{
		Stores:            env.stores,
		Tokens:            utils.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL),
		Mailer:            newMailer(cfg.Mail, log),
		AuthLimiter:       newAuthLimiter(ctx, cfg, log),
		Ping:              env.ping,
		Logger:            log,
		StrictTransitions: cfg.Orders.StrictTransitions,
		MaxBodySize:       cfg.HTTP.MaxBodySize,
	}
	if cfg.S3.Bucket != "" {
		images, err := media.NewS3ImageStore(ctx, cfg.S3)
		if err != nil {
			return err
		}
		deps.Images = images
		log.Info("image uploads enabled", zap.String("bucket", cfg.S3.Bucket))
	}

	return server.Run(ctx, ":"+cfg.App.Port, server.NewHandler(deps), cfg.HTTP, log)
}

func newMailer(cfg config.MailConfig, log *zap.Logger) utils.Mailer {
	switch cfg.Provider {
	case "postmark":
		return utils.NewPostmarkMailer(cfg.PostmarkToken, cfg.From)
	case "sendgrid":
		return utils.NewSendGridMailer(cfg.SendgridKey, cfg.From)
	default:
		return utils.LogMailer{Logger: log}
	}
}

// newAuthLimiter prefers Redis so limits hold across instances, and falls
// back to a per-process limiter when Redis is not configured or unreachable.
func newAuthLimiter(ctx context.Context, cfg *config.Config, log *zap.Logger) middleware.Limiter {
	limit, window := cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow
	if limit <= 0 {
		return nil
	}
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		err := client.Ping(ctx).Err()
		if err == nil {
			log.Info("rate limiting auth routes via Redis", zap.String("addr", cfg.Redis.Addr))
			return middleware.NewRedisLimiter(client, limit, window)
		}
		log.Warn("redis unreachable, using in-process rate limiter", zap.Error(err))
		_ = client.Close()
	}
	return middleware.NewMemoryLimiter(limit, window)
}
