// Package config loads the service configuration from .env, config.toml and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App    AppConfig
	Store  StoreConfig
	Mongo  MongoConfig
	Redis  RedisConfig
	JWT    JWTConfig
	Log    LogConfig
	HTTP   HTTPConfig
	Orders OrdersConfig
	Mail   MailConfig
	S3     S3Config
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// StoreConfig selects the persistence driver: "mongo" or "memory".
type StoreConfig struct {
	Driver string
}

// MongoConfig holds MongoDB connection settings
type MongoConfig struct {
	URI         string
	Database    string
	Timeout     time.Duration
	MaxPoolSize uint64
}

// RedisConfig holds Redis connection settings. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds token signing settings
type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
	Output string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout           time.Duration
	WriteTimeout          time.Duration
	IdleTimeout           time.Duration
	ShutdownTimeout       time.Duration
	MaxBodySize           int64
	AuthRateLimitRequests int
	AuthRateLimitWindow   time.Duration
}

// OrdersConfig holds order lifecycle settings
type OrdersConfig struct {
	// StrictTransitions enforces the status adjacency list on admin updates.
	StrictTransitions bool
}

// MailConfig selects the notification provider: "postmark", "sendgrid" or "log".
type MailConfig struct {
	Provider      string
	From          string
	PostmarkToken string
	SendgridKey   string
}

// S3Config holds the image bucket settings. An empty Bucket disables uploads.
type S3Config struct {
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	Endpoint  string
	PublicURL string
}

// IsProduction reports whether the app runs with env=production.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// Load reads configuration with this priority (highest first):
//  1. SHOP_* environment variables (e.g. SHOP_MONGO_URI), plus PORT, JWT_SECRET and MONGODB_URI
//  2. config.toml in the working directory
//  3. built-in defaults
//
// A .env file, when present, is loaded into the environment first.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("SHOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("app.port", "SHOP_APP_PORT", "PORT")
	_ = v.BindEnv("jwt.secret", "SHOP_JWT_SECRET", "JWT_SECRET")
	_ = v.BindEnv("mongo.uri", "SHOP_MONGO_URI", "MONGODB_URI")

	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Store: StoreConfig{
			Driver: v.GetString("store.driver"),
		},
		Mongo: MongoConfig{
			URI:         v.GetString("mongo.uri"),
			Database:    v.GetString("mongo.database"),
			Timeout:     v.GetDuration("mongo.timeout"),
			MaxPoolSize: v.GetUint64("mongo.max_pool_size"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("jwt.secret"),
			TTL:    v.GetDuration("jwt.ttl"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:           v.GetDuration("http.read_timeout"),
			WriteTimeout:          v.GetDuration("http.write_timeout"),
			IdleTimeout:           v.GetDuration("http.idle_timeout"),
			ShutdownTimeout:       v.GetDuration("http.shutdown_timeout"),
			MaxBodySize:           v.GetInt64("http.max_body_size"),
			AuthRateLimitRequests: v.GetInt("http.auth_rate_limit_requests"),
			AuthRateLimitWindow:   v.GetDuration("http.auth_rate_limit_window"),
		},
		Orders: OrdersConfig{
			StrictTransitions: v.GetBool("orders.strict_transitions"),
		},
		Mail: MailConfig{
			Provider:      v.GetString("mail.provider"),
			From:          v.GetString("mail.from"),
			PostmarkToken: v.GetString("mail.postmark_token"),
			SendgridKey:   v.GetString("mail.sendgrid_key"),
		},
		S3: S3Config{
			Bucket:    v.GetString("s3.bucket"),
			Region:    v.GetString("s3.region"),
			AccessKey: v.GetString("s3.access_key"),
			SecretKey: v.GetString("s3.secret_key"),
			Endpoint:  v.GetString("s3.endpoint"),
			PublicURL: v.GetString("s3.public_url"),
		},
	}

	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
		if cfg.IsProduction() {
			cfg.Log.Format = "json"
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "shop-api")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8000")
	v.SetDefault("store.driver", "mongo")
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "ecommerce")
	v.SetDefault("mongo.timeout", 10*time.Second)
	v.SetDefault("mongo.max_pool_size", 100)
	v.SetDefault("jwt.ttl", 30*24*time.Hour)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 15*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)
	v.SetDefault("http.max_body_size", 10<<20)
	v.SetDefault("http.auth_rate_limit_requests", 10)
	v.SetDefault("http.auth_rate_limit_window", time.Minute)
	v.SetDefault("mail.provider", "log")
	v.SetDefault("mail.from", "orders@shop.local")
	v.SetDefault("s3.region", "us-east-1")
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret is required (set SHOP_JWT_SECRET or JWT_SECRET)")
	}
	if c.IsProduction() && len(c.JWT.Secret) < 32 {
		return errors.New("jwt.secret must be at least 32 characters in production")
	}
	if c.JWT.TTL <= 0 {
		return errors.New("jwt.ttl must be positive")
	}
	switch c.Store.Driver {
	case "mongo", "memory":
	default:
		return fmt.Errorf("store.driver must be mongo or memory, got %q", c.Store.Driver)
	}
	switch c.Mail.Provider {
	case "log":
	case "postmark":
		if c.Mail.PostmarkToken == "" {
			return errors.New("mail.postmark_token is required for the postmark provider")
		}
	case "sendgrid":
		if c.Mail.SendgridKey == "" {
			return errors.New("mail.sendgrid_key is required for the sendgrid provider")
		}
	default:
		return fmt.Errorf("mail.provider must be log, postmark or sendgrid, got %q", c.Mail.Provider)
	}
	if c.HTTP.AuthRateLimitRequests < 0 {
		return errors.New("http.auth_rate_limit_requests cannot be negative")
	}
	return nil
}
