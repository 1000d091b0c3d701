package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port                   int      `mapstructure:"port"`
		CorsAllowedOrigins     []string `mapstructure:"cors_allowed_origins"`
		CorsAllowedMethods     []string `mapstructure:"cors_allowed_methods"`
		CorsAllowedHeaders     []string `mapstructure:"cors_allowed_headers"`
		ShutdownTimeoutSeconds int      `mapstructure:"shutdown_timeout_seconds"`
		Timezone               string   `mapstructure:"timezone"`
	} `mapstructure:"server"`

	Database struct {
		URL      string `mapstructure:"url"`
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		SSLMode  string `mapstructure:"sslmode"`
		MaxConns int32  `mapstructure:"max_conns"`
	} `mapstructure:"database"`

	// Auth holds the identity service's token settings.
	Auth struct {
		JWTSecret string `mapstructure:"jwt_secret"`
		Audience  string `mapstructure:"audience"`
	} `mapstructure:"auth"`

	Stripe struct {
		SecretKey     string `mapstructure:"secret_key"`
		WebhookSecret string `mapstructure:"webhook_secret"`
		Currency      string `mapstructure:"currency"`
	} `mapstructure:"stripe"`

	Redis struct {
		Addr                    string `mapstructure:"addr"`
		Password                string `mapstructure:"password"`
		DB                      int    `mapstructure:"db"`
		PaymentMethodTTLSeconds int    `mapstructure:"payment_method_ttl_seconds"`
	} `mapstructure:"redis"`

	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
		Topic   string   `mapstructure:"topic"`
		Workers int      `mapstructure:"workers"`
	} `mapstructure:"kafka"`

	// Archive stores raw webhook events in an S3-compatible bucket.
	Archive struct {
		Enabled   bool   `mapstructure:"enabled"`
		Endpoint  string `mapstructure:"endpoint"`
		Region    string `mapstructure:"region"`
		Bucket    string `mapstructure:"bucket"`
		Prefix    string `mapstructure:"prefix"`
		AccessKey string `mapstructure:"access_key"`
		SecretKey string `mapstructure:"secret_key"`
	} `mapstructure:"archive"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
}

// Load reads configs/config.yaml when present, then applies environment overrides.
func Load() (*Config, error) {
	// .env is optional outside local development
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile("configs/config.yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", 3001)
	v.SetDefault("server.cors_allowed_origins", []string{"*"})
	v.SetDefault("server.cors_allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("server.cors_allowed_headers", []string{"Content-Type", "Authorization"})
	v.SetDefault("server.shutdown_timeout_seconds", 15)
	v.SetDefault("server.timezone", "America/Toronto")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "postgres")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("auth.audience", "authenticated")
	v.SetDefault("stripe.currency", "cad")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.payment_method_ttl_seconds", 300)
	v.SetDefault("kafka.topic", "payments")
	v.SetDefault("kafka.workers", 4)
	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.endpoint", "")
	v.SetDefault("archive.bucket", "")
	v.SetDefault("archive.access_key", "")
	v.SetDefault("archive.secret_key", "")
	v.SetDefault("archive.region", "auto")
	v.SetDefault("archive.prefix", "stripe-events")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	if err := v.ReadInConfig(); err != nil {
		logrus.WithField("component", "config").Info("no config file found, using defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal: %w", err)
	}

	applyEnv(&cfg)
	return &cfg, nil
}

// applyEnv maps the conventional variable names onto the config tree.
func applyEnv(cfg *Config) {
	if port := os.Getenv("PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil && n > 0 {
			cfg.Server.Port = n
		}
	}
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		cfg.Server.CorsAllowedOrigins = splitList(origins)
	}

	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.Database.URL = dsn
	}
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Database.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil && n > 0 {
			cfg.Database.Port = n
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.Database.User = user
	}
	if pass := os.Getenv("DB_PASSWORD"); pass != "" {
		cfg.Database.Password = pass
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Database.Name = name
	}

	if secret := os.Getenv("SUPABASE_JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}

	if key := os.Getenv("STRIPE_SECRET_KEY"); key != "" {
		cfg.Stripe.SecretKey = key
	}
	if secret := os.Getenv("STRIPE_WEBHOOK_SECRET"); secret != "" {
		cfg.Stripe.WebhookSecret = secret
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if pass := os.Getenv("REDIS_PASSWORD"); pass != "" {
		cfg.Redis.Password = pass
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = splitList(brokers)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// DSN returns the Postgres connection string, preferring Database.URL.
func (c *Config) DSN() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Database.User, c.Database.Password),
		Host:   fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		Path:   c.Database.Name,
	}
	if c.Database.SSLMode != "" {
		u.RawQuery = "sslmode=" + url.QueryEscape(c.Database.SSLMode)
	}
	return u.String()
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("SUPABASE_JWT_SECRET is required"))
	}
	if c.Stripe.SecretKey == "" {
		errs = append(errs, errors.New("STRIPE_SECRET_KEY is required"))
	}
	if c.Stripe.WebhookSecret == "" {
		errs = append(errs, errors.New("STRIPE_WEBHOOK_SECRET is required"))
	}
	if c.Archive.Enabled && c.Archive.Bucket == "" {
		errs = append(errs, errors.New("archive.bucket is required when the archive is enabled"))
	}
	return errors.Join(errs...)
}
