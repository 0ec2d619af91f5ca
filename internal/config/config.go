package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/MrJamesThe3rd/marketvest/internal/database"
)

type Config struct {
	App struct {
		Name        string `envconfig:"APP_NAME" default:"Marketvest"`
		Port        int    `envconfig:"PORT" default:"8080"`
		PublicURL   string `envconfig:"PUBLIC_URL" default:"http://localhost:8080"`
		FrontendURL string `envconfig:"FRONTEND_URL" default:"http://localhost:3000"`
	}

	DB struct {
		Host        string `envconfig:"DB_HOST" default:"localhost"`
		Port        int    `envconfig:"DB_PORT" default:"5432"`
		User        string `envconfig:"DB_USER" default:"postgres"`
		Password    string `envconfig:"DB_PASSWORD" default:""`
		Name        string `envconfig:"DB_NAME" default:"marketvest"`
		SSLMode     string `envconfig:"DB_SSLMODE" default:"disable"`
		AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"false"`

		MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
		MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
		ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Auth struct {
		JWTSecret string `envconfig:"JWT_SECRET" required:"true"`
		Issuer    string `envconfig:"JWT_ISSUER" default:""`
	}

	Gateway struct {
		BaseURL       string        `envconfig:"GATEWAY_BASE_URL" default:"https://api.xendit.co"`
		SecretKey     string        `envconfig:"GATEWAY_SECRET_KEY"`
		CallbackToken string        `envconfig:"GATEWAY_CALLBACK_TOKEN"`
		Timeout       time.Duration `envconfig:"GATEWAY_TIMEOUT" default:"10s"`
	}

	Payment struct {
		PendingTTL time.Duration `envconfig:"PAYMENT_PENDING_TTL" default:"30m"`
	}

	Sweep struct {
		Enabled  bool          `envconfig:"SWEEP_ENABLED" default:"true"`
		Interval time.Duration `envconfig:"SWEEP_INTERVAL" default:"15m"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	}

	Admin struct {
		// OperatorID is recorded as the paying admin for payouts made from the console.
		OperatorID string `envconfig:"ADMIN_OPERATOR_ID"`
	}
}

func (c *Config) ConnectionString() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DB.User, c.DB.Password),
		Host:     fmt.Sprintf("%s:%d", c.DB.Host, c.DB.Port),
		Path:     c.DB.Name,
		RawQuery: url.Values{"sslmode": {c.DB.SSLMode}}.Encode(),
	}

	return u.String()
}

func (c *Config) Pool() database.Pool {
	return database.Pool{
		MaxOpen:     c.DB.MaxOpenConns,
		MaxIdle:     c.DB.MaxIdleConns,
		MaxLifetime: c.DB.ConnMaxLifetime,
	}
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
