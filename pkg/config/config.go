package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	Backend  BackendConfig
	Store    StoreConfig
	Redis    RedisConfig
	Terminal TerminalConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TRIOPOS_APP_ENV" default:"dev"`
	Port         string `envconfig:"TRIOPOS_APP_PORT" default:"8088"`
	LogLevel     string `envconfig:"TRIOPOS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TRIOPOS_LOG_WARN_STACK" default:"false"`
	// LogFormat is "json" or "console". Unset means console in dev and json elsewhere.
	LogFormat  string `envconfig:"TRIOPOS_LOG_FORMAT"`
	TerminalID string `envconfig:"TRIOPOS_TERMINAL_ID" default:"till-1"`
	// CORSOrigins lists the display shells allowed to call the kiosk API.
	CORSOrigins []string `envconfig:"TRIOPOS_CORS_ORIGINS" default:"http://localhost:8088"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

// ConsoleLogs reports whether logs should be written in zerolog's console format.
func (a AppConfig) ConsoleLogs() bool {
	switch strings.ToLower(strings.TrimSpace(a.LogFormat)) {
	case LogFormatConsole:
		return true
	case LogFormatJSON:
		return false
	}
	return a.IsDev()
}

// BackendConfig points the terminal at the POS backend that owns cart, product and order state.
type BackendConfig struct {
	URL               string        `envconfig:"TRIOPOS_BACKEND_URL" required:"true"`
	Timeout           time.Duration `envconfig:"TRIOPOS_BACKEND_TIMEOUT" default:"10s"`
	SessionCookieName string        `envconfig:"TRIOPOS_BACKEND_SESSION_COOKIE_NAME" default:"session"`
	SessionCookie     string        `envconfig:"TRIOPOS_BACKEND_SESSION_COOKIE"`
	ImagePath         string        `envconfig:"TRIOPOS_BACKEND_IMAGE_PATH" default:"/static/images/products/"`
	Username          string        `envconfig:"TRIOPOS_BACKEND_USERNAME"`
	Password          string        `envconfig:"TRIOPOS_BACKEND_PASSWORD"`
	BillingPath       string        `envconfig:"TRIOPOS_BACKEND_BILLING_PATH" default:"/billing"`
}

type StoreConfig struct {
	Driver      string `envconfig:"TRIOPOS_STORE_DRIVER" default:"sqlite"`
	SQLitePath  string `envconfig:"TRIOPOS_SQLITE_PATH" default:"trio-pos.db"`
	AutoMigrate bool   `envconfig:"TRIOPOS_SQLITE_AUTO_MIGRATE" default:"true"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TRIOPOS_REDIS_URL"`
	Address      string        `envconfig:"TRIOPOS_REDIS_ADDR"`
	Password     string        `envconfig:"TRIOPOS_REDIS_PASSWORD"`
	DB           int           `envconfig:"TRIOPOS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TRIOPOS_REDIS_POOL_SIZE" default:"4"`
	MinIdleConns int           `envconfig:"TRIOPOS_REDIS_MIN_IDLE_CONNS" default:"1"`
	DialTimeout  time.Duration `envconfig:"TRIOPOS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TRIOPOS_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"TRIOPOS_REDIS_WRITE_TIMEOUT" default:"3s"`
}

// TerminalConfig carries the UI tunables of the checkout screen.
type TerminalConfig struct {
	BarcodeIdleTimeout time.Duration `envconfig:"TRIOPOS_BARCODE_IDLE_TIMEOUT" default:"100ms"`
	BarcodeMinLength   int           `envconfig:"TRIOPOS_BARCODE_MIN_LENGTH" default:"5"`
	MaxImageBytes      int64         `envconfig:"TRIOPOS_MAX_IMAGE_BYTES" default:"5242880"`
	CurrencySymbol     string        `envconfig:"TRIOPOS_CURRENCY_SYMBOL" default:"₹"`
	TaxRate            float64       `envconfig:"TRIOPOS_TAX_RATE" default:"5.0"`
	DefaultLanguage    string        `envconfig:"TRIOPOS_DEFAULT_LANGUAGE" default:"en"`
	OrderPromptDelay   time.Duration `envconfig:"TRIOPOS_ORDER_PROMPT_DELAY" default:"1s"`
	CheckImages        bool          `envconfig:"TRIOPOS_CHECK_IMAGES" default:"false"`
}

func (c *Config) validate() error {
	u, err := url.Parse(strings.TrimSpace(c.Backend.URL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute url", EnvBackendURL)
	}

	switch strings.ToLower(strings.TrimSpace(c.Store.Driver)) {
	case StoreDriverSQLite:
		if strings.TrimSpace(c.Store.SQLitePath) == "" {
			return fmt.Errorf("%s is required for the sqlite store", EnvSQLitePath)
		}
	case StoreDriverRedis:
		if c.Redis.URL == "" && c.Redis.Address == "" {
			return fmt.Errorf("either %s or %s is required for the redis store", EnvRedisURL, EnvRedisAddr)
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("%s must be one of sqlite, redis, memory", EnvStoreDriver)
	}
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))

	if (c.Backend.Username == "") != (c.Backend.Password == "") {
		return fmt.Errorf("%s and %s must be set together", EnvBackendUser, EnvBackendPass)
	}

	if c.Terminal.BarcodeIdleTimeout <= 0 {
		return fmt.Errorf("%s must be positive", EnvBarcodeIdle)
	}
	if c.Terminal.MaxImageBytes <= 0 {
		return fmt.Errorf("%s must be positive", EnvMaxImage)
	}
	if c.Terminal.TaxRate < 0 {
		return fmt.Errorf("%s must not be negative", EnvTaxRate)
	}
	return nil
}
