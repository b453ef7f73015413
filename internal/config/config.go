package config // package config loads application configuration from environment variables

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11" // struct-tag driven environment parsing
	"github.com/joho/godotenv"    // optional .env file support for local runs
)

// Supported values for DB_DRIVER.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Secrets have no default; everything else falls
// back to a value that works for a local SQLite run.
type Config struct {
	Env            string `env:"APP_ENV" envDefault:"dev"`                // environment (dev/test/prod)
	Port           string `env:"APP_PORT" envDefault:"8080"`              // HTTP port to listen on
	DBDriver       string `env:"DB_DRIVER" envDefault:"sqlite"`           // mysql | postgres | sqlite
	DBUser         string `env:"DB_USER"`                                 // database username
	DBPass         string `env:"DB_PASS"`                                 // database password (empty allowed)
	DBHost         string `env:"DB_HOST" envDefault:"localhost"`          // database host
	DBPort         string `env:"DB_PORT"`                                 // database port, driver default when empty
	DBName         string `env:"DB_NAME" envDefault:"carbon"`             // database name
	DBPath         string `env:"DB_PATH" envDefault:"carbon.db"`          // sqlite file path
	JWTSecret      string `env:"JWT_SECRET,required,notEmpty"`            // secret used for signing JWTs
	AccessTTLMin   int    `env:"ACCESS_TOKEN_TTL_MIN" envDefault:"15"`    // access token TTL in minutes
	RefreshTTLDays int    `env:"REFRESH_TOKEN_TTL_DAYS" envDefault:"7"`   // refresh token and session TTL in days
	BcryptCost     int    `env:"BCRYPT_COST" envDefault:"12"`             // bcrypt cost factor
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`             // debug | info | warn | error
	LogFile        string `env:"LOG_FILE"`                                // optional rotating log file
	RabbitMQURL    string `env:"RABBITMQ_URL"`                            // usage events are published here when set
	EventsQueue    string `env:"EVENTS_QUEUE" envDefault:"carbon.events"` // queue name for published events
	AdminCacheTTL  string `env:"ADMIN_CACHE_TTL" envDefault:"30s"`        // response cache TTL for admin reports

	Redis     RedisConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
}

// Load reads an optional .env file and then the process environment.  A
// missing .env file is not an error; the environment always wins over it.
func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse builds a Config from the current process environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.RateLimit.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints that struct tags cannot express.
func (c Config) Validate() error {
	c.DBDriver = strings.ToLower(c.DBDriver)
	switch c.DBDriver {
	case DriverSQLite:
		if strings.TrimSpace(c.DBPath) == "" {
			return errors.New("DB_PATH is required for sqlite")
		}
	case DriverMySQL, DriverPostgres:
		if c.DBUser == "" || c.DBName == "" {
			return fmt.Errorf("DB_USER and DB_NAME are required for %s", c.DBDriver)
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be within 4..31, got %d", c.BcryptCost)
	}
	if c.AccessTTLMin <= 0 || c.RefreshTTLDays <= 0 {
		return errors.New("token TTLs must be positive")
	}
	return nil
}

// Driver returns the normalized DB_DRIVER value.
func (c Config) Driver() string { return strings.ToLower(c.DBDriver) }

// IsProd reports whether APP_ENV names a production deployment.
func (c Config) IsProd() bool {
	e := strings.ToLower(c.Env)
	return e == "prod" || e == "production"
}
