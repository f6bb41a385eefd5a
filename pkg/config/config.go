package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Coverage     CoverageConfig
	Schedule     ScheduleConfig
	Checkout     CheckoutConfig
	Square       SquareConfig
	Password     PasswordConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FRESHBOX_APP_ENV" required:"true"`
	Port         string `envconfig:"FRESHBOX_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FRESHBOX_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FRESHBOX_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"FRESHBOX_DB_DSN"`
	Driver string `envconfig:"FRESHBOX_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FRESHBOX_DB_HOST"`
	LegacyPort     int    `envconfig:"FRESHBOX_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FRESHBOX_DB_USER"`
	LegacyPassword string `envconfig:"FRESHBOX_DB_PASSWORD"`
	LegacyName     string `envconfig:"FRESHBOX_DB_NAME"`
	LegacySSLMode  string `envconfig:"FRESHBOX_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FRESHBOX_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FRESHBOX_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FRESHBOX_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FRESHBOX_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FRESHBOX_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FRESHBOX_REDIS_ADDR"`
	Password     string        `envconfig:"FRESHBOX_REDIS_PASSWORD"`
	DB           int           `envconfig:"FRESHBOX_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FRESHBOX_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FRESHBOX_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FRESHBOX_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FRESHBOX_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FRESHBOX_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// CoverageConfig carries the postcode prefixes the service operates in.
type CoverageConfig struct {
	Areas []string `envconfig:"FRESHBOX_COVERAGE_AREAS" default:"SW1,SW2,SW4,N1,N16,E1,E2,SE1"`
}

type ScheduleConfig struct {
	CollectionOffsetDays int `envconfig:"FRESHBOX_SCHEDULE_COLLECTION_OFFSET_DAYS" default:"1"`
	DeliveryOffsetDays   int `envconfig:"FRESHBOX_SCHEDULE_DELIVERY_OFFSET_DAYS" default:"2"`
}

type CheckoutConfig struct {
	SessionTTL        time.Duration `envconfig:"FRESHBOX_CHECKOUT_SESSION_TTL" default:"24h"`
	ConfirmURL        string        `envconfig:"FRESHBOX_CHECKOUT_CONFIRM_URL" required:"true"`
	CompleteURL       string        `envconfig:"FRESHBOX_CHECKOUT_COMPLETE_URL" required:"true"`
	TransitionLockTTL time.Duration `envconfig:"FRESHBOX_CHECKOUT_TRANSITION_LOCK_TTL" default:"15s"`
}

type SquareConfig struct {
	AccessToken string `envconfig:"FRESHBOX_SQUARE_ACCESS_TOKEN"`
	LocationID  string `envconfig:"FRESHBOX_SQUARE_LOCATION_ID"`
	Env         string `envconfig:"FRESHBOX_SQUARE_ENV" default:"sandbox"`
}

// Environment returns the normalized Square environment (sandbox/production).
func (s SquareConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "sandbox"
	}
	return env
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"FRESHBOX_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"FRESHBOX_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"FRESHBOX_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"FRESHBOX_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"FRESHBOX_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"FRESHBOX_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
