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
	HTTP         HTTPConfig
	DB           DBConfig
	Redis        RedisConfig
	Delivery     DeliveryConfig
	Optimizer    OptimizerConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.Optimizer.validate(); err != nil {
		return nil, err
	}
	if _, err := cfg.Delivery.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"KAUPA_APP_ENV" required:"true"`
	Port         string `envconfig:"KAUPA_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"KAUPA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"KAUPA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type HTTPConfig struct {
	CORSAllowedOrigins []string      `envconfig:"KAUPA_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	RateLimitPerMinute int           `envconfig:"KAUPA_RATE_LIMIT_PER_MINUTE" default:"120"`
	ReadTimeout        time.Duration `envconfig:"KAUPA_HTTP_READ_TIMEOUT" default:"10s"`
	WriteTimeout       time.Duration `envconfig:"KAUPA_HTTP_WRITE_TIMEOUT" default:"15s"`
	ShutdownTimeout    time.Duration `envconfig:"KAUPA_HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
}

type DBConfig struct {
	DSN    string `envconfig:"KAUPA_DB_DSN"`
	Driver string `envconfig:"KAUPA_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"KAUPA_DB_HOST"`
	Port     int    `envconfig:"KAUPA_DB_PORT" default:"5432"`
	User     string `envconfig:"KAUPA_DB_USER"`
	Password string `envconfig:"KAUPA_DB_PASSWORD"`
	Name     string `envconfig:"KAUPA_DB_NAME"`
	SSLMode  string `envconfig:"KAUPA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"KAUPA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"KAUPA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"KAUPA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"KAUPA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"KAUPA_DB_SLOW_QUERY" default:"200ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"KAUPA_REDIS_URL"`
	Address      string        `envconfig:"KAUPA_REDIS_ADDR"`
	Password     string        `envconfig:"KAUPA_REDIS_PASSWORD"`
	DB           int           `envconfig:"KAUPA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"KAUPA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"KAUPA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"KAUPA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"KAUPA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"KAUPA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured. Without one the
// service falls back to the in-process cache.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type DeliveryConfig struct {
	RuleCacheTTL    time.Duration `envconfig:"KAUPA_DELIVERY_RULE_CACHE_TTL" default:"5m"`
	CatalogCacheTTL time.Duration `envconfig:"KAUPA_CATALOG_CACHE_TTL" default:"5m"`
	TimeZone        string        `envconfig:"KAUPA_DELIVERY_TIMEZONE" default:"Atlantic/Reykjavik"`
}

// Location resolves the timezone used for cutoff and delivery-day evaluation.
func (d DeliveryConfig) Location() (*time.Location, error) {
	if strings.TrimSpace(d.TimeZone) == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(d.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("loading delivery timezone %q: %w", d.TimeZone, err)
	}
	return loc, nil
}

type OptimizerConfig struct {
	TopUpMaxShare             float64 `envconfig:"KAUPA_OPTIMIZER_TOP_UP_MAX_SHARE" default:"0.20"`
	FeeShareThreshold         float64 `envconfig:"KAUPA_OPTIMIZER_FEE_SHARE_THRESHOLD" default:"0.15"`
	InefficientThresholdShare float64 `envconfig:"KAUPA_OPTIMIZER_INEFFICIENT_THRESHOLD_SHARE" default:"0.50"`
}

func (o OptimizerConfig) validate() error {
	for name, value := range map[string]float64{
		EnvOptimizerTopUpMaxShare:        o.TopUpMaxShare,
		EnvOptimizerFeeShareThreshold:    o.FeeShareThreshold,
		EnvOptimizerInefficientThreshold: o.InefficientThresholdShare,
	} {
		if value < 0 || value > 1 {
			return fmt.Errorf("%s must be within [0, 1], got %v", name, value)
		}
	}
	return nil
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"KAUPA_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"KAUPA_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" {
		return nil
	}
	if useSQLite {
		db.Driver = "sqlite"
		db.DSN = "file:kaupa.db?cache=shared"
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range splitDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
