package config

// EnvPrefix is passed to envconfig; every field carries an explicit key so the
// prefix only matters for unkeyed fields.
const EnvPrefix = "KAUPA"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "KAUPA_APP_ENV"
	EnvPort     = "KAUPA_APP_PORT"
	EnvLogLevel = "KAUPA_LOG_LEVEL"

	EnvCORSAllowedOrigins = "KAUPA_CORS_ALLOWED_ORIGINS"
	EnvRateLimitPerMinute = "KAUPA_RATE_LIMIT_PER_MINUTE"

	EnvDBDSN  = "KAUPA_DB_DSN"
	EnvDBHost = "KAUPA_DB_HOST"
	EnvDBUser = "KAUPA_DB_USER"
	EnvDBName = "KAUPA_DB_NAME"

	EnvRedisURL = "KAUPA_REDIS_URL"

	EnvDeliveryRuleCacheTTL = "KAUPA_DELIVERY_RULE_CACHE_TTL"
	EnvDeliveryTimeZone     = "KAUPA_DELIVERY_TIMEZONE"

	EnvOptimizerTopUpMaxShare        = "KAUPA_OPTIMIZER_TOP_UP_MAX_SHARE"
	EnvOptimizerFeeShareThreshold    = "KAUPA_OPTIMIZER_FEE_SHARE_THRESHOLD"
	EnvOptimizerInefficientThreshold = "KAUPA_OPTIMIZER_INEFFICIENT_THRESHOLD_SHARE"

	EnvUseSQLite = "KAUPA_USE_SQLITE"
)

var splitDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
