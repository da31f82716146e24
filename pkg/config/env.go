package config

const (
	EnvPrefix = "SALONPOS"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	defaultSQLiteDSN = "file:salonpos.db?_foreign_keys=on"
)

const (
	EnvAppEnv   = "SALONPOS_APP_ENV"
	EnvPort     = "SALONPOS_APP_PORT"
	EnvLogLevel = "SALONPOS_LOG_LEVEL"

	EnvDBDSN  = "SALONPOS_DB_DSN"
	EnvDBHost = "SALONPOS_DB_HOST"
	EnvDBUser = "SALONPOS_DB_USER"
	EnvDBName = "SALONPOS_DB_NAME"

	EnvRedisURL = "SALONPOS_REDIS_URL"

	EnvJWTSecret  = "SALONPOS_JWT_SECRET"
	EnvJWTIssuer  = "SALONPOS_JWT_ISSUER"
	EnvJWTExpMins = "SALONPOS_JWT_EXPIRATION_MINUTES"

	EnvUseSQLite     = "SALONPOS_USE_SQLITE"
	EnvAutoPromotion = "SALONPOS_SALES_AUTO_PROMOTION"
	EnvLockTimeout   = "SALONPOS_SALES_LOCK_TIMEOUT"

	EnvPubSubSalesTopic = "SALONPOS_PUBSUB_SALES_TOPIC"
	EnvCORSOrigins      = "SALONPOS_CORS_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
