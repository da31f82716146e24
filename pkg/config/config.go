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
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Sales        SalesConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Cron         CronConfig
	CORS         CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SALONPOS_APP_ENV" required:"true"`
	Port         string `envconfig:"SALONPOS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SALONPOS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SALONPOS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"SALONPOS_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"SALONPOS_DB_DSN"`
	Driver string `envconfig:"SALONPOS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SALONPOS_DB_HOST"`
	LegacyPort     int    `envconfig:"SALONPOS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SALONPOS_DB_USER"`
	LegacyPassword string `envconfig:"SALONPOS_DB_PASSWORD"`
	LegacyName     string `envconfig:"SALONPOS_DB_NAME"`
	LegacySSLMode  string `envconfig:"SALONPOS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SALONPOS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SALONPOS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SALONPOS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SALONPOS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver targets sqlite.
func (d DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(d.Driver), DriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"SALONPOS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SALONPOS_REDIS_ADDR"`
	Password     string        `envconfig:"SALONPOS_REDIS_PASSWORD"`
	DB           int           `envconfig:"SALONPOS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SALONPOS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SALONPOS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SALONPOS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SALONPOS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SALONPOS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SALONPOS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SALONPOS_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SALONPOS_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SALONPOS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SALONPOS_AUTO_MIGRATE" default:"false"`
}

// SalesConfig tunes the sale transaction engine.
type SalesConfig struct {
	AutoPromotion bool          `envconfig:"SALONPOS_SALES_AUTO_PROMOTION" default:"false"`
	LockTimeout   time.Duration `envconfig:"SALONPOS_SALES_LOCK_TIMEOUT" default:"5s"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"SALONPOS_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	SalesTopic string `envconfig:"SALONPOS_PUBSUB_SALES_TOPIC" default:"salonpos-sales-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"SALONPOS_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"SALONPOS_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"SALONPOS_OUTBOX_MAX_ATTEMPTS" default:"10"`
	RetentionDays  int `envconfig:"SALONPOS_OUTBOX_RETENTION_DAYS" default:"30"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"SALONPOS_CORS_ORIGINS" default:"http://localhost:3000"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"SALONPOS_CRON_INTERVAL" default:"24h"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if useSQLite {
		db.Driver = DriverSQLite
		if db.DSN == "" {
			db.DSN = defaultSQLiteDSN
		}
		return nil
	}
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
