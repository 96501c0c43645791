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
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	GCS          GCSConfig
	Files        FilesConfig
	PubSub       PubSubConfig
	Stripe       StripeConfig
	Cron         CronConfig
	Quotes       QuotesConfig
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
	Env          string `envconfig:"CABLEFLOW_APP_ENV" required:"true"`
	Port         string `envconfig:"CABLEFLOW_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CABLEFLOW_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"CABLEFLOW_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"CABLEFLOW_LOG_WARN_STACK" default:"false"`
	// Comma separated list of storefront origins allowed by CORS.
	AllowedOrigins string `envconfig:"CABLEFLOW_ALLOWED_ORIGINS" default:"http://localhost:5173"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// Origins splits the configured CORS origins.
func (a AppConfig) Origins() []string {
	var out []string
	for _, origin := range strings.Split(a.AllowedOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

type DBConfig struct {
	DSN        string `envconfig:"CABLEFLOW_DB_DSN"`
	SQLitePath string `envconfig:"CABLEFLOW_SQLITE_PATH" default:"cableflow.db"`

	LegacyHost     string `envconfig:"CABLEFLOW_DB_HOST"`
	LegacyPort     int    `envconfig:"CABLEFLOW_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CABLEFLOW_DB_USER"`
	LegacyPassword string `envconfig:"CABLEFLOW_DB_PASSWORD"`
	LegacyName     string `envconfig:"CABLEFLOW_DB_NAME"`
	LegacySSLMode  string `envconfig:"CABLEFLOW_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CABLEFLOW_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CABLEFLOW_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CABLEFLOW_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CABLEFLOW_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CABLEFLOW_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CABLEFLOW_REDIS_ADDR"`
	Password     string        `envconfig:"CABLEFLOW_REDIS_PASSWORD"`
	DB           int           `envconfig:"CABLEFLOW_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CABLEFLOW_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CABLEFLOW_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CABLEFLOW_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CABLEFLOW_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CABLEFLOW_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig describes how bearer tokens minted by the identity provider are verified.
type JWTConfig struct {
	Secret            string `envconfig:"CABLEFLOW_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CABLEFLOW_JWT_ISSUER" required:"true"`
	Audience          string `envconfig:"CABLEFLOW_JWT_AUDIENCE"`
	ExpirationMinutes int    `envconfig:"CABLEFLOW_JWT_EXPIRATION_MINUTES" default:"60"`
}

// AccessTTL returns the configured access token lifetime.
func (j JWTConfig) AccessTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type FeatureFlagsConfig struct {
	UseSQLite     bool   `envconfig:"CABLEFLOW_USE_SQLITE" default:"false"`
	AutoMigrate   bool   `envconfig:"CABLEFLOW_AUTO_MIGRATE" default:"false"`
	StorageDriver string `envconfig:"CABLEFLOW_STORAGE_DRIVER" default:"gcs"`
	Notifications bool   `envconfig:"CABLEFLOW_FEATURE_NOTIFICATIONS" default:"true"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"CABLEFLOW_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"CABLEFLOW_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"CABLEFLOW_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName string `envconfig:"CABLEFLOW_GCS_BUCKET_NAME"`
	Prefix     string `envconfig:"CABLEFLOW_GCS_PREFIX" default:"cables"`
}

type FilesConfig struct {
	MaxUploadMB int `envconfig:"CABLEFLOW_MAX_UPLOAD_MB" default:"25"`
}

// MaxUploadBytes converts the configured limit to bytes.
func (f FilesConfig) MaxUploadBytes() int64 {
	if f.MaxUploadMB <= 0 {
		return 25 << 20
	}
	return int64(f.MaxUploadMB) << 20
}

type PubSubConfig struct {
	QuoteTopic string `envconfig:"CABLEFLOW_PUBSUB_QUOTE_TOPIC" default:"cableflow-quote-events"`
}

type StripeConfig struct {
	APIKey     string `envconfig:"CABLEFLOW_STRIPE_API_KEY"`
	Env        string `envconfig:"CABLEFLOW_STRIPE_ENV" default:"test"`
	Currency   string `envconfig:"CABLEFLOW_STRIPE_CURRENCY" default:"usd"`
	SuccessURL string `envconfig:"CABLEFLOW_CHECKOUT_SUCCESS_URL" default:"http://localhost:5173/orders?success=true"`
	CancelURL  string `envconfig:"CABLEFLOW_CHECKOUT_CANCEL_URL" default:"http://localhost:5173/orders?success=false"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type CronConfig struct {
	Interval    time.Duration `envconfig:"CABLEFLOW_CRON_INTERVAL" default:"15m"`
	LockKey     string        `envconfig:"CABLEFLOW_CRON_LOCK_KEY" default:"cableflow:cron:lock"`
	LockTTL     time.Duration `envconfig:"CABLEFLOW_CRON_LOCK_TTL" default:"10m"`
	MetricsAddr string        `envconfig:"CABLEFLOW_CRON_METRICS_ADDR" default:":9090"`
}

type QuotesConfig struct {
	DefaultValidity time.Duration `envconfig:"CABLEFLOW_QUOTE_DEFAULT_VALIDITY" default:"720h"`
	// Quote requests allowed per user per window. Zero disables the limit.
	RequestLimit  int           `envconfig:"CABLEFLOW_QUOTE_REQUEST_LIMIT" default:"20"`
	RequestWindow time.Duration `envconfig:"CABLEFLOW_QUOTE_REQUEST_WINDOW" default:"1h"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" || useSQLite {
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
