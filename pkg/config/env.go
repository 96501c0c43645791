package config

const (
	EnvPrefix = "CABLEFLOW"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv        = "CABLEFLOW_APP_ENV"
	EnvPort          = "CABLEFLOW_APP_PORT"
	EnvDBDSN         = "CABLEFLOW_DB_DSN"
	EnvDBHost        = "CABLEFLOW_DB_HOST"
	EnvDBUser        = "CABLEFLOW_DB_USER"
	EnvDBName        = "CABLEFLOW_DB_NAME"
	EnvRedisURL      = "CABLEFLOW_REDIS_URL"
	EnvJWTSecret     = "CABLEFLOW_JWT_SECRET"
	EnvJWTIssuer     = "CABLEFLOW_JWT_ISSUER"
	EnvUseSQLite     = "CABLEFLOW_USE_SQLITE"
	EnvGCSBucket     = "CABLEFLOW_GCS_BUCKET_NAME"
	EnvStripeAPIKey  = "CABLEFLOW_STRIPE_API_KEY"
	EnvCronInterval  = "CABLEFLOW_CRON_INTERVAL"
	EnvQuoteValidity = "CABLEFLOW_QUOTE_DEFAULT_VALIDITY"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
