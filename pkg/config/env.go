package config

const (
	EnvPrefix = "HOURSTAY"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv       = "HOURSTAY_APP_ENV"
	EnvPort         = "HOURSTAY_APP_PORT"
	EnvLogLevel     = "HOURSTAY_LOG_LEVEL"
	EnvDBDSN        = "HOURSTAY_DB_DSN"
	EnvDBDriver     = "HOURSTAY_DB_DRIVER"
	EnvDBHost       = "HOURSTAY_DB_HOST"
	EnvDBUser       = "HOURSTAY_DB_USER"
	EnvDBName       = "HOURSTAY_DB_NAME"
	EnvRedisURL     = "HOURSTAY_REDIS_URL"
	EnvJWTSecret    = "HOURSTAY_JWT_SECRET"
	EnvJWTIssuer    = "HOURSTAY_JWT_ISSUER"
	EnvJWTExpMins   = "HOURSTAY_JWT_EXPIRATION_MINUTES"
	EnvAutoMigrate  = "HOURSTAY_AUTO_MIGRATE"
	EnvNotifyDriver = "HOURSTAY_NOTIFY_DRIVER"
	EnvGCPProjectID = "HOURSTAY_GCP_PROJECT_ID"
	EnvCORSOrigins  = "HOURSTAY_CORS_ALLOWED_ORIGINS"

	EnvPubSubListingApprovedTopic = "HOURSTAY_PUBSUB_LISTING_APPROVED_TOPIC"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	NotifyDriverLog    = "log"
	NotifyDriverPubSub = "pubsub"
)
