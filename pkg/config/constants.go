package config

// EnvPrefix is the envconfig prefix shared by every setting.
const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv       = "STOREFRONT_APP_ENV"
	EnvPort         = "STOREFRONT_APP_PORT"
	EnvLogLevel     = "STOREFRONT_LOG_LEVEL"
	EnvLogWarnStack = "STOREFRONT_LOG_WARN_STACK"

	EnvDBDSN      = "STOREFRONT_DB_DSN"
	EnvDBDriver   = "STOREFRONT_DB_DRIVER"
	EnvDBHost     = "STOREFRONT_DB_HOST"
	EnvDBPort     = "STOREFRONT_DB_PORT"
	EnvDBUser     = "STOREFRONT_DB_USER"
	EnvDBPassword = "STOREFRONT_DB_PASSWORD"
	EnvDBName     = "STOREFRONT_DB_NAME"
	EnvDBSSLMode  = "STOREFRONT_DB_SSLMODE"

	EnvRedisURL  = "STOREFRONT_REDIS_URL"
	EnvRedisAddr = "STOREFRONT_REDIS_ADDR"

	EnvJWTSecret  = "STOREFRONT_JWT_SECRET"
	EnvJWTIssuer  = "STOREFRONT_JWT_ISSUER"
	EnvJWTExpMins = "STOREFRONT_JWT_EXPIRATION_MINUTES"

	EnvAutoMigrate = "STOREFRONT_AUTO_MIGRATE"

	EnvStripeAPIKey = "STOREFRONT_STRIPE_API_KEY"
	EnvStripeEnv    = "STOREFRONT_STRIPE_ENV"

	EnvCheckoutCurrency = "STOREFRONT_CHECKOUT_CURRENCY"

	EnvCORSAllowedOrigins = "STOREFRONT_CORS_ALLOWED_ORIGINS"

	EnvBootstrapAdminEmail    = "STOREFRONT_BOOTSTRAP_ADMIN_EMAIL"
	EnvBootstrapAdminPassword = "STOREFRONT_BOOTSTRAP_ADMIN_PASSWORD"
	EnvBootstrapAdminName     = "STOREFRONT_BOOTSTRAP_ADMIN_NAME"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

// legacyDBEnvVars must all be set when no DSN is provided for postgres.
var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
