package config

// EnvPrefix namespaces every variable read by Load.
const EnvPrefix = "TRIOPOS"

const (
	EnvAppEnv      = "TRIOPOS_APP_ENV"
	EnvPort        = "TRIOPOS_APP_PORT"
	EnvBackendURL  = "TRIOPOS_BACKEND_URL"
	EnvBackendUser = "TRIOPOS_BACKEND_USERNAME"
	EnvBackendPass = "TRIOPOS_BACKEND_PASSWORD"
	EnvStoreDriver = "TRIOPOS_STORE_DRIVER"
	EnvSQLitePath  = "TRIOPOS_SQLITE_PATH"
	EnvRedisURL    = "TRIOPOS_REDIS_URL"
	EnvRedisAddr   = "TRIOPOS_REDIS_ADDR"
	EnvBarcodeIdle = "TRIOPOS_BARCODE_IDLE_TIMEOUT"
	EnvMaxImage    = "TRIOPOS_MAX_IMAGE_BYTES"
	EnvTaxRate     = "TRIOPOS_TAX_RATE"
)

const AppEnvDev = "dev"

const (
	LogFormatJSON    = "json"
	LogFormatConsole = "console"
)

const (
	StoreDriverSQLite = "sqlite"
	StoreDriverRedis  = "redis"
	StoreDriverMemory = "memory"
)
