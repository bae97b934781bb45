package constants

// Environment variable names read at bootstrap.
// The first name of each group wins; later names are fallbacks.
const (
	// EnvDefaultMask toggles the built-in sensitive field list ("false" disables it).
	// Used in: mask/state.go, config/config.go
	EnvDefaultMask = "RNL_DEFAULT_MASK"

	// EnvDefaultMaskPublic is the fallback name kept for front-end builds.
	EnvDefaultMaskPublic = "NEXT_PUBLIC_DEFAULT_MASK"

	// EnvMaskFields is a comma-separated list of additional sensitive fields.
	// Used in: mask/state.go, config/config.go
	EnvMaskFields = "RNL_MASK_FIELDS"

	// EnvMaskFieldsPublic is the fallback name kept for front-end builds.
	EnvMaskFieldsPublic = "NEXT_PUBLIC_MASK_FIELDS"

	// EnvLogLevel and EnvLogLevelFallback select the minimum log level.
	// Used in: config/config.go
	EnvLogLevel         = "RNL_LOG_LEVEL"
	EnvLogLevelFallback = "LOG_LEVEL"

	// EnvAppEnv maps the deployment environment to a log level when no
	// explicit level is set: production=warn, test=error, anything else=debug.
	EnvAppEnv = "APP_ENV"

	// EnvNodeEnv is read when EnvAppEnv is unset.
	EnvNodeEnv = "NODE_ENV"

	// EnvLogJSON and EnvLogJSONFallback force JSON output when "1" or "true".
	EnvLogJSON         = "RNL_SERVER_LOG_JSON"
	EnvLogJSONFallback = "LOG_JSON"

	// EnvIngestSecret is the HMAC secret for ingest tokens.
	EnvIngestSecret = "RNL_INGEST_SECRET"

	// EnvStoreConnection is the entry store connection string.
	EnvStoreConnection = "RNL_STORE_CONNECTION"

	// EnvIngestEndpoint and EnvIngestToken configure client shipping.
	// Used in: config/config.go
	EnvIngestEndpoint = "RNL_INGEST_ENDPOINT"
	EnvIngestToken    = "RNL_INGEST_TOKEN"
)
