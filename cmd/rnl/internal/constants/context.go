package constants

// Context keys for storing and retrieving values from request contexts.
const (
	// ContextKeyRequestID is the context key for storing request IDs.
	// Used in: logging/request.go, logging/logger.go
	ContextKeyRequestID = "request_id"

	// ContextKeyClaims is the context key for validated ingest token claims.
	// Used in: auth/middleware.go
	ContextKeyClaims = "ingest_claims"
)

// Context map keys that the logger lifts out of the payload into the prefix
// (console) or top-level fields (json).
// Used in: logging/logger.go
const (
	ContextKeyService = "service"
	ContextKeyApp     = "app"
	ContextKeyName    = "name"
	ContextKeyEnv     = "env"
	ContextKeyVersion = "version"
)

// Log sources.
const (
	SourceServer = "server"
	SourceClient = "client"
)
