package constants

import "time"

// Timeout and duration constants used throughout the application.
const (
	// ShutdownTimeout is the maximum time allowed for graceful shutdown.
	// Used in: server/server.go
	ShutdownTimeout = 30 * time.Second

	// HTTPReadTimeout is the maximum duration for reading the entire request.
	// Used in: server/server.go
	HTTPReadTimeout = 15 * time.Second

	// HTTPWriteTimeout is the maximum duration before timing out writes of the response.
	// Used in: server/server.go
	HTTPWriteTimeout = 15 * time.Second

	// HTTPIdleTimeout is the keep-alive idle timeout.
	// Used in: server/server.go
	HTTPIdleTimeout = 60 * time.Second

	// HealthCheckTimeout bounds the store ping behind /health.
	// Used in: server/handlers.go
	HealthCheckTimeout = 5 * time.Second

	// JWTClockSkew is the tolerance for token time validation.
	// Used in: auth/token.go
	JWTClockSkew = 30 * time.Second

	// ClientFlushInterval is how often a shipping client flushes its buffer.
	// Used in: client/client.go
	ClientFlushInterval = 5 * time.Second

	// ClientHTTPTimeout bounds a single ingest request from the client.
	// Used in: client/transport.go
	ClientHTTPTimeout = 10 * time.Second
)
