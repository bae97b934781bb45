// Package constants provides centralized constant definitions for rnl.
// Values reused across packages live here so the logger, the ingest server
// and the client agree on names.
package constants

// HTTP header names used throughout the application.
const (
	// HeaderRequestID is the HTTP header used for request tracking and correlation.
	// Used in: logging/request.go
	HeaderRequestID = "X-Request-ID"

	// HeaderAuthorization carries the ingest bearer token.
	// Used in: auth/middleware.go, client/transport.go
	HeaderAuthorization = "Authorization"

	// HeaderContentType is the standard HTTP Content-Type header.
	HeaderContentType = "Content-Type"
)

// MIME types used in HTTP requests and responses.
const (
	MIMEApplicationJSON = "application/json"
)

// AuthSchemeBearer is the authentication scheme for ingest tokens.
// Format: "Bearer <token>" in Authorization header
const AuthSchemeBearer = "Bearer"
