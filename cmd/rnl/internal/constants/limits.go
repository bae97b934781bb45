package constants

// Ingest limits.
const (
	// DefaultIngestMaxBatch is the maximum number of entries per ingest request.
	// Used in: config/config.go
	DefaultIngestMaxBatch = 500

	// DefaultIngestMaxPayloadBytes caps the ingest request body (1 MB).
	DefaultIngestMaxPayloadBytes = 1 << 20

	// DefaultListLimit and MaxListLimit bound /logs:list.
	// Used in: store/entries.go, server/handlers.go
	DefaultListLimit = 50
	MaxListLimit     = 1000

	// DefaultClientBatchSize is how many entries a client buffers before shipping.
	// Used in: client/client.go
	DefaultClientBatchSize = 50
)
