package logging

import "time"

// Entry is a log record as shipped between processes and persisted by the
// ingest server.
type Entry struct {
	ID        string         `json:"id,omitempty"`
	Timestamp time.Time      `json:"ts"`
	Level     Level          `json:"level"`
	Message   string         `json:"message"`
	Source    string         `json:"source,omitempty"`
	Hostname  string         `json:"hostname,omitempty"`
	Service   string         `json:"service,omitempty"`
	Env       string         `json:"env,omitempty"`
	Version   string         `json:"version,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}
