package model

import "time"

// Universe states reported by the health check.
const (
	UniverseLoaded = "loaded"
	UniverseEmpty  = "empty"
)

// HealthStatus reports database connectivity and whether a dividend universe is stored.
type HealthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Universe string `json:"universe,omitempty"`
	Error    string `json:"error,omitempty"`
}

// VersionInfo describes the running build: its version, the schema it runs on, the default
// benchmark and which optional features are enabled.
type VersionInfo struct {
	AppVersion        string          `json:"app_version"`
	SchemaVersion     int64           `json:"schema_version"`
	MigrationsPending bool            `json:"migrations_pending"`
	Benchmark         string          `json:"benchmark"`
	Features          map[string]bool `json:"features"`
	UniverseUpdatedAt *time.Time      `json:"universe_updated_at"`
}
