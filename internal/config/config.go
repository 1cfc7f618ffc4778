// Package config provides configuration helpers for deskwatch commands.
package config

import (
	"os"
	"strconv"
	"time"
)

// Default service configuration.
const (
	DefaultListenAddr = ":5000"
	DefaultBackendURL = "http://127.0.0.1:5000"
	DefaultDatabase   = "employee_activity.db"
)

// ListenAddr returns the service listen address from LISTEN_ADDR env var.
// Falls back to the provided default if not set.
func ListenAddr(def string) string {
	if addr := os.Getenv("LISTEN_ADDR"); addr != "" {
		return addr
	}
	return def
}

// BackendURL returns the ingestion service base URL from BACKEND_URL env var.
func BackendURL(def string) string {
	if url := os.Getenv("BACKEND_URL"); url != "" {
		return url
	}
	return def
}

// DatabaseDSN returns the sqlite database path from DATABASE_DSN env var.
func DatabaseDSN(def string) string {
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		return dsn
	}
	return def
}

// LogLevel returns the log level from LOG_LEVEL env var or "info".
func LogLevel() string {
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		return lvl
	}
	return "info"
}

// EmployeeID returns the monitored employee id from EMPLOYEE_ID env var.
func EmployeeID(def int64) int64 {
	if v := os.Getenv("EMPLOYEE_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil && id > 0 {
			return id
		}
	}
	return def
}

// Duration returns a duration from the named env var, or the default
// if unset or unparseable.
func Duration(name string, def time.Duration) time.Duration {
	if v := os.Getenv(name); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
