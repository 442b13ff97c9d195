package config

import "time"

// HTTP server timeouts
const (
	ServerRequestTimeout  = 60 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 10 * time.Second
)

// Database ping timeout at startup
const DBPingTimeout = 5 * time.Second

// Desktop poll loop cadence. The error interval applies after a
// transport failure.
const (
	PollInterval      = 1 * time.Second
	PollErrorInterval = 2 * time.Second
)

// Session expiry sweep cadence (only runs when a session TTL is set)
const ExpiryJobInterval = 30 * time.Second

// Submissions are short text values; anything bigger is rejected outright
const MaxSubmitBodySize = 64 << 10 // 64KB
