// Package audit emits structured security events for the pairing and
// PIN surfaces.
package audit

import (
	"github.com/rs/zerolog/log"
)

type EventType string

const (
	EventSessionCreate    EventType = "session_create"
	EventSessionReset     EventType = "session_reset"
	EventContentReceived  EventType = "content_received"
	EventContentDelivered EventType = "content_delivered"
	EventStaleSubmission  EventType = "stale_submission"
	EventPinSet           EventType = "pin_set"
	EventPinVerifyFailure EventType = "pin_verify_failure"
	EventProtectionChange EventType = "protection_change"
	EventAppReset         EventType = "app_reset"
)

type Event struct {
	Type      EventType
	SessionID string
	FieldID   string
	RemoteIP  string
	Details   map[string]interface{}
}

// Log writes the event to the global logger. Content values are never
// included; only identifiers and metadata.
func Log(event Event) {
	logger := log.With().
		Str("audit", "security").
		Str("event_type", string(event.Type)).
		Logger()

	if event.SessionID != "" {
		logger = logger.With().Str("session_id", event.SessionID).Logger()
	}
	if event.FieldID != "" {
		logger = logger.With().Str("field_id", event.FieldID).Logger()
	}
	if event.RemoteIP != "" {
		logger = logger.With().Str("remote_ip", event.RemoteIP).Logger()
	}
	for k, v := range event.Details {
		logger = logger.With().Interface(k, v).Logger()
	}

	logger.Info().Msg("audit event")
}
