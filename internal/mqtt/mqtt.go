// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"fmt"
	"time"

	"github.com/sweeney/ir-remote/internal/logic"
)

// Topic is the MQTT topic for button events.
const Topic = "home/ir-remote/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "home/ir-remote/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a button event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event logic.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active and how
// many messages are held back until it is.
type ConnectionStatus interface {
	IsConnected() bool
	Buffered() int
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp time.Time
	Event     string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason    string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	// Status, if set, is encoded in place of the plain system payload
	// (used for full status snapshots).
	Status   interface{}
	Retained bool // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Remote RemotePayload `json:"remote" cbor:"remote"`
}

// RemotePayload contains the button event details.
type RemotePayload struct {
	Timestamp  string `json:"timestamp" cbor:"timestamp"`
	Event      string `json:"event" cbor:"event"`
	Address    string `json:"address" cbor:"address"`
	Command    string `json:"command" cbor:"command"`
	PressCount uint8  `json:"press_count" cbor:"press_count"`
	HoldCount  uint8  `json:"hold_count" cbor:"hold_count"`
	Timeout    string `json:"timeout" cbor:"timeout"`
}

// FormatPayload encodes a button event.
func FormatPayload(event logic.Event, format Format) ([]byte, error) {
	payload := Payload{
		Remote: RemotePayload{
			Timestamp:  event.Timestamp.UTC().Format(time.RFC3339Nano),
			Event:      string(event.Type),
			Address:    fmt.Sprintf("0x%04X", event.Address),
			Command:    fmt.Sprintf("0x%02X", event.Command),
			PressCount: event.PressCount,
			HoldCount:  event.HoldCount,
			Timeout:    event.Timeout.String(),
		},
	}
	return format.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system" cbor:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp" cbor:"timestamp"`
	Event     string `json:"event" cbor:"event"`
	Reason    string `json:"reason,omitempty" cbor:"reason,omitempty"`
}

// FormatSystemPayload encodes a system event.
// If event.Status is set, it is encoded instead of the plain payload.
func FormatSystemPayload(event SystemEvent, format Format) ([]byte, error) {
	if event.Status != nil {
		return format.Marshal(event.Status)
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return format.Marshal(payload)
}
