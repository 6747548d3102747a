package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/ir-remote/internal/logic"
)

func pressEvent() logic.Event {
	return logic.Event{
		Timestamp:  time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Type:       logic.EventPress,
		Address:    0x00FF,
		Command:    0x10,
		PressCount: 1,
		Timeout:    logic.NoTimeout,
	}
}

func TestFormatPayloadExactJSON(t *testing.T) {
	payload, err := FormatPayload(pressEvent(), FormatJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"remote":{"timestamp":"2026-02-02T22:18:12Z","event":"PRESS","address":"0x00FF","command":"0x10","press_count":1,"hold_count":0,"timeout":"NO_TIMEOUT"}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", string(payload), expected)
	}
}

func TestFormatPayloadEventTypes(t *testing.T) {
	tests := []struct {
		event logic.Event
		want  RemotePayload
	}{
		{
			logic.Event{Type: logic.EventHold, Command: 0x45, HoldCount: 3, PressCount: 1},
			RemotePayload{Event: "HOLD", Address: "0x0000", Command: "0x45", PressCount: 1, HoldCount: 3, Timeout: "NO_TIMEOUT"},
		},
		{
			logic.Event{Type: logic.EventRelease, Address: 0xBF40, Command: 0x0A, PressCount: 2, Timeout: logic.Timeout},
			RemotePayload{Event: "RELEASE", Address: "0xBF40", Command: "0x0A", PressCount: 2, Timeout: "TIMEOUT"},
		},
		{
			logic.Event{Type: logic.EventPress, Command: 0xFF, PressCount: 2, Timeout: logic.NextButton},
			RemotePayload{Event: "PRESS", Address: "0x0000", Command: "0xFF", PressCount: 2, Timeout: "NEXT_BUTTON"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.want.Event+"_"+tt.want.Timeout, func(t *testing.T) {
			payload, err := FormatPayload(tt.event, FormatJSON)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var parsed Payload
			if err := json.Unmarshal(payload, &parsed); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			got := parsed.Remote
			got.Timestamp = ""
			if got != tt.want {
				t.Errorf("payload: got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFormatPayloadCBOR(t *testing.T) {
	payload, err := FormatPayload(pressEvent(), FormatCBOR)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if json.Valid(payload) {
		t.Error("CBOR payload should not be JSON")
	}

	var parsed Payload
	if err := FormatCBOR.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid CBOR: %v", err)
	}
	if parsed.Remote.Event != "PRESS" || parsed.Remote.Command != "0x10" || parsed.Remote.PressCount != 1 {
		t.Errorf("decoded CBOR payload: got %+v", parsed.Remote)
	}
}

func TestFormatPayloadTimezoneConversion(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	event := pressEvent()
	event.Timestamp = time.Date(2026, 2, 3, 0, 30, 0, 0, loc)

	payload, err := FormatPayload(event, FormatJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var parsed Payload
	json.Unmarshal(payload, &parsed)
	if parsed.Remote.Timestamp != "2026-02-02T22:30:00Z" {
		t.Errorf("timestamp should be UTC, got %s", parsed.Remote.Timestamp)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"cbor", FormatCBOR, false},
		{"", FormatJSON, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err: got %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("format: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTopics(t *testing.T) {
	if Topic != "home/ir-remote/events" {
		t.Errorf("unexpected topic: %s", Topic)
	}
	if TopicSystem != "home/ir-remote/system" {
		t.Errorf("unexpected system topic: %s", TopicSystem)
	}
}

func TestFormatSystemPayloadExactJSON(t *testing.T) {
	tests := []struct {
		name  string
		event SystemEvent
		want  string
	}{
		{
			"shutdown",
			SystemEvent{Timestamp: time.Date(2026, 2, 3, 10, 30, 45, 0, time.UTC), Event: "SHUTDOWN", Reason: "SIGTERM"},
			`{"system":{"timestamp":"2026-02-03T10:30:45Z","event":"SHUTDOWN","reason":"SIGTERM"}}`,
		},
		{
			"will",
			SystemEvent{Timestamp: time.Date(2026, 2, 10, 8, 30, 0, 0, time.UTC), Event: "SHUTDOWN", Reason: "MQTT_DISCONNECT"},
			`{"system":{"timestamp":"2026-02-10T08:30:00Z","event":"SHUTDOWN","reason":"MQTT_DISCONNECT"}}`,
		},
		{
			"reconnected omits reason",
			SystemEvent{Timestamp: time.Date(2026, 2, 10, 14, 30, 0, 0, time.UTC), Event: "RECONNECTED"},
			`{"system":{"timestamp":"2026-02-10T14:30:00Z","event":"RECONNECTED"}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := FormatSystemPayload(tt.event, FormatJSON)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(payload) != tt.want {
				t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", payload, tt.want)
			}
		})
	}
}

func TestFormatSystemPayloadUsesStatus(t *testing.T) {
	status := map[string]interface{}{"status": map[string]interface{}{"event": "STARTUP"}}
	event := SystemEvent{Timestamp: time.Now(), Event: "STARTUP", Status: status}

	payload, err := FormatSystemPayload(event, FormatJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != `{"status":{"event":"STARTUP"}}` {
		t.Errorf("expected status payload, got %s", payload)
	}
}

func TestFakePublisher(t *testing.T) {
	f := NewFakePublisher()

	if err := f.Publish(pressEvent()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.PublishSystem(SystemEvent{Timestamp: time.Now(), Event: "STARTUP", Retained: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.Events) != 1 || f.Events[0].Command != 0x10 {
		t.Fatalf("events: got %+v", f.Events)
	}
	if len(f.Payloads) != 1 || !json.Valid(f.Payloads[0]) {
		t.Errorf("payloads: got %d", len(f.Payloads))
	}
	if len(f.SystemEvents) != 1 || !f.SystemEvents[0].Retained {
		t.Errorf("system events: got %+v", f.SystemEvents)
	}
	if len(f.SystemPayloads) != 1 {
		t.Errorf("system payloads: got %d", len(f.SystemPayloads))
	}
}

func TestFakePublisherErrors(t *testing.T) {
	f := NewFakePublisher()
	f.PublishError = errors.New("simulated error")
	f.PublishSystemError = errors.New("simulated system error")

	if err := f.Publish(pressEvent()); err == nil {
		t.Error("expected error")
	}
	if err := f.PublishSystem(SystemEvent{Event: "HEARTBEAT"}); err == nil {
		t.Error("expected system error")
	}
	if len(f.Events) != 0 || len(f.SystemEvents) != 0 {
		t.Error("nothing should be recorded on error")
	}
}

func TestFakePublisherCloseAndReset(t *testing.T) {
	f := NewFakePublisher()
	f.Format = FormatCBOR
	f.Publish(pressEvent())
	f.Connected = true
	f.Backlog = 4
	f.Close()
	f.PublishError = errors.New("error")

	if !f.Closed {
		t.Error("should be closed after Close()")
	}

	f.Reset()

	if len(f.Events) != 0 || len(f.Payloads) != 0 {
		t.Error("events should be cleared")
	}
	if f.Closed || f.Connected || f.PublishError != nil || f.Buffered() != 0 {
		t.Error("flags should be reset")
	}
	if f.Format != FormatCBOR {
		t.Errorf("Format should survive Reset, got %v", f.Format)
	}

	if err := f.Publish(pressEvent()); err != nil {
		t.Fatalf("publisher should be reusable after Reset: %v", err)
	}
}
