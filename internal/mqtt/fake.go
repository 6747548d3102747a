package mqtt

import (
	"github.com/sweeney/ir-remote/internal/logic"
)

// FakePublisher stands in for the broker in daemon and integration tests.
// Every button and lifecycle message it accepts is encoded exactly as the
// real publisher would encode it, so tests can assert on the wire bytes.
type FakePublisher struct {
	// Format selects the payload encoding. Zero means JSON.
	Format Format

	// Events and Payloads hold each accepted PRESS, HOLD or RELEASE and
	// its encoded form, index for index.
	Events   []logic.Event
	Payloads [][]byte

	// SystemEvents and SystemPayloads hold STARTUP, HEARTBEAT and
	// SHUTDOWN messages the same way.
	SystemEvents   []SystemEvent
	SystemPayloads [][]byte

	// PublishError and PublishSystemError simulate a broker that rejects
	// button or lifecycle messages. Nothing is recorded while set.
	PublishError       error
	PublishSystemError error

	// Connected is what IsConnected reports; Backlog is what Buffered
	// reports, standing in for messages held back during an outage.
	Connected bool
	Backlog   int

	Closed bool
}

// NewFakePublisher returns a disconnected fake with nothing recorded.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// Publish encodes a button event and records it.
func (f *FakePublisher) Publish(event logic.Event) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	payload, err := FormatPayload(event, f.Format)
	if err != nil {
		return err
	}
	f.Events = append(f.Events, event)
	f.Payloads = append(f.Payloads, payload)
	return nil
}

// PublishSystem encodes a lifecycle event, with its status snapshot when one
// is attached, and records it.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}
	payload, err := FormatSystemPayload(event, f.Format)
	if err != nil {
		return err
	}
	f.SystemEvents = append(f.SystemEvents, event)
	f.SystemPayloads = append(f.SystemPayloads, payload)
	return nil
}

func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

func (f *FakePublisher) IsConnected() bool { return f.Connected }

func (f *FakePublisher) Buffered() int { return f.Backlog }

// Reset forgets everything recorded and clears injected failures, so one
// fake can serve several sub-tests.
func (f *FakePublisher) Reset() {
	*f = FakePublisher{Format: f.Format}
}
