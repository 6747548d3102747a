// Package logic turns decoded NEC frames into button semantics: press,
// hold (auto-repeat) and release.
// This package has NO hardware or network dependencies. Time is always
// injected: button timing uses the same monotonic offsets as the decoder,
// heartbeats use wall-clock time.Time values.
package logic

import (
	"time"

	"github.com/sweeney/ir-remote/internal/nec"
)

// TimeoutType classifies how the current key session started or ended.
type TimeoutType uint8

const (
	// NoTimeout: key down, the session is live.
	NoTimeout TimeoutType = iota
	// Timeout: no frame within the release window, the key was released.
	Timeout
	// NextButton: the same key was pressed again before the release was consumed.
	NextButton
	// NewButton: a different key was pressed, replacing the previous one.
	NewButton
)

func (t TimeoutType) String() string {
	switch t {
	case Timeout:
		return "TIMEOUT"
	case NextButton:
		return "NEXT_BUTTON"
	case NewButton:
		return "NEW_BUTTON"
	default:
		return "NO_TIMEOUT"
	}
}

// EventType is a button transition.
type EventType string

const (
	EventPress   EventType = "PRESS"
	EventHold    EventType = "HOLD"
	EventRelease EventType = "RELEASE"
)

// Event is a button transition to be published.
type Event struct {
	// Timestamp is wall-clock time. The tracker leaves it zero; the caller
	// stamps it when the event leaves the process.
	Timestamp  time.Time
	At         time.Duration // monotonic time of the frame or timeout check
	Type       EventType
	Address    uint16
	Command    uint8
	PressCount uint8
	HoldCount  uint8
	Timeout    TimeoutType
}

// Session is the state of the current (or last) key.
type Session struct {
	Command    uint8
	Address    uint16
	PressCount uint8
	HoldCount  uint8
	Timeout    TimeoutType
}

// Config tunes a Tracker.
type Config struct {
	// FilterAddress, when set, drops Data frames from any other address.
	FilterAddress *uint16
	// WatchCommand, when set, limits OnEvent to events for this command.
	WatchCommand *uint8
	// HoldDebounce is the number of initial repeats that produce no HOLD event.
	HoldDebounce uint8
	// ReleaseTimeout is how long a key may go without a frame before it is
	// released. Zero means nec.RepeatTimeout.
	ReleaseTimeout time.Duration
	// OnEvent, if set, is called for each event from the polling goroutine.
	OnEvent func(Event)
}

// FrameSource hands decoded frames to the tracker. *nec.Decoder implements it.
type FrameSource interface {
	Take() (nec.Claimed, bool)
}

// EventCounts tracks the number of each event type since startup.
type EventCounts struct {
	Presses  int
	Holds    int
	Releases int
	Ignored  int // frames dropped by the address filter or with no key down
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    EventCounts
}
