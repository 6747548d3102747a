// Package gpio provides the IR receiver edge feed with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import "time"

// Edge is one transition of the receiver output.
type Edge struct {
	// Mark reports whether the interval ending at this edge was carrier-on.
	Mark bool
	// Time is a monotonic timestamp, comparable with Now().
	Time time.Duration
}

// EdgeHandler receives edges in chronological order from a single goroutine.
// It must return quickly.
type EdgeHandler func(Edge)

// EdgeSource delivers receiver edges to the handler it was created with.
type EdgeSource interface {
	// Level returns the current logical line state: true while a carrier
	// is being received.
	Level() (bool, error)

	// Close stops edge delivery and releases GPIO resources.
	Close() error
}

// Defaults for a receiver module on a Raspberry Pi (BCM numbering).
const (
	DefaultChip = "gpiochip0"
	DefaultPin  = 17
)
