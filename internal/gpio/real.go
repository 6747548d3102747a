//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealEdgeSource watches a receiver line through the Linux GPIO character
// device. Event timestamps come from the kernel monotonic clock.
type RealEdgeSource struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewRealEdgeSource requests pin on the named chip and starts delivering
// both edges to handler. Most receiver modules pull their output low while a
// carrier is present; set activeHigh for modules that do the opposite.
func NewRealEdgeSource(chipName string, pin int, activeHigh bool, handler EdgeHandler) (*RealEdgeSource, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer("ir-remote"))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}

	opts := []gpiocdev.LineReqOption{
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(func(evt gpiocdev.LineEvent) {
			// Logical falling edge: the carrier just stopped, so the
			// interval that ended was a mark.
			handler(Edge{
				Mark: evt.Type == gpiocdev.LineEventFallingEdge,
				Time: evt.Timestamp,
			})
		}),
	}
	if !activeHigh {
		opts = append(opts, gpiocdev.AsActiveLow)
	}

	line, err := chip.RequestLine(pin, opts...)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request pin %d: %w", pin, err)
	}

	return &RealEdgeSource{chip: chip, line: line}, nil
}

// Level returns the logical line state.
func (r *RealEdgeSource) Level() (bool, error) {
	v, err := r.line.Value()
	if err != nil {
		return false, fmt.Errorf("read pin: %w", err)
	}
	return v == 1, nil
}

// Close stops edge delivery and releases GPIO resources.
func (r *RealEdgeSource) Close() error {
	var errs []error

	if r.line != nil {
		if err := r.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close line: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
