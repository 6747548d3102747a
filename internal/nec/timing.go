// Package nec decodes the NEC infrared remote protocol from mark/space timing.
//
// IRP notation: {38.4k,564}<1,-1|1,-3>(16,-8,D:8,S:8,F:8,~F:8,1,-78,(16,-4,1,-173)*)
//
// The package has no hardware dependencies. Edge timestamps are supplied by
// the caller as offsets of a monotonic clock.
package nec

import "time"

// Pulse is the NEC base unit.
const Pulse = 564 * time.Microsecond

// Protocol timing, in multiples of Pulse.
const (
	LeadMark     = 16 * Pulse
	LeadSpace    = 8 * Pulse
	HoldingSpace = 4 * Pulse
	BitMark      = 1 * Pulse
	ZeroSpace    = 1 * Pulse
	OneSpace     = 3 * Pulse

	// Timeout is the gap after which a partial frame is abandoned.
	Timeout = 78 * Pulse
	// HoldingTimeout is the nominal gap between two repeat frames.
	HoldingTimeout = 173 * Pulse

	logicalLead = LeadMark + LeadSpace
	logicalZero = BitMark + ZeroSpace
	logicalOne  = BitMark + OneSpace

	// RepeatTimeout is the longest a held key may go without a repeat frame
	// before it is considered released.
	RepeatTimeout = Timeout + logicalLead + logicalZero*(DataBits/2) + logicalOne*(DataBits/2)
)

// Frame layout.
const (
	AddressBits = 16
	CommandBits = 16
	DataBits    = AddressBits + CommandBits
	dataBytes   = DataBits / 8
)

// Tolerance is the accepted deviation from a nominal duration, in percent.
const Tolerance = 25

// Window is a named nominal duration with a symmetric tolerance band.
type Window struct {
	Name    string
	Nominal time.Duration
}

// Windows for every symbol of the protocol.
var (
	WindowLeadMark     = Window{"lead-mark", LeadMark}
	WindowLeadSpace    = Window{"lead-space", LeadSpace}
	WindowHoldingSpace = Window{"holding-space", HoldingSpace}
	WindowZeroMark     = Window{"zero-mark", BitMark}
	WindowZeroSpace    = Window{"zero-space", ZeroSpace}
	WindowOneMark      = Window{"one-mark", BitMark}
	WindowOneSpace     = Window{"one-space", OneSpace}
)

// Bounds returns the exclusive lower and upper limits of the window.
func (w Window) Bounds() (lo, hi time.Duration) {
	delta := w.Nominal * Tolerance / 100
	return w.Nominal - delta, w.Nominal + delta
}

// Match reports whether d lies strictly inside the tolerance band.
// A duration exactly on a boundary does not match.
func (w Window) Match(d time.Duration) bool {
	lo, hi := w.Bounds()
	return d > lo && d < hi
}

func (w Window) String() string {
	return w.Name
}

// Classify reports whether duration matches the expected window.
func Classify(duration time.Duration, expected Window) bool {
	return expected.Match(duration)
}

// Bit is the result of classifying one mark/space pair.
type Bit uint8

const (
	BitInvalid Bit = iota
	BitZero
	BitOne
)

func (b Bit) String() string {
	switch b {
	case BitZero:
		return "0"
	case BitOne:
		return "1"
	default:
		return "invalid"
	}
}

// ClassifyBit decodes a data bit. The mark is shared by both values; the
// space length selects zero or one.
func ClassifyBit(mark, space time.Duration) Bit {
	if !WindowZeroMark.Match(mark) {
		return BitInvalid
	}
	switch {
	case WindowZeroSpace.Match(space):
		return BitZero
	case WindowOneSpace.Match(space):
		return BitOne
	default:
		return BitInvalid
	}
}
