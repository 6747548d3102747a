package nec

import "time"

// Interval is one mark or space of a timing sequence.
type Interval struct {
	Mark     bool
	Duration time.Duration
}

// Edge is a signal transition: Mark tells whether the interval ending at
// this edge was carrier-on.
type Edge struct {
	Mark bool
	At   time.Duration
}

// DataIntervals returns the nominal timing of a full frame for the given
// address and command: lead, 32 bits, stop mark.
func DataIntervals(address uint16, command uint8) []Interval {
	raw := [dataBytes]byte{byte(address), byte(address >> 8), command, ^command}
	return rawIntervals(raw)
}

// rawIntervals encodes four bytes as-is, without generating the complement.
func rawIntervals(raw [dataBytes]byte) []Interval {
	out := make([]Interval, 0, 2+DataBits*2+1)
	out = append(out, Interval{true, LeadMark}, Interval{false, LeadSpace})
	for _, b := range raw {
		for i := 0; i < 8; i++ {
			space := ZeroSpace
			if b&(1<<i) != 0 {
				space = OneSpace
			}
			out = append(out, Interval{true, BitMark}, Interval{false, space})
		}
	}
	return append(out, Interval{true, BitMark})
}

// RepeatIntervals returns the nominal timing of a repeat frame.
func RepeatIntervals() []Interval {
	return []Interval{{true, LeadMark}, {false, HoldingSpace}, {true, BitMark}}
}

// HeldIntervals returns a key held long enough for the remote to send
// repeats repeat frames after the data frame, with the nominal gaps between
// frames.
func HeldIntervals(address uint16, command uint8, repeats int) []Interval {
	out := append(DataIntervals(address, command), Interval{false, Timeout})
	for i := 0; i < repeats; i++ {
		if i > 0 {
			out = append(out, Interval{false, HoldingTimeout})
		}
		out = append(out, RepeatIntervals()...)
	}
	return out
}

// Edges lays intervals out on a timeline. The first edge, at start, opens
// the first interval and closes an idle space before it.
func Edges(start time.Duration, intervals []Interval) []Edge {
	out := make([]Edge, 0, len(intervals)+1)
	out = append(out, Edge{Mark: false, At: start})
	t := start
	for _, iv := range intervals {
		t += iv.Duration
		out = append(out, Edge{Mark: iv.Mark, At: t})
	}
	return out
}

// Feed sends every edge to the decoder and returns the frames it completed.
func Feed(d *Decoder, edges []Edge) []Frame {
	var frames []Frame
	for _, e := range edges {
		if f, res := d.OnEdge(e.Mark, e.At); res == FrameReady {
			frames = append(frames, f)
		}
	}
	return frames
}
