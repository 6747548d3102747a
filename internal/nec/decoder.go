package nec

import (
	"sync"
	"sync/atomic"
	"time"
)

// Result is the outcome of feeding one edge to the decoder.
type Result uint8

const (
	// Pending means no complete symbol yet. This is the normal case.
	Pending Result = iota
	// FrameReady means a Data or Repeat frame was just completed.
	FrameReady
	// Error means the edge did not fit the protocol. The decoder has
	// already returned to idle and will decode the next well-formed frame.
	Error
)

func (r Result) String() string {
	switch r {
	case FrameReady:
		return "frame-ready"
	case Error:
		return "error"
	default:
		return "pending"
	}
}

// State is the position of the decoder within a frame.
type State uint8

const (
	StateIdle State = iota
	// StateLead: the lead mark was seen, the lead space decides data or repeat.
	StateLead
	// StateData: receiving bit pairs. Bits() tells how many are complete.
	StateData
)

func (s State) String() string {
	switch s {
	case StateLead:
		return "lead"
	case StateData:
		return "data"
	default:
		return "idle"
	}
}

// Stats counts decoder outcomes since construction.
type Stats struct {
	DataFrames   uint64
	RepeatFrames uint64
	Errors       uint64
	Overruns     uint64
}

// Claimed is a frame taken from the decoder, with the repeat frames that
// completed while it was still waiting to be taken.
type Claimed struct {
	Frame Frame
	At    time.Duration // when Frame completed

	// Repeats is the number of repeat frames that arrived behind Frame.
	// RepeatAt is when the latest of them completed.
	Repeats  int
	RepeatAt time.Duration
}

// Decoder is the NEC timing state machine.
//
// OnEdge must be called from a single goroutine (the edge path), in strict
// chronological order. Available, Take, Read, Claim, Timeout, LastEvent, Last and
// Stats may be called concurrently from any goroutine; the only state they
// share with the edge path is the completed-frame handoff, guarded by mu.
type Decoder struct {
	// Edge path only.
	state    State
	bits     int
	buf      [dataBytes]byte
	mark     time.Duration
	haveMark bool
	lastEdge time.Duration
	started  bool
	notify   func()

	mu        sync.Mutex
	pending   Claimed
	ready     bool
	last      Frame
	lastEvent time.Duration

	dataFrames   atomic.Uint64
	repeatFrames atomic.Uint64
	errors       atomic.Uint64
	overruns     atomic.Uint64
}

// NewDecoder creates an idle decoder. notify, if non-nil, is called on the
// edge path every time a frame becomes available; it must not block.
func NewDecoder(notify func()) *Decoder {
	return &Decoder{notify: notify}
}

// State returns the current decode state. Edge path only.
func (d *Decoder) State() State {
	return d.state
}

// Bits returns the number of data bits received in the current frame.
// Edge path only.
func (d *Decoder) Bits() int {
	return d.bits
}

// OnEdge consumes one signal transition. mark reports whether the interval
// ending at this edge was carrier-on; at is the edge timestamp.
func (d *Decoder) OnEdge(mark bool, at time.Duration) (Frame, Result) {
	if !d.started {
		d.started = true
		d.lastEdge = at
		return Frame{}, Pending
	}
	duration := at - d.lastEdge
	d.lastEdge = at

	// A long gap ends whatever was in progress; this edge may start a lead.
	if duration > Timeout {
		d.reset()
	}

	switch d.state {
	case StateIdle:
		// Noise, trailing stop marks and inter-frame gaps land here.
		if mark && WindowLeadMark.Match(duration) {
			d.state = StateLead
		}
		return Frame{}, Pending

	case StateLead:
		if mark {
			return d.fail()
		}
		switch {
		case WindowLeadSpace.Match(duration):
			d.state = StateData
			d.bits = 0
			d.buf = [dataBytes]byte{}
			return Frame{}, Pending
		case WindowHoldingSpace.Match(duration):
			d.reset()
			f := Frame{Kind: KindRepeat}
			d.complete(f, at)
			return f, FrameReady
		default:
			return d.fail()
		}

	case StateData:
		if mark {
			if WindowLeadMark.Match(duration) {
				// A new frame cut into this one: count the loss, decode the new one.
				d.reset()
				d.state = StateLead
				d.errors.Add(1)
				return Frame{}, Error
			}
			if d.haveMark {
				return d.fail()
			}
			d.mark, d.haveMark = duration, true
			return Frame{}, Pending
		}
		if !d.haveMark {
			return d.fail()
		}
		bit := ClassifyBit(d.mark, duration)
		d.mark, d.haveMark = 0, false
		if bit == BitInvalid {
			return d.fail()
		}
		// Least significant bit arrives first: shift right, insert at the top.
		i := d.bits / 8
		d.buf[i] >>= 1
		if bit == BitOne {
			d.buf[i] |= 0x80
		}
		d.bits++
		if d.bits < DataBits {
			return Frame{}, Pending
		}

		f, ok := frameFromBytes(d.buf)
		d.reset()
		if !ok {
			d.errors.Add(1)
			return Frame{}, Error
		}
		d.complete(f, at)
		return f, FrameReady
	}
	return d.fail()
}

func (d *Decoder) reset() {
	d.state = StateIdle
	d.bits = 0
	d.mark, d.haveMark = 0, false
	d.buf = [dataBytes]byte{}
}

func (d *Decoder) fail() (Frame, Result) {
	d.reset()
	d.errors.Add(1)
	return Frame{}, Error
}

// complete publishes a finished frame to the reader side.
func (d *Decoder) complete(f Frame, at time.Duration) {
	if f.Kind == KindRepeat {
		d.repeatFrames.Add(1)
	} else {
		d.dataFrames.Add(1)
	}

	d.mu.Lock()
	d.last = f
	d.lastEvent = at
	switch {
	case !d.ready:
		d.pending, d.ready = Claimed{Frame: f, At: at}, true
	case f.Kind == KindRepeat:
		// The waiting frame stays. The repeat rides along with it so the
		// reader still sees the key being held.
		d.pending.Repeats++
		d.pending.RepeatAt = at
		d.overruns.Add(1)
	default:
		d.pending = Claimed{Frame: f, At: at}
		d.overruns.Add(1)
	}
	d.mu.Unlock()

	if d.notify != nil {
		d.notify()
	}
}

// Available reports whether a decoded frame is waiting to be read.
func (d *Decoder) Available() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ready
}

// Take atomically removes the pending frame together with the time it
// completed and the repeats absorbed behind it. ok is false when nothing is
// pending.
func (d *Decoder) Take() (c Claimed, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.ready {
		return Claimed{}, false
	}
	c = d.pending
	d.pending, d.ready = Claimed{}, false
	return c, true
}

// Claim is Take without the absorbed repeats.
func (d *Decoder) Claim() (f Frame, at time.Duration, ok bool) {
	c, ok := d.Take()
	return c.Frame, c.At, ok
}

// Read consumes the pending frame. Without one it returns the no-protocol
// frame.
func (d *Decoder) Read() Frame {
	f, _, _ := d.Claim()
	return f
}

// Last returns the most recently decoded frame and when it completed,
// whether or not it has been claimed.
func (d *Decoder) Last() (Frame, time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last, d.lastEvent
}

// LastEvent returns the timestamp of the last completed frame.
func (d *Decoder) LastEvent() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastEvent
}

// Timeout returns the time elapsed between the last completed frame and now.
func (d *Decoder) Timeout(now time.Duration) time.Duration {
	return now - d.LastEvent()
}

// Stats returns a snapshot of the decoder counters.
func (d *Decoder) Stats() Stats {
	return Stats{
		DataFrames:   d.dataFrames.Load(),
		RepeatFrames: d.repeatFrames.Load(),
		Errors:       d.errors.Load(),
		Overruns:     d.overruns.Load(),
	}
}
