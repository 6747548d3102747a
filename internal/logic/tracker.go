package logic

import (
	"math"
	"time"

	"github.com/sweeney/ir-remote/internal/nec"
)

// Tracker derives press, hold and release semantics from a frame stream.
// It is owned by a single polling goroutine and is not safe for concurrent
// use; only its FrameSource is shared with the edge path.
type Tracker struct {
	cfg     Config
	source  FrameSource
	timeout time.Duration

	session   Session
	started   bool // a key went down since construction or Reset
	filtered  bool // the last Data frame came from a foreign address
	released  bool // release not yet consumed by ReleaseButton
	timedOut  bool // timeout not yet consumed by PressTimeout
	lastEvent time.Duration

	startTime     time.Time
	eventCounts   EventCounts
	lastHeartbeat time.Time
}

// NewTracker creates a tracker reading frames from source.
// The startTime is used for calculating uptime in heartbeat events.
func NewTracker(source FrameSource, cfg Config, startTime time.Time) *Tracker {
	timeout := cfg.ReleaseTimeout
	if timeout <= 0 {
		timeout = nec.RepeatTimeout
	}
	return &Tracker{
		cfg:           cfg,
		source:        source,
		timeout:       timeout,
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// Read claims the next pending frame and applies it. When nothing is pending
// it checks for a release timeout instead. now is the current monotonic time.
func (t *Tracker) Read(now time.Duration) []Event {
	if t.source != nil {
		if c, ok := t.source.Take(); ok {
			return t.Apply(c)
		}
	}
	return t.CheckTimeout(now)
}

// OnFrame applies one decoded frame received at the given time.
func (t *Tracker) OnFrame(f nec.Frame, at time.Duration) []Event {
	return t.Apply(nec.Claimed{Frame: f, At: at})
}

// Apply applies a frame taken from the decoder. If the current key's release
// window already ran out, the RELEASE is emitted first. Repeats that queued
// behind the frame count as holds; they kept the key down in the meantime
// unless they are too far apart to have refreshed the window each time.
func (t *Tracker) Apply(c nec.Claimed) []Event {
	events := t.expire(c.At)
	switch c.Frame.Kind {
	case nec.KindData:
		events = append(events, t.onData(c.Frame, c.At)...)
	case nec.KindRepeat:
		events = append(events, t.onRepeat(c.At)...)
	}
	if c.Repeats > 0 {
		if c.RepeatAt-c.At > time.Duration(c.Repeats)*t.timeout {
			events = append(events, t.expire(c.RepeatAt)...)
		}
		for i := 0; i < c.Repeats; i++ {
			events = append(events, t.onRepeat(c.RepeatAt)...)
		}
	}
	t.emit(events)
	return events
}

func (t *Tracker) onData(f nec.Frame, at time.Duration) []Event {
	if t.cfg.FilterAddress != nil && f.Address != *t.cfg.FilterAddress {
		t.filtered = true
		t.eventCounts.Ignored++
		return nil
	}
	t.filtered = false

	var events []Event
	s := &t.session
	switch {
	case !t.started || (s.Timeout == Timeout && !t.released):
		t.begin(f, NoTimeout)
	case s.Timeout == Timeout:
		// Released, but nobody has looked yet.
		if f.Command == s.Command {
			s.PressCount = satInc(s.PressCount)
			s.HoldCount = 0
			s.Timeout = NextButton
		} else {
			t.begin(f, NewButton)
		}
	case f.Command == s.Command:
		// A duplicate Data frame before the first repeat: same press.
		t.lastEvent = at
		return nil
	default:
		// Another key while this one is still down.
		rel := t.event(EventRelease, at)
		rel.Timeout = NewButton
		events = append(events, rel)
		t.released = true
		t.eventCounts.Releases++
		t.begin(f, NewButton)
	}

	t.lastEvent = at
	t.eventCounts.Presses++
	return append(events, t.event(EventPress, at))
}

func (t *Tracker) onRepeat(at time.Duration) []Event {
	if !t.started || t.filtered || t.session.Timeout == Timeout {
		t.eventCounts.Ignored++
		return nil
	}
	t.session.HoldCount = satInc(t.session.HoldCount)
	t.lastEvent = at
	if t.session.HoldCount <= t.cfg.HoldDebounce {
		return nil
	}
	t.eventCounts.Holds++
	return []Event{t.event(EventHold, at)}
}

// CheckTimeout releases the current key if no frame refreshed it within the
// release window.
func (t *Tracker) CheckTimeout(now time.Duration) []Event {
	events := t.expire(now)
	t.emit(events)
	return events
}

func (t *Tracker) expire(now time.Duration) []Event {
	if !t.started || t.session.Timeout == Timeout {
		return nil
	}
	if now-t.lastEvent <= t.timeout {
		return nil
	}
	t.session.Timeout = Timeout
	t.released = true
	t.timedOut = true
	t.eventCounts.Releases++
	return []Event{t.event(EventRelease, now)}
}

func (t *Tracker) begin(f nec.Frame, how TimeoutType) {
	t.session = Session{
		Command:    f.Command,
		Address:    f.Address,
		PressCount: 1,
		Timeout:    how,
	}
	t.started = true
}

func (t *Tracker) event(typ EventType, at time.Duration) Event {
	return Event{
		At:         at,
		Type:       typ,
		Address:    t.session.Address,
		Command:    t.session.Command,
		PressCount: t.session.PressCount,
		HoldCount:  t.session.HoldCount,
		Timeout:    t.session.Timeout,
	}
}

func (t *Tracker) emit(events []Event) {
	if t.cfg.OnEvent == nil {
		return
	}
	for _, e := range events {
		if t.cfg.WatchCommand != nil && e.Command != *t.cfg.WatchCommand {
			continue
		}
		t.cfg.OnEvent(e)
	}
}

func satInc(v uint8) uint8 {
	if v == math.MaxUint8 {
		return v
	}
	return v + 1
}

// Command returns the command of the current or last key.
func (t *Tracker) Command() uint8 {
	return t.session.Command
}

// PressCount returns how many distinct presses the current session saw.
func (t *Tracker) PressCount() uint8 {
	return t.session.PressCount
}

// HoldCount returns the number of repeats received for the current press,
// or 0 while it has not exceeded debounce.
func (t *Tracker) HoldCount(debounce uint8) uint8 {
	if t.session.HoldCount <= debounce {
		return 0
	}
	return t.session.HoldCount
}

// PressTimeout reports a timeout-based release once; the flag clears on read.
func (t *Tracker) PressTimeout() bool {
	v := t.timedOut
	t.timedOut = false
	return v
}

// ReleaseButton reports a release transition once; the flag clears on read.
func (t *Tracker) ReleaseButton() bool {
	v := t.released
	t.released = false
	return v
}

// Active reports whether a key is currently considered down.
func (t *Tracker) Active() bool {
	return t.started && t.session.Timeout != Timeout
}

// Session returns a copy of the current key session.
func (t *Tracker) Session() Session {
	return t.session
}

// Reset discards the session history and pending flags.
func (t *Tracker) Reset() {
	t.session = Session{}
	t.started = false
	t.filtered = false
	t.released = false
	t.timedOut = false
	t.lastEvent = 0
}

// EventCountsSnapshot returns a copy of the current event counts.
func (t *Tracker) EventCountsSnapshot() EventCounts {
	return t.eventCounts
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if the interval has not elapsed
// or if interval is <= 0 (disabled).
func (t *Tracker) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}
	if now.Sub(t.lastHeartbeat) < interval {
		return nil
	}

	t.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(t.startTime),
		Counts:    t.eventCounts,
	}
}
