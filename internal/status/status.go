// Package status provides a thread-safe status tracker for the ir-remote daemon.
// The polling loop writes it; HTTP handlers and MQTT system events read it.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/ir-remote/internal/logic"
	"github.com/sweeney/ir-remote/internal/nec"
)

// NetworkInfo contains network state as reported by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	Chip             string
	Pin              int
	FilterAddress    string // "" when every address is accepted
	WatchCommand     string // "" when every command is reported
	HoldDebounce     uint8
	ReleaseTimeoutMs int64
	PollMs           int64
	HeartbeatMs      int64
	Broker           string
	Format           string
	HTTPAddr         string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Session       logic.Session
	Active        bool
	Counts        logic.EventCounts
	Decoder       nec.Stats
	LastFrame     nec.Frame
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	MQTTBuffered  int // messages queued while the broker is away
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the button session, event counts and decoder statistics.
// Called from the daemon loop after every wake.
func (t *Tracker) Update(session logic.Session, active bool, counts logic.EventCounts, stats nec.Stats, last nec.Frame) {
	t.mu.Lock()
	t.snap.Session = session
	t.snap.Active = active
	t.snap.Counts = counts
	t.snap.Decoder = stats
	t.snap.LastFrame = last
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetMQTTBuffered sets the number of messages waiting for the broker.
func (t *Tracker) SetMQTTBuffered(n int) {
	t.mu.Lock()
	t.snap.MQTTBuffered = n
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
