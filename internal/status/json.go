package status

import (
	"encoding/json"
	"fmt"
	"time"
)

// StatusJSON is the top-level envelope for status output. It is encoded as
// JSON for the web endpoint and in the configured MQTT format for system events.
type StatusJSON struct {
	Status StatusInner `json:"status" cbor:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty" cbor:"event,omitempty"`
	Reason        string       `json:"reason,omitempty" cbor:"reason,omitempty"`
	Button        ButtonJSON   `json:"button" cbor:"button"`
	Decoder       DecoderJSON  `json:"decoder" cbor:"decoder"`
	UptimeSeconds int64        `json:"uptime_seconds" cbor:"uptime_seconds"`
	StartTime     string       `json:"start_time" cbor:"start_time"`
	Timestamp     string       `json:"timestamp" cbor:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt" cbor:"mqtt"`
	Counts        CountsJSON   `json:"event_counts" cbor:"event_counts"`
	Network       *NetworkJSON `json:"network,omitempty" cbor:"network,omitempty"`
	Config        ConfigJSON   `json:"config" cbor:"config"`
}

// ButtonJSON is the current (or last) key session.
type ButtonJSON struct {
	Active     bool   `json:"active" cbor:"active"`
	Address    string `json:"address" cbor:"address"`
	Command    string `json:"command" cbor:"command"`
	PressCount uint8  `json:"press_count" cbor:"press_count"`
	HoldCount  uint8  `json:"hold_count" cbor:"hold_count"`
	Timeout    string `json:"timeout" cbor:"timeout"`
}

// DecoderJSON reports frame decoder statistics.
type DecoderJSON struct {
	DataFrames   uint64 `json:"data_frames" cbor:"data_frames"`
	RepeatFrames uint64 `json:"repeat_frames" cbor:"repeat_frames"`
	Errors       uint64 `json:"errors" cbor:"errors"`
	Overruns     uint64 `json:"overruns" cbor:"overruns"`
	LastFrame    string `json:"last_frame" cbor:"last_frame"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected" cbor:"connected"`
	Broker    string `json:"broker" cbor:"broker"`
	Buffered  int    `json:"buffered" cbor:"buffered"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Presses  int `json:"presses" cbor:"presses"`
	Holds    int `json:"holds" cbor:"holds"`
	Releases int `json:"releases" cbor:"releases"`
	Ignored  int `json:"ignored" cbor:"ignored"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type" cbor:"type"`
	IP         string `json:"ip" cbor:"ip"`
	Status     string `json:"status" cbor:"status"`
	Gateway    string `json:"gateway" cbor:"gateway"`
	WifiStatus string `json:"wifi_status" cbor:"wifi_status"`
	SSID       string `json:"ssid" cbor:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Chip             string `json:"chip" cbor:"chip"`
	Pin              int    `json:"pin" cbor:"pin"`
	Address          string `json:"address,omitempty" cbor:"address,omitempty"`
	Command          string `json:"command,omitempty" cbor:"command,omitempty"`
	HoldDebounce     uint8  `json:"hold_debounce" cbor:"hold_debounce"`
	ReleaseTimeoutMs int64  `json:"release_timeout_ms" cbor:"release_timeout_ms"`
	PollMs           int64  `json:"poll_ms" cbor:"poll_ms"`
	HeartbeatMs      int64  `json:"heartbeat_ms" cbor:"heartbeat_ms"`
	Broker           string `json:"broker" cbor:"broker"`
	Format           string `json:"format" cbor:"format"`
	HTTPAddr         string `json:"http_addr" cbor:"http_addr"`
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		Button: ButtonJSON{
			Active:     snap.Active,
			Address:    fmt.Sprintf("0x%04X", snap.Session.Address),
			Command:    fmt.Sprintf("0x%02X", snap.Session.Command),
			PressCount: snap.Session.PressCount,
			HoldCount:  snap.Session.HoldCount,
			Timeout:    snap.Session.Timeout.String(),
		},
		Decoder: DecoderJSON{
			DataFrames:   snap.Decoder.DataFrames,
			RepeatFrames: snap.Decoder.RepeatFrames,
			Errors:       snap.Decoder.Errors,
			Overruns:     snap.Decoder.Overruns,
			LastFrame:    snap.LastFrame.String(),
		},
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT: MQTTStatus{
			Connected: snap.MQTTConnected,
			Broker:    snap.Config.Broker,
			Buffered:  snap.MQTTBuffered,
		},
		Counts: CountsJSON{
			Presses:  snap.Counts.Presses,
			Holds:    snap.Counts.Holds,
			Releases: snap.Counts.Releases,
			Ignored:  snap.Counts.Ignored,
		},
		Config: ConfigJSON{
			Chip:             snap.Config.Chip,
			Pin:              snap.Config.Pin,
			Address:          snap.Config.FilterAddress,
			Command:          snap.Config.WatchCommand,
			HoldDebounce:     snap.Config.HoldDebounce,
			ReleaseTimeoutMs: snap.Config.ReleaseTimeoutMs,
			PollMs:           snap.Config.PollMs,
			HeartbeatMs:      snap.Config.HeartbeatMs,
			Broker:           snap.Config.Broker,
			Format:           snap.Config.Format,
			HTTPAddr:         snap.Config.HTTPAddr,
		},
	}
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// StatusEvent returns the status envelope for an MQTT system event. The
// publisher encodes it in its configured format.
func StatusEvent(snap Snapshot, event, reason string) StatusJSON {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	return StatusJSON{Status: inner}
}
