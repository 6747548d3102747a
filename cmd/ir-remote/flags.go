package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/pflag"

	"github.com/sweeney/ir-remote/internal/gpio"
	"github.com/sweeney/ir-remote/internal/logic"
	"github.com/sweeney/ir-remote/internal/nec"
	"github.com/sweeney/ir-remote/internal/status"
)

// options holds every command-line setting.
type options struct {
	// receiver and button semantics, shared by all commands
	chip           string
	pin            int
	activeHigh     bool
	address        string
	command        string
	holdDebounce   uint8
	releaseTimeout time.Duration
	multiPress     time.Duration
	poll           time.Duration

	// daemon only
	broker     string
	clientID   string
	format     string
	heartbeat  time.Duration
	httpAddr   string
	printState bool
}

func (o *options) addReceiverFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.chip, "chip", gpio.DefaultChip, "GPIO chip the receiver is wired to")
	fs.IntVar(&o.pin, "pin", gpio.DefaultPin, "GPIO line offset (BCM pin number) of the receiver output")
	fs.BoolVar(&o.activeHigh, "active-high", false, "Receiver output is high while a carrier is present")
	fs.StringVar(&o.address, "address", "", "Only accept frames from this remote address, e.g. 0x00FF (empty accepts all)")
	fs.StringVar(&o.command, "command", "", "Only report events for this command, e.g. 0x45 (empty reports all)")
	fs.Uint8Var(&o.holdDebounce, "hold-debounce", 0, "Number of initial repeats that do not count as a hold")
	fs.DurationVar(&o.releaseTimeout, "release-timeout", nec.RepeatTimeout, "Time without frames after which a key is released")
	fs.DurationVar(&o.multiPress, "multi-press", 500*time.Millisecond, "Window after a release in which the same key counts as a further press (0 disables)")
	fs.DurationVar(&o.poll, "poll", 20*time.Millisecond, "Release-timeout check interval")
}

func (o *options) addDaemonFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.broker, "broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	fs.StringVar(&o.clientID, "client-id", "ir-remote", "MQTT client ID")
	fs.StringVar(&o.format, "format", "json", "MQTT payload format: json or cbor")
	fs.DurationVar(&o.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	fs.StringVar(&o.httpAddr, "http", ":80", "HTTP status address (empty to disable)")
	fs.BoolVar(&o.printState, "print-state", false, "Print the current receiver line level and exit")
}

// trackerConfig validates the filters and builds the button tracker config.
func (o *options) trackerConfig() (logic.Config, error) {
	cfg := logic.Config{
		HoldDebounce:   o.holdDebounce,
		ReleaseTimeout: o.releaseTimeout,
	}
	if o.address != "" {
		v, err := strconv.ParseUint(o.address, 0, 16)
		if err != nil {
			return logic.Config{}, fmt.Errorf("invalid --address %q: %w", o.address, err)
		}
		addr := uint16(v)
		cfg.FilterAddress = &addr
	}
	if o.command != "" {
		v, err := strconv.ParseUint(o.command, 0, 8)
		if err != nil {
			return logic.Config{}, fmt.Errorf("invalid --command %q: %w", o.command, err)
		}
		cmd := uint8(v)
		cfg.WatchCommand = &cmd
	}
	return cfg, nil
}

func (o *options) statusConfig() status.Config {
	cfg := status.Config{
		Chip:             o.chip,
		Pin:              o.pin,
		HoldDebounce:     o.holdDebounce,
		ReleaseTimeoutMs: o.releaseTimeout.Milliseconds(),
		PollMs:           o.poll.Milliseconds(),
		HeartbeatMs:      o.heartbeat.Milliseconds(),
		Broker:           o.broker,
		Format:           o.format,
		HTTPAddr:         o.httpAddr,
	}
	// Normalise to the display form; trackerConfig has already validated.
	if v, err := strconv.ParseUint(o.address, 0, 16); err == nil {
		cfg.FilterAddress = fmt.Sprintf("0x%04X", v)
	}
	if v, err := strconv.ParseUint(o.command, 0, 8); err == nil {
		cfg.WatchCommand = fmt.Sprintf("0x%02X", v)
	}
	return cfg
}
