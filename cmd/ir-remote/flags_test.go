package main

import (
	"testing"
	"time"

	"github.com/sweeney/ir-remote/internal/gpio"
	"github.com/sweeney/ir-remote/internal/nec"
)

func TestTrackerConfigFilters(t *testing.T) {
	tests := []struct {
		name     string
		address  string
		command  string
		wantAddr int // -1 for no filter
		wantCmd  int
		wantErr  bool
	}{
		{"none", "", "", -1, -1, false},
		{"hex", "0x00FF", "0x45", 0x00FF, 0x45, false},
		{"decimal", "255", "16", 255, 16, false},
		{"extended address", "0xBF40", "", 0xBF40, -1, false},
		{"address too wide", "0x10000", "", 0, 0, true},
		{"command too wide", "", "256", 0, 0, true},
		{"garbage", "remote", "", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &options{address: tt.address, command: tt.command}
			cfg, err := o.trackerConfig()
			if (err != nil) != tt.wantErr {
				t.Fatalf("err: got %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			switch {
			case tt.wantAddr < 0 && cfg.FilterAddress != nil:
				t.Errorf("FilterAddress: got 0x%04X, want none", *cfg.FilterAddress)
			case tt.wantAddr >= 0 && (cfg.FilterAddress == nil || int(*cfg.FilterAddress) != tt.wantAddr):
				t.Errorf("FilterAddress: got %v, want 0x%04X", cfg.FilterAddress, tt.wantAddr)
			}
			switch {
			case tt.wantCmd < 0 && cfg.WatchCommand != nil:
				t.Errorf("WatchCommand: got 0x%02X, want none", *cfg.WatchCommand)
			case tt.wantCmd >= 0 && (cfg.WatchCommand == nil || int(*cfg.WatchCommand) != tt.wantCmd):
				t.Errorf("WatchCommand: got %v, want 0x%02X", cfg.WatchCommand, tt.wantCmd)
			}
		})
	}
}

func TestRootFlagDefaults(t *testing.T) {
	o := &options{}
	cmd := newRootCmd(o)
	if err := cmd.ParseFlags(nil); err != nil {
		t.Fatalf("parse: %v", err)
	}

	if o.chip != gpio.DefaultChip || o.pin != gpio.DefaultPin {
		t.Errorf("line: got %s/%d", o.chip, o.pin)
	}
	if o.releaseTimeout != nec.RepeatTimeout {
		t.Errorf("release timeout: got %v, want %v", o.releaseTimeout, nec.RepeatTimeout)
	}
	if o.format != "json" || o.heartbeat != 15*time.Minute || o.httpAddr != ":80" {
		t.Errorf("daemon defaults: format=%s heartbeat=%v http=%s", o.format, o.heartbeat, o.httpAddr)
	}
	if o.activeHigh || o.printState {
		t.Error("boolean flags should default to false")
	}
}

func TestRootFlagsParse(t *testing.T) {
	o := &options{}
	cmd := newRootCmd(o)
	args := []string{
		"--pin", "22", "--active-high", "--address", "0x00FF", "--command", "0x45",
		"--hold-debounce", "2", "--release-timeout", "150ms", "--multi-press", "0",
		"--format", "cbor", "--http", "", "--client-id", "den-remote",
	}
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("parse: %v", err)
	}

	if o.pin != 22 || !o.activeHigh || o.holdDebounce != 2 {
		t.Errorf("receiver flags: %+v", o)
	}
	if o.releaseTimeout != 150*time.Millisecond || o.multiPress != 0 {
		t.Errorf("timing flags: release=%v multi=%v", o.releaseTimeout, o.multiPress)
	}
	if o.format != "cbor" || o.httpAddr != "" || o.clientID != "den-remote" {
		t.Errorf("daemon flags: format=%s http=%q client=%s", o.format, o.httpAddr, o.clientID)
	}

	sc := o.statusConfig()
	if sc.FilterAddress != "0x00FF" || sc.WatchCommand != "0x45" {
		t.Errorf("status filters: %q/%q", sc.FilterAddress, sc.WatchCommand)
	}
	if sc.ReleaseTimeoutMs != 150 || sc.Pin != 22 || sc.Format != "cbor" {
		t.Errorf("status config: %+v", sc)
	}
}

func TestWatchInheritsReceiverFlags(t *testing.T) {
	o := &options{}
	root := newRootCmd(o)
	watch, _, err := root.Find([]string{"watch"})
	if err != nil || watch.Name() != "watch" {
		t.Fatalf("watch subcommand not found: %v", err)
	}

	if err := watch.ParseFlags([]string{"--pin", "5", "--command", "0x10"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if o.pin != 5 || o.command != "0x10" {
		t.Errorf("watch flags: pin=%d command=%q", o.pin, o.command)
	}

	if err := watch.ParseFlags([]string{"--broker", "tcp://x:1883"}); err == nil {
		t.Error("daemon-only flags should not be accepted by watch")
	}
}

func TestStatusConfigWithoutFilters(t *testing.T) {
	o := &options{chip: "gpiochip4", pin: 17, poll: 20 * time.Millisecond}
	sc := o.statusConfig()
	if sc.FilterAddress != "" || sc.WatchCommand != "" {
		t.Errorf("expected no filters, got %q/%q", sc.FilterAddress, sc.WatchCommand)
	}
	if sc.Chip != "gpiochip4" || sc.PollMs != 20 {
		t.Errorf("status config: %+v", sc)
	}
}
