package main

import (
	"log"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/sweeney/ir-remote/internal/logic"
	"github.com/sweeney/ir-remote/internal/mqtt"
	"github.com/sweeney/ir-remote/internal/nec"
	"github.com/sweeney/ir-remote/internal/status"
)

// frameDecoder is the part of *nec.Decoder the loop uses.
type frameDecoder interface {
	logic.FrameSource
	Available() bool
	Stats() nec.Stats
	Last() (nec.Frame, time.Duration)
}

// broadcaster streams events to live viewers. *web.Server implements it.
type broadcaster interface {
	Broadcast(event logic.Event)
}

type clocks struct {
	mono func() time.Duration // the clock edge timestamps use
	wall func() time.Time
}

// releaser consumes the tracker's one-shot release flags once the
// multi-press window after a RELEASE has passed. Until then a press of the
// same key continues the session as NEXT_BUTTON.
type releaser struct {
	window  time.Duration
	at      time.Duration
	pending bool
}

func (r *releaser) released(at time.Duration) {
	r.at = at
	r.pending = true
}

func (r *releaser) poll(t *logic.Tracker, now time.Duration) {
	if !r.pending || now-r.at < r.window {
		return
	}
	t.ReleaseButton()
	t.PressTimeout()
	r.pending = false
}

// loop owns the button tracker. Everything except decoder runs on the
// goroutine calling run. Optional collaborators may be nil.
type loop struct {
	decoder frameDecoder
	buttons *logic.Tracker
	release releaser
	clk     clocks

	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	status     *status.Tracker
	live       broadcaster
	heartbeat  time.Duration
	getenv     func(string) string
	quiet      bool // publisher already shows events; don't log them
}

func newLoop(decoder frameDecoder, cfg logic.Config, multiPress time.Duration, clk clocks) *loop {
	l := &loop{
		decoder: decoder,
		release: releaser{window: multiPress},
		clk:     clk,
	}
	cfg.OnEvent = l.emit
	l.buttons = logic.NewTracker(decoder, cfg, clk.wall())
	return l
}

// run processes frames and timeouts until a signal arrives.
func (l *loop) run(frames <-chan struct{}, tick <-chan time.Time, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			l.publishSystem("SHUTDOWN", signalName(s), true)
			return nil

		case <-frames:
			l.process()
			l.updateStatus()

		case <-tick:
			l.process()

			if hb := l.buttons.CheckHeartbeat(l.clk.wall(), l.heartbeat); hb != nil {
				stats := l.decoder.Stats()
				log.Printf("heartbeat: uptime=%v presses=%d holds=%d releases=%d ignored=%d frames=%d errors=%d buffered=%d",
					hb.Uptime, hb.Counts.Presses, hb.Counts.Holds, hb.Counts.Releases, hb.Counts.Ignored,
					stats.DataFrames+stats.RepeatFrames, stats.Errors, l.buffered())
				if l.status != nil && l.getenv != nil {
					if net := networkInfo(l.getenv); net != nil {
						l.status.SetNetwork(net)
					}
				}
				l.publishSystem("HEARTBEAT", "", false)
			}

			l.updateStatus()
		}
	}
}

// process drains pending frames, then checks the release window.
func (l *loop) process() {
	now := l.clk.mono()
	for {
		for _, ev := range l.buttons.Read(now) {
			if ev.Type == logic.EventRelease {
				l.release.released(ev.At)
			}
		}
		if !l.decoder.Available() {
			break
		}
	}
	l.release.poll(l.buttons, now)
}

// emit publishes one button event. It is the tracker's OnEvent callback, so
// it only sees events that pass the command filter.
func (l *loop) emit(ev logic.Event) {
	ev.Timestamp = l.clk.wall()
	if !l.quiet {
		log.Printf("event: %s address=0x%04X command=0x%02X presses=%d holds=%d timeout=%s",
			ev.Type, ev.Address, ev.Command, ev.PressCount, ev.HoldCount, ev.Timeout)
	}

	if err := l.publisher.Publish(ev); err != nil {
		log.Printf("publish error: %v", err)
		// Don't crash on publish failure
	}
	if l.live != nil {
		l.live.Broadcast(ev)
	}
}

func (l *loop) buffered() int {
	if l.mqttStatus == nil {
		return 0
	}
	return l.mqttStatus.Buffered()
}

func (l *loop) updateStatus() {
	if l.status == nil {
		return
	}
	last, _ := l.decoder.Last()
	l.status.Update(l.buttons.Session(), l.buttons.Active(), l.buttons.EventCountsSnapshot(), l.decoder.Stats(), last)
	if l.mqttStatus != nil {
		l.status.SetMQTTConnected(l.mqttStatus.IsConnected())
		l.status.SetMQTTBuffered(l.mqttStatus.Buffered())
	}
}

// publishSystem sends a lifecycle event, with a full status snapshot when a
// status tracker is attached.
func (l *loop) publishSystem(event, reason string, retained bool) {
	se := mqtt.SystemEvent{
		Timestamp: l.clk.wall(),
		Event:     event,
		Reason:    reason,
		Retained:  retained,
	}
	if l.status != nil {
		l.updateStatus()
		se.Status = status.StatusEvent(l.status.Snapshot(), event, reason)
	}
	if err := l.publisher.PublishSystem(se); err != nil {
		log.Printf("failed to publish %s event: %v", strings.ToLower(event), err)
	} else if event != "HEARTBEAT" {
		log.Printf("published %s event", strings.ToLower(event))
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}
