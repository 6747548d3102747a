// Command ir-remote decodes an NEC infrared remote from a GPIO-attached
// receiver and publishes button presses, holds and releases to MQTT.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sweeney/ir-remote/internal/gpio"
	"github.com/sweeney/ir-remote/internal/mqtt"
	"github.com/sweeney/ir-remote/internal/nec"
	"github.com/sweeney/ir-remote/internal/status"
	"github.com/sweeney/ir-remote/internal/web"
)

func main() {
	if err := newRootCmd(&options{}).Execute(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func newRootCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ir-remote",
		Short: "NEC infrared remote receiver daemon",
		Long: `ir-remote watches an IR receiver module on a GPIO line, decodes NEC
frames and publishes button events (PRESS, HOLD, RELEASE) to MQTT.

A status page is served on --http, with a live event feed on /ws.
Use the watch subcommand to see frames and events on the terminal instead.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(o)
		},
	}
	o.addReceiverFlags(cmd.PersistentFlags())
	o.addDaemonFlags(cmd.Flags())
	cmd.AddCommand(newWatchCmd(o))
	return cmd
}

// receiver is a decoder fed by a GPIO edge source.
type receiver struct {
	decoder *nec.Decoder
	source  gpio.EdgeSource
	frames  chan struct{}
}

// openReceiver requests the GPIO line and starts decoding. frames gets a
// (coalesced) signal whenever a decoded frame is waiting.
func openReceiver(o *options) (*receiver, error) {
	r := &receiver{frames: make(chan struct{}, 1)}
	r.decoder = nec.NewDecoder(func() {
		select {
		case r.frames <- struct{}{}:
		default:
		}
	})

	src, err := gpio.NewRealEdgeSource(o.chip, o.pin, o.activeHigh, func(e gpio.Edge) {
		r.decoder.OnEdge(e.Mark, e.Time)
	})
	if err != nil {
		return nil, fmt.Errorf("init gpio: %w", err)
	}
	r.source = src
	return r, nil
}

func run(o *options) error {
	format, err := mqtt.ParseFormat(o.format)
	if err != nil {
		return err
	}
	cfg, err := o.trackerConfig()
	if err != nil {
		return err
	}

	rx, err := openReceiver(o)
	if err != nil {
		return err
	}
	defer rx.source.Close()

	if o.printState {
		return printState(os.Stdout, rx.source, o.chip, o.pin)
	}

	publisher, err := mqtt.NewRealPublisher(o.broker, o.clientID, format)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	// Status tracker first so STARTUP carries a snapshot.
	tracker := status.NewTracker(time.Now(), o.statusConfig())
	if net := networkInfo(os.Getenv); net != nil {
		tracker.SetNetwork(net)
	}

	l := newLoop(rx.decoder, cfg, o.multiPress, clocks{mono: gpio.Now, wall: time.Now})
	l.publisher = publisher
	l.mqttStatus = publisher
	l.status = tracker
	l.heartbeat = o.heartbeat
	l.getenv = os.Getenv

	l.publishSystem("STARTUP", "", true)

	if o.httpAddr != "" {
		srv := web.New(o.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		l.live = srv
		log.Printf("http status server listening on %s", o.httpAddr)
	}

	log.Printf("started: line=%s/%d broker=%s format=%s poll=%v release=%v heartbeat=%v",
		o.chip, o.pin, o.broker, format, o.poll, o.releaseTimeout, o.heartbeat)

	ticker := time.NewTicker(o.poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return l.run(rx.frames, ticker.C, sigCh)
}

func printState(w io.Writer, src gpio.EdgeSource, chip string, pin int) error {
	level, err := src.Level()
	if err != nil {
		return fmt.Errorf("read gpio: %w", err)
	}
	fmt.Fprintf(w, "%s line %d: %s\n", chip, pin, levelString(level))
	return nil
}

func levelString(carrier bool) string {
	if carrier {
		return "MARK"
	}
	return "SPACE"
}
