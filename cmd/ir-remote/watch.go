package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sweeney/ir-remote/internal/gpio"
	"github.com/sweeney/ir-remote/internal/logic"
	"github.com/sweeney/ir-remote/internal/mqtt"
	"github.com/sweeney/ir-remote/internal/nec"
)

func newWatchCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print decoded frames and button events",
		Long: `Decode the receiver and print every frame and button event to stdout
until interrupted. Nothing is published. Useful for finding the address
and command codes of a remote.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(o, cmd.OutOrStdout())
		},
	}
}

func runWatch(o *options, out io.Writer) error {
	cfg, err := o.trackerConfig()
	if err != nil {
		return err
	}

	rx, err := openReceiver(o)
	if err != nil {
		return err
	}
	defer rx.source.Close()

	p := newPrinter(out, isTerminal(out), time.Now)
	fmt.Fprintf(out, "ir-remote watch: %s line %d\n", o.chip, o.pin)
	fmt.Fprintf(out, "Press Ctrl+C to exit\n\n")

	l := newLoop(&printingSource{Decoder: rx.decoder, p: p}, cfg, o.multiPress, clocks{mono: gpio.Now, wall: time.Now})
	l.publisher = p
	l.quiet = true

	ticker := time.NewTicker(o.poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return l.run(rx.frames, ticker.C, sigCh)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// printingSource prints every frame the tracker takes, including repeats
// that queued behind it.
type printingSource struct {
	*nec.Decoder
	p *printer
}

func (s *printingSource) Take() (nec.Claimed, bool) {
	c, ok := s.Decoder.Take()
	if !ok {
		return c, false
	}
	s.p.frame(c.Frame)
	for i := 0; i < c.Repeats; i++ {
		s.p.frame(nec.Frame{Kind: nec.KindRepeat})
	}
	return c, true
}

// printer writes one line per frame or event. It stands in for the MQTT
// publisher in watch mode.
type printer struct {
	out    io.Writer
	now    func() time.Time
	styled bool

	frameStyle   lipgloss.Style
	pressStyle   lipgloss.Style
	holdStyle    lipgloss.Style
	releaseStyle lipgloss.Style
	systemStyle  lipgloss.Style
}

func newPrinter(out io.Writer, styled bool, now func() time.Time) *printer {
	r := lipgloss.NewRenderer(out)
	return &printer{
		out:          out,
		now:          now,
		styled:       styled,
		frameStyle:   r.NewStyle().Foreground(lipgloss.Color("241")),
		pressStyle:   r.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		holdStyle:    r.NewStyle().Foreground(lipgloss.Color("12")),
		releaseStyle: r.NewStyle().Foreground(lipgloss.Color("11")),
		systemStyle:  r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
}

func (p *printer) paint(st lipgloss.Style, s string) string {
	if !p.styled {
		return s
	}
	return st.Render(s)
}

func (p *printer) line(at time.Time, st lipgloss.Style, label, detail string) {
	if detail == "" {
		fmt.Fprintf(p.out, "%s %s\n", at.Format("15:04:05.000"), p.paint(st, label))
		return
	}
	fmt.Fprintf(p.out, "%s %s %s\n", at.Format("15:04:05.000"), p.paint(st, fmt.Sprintf("%-8s", label)), detail)
}

func (p *printer) frame(f nec.Frame) {
	p.line(p.now(), p.frameStyle, "frame", f.String())
}

// Publish prints a button event.
func (p *printer) Publish(e logic.Event) error {
	st := p.pressStyle
	switch e.Type {
	case logic.EventHold:
		st = p.holdStyle
	case logic.EventRelease:
		st = p.releaseStyle
	}
	p.line(e.Timestamp, st, string(e.Type), fmt.Sprintf("address=0x%04X command=0x%02X presses=%d holds=%d %s",
		e.Address, e.Command, e.PressCount, e.HoldCount, e.Timeout))
	return nil
}

// PublishSystem prints a lifecycle event.
func (p *printer) PublishSystem(e mqtt.SystemEvent) error {
	p.line(e.Timestamp, p.systemStyle, e.Event, e.Reason)
	return nil
}

func (p *printer) Close() error { return nil }
