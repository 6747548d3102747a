package web

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sweeney/ir-remote/internal/logic"
)

// EventJSON is one button event as streamed on /ws.
type EventJSON struct {
	Timestamp  string `json:"timestamp"`
	Event      string `json:"event"`
	Address    string `json:"address"`
	Command    string `json:"command"`
	PressCount uint8  `json:"press_count"`
	HoldCount  uint8  `json:"hold_count"`
	Timeout    string `json:"timeout"`
}

func formatEvent(e logic.Event) []byte {
	data, _ := json.Marshal(EventJSON{
		Timestamp:  e.Timestamp.UTC().Format(time.RFC3339Nano),
		Event:      string(e.Type),
		Address:    fmt.Sprintf("0x%04X", e.Address),
		Command:    fmt.Sprintf("0x%02X", e.Command),
		PressCount: e.PressCount,
		HoldCount:  e.HoldCount,
		Timeout:    e.Timeout.String(),
	})
	return data
}
