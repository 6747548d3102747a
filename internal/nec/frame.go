package nec

import "fmt"

// Kind identifies what a decoded frame carries.
type Kind uint8

const (
	// KindNone is the no-protocol frame: nothing was decoded.
	KindNone Kind = iota
	// KindData is a complete address/command frame.
	KindData
	// KindRepeat signals that the previous key is still held.
	KindRepeat
)

func (k Kind) String() string {
	switch k {
	case KindData:
		return "DATA"
	case KindRepeat:
		return "REPEAT"
	default:
		return "NONE"
	}
}

// Frame is one decoded protocol frame. Address and Command are only
// meaningful for KindData.
type Frame struct {
	Kind    Kind
	Address uint16
	Command uint8
}

func (f Frame) String() string {
	switch f.Kind {
	case KindData:
		return fmt.Sprintf("DATA address=0x%04X command=0x%02X", f.Address, f.Command)
	case KindRepeat:
		return "REPEAT"
	default:
		return "NONE"
	}
}

// frameFromBytes validates the command complement and assembles a frame.
func frameFromBytes(b [dataBytes]byte) (Frame, bool) {
	if b[2] != ^b[3] {
		return Frame{}, false
	}
	return Frame{
		Kind:    KindData,
		Address: uint16(b[1])<<8 | uint16(b[0]),
		Command: b[2],
	}, true
}
