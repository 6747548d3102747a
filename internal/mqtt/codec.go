package mqtt

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Format selects the payload encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCBOR Format = "cbor"
)

// ParseFormat validates a --format flag value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatCBOR:
		return Format(s), nil
	case "":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown payload format %q (want json or cbor)", s)
}

// Marshal encodes v in the selected format. The zero Format encodes JSON.
func (f Format) Marshal(v interface{}) ([]byte, error) {
	if f == FormatCBOR {
		return cbor.Marshal(v)
	}
	return json.Marshal(v)
}

// Unmarshal decodes data in the selected format.
func (f Format) Unmarshal(data []byte, v interface{}) error {
	if f == FormatCBOR {
		return cbor.Unmarshal(data, v)
	}
	return json.Unmarshal(data, v)
}
