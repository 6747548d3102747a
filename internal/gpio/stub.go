//go:build !linux

package gpio

import "errors"

// RealEdgeSource is not available on non-Linux platforms.
type RealEdgeSource struct{}

// NewRealEdgeSource returns an error on non-Linux platforms.
func NewRealEdgeSource(chipName string, pin int, activeHigh bool, handler EdgeHandler) (*RealEdgeSource, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// Level is not implemented on non-Linux platforms.
func (r *RealEdgeSource) Level() (bool, error) {
	return false, errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (r *RealEdgeSource) Close() error {
	return nil
}
