//go:build !linux

package gpio

import "time"

var processStart = time.Now()

// Now returns a monotonic offset from process start.
func Now() time.Duration {
	return time.Since(processStart)
}
