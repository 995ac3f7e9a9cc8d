package timex

import "time"

var epoch = time.Now()

// Millis returns milliseconds since process start as a free-running
// 32-bit counter. It wraps after ~49.7 days; use ElapsedMs to compare.
func Millis() uint32 {
	return uint32(time.Since(epoch).Milliseconds())
}

// Micros returns microseconds since process start.
func Micros() int64 {
	return time.Since(epoch).Microseconds()
}

// ElapsedMs returns now-then under uint32 wraparound semantics, so a
// counter rollover between the two samples still yields the true delta.
func ElapsedMs(now, then uint32) uint32 {
	return now - then
}

// WallClock is the default monotonic clock handed to components that
// accept an injected clock.
type WallClock struct{}

func (WallClock) Millis() uint32 { return Millis() }
func (WallClock) Micros() int64  { return Micros() }
