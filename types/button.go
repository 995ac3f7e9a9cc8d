package types

// ------------------------
// Buttons
// ------------------------

// PressType classifies a completed (debounced) button press.
type PressType uint8

const (
	PressNone PressType = iota
	PressShort
	PressLong
)

func (p PressType) String() string {
	switch p {
	case PressShort:
		return "short"
	case PressLong:
		return "long"
	default:
		return "none"
	}
}

// ButtonTiming holds debounce and press-duration thresholds (milliseconds).
// The expected policy is DebounceMs <= ShortPressMs <= LongPressMs; it is not
// enforced, and violating it only makes classification more permissive.
type ButtonTiming struct {
	DebounceMs   uint32 `json:"debounce_ms"`
	ShortPressMs uint32 `json:"short_press_ms"`
	LongPressMs  uint32 `json:"long_press_ms"`
}

// DefaultButtonTiming returns the stock 30/200/1000 ms profile.
func DefaultButtonTiming() ButtonTiming {
	return ButtonTiming{DebounceMs: 30, ShortPressMs: 200, LongPressMs: 1000}
}

// InputState is one debounced snapshot of every button, published on the
// input bus. Bit i of Buttons is the debounced level of channel i.
type InputState struct {
	Buttons uint32 `json:"buttons"`
	StampMs uint32 `json:"stamp_ms"`
}

// Pressed reports the debounced level of channel i; false when out of range.
func (s InputState) Pressed(i int) bool {
	if i < 0 || i >= 32 {
		return false
	}
	return s.Buttons&(1<<uint(i)) != 0
}

// ForEachEdge calls fn for every channel whose level differs between prev
// and cur, passing the channel index and the new level.
func ForEachEdge(prev, cur InputState, n int, fn func(i int, pressed bool)) {
	if n > 32 {
		n = 32
	}
	diff := prev.Buttons ^ cur.Buttons
	for i := 0; i < n; i++ {
		if diff&(1<<uint(i)) != 0 {
			fn(i, cur.Pressed(i))
		}
	}
}

// ButtonEvent is published when a press is classified on release.
type ButtonEvent struct {
	Channel int       `json:"channel"`
	Press   PressType `json:"press"`
	StampMs uint32    `json:"stamp_ms"`
}

// ButtonEdge is published when a channel's debounced level changes.
type ButtonEdge struct {
	Channel int    `json:"channel"`
	Pressed bool   `json:"pressed"`
	StampMs uint32 `json:"stamp_ms"`
}
