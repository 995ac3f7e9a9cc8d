// Package button turns raw, bouncy digital inputs into stable pressed
// levels and one-shot short/long press events. All state is touched only
// from the single polling context that calls Update.
package button

import (
	"drivecode-go/errcode"
	"drivecode-go/hal"
	"drivecode-go/types"
	"drivecode-go/x/timex"
)

// ReadFunc reports whether the button wired to pin is currently pressed.
// It is the injected raw-read capability; polarity is the reader's business.
type ReadFunc func(pin int) bool

// Config describes one handler instance. Zero-value Timing selects the
// stock 30/200/1000 ms profile; a nil Clock selects the process clock.
type Config struct {
	Pins   []int
	Read   ReadFunc      // nil => active-low read via Inputs
	Inputs hal.DigitalIn // only consulted when Read is nil
	Timing types.ButtonTiming
	Clock  hal.Clock
}

// Handler debounces N buttons and classifies press durations on release.
type Handler struct {
	pins   []int
	read   ReadFunc
	clock  hal.Clock
	timing types.ButtonTiming

	state      []bool
	lastChange []uint32
	pressStart []uint32
	event      []types.PressType
}

var _ hal.ButtonInput = (*Handler)(nil)

// New builds a handler. It fails when no pins are given or when neither a
// ReadFunc nor a DigitalIn source is supplied.
func New(cfg Config) (*Handler, error) {
	if len(cfg.Pins) == 0 {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "button.New", Msg: "no pins"}
	}
	read := cfg.Read
	if read == nil {
		if cfg.Inputs == nil {
			return nil, &errcode.E{C: errcode.InvalidParams, Op: "button.New", Msg: "no read source"}
		}
		in := cfg.Inputs
		for _, p := range cfg.Pins {
			if err := in.ConfigureInput(p); err != nil {
				return nil, &errcode.E{C: errcode.UnknownPin, Op: "button.New", Err: err}
			}
		}
		// Pressed = electrically low (internal pull-up wiring).
		read = func(pin int) bool { return !in.Get(pin) }
	}
	timing := cfg.Timing
	if timing == (types.ButtonTiming{}) {
		timing = types.DefaultButtonTiming()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = timex.WallClock{}
	}
	n := len(cfg.Pins)
	return &Handler{
		pins:       append([]int(nil), cfg.Pins...),
		read:       read,
		clock:      clock,
		timing:     timing,
		state:      make([]bool, n),
		lastChange: make([]uint32, n),
		pressStart: make([]uint32, n),
		event:      make([]types.PressType, n),
	}, nil
}

// Len returns the number of channels.
func (h *Handler) Len() int { return len(h.pins) }

// Update samples every channel once and advances the debounce state
// machine. Call it at the polling cadence.
func (h *Handler) Update() {
	now := h.clock.Millis()

	for i := range h.pins {
		pressed := h.read(h.pins[i])
		if pressed == h.state[i] {
			continue
		}
		// Accept the transition only once the previous state has been
		// stable for the debounce interval.
		if timex.ElapsedMs(now, h.lastChange[i]) < h.timing.DebounceMs {
			continue
		}
		h.lastChange[i] = now
		h.state[i] = pressed

		if pressed {
			h.pressStart[i] = now
			continue
		}
		// Release: classify by held duration.
		duration := timex.ElapsedMs(now, h.pressStart[i])
		switch {
		case duration >= h.timing.LongPressMs:
			h.event[i] = types.PressLong
		case duration >= h.timing.ShortPressMs:
			h.event[i] = types.PressShort
		default:
			h.event[i] = types.PressNone
		}
		h.pressStart[i] = 0
	}
	// A held button keeps its press start; only an accepted release or a
	// fresh press rewrites it.
}

// IsPressed returns the debounced level of channel i.
// Out-of-range indices read as released, never as an error.
func (h *Handler) IsPressed(i int) bool {
	if i < 0 || i >= len(h.pins) {
		return false
	}
	return h.state[i]
}

// PressType returns and consumes the pending classified event of channel i.
// A second read without an intervening release yields PressNone.
func (h *Handler) PressType(i int) types.PressType {
	if i < 0 || i >= len(h.pins) {
		return types.PressNone
	}
	e := h.event[i]
	h.event[i] = types.PressNone
	return e
}

// Snapshot packs the current debounced levels into an InputState frame.
func (h *Handler) Snapshot() types.InputState {
	var mask uint32
	for i, pressed := range h.state {
		if pressed && i < 32 {
			mask |= 1 << uint(i)
		}
	}
	return types.InputState{Buttons: mask, StampMs: h.clock.Millis()}
}
