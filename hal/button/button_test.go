package button

import (
	"testing"

	"drivecode-go/types"
)

// fakeClock is a hand-advanced millisecond clock.

type fakeClock struct{ ms uint32 }

func (c *fakeClock) Millis() uint32 { return c.ms }
func (c *fakeClock) Micros() int64  { return int64(c.ms) * 1000 }

// rig bundles a handler with its controllable inputs.

type rig struct {
	h     *Handler
	clock *fakeClock
	down  []bool
}

func newRig(t *testing.T, n int) *rig {
	t.Helper()
	r := &rig{clock: &fakeClock{}, down: make([]bool, n)}
	pins := make([]int, n)
	for i := range pins {
		pins[i] = 10 + i
	}
	h, err := New(Config{
		Pins:  pins,
		Read:  func(pin int) bool { return r.down[pin-10] },
		Clock: r.clock,
	})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	r.h = h
	return r
}

// tick advances time and runs one scan.
func (r *rig) tick(ms uint32) {
	r.clock.ms += ms
	r.h.Update()
}

func TestButton_DebounceRejectsChatter(t *testing.T) {
	r := newRig(t, 1)

	// Settle the initial released state past the debounce window so the
	// first real press is accepted.
	r.tick(50)

	// A press followed by bounce inside the 30 ms window must not toggle
	// the debounced state back.
	r.down[0] = true
	r.tick(50)
	if !r.h.IsPressed(0) {
		t.Fatal("press not registered")
	}
	r.down[0] = false
	r.tick(5) // 5 ms later: inside debounce, must be ignored
	if !r.h.IsPressed(0) {
		t.Fatal("bounce released the debounced state")
	}
	r.down[0] = true
	r.tick(5)
	if !r.h.IsPressed(0) {
		t.Fatal("state lost during bounce")
	}
}

func TestButton_ClassifiesOnRelease(t *testing.T) {
	cases := []struct {
		name   string
		heldMs uint32
		want   types.PressType
	}{
		{"below short threshold", 150, types.PressNone},
		{"at short threshold", 200, types.PressShort},
		{"between thresholds", 999, types.PressShort},
		{"at long threshold", 1000, types.PressLong},
		{"well past long", 5000, types.PressLong},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newRig(t, 1)
			r.tick(50)

			r.down[0] = true
			r.tick(50)
			// No event while held.
			if e := r.h.PressType(0); e != types.PressNone {
				t.Fatalf("event before release: %v", e)
			}

			r.down[0] = false
			r.tick(tc.heldMs)
			if r.h.IsPressed(0) {
				t.Fatal("still pressed after release")
			}
			if e := r.h.PressType(0); e != tc.want {
				t.Fatalf("held %d ms: got %v, want %v", tc.heldMs, e, tc.want)
			}
		})
	}
}

func TestButton_EventConsumedOnRead(t *testing.T) {
	r := newRig(t, 1)
	r.tick(50)

	r.down[0] = true
	r.tick(50)
	r.down[0] = false
	r.tick(300)

	if e := r.h.PressType(0); e != types.PressShort {
		t.Fatalf("first read: got %v, want short", e)
	}
	if e := r.h.PressType(0); e != types.PressNone {
		t.Fatalf("second read: got %v, want none", e)
	}
}

func TestButton_HeldPressKeepsStart(t *testing.T) {
	r := newRig(t, 1)
	r.tick(50)

	r.down[0] = true
	r.tick(50)
	// Scan repeatedly while held; the press start must survive so the
	// eventual release still classifies long.
	for i := 0; i < 25; i++ {
		r.tick(50)
	}
	r.down[0] = false
	r.tick(50)
	if e := r.h.PressType(0); e != types.PressLong {
		t.Fatalf("got %v, want long after 1.3 s hold", e)
	}
}

func TestButton_OutOfRangeIsSafe(t *testing.T) {
	r := newRig(t, 2)
	for _, i := range []int{-1, 2, 99} {
		if r.h.IsPressed(i) {
			t.Fatalf("IsPressed(%d) = true", i)
		}
		if e := r.h.PressType(i); e != types.PressNone {
			t.Fatalf("PressType(%d) = %v", i, e)
		}
	}
}

func TestButton_ChannelsAreIndependent(t *testing.T) {
	r := newRig(t, 3)
	r.tick(50)

	r.down[0] = true
	r.down[2] = true
	r.tick(50)

	snap := r.h.Snapshot()
	if !snap.Pressed(0) || snap.Pressed(1) || !snap.Pressed(2) {
		t.Fatalf("snapshot mask = %#x", snap.Buttons)
	}

	// Short on 0, long on 2.
	r.down[0] = false
	r.tick(300)
	r.down[2] = false
	r.tick(900) // channel 2 held from t=100 to t=1300
	if e := r.h.PressType(0); e != types.PressShort {
		t.Fatalf("ch0: got %v, want short", e)
	}
	if e := r.h.PressType(1); e != types.PressNone {
		t.Fatalf("ch1: got %v, want none", e)
	}
	if e := r.h.PressType(2); e != types.PressLong {
		t.Fatalf("ch2: got %v, want long", e)
	}
}

func TestButton_MillisWraparound(t *testing.T) {
	r := newRig(t, 1)
	// Park the clock just before the uint32 boundary.
	r.clock.ms = ^uint32(0) - 100
	r.tick(50)

	r.down[0] = true
	r.tick(40) // press accepted at 0xFFFFFFF5-ish
	if !r.h.IsPressed(0) {
		t.Fatal("press not registered near wrap")
	}
	r.down[0] = false
	r.tick(400) // release lands after the wrap
	if e := r.h.PressType(0); e != types.PressShort {
		t.Fatalf("got %v, want short across the wrap", e)
	}
}

func TestButton_NewValidatesConfig(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error for empty pin list")
	}
	if _, err := New(Config{Pins: []int{1}}); err == nil {
		t.Fatal("expected error when no read source is given")
	}
}
