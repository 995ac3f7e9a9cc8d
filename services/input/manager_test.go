package input

import (
	"context"
	"testing"
	"time"

	"drivecode-go/bus"
	"drivecode-go/hal/button"
	"drivecode-go/types"
)

type fakeClock struct{ ms uint32 }

func (c *fakeClock) Millis() uint32 { return c.ms }
func (c *fakeClock) Micros() int64  { return int64(c.ms) * 1000 }

type rig struct {
	m     *Manager
	b     *bus.Bus
	clock *fakeClock
	down  []bool
}

func newRig(t *testing.T) *rig {
	t.Helper()
	r := &rig{b: bus.New(8), clock: &fakeClock{}, down: make([]bool, 2)}
	h, err := button.New(button.Config{
		Pins:  []int{0, 1},
		Read:  func(pin int) bool { return r.down[pin] },
		Clock: r.clock,
	})
	if err != nil {
		t.Fatalf("button.New error: %v", err)
	}
	m, err := New(Config{Bus: r.b, Buttons: h})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	r.m = m
	return r
}

func (r *rig) scan(ms uint32) {
	r.clock.ms += ms
	r.m.step()
}

func latestState(t *testing.T, b *bus.Bus) types.InputState {
	t.Helper()
	m, ok := b.Latest(TopicState)
	if !ok {
		t.Fatal("no retained input state")
	}
	st, ok := m.Payload.(types.InputState)
	if !ok {
		t.Fatalf("payload type %T", m.Payload)
	}
	return st
}

func TestManager_PublishesRetainedSnapshot(t *testing.T) {
	r := newRig(t)
	r.scan(50)

	if st := latestState(t, r.b); st.Pressed(0) || st.Pressed(1) {
		t.Fatalf("idle snapshot = %#x", st.Buttons)
	}

	r.down[0] = true
	r.scan(50)
	st := latestState(t, r.b)
	if !st.Pressed(0) || st.Pressed(1) {
		t.Fatalf("snapshot = %#x", st.Buttons)
	}
	if st.StampMs != r.clock.ms {
		t.Fatalf("stamp = %d, clock = %d", st.StampMs, r.clock.ms)
	}
}

func TestManager_PublishesPressEvents(t *testing.T) {
	r := newRig(t)
	sub := r.b.Subscribe(ButtonTopic(0))
	defer sub.Unsubscribe()

	r.scan(50)
	r.down[0] = true
	r.scan(50)
	r.down[0] = false
	r.scan(300) // short press

	select {
	case m := <-sub.Channel():
		e, ok := m.Payload.(types.ButtonEvent)
		if !ok || e.Channel != 0 || e.Press != types.PressShort {
			t.Fatalf("event = %+v", m.Payload)
		}
	case <-time.After(50 * time.Millisecond):
		t.Fatal("no press event published")
	}

	// The event was consumed by the manager; another scan must not
	// republish it.
	r.scan(50)
	select {
	case m := <-sub.Channel():
		t.Fatalf("duplicate event: %+v", m.Payload)
	case <-time.After(10 * time.Millisecond):
	}
}

func TestManager_PublishesEdgeEvents(t *testing.T) {
	r := newRig(t)
	sub := r.b.Subscribe(EdgeTopic(1))
	defer sub.Unsubscribe()

	r.scan(50)
	r.down[1] = true
	r.scan(50)

	select {
	case m := <-sub.Channel():
		e, ok := m.Payload.(types.ButtonEdge)
		if !ok || e.Channel != 1 || !e.Pressed {
			t.Fatalf("edge = %+v", m.Payload)
		}
	case <-time.After(50 * time.Millisecond):
		t.Fatal("no press edge published")
	}

	// A scan with no level change publishes nothing.
	r.scan(50)
	select {
	case m := <-sub.Channel():
		t.Fatalf("edge without a transition: %+v", m.Payload)
	case <-time.After(10 * time.Millisecond):
	}

	r.down[1] = false
	r.scan(50)
	select {
	case m := <-sub.Channel():
		e, ok := m.Payload.(types.ButtonEdge)
		if !ok || e.Pressed {
			t.Fatalf("edge = %+v", m.Payload)
		}
	case <-time.After(50 * time.Millisecond):
		t.Fatal("no release edge published")
	}
}

func TestManager_StartSeedsSnapshot(t *testing.T) {
	r := newRig(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r.m.Start(ctx)

	deadline := time.Now().Add(time.Second)
	for {
		if _, ok := r.b.Latest(TopicState); ok {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("no seed snapshot after Start")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestManager_ValidatesConfig(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error for empty config")
	}
}
