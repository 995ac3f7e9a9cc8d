// Package input owns the button handler: it paces the debounce scan and
// publishes the results on the bus — a retained InputState snapshot per
// tick plus a press event per classified release.
package input

import (
	"context"
	"strconv"
	"time"

	"drivecode-go/bus"
	"drivecode-go/errcode"
	"drivecode-go/hal/button"
	"drivecode-go/types"
)

// TopicState carries the retained InputState snapshot.
var TopicState = bus.T("input", "state")

// ButtonTopic is where channel i's classified press events are published.
func ButtonTopic(i int) bus.Topic {
	return bus.T("input", "button", strconv.Itoa(i), "press")
}

// EdgeTopic is where channel i's debounced level changes are published.
func EdgeTopic(i int) bus.Topic {
	return bus.T("input", "button", strconv.Itoa(i), "edge")
}

// Config wires a Manager. Interval defaults to the 10 ms polling cadence.
type Config struct {
	Bus      *bus.Bus
	Buttons  *button.Handler
	Interval time.Duration
}

// Manager runs the input scan loop.
type Manager struct {
	cfg  Config
	prev types.InputState
}

// New validates the wiring and applies defaults.
func New(cfg Config) (*Manager, error) {
	if cfg.Bus == nil || cfg.Buttons == nil {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "input.New", Msg: "bus and buttons required"}
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Millisecond
	}
	return &Manager{cfg: cfg}, nil
}

// Start launches the scan loop.
func (m *Manager) Start(ctx context.Context) {
	go m.loop(ctx)
}

func (m *Manager) loop(ctx context.Context) {
	// Seed the bus so consumers have a valid first snapshot.
	m.prev = m.publishSnapshot()

	tick := time.NewTicker(m.cfg.Interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			m.step()
		}
	}
}

// step advances the debouncer once and publishes its observations.
func (m *Manager) step() {
	b := m.cfg.Buttons
	b.Update()
	snap := m.publishSnapshot()

	types.ForEachEdge(m.prev, snap, b.Len(), func(i int, pressed bool) {
		m.cfg.Bus.Publish(&bus.Message{
			Topic:   EdgeTopic(i),
			Payload: types.ButtonEdge{Channel: i, Pressed: pressed, StampMs: snap.StampMs},
		})
	})
	m.prev = snap

	for i := 0; i < b.Len(); i++ {
		if e := b.PressType(i); e != types.PressNone {
			m.cfg.Bus.Publish(&bus.Message{
				Topic:   ButtonTopic(i),
				Payload: types.ButtonEvent{Channel: i, Press: e, StampMs: snap.StampMs},
			})
		}
	}
}

func (m *Manager) publishSnapshot() types.InputState {
	snap := m.cfg.Buttons.Snapshot()
	m.cfg.Bus.Publish(&bus.Message{Topic: TopicState, Payload: snap, Retained: true})
	return snap
}
