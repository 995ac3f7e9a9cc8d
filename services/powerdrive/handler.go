// Package powerdrive turns the accelerator button into a slewed speed
// command: each tick it peeks the latest input snapshot, moves the current
// percent one step toward 0 or 100, and hands the result to the motor
// driver. Zero percent falls through to the driver's idle handling.
package powerdrive

import (
	"context"
	"sync"
	"time"

	"drivecode-go/bus"
	"drivecode-go/errcode"
	"drivecode-go/hal"
	"drivecode-go/services/input"
	"drivecode-go/types"
	"drivecode-go/x/ramp"
)

// TopicCommand carries the retained MotorCommand the handler last issued.
var TopicCommand = bus.T("drive", "command")

// Config wires a Handler.
type Config struct {
	Bus   *bus.Bus
	Motor hal.MotorDriver

	AccelChannel int       // button index treated as the accelerator
	Dir          types.Dir // drive direction
	RampStepPct  float32   // percent change per tick; default 2.0
	Interval     time.Duration
}

// Handler runs the drive loop. pct is shared between the loop goroutine
// and CurrentPercent callers, so it sits behind mu.
type Handler struct {
	cfg Config

	mu  sync.Mutex
	pct float32
}

// New validates the wiring and applies defaults.
func New(cfg Config) (*Handler, error) {
	if cfg.Bus == nil || cfg.Motor == nil {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "powerdrive.New", Msg: "bus and motor required"}
	}
	if cfg.RampStepPct <= 0 {
		cfg.RampStepPct = 2.0
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Millisecond
	}
	return &Handler{cfg: cfg}, nil
}

// Start launches the drive loop.
func (h *Handler) Start(ctx context.Context) {
	go h.loop(ctx)
}

func (h *Handler) loop(ctx context.Context) {
	tick := time.NewTicker(h.cfg.Interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			h.step()
		}
	}
}

// step advances the slew by one tick and issues the motor command.
func (h *Handler) step() {
	target := float32(0)
	if msg, ok := h.cfg.Bus.Latest(input.TopicState); ok {
		if s, ok := msg.Payload.(types.InputState); ok && s.Pressed(h.cfg.AccelChannel) {
			target = 100
		}
	}
	h.mu.Lock()
	h.pct = ramp.Toward(h.pct, target, h.cfg.RampStepPct)
	pct := h.pct
	h.mu.Unlock()

	h.cfg.Motor.SetSpeedPercent(pct, h.cfg.Dir)
	h.cfg.Bus.Publish(&bus.Message{
		Topic:    TopicCommand,
		Payload:  types.MotorCommand{Percent: pct, Dir: h.cfg.Dir},
		Retained: true,
	})
}

// CurrentPercent reports the present slewed command.
func (h *Handler) CurrentPercent() float32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pct
}
