// Package platform provides the hardware-facing implementations of the hal
// capability contracts: the one-shot timer service, host/sim peripherals
// for demos, Linux character-device GPIO, and the RP2 bring-up.
package platform

import (
	"sync"
	"time"

	"drivecode-go/errcode"
	"drivecode-go/hal"
)

// Timers returns the one-shot timer service backed by the runtime timer
// wheel. Callbacks fire on the runtime's timer goroutine, never on the
// arming caller's stack.
func Timers() hal.TimerService { return timerService{} }

type timerService struct{}

func (timerService) Create(name string, fn func()) (hal.OneShotTimer, error) {
	if fn == nil {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "platform.Timers", Msg: "nil callback"}
	}
	return &oneShot{name: name, fn: fn}, nil
}

// oneShot is generation-guarded: Cancel bumps the generation, so an expiry
// already dequeued by the runtime finds a stale generation and never
// invokes the callback. That makes Cancel effectively synchronous.
type oneShot struct {
	mu     sync.Mutex
	name   string
	fn     func()
	t      *time.Timer
	gen    uint64
	closed bool
}

func (o *oneShot) ArmOnce(d time.Duration) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return &errcode.E{C: errcode.TimerArmFailed, Op: "platform.ArmOnce", Msg: o.name + " closed"}
	}
	if d < 0 {
		d = 0
	}
	o.gen++
	g := o.gen
	if o.t != nil {
		o.t.Stop()
	}
	o.t = time.AfterFunc(d, func() {
		o.mu.Lock()
		stale := o.closed || o.gen != g
		o.mu.Unlock()
		if !stale {
			o.fn()
		}
	})
	return nil
}

func (o *oneShot) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.gen++
	if o.t != nil {
		o.t.Stop()
		o.t = nil
	}
}

func (o *oneShot) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.gen++
	o.closed = true
	if o.t != nil {
		o.t.Stop()
		o.t = nil
	}
	return nil
}
