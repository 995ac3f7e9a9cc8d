// Package hal defines the capability contracts between the control layer and
// the platform: PWM outputs, digital pins, one-shot timers, and a monotonic
// clock. Implementations live in internal/platform; tests inject fakes.
package hal

import (
	"time"

	"drivecode-go/types"
)

// Output selects one of the two outputs of a PWM timer pair.
type Output uint8

const (
	OutputA Output = iota // channel A / forward
	OutputB               // channel B / reverse
)

// PWM drives a multi-unit PWM peripheral. Duty is percent of period.
// Init failure is fatal at the consumer layer; there is no partial-success
// contract.
type PWM interface {
	// Init configures unit/timer to the carrier frequency with both
	// outputs at zero duty.
	Init(unit, timer int, carrierHz uint32) error
	// Bind routes an output of unit/timer to a hardware pin.
	Bind(unit, timer int, out Output, pin int) error
	// SetDuty sets the duty cycle of one output, percent in [0, 100].
	SetDuty(unit, timer int, out Output, percent float32)
}

// DigitalOut is a minimal push-pull output capability.
type DigitalOut interface {
	ConfigureOutput(pin int) error
	Write(pin int, high bool)
}

// DigitalIn is a minimal input capability. Get returns the raw electrical
// level; callers apply their own pressed/active polarity.
type DigitalIn interface {
	ConfigureInput(pin int) error
	Get(pin int) bool
}

// OneShotTimer is a single re-armable one-shot. The callback supplied at
// creation runs on the timer service's context, not the caller's.
type OneShotTimer interface {
	// ArmOnce schedules one callback after d. Re-arming replaces any
	// pending expiry.
	ArmOnce(d time.Duration) error
	// Cancel discards any pending expiry. Idempotent; a callback already
	// past the point of no return must still be treated as stale by the
	// consumer.
	Cancel()
	// Close cancels and releases the timer. The timer must not be used
	// afterwards.
	Close() error
}

// TimerService creates one-shot timers.
type TimerService interface {
	Create(name string, fn func()) (OneShotTimer, error)
}

// Clock is a monotonic time source. Millis is a free-running 32-bit
// counter with wraparound subtraction semantics.
type Clock interface {
	Millis() uint32
	Micros() int64
}

// MotorDriver is the produced actuation contract. All methods except setup
// are non-blocking and callable from the control task.
type MotorDriver interface {
	SetSpeed(speed int, dir types.Dir)
	SetSpeedPercent(percent float32, dir types.Dir)
	SetFreewheel()
	SetHardBrake()
	SetSoftBrakePWM(level uint16)
	MaxPWMInput() int
}

// ButtonInput is the produced debounced-input contract.
type ButtonInput interface {
	Update()
	IsPressed(i int) bool
	PressType(i int) types.PressType
}
