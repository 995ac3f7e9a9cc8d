// Package hbridge drives a bidirectional DC motor through a dual-channel
// PWM H-bridge. Besides plain speed/direction and hard braking it
// synthesizes a fractional "soft brake" by dithering between brake and
// coast phases on a one-shot timer (see softbrake.go).
package hbridge

import (
	"sync"

	"drivecode-go/errcode"
	"drivecode-go/hal"
	"drivecode-go/types"
	"drivecode-go/x/mathx"
)

const (
	carrierHz = 20000 // PWM carrier frequency
	bitRes    = 10    // input resolution in bits

	// MaxInput is the highest speed / soft-brake count accepted by the
	// driver (1023 for the 10-bit input domain).
	MaxInput = 1<<bitRes - 1

	defaultBrakeLevel = 50 // soft-brake counts used before any SetSoftBrakePWM
	percentPerCount   = 100.0 / float32(MaxInput)
)

// NoEnablePin marks an absent enable line in WiringConfig.
const NoEnablePin = -1

// WiringConfig binds the driver to hardware outputs. PinA carries the
// forward signal, PinB the reverse one. EnablePin may be NoEnablePin.
type WiringConfig struct {
	PinA      int
	PinB      int
	EnablePin int
	Unit      int
	Timer     int
}

// Driver is the H-bridge actuation driver. It owns one one-shot timer for
// the soft-brake cycle, created lazily at setup and released by Close.
//
// Two contexts touch a Driver: the control task (the command methods) and
// the timer service (the dither callback). mu guards every shared field;
// a callback that fires after cancellation observes softActive == false
// and returns without output writes.
type Driver struct {
	pwm    hal.PWM
	pins   hal.DigitalOut
	timers hal.TimerService

	mu     sync.Mutex
	wiring WiringConfig
	beh    types.MotorBehavior
	useEn  bool
	enOn   bool // shadow of the enable line; suppresses redundant writes

	softPWM    uint16 // requested brake intensity, 0..MaxInput
	softLevel  float64
	softHz     int
	softActive bool
	softPhase  brakePhase
	brakeUs    int64
	coastUs    int64
	timer      hal.OneShotTimer
	lastErr    error
}

var _ hal.MotorDriver = (*Driver)(nil)

// New wires a driver to its platform capabilities. Call Setup before any
// command method.
func New(pwm hal.PWM, pins hal.DigitalOut, timers hal.TimerService) *Driver {
	return &Driver{
		pwm:     pwm,
		pins:    pins,
		timers:  timers,
		softPWM: defaultBrakeLevel,
	}
}

// Setup initializes the hardware with the default behavior profile.
// When no enable line is wired, HiZ coasting degrades to HiZ-awake: with
// no electrical means to power the stage down, "coast but stay awake" is
// the matching semantic.
func (d *Driver) Setup(w WiringConfig) error {
	beh := types.DefaultMotorBehavior()
	if w.EnablePin < 0 && beh.Freewheel == types.FreewheelHiZ {
		beh.Freewheel = types.FreewheelHiZAwake
	}
	return d.SetupWithBehavior(w, beh)
}

// SetupWithBehavior initializes the hardware with an explicit behavior
// profile. Peripheral failures are fatal: the driver performs no partial
// setup or rollback, because a half-configured motor stage is unsafe to
// operate.
func (d *Driver) SetupWithBehavior(w WiringConfig, beh types.MotorBehavior) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if beh.SoftBrakeHz <= 0 {
		beh.SoftBrakeHz = types.DefaultMotorBehavior().SoftBrakeHz
	}
	d.wiring = w
	d.beh = beh
	d.softHz = beh.SoftBrakeHz
	d.useEn = w.EnablePin >= 0

	if err := d.pwm.Bind(w.Unit, w.Timer, hal.OutputA, w.PinA); err != nil {
		return &errcode.E{C: errcode.PWMBindFailed, Op: "hbridge.Setup", Err: err}
	}
	if err := d.pwm.Bind(w.Unit, w.Timer, hal.OutputB, w.PinB); err != nil {
		return &errcode.E{C: errcode.PWMBindFailed, Op: "hbridge.Setup", Err: err}
	}
	if err := d.pwm.Init(w.Unit, w.Timer, carrierHz); err != nil {
		return &errcode.E{C: errcode.PWMInitFailed, Op: "hbridge.Setup", Err: err}
	}
	d.writeAB(0, 0)

	if d.useEn {
		if err := d.pins.ConfigureOutput(w.EnablePin); err != nil {
			return &errcode.E{C: errcode.UnknownPin, Op: "hbridge.Setup", Err: err}
		}
		d.setEnable(true)
	}

	// The soft-brake timer is created once and reused for the driver's
	// whole lifetime.
	if d.timer == nil {
		t, err := d.timers.Create("soft_brake", d.softBrakeTick)
		if err != nil {
			return &errcode.E{C: errcode.TimerCreateFail, Op: "hbridge.Setup", Err: err}
		}
		d.timer = t
	}
	return nil
}

// SetSpeed drives the motor at speed counts (clamped to 0..MaxInput) in
// the given direction. Zero speed is never "drive at 0% duty": it routes
// through the same idle path as freewheel / soft brake.
func (d *Driver) SetSpeed(speed int, dir types.Dir) {
	d.mu.Lock()
	defer d.mu.Unlock()

	clamped := mathx.Clamp(speed, 0, MaxInput)
	if clamped == 0 {
		d.startSoftBrake()
		return
	}

	d.stopSoftBrake()
	d.setEnable(true)

	duty := float32(clamped) * percentPerCount
	if dir == types.CW {
		d.writeAB(duty, 0)
	} else {
		d.writeAB(0, duty)
	}
}

// SetSpeedPercent drives at percent (0..100) of full speed.
func (d *Driver) SetSpeedPercent(percent float32, dir types.Dir) {
	percent = mathx.Clamp(percent, 0, 100)
	d.SetSpeed(int(percent/percentPerCount+0.5), dir)
}

// SetFreewheel coasts the motor according to the behavior profile.
func (d *Driver) SetFreewheel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.freewheel()
}

// SetHardBrake shorts both motor terminals for maximum dynamic braking.
func (d *Driver) SetHardBrake() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopSoftBrake()
	d.setEnable(true)
	d.writeAB(100, 100)
}

// SetSoftBrakePWM stores the requested brake intensity (clamped to
// 0..MaxInput). An active dither cycle picks the new durations up at its
// next phase boundary; there is no restart glitch.
func (d *Driver) SetSoftBrakePWM(level uint16) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.softPWM = uint16(mathx.Clamp(int(level), 0, MaxInput))
	if d.softActive {
		d.recomputeDurations()
	}
}

// MaxPWMInput returns the resolution ceiling for SetSpeed and
// SetSoftBrakePWM inputs.
func (d *Driver) MaxPWMInput() int { return MaxInput }

// Err returns the sticky error recorded by the dither machine (timer arm
// failure); nil while healthy. The driver is in a steady hard brake when
// this is non-nil.
func (d *Driver) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastErr
}

// Close stops the dither cycle and releases the soft-brake timer.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopSoftBrake()
	if d.timer == nil {
		return nil
	}
	t := d.timer
	d.timer = nil
	t.Cancel()
	return t.Close()
}

// freewheel applies the configured coast mode. Caller holds mu.
func (d *Driver) freewheel() {
	d.stopSoftBrake()
	switch d.beh.Freewheel {
	case types.FreewheelHiZ:
		d.setEnable(false)
		d.writeAB(0, 0)
	case types.FreewheelHiZAwake:
		d.setEnable(true)
		d.writeAB(0, 0)
	case types.FreewheelDitherBrake:
		d.softPWM = uint16(mathx.Clamp(int(d.beh.DitherLevel), 0, MaxInput))
		d.startSoftBrake()
	}
}

// setEnable writes the enable line through the shadow: matching requests
// are skipped so the line never sees redundant transitions. Caller holds mu.
func (d *Driver) setEnable(on bool) {
	if d.useEn && d.enOn != on {
		d.pins.Write(d.wiring.EnablePin, on)
		d.enOn = on
	}
}

// writeAB sets both output duties. Caller holds mu.
func (d *Driver) writeAB(aPercent, bPercent float32) {
	d.pwm.SetDuty(d.wiring.Unit, d.wiring.Timer, hal.OutputA, aPercent)
	d.pwm.SetDuty(d.wiring.Unit, d.wiring.Timer, hal.OutputB, bPercent)
}
