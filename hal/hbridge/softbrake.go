package hbridge

import (
	"math"
	"time"

	"drivecode-go/errcode"
	"drivecode-go/types"
	"drivecode-go/x/mathx"
)

// The soft brake approximates a fractional braking torque without analog
// control of the brake path: each dither period is split into a full-short
// brake phase and a coast phase, proportioned by the requested level.

const (
	microsPerSecond = 1e6

	// minPhaseUs floors every phase duration. Shorter one-shot slots are
	// audible and cost disproportionate scheduling overhead.
	minPhaseUs = 1500

	// Degenerate-level thresholds: below the low mark a cycle is pure
	// coast, above the high mark it is a steady hard brake. Neither needs
	// the timer.
	minDitherLevel = 0.001
	maxDitherLevel = 0.999
)

type brakePhase uint8

const (
	phaseCoast brakePhase = iota
	phaseBrake
)

// startSoftBrake enters the dither cycle for the current softPWM request,
// or short-circuits to the steady pattern for degenerate levels.
// Caller holds mu.
func (d *Driver) startSoftBrake() {
	d.recomputeDurations()

	if d.softLevel <= minDitherLevel {
		d.stopSoftBrake()
		if d.beh.Freewheel == types.FreewheelDitherBrake {
			// The configured dither level itself is too small to cycle;
			// coast with the stage awake instead of recursing.
			d.setEnable(true)
			d.writeAB(0, 0)
			return
		}
		d.freewheel()
		return
	}
	if d.softLevel >= maxDitherLevel {
		d.stopSoftBrake()
		d.setEnable(true)
		d.writeAB(100, 100)
		return
	}

	if !d.softActive {
		// Start in coast; the first timer expiry flips to brake.
		d.softPhase = phaseCoast
		d.softActive = true
		d.applyPhase(phaseCoast)
		d.armNext()
	}
}

// stopSoftBrake cancels the pending one-shot and clears the active flag.
// It deliberately leaves the outputs alone: the caller transitions to
// whatever pattern comes next. Caller holds mu.
func (d *Driver) stopSoftBrake() {
	if !d.softActive {
		return
	}
	d.timer.Cancel()
	d.softActive = false
}

// softBrakeTick runs on the timer service context. It flips the phase,
// applies it, and arms the next slot.
func (d *Driver) softBrakeTick() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.softActive {
		// Stale expiry that raced a cancellation; the actuator has
		// already been told to do something else.
		return
	}
	if d.softPhase == phaseCoast {
		d.softPhase = phaseBrake
	} else {
		d.softPhase = phaseCoast
	}
	d.applyPhase(d.softPhase)
	d.armNext()
}

// applyPhase writes the output pattern for phase p. Caller holds mu.
func (d *Driver) applyPhase(p brakePhase) {
	switch p {
	case phaseBrake:
		d.setEnable(true)
		d.writeAB(100, 100) // hard short = dynamic braking
	case phaseCoast:
		// EN stays wherever it is: toggling it at the dither rate flaps
		// the power stage and is audible.
		d.writeAB(0, 0)
	}
}

// armNext schedules the one-shot for the current phase's duration.
// Caller holds mu.
func (d *Driver) armNext() {
	if !d.softActive {
		return
	}
	dur := d.coastUs
	if d.softPhase == phaseBrake {
		dur = d.brakeUs
	}
	if dur < minPhaseUs {
		dur = minPhaseUs
	}
	if err := d.timer.ArmOnce(time.Duration(dur) * time.Microsecond); err != nil {
		// A failed arm mid-dither would strand the motor in whatever
		// phase it is in, with nothing left to resume the cycle.
		// Latch a steady hard brake and surface the error via Err.
		d.softActive = false
		d.setEnable(true)
		d.writeAB(100, 100)
		d.lastErr = &errcode.E{C: errcode.TimerArmFailed, Op: "hbridge.armNext", Err: err}
	}
}

// recomputeDurations derives the phase durations from the requested level.
// The results are cache: recomputation is idempotent for a given softPWM
// and softHz. Caller holds mu.
func (d *Driver) recomputeDurations() {
	d.softLevel = mathx.Clamp01(float64(d.softPWM) / float64(MaxInput))

	periodUs := microsPerSecond / float64(d.softHz)
	d.brakeUs = int64(math.Round(periodUs * d.softLevel))
	d.coastUs = int64(math.Round(periodUs)) - d.brakeUs

	if d.brakeUs > 0 && d.brakeUs < minPhaseUs {
		d.brakeUs = minPhaseUs
	}
	if d.coastUs > 0 && d.coastUs < minPhaseUs {
		d.coastUs = minPhaseUs
	}
}
