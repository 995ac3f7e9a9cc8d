package types

// ------------------------
// Motor
// ------------------------

// Dir is the commanded rotation direction.
type Dir uint8

const (
	CW  Dir = iota // clockwise / forward
	CCW            // counterclockwise / reverse
)

// Opposite returns the other direction.
func (d Dir) Opposite() Dir {
	if d == CW {
		return CCW
	}
	return CW
}

func (d Dir) String() string {
	if d == CW {
		return "cw"
	}
	return "ccw"
}

// FreewheelMode selects what the driver does when commanded to coast.
type FreewheelMode uint8

const (
	// FreewheelHiZ coasts with outputs high-impedance; the power stage may sleep.
	FreewheelHiZ FreewheelMode = iota
	// FreewheelHiZAwake coasts but keeps the power stage enabled for responsiveness.
	FreewheelHiZAwake
	// FreewheelDitherBrake applies a light pulsed brake/coast drag instead of a pure coast.
	FreewheelDitherBrake
)

// MotorBehavior is the per-instance tuning applied at setup.
type MotorBehavior struct {
	Freewheel   FreewheelMode `json:"freewheel"`
	SoftBrakeHz int           `json:"soft_brake_hz"`
	DitherLevel uint16        `json:"dither_level"` // tiny duty used by FreewheelDitherBrake
}

// DefaultMotorBehavior returns the stock profile: HiZ coast, 300 Hz dither,
// dither level 30 counts (~3% of a 10-bit input).
func DefaultMotorBehavior() MotorBehavior {
	return MotorBehavior{Freewheel: FreewheelHiZ, SoftBrakeHz: 300, DitherLevel: 30}
}

// MotorCommand is the bus payload for a drive request.
type MotorCommand struct {
	Percent float32 `json:"percent"` // 0..100
	Dir     Dir     `json:"dir"`
}
