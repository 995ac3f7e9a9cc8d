package rclink

import "drivecode-go/x/mathx"

// Axis calibrates one proportional channel: a raw microsecond range with a
// center and deadband, mapped onto an output range.
type Axis struct {
	Ch         int
	RawMin     uint16
	RawMax     uint16
	RawCenter  uint16
	DeadbandUs uint16
	OutMin     float32
	OutMax     float32
}

// Map converts a raw channel value to the calibrated output. Raw values
// within the deadband around the center snap to the center's output.
func (a Axis) Map(raw uint16) float32 {
	r := raw
	if int(r) >= int(a.RawCenter)-int(a.DeadbandUs) && int(r) <= int(a.RawCenter)+int(a.DeadbandUs) {
		r = a.RawCenter
	}
	return mathx.Rescale(float32(r), float32(a.RawMin), float32(a.RawMax), a.OutMin, a.OutMax)
}

// Switch calibrates one discrete channel: raw levels snap to the nearest
// entry and yield the value at the same position.
type Switch struct {
	Ch     int
	Levels []uint16
	Values []float32
}

// Map returns the value of the level nearest to raw; 0 when the switch is
// misconfigured (level/value length mismatch or empty).
func (s Switch) Map(raw uint16) float32 {
	if len(s.Levels) == 0 || len(s.Levels) != len(s.Values) {
		return 0
	}
	best := 0
	bestDist := distance(raw, s.Levels[0])
	for i := 1; i < len(s.Levels); i++ {
		if d := distance(raw, s.Levels[i]); d < bestDist {
			best, bestDist = i, d
		}
	}
	return s.Values[best]
}

func distance(a, b uint16) uint16 {
	if a > b {
		return a - b
	}
	return b - a
}

// Link combines a Parser with named axis/switch calibrations and holds the
// most recent frame.
type Link struct {
	parser   Parser
	frame    Frame
	haveRx   bool
	axes     map[string]Axis
	switches map[string]Switch
}

// NewLink returns an empty link; add calibrations with MapAxis/MapSwitch.
func NewLink() *Link {
	return &Link{
		axes:     make(map[string]Axis),
		switches: make(map[string]Switch),
	}
}

func (l *Link) MapAxis(name string, a Axis)     { l.axes[name] = a }
func (l *Link) MapSwitch(name string, s Switch) { l.switches[name] = s }

// Feed pushes raw receiver bytes through the parser and returns how many
// complete frames were absorbed. The newest frame wins.
func (l *Link) Feed(data []byte) int {
	frames := l.parser.Feed(data)
	if len(frames) > 0 {
		l.frame = frames[len(frames)-1]
		l.haveRx = true
	}
	return len(frames)
}

// Axis returns the calibrated value of a named axis; ok is false until a
// frame has been received or when the name is unknown.
func (l *Link) Axis(name string) (float32, bool) {
	a, ok := l.axes[name]
	if !ok || !l.haveRx || a.Ch < 0 || a.Ch >= NumChannels {
		return 0, false
	}
	return a.Map(l.frame.Channels[a.Ch]), true
}

// Switch returns the calibrated value of a named switch; ok is false until
// a frame has been received or when the name is unknown.
func (l *Link) Switch(name string) (float32, bool) {
	s, ok := l.switches[name]
	if !ok || !l.haveRx || s.Ch < 0 || s.Ch >= NumChannels {
		return 0, false
	}
	return s.Map(l.frame.Channels[s.Ch]), true
}

// Raw returns the last raw value of channel ch (0 when out of range).
func (l *Link) Raw(ch int) uint16 {
	if ch < 0 || ch >= NumChannels {
		return 0
	}
	return l.frame.Channels[ch]
}
