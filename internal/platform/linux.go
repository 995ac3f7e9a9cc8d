//go:build linux && !rp2040 && !rp2350

package platform

import (
	"sync"

	"github.com/warthog618/go-gpiocdev"

	"drivecode-go/errcode"
	"drivecode-go/hal"
)

// CdevPins drives GPIO through the Linux character device, for SBC
// deployments (Raspberry Pi class hardware driving an external H-bridge).
// Inputs are requested with the pull-up enabled to match the active-low
// button wiring.
type CdevPins struct {
	chip *gpiocdev.Chip

	mu    sync.Mutex
	lines map[int]*gpiocdev.Line
}

// NewCdevPins opens a GPIO chip; chipName defaults to "gpiochip0".
func NewCdevPins(chipName string) (*CdevPins, error) {
	if chipName == "" {
		chipName = "gpiochip0"
	}
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, &errcode.E{C: errcode.UnknownPin, Op: "platform.NewCdevPins", Err: err}
	}
	return &CdevPins{chip: chip, lines: make(map[int]*gpiocdev.Line)}, nil
}

func (p *CdevPins) ConfigureInput(pin int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if old, ok := p.lines[pin]; ok {
		old.Close()
	}
	line, err := p.chip.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		return &errcode.E{C: errcode.PinInUse, Op: "platform.ConfigureInput", Err: err}
	}
	p.lines[pin] = line
	return nil
}

func (p *CdevPins) ConfigureOutput(pin int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if old, ok := p.lines[pin]; ok {
		old.Close()
	}
	line, err := p.chip.RequestLine(pin, gpiocdev.AsOutput(0))
	if err != nil {
		return &errcode.E{C: errcode.PinInUse, Op: "platform.ConfigureOutput", Err: err}
	}
	p.lines[pin] = line
	return nil
}

// Get returns the raw electrical level of a configured input; an
// unconfigured pin reads low.
func (p *CdevPins) Get(pin int) bool {
	p.mu.Lock()
	line, ok := p.lines[pin]
	p.mu.Unlock()
	if !ok {
		return false
	}
	v, err := line.Value()
	return err == nil && v != 0
}

func (p *CdevPins) Write(pin int, high bool) {
	p.mu.Lock()
	line, ok := p.lines[pin]
	p.mu.Unlock()
	if !ok {
		return
	}
	v := 0
	if high {
		v = 1
	}
	_ = line.SetValue(v)
}

// Close releases every requested line and the chip.
func (p *CdevPins) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, line := range p.lines {
		line.Close()
	}
	p.lines = map[int]*gpiocdev.Line{}
	return p.chip.Close()
}

var (
	_ hal.DigitalIn  = (*CdevPins)(nil)
	_ hal.DigitalOut = (*CdevPins)(nil)
)
