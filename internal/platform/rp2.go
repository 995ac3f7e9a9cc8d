//go:build rp2040 || rp2350

package platform

import (
	"io"
	"machine"
	"sync"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"

	"drivecode-go/errcode"
	"drivecode-go/hal"
)

// -----------------------------------------------------------------------------
// PWM on the RP2 slices
// -----------------------------------------------------------------------------

type pwmCtrl interface {
	Configure(cfg machine.PWMConfig) error
	Top() uint32
	Set(channel uint8, value uint32)
}

// Select controller handle for a given slice number (0..7).
func pwmGroupBySlice(slice uint8) pwmCtrl {
	switch slice {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	default:
		return machine.PWM7
	}
}

type rp2Group struct {
	ctrl     pwmCtrl
	slice    uint8
	haveCtrl bool
	pins     map[hal.Output]machine.Pin
	chans    map[hal.Output]uint8
}

// RP2PWM implements hal.PWM on the RP2 PWM slices. A unit/timer pair
// addresses one slice; both bound pins must share it (A/B channels of the
// same slice, which the H-bridge wiring satisfies by using an even/odd
// pin pair).
type RP2PWM struct {
	mu     sync.Mutex
	groups map[[2]int]*rp2Group
}

func NewRP2PWM() *RP2PWM {
	return &RP2PWM{groups: make(map[[2]int]*rp2Group)}
}

func (p *RP2PWM) Bind(unit, timer int, out hal.Output, pin int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	g := p.groups[[2]int{unit, timer}]
	if g == nil {
		g = &rp2Group{
			pins:  make(map[hal.Output]machine.Pin),
			chans: make(map[hal.Output]uint8),
		}
		p.groups[[2]int{unit, timer}] = g
	}

	mp := machine.Pin(pin)
	sliceNum, err := machine.PWMPeripheral(mp)
	if err != nil {
		return &errcode.E{C: errcode.PWMBindFailed, Op: "platform.Bind", Err: err}
	}
	if g.haveCtrl && sliceNum != g.slice {
		return &errcode.E{C: errcode.PWMBindFailed, Op: "platform.Bind", Msg: "pins span PWM slices"}
	}
	if !g.haveCtrl {
		g.ctrl = pwmGroupBySlice(sliceNum)
		g.slice = sliceNum
		g.haveCtrl = true
	}
	g.pins[out] = mp
	// Channel within the slice: even pin => A(0), odd pin => B(1).
	g.chans[out] = uint8(pin & 1)
	return nil
}

func (p *RP2PWM) Init(unit, timer int, carrierHz uint32) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	g := p.groups[[2]int{unit, timer}]
	if g == nil || !g.haveCtrl {
		return &errcode.E{C: errcode.PWMInitFailed, Op: "platform.Init", Msg: "no bound outputs"}
	}
	if carrierHz == 0 {
		carrierHz = 1
	}
	period := uint64(1_000_000_000 / carrierHz)
	if err := g.ctrl.Configure(machine.PWMConfig{Period: period}); err != nil {
		return &errcode.E{C: errcode.PWMInitFailed, Op: "platform.Init", Err: err}
	}
	for out, pin := range g.pins {
		pin.Configure(machine.PinConfig{Mode: machine.PinPWM})
		g.ctrl.Set(g.chans[out], 0)
	}
	return nil
}

func (p *RP2PWM) SetDuty(unit, timer int, out hal.Output, percent float32) {
	p.mu.Lock()
	g := p.groups[[2]int{unit, timer}]
	p.mu.Unlock()
	if g == nil || !g.haveCtrl {
		return
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	ch, ok := g.chans[out]
	if !ok {
		return
	}
	g.ctrl.Set(ch, uint32(float64(g.ctrl.Top())*float64(percent)/100))
}

var _ hal.PWM = (*RP2PWM)(nil)

// -----------------------------------------------------------------------------
// GPIO
// -----------------------------------------------------------------------------

// RP2Pins maps logical pin numbers directly to machine.Pin(n) (Pico GP
// numbering). Inputs use the internal pull-up for active-low buttons.
type RP2Pins struct{}

func (RP2Pins) ConfigureInput(pin int) error {
	machine.Pin(pin).Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	return nil
}

func (RP2Pins) ConfigureOutput(pin int) error {
	machine.Pin(pin).Configure(machine.PinConfig{Mode: machine.PinOutput})
	return nil
}

func (RP2Pins) Get(pin int) bool { return machine.Pin(pin).Get() }

func (RP2Pins) Write(pin int, high bool) { machine.Pin(pin).Set(high) }

var (
	_ hal.DigitalIn  = RP2Pins{}
	_ hal.DigitalOut = RP2Pins{}
)

// -----------------------------------------------------------------------------
// RC receiver UART
// -----------------------------------------------------------------------------

// OpenRCUART configures the iBUS receiver UART (115200 8N1) and returns
// its read side for the rclink parser.
func OpenRCUART(n int, rxPin, txPin int) (io.Reader, error) {
	var hw *uartx.UART
	switch n {
	case 0:
		hw = uartx.UART0
	case 1:
		hw = uartx.UART1
	default:
		return nil, &errcode.E{C: errcode.PortNotConfigged, Op: "platform.OpenRCUART", Msg: "no such uart"}
	}
	if err := hw.Configure(uartx.UARTConfig{
		BaudRate: 115200,
		TX:       machine.Pin(txPin),
		RX:       machine.Pin(rxPin),
	}); err != nil {
		return nil, &errcode.E{C: errcode.PortNotConfigged, Op: "platform.OpenRCUART", Err: err}
	}
	return hw, nil
}
