//go:build !rp2040 && !rp2350

package platform

import (
	"sync"

	"drivecode-go/hal"
)

// ----------------------------- GPIO (host) -----------------------------------

// FakePins simulates a GPIO bank for host demos. Set drives an input level
// from the outside, standing in for the electrical world.
type FakePins struct {
	mu     sync.RWMutex
	levels map[int]bool
}

func NewFakePins() *FakePins {
	return &FakePins{levels: make(map[int]bool)}
}

func (p *FakePins) ConfigureInput(pin int) error  { return nil }
func (p *FakePins) ConfigureOutput(pin int) error { return nil }

func (p *FakePins) Get(pin int) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.levels[pin]
}

func (p *FakePins) Write(pin int, high bool) {
	p.mu.Lock()
	p.levels[pin] = high
	p.mu.Unlock()
}

// Set drives the simulated electrical level of a pin.
func (p *FakePins) Set(pin int, high bool) { p.Write(pin, high) }

var (
	_ hal.DigitalIn  = (*FakePins)(nil)
	_ hal.DigitalOut = (*FakePins)(nil)
)

// ----------------------------- PWM (host) ------------------------------------

type pwmKey struct {
	unit, timer int
	out         hal.Output
}

// SimPWM records duty writes so demos (and anything else running on a
// host) can observe the output pattern the driver produces.
type SimPWM struct {
	mu    sync.RWMutex
	duty  map[pwmKey]float32
	bound map[pwmKey]int
	freq  map[[2]int]uint32
}

func NewSimPWM() *SimPWM {
	return &SimPWM{
		duty:  make(map[pwmKey]float32),
		bound: make(map[pwmKey]int),
		freq:  make(map[[2]int]uint32),
	}
}

func (s *SimPWM) Init(unit, timer int, carrierHz uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.freq[[2]int{unit, timer}] = carrierHz
	s.duty[pwmKey{unit, timer, hal.OutputA}] = 0
	s.duty[pwmKey{unit, timer, hal.OutputB}] = 0
	return nil
}

func (s *SimPWM) Bind(unit, timer int, out hal.Output, pin int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bound[pwmKey{unit, timer, out}] = pin
	return nil
}

func (s *SimPWM) SetDuty(unit, timer int, out hal.Output, percent float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.duty[pwmKey{unit, timer, out}] = percent
}

// Duty reads back the last duty written to an output.
func (s *SimPWM) Duty(unit, timer int, out hal.Output) float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.duty[pwmKey{unit, timer, out}]
}

var _ hal.PWM = (*SimPWM)(nil)

// ----------------------------- I2C (host) ------------------------------------

// HostI2C emulates a register-mapped I2C slave: a one-byte write selects a
// register, a three-byte write stores a big-endian word, and a read
// returns the selected register. Seed registers with SetRegister.
type HostI2C struct {
	mu   sync.Mutex
	regs map[uint8]uint16
	sel  uint8
}

func NewHostI2C() *HostI2C {
	return &HostI2C{regs: make(map[uint8]uint16)}
}

// SetRegister seeds a register value, standing in for the device's
// conversion engine.
func (h *HostI2C) SetRegister(reg uint8, val uint16) {
	h.mu.Lock()
	h.regs[reg] = val
	h.mu.Unlock()
}

func (h *HostI2C) Tx(addr uint16, w, r []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(w) >= 1 {
		h.sel = w[0]
	}
	if len(w) >= 3 {
		h.regs[h.sel] = uint16(w[1])<<8 | uint16(w[2])
	}
	if len(r) >= 2 {
		v := h.regs[h.sel]
		r[0] = byte(v >> 8)
		r[1] = byte(v)
	}
	return nil
}
