// Package ina219 provides a driver for the INA219 high-side current/voltage
// monitor, used here for pack telemetry on the battery rail.
//
// The register map is big-endian. Configure writes the configuration and
// calibration registers; afterwards BusMilliVolts / ShuntMicroVolts /
// CurrentMilliAmps read the converted values with integer arithmetic only.
//
// NOTE: I2C.Tx MUST perform a write followed by a repeated-start read when
// both w and r are provided, without releasing the bus.
package ina219

import (
	"errors"

	"tinygo.org/x/drivers"
)

// Address is the default 7-bit I2C address (A0=A1=GND).
const Address = 0x40

// Registers.
const (
	regConfig      = 0x00
	regShuntVolt   = 0x01
	regBusVolt     = 0x02
	regPower       = 0x03
	regCurrent     = 0x04
	regCalibration = 0x05
)

// 32 V bus range, /8 shunt gain (±320 mV), 12-bit conversions, continuous
// shunt+bus mode.
const configDefault = 0x399F

// Errors returned by the driver.
var (
	ErrNotConfigured = errors.New("ina219: not configured")
	ErrOverflow      = errors.New("ina219: math overflow flag set")
)

// Config holds the electrical design parameters.
type Config struct {
	// Address defaults to 0x40 if zero.
	Address uint16
	// ShuntMilliOhm is the sense resistor value; default 100 (0.1 Ω).
	ShuntMilliOhm uint32
	// MaxCurrentMilliA scales the current LSB; default 3200 mA.
	MaxCurrentMilliA uint32
}

// Device wraps an I2C connection to an INA219.
type Device struct {
	bus     drivers.I2C
	Address uint16

	currentLSBuA uint32 // µA per count of the current register
	buf          [3]byte
}

// New creates a device handle. The I2C bus must already be configured.
func New(bus drivers.I2C) Device {
	return Device{bus: bus, Address: Address}
}

// Configure applies the design parameters and programs the configuration
// and calibration registers.
func (d *Device) Configure(cfg Config) error {
	if cfg.Address != 0 {
		d.Address = cfg.Address
	}
	if cfg.ShuntMilliOhm == 0 {
		cfg.ShuntMilliOhm = 100
	}
	if cfg.MaxCurrentMilliA == 0 {
		cfg.MaxCurrentMilliA = 3200
	}

	// current LSB in µA; 32767 counts span the maximum expected current.
	d.currentLSBuA = cfg.MaxCurrentMilliA * 1000 / 32767
	if d.currentLSBuA == 0 {
		d.currentLSBuA = 1
	}
	// cal = 0.04096 / (currentLSB[A] * Rshunt[Ω]), in integer µA·mΩ terms.
	// Small current/shunt combinations overflow the 16-bit register;
	// clamp rather than truncate (the part saturates at full scale).
	cal32 := 40960000 / (d.currentLSBuA * cfg.ShuntMilliOhm)
	if cal32 > 0xFFFF {
		cal32 = 0xFFFF
	}
	cal := uint16(cal32)

	if err := d.writeRegister(regConfig, configDefault); err != nil {
		return err
	}
	return d.writeRegister(regCalibration, cal)
}

// BusMilliVolts reads the bus (pack) voltage in mV.
func (d *Device) BusMilliVolts() (int32, error) {
	raw, err := d.readRegister(regBusVolt)
	if err != nil {
		return 0, err
	}
	if raw&0x01 != 0 {
		return 0, ErrOverflow
	}
	// Bits 15..3, LSB 4 mV.
	return int32(raw>>3) * 4, nil
}

// ShuntMicroVolts reads the shunt drop in µV (signed).
func (d *Device) ShuntMicroVolts() (int32, error) {
	raw, err := d.readRegister(regShuntVolt)
	if err != nil {
		return 0, err
	}
	return int32(int16(raw)) * 10, nil
}

// CurrentMilliAmps reads the calibrated current in mA (signed; positive is
// discharge through the shunt).
func (d *Device) CurrentMilliAmps() (int32, error) {
	if d.currentLSBuA == 0 {
		return 0, ErrNotConfigured
	}
	raw, err := d.readRegister(regCurrent)
	if err != nil {
		return 0, err
	}
	return int32(int16(raw)) * int32(d.currentLSBuA) / 1000, nil
}

func (d *Device) readRegister(reg uint8) (uint16, error) {
	d.buf[0] = reg
	if err := d.bus.Tx(d.Address, d.buf[:1], d.buf[1:3]); err != nil {
		return 0, err
	}
	return uint16(d.buf[1])<<8 | uint16(d.buf[2]), nil
}

func (d *Device) writeRegister(reg uint8, val uint16) error {
	d.buf[0] = reg
	d.buf[1] = byte(val >> 8)
	d.buf[2] = byte(val)
	return d.bus.Tx(d.Address, d.buf[:3], nil)
}
