//go:build !rp2040 && !rp2350

// rover-demo runs the whole drive stack against the host simulation:
// fake pins stand in for the buttons, the PWM is recorded in memory and
// the INA219 reads from a register-model I2C slave. It scripts a short
// press sequence on the throttle button and prints the ramped motor
// output alongside the battery telemetry.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"drivecode-go/bus"
	"drivecode-go/drivers/ina219"
	"drivecode-go/hal/button"
	"drivecode-go/hal/hbridge"
	"drivecode-go/internal/platform"
	"drivecode-go/services/input"
	"drivecode-go/services/powerdrive"
	"drivecode-go/types"
	"drivecode-go/x/timex"
)

const (
	throttlePin = 14
	reversePin  = 15

	motorPinA  = 2
	motorPinB  = 3
	motorPinEn = 4
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "rover-demo:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := bus.New(16)
	pins := platform.NewFakePins()
	pwm := platform.NewSimPWM()

	// Buttons are active low; idle level is pulled up.
	pins.Set(throttlePin, true)
	pins.Set(reversePin, true)

	fmt.Println("[main] wiring drive stack")

	buttons, err := button.New(button.Config{
		Pins:   []int{throttlePin, reversePin},
		Inputs: pins,
	})
	if err != nil {
		return err
	}

	motor := hbridge.New(pwm, pins, platform.Timers())
	if err := motor.Setup(hbridge.WiringConfig{
		PinA:      motorPinA,
		PinB:      motorPinB,
		EnablePin: motorPinEn,
	}); err != nil {
		return err
	}
	defer motor.Close()

	inMgr, err := input.New(input.Config{Bus: b, Buttons: buttons})
	if err != nil {
		return err
	}
	drive, err := powerdrive.New(powerdrive.Config{
		Bus:          b,
		Motor:        motor,
		AccelChannel: 0,
		Dir:          types.CW,
	})
	if err != nil {
		return err
	}

	inMgr.Start(ctx)
	drive.Start(ctx)

	battery, err := setupBattery()
	if err != nil {
		return err
	}
	go pollBattery(ctx, b, battery)

	// Log every classified press as it happens.
	presses := b.Subscribe(input.ButtonTopic(0))
	defer presses.Unsubscribe()
	go func() {
		for m := range presses.Channel() {
			if e, ok := m.Payload.(types.ButtonEvent); ok {
				fmt.Printf("[input] button %d: %s press\n", e.Channel, e.Press)
			}
		}
	}()

	// Scripted drive: press the throttle, hold, release, let the motor
	// ramp back down, then one long press.
	fmt.Println("[main] throttle down")
	pins.Set(throttlePin, false) // active low
	watch(drive, b, 800*time.Millisecond)

	fmt.Println("[main] throttle up")
	pins.Set(throttlePin, true)
	watch(drive, b, 800*time.Millisecond)

	fmt.Println("[main] long press")
	pins.Set(throttlePin, false)
	watch(drive, b, 1200*time.Millisecond)
	pins.Set(throttlePin, true)
	watch(drive, b, 400*time.Millisecond)

	if err := motor.Err(); err != nil {
		return err
	}
	fmt.Println("[main] done")
	return nil
}

// setupBattery seeds the simulated INA219 with a plausible 2S pack and
// returns the configured device.
func setupBattery() (*ina219.Device, error) {
	i2c := platform.NewHostI2C()
	i2c.SetRegister(0x02, 7400/4<<3) // 7.4 V bus
	i2c.SetRegister(0x01, 120)       // 1.2 mV shunt drop
	i2c.SetRegister(0x04, 3200)      // raw current counts

	dev := ina219.New(i2c)
	if err := dev.Configure(ina219.Config{}); err != nil {
		return nil, err
	}
	return &dev, nil
}

func pollBattery(ctx context.Context, b *bus.Bus, dev *ina219.Device) {
	tick := time.NewTicker(250 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			busMV, err := dev.BusMilliVolts()
			if err != nil {
				continue
			}
			shuntUV, _ := dev.ShuntMicroVolts()
			currentMA, _ := dev.CurrentMilliAmps()
			b.Publish(&bus.Message{
				Topic: bus.T("power", "battery"),
				Payload: types.PowerValue{
					BusMilliV:     busMV,
					ShuntMicroV:   shuntUV,
					CurrentMilliA: currentMA,
					StampMs:       timex.Millis(),
				},
				Retained: true,
			})
		}
	}
}

// watch prints the drive output a few times over the given window.
func watch(drive *powerdrive.Handler, b *bus.Bus, d time.Duration) {
	steps := int(d / (200 * time.Millisecond))
	if steps < 1 {
		steps = 1
	}
	for i := 0; i < steps; i++ {
		time.Sleep(200 * time.Millisecond)
		line := fmt.Sprintf("[drive] out=%.1f%%", drive.CurrentPercent())
		if m, ok := b.Latest(bus.T("power", "battery")); ok {
			if pv, ok := m.Payload.(types.PowerValue); ok {
				line += fmt.Sprintf(" bus=%dmV current=%dmA", pv.BusMilliV, pv.CurrentMilliA)
			}
		}
		if m, ok := b.Latest(input.TopicState); ok {
			if st, ok := m.Payload.(types.InputState); ok {
				line += fmt.Sprintf(" throttle=%v", st.Pressed(0))
			}
		}
		fmt.Println(line)
	}
}
