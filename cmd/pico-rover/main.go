//go:build rp2040 || rp2350

// pico-rover is the on-target firmware: throttle and direction come from
// an iBUS receiver on UART1, with the front-panel buttons as a fallback
// throttle when the radio is silent. Status goes out over USB CDC with
// println (no fmt on target).
package main

import (
	"context"
	"time"

	"drivecode-go/bus"
	"drivecode-go/hal/button"
	"drivecode-go/hal/hbridge"
	"drivecode-go/internal/platform"
	"drivecode-go/rclink"
	"drivecode-go/services/input"
	"drivecode-go/services/powerdrive"
	"drivecode-go/types"
)

const (
	throttlePin = 14
	reversePin  = 15

	motorPinA  = 2
	motorPinB  = 3
	motorPinEn = 4

	rcRxPin = 9
	rcTxPin = 8
)

func main() {
	time.Sleep(3 * time.Second)
	ctx := context.Background()

	println("[main] bootstrapping drive stack")

	pins := platform.RP2Pins{}
	pwm := platform.NewRP2PWM()
	b := bus.New(4)

	buttons, err := button.New(button.Config{
		Pins:   []int{throttlePin, reversePin},
		Inputs: pins,
	})
	if err != nil {
		println("[main] buttons:", err.Error())
		return
	}

	motor := hbridge.New(pwm, pins, platform.Timers())
	if err := motor.SetupWithBehavior(hbridge.WiringConfig{
		PinA:      motorPinA,
		PinB:      motorPinB,
		EnablePin: motorPinEn,
	}, types.MotorBehavior{
		Freewheel:   types.FreewheelDitherBrake,
		SoftBrakeHz: 300,
		DitherLevel: 30,
	}); err != nil {
		println("[main] motor:", err.Error())
		return
	}

	inMgr, err := input.New(input.Config{Bus: b, Buttons: buttons})
	if err != nil {
		println("[main] input:", err.Error())
		return
	}
	inMgr.Start(ctx)

	rc, rcErr := platform.OpenRCUART(1, rcRxPin, rcTxPin)
	if rcErr != nil {
		println("[main] rc uart:", rcErr.Error(), "(button fallback only)")
	}

	link := newCalibratedLink()

	if rc == nil {
		// No radio: the press-and-hold throttle loop runs on its own.
		drive, err := powerdrive.New(powerdrive.Config{
			Bus:          b,
			Motor:        motor,
			AccelChannel: 0,
			Dir:          types.CW,
		})
		if err != nil {
			println("[main] drive:", err.Error())
			return
		}
		drive.Start(ctx)
		select {}
	}

	buf := make([]byte, 64)
	lastFrame := time.Now()
	for {
		n, _ := rc.Read(buf)
		if n > 0 && link.Feed(buf[:n]) > 0 {
			lastFrame = time.Now()
		}

		if time.Since(lastFrame) > 500*time.Millisecond {
			// Failsafe: radio gone quiet, stop and wait.
			motor.SetSpeedPercent(0, types.CW)
			time.Sleep(10 * time.Millisecond)
			continue
		}

		throttle, ok := link.Axis("throttle")
		if !ok {
			time.Sleep(10 * time.Millisecond)
			continue
		}
		dir := types.CW
		if throttle < 0 {
			dir = types.CCW
			throttle = -throttle
		}
		motor.SetSpeedPercent(throttle, dir)

		if err := motor.Err(); err != nil {
			println("[main] motor fault:", err.Error())
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// newCalibratedLink sets up the transmitter calibration: channel 1 is the
// throttle stick (1000..2000 us, sprung to 1500) mapped onto -100..100.
func newCalibratedLink() *rclink.Link {
	l := rclink.NewLink()
	l.MapAxis("throttle", rclink.Axis{
		Ch:         1,
		RawMin:     1000,
		RawMax:     2000,
		RawCenter:  1500,
		DeadbandUs: 20,
		OutMin:     -100,
		OutMax:     100,
	})
	return l
}
