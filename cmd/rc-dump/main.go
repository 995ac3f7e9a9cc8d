//go:build !rp2040 && !rp2350

// rc-dump attaches to an iBUS receiver on a host serial port and prints
// decoded channel frames. Handy for checking transmitter trims and
// endpoint calibration before wiring the link into the drive stack.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/tarm/serial"

	"drivecode-go/rclink"
)

func main() {
	device := flag.String("device", "/dev/ttyUSB0", "serial device the receiver is attached to")
	baud := flag.Int("baud", 115200, "receiver baud rate")
	flag.Parse()

	port, err := serial.OpenPort(&serial.Config{
		Name:        *device,
		Baud:        *baud,
		ReadTimeout: 500 * time.Millisecond,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "rc-dump:", err)
		os.Exit(1)
	}
	defer port.Close()

	var parser rclink.Parser
	buf := make([]byte, 64)
	frames := 0

	for {
		n, err := port.Read(buf)
		if err != nil {
			fmt.Fprintln(os.Stderr, "rc-dump: read:", err)
			os.Exit(1)
		}
		for _, f := range parser.Feed(buf[:n]) {
			frames++
			// Print at a readable rate; iBUS frames arrive ~every 7 ms.
			if frames%20 != 0 {
				continue
			}
			fmt.Printf("frame %6d:", frames)
			for _, ch := range f.Channels {
				fmt.Printf(" %4d", ch)
			}
			fmt.Println()
		}
	}
}
