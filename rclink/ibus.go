// Package rclink decodes FlySky iBUS servo frames from an RC receiver and
// maps raw channel values onto calibrated axis/switch outputs.
package rclink

// An iBUS servo frame is 32 bytes: a 0x20 0x40 header, fourteen
// little-endian channel words in microseconds (nominally 1000..2000), and
// a little-endian checksum equal to 0xFFFF minus the sum of the first 30
// bytes.
const (
	FrameLen    = 32
	NumChannels = 14

	hdrLen = 0x20
	hdrCmd = 0x40
)

// Frame is one decoded servo frame.
type Frame struct {
	Channels [NumChannels]uint16
}

// Parser is a resynchronizing byte-stream decoder. Feed it raw UART bytes;
// it discards garbage until a header aligns and rejects frames whose
// checksum does not match.
type Parser struct {
	buf [FrameLen]byte
	n   int
}

// Push consumes one byte and reports a completed, checksum-valid frame.
func (p *Parser) Push(b byte) (Frame, bool) {
	switch p.n {
	case 0:
		if b != hdrLen {
			return Frame{}, false
		}
	case 1:
		if b != hdrCmd {
			// Resync: the byte may itself start a new header.
			p.n = 0
			if b == hdrLen {
				p.buf[0] = b
				p.n = 1
			}
			return Frame{}, false
		}
	}
	p.buf[p.n] = b
	p.n++
	if p.n < FrameLen {
		return Frame{}, false
	}
	p.n = 0

	if !checksumOK(p.buf[:]) {
		return Frame{}, false
	}
	var f Frame
	for i := 0; i < NumChannels; i++ {
		lo := p.buf[2+2*i]
		hi := p.buf[3+2*i]
		f.Channels[i] = uint16(lo) | uint16(hi)<<8
	}
	return f, true
}

// Feed consumes a chunk of bytes and returns every frame completed by it.
func (p *Parser) Feed(data []byte) []Frame {
	var out []Frame
	for _, b := range data {
		if f, ok := p.Push(b); ok {
			out = append(out, f)
		}
	}
	return out
}

func checksumOK(frame []byte) bool {
	sum := uint16(0xFFFF)
	for _, b := range frame[:FrameLen-2] {
		sum -= uint16(b)
	}
	got := uint16(frame[FrameLen-2]) | uint16(frame[FrameLen-1])<<8
	return sum == got
}
