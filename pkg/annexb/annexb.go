// Package annexb splits H.264 Annex-B byte streams into NAL units.
//
// Units are views into the caller's buffer. Nothing is copied and every byte is
// visited once, so splitting a stream costs a single linear pass.
package annexb

import (
	"iter"

	"github.com/bluenviron/mediacommon/v2/pkg/codecs/h264"
)

// minZeroRun is the number of 0x00 bytes that must precede a 0x01 for it to
// count as a start code.
const minZeroRun = 2

// Unit is one NAL unit together with its start-code prefix.
type Unit struct {
	// Offset is the position of the first prefix byte in the original stream.
	Offset int
	// Data runs from the first 0x00 of the prefix up to the next unit (or the
	// end of the stream). It aliases the original stream.
	Data []byte
}

// End returns the exclusive end offset of the unit in the original stream.
func (u Unit) End() int {
	return u.Offset + len(u.Data)
}

// PrefixLen returns the length of the start code prefix, including any extra
// leading zeros.
func (u Unit) PrefixLen() int {
	for i, b := range u.Data {
		if b != 0 {
			return i + 1
		}
	}
	return len(u.Data)
}

// Payload returns the unit without its start code prefix.
func (u Unit) Payload() []byte {
	return u.Data[u.PrefixLen():]
}

// Type returns the NAL unit type from the header byte, or 0 when the unit
// carries no payload.
func (u Unit) Type() h264.NALUType {
	p := u.Payload()
	if len(p) == 0 {
		return 0
	}
	return h264.NALUType(p[0] & 0x1F)
}

// IsVCL reports whether the unit carries slice data.
func (u Unit) IsVCL() bool {
	t := u.Type()
	return t >= h264.NALUTypeNonIDR && t <= h264.NALUTypeIDR
}

// IsParameterSet reports whether the unit is an SPS or PPS.
func (u Unit) IsParameterSet() bool {
	t := u.Type()
	return t == h264.NALUTypeSPS || t == h264.NALUTypePPS
}

// Scanner yields the units of a stream one at a time.
type Scanner struct {
	stream []byte

	pos     int // next byte to examine
	zeros   int // length of the current run of 0x00 bytes
	start   int // start of the pending unit
	started bool
	done    bool
}

// NewScanner returns a Scanner positioned at the beginning of stream.
func NewScanner(stream []byte) *Scanner {
	return &Scanner{stream: stream}
}

// Reset rewinds the scanner to the beginning of its stream.
func (s *Scanner) Reset() {
	*s = Scanner{stream: s.stream}
}

// Next returns the next unit. The second result is false once the stream is
// exhausted, or immediately when the stream holds no start code.
func (s *Scanner) Next() (Unit, bool) {
	if s.done {
		return Unit{}, false
	}

	if !s.started {
		first, ok := s.nextStart()
		if !ok {
			s.done = true
			return Unit{}, false
		}
		s.start = first
		s.started = true
	}

	begin := s.start
	end, ok := s.nextStart()
	if !ok {
		end = len(s.stream)
		s.done = true
	}
	s.start = end

	return Unit{
		Offset: begin,
		Data:   s.stream[begin:end:end],
	}, true
}

// nextStart advances to the next start code and returns the offset of the
// first zero of its prefix.
func (s *Scanner) nextStart() (int, bool) {
	for ; s.pos < len(s.stream); s.pos++ {
		switch b := s.stream[s.pos]; {
		case b == 0x00:
			s.zeros++
		case b == 0x01 && s.zeros >= minZeroRun:
			begin := s.pos - s.zeros
			s.zeros = 0
			s.pos++
			return begin, true
		default:
			s.zeros = 0
		}
	}
	return 0, false
}

// Units returns a sequence over the units of stream. Each iteration starts
// from the beginning of the stream.
func Units(stream []byte) iter.Seq[Unit] {
	return func(yield func(Unit) bool) {
		s := NewScanner(stream)
		for {
			u, ok := s.Next()
			if !ok || !yield(u) {
				return
			}
		}
	}
}

// Split returns all units of stream.
func Split(stream []byte) []Unit {
	var units []Unit
	for u := range Units(stream) {
		units = append(units, u)
	}
	return units
}
