// Package bio provides the bit-level I/O primitives the arithmetic coder
// writes to and reads from: a MSB-first bit sink with byte-aligned
// buffering and carry-free alignment helpers, and the matching bit
// source. Neither type understands bins, contexts, or ranges — that
// belongs to the entropy package; bio only moves bits to and from a byte
// stream in the order the coder hands them over.
package bio

import (
	"fmt"
	"io"
)

// Sink accumulates bits MSB-first and flushes whole bytes to an
// underlying io.Writer as soon as they're complete. A partial byte is
// held across calls until WriteAlignZero or WriteByteAlignment pads it
// out, or until a later Write call completes it.
type Sink struct {
	w io.Writer

	// heldBits is MSB-aligned, big-endian: the bits not yet flushed
	// occupy its top numHeldBits positions.
	heldBits    byte
	numHeldBits uint

	numBitsWritten uint64
}

// NewSink creates a Sink that writes to w.
func NewSink(w io.Writer) *Sink {
	return &Sink{w: w}
}

// Write appends the n least-significant bits of bits to the stream,
// most-significant-bit first. n must be <= 32; if n < 32 the high
// (32-n) bits of bits must be zero.
func (s *Sink) Write(bits uint32, n uint) error {
	if n > 32 {
		return fmt.Errorf("bio: Write: n=%d exceeds 32 bits", n)
	}
	if n == 0 {
		return nil
	}

	// Any modulo-8 remainder of the total bit count can't be written
	// this time and is held until the next call.
	numTotalBits := n + s.numHeldBits
	nextNumHeldBits := numTotalBits & 7
	nextHeldBits := byte(bits << (8 - nextNumHeldBits))

	if numTotalBits>>3 == 0 {
		// Not enough bits accumulated yet; fold the new bits into
		// the held byte and wait.
		s.heldBits |= nextHeldBits
		s.numHeldBits = nextNumHeldBits
		return nil
	}

	// topword justifies the held bits so they sit above the msb of
	// the newly offered bits once both are combined.
	topword := (n - nextNumHeldBits) &^ 7
	writeBits := uint32(s.heldBits)<<topword | bits>>nextNumHeldBits

	numBytes := numTotalBits >> 3
	for i := numBytes; i >= 1; i-- {
		b := byte(writeBits >> ((i - 1) * 8))
		if _, err := s.w.Write([]byte{b}); err != nil {
			return fmt.Errorf("bio: Write: %w", err)
		}
		s.numBitsWritten += 8
	}

	s.heldBits = nextHeldBits
	s.numHeldBits = nextNumHeldBits
	return nil
}

// WriteAlignZero pads the stream with zero bits until it is byte
// aligned, flushing any held partial byte.
func (s *Sink) WriteAlignZero() error {
	if s.numHeldBits == 0 {
		return nil
	}
	if _, err := s.w.Write([]byte{s.heldBits}); err != nil {
		return fmt.Errorf("bio: WriteAlignZero: %w", err)
	}
	s.heldBits = 0
	s.numHeldBits = 0
	s.numBitsWritten += 8
	return nil
}

// WriteByteAlignment writes a single 1 bit and then pads with zeroes to
// the next byte boundary.
func (s *Sink) WriteByteAlignment() error {
	if err := s.Write(1, 1); err != nil {
		return err
	}
	return s.WriteAlignZero()
}

// BitsWritten returns the total number of bits committed to the
// underlying writer (including any still-held partial byte) since
// construction or the last ResetBitsWritten.
func (s *Sink) BitsWritten() uint64 {
	return s.numBitsWritten + uint64(s.numHeldBits)
}

// ResetBitsWritten zeroes the running bit counter without touching any
// buffered state.
func (s *Sink) ResetBitsWritten() {
	s.numBitsWritten = 0
}
