package bio

import (
	"fmt"
	"io"
)

// Source hands the arithmetic decoder one byte at a time. It keeps no
// bit-level buffer of its own: the decoder's range/value registers do
// that bookkeeping, and only ever pull whole bytes from here.
type Source struct {
	r            io.Reader
	lastByteRead byte
}

// NewSource creates a Source that reads from r.
func NewSource(r io.Reader) *Source {
	return &Source{r: r}
}

// ReadByte returns the next byte of the stream.
func (s *Source) ReadByte() (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(s.r, b[:]); err != nil {
		return 0, fmt.Errorf("bio: ReadByte: %w", err)
	}
	s.lastByteRead = b[0]
	return b[0], nil
}

// NumBitsUntilByteAligned reports how many bits remain before the next
// read would land on a byte boundary. A Source only ever hands out
// whole bytes, so it is always already aligned.
func (s *Source) NumBitsUntilByteAligned() uint {
	return 0
}

// LastByteRead returns the most recent byte returned by ReadByte, used
// by the decoder's end-of-stream alignment check.
func (s *Source) LastByteRead() byte {
	return s.lastByteRead
}
