package entropy

import (
	"fmt"

	"github.com/mrjoshuak/go-cabac/internal/bio"
)

// Encoder is a binary arithmetic encoder operating on a low/range pair
// of registers, the same split-and-renormalize design the reference
// CABAC implementation uses. It writes through a *bio.Sink, which
// owns the actual byte buffering; the encoder only ever pushes fully
// resolved bits (and, on 0xFF runs, a count of buffered-but-unresolved
// bytes waiting on a carry) out to it.
type Encoder struct {
	sink *bio.Sink

	low      uint32
	rng      uint32
	bitsLeft int

	numBufferedBytes int
	bufferedByte     uint32

	binsCoded uint64

	observer Observer
}

// NewEncoder creates an Encoder that writes to sink. Start must be
// called before any encode operation.
func NewEncoder(sink *bio.Sink) *Encoder {
	return &Encoder{sink: sink, observer: noopObserver{}}
}

// SetObserver attaches obs to receive a notification after every bin
// coded by EncodeBin. Passing nil restores the zero-overhead no-op
// observer.
func (e *Encoder) SetObserver(obs Observer) {
	if obs == nil {
		obs = noopObserver{}
	}
	e.observer = obs
}

// Start resets the encoder's registers to their initial values. Call
// once before the first EncodeBin/EncodeBinEP/EncodeBinTrm call.
func (e *Encoder) Start() {
	e.low = 0
	e.rng = 510
	e.bitsLeft = 23
	e.numBufferedBytes = 0
	e.bufferedByte = 0xff
	e.binsCoded = 0
}

// BinsCoded returns the total number of bins coded (through any
// primitive) since the last Start.
func (e *Encoder) BinsCoded() uint64 { return e.binsCoded }

func checkBin(bin int) error {
	if bin != 0 && bin != 1 {
		return ErrInvalidBin
	}
	return nil
}

// EncodeBin codes bin, 0 or 1, against ctx and adapts ctx's state in
// response.
func (e *Encoder) EncodeBin(bin int, ctx *Context) error {
	if err := checkBin(bin); err != nil {
		return err
	}
	e.binsCoded++

	lps := LPSTable[ctx.State()][(e.rng>>6)&3]
	e.rng -= lps

	if bin != ctx.MPS() {
		numBits := int(RenormTable[lps>>3])
		e.low = (e.low + e.rng) << uint(numBits)
		e.rng = lps << uint(numBits)
		ctx.updateLPS(bin)
		e.bitsLeft -= numBits
	} else {
		ctx.updateMPS(bin)
		if e.rng >= 256 {
			e.observer.OnBin(bin, ctx)
			return nil
		}
		e.low <<= 1
		e.rng <<= 1
		e.bitsLeft--
	}

	e.observer.OnBin(bin, ctx)
	return e.testAndWriteOut()
}

// EncodeBinEP codes bin under the fixed 50/50 equiprobable model: no
// context, no adaptation, one bit of output per call (before
// buffering/carry bookkeeping).
func (e *Encoder) EncodeBinEP(bin int) error {
	if err := checkBin(bin); err != nil {
		return err
	}
	e.binsCoded++

	e.low <<= 1
	if bin != 0 {
		e.low += e.rng
	}
	e.bitsLeft--

	return e.testAndWriteOut()
}

// EncodeBinsEP codes the low n bits of value (n in [0,32]) as a run of
// equiprobable bins, most-significant bit first. It is equivalent to,
// but far cheaper than, n calls to EncodeBinEP.
func (e *Encoder) EncodeBinsEP(value uint32, n int) error {
	if n < 0 || n > 32 {
		return fmt.Errorf("entropy: EncodeBinsEP: n=%d out of [0,32]", n)
	}
	e.binsCoded += uint64(n)

	for n > 8 {
		n -= 8
		pattern := value >> uint(n)
		e.low <<= 8
		e.low += e.rng * pattern
		value -= pattern << uint(n)
		e.bitsLeft -= 8

		if err := e.testAndWriteOut(); err != nil {
			return err
		}
	}

	e.low <<= uint(n)
	e.low += e.rng * value
	e.bitsLeft -= n

	return e.testAndWriteOut()
}

// EncodeBinTrm codes the stream-terminating decision: bin=1 signals
// "this is the last bin", forcing a full renormalization; bin=0 keeps
// the stream open. Finish always ends by calling this with bin=1.
func (e *Encoder) EncodeBinTrm(bin int) error {
	if err := checkBin(bin); err != nil {
		return err
	}
	e.binsCoded++
	e.rng -= 2

	if bin != 0 {
		e.low += e.rng
		e.low <<= 7
		e.rng = 2 << 7
		e.bitsLeft -= 7
	} else if e.rng >= 256 {
		return nil
	} else {
		e.low <<= 1
		e.rng <<= 1
		e.bitsLeft--
	}

	return e.testAndWriteOut()
}

// EncodeBinProb codes bin against a fixed, caller supplied probability
// pct (1..99, the percent chance that the coded symbol is 1), without
// touching any Context. pct=50 behaves exactly like EncodeBinEP.
func (e *Encoder) EncodeBinProb(bin int, pct int) error {
	if err := checkBin(bin); err != nil {
		return err
	}
	if pct == 50 {
		return e.EncodeBinEP(bin)
	}
	if pct <= 0 || pct >= 100 {
		return ErrInvalidProbability
	}
	e.binsCoded++

	mps := 0
	if pct > 50 {
		mps = 1
	}
	probMPS := pct - 50
	if probMPS < 0 {
		probMPS = -probMPS
	}

	lps := LPSProbTable[probMPS-1][(e.rng>>6)&3]
	e.rng -= lps

	if bin != mps {
		numBits := int(RenormTable[lps>>3])
		e.low = (e.low + e.rng) << uint(numBits)
		e.rng = lps << uint(numBits)
		e.bitsLeft -= numBits
	} else if e.rng >= 256 {
		return nil
	} else {
		e.low <<= 1
		e.rng <<= 1
		e.bitsLeft--
	}

	return e.testAndWriteOut()
}

func (e *Encoder) testAndWriteOut() error {
	if e.bitsLeft < 12 {
		return e.writeOut()
	}
	return nil
}

// writeOut moves one resolved byte (the "lead byte") from the low
// register into the sink, handling the carry chain that a run of 0xFF
// lead bytes can trigger once a later byte resolves with a carry out.
func (e *Encoder) writeOut() error {
	leadByte := e.low >> uint(24-e.bitsLeft)
	e.bitsLeft += 8
	e.low &= 0xffffffff >> uint(e.bitsLeft)

	if leadByte == 0xff {
		e.numBufferedBytes++
		return nil
	}

	if e.numBufferedBytes > 0 {
		carry := leadByte >> 8
		b := e.bufferedByte + carry
		e.bufferedByte = leadByte & 0xff
		if err := e.sink.Write(b, 8); err != nil {
			return err
		}

		flushByte := (0xff + carry) & 0xff
		for e.numBufferedBytes > 1 {
			if err := e.sink.Write(flushByte, 8); err != nil {
				return err
			}
			e.numBufferedBytes--
		}
	} else {
		e.numBufferedBytes = 1
		e.bufferedByte = leadByte
	}
	return nil
}

// Finish codes the terminating bin and flushes every remaining
// register bit to the sink, ending on a byte-aligned boundary.
func (e *Encoder) Finish() error {
	if err := e.EncodeBinTrm(1); err != nil {
		return err
	}

	if e.low>>uint(32-e.bitsLeft) != 0 {
		if err := e.sink.Write(e.bufferedByte+1, 8); err != nil {
			return err
		}
		for e.numBufferedBytes > 1 {
			if err := e.sink.Write(0x00, 8); err != nil {
				return err
			}
			e.numBufferedBytes--
		}
		e.low -= 1 << uint(32-e.bitsLeft)
	} else {
		if e.numBufferedBytes > 0 {
			if err := e.sink.Write(e.bufferedByte, 8); err != nil {
				return err
			}
		}
		for e.numBufferedBytes > 1 {
			if err := e.sink.Write(0xff, 8); err != nil {
				return err
			}
			e.numBufferedBytes--
		}
	}

	if err := e.sink.Write(e.low>>8, uint(24-e.bitsLeft)); err != nil {
		return err
	}

	return e.sink.WriteByteAlignment()
}
