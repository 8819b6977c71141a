package entropy

import (
	"fmt"

	"github.com/mrjoshuak/go-cabac/internal/bio"
)

// Decoder is the mirror image of Encoder: it tracks a range/value pair
// instead of low/range, but follows the identical renormalization
// schedule, so it consumes exactly the bitstream an Encoder produces.
type Decoder struct {
	source *bio.Source

	rng        uint32
	value      uint32
	bitsNeeded int

	binsCoded uint64

	observer Observer
}

// NewDecoder creates a Decoder that reads from source. Start must be
// called before any decode operation.
func NewDecoder(source *bio.Source) *Decoder {
	return &Decoder{source: source, observer: noopObserver{}}
}

// SetObserver attaches obs to receive a notification after every bin
// decoded by DecodeBin. Passing nil restores the zero-overhead no-op
// observer.
func (d *Decoder) SetObserver(obs Observer) {
	if obs == nil {
		obs = noopObserver{}
	}
	d.observer = obs
}

// Start primes the decoder by reading the first two bytes of the
// stream. The source must be positioned at a byte boundary.
func (d *Decoder) Start() error {
	if d.source.NumBitsUntilByteAligned() != 0 {
		return fmt.Errorf("entropy: Decoder.Start: source is not byte aligned")
	}

	b0, err := d.source.ReadByte()
	if err != nil {
		return fmt.Errorf("entropy: Decoder.Start: %w", err)
	}
	b1, err := d.source.ReadByte()
	if err != nil {
		return fmt.Errorf("entropy: Decoder.Start: %w", err)
	}

	d.rng = 510
	d.bitsNeeded = -8
	d.value = uint32(b0)<<8 | uint32(b1)
	d.binsCoded = 0
	return nil
}

// BinsCoded returns the total number of bins decoded (through any
// primitive) since the last Start.
func (d *Decoder) BinsCoded() uint64 { return d.binsCoded }

func (d *Decoder) readByteInto(shift int) error {
	b, err := d.source.ReadByte()
	if err != nil {
		return fmt.Errorf("entropy: %w", err)
	}
	if shift >= 0 {
		d.value += uint32(b) << uint(shift)
	} else {
		d.value += uint32(b)
	}
	return nil
}

// DecodeBin decodes one bin against ctx, adapting ctx's state to
// match what the encoder did when it produced the bin.
func (d *Decoder) DecodeBin(ctx *Context) (int, error) {
	d.binsCoded++

	lps := LPSTable[ctx.State()][(d.rng>>6)-4]
	d.rng -= lps
	scaledRange := d.rng << 7

	var bin int
	if d.value < scaledRange {
		bin = ctx.MPS()
		ctx.updateMPS(bin)

		if scaledRange >= 256<<7 {
			d.observer.OnBin(bin, ctx)
			return bin, nil
		}

		d.rng = scaledRange >> 6
		d.value += d.value

		d.bitsNeeded++
		if d.bitsNeeded == 0 {
			d.bitsNeeded = -8
			if err := d.readByteInto(-1); err != nil {
				return 0, err
			}
		}
	} else {
		numBits := int(RenormTable[lps>>3])
		d.value = (d.value - scaledRange) << uint(numBits)
		d.rng = lps << uint(numBits)
		bin = 1 - ctx.MPS()
		ctx.updateLPS(bin)

		d.bitsNeeded += numBits
		if d.bitsNeeded >= 0 {
			if err := d.readByteInto(d.bitsNeeded); err != nil {
				return 0, err
			}
			d.bitsNeeded -= 8
		}
	}

	d.observer.OnBin(bin, ctx)
	return bin, nil
}

// DecodeBinEP decodes one bin under the fixed 50/50 equiprobable
// model.
func (d *Decoder) DecodeBinEP() (int, error) {
	d.binsCoded++

	d.value += d.value
	d.bitsNeeded++
	if d.bitsNeeded >= 0 {
		d.bitsNeeded = -8
		if err := d.readByteInto(-1); err != nil {
			return 0, err
		}
	}

	bin := 0
	scaledRange := d.rng << 7
	if d.value >= scaledRange {
		bin = 1
		d.value -= scaledRange
	}
	return bin, nil
}

// DecodeBinsEP decodes n (0..32) equiprobable bins as a single value,
// most-significant bit first, the inverse of EncodeBinsEP.
func (d *Decoder) DecodeBinsEP(n int) (uint32, error) {
	if n < 0 || n > 32 {
		return 0, fmt.Errorf("entropy: DecodeBinsEP: n=%d out of [0,32]", n)
	}
	d.binsCoded += uint64(n)

	var bins uint32
	for n > 8 {
		b, err := d.source.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("entropy: DecodeBinsEP: %w", err)
		}
		d.value = d.value<<8 + uint32(b)<<uint(8+d.bitsNeeded)

		scaledRange := d.rng << 15
		for i := 0; i < 8; i++ {
			bins += bins
			scaledRange >>= 1
			if d.value >= scaledRange {
				bins++
				d.value -= scaledRange
			}
		}
		n -= 8
	}

	d.bitsNeeded += n
	d.value <<= uint(n)
	if d.bitsNeeded >= 0 {
		if err := d.readByteInto(d.bitsNeeded); err != nil {
			return 0, err
		}
		d.bitsNeeded -= 8
	}

	scaledRange := d.rng << uint(n+7)
	for i := 0; i < n; i++ {
		bins += bins
		scaledRange >>= 1
		if d.value >= scaledRange {
			bins++
			d.value -= scaledRange
		}
	}
	return bins, nil
}

// DecodeBinTrm decodes the stream-terminating decision; Finish calls
// this and expects the result to be 1.
func (d *Decoder) DecodeBinTrm() (int, error) {
	d.binsCoded++
	d.rng -= 2
	scaledRange := d.rng << 7

	if d.value >= scaledRange {
		return 1, nil
	}

	if scaledRange < 256<<7 {
		d.rng = scaledRange >> 6
		d.value += d.value

		d.bitsNeeded++
		if d.bitsNeeded == 0 {
			d.bitsNeeded = -8
			if err := d.readByteInto(-1); err != nil {
				return 0, err
			}
		}
	}
	return 0, nil
}

// DecodeBinProb decodes one bin against a fixed, caller supplied
// probability pct (1..99), the inverse of EncodeBinProb.
func (d *Decoder) DecodeBinProb(pct int) (int, error) {
	if pct == 50 {
		return d.DecodeBinEP()
	}
	if pct <= 0 || pct >= 100 {
		return 0, ErrInvalidProbability
	}
	d.binsCoded++

	mps := 0
	if pct > 50 {
		mps = 1
	}
	probMPS := pct - 50
	if probMPS < 0 {
		probMPS = -probMPS
	}

	lps := LPSProbTable[probMPS-1][(d.rng>>6)&3]
	d.rng -= lps
	scaledRange := d.rng << 7

	var bin int
	if d.value < scaledRange {
		bin = mps
		if scaledRange >= 256<<7 {
			return bin, nil
		}
		d.rng = scaledRange >> 6
		d.value += d.value

		d.bitsNeeded++
		if d.bitsNeeded == 0 {
			d.bitsNeeded = -8
			if err := d.readByteInto(-1); err != nil {
				return 0, err
			}
		}
	} else {
		numBits := int(RenormTable[lps>>3])
		d.value = (d.value - scaledRange) << uint(numBits)
		d.rng = lps << uint(numBits)
		bin = 1 - mps

		d.bitsNeeded += numBits
		if d.bitsNeeded >= 0 {
			if err := d.readByteInto(d.bitsNeeded); err != nil {
				return 0, err
			}
			d.bitsNeeded -= 8
		}
	}
	return bin, nil
}

// Finish decodes the terminating bit and verifies the stream ended on
// a properly padded byte, returning ErrMalformedStream if not.
func (d *Decoder) Finish() error {
	bit, err := d.DecodeBinTrm()
	if err != nil {
		return err
	}
	if bit != 1 {
		return fmt.Errorf("%w: terminating bin decoded as 0", ErrMalformedStream)
	}

	last := d.source.LastByteRead()
	if (uint32(last)<<uint(8+d.bitsNeeded))&0xff != 0x80 {
		return fmt.Errorf("%w: bad end-of-stream alignment", ErrMalformedStream)
	}
	return nil
}
