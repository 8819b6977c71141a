// Package cabac provides a pure Go implementation of the binary
// arithmetic coder at the core of the H.264/HEVC CABAC family:
// context-adaptive, bit-exact with the reference RWTH Aachen
// SimpleCABAC implementation it is ported from.
//
// A Context is a single adaptive probability model. An Encoder codes
// a sequence of bins (context-adaptive, equiprobable, or
// fixed-probability) into a byte stream; a Decoder reverses the
// process bin for bin.
//
// Basic usage for encoding:
//
//	var buf bytes.Buffer
//	enc := cabac.NewEncoder(&buf, nil)
//	enc.Start()
//	ctx := cabac.NewContext()
//	ctx.Init(0, 20)
//	enc.EncodeBin(0, ctx)
//	enc.EncodeBin(1, ctx)
//	enc.EncodeBinEP(1)
//	enc.Finish()
//
// Basic usage for decoding:
//
//	dec := cabac.NewDecoder(bytes.NewReader(buf.Bytes()), nil)
//	dec.Start()
//	ctx := cabac.NewContext()
//	ctx.Init(0, 20)
//	bin, _ := dec.DecodeBin(ctx)
//	bin, _ = dec.DecodeBin(ctx)
//	bin, _ = dec.DecodeBinEP()
//	dec.Finish()
package cabac

import (
	"io"

	"github.com/mrjoshuak/go-cabac/internal/bio"
	"github.com/mrjoshuak/go-cabac/internal/entropy"
)

// MaxContexts bounds how many contexts a single ContextSet may hold.
const MaxContexts = entropy.MaxContexts

// Context is a single adaptive binary probability model.
type Context = entropy.Context

// Step is one recorded coding decision from a traced Context.
type Step = entropy.Step

// ContextSet is a fixed-size bank of Contexts, initialized together
// either by explicit (mps, state) pairs or by p0 probabilities.
type ContextSet = entropy.ContextSet

// Observer receives a notification after every context-coded bin
// (EncodeBin/DecodeBin), for tracing and statistics; it never affects
// the coded bitstream.
type Observer = entropy.Observer

// SlogObserver is an Observer that logs every bin through a
// *slog.Logger.
type SlogObserver = entropy.SlogObserver

// NewSlogObserver returns an Observer that logs through logger (or
// slog.Default() if logger is nil).
var NewSlogObserver = entropy.NewSlogObserver

// Sentinel errors surfaced by Encoder/Decoder operations.
var (
	ErrMalformedStream    = entropy.ErrMalformedStream
	ErrInvalidBin         = entropy.ErrInvalidBin
	ErrInvalidProbability = entropy.ErrInvalidProbability
)

// NewContext returns a freshly constructed Context in the
// equiprobable state (mps=0, state=0). Call Init or InitByProbability
// to seed it with a different starting point.
func NewContext() *Context {
	return &Context{}
}

// NewContextSet allocates a ContextSet of n contexts.
func NewContextSet(n int) (*ContextSet, error) {
	return entropy.NewContextSet(n)
}

// MapProbabilityToState converts p0, the probability of bin value 0,
// into the (mps, state) pair nearest to it in the context state
// machine.
func MapProbabilityToState(p0 float64) (mps, state int, err error) {
	return entropy.MapProbabilityToState(p0)
}

// Options holds construction-time knobs shared by NewEncoder and
// NewDecoder. Both are optional; a nil *Options (or DefaultOptions())
// gives the same behavior as passing no Observer.
type Options struct {
	// Observer, if non-nil, receives a notification after every bin
	// coded by EncodeBin or decoded by DecodeBin through the returned
	// Encoder/Decoder.
	Observer Observer
}

// DefaultOptions returns the zero-value Options: no observer attached.
func DefaultOptions() *Options {
	return &Options{}
}

// Encoder codes a sequence of bins into a byte stream.
type Encoder struct {
	sink *bio.Sink
	enc  *entropy.Encoder
}

// NewEncoder creates an Encoder that writes to w. Call Start before
// coding any bins. A nil opts behaves like DefaultOptions().
func NewEncoder(w io.Writer, opts *Options) *Encoder {
	if opts == nil {
		opts = DefaultOptions()
	}
	sink := bio.NewSink(w)
	e := &Encoder{sink: sink, enc: entropy.NewEncoder(sink)}
	if opts.Observer != nil {
		e.SetObserver(opts.Observer)
	}
	return e
}

// SetObserver attaches obs to receive a notification after every bin
// coded by EncodeBin.
func (e *Encoder) SetObserver(obs Observer) { e.enc.SetObserver(obs) }

// Start resets the encoder to its initial state. Call once before the
// first encode operation.
func (e *Encoder) Start() { e.enc.Start() }

// BinsCoded returns how many bins have been coded since Start.
func (e *Encoder) BinsCoded() uint64 { return e.enc.BinsCoded() }

// EncodeBin codes bin (0 or 1) against ctx and adapts ctx.
func (e *Encoder) EncodeBin(bin int, ctx *Context) error {
	return e.enc.EncodeBin(bin, ctx)
}

// EncodeBinEP codes bin under the fixed 50/50 equiprobable model.
func (e *Encoder) EncodeBinEP(bin int) error { return e.enc.EncodeBinEP(bin) }

// EncodeBinsEP codes the low n bits of value as a run of equiprobable
// bins, most-significant bit first.
func (e *Encoder) EncodeBinsEP(value uint32, n int) error {
	return e.enc.EncodeBinsEP(value, n)
}

// EncodeBinTrm codes the stream-terminating decision.
func (e *Encoder) EncodeBinTrm(bin int) error { return e.enc.EncodeBinTrm(bin) }

// EncodeBinProb codes bin against a fixed probability pct (1..99)
// without touching any Context.
func (e *Encoder) EncodeBinProb(bin int, pct int) error {
	return e.enc.EncodeBinProb(bin, pct)
}

// BitsWritten returns the total number of bits written so far: those
// flushed to the underlying writer plus any held partial byte.
func (e *Encoder) BitsWritten() uint64 { return e.sink.BitsWritten() }

// Finish codes the terminating bin and flushes all remaining state to
// the underlying writer.
func (e *Encoder) Finish() error { return e.enc.Finish() }

// Decoder decodes a sequence of bins from a byte stream, the mirror
// image of Encoder.
type Decoder struct {
	source *bio.Source
	dec    *entropy.Decoder
}

// NewDecoder creates a Decoder that reads from r. Call Start before
// decoding any bins. A nil opts behaves like DefaultOptions().
func NewDecoder(r io.Reader, opts *Options) *Decoder {
	if opts == nil {
		opts = DefaultOptions()
	}
	source := bio.NewSource(r)
	d := &Decoder{source: source, dec: entropy.NewDecoder(source)}
	if opts.Observer != nil {
		d.SetObserver(opts.Observer)
	}
	return d
}

// SetObserver attaches obs to receive a notification after every bin
// decoded by DecodeBin.
func (d *Decoder) SetObserver(obs Observer) { d.dec.SetObserver(obs) }

// Start primes the decoder by reading the first two bytes of the
// stream.
func (d *Decoder) Start() error { return d.dec.Start() }

// BinsCoded returns how many bins have been decoded since Start.
func (d *Decoder) BinsCoded() uint64 { return d.dec.BinsCoded() }

// DecodeBin decodes one bin against ctx, adapting ctx to match.
func (d *Decoder) DecodeBin(ctx *Context) (int, error) { return d.dec.DecodeBin(ctx) }

// DecodeBinEP decodes one bin under the fixed 50/50 equiprobable
// model.
func (d *Decoder) DecodeBinEP() (int, error) { return d.dec.DecodeBinEP() }

// DecodeBinsEP decodes n equiprobable bins as a single value,
// most-significant bit first.
func (d *Decoder) DecodeBinsEP(n int) (uint32, error) { return d.dec.DecodeBinsEP(n) }

// DecodeBinTrm decodes the stream-terminating decision.
func (d *Decoder) DecodeBinTrm() (int, error) { return d.dec.DecodeBinTrm() }

// DecodeBinProb decodes one bin against a fixed probability pct
// (1..99), the inverse of EncodeBinProb.
func (d *Decoder) DecodeBinProb(pct int) (int, error) { return d.dec.DecodeBinProb(pct) }

// Finish decodes the terminating bit and verifies the stream ended
// properly, returning ErrMalformedStream if not.
func (d *Decoder) Finish() error { return d.dec.Finish() }
