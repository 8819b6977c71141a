package entropy

import (
	"fmt"
	"math"
)

// MaxContexts bounds how many contexts a single ContextSet may hold.
// The reference implementation sized its context array statically;
// this is the same ceiling, enforced dynamically instead.
const MaxContexts = 1000

// minLPSProbability is the floor applied to an initializing probability
// before it is mapped to a state: below this point the state table has
// no finer state to express the extra confidence.
const minLPSProbability = 0.01875

// Context is a single adaptive binary probability model: a packed
// state (estimated LPS probability, bucketed into 63 levels) plus
// which symbol, 0 or 1, is currently the more probable one. Encoding
// or decoding a bin against a Context nudges it toward whichever
// symbol just occurred.
type Context struct {
	state byte // 0..63
	mps   byte // 0 or 1

	initState byte
	initMPS   byte

	binsCoded uint64

	trace          []Step
	tracing        bool
	transitionFrom byte
}

// Step records one coding decision against a Context, before and after
// its state transition, for offline inspection via Trace.
type Step struct {
	CodedBin    int
	StateBefore byte
	MPSBefore   byte
	StateAfter  byte
	MPSAfter    byte
}

// Init sets a Context's initial and current state directly.
func (c *Context) Init(mps, state int) error {
	if mps != 0 && mps != 1 {
		return fmt.Errorf("entropy: Context.Init: mps must be 0 or 1, got %d", mps)
	}
	if state < 0 || state > 63 {
		return fmt.Errorf("entropy: Context.Init: state must be in [0,63], got %d", state)
	}
	c.mps = byte(mps)
	c.state = byte(state)
	c.initMPS = c.mps
	c.initState = c.state
	return nil
}

// InitByProbability sets a Context's initial state from p0, the
// probability that bin 0 occurs, by mapping it onto the nearest state
// via the same probability-to-state formula the reference
// implementation uses for its MATLAB-driven initialization path.
func (c *Context) InitByProbability(p0 float64) error {
	mps, state, err := MapProbabilityToState(p0)
	if err != nil {
		return err
	}
	return c.Init(mps, state)
}

// MapProbabilityToState converts p0, the probability of bin value 0,
// into a (mps, state) pair: whichever symbol is more likely becomes
// mps, and the LPS probability is bucketed logarithmically onto
// state in [0,62], floored at minLPSProbability so the state table
// always has a representable entry.
func MapProbabilityToState(p0 float64) (mps, state int, err error) {
	if p0 < 0.0 || p0 > 1.0 {
		return 0, 0, fmt.Errorf("entropy: MapProbabilityToState: p0=%v out of [0,1]", p0)
	}

	var pLPS float64
	if p0 >= 0.5 {
		pLPS = 1.0 - p0
		mps = 0
	} else {
		pLPS = p0
		mps = 1
	}
	if pLPS < minLPSProbability {
		pLPS = minLPSProbability
	}

	s := int(math.Round(62 * math.Log10(2.0*pLPS) / math.Log10(2.0*minLPSProbability)))
	state = clipInt(s, 0, 62)
	return mps, state, nil
}

func clipInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// State returns the context's current state index, 0..63.
func (c *Context) State() int { return int(c.state) }

// MPS returns the context's current most-probable-symbol bit, 0 or 1.
func (c *Context) MPS() int { return int(c.mps) }

// InitialState returns the state the context was last Init'd with.
func (c *Context) InitialState() int { return int(c.initState) }

// InitialMPS returns the mps the context was last Init'd with.
func (c *Context) InitialMPS() int { return int(c.initMPS) }

// packedState returns the table index (state<<1)|mps used to look up
// NextStateMPS/NextStateLPS/EntropyBits.
func (c *Context) packedState() byte {
	return c.state<<1 | c.mps
}

func (c *Context) recordBefore() {
	if c.tracing {
		c.transitionFrom = c.packedState()
	}
}

func (c *Context) recordAfter(bin int) {
	if !c.tracing {
		return
	}
	before := c.transitionFrom
	c.trace = append(c.trace, Step{
		CodedBin:    bin,
		StateBefore: before >> 1,
		MPSBefore:   before & 1,
		StateAfter:  c.state,
		MPSAfter:    c.mps,
	})
}

// updateMPS nudges the state toward more confidence after an MPS was
// coded; the MPS bit itself never changes on this path.
func (c *Context) updateMPS(bin int) {
	c.recordBefore()
	c.state = NextStateMPS[c.packedState()]
	c.binsCoded++
	c.recordAfter(bin)
}

// updateLPS nudges the state toward less confidence after an LPS was
// coded. State 0 is the one point where the model has lost all
// confidence in its current MPS guess, so it additionally flips MPS
// before applying the transition.
func (c *Context) updateLPS(bin int) {
	c.recordBefore()
	if c.state == 0 {
		c.mps ^= 1
	}
	c.state = NextStateLPS[c.packedState()]
	c.binsCoded++
	c.recordAfter(bin)
}

// BinsCoded returns how many bins have been coded against this Context
// since it was constructed (Init does not reset the counter).
func (c *Context) BinsCoded() uint64 { return c.binsCoded }

// EntropyBits returns the estimated fractional-bit cost, in 1/256-bit
// fixed point, of coding bin against the context's current state. This
// is a statistics-only figure; it has no bearing on the coded
// bitstream.
func (c *Context) EntropyBits(bin int) uint16 {
	idx := c.packedState()
	if bin != c.MPS() {
		idx |= 1
	} else {
		idx &^= 1
	}
	return EntropyBits[idx]
}

// EnableTracing turns on Step recording for this Context. Tracing has
// a per-bin cost (an append to a growing slice) and is meant for
// debugging and conformance analysis, not production coding paths.
func (c *Context) EnableTracing() {
	c.tracing = true
}

// Trace returns the recorded Steps since tracing was enabled. Returns
// nil if EnableTracing was never called.
func (c *Context) Trace() []Step {
	return c.trace
}

// ContextSet owns a fixed-size bank of Contexts, mirroring the
// reference implementation's MATLAB-driven context array: callers
// initialize every slot up front, either all by explicit (mps, state)
// pairs or all by p0 probability, then index into the set while
// coding.
type ContextSet struct {
	contexts []Context
}

// NewContextSet allocates a ContextSet of n contexts, each defaulting
// to the equiprobable state (mps=0, state=0) until Init is called.
func NewContextSet(n int) (*ContextSet, error) {
	if n <= 0 || n > MaxContexts {
		return nil, fmt.Errorf("entropy: NewContextSet: n=%d out of [1,%d]", n, MaxContexts)
	}
	return &ContextSet{contexts: make([]Context, n)}, nil
}

// Len returns the number of contexts in the set.
func (cs *ContextSet) Len() int { return len(cs.contexts) }

// Context returns a pointer to the idx'th context in the set.
func (cs *ContextSet) Context(idx int) (*Context, error) {
	if idx < 0 || idx >= len(cs.contexts) {
		return nil, fmt.Errorf("entropy: ContextSet.Context: index %d out of range [0,%d)", idx, len(cs.contexts))
	}
	return &cs.contexts[idx], nil
}

// InitByState initializes every context in the set from a caller
// supplied (mps, state) pair, one per context, in index order.
func (cs *ContextSet) InitByState(pairs [][2]int) error {
	if len(pairs) != len(cs.contexts) {
		return fmt.Errorf("entropy: ContextSet.InitByState: got %d pairs, want %d", len(pairs), len(cs.contexts))
	}
	for i, p := range pairs {
		if err := cs.contexts[i].Init(p[0], p[1]); err != nil {
			return fmt.Errorf("entropy: ContextSet.InitByState: context %d: %w", i, err)
		}
	}
	return nil
}

// InitByProbability initializes every context in the set from a
// caller-supplied p0 probability, one per context, in index order.
func (cs *ContextSet) InitByProbability(probs []float64) error {
	if len(probs) != len(cs.contexts) {
		return fmt.Errorf("entropy: ContextSet.InitByProbability: got %d probabilities, want %d", len(probs), len(cs.contexts))
	}
	for i, p := range probs {
		if err := cs.contexts[i].InitByProbability(p); err != nil {
			return fmt.Errorf("entropy: ContextSet.InitByProbability: context %d: %w", i, err)
		}
	}
	return nil
}
