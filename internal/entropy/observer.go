package entropy

// Observer receives a notification after every context-coded bin
// (Encoder.EncodeBin / Decoder.DecodeBin) of an Encoder or Decoder that
// has one attached via SetObserver. Equiprobable, terminating and
// fixed-probability bins produce no notification. It exists purely for
// offline inspection (tracing, rate estimation); no Observer
// implementation may affect the coded bitstream.
type Observer interface {
	// OnBin is called with the bin value just coded/decoded and the
	// Context it was coded against, after that Context's state has
	// already been updated.
	OnBin(bin int, ctx *Context)
}

// noopObserver is the zero-cost default: its method is trivially
// inlinable and never allocates.
type noopObserver struct{}

func (noopObserver) OnBin(bin int, ctx *Context) {}
