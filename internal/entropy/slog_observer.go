package entropy

import "log/slog"

// SlogObserver logs every coded bin at debug level through a
// *slog.Logger, attributing each record with the bin value and,
// when available, the context's post-update state. Intended for
// conformance debugging: attach it only when tracing is wanted, since
// every bin becomes a log call.
type SlogObserver struct {
	Logger *slog.Logger
}

// NewSlogObserver returns an Observer that logs through logger. A nil
// logger falls back to slog.Default().
func NewSlogObserver(logger *slog.Logger) *SlogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogObserver{Logger: logger}
}

func (o *SlogObserver) OnBin(bin int, ctx *Context) {
	if ctx == nil {
		o.Logger.Debug("cabac bin coded", "bin", bin, "equiprobable", true)
		return
	}
	o.Logger.Debug("cabac bin coded",
		"bin", bin,
		"state", ctx.State(),
		"mps", ctx.MPS(),
		"binsCoded", ctx.BinsCoded(),
	)
}
