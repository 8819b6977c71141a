package entropy

import (
	"bytes"
	"testing"

	"github.com/mrjoshuak/go-cabac/internal/bio"
)

func newTestEncoder() (*Encoder, *bytes.Buffer) {
	var buf bytes.Buffer
	sink := bio.NewSink(&buf)
	return NewEncoder(sink), &buf
}

func TestEncoder_StartResetsRegisters(t *testing.T) {
	enc, _ := newTestEncoder()
	enc.Start()
	if enc.rng != 510 {
		t.Errorf("rng = %d, want 510", enc.rng)
	}
	if enc.low != 0 {
		t.Errorf("low = %d, want 0", enc.low)
	}
	if enc.bitsLeft != 23 {
		t.Errorf("bitsLeft = %d, want 23", enc.bitsLeft)
	}
	if enc.numBufferedBytes != 0 {
		t.Errorf("numBufferedBytes = %d, want 0", enc.numBufferedBytes)
	}
	if enc.bufferedByte != 0xff {
		t.Errorf("bufferedByte = %#x, want 0xff", enc.bufferedByte)
	}
	if enc.BinsCoded() != 0 {
		t.Errorf("BinsCoded() = %d, want 0", enc.BinsCoded())
	}
}

func TestEncoder_RangeInvariantAfterEachBin(t *testing.T) {
	enc, _ := newTestEncoder()
	enc.Start()
	var ctx Context
	ctx.Init(0, 20)

	bins := []int{0, 0, 1, 0, 1, 1, 1, 1, 0, 0, 1, 0, 1, 0, 1, 1, 0, 0, 0, 1}
	for i, b := range bins {
		if err := enc.EncodeBin(b, &ctx); err != nil {
			t.Fatalf("bin %d: EncodeBin: %v", i, err)
		}
		if enc.rng < 256 || enc.rng >= 1024 {
			t.Fatalf("bin %d: rng = %d, out of [256,1024)", i, enc.rng)
		}
	}
}

func TestEncoder_RejectsInvalidBin(t *testing.T) {
	enc, _ := newTestEncoder()
	enc.Start()
	var ctx Context
	ctx.Init(0, 0)
	if err := enc.EncodeBin(2, &ctx); err == nil {
		t.Error("expected error for bin=2")
	}
	if err := enc.EncodeBinEP(-1); err == nil {
		t.Error("expected error for bin=-1")
	}
	if err := enc.EncodeBinTrm(2); err == nil {
		t.Error("expected error for bin=2")
	}
}

func TestEncoder_EncodeBinsEPRejectsOutOfRangeWidth(t *testing.T) {
	enc, _ := newTestEncoder()
	enc.Start()
	if err := enc.EncodeBinsEP(0, -1); err == nil {
		t.Error("expected error for n=-1")
	}
	if err := enc.EncodeBinsEP(0, 33); err == nil {
		t.Error("expected error for n=33")
	}
}

func TestEncoder_EncodeBinProbDelegatesToEPAt50(t *testing.T) {
	enc, buf := newTestEncoder()
	enc.Start()
	if err := enc.EncodeBinProb(1, 50); err != nil {
		t.Fatal(err)
	}
	enc2, buf2 := newTestEncoder()
	enc2.Start()
	if err := enc2.EncodeBinEP(1); err != nil {
		t.Fatal(err)
	}
	if err := enc.Finish(); err != nil {
		t.Fatal(err)
	}
	if err := enc2.Finish(); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf.Bytes(), buf2.Bytes()) {
		t.Errorf("EncodeBinProb(bin,50) diverged from EncodeBinEP(bin): %x vs %x", buf.Bytes(), buf2.Bytes())
	}
}

func TestEncoder_EncodeBinProbRejectsOutOfRange(t *testing.T) {
	enc, _ := newTestEncoder()
	enc.Start()
	if err := enc.EncodeBinProb(0, 0); err == nil {
		t.Error("expected error for pct=0")
	}
	if err := enc.EncodeBinProb(0, 100); err == nil {
		t.Error("expected error for pct=100")
	}
}

func TestEncoder_FinishIsByteAligned(t *testing.T) {
	enc, buf := newTestEncoder()
	enc.Start()
	var ctx Context
	ctx.Init(0, 20)
	for _, b := range []int{0, 0, 1, 0, 1, 1} {
		if err := enc.EncodeBin(b, &ctx); err != nil {
			t.Fatal(err)
		}
	}
	if err := enc.Finish(); err != nil {
		t.Fatal(err)
	}
	if enc.sink.BitsWritten()%8 != 0 {
		t.Errorf("BitsWritten() = %d, not a multiple of 8", enc.sink.BitsWritten())
	}
	if buf.Len() == 0 {
		t.Error("expected non-empty output")
	}
}
