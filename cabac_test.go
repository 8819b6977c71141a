package cabac

import (
	"bytes"
	"testing"
)

// TestScenarios_SimpleCABAC exercises the literal encode/decode
// scenarios used to validate the reference implementation: adaptive
// bins on a default and a seeded context, equiprobable bins (single
// and batched), a second adaptive context, the fixed-probability
// extension, and the terminating-bin/alignment check.
func TestScenarios_SimpleCABAC(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf, nil)
	enc.Start()

	ctx0 := NewContext()
	if err := ctx0.Init(0, 20); err != nil {
		t.Fatal(err)
	}
	for _, b := range []int{0, 0, 1, 0, 1, 1} {
		if err := enc.EncodeBin(b, ctx0); err != nil {
			t.Fatal(err)
		}
	}

	epBins := []int{1, 0, 0, 1, 0}
	for _, b := range epBins {
		if err := enc.EncodeBinEP(b); err != nil {
			t.Fatal(err)
		}
	}
	if err := enc.EncodeBinsEP(18, 5); err != nil {
		t.Fatal(err)
	}

	ctx1 := NewContext()
	for _, b := range []int{1, 1, 0, 1, 1, 1} {
		if err := enc.EncodeBin(b, ctx1); err != nil {
			t.Fatal(err)
		}
	}

	for _, b := range []int{1, 0, 0} {
		if err := enc.EncodeBinProb(b, 10); err != nil {
			t.Fatal(err)
		}
	}
	for _, b := range []int{1, 1, 0} {
		if err := enc.EncodeBinProb(b, 30); err != nil {
			t.Fatal(err)
		}
	}

	if err := enc.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if enc.BitsWritten()%8 != 0 {
		t.Errorf("BitsWritten() = %d, not byte aligned", enc.BitsWritten())
	}

	data := buf.Bytes()

	dec := NewDecoder(bytes.NewReader(data), nil)
	if err := dec.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	dctx0 := NewContext()
	if err := dctx0.Init(0, 20); err != nil {
		t.Fatal(err)
	}
	for i, want := range []int{0, 0, 1, 0, 1, 1} {
		got, err := dec.DecodeBin(dctx0)
		if err != nil {
			t.Fatalf("ctx0 bin %d: %v", i, err)
		}
		if got != want {
			t.Fatalf("ctx0 bin %d: got %d, want %d", i, got, want)
		}
	}

	for i, want := range epBins {
		got, err := dec.DecodeBinEP()
		if err != nil {
			t.Fatalf("ep bin %d: %v", i, err)
		}
		if got != want {
			t.Fatalf("ep bin %d: got %d, want %d", i, got, want)
		}
	}
	value, err := dec.DecodeBinsEP(5)
	if err != nil {
		t.Fatalf("DecodeBinsEP: %v", err)
	}
	if value != 18 {
		t.Fatalf("DecodeBinsEP(5) = %d, want 18", value)
	}

	dctx1 := NewContext()
	for i, want := range []int{1, 1, 0, 1, 1, 1} {
		got, err := dec.DecodeBin(dctx1)
		if err != nil {
			t.Fatalf("ctx1 bin %d: %v", i, err)
		}
		if got != want {
			t.Fatalf("ctx1 bin %d: got %d, want %d", i, got, want)
		}
	}
	if ctx1.State() != dctx1.State() || ctx1.MPS() != dctx1.MPS() {
		t.Fatalf("ctx1 final state mismatch: encoder (%d,%d), decoder (%d,%d)",
			ctx1.State(), ctx1.MPS(), dctx1.State(), dctx1.MPS())
	}

	wantProb := []int{1, 0, 0, 1, 1, 0}
	probs := []int{10, 10, 10, 30, 30, 30}
	for i, p := range probs {
		got, err := dec.DecodeBinProb(p)
		if err != nil {
			t.Fatalf("prob bin %d: %v", i, err)
		}
		if got != wantProb[i] {
			t.Fatalf("prob bin %d: got %d, want %d", i, got, wantProb[i])
		}
	}

	if err := dec.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
}

func TestFinish_FailsOnCorruptedTrailingByte(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf, nil)
	enc.Start()
	ctx := NewContext()
	if err := ctx.Init(0, 20); err != nil {
		t.Fatal(err)
	}
	for _, b := range []int{0, 0, 1, 0, 1, 1} {
		if err := enc.EncodeBin(b, ctx); err != nil {
			t.Fatal(err)
		}
	}
	if err := enc.Finish(); err != nil {
		t.Fatal(err)
	}

	data := append([]byte(nil), buf.Bytes()...)
	data[len(data)-1] ^= 0xff

	dec := NewDecoder(bytes.NewReader(data), nil)
	if err := dec.Start(); err != nil {
		t.Fatal(err)
	}
	dctx := NewContext()
	if err := dctx.Init(0, 20); err != nil {
		t.Fatal(err)
	}
	for range []int{0, 0, 1, 0, 1, 1} {
		if _, err := dec.DecodeBin(dctx); err != nil {
			t.Fatal(err)
		}
	}
	if err := dec.Finish(); err == nil {
		t.Error("expected Finish to fail on a corrupted trailing byte")
	}
}

func TestStreamTooShort(t *testing.T) {
	dec := NewDecoder(bytes.NewReader([]byte{0x42}), nil)
	if err := dec.Start(); err == nil {
		t.Error("expected Start to fail on a 1-byte stream")
	}
}

func TestContextSet_SeedsAndCodesIndependently(t *testing.T) {
	cs, err := NewContextSet(2)
	if err != nil {
		t.Fatal(err)
	}
	if err := cs.InitByState([][2]int{{0, 20}, {1, 10}}); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	enc := NewEncoder(&buf, nil)
	enc.Start()

	c0, err := cs.Context(0)
	if err != nil {
		t.Fatal(err)
	}
	c1, err := cs.Context(1)
	if err != nil {
		t.Fatal(err)
	}

	seq0 := []int{0, 1, 0, 1}
	seq1 := []int{1, 1, 0, 0}
	for i := range seq0 {
		if err := enc.EncodeBin(seq0[i], c0); err != nil {
			t.Fatal(err)
		}
		if err := enc.EncodeBin(seq1[i], c1); err != nil {
			t.Fatal(err)
		}
	}
	if err := enc.Finish(); err != nil {
		t.Fatal(err)
	}

	dcs, err := NewContextSet(2)
	if err != nil {
		t.Fatal(err)
	}
	if err := dcs.InitByState([][2]int{{0, 20}, {1, 10}}); err != nil {
		t.Fatal(err)
	}
	dc0, _ := dcs.Context(0)
	dc1, _ := dcs.Context(1)

	dec := NewDecoder(bytes.NewReader(buf.Bytes()), nil)
	if err := dec.Start(); err != nil {
		t.Fatal(err)
	}
	for i := range seq0 {
		got0, err := dec.DecodeBin(dc0)
		if err != nil || got0 != seq0[i] {
			t.Fatalf("seq0[%d]: got (%d,%v), want %d", i, got0, err, seq0[i])
		}
		got1, err := dec.DecodeBin(dc1)
		if err != nil || got1 != seq1[i] {
			t.Fatalf("seq1[%d]: got (%d,%v), want %d", i, got1, err, seq1[i])
		}
	}
	if err := dec.Finish(); err != nil {
		t.Fatal(err)
	}
}
