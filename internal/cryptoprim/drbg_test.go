package cryptoprim

import "testing"

type seqEntropy struct{ b byte }

func (s *seqEntropy) Read(buf []byte) error {
	for i := range buf {
		s.b++
		buf[i] = s.b
	}
	return nil
}

type failEntropy struct{}

func (failEntropy) Read(buf []byte) error { return errDRBGSeedFailed }

var errDRBGSeedFailed = drbgError("seed failed")

func TestDRBGDeterministicFromSameSeed(t *testing.T) {
	d1 := NewDRBG(&seqEntropy{})
	d2 := NewDRBG(&seqEntropy{})
	if !d1.IsOK() || !d2.IsOK() {
		t.Fatalf("NewDRBG: d1.Kind=%v d2.Kind=%v", d1.Kind, d2.Kind)
	}
	b1 := make([]byte, 64)
	b2 := make([]byte, 64)
	if _, err := d1.Value.Read(b1); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if _, err := d2.Value.Read(b2); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(b1) != string(b2) {
		t.Fatal("two DRBGs seeded with identical entropy must produce identical output")
	}
}

func TestDRBGAdvancesAcrossReads(t *testing.T) {
	d := NewDRBG(&seqEntropy{})
	if !d.IsOK() {
		t.Fatalf("NewDRBG: kind %v", d.Kind)
	}
	b1 := make([]byte, 16)
	b2 := make([]byte, 16)
	d.Value.Read(b1)
	d.Value.Read(b2)
	if string(b1) == string(b2) {
		t.Fatal("successive Read calls must not repeat output")
	}
}

func TestDRBGNotSeededReturnsError(t *testing.T) {
	var d DRBG
	if _, err := d.Read(make([]byte, 4)); err == nil {
		t.Fatal("expected error reading from an unseeded DRBG")
	}
}

func TestNewDRBGPropagatesEntropyFailure(t *testing.T) {
	r := NewDRBG(failEntropy{})
	if r.IsOK() {
		t.Fatal("expected Internal kind when the entropy source fails")
	}
}
