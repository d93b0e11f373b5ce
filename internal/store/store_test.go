package store

import (
	"testing"

	"cardkey/internal/flash"
)

type fakeEntropy struct{ b byte }

func (f *fakeEntropy) Read(buf []byte) error {
	for i := range buf {
		f.b++
		buf[i] = f.b
	}
	return nil
}

func newTestStore(t *testing.T) (*Store, *fakeEntropy) {
	t.Helper()
	f := flash.NewSim(MinFlashSize)
	ent := &fakeEntropy{}
	s, err := Mount(f, ent, MinFlashSize)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	return s, ent
}

func TestFormatSetsMagicAndRemountIsIdempotent(t *testing.T) {
	f := flash.NewSim(MinFlashSize)
	ent := &fakeEntropy{}
	s, err := Mount(f, ent, MinFlashSize)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if !s.Formatted() {
		t.Fatal("expected formatted store after first mount")
	}
	key1 := s.masterKey

	s2, err := Mount(f, ent, MinFlashSize)
	if err != nil {
		t.Fatalf("remount: %v", err)
	}
	if s2.masterKey != key1 {
		t.Fatal("remount regenerated the master key; spec §9 forbids this")
	}
}

func TestPINLockout(t *testing.T) {
	s, _ := newTestStore(t)
	if s.SetPIN([]byte("1234")) != VerifyOK {
		t.Fatal("SetPIN failed")
	}
	for i := 0; i < int(DefaultMaxRetries); i++ {
		if out := s.VerifyPIN([]byte("wrong")); out != VerifyMismatch {
			t.Fatalf("attempt %d: got %v, want Mismatch", i, out)
		}
	}
	if out := s.VerifyPIN([]byte("1234")); out != VerifyBlocked {
		t.Fatalf("got %v, want Blocked after retries exhausted", out)
	}
}

func TestPINVerifyResetsRetries(t *testing.T) {
	s, _ := newTestStore(t)
	s.SetPIN([]byte("1234"))
	s.VerifyPIN([]byte("wrong"))
	if out := s.VerifyPIN([]byte("1234")); out != VerifyOK {
		t.Fatalf("got %v, want OK", out)
	}
	p, _ := s.loadPIN()
	if p.Retries != DefaultMaxRetries {
		t.Fatalf("retries = %d, want %d after successful verify", p.Retries, DefaultMaxRetries)
	}
}

func TestCredentialRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	c := Credential{
		ID:        [16]byte{1, 2, 3},
		RPIDHash:  [32]byte{9, 9, 9},
		UserID:    []byte("user-1"),
		SignCount: 1,
		Resident:  true,
	}
	copy(c.PrivateKey[:], []byte("01234567890123456789012345678901"))

	if out := s.StoreCredential(c); out != CredOK {
		t.Fatalf("StoreCredential: %v", out)
	}

	got, out := s.FindCredential(c.ID)
	if out != CredOK {
		t.Fatalf("FindCredential: %v", out)
	}
	if string(got.UserID) != string(c.UserID) || got.SignCount != c.SignCount || got.Resident != c.Resident {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, c)
	}

	var missing [16]byte
	missing[0] = 0xFF
	if _, out := s.FindCredential(missing); out != CredNotFound {
		t.Fatalf("got %v, want NotFound for unstored id", out)
	}
}

func TestCredentialTamperDetection(t *testing.T) {
	s, _ := newTestStore(t)
	c := Credential{ID: [16]byte{7}, RPIDHash: [32]byte{1}}
	s.StoreCredential(c)

	// Flip one byte of the ciphertext on flash directly.
	buf := make([]byte, 1)
	s.flash.Read(slotOffset(0)+slotCTOff, buf)
	buf[0] ^= 0xFF
	s.flash.Write(slotOffset(0)+slotCTOff, buf)

	if _, out := s.FindCredential(c.ID); out != CredCorrupted {
		t.Fatalf("got %v, want Corrupted after ciphertext tamper", out)
	}
}

func TestCounterMonotonicAcrossRemount(t *testing.T) {
	f := flash.NewSim(MinFlashSize)
	ent := &fakeEntropy{}
	s, _ := Mount(f, ent, MinFlashSize)

	var last uint32
	for i := 0; i < 5; i++ {
		v, err := s.NextCounter()
		if err != nil {
			t.Fatalf("NextCounter: %v", err)
		}
		if v <= last {
			t.Fatalf("counter not monotone: %d after %d", v, last)
		}
		last = v
	}

	s2, err := Mount(f, ent, MinFlashSize)
	if err != nil {
		t.Fatalf("remount: %v", err)
	}
	next, err := s2.NextCounter()
	if err != nil {
		t.Fatalf("NextCounter after remount: %v", err)
	}
	if next <= last {
		t.Fatalf("counter %d not greater than pre-remount %d", next, last)
	}
}

func TestStoreFull(t *testing.T) {
	s, _ := newTestStore(t)
	for i := 0; i < MaxCredentials; i++ {
		c := Credential{}
		c.ID[0] = byte(i)
		c.ID[1] = byte(i >> 8)
		if out := s.StoreCredential(c); out != CredOK {
			t.Fatalf("slot %d: %v", i, out)
		}
	}
	overflow := Credential{ID: [16]byte{0xFF, 0xFF}}
	if out := s.StoreCredential(overflow); out != CredFull {
		t.Fatalf("got %v, want Full", out)
	}
}
