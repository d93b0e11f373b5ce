package store

import (
	"cardkey/internal/cryptoprim"
	"cardkey/internal/ctutil"
)

// DefaultMaxRetries is the generic PIN record's retry ceiling (spec §3:
// "retries-remaining (uint8, 0-3)").
const DefaultMaxRetries uint8 = 3

// MinPINLen and MaxPINLen are the generic policy (spec §4.2), used by the
// store's own PIN record; PIV and OpenPGP pass their own bounds in its
// place, each with a stricter minimum.
const (
	MinPINLen = 4
	MaxPINLen = 63
)

// VerifyOutcome classifies the result of a PIN verification attempt.
type VerifyOutcome int

const (
	VerifyOK VerifyOutcome = iota
	VerifyNotSet
	VerifyBlocked
	VerifyMismatch
	VerifyInvalidParam
)

// PINRecord is the generic {hash, retries, set} record spec §3 defines.
// It is reused both by the store's own persisted global record and, as an
// in-memory building block, by PIV's PIN/PUK and OpenPGP's user/admin PIN
// state (spec §4.4, §4.5) — none of those are part of the bit-exact
// on-disk layout in §6, which only fixes the generic store's own record.
type PINRecord struct {
	Hash    [pinHashSize]byte
	Retries uint8
	Max     uint8
	IsSet   bool
}

// NewPINRecord creates a record with the given retry ceiling, unset.
func NewPINRecord(max uint8) PINRecord {
	return PINRecord{Max: max, Retries: max}
}

// SetPIN stores SHA-256(pin), resets retries to Max, and flips IsSet.
// minLen/maxLen are the caller's policy (PIV: [6,8], OpenPGP: [6,127]);
// they replace the generic [4,63] bound rather than narrowing it.
func (p *PINRecord) SetPIN(pin []byte, minLen, maxLen int) VerifyOutcome {
	if len(pin) < minLen || len(pin) > maxLen {
		return VerifyInvalidParam
	}
	p.Hash = cryptoprim.SHA256(pin)
	p.Retries = p.Max
	p.IsSet = true
	return VerifyOK
}

// Verify checks pin against the stored hash with a constant-time compare.
// retries==0 is a no-op returning Blocked (invariant 1: "VERIFY with
// retries == 0 is a no-op returning blocked"). A mismatch decrements
// retries by exactly one; a match restores retries to Max.
func (p *PINRecord) Verify(pin []byte) VerifyOutcome {
	if !p.IsSet {
		return VerifyNotSet
	}
	if p.Retries == 0 {
		return VerifyBlocked
	}
	got := cryptoprim.SHA256(pin)
	if ctutil.Equal(got[:], p.Hash[:]) {
		p.Retries = p.Max
		return VerifyOK
	}
	p.Retries--
	return VerifyMismatch
}

// Reset restores the record to its unset, full-retries state (e.g. an
// admin PIN reset, or application factory reset).
func (p *PINRecord) Reset() {
	p.Hash = [pinHashSize]byte{}
	p.Retries = p.Max
	p.IsSet = false
}

// marshal/unmarshal implement the bit-exact 256-byte on-disk PIN record
// layout (spec §6): hash(32B), retries(1B), set?(1B), padding.
func (p *PINRecord) marshal() []byte {
	buf := make([]byte, pinSize)
	copy(buf[0:pinHashSize], p.Hash[:])
	buf[pinHashSize] = p.Retries
	if p.IsSet {
		buf[pinHashSize+1] = 1
	}
	return buf
}

func unmarshalPIN(buf []byte, max uint8) PINRecord {
	p := PINRecord{Max: max}
	copy(p.Hash[:], buf[0:pinHashSize])
	p.Retries = buf[pinHashSize]
	p.IsSet = buf[pinHashSize+1] != 0
	return p
}

func (s *Store) formatPIN() error {
	p := NewPINRecord(DefaultMaxRetries)
	return s.flash.Write(pinOffset, p.marshal())
}

func (s *Store) loadPIN() (PINRecord, error) {
	buf := make([]byte, pinSize)
	if err := s.flash.Read(pinOffset, buf); err != nil {
		return PINRecord{}, err
	}
	return unmarshalPIN(buf, DefaultMaxRetries), nil
}

func (s *Store) savePIN(p PINRecord) error {
	return s.flash.Write(pinOffset, p.marshal())
}

// SetPIN sets the global PIN record persisted at a fixed offset.
func (s *Store) SetPIN(pin []byte) VerifyOutcome {
	p, err := s.loadPIN()
	if err != nil {
		return VerifyInvalidParam
	}
	outcome := p.SetPIN(pin, MinPINLen, MaxPINLen)
	if outcome != VerifyOK {
		return outcome
	}
	if err := s.savePIN(p); err != nil {
		return VerifyInvalidParam
	}
	return VerifyOK
}

// VerifyPIN verifies against the global PIN record, persisting the
// updated retry count on every call (match or mismatch).
func (s *Store) VerifyPIN(pin []byte) VerifyOutcome {
	p, err := s.loadPIN()
	if err != nil {
		return VerifyInvalidParam
	}
	outcome := p.Verify(pin)
	if outcome == VerifyBlocked || outcome == VerifyNotSet {
		return outcome
	}
	if err := s.savePIN(p); err != nil {
		return VerifyInvalidParam
	}
	return outcome
}
