package store

import (
	"encoding/binary"
	"errors"

	"cardkey/internal/cryptoprim"
	"cardkey/internal/ctutil"
)

// Credential is the FIDO-style credential spec §3 defines.
type Credential struct {
	ID         [credIDSize]byte
	RPIDHash   [32]byte
	UserID     []byte // <= 64 bytes
	PrivateKey [cryptoprim.PrivKeySize]byte
	SignCount  uint32
	Resident   bool

	HasRPID        bool
	RPID           string // <= 64 bytes
	HasUserName    bool
	UserName       string // <= 64 bytes
	HasDisplayName bool
	DisplayName    string // <= 64 bytes
}

const maxOptionalStringLen = 64

// CredentialOutcome classifies store operation results.
type CredentialOutcome int

const (
	CredOK CredentialOutcome = iota
	CredNotFound
	CredFull
	CredCorrupted
	CredInvalidParam
)

func encodeCredential(c Credential) ([]byte, error) {
	if len(c.UserID) > maxOptionalStringLen {
		return nil, errors.New("store: user id too long")
	}
	if len(c.RPID) > maxOptionalStringLen || len(c.UserName) > maxOptionalStringLen || len(c.DisplayName) > maxOptionalStringLen {
		return nil, errors.New("store: optional field too long")
	}

	buf := make([]byte, 0, credPlaintextMax)
	buf = append(buf, c.ID[:]...)
	buf = append(buf, c.RPIDHash[:]...)
	buf = append(buf, byte(len(c.UserID)))
	buf = append(buf, c.UserID...)
	buf = append(buf, c.PrivateKey[:]...)

	var sc [4]byte
	binary.LittleEndian.PutUint32(sc[:], c.SignCount)
	buf = append(buf, sc[:]...)

	if c.Resident {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}

	buf = appendOptionalString(buf, c.HasRPID, c.RPID)
	buf = appendOptionalString(buf, c.HasUserName, c.UserName)
	buf = appendOptionalString(buf, c.HasDisplayName, c.DisplayName)

	if len(buf) > credPlaintextMax {
		return nil, errors.New("store: serialized credential too large")
	}
	return buf, nil
}

func appendOptionalString(buf []byte, present bool, s string) []byte {
	if present {
		buf = append(buf, 1, byte(len(s)))
		buf = append(buf, s...)
	} else {
		buf = append(buf, 0, 0)
	}
	return buf
}

func decodeCredential(buf []byte) (Credential, bool) {
	var c Credential
	idx := 0
	readN := func(n int) ([]byte, bool) {
		if idx+n > len(buf) {
			return nil, false
		}
		out := buf[idx : idx+n]
		idx += n
		return out, true
	}

	idBytes, ok := readN(credIDSize)
	if !ok {
		return c, false
	}
	copy(c.ID[:], idBytes)

	rpHash, ok := readN(32)
	if !ok {
		return c, false
	}
	copy(c.RPIDHash[:], rpHash)

	uidLenB, ok := readN(1)
	if !ok {
		return c, false
	}
	uidLen := int(uidLenB[0])
	uid, ok := readN(uidLen)
	if !ok {
		return c, false
	}
	c.UserID = append([]byte(nil), uid...)

	priv, ok := readN(cryptoprim.PrivKeySize)
	if !ok {
		return c, false
	}
	copy(c.PrivateKey[:], priv)

	scBytes, ok := readN(4)
	if !ok {
		return c, false
	}
	c.SignCount = binary.LittleEndian.Uint32(scBytes)

	resBytes, ok := readN(1)
	if !ok {
		return c, false
	}
	c.Resident = resBytes[0] != 0

	var err bool
	c.HasRPID, c.RPID, idx, err = readOptionalString(buf, idx)
	if err {
		return c, false
	}
	c.HasUserName, c.UserName, idx, err = readOptionalString(buf, idx)
	if err {
		return c, false
	}
	c.HasDisplayName, c.DisplayName, idx, err = readOptionalString(buf, idx)
	if err {
		return c, false
	}
	return c, true
}

func readOptionalString(buf []byte, idx int) (present bool, s string, newIdx int, fail bool) {
	if idx+2 > len(buf) {
		return false, "", idx, true
	}
	present = buf[idx] != 0
	n := int(buf[idx+1])
	idx += 2
	if idx+n > len(buf) {
		return false, "", idx, true
	}
	s = string(buf[idx : idx+n])
	idx += n
	return present, s, idx, false
}

// slotOffset returns the flash offset of credential slot i.
func slotOffset(i int) uint32 {
	return credentialsOffset + uint32(i)*credentialSize
}

// slot layout within a 512-byte credential record (spec §6): id(16B),
// ciphertext(400B), IV(12B), tag(16B), sign_count(4B LE), valid(1B),
// padding. The AEAD's associated data (rp-id-hash, spec §3) must be known
// before the ciphertext can be opened, so a cleartext copy lives in the
// slot's padding region rather than only inside the ciphertext itself —
// otherwise a credential-id-only lookup (spec §4.2: "Lookup by
// credential-id is a linear scan") could never decrypt what it found.
const (
	slotIDOff     = 0
	slotCTOff     = slotIDOff + credIDSize
	slotIVOff     = slotCTOff + credCiphertextSize
	slotTagOff    = slotIVOff + credIVSize
	slotSCOff     = slotTagOff + credTagSize
	slotValidOff  = slotSCOff + 4
	slotRPHashOff = slotValidOff + 1
)

type rawSlot struct {
	id        [credIDSize]byte
	ct        []byte
	iv        [credIVSize]byte
	tag       [credTagSize]byte
	signCount uint32
	valid     bool
	rpIDHash  [32]byte
}

func (r rawSlot) aad() []byte {
	return r.rpIDHash[:]
}

func (s *Store) readSlot(i int) (rawSlot, error) {
	buf := make([]byte, credentialSize)
	if err := s.flash.Read(slotOffset(i), buf); err != nil {
		return rawSlot{}, err
	}
	var r rawSlot
	copy(r.id[:], buf[slotIDOff:slotIDOff+credIDSize])
	r.ct = append([]byte(nil), buf[slotCTOff:slotCTOff+credCiphertextSize]...)
	copy(r.iv[:], buf[slotIVOff:slotIVOff+credIVSize])
	copy(r.tag[:], buf[slotTagOff:slotTagOff+credTagSize])
	r.signCount = binary.LittleEndian.Uint32(buf[slotSCOff : slotSCOff+4])
	r.valid = buf[slotValidOff] != 0
	copy(r.rpIDHash[:], buf[slotRPHashOff:slotRPHashOff+32])
	return r, nil
}

func (s *Store) writeSlot(i int, r rawSlot) error {
	buf := make([]byte, credentialSize)
	copy(buf[slotIDOff:slotIDOff+credIDSize], r.id[:])
	copy(buf[slotCTOff:slotCTOff+credCiphertextSize], r.ct)
	copy(buf[slotIVOff:slotIVOff+credIVSize], r.iv[:])
	copy(buf[slotTagOff:slotTagOff+credTagSize], r.tag[:])
	binary.LittleEndian.PutUint32(buf[slotSCOff:slotSCOff+4], r.signCount)
	if r.valid {
		buf[slotValidOff] = 1
	}
	copy(buf[slotRPHashOff:slotRPHashOff+32], r.rpIDHash[:])
	return s.flash.Write(slotOffset(i), buf)
}

// StoreCredential encrypts and inserts c into the first invalid slot
// (spec §4.2: "Insertion searches linearly for the first !valid slot").
func (s *Store) StoreCredential(c Credential) CredentialOutcome {
	plaintext, err := encodeCredential(c)
	if err != nil {
		return CredInvalidParam
	}

	var iv [credIVSize]byte
	if _, err := s.drbg.Read(iv[:]); err != nil {
		return CredInvalidParam
	}

	sealed := cryptoprim.AEADSeal(s.masterKey[:], iv[:], c.RPIDHash[:], plaintext)
	if !sealed.IsOK() {
		return CredInvalidParam
	}

	ct := make([]byte, credCiphertextSize)
	copy(ct, sealed.Value.Ciphertext)

	for i := 0; i < MaxCredentials; i++ {
		r, err := s.readSlot(i)
		if err != nil {
			return CredInvalidParam
		}
		if r.valid {
			continue
		}
		r.id = c.ID
		r.ct = ct
		r.iv = iv
		r.tag = sealed.Value.Tag
		r.signCount = c.SignCount
		r.valid = true
		r.rpIDHash = c.RPIDHash
		if err := s.writeSlot(i, r); err != nil {
			return CredInvalidParam
		}
		return CredOK
	}
	return CredFull
}

// FindCredential performs a linear scan by credential-id and decrypts the
// match. A decryption failure on a valid-flagged record surfaces as
// CredCorrupted, distinct from CredNotFound (spec §4.2, invariant/S5).
func (s *Store) FindCredential(id [credIDSize]byte) (Credential, CredentialOutcome) {
	for i := 0; i < MaxCredentials; i++ {
		r, err := s.readSlot(i)
		if err != nil || !r.valid {
			continue
		}
		if !ctutil.Equal(r.id[:], id[:]) {
			continue
		}
		return s.decryptSlot(r)
	}
	return Credential{}, CredNotFound
}

func (s *Store) decryptSlot(r rawSlot) (Credential, CredentialOutcome) {
	open := cryptoprim.AEADOpen(s.masterKey[:], r.iv[:], r.aad(), r.ct, r.tag)
	if open.Kind != cryptoprim.AEADOpenOK {
		return Credential{}, CredCorrupted
	}
	c, ok := decodeCredential(open.Plaintext)
	if !ok {
		return Credential{}, CredCorrupted
	}
	if c.SignCount < r.signCount {
		c.SignCount = r.signCount
	}
	return c, CredOK
}

// UpdateSignCount persists a credential's new sign_count after a
// successful assertion (spec §4.2). The cleartext slot field is the
// source of truth for monotonicity (decryptSlot takes the max of it and
// whatever is embedded in the ciphertext), so this never re-encrypts —
// only the 4-byte counter field is rewritten. A count at or below the
// persisted value is rejected rather than silently ignored, since a
// caller asking to decrease it indicates a logic error upstream.
func (s *Store) UpdateSignCount(id [credIDSize]byte, newCount uint32) CredentialOutcome {
	for i := 0; i < MaxCredentials; i++ {
		r, err := s.readSlot(i)
		if err != nil || !r.valid {
			continue
		}
		if !ctutil.Equal(r.id[:], id[:]) {
			continue
		}
		if newCount <= r.signCount {
			return CredInvalidParam
		}
		r.signCount = newCount
		if err := s.writeSlot(i, r); err != nil {
			return CredInvalidParam
		}
		return CredOK
	}
	return CredNotFound
}

// DeleteCredential clears the valid flag and erases the slot's page
// (spec §4.2). Flash erase is sector-granular (spec §6); a single
// credential slot is smaller than a sector, so "erases the page" is
// realized as a full zero write over just that slot's bytes — the
// page-granular write the HAL surface allows, not a sector Erase call
// that would also wipe sibling slots.
func (s *Store) DeleteCredential(id [credIDSize]byte) CredentialOutcome {
	for i := 0; i < MaxCredentials; i++ {
		r, err := s.readSlot(i)
		if err != nil || !r.valid {
			continue
		}
		if !ctutil.Equal(r.id[:], id[:]) {
			continue
		}
		if err := s.flash.Write(slotOffset(i), make([]byte, credentialSize)); err != nil {
			return CredInvalidParam
		}
		return CredOK
	}
	return CredNotFound
}

// CorruptCredentialCiphertext flips one byte of the on-flash ciphertext
// for the credential matching id, for fault-injection testing (spec §8
// scenario S5: "flip one byte of its on-flash ciphertext").
func (s *Store) CorruptCredentialCiphertext(id [credIDSize]byte) CredentialOutcome {
	for i := 0; i < MaxCredentials; i++ {
		r, err := s.readSlot(i)
		if err != nil || !r.valid {
			continue
		}
		if !ctutil.Equal(r.id[:], id[:]) {
			continue
		}
		buf := make([]byte, 1)
		if err := s.flash.Read(slotOffset(i)+slotCTOff, buf); err != nil {
			return CredInvalidParam
		}
		buf[0] ^= 0xFF
		if err := s.flash.Write(slotOffset(i)+slotCTOff, buf); err != nil {
			return CredInvalidParam
		}
		return CredOK
	}
	return CredNotFound
}
