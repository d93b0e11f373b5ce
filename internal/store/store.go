package store

import (
	"encoding/binary"
	"errors"

	"cardkey/internal/cryptoprim"
	"cardkey/internal/hal"
)

var (
	ErrFatalInit = errors.New("store: unreadable header, fatal initialization error")
	ErrRegionTooSmall = errors.New("store: configured region smaller than MinFlashSize")
)

// Store is the mounted credential store: a cache of the header's master
// key, a DRBG seeded once at mount time for IV/key-generation needs, and
// the flash medium it is backed by. Per spec §5, it is touched only from
// the single dispatch loop.
type Store struct {
	flash      hal.Flash
	drbg       *cryptoprim.DRBG
	regionSize uint32
	masterKey  [masterKeySize]byte
}

// Mount reads the header and, if magic/version mismatch, formats the
// store fresh (spec §4.2). An unreadable header is a fatal
// initialization error. Mount is idempotent on an already-formatted
// store: it never regenerates the master key on a store that already has
// one (spec §9's explicit correction of the original's per-mount
// regeneration bug).
func Mount(flash hal.Flash, entropy hal.Entropy, regionSize uint32) (*Store, error) {
	if regionSize < MinFlashSize {
		return nil, ErrRegionTooSmall
	}
	if err := flash.Init(); err != nil {
		return nil, ErrFatalInit
	}

	drbg := cryptoprim.NewDRBG(entropy)
	if !drbg.IsOK() {
		return nil, ErrFatalInit
	}

	s := &Store{flash: flash, drbg: drbg.Value, regionSize: regionSize}

	header := make([]byte, headerSize)
	if err := flash.Read(headerOffset, header); err != nil {
		return nil, ErrFatalInit
	}

	magic := binary.LittleEndian.Uint32(header[0:4])
	version := binary.LittleEndian.Uint32(header[4:8])
	if magic != Magic || version != Version {
		if err := s.format(); err != nil {
			return nil, err
		}
		return s, nil
	}

	copy(s.masterKey[:], header[8:8+masterKeySize])
	return s, nil
}

// format erases every sector in the configured region and writes a fresh
// header with a freshly generated master key, a zeroed PIN record with
// retries at max, a zero global counter, and a freshly generated
// attestation key (spec §4.2).
func (s *Store) format() error {
	for off := uint32(0); off < s.regionSize; off += hal.SectorSize {
		if err := s.flash.Erase(off); err != nil {
			return ErrFatalInit
		}
	}

	if _, err := s.drbg.Read(s.masterKey[:]); err != nil {
		return ErrFatalInit
	}

	header := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(header[0:4], Magic)
	binary.LittleEndian.PutUint32(header[4:8], Version)
	copy(header[8:8+masterKeySize], s.masterKey[:])
	if err := s.flash.Write(headerOffset, header); err != nil {
		return ErrFatalInit
	}

	if err := s.formatPIN(); err != nil {
		return ErrFatalInit
	}
	if err := s.writeCounter(0); err != nil {
		return ErrFatalInit
	}
	if err := s.formatAttestationKey(s.drbg); err != nil {
		return ErrFatalInit
	}
	return nil
}

// Formatted reports whether the header currently matches magic/version.
func (s *Store) Formatted() bool {
	header := make([]byte, headerSize)
	if err := s.flash.Read(headerOffset, header); err != nil {
		return false
	}
	return binary.LittleEndian.Uint32(header[0:4]) == Magic &&
		binary.LittleEndian.Uint32(header[4:8]) == Version
}
