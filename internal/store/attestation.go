package store

import "cardkey/internal/cryptoprim"

func (s *Store) formatAttestationKey(entropy cryptoprim.Reader) error {
	var key [attestKeySize]byte
	if _, err := entropy.Read(key[:]); err != nil {
		return err
	}
	buf := make([]byte, attestSize)
	copy(buf[:attestKeySize], key[:])
	return s.flash.Write(attestOffset, buf)
}

// AttestationPrivateKey reads the single P-256 private scalar persisted
// at the fixed attestation offset. Readable by the authenticator core;
// never exported off-device (spec §4.2).
func (s *Store) AttestationPrivateKey() ([cryptoprim.PrivKeySize]byte, error) {
	var key [cryptoprim.PrivKeySize]byte
	buf := make([]byte, attestKeySize)
	if err := s.flash.Read(attestOffset, buf); err != nil {
		return key, err
	}
	copy(key[:], buf)
	return key, nil
}
