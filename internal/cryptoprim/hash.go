package cryptoprim

import (
	"crypto/hmac"
	"crypto/sha256"

	"golang.org/x/crypto/hkdf"
)

// SHA256 hashes msg.
func SHA256(msg []byte) [32]byte {
	return sha256.Sum256(msg)
}

// HMACSHA256 computes HMAC-SHA-256(key, msg).
func HMACSHA256(key, msg []byte) Result[[32]byte] {
	if len(key) == 0 {
		return InvalidParamErr[[32]byte]()
	}
	mac := hmac.New(sha256.New, key)
	mac.Write(msg)
	var out [32]byte
	copy(out[:], mac.Sum(nil))
	return Ok(out)
}

// HKDFExtract performs HKDF-SHA-256 Extract(salt, ikm) -> pseudorandom key.
func HKDFExtract(salt, ikm []byte) Result[[32]byte] {
	if len(ikm) == 0 {
		return InvalidParamErr[[32]byte]()
	}
	prk := hkdf.Extract(sha256.New, ikm, salt)
	var out [32]byte
	copy(out[:], prk)
	return Ok(out)
}

// HKDFExpand performs HKDF-SHA-256 Expand(prk, info, length) -> okm.
func HKDFExpand(prk, info []byte, length int) Result[[]byte] {
	if length <= 0 || length > 255*32 {
		return InvalidParamErr[[]byte]()
	}
	r := hkdf.Expand(sha256.New, prk, info)
	out := make([]byte, length)
	if _, err := r.Read(out); err != nil {
		return InternalErr[[]byte]()
	}
	return Ok(out)
}

// HKDF runs Extract then Expand in one call, matching the teacher's
// preference for a single convenience entry point over a SIM card's
// derivation chain (see algorithms/milenage.go's c1..c5 chained KDF-like
// rotations, generalized here to standard HKDF-SHA-256).
func HKDF(salt, ikm, info []byte, length int) Result[[]byte] {
	prk := HKDFExtract(salt, ikm)
	if !prk.IsOK() {
		return InvalidParamErr[[]byte]()
	}
	return HKDFExpand(prk.Value[:], info, length)
}
