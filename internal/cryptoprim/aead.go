package cryptoprim

import (
	"crypto/aes"
	"crypto/cipher"
)

const (
	AEADKeySize   = 32 // AES-256
	AEADNonceSize = 12
	AEADTagSize   = 16
)

// AEADSealed is the output of an AES-GCM-256 seal: ciphertext and tag kept
// separate, the way the on-disk credential layout (spec §6) stores them in
// adjacent fixed-size fields rather than one concatenated blob.
type AEADSealed struct {
	Ciphertext []byte
	Tag        [AEADTagSize]byte
}

func newGCM(key []byte) (cipher.AEAD, Kind) {
	if len(key) != AEADKeySize {
		return nil, InvalidParam
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, Internal
	}
	aead, err := cipher.NewGCMWithNonceSize(block, AEADNonceSize)
	if err != nil {
		return nil, Internal
	}
	return aead, OK
}

// AEADSeal encrypts plaintext under key with the given 12-byte nonce and
// associated data, returning ciphertext and a detached 16-byte tag.
func AEADSeal(key, nonce, aad, plaintext []byte) Result[AEADSealed] {
	if len(nonce) != AEADNonceSize {
		return InvalidParamErr[AEADSealed]()
	}
	aead, kind := newGCM(key)
	if kind != OK {
		return Result[AEADSealed]{Kind: kind}
	}
	sealed := aead.Seal(nil, nonce, plaintext, aad)
	if len(sealed) < AEADTagSize {
		return InternalErr[AEADSealed]()
	}
	ct := sealed[:len(sealed)-AEADTagSize]
	var tag [AEADTagSize]byte
	copy(tag[:], sealed[len(sealed)-AEADTagSize:])
	return Ok(AEADSealed{Ciphertext: ct, Tag: tag})
}

// AEADOpen decrypts ciphertext||tag under key/nonce/aad. A tag mismatch is
// reported as AuthFailed (distinguishable from malformed-parameter errors
// per spec §4.1), never as a silently-wrong plaintext.
type AEADOpenKind int

const (
	AEADOpenOK AEADOpenKind = iota
	AEADOpenInvalidParam
	AEADOpenAuthFailed
)

type AEADOpenResult struct {
	Kind      AEADOpenKind
	Plaintext []byte
}

func AEADOpen(key, nonce, aad, ciphertext []byte, tag [AEADTagSize]byte) AEADOpenResult {
	if len(nonce) != AEADNonceSize {
		return AEADOpenResult{Kind: AEADOpenInvalidParam}
	}
	aead, kind := newGCM(key)
	if kind == InvalidParam {
		return AEADOpenResult{Kind: AEADOpenInvalidParam}
	}
	if kind != OK {
		return AEADOpenResult{Kind: AEADOpenAuthFailed}
	}
	sealed := make([]byte, 0, len(ciphertext)+AEADTagSize)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag[:]...)
	pt, err := aead.Open(nil, nonce, sealed, aad)
	if err != nil {
		return AEADOpenResult{Kind: AEADOpenAuthFailed}
	}
	return AEADOpenResult{Kind: AEADOpenOK, Plaintext: pt}
}
