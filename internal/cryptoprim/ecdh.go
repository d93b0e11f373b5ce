package cryptoprim

import (
	stdecdh "crypto/ecdh"
)

// ECDH performs P-256 Diffie-Hellman and returns the 32-byte shared
// x-coordinate, grounded on floegence-flowersec's e2ee package pattern of
// selecting a curve via crypto/ecdh and deriving session material from
// GenerateKey/ECDH rather than the legacy crypto/elliptic scalar APIs.
func ECDH(private [PrivKeySize]byte, peerPublic [PubKeySize]byte) Result[[32]byte] {
	curve := stdecdh.P256()

	priv, err := curve.NewPrivateKey(private[:])
	if err != nil {
		return InvalidParamErr[[32]byte]()
	}

	peerBytes := make([]byte, 0, 65)
	peerBytes = append(peerBytes, 0x04)
	peerBytes = append(peerBytes, peerPublic[:]...)
	pub, err := curve.NewPublicKey(peerBytes)
	if err != nil {
		return InvalidParamErr[[32]byte]()
	}

	shared, err := priv.ECDH(pub)
	if err != nil {
		return InternalErr[[32]byte]()
	}

	var out [32]byte
	copy(out[:], shared)
	return Ok(out)
}

// ECDHGenerateKeyPair draws a fresh P-256 keypair for ephemeral key
// agreement using the given entropy source.
func ECDHGenerateKeyPair(entropy Reader) Result[ECDSAKeyPair] {
	curve := stdecdh.P256()
	priv, err := curve.GenerateKey(entropy)
	if err != nil {
		return InternalErr[ECDSAKeyPair]()
	}
	pubBytes := priv.PublicKey().Bytes() // 0x04 || X || Y, 65 bytes
	if len(pubBytes) != 65 {
		return InternalErr[ECDSAKeyPair]()
	}
	var kp ECDSAKeyPair
	copy(kp.Public[:], pubBytes[1:])
	copy(kp.Private[:], priv.Bytes())
	return Ok(kp)
}
