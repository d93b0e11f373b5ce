package cryptoprim

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"math/big"
)

const (
	PubKeySize  = 64 // uncompressed P-256: X || Y
	PrivKeySize = 32
	SigSize     = 64 // r || s, big-endian, zero-padded
)

// ECDSAKeyPair holds a P-256 keypair in the wire encodings spec §4.1
// fixes: 32-byte scalar, 64-byte uncompressed public point.
type ECDSAKeyPair struct {
	Private [PrivKeySize]byte
	Public  [PubKeySize]byte
}

func curve() elliptic.Curve { return elliptic.P256() }

// GenerateECDSAKeyPair draws a fresh P-256 keypair using the given
// entropy source (normally the platform DRBG).
func GenerateECDSAKeyPair(entropy Reader) Result[ECDSAKeyPair] {
	priv, err := ecdsa.GenerateKey(curve(), entropy)
	if err != nil {
		return InternalErr[ECDSAKeyPair]()
	}
	return Ok(encodeKeyPair(priv))
}

func encodeKeyPair(priv *ecdsa.PrivateKey) ECDSAKeyPair {
	var kp ECDSAKeyPair
	priv.D.FillBytes(kp.Private[:])
	priv.X.FillBytes(kp.Public[:32])
	priv.Y.FillBytes(kp.Public[32:])
	return kp
}

// PublicFromPrivate derives the uncompressed public point for a stored
// private scalar. This must scalar-multiply the base point by the
// existing private key — never generate a fresh random keypair (spec §9
// calls out exactly this bug as one not to reproduce).
func PublicFromPrivate(private [PrivKeySize]byte) Result[[PubKeySize]byte] {
	d := new(big.Int).SetBytes(private[:])
	if d.Sign() == 0 || d.Cmp(curve().Params().N) >= 0 {
		return InvalidParamErr[[PubKeySize]byte]()
	}
	x, y := curve().ScalarBaseMult(private[:])
	var out [PubKeySize]byte
	x.FillBytes(out[:32])
	y.FillBytes(out[32:])
	return Ok(out)
}

func parsePrivate(private [PrivKeySize]byte) (*ecdsa.PrivateKey, bool) {
	d := new(big.Int).SetBytes(private[:])
	n := curve().Params().N
	if d.Sign() == 0 || d.Cmp(n) >= 0 {
		return nil, false
	}
	x, y := curve().ScalarBaseMult(private[:])
	return &ecdsa.PrivateKey{
		PublicKey: ecdsa.PublicKey{Curve: curve(), X: x, Y: y},
		D:         d,
	}, true
}

// Sign produces a deterministic (RFC 6979) ECDSA signature over a 32-byte
// message digest, encoded as r||s, zero-padded to 64 bytes.
func Sign(private [PrivKeySize]byte, digest [32]byte) Result[[SigSize]byte] {
	priv, ok := parsePrivate(private)
	if !ok {
		return InvalidParamErr[[SigSize]byte]()
	}
	k := rfc6979Nonce(priv.D, digest[:])
	r, s, ok := signWithNonce(priv, digest[:], k)
	if !ok {
		return InternalErr[[SigSize]byte]()
	}
	var out [SigSize]byte
	r.FillBytes(out[:32])
	s.FillBytes(out[32:])
	return Ok(out)
}

// Verify checks an r||s signature over digest against a 64-byte
// uncompressed public key.
func Verify(public [PubKeySize]byte, digest [32]byte, sig [SigSize]byte) bool {
	x := new(big.Int).SetBytes(public[:32])
	y := new(big.Int).SetBytes(public[32:])
	if !curve().IsOnCurve(x, y) {
		return false
	}
	pub := &ecdsa.PublicKey{Curve: curve(), X: x, Y: y}
	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:])
	return ecdsa.Verify(pub, digest[:], r, s)
}

// signWithNonce implements the core ECDSA signing equations with an
// explicit nonce, mirroring what crypto/ecdsa does internally but
// exposed so Sign can supply an RFC 6979 nonce instead of a random one.
func signWithNonce(priv *ecdsa.PrivateKey, hash []byte, k *big.Int) (r, s *big.Int, ok bool) {
	n := curve().Params().N
	if k.Sign() == 0 {
		return nil, nil, false
	}
	x1, _ := curve().ScalarBaseMult(k.Bytes())
	r = new(big.Int).Mod(x1, n)
	if r.Sign() == 0 {
		return nil, nil, false
	}

	e := hashToInt(hash, n)
	kInv := new(big.Int).ModInverse(k, n)
	if kInv == nil {
		return nil, nil, false
	}
	s = new(big.Int).Mul(priv.D, r)
	s.Add(s, e)
	s.Mul(s, kInv)
	s.Mod(s, n)
	if s.Sign() == 0 {
		return nil, nil, false
	}
	return r, s, true
}

func hashToInt(hash []byte, n *big.Int) *big.Int {
	orderBits := n.BitLen()
	orderBytes := (orderBits + 7) / 8
	if len(hash) > orderBytes {
		hash = hash[:orderBytes]
	}
	ret := new(big.Int).SetBytes(hash)
	excess := len(hash)*8 - orderBits
	if excess > 0 {
		ret.Rsh(ret, uint(excess))
	}
	return ret
}

// rfc6979Nonce derives the deterministic per-signature nonce k per RFC
// 6979 section 3.2, instantiated with HMAC-SHA-256 (the hash the rest of
// this package standardizes on).
func rfc6979Nonce(priv *big.Int, hash []byte) *big.Int {
	n := curve().Params().N
	qlen := n.BitLen()
	holen := sha256.Size
	rolen := (qlen + 7) / 8

	bx := append(int2octets(priv, rolen), bits2octets(hash, n, rolen)...)

	v := bytesRepeat(0x01, holen)
	k := bytesRepeat(0x00, holen)

	k = hmacSum(k, append(append(v, 0x00), bx...))
	v = hmacSum(k, v)
	k = hmacSum(k, append(append(v, 0x01), bx...))
	v = hmacSum(k, v)

	for {
		var t []byte
		for len(t) < rolen {
			v = hmacSum(k, v)
			t = append(t, v...)
		}
		secret := bits2int(t, qlen)
		if secret.Sign() > 0 && secret.Cmp(n) < 0 {
			return secret
		}
		k = hmacSum(k, append(v, 0x00))
		v = hmacSum(k, v)
	}
}

func hmacSum(key, msg []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(msg)
	return mac.Sum(nil)
}

func bytesRepeat(b byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}

func int2octets(v *big.Int, rolen int) []byte {
	out := make([]byte, rolen)
	vb := v.Bytes()
	if len(vb) > rolen {
		vb = vb[len(vb)-rolen:]
	}
	copy(out[rolen-len(vb):], vb)
	return out
}

func bits2int(b []byte, qlen int) *big.Int {
	v := new(big.Int).SetBytes(b)
	blen := len(b) * 8
	if blen > qlen {
		v.Rsh(v, uint(blen-qlen))
	}
	return v
}

func bits2octets(b []byte, n *big.Int, rolen int) []byte {
	z1 := bits2int(b, n.BitLen())
	z2 := new(big.Int).Sub(z1, n)
	if z2.Sign() < 0 {
		return int2octets(z1, rolen)
	}
	return int2octets(z2, rolen)
}

// Reader is the subset of io.Reader the crypto package needs from an
// entropy source; kept narrow so a HAL-backed DRBG satisfies it without
// importing internal/hal (which would create an import cycle).
type Reader interface {
	Read(p []byte) (n int, err error)
}

// systemEntropy is used only by tests that don't care about HAL wiring.
var systemEntropy Reader = rand.Reader
