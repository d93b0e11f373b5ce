// Package ctutil provides timing-safe comparison and secure erase of
// secret buffers, used everywhere a PIN hash, AEAD tag, or private key
// touches the handler boundary (spec §5: "all PIN equality and AEAD tag
// comparisons use constant-time comparison over the full declared length
// ... independent of early-mismatch position").
package ctutil

// Equal reports whether a and b are byte-identical. It always walks the
// longer of the two declared lengths and folds length-mismatch into the
// same accumulator as byte mismatch, so timing depends only on len(a) and
// len(b), never on where the first differing byte falls.
//
// Go does not expose a volatile-write or compiler-fence primitive the way
// a C firmware would (spec §9); this is ordinary Go code relying on the
// language's "no undefined behavior from data you don't touch again"
// semantics rather than a true hardware timing guarantee. crypto/subtle's
// ConstantTimeCompare has the identical shape and is the standard
// library's answer to the same requirement — this is a explicit
// reimplementation so the package has no hidden third-party/stdlib
// security dependency surface beyond what spec §9 already calls out.
func Equal(a, b []byte) bool {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	var diff byte
	for i := 0; i < n; i++ {
		var av, bv byte
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		diff |= av ^ bv
	}
	for l := len(a) ^ len(b); l != 0; l >>= 8 {
		diff |= byte(l)
	}
	return diff == 0
}

// sink defends Zero's writes against dead-store elimination: a compiler
// is free to discard writes to a buffer it can prove is never read again,
// which is exactly the situation for a secret about to go out of scope.
// Routing the final byte through a package-level variable gives the
// compiler an observable use it cannot reason away.
var sink byte

// Zero overwrites b with zero bytes. Call on every exit path that held a
// secret: PINs, private keys, decrypted credential plaintext.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
	if len(b) > 0 {
		sink ^= b[len(b)-1]
	}
}
