package openpgp

import "cardkey/internal/cryptoprim"

// UserVerified and AdminVerified report current VERIFY status, for
// cliout and conformance reporting.
func (a *App) UserVerified() bool  { return a.userOK }
func (a *App) AdminVerified() bool { return a.adminOK }

// SignatureCounter reports the current PSO signature counter.
func (a *App) SignatureCounter() uint32 { return a.sigCounter }

// SlotPublicKey returns the generated public key for slot, if any.
func (a *App) SlotPublicKey(s Slot) ([cryptoprim.PubKeySize]byte, bool) {
	idx, ok := slotIndex(byte(s))
	if !ok || !a.keys[idx].generated {
		return [cryptoprim.PubKeySize]byte{}, false
	}
	return a.keys[idx].pub, true
}
