package piv

import "cardkey/internal/cryptoprim"

// PINVerified reports the current VERIFY status, for cliout and
// conformance reporting.
func (a *App) PINVerified() bool { return a.pinVerified }

// PINRetries reports the current PIN retry count.
func (a *App) PINRetries() uint8 { return a.pin.Retries }

// SlotPublicKey returns the generated public key for slot, if any.
func (a *App) SlotPublicKey(s Slot) ([cryptoprim.PubKeySize]byte, bool) {
	idx, ok := slotIndex(byte(s))
	if !ok || !a.keys[idx].generated {
		return [cryptoprim.PubKeySize]byte{}, false
	}
	return a.keys[idx].pub, true
}
