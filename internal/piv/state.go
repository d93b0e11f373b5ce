// Package piv implements component C6: the PIV (NIST SP 800-73-4)
// identity-card application. It is the server-side generalization of the
// teacher's card package AID/auth conventions, restated as an in-process
// apdu.Handler rather than a reader-side client.
package piv

import (
	"cardkey/internal/cryptoprim"
	"cardkey/internal/store"
)

// AID is the PIV application identifier this handler registers under.
var AID = []byte{0xA0, 0x00, 0x00, 0x03, 0x08, 0x00, 0x00, 0x10, 0x00, 0x01, 0x00}

// MinPINLen and MaxPINLen are PIV's stricter PIN policy (spec §4.4).
const (
	MinPINLen = 6
	MaxPINLen = 8
)

// Slot identifies one of PIV's four key references (spec §3: "PIV has
// four slots (AUTH, SIG, KEY_MGMT, CARD_AUTH)"). Values match the
// standard PIV key-reference bytes so P2 on GENERATE ASYMMETRIC KEY PAIR
// maps directly to a slot index.
type Slot byte

const (
	SlotAuth     Slot = 0x9A
	SlotSign     Slot = 0x9C
	SlotKeyMgmt  Slot = 0x9D
	SlotCardAuth Slot = 0x9E
)

func slotIndex(p2 byte) (int, bool) {
	switch Slot(p2) {
	case SlotAuth:
		return 0, true
	case SlotSign:
		return 1, true
	case SlotKeyMgmt:
		return 2, true
	case SlotCardAuth:
		return 3, true
	default:
		return 0, false
	}
}

const numSlots = 4

// keySlot holds a generated PIV keypair, if any (spec §3's generic key
// slot shape specialized to this application).
type keySlot struct {
	generated bool
	priv      [cryptoprim.PrivKeySize]byte
	pub       [cryptoprim.PubKeySize]byte
}

// certSlot holds the certificate object PUT DATA stores alongside a key
// slot (spec §4.4: "up to 2048 bytes").
const maxCertSize = 2048

type certSlot struct {
	present bool
	data    []byte
}

// DefaultPIN and DefaultPUK are the factory values spec §4.4 names
// ("Default PIN is the ASCII six-digit value configured at factory").
var (
	DefaultPIN = []byte("123456")
	DefaultPUK = []byte("12345678")
)

// App is the PIV application's mutable state: PIN/PUK records, the
// verified flag, and the four key/cert slots (spec §4.4).
type App struct {
	pin         store.PINRecord
	pinVerified bool
	puk         store.PINRecord

	keys  [numSlots]keySlot
	certs [numSlots]certSlot

	objects map[uint32][]byte

	entropy cryptoprim.Reader
}

// New creates a PIV application with factory-default PIN/PUK, drawing
// entropy for key generation from the given source.
func New(entropy cryptoprim.Reader) *App {
	a := &App{entropy: entropy}
	a.reset()
	return a
}

// reset restores defaults for PIN/PUK, retry counters, and clears all
// key/cert slots and data objects (spec §4.4 "Reset").
func (a *App) reset() {
	a.pin = store.NewPINRecord(store.DefaultMaxRetries)
	a.pin.SetPIN(DefaultPIN, MinPINLen, MaxPINLen)
	a.pinVerified = false

	a.puk = store.NewPINRecord(store.DefaultMaxRetries)
	a.puk.SetPIN(DefaultPUK, MinPINLen, 8)

	a.keys = [numSlots]keySlot{}
	a.certs = [numSlots]certSlot{}
	a.objects = make(map[uint32][]byte)
}

// Reset restores factory defaults.
func (a *App) Reset() {
	a.reset()
}
