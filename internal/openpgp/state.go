// Package openpgp implements component C7: the OpenPGP card v3.4
// application. Structurally it is the server-side sibling of internal/piv
// (same store.PINRecord building block, same apdu.Handler shape) but
// carries its own cardholder metadata, a terminated sub-state, and a
// signature counter that PIV has no equivalent of (spec §4.5).
package openpgp

import (
	"cardkey/internal/cryptoprim"
	"cardkey/internal/store"
)

// AID is the OpenPGP application identifier (spec §8 scenario S4).
var AID = []byte{0xD2, 0x76, 0x00, 0x01, 0x24, 0x01}

// MinPINLen and MaxPINLen are OpenPGP's PIN policy (spec §4.5).
const (
	MinPINLen = 6
	MaxPINLen = 127
)

// Slot identifies one of OpenPGP's three key references (spec §3: "three
// (SIG, DEC, AUT)"). Values match the P2 byte GENERATE ASYMMETRIC KEY
// PAIR uses to select a slot.
type Slot byte

const (
	SlotSig Slot = 0x00
	SlotDec Slot = 0x01
	SlotAut Slot = 0x02
)

const numSlots = 3

type keySlot struct {
	generated bool
	priv      [cryptoprim.PrivKeySize]byte
	pub       [cryptoprim.PubKeySize]byte
}

// DefaultUserPIN and DefaultAdminPIN are the factory values (spec §4.5:
// "the factory six-digit user PIN and eight-digit admin PIN").
var (
	DefaultUserPIN  = []byte("123456")
	DefaultAdminPIN = []byte("12345678")
)

const maxNameLen = 39
const maxLangLen = 8
const maxURLLen = 255

// cardholder is the {name, language, sex, url} metadata block (spec
// §4.5).
type cardholder struct {
	name     []byte
	language []byte
	sex      byte
	url      []byte
}

func defaultCardholder() cardholder {
	return cardholder{sex: '9'} // "9" = not announced, per OpenPGP card §4.4.1
}

// App is the OpenPGP application's mutable state (spec §4.5).
type App struct {
	userPIN  store.PINRecord
	userOK   bool
	adminPIN store.PINRecord
	adminOK  bool

	holder      cardholder
	sigCounter  uint32
	terminated  bool
	keys        [numSlots]keySlot

	entropy cryptoprim.Reader
}

// New creates an OpenPGP application with factory defaults.
func New(entropy cryptoprim.Reader) *App {
	a := &App{entropy: entropy}
	a.reset()
	return a
}

// reset restores default PINs and retries, clears cardholder data to
// defaults, and zeroes slots, counter, and the terminated flag (spec
// §4.5 "Reset (factory)").
func (a *App) reset() {
	a.userPIN = store.NewPINRecord(store.DefaultMaxRetries)
	a.userPIN.SetPIN(DefaultUserPIN, MinPINLen, MaxPINLen)
	a.userOK = false

	a.adminPIN = store.NewPINRecord(store.DefaultMaxRetries)
	a.adminPIN.SetPIN(DefaultAdminPIN, MinPINLen, MaxPINLen)
	a.adminOK = false

	a.holder = defaultCardholder()
	a.sigCounter = 0
	a.terminated = false
	a.keys = [numSlots]keySlot{}
}

// Reset restores factory defaults.
func (a *App) Reset() {
	a.reset()
}

// Terminated reports whether the application is in the terminated
// sub-state (router.terminator interface: the router clears current
// selection whenever this is true after Handle returns).
func (a *App) Terminated() bool {
	return a.terminated
}

func slotIndex(p2 byte) (int, bool) {
	switch Slot(p2) {
	case SlotSig:
		return 0, true
	case SlotDec:
		return 1, true
	case SlotAut:
		return 2, true
	default:
		return 0, false
	}
}
