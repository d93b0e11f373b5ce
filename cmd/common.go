package cmd

import (
	"crypto/rand"
	"fmt"
	"os"

	"cardkey/internal/cryptoprim"
	"cardkey/internal/flash"
	"cardkey/internal/mgmt"
	"cardkey/internal/openpgp"
	"cardkey/internal/piv"
	"cardkey/internal/router"
	"cardkey/internal/store"
)

// deviceInfo is the management application's static/default view of this
// simulated token (spec §4.6); EnabledUSB starts equal to SupportedUSB.
var deviceInfo = mgmt.Info{
	Capabilities: 0x0007, // PIV | OpenPGP | management, bit-per-app
	Serial:       1,
	VersionMajor: 1,
	VersionMinor: 0,
	VersionPatch: 0,
	FormFactor:   0x01, // USB-A keychain
	SupportedUSB: 0x03, // CCID | HID
	EnabledUSB:   0x03,
}

// osEntropy draws platform randomness from crypto/rand, satisfying
// hal.Entropy. The teacher's main() drew host challenges for GlobalPlatform
// SCP02 the same way (crypto/rand.Read into a fixed-size buffer); here it
// seeds the one-time DRBG instead of a per-command nonce.
type osEntropy struct{}

func (osEntropy) Read(buf []byte) error {
	_, err := rand.Read(buf)
	return err
}

// stack is the mounted simulated device: a flash image, the store it
// backs, and a router with every application registered.
type stack struct {
	router   *router.Router
	store    *store.Store
	flashDev *flash.Sim
	piv      *piv.App
	openpgp  *openpgp.App
	mgmt     *mgmt.App
}

// openStack loads the flash image at storePath (creating a fresh
// zero-filled one if it doesn't exist yet), mounts the store, and wires
// PIV, OpenPGP, and management applications into a new router.
func openStack() (*stack, error) {
	image, err := os.ReadFile(storePath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading store image: %w", err)
		}
		image = make([]byte, store.MinFlashSize)
	}
	if uint32(len(image)) < store.MinFlashSize {
		image = append(image, make([]byte, store.MinFlashSize-uint32(len(image)))...)
	}

	flashDev := flash.NewSimFromImage(image)

	ent := osEntropy{}
	s, err := store.Mount(flashDev, ent, uint32(len(image)))
	if err != nil {
		return nil, fmt.Errorf("mounting store: %w", err)
	}

	drbg := cryptoprim.NewDRBG(ent)
	if !drbg.IsOK() {
		return nil, fmt.Errorf("seeding DRBG: entropy source failed")
	}

	pivApp := piv.New(drbg.Value)
	pgpApp := openpgp.New(drbg.Value)
	mgmtApp := mgmt.New(deviceInfo)

	r := router.New()
	r.Register(piv.AID, pivApp)
	r.Register(openpgp.AID, pgpApp)
	r.Register(mgmt.AID, mgmtApp)

	return &stack{router: r, store: s, flashDev: flashDev, piv: pivApp, openpgp: pgpApp, mgmt: mgmtApp}, nil
}

// save persists the flash image back to storePath, the way a real token
// would retain flash contents across power cycles.
func (st *stack) save() error {
	return os.WriteFile(storePath, st.flashDev.Image(), 0o600)
}
