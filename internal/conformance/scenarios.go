package conformance

import (
	"fmt"

	"cardkey/internal/apdu"
	"cardkey/internal/openpgp"
	"cardkey/internal/piv"
	"cardkey/internal/store"
)

type scenario struct {
	name     string
	expected string
	run      func(fx *fixture) (actual string, passed bool)
}

var scenarios = []scenario{
	{
		name:     "S1 PIN lockout",
		expected: "63C2, 63C1, 63C0, then 6983",
		run:      runS1,
	},
	{
		name:     "S2 PIV key generation",
		expected: "64-byte public key, 9000; PUT/GET DATA round-trip",
		run:      runS2,
	},
	{
		name:     "S3 OpenPGP PIN change",
		expected: "9000, 9000, 63C2, 9000",
		run:      runS3,
	},
	{
		name:     "S4 Router fallback",
		expected: "6A82 before SELECT; 9000 after SELECT OpenPGP",
		run:      runS4,
	},
	{
		name:     "S5 Credential tampering detection",
		expected: "corrupted, never a partial decode",
		run:      runS5,
	},
	{
		name:     "S6 Counter monotonicity under restart",
		expected: "strictly greater than 5 after remount",
		run:      runS6,
	},
}

func runS1(fx *fixture) (string, bool) {
	fx.selectAID(piv.AID)
	fx.dispatch(0x00, 0x20, 0x00, 0x00, nil) // establish baseline, unverified

	var got []uint16
	for i := 0; i < 3; i++ {
		resp := fx.dispatch(0x00, 0x20, 0x00, 0x80, []byte("000000"))
		got = append(got, resp.SW())
	}
	final := fx.dispatch(0x00, 0x20, 0x00, 0x80, []byte("654321"))
	got = append(got, final.SW())

	want := []uint16{0x63C2, 0x63C1, 0x63C0, apdu.SWAuthBlocked}
	actual := fmt.Sprintf("%04X", got)
	if len(got) != len(want) {
		return actual, false
	}
	for i := range want {
		if got[i] != want[i] {
			return actual, false
		}
	}
	return actual, true
}

func runS2(fx *fixture) (string, bool) {
	fx.selectAID(piv.AID)
	verifyResp := fx.dispatch(0x00, 0x20, 0x00, 0x80, []byte("123456"))
	if verifyResp.SW() != apdu.SWSuccess {
		return fmt.Sprintf("verify SW=%04X", verifyResp.SW()), false
	}

	genResp := fx.dispatch(0x00, 0x47, 0x00, 0x9A, nil)
	if genResp.SW() != apdu.SWSuccess || len(genResp.Body) != 64 {
		return fmt.Sprintf("generate SW=%04X len=%d", genResp.SW(), len(genResp.Body)), false
	}

	cert := []byte{1, 2, 3, 4}
	putBody := append([]byte{0x5C, 0x03, 0x5F, 0xC1, 0x05, 0x53, byte(len(cert))}, cert...)
	putResp := fx.dispatch(0x00, 0xDB, 0x3F, 0xFF, putBody)
	if putResp.SW() != apdu.SWSuccess {
		return fmt.Sprintf("put data SW=%04X", putResp.SW()), false
	}

	getResp := fx.dispatch(0x00, 0xCB, 0x3F, 0xFF, []byte{0x5C, 0x03, 0x5F, 0xC1, 0x05})
	if getResp.SW() != apdu.SWSuccess || string(getResp.Body) != string(cert) {
		return fmt.Sprintf("get data SW=%04X body=%v", getResp.SW(), getResp.Body), false
	}
	return "ok", true
}

func runS3(fx *fixture) (string, bool) {
	fx.selectAID(openpgp.AID)

	v1 := fx.dispatch(0x00, 0x20, 0x00, 0x83, []byte("12345678"))
	change := append(append([]byte{}, []byte("12345678")...), []byte("ABCDEFGH")...)
	c1 := fx.dispatch(0x00, 0x24, 0x00, 0x83, change)
	v2 := fx.dispatch(0x00, 0x20, 0x00, 0x83, []byte("12345678"))
	v3 := fx.dispatch(0x00, 0x20, 0x00, 0x83, []byte("ABCDEFGH"))

	got := []uint16{v1.SW(), c1.SW(), v2.SW(), v3.SW()}
	want := []uint16{apdu.SWSuccess, apdu.SWSuccess, 0x63C2, apdu.SWSuccess}
	actual := fmt.Sprintf("%04X", got)
	for i := range want {
		if got[i] != want[i] {
			return actual, false
		}
	}
	return actual, true
}

func runS4(fx *fixture) (string, bool) {
	before := fx.dispatch(0x00, 0x20, 0x00, 0x00, nil)
	if before.SW() != apdu.SWFileNotFound || len(before.Body) != 0 {
		return fmt.Sprintf("pre-select SW=%04X body_len=%d", before.SW(), len(before.Body)), false
	}

	sel := fx.selectAID(openpgp.AID)
	if sel.SW() != apdu.SWSuccess {
		return fmt.Sprintf("select SW=%04X", sel.SW()), false
	}

	verify := fx.dispatch(0x00, 0x20, 0x00, 0x81, nil)
	// Routed to OpenPGP: an empty-body VERIFY with an unverified PIN
	// reports 63CX, never the router's own 6A82 fallback.
	if verify.SW() == apdu.SWFileNotFound {
		return fmt.Sprintf("post-select verify SW=%04X", verify.SW()), false
	}
	return fmt.Sprintf("pre=%04X post_select=%04X post_verify=%04X", before.SW(), sel.SW(), verify.SW()), true
}

func runS5(fx *fixture) (string, bool) {
	var id [16]byte
	id[0] = 0x42
	c := store.Credential{ID: id, RPIDHash: [32]byte{1, 2, 3}}
	if out := fx.s.StoreCredential(c); out != store.CredOK {
		return fmt.Sprintf("store: %v", out), false
	}

	if out := fx.s.CorruptCredentialCiphertext(id); out != store.CredOK {
		return fmt.Sprintf("tamper: %v", out), false
	}

	_, out := fx.s.FindCredential(id)
	if out != store.CredCorrupted {
		return fmt.Sprintf("find after tamper: %v, want Corrupted", out), false
	}
	return "corrupted", true
}

func runS6(fx *fixture) (string, bool) {
	var last uint32
	for i := 0; i < 5; i++ {
		v, err := fx.s.NextCounter()
		if err != nil {
			return err.Error(), false
		}
		last = v
	}
	// Counter persistence across a simulated power-cycle is exercised at
	// the flash level directly by store's own TestCounterMonotonicAcrossRemount;
	// here the in-process scenario demonstrates the same property by
	// remounting over the fixture's own flash image.
	s2, err := store.Mount(fx.flashDev, fx.entropy, store.MinFlashSize)
	if err != nil {
		return err.Error(), false
	}
	remounted, err := s2.NextCounter()
	if err != nil {
		return err.Error(), false
	}
	if remounted <= last {
		return fmt.Sprintf("remounted=%d, want > %d", remounted, last), false
	}
	return fmt.Sprintf("last=%d remounted=%d", last, remounted), true
}
