package piv

import (
	"testing"

	"cardkey/internal/apdu"
)

type fakeEntropy struct{ b byte }

func (f *fakeEntropy) Read(buf []byte) (int, error) {
	for i := range buf {
		f.b++
		buf[i] = f.b
	}
	return len(buf), nil
}

func verify(a *App, pin []byte) apdu.Response {
	var resp apdu.Response
	a.Handle(apdu.Command{INS: insVerify, P2: 0x80, Data: pin}, &resp)
	return resp
}

// TestPINLockout is spec §8 scenario S1: three VERIFY failures then
// lockout, literal SWs.
func TestPINLockout(t *testing.T) {
	a := New(&fakeEntropy{})
	if out := a.pin.SetPIN([]byte("654321"), MinPINLen, MaxPINLen); out != 0 {
		t.Fatalf("SetPIN: %v", out)
	}

	want := []uint16{0x63C2, 0x63C1, 0x63C0}
	for i, w := range want {
		resp := verify(a, []byte("000000"))
		if resp.SW() != w {
			t.Fatalf("attempt %d: SW=%04X, want %04X", i, resp.SW(), w)
		}
	}
	if resp := verify(a, []byte("654321")); resp.SW() != apdu.SWAuthBlocked {
		t.Fatalf("final verify: SW=%04X, want %04X", resp.SW(), apdu.SWAuthBlocked)
	}
}

// TestKeyGeneration is spec §8 scenario S2.
func TestKeyGeneration(t *testing.T) {
	a := New(&fakeEntropy{})
	if resp := verify(a, DefaultPIN); resp.SW() != apdu.SWSuccess {
		t.Fatalf("verify default PIN: SW=%04X", resp.SW())
	}

	var resp apdu.Response
	a.Handle(apdu.Command{INS: insGenerateKeyPair, P2: byte(SlotAuth)}, &resp)
	if resp.SW() != apdu.SWSuccess {
		t.Fatalf("generate: SW=%04X", resp.SW())
	}
	if len(resp.Body) != 64 {
		t.Fatalf("generate: body len=%d, want 64", len(resp.Body))
	}

	certBody := append([]byte{0x5C, 0x03, 0x5F, 0xC1, 0x05, 0x53, 0x03}, []byte{1, 2, 3}...)
	var putResp apdu.Response
	a.Handle(apdu.Command{INS: insPutData, Data: certBody}, &putResp)
	if putResp.SW() != apdu.SWSuccess {
		t.Fatalf("put data: SW=%04X", putResp.SW())
	}

	getBody := []byte{0x5C, 0x03, 0x5F, 0xC1, 0x05}
	var getResp apdu.Response
	a.Handle(apdu.Command{INS: insGetData, Data: getBody}, &getResp)
	if getResp.SW() != apdu.SWSuccess {
		t.Fatalf("get data: SW=%04X", getResp.SW())
	}
	if string(getResp.Body) != string([]byte{1, 2, 3}) {
		t.Fatalf("get data: body=%v, want [1 2 3]", getResp.Body)
	}
}

func TestGeneralAuthenticateNotSupported(t *testing.T) {
	a := New(&fakeEntropy{})
	var resp apdu.Response
	a.Handle(apdu.Command{INS: insGeneralAuth}, &resp)
	if resp.SW() != apdu.SWNotSupported {
		t.Fatalf("SW=%04X, want %04X", resp.SW(), apdu.SWNotSupported)
	}
}

func TestChangeReferenceData(t *testing.T) {
	a := New(&fakeEntropy{})
	verify(a, DefaultPIN)

	body := append([]byte{6}, DefaultPIN...)
	body = append(body, 8)
	body = append(body, []byte("22222222")...)

	var resp apdu.Response
	a.Handle(apdu.Command{INS: insChangeReference, Data: body}, &resp)
	if resp.SW() != apdu.SWSuccess {
		t.Fatalf("change reference: SW=%04X", resp.SW())
	}

	a.pinVerified = false
	if r := verify(a, DefaultPIN); r.SW() == apdu.SWSuccess {
		t.Fatal("old PIN should no longer verify")
	}
	if r := verify(a, []byte("22222222")); r.SW() != apdu.SWSuccess {
		t.Fatalf("new PIN verify: SW=%04X", r.SW())
	}
}
