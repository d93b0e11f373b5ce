package mgmt

import (
	"testing"

	"cardkey/internal/apdu"
)

func TestGetDeviceInfo(t *testing.T) {
	a := New(Info{Capabilities: 0x0001, Serial: 123, SupportedUSB: 0x03, EnabledUSB: 0x03})
	var resp apdu.Response
	a.Handle(apdu.Command{INS: insGetDeviceInfo}, &resp)
	if resp.SW() != apdu.SWSuccess {
		t.Fatalf("SW=%04X", resp.SW())
	}
	if len(resp.Body) == 0 {
		t.Fatal("expected non-empty info body")
	}
}

func TestSetDeviceInfoRejectsUnsupportedBits(t *testing.T) {
	a := New(Info{SupportedUSB: 0x01})
	var resp apdu.Response
	a.Handle(apdu.Command{INS: insSetDeviceInfo, Data: []byte{tagEnabledUSB, 1, 0x02}}, &resp)
	if resp.SW() != apdu.SWWrongData {
		t.Fatalf("SW=%04X, want 6A80", resp.SW())
	}
}

func TestSetDeviceInfoAcceptsSubsetOfSupported(t *testing.T) {
	a := New(Info{SupportedUSB: 0x03})
	var resp apdu.Response
	a.Handle(apdu.Command{INS: insSetDeviceInfo, Data: []byte{tagEnabledUSB, 1, 0x01}}, &resp)
	if resp.SW() != apdu.SWSuccess {
		t.Fatalf("SW=%04X", resp.SW())
	}
	if a.Info().EnabledUSB != 0x01 {
		t.Fatalf("EnabledUSB=%x, want 1", a.Info().EnabledUSB)
	}
}
