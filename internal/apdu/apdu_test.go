package apdu

import "testing"

func TestParseCommandNoBody(t *testing.T) {
	cmd, ok := ParseCommand([]byte{0x00, 0xA4, 0x04, 0x00})
	if !ok {
		t.Fatal("expected ok")
	}
	if !cmd.IsSelect() {
		t.Fatal("expected IsSelect")
	}
	if cmd.Le != -1 || len(cmd.Data) != 0 {
		t.Fatalf("unexpected cmd: %+v", cmd)
	}
}

func TestParseCommandLeOnly(t *testing.T) {
	cmd, ok := ParseCommand([]byte{0x00, 0xCA, 0x00, 0x00, 0x00})
	if !ok {
		t.Fatal("expected ok")
	}
	if cmd.Le != 256 {
		t.Fatalf("Le = %d, want 256 (Le=0 means 256)", cmd.Le)
	}
}

func TestParseCommandWithDataAndLe(t *testing.T) {
	raw := []byte{0x00, 0x20, 0x00, 0x80, 0x04, 0x31, 0x32, 0x33, 0x34, 0x00}
	cmd, ok := ParseCommand(raw)
	if !ok {
		t.Fatal("expected ok")
	}
	if string(cmd.Data) != "1234" {
		t.Fatalf("Data = %q", cmd.Data)
	}
	if cmd.Le != 256 {
		t.Fatalf("Le = %d, want 256", cmd.Le)
	}
}

func TestParseCommandTooShort(t *testing.T) {
	if _, ok := ParseCommand([]byte{0x00, 0xA4, 0x04}); ok {
		t.Fatal("expected not ok for short buffer")
	}
}

func TestParseCommandLcOverrunsBuffer(t *testing.T) {
	raw := []byte{0x00, 0x20, 0x00, 0x80, 0x04, 0x31, 0x32}
	if _, ok := ParseCommand(raw); ok {
		t.Fatal("expected not ok when declared Lc overruns the buffer")
	}
}

func TestParseCommandTrailingGarbage(t *testing.T) {
	raw := []byte{0x00, 0x20, 0x00, 0x80, 0x01, 0x31, 0xAA, 0xBB}
	if _, ok := ParseCommand(raw); ok {
		t.Fatal("expected not ok for data followed by more than one trailing byte")
	}
}

func TestResponseMarshalAndSW(t *testing.T) {
	var r Response
	r.Body = []byte{0xDE, 0xAD}
	r.SetSW(SWSuccess)
	if r.SW() != SWSuccess {
		t.Fatalf("SW() = %04X, want %04X", r.SW(), SWSuccess)
	}
	want := []byte{0xDE, 0xAD, 0x90, 0x00}
	got := r.Marshal()
	if len(got) != len(want) {
		t.Fatalf("Marshal() = %X, want %X", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Marshal() = %X, want %X", got, want)
		}
	}
}

func TestResponseSWUnset(t *testing.T) {
	var r Response
	if !r.swUnset() {
		t.Fatal("expected zero-value response to be swUnset")
	}
	r.SetSW(SWSuccess)
	if r.swUnset() {
		t.Fatal("expected swUnset false after SetSW")
	}
}

func TestSWVerifyFailedClampsToLowNibble(t *testing.T) {
	if sw := SWVerifyFailed(3); sw != 0x63C3 {
		t.Fatalf("SWVerifyFailed(3) = %04X, want 63C3", sw)
	}
	if sw := SWVerifyFailed(0xFF); sw != 0x63CF {
		t.Fatalf("SWVerifyFailed(0xFF) = %04X, want 63CF (clamped to low nibble)", sw)
	}
}

func TestSplitSW(t *testing.T) {
	sw1, sw2 := SplitSW(0x6A82)
	if sw1 != 0x6A || sw2 != 0x82 {
		t.Fatalf("SplitSW = %02X %02X, want 6A 82", sw1, sw2)
	}
}
