package cryptoprim

import "testing"

func TestSHA256KnownVector(t *testing.T) {
	// SHA-256("") per FIPS 180-4 test vectors.
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"[:64]
	got := SHA256(nil)
	if hex(got[:]) != want {
		t.Fatalf("SHA256(\"\") = %s, want %s", hex(got[:]), want)
	}
}

func TestHMACSHA256RejectsEmptyKey(t *testing.T) {
	if r := HMACSHA256(nil, []byte("msg")); r.IsOK() {
		t.Fatal("expected InvalidParam for an empty HMAC key")
	}
}

func TestHKDFExtractThenExpandMatchesHKDF(t *testing.T) {
	salt := []byte("salt")
	ikm := []byte("input key material")
	info := []byte("context")

	prk := HKDFExtract(salt, ikm)
	if !prk.IsOK() {
		t.Fatalf("HKDFExtract: kind %v", prk.Kind)
	}
	okm1 := HKDFExpand(prk.Value[:], info, 32)
	if !okm1.IsOK() {
		t.Fatalf("HKDFExpand: kind %v", okm1.Kind)
	}

	okm2 := HKDF(salt, ikm, info, 32)
	if !okm2.IsOK() {
		t.Fatalf("HKDF: kind %v", okm2.Kind)
	}
	if string(okm1.Value) != string(okm2.Value) {
		t.Fatal("HKDF must match separate Extract+Expand calls")
	}
}

func TestHKDFExpandRejectsBadLength(t *testing.T) {
	prk := HKDFExtract([]byte("s"), []byte("ikm"))
	if r := HKDFExpand(prk.Value[:], nil, 0); r.IsOK() {
		t.Fatal("expected InvalidParam for length <= 0")
	}
	if r := HKDFExpand(prk.Value[:], nil, 255*32+1); r.IsOK() {
		t.Fatal("expected InvalidParam for length beyond HKDF's max")
	}
}

func hex(b []byte) string {
	const digits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, v := range b {
		out[i*2] = digits[v>>4]
		out[i*2+1] = digits[v&0xF]
	}
	return string(out)
}
