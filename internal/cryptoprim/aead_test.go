package cryptoprim

import "testing"

func testKey() []byte {
	k := make([]byte, AEADKeySize)
	for i := range k {
		k[i] = byte(i)
	}
	return k
}

func testNonce() []byte {
	return make([]byte, AEADNonceSize)
}

func TestAEADSealOpenRoundTrip(t *testing.T) {
	key, nonce := testKey(), testNonce()
	aad := []byte("credential-id")
	plaintext := []byte("super secret PIN-protected payload")

	sealed := AEADSeal(key, nonce, aad, plaintext)
	if !sealed.IsOK() {
		t.Fatalf("AEADSeal: kind %v", sealed.Kind)
	}

	opened := AEADOpen(key, nonce, aad, sealed.Value.Ciphertext, sealed.Value.Tag)
	if opened.Kind != AEADOpenOK {
		t.Fatalf("AEADOpen: kind %v", opened.Kind)
	}
	if string(opened.Plaintext) != string(plaintext) {
		t.Fatalf("AEADOpen plaintext = %q, want %q", opened.Plaintext, plaintext)
	}
}

func TestAEADOpenRejectsTamperedCiphertext(t *testing.T) {
	key, nonce := testKey(), testNonce()
	sealed := AEADSeal(key, nonce, nil, []byte("payload"))
	if !sealed.IsOK() {
		t.Fatalf("AEADSeal: kind %v", sealed.Kind)
	}
	tampered := append([]byte(nil), sealed.Value.Ciphertext...)
	tampered[0] ^= 0xFF

	opened := AEADOpen(key, nonce, nil, tampered, sealed.Value.Tag)
	if opened.Kind != AEADOpenAuthFailed {
		t.Fatalf("AEADOpen on tampered ciphertext: kind %v, want AEADOpenAuthFailed", opened.Kind)
	}
}

func TestAEADOpenRejectsWrongAAD(t *testing.T) {
	key, nonce := testKey(), testNonce()
	sealed := AEADSeal(key, nonce, []byte("real-aad"), []byte("payload"))
	if !sealed.IsOK() {
		t.Fatalf("AEADSeal: kind %v", sealed.Kind)
	}
	opened := AEADOpen(key, nonce, []byte("wrong-aad"), sealed.Value.Ciphertext, sealed.Value.Tag)
	if opened.Kind != AEADOpenAuthFailed {
		t.Fatalf("AEADOpen with wrong AAD: kind %v, want AEADOpenAuthFailed", opened.Kind)
	}
}

func TestAEADSealRejectsWrongSizeKeyOrNonce(t *testing.T) {
	if r := AEADSeal(make([]byte, 10), testNonce(), nil, []byte("x")); r.IsOK() {
		t.Fatal("expected InvalidParam for wrong key size")
	}
	if r := AEADSeal(testKey(), make([]byte, 4), nil, []byte("x")); r.IsOK() {
		t.Fatal("expected InvalidParam for wrong nonce size")
	}
}
