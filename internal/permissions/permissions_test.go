package permissions

import "testing"

func TestCheckUnboundBitmap(t *testing.T) {
	var r Record
	r.Set(BitMakeCredential|BitGetAssertion, nil)
	var rpHash [32]byte
	rpHash[0] = 1
	if !r.Check(BitMakeCredential, rpHash) {
		t.Fatal("expected MC bit set with no bound rp-id to check true regardless of rp-id-hash")
	}
}

func TestCheckBoundRPIDHash(t *testing.T) {
	var r Record
	var rpHash [32]byte
	rpHash[0] = 7
	r.Set(BitMakeCredential, &rpHash)

	if !r.Check(BitMakeCredential, rpHash) {
		t.Fatal("expected check to succeed for matching rp-id-hash")
	}
	var other [32]byte
	other[0] = 9
	if r.Check(BitMakeCredential, other) {
		t.Fatal("expected check to fail for mismatched rp-id-hash")
	}
}

func TestClearWipesRecord(t *testing.T) {
	var r Record
	r.Set(BitReadConfig, nil)
	r.Clear()
	if r.Check(BitReadConfig, [32]byte{}) {
		t.Fatal("expected check to fail after clear")
	}
}

func TestCheckUnsetBitReturnsFalse(t *testing.T) {
	var r Record
	r.Set(BitReadConfig, nil)
	if r.Check(BitManageCredentials, [32]byte{}) {
		t.Fatal("expected unset bit to return false")
	}
}
