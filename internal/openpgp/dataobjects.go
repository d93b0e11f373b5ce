package openpgp

import (
	"encoding/binary"

	"cardkey/internal/cryptoprim"
)

func sha256Sum(b []byte) [32]byte {
	return cryptoprim.SHA256(b)
}

// Recognised data-object tags (spec §6). Two-byte tags map directly from
// P1||P2 on GET DATA/PUT DATA; the 0x65/0x6E composite templates are
// assembled on read from the individual leaf DOs rather than stored
// whole (SPEC_FULL §13's OpenPGP card v3.4 §4.1 composite-DO convention).
const (
	tagName           = 0x005B
	tagLanguage       = 0x5F2D
	tagSex            = 0x5F35
	tagURL            = 0x5F50
	tagAID            = 0x004F
	tagKeyAttrSig     = 0x00C1
	tagKeyAttrDec     = 0x00C2
	tagKeyAttrAut     = 0x00C3
	tagPINStatus      = 0x00C4
	tagFingerprintSig = 0x00C7
	tagFingerprintDec = 0x00C8
	tagFingerprintAut = 0x00C9
	tagKeyInfo        = 0x00DE

	tagCardholderData = 0x0065
	tagApplicationData = 0x006E
)

// ecdsaAlgAttr is the fixed algorithm-attribute value this core reports
// for every slot: ECDSA over P-256 (spec §4.5 default).
var ecdsaAlgAttr = []byte{0x13, 0x2A, 0x86, 0x48, 0xCE, 0x3D, 0x03, 0x01, 0x07} // id-ecPublicKey prime256v1

func (a *App) getData(tag uint16) ([]byte, bool) {
	switch tag {
	case tagName:
		return a.holder.name, true
	case tagLanguage:
		return a.holder.language, true
	case tagSex:
		return []byte{a.holder.sex}, true
	case tagURL:
		return a.holder.url, true
	case tagAID:
		return append([]byte(nil), AID...), true
	case tagKeyAttrSig:
		return ecdsaAlgAttr, true
	case tagKeyAttrDec:
		return ecdsaAlgAttr, true
	case tagKeyAttrAut:
		return ecdsaAlgAttr, true
	case tagPINStatus:
		return a.pinStatusDO(), true
	case tagFingerprintSig:
		return a.fingerprint(0), a.keys[0].generated
	case tagFingerprintDec:
		return a.fingerprint(1), a.keys[1].generated
	case tagFingerprintAut:
		return a.fingerprint(2), a.keys[2].generated
	case tagKeyInfo:
		return a.keyInfoDO(), true
	case tagCardholderData:
		return a.cardholderTemplate(), true
	case tagApplicationData:
		return a.applicationTemplate(), true
	default:
		return nil, false
	}
}

// pinStatusDO reports PW1/PW3 validity and retry counters, the minimal
// shape a host uses to decide whether to prompt for a PIN.
func (a *App) pinStatusDO() []byte {
	return []byte{1, byte(MinPINLen), byte(MaxPINLen), byte(MaxPINLen), a.userPIN.Retries, a.adminPIN.Retries, a.adminPIN.Retries}
}

// fingerprint is SHA-256 over the slot's public key, truncated to the 20
// bytes OpenPGP card fingerprints conventionally occupy — this core has
// no PGP packet format to hash over, so the public key itself stands in
// for the key material being fingerprinted.
func (a *App) fingerprint(idx int) []byte {
	if !a.keys[idx].generated {
		return make([]byte, 20)
	}
	sum := sha256Sum(a.keys[idx].pub[:])
	return sum[:20]
}

func (a *App) keyInfoDO() []byte {
	out := make([]byte, 0, numSlots*2)
	for i, k := range a.keys {
		out = append(out, byte(i+1))
		if k.generated {
			out = append(out, 1)
		} else {
			out = append(out, 0)
		}
	}
	return out
}

func (a *App) cardholderTemplate() []byte {
	var out []byte
	out = appendDO(out, tagName, a.holder.name)
	out = appendDO(out, tagLanguage, a.holder.language)
	out = appendDO(out, tagSex, []byte{a.holder.sex})
	return wrapTemplate(tagCardholderData, out)
}

func (a *App) applicationTemplate() []byte {
	var out []byte
	out = appendDO(out, tagAID, AID)
	out = appendDO(out, tagPINStatus, a.pinStatusDO())
	return wrapTemplate(tagApplicationData, out)
}

func appendDO(buf []byte, tag uint16, value []byte) []byte {
	var tagBytes [2]byte
	binary.BigEndian.PutUint16(tagBytes[:], tag)
	if tag <= 0xFF {
		buf = append(buf, tagBytes[1])
	} else {
		buf = append(buf, tagBytes[0], tagBytes[1])
	}
	buf = append(buf, byte(len(value)))
	buf = append(buf, value...)
	return buf
}

func wrapTemplate(tag uint16, inner []byte) []byte {
	out := appendDO(nil, tag, inner)
	return out
}

func (a *App) putData(tag uint16, value []byte) bool {
	switch tag {
	case tagName:
		if len(value) > maxNameLen {
			return false
		}
		a.holder.name = append([]byte(nil), value...)
	case tagLanguage:
		if len(value) > maxLangLen {
			return false
		}
		a.holder.language = append([]byte(nil), value...)
	case tagSex:
		if len(value) != 1 {
			return false
		}
		a.holder.sex = value[0]
	case tagURL:
		if len(value) > maxURLLen {
			return false
		}
		a.holder.url = append([]byte(nil), value...)
	default:
		return false
	}
	return true
}
