// Package mgmt implements component C8: the management application that
// exposes device info as a TLV blob and gates which USB transports are
// enabled (spec §4.6).
package mgmt

import "cardkey/internal/apdu"

// AID is the management application identifier.
var AID = []byte{0xA0, 0x00, 0x00, 0x05, 0x27, 0x47, 0x11, 0x17}

// Device info TLV tags (spec §4.6).
const (
	tagCapabilities  = 0x01
	tagSerial        = 0x02
	tagVersion       = 0x03
	tagFormFactor    = 0x04
	tagSupportedUSB  = 0x05
	tagEnabledUSB    = 0x06
)

const (
	insGetDeviceInfo = 0x1D
	insSetDeviceInfo = 0x1C
)

// Info is the device info block spec §4.6 enumerates.
type Info struct {
	Capabilities uint16
	Serial       uint32
	VersionMajor byte
	VersionMinor byte
	VersionPatch byte
	FormFactor   byte
	SupportedUSB byte
	EnabledUSB   byte
}

// App is the management application (spec §4.6): essentially a read
// mostly TLV view over Info, plus the one mutable field (EnabledUSB).
type App struct {
	info Info
}

// New creates a management application reporting the given static info.
func New(info Info) *App {
	return &App{info: info}
}

// Handle dispatches a routed management command.
func (a *App) Handle(cmd apdu.Command, resp *apdu.Response) {
	switch cmd.INS {
	case insGetDeviceInfo:
		resp.Body = a.encodeInfo()
		resp.SetSW(apdu.SWSuccess)
	case insSetDeviceInfo:
		a.handleSetDeviceInfo(cmd, resp)
	default:
		resp.SetSW(apdu.SWInsNotSupported)
	}
}

// handleSetDeviceInfo allows the host to set the enabled-USB-mask
// subject to `new & ~supported == 0` (spec §4.6).
func (a *App) handleSetDeviceInfo(cmd apdu.Command, resp *apdu.Response) {
	tag, value, ok := parseTLV(cmd.Data)
	if !ok || tag != tagEnabledUSB || len(value) != 1 {
		resp.SetSW(apdu.SWWrongData)
		return
	}
	newMask := value[0]
	if newMask&^a.info.SupportedUSB != 0 {
		resp.SetSW(apdu.SWWrongData)
		return
	}
	a.info.EnabledUSB = newMask
	resp.SetSW(apdu.SWSuccess)
}

func parseTLV(body []byte) (tag byte, value []byte, ok bool) {
	if len(body) < 2 {
		return 0, nil, false
	}
	n := int(body[1])
	if 2+n != len(body) {
		return 0, nil, false
	}
	return body[0], body[2 : 2+n], true
}

func (a *App) encodeInfo() []byte {
	var out []byte
	out = append(out, tagCapabilities, 2, byte(a.info.Capabilities>>8), byte(a.info.Capabilities))
	out = append(out, tagSerial, 4,
		byte(a.info.Serial>>24), byte(a.info.Serial>>16), byte(a.info.Serial>>8), byte(a.info.Serial))
	out = append(out, tagVersion, 3, a.info.VersionMajor, a.info.VersionMinor, a.info.VersionPatch)
	out = append(out, tagFormFactor, 1, a.info.FormFactor)
	out = append(out, tagSupportedUSB, 1, a.info.SupportedUSB)
	out = append(out, tagEnabledUSB, 1, a.info.EnabledUSB)
	return out
}

// Info returns a copy of the current device info.
func (a *App) Info() Info {
	return a.info
}

// FCITemplate returns the body returned on SELECT (router.Handler).
func (a *App) FCITemplate() []byte {
	return []byte{}
}
