// Package flash implements the block-erase/page-program/read HAL surface
// (spec §6) component C3. It is pure address-space bookkeeping: callers
// are responsible for sector/page alignment and for the "prepare the full
// image, then commit in one write" discipline spec §5 requires for
// crash-atomicity.
package flash

import (
	"errors"

	"cardkey/internal/hal"
)

var (
	ErrOutOfRange  = errors.New("flash: address out of range")
	ErrNotAligned  = errors.New("flash: erase offset not sector-aligned")
	ErrNotMounted  = errors.New("flash: not initialized")
)

// Sim is an in-memory, optionally file-backed Flash implementation used
// by the CLI simulator and by every test in this module — the teacher's
// sim/card_drivers package provided several concrete backends behind one
// interface (rusim, grcard, sysmocom); Sim plays the analogous role here,
// standing in for the real flash chip a production build would drive.
type Sim struct {
	data []byte
}

var _ hal.Flash = (*Sim)(nil)

// NewSim creates a Sim of the given total size, normally a multiple of
// hal.SectorSize and at least the 64 KiB spec §6 requires.
func NewSim(size uint32) *Sim {
	return &Sim{data: make([]byte, size)}
}

// NewSimFromImage wraps an existing byte slice (e.g. loaded from a file by
// the CLI's --store flag) as a Flash backend without copying.
func NewSimFromImage(image []byte) *Sim {
	return &Sim{data: image}
}

func (s *Sim) Init() error {
	if s.data == nil {
		return ErrNotMounted
	}
	return nil
}

func (s *Sim) Read(off uint32, buf []byte) error {
	if s.data == nil {
		return ErrNotMounted
	}
	end := uint64(off) + uint64(len(buf))
	if end > uint64(len(s.data)) {
		return ErrOutOfRange
	}
	copy(buf, s.data[off:uint32(end)])
	return nil
}

func (s *Sim) Write(off uint32, data []byte) error {
	if s.data == nil {
		return ErrNotMounted
	}
	end := uint64(off) + uint64(len(data))
	if end > uint64(len(s.data)) {
		return ErrOutOfRange
	}
	copy(s.data[off:uint32(end)], data)
	return nil
}

func (s *Sim) Erase(off uint32) error {
	if s.data == nil {
		return ErrNotMounted
	}
	if off%hal.SectorSize != 0 {
		return ErrNotAligned
	}
	end := uint64(off) + hal.SectorSize
	if end > uint64(len(s.data)) {
		return ErrOutOfRange
	}
	sector := s.data[off:uint32(end)]
	for i := range sector {
		sector[i] = 0
	}
	return nil
}

// Image returns the underlying backing bytes, for the CLI to persist a
// flash image to disk across invocations.
func (s *Sim) Image() []byte {
	return s.data
}
