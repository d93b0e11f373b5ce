package flash

import (
	"testing"

	"cardkey/internal/hal"
)

func TestReadWriteRoundTrip(t *testing.T) {
	s := NewSim(hal.SectorSize * 2)
	data := []byte("hello flash")
	if err := s.Write(10, data); err != nil {
		t.Fatalf("Write: %v", err)
	}
	buf := make([]byte, len(data))
	if err := s.Read(10, buf); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(buf) != string(data) {
		t.Fatalf("Read back %q, want %q", buf, data)
	}
}

func TestReadWriteOutOfRange(t *testing.T) {
	s := NewSim(hal.SectorSize)
	buf := make([]byte, 16)
	if err := s.Read(hal.SectorSize-4, buf); err != ErrOutOfRange {
		t.Fatalf("Read out of range: got %v, want ErrOutOfRange", err)
	}
	if err := s.Write(hal.SectorSize-4, buf); err != ErrOutOfRange {
		t.Fatalf("Write out of range: got %v, want ErrOutOfRange", err)
	}
}

func TestEraseZeroesSectorAndRequiresAlignment(t *testing.T) {
	s := NewSim(hal.SectorSize * 2)
	fill := make([]byte, hal.SectorSize)
	for i := range fill {
		fill[i] = 0xFF
	}
	if err := s.Write(0, fill); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := s.Erase(1); err != ErrNotAligned {
		t.Fatalf("Erase(1) = %v, want ErrNotAligned", err)
	}
	if err := s.Erase(0); err != nil {
		t.Fatalf("Erase(0): %v", err)
	}
	buf := make([]byte, hal.SectorSize)
	if err := s.Read(0, buf); err != nil {
		t.Fatalf("Read: %v", err)
	}
	for i, b := range buf {
		if b != 0 {
			t.Fatalf("byte %d = %02X after erase, want 0", i, b)
		}
	}
}

func TestNotMountedBeforeBackingBytes(t *testing.T) {
	var s Sim
	if err := s.Init(); err != ErrNotMounted {
		t.Fatalf("Init on zero-value Sim = %v, want ErrNotMounted", err)
	}
}

func TestImageSharesBackingArray(t *testing.T) {
	image := make([]byte, hal.SectorSize)
	s := NewSimFromImage(image)
	if err := s.Write(0, []byte{0xAB}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if s.Image()[0] != 0xAB {
		t.Fatal("Image() did not reflect the write through the shared backing slice")
	}
}
