package store

import "encoding/binary"

func (s *Store) writeCounter(v uint32) error {
	buf := make([]byte, counterSize)
	binary.LittleEndian.PutUint32(buf[0:4], v)
	return s.flash.Write(counterOffset, buf)
}

func (s *Store) readCounter() (uint32, error) {
	buf := make([]byte, 4)
	if err := s.flash.Read(counterOffset, buf); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

// NextCounter monotonically increments the global signature counter and
// persists the new value before returning it (spec §4.2, invariant 5).
func (s *Store) NextCounter() (uint32, error) {
	v, err := s.readCounter()
	if err != nil {
		return 0, err
	}
	v++
	if err := s.writeCounter(v); err != nil {
		return 0, err
	}
	return v, nil
}

// CurrentCounter reads the counter without incrementing it.
func (s *Store) CurrentCounter() (uint32, error) {
	return s.readCounter()
}
