// Package randsrc narrows pkg/rng down to the single capability the table
// and tournament engines need: 32 fresh random bytes to seed a shuffle or
// a spin-and-go multiplier draw. Nothing above this interface is allowed
// to reach for an ambient RNG.
package randsrc

import "tablestakes/pkg/rng"

// Source yields raw random bytes. Every call must return fresh entropy;
// callers are responsible for turning it into a deterministic operation
// (Shuffle, multiplier draw) exactly once.
type Source interface {
	RawRand() ([32]byte, error)
}

// System adapts pkg/rng.System to the Source interface.
type System struct {
	rng *rng.System
}

// NewSystem wraps an existing pkg/rng.System.
func NewSystem(r *rng.System) *System {
	return &System{rng: r}
}

func (s *System) RawRand() ([32]byte, error) {
	var out [32]byte
	b, err := s.rng.RandomBytes(32)
	if err != nil {
		return out, err
	}
	copy(out[:], b)
	return out, nil
}

// Fixed is a deterministic Source for tests: it always returns the same
// bytes, or steps through a fixed sequence once if more than one is
// supplied and then keeps returning the last.
type Fixed struct {
	draws [][32]byte
	next  int
}

// NewFixed returns a Source that replays draws in order, repeating the
// last one once exhausted.
func NewFixed(draws ...[32]byte) *Fixed {
	return &Fixed{draws: draws}
}

func (f *Fixed) RawRand() ([32]byte, error) {
	if len(f.draws) == 0 {
		return [32]byte{}, nil
	}
	idx := f.next
	if idx >= len(f.draws) {
		idx = len(f.draws) - 1
	} else {
		f.next++
	}
	return f.draws[idx], nil
}
