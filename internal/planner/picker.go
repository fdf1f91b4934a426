package planner

import (
	"math/rand/v2"
	"time"
)

// Picker chooses one of n candidates, returning an index in [0, n).
// Implementations need not be safe for concurrent use.
type Picker interface {
	Pick(n int) int
}

// RandPicker is a seeded PCG-backed Picker.
type RandPicker struct {
	rng *rand.Rand
}

// NewRandPicker returns a Picker that yields the same sequence for the same seed.
func NewRandPicker(seed uint64) *RandPicker {
	return &RandPicker{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewClockPicker seeds a RandPicker from the wall clock.
func NewClockPicker() *RandPicker {
	return NewRandPicker(uint64(time.Now().UnixNano()))
}

// Pick returns a uniformly distributed index in [0, n).
func (p *RandPicker) Pick(n int) int {
	return p.rng.IntN(n)
}
