package simulation

import (
	"math/rand/v2"
	"time"
)

// RandomSource yields values uniformly distributed in [0, 1).
// *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// NewSeededSource returns a deterministic source. A zero seed picks one
// from the wall clock.
func NewSeededSource(seed uint64) RandomSource {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// ConstantSource always returns the same value. ConstantSource(0.5)
// produces zero perturbation.
type ConstantSource float64

func (c ConstantSource) Float64() float64 { return float64(c) }

// SequenceSource replays pre-recorded values in order and then repeats
// the last one.
type SequenceSource struct {
	values []float64
	next   int
}

func NewSequenceSource(values ...float64) *SequenceSource {
	return &SequenceSource{values: values}
}

func (s *SequenceSource) Float64() float64 {
	if len(s.values) == 0 {
		return 0.5
	}
	if s.next >= len(s.values) {
		return s.values[len(s.values)-1]
	}
	v := s.values[s.next]
	s.next++
	return v
}

// SourceForVariation maps a wanted perturbation in watts back to the
// source value that produces it.
func SourceForVariation(watts float64) float64 {
	return watts/(2*MaxVariation) + 0.5
}
