package sim

import "math/rand"

// DecaySource yields the dispersion coefficient applied to CO2/CO during
// green phases. Randomness is isolated here so Advance stays pure and
// test runs are reproducible from a seed.
type DecaySource interface {
	Coefficient() float64
}

// Fixed is a DecaySource that always returns the same coefficient.
type Fixed float64

func (f Fixed) Coefficient() float64 {
	return float64(f)
}

// SeededSource draws coefficients uniformly from [min, max] using a
// seeded generator. Two sources built from the same seed produce the
// same coefficient sequence.
type SeededSource struct {
	rng      *rand.Rand
	min, max float64
}

// NewSeededSource creates a source over [min, max] with an explicit seed.
func NewSeededSource(seed int64, min, max float64) *SeededSource {
	return &SeededSource{
		rng: rand.New(rand.NewSource(seed)),
		min: min,
		max: max,
	}
}

// NewConfigSource creates a seeded source over the config's decay range.
func NewConfigSource(seed int64, cfg Config) *SeededSource {
	return NewSeededSource(seed, cfg.DecayMin, cfg.DecayMax)
}

func (s *SeededSource) Coefficient() float64 {
	if s.max <= s.min {
		return s.min
	}
	return s.min + s.rng.Float64()*(s.max-s.min)
}
