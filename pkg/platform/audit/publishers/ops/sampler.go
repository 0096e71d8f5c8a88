package ops

import (
	"math/rand/v2"

	"ahliwaris/pkg/platform/audit"
)

// Sampler keeps a fraction of ops events per action. It is immutable once built.
type Sampler struct {
	defaultRate float64
	rates       map[string]float64
}

// NewSampler keeps defaultRate of every action not listed in rates.
// Rates are clamped to [0, 1].
func NewSampler(defaultRate float64, rates map[string]float64) *Sampler {
	s := &Sampler{
		defaultRate: clampRate(defaultRate),
		rates:       make(map[string]float64, len(rates)),
	}
	for action, rate := range rates {
		s.rates[action] = clampRate(rate)
	}
	return s
}

// ReadSampler keeps every event except lookups and document renders, which
// are kept at readRate.
func ReadSampler(readRate float64) *Sampler {
	return NewSampler(1, map[string]float64{
		string(audit.EventDeclarationViewed): readRate,
		string(audit.EventDocumentRendered):  readRate,
	})
}

// ShouldSample reports whether an event with this action is kept.
func (s *Sampler) ShouldSample(action string) bool {
	rate, ok := s.rates[action]
	if !ok {
		rate = s.defaultRate
	}
	switch rate {
	case 0:
		return false
	case 1:
		return true
	}
	return rand.Float64() < rate //nolint:gosec // sampling doesn't need crypto rand
}

func clampRate(rate float64) float64 {
	return min(max(rate, 0), 1)
}
