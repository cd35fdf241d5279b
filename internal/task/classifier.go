package task

import "sync"

// Flags are contextual signals that adjust a task's base value.
type Flags struct {
	AffectsMultipleAgents bool
	TimeSensitive         bool
	HighImpact            bool
	CachedSimilar         bool // an equivalent task was already answered from cache
}

// Base values per category tier.
const (
	baseStrategic  = 1.0
	baseAnalytical = 0.5
	baseMechanical = 0.2
)

// Additive adjustments from context flags.
const (
	adjMultiAgent    = 0.1
	adjTimeSensitive = 0.1
	adjHighImpact    = 0.15
	adjCachedSimilar = -0.2
)

// Classifier computes value scores for tasks. Scoring is a pure function of
// (category, flags), so results are memoized.
type Classifier struct {
	mu    sync.Mutex
	cache map[scoreKey]float64
}

type scoreKey struct {
	category Category
	flags    Flags
}

// NewClassifier creates a classifier with an empty score cache.
func NewClassifier() *Classifier {
	return &Classifier{cache: make(map[scoreKey]float64)}
}

// Score returns a value in [0, 1] estimating how much the task benefits from
// the remote reasoning path. Deterministic for identical inputs.
func (c *Classifier) Score(category Category, flags Flags) float64 {
	key := scoreKey{category: category, flags: flags}

	c.mu.Lock()
	if score, ok := c.cache[key]; ok {
		c.mu.Unlock()
		return score
	}
	c.mu.Unlock()

	score := clamp(baseValue(category) + adjustments(flags))

	c.mu.Lock()
	c.cache[key] = score
	c.mu.Unlock()

	return score
}

func baseValue(category Category) float64 {
	switch category {
	case CategoryStrategic:
		return baseStrategic
	case CategoryAnalytical:
		return baseAnalytical
	case CategoryMechanical:
		return baseMechanical
	default:
		// Unknown types default to the middle tier.
		return baseAnalytical
	}
}

func adjustments(flags Flags) float64 {
	adj := 0.0
	if flags.AffectsMultipleAgents {
		adj += adjMultiAgent
	}
	if flags.TimeSensitive {
		adj += adjTimeSensitive
	}
	if flags.HighImpact {
		adj += adjHighImpact
	}
	if flags.CachedSimilar {
		adj += adjCachedSimilar
	}
	return adj
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
