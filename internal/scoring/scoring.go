// Package scoring turns normalized weather, marine, tide and
// astronomical records into a 0-10 fishing quality score. Freshwater
// and ocean variants supply their own component functions and factor
// weights; the shared aggregator coerces, clamps, weights and
// summarizes them identically for both.
package scoring

import (
	"math"
	"sort"
	"time"

	"github.com/fishcast/fishcast-go/internal/logging"
	"github.com/fishcast/fishcast-go/internal/model"
)

var logger = logging.ForService("scoring")

// Inputs carries one instant's normalized conditions. Tide and Marine
// are nil for inland locations.
type Inputs struct {
	Weather model.WeatherRecord
	Astro   model.AstroRecord
	Tide    *model.TideRecord
	Marine  *model.MarineRecord
	Time    time.Time
}

// Strategy is one scoring variant. ComputeComponents returns factor
// scores already on the 0-10 scale; FactorWeights returns the relative
// weight of each factor key.
type Strategy interface {
	ComputeComponents(in Inputs) map[string]float64
	FactorWeights() map[string]float64
	Summarize(score float64, in Inputs, components map[string]float64) string
}

// Calculate runs one scoring pass. It never panics through to the
// caller; any internal failure degrades to a neutral 5.0 result.
func Calculate(s Strategy, in Inputs) (result model.ScoringResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("scoring panic recovered", "panic", r)
			result = model.ScoringResult{
				Score:             5.0,
				ConditionsSummary: "Error calculating score",
				Breakdown:         map[string]any{},
			}
		}
	}()

	components := coerceComponents(s.ComputeComponents(in))
	weights := s.FactorWeights()

	score := model.Clamp(WeightedAverage(components, weights), 0, 10)
	score = model.Round1(score)

	return model.ScoringResult{
		Score:             score,
		ConditionsSummary: s.Summarize(score, in, components),
		ComponentScores:   model.FormatComponentScores(components),
		Breakdown: map[string]any{
			"component_scores": components,
			"weights":          weights,
		},
	}
}

// coerceComponents replaces non-finite values with neutral 5.0 and
// clamps everything to the 0-10 scale.
func coerceComponents(raw map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(raw))
	for k, v := range raw {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			logger.Warn("non-finite component score replaced with neutral", "component", k)
			v = 5.0
		}
		out[k] = model.Clamp(v, 0, 10)
	}
	return out
}

// WeightedAverage combines factor scores using the given weights. A
// weighted factor with no computed score counts as neutral 5.0 rather
// than zero. Weights at or below zero are skipped; if no usable weight
// remains the result falls back to the arithmetic mean of the scores,
// or neutral 5.0 when there are no scores at all.
func WeightedAverage(scores, weights map[string]float64) float64 {
	var weightedSum, totalWeight float64
	for key, w := range weights {
		if w <= 0 {
			continue
		}
		v, ok := scores[key]
		if !ok {
			v = 5.0
		}
		weightedSum += v * w
		totalWeight += w
	}
	if totalWeight > 0 {
		return weightedSum / totalWeight
	}
	if len(scores) == 0 {
		return 5.0
	}
	var sum float64
	for _, v := range scores {
		sum += v
	}
	return sum / float64(len(scores))
}

// RatingWord maps a 0-10 score to its display quality word.
func RatingWord(score float64) string {
	switch {
	case score >= 8:
		return "Excellent"
	case score >= 6:
		return "Good"
	case score >= 4:
		return "Fair"
	default:
		return "Poor"
	}
}

// bestWorst picks the highest and lowest scoring factors, breaking
// ties by key order so summaries stay deterministic.
func bestWorst(scores map[string]float64) (best, worst string) {
	keys := make([]string, 0, len(scores))
	for k := range scores {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if best == "" || scores[k] > scores[best] {
			best = k
		}
		if worst == "" || scores[k] < scores[worst] {
			worst = k
		}
	}
	return best, worst
}
