// Package stats fits a card's four attributes into the stat budget.
package stats

import "github.com/mcoot/committy/internal/model"

// Normalize clamps and trims raw stats in a single left-to-right pass.
//
// Each value is clamped to [StatMin, StatMax], then reduced by however far
// the running total would pass StatTotalMax plus the number of positions
// still to come. For the last position that bound is StatTotalMax itself,
// so the total never exceeds the budget. Values are not re-clamped after
// reduction and a late position can end up below StatMin, even negative:
// Normalize([10 10 10 10]) is [10 10 2 -1].
func Normalize(raw model.Stats) model.Stats {
	var out model.Stats
	total := 0
	for i, s := range raw {
		s = clamp(s)
		remaining := model.StatCount - 1 - i
		over := total + s - remaining - model.StatTotalMax
		if over > 0 {
			s -= over
		}
		total += s
		out[i] = s
	}
	return out
}

// NormalizeInput fills missing values with StatMin before normalizing
func NormalizeInput(raw [model.StatCount]*int) model.Stats {
	var stats model.Stats
	for i, v := range raw {
		if v == nil {
			stats[i] = model.StatMin
			continue
		}
		stats[i] = *v
	}
	return Normalize(stats)
}

func clamp(s int) int {
	switch {
	case s < model.StatMin:
		return model.StatMin
	case s > model.StatMax:
		return model.StatMax
	default:
		return s
	}
}
