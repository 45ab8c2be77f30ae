package discount

import "math"

// ToDec converts a UI percentage to the stored decimal, clamping the input
// to [0,100]. NaN becomes 0.
func ToDec(pct float64) float64 {
	if math.IsNaN(pct) {
		return 0
	}
	return math.Max(0, math.Min(100, pct)) / 100
}

// ToPct converts a stored decimal to the display percentage at one decimal
// place precision.
func ToPct(dec float64) float64 {
	if math.IsNaN(dec) {
		return 0
	}
	return math.Round(dec*1000) / 10
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Strategy is a named preset that scales baselines and boost by a fixed
// multiplier.
type Strategy string

const (
	StrategyBalanced     Strategy = "Balanced"
	StrategyConservative Strategy = "Conservative"
	StrategyAggressive   Strategy = "Aggressive"
)

// Factor returns the strategy multiplier, or 1 for an unknown strategy.
func (s Strategy) Factor() float64 {
	switch s {
	case StrategyConservative:
		return 0.8
	case StrategyAggressive:
		return 1.25
	default:
		return 1
	}
}

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyBalanced, StrategyConservative, StrategyAggressive:
		return true
	}
	return false
}

// SetBaselinePct replaces one seasonal baseline of one segment from a
// percentage input. Out-of-range indexes are a no-op.
func SetBaselinePct(configs []SegmentConfig, idx int, season Season, pct float64) []SegmentConfig {
	return updateAt(configs, idx, func(c SegmentConfig) SegmentConfig {
		c.Baseline = c.Baseline.withRate(season, ToDec(pct))
		return c
	})
}

// SetBoostPct replaces a segment's high-gap boost from a percentage input.
func SetBoostPct(configs []SegmentConfig, idx int, pct float64) []SegmentConfig {
	return updateAt(configs, idx, func(c SegmentConfig) SegmentConfig {
		c.BoostIfHighGap = ToDec(pct)
		return c
	})
}

// SetMaxPerkCost replaces a segment's perk cost cap, flooring at zero.
func SetMaxPerkCost(configs []SegmentConfig, idx int, cost float64) []SegmentConfig {
	return updateAt(configs, idx, func(c SegmentConfig) SegmentConfig {
		if math.IsNaN(cost) {
			cost = 0
		}
		c.MaxPerkCost = math.Max(0, cost)
		return c
	})
}

// CopyToAll overwrites every segment's tunables (baseline, boost, perk cost
// cap, perk priority) with the source segment's values. ClusterID and
// BusinessLabel are never overwritten. The perk list is copied fresh per
// segment so later edits don't alias.
func CopyToAll(configs []SegmentConfig, sourceIdx int) []SegmentConfig {
	if sourceIdx < 0 || sourceIdx >= len(configs) {
		return configs
	}
	source := configs[sourceIdx]
	next := make([]SegmentConfig, len(configs))
	for i, c := range configs {
		c.Baseline = source.Baseline
		c.BoostIfHighGap = source.BoostIfHighGap
		c.MaxPerkCost = source.MaxPerkCost
		c.PerkPriority = append([]Perk(nil), source.PerkPriority...)
		next[i] = c
	}
	return next
}

// ApplyStrategy scales every segment's baselines and boost by the strategy
// factor, clamping each rate to [0,1]. Each application scales the current
// stored values, so repeated applications compound (and clamp each time) —
// Conservative then Aggressive is not the product of the two factors.
func ApplyStrategy(configs []SegmentConfig, mode Strategy) []SegmentConfig {
	factor := mode.Factor()
	next := make([]SegmentConfig, len(configs))
	for i, c := range configs {
		c.Baseline = Baseline{
			Low:      clamp01(c.Baseline.Low * factor),
			Shoulder: clamp01(c.Baseline.Shoulder * factor),
			High:     clamp01(c.Baseline.High * factor),
		}
		c.BoostIfHighGap = clamp01(c.BoostIfHighGap * factor)
		c.PerkPriority = append([]Perk(nil), c.PerkPriority...)
		next[i] = c
	}
	return next
}

// TogglePerk removes the perk from the segment's priority list when
// present, otherwise appends it at the end (lowest priority).
func TogglePerk(configs []SegmentConfig, idx int, perk Perk) []SegmentConfig {
	return updateAt(configs, idx, func(c SegmentConfig) SegmentConfig {
		selected := append([]Perk(nil), c.PerkPriority...)
		for i, p := range selected {
			if p == perk {
				c.PerkPriority = append(selected[:i], selected[i+1:]...)
				return c
			}
		}
		c.PerkPriority = append(selected, perk)
		return c
	})
}

// Direction moves a perk within the priority order.
type Direction string

const (
	DirUp   Direction = "up"
	DirDown Direction = "down"
)

// MovePerk swaps the perk with its immediate neighbour in the given
// direction. Missing perk or a boundary move is a no-op.
func MovePerk(configs []SegmentConfig, idx int, perk Perk, dir Direction) []SegmentConfig {
	return updateAt(configs, idx, func(c SegmentConfig) SegmentConfig {
		selected := append([]Perk(nil), c.PerkPriority...)
		pos := -1
		for i, p := range selected {
			if p == perk {
				pos = i
				break
			}
		}
		if pos == -1 {
			return c
		}
		swap := pos - 1
		if dir == DirDown {
			swap = pos + 1
		}
		if swap < 0 || swap >= len(selected) {
			return c
		}
		selected[pos], selected[swap] = selected[swap], selected[pos]
		c.PerkPriority = selected
		return c
	})
}

// updateAt applies fn to one element, returning a fresh slice. Out-of-range
// indexes return the input unchanged.
func updateAt(configs []SegmentConfig, idx int, fn func(SegmentConfig) SegmentConfig) []SegmentConfig {
	if idx < 0 || idx >= len(configs) {
		return configs
	}
	next := make([]SegmentConfig, len(configs))
	copy(next, configs)
	next[idx] = fn(next[idx].Clone())
	return next
}
