package discount

import (
	"fmt"
	"strings"
)

// Validate checks every segment against the engine's accepted ranges and
// returns every violation at once, each tagged with the segment's display
// label. An empty result means the configuration may be submitted.
func Validate(configs []SegmentConfig) []string {
	var issues []string
	for _, c := range configs {
		if c.MaxPerkCost < 0 {
			issues = append(issues, fmt.Sprintf("%s: Max perk cost cannot be negative", c.BusinessLabel))
		}
		for _, season := range Seasons {
			if v := c.Baseline.Rate(season); v < 0 || v > 1 {
				issues = append(issues, fmt.Sprintf("%s: %s baseline should be 0-100%%", c.BusinessLabel, season))
			}
		}
		if c.BoostIfHighGap < 0 || c.BoostIfHighGap > 1 {
			issues = append(issues, fmt.Sprintf("%s: boost_if_high_gap should be 0-100%%", c.BusinessLabel))
		}
		var invalid, duplicate []string
		seen := make(map[Perk]bool, len(c.PerkPriority))
		for _, p := range c.PerkPriority {
			if !ValidPerk(p) {
				invalid = append(invalid, string(p))
				continue
			}
			if seen[p] {
				duplicate = append(duplicate, string(p))
			}
			seen[p] = true
		}
		if len(invalid) > 0 {
			issues = append(issues, fmt.Sprintf("%s: Invalid perks - %s", c.BusinessLabel, strings.Join(invalid, ", ")))
		}
		if len(duplicate) > 0 {
			issues = append(issues, fmt.Sprintf("%s: Duplicate perks - %s", c.BusinessLabel, strings.Join(duplicate, ", ")))
		}
	}
	return issues
}

// BuildPayload projects the configuration into the engine's agreed schema.
// SegmentConfig already carries the external field names, so the projection
// is a deep copy that callers can serialize as-is. Callers must check
// Validate first; BuildPayload does not re-validate.
func BuildPayload(configs []SegmentConfig) []SegmentConfig {
	payload := make([]SegmentConfig, len(configs))
	for i, c := range configs {
		payload[i] = c.Clone()
	}
	return payload
}
