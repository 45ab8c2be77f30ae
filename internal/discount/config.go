// Package discount holds the per-segment discount configuration model the
// wizard edits: seasonal baseline rates, the high-gap boost, the perk cost
// cap and the ordered perk priority list. All operations are copy-on-write
// and the struct layout is the externally agreed engine schema, preserved
// field-for-field.
package discount

import "fmt"

// Perk is a named add-on benefit offered alongside a discount.
type Perk string

// The fixed perk enumeration. Anything outside this set is rejected by
// Validate before a payload leaves the service.
const (
	PerkSpa          Perk = "spa"
	PerkGym          Perk = "gym"
	PerkKidsClub     Perk = "kids_club"
	PerkBarCredit    Perk = "bar_credit"
	PerkSwimmingPool Perk = "swimming_pool"
	PerkWorkDesk     Perk = "work_desk"
	PerkMeetingRoom  Perk = "meeting_room"
)

// AllPerks lists every accepted perk.
var AllPerks = []Perk{
	PerkSpa,
	PerkGym,
	PerkKidsClub,
	PerkBarCredit,
	PerkSwimmingPool,
	PerkWorkDesk,
	PerkMeetingRoom,
}

// PerkLabels maps perk keys to display names.
var PerkLabels = map[Perk]string{
	PerkSpa:          "Spa Access",
	PerkGym:          "Gym Access",
	PerkKidsClub:     "Kids Club",
	PerkBarCredit:    "Bar Credit",
	PerkSwimmingPool: "Swimming Pool",
	PerkWorkDesk:     "Work Desk",
	PerkMeetingRoom:  "Meeting Room",
}

// ValidPerk reports whether p is a member of the fixed perk set.
func ValidPerk(p Perk) bool {
	for _, known := range AllPerks {
		if p == known {
			return true
		}
	}
	return false
}

// Baseline holds the three seasonal discount rates as decimals in [0,1].
type Baseline struct {
	Low      float64 `json:"low"`
	Shoulder float64 `json:"shoulder"`
	High     float64 `json:"high"`
}

// Season selects one of the baseline rates.
type Season string

const (
	SeasonLow      Season = "low"
	SeasonShoulder Season = "shoulder"
	SeasonHigh     Season = "high"
)

// Seasons in display order.
var Seasons = []Season{SeasonLow, SeasonShoulder, SeasonHigh}

// Rate returns the baseline rate for the season.
func (b Baseline) Rate(s Season) float64 {
	switch s {
	case SeasonLow:
		return b.Low
	case SeasonShoulder:
		return b.Shoulder
	case SeasonHigh:
		return b.High
	}
	return 0
}

func (b Baseline) withRate(s Season, v float64) Baseline {
	switch s {
	case SeasonLow:
		b.Low = v
	case SeasonShoulder:
		b.Shoulder = v
	case SeasonHigh:
		b.High = v
	}
	return b
}

// SegmentConfig is one customer segment's discount tunables, keyed by
// cluster_id. BusinessLabel is display-only and never overwritten by bulk
// operations.
type SegmentConfig struct {
	ClusterID      int      `json:"cluster_id"`
	BusinessLabel  string   `json:"business_label"`
	Baseline       Baseline `json:"baseline"`
	BoostIfHighGap float64  `json:"boost_if_high_gap"`
	MaxPerkCost    float64  `json:"max_perk_cost"`
	PerkPriority   []Perk   `json:"perk_priority"`
}

// Clone returns a deep copy (the perk list is the only reference field).
func (c SegmentConfig) Clone() SegmentConfig {
	c.PerkPriority = append([]Perk(nil), c.PerkPriority...)
	return c
}

// DefaultSegments returns the seed configuration used until segment
// profiles arrive from the engine.
func DefaultSegments() []SegmentConfig {
	return []SegmentConfig{
		{
			ClusterID:      0,
			BusinessLabel:  "Group Deal Seekers",
			Baseline:       Baseline{Low: 0.08, Shoulder: 0.08, High: 0.0},
			BoostIfHighGap: 0.02,
			MaxPerkCost:    15,
			PerkPriority:   []Perk{PerkBarCredit, PerkGym, PerkKidsClub, PerkSpa},
		},
		{
			ClusterID:      1,
			BusinessLabel:  "Family Vacationers",
			Baseline:       Baseline{Low: 0.06, Shoulder: 0.04, High: 0.02},
			BoostIfHighGap: 0.03,
			MaxPerkCost:    25,
			PerkPriority:   []Perk{PerkKidsClub, PerkBarCredit, PerkSpa, PerkSwimmingPool, PerkGym},
		},
		{
			ClusterID:      2,
			BusinessLabel:  "Budget Online Travellers",
			Baseline:       Baseline{Low: 0.08, Shoulder: 0.08, High: 0.0},
			BoostIfHighGap: 0.03,
			MaxPerkCost:    20,
			PerkPriority:   []Perk{PerkBarCredit, PerkGym, PerkKidsClub, PerkSpa, PerkWorkDesk},
		},
		{
			ClusterID:      3,
			BusinessLabel:  "Frequent Work Travelers",
			Baseline:       Baseline{Low: 0.1, Shoulder: 0.07, High: 0.04},
			BoostIfHighGap: 0.02,
			MaxPerkCost:    18,
			PerkPriority:   []Perk{PerkWorkDesk, PerkMeetingRoom, PerkBarCredit, PerkGym},
		},
		{
			ClusterID:      4,
			BusinessLabel:  "Loyal Niche Guests",
			Baseline:       Baseline{Low: 0.09, Shoulder: 0.06, High: 0.04},
			BoostIfHighGap: 0.02,
			MaxPerkCost:    15,
			PerkPriority:   []Perk{PerkWorkDesk, PerkMeetingRoom, PerkBarCredit, PerkGym},
		},
	}
}

// Profile is the subset of an engine segment profile the seeding needs.
type Profile struct {
	ClusterID     int
	BusinessLabel string
}

// SeedFromProfiles builds a configuration list from engine segment
// profiles, carrying over the default tunables for known cluster ids and
// falling back to flat mid-range defaults for clusters the defaults don't
// cover.
func SeedFromProfiles(profiles []Profile) []SegmentConfig {
	defaults := make(map[int]SegmentConfig, len(DefaultSegments()))
	for _, d := range DefaultSegments() {
		defaults[d.ClusterID] = d
	}

	configs := make([]SegmentConfig, 0, len(profiles))
	for _, p := range profiles {
		cfg, ok := defaults[p.ClusterID]
		if !ok {
			cfg = SegmentConfig{
				Baseline:       Baseline{Low: 0.08, Shoulder: 0.06, High: 0.02},
				BoostIfHighGap: 0.02,
				MaxPerkCost:    15,
				PerkPriority:   []Perk{PerkBarCredit, PerkGym, PerkSpa},
			}
		}
		cfg = cfg.Clone()
		cfg.ClusterID = p.ClusterID
		label := p.BusinessLabel
		if label == "" {
			label = fmt.Sprintf("Segment %d", p.ClusterID)
		}
		cfg.BusinessLabel = label
		configs = append(configs, cfg)
	}
	return configs
}
