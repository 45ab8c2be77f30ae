// Package campaign computes the derived views over the engine's campaign
// snapshot: scoped aggregate counts, launchable row lists, month validity
// flags, launch selection state, and the validated launch payload.
package campaign

import (
	"sort"
	"strconv"
	"strings"
)

// StatusLaunched marks a record as terminal: it never reappears in a
// launch scope.
const StatusLaunched = "launched"

// MonthCounts are the per-month generation counters reported by the engine.
// The engine maintains total = generated + pending; the client does not
// enforce it.
type MonthCounts struct {
	Total     int `json:"total"`
	Generated int `json:"generated"`
	Pending   int `json:"pending"`
}

// Record is one generated (or pending) campaign email. A record without a
// CampaignID has not been generated yet.
type Record struct {
	CampaignID    string  `json:"campaign_id,omitempty"`
	Subject       string  `json:"subject,omitempty"`
	Hotel         string  `json:"hotel"`
	BusinessLabel string  `json:"business_label"`
	DiscountPct   float64 `json:"discount_pct"`
	Status        string  `json:"status"`
}

// Snapshot is the engine's current view of campaign counts and records,
// replaced wholesale after every generate/launch call. Year and month keys
// are decimal strings, as the engine serializes them.
type Snapshot struct {
	Years       map[string]map[string]MonthCounts `json:"years"`
	MonthLabels map[string]string                 `json:"month_labels"`
	Campaigns   map[string]map[string][]Record    `json:"campaigns"`
}

var defaultMonthLabels = map[string]string{
	"1": "January", "2": "February", "3": "March", "4": "April",
	"5": "May", "6": "June", "7": "July", "8": "August",
	"9": "September", "10": "October", "11": "November", "12": "December",
}

// Label returns the display name for a month, falling back to the standard
// English labels when the snapshot omits month_labels.
func (s *Snapshot) Label(month int) string {
	key := strconv.Itoa(month)
	if s != nil && s.MonthLabels != nil {
		if l, ok := s.MonthLabels[key]; ok {
			return l
		}
	}
	return defaultMonthLabels[key]
}

// AvailableYears lists the years present in the snapshot, ascending.
func (s *Snapshot) AvailableYears() []int {
	if s == nil {
		return nil
	}
	years := make([]int, 0, len(s.Years))
	for y := range s.Years {
		if n, err := strconv.Atoi(y); err == nil {
			years = append(years, n)
		}
	}
	sort.Ints(years)
	return years
}

func (s *Snapshot) monthCounts(year, month int) (MonthCounts, bool) {
	if s == nil {
		return MonthCounts{}, false
	}
	ym, ok := s.Years[strconv.Itoa(year)]
	if !ok {
		return MonthCounts{}, false
	}
	c, ok := ym[strconv.Itoa(month)]
	return c, ok
}

func (s *Snapshot) monthRecords(year, month int) []Record {
	if s == nil {
		return nil
	}
	ym, ok := s.Campaigns[strconv.Itoa(year)]
	if !ok {
		return nil
	}
	return ym[strconv.Itoa(month)]
}

// launchable is the single eligibility predicate for launch scopes:
// a subject exists and the record has not already been launched. Keeping it
// in one place is what prevents duplicate sends.
func launchable(r Record) bool {
	return strings.TrimSpace(r.Subject) != "" && r.Status != StatusLaunched
}
