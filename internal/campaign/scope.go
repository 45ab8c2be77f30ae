package campaign

import "sort"

// Scope restricts which campaign records are counted and selected.
// An empty Months slice means "all months with data".
type Scope struct {
	Year   int   `json:"year"`
	Months []int `json:"months"`
}

// resolveMonths expands an empty selection to all twelve months; otherwise
// it returns the selection in calendar order with repeats dropped. The
// scope is a set: a month named twice must not count (or launch) twice.
func resolveMonths(months []int) []int {
	if len(months) == 0 {
		all := make([]int, 12)
		for i := range all {
			all[i] = i + 1
		}
		return all
	}
	resolved := append([]int(nil), months...)
	sort.Ints(resolved)
	dedup := resolved[:0]
	for _, m := range resolved {
		if len(dedup) > 0 && dedup[len(dedup)-1] == m {
			continue
		}
		dedup = append(dedup, m)
	}
	return dedup
}

// Counts sums the per-month counters across the resolved month set for the
// year. Months absent from the snapshot contribute nothing.
func (s *Snapshot) Counts(year int, months []int) MonthCounts {
	var acc MonthCounts
	for _, m := range resolveMonths(months) {
		c, ok := s.monthCounts(year, m)
		if !ok {
			continue
		}
		acc.Total += c.Total
		acc.Generated += c.Generated
		acc.Pending += c.Pending
	}
	return acc
}

// Row is a launchable record tagged with its source month.
type Row struct {
	Record
	Month int `json:"month"`
}

// EligibleRows flattens the scope's records into launch candidates: only
// records with a subject and not already launched, concatenated in month
// order. Recompute on every snapshot/scope change — never cache.
func (s *Snapshot) EligibleRows(year int, months []int) []Row {
	var rows []Row
	for _, m := range resolveMonths(months) {
		for _, r := range s.monthRecords(year, m) {
			if launchable(r) {
				rows = append(rows, Row{Record: r, Month: m})
			}
		}
	}
	return rows
}

// MonthFlag marks whether a month is selectable in the given view.
type MonthFlag struct {
	Month int  `json:"month"`
	Valid bool `json:"valid"`
}

// LaunchMonthFlags reports, for each of the twelve months, whether it holds
// at least one launchable record.
func (s *Snapshot) LaunchMonthFlags(year int) []MonthFlag {
	flags := make([]MonthFlag, 12)
	for m := 1; m <= 12; m++ {
		flags[m-1] = MonthFlag{Month: m, Valid: s.monthHasLaunchable(year, m)}
	}
	return flags
}

func (s *Snapshot) monthHasLaunchable(year, month int) bool {
	for _, r := range s.monthRecords(year, month) {
		if launchable(r) {
			return true
		}
	}
	return false
}

// OfferMonthFlags is the simpler variant used by the generate view: a month
// is valid iff it has any offers at all.
func (s *Snapshot) OfferMonthFlags(year int) []MonthFlag {
	flags := make([]MonthFlag, 12)
	for m := 1; m <= 12; m++ {
		c, ok := s.monthCounts(year, m)
		flags[m-1] = MonthFlag{Month: m, Valid: ok && c.Total > 0}
	}
	return flags
}

// DefaultLaunchYear picks the most recent year with at least one generated
// record, falling back to the latest available year. ok is false when the
// snapshot holds no years at all.
func (s *Snapshot) DefaultLaunchYear() (int, bool) {
	years := s.AvailableYears()
	if len(years) == 0 {
		return 0, false
	}
	for i := len(years) - 1; i >= 0; i-- {
		for m := 1; m <= 12; m++ {
			if c, ok := s.monthCounts(years[i], m); ok && c.Generated > 0 {
				return years[i], true
			}
		}
	}
	return years[len(years)-1], true
}

// DefaultLaunchMonths lists the year's months that hold launchable records,
// the initial scope for the launch step.
func (s *Snapshot) DefaultLaunchMonths(year int) []int {
	var months []int
	for m := 1; m <= 12; m++ {
		if s.monthHasLaunchable(year, m) {
			months = append(months, m)
		}
	}
	return months
}

// Selection maps campaign ids to their launch inclusion.
type Selection map[string]bool

// DefaultSelection selects every eligible row that has a campaign id.
func DefaultSelection(rows []Row) Selection {
	sel := make(Selection, len(rows))
	for _, r := range rows {
		if r.CampaignID != "" {
			sel[r.CampaignID] = true
		}
	}
	return sel
}

// Toggle flips one id, copy-on-write.
func (s Selection) Toggle(id string) Selection {
	next := make(Selection, len(s))
	for k, v := range s {
		next[k] = v
	}
	next[id] = !next[id]
	return next
}

// SetAll rebuilds the selection across the given rows with one value.
func SetAll(rows []Row, val bool) Selection {
	sel := make(Selection, len(rows))
	for _, r := range rows {
		if r.CampaignID != "" {
			sel[r.CampaignID] = val
		}
	}
	return sel
}

// SelectedIDs returns the selected ids in row order.
func (s Selection) SelectedIDs(rows []Row) []string {
	var ids []string
	for _, r := range rows {
		if r.CampaignID != "" && s[r.CampaignID] {
			ids = append(ids, r.CampaignID)
		}
	}
	return ids
}
