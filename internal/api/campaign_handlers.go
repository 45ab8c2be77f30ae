package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ignite/direct-boost/internal/campaign"
	"github.com/ignite/direct-boost/internal/pkg/httputil"
	"github.com/ignite/direct-boost/internal/pkg/logger"
)

// scopeView is the campaign overview for one year/month selection:
// aggregate counters, the launchable rows, and per-month selectability for
// both the generate and launch pickers. Recomputed from a fresh snapshot on
// every request.
type scopeView struct {
	Year             int                  `json:"year"`
	Months           []int                `json:"months"`
	AvailableYears   []int                `json:"available_years"`
	MonthLabels      []string             `json:"month_labels"`
	Counts           campaign.MonthCounts `json:"counts"`
	Rows             []campaign.Row       `json:"rows"`
	OfferMonthFlags  []campaign.MonthFlag `json:"offer_month_flags"`
	LaunchMonthFlags []campaign.MonthFlag `json:"launch_month_flags"`
}

func buildScopeView(snap *campaign.Snapshot, year int, months []int) scopeView {
	years := snap.AvailableYears()
	if year == 0 || !containsInt(years, year) {
		if y, ok := snap.DefaultLaunchYear(); ok {
			year = y
		}
	}

	labels := make([]string, 12)
	for m := 1; m <= 12; m++ {
		labels[m-1] = snap.Label(m)
	}

	return scopeView{
		Year:             year,
		Months:           months,
		AvailableYears:   years,
		MonthLabels:      labels,
		Counts:           snap.Counts(year, months),
		Rows:             snap.EligibleRows(year, months),
		OfferMonthFlags:  snap.OfferMonthFlags(year),
		LaunchMonthFlags: snap.LaunchMonthFlags(year),
	}
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

// parseMonths parses a comma-separated month list ("6,7,8"). Empty input
// means all months. Out-of-range values are rejected.
func parseMonths(raw string) ([]int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	var months []int
	for _, part := range strings.Split(raw, ",") {
		m, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || m < 1 || m > 12 {
			return nil, false
		}
		months = append(months, m)
	}
	return months, true
}

// HandleCampaignScope returns the campaign overview for the requested
// year and months, pulled fresh from the engine snapshot.
func (h *Handlers) HandleCampaignScope(w http.ResponseWriter, r *http.Request) {
	email := userEmail(r)

	year, _ := strconv.Atoi(r.URL.Query().Get("year"))
	months, ok := parseMonths(r.URL.Query().Get("months"))
	if !ok {
		httputil.BadRequest(w, "months must be numbers between 1 and 12")
		return
	}

	snap, err := h.engine.GetCampaignSnapshot(r.Context(), email)
	if err != nil {
		logger.Error("campaign snapshot fetch failed", "email", email, "error", err)
		httputil.BadGateway(w, "Failed to load campaigns")
		return
	}
	httputil.OK(w, buildScopeView(snap, year, months))
}

// HandleGenerateEmails asks the engine to generate the pending emails in
// scope and returns the refreshed overview.
func (h *Handlers) HandleGenerateEmails(w http.ResponseWriter, r *http.Request) {
	email := userEmail(r)
	release, ok := h.inflight.acquire(email, "emails")
	if !ok {
		httputil.Error(w, http.StatusConflict, "email generation already running")
		return
	}
	defer release()

	var req struct {
		Year   int   `json:"year"`
		Months []int `json:"months"`
	}
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.Year == 0 {
		httputil.BadRequest(w, "year is required")
		return
	}
	for _, m := range req.Months {
		if m < 1 || m > 12 {
			httputil.BadRequest(w, "months must be numbers between 1 and 12")
			return
		}
	}

	snap, err := h.engine.GenerateEmails(r.Context(), email, req.Year, req.Months)
	if err != nil {
		logger.Error("email generation failed", "email", email, "year", req.Year, "error", err)
		httputil.BadGateway(w, "Failed to generate emails")
		return
	}

	logger.Info("emails generated", "email", email, "year", req.Year, "months", len(req.Months))
	httputil.OK(w, buildScopeView(snap, req.Year, req.Months))
}

// launchDefaultsView seeds the launch form: the default scope, every
// eligible row pre-selected, and the unchecked compliance checklist.
type launchDefaultsView struct {
	Scope      campaign.Scope            `json:"scope"`
	Rows       []campaign.Row            `json:"rows"`
	Selection  campaign.Selection        `json:"selection"`
	Compliance []campaign.ComplianceItem `json:"compliance"`
	Timezone   string                    `json:"timezone"`
}

// HandleLaunchDefaults computes the initial launch form state from the
// current snapshot.
func (h *Handlers) HandleLaunchDefaults(w http.ResponseWriter, r *http.Request) {
	email := userEmail(r)

	snap, err := h.engine.GetCampaignSnapshot(r.Context(), email)
	if err != nil {
		logger.Error("campaign snapshot fetch failed", "email", email, "error", err)
		httputil.BadGateway(w, "Failed to load campaigns")
		return
	}

	year, ok := snap.DefaultLaunchYear()
	if !ok {
		httputil.OK(w, launchDefaultsView{
			Compliance: campaign.DefaultCompliance(),
			Timezone:   h.wizard.Timezone,
		})
		return
	}

	months := snap.DefaultLaunchMonths(year)
	rows := snap.EligibleRows(year, months)
	httputil.OK(w, launchDefaultsView{
		Scope:      campaign.Scope{Year: year, Months: months},
		Rows:       rows,
		Selection:  campaign.DefaultSelection(rows),
		Compliance: campaign.DefaultCompliance(),
		Timezone:   h.wizard.Timezone,
	})
}

// HandleLaunch validates the submitted draft against the live snapshot and
// forwards it to the engine. Validation stops at the first failure.
func (h *Handlers) HandleLaunch(w http.ResponseWriter, r *http.Request) {
	email := userEmail(r)
	release, ok := h.inflight.acquire(email, "launch")
	if !ok {
		httputil.Error(w, http.StatusConflict, "a launch is already running")
		return
	}
	defer release()

	var draft campaign.LaunchDraft
	if !httputil.Decode(w, r, &draft) {
		return
	}

	ctx := r.Context()
	snap, err := h.engine.GetCampaignSnapshot(ctx, email)
	if err != nil {
		logger.Error("campaign snapshot fetch failed", "email", email, "error", err)
		httputil.BadGateway(w, "Failed to load campaigns")
		return
	}

	// An empty selection inherits every eligible row in scope, recomputed
	// against the snapshot so stale client ids never launch twice.
	rows := snap.EligibleRows(draft.Scope.Year, draft.Scope.Months)
	if len(draft.SelectedIDs) == 0 {
		draft.SelectedIDs = campaign.DefaultSelection(rows).SelectedIDs(rows)
	} else {
		draft.SelectedIDs = filterIDs(draft.SelectedIDs, rows)
	}

	if msg := draft.Validate(); msg != "" {
		httputil.BadRequest(w, msg)
		return
	}

	resp, err := h.engine.Launch(ctx, draft.Build(email, h.wizard.Timezone))
	if err != nil {
		logger.Error("launch failed", "email", email, "error", err)
		httputil.BadGateway(w, "Launch failed.")
		return
	}

	logger.Info("campaign launched", "email", email,
		"marketing_campaign_id", resp.MarketingCampaignID,
		"batch_id", resp.BatchID,
		"queued", resp.QueuedCount)
	httputil.OK(w, resp)
}

// filterIDs keeps only ids that are still eligible, in row order.
func filterIDs(ids []string, rows []campaign.Row) []string {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var kept []string
	for _, row := range rows {
		if want[row.CampaignID] {
			kept = append(kept, row.CampaignID)
		}
	}
	return kept
}

// HandlePreview returns the rendered HTML for one generated email.
func (h *Handlers) HandlePreview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CampaignID string `json:"campaign_id"`
	}
	if !httputil.Decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.CampaignID) == "" {
		httputil.BadRequest(w, "campaign_id is required")
		return
	}

	preview, err := h.engine.GetEmailPreview(r.Context(), req.CampaignID)
	if err != nil {
		logger.Error("email preview fetch failed", "campaign_id", req.CampaignID, "error", err)
		httputil.BadGateway(w, "Failed to load email preview")
		return
	}
	httputil.OK(w, preview)
}
