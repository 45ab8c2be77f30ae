// Package api exposes the wizard flow over HTTP: session bootstrap, step
// navigation, file uploads, segment and discount operations, campaign scope
// views, and launch. Handlers read state from the store, apply the domain
// operation, write state back, and return the refreshed view.
package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/direct-boost/internal/boostapi"
	"github.com/ignite/direct-boost/internal/config"
	"github.com/ignite/direct-boost/internal/discount"
	"github.com/ignite/direct-boost/internal/pkg/httputil"
	"github.com/ignite/direct-boost/internal/pkg/logger"
	"github.com/ignite/direct-boost/internal/store"
	"github.com/ignite/direct-boost/internal/wizard"
)

// maxUploadBytes caps booking/finance spreadsheet uploads at 50MB.
const maxUploadBytes = 50 << 20

// Handlers holds the wizard API dependencies.
type Handlers struct {
	store    *store.Store
	engine   *boostapi.Client
	wizard   config.WizardConfig
	inflight *inflightGuard
}

// NewHandlers creates the wizard API handlers.
func NewHandlers(st *store.Store, engine *boostapi.Client, wcfg config.WizardConfig) *Handlers {
	return &Handlers{
		store:    st,
		engine:   engine,
		wizard:   wcfg,
		inflight: newInflightGuard(),
	}
}

// userEmail pulls the normalized email out of the route.
func userEmail(r *http.Request) string {
	return strings.ToLower(strings.TrimSpace(chi.URLParam(r, "email")))
}

// stateView is the wizard state response every navigation endpoint returns.
type stateView struct {
	Email              string       `json:"email"`
	Step               wizard.Step  `json:"step"`
	StepName           string       `json:"step_name"`
	Files              wizard.Files `json:"files"`
	SegmentsGenerated  bool         `json:"segments_generated"`
	DiscountsGenerated bool         `json:"discounts_generated"`
	CanAdvance         bool         `json:"can_advance"`
	BlockReason        string       `json:"block_reason,omitempty"`
	Status             string       `json:"status,omitempty"`
}

func (h *Handlers) loadState(r *http.Request, email string) wizard.State {
	ctx := r.Context()
	st := wizard.State{
		Step:               store.Read(ctx, h.store, email, store.SlotStep, wizard.FirstStep),
		Files:              store.Read(ctx, h.store, email, store.SlotFiles, wizard.Files{}),
		SegmentsGenerated:  len(h.storedProfiles(r, email)) > 0,
		DiscountsGenerated: store.Read(ctx, h.store, email, store.SlotDiscountSummary, false),
	}
	if !st.Step.Valid() {
		st.Step = wizard.FirstStep
	}
	return st
}

func stateViewOf(email string, st wizard.State) stateView {
	return stateView{
		Email:              email,
		Step:               st.Step,
		StepName:           st.Step.String(),
		Files:              st.Files,
		SegmentsGenerated:  st.SegmentsGenerated,
		DiscountsGenerated: st.DiscountsGenerated,
		CanAdvance:         st.CanAdvance(),
		BlockReason:        st.BlockReason(),
		Status:             st.Status,
	}
}

// HandleStartSession registers (or resumes) a wizard session for an email.
func (h *Handlers) HandleStartSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !httputil.Decode(w, r, &req) {
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		httputil.BadRequest(w, "a valid email is required")
		return
	}

	ctx := r.Context()
	h.store.Write(ctx, email, store.SlotEmail, email)
	st := h.loadState(r, email)
	h.store.Write(ctx, email, store.SlotStep, st.Step)

	logger.Info("session started", "email", email, "step", int(st.Step))
	httputil.OK(w, stateViewOf(email, st))
}

// HandleGetState returns the user's current wizard state.
func (h *Handlers) HandleGetState(w http.ResponseWriter, r *http.Request) {
	email := userEmail(r)
	httputil.OK(w, stateViewOf(email, h.loadState(r, email)))
}

// HandleAdvance moves the wizard forward one step if the current step's
// gate passes; otherwise 409 with the blocking reason.
func (h *Handlers) HandleAdvance(w http.ResponseWriter, r *http.Request) {
	email := userEmail(r)
	st := h.loadState(r, email)

	next, ok := st.Advance()
	if !ok {
		httputil.Error(w, http.StatusConflict, st.BlockReason())
		return
	}
	h.store.Write(r.Context(), email, store.SlotStep, next.Step)
	httputil.OK(w, stateViewOf(email, next))
}

// HandleRetreat moves the wizard back one step.
func (h *Handlers) HandleRetreat(w http.ResponseWriter, r *http.Request) {
	email := userEmail(r)
	st := h.loadState(r, email)

	prev, ok := st.Retreat()
	if !ok {
		httputil.Error(w, http.StatusConflict, "already at the first step")
		return
	}
	h.store.Write(r.Context(), email, store.SlotStep, prev.Step)
	httputil.OK(w, stateViewOf(email, prev))
}

// HandleUploadBooking proxies the booking history file to the engine and,
// on acceptance, records the filename so the step gate opens.
func (h *Handlers) HandleUploadBooking(w http.ResponseWriter, r *http.Request) {
	h.handleUpload(w, r, wizard.StepUploadBooking)
}

// HandleUploadFinance proxies the financials file to the engine.
func (h *Handlers) HandleUploadFinance(w http.ResponseWriter, r *http.Request) {
	h.handleUpload(w, r, wizard.StepUploadFinance)
}

func (h *Handlers) handleUpload(w http.ResponseWriter, r *http.Request, step wizard.Step) {
	email := userEmail(r)
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.BadRequest(w, "file is required")
		return
	}
	defer file.Close()

	var status *boostapi.StatusResponse
	if step == wizard.StepUploadBooking {
		status, err = h.engine.UploadBookingFile(ctx, email, header.Filename, file)
	} else {
		status, err = h.engine.UploadFinanceFile(ctx, email, header.Filename, file)
	}
	if err != nil {
		logger.Error("upload failed", "step", step.String(), "email", email, "error", err)
		httputil.BadGateway(w, "Failed to upload file")
		return
	}

	st := h.loadState(r, email)
	if step == wizard.StepUploadBooking {
		st.Files.BookingFile = header.Filename
		h.store.Write(ctx, email, store.SlotBookingRecord, header.Filename)
	} else {
		st.Files.FinanceFile = header.Filename
	}
	h.store.Write(ctx, email, store.SlotFiles, st.Files)

	logger.Info("file accepted", "step", step.String(), "email", email, "file", header.Filename)
	httputil.OK(w, struct {
		stateView
		Message string `json:"message,omitempty"`
	}{stateViewOf(email, st), status.Message})
}

// HandleRemoveFile clears an uploaded filename, re-gating the owning step.
func (h *Handlers) HandleRemoveFile(w http.ResponseWriter, r *http.Request) {
	email := userEmail(r)

	var step wizard.Step
	switch chi.URLParam(r, "kind") {
	case "booking":
		step = wizard.StepUploadBooking
	case "finance":
		step = wizard.StepUploadFinance
	default:
		httputil.BadRequest(w, "kind must be booking or finance")
		return
	}

	st := h.loadState(r, email).RemoveFile(step)
	h.store.Write(r.Context(), email, store.SlotFiles, st.Files)
	httputil.OK(w, stateViewOf(email, st))
}

// HandleGenerateSegments asks the engine to cluster the uploaded data,
// stores the resulting counts and profiles, and seeds the discount config
// from the profiles when no config exists yet.
func (h *Handlers) HandleGenerateSegments(w http.ResponseWriter, r *http.Request) {
	email := userEmail(r)
	release, ok := h.inflight.acquire(email, "segments")
	if !ok {
		httputil.Error(w, http.StatusConflict, "segment generation already running")
		return
	}
	defer release()

	ctx := r.Context()
	counts, err := h.engine.GenerateSegments(ctx, email)
	if err != nil {
		logger.Error("segment generation failed", "email", email, "error", err)
		httputil.BadGateway(w, "Failed to generate segments")
		return
	}

	profiles, err := h.engine.GetSegmentProfiles(ctx, email)
	if err != nil {
		logger.Error("segment profile fetch failed", "email", email, "error", err)
		httputil.BadGateway(w, "Failed to load segment profiles")
		return
	}

	h.store.Write(ctx, email, store.SlotSegmentCounts, counts.SegmentCounts)
	h.store.Write(ctx, email, store.SlotSegmentProfile, profiles)

	existing := store.Read(ctx, h.store, email, store.SlotDiscountConfig, []discount.SegmentConfig(nil))
	if len(existing) == 0 {
		seeded := discount.SeedFromProfiles(profilesOf(profiles))
		h.store.Write(ctx, email, store.SlotDiscountConfig, seeded)
	}

	logger.Info("segments generated", "email", email, "clusters", len(profiles))
	httputil.OK(w, struct {
		SegmentCounts map[string]int            `json:"segment_counts"`
		Profiles      []boostapi.SegmentProfile `json:"profiles"`
	}{counts.SegmentCounts, profiles})
}

func profilesOf(in []boostapi.SegmentProfile) []discount.Profile {
	out := make([]discount.Profile, len(in))
	for i, p := range in {
		out[i] = discount.Profile{ClusterID: p.ClusterID, BusinessLabel: p.BusinessLabel}
	}
	return out
}

// storedProfiles reads the persisted segment profiles; an empty result
// means segments have not been generated.
func (h *Handlers) storedProfiles(r *http.Request, email string) []boostapi.SegmentProfile {
	return store.Read(r.Context(), h.store, email, store.SlotSegmentProfile, []boostapi.SegmentProfile(nil))
}

// HandleSegmentProfiles returns the stored cluster counts and profiles,
// falling back to the engine when the slot is empty.
func (h *Handlers) HandleSegmentProfiles(w http.ResponseWriter, r *http.Request) {
	email := userEmail(r)
	ctx := r.Context()

	profiles := h.storedProfiles(r, email)
	if len(profiles) == 0 {
		var err error
		profiles, err = h.engine.GetSegmentProfiles(ctx, email)
		if err != nil {
			logger.Error("segment profile fetch failed", "email", email, "error", err)
			httputil.BadGateway(w, "Failed to load segment profiles")
			return
		}
		if len(profiles) > 0 {
			h.store.Write(ctx, email, store.SlotSegmentProfile, profiles)
		}
	}

	counts := store.Read(ctx, h.store, email, store.SlotSegmentCounts, map[string]int{})
	httputil.OK(w, struct {
		SegmentCounts map[string]int            `json:"segment_counts"`
		Profiles      []boostapi.SegmentProfile `json:"profiles"`
	}{counts, profiles})
}
