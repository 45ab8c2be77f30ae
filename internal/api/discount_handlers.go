package api

import (
	"net/http"

	"github.com/ignite/direct-boost/internal/discount"
	"github.com/ignite/direct-boost/internal/pkg/httputil"
	"github.com/ignite/direct-boost/internal/pkg/logger"
	"github.com/ignite/direct-boost/internal/store"
)

// loadDiscountConfig reads the user's discount config, seeding the default
// segments when nothing is stored yet.
func (h *Handlers) loadDiscountConfig(r *http.Request, email string) []discount.SegmentConfig {
	configs := store.Read(r.Context(), h.store, email, store.SlotDiscountConfig, []discount.SegmentConfig(nil))
	if len(configs) == 0 {
		return discount.DefaultSegments()
	}
	return configs
}

func (h *Handlers) writeDiscountConfig(r *http.Request, email string, configs []discount.SegmentConfig) {
	h.store.Write(r.Context(), email, store.SlotDiscountConfig, configs)
}

// HandleGetDiscountConfig returns the editable per-segment discount config.
func (h *Handlers) HandleGetDiscountConfig(w http.ResponseWriter, r *http.Request) {
	email := userEmail(r)
	httputil.OK(w, struct {
		Config []discount.SegmentConfig `json:"config"`
	}{h.loadDiscountConfig(r, email)})
}

// HandlePutDiscountConfig replaces the stored config wholesale, e.g. when
// the client restores a saved draft. Range checks run at generation time,
// so an out-of-range draft can be stored and corrected later.
func (h *Handlers) HandlePutDiscountConfig(w http.ResponseWriter, r *http.Request) {
	email := userEmail(r)
	var req struct {
		Config []discount.SegmentConfig `json:"config"`
	}
	if !httputil.Decode(w, r, &req) {
		return
	}
	if len(req.Config) == 0 {
		httputil.BadRequest(w, "config must not be empty")
		return
	}

	h.writeDiscountConfig(r, email, req.Config)
	httputil.OK(w, struct {
		Config []discount.SegmentConfig `json:"config"`
	}{req.Config})
}

// HandleUpdateDiscountField sets one tunable on one segment. Percentages
// arrive as display values (0-100) and are stored as decimals.
func (h *Handlers) HandleUpdateDiscountField(w http.ResponseWriter, r *http.Request) {
	email := userEmail(r)
	var req struct {
		Index  int             `json:"index"`
		Field  string          `json:"field"`
		Season discount.Season `json:"season,omitempty"`
		Value  float64         `json:"value"`
	}
	if !httputil.Decode(w, r, &req) {
		return
	}

	configs := h.loadDiscountConfig(r, email)
	switch req.Field {
	case "baseline":
		configs = discount.SetBaselinePct(configs, req.Index, req.Season, req.Value)
	case "boost_if_high_gap":
		configs = discount.SetBoostPct(configs, req.Index, req.Value)
	case "max_perk_cost":
		configs = discount.SetMaxPerkCost(configs, req.Index, req.Value)
	default:
		httputil.BadRequest(w, "unknown field: "+req.Field)
		return
	}

	h.writeDiscountConfig(r, email, configs)
	httputil.OK(w, struct {
		Config []discount.SegmentConfig `json:"config"`
	}{configs})
}

// HandleCopyToAll copies one segment's tunables onto every other segment.
func (h *Handlers) HandleCopyToAll(w http.ResponseWriter, r *http.Request) {
	email := userEmail(r)
	var req struct {
		Index int `json:"index"`
	}
	if !httputil.Decode(w, r, &req) {
		return
	}

	configs := discount.CopyToAll(h.loadDiscountConfig(r, email), req.Index)
	h.writeDiscountConfig(r, email, configs)
	httputil.OK(w, struct {
		Config []discount.SegmentConfig `json:"config"`
	}{configs})
}

// HandleApplyStrategy scales every segment by the strategy factor.
func (h *Handlers) HandleApplyStrategy(w http.ResponseWriter, r *http.Request) {
	email := userEmail(r)
	var req struct {
		Mode discount.Strategy `json:"mode"`
	}
	if !httputil.Decode(w, r, &req) {
		return
	}
	if !req.Mode.Valid() {
		httputil.BadRequest(w, "unknown strategy: "+string(req.Mode))
		return
	}

	configs := discount.ApplyStrategy(h.loadDiscountConfig(r, email), req.Mode)
	h.writeDiscountConfig(r, email, configs)
	httputil.OK(w, struct {
		Config []discount.SegmentConfig `json:"config"`
	}{configs})
}

// HandleTogglePerk adds or removes a perk from a segment's priority list.
func (h *Handlers) HandleTogglePerk(w http.ResponseWriter, r *http.Request) {
	email := userEmail(r)
	var req struct {
		Index int           `json:"index"`
		Perk  discount.Perk `json:"perk"`
	}
	if !httputil.Decode(w, r, &req) {
		return
	}
	if !discount.ValidPerk(req.Perk) {
		httputil.BadRequest(w, "unknown perk: "+string(req.Perk))
		return
	}

	configs := discount.TogglePerk(h.loadDiscountConfig(r, email), req.Index, req.Perk)
	h.writeDiscountConfig(r, email, configs)
	httputil.OK(w, struct {
		Config []discount.SegmentConfig `json:"config"`
	}{configs})
}

// HandleMovePerk swaps a perk with its neighbour in the priority order.
func (h *Handlers) HandleMovePerk(w http.ResponseWriter, r *http.Request) {
	email := userEmail(r)
	var req struct {
		Index     int                `json:"index"`
		Perk      discount.Perk      `json:"perk"`
		Direction discount.Direction `json:"direction"`
	}
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.Direction != discount.DirUp && req.Direction != discount.DirDown {
		httputil.BadRequest(w, "direction must be up or down")
		return
	}

	configs := discount.MovePerk(h.loadDiscountConfig(r, email), req.Index, req.Perk, req.Direction)
	h.writeDiscountConfig(r, email, configs)
	httputil.OK(w, struct {
		Config []discount.SegmentConfig `json:"config"`
	}{configs})
}

// HandleGenerateDiscounts validates the full config and, when clean, asks
// the engine to generate offers. Validation reports every issue at once.
func (h *Handlers) HandleGenerateDiscounts(w http.ResponseWriter, r *http.Request) {
	email := userEmail(r)
	release, ok := h.inflight.acquire(email, "discounts")
	if !ok {
		httputil.Error(w, http.StatusConflict, "discount generation already running")
		return
	}
	defer release()

	configs := h.loadDiscountConfig(r, email)
	if issues := discount.Validate(configs); len(issues) > 0 {
		httputil.ValidationFailed(w, "discount configuration has issues", issues)
		return
	}

	ctx := r.Context()
	if err := h.engine.GenerateDiscounts(ctx, email, discount.BuildPayload(configs)); err != nil {
		logger.Error("discount generation failed", "email", email, "error", err)
		httputil.BadGateway(w, "Failed to generate discounts")
		return
	}

	h.store.Write(ctx, email, store.SlotDiscountSummary, true)
	logger.Info("discounts generated", "email", email, "segments", len(configs))
	httputil.OK(w, struct {
		Success bool `json:"success"`
	}{true})
}

// HandleDiscountSummary fetches the engine's post-generation summary.
func (h *Handlers) HandleDiscountSummary(w http.ResponseWriter, r *http.Request) {
	email := userEmail(r)

	summary, err := h.engine.GetDiscountSummary(r.Context(), email)
	if err != nil {
		logger.Error("discount summary fetch failed", "email", email, "error", err)
		httputil.BadGateway(w, "Failed to load discount summary")
		return
	}
	httputil.OK(w, summary)
}
