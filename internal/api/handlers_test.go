package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/direct-boost/internal/boostapi"
	"github.com/ignite/direct-boost/internal/config"
	"github.com/ignite/direct-boost/internal/discount"
	"github.com/ignite/direct-boost/internal/store"
)

const testEmail = "owner@seasideresort.co.uk"

// stubEngine fakes the Direct Boost engine endpoints the handlers proxy to.
func stubEngine(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/process-bookings/uploadbookingfile", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":true,"message":"bookings processed"}`)
	})
	mux.HandleFunc("/financials/uploadfinancials", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":true}`)
	})
	mux.HandleFunc("/segment/genrate-segments", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":true,"segment_counts":{"0":120,"1":85}}`)
	})
	mux.HandleFunc("/segment/get-segment-profiles", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[
			{"cluster_id":0,"business_label":"Group Deal Seekers","tags":["groups"]},
			{"cluster_id":1,"business_label":"Solo Business Travellers","tags":["business"]}
		]}`)
	})
	mux.HandleFunc("/discounts/genrate_discounts", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":true}`)
	})
	mux.HandleFunc("/discounts/summary", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":true,"overall":{"total_offers":42,"avg_discount_pct":9.5},"segments":[]}`)
	})
	snapshot := `{
		"years": {
			"2024": {
				"6": {"total": 3, "generated": 2, "pending": 1}
			}
		},
		"campaigns": {
			"2024": {
				"6": [
					{"campaign_id": "c1", "subject": "June escape", "status": "draft"},
					{"campaign_id": "c2", "subject": "", "status": "draft"},
					{"campaign_id": "c3", "subject": "Summer deal", "status": "launched"}
				]
			}
		}
	}`
	mux.HandleFunc("/email/get-email-campaigns", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, snapshot)
	})
	mux.HandleFunc("/email/generate-email", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, snapshot)
	})
	mux.HandleFunc("/email/get-email-preview", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":true,"html":"<html>preview</html>"}`)
	})
	mux.HandleFunc("/campaign/launch", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserEmail string   `json:"user_email"`
			IDs       []string `json:"email_campaign_ids"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, testEmail, req.UserEmail)
		seen := map[string]bool{}
		for _, id := range req.IDs {
			assert.False(t, seen[id], "campaign id %s queued twice", id)
			seen[id] = true
		}
		fmt.Fprintf(w, `{"success":true,"marketing_campaign_id":"mc-1","batch_id":"b-1","queued_count":%d}`, len(seen))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestAPI(t *testing.T) http.Handler {
	t.Helper()
	h, _ := newTestAPIWithStore(t)
	return h
}

func newTestAPIWithStore(t *testing.T) (http.Handler, *store.Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	st := store.New(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	engine := boostapi.NewClient(boostapi.Config{BaseURL: stubEngine(t).URL})

	h := NewHandlers(st, engine, config.WizardConfig{Timezone: "Europe/London", Currency: "GBP"})
	return SetupRoutes(h, []string{"http://localhost:5173"}), st
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst))
}

func uploadFile(t *testing.T, h http.Handler, path, filename, contents string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(contents))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func wizardPath(suffix string) string {
	return "/api/wizard/" + testEmail + suffix
}

func TestStartSessionRequiresValidEmail(t *testing.T) {
	h := newTestAPI(t)

	rec := doJSON(t, h, http.MethodPost, "/api/session", map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/session", map[string]string{"email": "  Owner@SeasideResort.co.uk "})
	require.Equal(t, http.StatusOK, rec.Code)

	var view stateView
	decodeBody(t, rec, &view)
	assert.Equal(t, testEmail, view.Email)
	assert.Equal(t, 1, int(view.Step))
}

func TestAdvanceBlockedUntilUpload(t *testing.T) {
	h := newTestAPI(t)

	rec := doJSON(t, h, http.MethodPost, wizardPath("/advance"), nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "booking history")

	rec = uploadFile(t, h, wizardPath("/files/booking"), "bookings.csv", "guest,checkin\n")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, wizardPath("/advance"), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var view stateView
	decodeBody(t, rec, &view)
	assert.Equal(t, 2, int(view.Step))
	assert.Equal(t, "bookings.csv", view.Files.BookingFile)
}

func TestUploadRequiresFile(t *testing.T) {
	h := newTestAPI(t)

	rec := doJSON(t, h, http.MethodPost, wizardPath("/files/booking"), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRemoveFileRegatesStep(t *testing.T) {
	h := newTestAPI(t)

	rec := uploadFile(t, h, wizardPath("/files/booking"), "bookings.csv", "data")
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodDelete, wizardPath("/files/booking"), nil)
	recDel := httptest.NewRecorder()
	h.ServeHTTP(recDel, req)
	require.Equal(t, http.StatusOK, recDel.Code)

	var view stateView
	decodeBody(t, recDel, &view)
	assert.Empty(t, view.Files.BookingFile)
	assert.False(t, view.CanAdvance)
}

func TestRetreatFromFirstStepConflicts(t *testing.T) {
	h := newTestAPI(t)

	rec := doJSON(t, h, http.MethodPost, wizardPath("/retreat"), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGenerateSegmentsSeedsDiscountConfig(t *testing.T) {
	h := newTestAPI(t)

	rec := doJSON(t, h, http.MethodPost, wizardPath("/segments/generate"), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		SegmentCounts map[string]int            `json:"segment_counts"`
		Profiles      []boostapi.SegmentProfile `json:"profiles"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, 120, resp.SegmentCounts["0"])
	require.Len(t, resp.Profiles, 2)

	rec = doJSON(t, h, http.MethodGet, wizardPath("/discounts/config"), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var cfgResp struct {
		Config []discount.SegmentConfig `json:"config"`
	}
	decodeBody(t, rec, &cfgResp)
	require.Len(t, cfgResp.Config, 2)
	assert.Equal(t, "Group Deal Seekers", cfgResp.Config[0].BusinessLabel)
	assert.Equal(t, "Solo Business Travellers", cfgResp.Config[1].BusinessLabel)

	rec = doJSON(t, h, http.MethodGet, wizardPath(""), nil)
	var view stateView
	decodeBody(t, rec, &view)
	assert.True(t, view.SegmentsGenerated)
}

func TestGenerateSegmentsPersistsProfiles(t *testing.T) {
	h, st := newTestAPIWithStore(t)

	rec := doJSON(t, h, http.MethodPost, wizardPath("/segments/generate"), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	stored := store.Read(context.Background(), st, testEmail, store.SlotSegmentProfile, []boostapi.SegmentProfile(nil))
	require.Len(t, stored, 2)
	assert.Equal(t, "Group Deal Seekers", stored[0].BusinessLabel)
	assert.Equal(t, 1, stored[1].ClusterID)
}

func TestDiscountConfigDefaultsWithoutSegments(t *testing.T) {
	h := newTestAPI(t)

	rec := doJSON(t, h, http.MethodGet, wizardPath("/discounts/config"), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Config []discount.SegmentConfig `json:"config"`
	}
	decodeBody(t, rec, &resp)
	assert.Len(t, resp.Config, 5)
}

func TestUpdateDiscountFieldStoresDecimal(t *testing.T) {
	h := newTestAPI(t)

	rec := doJSON(t, h, http.MethodPost, wizardPath("/discounts/config/update"), map[string]any{
		"index": 0, "field": "baseline", "season": "low", "value": 12.5,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Config []discount.SegmentConfig `json:"config"`
	}
	decodeBody(t, rec, &resp)
	assert.InDelta(t, 0.125, resp.Config[0].Baseline.Low, 1e-9)

	rec = doJSON(t, h, http.MethodPost, wizardPath("/discounts/config/update"), map[string]any{
		"index": 0, "field": "room_rate", "value": 1,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApplyStrategyRejectsUnknownMode(t *testing.T) {
	h := newTestAPI(t)

	rec := doJSON(t, h, http.MethodPost, wizardPath("/discounts/config/strategy"), map[string]string{"mode": "reckless"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, wizardPath("/discounts/config/strategy"), map[string]string{"mode": "aggressive"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGenerateDiscountsValidationAggregates(t *testing.T) {
	h := newTestAPI(t)

	rec := doJSON(t, h, http.MethodPut, wizardPath("/discounts/config"), map[string]any{
		"config": []map[string]any{
			{
				"cluster_id":        0,
				"business_label":    "Group Deal Seekers",
				"baseline":          map[string]float64{"low": 1.5, "shoulder": 0.06, "high": 0.02},
				"boost_if_high_gap": 0.02,
				"max_perk_cost":     -5,
				"perk_priority":     []string{"gym", "helipad"},
			},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, wizardPath("/discounts/generate"), nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp struct {
		Error   string   `json:"error"`
		Details []string `json:"details"`
	}
	decodeBody(t, rec, &errResp)
	require.Len(t, errResp.Details, 3)
	assert.Contains(t, errResp.Details[0], "Max perk cost cannot be negative")
	assert.Contains(t, errResp.Details[1], "low baseline should be 0-100%")
	assert.Contains(t, errResp.Details[2], "Invalid perks - helipad")
}

func TestPutDiscountConfigRejectsEmpty(t *testing.T) {
	h := newTestAPI(t)

	rec := doJSON(t, h, http.MethodPut, wizardPath("/discounts/config"), map[string]any{"config": []any{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateDiscountsHappyPath(t *testing.T) {
	h := newTestAPI(t)

	rec := doJSON(t, h, http.MethodPost, wizardPath("/discounts/generate"), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, wizardPath(""), nil)
	var view stateView
	decodeBody(t, rec, &view)
	assert.True(t, view.DiscountsGenerated)
}

func TestDiscountSummaryProxied(t *testing.T) {
	h := newTestAPI(t)

	rec := doJSON(t, h, http.MethodGet, wizardPath("/discounts/summary"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_offers":42`)
}

func TestCampaignScopeView(t *testing.T) {
	h := newTestAPI(t)

	rec := doJSON(t, h, http.MethodGet, wizardPath("/campaigns?year=2024&months=6"), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var view scopeView
	decodeBody(t, rec, &view)
	assert.Equal(t, 2024, view.Year)
	assert.Equal(t, 3, view.Counts.Total)
	assert.Equal(t, 2, view.Counts.Generated)
	require.Len(t, view.Rows, 1)
	assert.Equal(t, "c1", view.Rows[0].CampaignID)
	assert.True(t, view.OfferMonthFlags[5].Valid)
	assert.False(t, view.OfferMonthFlags[6].Valid)
	assert.True(t, view.LaunchMonthFlags[5].Valid)
}

func TestCampaignScopeFallsBackToDefaultYear(t *testing.T) {
	h := newTestAPI(t)

	rec := doJSON(t, h, http.MethodGet, wizardPath("/campaigns?year=1999"), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var view scopeView
	decodeBody(t, rec, &view)
	assert.Equal(t, 2024, view.Year)
}

func TestCampaignScopeRepeatedMonthsCountOnce(t *testing.T) {
	h := newTestAPI(t)

	rec := doJSON(t, h, http.MethodGet, wizardPath("/campaigns?year=2024&months=6,6"), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var view scopeView
	decodeBody(t, rec, &view)
	assert.Equal(t, 3, view.Counts.Total)
	assert.Len(t, view.Rows, 1)
}

func TestCampaignScopeRejectsBadMonths(t *testing.T) {
	h := newTestAPI(t)

	rec := doJSON(t, h, http.MethodGet, wizardPath("/campaigns?months=13"), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateEmailsNeedsYear(t *testing.T) {
	h := newTestAPI(t)

	rec := doJSON(t, h, http.MethodPost, wizardPath("/campaigns/generate"), map[string]any{"months": []int{6}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, wizardPath("/campaigns/generate"), map[string]any{"year": 2024, "months": []int{6}})
	require.Equal(t, http.StatusOK, rec.Code)

	var view scopeView
	decodeBody(t, rec, &view)
	assert.Equal(t, 2024, view.Year)
}

func TestLaunchDefaults(t *testing.T) {
	h := newTestAPI(t)

	rec := doJSON(t, h, http.MethodGet, wizardPath("/launch/defaults"), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var view launchDefaultsView
	decodeBody(t, rec, &view)
	assert.Equal(t, 2024, view.Scope.Year)
	assert.Equal(t, []int{6}, view.Scope.Months)
	require.Len(t, view.Rows, 1)
	assert.True(t, view.Selection["c1"])
	require.Len(t, view.Compliance, 3)
	for _, c := range view.Compliance {
		assert.False(t, c.Checked)
	}
	assert.Equal(t, "Europe/London", view.Timezone)
}

func TestLaunchValidationFirstFailure(t *testing.T) {
	h := newTestAPI(t)

	compliance := []map[string]any{
		{"id": "gdpr", "checked": true},
		{"id": "unsub", "checked": true},
		{"id": "brand", "checked": true},
	}

	rec := doJSON(t, h, http.MethodPost, wizardPath("/launch"), map[string]any{
		"campaign_name": "   ",
		"scope":         map[string]any{"year": 2024, "months": []int{6}},
		"schedule_mode": "now",
		"compliance":    compliance,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please enter a campaign name.")

	rec = doJSON(t, h, http.MethodPost, wizardPath("/launch"), map[string]any{
		"campaign_name": "June Push",
		"scope":         map[string]any{"year": 2024, "months": []int{7}},
		"schedule_mode": "now",
		"compliance":    compliance,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please select at least one email.")

	rec = doJSON(t, h, http.MethodPost, wizardPath("/launch"), map[string]any{
		"campaign_name": "June Push",
		"scope":         map[string]any{"year": 2024, "months": []int{6}},
		"schedule_mode": "later",
		"compliance":    compliance,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "schedule date")
}

func TestLaunchDropsStaleSelection(t *testing.T) {
	h := newTestAPI(t)

	rec := doJSON(t, h, http.MethodPost, wizardPath("/launch"), map[string]any{
		"campaign_name": "June Push",
		"scope":         map[string]any{"year": 2024, "months": []int{6}},
		"selected_ids":  []string{"c3", "gone"},
		"schedule_mode": "now",
		"compliance": []map[string]any{
			{"id": "gdpr", "checked": true},
			{"id": "unsub", "checked": true},
			{"id": "brand", "checked": true},
		},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please select at least one email.")
}

func TestLaunchHappyPath(t *testing.T) {
	h := newTestAPI(t)

	rec := doJSON(t, h, http.MethodPost, wizardPath("/launch"), map[string]any{
		"campaign_name": "June Push",
		"scope":         map[string]any{"year": 2024, "months": []int{6}},
		"schedule_mode": "now",
		"compliance": []map[string]any{
			{"id": "gdpr", "checked": true},
			{"id": "unsub", "checked": true},
			{"id": "brand", "checked": true},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp boostapi.LaunchResponse
	decodeBody(t, rec, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, "mc-1", resp.MarketingCampaignID)
	assert.Equal(t, "b-1", resp.BatchID)
	assert.Equal(t, 1, resp.QueuedCount)
}

func TestLaunchRepeatedMonthsQueueOnce(t *testing.T) {
	h := newTestAPI(t)

	rec := doJSON(t, h, http.MethodPost, wizardPath("/launch"), map[string]any{
		"campaign_name": "June Push",
		"scope":         map[string]any{"year": 2024, "months": []int{6, 6}},
		"schedule_mode": "now",
		"compliance": []map[string]any{
			{"id": "gdpr", "checked": true},
			{"id": "unsub", "checked": true},
			{"id": "brand", "checked": true},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp boostapi.LaunchResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, 1, resp.QueuedCount)
}

func TestPreviewRequiresCampaignID(t *testing.T) {
	h := newTestAPI(t)

	rec := doJSON(t, h, http.MethodPost, "/api/campaigns/preview", map[string]string{"campaign_id": " "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/campaigns/preview", map[string]string{"campaign_id": "c1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "preview")
}

func TestHealth(t *testing.T) {
	h := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "healthy"))
}
