// Stub Direct Boost engine for local wizard development. Every endpoint
// returns plausible hardcoded data; generated state lives in memory only.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/osteele/liquid"
)

type monthCounts struct {
	Total     int `json:"total"`
	Generated int `json:"generated"`
	Pending   int `json:"pending"`
}

type record struct {
	CampaignID    string  `json:"campaign_id,omitempty"`
	Subject       string  `json:"subject,omitempty"`
	Hotel         string  `json:"hotel"`
	BusinessLabel string  `json:"business_label"`
	DiscountPct   float64 `json:"discount_pct"`
	Status        string  `json:"status"`
}

type snapshot struct {
	Years       map[string]map[string]monthCounts `json:"years"`
	MonthLabels map[string]string                 `json:"month_labels"`
	Campaigns   map[string]map[string][]record    `json:"campaigns"`
}

// engineState is the per-process fake campaign store, shared by all users.
type engineState struct {
	mu   sync.Mutex
	snap snapshot
}

var monthLabels = map[string]string{
	"1": "January", "2": "February", "3": "March", "4": "April",
	"5": "May", "6": "June", "7": "July", "8": "August",
	"9": "September", "10": "October", "11": "November", "12": "December",
}

var segmentLabels = []string{
	"Group Deal Seekers",
	"Solo Business Travellers",
	"Last-Minute Couples",
	"Family Planners",
	"Luxury Long-Stay",
}

func seedSnapshot() snapshot {
	snap := snapshot{
		Years:       map[string]map[string]monthCounts{},
		MonthLabels: monthLabels,
		Campaigns:   map[string]map[string][]record{},
	}
	for _, year := range []string{"2024", "2025"} {
		snap.Years[year] = map[string]monthCounts{}
		snap.Campaigns[year] = map[string][]record{}
		for m := 5; m <= 9; m++ {
			month := strconv.Itoa(m)
			var recs []record
			for i, label := range segmentLabels[:3] {
				recs = append(recs, record{
					Hotel:         "The Seaside Resort",
					BusinessLabel: label,
					DiscountPct:   6 + float64(i)*2,
					Status:        "pending",
				})
			}
			snap.Campaigns[year][month] = recs
			snap.Years[year][month] = monthCounts{Total: len(recs), Pending: len(recs)}
		}
	}
	return snap
}

func (s *engineState) generate(year int, months []int) snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(months) == 0 {
		for m := 1; m <= 12; m++ {
			months = append(months, m)
		}
	}
	y := strconv.Itoa(year)
	for _, m := range months {
		month := strconv.Itoa(m)
		recs := s.snap.Campaigns[y][month]
		for i := range recs {
			if recs[i].Status != "pending" {
				continue
			}
			recs[i].CampaignID = uuid.NewString()
			recs[i].Subject = fmt.Sprintf("%s: your %s offer", recs[i].BusinessLabel, monthLabels[month])
			recs[i].Status = "generated"
		}
		s.snap.Campaigns[y][month] = recs
		s.snap.Years[y][month] = recount(recs)
	}
	return s.copySnap()
}

func (s *engineState) launch(ids []string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	queued := 0
	for y, byMonth := range s.snap.Campaigns {
		for m, recs := range byMonth {
			for i := range recs {
				if want[recs[i].CampaignID] && recs[i].Status != "launched" {
					recs[i].Status = "launched"
					queued++
				}
			}
			s.snap.Campaigns[y][m] = recs
		}
	}
	return queued
}

func (s *engineState) current() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copySnap()
}

func (s *engineState) find(campaignID string) (record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, byMonth := range s.snap.Campaigns {
		for _, recs := range byMonth {
			for _, r := range recs {
				if r.CampaignID == campaignID {
					return r, true
				}
			}
		}
	}
	return record{}, false
}

func (s *engineState) copySnap() snapshot {
	out := snapshot{
		Years:       map[string]map[string]monthCounts{},
		MonthLabels: s.snap.MonthLabels,
		Campaigns:   map[string]map[string][]record{},
	}
	for y, byMonth := range s.snap.Years {
		out.Years[y] = map[string]monthCounts{}
		for m, c := range byMonth {
			out.Years[y][m] = c
		}
	}
	for y, byMonth := range s.snap.Campaigns {
		out.Campaigns[y] = map[string][]record{}
		for m, recs := range byMonth {
			out.Campaigns[y][m] = append([]record(nil), recs...)
		}
	}
	return out
}

func recount(recs []record) monthCounts {
	c := monthCounts{Total: len(recs)}
	for _, r := range recs {
		if r.Status == "pending" {
			c.Pending++
		} else {
			c.Generated++
		}
	}
	return c
}

const previewTemplate = `<html>
<body style="font-family: Georgia, serif; background: #faf7f2;">
  <h1>{{ hotel }}</h1>
  <h2>{{ subject }}</h2>
  <p>Dear guest, we miss you at {{ hotel }}.</p>
  <p>Book direct and enjoy <strong>{{ discount_pct }}% off</strong> your next stay.</p>
  <p><a href="https://example.com/book">Book your stay</a></p>
  <p style="font-size: 11px; color: #888;">
    You received this because you stayed with us. <a href="https://example.com/unsub">Unsubscribe</a>.
  </p>
</body>
</html>`

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode error: %v", err)
	}
}

func main() {
	log.Println("WARNING: This is a STUB Direct Boost engine for local testing ONLY.")
	log.Println("All segment, discount, and campaign data is HARDCODED.")

	state := &engineState{snap: seedSnapshot()}
	previewEngine := liquid.NewEngine()

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"direct-boost-stub","warning":"THIS IS A STUB - responses are hardcoded"}`))
	})

	mux.HandleFunc("POST /process-bookings/uploadbookingfile", func(w http.ResponseWriter, r *http.Request) {
		if _, _, err := r.FormFile("file"); err != nil {
			writeJSON(w, map[string]any{"success": false, "message": "file is required"})
			return
		}
		log.Printf("booking file accepted for %s", r.FormValue("email"))
		writeJSON(w, map[string]any{"success": true, "message": "bookings processed"})
	})

	mux.HandleFunc("POST /financials/uploadfinancials", func(w http.ResponseWriter, r *http.Request) {
		if _, _, err := r.FormFile("file"); err != nil {
			writeJSON(w, map[string]any{"success": false, "message": "file is required"})
			return
		}
		log.Printf("finance file accepted for %s", r.FormValue("email"))
		writeJSON(w, map[string]any{"success": true, "message": "financials processed"})
	})

	mux.HandleFunc("POST /segment/genrate-segments", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"success": true,
			"segment_counts": map[string]int{
				"0": 412, "1": 188, "2": 240, "3": 305, "4": 97,
			},
		})
	})

	mux.HandleFunc("POST /segment/get-segment-profiles", func(w http.ResponseWriter, r *http.Request) {
		profiles := make([]map[string]any, len(segmentLabels))
		for i, label := range segmentLabels {
			profiles[i] = map[string]any{
				"cluster_id":     i,
				"business_label": label,
				"tags":           []string{"repeat-clickers", "ota-heavy"},
			}
		}
		writeJSON(w, map[string]any{"data": profiles})
	})

	mux.HandleFunc("POST /discounts/genrate_discounts", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email  string            `json:"email"`
			Config []json.RawMessage `json:"config"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, map[string]any{"success": false, "message": "invalid body"})
			return
		}
		log.Printf("discounts generated for %s (%d segments)", req.Email, len(req.Config))
		writeJSON(w, map[string]any{"success": true})
	})

	mux.HandleFunc("GET /discounts/summary", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"success": true,
			"overall": map[string]any{
				"total_offers":          45,
				"avg_discount_pct":      8.4,
				"avg_base_adr":          142.50,
				"avg_post_discount_adr": 130.53,
			},
			"segments": []map[string]any{
				{
					"segment_id":            0,
					"business_label":        segmentLabels[0],
					"offers_count":          15,
					"avg_discount_pct":      9.0,
					"avg_base_adr":          120.0,
					"avg_post_discount_adr": 109.2,
					"most_common_perks":     []string{"bar_credit", "gym"},
					"rooms": []map[string]any{
						{
							"room_type":        "Double",
							"offers_count":     9,
							"avg_discount_pct": 8.5,
							"months": []map[string]any{
								{"month": "June", "year": 2024, "offers_count": 3, "avg_discount_pct": 8.0, "avg_base_adr": 118.0, "avg_post_discount_adr": 108.6},
							},
						},
					},
				},
			},
		})
	})

	mux.HandleFunc("POST /email/get-email-campaigns", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, state.current())
	})

	mux.HandleFunc("POST /email/generate-email", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email  string `json:"email"`
			Year   int    `json:"year"`
			Months []int  `json:"months"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, map[string]any{"success": false, "message": "invalid body"})
			return
		}
		log.Printf("generating emails for %s, year %d months %v", req.Email, req.Year, req.Months)
		writeJSON(w, state.generate(req.Year, req.Months))
	})

	mux.HandleFunc("POST /email/get-email-preview", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			CampaignID string `json:"campaign_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, map[string]any{"success": false, "message": "invalid body"})
			return
		}
		rec, ok := state.find(req.CampaignID)
		if !ok {
			writeJSON(w, map[string]any{"success": false, "message": "campaign not found"})
			return
		}
		html, err := previewEngine.ParseAndRenderString(previewTemplate, map[string]any{
			"hotel":        rec.Hotel,
			"subject":      rec.Subject,
			"discount_pct": rec.DiscountPct,
		})
		if err != nil {
			writeJSON(w, map[string]any{"success": false, "message": "template error"})
			return
		}
		writeJSON(w, map[string]any{"success": true, "html": html})
	})

	mux.HandleFunc("POST /campaign/launch", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserEmail        string   `json:"user_email"`
			EmailCampaignIDs []string `json:"email_campaign_ids"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, map[string]any{"success": false, "message": "invalid body"})
			return
		}
		queued := state.launch(req.EmailCampaignIDs)
		log.Printf("launch for %s queued %d emails", req.UserEmail, queued)
		writeJSON(w, map[string]any{
			"success":               true,
			"marketing_campaign_id": uuid.NewString(),
			"batch_id":              uuid.NewString(),
			"queued_count":          queued,
		})
	})

	port := os.Getenv("STUB_PORT")
	if port == "" {
		port = "9000"
	}
	addr := ":" + strings.TrimPrefix(port, ":")
	log.Printf("Stub engine listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Stub engine error: %v", err)
	}
}
