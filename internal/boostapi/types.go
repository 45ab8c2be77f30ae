package boostapi

import "github.com/ignite/direct-boost/internal/discount"

// StatusResponse is the minimal success envelope the upload and discount
// generation endpoints return.
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// SegmentCountsResponse reports how many guests landed in each cluster
// after segment generation. Keys are cluster ids as decimal strings.
type SegmentCountsResponse struct {
	Success       bool           `json:"success"`
	SegmentCounts map[string]int `json:"segment_counts"`
}

// SegmentProfile describes one generated customer cluster.
type SegmentProfile struct {
	ClusterID     int      `json:"cluster_id"`
	BusinessLabel string   `json:"business_label"`
	Tags          []string `json:"tags"`
}

type segmentProfilesResponse struct {
	Data []SegmentProfile `json:"data"`
}

// GenerateDiscountsRequest is the JSON body for discount generation.
type GenerateDiscountsRequest struct {
	Email  string                   `json:"email"`
	Config []discount.SegmentConfig `json:"config"`
}

// GenerateEmailsRequest asks the engine to generate the pending campaign
// emails inside the scope.
type GenerateEmailsRequest struct {
	Email  string `json:"email"`
	Year   int    `json:"year"`
	Months []int  `json:"months"`
}

// DiscountSummary is the engine's post-generation summary, rendered by the
// wizard's summary step.
type DiscountSummary struct {
	Success  bool             `json:"success"`
	Overall  OverallSummary   `json:"overall"`
	Segments []SegmentSummary `json:"segments"`
}

// OverallSummary aggregates across every segment.
type OverallSummary struct {
	TotalOffers        int     `json:"total_offers"`
	AvgDiscountPct     float64 `json:"avg_discount_pct"`
	AvgBaseADR         float64 `json:"avg_base_adr"`
	AvgPostDiscountADR float64 `json:"avg_post_discount_adr"`
}

// SegmentSummary is one segment's discount outcome.
type SegmentSummary struct {
	SegmentID          int           `json:"segment_id"`
	BusinessLabel      string        `json:"business_label"`
	OffersCount        int           `json:"offers_count"`
	AvgDiscountPct     float64       `json:"avg_discount_pct"`
	AvgBaseADR         float64       `json:"avg_base_adr"`
	AvgPostDiscountADR float64       `json:"avg_post_discount_adr"`
	MostCommonPerks    []string      `json:"most_common_perks"`
	Rooms              []RoomSummary `json:"rooms"`
}

// RoomSummary breaks a segment's offers down by room type.
type RoomSummary struct {
	RoomType       string         `json:"room_type"`
	OffersCount    int            `json:"offers_count"`
	AvgDiscountPct float64        `json:"avg_discount_pct"`
	Months         []MonthSummary `json:"months"`
}

// MonthSummary is the per-month breakdown within a room type.
type MonthSummary struct {
	Month              string  `json:"month"`
	Year               int     `json:"year"`
	OffersCount        int     `json:"offers_count"`
	AvgDiscountPct     float64 `json:"avg_discount_pct"`
	AvgBaseADR         float64 `json:"avg_base_adr"`
	AvgPostDiscountADR float64 `json:"avg_post_discount_adr"`
}

// PreviewResponse carries a rendered campaign email.
type PreviewResponse struct {
	Success bool   `json:"success"`
	HTML    string `json:"html"`
	Message string `json:"message,omitempty"`
}

// LaunchResponse is the engine's receipt for a queued campaign.
type LaunchResponse struct {
	Success             bool   `json:"success"`
	Message             string `json:"message,omitempty"`
	MarketingCampaignID string `json:"marketing_campaign_id"`
	BatchID             string `json:"batch_id"`
	QueuedCount         int    `json:"queued_count"`
}
