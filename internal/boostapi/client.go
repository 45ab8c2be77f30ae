// Package boostapi is the typed client for the Direct Boost engine: the
// external service that parses uploaded files, clusters guests into
// segments, computes discounts, and generates and sends campaign emails.
// Every response is decoded into an explicit type at this boundary — the
// rest of the service never sees raw payloads.
package boostapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/ignite/direct-boost/internal/campaign"
	"github.com/ignite/direct-boost/internal/discount"
)

// HTTPDoer executes HTTP requests. *http.Client satisfies it; tests swap
// in a recorder.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds the engine endpoint settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is the Direct Boost engine API client. Calls are single-shot: the
// wizard never retries automatically, the user re-triggers the action.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
}

// NewClient creates a new engine client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetHTTPClient sets a custom HTTP client (useful for testing).
func (c *Client) SetHTTPClient(client HTTPDoer) {
	c.httpClient = client
}

// doJSON performs a request with a JSON body (or none) and returns the raw
// response body on 2xx.
func (c *Client) doJSON(ctx context.Context, method, endpoint string, body any) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req)
}

// doMultipart performs a multipart/form-data POST with the given fields and
// optional file part.
func (c *Client) doMultipart(ctx context.Context, endpoint string, fields map[string]string, fileField, filename string, file io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("failed to write form field %s: %w", k, err)
		}
	}
	if file != nil {
		part, err := mw.CreateFormFile(fileField, filename)
		if err != nil {
			return nil, fmt.Errorf("failed to create file part: %w", err)
		}
		if _, err := io.Copy(part, file); err != nil {
			return nil, fmt.Errorf("failed to copy file contents: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return c.send(req)
}

func (c *Client) send(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("engine error (status %d): %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

// ========== Upload Methods ==========

// UploadBookingFile sends the hotel's booking history file for parsing.
func (c *Client) UploadBookingFile(ctx context.Context, email, filename string, file io.Reader) (*StatusResponse, error) {
	return c.upload(ctx, "/process-bookings/uploadbookingfile", email, filename, file)
}

// UploadFinanceFile sends the hotel's financials file for parsing.
func (c *Client) UploadFinanceFile(ctx context.Context, email, filename string, file io.Reader) (*StatusResponse, error) {
	return c.upload(ctx, "/financials/uploadfinancials", email, filename, file)
}

func (c *Client) upload(ctx context.Context, endpoint, email, filename string, file io.Reader) (*StatusResponse, error) {
	respBody, err := c.doMultipart(ctx, endpoint, map[string]string{"email": email}, "file", filename, file)
	if err != nil {
		return nil, err
	}

	var response StatusResponse
	if err := json.Unmarshal(respBody, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if !response.Success {
		return nil, fmt.Errorf("engine rejected upload: %s", response.Message)
	}
	return &response, nil
}

// ========== Segmentation Methods ==========

// GenerateSegments runs guest clustering for the user's uploaded data.
func (c *Client) GenerateSegments(ctx context.Context, email string) (*SegmentCountsResponse, error) {
	respBody, err := c.doMultipart(ctx, "/segment/genrate-segments", map[string]string{"email": email}, "", "", nil)
	if err != nil {
		return nil, err
	}

	var response SegmentCountsResponse
	if err := json.Unmarshal(respBody, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if !response.Success {
		return nil, fmt.Errorf("engine returned failure")
	}
	return &response, nil
}

// GetSegmentProfiles fetches the generated cluster profiles.
func (c *Client) GetSegmentProfiles(ctx context.Context, email string) ([]SegmentProfile, error) {
	respBody, err := c.doMultipart(ctx, "/segment/get-segment-profiles", map[string]string{"email": email}, "", "", nil)
	if err != nil {
		return nil, err
	}

	var response segmentProfilesResponse
	if err := json.Unmarshal(respBody, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return response.Data, nil
}

// ========== Discount Methods ==========

// GenerateDiscounts submits the per-segment discount configuration. The
// caller must have validated the configuration; the engine re-validates
// server-side regardless.
func (c *Client) GenerateDiscounts(ctx context.Context, email string, configs []discount.SegmentConfig) error {
	respBody, err := c.doJSON(ctx, http.MethodPost, "/discounts/genrate_discounts", GenerateDiscountsRequest{
		Email:  email,
		Config: configs,
	})
	if err != nil {
		return err
	}

	var response StatusResponse
	if err := json.Unmarshal(respBody, &response); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if !response.Success {
		return fmt.Errorf("engine returned failure: %s", response.Message)
	}
	return nil
}

// GetDiscountSummary fetches the computed discount summary.
func (c *Client) GetDiscountSummary(ctx context.Context, email string) (*DiscountSummary, error) {
	endpoint := "/discounts/summary?email=" + url.QueryEscape(email)
	respBody, err := c.doJSON(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var response DiscountSummary
	if err := json.Unmarshal(respBody, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &response, nil
}

// ========== Email Campaign Methods ==========

// GenerateEmails generates the pending campaign emails in the scope and
// returns the refreshed snapshot.
func (c *Client) GenerateEmails(ctx context.Context, email string, year int, months []int) (*campaign.Snapshot, error) {
	respBody, err := c.doJSON(ctx, http.MethodPost, "/email/generate-email", GenerateEmailsRequest{
		Email:  email,
		Year:   year,
		Months: months,
	})
	if err != nil {
		return nil, err
	}
	return parseSnapshot(respBody)
}

// GetCampaignSnapshot fetches the current campaign stats snapshot.
func (c *Client) GetCampaignSnapshot(ctx context.Context, email string) (*campaign.Snapshot, error) {
	respBody, err := c.doMultipart(ctx, "/email/get-email-campaigns", map[string]string{"email": email}, "", "", nil)
	if err != nil {
		return nil, err
	}
	return parseSnapshot(respBody)
}

func parseSnapshot(respBody []byte) (*campaign.Snapshot, error) {
	var snap campaign.Snapshot
	if err := json.Unmarshal(respBody, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	if snap.Years == nil {
		return nil, fmt.Errorf("snapshot missing years")
	}
	return &snap, nil
}

// GetEmailPreview fetches the rendered HTML for one campaign email.
func (c *Client) GetEmailPreview(ctx context.Context, campaignID string) (*PreviewResponse, error) {
	respBody, err := c.doJSON(ctx, http.MethodPost, "/email/get-email-preview", map[string]string{
		"campaign_id": campaignID,
	})
	if err != nil {
		return nil, err
	}

	var response PreviewResponse
	if err := json.Unmarshal(respBody, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if !response.Success {
		return nil, fmt.Errorf("engine returned failure: %s", response.Message)
	}
	return &response, nil
}

// ========== Launch ==========

// Launch queues the selected campaign emails for sending.
func (c *Client) Launch(ctx context.Context, req campaign.LaunchRequest) (*LaunchResponse, error) {
	respBody, err := c.doJSON(ctx, http.MethodPost, "/campaign/launch", req)
	if err != nil {
		return nil, err
	}

	var response LaunchResponse
	if err := json.Unmarshal(respBody, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if !response.Success {
		return nil, fmt.Errorf("engine returned failure: %s", response.Message)
	}
	return &response, nil
}
