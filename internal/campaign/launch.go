package campaign

import "strings"

// ScheduleMode selects when queued emails are sent.
type ScheduleMode string

const (
	ScheduleNow   ScheduleMode = "now"
	ScheduleLater ScheduleMode = "later"
	ScheduleSmart ScheduleMode = "smart"
)

// Schedule is the launch timing choice.
type Schedule struct {
	Mode       ScheduleMode `json:"mode"`
	ScheduleAt string       `json:"schedule_at,omitempty"`
	Timezone   string       `json:"timezone"`
}

// Meta names the campaign for the hotel's own records.
type Meta struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ComplianceItem is one pre-launch checklist entry. Every item must be
// checked before a launch is allowed.
type ComplianceItem struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Checked bool   `json:"checked"`
}

// DefaultCompliance returns the pre-launch checklist, unchecked.
func DefaultCompliance() []ComplianceItem {
	return []ComplianceItem{
		{ID: "gdpr", Label: "GDPR: Only opted-in recipients included"},
		{ID: "unsub", Label: "Unsubscribe link present and tested"},
		{ID: "brand", Label: "Branding (logo, colors, footer) verified"},
	}
}

// LaunchRequest is the engine's launch schema, built only at submission
// time and never persisted.
type LaunchRequest struct {
	UserEmail        string          `json:"user_email"`
	Campaign         Meta            `json:"campaign"`
	Scope            Scope           `json:"scope"`
	EmailCampaignIDs []string        `json:"email_campaign_ids"`
	Schedule         Schedule        `json:"schedule"`
	Compliance       map[string]bool `json:"compliance"`
}

// LaunchDraft is the editable launch form state the validation runs over.
type LaunchDraft struct {
	CampaignName string           `json:"campaign_name"`
	Description  string           `json:"description"`
	Scope        Scope            `json:"scope"`
	SelectedIDs  []string         `json:"selected_ids"`
	ScheduleMode ScheduleMode     `json:"schedule_mode"`
	ScheduleAt   string           `json:"schedule_at"`
	Compliance   []ComplianceItem `json:"compliance"`
}

// Validate checks the draft in fixed priority order and returns the first
// failing condition's message, or "" when the draft may be submitted.
// Unlike the discount validator this deliberately reports one issue per
// attempt.
func (d LaunchDraft) Validate() string {
	if strings.TrimSpace(d.CampaignName) == "" {
		return "Please enter a campaign name."
	}
	if len(d.SelectedIDs) == 0 {
		return "Please select at least one email."
	}
	if d.ScheduleMode == ScheduleLater && d.ScheduleAt == "" {
		return "Please choose a schedule date & time."
	}
	for _, c := range d.Compliance {
		if !c.Checked {
			return "Please confirm all compliance checks."
		}
	}
	return ""
}

// Build assembles the engine launch payload from a validated draft.
func (d LaunchDraft) Build(userEmail, timezone string) LaunchRequest {
	compliance := make(map[string]bool, len(d.Compliance))
	for _, c := range d.Compliance {
		compliance[c.ID] = c.Checked
	}
	return LaunchRequest{
		UserEmail: userEmail,
		Campaign: Meta{
			Name:        strings.TrimSpace(d.CampaignName),
			Description: strings.TrimSpace(d.Description),
		},
		Scope:            d.Scope,
		EmailCampaignIDs: d.SelectedIDs,
		Schedule: Schedule{
			Mode:       d.ScheduleMode,
			ScheduleAt: d.ScheduleAt,
			Timezone:   timezone,
		},
		Compliance: compliance,
	}
}
