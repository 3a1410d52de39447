package api

import (
	"context"
	"strconv"
)

// Recruiter is a distribution target row.
type Recruiter struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Company  string `json:"company"`
	Industry string `json:"industry"`
	Location string `json:"location"`
}

// BlastRequest is the paid campaign submission.
type BlastRequest struct {
	UserID         string `json:"user_id,omitempty"`
	GuestID        string `json:"guest_id,omitempty"`
	Email          string `json:"email" validate:"required,email"`
	CandidateName  string `json:"candidate_name" validate:"required"`
	ResumeID       string `json:"resume_id" validate:"required"`
	ResumeURL      string `json:"resume_url" validate:"required"`
	Plan           string `json:"plan" validate:"required"`
	Industry       string `json:"industry" validate:"required"`
	Location       string `json:"location,omitempty"`
	RecruiterCount int    `json:"recruiter_count" validate:"gt=0"`
	SessionID      string `json:"session_id,omitempty"`
}

// FreemiumRequest is the one-shot free tier submission for registered users.
type FreemiumRequest struct {
	UserID        string `json:"user_id" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	CandidateName string `json:"candidate_name" validate:"required"`
	ResumeID      string `json:"resume_id" validate:"required"`
	Industry      string `json:"industry" validate:"required"`
	Location      string `json:"location,omitempty"`
}

// BlastResult reports what a send accomplished.
type BlastResult struct {
	CampaignID     string `json:"campaign_id"`
	RecipientCount int    `json:"recipient_count"`
	DripScheduled  bool   `json:"drip_scheduled"`
	Message        string `json:"message"`
}

// Campaign is a historical send record.
type Campaign struct {
	ID             string `json:"id"`
	Plan           string `json:"plan"`
	Industry       string `json:"industry"`
	RecipientCount int    `json:"recipient_count"`
	Status         string `json:"status"`
	CreatedAt      string `json:"created_at"`
}

// SendBlast submits a paid campaign.
func (c *Client) SendBlast(ctx context.Context, req BlastRequest) (*BlastResult, error) {
	var result BlastResult
	if err := c.Post(ctx, "/api/blast/send", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SendFreemiumBlast submits the free-tier campaign. The backend enforces the
// once-per-account rule; the client checks eligibility first for UX.
func (c *Client) SendFreemiumBlast(ctx context.Context, req FreemiumRequest) (*BlastResult, error) {
	var result BlastResult
	if err := c.Post(ctx, "/api/blast/freemium", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SendTestEmail asks the backend to deliver one test message to addr.
func (c *Client) SendTestEmail(ctx context.Context, addr string) error {
	body := struct {
		Email string `json:"email" validate:"required,email"`
	}{Email: addr}
	return c.Post(ctx, "/api/blast/test-single", body, nil)
}

// TestConnection verifies the mail pipeline end to end.
func (c *Client) TestConnection(ctx context.Context) error {
	return c.Post(ctx, "/api/blast/test", nil, nil)
}

// FetchRecruiters returns up to limit distribution targets for an industry.
func (c *Client) FetchRecruiters(ctx context.Context, industry, location string, limit int) ([]Recruiter, error) {
	var resp struct {
		Recruiters []Recruiter `json:"recruiters"`
	}
	params := map[string]string{
		"industry": industry,
		"location": location,
	}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}
	path := queryPath("/api/recruiters", params)
	if err := c.Get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Recruiters, nil
}

// ListCampaigns returns a user's campaign history.
func (c *Client) ListCampaigns(ctx context.Context, userID string) ([]Campaign, error) {
	var resp struct {
		Campaigns []Campaign `json:"campaigns"`
	}
	path := queryPath("/api/campaigns", map[string]string{"user_id": userID})
	if err := c.Get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Campaigns, nil
}

// CountCampaigns returns how many campaigns a user has ever run. The free
// tier is only open at zero.
func (c *Client) CountCampaigns(ctx context.Context, userID string) (int, error) {
	campaigns, err := c.ListCampaigns(ctx, userID)
	if err != nil {
		return 0, err
	}
	return len(campaigns), nil
}
