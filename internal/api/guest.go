package api

import (
	"context"
	"encoding/json"
)

// GuestRecord is the backend's view of a guest workflow.
type GuestRecord struct {
	GuestID    string          `json:"guest_id"`
	Email      string          `json:"email"`
	ResumeID   string          `json:"resume_id"`
	ResumeURL  string          `json:"resume_url"`
	Analysis   json.RawMessage `json:"analysis"`
	Plan       string          `json:"plan"`
	PaidAt     string          `json:"paid_at"`
	BlastState string          `json:"blast_state"`
}

type guestInitRequest struct {
	GuestID string `json:"guest_id" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
}

type guestResumeRequest struct {
	GuestID   string `json:"guest_id" validate:"required"`
	ResumeID  string `json:"resume_id" validate:"required"`
	ResumeURL string `json:"resume_url"`
	FileName  string `json:"file_name"`
}

type guestAnalysisRequest struct {
	GuestID  string          `json:"guest_id" validate:"required"`
	Analysis json.RawMessage `json:"analysis" validate:"required"`
}

type guestPaymentRequest struct {
	GuestID   string `json:"guest_id" validate:"required"`
	SessionID string `json:"session_id" validate:"required"`
	Plan      string `json:"plan"`
}

type guestBlastEvent struct {
	GuestID    string `json:"guest_id" validate:"required"`
	CampaignID string `json:"campaign_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

// GuestInit registers a guest id with the backend.
func (c *Client) GuestInit(ctx context.Context, guestID, email string) error {
	return c.Post(ctx, "/api/guest/init", guestInitRequest{GuestID: guestID, Email: email}, nil)
}

// GuestSaveResume records a guest's upload server-side so the redirect
// return can refetch it.
func (c *Client) GuestSaveResume(ctx context.Context, guestID, resumeID, resumeURL, fileName string) error {
	return c.Post(ctx, "/api/guest/resume", guestResumeRequest{
		GuestID: guestID, ResumeID: resumeID, ResumeURL: resumeURL, FileName: fileName,
	}, nil)
}

// GuestSaveAnalysis stores the analysis payload for a guest.
func (c *Client) GuestSaveAnalysis(ctx context.Context, guestID string, analysis json.RawMessage) error {
	return c.Post(ctx, "/api/guest/analysis", guestAnalysisRequest{GuestID: guestID, Analysis: analysis}, nil)
}

// GuestSavePayment associates a settled checkout session with a guest.
func (c *Client) GuestSavePayment(ctx context.Context, guestID, sessionID, plan string) error {
	return c.Post(ctx, "/api/guest/payment", guestPaymentRequest{GuestID: guestID, SessionID: sessionID, Plan: plan}, nil)
}

// GuestBlastStart marks a guest campaign as sending.
func (c *Client) GuestBlastStart(ctx context.Context, guestID string) error {
	return c.Post(ctx, "/api/guest/blast/start", guestBlastEvent{GuestID: guestID}, nil)
}

// GuestBlastComplete marks a guest campaign as finished.
func (c *Client) GuestBlastComplete(ctx context.Context, guestID, campaignID string) error {
	return c.Post(ctx, "/api/guest/blast/complete", guestBlastEvent{GuestID: guestID, CampaignID: campaignID}, nil)
}

// GetGuest fetches the backend record for a guest id. The resume path uses
// it to recover an identity the local store lost.
func (c *Client) GetGuest(ctx context.Context, guestID string) (*GuestRecord, error) {
	if guestID == "" {
		return nil, &ErrValidation{Field: "guest_id", Message: "required"}
	}
	var record GuestRecord
	if err := c.Get(ctx, "/api/guest/"+guestID, &record); err != nil {
		return nil, err
	}
	return &record, nil
}
