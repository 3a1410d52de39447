package api

import (
	"context"
	"encoding/json"
)

// ResumeRecord is the stored upload the resume-after-redirect path refetches.
type ResumeRecord struct {
	ID            string          `json:"id"`
	FileName      string          `json:"file_name"`
	FileURL       string          `json:"file_url"`
	ExtractedText string          `json:"extracted_text"`
	AnalysisData  json.RawMessage `json:"analysis_data"`
	CandidateName string          `json:"candidate_name"`
	CandidateMail string          `json:"candidate_email"`
	UserID        string          `json:"user_id"`
	GuestID       string          `json:"guest_id"`
}

// SaveResumeRequest stores an upload server-side so later steps (and the
// redirect return) can refetch it.
type SaveResumeRequest struct {
	FileName      string `json:"file_name" validate:"required"`
	ExtractedText string `json:"extracted_text" validate:"required"`
	UserID        string `json:"user_id,omitempty"`
	GuestID       string `json:"guest_id,omitempty"`
}

// SaveResume persists an upload and returns the stored record.
func (c *Client) SaveResume(ctx context.Context, req SaveResumeRequest) (*ResumeRecord, error) {
	var record ResumeRecord
	if err := c.Post(ctx, "/api/resumes", req, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// GetResume fetches a stored resume record by id.
func (c *Client) GetResume(ctx context.Context, id string) (*ResumeRecord, error) {
	if id == "" {
		return nil, &ErrValidation{Field: "resume_id", Message: "required"}
	}
	var record ResumeRecord
	if err := c.Get(ctx, "/api/resumes/"+id, &record); err != nil {
		return nil, err
	}
	return &record, nil
}
