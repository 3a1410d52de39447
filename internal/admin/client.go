// Package admin is the operations console: aggregate stats, user and
// recruiter management, plan editing and support-ticket triage. Everything
// here requires an admin session; the backend re-checks privilege on every
// call.
package admin

import (
	"context"
	"fmt"

	"github.com/resumeblast/blastkit/internal/api"
)

// Stats is the dashboard headline panel.
type Stats struct {
	TotalUsers     int `json:"total_users"`
	TotalCampaigns int `json:"total_campaigns"`
	TotalResumes   int `json:"total_resumes"`
	ActiveGuests   int `json:"active_guests"`
}

// Revenue is the billing panel.
type Revenue struct {
	TotalCents    int            `json:"total_cents"`
	MonthCents    int            `json:"month_cents"`
	PlanBreakdown map[string]int `json:"plan_breakdown"`
}

// Health is the backend's own component health report.
type Health struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}

// MailStats is the delivery provider's counters.
type MailStats struct {
	Sent      int `json:"sent"`
	Delivered int `json:"delivered"`
	Opened    int `json:"opened"`
	Bounced   int `json:"bounced"`
}

// RecruiterStats summarizes the distribution pool.
type RecruiterStats struct {
	Total      int            `json:"total"`
	ByIndustry map[string]int `json:"by_industry"`
}

// UserRow is one account in the user management panel.
type UserRow struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

// Ticket is a support ticket in the triage queue.
type Ticket struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Subject  string `json:"subject"`
	Message  string `json:"message"`
	Unread   bool   `json:"unread"`
	Resolved bool   `json:"resolved"`
	Notes    string `json:"notes"`
}

// Client wraps the backend client with the admin endpoints.
type Client struct {
	api *api.Client
}

// NewClient wraps an authenticated backend client.
func NewClient(backend *api.Client) *Client {
	return &Client{api: backend}
}

func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var out Stats
	if err := c.api.Get(ctx, "/api/admin/stats", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Revenue(ctx context.Context) (*Revenue, error) {
	var out Revenue
	if err := c.api.Get(ctx, "/api/admin/revenue", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Health(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.api.Get(ctx, "/api/admin/health", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ServerStatus(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.api.Get(ctx, "/api/admin/server-status", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MailStats(ctx context.Context) (*MailStats, error) {
	var out MailStats
	if err := c.api.Get(ctx, "/api/admin/brevo-stats", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RecruiterStats(ctx context.Context) (*RecruiterStats, error) {
	var out RecruiterStats
	if err := c.api.Get(ctx, "/api/admin/recruiters/stats", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AddRecruiter(ctx context.Context, r api.Recruiter) error {
	return c.api.Post(ctx, "/api/admin/recruiters/add", r, nil)
}

func (c *Client) DeleteRecruiter(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("recruiter id is empty")
	}
	return c.api.Delete(ctx, "/api/admin/recruiters/"+id, nil)
}

func (c *Client) Users(ctx context.Context) ([]UserRow, error) {
	var out struct {
		Users []UserRow `json:"users"`
	}
	if err := c.api.Get(ctx, "/api/admin/users", &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

func (c *Client) UserCount(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	if err := c.api.Get(ctx, "/api/admin/users/count", &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("user id is empty")
	}
	return c.api.Delete(ctx, "/api/admin/users/"+id, nil)
}

func (c *Client) Plans(ctx context.Context) ([]api.Plan, error) {
	var out struct {
		Plans []api.Plan `json:"plans"`
	}
	if err := c.api.Get(ctx, "/api/admin/plans", &out); err != nil {
		return nil, err
	}
	return out.Plans, nil
}

func (c *Client) UpdatePlan(ctx context.Context, plan api.Plan) error {
	return c.api.Post(ctx, "/api/admin/plans/update", plan, nil)
}

func (c *Client) Tickets(ctx context.Context) ([]Ticket, error) {
	var out struct {
		Submissions []Ticket `json:"submissions"`
	}
	if err := c.api.Get(ctx, "/api/admin/contact-submissions", &out); err != nil {
		return nil, err
	}
	return out.Submissions, nil
}

// UnreadTicketCount is the value the console polls while open.
func (c *Client) UnreadTicketCount(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	if err := c.api.Get(ctx, "/api/admin/contact-submissions/unread-count", &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (c *Client) MarkTicketRead(ctx context.Context, id string) error {
	return c.api.Post(ctx, "/api/admin/contact-submissions/"+id+"/mark-read", nil, nil)
}

func (c *Client) ResolveTicket(ctx context.Context, id string) error {
	return c.api.Post(ctx, "/api/admin/contact-submissions/"+id+"/resolve", nil, nil)
}

func (c *Client) SetTicketNotes(ctx context.Context, id, notes string) error {
	body := struct {
		Notes string `json:"notes"`
	}{Notes: notes}
	return c.api.Post(ctx, "/api/admin/contact-submissions/"+id+"/notes", body, nil)
}
