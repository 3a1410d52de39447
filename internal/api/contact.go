package api

import (
	"context"

	"github.com/google/uuid"
)

// SupportTicket is a user-submitted help request.
type SupportTicket struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required"`
	Message string `json:"message" validate:"required,min=10"`
	UserID  string `json:"user_id,omitempty"`
}

// EmployerLead is an inbound interest form from the employer network page.
type EmployerLead struct {
	Company string `json:"company" validate:"required"`
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message,omitempty"`
}

// SubmitSupportTicket files a help request.
func (c *Client) SubmitSupportTicket(ctx context.Context, ticket SupportTicket) error {
	return c.Post(ctx, "/api/support-ticket/submit", ticket, nil)
}

// SubmitContact files a general contact form message.
func (c *Client) SubmitContact(ctx context.Context, ticket SupportTicket) error {
	return c.Post(ctx, "/api/contact/submit", ticket, nil)
}

// SubmitEmployerLead captures an employer inquiry.
func (c *Client) SubmitEmployerLead(ctx context.Context, lead EmployerLead) error {
	return c.Post(ctx, "/api/employer/lead", lead, nil)
}

// IsAdmin asks the backend whether an account holds admin privileges. It
// implements identity.AdminChecker.
func (c *Client) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	var resp struct {
		IsAdmin bool `json:"is_admin"`
	}
	path := queryPath("/api/admin/check", map[string]string{"user_id": userID.String()})
	if err := c.Get(ctx, path, &resp); err != nil {
		return false, err
	}
	return resp.IsAdmin, nil
}
