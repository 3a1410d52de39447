package api

import (
	"context"
	"fmt"
)

// CheckoutRequest creates a hosted checkout session for a paid plan.
type CheckoutRequest struct {
	Email              string `json:"email" validate:"required,email"`
	UserID             string `json:"user_id,omitempty"`
	GuestID            string `json:"guest_id,omitempty"`
	Plan               string `json:"plan" validate:"required"`
	DisclaimerAccepted bool   `json:"disclaimer_accepted"`
	ReturnURL          string `json:"return_url,omitempty"`
}

// CheckoutSession is the hosted payment page handle.
type CheckoutSession struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

// PaymentStatus is the verified state of a checkout session.
type PaymentStatus struct {
	SessionID  string `json:"session_id"`
	Paid       bool   `json:"paid"`
	Plan       string `json:"plan"`
	AmountCent int    `json:"amount_cents"`
	Email      string `json:"email"`
}

// CreateCheckoutSession asks the backend to open a hosted checkout page.
func (c *Client) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	if !req.DisclaimerAccepted {
		return nil, &ErrValidation{Field: "disclaimer_accepted", Message: "disclaimer must be accepted before payment"}
	}
	var session CheckoutSession
	if err := c.Post(ctx, "/api/create-checkout-session", req, &session); err != nil {
		return nil, err
	}
	if session.CheckoutURL == "" {
		return nil, fmt.Errorf("backend returned a checkout session without a URL")
	}
	return &session, nil
}

// VerifyPayment confirms a checkout session actually settled. The resume
// path calls this before any send.
func (c *Client) VerifyPayment(ctx context.Context, sessionID string) (*PaymentStatus, error) {
	if sessionID == "" {
		return nil, &ErrValidation{Field: "session_id", Message: "required"}
	}
	var status PaymentStatus
	path := queryPath("/api/payment/verify", map[string]string{"session_id": sessionID})
	if err := c.Get(ctx, path, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
