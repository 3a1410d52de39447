package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, func() string { return "test-token" })
}

func TestClient_SendsBearerToken(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	})

	require.NoError(t, c.Get(context.Background(), "/api/plans/public", &struct{}{}))
	assert.Equal(t, "Bearer test-token", gotAuth)
}

func TestClient_StatusErrorMapping(t *testing.T) {
	tests := []struct {
		status int
		want   Category
	}{
		{http.StatusBadRequest, CategoryValidation},
		{http.StatusUnauthorized, CategoryAuthorization},
		{http.StatusForbidden, CategoryAuthorization},
		{http.StatusNotFound, CategoryNotFound},
		{http.StatusInternalServerError, CategoryService},
		{http.StatusBadGateway, CategoryService},
	}

	for _, tt := range tests {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			w.Write([]byte(`{"error": "nope"}`))
		})

		err := c.Get(context.Background(), "/api/x", nil)
		require.Error(t, err)
		assert.Equal(t, tt.want, Categorize(err), "status %d", tt.status)
	}
}

func TestClient_UnreachableIsNetworkCategory(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", nil)

	err := c.Get(context.Background(), "/api/x", nil)
	require.Error(t, err)
	assert.Equal(t, CategoryNetwork, Categorize(err))
	assert.True(t, Temporary(err))
}

func TestTemporary(t *testing.T) {
	assert.True(t, Temporary(&ErrBackend{Status: 503}))
	assert.False(t, Temporary(&ErrBackend{Status: 404}))
	assert.False(t, Temporary(&ErrValidation{}))
}

func TestPost_LocalValidationShortCircuits(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := c.SendBlast(context.Background(), BlastRequest{Email: "not-an-email"})
	require.Error(t, err)
	assert.Equal(t, CategoryValidation, Categorize(err))
	assert.False(t, called, "invalid payload must never reach the wire")
}

func TestSendBlast(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/blast/send", r.URL.Path)
		var req BlastRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "premium", req.Plan)
		json.NewEncoder(w).Encode(BlastResult{CampaignID: "camp-1", RecipientCount: 1500, DripScheduled: true})
	})

	result, err := c.SendBlast(context.Background(), BlastRequest{
		Email:          "jane@example.com",
		CandidateName:  "Jane Doe",
		ResumeID:       "res-1",
		ResumeURL:      "https://cdn.example.com/res-1.pdf",
		Plan:           "premium",
		Industry:       "technology",
		RecruiterCount: 1500,
	})
	require.NoError(t, err)
	assert.Equal(t, "camp-1", result.CampaignID)
	assert.True(t, result.DripScheduled)
}

func TestPublicPlans_FallsBackWhenUnreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", nil)

	plans, err := c.PublicPlans(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultPlans, plans)
}

func TestPublicPlans_Live(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"plans": []Plan{{Key: "starter", Name: "Starter", RecruiterCount: 250}},
		})
	})

	plans, err := c.PublicPlans(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, "starter", plans[0].Key)
}

func TestPlanByKey(t *testing.T) {
	p, err := PlanByKey(DefaultPlans, "premium")
	require.NoError(t, err)
	assert.Equal(t, PremiumPriceCents, p.PriceCents)
	assert.Equal(t, 1500, p.RecruiterCount)

	_, err = PlanByKey(DefaultPlans, "enterprise")
	assert.Error(t, err)
}

func TestDeliveryDays(t *testing.T) {
	assert.Equal(t, 0, DeliveryDays(0))
	assert.Equal(t, 1, DeliveryDays(FreeTierRecipients))
	assert.Equal(t, 1, DeliveryDays(DailySendLimit))
	assert.Equal(t, 2, DeliveryDays(DailySendLimit+1))
	assert.Equal(t, 30, DeliveryDays(1500))
}

func TestCreateCheckoutSession_RequiresDisclaimer(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("must not reach the backend without a disclaimer")
	})

	_, err := c.CreateCheckoutSession(context.Background(), CheckoutRequest{
		Email: "jane@example.com",
		Plan:  "premium",
	})
	require.Error(t, err)
	assert.Equal(t, CategoryValidation, Categorize(err))
}

func TestCreateCheckoutSession(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(CheckoutSession{SessionID: "cs_1", CheckoutURL: "https://pay.example.com/cs_1"})
	})

	sess, err := c.CreateCheckoutSession(context.Background(), CheckoutRequest{
		Email:              "jane@example.com",
		Plan:               "premium",
		DisclaimerAccepted: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_1", sess.SessionID)
	assert.Equal(t, "https://pay.example.com/cs_1", sess.CheckoutURL)
}

func TestVerifyPayment(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "cs_1", r.URL.Query().Get("session_id"))
		json.NewEncoder(w).Encode(PaymentStatus{SessionID: "cs_1", Paid: true, Plan: "premium", AmountCent: 14900})
	})

	status, err := c.VerifyPayment(context.Background(), "cs_1")
	require.NoError(t, err)
	assert.True(t, status.Paid)
	assert.Equal(t, 14900, status.AmountCent)
}

func TestVerifyPayment_EmptySessionID(t *testing.T) {
	c := NewClient("http://unused", nil)
	_, err := c.VerifyPayment(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, CategoryValidation, Categorize(err))
}

func TestIsAdmin(t *testing.T) {
	userID := uuid.New()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/admin/check", r.URL.Path)
		assert.Equal(t, userID.String(), r.URL.Query().Get("user_id"))
		json.NewEncoder(w).Encode(map[string]bool{"is_admin": true})
	})

	ok, err := c.IsAdmin(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGetResume_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.GetResume(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, CategoryNotFound, Categorize(err))
}

func TestGuestEndpoints(t *testing.T) {
	var paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Write([]byte(`{}`))
	})

	ctx := context.Background()
	require.NoError(t, c.GuestInit(ctx, "guest_1", "guest_1@resumeblast.ai"))
	require.NoError(t, c.GuestSaveResume(ctx, "guest_1", "res-1", "https://cdn/x.pdf", "x.pdf"))
	require.NoError(t, c.GuestSavePayment(ctx, "guest_1", "cs_1", "premium"))
	require.NoError(t, c.GuestBlastStart(ctx, "guest_1"))
	require.NoError(t, c.GuestBlastComplete(ctx, "guest_1", "camp-1"))

	assert.Equal(t, []string{
		"/api/guest/init",
		"/api/guest/resume",
		"/api/guest/payment",
		"/api/guest/blast/start",
		"/api/guest/blast/complete",
	}, paths)
}

func TestSubmitSupportTicket_Validation(t *testing.T) {
	c := NewClient("http://unused", nil)

	err := c.SubmitSupportTicket(context.Background(), SupportTicket{
		Name:    "Jane",
		Email:   "jane@example.com",
		Subject: "Help",
		Message: "short",
	})
	require.Error(t, err)
	assert.Equal(t, CategoryValidation, Categorize(err))
}
