package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/resumeblast/blastkit/internal/analysis"
	"github.com/resumeblast/blastkit/internal/api"
	"github.com/resumeblast/blastkit/internal/identity"
	"github.com/resumeblast/blastkit/internal/ingest"
	"github.com/resumeblast/blastkit/internal/store"
	"github.com/resumeblast/blastkit/internal/tracking"
)

const keyProcessedSession = "processed_checkout_session"

// ResumeAfterRedirect reconstructs an interrupted paid workflow from the
// return URL and the persisted checkpoint, verifies the payment, and
// proceeds directly to the send with no further input. It is idempotent per
// checkout session id.
func (t *Tracker) ResumeAfterRedirect(ctx context.Context, returnURL string) (*Result, error) {
	params := identity.ParseStartParams(returnURL)
	sanitized := sanitizeReturnURL(returnURL)

	if !params.PaymentSuccess || params.CheckoutSessionID == "" {
		return nil, &ErrStateConsistency{Reason: "return URL carries no successful payment"}
	}

	t.mu.Lock()
	if done, ok, _ := t.store.Get(keyProcessedSession); ok && done == params.CheckoutSessionID {
		t.mu.Unlock()
		return &Result{AlreadyProcessed: true, SanitizedURL: sanitized}, nil
	}
	if err := t.acquireSend(); err != nil {
		t.mu.Unlock()
		return nil, err
	}
	if err := t.transition(StateResuming); err != nil {
		t.sending = false
		t.mu.Unlock()
		return nil, err
	}
	t.mu.Unlock()
	defer t.releaseSend()

	result, err := t.runResume(ctx, params, sanitized)
	if err != nil {
		t.mu.Lock()
		t.fail(err)
		t.mu.Unlock()
		return nil, err
	}
	return result, nil
}

func (t *Tracker) runResume(ctx context.Context, params identity.StartParams, sanitized string) (*Result, error) {
	// The checkpoint is read before identity resolution: it may be the only
	// surviving record of which guest paid.
	cp, cpFound, err := store.LoadCheckpoint(t.store)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}

	// Re-anchor the identity: an explicit guest id on the URL wins, then the
	// checkpoint's recorded guest, then the backend's record for the URL id.
	t.mu.Lock()
	if t.identity.UserID == "" && params.GuestID != "" && identity.ValidGuestID(params.GuestID) {
		t.identity.GuestID = params.GuestID
		if t.identity.Email == "" {
			t.identity.Email = identity.EmailAlias(params.GuestID)
		}
	}
	id := t.identity
	t.mu.Unlock()

	if unresolvedGuest(id) && cpFound && cp.Guest != nil && identity.ValidGuestID(cp.Guest.ID) {
		t.mu.Lock()
		t.identity.GuestID = cp.Guest.ID
		if cp.Guest.EmailAlias != "" {
			t.identity.Email = cp.Guest.EmailAlias
		} else {
			t.identity.Email = identity.EmailAlias(cp.Guest.ID)
		}
		id = t.identity
		t.mu.Unlock()
	}

	if unresolvedGuest(id) {
		// Last resort: the backend may know this checkout's guest.
		if params.GuestID != "" {
			if record, err := t.backend.GetGuest(ctx, params.GuestID); err == nil && record != nil {
				t.mu.Lock()
				t.identity.GuestID = record.GuestID
				t.identity.Email = record.Email
				id = t.identity
				t.mu.Unlock()
			}
		}
	}
	if unresolvedGuest(id) {
		return nil, t.abandonResume("no identity could be established for this payment")
	}

	payment, err := t.backend.VerifyPayment(ctx, params.CheckoutSessionID)
	if err != nil {
		return nil, &ErrStateConsistency{Reason: fmt.Sprintf("payment could not be verified: %v", err)}
	}
	if !payment.Paid {
		return nil, &ErrStateConsistency{Reason: "checkout session is not paid"}
	}

	if !cpFound {
		return nil, t.abandonResume("no workflow checkpoint survived the redirect")
	}

	record, err := t.backend.GetResume(ctx, cp.Resume.ID)
	if err != nil {
		return nil, t.abandonResume(fmt.Sprintf("stored resume %s is gone: %v", cp.Resume.ID, err))
	}

	plan := cp.Config.Plan
	if plan == "" {
		plan = payment.Plan
	}
	planInfo, err := api.PlanByKey(t.plans, plan)
	if err != nil {
		return nil, t.abandonResume(fmt.Sprintf("checkpoint references %v", err))
	}
	recruiterCount := cp.Config.RecruiterCount
	if recruiterCount == 0 {
		recruiterCount = planInfo.RecruiterCount
	}

	if id.IsGuest() {
		if err := t.backend.GuestSavePayment(ctx, id.GuestID, params.CheckoutSessionID, plan); err != nil {
			log.Printf("[workflow] guest payment record failed: %v", err)
		}
	}
	t.track(tracking.EventPaymentSuccess, map[string]any{"session_id": params.CheckoutSessionID, "plan": plan})

	contactName, contactEmail := resolveContact(record, id)

	recruiters, err := t.backend.FetchRecruiters(ctx, cp.Config.Industry, cp.Config.Location, recruiterCount)
	if err != nil {
		return nil, fmt.Errorf("failed to load recruiters for %s: %w", cp.Config.Industry, err)
	}
	if len(recruiters) > 0 && len(recruiters) < recruiterCount {
		recruiterCount = len(recruiters)
	}

	t.mu.Lock()
	t.resume = &ResumeData{ID: record.ID, URL: record.FileURL, FileName: record.FileName, Text: record.ExtractedText}
	t.plan = planInfo
	t.industry = cp.Config.Industry
	t.location = cp.Config.Location
	if err := t.transition(StateSending); err != nil {
		t.mu.Unlock()
		return nil, err
	}
	t.mu.Unlock()

	if id.IsGuest() {
		if err := t.backend.GuestBlastStart(ctx, id.GuestID); err != nil {
			log.Printf("[workflow] guest blast start record failed: %v", err)
		}
	}
	t.track(tracking.EventBlastInitiated, map[string]any{"plan": plan, "resumed": true})

	blast, err := t.backend.SendBlast(ctx, api.BlastRequest{
		UserID:         id.UserID,
		GuestID:        id.GuestID,
		Email:          contactEmail,
		CandidateName:  contactName,
		ResumeID:       record.ID,
		ResumeURL:      record.FileURL,
		Plan:           plan,
		Industry:       cp.Config.Industry,
		Location:       cp.Config.Location,
		RecruiterCount: recruiterCount,
		SessionID:      params.CheckoutSessionID,
	})
	if err != nil {
		t.track(tracking.EventBlastFailed, map[string]any{"error": err.Error()})
		return nil, fmt.Errorf("blast send failed after payment: %w", err)
	}

	if id.IsGuest() {
		if err := t.backend.GuestBlastComplete(ctx, id.GuestID, blast.CampaignID); err != nil {
			log.Printf("[workflow] guest blast completion record failed: %v", err)
		}
	}
	t.track(tracking.EventBlastCompleted, map[string]any{"campaign_id": blast.CampaignID})

	t.mu.Lock()
	defer t.mu.Unlock()
	if err := store.ClearCheckpoint(t.store); err != nil {
		log.Printf("[workflow] checkpoint clear failed: %v", err)
	}
	if err := t.store.Set(keyProcessedSession, params.CheckoutSessionID); err != nil {
		log.Printf("[workflow] processed-session record failed: %v", err)
	}
	if err := t.store.Flush(); err != nil {
		log.Printf("[workflow] state flush failed: %v", err)
	}
	if err := t.transition(StateSuccess); err != nil {
		return nil, err
	}

	return &Result{
		CampaignID:     blast.CampaignID,
		RecipientCount: blast.RecipientCount,
		DripScheduled:  blast.DripScheduled,
		SanitizedURL:   sanitized,
	}, nil
}

// unresolvedGuest reports an identity that cannot own a campaign: no account
// and no concrete guest id.
func unresolvedGuest(id Identity) bool {
	return id.UserID == "" && (id.GuestID == "" || id.GuestID == identity.PendingGuestID)
}

// abandonResume clears the unusable breadcrumbs and reports the state
// inconsistency. The caller surfaces it as an alert and a sanitized URL.
func (t *Tracker) abandonResume(reason string) error {
	if err := store.ClearCheckpoint(t.store); err != nil {
		log.Printf("[workflow] checkpoint clear failed: %v", err)
	}
	if err := t.store.Flush(); err != nil {
		log.Printf("[workflow] state flush failed: %v", err)
	}
	return &ErrStateConsistency{Reason: reason}
}

// resolveContact applies the contact fallback precedence: analysis fields,
// then the stored record's columns, then a filename-derived guess, then the
// identity the user signed in (or was minted) with.
func resolveContact(record *api.ResumeRecord, id Identity) (name, email string) {
	var profile analysis.Analysis
	if len(record.AnalysisData) > 0 {
		if err := json.Unmarshal(record.AnalysisData, &profile); err != nil {
			log.Printf("[workflow] stored analysis undecodable: %v", err)
		}
	}

	name = firstUsable(
		profile.CandidateName,
		record.CandidateName,
		ingest.DeriveNameFromFilename(record.FileName),
		id.Name,
	)
	email = firstUsable(
		profile.CandidateEmail,
		record.CandidateMail,
		id.Email,
	)
	return name, email
}

func firstUsable(candidates ...string) string {
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c != "" && !strings.EqualFold(c, "not found") {
			return c
		}
	}
	return ""
}

// sanitizeReturnURL strips the payment parameters so a refresh of the
// resulting URL cannot replay the workflow.
func sanitizeReturnURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	q.Del("payment")
	q.Del("session_id")
	q.Del("guest_id")
	u.RawQuery = q.Encode()
	return u.String()
}
