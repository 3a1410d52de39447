package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/resumeblast/blastkit/internal/analysis"
	"github.com/resumeblast/blastkit/internal/api"
	"github.com/resumeblast/blastkit/internal/ingest"
	"github.com/resumeblast/blastkit/internal/store"
	"github.com/resumeblast/blastkit/internal/tracking"
)

// ErrSendInFlight is returned when a send is requested while another send is
// already running. The duplicate request performs no backend call.
var ErrSendInFlight = errors.New("a blast is already being sent")

// ErrFreeTierUsed is returned when a free send is requested for an account
// that already has campaign history.
var ErrFreeTierUsed = errors.New("the free trial has already been used on this account")

// ErrStateConsistency marks a resumed workflow whose persisted state cannot
// drive a send: missing or invalid checkpoint, vanished resume record,
// unverifiable payment.
type ErrStateConsistency struct {
	Reason string
}

func (e *ErrStateConsistency) Error() string {
	return fmt.Sprintf("cannot resume workflow: %s", e.Reason)
}

// ErrIllegalTransition marks a programming error in workflow sequencing.
type ErrIllegalTransition struct {
	From State
	To   State
}

func (e *ErrIllegalTransition) Error() string {
	return fmt.Sprintf("illegal workflow transition %s -> %s", e.From, e.To)
}

// Backend is the slice of the REST client the workflow drives. *api.Client
// satisfies it.
type Backend interface {
	SaveResume(ctx context.Context, req api.SaveResumeRequest) (*api.ResumeRecord, error)
	GetResume(ctx context.Context, id string) (*api.ResumeRecord, error)
	SendBlast(ctx context.Context, req api.BlastRequest) (*api.BlastResult, error)
	SendFreemiumBlast(ctx context.Context, req api.FreemiumRequest) (*api.BlastResult, error)
	CountCampaigns(ctx context.Context, userID string) (int, error)
	CreateCheckoutSession(ctx context.Context, req api.CheckoutRequest) (*api.CheckoutSession, error)
	VerifyPayment(ctx context.Context, sessionID string) (*api.PaymentStatus, error)
	FetchRecruiters(ctx context.Context, industry, location string, limit int) ([]api.Recruiter, error)
	GuestSaveResume(ctx context.Context, guestID, resumeID, resumeURL, fileName string) error
	GuestSaveAnalysis(ctx context.Context, guestID string, raw json.RawMessage) error
	GuestSavePayment(ctx context.Context, guestID, sessionID, plan string) error
	GuestBlastStart(ctx context.Context, guestID string) error
	GuestBlastComplete(ctx context.Context, guestID, campaignID string) error
	GetGuest(ctx context.Context, guestID string) (*api.GuestRecord, error)
}

// Analyzer profiles resume text; it degrades rather than fails.
type Analyzer interface {
	Analyze(ctx context.Context, text string) *analysis.Analysis
}

// Redirector hands control to the hosted checkout page. In a browser this is
// a location change; the CLI prints the URL and exits.
type Redirector interface {
	Redirect(url string) error
}

// Identity is the workflow's snapshot of who is blasting. Exactly one of
// UserID or GuestID is set.
type Identity struct {
	UserID  string
	Email   string
	Name    string
	GuestID string
}

// IsGuest reports whether the workflow runs without an account.
func (id Identity) IsGuest() bool {
	return id.UserID == "" && id.GuestID != ""
}

// ResumeData is the upload held in memory between steps.
type ResumeData struct {
	ID       string
	URL      string
	FileName string
	Text     string
}

// Result reports a completed send.
type Result struct {
	CampaignID       string
	RecipientCount   int
	DripScheduled    bool
	SanitizedURL     string
	AlreadyProcessed bool
}

// Tracker is the campaign workflow state machine. All exported methods are
// safe for concurrent use; sends are single-flight.
type Tracker struct {
	mu sync.Mutex

	backend  Backend
	store    store.Store
	analyzer Analyzer
	events   *tracking.Tracker
	redirect Redirector
	plans    []api.Plan

	state    State
	identity Identity
	resume   *ResumeData
	profile  *analysis.Analysis
	plan     api.Plan
	industry string
	location string

	disclaimerAccepted      bool
	guestDisclaimerAccepted bool

	sending   bool
	lastError string
}

// NewTracker wires a workflow for the given identity. plans may be nil, in
// which case the built-in catalog applies.
func NewTracker(backend Backend, s store.Store, analyzer Analyzer, events *tracking.Tracker, redirect Redirector, id Identity, plans []api.Plan) *Tracker {
	if len(plans) == 0 {
		plans = api.DefaultPlans
	}
	if events == nil {
		events = tracking.NewTracker(nil)
	}
	return &Tracker{
		backend:  backend,
		store:    s,
		analyzer: analyzer,
		events:   events,
		redirect: redirect,
		identity: id,
		plans:    plans,
		state:    StateIdle,
	}
}

// State returns the current workflow position.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// LastError returns the message that drove the workflow into StateErrored.
func (t *Tracker) LastError() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastError
}

// Resume returns the in-memory upload, or nil before Upload.
func (t *Tracker) Resume() *ResumeData {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.resume
}

// Profile returns the analysis profile, or nil before Analyze.
func (t *Tracker) Profile() *analysis.Analysis {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.profile
}

func (t *Tracker) transition(to State) error {
	if !CanTransition(t.state, to) {
		err := &ErrIllegalTransition{From: t.state, To: to}
		t.state = StateErrored
		t.lastError = err.Error()
		return err
	}
	log.Printf("[workflow] %s -> %s", t.state, to)
	t.state = to
	return nil
}

func (t *Tracker) fail(err error) error {
	t.state = StateErrored
	t.lastError = err.Error()
	return err
}

// track emits a fire-and-forget event for whichever identity is active.
func (t *Tracker) track(event string, metadata map[string]any) {
	if t.identity.IsGuest() {
		t.events.TrackGuest(event, t.identity.GuestID, metadata)
		return
	}
	t.events.Track(event, t.identity.UserID, metadata)
}

// Upload validates the file, extracts its text and stores the upload with
// the backend. On success the workflow is ready to analyze.
func (t *Tracker) Upload(ctx context.Context, fileName string, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.transition(StateUploading); err != nil {
		return err
	}

	text, err := ingest.ExtractText(fileName, data)
	if err != nil {
		return t.fail(err)
	}

	record, err := t.backend.SaveResume(ctx, api.SaveResumeRequest{
		FileName:      fileName,
		ExtractedText: text,
		UserID:        t.identity.UserID,
		GuestID:       t.identity.GuestID,
	})
	if err != nil {
		return t.fail(fmt.Errorf("failed to store resume: %w", err))
	}

	t.resume = &ResumeData{
		ID:       record.ID,
		URL:      record.FileURL,
		FileName: fileName,
		Text:     text,
	}
	if t.identity.IsGuest() {
		// Best effort: the backend copy lets the redirect return recover
		// the upload when the local checkpoint is lost.
		if err := t.backend.GuestSaveResume(ctx, t.identity.GuestID, record.ID, record.FileURL, fileName); err != nil {
			log.Printf("[workflow] guest resume record failed: %v", err)
		}
	}
	t.track(tracking.EventResumeUpload, map[string]any{"file": fileName, "resume_id": record.ID})

	return t.transition(StateAnalyzing)
}

// Analyze profiles the uploaded text. It cannot fail on backend trouble;
// the analyzer degrades to local extraction.
func (t *Tracker) Analyze(ctx context.Context) (*analysis.Analysis, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateAnalyzing {
		return nil, &ErrIllegalTransition{From: t.state, To: StateConfiguring}
	}

	t.profile = t.analyzer.Analyze(ctx, t.resume.Text)

	if t.identity.IsGuest() {
		if raw, err := t.profile.Raw(); err == nil {
			if err := t.backend.GuestSaveAnalysis(ctx, t.identity.GuestID, raw); err != nil {
				log.Printf("[workflow] guest analysis save failed: %v", err)
			}
		}
	}
	t.track(tracking.EventAnalysisComplete, map[string]any{"ats_score": t.profile.ATSScore})

	if err := t.transition(StateConfiguring); err != nil {
		return nil, err
	}
	return t.profile, nil
}

// Configure records the campaign targeting and plan choice. Plans flagged
// coming-soon are never actionable.
func (t *Tracker) Configure(planKey, industry, location string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateConfiguring {
		return &ErrIllegalTransition{From: t.state, To: StateConfiguring}
	}
	if industry == "" {
		return &api.ErrValidation{Field: "industry", Message: "required"}
	}
	plan, err := api.PlanByKey(t.plans, planKey)
	if err != nil {
		return &api.ErrValidation{Field: "plan", Message: err.Error()}
	}
	if plan.ComingSoon {
		return &api.ErrValidation{Field: "plan", Message: fmt.Sprintf("plan %q is not yet available", planKey)}
	}

	t.plan = plan
	t.industry = industry
	t.location = location
	return nil
}

// AcceptDisclaimer records the general send disclaimer decision.
func (t *Tracker) AcceptDisclaimer(accepted bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.disclaimerAccepted = accepted
}

// AcceptGuestDisclaimer records the guest-specific disclaimer decision.
// Guests must pass both gates.
func (t *Tracker) AcceptGuestDisclaimer(accepted bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.guestDisclaimerAccepted = accepted
}

// CanSend reports whether every send precondition is met.
func (t *Tracker) CanSend() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.canSendLocked()
}

func (t *Tracker) canSendLocked() bool {
	if !t.disclaimerAccepted {
		return false
	}
	if t.identity.IsGuest() && !t.guestDisclaimerAccepted {
		return false
	}
	if t.plan.Key == "" || t.plan.ComingSoon {
		return false
	}
	return true
}

// CheckFreeTier reports free-tier eligibility: registered users with zero
// prior campaigns. The check is read-only; eligibility is consumed by the
// send itself.
func (t *Tracker) CheckFreeTier(ctx context.Context) (bool, error) {
	t.mu.Lock()
	userID := t.identity.UserID
	t.mu.Unlock()

	if userID == "" {
		return false, nil
	}
	count, err := t.backend.CountCampaigns(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check campaign history: %w", err)
	}
	return count == 0, nil
}

// acquireSend takes the single-flight latch or reports a send in progress.
func (t *Tracker) acquireSend() error {
	if t.sending {
		return ErrSendInFlight
	}
	t.sending = true
	return nil
}

func (t *Tracker) releaseSend() {
	t.mu.Lock()
	t.sending = false
	t.mu.Unlock()
}

// SendFreeBlast runs the free-tier campaign for a registered user.
func (t *Tracker) SendFreeBlast(ctx context.Context) (*Result, error) {
	t.mu.Lock()
	if err := t.acquireSend(); err != nil {
		t.mu.Unlock()
		return nil, err
	}
	if t.state != StateConfiguring {
		t.sending = false
		t.mu.Unlock()
		return nil, &ErrIllegalTransition{From: t.state, To: StateSending}
	}
	if !t.disclaimerAccepted {
		t.sending = false
		t.mu.Unlock()
		return nil, &api.ErrValidation{Field: "disclaimer", Message: "disclaimer must be accepted before sending"}
	}
	if t.identity.UserID == "" {
		t.sending = false
		t.mu.Unlock()
		return nil, &api.ErrUnauthorized{Action: "free tier requires a registered account"}
	}
	userID := t.identity.UserID
	t.mu.Unlock()

	// Eligibility is enforced at send time, not just in the read-only
	// CheckFreeTier the UI consults.
	count, err := t.backend.CountCampaigns(ctx, userID)
	if err != nil {
		t.releaseSend()
		return nil, fmt.Errorf("failed to check campaign history: %w", err)
	}
	if count > 0 {
		t.releaseSend()
		return nil, ErrFreeTierUsed
	}

	t.mu.Lock()
	req := api.FreemiumRequest{
		UserID:        t.identity.UserID,
		Email:         t.identity.Email,
		CandidateName: t.candidateNameLocked(),
		ResumeID:      t.resume.ID,
		Industry:      t.industry,
		Location:      t.location,
	}
	if err := t.transition(StateSending); err != nil {
		t.sending = false
		t.mu.Unlock()
		return nil, err
	}
	t.mu.Unlock()
	defer t.releaseSend()

	t.track(tracking.EventBlastInitiated, map[string]any{"plan": "free"})
	result, err := t.backend.SendFreemiumBlast(ctx, req)

	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		t.track(tracking.EventBlastFailed, map[string]any{"error": err.Error()})
		return nil, t.fail(err)
	}
	t.track(tracking.EventBlastCompleted, map[string]any{"campaign_id": result.CampaignID})
	if err := t.transition(StateSuccess); err != nil {
		return nil, err
	}
	return &Result{
		CampaignID:     result.CampaignID,
		RecipientCount: result.RecipientCount,
		DripScheduled:  result.DripScheduled,
	}, nil
}

// StartPaidBlast checkpoints the workflow, opens a checkout session and
// hands control to the payment page. Persist, flush, then redirect; never
// the other way around. A checkout failure keeps the checkpoint so the user
// can retry.
func (t *Tracker) StartPaidBlast(ctx context.Context) error {
	t.mu.Lock()

	if t.state != StateConfiguring {
		t.mu.Unlock()
		return &ErrIllegalTransition{From: t.state, To: StateRedirecting}
	}
	if !t.canSendLocked() {
		t.mu.Unlock()
		return &api.ErrValidation{Field: "disclaimer", Message: "all disclaimers must be accepted before payment"}
	}

	cp := store.BlastCheckpoint{
		Resume: store.CheckpointResume{ID: t.resume.ID, URL: t.resume.URL, FileName: t.resume.FileName},
		Config: store.CheckpointConfig{
			Plan:           t.plan.Key,
			Industry:       t.industry,
			Location:       t.location,
			RecruiterCount: t.plan.RecruiterCount,
		},
	}
	email := t.identity.Email
	if t.identity.IsGuest() {
		cp.Guest = &store.CheckpointGuest{ID: t.identity.GuestID, EmailAlias: t.identity.Email}
	}
	if err := store.SaveCheckpoint(t.store, cp); err != nil {
		t.mu.Unlock()
		return err
	}
	if err := t.store.Flush(); err != nil {
		t.mu.Unlock()
		return fmt.Errorf("refusing to redirect before checkpoint is durable: %w", err)
	}

	req := api.CheckoutRequest{
		Email:              email,
		UserID:             t.identity.UserID,
		GuestID:            t.identity.GuestID,
		Plan:               t.plan.Key,
		DisclaimerAccepted: true,
	}
	if err := t.transition(StateRedirecting); err != nil {
		t.mu.Unlock()
		return err
	}
	t.mu.Unlock()

	t.track(tracking.EventPaymentInitiated, map[string]any{"plan": req.Plan})

	session, err := t.backend.CreateCheckoutSession(ctx, req)
	if err != nil {
		t.track(tracking.EventPaymentFailure, map[string]any{"error": err.Error()})
		t.mu.Lock()
		defer t.mu.Unlock()
		return t.fail(fmt.Errorf("failed to open checkout: %w", err))
	}

	if err := t.redirect.Redirect(session.CheckoutURL); err != nil {
		t.mu.Lock()
		defer t.mu.Unlock()
		return t.fail(fmt.Errorf("failed to open checkout page: %w", err))
	}
	return nil
}

// Reset returns an errored or finished workflow to idle, clearing the
// single-flight latch and the failure message. Accepted disclaimers and the
// identity survive.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = StateIdle
	t.lastError = ""
	t.sending = false
}

// candidateNameLocked applies the contact fallback precedence for the happy
// path (the resume path has its own, richer version).
func (t *Tracker) candidateNameLocked() string {
	if t.profile != nil && t.profile.CandidateName != "" {
		return t.profile.CandidateName
	}
	if t.resume != nil && t.resume.FileName != "" {
		return ingest.DeriveNameFromFilename(t.resume.FileName)
	}
	return t.identity.Name
}
