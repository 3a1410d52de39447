package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/resumeblast/blastkit/internal/api"
	"github.com/resumeblast/blastkit/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedCheckpoint runs a paid workflow to the redirect so the store holds a
// real checkpoint, then returns a fresh tracker simulating the new process
// after the payment page.
func seedCheckpoint(t *testing.T, backend *fakeBackend, s *store.MemStore, id Identity, plan string) *Tracker {
	t.Helper()
	first := NewTracker(backend, s, localAnalyzer{}, nil, &fakeRedirector{}, id, nil)
	advanceToConfiguring(t, first)
	require.NoError(t, first.Configure(plan, "technology", "remote"))
	first.AcceptDisclaimer(true)
	first.AcceptGuestDisclaimer(true)
	require.NoError(t, first.StartPaidBlast(context.Background()))

	return NewTracker(backend, s, localAnalyzer{}, nil, &fakeRedirector{}, id, nil)
}

const registeredReturnURL = "https://app.resumeblast.ai/?payment=success&session_id=cs_1"

func TestResumeAfterRedirect_RegisteredUser(t *testing.T) {
	backend := newFakeBackend()
	s := store.NewMemStore()
	tr := seedCheckpoint(t, backend, s, registeredIdentity(), "premium")

	result, err := tr.ResumeAfterRedirect(context.Background(), registeredReturnURL)
	require.NoError(t, err)

	assert.Equal(t, "camp-1", result.CampaignID)
	assert.True(t, result.DripScheduled)
	assert.Equal(t, StateSuccess, tr.State())
	assert.Equal(t, "https://app.resumeblast.ai/", result.SanitizedURL)
	assert.Equal(t, 1, backend.sendCalls)

	_, ok, _ := store.LoadCheckpoint(s)
	assert.False(t, ok, "checkpoint cleared after successful send")
}

func TestResumeAfterRedirect_Guest(t *testing.T) {
	backend := newFakeBackend()
	s := store.NewMemStore()
	tr := seedCheckpoint(t, backend, s, guestIdentity(), "starter")

	url := registeredReturnURL + "&guest_id=guest_1756700000000"
	result, err := tr.ResumeAfterRedirect(context.Background(), url)
	require.NoError(t, err)

	assert.Equal(t, "camp-1", result.CampaignID)
	assert.Contains(t, backend.guestEvents, "payment")
	assert.Contains(t, backend.guestEvents, "start")
	assert.Contains(t, backend.guestEvents, "complete")
}

func TestResumeAfterRedirect_Idempotent(t *testing.T) {
	backend := newFakeBackend()
	s := store.NewMemStore()
	tr := seedCheckpoint(t, backend, s, registeredIdentity(), "premium")

	_, err := tr.ResumeAfterRedirect(context.Background(), registeredReturnURL)
	require.NoError(t, err)

	tr.Reset()
	second, err := tr.ResumeAfterRedirect(context.Background(), registeredReturnURL)
	require.NoError(t, err)
	assert.True(t, second.AlreadyProcessed)
	assert.Equal(t, 1, backend.sendCalls, "a replayed return URL must not send twice")
}

func TestResumeAfterRedirect_MissingCheckpoint(t *testing.T) {
	backend := newFakeBackend()
	s := store.NewMemStore()
	tr := NewTracker(backend, s, localAnalyzer{}, nil, &fakeRedirector{}, registeredIdentity(), nil)

	_, err := tr.ResumeAfterRedirect(context.Background(), registeredReturnURL)
	require.Error(t, err)

	var sc *ErrStateConsistency
	require.True(t, errors.As(err, &sc))
	assert.Contains(t, sc.Reason, "checkpoint")
	assert.Equal(t, 0, backend.sendCalls, "no send without a checkpoint")
	assert.Equal(t, StateErrored, tr.State())
}

func TestResumeAfterRedirect_CorruptCheckpointTreatedAsMissing(t *testing.T) {
	backend := newFakeBackend()
	s := store.NewMemStore()
	require.NoError(t, s.Set(store.KeyCheckpoint, `{"config": {}}`))
	tr := NewTracker(backend, s, localAnalyzer{}, nil, &fakeRedirector{}, registeredIdentity(), nil)

	_, err := tr.ResumeAfterRedirect(context.Background(), registeredReturnURL)
	require.Error(t, err)

	var sc *ErrStateConsistency
	assert.True(t, errors.As(err, &sc))
	assert.Equal(t, 0, backend.sendCalls)
	assert.False(t, store.HasPendingBreadcrumbs(s), "unusable breadcrumbs are cleared")
}

func TestResumeAfterRedirect_UnpaidSessionRejected(t *testing.T) {
	backend := newFakeBackend()
	backend.paid = false
	s := store.NewMemStore()
	tr := seedCheckpoint(t, backend, s, registeredIdentity(), "premium")

	_, err := tr.ResumeAfterRedirect(context.Background(), registeredReturnURL)
	require.Error(t, err)

	var sc *ErrStateConsistency
	require.True(t, errors.As(err, &sc))
	assert.Contains(t, sc.Reason, "not paid")
	assert.Equal(t, 0, backend.sendCalls)
}

func TestResumeAfterRedirect_ResumeRecordGone(t *testing.T) {
	backend := newFakeBackend()
	s := store.NewMemStore()
	tr := seedCheckpoint(t, backend, s, registeredIdentity(), "premium")
	backend.resumes = map[string]*api.ResumeRecord{}

	_, err := tr.ResumeAfterRedirect(context.Background(), registeredReturnURL)
	require.Error(t, err)

	var sc *ErrStateConsistency
	require.True(t, errors.As(err, &sc))
	assert.Equal(t, 0, backend.sendCalls)
}

func TestResumeAfterRedirect_NoPaymentParams(t *testing.T) {
	tr := NewTracker(newFakeBackend(), store.NewMemStore(), localAnalyzer{}, nil, &fakeRedirector{}, registeredIdentity(), nil)

	_, err := tr.ResumeAfterRedirect(context.Background(), "https://app.resumeblast.ai/")
	require.Error(t, err)
	assert.Equal(t, StateIdle, tr.State(), "a non-payment URL never starts a resume")
}

func TestResumeAfterRedirect_NoIdentity(t *testing.T) {
	backend := newFakeBackend()
	s := store.NewMemStore()
	// Checkpoint exists but tracker has no identity and the URL has no guest id
	seedCheckpoint(t, backend, s, registeredIdentity(), "premium")
	tr := NewTracker(backend, s, localAnalyzer{}, nil, &fakeRedirector{}, Identity{}, nil)

	_, err := tr.ResumeAfterRedirect(context.Background(), registeredReturnURL)
	require.Error(t, err)

	var sc *ErrStateConsistency
	require.True(t, errors.As(err, &sc))
	assert.Contains(t, sc.Reason, "identity")
	assert.Equal(t, 0, backend.sendCalls)
}

func TestResumeAfterRedirect_PendingGuestRecoveredFromBackend(t *testing.T) {
	backend := newFakeBackend()
	backend.guest = &api.GuestRecord{GuestID: "guest_1756700000000", Email: "guest_1756700000000@resumeblast.ai"}
	s := store.NewMemStore()
	seedCheckpoint(t, backend, s, guestIdentity(), "starter")
	tr := NewTracker(backend, s, localAnalyzer{}, nil, &fakeRedirector{}, Identity{GuestID: "pending_guest"}, nil)

	url := registeredReturnURL + "&guest_id=guest_1756700000000"
	result, err := tr.ResumeAfterRedirect(context.Background(), url)
	require.NoError(t, err)
	assert.Equal(t, "camp-1", result.CampaignID)
}

func TestResumeAfterRedirect_GuestRecoveredFromCheckpoint(t *testing.T) {
	backend := newFakeBackend()
	s := store.NewMemStore()
	seedCheckpoint(t, backend, s, guestIdentity(), "starter")

	// New process, pending sentinel identity, and a return URL with no
	// guest_id: the checkpoint's recorded guest is the only anchor left.
	tr := NewTracker(backend, s, localAnalyzer{}, nil, &fakeRedirector{}, Identity{GuestID: "pending_guest"}, nil)

	result, err := tr.ResumeAfterRedirect(context.Background(), registeredReturnURL)
	require.NoError(t, err)
	assert.Equal(t, "camp-1", result.CampaignID)
	assert.Equal(t, 1, backend.sendCalls)
	assert.Contains(t, backend.guestEvents, "payment")
}

func TestResumeAfterRedirect_SingleFlight(t *testing.T) {
	backend := newFakeBackend()
	backend.blastDelay = 150 * time.Millisecond
	s := store.NewMemStore()
	tr := seedCheckpoint(t, backend, s, registeredIdentity(), "premium")

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = tr.ResumeAfterRedirect(context.Background(), registeredReturnURL)
		}(i)
	}
	wg.Wait()

	var inFlight, succeeded int
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrSendInFlight):
			inFlight++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one submit wins")
	assert.Equal(t, 1, inFlight, "the loser is rejected without a backend call")
	assert.Equal(t, 1, backend.sendCalls)
}

func TestResolveContact_Precedence(t *testing.T) {
	analysisJSON, _ := json.Marshal(map[string]string{
		"candidate_name":  "Analysis Name",
		"candidate_email": "analysis@example.com",
	})

	tests := []struct {
		name      string
		record    *api.ResumeRecord
		id        Identity
		wantName  string
		wantEmail string
	}{
		{
			name: "analysis wins",
			record: &api.ResumeRecord{
				FileName:      "stored_name.pdf",
				AnalysisData:  analysisJSON,
				CandidateName: "Column Name",
				CandidateMail: "column@example.com",
			},
			id:        Identity{Name: "Login Name", Email: "login@example.com"},
			wantName:  "Analysis Name",
			wantEmail: "analysis@example.com",
		},
		{
			name: "stored column when analysis empty",
			record: &api.ResumeRecord{
				FileName:      "stored_name.pdf",
				CandidateName: "Column Name",
				CandidateMail: "column@example.com",
			},
			id:        Identity{Name: "Login Name", Email: "login@example.com"},
			wantName:  "Column Name",
			wantEmail: "column@example.com",
		},
		{
			name:      "filename heuristic then login email",
			record:    &api.ResumeRecord{FileName: "mary_jones.pdf"},
			id:        Identity{Name: "Login Name", Email: "login@example.com"},
			wantName:  "mary jones",
			wantEmail: "login@example.com",
		},
		{
			name:      "not-found markers skipped",
			record:    &api.ResumeRecord{FileName: "", CandidateName: "Not Found"},
			id:        Identity{Name: "Login Name", Email: "login@example.com"},
			wantName:  "Login Name",
			wantEmail: "login@example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, email := resolveContact(tt.record, tt.id)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantEmail, email)
		})
	}
}

func TestSanitizeReturnURL(t *testing.T) {
	sanitized := sanitizeReturnURL("https://app.resumeblast.ai/app?payment=success&session_id=cs_1&guest_id=guest_1&tab=status")
	assert.Equal(t, "https://app.resumeblast.ai/app?tab=status", sanitized)
}
