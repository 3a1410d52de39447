// Package tracking posts best-effort activity events. Every call returns
// immediately; delivery happens on a background goroutine and failures are
// logged, never surfaced. The main workflow must not slow down or break
// because the tracking channel is unhealthy.
package tracking

import (
	"context"
	"log"
	"sync"
	"time"
)

// Event names recorded by the workflow.
const (
	EventLogin            = "login"
	EventSignup           = "signup"
	EventResumeUpload     = "resume_upload"
	EventAnalysisComplete = "analysis_complete"
	EventPaymentInitiated = "payment_initiated"
	EventPaymentSuccess   = "payment_success"
	EventPaymentFailure   = "payment_failure"
	EventBlastInitiated   = "blast_initiated"
	EventBlastCompleted   = "blast_completed"
	EventBlastFailed      = "blast_failed"
)

// Poster is the slice of the backend client event delivery needs.
type Poster interface {
	Post(ctx context.Context, path string, body, out any) error
}

type activityEvent struct {
	Event    string         `json:"event"`
	UserID   string         `json:"user_id,omitempty"`
	GuestID  string         `json:"guest_id,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
	At       time.Time      `json:"at"`
}

// Tracker delivers activity events in the background.
type Tracker struct {
	backend Poster
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewTracker wires the backend client. A nil backend turns the tracker into
// a no-op, which tests and offline runs rely on.
func NewTracker(backend Poster) *Tracker {
	return &Tracker{backend: backend, timeout: 10 * time.Second}
}

// Track records an event for a registered user. It never blocks and never
// fails.
func (t *Tracker) Track(event, userID string, metadata map[string]any) {
	t.dispatch(activityEvent{Event: event, UserID: userID, Metadata: metadata, At: time.Now().UTC()})
}

// TrackGuest records an event for a guest workflow.
func (t *Tracker) TrackGuest(event, guestID string, metadata map[string]any) {
	t.dispatch(activityEvent{Event: event, GuestID: guestID, Metadata: metadata, At: time.Now().UTC()})
}

func (t *Tracker) dispatch(ev activityEvent) {
	if t.backend == nil {
		return
	}
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
		defer cancel()
		if err := t.backend.Post(ctx, "/api/track", ev, nil); err != nil {
			log.Printf("[tracking] event %s dropped: %v", ev.Event, err)
		}
	}()
}

// Flush waits for in-flight deliveries; used by tests and at shutdown.
func (t *Tracker) Flush() {
	t.wg.Wait()
}
