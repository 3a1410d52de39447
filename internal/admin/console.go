package admin

import (
	"context"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Snapshot is one console refresh: every panel that loaded, plus the errors
// of the panels that did not. A broken panel never blocks the others.
type Snapshot struct {
	Stats          *Stats
	Revenue        *Revenue
	Health         *Health
	MailStats      *MailStats
	RecruiterStats *RecruiterStats
	UnreadTickets  int

	mu          sync.Mutex
	PanelErrors map[string]error
}

func (s *Snapshot) setError(panel string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.PanelErrors == nil {
		s.PanelErrors = make(map[string]error)
	}
	s.PanelErrors[panel] = err
}

// Console drives the admin screens over the admin client.
type Console struct {
	client *Client
}

// NewConsole wraps the admin client.
func NewConsole(client *Client) *Console {
	return &Console{client: client}
}

// Client exposes the underlying admin client for the management actions
// (user delete, plan update, ticket triage).
func (c *Console) Client() *Client {
	return c.client
}

// RefreshAll loads the independent panels concurrently. Panel failures are
// collected per panel; the refresh itself only fails on a cancelled context.
func (c *Console) RefreshAll(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		stats, err := c.client.Stats(ctx)
		if err != nil {
			snap.setError("stats", err)
			return nil
		}
		snap.Stats = stats
		return nil
	})
	g.Go(func() error {
		revenue, err := c.client.Revenue(ctx)
		if err != nil {
			snap.setError("revenue", err)
			return nil
		}
		snap.Revenue = revenue
		return nil
	})
	g.Go(func() error {
		health, err := c.client.Health(ctx)
		if err != nil {
			snap.setError("health", err)
			return nil
		}
		snap.Health = health
		return nil
	})
	g.Go(func() error {
		mail, err := c.client.MailStats(ctx)
		if err != nil {
			snap.setError("mail", err)
			return nil
		}
		snap.MailStats = mail
		return nil
	})
	g.Go(func() error {
		recruiters, err := c.client.RecruiterStats(ctx)
		if err != nil {
			snap.setError("recruiters", err)
			return nil
		}
		snap.RecruiterStats = recruiters
		return nil
	})
	g.Go(func() error {
		unread, err := c.client.UnreadTicketCount(ctx)
		if err != nil {
			snap.setError("tickets", err)
			return nil
		}
		snap.UnreadTickets = unread
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for panel, err := range snap.PanelErrors {
		log.Printf("[admin] panel %s failed: %v", panel, err)
	}
	return snap, nil
}
