package admin

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Poller refreshes the unread-ticket badge on a fixed interval while the
// console is open.
type Poller struct {
	cron     *cron.Cron
	client   *Client
	interval time.Duration
	onCount  func(int)
}

// NewPoller builds a poller that calls onCount with each fresh unread count.
func NewPoller(client *Client, interval time.Duration, onCount func(int)) *Poller {
	return &Poller{
		cron:     cron.New(),
		client:   client,
		interval: interval,
		onCount:  onCount,
	}
}

// Start schedules the poll and fires one immediate refresh so the badge is
// never stale while the first interval elapses.
func (p *Poller) Start() error {
	spec := fmt.Sprintf("@every %s", p.interval)
	if _, err := p.cron.AddFunc(spec, p.poll); err != nil {
		return fmt.Errorf("failed to schedule ticket poll: %w", err)
	}
	p.cron.Start()
	log.Printf("[admin] ticket poll scheduled %s", spec)
	go p.poll()
	return nil
}

// Stop halts the schedule and waits for a running poll to finish.
func (p *Poller) Stop() {
	ctx := p.cron.Stop()
	<-ctx.Done()
	log.Printf("[admin] ticket poll stopped")
}

func (p *Poller) poll() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := p.client.UnreadTicketCount(ctx)
	if err != nil {
		log.Printf("[admin] unread ticket poll failed: %v", err)
		return
	}
	if p.onCount != nil {
		p.onCount(count)
	}
}
