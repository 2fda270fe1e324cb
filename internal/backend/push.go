package backend

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"

	"contactpilot-engine/internal/store"
)

const pushBatchLimit = 50

// Pusher drains the unsynced queue into the backend. One instance, driven by
// the scheduler; PushOnce is safe to call again before a failed batch has
// been retried because rows are only marked synced after a 2xx.
type Pusher struct {
	Client   *Client
	Contacts store.Contacts
}

// PushOnce uploads up to one batch of unsynced approved contacts. Per-row
// failures are logged and left unsynced; the first returned error is only for
// total failures (no token, backend down).
func (p *Pusher) PushOnce(ctx context.Context) (pushed int, err error) {
	rows, err := p.Contacts.Unsynced(ctx, pushBatchLimit)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	done := make(chan string, len(rows))
	for _, row := range rows {
		row := row
		g.Go(func() error {
			if err := p.Client.Upsert(ctx, row); err != nil {
				log.Printf("[backend] %v", err)
				return nil
			}
			done <- row.Email
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	close(done)

	for email := range done {
		if err := p.Contacts.MarkSynced(ctx, email); err != nil {
			log.Printf("[backend] mark synced %s: %v", email, err)
			continue
		}
		pushed++
	}
	if pushed > 0 {
		log.Printf("[backend] pushed %d contact(s)", pushed)
	}
	return pushed, nil
}

// QueueDepth reports how many approved contacts are waiting for a push.
func (p *Pusher) QueueDepth(ctx context.Context) (int, error) {
	rows, err := p.Contacts.Unsynced(ctx, 0)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}
