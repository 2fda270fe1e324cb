package ingest

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/emersion/go-imap/v2"

	"contactpilot-engine/internal/config"
	"contactpilot-engine/internal/extract"
	"contactpilot-engine/internal/review"
	"contactpilot-engine/internal/secrets"
)

// RunOnce performs one poll cycle: connect, fetch unprocessed messages, run
// each through the capture pipeline, flag what was handled, disconnect. A
// connection per cycle keeps the engine free of long-lived IMAP session
// state.
func RunOnce(ctx context.Context, cfg config.Config, eng *review.Engine) error {
	if !cfg.Ingest.Enabled {
		return nil
	}

	password, err := secrets.GetIMAPPassword(secrets.IMAPKeyringAccount(cfg))
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", cfg.Ingest.IMAPHost, cfg.Ingest.IMAPPort)
	c, err := dialAndLogin(ctx, addr, cfg.Ingest.Username, password)
	if err != nil {
		return err
	}
	defer logoutAndClose(c)

	if err := selectMailbox(c, cfg.Ingest.Mailbox); err != nil {
		return err
	}

	msgs, err := fetchUnprocessed(ctx, c, 25)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}
	log.Printf("[ingest] %d new message(s)", len(msgs))

	handled := make([]imap.UID, 0, len(msgs))
	for _, m := range msgs {
		if ctx.Err() != nil {
			break
		}

		text, isHTML := parseBody(m.Raw)
		if isHTML {
			flat, err := extract.HTMLToLines(text)
			if err != nil {
				log.Printf("[ingest] flatten html uid=%d: %v", m.UID, err)
			} else {
				text = flat
			}
		}

		captureCtx := "imap:" + decodeRFC2047(m.Subject)
		if _, err := eng.ProcessText(ctx, text, m.From, captureCtx); err != nil {
			log.Printf("[ingest] process uid=%d: %v", m.UID, err)
			continue
		}
		handled = append(handled, m.UID)
	}

	if err := markProcessed(c, handled); err != nil {
		return err
	}
	return nil
}

// Loop runs poll cycles until ctx is cancelled. Errors are logged and the
// next tick retries; a broken mailbox must never take the engine down.
func Loop(ctx context.Context, cfgFn func() config.Config, eng *review.Engine) {
	for {
		cfg := cfgFn()
		interval := time.Duration(cfg.Ingest.PollSeconds) * time.Second
		if interval <= 0 {
			interval = 120 * time.Second
		}

		if cfg.Ingest.Enabled {
			if err := RunOnce(ctx, cfg, eng); err != nil {
				log.Printf("[ingest] poll: %v", err)
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
	}
}
