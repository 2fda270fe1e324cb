package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"contactpilot-engine/internal/domain"
)

// Rejected is the durable set of explicitly dismissed addresses. Adds are
// idempotent; the set is consulted before any candidate is re-presented.
type Rejected struct {
	DB *sql.DB
}

func (s Rejected) Add(ctx context.Context, email string) error {
	_, err := s.DB.ExecContext(ctx, `
INSERT OR IGNORE INTO rejected_emails (email, rejected_at)
VALUES (?, ?);`,
		domain.NormalizeEmail(email),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("add rejected email: %w", err)
	}
	return nil
}

func (s Rejected) Contains(ctx context.Context, email string) (bool, error) {
	var one int
	err := s.DB.QueryRowContext(ctx,
		`SELECT 1 FROM rejected_emails WHERE email = ? LIMIT 1;`,
		domain.NormalizeEmail(email),
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check rejected email: %w", err)
	}
	return true, nil
}

// Remove clears a rejection; only an explicit re-approval path calls this.
func (s Rejected) Remove(ctx context.Context, email string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM rejected_emails WHERE email = ?;`,
		domain.NormalizeEmail(email))
	if err != nil {
		return fmt.Errorf("remove rejected email: %w", err)
	}
	return nil
}
