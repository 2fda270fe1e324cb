package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"contactpilot-engine/internal/domain"
)

// Contacts is the sqlite-backed contact store: get/create/update keyed by
// lowercase email.
type Contacts struct {
	DB *sql.DB
}

const contactCols = `email, first_name, last_name, company, job_title, phone, linkedin_url,
source_text, status, first_contact_at, last_contact_at, times_contacted,
follow_up_at, synced, created_at, updated_at`

// Get returns nil, nil when no contact exists for email.
func (s Contacts) Get(ctx context.Context, email string) (*domain.Contact, error) {
	row := s.DB.QueryRowContext(ctx, `
SELECT `+contactCols+`
FROM contacts
WHERE email = ?;`, domain.NormalizeEmail(email))

	c, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get contact: %w", err)
	}
	return c, nil
}

func (s Contacts) Create(ctx context.Context, c *domain.Contact) error {
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO contacts (`+contactCols+`)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?);`,
		c.Email, c.FirstName, c.LastName, c.Company, c.JobTitle, c.Phone,
		c.LinkedInURL, c.SourceText, string(c.Status),
		c.FirstContactAt.UTC().Format(time.RFC3339),
		c.LastContactAt.UTC().Format(time.RFC3339),
		c.TimesContacted, nullableTime(c.FollowUpAt), boolInt(c.Synced),
		c.CreatedAt.UTC().Format(time.RFC3339),
		c.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("create contact: %w", err)
	}
	return nil
}

func (s Contacts) Update(ctx context.Context, c *domain.Contact) error {
	res, err := s.DB.ExecContext(ctx, `
UPDATE contacts SET
  first_name = ?, last_name = ?, company = ?, job_title = ?, phone = ?,
  linkedin_url = ?, source_text = ?, status = ?, first_contact_at = ?,
  last_contact_at = ?, times_contacted = ?, follow_up_at = ?, synced = ?,
  updated_at = ?
WHERE email = ?;`,
		c.FirstName, c.LastName, c.Company, c.JobTitle, c.Phone,
		c.LinkedInURL, c.SourceText, string(c.Status),
		c.FirstContactAt.UTC().Format(time.RFC3339),
		c.LastContactAt.UTC().Format(time.RFC3339),
		c.TimesContacted, nullableTime(c.FollowUpAt), boolInt(c.Synced),
		c.UpdatedAt.UTC().Format(time.RFC3339),
		c.Email,
	)
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("update contact: no row for %s", c.Email)
	}
	return nil
}

func (s Contacts) Delete(ctx context.Context, email string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM contacts WHERE email = ?;`,
		domain.NormalizeEmail(email))
	return err
}

type ListOpts struct {
	Status string // pending | approved | all
	Limit  int
}

func (s Contacts) List(ctx context.Context, opts ListOpts) ([]domain.Contact, error) {
	if opts.Limit <= 0 {
		opts.Limit = 500
	}

	where := ""
	args := []any{}
	switch opts.Status {
	case "", "all":
	case string(domain.StatusPending), string(domain.StatusApproved):
		where = "WHERE status = ?"
		args = append(args, opts.Status)
	default:
		where = "WHERE status = ?"
		args = append(args, opts.Status)
	}
	args = append(args, opts.Limit)

	rows, err := s.DB.QueryContext(ctx, `
SELECT `+contactCols+`
FROM contacts
`+where+`
ORDER BY last_contact_at DESC
LIMIT ?;`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// Promote flips a pending contact to approved and marks it dirty for the next
// backend push. Promoting an already-approved contact is a no-op success.
func (s Contacts) Promote(ctx context.Context, email string, now time.Time) error {
	res, err := s.DB.ExecContext(ctx, `
UPDATE contacts
SET status = ?, synced = 0, updated_at = ?
WHERE email = ? AND status != ?;`,
		string(domain.StatusApproved),
		now.UTC().Format(time.RFC3339),
		domain.NormalizeEmail(email),
		string(domain.StatusApproved),
	)
	if err != nil {
		return fmt.Errorf("promote contact: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		// zero rows is either an already-approved contact or a missing one
		var one int
		err := s.DB.QueryRowContext(ctx, `SELECT 1 FROM contacts WHERE email = ?;`,
			domain.NormalizeEmail(email)).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("promote contact: no row for %s", email)
		}
		return err
	}
	return nil
}

// Unsynced returns approved contacts the backend has not seen yet.
func (s Contacts) Unsynced(ctx context.Context, limit int) ([]domain.Contact, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.DB.QueryContext(ctx, `
SELECT `+contactCols+`
FROM contacts
WHERE synced = 0 AND status = ?
ORDER BY updated_at ASC
LIMIT ?;`, string(domain.StatusApproved), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s Contacts) MarkSynced(ctx context.Context, email string) error {
	_, err := s.DB.ExecContext(ctx, `UPDATE contacts SET synced = 1 WHERE email = ?;`,
		domain.NormalizeEmail(email))
	return err
}

func (s Contacts) SetFollowUp(ctx context.Context, email string, at *time.Time) error {
	_, err := s.DB.ExecContext(ctx, `UPDATE contacts SET follow_up_at = ? WHERE email = ?;`,
		nullableTime(at), domain.NormalizeEmail(email))
	return err
}

// ---------------- scanning ----------------

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(r rowScanner) (*domain.Contact, error) {
	var c domain.Contact
	var status, firstAt, lastAt, createdAt, updatedAt string
	var followUp sql.NullString
	var synced int

	if err := r.Scan(
		&c.Email, &c.FirstName, &c.LastName, &c.Company, &c.JobTitle, &c.Phone,
		&c.LinkedInURL, &c.SourceText, &status, &firstAt, &lastAt,
		&c.TimesContacted, &followUp, &synced, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	c.Status = domain.Status(status)
	c.Synced = synced != 0
	c.FirstContactAt, _ = time.Parse(time.RFC3339, firstAt)
	c.LastContactAt, _ = time.Parse(time.RFC3339, lastAt)
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	c.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	if followUp.Valid && followUp.String != "" {
		if t, err := time.Parse(time.RFC3339, followUp.String); err == nil {
			c.FollowUpAt = &t
		}
	}
	return &c, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
