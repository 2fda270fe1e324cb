package review

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"contactpilot-engine/internal/domain"
	"contactpilot-engine/internal/extract"
	"contactpilot-engine/internal/merge"
)

// Approve persists the candidate and closes the review. The store write runs
// before the timer is cancelled: if persistence fails the review stays open
// with its countdown intact, so the candidate can still fall back to
// auto-pending rather than vanish.
func (e *Engine) Approve(ctx context.Context, email string) (*domain.Contact, error) {
	email = domain.NormalizeEmail(email)

	e.mu.Lock()
	defer e.mu.Unlock()

	rv, ok := e.inflight[email]
	if !ok || rv.state != StateUnderReview {
		return nil, ErrNotInReview
	}

	contact, changes, err := e.persist(ctx, rv.cand, domain.StatusApproved)
	if err != nil {
		return nil, fmt.Errorf("approve %s: %w", email, err)
	}

	rv.timer.Stop()
	rv.state = StateApproved
	delete(e.inflight, email)

	// A fresh approval overrides any earlier dismissal.
	if err := e.rejected.Remove(ctx, email); err != nil {
		log.Printf("[review] clearing rejected entry for %s: %v", email, err)
	}

	e.notify(Notification{
		Type:    "contact_approved",
		Message: "contact approved: " + email,
		Data:    map[string]any{"email": email},
	})
	e.notifyChanges(changes)
	return contact, nil
}

// Reject records the address in the durable rejected set and drops the
// candidate. Nothing is written to the contact store.
func (e *Engine) Reject(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)

	e.mu.Lock()
	defer e.mu.Unlock()

	rv, ok := e.inflight[email]
	if !ok || rv.state != StateUnderReview {
		return ErrNotInReview
	}

	if err := e.rejected.Add(ctx, email); err != nil {
		return fmt.Errorf("reject %s: %w", email, err)
	}

	rv.timer.Stop()
	rv.state = StateRejected
	delete(e.inflight, email)

	e.notify(Notification{
		Type:    "contact_rejected",
		Message: "contact rejected: " + email,
		Data:    map[string]any{"email": email},
	})
	return nil
}

// Edit overwrites a single field on an open candidate. Edited fields are
// pinned: a later retry will not clobber them.
func (e *Engine) Edit(email, field, value string) (*domain.Candidate, error) {
	email = domain.NormalizeEmail(email)
	value = strings.TrimSpace(value)

	e.mu.Lock()
	defer e.mu.Unlock()

	rv, ok := e.inflight[email]
	if !ok || rv.state != StateUnderReview {
		return nil, ErrNotInReview
	}

	cand := rv.cand
	switch field {
	case "name":
		cand.FirstName, cand.LastName = domain.SplitName(value)
		// a whole-name edit pins both halves
		rv.edited["first_name"] = true
		rv.edited["last_name"] = true
	case "first_name":
		cand.FirstName = value
	case "last_name":
		cand.LastName = value
	case "company":
		cand.Company = value
	case "title":
		cand.JobTitle = value
	case "phone":
		cand.Phone = value
	case "linkedin":
		cand.LinkedInURL = value
		cand.LinkedInGuessed = false
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	rv.edited[field] = true

	snap := *cand
	return &snap, nil
}

// RetryField re-runs a single extractor for an open candidate, against fresh
// text when provided, otherwise against the text the candidate was built
// from. Fields the operator has edited by hand are left alone.
func (e *Engine) RetryField(email, field, freshText string) (extract.RetryResult, error) {
	email = domain.NormalizeEmail(email)

	e.mu.Lock()
	defer e.mu.Unlock()

	rv, ok := e.inflight[email]
	if !ok || rv.state != StateUnderReview {
		return extract.RetryResult{}, ErrNotInReview
	}
	if rv.edited[field] {
		return extract.RetryResult{}, nil
	}
	if field == "name" && rv.edited["first_name"] && rv.edited["last_name"] {
		return extract.RetryResult{}, nil
	}

	cand := rv.cand
	text := freshText
	if strings.TrimSpace(text) == "" {
		text = cand.SourceText
	}

	var current string
	switch field {
	case "name":
		current = cand.FullName()
	case "company":
		current = cand.Company
	case "title":
		current = cand.JobTitle
	case "phone":
		current = cand.Phone
	case "linkedin":
		current = cand.LinkedInURL
	default:
		return extract.RetryResult{}, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}

	cfg := e.cfg()
	res := extract.RetryField(field, text, cand.Email, cfg.Owner.Emails, current)
	if res.Updated {
		switch field {
		case "name":
			// a granular edit pins only its half of the name
			first, last := domain.SplitName(res.Value)
			if !rv.edited["first_name"] {
				cand.FirstName = first
			}
			if !rv.edited["last_name"] {
				cand.LastName = last
			}
		case "company":
			cand.Company = res.Value
		case "title":
			cand.JobTitle = res.Value
		case "phone":
			cand.Phone = res.Value
		case "linkedin":
			cand.LinkedInURL = res.Value
			cand.LinkedInGuessed = res.Meta == "guessed"
		}
		cand.Score, _ = extract.Score(cfg, extract.Fields{
			FirstName:   cand.FirstName,
			LastName:    cand.LastName,
			Company:     cand.Company,
			JobTitle:    cand.JobTitle,
			Phone:       cand.Phone,
			LinkedInURL: cand.LinkedInURL,
			LinkedInGuessed: cand.LinkedInGuessed,
		})
	}
	return res, nil
}

// CancelContext discards every open review started from the given capture
// context without persisting anything. An empty context cancels all of them.
// Returns the number of reviews dropped.
func (e *Engine) CancelContext(captureContext string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := 0
	for email, rv := range e.inflight {
		if captureContext != "" && rv.context != captureContext {
			continue
		}
		rv.timer.Stop()
		delete(e.inflight, email)
		n++
	}
	if n > 0 {
		e.notify(Notification{
			Type:    "reviews_cancelled",
			Message: fmt.Sprintf("%d pending review(s) dismissed", n),
		})
	}
	return n
}

// expire is the countdown callback: the operator never acted, so the
// candidate is saved as pending. If the save fails the review stays in
// flight so a later approve can still try; the countdown is spent and is
// not re-armed.
func (e *Engine) expire(email string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rv, ok := e.inflight[email]
	if !ok || rv.state != StateUnderReview {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, changes, err := e.persist(ctx, rv.cand, domain.StatusPending)
	if err != nil {
		log.Printf("[review] auto-pending persist failed for %s: %v", email, err)
		e.notify(Notification{
			Type:    "save_failed",
			Message: "could not save " + email + "; still under review",
			Data:    map[string]any{"email": email},
		})
		return
	}

	rv.state = StateAutoPending
	delete(e.inflight, email)

	e.notify(Notification{
		Type:    "contact_auto_pending",
		Message: "review timed out; " + email + " saved as pending",
		Data:    map[string]any{"email": email},
	})
	e.notifyChanges(changes)
}

// persist writes the candidate to the store: a plain insert when the email
// is unknown, otherwise a field-level merge into the stored row. An approval
// always wins over a stored pending status; an expiry never downgrades a
// stored approval.
func (e *Engine) persist(ctx context.Context, cand *domain.Candidate, target domain.Status) (*domain.Contact, []string, error) {
	now := e.now()

	stored, err := e.contacts.Get(ctx, cand.Email)
	if err != nil {
		return nil, nil, err
	}

	if stored == nil {
		c := domain.ContactFromCandidate(cand, target, now)
		if err := e.contacts.Create(ctx, c); err != nil {
			return nil, nil, err
		}
		return c, nil, nil
	}

	res := merge.Merge(stored, cand, now)
	if target == domain.StatusApproved && res.Contact.Status != domain.StatusApproved {
		res.Contact.Status = domain.StatusApproved
	}
	// The merge bumps times_contacted and updated_at even when no field
	// changed, so the row is always dirty for the backend after a write.
	res.Contact.Synced = false
	if err := e.contacts.Update(ctx, res.Contact); err != nil {
		return nil, nil, err
	}
	return res.Contact, res.Changes, nil
}
