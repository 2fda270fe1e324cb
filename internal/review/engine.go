// Package review holds the candidate builder and the approval workflow. All
// mutable state lives in one Engine guarded by a single mutex: HTTP handlers
// and timer callbacks are the only entry points, and each transition runs to
// completion before the next one starts. At most one candidate per email is
// ever in flight; that invariant, not locking granularity, is what keeps the
// pipeline safe.
package review

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"contactpilot-engine/internal/config"
	"contactpilot-engine/internal/domain"
	"contactpilot-engine/internal/exclusion"
	"contactpilot-engine/internal/extract"
)

// State is the per-candidate review lifecycle. Detected is transient: a
// candidate either advances to UnderReview immediately or jumps straight to
// Approved under an auto-approve policy.
type State string

const (
	StateDetected    State = "detected"
	StateUnderReview State = "under_review"
	StateApproved    State = "approved"
	StateRejected    State = "rejected"
	StateAutoPending State = "auto_pending"
)

var (
	// ErrNotInReview is the no-op return for operator actions against an
	// email with no open review. Not an error path in the pipeline sense.
	ErrNotInReview = errors.New("no candidate under review for that email")

	ErrUnknownField = errors.New("unknown field")
)

// ContactStore is the persistence collaborator. Get returns nil, nil when the
// email is unknown. Calls may fail (network, validation); the engine must
// leave in-flight tracking unchanged when they do.
type ContactStore interface {
	Get(ctx context.Context, email string) (*domain.Contact, error)
	Create(ctx context.Context, c *domain.Contact) error
	Update(ctx context.Context, c *domain.Contact) error
}

// RejectedSet is the durable record of explicitly dismissed addresses.
type RejectedSet interface {
	Add(ctx context.Context, email string) error
	Contains(ctx context.Context, email string) (bool, error)
	Remove(ctx context.Context, email string) error
}

// Notification is what the engine hands the notification sink: a plain
// human-readable message plus a type tag for the UI.
type Notification struct {
	Type    string
	Message string
	Data    map[string]any
}

type NotifyFunc func(n Notification)

// Options wires the engine's collaborators. Now and AfterFunc exist so tests
// can drive the clock; leave them nil for real time.
type Options struct {
	Cfg      func() config.Config
	Contacts ContactStore
	Rejected RejectedSet
	Notify   NotifyFunc

	Now       func() time.Time
	AfterFunc func(d time.Duration, f func()) *time.Timer
}

type openReview struct {
	cand      *domain.Candidate
	state     State
	startedAt time.Time
	deadline  time.Time
	context   string
	edited    map[string]bool
	timer     *time.Timer
}

type Engine struct {
	mu sync.Mutex

	cfg      func() config.Config
	contacts ContactStore
	rejected RejectedSet
	notify   NotifyFunc

	inflight map[string]*openReview

	now       func() time.Time
	afterFunc func(d time.Duration, f func()) *time.Timer
}

func New(opts Options) *Engine {
	e := &Engine{
		cfg:       opts.Cfg,
		contacts:  opts.Contacts,
		rejected:  opts.Rejected,
		notify:    opts.Notify,
		inflight:  make(map[string]*openReview),
		now:       opts.Now,
		afterFunc: opts.AfterFunc,
	}
	if e.notify == nil {
		e.notify = func(Notification) {}
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.afterFunc == nil {
		e.afterFunc = time.AfterFunc
	}
	return e
}

// ProcessText is the candidate builder: one capture cycle over a text blob.
// Every qualifying address yields at most one candidate; everything already
// known, rejected, owned, excluded, or in flight is skipped silently.
func (e *Engine) ProcessText(ctx context.Context, text, sourceEmail, captureContext string) ([]*domain.Candidate, error) {
	cfg := e.cfg()

	owners := map[string]bool{}
	for _, o := range cfg.Owner.Emails {
		owners[domain.NormalizeEmail(o)] = true
	}
	lists := exclusion.Lists{
		Domains: cfg.Exclusions.Domains,
		Names:   cfg.Exclusions.Names,
		Phones:  cfg.Exclusions.Phones,
	}

	emails := extract.FindEmails(text)
	if se := domain.NormalizeEmail(sourceEmail); domain.ValidEmail(se) && !containsStr(emails, se) {
		emails = append([]string{se}, emails...)
	}

	// Prefer the signature block; a whole-body search risks capturing the
	// operator's own quoted signature from a reply chain.
	sigText, _ := extract.SignatureBlock(text, cfg.Owner.Emails)

	var out []*domain.Candidate
	for _, email := range emails {
		if owners[email] {
			continue
		}

		e.mu.Lock()
		_, busy := e.inflight[email]
		e.mu.Unlock()
		if busy {
			// already in review; drop, don't queue
			continue
		}

		if rejected, err := e.rejected.Contains(ctx, email); err != nil {
			log.Printf("[review] rejected-set lookup failed for %s: %v", email, err)
			continue
		} else if rejected {
			continue
		}

		stored, err := e.contacts.Get(ctx, email)
		if err != nil {
			log.Printf("[review] store lookup failed for %s: %v", email, err)
			continue
		}
		if stored != nil {
			continue
		}

		fields := extract.Run(sigText, email, cfg.Owner.Emails)
		if hit, reason := lists.Excluded(email, fields.FirstName, fields.LastName, fields.Phone); hit {
			log.Printf("[review] %s suppressed by %s exclusion", email, reason)
			continue
		}

		cand, err := domain.NewCandidate(email, sigText, e.now())
		if err != nil {
			continue
		}
		applyFields(cand, fields)
		cand.Score, _ = extract.Score(cfg, fields)

		if cfg.Review.AutoApprove.Enabled && cand.Score >= cfg.Review.AutoApprove.MinScore {
			if c := e.autoApprove(ctx, cand); c != nil {
				out = append(out, cand)
				continue
			}
			// store failed; fall through to a normal review so nothing is lost
		}

		e.startReview(cand, captureContext, cfg.Review.TimeoutSeconds)
		out = append(out, cand)
	}
	return out, nil
}

func (e *Engine) autoApprove(ctx context.Context, cand *domain.Candidate) *domain.Contact {
	contact, changes, err := e.persist(ctx, cand, domain.StatusApproved)
	if err != nil {
		log.Printf("[review] auto-approve persist failed for %s: %v", cand.Email, err)
		return nil
	}
	cand.Status = domain.StatusApproved
	e.notify(Notification{
		Type:    "contact_auto_approved",
		Message: "contact approved automatically: " + cand.Email,
		Data:    map[string]any{"email": cand.Email, "score": cand.Score},
	})
	e.notifyChanges(changes)
	return contact
}

func (e *Engine) startReview(cand *domain.Candidate, captureContext string, timeoutSeconds int) {
	if timeoutSeconds <= 0 {
		timeoutSeconds = 60
	}
	d := time.Duration(timeoutSeconds) * time.Second
	now := e.now()

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, busy := e.inflight[cand.Email]; busy {
		return
	}

	rv := &openReview{
		cand:      cand,
		state:     StateUnderReview,
		startedAt: now,
		deadline:  now.Add(d),
		context:   captureContext,
		edited:    make(map[string]bool),
	}
	email := cand.Email
	rv.timer = e.afterFunc(d, func() { e.expire(email) })
	e.inflight[email] = rv

	e.notify(Notification{
		Type:    "candidate_detected",
		Message: "new contact detected: " + cand.Email,
		Data:    map[string]any{"email": cand.Email, "score": cand.Score},
	})
}

func (e *Engine) notifyChanges(changes []string) {
	for _, msg := range changes {
		e.notify(Notification{Type: "contact_updated", Message: msg})
	}
}

func applyFields(cand *domain.Candidate, f extract.Fields) {
	cand.FirstName = f.FirstName
	cand.LastName = f.LastName
	cand.Company = f.Company
	cand.JobTitle = f.JobTitle
	cand.Phone = f.Phone
	cand.LinkedInURL = f.LinkedInURL
	cand.LinkedInGuessed = f.LinkedInGuessed
}

func containsStr(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}

// Snapshot is the read-only view the review surface renders.
type Snapshot struct {
	Candidate        domain.Candidate `json:"candidate"`
	State            State            `json:"state"`
	StartedAt        time.Time        `json:"startedAt"`
	Deadline         time.Time        `json:"deadline"`
	RemainingSeconds int              `json:"remainingSeconds"`
	Context          string           `json:"context,omitempty"`
}

// UnderReview lists every open review, soonest deadline first.
func (e *Engine) UnderReview() []Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	out := make([]Snapshot, 0, len(e.inflight))
	for _, rv := range e.inflight {
		rem := int(rv.deadline.Sub(now).Seconds())
		if rem < 0 {
			rem = 0
		}
		out = append(out, Snapshot{
			Candidate:        *rv.cand,
			State:            rv.state,
			StartedAt:        rv.startedAt,
			Deadline:         rv.deadline,
			RemainingSeconds: rem,
			Context:          rv.context,
		})
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Deadline.Before(out[j-1].Deadline); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
