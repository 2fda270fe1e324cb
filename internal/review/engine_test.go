package review

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contactpilot-engine/internal/config"
	"contactpilot-engine/internal/domain"
)

const captureText = "Med venlig hilsen\nJane Doe\nSalgschef\nAcme A/S\njane@acme.dk\n+45 12 34 56 78\n"

type memStore struct {
	mu         sync.Mutex
	contacts   map[string]*domain.Contact
	failWrites bool
}

func newMemStore() *memStore {
	return &memStore{contacts: make(map[string]*domain.Contact)}
}

func (s *memStore) Get(_ context.Context, email string) (*domain.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contacts[email]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (s *memStore) Create(_ context.Context, c *domain.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return errors.New("disk full")
	}
	cp := *c
	s.contacts[c.Email] = &cp
	return nil
}

func (s *memStore) Update(_ context.Context, c *domain.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return errors.New("disk full")
	}
	cp := *c
	s.contacts[c.Email] = &cp
	return nil
}

type memRejected struct {
	mu sync.Mutex
	m  map[string]bool
}

func newMemRejected() *memRejected { return &memRejected{m: make(map[string]bool)} }

func (r *memRejected) Add(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[email] = true
	return nil
}

func (r *memRejected) Contains(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.m[email], nil
}

func (r *memRejected) Remove(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, email)
	return nil
}

type testRig struct {
	engine   *Engine
	store    *memStore
	rejected *memRejected

	mu     sync.Mutex
	notes  []Notification
	timers []func()
}

func newRig(mutate func(*config.Config)) *testRig {
	cfg := config.Config{}
	cfg.Owner.Emails = []string{"me@myshop.dk"}
	cfg.Review.TimeoutSeconds = 60
	if mutate != nil {
		mutate(&cfg)
	}

	rig := &testRig{store: newMemStore(), rejected: newMemRejected()}
	rig.engine = New(Options{
		Cfg:      func() config.Config { return cfg },
		Contacts: rig.store,
		Rejected: rig.rejected,
		Notify: func(n Notification) {
			rig.mu.Lock()
			rig.notes = append(rig.notes, n)
			rig.mu.Unlock()
		},
		Now: func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) },
		AfterFunc: func(d time.Duration, f func()) *time.Timer {
			rig.mu.Lock()
			rig.timers = append(rig.timers, f)
			rig.mu.Unlock()
			return time.AfterFunc(time.Hour, func() {})
		},
	})
	return rig
}

func (rig *testRig) fireTimer(i int) {
	rig.mu.Lock()
	f := rig.timers[i]
	rig.mu.Unlock()
	f()
}

func (rig *testRig) noteTypes() []string {
	rig.mu.Lock()
	defer rig.mu.Unlock()
	out := make([]string, 0, len(rig.notes))
	for _, n := range rig.notes {
		out = append(out, n.Type)
	}
	return out
}

func TestProcessTextStartsOneReviewPerEmail(t *testing.T) {
	rig := newRig(nil)
	ctx := context.Background()

	cands, err := rig.engine.ProcessText(ctx, captureText, "", "tab-1")
	require.NoError(t, err)
	require.Len(t, cands, 1)

	c := cands[0]
	assert.Equal(t, "jane@acme.dk", c.Email)
	assert.Equal(t, "Jane", c.FirstName)
	assert.Equal(t, "Doe", c.LastName)
	assert.Equal(t, "Acme A/S", c.Company)
	assert.Equal(t, "Salgschef", c.JobTitle)
	assert.Equal(t, "+45 12 34 56 78", c.Phone)

	snaps := rig.engine.UnderReview()
	require.Len(t, snaps, 1)
	assert.Equal(t, StateUnderReview, snaps[0].State)
	assert.Equal(t, 60, snaps[0].RemainingSeconds)

	// same email again while in flight: nothing new
	cands, err = rig.engine.ProcessText(ctx, captureText, "", "tab-1")
	require.NoError(t, err)
	assert.Empty(t, cands)
	assert.Len(t, rig.engine.UnderReview(), 1)
}

func TestProcessTextSkipsOwnerStoredAndRejected(t *testing.T) {
	rig := newRig(nil)
	ctx := context.Background()

	// owner's own address
	cands, err := rig.engine.ProcessText(ctx, "hello from me@myshop.dk", "", "")
	require.NoError(t, err)
	assert.Empty(t, cands)

	// already stored
	rig.store.contacts["jane@acme.dk"] = &domain.Contact{Email: "jane@acme.dk"}
	cands, err = rig.engine.ProcessText(ctx, captureText, "", "")
	require.NoError(t, err)
	assert.Empty(t, cands)

	// durably rejected
	delete(rig.store.contacts, "jane@acme.dk")
	require.NoError(t, rig.rejected.Add(ctx, "jane@acme.dk"))
	cands, err = rig.engine.ProcessText(ctx, captureText, "", "")
	require.NoError(t, err)
	assert.Empty(t, cands)
}

func TestProcessTextAppliesExclusions(t *testing.T) {
	rig := newRig(func(cfg *config.Config) {
		cfg.Exclusions.Domains = []string{"acme.dk"}
	})
	cands, err := rig.engine.ProcessText(context.Background(), captureText, "", "")
	require.NoError(t, err)
	assert.Empty(t, cands)
	assert.Empty(t, rig.engine.UnderReview())
}

func TestApprovePersistsThenClosesReview(t *testing.T) {
	rig := newRig(nil)
	ctx := context.Background()

	_, err := rig.engine.ProcessText(ctx, captureText, "", "")
	require.NoError(t, err)

	contact, err := rig.engine.Approve(ctx, "jane@acme.dk")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, contact.Status)
	assert.Equal(t, 1, contact.TimesContacted)
	assert.Empty(t, rig.engine.UnderReview())

	stored, err := rig.store.Get(ctx, "jane@acme.dk")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, domain.StatusApproved, stored.Status)

	// second approve is a no-op error
	_, err = rig.engine.Approve(ctx, "jane@acme.dk")
	assert.ErrorIs(t, err, ErrNotInReview)

	// a later expiry of the spent timer must not resurrect anything
	rig.fireTimer(0)
	assert.Empty(t, rig.engine.UnderReview())
}

func TestApproveFailureKeepsReviewOpen(t *testing.T) {
	rig := newRig(nil)
	ctx := context.Background()

	_, err := rig.engine.ProcessText(ctx, captureText, "", "")
	require.NoError(t, err)

	rig.store.failWrites = true
	_, err = rig.engine.Approve(ctx, "jane@acme.dk")
	require.Error(t, err)
	assert.Len(t, rig.engine.UnderReview(), 1)

	rig.store.failWrites = false
	_, err = rig.engine.Approve(ctx, "jane@acme.dk")
	require.NoError(t, err)
	assert.Empty(t, rig.engine.UnderReview())
}

func TestRejectRecordsDurably(t *testing.T) {
	rig := newRig(nil)
	ctx := context.Background()

	_, err := rig.engine.ProcessText(ctx, captureText, "", "")
	require.NoError(t, err)

	require.NoError(t, rig.engine.Reject(ctx, "jane@acme.dk"))
	assert.Empty(t, rig.engine.UnderReview())

	// nothing was stored
	stored, err := rig.store.Get(ctx, "jane@acme.dk")
	require.NoError(t, err)
	assert.Nil(t, stored)

	// and the address never comes back
	cands, err := rig.engine.ProcessText(ctx, captureText, "", "")
	require.NoError(t, err)
	assert.Empty(t, cands)
}

func TestExpirySavesAsPending(t *testing.T) {
	rig := newRig(nil)
	ctx := context.Background()

	_, err := rig.engine.ProcessText(ctx, captureText, "", "")
	require.NoError(t, err)

	rig.fireTimer(0)

	assert.Empty(t, rig.engine.UnderReview())
	stored, err := rig.store.Get(ctx, "jane@acme.dk")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, domain.StatusPending, stored.Status)
	assert.Contains(t, rig.noteTypes(), "contact_auto_pending")
}

func TestExpiryPersistFailureKeepsCandidate(t *testing.T) {
	rig := newRig(nil)
	ctx := context.Background()

	_, err := rig.engine.ProcessText(ctx, captureText, "", "")
	require.NoError(t, err)

	rig.store.failWrites = true
	rig.fireTimer(0)

	// still in flight, nothing stored, operator was told
	assert.Len(t, rig.engine.UnderReview(), 1)
	assert.Contains(t, rig.noteTypes(), "save_failed")

	rig.store.failWrites = false
	_, err = rig.engine.Approve(ctx, "jane@acme.dk")
	require.NoError(t, err)
}

func TestEditPinsField(t *testing.T) {
	rig := newRig(nil)
	ctx := context.Background()

	_, err := rig.engine.ProcessText(ctx, captureText, "", "")
	require.NoError(t, err)

	cand, err := rig.engine.Edit("jane@acme.dk", "company", "Acme Nordics A/S")
	require.NoError(t, err)
	assert.Equal(t, "Acme Nordics A/S", cand.Company)

	// retry must not clobber the manual edit
	res, err := rig.engine.RetryField("jane@acme.dk", "company", "")
	require.NoError(t, err)
	assert.False(t, res.Updated)

	contact, err := rig.engine.Approve(ctx, "jane@acme.dk")
	require.NoError(t, err)
	assert.Equal(t, "Acme Nordics A/S", contact.Company)
}

func TestGranularNameEditSurvivesNameRetry(t *testing.T) {
	rig := newRig(nil)
	ctx := context.Background()

	_, err := rig.engine.ProcessText(ctx, "Med venlig hilsen\nJane Doe\njane@acme.dk\n", "", "")
	require.NoError(t, err)

	cand, err := rig.engine.Edit("jane@acme.dk", "first_name", "Janet")
	require.NoError(t, err)
	assert.Equal(t, "Janet", cand.FirstName)
	assert.Equal(t, "Doe", cand.LastName)

	// a whole-name retry must leave the edited half alone
	res, err := rig.engine.RetryField("jane@acme.dk", "name", "Med venlig hilsen\nJane Doe\njane@acme.dk\n")
	require.NoError(t, err)
	assert.True(t, res.Updated)

	snaps := rig.engine.UnderReview()
	require.Len(t, snaps, 1)
	assert.Equal(t, "Janet", snaps[0].Candidate.FirstName)
	assert.Equal(t, "Doe", snaps[0].Candidate.LastName)
}

func TestWholeNameEditPinsBothHalves(t *testing.T) {
	rig := newRig(nil)
	_, err := rig.engine.ProcessText(context.Background(), captureText, "", "")
	require.NoError(t, err)

	_, err = rig.engine.Edit("jane@acme.dk", "name", "Janet Roe")
	require.NoError(t, err)

	res, err := rig.engine.RetryField("jane@acme.dk", "name", captureText)
	require.NoError(t, err)
	assert.False(t, res.Updated)

	snaps := rig.engine.UnderReview()
	require.Len(t, snaps, 1)
	assert.Equal(t, "Janet", snaps[0].Candidate.FirstName)
	assert.Equal(t, "Roe", snaps[0].Candidate.LastName)
}

func TestEditUnknownField(t *testing.T) {
	rig := newRig(nil)
	_, err := rig.engine.ProcessText(context.Background(), captureText, "", "")
	require.NoError(t, err)

	_, err = rig.engine.Edit("jane@acme.dk", "shoe_size", "44")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestRetryFieldWithFreshText(t *testing.T) {
	rig := newRig(nil)
	ctx := context.Background()

	text := "Med venlig hilsen\nJane Doe\njane@acme.dk\n"
	cands, err := rig.engine.ProcessText(ctx, text, "", "")
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Empty(t, cands[0].Phone)

	res, err := rig.engine.RetryField("jane@acme.dk", "phone", "jane@acme.dk\nDirect: +45 12 34 56 78")
	require.NoError(t, err)
	assert.True(t, res.Updated)
	assert.Equal(t, "+45 12 34 56 78", res.Value)

	snaps := rig.engine.UnderReview()
	require.Len(t, snaps, 1)
	assert.Equal(t, "+45 12 34 56 78", snaps[0].Candidate.Phone)
}

func TestApproveMergeAlwaysQueuesSync(t *testing.T) {
	rig := newRig(nil)
	ctx := context.Background()

	_, err := rig.engine.ProcessText(ctx, captureText, "", "")
	require.NoError(t, err)

	// an identical contact lands in the store behind the open review,
	// already pushed to the backend
	snaps := rig.engine.UnderReview()
	require.Len(t, snaps, 1)
	cand := snaps[0].Candidate
	stored := domain.ContactFromCandidate(&cand, domain.StatusApproved, time.Date(2025, 3, 1, 11, 0, 0, 0, time.UTC))
	stored.Synced = true
	require.NoError(t, rig.store.Create(ctx, stored))

	// the merge changes no field, but it bumps times_contacted, and the
	// backend must see that
	contact, err := rig.engine.Approve(ctx, "jane@acme.dk")
	require.NoError(t, err)
	assert.Equal(t, 2, contact.TimesContacted)
	assert.False(t, contact.Synced)

	got, err := rig.store.Get(ctx, "jane@acme.dk")
	require.NoError(t, err)
	assert.False(t, got.Synced)
}

func TestCancelContext(t *testing.T) {
	rig := newRig(nil)
	ctx := context.Background()

	_, err := rig.engine.ProcessText(ctx, captureText, "", "tab-1")
	require.NoError(t, err)
	_, err = rig.engine.ProcessText(ctx, "Best regards\nBob Smith\nbob@corp.com\n", "", "tab-2")
	require.NoError(t, err)
	require.Len(t, rig.engine.UnderReview(), 2)

	assert.Equal(t, 1, rig.engine.CancelContext("tab-1"))
	require.Len(t, rig.engine.UnderReview(), 1)
	assert.Equal(t, "bob@corp.com", rig.engine.UnderReview()[0].Candidate.Email)

	// nothing was saved for the cancelled one
	stored, err := rig.store.Get(ctx, "jane@acme.dk")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestAutoApprove(t *testing.T) {
	rig := newRig(func(cfg *config.Config) {
		cfg.Review.AutoApprove.Enabled = true
		cfg.Review.AutoApprove.MinScore = 70
	})
	ctx := context.Background()

	cands, err := rig.engine.ProcessText(ctx, captureText, "", "")
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, domain.StatusApproved, cands[0].Status)
	assert.Empty(t, rig.engine.UnderReview())

	stored, err := rig.store.Get(ctx, "jane@acme.dk")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, domain.StatusApproved, stored.Status)
}

func TestAutoApproveBelowThresholdStillReviews(t *testing.T) {
	rig := newRig(func(cfg *config.Config) {
		cfg.Review.AutoApprove.Enabled = true
		cfg.Review.AutoApprove.MinScore = 99
	})
	cands, err := rig.engine.ProcessText(context.Background(), captureText, "", "")
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Len(t, rig.engine.UnderReview(), 1)
}

func TestApproveAfterExpiryMerges(t *testing.T) {
	rig := newRig(nil)
	ctx := context.Background()

	_, err := rig.engine.ProcessText(ctx, captureText, "", "")
	require.NoError(t, err)
	rig.fireTimer(0)

	// expired to pending; a fresh capture is skipped because it is stored,
	// but promote-style approval goes through the store path, not here.
	cands, err := rig.engine.ProcessText(ctx, captureText, "", "")
	require.NoError(t, err)
	assert.Empty(t, cands)
}
