package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contactpilot-engine/internal/domain"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(db.Pool))
	return db
}

func sampleContact(email string, at time.Time) *domain.Contact {
	return &domain.Contact{
		Email:          email,
		FirstName:      "Jane",
		LastName:       "Doe",
		Company:        "Acme A/S",
		JobTitle:       "Salgschef",
		Phone:          "+45 12 34 56 78",
		LinkedInURL:    "https://linkedin.com/in/jane-doe",
		SourceText:     "sig text",
		Status:         domain.StatusPending,
		FirstContactAt: at,
		LastContactAt:  at,
		TimesContacted: 1,
		CreatedAt:      at,
		UpdatedAt:      at,
	}
}

func TestContactsCRUD(t *testing.T) {
	db := testDB(t)
	s := Contacts{DB: db.Pool}
	ctx := context.Background()
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	got, err := s.Get(ctx, "jane@acme.dk")
	require.NoError(t, err)
	assert.Nil(t, got)

	c := sampleContact("jane@acme.dk", at)
	require.NoError(t, s.Create(ctx, c))

	got, err = s.Get(ctx, "JANE@acme.dk")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, *c, *got)

	got.Company = "Acme Nordics A/S"
	got.TimesContacted = 2
	got.UpdatedAt = at.Add(time.Hour)
	require.NoError(t, s.Update(ctx, got))

	again, err := s.Get(ctx, "jane@acme.dk")
	require.NoError(t, err)
	assert.Equal(t, "Acme Nordics A/S", again.Company)
	assert.Equal(t, 2, again.TimesContacted)

	require.NoError(t, s.Delete(ctx, "jane@acme.dk"))
	got, err = s.Get(ctx, "jane@acme.dk")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestContactsUpdateMissingRow(t *testing.T) {
	db := testDB(t)
	s := Contacts{DB: db.Pool}

	err := s.Update(context.Background(), sampleContact("ghost@acme.dk", time.Now().UTC()))
	require.Error(t, err)
}

func TestContactsList(t *testing.T) {
	db := testDB(t)
	s := Contacts{DB: db.Pool}
	ctx := context.Background()
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	a := sampleContact("a@x.dk", at)
	b := sampleContact("b@x.dk", at.Add(time.Hour))
	b.Status = domain.StatusApproved
	require.NoError(t, s.Create(ctx, a))
	require.NoError(t, s.Create(ctx, b))

	all, err := s.List(ctx, ListOpts{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	// most recent contact first
	assert.Equal(t, "b@x.dk", all[0].Email)

	pending, err := s.List(ctx, ListOpts{Status: "pending"})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "a@x.dk", pending[0].Email)
}

func TestPromoteAndSyncQueue(t *testing.T) {
	db := testDB(t)
	s := Contacts{DB: db.Pool}
	ctx := context.Background()
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.Create(ctx, sampleContact("jane@acme.dk", at)))

	// pending contacts are not in the sync queue
	queue, err := s.Unsynced(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, queue)

	require.NoError(t, s.Promote(ctx, "jane@acme.dk", at.Add(time.Minute)))

	queue, err = s.Unsynced(ctx, 10)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, "jane@acme.dk", queue[0].Email)
	assert.Equal(t, domain.StatusApproved, queue[0].Status)

	require.NoError(t, s.MarkSynced(ctx, "jane@acme.dk"))
	queue, err = s.Unsynced(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, queue)

	// promoting an already-approved contact is a no-op; no spurious re-push
	require.NoError(t, s.Promote(ctx, "jane@acme.dk", at.Add(2*time.Minute)))
	queue, err = s.Unsynced(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, queue)

	err = s.Promote(ctx, "ghost@acme.dk", at)
	require.Error(t, err)
}

func TestSetFollowUp(t *testing.T) {
	db := testDB(t)
	s := Contacts{DB: db.Pool}
	ctx := context.Background()
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.Create(ctx, sampleContact("jane@acme.dk", at)))

	follow := at.AddDate(0, 0, 7)
	require.NoError(t, s.SetFollowUp(ctx, "jane@acme.dk", &follow))

	got, err := s.Get(ctx, "jane@acme.dk")
	require.NoError(t, err)
	require.NotNil(t, got.FollowUpAt)
	assert.Equal(t, follow, *got.FollowUpAt)

	require.NoError(t, s.SetFollowUp(ctx, "jane@acme.dk", nil))
	got, err = s.Get(ctx, "jane@acme.dk")
	require.NoError(t, err)
	assert.Nil(t, got.FollowUpAt)
}

func TestRejectedSet(t *testing.T) {
	db := testDB(t)
	r := Rejected{DB: db.Pool}
	ctx := context.Background()

	ok, err := r.Contains(ctx, "jane@acme.dk")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.Add(ctx, "Jane@Acme.DK"))
	require.NoError(t, r.Add(ctx, "jane@acme.dk")) // idempotent

	ok, err = r.Contains(ctx, "jane@acme.dk")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, r.Remove(ctx, "jane@acme.dk"))
	ok, err = r.Contains(ctx, "jane@acme.dk")
	require.NoError(t, err)
	assert.False(t, ok)
}
