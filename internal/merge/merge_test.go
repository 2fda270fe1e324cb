package merge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"contactpilot-engine/internal/domain"
)

func baseContact(t time.Time) *domain.Contact {
	return &domain.Contact{
		Email:          "jane@acme.dk",
		FirstName:      "Jane",
		LastName:       "Doe",
		Company:        "Acme",
		JobTitle:       "Consultant",
		Phone:          "12 34 56 78",
		Status:         domain.StatusApproved,
		FirstContactAt: t,
		LastContactAt:  t,
		TimesContacted: 1,
		CreatedAt:      t,
		UpdatedAt:      t,
	}
}

func candFrom(c *domain.Contact) *domain.Candidate {
	return &domain.Candidate{
		Email:      c.Email,
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		Company:    c.Company,
		JobTitle:   c.JobTitle,
		Phone:      c.Phone,
		DetectedAt: c.LastContactAt,
	}
}

func TestMergeWithSelfIsNoop(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	now := t0.Add(time.Hour)

	stored := baseContact(t0)
	res := Merge(stored, candFrom(stored), now)

	assert.False(t, res.Updated)
	assert.Empty(t, res.Changes)
	assert.Equal(t, 2, res.Contact.TimesContacted)
	assert.Equal(t, t0, res.Contact.LastContactAt)

	// stored itself is untouched
	assert.Equal(t, 1, stored.TimesContacted)
}

func TestMergeLastContactMovesForwardOnly(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	stored := baseContact(t0)

	cand := candFrom(stored)
	cand.DetectedAt = t0.Add(-time.Hour)
	res := Merge(stored, cand, t0)
	assert.Equal(t, t0, res.Contact.LastContactAt)
	assert.False(t, res.Updated)

	cand.DetectedAt = t0.Add(time.Hour)
	res = Merge(stored, cand, t0)
	assert.Equal(t, cand.DetectedAt, res.Contact.LastContactAt)
	assert.True(t, res.Updated)
	assert.Equal(t, []string{"refreshed last contact for jane@acme.dk"}, res.Changes)
}

func TestMergeName(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	stored := baseContact(t0)

	// fuller name wins
	cand := candFrom(stored)
	cand.FirstName, cand.LastName = "Jane Marie", "Doe"
	res := Merge(stored, cand, t0)
	assert.True(t, res.Updated)
	assert.Equal(t, "Jane Marie", res.Contact.FirstName)
	assert.Contains(t, res.Changes, "updated name for jane@acme.dk")

	// shorter name never wins
	cand = candFrom(stored)
	cand.FirstName, cand.LastName = "Jane", ""
	res = Merge(stored, cand, t0)
	assert.Equal(t, "Jane", res.Contact.FirstName)
	assert.Equal(t, "Doe", res.Contact.LastName)
}

func TestMergeCompany(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	stored := baseContact(t0)

	// gaining a legal marker wins even when shorter
	cand := candFrom(stored)
	cand.Company = "Acme A/S"
	res := Merge(stored, cand, t0)
	assert.Equal(t, "Acme A/S", res.Contact.Company)

	// marginally longer is not enough
	cand = candFrom(stored)
	cand.Company = "Acmex"
	res = Merge(stored, cand, t0)
	assert.Equal(t, "Acme", res.Contact.Company)

	// materially longer wins
	cand = candFrom(stored)
	cand.Company = "Acme Denmark"
	res = Merge(stored, cand, t0)
	assert.Equal(t, "Acme Denmark", res.Contact.Company)
}

func TestMergeTitle(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	stored := baseContact(t0)

	// seniority gained wins regardless of length
	cand := candFrom(stored)
	cand.JobTitle = "Senior Dev"
	res := Merge(stored, cand, t0)
	assert.Equal(t, "Senior Dev", res.Contact.JobTitle)

	// no seniority and not materially longer: stored stays
	cand = candFrom(stored)
	cand.JobTitle = "Advisor"
	res = Merge(stored, cand, t0)
	assert.Equal(t, "Consultant", res.Contact.JobTitle)
}

func TestMergePhone(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	stored := baseContact(t0)

	// country code gained
	cand := candFrom(stored)
	cand.Phone = "+45 12 34 56 78"
	res := Merge(stored, cand, t0)
	assert.Equal(t, "+45 12 34 56 78", res.Contact.Phone)

	// extension gained
	cand = candFrom(stored)
	cand.Phone = "12 34 56 78 ext. 24"
	res = Merge(stored, cand, t0)
	assert.Equal(t, "12 34 56 78 ext. 24", res.Contact.Phone)

	// reformatted same digits: stored stays
	cand = candFrom(stored)
	cand.Phone = "12-34-56-78"
	res = Merge(stored, cand, t0)
	assert.Equal(t, "12 34 56 78", res.Contact.Phone)
}

func TestMergeLinkedIn(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	stored := baseContact(t0)
	stored.LinkedInURL = "https://linkedin.com/in/old"

	cand := candFrom(stored)
	cand.LinkedInURL = "https://linkedin.com/in/jane-doe"
	res := Merge(stored, cand, t0)
	assert.Equal(t, "https://linkedin.com/in/jane-doe", res.Contact.LinkedInURL)
	assert.True(t, res.Updated)

	cand.LinkedInURL = ""
	res = Merge(stored, cand, t0)
	assert.Equal(t, "https://linkedin.com/in/old", res.Contact.LinkedInURL)
}
