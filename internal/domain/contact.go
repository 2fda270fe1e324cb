package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle tag carried by both candidates and stored contacts.
type Status string

const (
	StatusNew      Status = "new"
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

var reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)

// ValidEmail reports whether s looks like a deliverable address. Good enough
// for gating candidate creation; the backend revalidates on its side.
func ValidEmail(s string) bool {
	return reEmail.MatchString(strings.TrimSpace(s))
}

// NormalizeEmail lowercases and trims. All keys in the engine use this form.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Candidate is an extraction result that has not been persisted yet.
// Email is the key: always lowercase, always syntactically valid.
type Candidate struct {
	ID    string `json:"id"`
	Email string `json:"email"`

	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Company     string `json:"company,omitempty"`
	JobTitle    string `json:"jobTitle,omitempty"`
	Phone       string `json:"phone,omitempty"`
	LinkedInURL string `json:"linkedinUrl,omitempty"`

	// LinkedInGuessed marks a URL proposed by the retry heuristic rather than
	// found in the source text.
	LinkedInGuessed bool `json:"linkedinGuessed,omitempty"`

	SourceText string    `json:"sourceText"`
	DetectedAt time.Time `json:"detectedAt"`
	Status     Status    `json:"status"`
	Score      int       `json:"score"`
}

func NewCandidate(email, sourceText string, now time.Time) (*Candidate, error) {
	email = NormalizeEmail(email)
	if !ValidEmail(email) {
		return nil, errors.New("invalid email: " + email)
	}
	return &Candidate{
		ID:         uuid.New().String(),
		Email:      email,
		SourceText: sourceText,
		DetectedAt: now,
		Status:     StatusNew,
	}, nil
}

func (c *Candidate) FullName() string {
	switch {
	case c.FirstName != "" && c.LastName != "":
		return c.FirstName + " " + c.LastName
	case c.FirstName != "":
		return c.FirstName
	default:
		return c.LastName
	}
}

// SplitName applies the product's naming rule: the last whitespace-delimited
// token is the last name, everything before it (middles included) is the first
// name. Single-token names become first-name-only.
func SplitName(full string) (first, last string) {
	tokens := strings.Fields(full)
	switch len(tokens) {
	case 0:
		return "", ""
	case 1:
		return tokens[0], ""
	default:
		return strings.Join(tokens[:len(tokens)-1], " "), tokens[len(tokens)-1]
	}
}

// Contact is the stored superset of Candidate, owned by the contact store.
type Contact struct {
	Email string `json:"email"`

	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Company     string `json:"company,omitempty"`
	JobTitle    string `json:"jobTitle,omitempty"`
	Phone       string `json:"phone,omitempty"`
	LinkedInURL string `json:"linkedinUrl,omitempty"`

	SourceText string `json:"sourceText,omitempty"`
	Status     Status `json:"status"`

	FirstContactAt time.Time  `json:"firstContactAt"`
	LastContactAt  time.Time  `json:"lastContactAt"`
	TimesContacted int        `json:"timesContacted"`
	FollowUpAt     *time.Time `json:"followUpAt,omitempty"`

	Synced    bool      `json:"synced"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Contact) FullName() string {
	switch {
	case c.FirstName != "" && c.LastName != "":
		return c.FirstName + " " + c.LastName
	case c.FirstName != "":
		return c.FirstName
	default:
		return c.LastName
	}
}

// ContactFromCandidate builds the initial stored record for a candidate that
// has no existing match in the store.
func ContactFromCandidate(cand *Candidate, status Status, now time.Time) *Contact {
	return &Contact{
		Email:          cand.Email,
		FirstName:      cand.FirstName,
		LastName:       cand.LastName,
		Company:        cand.Company,
		JobTitle:       cand.JobTitle,
		Phone:          cand.Phone,
		LinkedInURL:    cand.LinkedInURL,
		SourceText:     cand.SourceText,
		Status:         status,
		FirstContactAt: cand.DetectedAt,
		LastContactAt:  cand.DetectedAt,
		TimesContacted: 1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
