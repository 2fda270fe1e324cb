// Package extract recovers contact fields from noisy text scraped out of a
// webmail client. Every extractor is a pure function: given text plus the
// contact's email it returns one best guess or "", never an error. Ambiguity
// degrades to "" so the pipeline never blocks on bad input.
package extract

import (
	"regexp"
	"strings"

	"contactpilot-engine/internal/domain"
)

type Fields struct {
	FirstName   string
	LastName    string
	Company     string
	JobTitle    string
	Phone       string
	LinkedInURL string

	// LinkedInGuessed is only ever set by RetryField; a first pass never guesses.
	LinkedInGuessed bool
}

var reAnyEmail = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

// FindEmails returns every syntactically valid address in text, lowercased,
// deduplicated, in order of first appearance.
func FindEmails(text string) []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range reAnyEmail.FindAllString(text, -1) {
		e := domain.NormalizeEmail(strings.Trim(m, "."))
		if !domain.ValidEmail(e) {
			continue
		}
		if seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}

// Run executes all extractors against text for one contact.
func Run(text, contactEmail string, ownerEmails []string) Fields {
	var f Fields
	f.FirstName, f.LastName = domain.SplitName(Name(text, contactEmail))
	f.Company = Company(text, contactEmail)
	f.JobTitle = JobTitle(text)
	f.Phone = Phone(text, contactEmail, ownerEmails)
	f.LinkedInURL = LinkedIn(text)
	return f
}

// RetryResult is what a single-field re-extraction reports back to the review
// surface. Meta carries provenance the UI should show ("guessed").
type RetryResult struct {
	Updated bool   `json:"updated"`
	Value   string `json:"value"`
	Meta    string `json:"meta,omitempty"`
}

// RetryField re-runs one extractor against a fresh text window. The new value
// only replaces the current one when it is non-empty and actually different,
// so a manual edit is never clobbered by an identical re-extraction.
func RetryField(field, text, contactEmail string, ownerEmails []string, current string) RetryResult {
	var value, meta string

	switch field {
	case "name":
		value = Name(text, contactEmail)
	case "company":
		value = Company(text, contactEmail)
	case "title":
		value = JobTitle(text)
	case "phone":
		value = Phone(text, contactEmail, ownerEmails)
	case "linkedin":
		value = LinkedIn(text)
		if value == "" {
			// Secondary heuristic, explicit-retry only: propose a slug from
			// what we already know. Always tagged so the UI can caveat it.
			name := Name(text, contactEmail)
			if name == "" {
				name = current
			}
			if g := GuessLinkedIn(name, Company(text, contactEmail)); g != "" {
				value, meta = g, "guessed"
			}
		}
	default:
		return RetryResult{}
	}

	if value == "" || value == current {
		return RetryResult{Updated: false, Value: current}
	}
	return RetryResult{Updated: true, Value: value, Meta: meta}
}

// ---------------- Domain hints ----------------

// freeMailProviders are consumer mail hosts that never identify a company.
var freeMailProviders = map[string]bool{
	"gmail": true, "googlemail": true, "yahoo": true, "hotmail": true,
	"outlook": true, "live": true, "msn": true, "aol": true, "icloud": true,
	"me": true, "protonmail": true, "proton": true, "gmx": true, "mail": true,
	"yandex": true, "zoho": true, "fastmail": true, "mailbox": true,
}

// ccSecondLevel are registry labels that sit between the org label and a
// country TLD (acme.co.uk, acme.com.au).
var ccSecondLevel = map[string]bool{
	"co": true, "com": true, "org": true, "net": true, "ac": true, "gov": true,
}

// DomainHint derives the token used to bias company extraction from the
// email's domain: the registrable label, skipping registry second-levels.
// Free-mail providers yield no hint.
func DomainHint(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return ""
	}
	host := strings.ToLower(strings.TrimSpace(email[at+1:]))
	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return ""
	}

	i := len(labels) - 2
	if i > 0 && ccSecondLevel[labels[i]] {
		i--
	}
	hint := labels[i]

	if len(hint) < 2 || freeMailProviders[hint] {
		return ""
	}
	return hint
}

// FreeMailProvider reports whether name (case-insensitive) is a consumer mail
// brand; used to refuse "Gmail" as a company.
func FreeMailProvider(name string) bool {
	return freeMailProviders[strings.ToLower(strings.TrimSpace(name))]
}

func titleCaseWord(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
