// Package exclusion holds the operator-owned suppression rules. All
// predicates are pure and never fail; a hit fully suppresses candidate
// creation before any review state exists.
package exclusion

import (
	"strings"
)

// Lists are read per build cycle from config; the engine never mutates them.
type Lists struct {
	Domains []string
	Names   []string
	Phones  []string
}

// Excluded reports whether a candidate with the given identity should be
// suppressed, and which list fired.
func (l Lists) Excluded(email, firstName, lastName, phone string) (bool, string) {
	if l.DomainExcluded(email) {
		return true, "domain"
	}
	if l.NameExcluded(firstName, lastName) {
		return true, "name"
	}
	if l.PhoneExcluded(phone) {
		return true, "phone"
	}
	return false, ""
}

// DomainExcluded matches when the email's domain equals or is a subdomain of
// a configured entry.
func (l Lists) DomainExcluded(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	host := strings.ToLower(strings.TrimSpace(email[at+1:]))
	for _, d := range l.Domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// NameExcluded matches per entry shape: an entry containing a space is a
// (first, last) pair and both parts must match exactly; a single-token entry
// matches the first name, the last name, or any substring of the full name.
func (l Lists) NameExcluded(firstName, lastName string) bool {
	first := strings.ToLower(strings.TrimSpace(firstName))
	last := strings.ToLower(strings.TrimSpace(lastName))
	full := strings.TrimSpace(first + " " + last)
	if full == "" {
		return false
	}

	for _, entry := range l.Names {
		e := strings.ToLower(strings.TrimSpace(entry))
		if e == "" {
			continue
		}
		if i := strings.IndexByte(e, ' '); i >= 0 {
			ef := strings.TrimSpace(e[:i])
			el := strings.TrimSpace(e[i+1:])
			if ef == first && el == last {
				return true
			}
			continue
		}
		if e == first || e == last || strings.Contains(full, e) {
			return true
		}
	}
	return false
}

// PhoneExcluded normalizes both sides and matches on equality or either
// containing the other, which tolerates extensions and country-code variants.
func (l Lists) PhoneExcluded(phone string) bool {
	p := NormalizePhone(phone)
	if p == "" {
		return false
	}
	for _, entry := range l.Phones {
		e := NormalizePhone(entry)
		if e == "" {
			continue
		}
		if p == e || strings.Contains(p, e) || strings.Contains(e, p) {
			return true
		}
	}
	return false
}

// NormalizePhone strips spaces, dashes, parens and dots so format variance
// cannot defeat the list.
func NormalizePhone(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case ' ', '-', '(', ')', '.', '\t':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
