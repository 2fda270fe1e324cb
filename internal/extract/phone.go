package extract

import (
	"regexp"
	"strings"

	"contactpilot-engine/internal/domain"
)

// Regional templates, most specific first. Order matters: the Danish pattern
// must win before the generic international one eats the same digits.
var phoneTemplates = []*regexp.Regexp{
	// Danish grouped pairs, optional country code: +45 12 34 56 78
	regexp.MustCompile(`(?:\+45[ .\-]?)?\b\d{2} \d{2} \d{2} \d{2}\b`),
	// UK: +44 20 7946 0958 / +44 7911 123456
	regexp.MustCompile(`\+44[ ]?\(?0?\)?[ ]?\d{2,4}[ ]?\d{3,4}[ ]?\d{3,4}`),
	// German: +49 30 123456, 030/123456 style stays out without the CC
	regexp.MustCompile(`\+49[ ]?\(?0?\)?[ ]?\d{2,5}[ /\-]?\d{3,8}(?:[ /\-]?\d{2,6})?`),
	// Generic +CC…
	regexp.MustCompile(`\+\d{1,3}[ .\-]?\(?\d{1,4}\)?[ .\-]?\d{2,4}(?:[ .\-]?\d{2,4}){1,3}`),
	// US: (555) 123-4567 / 555-123-4567 / +1 555 123 4567
	regexp.MustCompile(`(?:\+1[ .\-]?)?\(?\d{3}\)?[ .\-]\d{3}[ .\-]\d{4}`),
}

var (
	reExtSuffix = regexp.MustCompile(`^[ ,]*(?:ext\.?|x)[ ]?(\d{1,5})`)
	reYearGroup = regexp.MustCompile(`^(?:19|20)\d{2}$`)
)

const (
	phoneWindowRadius = 500
	ownerPhoneRadius  = 100
)

// Phone extracts the contact's number. When the contact's own email appears in
// the text, only numbers inside a ±500-char window around it qualify, and a
// number sitting closer to some other address (the operator's, a colleague's)
// is attributed to that address and dropped.
func Phone(text, contactEmail string, ownerEmails []string) string {
	lowText := strings.ToLower(text)
	contactEmail = domain.NormalizeEmail(contactEmail)

	contactIdx := strings.Index(lowText, contactEmail)
	winLo, winHi := 0, len(text)
	if contactIdx >= 0 {
		winLo = contactIdx - phoneWindowRadius
		if winLo < 0 {
			winLo = 0
		}
		winHi = contactIdx + len(contactEmail) + phoneWindowRadius
		if winHi > len(text) {
			winHi = len(text)
		}
	}

	// Every address occurrence in the text, for attribution.
	type emailPos struct {
		email      string
		start, end int
	}
	var emails []emailPos
	for _, loc := range reAnyEmail.FindAllStringIndex(lowText, -1) {
		emails = append(emails, emailPos{
			email: domain.NormalizeEmail(lowText[loc[0]:loc[1]]),
			start: loc[0], end: loc[1],
		})
	}
	owners := map[string]bool{}
	for _, o := range ownerEmails {
		owners[domain.NormalizeEmail(o)] = true
	}

	type phoneMatch struct {
		value      string
		start, end int
	}
	var accepted []phoneMatch
	seenDigits := map[string]bool{}

	for _, re := range phoneTemplates {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			start, end := loc[0], loc[1]
			raw := strings.TrimSpace(text[start:end])

			digits := keepDigits(raw)
			if len(digits) < 7 || len(digits) > 15 {
				continue
			}
			if seenDigits[digits] {
				continue
			}
			if allYearGroups(raw) {
				continue
			}
			if start < winLo || end > winHi {
				continue
			}

			// Attribute to the nearest address occurrence.
			nearest, nearestDist := "", -1
			for _, ep := range emails {
				d := gap(start, end, ep.start, ep.end)
				if nearestDist < 0 || d < nearestDist {
					nearest, nearestDist = ep.email, d
				}
			}
			if contactIdx >= 0 {
				if nearest != "" && nearest != contactEmail {
					continue
				}
			} else if owners[nearest] && nearestDist >= 0 && nearestDist <= ownerPhoneRadius {
				continue
			}

			if m := reExtSuffix.FindStringSubmatch(text[end:]); m != nil {
				raw += " ext. " + m[1]
			}

			seenDigits[digits] = true
			accepted = append(accepted, phoneMatch{value: raw, start: start, end: end})
		}
	}

	if len(accepted) == 0 {
		return ""
	}
	if contactIdx < 0 {
		return accepted[0].value
	}

	best := accepted[0]
	bestDist := gap(best.start, best.end, contactIdx, contactIdx+len(contactEmail))
	for _, m := range accepted[1:] {
		if d := gap(m.start, m.end, contactIdx, contactIdx+len(contactEmail)); d < bestDist {
			best, bestDist = m, d
		}
	}
	return best.value
}

func keepDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// allYearGroups rejects "2023 2024"-style sequences a loose template can bite.
func allYearGroups(raw string) bool {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ' ' || r == '-' || r == '.' || r == '/'
	})
	if len(fields) == 0 {
		return false
	}
	for _, f := range fields {
		if !reYearGroup.MatchString(strings.Trim(f, "+()")) {
			return false
		}
	}
	return true
}

// gap is the distance between two [start,end) spans, 0 when they overlap.
func gap(aLo, aHi, bLo, bHi int) int {
	switch {
	case aHi <= bLo:
		return bLo - aHi
	case bHi <= aLo:
		return aLo - bHi
	default:
		return 0
	}
}
