package extract

import (
	"regexp"
	"strings"
)

// legalMarkers identify a line as a legal entity name (tier 2 detection and
// the merge engine's "carries a marker" test). Lowercased, matched per token.
var legalMarkers = map[string]bool{
	"a/s": true, "aps": true, "i/s": true, "gmbh": true, "ag": true,
	"ltd": true, "ltd.": true, "limited": true, "inc": true, "inc.": true,
	"llc": true, "llp": true, "plc": true, "ab": true, "as": true, "oy": true,
	"bv": true, "b.v.": true, "nv": true, "sa": true, "s.a.": true,
	"sarl": true, "srl": true, "kft": true, "pty": true, "corp": true,
	"corp.": true, "co.": true,
}

// canonicalSuffixes are the legal suffixes the product keeps on the company
// name instead of stripping.
var canonicalSuffixes = map[string]bool{
	"a/s": true, "aps": true, "gmbh": true, "ltd": true, "ltd.": true,
	"inc": true, "inc.": true,
}

// addressTokens flag the trailing postal junk that often shares a line with
// the company name.
var addressTokens = map[string]bool{
	"street": true, "st": true, "st.": true, "road": true, "rd": true,
	"rd.": true, "avenue": true, "ave": true, "ave.": true, "blvd": true,
	"suite": true, "floor": true, "fl.": true, "vej": true, "gade": true,
	"allé": true, "alle": true, "boulevard": true, "plads": true, "sal": true,
}

var (
	rePhoneLine = regexp.MustCompile(`^\s*(?:[TtMmFf]|Tel|Tlf|Mob|Mobil|Phone|Fax|Dir|Direct)\s*[.:]`)
	reDigitRun  = regexp.MustCompile(`\d{5,}`)
	reHasURL    = regexp.MustCompile(`(?i)(?:https?://|www\.)`)
)

// Company recovers the company name. Tier 1 biases toward lines containing a
// hint derived from the email domain; tier 2 falls back to any line carrying a
// recognized legal-entity marker; last resort is the title-cased hint itself.
func Company(text, contactEmail string) string {
	hint := DomainHint(contactEmail)
	lines := strings.Split(text, "\n")

	if hint != "" {
		for _, ln := range lines {
			t := strings.TrimSpace(ln)
			if t == "" || skipCompanyLine(t) {
				continue
			}
			if !strings.Contains(strings.ToLower(t), hint) {
				continue
			}
			if c := cleanCompanyLine(t); acceptCompany(c) {
				return c
			}
		}
	}

	// Tier 2: a legal marker identifies the line even without a domain hint.
	for _, ln := range lines {
		t := strings.TrimSpace(ln)
		if t == "" || skipCompanyLine(t) {
			continue
		}
		if !HasLegalMarker(t) {
			continue
		}
		if c := cleanCompanyLine(t); acceptCompany(c) {
			return c
		}
	}

	if hint != "" {
		if c := titleCaseWord(hint); acceptCompany(c) {
			return c
		}
	}
	return ""
}

// HasLegalMarker reports whether any token of s is a known legal-entity
// marker (A/S, GmbH, Ltd, ...).
func HasLegalMarker(s string) bool {
	for _, tok := range strings.Fields(s) {
		if legalMarkers[strings.ToLower(strings.Trim(tok, ",;"))] {
			return true
		}
	}
	return false
}

// skipCompanyLine drops lines that are clearly phone numbers, addresses with
// long digit runs, emails, or URLs.
func skipCompanyLine(t string) bool {
	if strings.Contains(t, "@") {
		return true
	}
	if rePhoneLine.MatchString(t) {
		return true
	}
	if reHasURL.MatchString(t) {
		return true
	}
	return reDigitRun.MatchString(t)
}

// cleanCompanyLine strips trailing address tokens and non-canonical legal
// suffixes. Canonical suffixes (A/S, ApS, GmbH, Ltd, Inc) stay.
func cleanCompanyLine(t string) string {
	tokens := strings.Fields(strings.TrimRight(t, " ,.;"))

	// Cut from the first address-ish token onward.
	cut := len(tokens)
	for i, tok := range tokens {
		low := strings.ToLower(strings.Trim(tok, ","))
		if addressTokens[low] || strings.ContainsAny(tok, "0123456789") {
			cut = i
			break
		}
	}
	tokens = tokens[:cut]

	// Strip trailing legal suffixes unless canonical.
	for len(tokens) > 1 {
		last := strings.ToLower(strings.Trim(tokens[len(tokens)-1], ",."))
		if legalMarkers[last] && !canonicalSuffixes[last] {
			tokens = tokens[:len(tokens)-1]
			continue
		}
		break
	}

	out := strings.Join(tokens, " ")
	return strings.Trim(out, " ,.;")
}

func acceptCompany(c string) bool {
	if len(c) < 2 || len(c) > 60 {
		return false
	}
	return !FreeMailProvider(c)
}
