package extract

import (
	"regexp"
	"strings"
)

var reLinkedIn = regexp.MustCompile(`(?i)(?:https?://)?(?:[a-z0-9\-]+\.)?linkedin\.com/(?:in|pub)/[A-Za-z0-9_%\-]+(?:/[A-Za-z0-9_%\-]+)*`)

// LinkedIn returns the first profile URL in the text, scheme-normalized.
func LinkedIn(text string) string {
	m := reLinkedIn.FindString(text)
	if m == "" {
		return ""
	}
	m = strings.TrimRight(m, ".,);:]\"'")
	low := strings.ToLower(m)
	if strings.HasPrefix(low, "http://") {
		m = "https://" + m[len("http://"):]
	} else if !strings.HasPrefix(low, "https://") {
		m = "https://" + m
	}
	return m
}

// GuessLinkedIn proposes a profile slug from the extracted name (and company,
// when the name alone is too thin). Only called on explicit retry; callers
// must surface the "guessed" tag.
func GuessLinkedIn(fullName, company string) string {
	parts := slugTokens(fullName)
	if len(parts) == 0 {
		return ""
	}
	if len(parts) == 1 && company != "" {
		if c := slugTokens(company); len(c) > 0 {
			parts = append(parts, c[0])
		}
	}
	if len(parts) < 2 {
		return ""
	}
	return "https://www.linkedin.com/in/" + strings.Join(parts, "-")
}

func slugTokens(s string) []string {
	var out []string
	for _, f := range strings.Fields(strings.ToLower(s)) {
		var b strings.Builder
		for _, r := range f {
			switch {
			case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
				b.WriteRune(r)
			case r == 'æ':
				b.WriteString("ae")
			case r == 'ø':
				b.WriteString("o")
			case r == 'å':
				b.WriteString("aa")
			case r == 'ä':
				b.WriteString("a")
			case r == 'ö':
				b.WriteString("o")
			case r == 'ü':
				b.WriteString("u")
			case r == 'ß':
				b.WriteString("ss")
			case r == 'é', r == 'è', r == 'ê':
				b.WriteString("e")
			}
		}
		if b.Len() > 0 {
			out = append(out, b.String())
		}
	}
	return out
}
