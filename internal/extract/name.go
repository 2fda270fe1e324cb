package extract

import (
	"strings"
	"unicode"

	"contactpilot-engine/internal/domain"
)

// Words that never belong in a person's name. Footer boilerplate mostly.
var bannedNameTokens = map[string]bool{
	"unsubscribe": true, "privacy": true, "copyright": true, "rights": true,
	"reserved": true, "policy": true, "terms": true, "newsletter": true,
	"subject": true, "email": true, "phone": true, "mobile": true, "tel": true,
	"fax": true, "www": true, "http": true, "https": true,
	"regards": true, "sincerely": true, "thanks": true, "thank": true,
	"hilsen": true, "venlig": true, "mvh": true, "cheers": true,
	"dear": true, "hi": true, "hello": true, "hej": true, "kære": true,
	"sent": true, "from": true, "wrote": true, "forwarded": true,
}

const nameWindowRadius = 240

// Name finds two to three consecutive capitalized tokens near the email's
// occurrence in text. Degrades to "" when nothing plausible is close enough.
func Name(text, contactEmail string) string {
	window, anchor := nameWindow(text, contactEmail)

	type run struct {
		value string
		pos   int
	}
	var runs []run

	// Runs never cross a line break; "Jane Doe" followed by a title line is
	// two runs, not one.
	lineStart := 0
	for _, line := range strings.Split(window, "\n") {
		tokens, positions := tokenize(line)
		i := 0
		for i < len(tokens) {
			if !nameToken(tokens[i]) {
				i++
				continue
			}
			j := i
			for j < len(tokens) && nameToken(tokens[j]) {
				j++
			}
			if j-i >= 2 {
				end := i + 3
				if end > j {
					end = j
				}
				parts := make([]string, 0, end-i)
				for _, t := range tokens[i:end] {
					parts = append(parts, strings.Trim(t, ".,;()<>\"'"))
				}
				v := strings.Join(parts, " ")
				if validName(v) {
					runs = append(runs, run{value: v, pos: lineStart + positions[i]})
				}
			}
			i = j
		}
		lineStart += len(line) + 1
	}

	if len(runs) == 0 {
		return ""
	}

	// Closest run to the email wins; ties go to the earlier one.
	best := runs[0]
	bestDist := dist(best.pos, anchor)
	for _, r := range runs[1:] {
		if d := dist(r.pos, anchor); d < bestDist {
			best, bestDist = r, d
		}
	}
	return best.value
}

// nameWindow narrows the search to text around the email occurrence. When the
// address never appears in the text itself we scan everything.
func nameWindow(text, contactEmail string) (window string, anchor int) {
	idx := strings.Index(strings.ToLower(text), domain.NormalizeEmail(contactEmail))
	if idx < 0 {
		return text, 0
	}
	lo := idx - nameWindowRadius
	if lo < 0 {
		lo = 0
	}
	hi := idx + nameWindowRadius
	if hi > len(text) {
		hi = len(text)
	}
	return text[lo:hi], idx - lo
}

func tokenize(s string) (tokens []string, positions []int) {
	start := -1
	for i, r := range s {
		if unicode.IsSpace(r) {
			if start >= 0 {
				tokens = append(tokens, s[start:i])
				positions = append(positions, start)
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		tokens = append(tokens, s[start:])
		positions = append(positions, start)
	}
	return tokens, positions
}

// nameToken accepts a capitalized word made of letters (hyphens and
// apostrophes allowed), free of digits, "@" and banned boilerplate.
func nameToken(tok string) bool {
	// A colon marks a field label ("T:", "Mobil:"), never a name part.
	if strings.ContainsAny(tok, ":@/") {
		return false
	}
	tok = strings.Trim(tok, ".,;()<>\"'")
	if tok == "" {
		return false
	}
	if bannedNameTokens[strings.ToLower(tok)] {
		return false
	}
	runes := []rune(tok)
	if !unicode.IsUpper(runes[0]) {
		return false
	}
	for _, r := range runes {
		if unicode.IsDigit(r) {
			return false
		}
		if !unicode.IsLetter(r) && r != '-' && r != '\'' {
			return false
		}
	}
	return true
}

func validName(v string) bool {
	if len(v) < 2 || len(v) > 60 {
		return false
	}
	return len(strings.Fields(v)) >= 2
}

func dist(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
