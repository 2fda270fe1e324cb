package extract

import (
	"strings"

	"contactpilot-engine/internal/domain"
)

// closingMarkers flag the line that separates body prose from the signature
// block. Matched as the prefix of a trimmed, lowercased line.
var closingMarkers = []string{
	"med venlig hilsen", "venlig hilsen", "de bedste hilsner", "mvh", "vh",
	"best regards", "kind regards", "warm regards", "with kind regards",
	"regards", "best wishes", "all the best", "sincerely", "yours truly",
	"thanks and regards", "cheers", "mit freundlichen grüßen",
	"viele grüße", "br,", "best,",
}

// SignatureBlock returns the text after the first closing marker, which is
// where the structured contact details live. A block containing an owner
// address is quoted content from a reply chain, not a fresh signature, so
// the whole text is returned with ok=false instead.
func SignatureBlock(text string, ownerEmails []string) (block string, ok bool) {
	lines := strings.Split(text, "\n")

	markerLine := -1
	for i, ln := range lines {
		t := strings.ToLower(strings.TrimSpace(ln))
		if t == "" {
			continue
		}
		for _, m := range closingMarkers {
			if t == m || strings.HasPrefix(t, m+",") || strings.HasPrefix(t, m+" ") {
				markerLine = i
				break
			}
		}
		if markerLine >= 0 {
			break
		}
	}
	if markerLine < 0 || markerLine >= len(lines)-1 {
		return text, false
	}

	block = strings.Join(lines[markerLine+1:], "\n")
	if strings.TrimSpace(block) == "" {
		return text, false
	}

	low := strings.ToLower(block)
	for _, o := range ownerEmails {
		if o = domain.NormalizeEmail(o); o != "" && strings.Contains(low, o) {
			return text, false
		}
	}
	return block, true
}
