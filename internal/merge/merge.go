// Package merge reconciles a freshly approved candidate with a stored contact
// sharing the same email. Policy is per-field; there is never a blanket
// overwrite.
package merge

import (
	"fmt"
	"strings"
	"time"

	"contactpilot-engine/internal/domain"
	"contactpilot-engine/internal/exclusion"
	"contactpilot-engine/internal/extract"
)

// seniorityKeywords bias title replacement toward the more senior variant.
var seniorityKeywords = []string{
	"senior", "lead", "chief", "head", "director", "vp", "vice president",
	"president", "ceo", "cto", "cfo",
}

// materiallyLonger is the margin a new string needs before length alone
// justifies replacing the stored one.
const materiallyLonger = 4

type Result struct {
	Contact *domain.Contact
	Updated bool
	// Changes carries human-readable per-field notes ("updated company for X").
	Changes []string
}

// Merge folds cand into stored. The returned contact is a copy; stored is not
// mutated. A merge where nothing wins is a silent success with Updated=false.
func Merge(stored *domain.Contact, cand *domain.Candidate, now time.Time) Result {
	out := *stored
	res := Result{Contact: &out}

	who := cand.Email

	// lastContactAt only ever moves forward.
	if cand.DetectedAt.After(out.LastContactAt) {
		out.LastContactAt = cand.DetectedAt
		res.Updated = true
	}
	out.TimesContacted++
	out.UpdatedAt = now

	if newName, ok := betterName(out.FullName(), cand.FullName()); ok {
		out.FirstName, out.LastName = domain.SplitName(newName)
		res.Updated = true
		res.Changes = append(res.Changes, "updated name for "+who)
	}
	if betterCompany(out.Company, cand.Company) {
		out.Company = cand.Company
		res.Updated = true
		res.Changes = append(res.Changes, "updated company for "+who)
	}
	if betterTitle(out.JobTitle, cand.JobTitle) {
		out.JobTitle = cand.JobTitle
		res.Updated = true
		res.Changes = append(res.Changes, "updated title for "+who)
	}
	if betterPhone(out.Phone, cand.Phone) {
		out.Phone = cand.Phone
		res.Updated = true
		res.Changes = append(res.Changes, "updated phone for "+who)
	}
	if cand.LinkedInURL != "" && cand.LinkedInURL != out.LinkedInURL {
		out.LinkedInURL = cand.LinkedInURL
		res.Updated = true
		res.Changes = append(res.Changes, "updated linkedin for "+who)
	}

	if res.Updated && len(res.Changes) == 0 {
		res.Changes = append(res.Changes, fmt.Sprintf("refreshed last contact for %s", who))
	}
	return res
}

// betterName replaces an empty stored name, or one with fewer words. A
// fuller name is never replaced by a shorter one.
func betterName(stored, incoming string) (string, bool) {
	incoming = strings.TrimSpace(incoming)
	if incoming == "" {
		return "", false
	}
	stored = strings.TrimSpace(stored)
	if stored == "" {
		return incoming, true
	}
	sw := len(strings.Fields(stored))
	iw := len(strings.Fields(incoming))
	if iw > sw && incoming != stored {
		return incoming, true
	}
	return "", false
}

func betterCompany(stored, incoming string) bool {
	incoming = strings.TrimSpace(incoming)
	if incoming == "" || incoming == stored {
		return false
	}
	if stored == "" {
		return true
	}
	if extract.HasLegalMarker(incoming) && !extract.HasLegalMarker(stored) {
		return true
	}
	return len(incoming) >= len(stored)+materiallyLonger
}

func betterTitle(stored, incoming string) bool {
	incoming = strings.TrimSpace(incoming)
	if incoming == "" || incoming == stored {
		return false
	}
	if stored == "" {
		return true
	}
	if hasSeniority(incoming) && !hasSeniority(stored) {
		return true
	}
	return len(incoming) >= len(stored)+materiallyLonger
}

func hasSeniority(title string) bool {
	low := strings.ToLower(title)
	for _, k := range seniorityKeywords {
		if strings.Contains(low, k) {
			return true
		}
	}
	return false
}

func betterPhone(stored, incoming string) bool {
	incoming = strings.TrimSpace(incoming)
	if incoming == "" || incoming == stored {
		return false
	}
	if stored == "" {
		return true
	}
	if hasCountryCode(incoming) && !hasCountryCode(stored) {
		return true
	}
	if hasExtension(incoming) && !hasExtension(stored) {
		return true
	}
	return digitCount(incoming) > digitCount(stored)
}

func digitCount(p string) int {
	n := 0
	for _, r := range exclusion.NormalizePhone(p) {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

func hasCountryCode(p string) bool {
	return strings.HasPrefix(strings.TrimSpace(p), "+") ||
		strings.HasPrefix(strings.TrimSpace(p), "00")
}

func hasExtension(p string) bool {
	low := strings.ToLower(p)
	return strings.Contains(low, "ext") || strings.Contains(low, " x")
}
