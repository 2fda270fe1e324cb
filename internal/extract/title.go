package extract

import (
	"regexp"
	"strings"
	"unicode"
)

// localizedTitles are compound job titles seen in Danish/German signatures
// that the English pattern families would miss.
var localizedTitles = []string{
	"administrerende direktør", "direktør", "salgsdirektør", "salgschef",
	"marketingchef", "økonomichef", "regnskabschef", "udviklingschef",
	"indkøbschef", "projektleder", "afdelingsleder", "teamleder",
	"seniorkonsulent", "chefkonsulent", "konsulent", "indehaver", "partner",
	"geschäftsführer", "vertriebsleiter", "verkaufsleiter", "prokurist",
}

var (
	reExecAcronym = regexp.MustCompile(`\b(CEO|CTO|CFO|COO|CMO|CIO|CCO|CHRO|CRO|CSO|CPO|EVP|SVP|VP)\b`)

	reBusinessPartner = regexp.MustCompile(`\b(?:[A-Z][A-Za-z&]+ )+Business Partner\b`)

	reRoleOf = regexp.MustCompile(`(?i)\b((?:director|manager|head|chief|vice president)[ ]+of[ ]+[A-Za-z][A-Za-z& ]{1,30}[A-Za-z])`)

	reSeniorRole = regexp.MustCompile(`\b(?:Senior|Lead|Principal|Staff|Junior|Global|Executive|Chief)[ ]+[A-Z][a-z]+(?:[ ]+[A-Z][a-z]+){0,2}`)

	reFieldLabel = regexp.MustCompile(`(?i)^\s*(?:phone|tel|tlf|mobile|mobil|email|e-mail|mail|fax|web|www|address|adresse|dir|direct)\b`)
)

// JobTitle tries the pattern families in order of reliability; the lone short
// capitalized line is a last resort only.
func JobTitle(text string) string {
	lines := strings.Split(text, "\n")

	// 1) Localized compound titles.
	for _, ln := range lines {
		t := strings.TrimSpace(ln)
		low := strings.ToLower(t)
		for _, lt := range localizedTitles {
			if containsWord(low, lt) {
				if v := strings.Trim(t, " ,.;"); acceptTitle(v) {
					return v
				}
				return titleCaseWord(lt)
			}
		}
	}

	// 2) Executive acronyms. A short line keeps its context ("CEO & Founder"),
	// anything longer collapses to the acronym alone.
	for _, ln := range lines {
		t := strings.TrimSpace(ln)
		if m := reExecAcronym.FindString(t); m != "" {
			if len(t) <= 30 && acceptTitle(t) && !strings.Contains(t, "@") {
				return strings.Trim(t, " ,.;")
			}
			return m
		}
	}

	// 3) "<Role> Business Partner"
	if m := reBusinessPartner.FindString(text); m != "" && acceptTitle(m) {
		return m
	}

	// 4) "<Director/Manager/Head/Chief> of <Dept>"
	if m := reRoleOf.FindStringSubmatch(text); len(m) == 2 && acceptTitle(m[1]) {
		return strings.TrimSpace(m[1])
	}

	// 5) Seniority-prefixed roles.
	if m := reSeniorRole.FindString(text); m != "" && acceptTitle(m) {
		return m
	}

	// 6) Lone short capitalized line. Weakest signal, so it only fires for a
	// line that looks like nothing else.
	for _, ln := range lines {
		t := strings.Trim(strings.TrimSpace(ln), " ,.;")
		if t == "" || !acceptTitle(t) {
			continue
		}
		if looksLikeTitleLine(t) {
			return t
		}
	}

	return ""
}

func acceptTitle(t string) bool {
	t = strings.TrimSpace(t)
	if len(t) < 3 || len(t) > 60 {
		return false
	}
	if strings.Contains(t, "@") {
		return false
	}
	return !reFieldLabel.MatchString(t)
}

// roleWords keep family 6 from mistaking a person or company line for a
// title: a lone capitalized line only counts when it names a role.
var roleWords = []string{
	"manager", "director", "head", "chief", "officer", "engineer", "developer",
	"consultant", "specialist", "coordinator", "analyst", "designer",
	"architect", "founder", "owner", "president", "executive", "assistant",
	"advisor", "sales", "marketing", "product", "account", "support",
	"recruiter", "controller", "accountant", "strategist",
}

func looksLikeTitleLine(t string) bool {
	words := strings.Fields(t)
	if len(words) < 1 || len(words) > 4 {
		return false
	}
	runes := []rune(t)
	if !unicode.IsUpper(runes[0]) {
		return false
	}
	if strings.ContainsAny(t, "0123456789:/") {
		return false
	}
	for _, w := range words {
		r := []rune(w)
		if !unicode.IsLetter(r[0]) && r[0] != '&' {
			return false
		}
	}
	low := strings.ToLower(t)
	for _, rw := range roleWords {
		if containsWord(low, rw) {
			return true
		}
	}
	return false
}

// containsWord checks for whole-word-ish match in a cheap way.
func containsWord(haystackLower, needleLower string) bool {
	idx := strings.Index(haystackLower, needleLower)
	for idx != -1 {
		leftOK := idx == 0 || boundaryByte(haystackLower[idx-1])
		rightIdx := idx + len(needleLower)
		rightOK := rightIdx == len(haystackLower) || boundaryByte(haystackLower[rightIdx])
		if leftOK && rightOK {
			return true
		}
		next := strings.Index(haystackLower[idx+1:], needleLower)
		if next == -1 {
			break
		}
		idx = idx + 1 + next
	}
	return false
}

func boundaryByte(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '-', '/', '\\', '(', ')', ',', '.', ':', ';', '|':
		return true
	default:
		return false
	}
}
