package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy plus everything the UI
// should show the operator before saving.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	lowerList := func(xs []string) []string {
		ys := trimList(xs)
		for i := range ys {
			ys[i] = strings.ToLower(ys[i])
		}
		return ys
	}

	// Owner addresses and excluded domains compare case-insensitively everywhere,
	// so store them lowercased.
	out.Owner.Emails = lowerList(out.Owner.Emails)
	out.Exclusions.Domains = lowerList(out.Exclusions.Domains)
	out.Exclusions.Names = trimList(out.Exclusions.Names)
	out.Exclusions.Phones = trimList(out.Exclusions.Phones)

	// ---- Validation rules ----

	if out.Review.TimeoutSeconds <= 0 {
		res.addErr("review.timeout_seconds must be > 0")
	} else if out.Review.TimeoutSeconds < 10 {
		res.addWarn("review.timeout_seconds is very low (%d); reviews may expire before anyone sees them.", out.Review.TimeoutSeconds)
	}

	if out.Review.AutoApprove.Enabled && out.Review.AutoApprove.MinScore <= 0 {
		res.addErr("review.auto_approve.min_score must be > 0 when auto_approve is enabled")
	}

	if len(out.Owner.Emails) == 0 {
		res.addWarn("owner.emails is empty; the engine cannot tell your own signature from a contact's.")
	}
	for _, e := range out.Owner.Emails {
		if !strings.Contains(e, "@") {
			res.addErr("owner.emails entry %q is not an email address", e)
		}
	}

	for _, d := range out.Exclusions.Domains {
		if strings.Contains(d, "@") || strings.Contains(d, " ") {
			res.addErr("exclusions.domains entry %q should be a bare domain like acme.com", d)
		}
	}
	if len(out.Exclusions.Names) > 200 {
		res.addWarn("exclusions.names has %d entries; consider tightening it for faster matching.", len(out.Exclusions.Names))
	}

	// ingest required fields if enabled (password not required here; it lives in keychain)
	if out.Ingest.Enabled {
		if strings.TrimSpace(out.Ingest.IMAPHost) == "" {
			res.addErr("ingest.imap_host is required when ingest.enabled=true")
		}
		if out.Ingest.IMAPPort == 0 {
			res.addErr("ingest.imap_port is required when ingest.enabled=true")
		}
		if strings.TrimSpace(out.Ingest.Username) == "" {
			res.addErr("ingest.username is required when ingest.enabled=true")
		}
		if strings.TrimSpace(out.Ingest.Mailbox) == "" {
			res.addErr("ingest.mailbox is required when ingest.enabled=true")
		}
		if out.Ingest.PollSeconds <= 0 {
			res.addErr("ingest.poll_seconds must be > 0 when ingest.enabled=true")
		} else if out.Ingest.PollSeconds < 30 {
			res.addWarn("ingest.poll_seconds is very low (%d) and may cause IMAP rate limits.", out.Ingest.PollSeconds)
		}
	}

	if out.Backend.Enabled {
		if strings.TrimSpace(out.Backend.BaseURL) == "" {
			res.addErr("backend.base_url is required when backend.enabled=true")
		}
		if out.Backend.PushSeconds <= 0 {
			res.addErr("backend.push_seconds must be > 0 when backend.enabled=true")
		}
	}

	// simple conflict check: excluding an owner's own domain does nothing useful
	ownerDomains := map[string]bool{}
	for _, e := range out.Owner.Emails {
		if at := strings.LastIndex(e, "@"); at >= 0 {
			ownerDomains[e[at+1:]] = true
		}
	}
	for _, d := range out.Exclusions.Domains {
		if ownerDomains[d] {
			res.addWarn("exclusions.domains contains your own domain %q; owner addresses are already skipped.", d)
		}
	}

	return out, res
}
