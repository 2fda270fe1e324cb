package extract

import (
	"strings"

	"contactpilot-engine/internal/config"
)

// Default completeness weights when the config carries none.
var defaultWeights = config.FieldWeights{
	Name:     30,
	Company:  20,
	Title:    15,
	Phone:    20,
	LinkedIn: 15,
}

// Score rates how complete and trustworthy an extraction is, so the
// auto-approve policy has something to gate on. Field presence contributes
// per-field weights; configured title rules add their own weight when any of
// their terms hit the extracted title.
func Score(cfg config.Config, f Fields) (score int, tags []string) {
	w := cfg.Scoring.FieldWeights
	if w == (config.FieldWeights{}) {
		w = defaultWeights
	}

	if f.FirstName != "" && f.LastName != "" {
		score += w.Name
		tags = append(tags, "name")
	} else if f.FirstName != "" {
		score += w.Name / 2
		tags = append(tags, "name_partial")
	}
	if f.Company != "" {
		score += w.Company
		tags = append(tags, "company")
	}
	if f.JobTitle != "" {
		score += w.Title
		tags = append(tags, "title")
	}
	if f.Phone != "" {
		score += w.Phone
		tags = append(tags, "phone")
	}
	if f.LinkedInURL != "" && !f.LinkedInGuessed {
		score += w.LinkedIn
		tags = append(tags, "linkedin")
	}

	title := strings.ToLower(f.JobTitle)
	for _, r := range cfg.Scoring.TitleRules {
		for _, needle := range r.Any {
			n := strings.ToLower(strings.TrimSpace(needle))
			if n == "" {
				continue
			}
			if strings.Contains(title, n) {
				score += r.Weight
				tags = append(tags, r.Tag)
				break
			}
		}
	}

	return score, tags
}
