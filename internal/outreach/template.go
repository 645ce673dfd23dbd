// Package outreach generates and sends templated outreach emails for
// leads: template storage, personalization, per-lead generation policy,
// tier targeting, and rate-limited SMTP delivery.
package outreach

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Template is one outreach email template. Subject and body may carry
// {placeholder} variables filled at generation time.
type Template struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Templates is a named template store.
type Templates struct {
	byName map[string]Template
}

// DefaultTemplateName is used when a requested template does not exist.
const DefaultTemplateName = "default"

// DefaultTemplates returns the built-in template set: default, government,
// university, lead_followup, and exec_tone (the high-priority targeting
// tier's template).
func DefaultTemplates() *Templates {
	return &Templates{byName: map[string]Template{
		"default": {
			Subject: "Exploring Potential Collaboration with {organization}",
			Body: "Dear {person_name},\n\n" +
				"I came across {organization} and was impressed by your work in {industry}. " +
				"{industry_sentence} {rating_sentence} {location_sentence} {social_sentence}\n\n" +
				"I would welcome the chance to discuss how we could work together. " +
				"Would you be open to a brief call in the coming weeks?\n\n" +
				"Best regards,\n{sender_name}",
		},
		"government": {
			Subject: "Proposal for Partnership with {organization}",
			Body: "Dear {person_name},\n\n" +
				"I am writing to {organization} regarding potential collaboration on digital " +
				"initiatives. {location_sentence}\n\n" +
				"We have worked with several Malaysian public-sector organizations and would " +
				"value the opportunity to present a proposal suited to your agency's mandate.\n\n" +
				"Yours sincerely,\n{sender_name}",
		},
		"university": {
			Subject: "Research Collaboration Opportunity with {organization}",
			Body: "Dear {person_name},\n\n" +
				"I am reaching out to {organization} to explore research and industry " +
				"collaboration opportunities. {industry_sentence}\n\n" +
				"We would be glad to discuss joint projects, internships, or knowledge-transfer " +
				"programmes at your convenience.\n\n" +
				"Yours sincerely,\n{sender_name}",
		},
		"lead_followup": {
			Subject: "Following up about {organization}",
			Body: "Dear {person_name},\n\n" +
				"I hope this email finds you well. I came across {organization} while researching " +
				"{industry} companies in Malaysia.\n\n" +
				"I would love to learn more about your services and explore potential collaboration " +
				"opportunities. Would you be available for a brief call or meeting to discuss this " +
				"further?\n\n" +
				"Best regards,\n{sender_name}",
		},
		"exec_tone": {
			Subject: "Partnership opportunity for {organization}",
			Body: "Dear {person_name},\n\n" +
				"{organization} stands out among {industry} businesses in Malaysia. " +
				"{rating_sentence} {social_sentence}\n\n" +
				"We partner with a small number of high-performing companies each quarter. " +
				"I would value fifteen minutes of your time to explore whether there is a fit.\n\n" +
				"Best regards,\n{sender_name}",
		},
	}}
}

// LoadDir overlays JSON template files from dir onto the store: each
// <name>.json file with subject and body keys adds or replaces the template
// of that name. Unreadable files are skipped with a warning.
func (t *Templates) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return eris.Wrapf(err, "outreach: read template dir %s", dir)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".json")

		raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			zap.L().Warn("outreach: skipping unreadable template",
				zap.String("file", entry.Name()),
				zap.Error(err))
			continue
		}
		var tpl Template
		if err := json.Unmarshal(raw, &tpl); err != nil || tpl.Subject == "" || tpl.Body == "" {
			zap.L().Warn("outreach: skipping invalid template",
				zap.String("file", entry.Name()),
				zap.Error(err))
			continue
		}
		t.byName[name] = tpl
	}
	return nil
}

// Get returns the template and whether it exists.
func (t *Templates) Get(name string) (Template, bool) {
	tpl, ok := t.byName[name]
	return tpl, ok
}

// Names returns the available template names, sorted.
func (t *Templates) Names() []string {
	names := make([]string, 0, len(t.byName))
	for name := range t.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var placeholderRe = regexp.MustCompile(`\{([a-z_]+)\}`)

// fill substitutes {placeholder} variables into text. A placeholder with no
// variable leaves the whole text unchanged, with a warning, so a template
// typo never produces a half-filled email.
func fill(text string, vars map[string]string) string {
	missing := ""
	out := placeholderRe.ReplaceAllStringFunc(text, func(m string) string {
		key := m[1 : len(m)-1]
		val, ok := vars[key]
		if !ok {
			missing = key
			return m
		}
		return val
	})
	if missing != "" {
		zap.L().Warn("outreach: template variable missing", zap.String("variable", missing))
		return text
	}
	return out
}
