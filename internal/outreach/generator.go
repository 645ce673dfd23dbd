package outreach

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/leadgen-my/leadgen-cli/internal/model"
)

// Generator produces email generations from leads and templates.
type Generator struct {
	templates  *Templates
	senderName string
	now        func() time.Time
}

// NewGenerator builds a Generator. senderName fills the {sender_name}
// template variable.
func NewGenerator(templates *Templates, senderName string) *Generator {
	return &Generator{
		templates:  templates,
		senderName: senderName,
		now:        time.Now,
	}
}

// Generate renders the named template for the lead. An unknown template
// name falls back to the default template with a warning. Entries in custom
// override the derived variables of the same name.
func (g *Generator) Generate(lead model.Lead, templateName string, custom map[string]string) (model.EmailGeneration, error) {
	if lead.Email == "" {
		return model.EmailGeneration{}, eris.Errorf("outreach: lead %s has no email address", lead.ID)
	}

	name := templateName
	if name == "" {
		name = DefaultTemplateName
	}
	tpl, ok := g.templates.Get(name)
	if !ok {
		zap.L().Warn("outreach: unknown template, using default",
			zap.String("template", name))
		name = DefaultTemplateName
		tpl, ok = g.templates.Get(name)
		if !ok {
			return model.EmailGeneration{}, eris.New("outreach: default template not found")
		}
	}

	vars := g.variables(lead)
	for k, v := range custom {
		vars[k] = v
	}

	now := g.now().UTC()
	return model.EmailGeneration{
		LeadID:    lead.ID,
		Template:  name,
		Subject:   tidy(fill(tpl.Subject, vars)),
		Body:      tidy(fill(tpl.Body, vars)),
		Recipient: lead.Email,
		CreatedAt: now,
	}, nil
}

// variables derives the template variable map from a lead, with neutral
// defaults for the fields outreach copy cannot go without.
func (g *Generator) variables(lead model.Lead) map[string]string {
	vars := map[string]string{
		"organization": lead.Organization,
		"person_name":  lead.PersonName,
		"city":         lead.City,
		"industry":     lead.Industry,
		"sender_name":  g.senderName,
		"current_date": g.now().Format("January 2, 2006"),
	}
	if vars["organization"] == "" {
		vars["organization"] = "your organization"
	}
	if vars["person_name"] == "" {
		vars["person_name"] = "Your Team"
	}
	if vars["city"] == "" {
		vars["city"] = "Malaysia"
	}
	if vars["industry"] == "" {
		vars["industry"] = "your industry"
	}

	vars["industry_sentence"] = industrySentence(lead)
	vars["rating_sentence"] = ratingSentence(lead)
	vars["location_sentence"] = locationSentence(lead)
	vars["social_sentence"] = socialSentence(lead)
	return vars
}

var (
	multiSpaceRe = regexp.MustCompile(` {2,}`)
	lineEdgeRe   = regexp.MustCompile(`(?m)^ +| +$`)
)

// tidy collapses the gaps left by empty personalization sentences.
func tidy(s string) string {
	s = multiSpaceRe.ReplaceAllString(s, " ")
	s = lineEdgeRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func industrySentence(lead model.Lead) string {
	if lead.Industry == "" {
		return ""
	}
	return fmt.Sprintf("Your presence in the %s sector caught our attention.",
		strings.ToLower(lead.Industry))
}

func ratingSentence(lead model.Lead) string {
	if lead.Rating < 4.0 {
		return ""
	}
	return fmt.Sprintf("Your %.1f-star rating speaks to the quality of your service.", lead.Rating)
}

func locationSentence(lead model.Lead) string {
	switch {
	case lead.City != "" && lead.State != "":
		return fmt.Sprintf("It is great to see a thriving business in %s, %s.", lead.City, lead.State)
	case lead.City != "":
		return fmt.Sprintf("It is great to see a thriving business in %s.", lead.City)
	default:
		return ""
	}
}

func socialSentence(lead model.Lead) string {
	platforms := make([]string, 0, len(lead.SocialMedia))
	for platform, handle := range lead.SocialMedia {
		if handle != "" {
			platforms = append(platforms, platform)
		}
	}
	if len(platforms) == 0 {
		return ""
	}
	sort.Strings(platforms)
	return fmt.Sprintf("We also noticed your active presence on %s.",
		strings.Join(platforms, " and "))
}
