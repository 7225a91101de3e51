package classify

import (
	"regexp"
	"strings"

	"github.com/savegress/riskwatch/internal/config"
	"github.com/savegress/riskwatch/pkg/models"
)

// TypeRule is a single independent classification rule. Rules are
// evaluated uniformly in declaration order; output order matches.
type TypeRule struct {
	Tag   models.EntityType
	Match func(profile *models.EntityProfile) bool
}

// Classifier maps an enriched profile to one or more entity type tags.
// Tags are not mutually exclusive.
type Classifier struct {
	cfg     config.ClassificationConfig
	rules   []TypeRule
	person  *regexp.Regexp
	lowJuri map[string]bool
}

// NewClassifier creates a classifier with the configured rule table
func NewClassifier(cfg config.ClassificationConfig) *Classifier {
	c := &Classifier{
		cfg:     cfg,
		person:  regexp.MustCompile(`^[A-Z][a-z]+(?:\s+[A-Z]\.?)?\s+[A-Z][a-z]+$`),
		lowJuri: make(map[string]bool),
	}
	for _, j := range cfg.LowTransparencyJurisdictions {
		c.lowJuri[strings.ToUpper(j)] = true
	}

	c.rules = []TypeRule{
		{Tag: models.EntityTypeShellCompany, Match: c.matchShellCompany},
		{Tag: models.EntityTypeNonProfit, Match: c.matchNonProfit},
		{Tag: models.EntityTypeFinancialInstitution, Match: c.matchFinancialInstitution},
		{Tag: models.EntityTypeGovernmentAgency, Match: c.matchGovernmentAgency},
		{Tag: models.EntityTypeCorporation, Match: c.matchCorporation},
		{Tag: models.EntityTypeIndividual, Match: c.matchIndividual},
	}
	return c
}

// Classify evaluates every rule against the profile. When no rule fires
// the entity is tagged Unknown.
func (c *Classifier) Classify(profile *models.EntityProfile) []models.EntityType {
	var tags []models.EntityType
	for _, rule := range c.rules {
		if rule.Match(profile) {
			tags = append(tags, rule.Tag)
		}
	}
	if len(tags) == 0 {
		tags = append(tags, models.EntityTypeUnknown)
	}
	return tags
}

func (c *Classifier) matchShellCompany(p *models.EntityProfile) bool {
	return c.lowJuri[strings.ToUpper(p.Jurisdiction)] &&
		p.ReputationScore < c.cfg.ShellReputationCeiling
}

func (c *Classifier) matchNonProfit(p *models.EntityProfile) bool {
	return matchesKeyword(p.Name, c.cfg.NonProfitKeywords)
}

func (c *Classifier) matchFinancialInstitution(p *models.EntityProfile) bool {
	return matchesKeyword(p.Name, c.cfg.FinancialKeywords)
}

func (c *Classifier) matchGovernmentAgency(p *models.EntityProfile) bool {
	return matchesKeyword(p.Name, c.cfg.GovernmentKeywords)
}

func (c *Classifier) matchCorporation(p *models.EntityProfile) bool {
	words := nameWords(p.Name)
	if len(words) == 0 {
		return false
	}
	last := words[len(words)-1]
	for _, suffix := range c.cfg.CorporateSuffixes {
		if last == strings.ToLower(strings.TrimRight(suffix, ".")) {
			return true
		}
	}
	return false
}

// matchIndividual fires on person-shaped names that carry no
// organizational markers
func (c *Classifier) matchIndividual(p *models.EntityProfile) bool {
	if !c.person.MatchString(strings.TrimSpace(p.Name)) {
		return false
	}
	if c.matchCorporation(p) || c.matchNonProfit(p) ||
		c.matchFinancialInstitution(p) || c.matchGovernmentAgency(p) {
		return false
	}
	return true
}

// matchesKeyword checks single-word keywords against name words and
// multi-word keywords as substrings of the normalized name
func matchesKeyword(name string, keywords []string) bool {
	normalized := strings.Join(nameWords(name), " ")
	for _, kw := range keywords {
		kw = strings.ToLower(kw)
		if strings.ContainsAny(kw, " -") {
			if strings.Contains(normalized, kw) {
				return true
			}
			continue
		}
		for _, w := range strings.Fields(normalized) {
			if w == kw {
				return true
			}
		}
	}
	return false
}

func nameWords(name string) []string {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(name)) {
		if w = strings.Trim(w, ".,&'"); w != "" {
			words = append(words, w)
		}
	}
	return words
}
