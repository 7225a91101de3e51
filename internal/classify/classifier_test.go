package classify

import (
	"testing"

	"github.com/savegress/riskwatch/internal/config"
	"github.com/savegress/riskwatch/pkg/models"
)

func newTestClassifier() *Classifier {
	return NewClassifier(config.Default().Classification)
}

func hasTag(tags []models.EntityType, want models.EntityType) bool {
	for _, tag := range tags {
		if tag == want {
			return true
		}
	}
	return false
}

func TestClassifier_Classify_ShellCompany(t *testing.T) {
	c := newTestClassifier()
	profile := &models.EntityProfile{
		Name:            "Sunrise Trading",
		Jurisdiction:    "IR",
		ReputationScore: -0.5,
	}

	tags := c.Classify(profile)

	if !hasTag(tags, models.EntityTypeShellCompany) {
		t.Errorf("expected Shell Company tag, got %v", tags)
	}
}

func TestClassifier_Classify_ShellCompany_RequiresPoorReputation(t *testing.T) {
	c := newTestClassifier()
	profile := &models.EntityProfile{
		Name:            "Sunrise Trading",
		Jurisdiction:    "IR",
		ReputationScore: 0.4,
	}

	if tags := c.Classify(profile); hasTag(tags, models.EntityTypeShellCompany) {
		t.Errorf("did not expect Shell Company tag for positive reputation, got %v", tags)
	}
}

func TestClassifier_Classify_ShellCompany_RequiresJurisdiction(t *testing.T) {
	c := newTestClassifier()
	profile := &models.EntityProfile{
		Name:            "Sunrise Trading",
		Jurisdiction:    "US",
		ReputationScore: -0.9,
	}

	if tags := c.Classify(profile); hasTag(tags, models.EntityTypeShellCompany) {
		t.Errorf("did not expect Shell Company tag for US jurisdiction, got %v", tags)
	}
}

func TestClassifier_Classify_KeywordRules(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		name string
		want models.EntityType
	}{
		{"Children Hope Foundation", models.EntityTypeNonProfit},
		{"First National Bank", models.EntityTypeFinancialInstitution},
		{"Ministry of Trade", models.EntityTypeGovernmentAgency},
		{"Acme Corp", models.EntityTypeCorporation},
		{"Meridian Ltd", models.EntityTypeCorporation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := &models.EntityProfile{Name: tt.name, Jurisdiction: "US", ReputationScore: 0.5}
			tags := c.Classify(profile)
			if !hasTag(tags, tt.want) {
				t.Errorf("expected %s for %q, got %v", tt.want, tt.name, tags)
			}
		})
	}
}

func TestClassifier_Classify_Individual(t *testing.T) {
	c := newTestClassifier()

	for _, name := range []string{"John Smith", "Maria Q. Alvarez"} {
		profile := &models.EntityProfile{Name: name, Jurisdiction: "US", ReputationScore: 0.5}
		tags := c.Classify(profile)
		if !hasTag(tags, models.EntityTypeIndividual) {
			t.Errorf("expected Individual for %q, got %v", name, tags)
		}
	}
}

func TestClassifier_Classify_PersonShapedOrgName(t *testing.T) {
	c := newTestClassifier()

	// Person-shaped but carries a financial keyword
	profile := &models.EntityProfile{Name: "Sterling Bank", Jurisdiction: "US", ReputationScore: 0.5}
	tags := c.Classify(profile)

	if hasTag(tags, models.EntityTypeIndividual) {
		t.Errorf("did not expect Individual tag, got %v", tags)
	}
	if !hasTag(tags, models.EntityTypeFinancialInstitution) {
		t.Errorf("expected Financial Institution tag, got %v", tags)
	}
}

func TestClassifier_Classify_Unknown(t *testing.T) {
	c := newTestClassifier()
	profile := &models.EntityProfile{Name: "XQ-77", Jurisdiction: "US", ReputationScore: 0.5}

	tags := c.Classify(profile)

	if len(tags) != 1 || tags[0] != models.EntityTypeUnknown {
		t.Errorf("expected only Unknown, got %v", tags)
	}
}

func TestClassifier_Classify_MultipleTagsInRuleOrder(t *testing.T) {
	c := newTestClassifier()
	profile := &models.EntityProfile{
		Name:            "Global Trust Bank Inc",
		Jurisdiction:    "RU",
		ReputationScore: -0.9,
	}

	tags := c.Classify(profile)

	want := []models.EntityType{
		models.EntityTypeShellCompany,
		models.EntityTypeNonProfit,
		models.EntityTypeFinancialInstitution,
		models.EntityTypeCorporation,
	}
	if len(tags) != len(want) {
		t.Fatalf("expected %v, got %v", want, tags)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Errorf("tag %d: expected %s, got %s", i, want[i], tags[i])
		}
	}
}
