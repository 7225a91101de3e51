package extraction

import (
	"regexp"
	"sort"
	"strings"

	"github.com/savegress/riskwatch/pkg/models"
)

// capitalized word, allowing internal punctuation common in company names
const word = `[A-Z][A-Za-z0-9&.'-]*`

// Extractor finds entity names in free-text transaction descriptions
type Extractor struct {
	phrasePatterns []*regexp.Regexp
	properNoun     *regexp.Regexp
	stopwords      map[string]bool
}

// NewExtractor creates an extractor with the built-in patterns
func NewExtractor() *Extractor {
	nameSeq := word + `(?:\s+` + word + `)*`

	phrases := []string{
		`\b(?:[Pp]ayment to|[Tt]ransfer to|[Ww]ire to|[Ii]nvoice from)\s+(` + nameSeq + `)`,
		`\b(?:[Oo]n behalf of)\s+(` + nameSeq + `)`,
		`\b(?:[Ff]rom|[Tt]o|[Vv]ia)\s+(` + nameSeq + `)`,
	}

	e := &Extractor{
		properNoun: regexp.MustCompile(`\b(` + word + `(?:\s+` + word + `)+)\b`),
		stopwords: map[string]bool{
			"payment": true, "transfer": true, "invoice": true, "wire": true,
			"service": true, "consulting": true, "fee": true, "fees": true,
			"from": true, "to": true, "via": true, "for": true, "of": true,
			"the": true, "and": true, "on": true, "behalf": true,
			"usd": true, "eur": true, "gbp": true, "jpy": true, "chf": true,
		},
	}
	for _, p := range phrases {
		e.phrasePatterns = append(e.phrasePatterns, regexp.MustCompile(p))
	}
	return e
}

type candidate struct {
	name  string
	start int
	end   int
}

// Extract returns the distinct entities mentioned in text, ordered by
// first mention. Duplicate mentions are deduplicated case-insensitively,
// keeping the first-seen casing. An empty result is not an error.
func (e *Extractor) Extract(text string) []models.ExtractedEntity {
	var candidates []candidate

	for _, p := range e.phrasePatterns {
		for _, m := range p.FindAllStringSubmatchIndex(text, -1) {
			candidates = e.appendCandidate(candidates, text, m[2], m[3])
		}
	}
	for _, m := range e.properNoun.FindAllStringSubmatchIndex(text, -1) {
		candidates = e.appendCandidate(candidates, text, m[2], m[3])
	}

	// First mention wins per normalized name
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].start < candidates[j].start
	})

	seen := make(map[string]bool)
	var entities []models.ExtractedEntity
	for _, c := range candidates {
		key := normalizeKey(c.name)
		if seen[key] {
			continue
		}
		seen[key] = true
		entities = append(entities, models.ExtractedEntity{
			Name:  c.name,
			Start: c.start,
			End:   c.end,
		})
	}
	return entities
}

func (e *Extractor) appendCandidate(candidates []candidate, text string, start, end int) []candidate {
	if start < 0 || end <= start {
		return candidates
	}
	name := strings.TrimRight(text[start:end], ".,;:'- ")
	if name == "" {
		return candidates
	}
	if !e.plausibleName(name) {
		return candidates
	}
	return append(candidates, candidate{name: name, start: start, end: start + len(name)})
}

// plausibleName rejects captures made up entirely of transaction
// vocabulary ("Service Fee", "Payment") that are not entity names
func (e *Extractor) plausibleName(name string) bool {
	words := strings.Fields(name)
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		if !e.stopwords[strings.ToLower(strings.Trim(w, ".,"))] {
			return true
		}
	}
	return false
}

func normalizeKey(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
