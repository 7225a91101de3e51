package enrichment

import (
	"strings"

	"github.com/savegress/riskwatch/internal/config"
)

// SanctionsList screens entity names against the configured sanctions
// entries. Matching is by normalized name: exact, alias, then substring.
type SanctionsList struct {
	entries []config.SanctionsEntry
	index   map[string]int // normalized name/alias -> entry position
}

// NewSanctionsList builds a screening index over the configured entries
func NewSanctionsList(entries []config.SanctionsEntry) *SanctionsList {
	l := &SanctionsList{
		entries: entries,
		index:   make(map[string]int),
	}
	for i, entry := range entries {
		l.index[Normalize(entry.Name)] = i
		for _, alias := range entry.Aliases {
			l.index[Normalize(alias)] = i
		}
	}
	return l
}

// Match screens a name against the list. The name is normalized before
// matching so casing and spacing do not affect screening.
func (l *SanctionsList) Match(name string) (config.SanctionsEntry, bool) {
	normalized := Normalize(name)
	if normalized == "" {
		return config.SanctionsEntry{}, false
	}

	if i, ok := l.index[normalized]; ok {
		return l.entries[i], true
	}

	// Substring fallback catches suffixed variants of listed names
	for i, entry := range l.entries {
		entryName := Normalize(entry.Name)
		if strings.Contains(normalized, entryName) || strings.Contains(entryName, normalized) {
			return l.entries[i], true
		}
	}

	return config.SanctionsEntry{}, false
}

// Size returns the number of configured entries
func (l *SanctionsList) Size() int {
	return len(l.entries)
}
