// Package extract implements the heuristic extraction core: candidate name
// recognition, contact pattern matching, and proximity-based attribution.
package extract

import (
	_ "embed"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed rules/names.yaml
var defaultRulesYAML []byte

// RuleSet holds the name-validation and title-classification vocabularies.
// The tables are data assets, swappable without touching pipeline logic.
type RuleSet struct {
	FirstNames []string            `yaml:"first_names"`
	Surnames   []string            `yaml:"surnames"`
	Deny       map[string][]string `yaml:"deny"`
	Titles     TitleRules          `yaml:"titles"`

	firstNameSet map[string]struct{}
	surnameSet   map[string]struct{}
	denySet      map[string]struct{}
}

// TitleRules lists title patterns per seniority tier.
type TitleRules struct {
	Tier1 []string `yaml:"tier_1"`
	Tier2 []string `yaml:"tier_2"`
	Tier3 []string `yaml:"tier_3"`
}

// DefaultRules parses the embedded rule tables.
func DefaultRules() (*RuleSet, error) {
	return parseRules(defaultRulesYAML)
}

// LoadRules reads rule tables from a YAML file. An empty path falls back to
// the embedded defaults.
func LoadRules(path string) (*RuleSet, error) {
	if path == "" {
		return DefaultRules()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "extract: read rules %s", path)
	}
	return parseRules(data)
}

func parseRules(data []byte) (*RuleSet, error) {
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, eris.Wrap(err, "extract: parse rules")
	}
	if len(rs.FirstNames) == 0 || len(rs.Surnames) == 0 {
		return nil, eris.New("extract: rules missing name vocabularies")
	}
	rs.index()
	return &rs, nil
}

// index builds lowercase lookup sets from the parsed lists.
func (rs *RuleSet) index() {
	rs.firstNameSet = toSet(rs.FirstNames)
	rs.surnameSet = toSet(rs.Surnames)
	rs.denySet = make(map[string]struct{})
	for _, words := range rs.Deny {
		for _, w := range words {
			rs.denySet[strings.ToLower(w)] = struct{}{}
		}
	}
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}

// IsKnownFirstName reports whether word is in the curated first-name list.
func (rs *RuleSet) IsKnownFirstName(word string) bool {
	_, ok := rs.firstNameSet[strings.ToLower(word)]
	return ok
}

// IsKnownSurname reports whether word is in the curated surname list.
func (rs *RuleSet) IsKnownSurname(word string) bool {
	_, ok := rs.surnameSet[strings.ToLower(word)]
	return ok
}

// IsDenied reports whether word appears in any denylist group.
func (rs *RuleSet) IsDenied(word string) bool {
	_, ok := rs.denySet[strings.ToLower(word)]
	return ok
}
