package care

import (
	_ "embed"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// Rule appends Bullets to a plan when any of Keywords occurs in the search
// text.  Keywords are matched as lower-case substrings.
type Rule struct {
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
	Bullets  []string `yaml:"bullets" json:"bullets"`
}

// Matches reports whether any keyword is a substring of pool.  pool must
// already be lower-cased.
func (r Rule) Matches(pool string) bool {
	for _, k := range r.Keywords {
		if k != "" && strings.Contains(pool, k) {
			return true
		}
	}
	return false
}

type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// ParseRules decodes an ordered rule table from YAML.
func ParseRules(data []byte) ([]Rule, error) {
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "care: decode rules")
	}
	if len(f.Rules) == 0 {
		return nil, eris.New("care: rule table is empty")
	}
	for i := range f.Rules {
		r := &f.Rules[i]
		if len(r.Keywords) == 0 || len(r.Bullets) == 0 {
			return nil, eris.Errorf("care: rule %q needs keywords and bullets", r.Name)
		}
		for j, k := range r.Keywords {
			r.Keywords[j] = strings.ToLower(strings.TrimSpace(k))
		}
	}
	return f.Rules, nil
}

// LoadRules reads a rule table from a YAML file.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "care: read rules %s", path)
	}
	return ParseRules(data)
}

// DefaultRules returns the built-in rule table.
func DefaultRules() []Rule {
	rules, err := ParseRules(defaultRulesYAML)
	if err != nil {
		panic(err)
	}
	return rules
}
