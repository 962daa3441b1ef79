package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Rule maps a merchant description pattern to a category name.
type Rule struct {
	Pattern  string `toml:"pattern"`
	Category string `toml:"category"`
}

type rawRules struct {
	Rule []Rule `toml:"rule"`
}

// LoadRules reads a merchant rules file:
//
//	[[rule]]
//	pattern = "woolworths"
//	category = "Groceries"
//
// Entries with an empty pattern or category are rejected.
func LoadRules(path string) ([]Rule, error) {
	var raw rawRules
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for i, r := range raw.Rule {
		r.Pattern, r.Category = strings.TrimSpace(r.Pattern), strings.TrimSpace(r.Category)
		if r.Pattern == "" || r.Category == "" {
			return nil, fmt.Errorf("%s: rule %d needs a pattern and a category", path, i+1)
		}
		raw.Rule[i] = r
	}
	return raw.Rule, nil
}

// SaveRules writes rules to path in the LoadRules format.
func SaveRules(path string, rules []Rule) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create rules dir: %w", err)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(rawRules{Rule: rules}); err != nil {
		return fmt.Errorf("encode rules: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
