package strategy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type rulesFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads an ordered rule list from a yaml file:
//
//	rules:
//	  - strategy: emergency
//	    keywords: ["emergency", "chest pain"]
//	  - strategy: search_and_reason
//	    keywords: ["latest"]
//
// File order is precedence order.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}

	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rules file: %w", err)
	}
	if len(f.Rules) == 0 {
		return nil, fmt.Errorf("rules file %s contains no rules", path)
	}

	for i, r := range f.Rules {
		switch r.Strategy {
		case Emergency, SearchAndReason, ReasonOnly:
		default:
			return nil, fmt.Errorf("rules file %s: rule %d has unknown strategy %q", path, i, r.Strategy)
		}
		if len(r.Keywords) == 0 {
			return nil, fmt.Errorf("rules file %s: rule %d (%s) has no keywords", path, i, r.Strategy)
		}
	}

	return f.Rules, nil
}

// RulesFromPath loads rules from path when set, otherwise the defaults.
func RulesFromPath(path string) ([]Rule, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	return LoadRules(path)
}
