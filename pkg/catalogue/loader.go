package catalogue

import (
	"fmt"
	"os"
	"regexp"

	jsoniter "github.com/json-iterator/go"

	"github.com/jihwankim/runtest-orchestrator/pkg/variant"
)

// allowedKeys guards against the "any other key is a validation error"
// rule: a rule object carrying an unrecognised field fails to load even
// though jsoniter would otherwise silently ignore it.
var allowedKeys = map[string]bool{
	"tests": true, "test_patterns": true, "variant": true,
	"devices": true, "env_vars": true, "description": true, "bug": true,
}

// Load reads a known-failure catalogue file and parses it into Rules.
// Every rule is validated structurally (unknown keys, malformed regex,
// unknown variant tags) before being returned; Load never touches the
// test universe, so unknown-test validation happens separately in
// BuildSkipTable.
func Load(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading known-failure catalogue: %w", err)
	}
	return Parse(data)
}

// Parse parses catalogue JSON bytes already read from disk (or supplied
// in tests) into Rules.
func Parse(data []byte) ([]Rule, error) {
	var rawEntries []map[string]jsoniter.RawMessage
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &rawEntries); err != nil {
		return nil, &MalformedCatalogueError{Index: -1, Reason: err.Error()}
	}

	rules := make([]Rule, 0, len(rawEntries))
	for i, entry := range rawEntries {
		for key := range entry {
			if !allowedKeys[key] {
				return nil, &MalformedCatalogueError{Index: i, Reason: fmt.Sprintf("unrecognized key %q", key)}
			}
		}

		var raw rawRule
		merged, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(entry)
		if err != nil {
			return nil, &MalformedCatalogueError{Index: i, Reason: err.Error()}
		}
		if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(merged, &raw); err != nil {
			return nil, &MalformedCatalogueError{Index: i, Reason: err.Error()}
		}

		rule := Rule{
			Tests:       []string(raw.Tests),
			Variant:     raw.Variant,
			Devices:     []string(raw.Devices),
			EnvVars:     raw.EnvVars,
			Description: raw.Description,
			Bug:         raw.Bug,
		}
		for _, pat := range raw.TestPatterns {
			re, err := regexp.Compile(pat)
			if err != nil {
				return nil, &MalformedCatalogueError{Index: i, Reason: fmt.Sprintf("invalid test_patterns regex %q: %v", pat, err)}
			}
			rule.TestPatterns = append(rule.TestPatterns, re)
		}

		if _, err := variant.ParseExpression(rule.Variant); err != nil {
			return nil, &MalformedCatalogueError{Index: i, Reason: err.Error()}
		}

		rules = append(rules, rule)
	}
	return rules, nil
}
