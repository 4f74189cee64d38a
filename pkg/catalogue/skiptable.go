package catalogue

import (
	"github.com/jihwankim/runtest-orchestrator/pkg/variant"
)

// SkipTable maps a test name to the set of conjunctive variant clauses
// that, if a subset of a combination's tags, trigger a skip for that
// test.
type SkipTable map[string][]variant.Conjunction

// BuildOptions controls how catalogue rules are resolved against the
// discovered test universe.
type BuildOptions struct {
	// KnownTests is the full set of discovered test names; a rule
	// referencing anything outside it is an UnknownTestError unless
	// RunningUnderBuildShard is set.
	KnownTests map[string]bool
	// Device is the name of the currently targeted device, used to
	// gate rules that list specific devices.
	Device string
	// Env supplies the environment variables checked against a rule's
	// env_vars gate (normally os.Environ, injectable for tests).
	Env map[string]string
	// RunningUnderBuildShard silences UnknownTestError, since a build
	// shard only ever sees a subset of the full test universe.
	RunningUnderBuildShard bool
}

// BuildSkipTable evaluates every rule against the environment described
// by opts and unions the resulting conjunctions into a SkipTable.
func BuildSkipTable(rules []Rule, opts BuildOptions) (SkipTable, error) {
	table := make(SkipTable)

	for i, rule := range rules {
		if len(rule.Devices) > 0 && !contains(rule.Devices, opts.Device) {
			continue
		}
		if !envVarsMatch(rule.EnvVars, opts.Env) {
			continue
		}

		expr, err := variant.ParseExpression(rule.Variant)
		if err != nil {
			return nil, &MalformedCatalogueError{Index: i, Reason: err.Error()}
		}
		conjunctions := expr.Conjunctions()
		if len(rule.Devices) > 0 {
			for j, c := range conjunctions {
				conjunctions[j] = c.WithTag(variant.TagTargetTarget)
			}
		}

		tests, err := resolveTests(rule, opts, i)
		if err != nil {
			return nil, err
		}
		for _, test := range tests {
			table[test] = append(table[test], conjunctions...)
		}
	}
	return table, nil
}

func resolveTests(rule Rule, opts BuildOptions, ruleIdx int) ([]string, error) {
	seen := make(map[string]bool, len(rule.Tests))
	var out []string
	add := func(name string) error {
		if seen[name] {
			return nil
		}
		if opts.KnownTests != nil && !opts.KnownTests[name] {
			if opts.RunningUnderBuildShard {
				return nil
			}
			return &UnknownTestError{Test: name, Rule: ruleIdx}
		}
		seen[name] = true
		out = append(out, name)
		return nil
	}

	for _, t := range rule.Tests {
		if err := add(t); err != nil {
			return nil, err
		}
	}
	for knownTest := range opts.KnownTests {
		for _, pat := range rule.TestPatterns {
			if pat.MatchString(knownTest) {
				if err := add(knownTest); err != nil {
					return nil, err
				}
				break
			}
		}
	}
	return out, nil
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}

func envVarsMatch(required map[string]string, actual map[string]string) bool {
	for k, v := range required {
		if actual[k] != v {
			return false
		}
	}
	return true
}
