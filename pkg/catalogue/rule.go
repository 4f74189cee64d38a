// Package catalogue loads the known-failure catalogue and answers
// whether a given combination should be skipped.
package catalogue

import "regexp"

// Rule is one entry of the known-failure catalogue: a set of tests (by
// literal name or regex) that should be skipped whenever a combination's
// tags satisfy the rule's variant expression, optionally scoped to a set
// of devices and gated on environment variables. Description and Bug are
// human metadata, carried through but never interpreted.
type Rule struct {
	Tests        []string
	TestPatterns []*regexp.Regexp
	Variant      string
	Devices      []string
	EnvVars      map[string]string
	Description  string
	Bug          string
}

// rawRule mirrors the on-disk JSON shape, where Tests/TestPatterns/Devices
// may each be authored as either a single string or a list.
type rawRule struct {
	Tests        stringOrList      `json:"tests"`
	TestPatterns stringOrList      `json:"test_patterns"`
	Variant      string            `json:"variant"`
	Devices      stringOrList      `json:"devices"`
	EnvVars      map[string]string `json:"env_vars"`
	Description  string            `json:"description"`
	Bug          string            `json:"bug"`
}
