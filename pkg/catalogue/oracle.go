package catalogue

import "github.com/jihwankim/runtest-orchestrator/pkg/variant"

// Oracle answers is_disabled for a combination: true when the test is in
// the forced-skip set, when any of its skip-table conjunctions is a
// subset of the combination's tags, or when any globally-nonfunctional
// conjunction is a subset of the combination's tags.
type Oracle struct {
	Table         SkipTable
	ForcedSkip    map[string]bool
	Nonfunctional []variant.Conjunction
	DryRun        bool
	IgnoreSkips   bool
}

// IsDisabled implements the skip predicate. DryRun forces every
// combination to be treated as skipped. IgnoreSkips bypasses the
// forced-skip set and the per-test skip table, but the nonfunctional set
// still applies — some combinations are not merely known-failing, they
// are structurally meaningless.
func (o Oracle) IsDisabled(test string, c variant.Combination) bool {
	if o.DryRun {
		return true
	}
	if !o.IgnoreSkips {
		if o.ForcedSkip[test] {
			return true
		}
		for _, conj := range o.Table[test] {
			if conj.IsSubsetOf(c) {
				return true
			}
		}
	}
	for _, conj := range o.Nonfunctional {
		if conj.IsSubsetOf(c) {
			return true
		}
	}
	return false
}
