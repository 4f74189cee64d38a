// Package expand produces the cartesian product of selected variant
// axes for every discovered test, in deterministic order.
package expand

import (
	"github.com/jihwankim/runtest-orchestrator/pkg/discovery"
	"github.com/jihwankim/runtest-orchestrator/pkg/variant"
)

// AddressSizes maps each combining target tag to the ordered set of
// address-size tags it should be expanded across (e.g. {64,32} for a
// target that runs both primary and secondary architectures).
type AddressSizes map[variant.Tag][]variant.Tag

// Expand returns the full, deterministically-ordered sequence of
// combinations for the given tests and the resolved axis selection.
// Iteration order is tests outermost, then targets, then the remaining
// axes in variant.DispatchAxes order, then address size innermost. jvm is
// segregated: it never combines with any other axis and carries no
// address-size suffix.
func Expand(tests []string, sel variant.Selection, addrSizes AddressSizes) []variant.Combination {
	combining, hasJVM := variant.SplitTargets(sel[variant.AxisTarget])

	var out []variant.Combination
	for _, test := range tests {
		if hasJVM {
			out = append(out, variant.Combination{
				Test:   test,
				Target: variant.TagTargetJVM,
			})
		}
		for _, target := range combining {
			sizes := addrSizes[target]
			for _, c := range expandAxes(test, target, sel) {
				for _, size := range sizes {
					cc := c
					cc.AddressSize = size
					out = append(out, cc)
				}
			}
		}
	}
	return out
}

// expandAxes produces the cartesian product over every non-target,
// non-address-size axis, in variant.DispatchAxes order, for one (test,
// target) pair. The AddressSize field is left unset; Expand fills it in.
func expandAxes(test string, target variant.Tag, sel variant.Selection) []variant.Combination {
	base := variant.Combination{Test: test, Target: target}
	combos := []variant.Combination{base}

	for _, axis := range variant.DispatchAxes {
		tags := sel[axis]
		if len(tags) == 0 {
			continue
		}
		var next []variant.Combination
		for _, c := range combos {
			for _, tag := range tags {
				cc := c
				assign(&cc, axis, tag)
				next = append(next, cc)
			}
		}
		combos = next
	}
	return combos
}

func assign(c *variant.Combination, axis variant.Axis, tag variant.Tag) {
	switch axis {
	case variant.AxisRun:
		c.Run = tag
	case variant.AxisPrebuild:
		c.Prebuild = tag
	case variant.AxisCompiler:
		c.Compiler = tag
	case variant.AxisRelocate:
		c.Relocate = tag
	case variant.AxisTrace:
		c.Trace = tag
	case variant.AxisGC:
		c.GC = tag
	case variant.AxisJNI:
		c.JNI = tag
	case variant.AxisImage:
		c.Image = tag
	case variant.AxisDebuggable:
		c.Debuggable = tag
	case variant.AxisJVMTI:
		c.JVMTI = tag
	}
}

// PreCount computes the exact combination count without materialising
// the sequence: (cardinalities of the combining axes product) ×
// (combined targets × Σ address sizes per target) + (jvm targets ×
// tests). This is the progress denominator.
func PreCount(tests []string, sel variant.Selection, addrSizes AddressSizes) int {
	combining, hasJVM := variant.SplitTargets(sel[variant.AxisTarget])

	axisProduct := 1
	for _, axis := range variant.DispatchAxes {
		if n := len(sel[axis]); n > 0 {
			axisProduct *= n
		}
	}

	combiningTotal := 0
	for _, target := range combining {
		combiningTotal += len(addrSizes[target])
	}

	total := len(tests) * axisProduct * combiningTotal
	if hasJVM {
		total += len(tests)
	}
	return total
}

// AddressSizesFromEnvironment derives the per-target address-size
// expansion from the probed Environment record: the primary suffix
// always participates, and the secondary architecture's suffix joins it
// only when On2ndArchRun is set and a secondary suffix was actually
// derived (single-arch builds never produce one).
func AddressSizesFromEnvironment(env *discovery.Environment) AddressSizes {
	return AddressSizes{
		variant.TagTargetHost:   suffixTags(env.HostSuffix, env.Host2ndSuffix, env.On2ndArchRun),
		variant.TagTargetTarget: suffixTags(env.TargetSuffix, env.Target2ndSuffix, env.On2ndArchRun),
	}
}

func suffixTags(primary, secondary string, include2nd bool) []variant.Tag {
	tags := []variant.Tag{tagForSuffix(primary)}
	if include2nd && secondary != "" {
		tags = append(tags, tagForSuffix(secondary))
	}
	return tags
}

func tagForSuffix(suffix string) variant.Tag {
	if suffix == "32" {
		return variant.TagAddress32
	}
	return variant.TagAddress64
}
