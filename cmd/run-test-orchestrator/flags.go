package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jihwankim/runtest-orchestrator/pkg/variant"
)

// registerAxisFlags adds a --<tag> flag for every tag and an
// --all-<axis> flag for every axis in the catalogue, implementing the
// per-axis argument surface of spec §4.6.
func registerAxisFlags(cmd *cobra.Command) {
	for _, axis := range variant.AllAxes {
		cmd.Flags().Bool(fmt.Sprintf("all-%s", axis), false, fmt.Sprintf("select every %s variant", axis))
		for _, tag := range variant.TagSet[axis] {
			cmd.Flags().Bool(string(tag), false, fmt.Sprintf("add %s=%s to the selected variants", axis, tag))
		}
	}
}

// selectionFromFlags reads every --<tag>/--all-<axis> flag and returns
// the user's partial Selection; an axis the user never touched is
// simply absent, so variant.Resolve falls back to its default subset.
func selectionFromFlags(cmd *cobra.Command) variant.Selection {
	sel := make(variant.Selection)
	for _, axis := range variant.AllAxes {
		if all, _ := cmd.Flags().GetBool(fmt.Sprintf("all-%s", axis)); all {
			sel[axis] = append([]variant.Tag(nil), variant.TagSet[axis]...)
			continue
		}
		var tags []variant.Tag
		for _, tag := range variant.TagSet[axis] {
			if on, _ := cmd.Flags().GetBool(string(tag)); on {
				tags = append(tags, tag)
			}
		}
		if len(tags) > 0 {
			sel[axis] = tags
		}
	}
	return sel
}

// resolveArgs classifies each positional argument per spec §4.6: an
// exact or prefix match against discovered test names, or a
// fully-decorated canonical combination name that narrows the selected
// variants. It returns the resolved test set and any axis narrowing the
// canonical positionals imply.
func resolveArgs(args []string, discovered []string, recognizer *variant.Recognizer) ([]string, variant.Selection, error) {
	testSet := make(map[string]bool)
	narrow := make(variant.Selection)

	for _, arg := range args {
		if comb, err := recognizer.Parse(arg); err == nil {
			testSet[comb.Test] = true
			for _, axis := range variant.AllAxes {
				if tag := comb.TagFor(axis); tag != "" {
					narrow[axis] = appendUniqueTag(narrow[axis], tag)
				}
			}
			continue
		}

		matched := false
		for _, t := range discovered {
			if t == arg || strings.HasPrefix(t, arg) {
				testSet[t] = true
				matched = true
			}
		}
		if !matched {
			return nil, nil, fmt.Errorf("no discovered test matches %q", arg)
		}
	}

	tests := make([]string, 0, len(testSet))
	for t := range testSet {
		tests = append(tests, t)
	}
	sort.Strings(tests)
	return tests, narrow, nil
}

func appendUniqueTag(tags []variant.Tag, tag variant.Tag) []variant.Tag {
	for _, t := range tags {
		if t == tag {
			return tags
		}
	}
	return append(tags, tag)
}
