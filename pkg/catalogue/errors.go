package catalogue

import "fmt"

// MalformedCatalogueError reports a structurally or semantically invalid
// known-failure entry. It is always fatal at load time.
type MalformedCatalogueError struct {
	Index  int
	Reason string
}

func (e *MalformedCatalogueError) Error() string {
	return fmt.Sprintf("known-failure rule %d is malformed: %s", e.Index, e.Reason)
}

// UnknownTestError reports a catalogue rule referencing a test name that
// was never discovered. Fatal unless the caller is running under a
// build-system shard, where seeing only a subset of tests is expected.
type UnknownTestError struct {
	Test string
	Rule int
}

func (e *UnknownTestError) Error() string {
	return fmt.Sprintf("known-failure rule %d references unknown test %q", e.Rule, e.Test)
}
