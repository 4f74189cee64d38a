package discovery

import (
	"fmt"
	"os"
	"regexp"
)

var testNamePattern = regexp.MustCompile(`^\d`)

// DiscoverTests lists testDir's entries and retains the ones whose name
// begins with a digit, the convention every numbered ART-style test
// directory follows.
func DiscoverTests(testDir string) ([]string, error) {
	entries, err := os.ReadDir(testDir)
	if err != nil {
		return nil, fmt.Errorf("listing test directory %q: %w", testDir, err)
	}

	var tests []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if testNamePattern.MatchString(e.Name()) {
			tests = append(tests, e.Name())
		}
	}
	return tests, nil
}
