// Package archive implements --archive-results: packaging the CSV
// result sink and a JSON run summary into a single archive for upload
// off the runner machine. This is a net-new convenience, independent of
// --dist (which only forwards "dist" to the build command, matching the
// original testrunner.py behavior).
package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	units "github.com/docker/go-units"
	"github.com/mholt/archiver/v3"

	"github.com/jihwankim/runtest-orchestrator/pkg/reporting"
)

// Dist packages files (the CSV sink plus a freshly-written JSON summary
// of the run) into outputDir/run-<runID>.tar.gz and returns its path.
func Dist(outputDir, runID string, summary reporting.Summary, extraFiles []string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating dist output dir: %w", err)
	}

	summaryPath := filepath.Join(outputDir, fmt.Sprintf("summary-%s.json", runID))
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshalling run summary: %w", err)
	}
	if err := os.WriteFile(summaryPath, data, 0o644); err != nil {
		return "", fmt.Errorf("writing run summary: %w", err)
	}

	files := append([]string{summaryPath}, extraFiles...)
	archivePath := filepath.Join(outputDir, fmt.Sprintf("run-%s.tar.gz", runID))
	if err := archiver.Archive(files, archivePath); err != nil {
		return "", fmt.Errorf("packaging results archive: %w", err)
	}

	return archivePath, nil
}

// DescribeSize renders a human-readable size for the closing log line,
// e.g. "run-<id>.tar.gz (4.2MB)".
func DescribeSize(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return path
	}
	return fmt.Sprintf("%s (%s)", filepath.Base(path), units.HumanSize(float64(info.Size())))
}
