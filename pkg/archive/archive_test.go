package archive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jihwankim/runtest-orchestrator/pkg/reporting"
)

func TestDistWritesSummaryAndArchive(t *testing.T) {
	outDir := t.TempDir()
	extra := filepath.Join(t.TempDir(), "results.csv")
	require.NoError(t, os.WriteFile(extra, []byte("target,test,result\n"), 0o644))

	summary := reporting.Summary{Total: 2, Passed: 1, Failed: []reporting.FailedEntry{{Name: "001-HelloWorld", Detail: "boom"}}}

	path, err := Dist(outDir, "run-123", summary, []string{extra})
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Contains(t, path, "run-123")

	assert.FileExists(t, filepath.Join(outDir, "summary-run-123.json"))
}

func TestDescribeSizeFormatsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artifact.tar.gz")
	require.NoError(t, os.WriteFile(path, make([]byte, 2048), 0o644))

	desc := DescribeSize(path)
	assert.Contains(t, desc, "artifact.tar.gz")
}

func TestDescribeSizeMissingFileReturnsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.tar.gz")
	assert.Equal(t, path, DescribeSize(path))
}
