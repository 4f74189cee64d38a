package reporting

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestProgress(buf *bytes.Buffer, interactive, verbose bool) *Progress {
	return &Progress{
		out:           buf,
		colorEnabled:  false,
		interactive:   interactive,
		verbose:       verbose,
		terminalWidth: func() int { return 80 },
		atLineStart:   true,
	}
}

func TestReportNonInteractiveAlwaysPermanent(t *testing.T) {
	var buf bytes.Buffer
	p := newTestProgress(&buf, false, false)

	p.Report(Completion{Name: "001-HelloWorld", Status: StatusPass}, 1, 2)
	assert.Contains(t, buf.String(), "001-HelloWorld")
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
}

func TestReportInteractivePassOverwrites(t *testing.T) {
	var buf bytes.Buffer
	p := newTestProgress(&buf, true, false)

	p.Report(Completion{Name: "001-HelloWorld", Status: StatusPass}, 1, 2)
	assert.False(t, p.atLineStart)
	assert.False(t, strings.HasSuffix(buf.String(), "\n"))
}

func TestReportInteractiveFailureIsPermanent(t *testing.T) {
	var buf bytes.Buffer
	p := newTestProgress(&buf, true, false)

	p.Report(Completion{Name: "001-HelloWorld", Status: StatusFail}, 1, 2)
	assert.True(t, p.atLineStart)
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
}

func TestElideShortensLongNames(t *testing.T) {
	p := newTestProgress(&bytes.Buffer{}, false, false)
	name := strings.Repeat("x", 200)
	elided := p.elide(name, "[1/1] PASS ")
	assert.LessOrEqual(t, len(elided), 80)
	assert.True(t, strings.HasPrefix(elided, "..."))
}

func TestPrintSummaryRendersCounts(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, Summary{
		Total:   3,
		Passed:  1,
		Skipped: []string{"002-Sleep"},
		Failed:  []FailedEntry{{Name: "003-Exit", Detail: "boom"}},
	})

	out := buf.String()
	assert.Contains(t, out, "1/3 tests passed")
	assert.Contains(t, out, "002-Sleep")
	assert.Contains(t, out, "003-Exit")
	assert.Contains(t, out, "boom")
}
