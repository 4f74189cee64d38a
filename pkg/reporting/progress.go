package reporting

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/moby/term"
	"github.com/morikuni/aec"
	"github.com/olekukonko/tablewriter"
)

const (
	colorFail  = "\x1b[91m"
	colorPass  = "\x1b[92m"
	colorSkip  = "\x1b[93m"
	colorReset = "\x1b[0m"
)

// Progress is the progress renderer described in spec §4.5: interactive
// mode (stdout is a terminal and --verbose is off) overwrites the
// previous status line for passes and skips, emitting a permanent line
// only for failures and timeouts; verbose or non-terminal mode always
// emits a permanent line with elapsed time. TerminalWidth is injected so
// tests can drive line-eliding without a real pty.
type Progress struct {
	out           io.Writer
	colorEnabled  bool
	interactive   bool
	verbose       bool
	terminalWidth func() int
	atLineStart   bool
}

// NewProgress selects the rendering strategy for out. verbose forces the
// full-line strategy even on a terminal.
func NewProgress(out *os.File, verbose bool) *Progress {
	tty := isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd())
	return &Progress{
		out:          colorable.NewColorable(out),
		colorEnabled: tty,
		interactive:  tty && !verbose,
		verbose:      verbose,
		terminalWidth: func() int {
			return terminalWidth(out)
		},
		atLineStart: true,
	}
}

func terminalWidth(out *os.File) int {
	ws, err := term.GetWinsize(out.Fd())
	if err != nil || ws.Width == 0 {
		return 80
	}
	return int(ws.Width)
}

// Report renders one completed combination.
func (p *Progress) Report(c Completion, index, total int) {
	line := p.formatLine(c, index, total)
	permanent := p.verbose || !p.interactive || c.Status == StatusFail || c.Status == StatusTimeout

	if !p.interactive {
		fmt.Fprintln(p.out, line)
		return
	}

	p.clearLine()
	if permanent {
		fmt.Fprintln(p.out, line)
		p.atLineStart = true
	} else {
		fmt.Fprint(p.out, line)
		p.atLineStart = false
	}
}

// clearLine erases whatever is currently on the line and returns the
// cursor to column zero, so the next Report call starts clean whether
// or not the previous one left a trailing newline.
func (p *Progress) clearLine() {
	if p.atLineStart {
		return
	}
	fmt.Fprint(p.out, aec.Column(0).String(), aec.EraseLine(aec.EraseModes.All).String())
}

func (p *Progress) formatLine(c Completion, index, total int) string {
	prefix := fmt.Sprintf("[%d/%d] %s ", index, total, c.Status)
	name := p.elide(c.Name, prefix)

	text := prefix + name
	if p.verbose || !p.interactive {
		text += fmt.Sprintf(" (%s)", c.Elapsed.Round(time.Millisecond))
	}
	return p.colorize(c.Status, text)
}

// elide shortens name from the left with a "..." prefix so prefix+name
// fits within the terminal width.
func (p *Progress) elide(name, prefix string) string {
	width := p.terminalWidth()
	budget := width - len(prefix)
	if budget <= 3 || len(name) <= budget {
		return name
	}
	return "..." + name[len(name)-(budget-3):]
}

func (p *Progress) colorize(status Status, text string) string {
	if !p.colorEnabled {
		return text
	}
	var color string
	switch status {
	case StatusPass:
		color = colorPass
	case StatusFail, StatusTimeout:
		color = colorFail
	case StatusSkip:
		color = colorSkip
	default:
		return text
	}
	return color + text + colorReset
}

// PrintSummary renders the end-of-run summary: total/passed/percentage,
// the sorted skip list, a two-line block per failure (canonical name
// then captured detail), and a trailing index table of failed names.
func PrintSummary(out io.Writer, s Summary) {
	pct := 0.0
	if s.Total > 0 {
		pct = float64(s.Passed) / float64(s.Total) * 100
	}
	fmt.Fprintf(out, "\n%d/%d tests passed (%.1f%%)\n", s.Passed, s.Total, pct)

	if len(s.Skipped) > 0 {
		fmt.Fprintf(out, "\nSkipped (%d):\n", len(s.Skipped))
		for _, name := range s.Skipped {
			fmt.Fprintf(out, "  %s\n", name)
		}
	}

	if len(s.Failed) == 0 {
		return
	}

	fmt.Fprintf(out, "\nFailed (%d):\n", len(s.Failed))
	for _, f := range s.Failed {
		fmt.Fprintln(out, f.Name)
		fmt.Fprintln(out, f.Detail)
		fmt.Fprintln(out, strings.Repeat("-", 40))
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"#", "failed test"})
	for i, f := range s.Failed {
		table.Append([]string{fmt.Sprintf("%d", i+1), f.Name})
	}
	table.Render()
}
