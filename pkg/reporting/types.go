package reporting

import "time"

// Status classifies a completed combination's outcome.
type Status string

const (
	StatusPass    Status = "PASS"
	StatusFail    Status = "FAIL"
	StatusSkip    Status = "SKIP"
	StatusTimeout Status = "TIMEOUT"
)

// Completion is one finished combination as surfaced to the progress
// renderer, the Run accumulator, and the tabular sink. It is
// deliberately decoupled from pkg/worker.Result and pkg/variant.Combination
// so this package never imports either — pkg/worker converts its own
// results into Completion values.
type Completion struct {
	Name    string
	Status  Status
	Detail  string
	Elapsed time.Duration

	// Row mirrors the tabular sink's per-axis columns. Empty for
	// combinations rendered without a sink (Row.Test == "").
	Row SinkRow
}
