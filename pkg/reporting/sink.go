package reporting

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/gofrs/flock"
)

// SinkRow mirrors the tabular sink's fixed column order.
type SinkRow struct {
	Target      string
	Run         string
	Prebuild    string
	Compiler    string
	Relocate    string
	Trace       string
	GC          string
	JNI         string
	Image       string
	Debuggable  string
	JVMTI       string
	Test        string
	AddressSize string
}

var sinkHeader = []string{
	"target", "run", "prebuild", "compiler", "relocate", "trace", "gc",
	"jni", "image", "debuggable", "jvmti", "test", "address_size", "result",
}

// Sink is the optional machine-readable result sink named by
// --csv-results: one header row then one row per completion. A file
// lock guards the sink path against a second, concurrently-launched
// orchestrator invocation writing into the same file (a re-entrant CI
// run is the scenario this protects against, not casual same-process
// reuse).
type Sink struct {
	file   *os.File
	lock   *flock.Flock
	writer *csv.Writer
}

// NewSink creates (or truncates) the sink file at path and writes its
// header row.
func NewSink(path string) (*Sink, error) {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("locking result sink %q: %w", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("creating result sink %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(sinkHeader); err != nil {
		_ = f.Close()
		_ = lock.Unlock()
		return nil, fmt.Errorf("writing result sink header: %w", err)
	}
	w.Flush()

	return &Sink{file: f, lock: lock, writer: w}, nil
}

// WriteRow appends one completed combination's row and flushes
// immediately, so a crash mid-run still leaves a readable partial sink.
func (s *Sink) WriteRow(row SinkRow, result Status) error {
	record := []string{
		row.Target, row.Run, row.Prebuild, row.Compiler, row.Relocate,
		row.Trace, row.GC, row.JNI, row.Image, row.Debuggable, row.JVMTI,
		row.Test, row.AddressSize, string(result),
	}
	if err := s.writer.Write(record); err != nil {
		return fmt.Errorf("writing result sink row: %w", err)
	}
	s.writer.Flush()
	return s.writer.Error()
}

// Close flushes and closes the sink file and releases the lock.
func (s *Sink) Close() error {
	s.writer.Flush()
	err := s.file.Close()
	if unlockErr := s.lock.Unlock(); unlockErr != nil && err == nil {
		err = unlockErr
	}
	return err
}
