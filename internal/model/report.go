package model

import "time"

// FileSummary holds the declaration counts of one scanned file. Nested
// counts the types declared inside top-level ones; they are never checked.
type FileSummary struct {
	Path         Path
	Declarations int
	Nested       int
	Mismatches   int
}

// Report is the persisted result of a check run.
type Report struct {
	ID          string        `yaml:"id"`
	GeneratedAt time.Time     `yaml:"generated_at"`
	Files       int           `yaml:"files"`
	Findings    []ReportEntry `yaml:"findings"`
}

// ReportEntry is the serialized form of a Finding.
type ReportEntry struct {
	File     string `yaml:"file"`
	Line     int    `yaml:"line"`
	Column   int    `yaml:"column"`
	Kind     string `yaml:"kind,omitempty"`
	Type     string `yaml:"type"`
	Expected string `yaml:"expected"`
	Strategy string `yaml:"strategy"`
	Target   string `yaml:"target,omitempty"`
	Message  string `yaml:"message"`
}

// NewReportEntry converts a finding into its serialized form.
func NewReportEntry(f Finding) ReportEntry {
	return ReportEntry{
		File:     string(f.Mismatch.File),
		Line:     f.Mismatch.Line,
		Column:   f.Mismatch.Column,
		Kind:     f.Keyword,
		Type:     f.Mismatch.ActualName,
		Expected: f.Mismatch.ExpectedName,
		Strategy: f.Strategy.Name(),
		Target:   string(f.Target),
		Message:  f.Mismatch.Message(),
	}
}
