package model

import "fmt"

// Rule describes the convention reported by the checker.
type Rule struct {
	ID            string
	Title         string
	MessageFormat string
	Category      string
	Severity      string
}

// TypeFileRule is the only rule onetype reports.
var TypeFileRule = Rule{
	ID:            "OT1001",
	Title:         "Type name doesn't match file name",
	MessageFormat: "Type name '%s' doesn't match file name '%s'",
	Category:      "Naming",
	Severity:      "warning",
}

// Mismatch is a top-level type declaration whose name differs from the base
// name of the file holding it.
type Mismatch struct {
	File         Path
	ActualName   string
	ExpectedName string
	// Occurrence is the index of the declaration among the top-level
	// declarations of File that share ActualName, in document order.
	Occurrence int
	Line       int
	Column     int
}

// Message renders the diagnostic text for the mismatch.
func (m Mismatch) Message() string {
	return fmt.Sprintf(TypeFileRule.MessageFormat, m.ActualName, m.ExpectedName)
}

// Finding pairs a mismatch with the repair currently selected for it.
type Finding struct {
	Mismatch Mismatch
	Keyword  string // class, interface, enum, ...
	Strategy Strategy
	Target   Path // file the declaration would end up in
}
