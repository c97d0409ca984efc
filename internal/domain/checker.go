package domain

import (
	m "onetype.dev/pkg/onetype/internal/model"
)

// Check reports every top-level declaration of unit whose name differs from
// the unit's base name, in document order. Names are compared ordinally.
func Check(unit m.Unit) []m.Mismatch {
	decls := Declarations(unit)
	if len(decls) == 0 {
		return nil
	}

	expected := unit.BaseName()

	var (
		mismatches []m.Mismatch
		text       string
	)

	for _, decl := range decls {
		if decl.Name == expected {
			continue
		}

		if text == "" {
			text = unit.Render()
		}

		line, column := position(text, decl.Offset)
		mismatches = append(mismatches, m.Mismatch{
			File:         unit.Path,
			ActualName:   decl.Name,
			ExpectedName: expected,
			Occurrence:   decl.Occurrence,
			Line:         line,
			Column:       column,
		})
	}

	return mismatches
}

// CheckSnapshot runs Check over every unit of the snapshot in path order.
func CheckSnapshot(snapshot Snapshot) []m.Mismatch {
	var mismatches []m.Mismatch

	for _, unit := range snapshot.Units() {
		mismatches = append(mismatches, Check(unit)...)
	}

	return mismatches
}
