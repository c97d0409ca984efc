package domain

import (
	"fmt"
	"maps"
	"slices"

	m "onetype.dev/pkg/onetype/internal/model"
)

// Snapshot is an immutable view of the project file set. Units are kept in
// path order, which is the enumeration order used for every lookup.
type Snapshot struct {
	units map[m.Path]m.Unit
	paths []m.Path
}

// NewSnapshot builds a snapshot from units. A later unit replaces an earlier
// one with the same path.
func NewSnapshot(units ...m.Unit) Snapshot {
	byPath := make(map[m.Path]m.Unit, len(units))
	for _, unit := range units {
		byPath[unit.Path] = unit
	}

	return newSnapshot(byPath)
}

func newSnapshot(byPath map[m.Path]m.Unit) Snapshot {
	paths := slices.Collect(maps.Keys(byPath))
	slices.Sort(paths)

	return Snapshot{units: byPath, paths: paths}
}

// Len returns the number of units in the snapshot.
func (s Snapshot) Len() int {
	return len(s.paths)
}

// Paths returns the unit paths in enumeration order.
func (s Snapshot) Paths() []m.Path {
	return slices.Clone(s.paths)
}

// Unit returns the unit stored at path.
func (s Snapshot) Unit(path m.Path) (m.Unit, bool) {
	unit, ok := s.units[path]
	return unit, ok
}

// Units returns every unit in enumeration order.
func (s Snapshot) Units() []m.Unit {
	units := make([]m.Unit, 0, len(s.paths))
	for _, path := range s.paths {
		units = append(units, s.units[path])
	}

	return units
}

// Apply returns a new snapshot with edits applied in order. The receiver is
// left untouched, including when an edit does not fit.
func (s Snapshot) Apply(edits []m.Edit) (Snapshot, error) {
	next := maps.Clone(s.units)
	if next == nil {
		next = make(map[m.Path]m.Unit)
	}

	for _, edit := range edits {
		if err := applyEdit(next, edit); err != nil {
			return s, err
		}
	}

	return newSnapshot(next), nil
}

func applyEdit(units map[m.Path]m.Unit, edit m.Edit) error {
	_, exists := units[edit.Path]

	switch edit.Kind {
	case m.EditAdd:
		if exists {
			return fmt.Errorf("%w: add %s: file exists", ErrEditConflict, edit.Path)
		}

		units[edit.Path] = edit.Unit.WithPath(edit.Path)
	case m.EditReplace:
		if !exists {
			return fmt.Errorf("%w: replace %s: no such file", ErrEditConflict, edit.Path)
		}

		units[edit.Path] = edit.Unit.WithPath(edit.Path)
	case m.EditRemove:
		if !exists {
			return fmt.Errorf("%w: remove %s: no such file", ErrEditConflict, edit.Path)
		}

		delete(units, edit.Path)
	case m.EditRename:
		if !exists {
			return fmt.Errorf("%w: rename %s: no such file", ErrEditConflict, edit.Path)
		}

		if _, taken := units[edit.NewPath]; taken {
			return fmt.Errorf("%w: rename %s: %s exists", ErrEditConflict, edit.Path, edit.NewPath)
		}

		unit := units[edit.Path]
		delete(units, edit.Path)
		units[edit.NewPath] = unit.WithPath(edit.NewPath)
	default:
		return fmt.Errorf("%w: unknown edit kind %d", ErrEditConflict, edit.Kind)
	}

	return nil
}
