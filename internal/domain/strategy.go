package domain

import (
	"strings"

	m "onetype.dev/pkg/onetype/internal/model"
)

// SelectStrategy picks the repair for decl, a declaration of unit, and the
// path of the file the declaration ends up in.
//
// An existing file named after the declaration always wins. Otherwise a unit
// holding several declarations gives the declaration its own file, and a unit
// holding only this declaration is renamed.
func SelectStrategy(snapshot Snapshot, unit m.Unit, decl Declaration) (m.Strategy, m.Path) {
	if target, ok := findTarget(snapshot, unit.Path, decl.Name); ok {
		return m.StrategyIntegrate, target
	}

	if len(Declarations(unit)) > 1 {
		return m.StrategyExtractNew, m.WithBaseName(unit.Path, decl.Name)
	}

	return m.StrategyRename, m.WithBaseName(unit.Path, decl.Name)
}

// findTarget looks for another file of the same language whose base name is
// name. Exact-case matches come before case-folded ones; within each group
// the snapshot's path order decides. A declaration integrated into a
// case-folded match is still reported there.
func findTarget(snapshot Snapshot, source m.Path, name string) (m.Path, bool) {
	ext := m.Ext(source)

	var (
		folded m.Path
		found  bool
	)

	for _, path := range snapshot.Paths() {
		if path == source || !strings.EqualFold(m.Ext(path), ext) {
			continue
		}

		base := m.BaseName(path)
		if base == name {
			return path, true
		}

		if !found && strings.EqualFold(base, name) {
			folded, found = path, true
		}
	}

	return folded, found
}
