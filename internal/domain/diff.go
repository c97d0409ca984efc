package domain

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	m "onetype.dev/pkg/onetype/internal/model"
)

const diffContextLines = 3

// RenderDiff returns a unified diff of the edits of action against before,
// the snapshot the action was computed on.
func RenderDiff(before Snapshot, action m.FixAction) (string, error) {
	var b strings.Builder

	for _, edit := range action.Edits {
		var (
			from, to         string
			fromName, toName = string(edit.Path), string(edit.Path)
		)

		if unit, ok := before.Unit(edit.Path); ok {
			from = unit.Render()
		}

		switch edit.Kind {
		case m.EditAdd:
			fromName = "/dev/null"
			to = edit.Unit.Render()
		case m.EditReplace:
			to = edit.Unit.Render()
		case m.EditRemove:
			toName = "/dev/null"
		case m.EditRename:
			fmt.Fprintf(&b, "rename from %s\nrename to %s\n", edit.Path, edit.NewPath)
			continue
		}

		diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        splitLines(from),
			B:        splitLines(to),
			FromFile: fromName,
			ToFile:   toName,
			Context:  diffContextLines,
		})
		if err != nil {
			return "", fmt.Errorf("diff %s: %w", edit.Path, err)
		}

		b.WriteString(diff)
	}

	return b.String(), nil
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}

	return difflib.SplitLines(strings.TrimSuffix(text, "\n"))
}
