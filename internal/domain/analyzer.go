package domain

import (
	"context"
	"fmt"

	m "onetype.dev/pkg/onetype/internal/model"
)

// Analyzer is the boundary the host uses to report mismatches and to obtain
// the fix for one of them.
type Analyzer interface {
	// Check reports the mismatches of a single unit in document order.
	Check(unit m.Unit) []m.Mismatch
	// Plan returns the repair currently selected for a mismatch without
	// computing its edits.
	Plan(snapshot Snapshot, mismatch m.Mismatch) (m.Finding, error)
	// SynthesizeFix computes the single fix for mismatch against snapshot.
	SynthesizeFix(ctx context.Context, snapshot Snapshot, mismatch m.Mismatch) (m.FixAction, error)
}

type analyzer struct{}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer() Analyzer {
	return &analyzer{}
}

func (a *analyzer) Check(unit m.Unit) []m.Mismatch {
	return Check(unit)
}

func (a *analyzer) Plan(snapshot Snapshot, mismatch m.Mismatch) (m.Finding, error) {
	unit, decl, err := resolve(snapshot, mismatch)
	if err != nil {
		return m.Finding{}, err
	}

	strategy, target := SelectStrategy(snapshot, unit, decl)

	return m.Finding{Mismatch: mismatch, Keyword: decl.Keyword, Strategy: strategy, Target: target}, nil
}

func (a *analyzer) SynthesizeFix(ctx context.Context, snapshot Snapshot, mismatch m.Mismatch) (m.FixAction, error) {
	if err := ctx.Err(); err != nil {
		return m.FixAction{}, err
	}

	unit, decl, err := resolve(snapshot, mismatch)
	if err != nil {
		return m.FixAction{}, err
	}

	if err := ctx.Err(); err != nil {
		return m.FixAction{}, err
	}

	strategy, target := SelectStrategy(snapshot, unit, decl)

	if err := ctx.Err(); err != nil {
		return m.FixAction{}, err
	}

	edits, err := buildEdits(snapshot, unit, decl, strategy, target)
	if err != nil {
		return m.FixAction{}, fmt.Errorf("%s %s: %w", strategy.Name(), decl.Name, err)
	}

	return m.FixAction{
		Title:    strategy.Title(),
		Strategy: strategy,
		Mismatch: mismatch,
		Edits:    edits,
	}, nil
}

func buildEdits(snapshot Snapshot, unit m.Unit, decl Declaration, strategy m.Strategy, target m.Path) ([]m.Edit, error) {
	switch strategy {
	case m.StrategyIntegrate:
		targetUnit, ok := snapshot.Unit(target)
		if !ok {
			return nil, fmt.Errorf("%w: target %s not in project", ErrStaleTarget, target)
		}

		source, merged, err := Integrate(unit, targetUnit, decl)
		if err != nil {
			return nil, err
		}

		return []m.Edit{
			{Kind: m.EditReplace, Path: merged.Path, Unit: merged},
			sourceEdit(source),
		}, nil
	case m.StrategyExtractNew:
		source, extracted, err := Extract(unit, decl)
		if err != nil {
			return nil, err
		}

		return []m.Edit{
			{Kind: m.EditReplace, Path: source.Path, Unit: source},
			{Kind: m.EditAdd, Path: extracted.Path, Unit: extracted},
		}, nil
	case m.StrategyRename:
		edit, err := Rename(unit, decl)
		if err != nil {
			return nil, err
		}

		return []m.Edit{edit}, nil
	}

	return nil, fmt.Errorf("unknown strategy %d", strategy)
}

// sourceEdit deletes a source left without declarations and rewrites it
// otherwise.
func sourceEdit(source m.Unit) m.Edit {
	if len(Declarations(source)) == 0 {
		return m.Edit{Kind: m.EditRemove, Path: source.Path}
	}

	return m.Edit{Kind: m.EditReplace, Path: source.Path, Unit: source}
}

// resolve finds the unit and the declaration a mismatch refers to.
func resolve(snapshot Snapshot, mismatch m.Mismatch) (m.Unit, Declaration, error) {
	unit, ok := snapshot.Unit(mismatch.File)
	if !ok {
		return m.Unit{}, Declaration{}, fmt.Errorf("%w: %s is not part of the project", ErrStaleTarget, mismatch.File)
	}

	for _, decl := range Declarations(unit) {
		if decl.Name != mismatch.ActualName || decl.Occurrence != mismatch.Occurrence {
			continue
		}

		if decl.Name == unit.BaseName() {
			return m.Unit{}, Declaration{}, fmt.Errorf("%w: %s already matches %s", ErrStaleTarget, decl.Name, unit.Path)
		}

		return unit, decl, nil
	}

	return m.Unit{}, Declaration{}, fmt.Errorf("%w: %s #%d not found in %s",
		ErrStaleTarget, mismatch.ActualName, mismatch.Occurrence, mismatch.File)
}
