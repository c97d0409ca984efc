package domain_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"onetype.dev/pkg/onetype/internal/adapter"
	adaptermocks "onetype.dev/pkg/onetype/internal/adapter/mocks"
	controllermocks "onetype.dev/pkg/onetype/internal/controller/mocks"
	"onetype.dev/pkg/onetype/internal/domain"
	domainmocks "onetype.dev/pkg/onetype/internal/domain/mocks"
	m "onetype.dev/pkg/onetype/internal/model"
)

func classNode(text, name string) m.Node {
	return m.Node{
		Kind:       m.KindType,
		Name:       name,
		Text:       text,
		Keyword:    "class",
		NameOffset: strings.Index(text, " "+name) + 1,
	}
}

func withNested(node m.Node, names ...string) m.Node {
	node.Nested = names
	return node
}

func sourceUnit(path m.Path, members ...m.Node) m.Unit {
	return m.Unit{Path: path, Members: members, Trailer: "\n"}
}

// project is a clean A.cs plus Two.cs declaring Two and Extra.
func project() (domain.Snapshot, []m.File) {
	snapshot := domain.NewSnapshot(
		sourceUnit("/p/A.cs", withNested(classNode("class A { class Part { } }", "A"), "Part")),
		sourceUnit("/p/Two.cs", classNode("class Two { }", "Two"), classNode("\nclass Extra { }", "Extra")),
	)

	files := []m.File{
		{FullPath: "/p/A.cs", ShortPath: "A.cs"},
		{FullPath: "/p/Two.cs", ShortPath: "Two.cs"},
	}

	return snapshot, files
}

func cleanProject() (domain.Snapshot, []m.File) {
	snapshot := domain.NewSnapshot(sourceUnit("/p/A.cs", classNode("class A { }", "A")))
	return snapshot, []m.File{{FullPath: "/p/A.cs", ShortPath: "A.cs"}}
}

type workflowMocks struct {
	fs     *adaptermocks.MockSourceFSAdapter
	store  *adaptermocks.MockReportStore
	ui     *controllermocks.MockUI
	loader *domainmocks.MockProjectLoader
}

func newTestWorkflow(t *testing.T) (domain.Workflow, workflowMocks) {
	t.Helper()

	mocks := workflowMocks{
		fs:     &adaptermocks.MockSourceFSAdapter{},
		store:  &adaptermocks.MockReportStore{},
		ui:     &controllermocks.MockUI{},
		loader: &domainmocks.MockProjectLoader{},
	}

	t.Cleanup(func() {
		mocks.fs.AssertExpectations(t)
		mocks.store.AssertExpectations(t)
		mocks.ui.AssertExpectations(t)
		mocks.loader.AssertExpectations(t)
	})

	wf := domain.NewWorkflow(mocks.fs, mocks.store, mocks.ui, mocks.loader, domain.NewAnalyzer())

	return wf, mocks
}

func (mocks workflowMocks) expectSession() {
	mocks.ui.On("Start", mock.Anything, mock.Anything).Return(nil)
	mocks.ui.On("Close", mock.Anything).Return()
	mocks.ui.On("Wait", mock.Anything).Return()
}

func TestWorkflow_List(t *testing.T) {
	ctx := context.Background()
	wf, mocks := newTestWorkflow(t)
	mocks.expectSession()

	snapshot, files := project()
	args := domain.ListArgs{Paths: []m.Path{"./..."}, Threads: 2}

	mocks.loader.On("Load", ctx, args).Return(snapshot, files, nil)
	mocks.ui.On("DisplayFiles", ctx, []m.FileSummary{
		{Path: "A.cs", Declarations: 1, Nested: 1, Mismatches: 0},
		{Path: "Two.cs", Declarations: 2, Nested: 0, Mismatches: 1},
	}).Return(nil)

	require.NoError(t, wf.List(ctx, args))
}

func TestWorkflow_List_LoadError(t *testing.T) {
	ctx := context.Background()
	wf, mocks := newTestWorkflow(t)
	mocks.ui.On("Start", mock.Anything, mock.Anything).Return(nil)
	mocks.ui.On("Close", mock.Anything).Return()

	loadErr := errors.New("disk gone")
	mocks.loader.On("Load", ctx, domain.ListArgs{}).Return(domain.Snapshot{}, nil, loadErr)

	err := wf.List(ctx, domain.ListArgs{})
	require.ErrorIs(t, err, loadErr)
}

func TestWorkflow_StartError(t *testing.T) {
	ctx := context.Background()
	wf, mocks := newTestWorkflow(t)

	startErr := errors.New("no terminal")
	mocks.ui.On("Start", mock.Anything, mock.Anything).Return(startErr)

	require.ErrorIs(t, wf.Check(ctx, domain.CheckArgs{}), startErr)
}

func TestWorkflow_Check(t *testing.T) {
	ctx := context.Background()
	wf, mocks := newTestWorkflow(t)
	mocks.expectSession()

	snapshot, files := project()
	args := domain.CheckArgs{Reports: ".onetype"}

	mocks.loader.On("Load", ctx, args.ListArgs).Return(snapshot, files, nil)
	mocks.store.On("SaveReport", m.Path(".onetype"), mock.MatchedBy(func(report m.Report) bool {
		return report.ID != "" &&
			!report.GeneratedAt.After(time.Now().UTC()) &&
			report.Files == 2 &&
			len(report.Findings) == 1 &&
			report.Findings[0] == m.ReportEntry{
				File:     "Two.cs",
				Line:     2,
				Column:   7,
				Kind:     "class",
				Type:     "Extra",
				Expected: "Two",
				Strategy: "extract",
				Target:   "Extra.cs",
				Message:  "Type name 'Extra' doesn't match file name 'Two'",
			}
	})).Return(nil)
	mocks.ui.On("DisplayFindings", ctx, mock.MatchedBy(func(findings []m.Finding) bool {
		return len(findings) == 1 &&
			findings[0].Strategy == m.StrategyExtractNew &&
			findings[0].Target == "/p/Extra.cs"
	})).Return(nil)

	err := wf.Check(ctx, args)
	require.ErrorIs(t, err, domain.ErrMismatchesFound)
}

func TestWorkflow_Check_Clean(t *testing.T) {
	ctx := context.Background()
	wf, mocks := newTestWorkflow(t)
	mocks.expectSession()

	snapshot, files := cleanProject()

	mocks.loader.On("Load", ctx, domain.ListArgs{}).Return(snapshot, files, nil)
	mocks.ui.On("DisplayFindings", ctx, mock.Anything).Return(nil)

	require.NoError(t, wf.Check(ctx, domain.CheckArgs{}))
	mocks.store.AssertNotCalled(t, "SaveReport", mock.Anything, mock.Anything)
}

func TestWorkflow_Check_SaveError(t *testing.T) {
	ctx := context.Background()
	wf, mocks := newTestWorkflow(t)
	mocks.ui.On("Start", mock.Anything, mock.Anything).Return(nil)
	mocks.ui.On("Close", mock.Anything).Return()

	snapshot, files := project()
	saveErr := errors.New("read-only")

	mocks.loader.On("Load", ctx, domain.ListArgs{}).Return(snapshot, files, nil)
	mocks.store.On("SaveReport", m.Path("out"), mock.Anything).Return(saveErr)

	err := wf.Check(ctx, domain.CheckArgs{Reports: "out"})
	require.ErrorIs(t, err, saveErr)
}

func TestWorkflow_Fix_DryRun(t *testing.T) {
	ctx := context.Background()
	wf, mocks := newTestWorkflow(t)
	mocks.expectSession()

	snapshot, files := project()
	args := domain.FixArgs{DryRun: true}

	mocks.loader.On("Load", ctx, args.ListArgs).Return(snapshot, files, nil).Once()
	mocks.ui.On("DisplayFix", ctx, mock.MatchedBy(func(action m.FixAction) bool {
		return action.Strategy == m.StrategyExtractNew && action.Mismatch.ActualName == "Extra"
	}), mock.MatchedBy(func(diff string) bool {
		return strings.Contains(diff, "+++ /p/Extra.cs")
	})).Return()
	mocks.ui.On("DisplayFixSummary", ctx, 1, 0, 0).Return()

	require.NoError(t, wf.Fix(ctx, args))
	mocks.fs.AssertNotCalled(t, "ApplyEdits", mock.Anything, mock.Anything)
}

func TestWorkflow_Fix_Apply(t *testing.T) {
	ctx := context.Background()
	wf, mocks := newTestWorkflow(t)
	mocks.expectSession()

	snapshot, files := project()
	fixed := domain.NewSnapshot(
		sourceUnit("/p/A.cs", classNode("class A { }", "A")),
		sourceUnit("/p/Two.cs", classNode("class Two { }", "Two")),
		sourceUnit("/p/Extra.cs", classNode("class Extra { }", "Extra")),
	)

	mocks.loader.On("Load", ctx, domain.ListArgs{}).Return(snapshot, files, nil).Once()
	mocks.loader.On("Load", ctx, domain.ListArgs{}).Return(fixed, files, nil).Once()
	mocks.fs.On("ApplyEdits", ctx, mock.MatchedBy(func(edits []m.Edit) bool {
		return len(edits) == 2
	})).Return(nil).Once()
	mocks.ui.On("DisplayFix", ctx, mock.Anything, mock.Anything).Return().Once()
	mocks.ui.On("DisplayFixSummary", ctx, 1, 0, 0).Return()

	require.NoError(t, wf.Fix(ctx, domain.FixArgs{}))
}

func TestWorkflow_Fix_ApplyError(t *testing.T) {
	ctx := context.Background()
	wf, mocks := newTestWorkflow(t)
	mocks.expectSession()

	snapshot, files := project()
	writeErr := errors.New("permission denied")

	mocks.loader.On("Load", ctx, domain.ListArgs{}).Return(snapshot, files, nil).Once()
	mocks.fs.On("ApplyEdits", ctx, mock.Anything).Return(writeErr).Once()
	mocks.ui.On("DisplayFixError", ctx, mock.MatchedBy(func(mismatch m.Mismatch) bool {
		return mismatch.ActualName == "Extra"
	}), writeErr).Return()
	mocks.ui.On("DisplayFixSummary", ctx, 0, 1, 1).Return()

	err := wf.Fix(ctx, domain.FixArgs{})
	require.ErrorIs(t, err, writeErr)
	mocks.ui.AssertNotCalled(t, "DisplayFix", mock.Anything, mock.Anything, mock.Anything)
}

func TestWorkflow_Fix_Unsupported(t *testing.T) {
	ctx := context.Background()
	wf, mocks := newTestWorkflow(t)
	mocks.expectSession()

	snapshot := domain.NewSnapshot(sourceUnit("/p/Types.cs",
		m.Node{
			Kind:    m.KindScope,
			Name:    "#preproc_if",
			Text:    "#if DEBUG\n",
			Close:   "\n#endif",
			Shape:   m.ShapeUnknown,
			Members: []m.Node{classNode("class Hidden { }", "Hidden")},
		},
		classNode("\nclass Visible { }", "Visible"),
	))
	files := []m.File{{FullPath: "/p/Types.cs", ShortPath: "Types.cs"}}

	mocks.loader.On("Load", ctx, domain.ListArgs{}).Return(snapshot, files, nil).Once()
	mocks.ui.On("DisplayFixError", ctx, mock.MatchedBy(func(mismatch m.Mismatch) bool {
		return mismatch.ActualName == "Hidden"
	}), mock.MatchedBy(func(err error) bool {
		return errors.Is(err, domain.ErrUnsupportedStructure)
	})).Return()
	mocks.ui.On("DisplayFix", ctx, mock.MatchedBy(func(action m.FixAction) bool {
		return action.Mismatch.ActualName == "Visible"
	}), mock.Anything).Return().Once()
	mocks.ui.On("DisplayFixSummary", ctx, 1, 1, 1).Return()

	err := wf.Fix(ctx, domain.FixArgs{DryRun: true})
	require.ErrorIs(t, err, domain.ErrUnsupportedStructure)
}

func TestWorkflow_Fix_Only(t *testing.T) {
	ctx := context.Background()
	wf, mocks := newTestWorkflow(t)
	mocks.expectSession()

	snapshot, files := project()
	args := domain.FixArgs{DryRun: true, Only: []string{"Unrelated"}}

	mocks.loader.On("Load", ctx, args.ListArgs).Return(snapshot, files, nil).Once()
	mocks.ui.On("DisplayFixSummary", ctx, 0, 0, 0).Return()

	require.NoError(t, wf.Fix(ctx, args))
	mocks.ui.AssertNotCalled(t, "DisplayFix", mock.Anything, mock.Anything, mock.Anything)
}

func TestWorkflow_Fix_Batch(t *testing.T) {
	ctx := context.Background()
	wf, mocks := newTestWorkflow(t)
	mocks.expectSession()

	snapshot := domain.NewSnapshot(
		sourceUnit("/p/Many.cs",
			classNode("class First { }", "First"),
			classNode("\nclass Second { }", "Second"),
			classNode("\nclass Third { }", "Third"),
		),
	)
	files := []m.File{{FullPath: "/p/Many.cs", ShortPath: "Many.cs"}}

	var strategies []m.Strategy

	mocks.loader.On("Load", ctx, domain.ListArgs{}).Return(snapshot, files, nil).Once()
	mocks.ui.On("DisplayFix", ctx, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		strategies = append(strategies, args.Get(1).(m.FixAction).Strategy)
	}).Return()
	mocks.ui.On("DisplayFixSummary", ctx, 3, 0, 0).Return()

	require.NoError(t, wf.Fix(ctx, domain.FixArgs{DryRun: true}))
	assert.Equal(t, []m.Strategy{m.StrategyExtractNew, m.StrategyExtractNew, m.StrategyRename}, strategies)
}

func TestWorkflow_View(t *testing.T) {
	ctx := context.Background()
	wf, mocks := newTestWorkflow(t)
	mocks.expectSession()

	report := m.Report{ID: "r1", Files: 3}

	mocks.store.On("LoadReport", m.Path(".onetype")).Return(report, nil)
	mocks.ui.On("DisplayReport", ctx, report).Return(nil)

	require.NoError(t, wf.View(ctx, domain.ViewArgs{Reports: ".onetype"}))
}

func TestWorkflow_View_NoReport(t *testing.T) {
	ctx := context.Background()
	wf, mocks := newTestWorkflow(t)
	mocks.ui.On("Start", mock.Anything, mock.Anything).Return(nil)
	mocks.ui.On("Close", mock.Anything).Return()

	mocks.store.On("LoadReport", m.Path(".onetype")).Return(m.Report{}, adapter.ErrNoReport)

	err := wf.View(ctx, domain.ViewArgs{Reports: ".onetype"})
	require.ErrorIs(t, err, adapter.ErrNoReport)
}
