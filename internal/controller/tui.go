package controller

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	m "onetype.dev/pkg/onetype/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	addedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	removedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// TUI implements UI for terminals. Output of a command is collected and shown
// when the command finishes, in a pager when it does not fit on screen.
type TUI struct {
	output io.Writer
	config StartConfig
	lines  []string
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// Start initializes the UI.
func (t *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.config = newStartConfig(options)
	t.lines = nil

	return nil
}

// Close prints whatever was not shown yet.
func (t *TUI) Close(_ context.Context) {
	t.flush()
}

// Wait shows the collected output and blocks until the user leaves the pager.
func (t *TUI) Wait(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	model := newPagerModel(t.title(), t.lines)
	t.lines = nil

	if f, ok := t.output.(*os.File); ok {
		width, height, err := term.GetSize(int(f.Fd()))
		if err == nil {
			model.width = width
			model.height = height
		}
	}

	if !model.needsPagination() {
		_, _ = fmt.Fprint(t.output, model.View())
		return
	}

	program := tea.NewProgram(model, tea.WithOutput(t.output), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		_, _ = fmt.Fprint(t.output, model.plain())
	}
}

// DisplayFiles lists the scanned files with their declaration counts.
func (t *TUI) DisplayFiles(ctx context.Context, files []m.FileSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(files) == 0 {
		t.add(mutedStyle.Render("No source files found"))
		return nil
	}

	totalTypes, totalNested, totalMismatches := 0, 0, 0

	for _, file := range files {
		count := accentStyle.Render(fmt.Sprintf("%4d", file.Declarations)) + mutedStyle.Render(fmt.Sprintf(" %4d", file.Nested))
		if file.Mismatches > 0 {
			count += errorStyle.Render(fmt.Sprintf(" %4d", file.Mismatches))
		} else {
			count += mutedStyle.Render(fmt.Sprintf(" %4d", 0))
		}

		t.add(fmt.Sprintf("%s  %s", count, displayPath(file.Path)))

		totalTypes += file.Declarations
		totalNested += file.Nested
		totalMismatches += file.Mismatches
	}

	t.add("")
	t.add(fmt.Sprintf("Total: %d type(s), %d nested, %d mismatch(es) across %d file(s)", totalTypes, totalNested, totalMismatches, len(files)))

	return nil
}

// DisplayFindings lists the mismatches found by a check run.
func (t *TUI) DisplayFindings(ctx context.Context, findings []m.Finding) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(findings) == 0 {
		t.add(addedStyle.Render("No mismatches found."))
		return nil
	}

	for _, finding := range findings {
		mismatch := finding.Mismatch
		location := fmt.Sprintf("%s:%d:%d", displayPath(mismatch.File), mismatch.Line, mismatch.Column)

		t.add(fmt.Sprintf("%s  %s", accentStyle.Render(location), mismatch.Message()))

		fix := fmt.Sprintf("  %s: %s", typeLabel(finding.Keyword, mismatch.ActualName), finding.Strategy.Title())
		if finding.Target != "" {
			fix += " -> " + displayPath(finding.Target)
		}

		t.add(mutedStyle.Render(fix))
	}

	t.add("")
	t.add(fmt.Sprintf("%d mismatch(es) found", len(findings)))

	return nil
}

// DisplayFix shows an applied (or previewed) fix with its diff.
func (t *TUI) DisplayFix(ctx context.Context, action m.FixAction, diff string) {
	if ctx.Err() != nil {
		return
	}

	t.add(titleStyle.Render(fixHeadline(action, t.config.dryRun)))

	for _, line := range strings.Split(strings.TrimRight(diff, "\n"), "\n") {
		t.add(styleDiffLine(line))
	}

	t.add("")
}

// DisplayFixError shows a mismatch that could not be fixed.
func (t *TUI) DisplayFixError(ctx context.Context, mismatch m.Mismatch, err error) {
	if ctx.Err() != nil {
		return
	}

	t.add(errorStyle.Render(fmt.Sprintf("Cannot fix %s in %s: %v", mismatch.ActualName, displayPath(mismatch.File), err)))
}

// DisplayFixSummary shows the totals of a fix run.
func (t *TUI) DisplayFixSummary(ctx context.Context, applied int, failed int, remaining int) {
	if ctx.Err() != nil {
		return
	}

	t.add(fixSummary(applied, failed, remaining, t.config.dryRun))
}

// DisplayReport shows a saved report.
func (t *TUI) DisplayReport(ctx context.Context, report m.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.add(reportHeadline(report))
	t.add("")

	for _, entry := range report.Findings {
		location := fmt.Sprintf("%s:%d:%d", entry.File, entry.Line, entry.Column)
		t.add(fmt.Sprintf("%s  %s", accentStyle.Render(location), entry.Message))
	}

	return nil
}

func (t *TUI) add(line string) {
	t.lines = append(t.lines, line)
}

func (t *TUI) flush() {
	if len(t.lines) == 0 {
		return
	}

	_, _ = fmt.Fprint(t.output, strings.Join(t.lines, "\n")+"\n")
	t.lines = nil
}

func (t *TUI) title() string {
	switch t.config.mode {
	case ModeList:
		return "onetype: source files"
	case ModeCheck:
		return "onetype: check"
	case ModeFix:
		if t.config.dryRun {
			return "onetype: fix (dry run)"
		}

		return "onetype: fix"
	case ModeView:
		return "onetype: last report"
	}

	return "onetype"
}

func styleDiffLine(line string) string {
	switch {
	case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		return mutedStyle.Render(line)
	case strings.HasPrefix(line, "@@"):
		return accentStyle.Render(line)
	case strings.HasPrefix(line, "+"):
		return addedStyle.Render(line)
	case strings.HasPrefix(line, "-"):
		return removedStyle.Render(line)
	}

	return line
}

type pagerKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Quit     key.Binding
}

func defaultPagerKeyMap() pagerKeyMap {
	return pagerKeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup", "u"), key.WithHelp("u", "page up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown", "d", " "), key.WithHelp("d", "page down")),
		Top:      key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
		Bottom:   key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
		Quit:     key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k pagerKeyMap) help() string {
	bindings := []key.Binding{k.Up, k.Down, k.PageDown, k.Top, k.Bottom, k.Quit}

	parts := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		help := binding.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}

	return strings.Join(parts, " • ")
}

// pagerModel is the Bubble Tea model scrolling through the output of a command.
type pagerModel struct {
	title  string
	lines  []string
	keys   pagerKeyMap
	height int
	width  int
	offset int
}

func newPagerModel(title string, lines []string) pagerModel {
	return pagerModel{title: title, lines: lines, keys: defaultPagerKeyMap()}
}

func (pm pagerModel) Init() tea.Cmd {
	return nil
}

func (pm pagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		pm.height = msg.Height
		pm.width = msg.Width
		pm.offset = min(pm.offset, pm.maxOffset())

		return pm, nil

	case tea.KeyMsg:
		return pm.handleKeyPress(msg)
	}

	return pm, nil
}

func (pm pagerModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, pm.keys.Quit):
		return pm, tea.Quit
	case key.Matches(msg, pm.keys.Down):
		pm.offset++
	case key.Matches(msg, pm.keys.Up):
		pm.offset--
	case key.Matches(msg, pm.keys.PageDown):
		pm.offset += pm.itemsPerPage()
	case key.Matches(msg, pm.keys.PageUp):
		pm.offset -= pm.itemsPerPage()
	case key.Matches(msg, pm.keys.Top):
		pm.offset = 0
	case key.Matches(msg, pm.keys.Bottom):
		pm.offset = pm.maxOffset()
	}

	pm.offset = max(0, min(pm.offset, pm.maxOffset()))

	return pm, nil
}

// itemsPerPage is the number of lines left between the title and the footer.
func (pm pagerModel) itemsPerPage() int {
	if pm.height == 0 {
		return len(pm.lines)
	}

	// Title with its blank line, footer with its blank line.
	return max(1, pm.height-4)
}

func (pm pagerModel) maxOffset() int {
	return max(0, len(pm.lines)-pm.itemsPerPage())
}

func (pm pagerModel) needsPagination() bool {
	return pm.height > 0 && len(pm.lines) > pm.itemsPerPage()
}

func (pm pagerModel) View() string {
	if !pm.needsPagination() {
		return pm.plain()
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(pm.title))
	b.WriteString("\n\n")

	end := min(pm.offset+pm.itemsPerPage(), len(pm.lines))
	for _, line := range pm.lines[pm.offset:end] {
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%d-%d of %d | %s", pm.offset+1, end, len(pm.lines), pm.keys.help())))

	return b.String()
}

func (pm pagerModel) plain() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(pm.title))
	b.WriteString("\n\n")

	for _, line := range pm.lines {
		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}
