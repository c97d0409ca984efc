package model

// Strategy is the repair selected for a mismatch.
type Strategy int

const (
	// StrategyIntegrate moves the declaration into an existing file named
	// after it.
	StrategyIntegrate Strategy = iota
	// StrategyExtractNew moves the declaration into a new file named after it.
	StrategyExtractNew
	// StrategyRename renames the file after its only declaration.
	StrategyRename
)

// Name returns the short identifier used in reports and flags.
func (s Strategy) Name() string {
	switch s {
	case StrategyIntegrate:
		return "integrate"
	case StrategyExtractNew:
		return "extract"
	case StrategyRename:
		return "rename"
	}

	return "unknown"
}

// Title returns the human readable action title.
func (s Strategy) Title() string {
	switch s {
	case StrategyIntegrate:
		return "Move type to existing file"
	case StrategyExtractNew:
		return "Extract type to file"
	case StrategyRename:
		return "Rename file to match type name"
	}

	return "Unknown action"
}

func (s Strategy) String() string {
	return s.Name()
}

// ParseStrategy maps a name produced by Strategy.Name back to its value.
func ParseStrategy(name string) (Strategy, bool) {
	for _, s := range []Strategy{StrategyIntegrate, StrategyExtractNew, StrategyRename} {
		if s.Name() == name {
			return s, true
		}
	}

	return 0, false
}

// EditKind tags the variant held by an Edit.
type EditKind int

const (
	// EditAdd creates a new file.
	EditAdd EditKind = iota
	// EditReplace replaces the content of an existing file.
	EditReplace
	// EditRemove deletes a file.
	EditRemove
	// EditRename relabels a file without touching its content.
	EditRename
)

func (k EditKind) String() string {
	switch k {
	case EditAdd:
		return "add"
	case EditReplace:
		return "replace"
	case EditRemove:
		return "remove"
	case EditRename:
		return "rename"
	}

	return "unknown"
}

// Edit is a single change to the project file set.
type Edit struct {
	Kind EditKind
	Path Path
	// NewPath is the destination of an EditRename.
	NewPath Path
	// Unit is the resulting file for EditAdd and EditReplace.
	Unit Unit
}

// Content returns the bytes written by an EditAdd or EditReplace.
func (e Edit) Content() []byte {
	return []byte(e.Unit.Render())
}

// FixAction is the single repair offered for a mismatch.
type FixAction struct {
	Title    string
	Strategy Strategy
	Mismatch Mismatch
	Edits    []Edit
}
