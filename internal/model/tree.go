package model

import "strings"

// NodeKind tags the variant held by a Node.
type NodeKind int

const (
	// KindScope is a named scope (namespace or module) that owns members.
	KindScope NodeKind = iota
	// KindType is a named type declaration. Types nested inside it are part
	// of its text and are not modelled as members.
	KindType
	// KindOther is any other member kept verbatim (directives, attributes,
	// top-level statements).
	KindOther
)

func (k NodeKind) String() string {
	switch k {
	case KindScope:
		return "scope"
	case KindType:
		return "type"
	case KindOther:
		return "other"
	}

	return "unknown"
}

// ScopeShape describes how a scope delimits its members.
type ScopeShape int

const (
	// ShapeBlock is a braced scope: `namespace X { ... }`.
	ShapeBlock ScopeShape = iota
	// ShapeFile is a file-scoped declaration (`namespace X;`) owning every
	// member that follows it.
	ShapeFile
	// ShapeUnknown is a container the engine can read through but cannot
	// rebuild, such as a conditional compilation region.
	ShapeUnknown
)

// Node is one member of a source tree.
//
// Text always starts with the node's leading trivia (whitespace and comments
// since the previous sibling), so rendering the members of a unit in order
// reproduces the original source byte for byte. For scopes, Text is the
// opening part up to and including the opening delimiter and Close holds the
// trivia before the closing delimiter plus the delimiter itself.
//
// Nodes are values. Functions that transform a tree return new nodes and
// never modify the Members slice they were given.
type Node struct {
	Kind NodeKind
	Name string
	Text string

	// Scope only.
	Close   string
	Members []Node
	Shape   ScopeShape

	// Type only.
	Keyword    string
	NameOffset int
	Nested     []string

	// Other only. Directives are copied into files extracted from this one;
	// unique directives (a Java package clause) are never merged into
	// another file.
	Directive bool
	Unique    bool
}

// Render returns the exact source text of the node.
func (n Node) Render() string {
	var b strings.Builder

	n.render(&b)

	return b.String()
}

func (n Node) render(b *strings.Builder) {
	b.WriteString(n.Text)

	if n.Kind != KindScope {
		return
	}

	for _, member := range n.Members {
		member.render(b)
	}

	b.WriteString(n.Close)
}

// WithMembers returns a copy of the scope holding members instead of its
// current children.
func (n Node) WithMembers(members []Node) Node {
	n.Members = members
	return n
}

// WithText returns a copy of the node with a different text.
func (n Node) WithText(text string) Node {
	n.Text = text
	return n
}

// Unit is a parsed source file.
type Unit struct {
	Path    Path
	Members []Node
	Trailer string
}

// Render returns the exact source text of the unit.
func (u Unit) Render() string {
	var b strings.Builder

	for _, member := range u.Members {
		member.render(&b)
	}

	b.WriteString(u.Trailer)

	return b.String()
}

// BaseName returns the unit's file name without directory and extension.
func (u Unit) BaseName() string {
	return BaseName(u.Path)
}

// WithPath returns a copy of the unit relabelled to path.
func (u Unit) WithPath(path Path) Unit {
	u.Path = path
	return u
}

// WithMembers returns a copy of the unit holding members.
func (u Unit) WithMembers(members []Node) Unit {
	u.Members = members
	return u
}
