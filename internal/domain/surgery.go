package domain

import (
	"fmt"
	"slices"
	"strings"

	m "onetype.dev/pkg/onetype/internal/model"
)

// Extract moves decl out of unit into a new unit named after the declaration.
// The new unit holds the root directives of unit followed by the declaration
// re-wrapped in its scope chain. Scopes left empty in the source are kept.
func Extract(unit m.Unit, decl Declaration) (m.Unit, m.Unit, error) {
	node, chain, err := locate(unit, decl)
	if err != nil {
		return m.Unit{}, m.Unit{}, err
	}

	if err := requireRebuildable(chain, decl); err != nil {
		return m.Unit{}, m.Unit{}, err
	}

	directives := Directives(unit.Members)

	wrapped := wrap(node, chain)
	if len(directives) == 0 {
		wrapped = wrapped.WithText(trimLeadingBlankLines(wrapped.Text))
	}

	extracted := m.Unit{
		Path:    m.WithBaseName(unit.Path, decl.Name),
		Members: append(directives, wrapped),
		Trailer: unit.Trailer,
	}

	source, err := removeDeclaration(unit, decl.Path)
	if err != nil {
		return m.Unit{}, m.Unit{}, err
	}

	return source, extracted, nil
}

// Integrate moves decl out of source into target. The longest prefix of the
// declaration's scope chain already present in target is reused; the rest of
// the chain is grafted below it together with the declaration. Root
// directives of source missing from target are added after target's own.
func Integrate(source, target m.Unit, decl Declaration) (m.Unit, m.Unit, error) {
	node, chain, err := locate(source, decl)
	if err != nil {
		return m.Unit{}, m.Unit{}, err
	}

	if err := requireRebuildable(chain, decl); err != nil {
		return m.Unit{}, m.Unit{}, err
	}

	var matched []int

	container := target.Members

	depth := 0
	for ; depth < len(chain); depth++ {
		idx := findScope(container, chain[depth].Name)
		if idx < 0 {
			break
		}

		if container[idx].Shape == m.ShapeUnknown {
			return m.Unit{}, m.Unit{}, fmt.Errorf("%w: scope %s in %s", ErrUnsupportedStructure, chain[depth].Name, target.Path)
		}

		matched = append(matched, idx)
		container = container[idx].Members
	}

	// A file-scoped namespace owns the rest of its file, so nothing can be
	// added next to it.
	if scope, ok := fileScope(container); ok {
		return m.Unit{}, m.Unit{}, fmt.Errorf("%w: %s cannot be placed beside file-scoped %s in %s",
			ErrUnsupportedStructure, decl.Name, scope.Name, target.Path)
	}

	graft := wrap(node, chain[depth:])

	if graft.Kind == m.KindScope && graft.Shape == m.ShapeFile && holdsDeclarations(container) {
		return m.Unit{}, m.Unit{}, fmt.Errorf("%w: file-scoped %s cannot follow declarations in %s", ErrUnsupportedStructure, graft.Name, target.Path)
	}

	first := len(matched) == 0 && len(container) == 0
	graft = separate(graft, first)

	members, err := appendMember(target.Members, matched, graft)
	if err != nil {
		return m.Unit{}, m.Unit{}, err
	}

	merged := mergeDirectives(target.WithMembers(members), Directives(source.Members))

	shrunk, err := removeDeclaration(source, decl.Path)
	if err != nil {
		return m.Unit{}, m.Unit{}, err
	}

	return shrunk, merged, nil
}

// Rename relabels unit after decl. The content is left as is.
func Rename(unit m.Unit, decl Declaration) (m.Edit, error) {
	if _, _, err := locate(unit, decl); err != nil {
		return m.Edit{}, err
	}

	return m.Edit{
		Kind:    m.EditRename,
		Path:    unit.Path,
		NewPath: m.WithBaseName(unit.Path, decl.Name),
	}, nil
}

func requireRebuildable(chain []m.Node, decl Declaration) error {
	for _, scope := range chain {
		if scope.Shape == m.ShapeUnknown {
			return fmt.Errorf("%w: %s is declared inside %s", ErrUnsupportedStructure, decl.Name, scope.Name)
		}
	}

	return nil
}

// wrap nests node in chain, innermost scope first. Every level keeps its own
// opening and closing text and its directives.
func wrap(node m.Node, chain []m.Node) m.Node {
	wrapped := node

	for i := len(chain) - 1; i >= 0; i-- {
		scope := chain[i]
		members := append(Directives(scope.Members), wrapped)
		wrapped = scope.WithMembers(members)
	}

	return wrapped
}

func findScope(members []m.Node, name string) int {
	for i, node := range members {
		if node.Kind == m.KindScope && node.Name == name {
			return i
		}
	}

	return -1
}

func fileScope(members []m.Node) (m.Node, bool) {
	for _, node := range members {
		if node.Kind == m.KindScope && node.Shape == m.ShapeFile {
			return node, true
		}
	}

	return m.Node{}, false
}

func holdsDeclarations(members []m.Node) bool {
	for _, node := range members {
		if node.Kind == m.KindType || node.Kind == m.KindScope {
			return true
		}
	}

	return false
}

// appendMember returns a copy of members with node appended to the scope
// addressed by path, or to members itself when path is empty.
func appendMember(members []m.Node, path []int, node m.Node) ([]m.Node, error) {
	if len(path) == 0 {
		return append(slices.Clone(members), node), nil
	}

	idx := path[0]
	if idx < 0 || idx >= len(members) || members[idx].Kind != m.KindScope {
		return nil, fmt.Errorf("%w: no scope at index %d", ErrStaleTarget, idx)
	}

	inner, err := appendMember(members[idx].Members, path[1:], node)
	if err != nil {
		return nil, err
	}

	out := slices.Clone(members)
	out[idx] = members[idx].WithMembers(inner)

	return out, nil
}

// removeDeclaration returns a copy of unit without the node at path.
func removeDeclaration(unit m.Unit, path []int) (m.Unit, error) {
	members, err := removeMember(unit.Members, path)
	if err != nil {
		return m.Unit{}, fmt.Errorf("%s: %w", unit.Path, err)
	}

	if len(path) == 1 && path[0] == 0 && len(members) > 0 {
		members[0] = members[0].WithText(trimLeadingBlankLines(members[0].Text))
	}

	return unit.WithMembers(members), nil
}

func removeMember(members []m.Node, path []int) ([]m.Node, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("%w: empty member path", ErrStaleTarget)
	}

	idx := path[0]
	if idx < 0 || idx >= len(members) {
		return nil, fmt.Errorf("%w: no member at index %d", ErrStaleTarget, idx)
	}

	if len(path) == 1 {
		out := make([]m.Node, 0, len(members)-1)
		out = append(out, members[:idx]...)

		return append(out, members[idx+1:]...), nil
	}

	parent := members[idx]
	if parent.Kind != m.KindScope {
		return nil, fmt.Errorf("%w: member %d is not a scope", ErrStaleTarget, idx)
	}

	inner, err := removeMember(parent.Members, path[1:])
	if err != nil {
		return nil, err
	}

	out := slices.Clone(members)
	out[idx] = parent.WithMembers(inner)

	return out, nil
}

// mergeDirectives appends to unit the directives it does not hold yet,
// right after its last root directive. Unique directives (Java package
// declarations) are never copied between files.
func mergeDirectives(unit m.Unit, directives []m.Node) m.Unit {
	have := make(map[string]bool)
	last := -1

	for i, node := range unit.Members {
		if node.Kind == m.KindOther && node.Directive {
			have[strings.TrimSpace(node.Text)] = true
			last = i
		}
	}

	var missing []m.Node

	for _, directive := range directives {
		key := strings.TrimSpace(directive.Text)
		if directive.Unique || have[key] {
			continue
		}

		have[key] = true
		missing = append(missing, separate(directive, last < 0 && len(missing) == 0))
	}

	if len(missing) == 0 {
		return unit
	}

	at := last + 1
	members := make([]m.Node, 0, len(unit.Members)+len(missing))
	members = append(members, unit.Members[:at]...)
	members = append(members, missing...)

	for i, node := range unit.Members[at:] {
		if i == 0 {
			node = separate(node, false)
		}

		members = append(members, node)
	}

	return unit.WithMembers(members)
}

// separate makes sure node starts on its own line. A node becoming the first
// member of a file loses its leading blank lines instead.
func separate(node m.Node, first bool) m.Node {
	if first {
		return node.WithText(trimLeadingBlankLines(node.Text))
	}

	if strings.HasPrefix(strings.TrimLeft(node.Text, " \t"), "\n") || strings.HasPrefix(strings.TrimLeft(node.Text, " \t"), "\r\n") {
		return node
	}

	return node.WithText("\n" + node.Text)
}

// trimLeadingBlankLines drops the whitespace-only lines at the start of text
// and keeps the indentation of the first non-blank line.
func trimLeadingBlankLines(text string) string {
	content := strings.IndexFunc(text, func(r rune) bool {
		return r != ' ' && r != '\t' && r != '\r' && r != '\n'
	})
	if content < 0 {
		content = len(text)
	}

	if nl := strings.LastIndex(text[:content], "\n"); nl >= 0 {
		return text[nl+1:]
	}

	return text
}
