package domain

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	m "onetype.dev/pkg/onetype/internal/model"
)

// Declaration is a top-level type declaration located inside a unit. Types
// nested in other types are never declarations of their own.
type Declaration struct {
	Name string
	// Scopes is the scope chain from the file root down to the declaration.
	Scopes []string
	// Path holds the member indices leading from the unit root to the node.
	Path []int
	// Occurrence counts earlier declarations of the same name in the unit.
	Occurrence int
	// Offset is the byte offset of the identifier in the rendered unit.
	Offset int
	// Keyword is the declaring keyword (class, interface, enum, ...).
	Keyword string
	// Nested lists the names of the types declared inside this one.
	Nested []string
}

// Declarations lists the top-level type declarations of unit in document order.
func Declarations(unit m.Unit) []Declaration {
	var (
		decls  []Declaration
		offset int
	)

	seen := make(map[string]int)

	var walk func(members []m.Node, scopes []string, path []int)

	walk = func(members []m.Node, scopes []string, path []int) {
		for i, node := range members {
			nodePath := append(slices.Clone(path), i)

			switch node.Kind {
			case m.KindScope:
				offset += len(node.Text)
				walk(node.Members, append(slices.Clone(scopes), node.Name), nodePath)
				offset += len(node.Close)
			case m.KindType:
				decls = append(decls, Declaration{
					Name:       node.Name,
					Scopes:     slices.Clone(scopes),
					Path:       nodePath,
					Occurrence: seen[node.Name],
					Offset:     offset + node.NameOffset,
					Keyword:    node.Keyword,
					Nested:     node.Nested,
				})
				seen[node.Name]++
				offset += len(node.Text)
			case m.KindOther:
				offset += len(node.Text)
			}
		}
	}

	walk(unit.Members, nil, nil)

	return decls
}

// Directives returns the directive members (imports, usings) of a member list.
func Directives(members []m.Node) []m.Node {
	var directives []m.Node

	for _, node := range members {
		if node.Kind == m.KindOther && node.Directive {
			directives = append(directives, node)
		}
	}

	return directives
}

// locate returns the node addressed by decl and the scopes enclosing it,
// outermost first.
func locate(unit m.Unit, decl Declaration) (m.Node, []m.Node, error) {
	if len(decl.Path) == 0 {
		return m.Node{}, nil, fmt.Errorf("%w: empty declaration path for %s", ErrStaleTarget, decl.Name)
	}

	members := unit.Members

	var chain []m.Node

	for depth, idx := range decl.Path {
		if idx < 0 || idx >= len(members) {
			return m.Node{}, nil, fmt.Errorf("%w: %s not found in %s", ErrStaleTarget, decl.Name, unit.Path)
		}

		node := members[idx]

		if depth == len(decl.Path)-1 {
			if node.Kind != m.KindType || node.Name != decl.Name {
				return m.Node{}, nil, fmt.Errorf("%w: %s not found in %s", ErrStaleTarget, decl.Name, unit.Path)
			}

			return node, chain, nil
		}

		if node.Kind != m.KindScope {
			return m.Node{}, nil, fmt.Errorf("%w: %s not found in %s", ErrStaleTarget, decl.Name, unit.Path)
		}

		chain = append(chain, node)
		members = node.Members
	}

	return m.Node{}, nil, fmt.Errorf("%w: %s not found in %s", ErrStaleTarget, decl.Name, unit.Path)
}

// position converts a byte offset of text into a 1-based line and column.
// Columns count characters, not bytes.
func position(text string, offset int) (int, int) {
	if offset > len(text) {
		offset = len(text)
	}

	prefix := text[:offset]
	line := strings.Count(prefix, "\n") + 1
	column := utf8.RuneCountInString(prefix[strings.LastIndex(prefix, "\n")+1:]) + 1

	return line, column
}
