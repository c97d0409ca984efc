package adapter

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/java"

	m "onetype.dev/pkg/onetype/internal/model"
)

var (
	// ErrUnsupportedLanguage is returned for files no grammar is registered for.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrSyntax is returned when a file does not parse cleanly.
	ErrSyntax = errors.New("syntax error")
)

// ParserAdapter turns source text into the lossless member tree the checker
// and the fix engine work on.
type ParserAdapter interface {
	// Parse builds the unit for the file at path holding content. Rendering
	// the result reproduces content exactly.
	Parse(ctx context.Context, path m.Path, content []byte) (m.Unit, error)

	// Supports reports whether path has a registered language.
	Supports(path m.Path) bool

	// Extensions lists the registered file extensions.
	Extensions() []string
}

// language maps the node types of one grammar onto the member tree.
type language struct {
	name    string
	grammar *sitter.Language
	// types maps declaration node types to their keyword.
	types       map[string]string
	blockScopes []string
	fileScopes  []string
	directives  []string
	unique      []string
	trivia      []string
}

// languages maps lower-case file extensions to their grammar.
var languages = map[string]*language{
	".cs": {
		name:    "csharp",
		grammar: csharp.GetLanguage(),
		types: map[string]string{
			"class_declaration":         "class",
			"struct_declaration":        "struct",
			"interface_declaration":     "interface",
			"enum_declaration":          "enum",
			"record_declaration":        "record",
			"record_struct_declaration": "record struct",
			"delegate_declaration":      "delegate",
		},
		blockScopes: []string{"namespace_declaration"},
		fileScopes:  []string{"file_scoped_namespace_declaration"},
		directives:  []string{"using_directive", "extern_alias_directive"},
		trivia:      []string{"comment"},
	},
	".java": {
		name:    "java",
		grammar: java.GetLanguage(),
		types: map[string]string{
			"class_declaration":           "class",
			"interface_declaration":       "interface",
			"enum_declaration":            "enum",
			"record_declaration":          "record",
			"annotation_type_declaration": "@interface",
		},
		directives: []string{"package_declaration", "import_declaration"},
		unique:     []string{"package_declaration"},
		trivia:     []string{"line_comment", "block_comment", "comment"},
	},
}

// TreeSitterParserAdapter parses C# and Java sources with tree-sitter.
type TreeSitterParserAdapter struct{}

// NewTreeSitterParserAdapter creates a TreeSitterParserAdapter.
func NewTreeSitterParserAdapter() *TreeSitterParserAdapter {
	return &TreeSitterParserAdapter{}
}

// Supports reports whether a grammar is registered for the extension of path.
func (a *TreeSitterParserAdapter) Supports(path m.Path) bool {
	_, ok := languages[strings.ToLower(m.Ext(path))]
	return ok
}

// Extensions lists the registered extensions in sorted order.
func (a *TreeSitterParserAdapter) Extensions() []string {
	exts := make([]string, 0, len(languages))
	for ext := range languages {
		exts = append(exts, ext)
	}

	slices.Sort(exts)

	return exts
}

// Parse parses content and segments it into members.
func (a *TreeSitterParserAdapter) Parse(ctx context.Context, path m.Path, content []byte) (m.Unit, error) {
	lang, ok := languages[strings.ToLower(m.Ext(path))]
	if !ok {
		return m.Unit{}, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, path)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(lang.grammar)

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return m.Unit{}, fmt.Errorf("parse %s: %w", path, err)
	}

	root := tree.RootNode()
	if root.HasError() {
		return m.Unit{}, fmt.Errorf("%w: %s (%s)", ErrSyntax, path, lang.name)
	}

	b := &segmenter{lang: lang, src: content}
	members, end := b.members(root, 0, 0)

	return m.Unit{
		Path:    path,
		Members: members,
		Trailer: string(content[end:]),
	}, nil
}

// segmenter cuts the source into members. Every member's text starts where
// the previous one ended, so leading comments and blank lines belong to the
// member that follows them.
type segmenter struct {
	lang *language
	src  []byte
}

// members segments the named children of container starting at child index
// from, ignoring children that begin before start. It returns the members and
// the offset where the last one ends.
func (s *segmenter) members(container *sitter.Node, from int, start uint32) ([]m.Node, uint32) {
	var members []m.Node

	prev := start
	count := int(container.NamedChildCount())

	for i := from; i < count; i++ {
		child := container.NamedChild(i)
		if child.StartByte() < start || s.isTrivia(child) {
			continue
		}

		if slices.Contains(s.lang.fileScopes, child.Type()) && !s.holdsMembers(child) {
			scope, end := s.foldFileScope(container, child, i, prev)
			members = append(members, scope)
			prev = end

			break
		}

		members = append(members, s.member(child, prev))
		prev = child.EndByte()
	}

	return members, prev
}

func (s *segmenter) member(node *sitter.Node, prev uint32) m.Node {
	kind := node.Type()

	switch {
	case s.lang.types[kind] != "":
		return s.typeNode(node, prev)
	case slices.Contains(s.lang.blockScopes, kind):
		return s.blockScope(node, prev)
	case slices.Contains(s.lang.fileScopes, kind):
		return s.fileScope(node, prev)
	case s.isPreprocessor(node):
		return s.opaqueScope(node, prev)
	}

	return m.Node{
		Kind:      m.KindOther,
		Text:      s.text(prev, node.EndByte()),
		Directive: slices.Contains(s.lang.directives, kind),
		Unique:    slices.Contains(s.lang.unique, kind),
	}
}

func (s *segmenter) typeNode(node *sitter.Node, prev uint32) m.Node {
	name := node.ChildByFieldName("name")
	if name == nil {
		return m.Node{Kind: m.KindOther, Text: s.text(prev, node.EndByte())}
	}

	return m.Node{
		Kind:       m.KindType,
		Name:       name.Content(s.src),
		Text:       s.text(prev, node.EndByte()),
		Keyword:    s.lang.types[node.Type()],
		NameOffset: int(name.StartByte() - prev),
		Nested:     s.nestedTypes(node),
	}
}

// blockScope builds a braced namespace. Its text runs up to the opening brace
// and Close holds everything from the end of the last member.
func (s *segmenter) blockScope(node *sitter.Node, prev uint32) m.Node {
	name := node.ChildByFieldName("name")
	body := node.ChildByFieldName("body")

	open := firstChildOfType(body, "{")
	if name == nil || open == nil {
		return m.Node{Kind: m.KindOther, Text: s.text(prev, node.EndByte())}
	}

	members, end := s.members(body, 0, open.EndByte())

	return m.Node{
		Kind:    m.KindScope,
		Name:    name.Content(s.src),
		Text:    s.text(prev, open.EndByte()),
		Members: members,
		Close:   s.text(end, node.EndByte()),
		Shape:   m.ShapeBlock,
	}
}

// fileScope builds a file-scoped namespace whose members are children of
// the declaration node.
func (s *segmenter) fileScope(node *sitter.Node, prev uint32) m.Node {
	name := node.ChildByFieldName("name")

	semi := firstChildOfType(node, ";")
	if name == nil || semi == nil {
		return m.Node{Kind: m.KindOther, Text: s.text(prev, node.EndByte())}
	}

	members, end := s.members(node, 0, semi.EndByte())

	return m.Node{
		Kind:    m.KindScope,
		Name:    name.Content(s.src),
		Text:    s.text(prev, semi.EndByte()),
		Members: members,
		Close:   s.text(end, node.EndByte()),
		Shape:   m.ShapeFile,
	}
}

// foldFileScope handles grammars that emit a file-scoped namespace as a bare
// clause followed by its members as siblings. The siblings are folded into the
// scope.
func (s *segmenter) foldFileScope(container, clause *sitter.Node, index int, prev uint32) (m.Node, uint32) {
	name := clause.ChildByFieldName("name")
	members, end := s.members(container, index+1, clause.EndByte())

	scope := m.Node{
		Kind:    m.KindScope,
		Text:    s.text(prev, clause.EndByte()),
		Members: members,
		Shape:   m.ShapeFile,
	}

	if name != nil {
		scope.Name = name.Content(s.src)
	}

	return scope, end
}

// opaqueScope wraps a conditional compilation region that holds declarations.
// The engine reads through it but refuses to rebuild it.
func (s *segmenter) opaqueScope(node *sitter.Node, prev uint32) m.Node {
	first := uint32(0)
	found := false

	for i := range int(node.NamedChildCount()) {
		child := node.NamedChild(i)
		if s.isDeclaration(child) {
			first, found = child.StartByte(), true
			break
		}
	}

	if !found {
		return m.Node{Kind: m.KindOther, Text: s.text(prev, node.EndByte())}
	}

	head := s.lineStart(first)
	if head < prev {
		head = prev
	}

	members, end := s.members(node, 0, head)

	return m.Node{
		Kind:    m.KindScope,
		Name:    "#" + node.Type(),
		Text:    s.text(prev, head),
		Members: members,
		Close:   s.text(end, node.EndByte()),
		Shape:   m.ShapeUnknown,
	}
}

// nestedTypes lists the names of the types declared inside a type.
func (s *segmenter) nestedTypes(node *sitter.Node) []string {
	var names []string

	var walk func(n *sitter.Node)

	walk = func(n *sitter.Node) {
		for i := range int(n.NamedChildCount()) {
			child := n.NamedChild(i)
			if s.lang.types[child.Type()] != "" {
				if name := child.ChildByFieldName("name"); name != nil {
					names = append(names, name.Content(s.src))
				}
			}

			walk(child)
		}
	}

	walk(node)

	return names
}

func (s *segmenter) isTrivia(node *sitter.Node) bool {
	if slices.Contains(s.lang.trivia, node.Type()) {
		return true
	}

	return s.isPreprocessor(node) && !s.holdsMembers(node)
}

func (s *segmenter) isPreprocessor(node *sitter.Node) bool {
	return strings.HasPrefix(node.Type(), "preproc")
}

func (s *segmenter) isDeclaration(node *sitter.Node) bool {
	kind := node.Type()

	return s.lang.types[kind] != "" ||
		slices.Contains(s.lang.blockScopes, kind) ||
		slices.Contains(s.lang.fileScopes, kind)
}

// holdsMembers reports whether node has declarations among its direct
// children.
func (s *segmenter) holdsMembers(node *sitter.Node) bool {
	for i := range int(node.NamedChildCount()) {
		if s.isDeclaration(node.NamedChild(i)) {
			return true
		}
	}

	return false
}

// lineStart returns the offset of the first byte of the line holding offset.
func (s *segmenter) lineStart(offset uint32) uint32 {
	for offset > 0 && s.src[offset-1] != '\n' {
		offset--
	}

	return offset
}

func (s *segmenter) text(from, to uint32) string {
	if from >= to {
		return ""
	}

	return string(s.src[from:to])
}

func firstChildOfType(node *sitter.Node, kind string) *sitter.Node {
	if node == nil {
		return nil
	}

	for i := range int(node.ChildCount()) {
		child := node.Child(i)
		if child.Type() == kind {
			return child
		}
	}

	return nil
}
