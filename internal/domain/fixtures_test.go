package domain

import (
	"strings"

	m "onetype.dev/pkg/onetype/internal/model"
)

// The helpers below build trees the way the parser segments source: every
// node carries its leading trivia.

func directive(text string) m.Node {
	return m.Node{Kind: m.KindOther, Text: text, Directive: true}
}

func packageClause(text string) m.Node {
	return m.Node{Kind: m.KindOther, Text: text, Directive: true, Unique: true}
}

func typeDecl(text, name string) m.Node {
	return m.Node{
		Kind:       m.KindType,
		Name:       name,
		Text:       text,
		Keyword:    "class",
		NameOffset: strings.Index(text, " "+name) + 1,
	}
}

func blockScope(open, name, close string, members ...m.Node) m.Node {
	return m.Node{Kind: m.KindScope, Name: name, Text: open, Close: close, Members: members, Shape: m.ShapeBlock}
}

func fileScope(open, name string, members ...m.Node) m.Node {
	return m.Node{Kind: m.KindScope, Name: name, Text: open, Members: members, Shape: m.ShapeFile}
}

func region(open, close string, members ...m.Node) m.Node {
	return m.Node{Kind: m.KindScope, Name: "#preproc_if", Text: open, Close: close, Members: members, Shape: m.ShapeUnknown}
}

func unit(path m.Path, trailer string, members ...m.Node) m.Unit {
	return m.Unit{Path: path, Members: members, Trailer: trailer}
}

// twoTypesUnit is
//
//	using System;
//	using System.Linq;
//
//	namespace TestNamespace
//	{
//	    class TypeA { }
//	    class TypeB { }
//	}
func twoTypesUnit(path m.Path) m.Unit {
	return unit(path, "\n",
		directive("using System;"),
		directive("\nusing System.Linq;"),
		blockScope("\n\nnamespace TestNamespace\n{", "TestNamespace", "\n}",
			typeDecl("\n    class TypeA { }", "TypeA"),
			typeDecl("\n    class TypeB { }", "TypeB"),
		),
	)
}

// typeTexts collects the trimmed text of every top-level type in snapshot.
func typeTexts(snapshot Snapshot) []string {
	var texts []string

	var walk func(members []m.Node)

	walk = func(members []m.Node) {
		for _, node := range members {
			switch node.Kind {
			case m.KindType:
				texts = append(texts, strings.TrimSpace(node.Text))
			case m.KindScope:
				walk(node.Members)
			case m.KindOther:
			}
		}
	}

	for _, u := range snapshot.Units() {
		walk(u.Members)
	}

	return texts
}
