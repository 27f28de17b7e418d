package scribe

import (
	"fmt"
	"regexp"
	"sort"
)

// accessorPattern matches a string consisting entirely of one or more
// bracketed, non-empty, bracket-free segments, e.g. "[a][b]". A string value
// matching this pattern resolves to the referenced field's value as-is;
// any other string is a template and always yields a string.
var accessorPattern = regexp.MustCompile(`^(\[[^\[\]]+\])+$`)

// placeholderPattern matches %{path} field references inside a template.
var placeholderPattern = regexp.MustCompile(`%\{([^{}]+)\}`)

type nodeKind int

const (
	literalNode nodeKind = iota
	accessorNode
	templateNode
	mapNode
	listNode
)

type mapEntry struct {
	key   string // key template, interpolated per build
	value *node
}

// node is one compiled template node. Classification happens once at compile
// time; Build only dispatches on kind.
type node struct {
	kind     nodeKind
	literal  any
	path     string
	template string
	entries  []mapEntry
	elements []*node
}

// Mapping is a compiled encode mapping template. It is immutable after
// CompileMapping and safe to share across concurrent Build calls.
type Mapping struct {
	root *node
}

// CompileMapping classifies a declarative template structure into a compiled
// Mapping. Map values recurse; string values are classified as accessor or
// template exactly once here. Map keys are compiled in sorted order so that
// interpolated key collisions resolve deterministically, last write winning.
func CompileMapping(spec any) (*Mapping, error) {
	root, err := compileNode(spec)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMapping, err)
	}
	return &Mapping{root: root}, nil
}

func compileNode(spec any) (*node, error) {
	switch value := spec.(type) {
	case string:
		if accessorPattern.MatchString(value) {
			return &node{kind: accessorNode, path: value}, nil
		}
		return &node{kind: templateNode, template: value}, nil
	case map[string]any:
		keys := make([]string, 0, len(value))
		for k := range value {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]mapEntry, 0, len(keys))
		for _, k := range keys {
			child, err := compileNode(value[k])
			if err != nil {
				return nil, err
			}
			entries = append(entries, mapEntry{key: k, value: child})
		}
		return &node{kind: mapNode, entries: entries}, nil
	case []any:
		elements := make([]*node, len(value))
		for i, el := range value {
			child, err := compileNode(el)
			if err != nil {
				return nil, err
			}
			elements[i] = child
		}
		return &node{kind: listNode, elements: elements}, nil
	case map[any]any:
		return nil, fmt.Errorf("mapping keys must be strings")
	default:
		return &node{kind: literalNode, literal: value}, nil
	}
}

// Build resolves the mapping against a record and returns the output value
// tree. It is a pure function: no side effects, total over any compiled
// mapping. Missing accessor paths resolve to nil; missing interpolation
// references resolve to the empty string.
func (m *Mapping) Build(rec Record) any {
	return m.root.build(rec)
}

func (n *node) build(rec Record) any {
	switch n.kind {
	case accessorNode:
		v, _ := rec.Get(n.path)
		return v
	case templateNode:
		return interpolate(rec, n.template)
	case mapNode:
		out := make(map[string]any, len(n.entries))
		for _, entry := range n.entries {
			out[interpolate(rec, entry.key)] = entry.value.build(rec)
		}
		return out
	case listNode:
		out := make([]any, len(n.elements))
		for i, el := range n.elements {
			out[i] = el.build(rec)
		}
		return out
	default:
		return n.literal
	}
}

// interpolate substitutes %{path} references with stringified field values.
func interpolate(rec Record, s string) string {
	return placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		ref := match[2 : len(match)-1]
		v, ok := rec.Get(ref)
		if !ok {
			return ""
		}
		return stringify(v)
	})
}
