package expression

import (
	"fmt"
	"maps"
	"slices"
)

// PathRef is a statically extracted reference, used to find which upstream
// step a field depends on.
type PathRef struct {
	Root     Root
	Node     string
	Segments []Accessor
	// Raw is the span source, delimiters included.
	Raw string
}

// IsNodeRef reports whether the reference reads another node's output.
func (r PathRef) IsNodeRef() bool {
	return r.Root == RootNodes || r.Root == RootNode
}

// ExtractReferences parses every span of the template without evaluating it.
func ExtractReferences(template string) ([]PathRef, error) {
	var refs []PathRef
	for _, seg := range Scan(template) {
		if !seg.IsExpr {
			continue
		}
		p, err := Parse(seg.Text)
		if err != nil {
			return refs, err
		}
		refs = append(refs, PathRef{Root: p.Root, Node: p.Node, Segments: p.Segments, Raw: seg.Raw})
	}
	return refs, nil
}

// ConfigReferences extracts references from every string in a config map,
// recursing into nested values in key order. Syntax errors are collected,
// prefixed with the config path, and do not stop the walk.
func ConfigReferences(cfg map[string]any) ([]PathRef, []error) {
	var refs []PathRef
	var errs []error
	var visit func(path string, v any)
	visit = func(path string, v any) {
		switch t := v.(type) {
		case string:
			r, err := ExtractReferences(t)
			refs = append(refs, r...)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", path, err))
			}
		case map[string]any:
			for _, k := range slices.Sorted(maps.Keys(t)) {
				visit(joinPath(path, k), t[k])
			}
		case []any:
			for i, e := range t {
				visit(fmt.Sprintf("%s[%d]", path, i), e)
			}
		}
	}
	for _, k := range slices.Sorted(maps.Keys(cfg)) {
		visit(k, cfg[k])
	}
	return refs, errs
}

// ReferencedNodes returns the distinct node names referenced by the config, in
// first-seen order.
func ReferencedNodes(cfg map[string]any) []string {
	refs, _ := ConfigReferences(cfg)
	seen := make(map[string]bool)
	var names []string
	for _, r := range refs {
		if r.IsNodeRef() && !seen[r.Node] {
			seen[r.Node] = true
			names = append(names, r.Node)
		}
	}
	return names
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
