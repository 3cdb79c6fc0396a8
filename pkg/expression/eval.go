package expression

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"
)

// UnresolvedMarker is the type of the Unresolved sentinel.
type UnresolvedMarker struct{}

func (UnresolvedMarker) String() string { return "<unresolved>" }

// Unresolved is returned in place of a value whose path is missing from the context.
var Unresolved = UnresolvedMarker{}

// IsUnresolved reports whether v is the Unresolved sentinel.
func IsUnresolved(v any) bool {
	_, ok := v.(UnresolvedMarker)
	return ok
}

// Result is the outcome of resolving a template.
type Result struct {
	// Value is the raw value for single-expression templates, the concatenated
	// string for mixed templates, or the template itself when it has no spans.
	Value any
	// Unresolved lists the source of every span that could not be resolved.
	Unresolved []string
}

// Resolved reports whether every span resolved.
func (r Result) Resolved() bool { return len(r.Unresolved) == 0 }

// Resolve evaluates every expression span in the template against ctx.
// A template consisting of exactly one span yields that span's raw value.
// Otherwise spans are stringified in place and literal text is preserved;
// unresolved spans keep their original text.
func Resolve(template string, ctx *DataContext) (Result, error) {
	segs := Scan(template)
	paths := make([]Path, len(segs))
	exprs := 0
	for i, seg := range segs {
		if !seg.IsExpr {
			continue
		}
		p, err := Parse(seg.Text)
		if err != nil {
			return Result{}, err
		}
		paths[i] = p
		exprs++
	}
	if exprs == 0 {
		return Result{Value: template}, nil
	}

	if len(segs) == 1 {
		v, ok := Evaluate(paths[0], ctx)
		if !ok {
			return Result{Value: Unresolved, Unresolved: []string{segs[0].Raw}}, nil
		}
		return Result{Value: v}, nil
	}

	var res Result
	var sb strings.Builder
	for i, seg := range segs {
		if !seg.IsExpr {
			sb.WriteString(seg.Text)
			continue
		}
		v, ok := Evaluate(paths[i], ctx)
		if !ok {
			res.Unresolved = append(res.Unresolved, seg.Raw)
			sb.WriteString(seg.Raw)
			continue
		}
		sb.WriteString(Stringify(v))
	}
	res.Value = sb.String()
	return res, nil
}

// Evaluate walks a parsed path against ctx. It returns false when any step is missing.
func Evaluate(p Path, ctx *DataContext) (any, bool) {
	var base any
	switch p.Root {
	case RootNow:
		return ctx.now(), true
	case RootRandomID:
		return ctx.randomID(), true
	case RootEnv:
		if ctx == nil {
			return nil, false
		}
		v, ok := ctx.Env[p.Segments[0].Key]
		return v, ok
	case RootJSON:
		base = ctx.currentInput()
		if base == nil {
			return nil, false
		}
	case RootTrigger:
		if ctx == nil || ctx.Trigger == nil {
			return nil, false
		}
		base = ctx.Trigger
	case RootNodes, RootNode:
		if ctx == nil {
			return nil, false
		}
		out, ok := ctx.Nodes[p.Node]
		if !ok {
			return nil, false
		}
		base = out
		segs := p.Segments
		if p.Root == RootNode && len(segs) > 0 && !segs[0].IsIndex && segs[0].Key == "json" {
			if m, ok := out.(map[string]any); ok {
				if inner, ok := m["json"]; ok {
					base = inner
				}
			}
			segs = segs[1:]
		}
		return walk(base, segs)
	default:
		return nil, false
	}
	return walk(base, p.Segments)
}

func walk(v any, segs []Accessor) (any, bool) {
	cur := v
	for _, s := range segs {
		next, ok := step(cur, s)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

func step(v any, s Accessor) (any, bool) {
	if s.IsIndex {
		switch t := v.(type) {
		case []any:
			if s.Index < len(t) {
				return t[s.Index], true
			}
		case []string:
			if s.Index < len(t) {
				return t[s.Index], true
			}
		case []map[string]any:
			if s.Index < len(t) {
				return t[s.Index], true
			}
		}
		return nil, false
	}
	switch t := v.(type) {
	case map[string]any:
		out, ok := t[s.Key]
		return out, ok
	case map[string]string:
		out, ok := t[s.Key]
		return out, ok
	case []any:
		// numeric keys written as .0
		if n, err := strconv.Atoi(s.Key); err == nil && n >= 0 && n < len(t) {
			return t[n], true
		}
	}
	return nil, false
}

// Stringify renders a resolved value for concatenation into a template.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case time.Time:
		return t.Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", t)
	case map[string]any, []any, map[string]string, []string:
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(data)
	}
	return fmt.Sprint(v)
}

// ResolveConfig resolves every string value of a config map, recursing into
// nested maps and slices. Unresolved spans from every value are collected.
func ResolveConfig(cfg map[string]any, ctx *DataContext) (map[string]any, []string, error) {
	var unresolved []string
	out, err := resolveValue(cfg, ctx, &unresolved)
	if err != nil {
		return nil, unresolved, err
	}
	m, _ := out.(map[string]any)
	return m, unresolved, nil
}

func resolveValue(v any, ctx *DataContext, unresolved *[]string) (any, error) {
	switch t := v.(type) {
	case string:
		res, err := Resolve(t, ctx)
		if err != nil {
			return nil, err
		}
		*unresolved = append(*unresolved, res.Unresolved...)
		return res.Value, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for _, k := range slices.Sorted(maps.Keys(t)) {
			e := t[k]
			r, err := resolveValue(e, ctx, unresolved)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = r
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			r, err := resolveValue(e, ctx, unresolved)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = r
		}
		return out, nil
	}
	return v, nil
}
