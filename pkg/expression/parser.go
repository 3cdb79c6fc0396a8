package expression

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrSyntax is returned for malformed expression spans.
var ErrSyntax = errors.New("expression syntax error")

// Root selects the top-level namespace of a path.
type Root string

const (
	RootJSON     Root = "$json"
	RootTrigger  Root = "trigger"
	RootNodes    Root = "nodes"
	RootNode     Root = "$node"
	RootEnv      Root = "$env"
	RootNow      Root = "$now"
	RootRandomID Root = "$randomId"
)

// Accessor is one step of a path: a property key or an array index.
type Accessor struct {
	Key     string
	Index   int
	IsIndex bool
}

func (a Accessor) String() string {
	if a.IsIndex {
		return "[" + strconv.Itoa(a.Index) + "]"
	}
	if isPlainIdent(a.Key) {
		return "." + a.Key
	}
	return "[" + strconv.Quote(a.Key) + "]"
}

// Path is a parsed expression. For RootNodes and RootNode, Node names the
// referenced step and Segments start below it.
type Path struct {
	Root     Root
	Node     string
	Segments []Accessor
}

// String renders the path in canonical form.
func (p Path) String() string {
	var sb strings.Builder
	sb.WriteString(string(p.Root))
	switch p.Root {
	case RootNodes:
		sb.WriteString(Accessor{Key: p.Node}.String())
	case RootNode:
		sb.WriteString("[" + strconv.Quote(p.Node) + "]")
	}
	for _, s := range p.Segments {
		sb.WriteString(s.String())
	}
	return sb.String()
}

func isPlainIdent(s string) bool {
	if s == "" || !isIdentStart(s[0]) || s[0] == '$' {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentPart(s[i]) || s[i] == '-' {
			return false
		}
	}
	return true
}

// Parse parses the source between {{ and }}.
func Parse(src string) (Path, error) {
	toks, err := lex(src)
	if err != nil {
		return Path{}, err
	}
	p := &parser{toks: toks, src: src}
	return p.parse()
}

type parser struct {
	toks []token
	pos  int
	src  string
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind tokenKind) (token, error) {
	t := p.next()
	if t.kind != kind {
		return t, p.errorf(t, "expected %s, found %s", kind, t.kind)
	}
	return t, nil
}

func (p *parser) errorf(t token, format string, args ...any) error {
	return fmt.Errorf("%w: %s at %d in %q", ErrSyntax, fmt.Sprintf(format, args...), t.pos, p.src)
}

func (p *parser) parse() (Path, error) {
	head := p.next()
	if head.kind != tokIdent {
		return Path{}, p.errorf(head, "expected root, found %s", head.kind)
	}

	path := Path{Root: Root(head.text)}
	switch path.Root {
	case RootJSON, RootTrigger, RootEnv:
	case RootNow, RootRandomID:
		if t := p.peek(); t.kind != tokEOF {
			return Path{}, p.errorf(t, "%s takes no accessors", path.Root)
		}
		return path, nil
	case RootNodes:
		first, err := p.accessor()
		if err != nil {
			return Path{}, err
		}
		if first.IsIndex {
			return Path{}, p.errorf(p.peek(), "nodes must be followed by a node name")
		}
		path.Node = first.Key
	case RootNode:
		if _, err := p.expect(tokLBracket); err != nil {
			return Path{}, err
		}
		name, err := p.expect(tokString)
		if err != nil {
			return Path{}, err
		}
		if _, err := p.expect(tokRBracket); err != nil {
			return Path{}, err
		}
		path.Node = name.text
	default:
		return Path{}, p.errorf(head, "unknown root %q", head.text)
	}

	for p.peek().kind != tokEOF {
		acc, err := p.accessor()
		if err != nil {
			return Path{}, err
		}
		path.Segments = append(path.Segments, acc)
	}

	if path.Root == RootEnv && (len(path.Segments) != 1 || path.Segments[0].IsIndex) {
		return Path{}, p.errorf(p.peek(), "$env expects exactly one variable name")
	}
	return path, nil
}

func (p *parser) accessor() (Accessor, error) {
	t := p.next()
	switch t.kind {
	case tokDot:
		name := p.next()
		switch name.kind {
		case tokIdent, tokInt:
			return Accessor{Key: name.text}, nil
		}
		return Accessor{}, p.errorf(name, "expected property name after '.', found %s", name.kind)
	case tokLBracket:
		inner := p.next()
		var acc Accessor
		switch inner.kind {
		case tokInt:
			n, err := strconv.Atoi(inner.text)
			if err != nil {
				return Accessor{}, p.errorf(inner, "invalid index %q", inner.text)
			}
			acc = Accessor{Index: n, IsIndex: true}
		case tokString:
			acc = Accessor{Key: inner.text}
		default:
			return Accessor{}, p.errorf(inner, "expected index or quoted key, found %s", inner.kind)
		}
		if _, err := p.expect(tokRBracket); err != nil {
			return Accessor{}, err
		}
		return acc, nil
	}
	return Accessor{}, p.errorf(t, "expected '.' or '[', found %s", t.kind)
}
