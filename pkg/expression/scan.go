package expression

import "strings"

const (
	openDelim  = "{{"
	closeDelim = "}}"
)

// Segment is one piece of a scanned template.
type Segment struct {
	// IsExpr is true for {{ ... }} spans.
	IsExpr bool
	// Text is the literal text, or the trimmed source between the delimiters.
	Text string
	// Raw is the exact source of the segment, delimiters included.
	Raw string
}

// Scan splits a template into literal and expression segments in a single pass.
// An opening delimiter without a matching close is literal text. Quoted strings
// inside a span may contain "}}".
func Scan(template string) []Segment {
	var segs []Segment
	rest := template
	for len(rest) > 0 {
		start := strings.Index(rest, openDelim)
		if start < 0 {
			segs = append(segs, Segment{Text: rest, Raw: rest})
			break
		}
		end := findClose(rest, start+len(openDelim))
		if end < 0 {
			segs = append(segs, Segment{Text: rest, Raw: rest})
			break
		}
		if start > 0 {
			segs = append(segs, Segment{Text: rest[:start], Raw: rest[:start]})
		}
		raw := rest[start : end+len(closeDelim)]
		segs = append(segs, Segment{
			IsExpr: true,
			Text:   strings.TrimSpace(rest[start+len(openDelim) : end]),
			Raw:    raw,
		})
		rest = rest[end+len(closeDelim):]
	}
	return segs
}

// findClose returns the index of the closing delimiter at or after from,
// skipping over quoted strings, or -1.
func findClose(s string, from int) int {
	var quote byte
	for i := from; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '}' && i+1 < len(s) && s[i+1] == '}':
			return i
		}
	}
	return -1
}

// HasExpression reports whether s contains at least one complete {{ ... }} span.
func HasExpression(s string) bool {
	if !strings.Contains(s, openDelim) {
		return false
	}
	for _, seg := range Scan(s) {
		if seg.IsExpr {
			return true
		}
	}
	return false
}

// PlaceholderJSON replaces every expression span with a JSON-safe token so the
// surrounding document can be checked with a JSON parser. Spans inside a JSON
// string become a bare token; spans elsewhere become null.
func PlaceholderJSON(s string) string {
	var sb strings.Builder
	inString := false
	for _, seg := range Scan(s) {
		if seg.IsExpr {
			if inString {
				sb.WriteString("__expr__")
			} else {
				sb.WriteString("null")
			}
			continue
		}
		for i := 0; i < len(seg.Text); i++ {
			c := seg.Text[i]
			if inString && c == '\\' {
				i++
				continue
			}
			if c == '"' {
				inString = !inString
			}
		}
		sb.WriteString(seg.Text)
	}
	return sb.String()
}
