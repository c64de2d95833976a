package harness

import (
	"fmt"
	"strings"
	"unicode"
)

// MarkerExpr selects checks by their markers.
//
// Grammar, loosest binding first:
//
//	expr    = and { "or" and }
//	and     = not { "and" not }
//	not     = "not" not | primary
//	primary = marker | "(" expr ")"
//
// An empty expression matches every check.
type MarkerExpr struct {
	src  string
	eval func(set map[string]bool) bool
}

// ParseMarkerExpr parses src. Every marker name must appear in registered.
func ParseMarkerExpr(src string, registered map[string]string) (*MarkerExpr, error) {
	tokens := tokenizeMarkers(src)
	if len(tokens) == 0 {
		return &MarkerExpr{src: src}, nil
	}

	p := &markerParser{tokens: tokens, registered: registered}
	eval, err := p.parseOr()
	if err != nil {
		return nil, fmt.Errorf("invalid marker expression %q: %w", src, err)
	}
	if p.pos < len(p.tokens) {
		return nil, fmt.Errorf("invalid marker expression %q: unexpected %q", src, p.tokens[p.pos])
	}
	return &MarkerExpr{src: src, eval: eval}, nil
}

// Match reports whether a check tagged with markers is selected.
func (e *MarkerExpr) Match(markers []string) bool {
	if e == nil || e.eval == nil {
		return true
	}
	set := make(map[string]bool, len(markers))
	for _, m := range markers {
		set[m] = true
	}
	return e.eval(set)
}

// String returns the source expression.
func (e *MarkerExpr) String() string {
	if e == nil {
		return ""
	}
	return e.src
}

func tokenizeMarkers(src string) []string {
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range src {
		switch {
		case r == '(' || r == ')':
			flush()
			tokens = append(tokens, string(r))
		case unicode.IsSpace(r):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}

type markerParser struct {
	tokens     []string
	pos        int
	registered map[string]string
}

func (p *markerParser) peek() string {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return ""
}

func (p *markerParser) parseOr() (func(map[string]bool) bool, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek() == "or" {
		p.pos++
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		l := left
		left = func(set map[string]bool) bool { return l(set) || right(set) }
	}
	return left, nil
}

func (p *markerParser) parseAnd() (func(map[string]bool) bool, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.peek() == "and" {
		p.pos++
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		l := left
		left = func(set map[string]bool) bool { return l(set) && right(set) }
	}
	return left, nil
}

func (p *markerParser) parseNot() (func(map[string]bool) bool, error) {
	if p.peek() == "not" {
		p.pos++
		inner, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return func(set map[string]bool) bool { return !inner(set) }, nil
	}
	return p.parsePrimary()
}

func (p *markerParser) parsePrimary() (func(map[string]bool) bool, error) {
	tok := p.peek()
	switch tok {
	case "":
		return nil, fmt.Errorf("unexpected end of expression")
	case "(":
		p.pos++
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.peek() != ")" {
			return nil, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return inner, nil
	case ")", "and", "or":
		return nil, fmt.Errorf("unexpected %q", tok)
	}

	if _, ok := p.registered[tok]; !ok {
		return nil, fmt.Errorf("marker %q is not registered", tok)
	}
	p.pos++
	return func(set map[string]bool) bool { return set[tok] }, nil
}
