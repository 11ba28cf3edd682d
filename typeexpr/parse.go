package typeexpr

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cottand/slottype/typeerr"
)

// NormaliseName lower-cases name, so that names are case-insensitive. A Caser is
// stateful, so each call gets its own.
func NormaliseName(name string) string {
	return cases.Lower(language.Und).String(name)
}

// Parse reads a type expression. Whitespace is ignored and names are lower-cased.
func Parse(text string) (Expr, error) {
	p := &parser{input: text}
	p.skipSpace()
	e, err := p.expr()
	if err != nil {
		return Expr{}, err
	}
	p.skipSpace()
	if !p.done() {
		return Expr{}, p.fail("unexpected trailing input")
	}
	return e, nil
}

// MustParse is Parse, but panics on error. It is meant for literals in tests and
// package-level variables.
func MustParse(text string) Expr {
	e, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return e
}

// ParseAll parses every one of texts, stopping at the first error
func ParseAll(texts ...string) ([]Expr, error) {
	ret := make([]Expr, 0, len(texts))
	for _, text := range texts {
		e, err := Parse(text)
		if err != nil {
			return nil, err
		}
		ret = append(ret, e)
	}
	return ret, nil
}

type parser struct {
	input string
	pos   int
}

func (p *parser) fail(msg string) error {
	return typeerr.New(typeerr.ParseError{Input: p.input, Offset: p.pos, Message: msg})
}

func (p *parser) done() bool {
	return p.pos >= len(p.input)
}

func (p *parser) peek() rune {
	r, _ := utf8.DecodeRuneInString(p.input[p.pos:])
	return r
}

func (p *parser) skipSpace() {
	for !p.done() {
		r, size := utf8.DecodeRuneInString(p.input[p.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		p.pos += size
	}
}

func isNameRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (p *parser) name() (string, error) {
	if p.done() {
		return "", p.fail("expected a type name, found end of input")
	}
	if p.peek() == '*' {
		p.pos++
		return StandardGeneric, nil
	}
	start := p.pos
	for !p.done() {
		r, size := utf8.DecodeRuneInString(p.input[p.pos:])
		if !isNameRune(r) {
			break
		}
		p.pos += size
	}
	if start == p.pos {
		return "", p.fail("expected a type name, found '" + string(p.peek()) + "'")
	}
	return NormaliseName(p.input[start:p.pos]), nil
}

func (p *parser) expr() (Expr, error) {
	name, err := p.name()
	if err != nil {
		return Expr{}, err
	}
	p.skipSpace()
	if p.done() || p.peek() != '(' {
		return Expr{Name: name}, nil
	}
	p.pos++ // (
	var args []Expr
	for {
		p.skipSpace()
		arg, err := p.expr()
		if err != nil {
			return Expr{}, err
		}
		args = append(args, arg)
		p.skipSpace()
		if p.done() {
			return Expr{}, p.fail("missing ')'")
		}
		switch p.peek() {
		case ',':
			p.pos++
		case ')':
			p.pos++
			return Expr{Name: name, Args: args}, nil
		default:
			return Expr{}, p.fail("expected ',' or ')', found '" + string(p.peek()) + "'")
		}
	}
}
