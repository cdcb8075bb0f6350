package scopefile

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/weylang/weyl/internal/typesystem"
)

// parseTypeExpr parses a type expression of the form Name or Name<arg, ...>.
// An identifier is a variable when it is listed in vars or starts with a
// lowercase letter; otherwise it is a type constant.
func parseTypeExpr(src string, vars map[string]bool) (typesystem.Type, error) {
	p := &typeParser{src: src, vars: vars}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	p.skipSpaces()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("unexpected %q at offset %d in %q", p.rest(), p.pos, src)
	}
	return t, nil
}

type typeParser struct {
	src  string
	pos  int
	vars map[string]bool
}

func (p *typeParser) parseType() (typesystem.Type, error) {
	p.skipSpaces()
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}

	p.skipSpaces()
	if !p.consume('<') {
		return p.atom(name), nil
	}

	var args []typesystem.Type
	for {
		arg, err := p.parseType()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		p.skipSpaces()
		if p.consume(',') {
			continue
		}
		if p.consume('>') {
			break
		}
		return nil, fmt.Errorf("expected ',' or '>' at offset %d in %q", p.pos, p.src)
	}
	return typesystem.TApp{Constructor: typesystem.TCon{Name: name}, Args: args}, nil
}

func (p *typeParser) atom(name string) typesystem.Type {
	if p.vars[name] {
		return typesystem.TVar{Name: name}
	}
	r := []rune(name)[0]
	if unicode.IsLower(r) || r == '_' || r == '$' {
		return typesystem.TVar{Name: name}
	}
	return typesystem.TCon{Name: name}
}

func (p *typeParser) parseIdent() (string, error) {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '_' || c == '$' ||
			('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') ||
			(p.pos > start && '0' <= c && c <= '9') {
			p.pos++
			continue
		}
		break
	}
	if p.pos == start {
		return "", fmt.Errorf("expected identifier at offset %d in %q", p.pos, p.src)
	}
	return p.src[start:p.pos], nil
}

func (p *typeParser) skipSpaces() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *typeParser) consume(c byte) bool {
	if p.pos < len(p.src) && p.src[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *typeParser) rest() string {
	return strings.TrimSpace(p.src[p.pos:])
}
