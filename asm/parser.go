package asm

import (
	"fmt"

	"lam/instr"
)

// parser turns a token stream into the top-level sequence of period
// terminated list items, ready for label resolution and conversion into
// instructions.
type parser struct {
	lex *lexer
	tok token
}

func newParser(src string) (*parser, error) {
	p := &parser{lex: newLexer(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *parser) advance() error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *parser) expect(k tokenKind, what string) (token, error) {
	if p.tok.kind != k {
		return token{}, fmt.Errorf("asm: expected %s at offset %d, got %q", what, p.tok.pos, p.tok.text)
	}
	t := p.tok
	if err := p.advance(); err != nil {
		return token{}, err
	}
	return t, nil
}

// parseProgram parses the whole source into a flat sequence of top-level
// lists, one per period-terminated statement.
func (p *parser) parseProgram() ([]item, error) {
	var lines []item
	for p.tok.kind != tokEOF {
		line, err := p.parseList()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokPeriod, "'.'"); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// parseList parses one `{ item (, item)* }` list. Square brackets delimit
// a list the same way, as in a spawn instruction's instruction sequence.
func (p *parser) parseList() (item, error) {
	closing := tokRBrace
	closingWhat := "'}'"
	if p.tok.kind == tokLBracket {
		closing = tokRBracket
		closingWhat = "']'"
		if err := p.advance(); err != nil {
			return item{}, err
		}
	} else if _, err := p.expect(tokLBrace, "'{'"); err != nil {
		return item{}, err
	}
	var elems []item
	if p.tok.kind != closing {
		for {
			el, err := p.parseItem()
			if err != nil {
				return item{}, err
			}
			elems = append(elems, el)
			if p.tok.kind == tokComma {
				if err := p.advance(); err != nil {
					return item{}, err
				}
				continue
			}
			break
		}
	}
	if _, err := p.expect(closing, closingWhat); err != nil {
		return item{}, err
	}
	return listItem(elems), nil
}

func (p *parser) parseItem() (item, error) {
	switch p.tok.kind {
	case tokLBrace, tokLBracket:
		return p.parseList()
	case tokNumber:
		n, err := parseUint(p.tok.text)
		if err != nil {
			return item{}, err
		}
		if err := p.advance(); err != nil {
			return item{}, err
		}
		return numItem(n), nil
	case tokAtom:
		a := p.tok.text
		if err := p.advance(); err != nil {
			return item{}, err
		}
		return atomItem(a), nil
	default:
		return item{}, fmt.Errorf("asm: unexpected token %q at offset %d", p.tok.text, p.tok.pos)
	}
}

// Parse parses src according to the period-terminated list grammar and
// label conventions and returns the fully label-resolved instruction
// vector.
func Parse(src string) ([]instr.Instruction, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	lines, err := p.parseProgram()
	if err != nil {
		return nil, err
	}
	return resolveProgram(lines)
}
