package formula

import (
	"fmt"

	"github.com/yungbote/notegen-backend/internal/modules/notes/fieldpath"
)

// Exhaustive tagged expression forms. The evaluator switches over these and
// nothing else.
type expr interface{ isExpr() }

type literalExpr struct{ value any } // float64 or string

type pathExpr struct{ path string }

type binaryExpr struct {
	op          string
	left, right expr
}

type ternaryExpr struct {
	cond, then, els expr
}

func (*literalExpr) isExpr() {}
func (*pathExpr) isExpr()    {}
func (*binaryExpr) isExpr()  {}
func (*ternaryExpr) isExpr() {}

// Grammar, standard precedence:
//
//	expr       := ternary
//	ternary    := comparison [ '?' expr ':' expr ]
//	comparison := additive [ compareOp additive ]
//	additive   := term { ('+'|'-') term }
//	term       := factor { ('*'|'/') factor }
//	factor     := NUMBER | STRING | REF | '(' expr ')' | '-' factor
//
// Malformed input fails at its position; nothing is silently truncated.
func parse(src string) (*Program, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, toks: toks}
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, p.errorf(tok, "unexpected %q after expression", tok.text)
	}
	return &Program{source: src, root: root}, nil
}

type parser struct {
	src  string
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	tok := p.toks[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) errorf(tok token, format string, args ...any) error {
	return &ParseError{Formula: p.src, Pos: tok.pos, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) parseExpr() (expr, error) {
	cond, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokQuestion {
		return cond, nil
	}
	p.next()
	then, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokColon {
		return nil, p.errorf(tok, "expected ':' in ternary")
	}
	p.next()
	els, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ternaryExpr{cond: cond, then: then, els: els}, nil
}

func (p *parser) parseComparison() (expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	var op string
	switch p.peek().kind {
	case tokEq:
		op = "=="
	case tokNeq:
		op = "!="
	case tokLt:
		op = "<"
	case tokLte:
		op = "<="
	case tokGt:
		op = ">"
	case tokGte:
		op = ">="
	default:
		return left, nil
	}
	p.next()
	right, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	return &binaryExpr{op: op, left: left, right: right}, nil
}

func (p *parser) parseAdditive() (expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		var op string
		switch p.peek().kind {
		case tokPlus:
			op = "+"
		case tokMinus:
			op = "-"
		default:
			return left, nil
		}
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &binaryExpr{op: op, left: left, right: right}
	}
}

func (p *parser) parseTerm() (expr, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for {
		var op string
		switch p.peek().kind {
		case tokStar:
			op = "*"
		case tokSlash:
			op = "/"
		default:
			return left, nil
		}
		p.next()
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &binaryExpr{op: op, left: left, right: right}
	}
}

func (p *parser) parseFactor() (expr, error) {
	tok := p.peek()
	switch tok.kind {
	case tokNumber:
		p.next()
		return &literalExpr{value: tok.num}, nil
	case tokString:
		p.next()
		return &literalExpr{value: tok.text}, nil
	case tokRef:
		p.next()
		segs, err := fieldpath.Parse(tok.text)
		if err != nil {
			return nil, p.errorf(tok, "bad reference %q", tok.text)
		}
		for _, seg := range segs {
			if seg.IsArray && seg.Index == fieldpath.NoIndex {
				return nil, p.errorf(tok, "reference %q: wildcard segments are not allowed in formulas", tok.text)
			}
		}
		return &pathExpr{path: tok.text}, nil
	case tokMinus:
		p.next()
		inner, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return &binaryExpr{op: "-", left: &literalExpr{value: float64(0)}, right: inner}, nil
	case tokLParen:
		p.next()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if closing := p.peek(); closing.kind != tokRParen {
			return nil, p.errorf(closing, "expected ')'")
		}
		p.next()
		return inner, nil
	case tokEOF:
		return nil, p.errorf(tok, "unexpected end of formula")
	}
	return nil, p.errorf(tok, "unexpected %q", tok.text)
}
