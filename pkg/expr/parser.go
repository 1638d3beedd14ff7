package expr

import "math"

// MaxDepth bounds nesting of parentheses, unary minus and exponents.
const MaxDepth = 256

// lookupFunc resolves a variable; ok is false for undefined names.
type lookupFunc func(name string) (v float64, ok bool)

type parser struct {
	toks   []token
	idx    int
	depth  int
	lookup lookupFunc
}

// Evaluate parses and evaluates input, resolving identifiers from syms.
// A nil map is an empty symbol table.
func Evaluate(input string, syms map[string]float64) (float64, error) {
	return eval(input, func(name string) (float64, bool) {
		v, ok := syms[name]
		return v, ok
	})
}

func eval(input string, lookup lookupFunc) (float64, error) {
	toks, err := lex(input)
	if err != nil {
		return 0, err
	}
	p := &parser{toks: toks, lookup: lookup}

	v, err := p.expr()
	if err != nil {
		return 0, err
	}
	if tok := p.peek(); tok.typ != tokEOF {
		return 0, errorf(Syntax, tok.pos, "unexpected %q after expression", tok.val)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errorf(Syntax, 0, "result is not a finite number")
	}
	return v, nil
}

func (p *parser) expr() (float64, error) {
	lhs, err := p.term()
	if err != nil {
		return 0, err
	}
	for {
		tok := p.peek()
		if tok.typ != tokOp || (tok.val != "+" && tok.val != "-") {
			return lhs, nil
		}
		p.next()
		rhs, err := p.term()
		if err != nil {
			return 0, err
		}
		if tok.val == "+" {
			lhs += rhs
		} else {
			lhs -= rhs
		}
	}
}

func (p *parser) term() (float64, error) {
	lhs, err := p.unary()
	if err != nil {
		return 0, err
	}
	for {
		tok := p.peek()
		if tok.typ != tokOp || (tok.val != "*" && tok.val != "/") {
			return lhs, nil
		}
		p.next()
		rhs, err := p.unary()
		if err != nil {
			return 0, err
		}
		if tok.val == "*" {
			lhs *= rhs
			continue
		}
		if rhs == 0 {
			return 0, errorf(Syntax, tok.pos, "division by zero")
		}
		lhs /= rhs
	}
}

func (p *parser) unary() (float64, error) {
	tok := p.peek()
	if tok.typ != tokOp || tok.val != "-" {
		return p.power()
	}
	p.next()
	if err := p.enter(tok.pos); err != nil {
		return 0, err
	}
	defer p.leave()

	v, err := p.unary()
	if err != nil {
		return 0, err
	}
	return -v, nil
}

func (p *parser) power() (float64, error) {
	base, err := p.factor()
	if err != nil {
		return 0, err
	}
	tok := p.peek()
	if tok.typ != tokOp || tok.val != "^" {
		return base, nil
	}
	p.next()
	if err := p.enter(tok.pos); err != nil {
		return 0, err
	}
	defer p.leave()

	exp, err := p.unary()
	if err != nil {
		return 0, err
	}
	return math.Pow(base, exp), nil
}

func (p *parser) factor() (float64, error) {
	tok := p.next()
	switch tok.typ {
	case tokEOF:
		return 0, &ParseError{Kind: UnexpectedEOF, Pos: tok.pos}
	case tokNumber:
		return tok.num, nil
	case tokIdent:
		v, ok := p.lookup(tok.val)
		if !ok {
			return 0, errorf(Syntax, tok.pos, "undefined variable %q", tok.val)
		}
		return v, nil
	case tokLParen:
		if err := p.enter(tok.pos); err != nil {
			return 0, err
		}
		defer p.leave()

		v, err := p.expr()
		if err != nil {
			return 0, err
		}
		closing := p.next()
		switch closing.typ {
		case tokRParen:
			return v, nil
		case tokEOF:
			return 0, &ParseError{Kind: UnexpectedEOF, Pos: closing.pos}
		default:
			return 0, errorf(Syntax, closing.pos, "expected \")\", got %q", closing.val)
		}
	default:
		return 0, errorf(InvalidToken, tok.pos, "unexpected %q", tok.val)
	}
}

func (p *parser) enter(pos int) error {
	p.depth++
	if p.depth > MaxDepth {
		return errorf(Syntax, pos, "expression nested deeper than %d", MaxDepth)
	}
	return nil
}

func (p *parser) leave() { p.depth-- }

func (p *parser) peek() token { return p.toks[p.idx] }

// next consumes one token; the trailing tokEOF is never consumed.
func (p *parser) next() token {
	tok := p.toks[p.idx]
	if tok.typ != tokEOF {
		p.idx++
	}
	return tok
}
