package expr

import (
	"strconv"
	"unicode/utf8"
)

type tokenType int

const (
	tokEOF tokenType = iota
	tokNumber
	tokIdent
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	typ tokenType
	val string
	num float64
	pos int
}

// lex splits input into tokens, ending with a single tokEOF.
func lex(input string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(input) {
		c := input[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case isDigit(c):
			start := i
			for i < len(input) && isDigit(input[i]) {
				i++
			}
			if i < len(input) && input[i] == '.' {
				i++
				if i >= len(input) || !isDigit(input[i]) {
					return nil, errorf(InvalidToken, start, "invalid number %q", input[start:i])
				}
				for i < len(input) && isDigit(input[i]) {
					i++
				}
			}
			text := input[start:i]
			v, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, errorf(InvalidToken, start, "invalid number %q", text)
			}
			toks = append(toks, token{typ: tokNumber, val: text, num: v, pos: start})
		case isIdentStart(c):
			start := i
			for i < len(input) && isIdentPart(input[i]) {
				i++
			}
			toks = append(toks, token{typ: tokIdent, val: input[start:i], pos: start})
		case c == '+' || c == '-' || c == '*' || c == '/' || c == '^':
			toks = append(toks, token{typ: tokOp, val: string(c), pos: i})
			i++
		case c == '(':
			toks = append(toks, token{typ: tokLParen, val: "(", pos: i})
			i++
		case c == ')':
			toks = append(toks, token{typ: tokRParen, val: ")", pos: i})
			i++
		default:
			r, _ := utf8.DecodeRuneInString(input[i:])
			return nil, errorf(InvalidToken, i, "unexpected character %q", r)
		}
	}
	return append(toks, token{typ: tokEOF, pos: len(input)}), nil
}

// IsIdent reports whether name is a valid variable name.
func IsIdent(name string) bool {
	if name == "" || !isIdentStart(name[0]) {
		return false
	}
	for i := 1; i < len(name); i++ {
		if !isIdentPart(name[i]) {
			return false
		}
	}
	return true
}

func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool { return c == '_' || (c|0x20 >= 'a' && c|0x20 <= 'z') }
func isIdentPart(c byte) bool  { return isIdentStart(c) || isDigit(c) }

