// Package expr evaluates arithmetic expressions over named variables.
//
// Graph documents use it to compute edge capacities from shared parameters,
// e.g. capacity_expr = "base * 2 + slack" with vars {base: 4, slack: 1}.
//
// # Grammar
//
//	expr   = term   { ("+" | "-") term }
//	term   = unary  { ("*" | "/") unary }
//	unary  = "-" unary | power
//	power  = factor [ "^" unary ]
//	factor = number | ident | "(" expr ")"
//
// Numbers are decimal (digits with an optional fractional part). Identifiers
// start with a letter or underscore. Whitespace is ignored. Exponentiation is
// right associative and binds tighter than unary minus, so -2^2 is -4.
//
// # Errors
//
// Every failure is a [*ParseError] carrying a [Kind] and the byte offset of
// the offending input:
//
//   - [InvalidToken]: a character outside the grammar, a malformed number, or
//     an operator where an operand was expected.
//   - [UnexpectedEOF]: input ended while an operand or ")" was still needed.
//   - [Syntax]: trailing input, an undefined variable, division by zero,
//     nesting deeper than [MaxDepth], or a result that is not finite.
//
// Use errors.Is with [ErrInvalidToken], [ErrUnexpectedEOF] or [ErrSyntax] to
// test the kind.
//
// # Concurrency
//
// [Evaluate] is a pure function. An [Evaluator] guards its symbol table with
// a read/write lock and may be shared between goroutines.
package expr
