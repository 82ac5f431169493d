// Package parser implements the concrete syntax of Presburger formulas: a
// hand-written lexer and recursive-descent parser producing ast values.
//
// The accepted language, tightest to loosest binding:
//
//	~p, p /\ q, p \/ q, p ==> q, p <=> q
//
// with ==> and <=> right-associative, and prefix quantifiers
// `exists x . p` / `forall x . p` binding loosest and extending maximally to
// the right. Terms are addition-only sums of rational literals (`222`,
// `2/3`, `-1/3`) and monomials (`x`, `2 * x`, `1/2 * x`); relations are `=`
// and `<=`; truth literals are `@T` and `@F`; propositional variables are
// uppercase identifiers.
package parser

import "fmt"

// TokenType identifies the lexical class of a token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenInt           // integer literal, possibly with a leading sign
	TokenIdent         // lowercase identifier (numeric variable or keyword)
	TokenPropIdent     // uppercase identifier (propositional variable)
	TokenTruth         // @T or @F
	TokenPlus          // +
	TokenStar          // *
	TokenSlash         // /
	TokenLParen        // (
	TokenRParen        // )
	TokenDot           // .
	TokenEq            // =
	TokenLe            // <=
	TokenNot           // ~
	TokenAnd           // /\
	TokenOr            // \/
	TokenImplies       // ==>
	TokenIff           // <=>
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "end of input"
	case TokenInt:
		return "integer"
	case TokenIdent:
		return "identifier"
	case TokenPropIdent:
		return "propositional variable"
	case TokenTruth:
		return "truth literal"
	case TokenPlus:
		return "'+'"
	case TokenStar:
		return "'*'"
	case TokenSlash:
		return "'/'"
	case TokenLParen:
		return "'('"
	case TokenRParen:
		return "')'"
	case TokenDot:
		return "'.'"
	case TokenEq:
		return "'='"
	case TokenLe:
		return "'<='"
	case TokenNot:
		return "'~'"
	case TokenAnd:
		return `'/\'`
	case TokenOr:
		return `'\/'`
	case TokenImplies:
		return "'==>'"
	case TokenIff:
		return "'<=>'"
	default:
		return "?"
	}
}

// Token is a lexical token with its byte position in the input.
type Token struct {
	Type     TokenType
	Value    string
	Position int
}

// SyntaxError reports a lexical or grammatical error with the byte offset
// where it was detected and a description of what was expected there.
type SyntaxError struct {
	Position int
	Expected string
	Got      string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: expected %s, got %s", e.Position, e.Expected, e.Got)
}
