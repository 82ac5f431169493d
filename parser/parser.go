package parser

import (
	"fmt"
	"math/big"

	"github.com/arithlab/presburger/ast"
)

// Parse parses a complete formula and checks that quantifiers are
// well-formed: each binds a fresh numeric variable not bound in enclosing
// scope. Re-binding is reported with its source offset, wrapping
// *ast.WellFormedError.
func Parse(input string) (ast.Formula, error) {
	p, err := newParser(input)
	if err != nil {
		return nil, err
	}
	f, err := p.parseFormula()
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return f, nil
}

// ParseTerm parses a single sum-of-monomials term.
func ParseTerm(input string) (ast.Term, error) {
	p, err := newParser(input)
	if err != nil {
		return nil, err
	}
	t, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return t, nil
}

// ParseAtom parses a single atom: a truth literal, a propositional
// variable, or a relation between terms.
func ParseAtom(input string) (ast.Atom, error) {
	p, err := newParser(input)
	if err != nil {
		return nil, err
	}
	a, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return a, nil
}

type parser struct {
	tokens   []Token
	position int
	bound    map[string]bool // quantifier-bound variables in scope
}

func newParser(input string) (*parser, error) {
	tokens, err := NewLexer(input).Tokenize()
	if err != nil {
		return nil, err
	}
	return &parser{tokens: tokens, bound: make(map[string]bool)}, nil
}

func (p *parser) cur() Token { return p.tokens[p.position] }

func (p *parser) advance() Token {
	tok := p.tokens[p.position]
	if tok.Type != TokenEOF {
		p.position++
	}
	return tok
}

func (p *parser) expect(tt TokenType) (Token, error) {
	if p.cur().Type != tt {
		return Token{}, p.errorExpected(tt.String())
	}
	return p.advance(), nil
}

func (p *parser) expectEOF() error {
	if p.cur().Type != TokenEOF {
		return p.errorExpected("end of input")
	}
	return nil
}

func (p *parser) errorExpected(expected string) error {
	tok := p.cur()
	got := tok.Type.String()
	if tok.Value != "" {
		got = "'" + tok.Value + "'"
	}
	return &SyntaxError{Position: tok.Position, Expected: expected, Got: got}
}

func (p *parser) atQuantifier() bool {
	tok := p.cur()
	return tok.Type == TokenIdent && (tok.Value == "exists" || tok.Value == "forall")
}

// parseFormula parses the loosest level: a prefix quantifier extending
// maximally to the right, or a bi-implication chain.
func (p *parser) parseFormula() (ast.Formula, error) {
	if p.atQuantifier() {
		return p.parseQuantifier()
	}
	return p.parseIff()
}

func (p *parser) parseQuantifier() (ast.Formula, error) {
	kw := p.advance()
	name, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	if name.Value == "exists" || name.Value == "forall" {
		return nil, &SyntaxError{Position: name.Position, Expected: "a variable name", Got: "'" + name.Value + "'"}
	}
	if p.bound[name.Value] {
		return nil, fmt.Errorf("at offset %d: %w", name.Position,
			&ast.WellFormedError{
				Var: ast.NumVar(name.Value),
				Msg: "quantifier re-binds a variable bound in enclosing scope",
			})
	}
	if _, err := p.expect(TokenDot); err != nil {
		return nil, err
	}

	p.bound[name.Value] = true
	body, err := p.parseFormula()
	delete(p.bound, name.Value)
	if err != nil {
		return nil, err
	}

	v := ast.NumVar(name.Value)
	if kw.Value == "exists" {
		return ast.Exists{Bound: v, Body: body}, nil
	}
	return ast.Forall{Bound: v, Body: body}, nil
}

// parseIff parses `p <=> q`, right-associative. A quantifier may appear in
// tail position, where it extends to the end of the formula.
func (p *parser) parseIff() (ast.Formula, error) {
	left, err := p.parseImplies()
	if err != nil {
		return nil, err
	}
	if p.cur().Type != TokenIff {
		return left, nil
	}
	p.advance()
	var right ast.Formula
	if p.atQuantifier() {
		right, err = p.parseQuantifier()
	} else {
		right, err = p.parseIff()
	}
	if err != nil {
		return nil, err
	}
	return ast.Iff{Left: left, Right: right}, nil
}

// parseImplies parses `p ==> q`, right-associative, quantifier allowed in
// tail position.
func (p *parser) parseImplies() (ast.Formula, error) {
	left, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.cur().Type != TokenImplies {
		return left, nil
	}
	p.advance()
	var right ast.Formula
	if p.atQuantifier() {
		right, err = p.parseQuantifier()
	} else {
		right, err = p.parseImplies()
	}
	if err != nil {
		return nil, err
	}
	return ast.Implies{Left: left, Right: right}, nil
}

func (p *parser) parseOr() (ast.Formula, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur().Type == TokenOr {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = ast.Or{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (ast.Formula, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.cur().Type == TokenAnd {
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = ast.And{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseNot() (ast.Formula, error) {
	if p.cur().Type == TokenNot {
		p.advance()
		inner, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return ast.Not{Operand: inner}, nil
	}
	return p.parsePrimary()
}

// parsePrimary parses an atom or a parenthesized formula. A leading '(' or
// numeric token is ambiguous between a relation left-hand side and a
// parenthesized formula, so the relation interpretation is attempted first
// and the token position restored on failure.
func (p *parser) parsePrimary() (ast.Formula, error) {
	switch p.cur().Type {
	case TokenTruth:
		tok := p.advance()
		return ast.Atomic{Atom: ast.Truth{Val: tok.Value == "@T"}}, nil

	case TokenPropIdent:
		tok := p.advance()
		return ast.Atomic{Atom: ast.Prop{Var: ast.PropVar(tok.Value)}}, nil

	case TokenInt, TokenIdent, TokenLParen:
		save := p.position
		atom, err := p.parseRelation()
		if err == nil {
			return ast.Atomic{Atom: atom}, nil
		}
		p.position = save
		if p.cur().Type == TokenLParen {
			p.advance()
			f, err := p.parseFormula()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokenRParen); err != nil {
				return nil, err
			}
			return f, nil
		}
		return nil, err

	default:
		return nil, p.errorExpected("a formula")
	}
}

func (p *parser) parseAtom() (ast.Atom, error) {
	switch p.cur().Type {
	case TokenTruth:
		tok := p.advance()
		return ast.Truth{Val: tok.Value == "@T"}, nil
	case TokenPropIdent:
		tok := p.advance()
		return ast.Prop{Var: ast.PropVar(tok.Value)}, nil
	default:
		return p.parseRelation()
	}
}

func (p *parser) parseRelation() (ast.Atom, error) {
	lhs, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	switch p.cur().Type {
	case TokenEq:
		p.advance()
		rhs, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		return ast.Eq{Lhs: lhs, Rhs: rhs}, nil
	case TokenLe:
		p.advance()
		rhs, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		return ast.LessEq{Lhs: lhs, Rhs: rhs}, nil
	default:
		return nil, p.errorExpected("'=' or '<='")
	}
}

// parseSum parses a right-nested sum of monomials.
func (p *parser) parseSum() (ast.Term, error) {
	mono, err := p.parseMonomial()
	if err != nil {
		return nil, err
	}
	if p.cur().Type != TokenPlus {
		return mono, nil
	}
	p.advance()
	rest, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	return ast.Add{Left: mono, Right: rest}, nil
}

// parseMonomial parses a literal, a variable, or `literal * variable`.
// Literals and variables may be parenthesized; sums may not.
func (p *parser) parseMonomial() (ast.Term, error) {
	switch p.cur().Type {
	case TokenIdent:
		return p.parseVarRef()

	case TokenInt:
		return p.parseScaledOrNum()

	case TokenLParen:
		// '(3)', '((x))', '(1/3) * x' are all valid; try the numeric
		// reading first.
		save := p.position
		t, err := p.parseScaledOrNum()
		if err == nil {
			return t, nil
		}
		p.position = save
		return p.parseVarRef()

	default:
		return nil, p.errorExpected("a term")
	}
}

func (p *parser) parseScaledOrNum() (ast.Term, error) {
	val, err := p.parseRatLiteral()
	if err != nil {
		return nil, err
	}
	if p.cur().Type != TokenStar {
		return ast.Num{Val: val}, nil
	}
	p.advance()
	name, err := p.parseVarName()
	if err != nil {
		return nil, err
	}
	return ast.ScalarVar{Coeff: val, Var: ast.NumVar(name)}, nil
}

// parseVarRef parses a possibly parenthesized numeric variable as the
// term 1 * x.
func (p *parser) parseVarRef() (ast.Term, error) {
	name, err := p.parseVarName()
	if err != nil {
		return nil, err
	}
	return ast.VarT(name), nil
}

func (p *parser) parseVarName() (string, error) {
	switch p.cur().Type {
	case TokenIdent:
		tok := p.advance()
		if tok.Value == "exists" || tok.Value == "forall" {
			return "", &SyntaxError{Position: tok.Position, Expected: "a variable name", Got: "'" + tok.Value + "'"}
		}
		return tok.Value, nil
	case TokenLParen:
		p.advance()
		name, err := p.parseVarName()
		if err != nil {
			return "", err
		}
		if _, err := p.expect(TokenRParen); err != nil {
			return "", err
		}
		return name, nil
	default:
		return "", p.errorExpected("a variable name")
	}
}

// parseRatLiteral parses a possibly parenthesized rational literal `n` or
// `n/d`. Signs are allowed on both parts; big.Rat normalizes the result to
// lowest terms with the sign on the numerator.
func (p *parser) parseRatLiteral() (*big.Rat, error) {
	switch p.cur().Type {
	case TokenInt:
		numTok := p.advance()
		num, ok := new(big.Int).SetString(numTok.Value, 10)
		if !ok {
			return nil, &SyntaxError{Position: numTok.Position, Expected: "an integer", Got: "'" + numTok.Value + "'"}
		}
		den := big.NewInt(1)
		if p.cur().Type == TokenSlash {
			p.advance()
			denTok, err := p.expect(TokenInt)
			if err != nil {
				return nil, err
			}
			den, ok = new(big.Int).SetString(denTok.Value, 10)
			if !ok || den.Sign() == 0 {
				return nil, &SyntaxError{Position: denTok.Position, Expected: "a nonzero denominator", Got: "'" + denTok.Value + "'"}
			}
		}
		return new(big.Rat).SetFrac(num, den), nil

	case TokenLParen:
		p.advance()
		val, err := p.parseRatLiteral()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
		return val, nil

	default:
		return nil, p.errorExpected("a rational literal")
	}
}
