package parser

import "unicode"

// Lexer scans the input string and produces tokens.
type Lexer struct {
	input    string
	position int
	tokens   []Token
}

// NewLexer returns a new Lexer over the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{
		input:  input,
		tokens: make([]Token, 0),
	}
}

// Tokenize processes the entire input and produces the token list,
// terminated by an EOF token. The first lexical error aborts the scan.
func (l *Lexer) Tokenize() ([]Token, error) {
	for l.position < len(l.input) {
		startPos := l.position
		c := l.input[l.position]
		switch {
		case isWhitespace(c):
			l.position++

		case c == '+':
			l.addToken(TokenPlus, "+", startPos)
			l.position++

		case c == '*':
			l.addToken(TokenStar, "*", startPos)
			l.position++

		case c == '(':
			l.addToken(TokenLParen, "(", startPos)
			l.position++

		case c == ')':
			l.addToken(TokenRParen, ")", startPos)
			l.position++

		case c == '.':
			l.addToken(TokenDot, ".", startPos)
			l.position++

		case c == '~':
			l.addToken(TokenNot, "~", startPos)
			l.position++

		case c == '/':
			// '/\' is conjunction; a bare '/' separates a rational's
			// numerator and denominator.
			if l.peek(1) == '\\' {
				l.addToken(TokenAnd, `/\`, startPos)
				l.position += 2
			} else {
				l.addToken(TokenSlash, "/", startPos)
				l.position++
			}

		case c == '\\':
			if l.peek(1) != '/' {
				return nil, l.errorAt(startPos, `'\/'`)
			}
			l.addToken(TokenOr, `\/`, startPos)
			l.position += 2

		case c == '=':
			// '==>' before '='.
			if l.peek(1) == '=' && l.peek(2) == '>' {
				l.addToken(TokenImplies, "==>", startPos)
				l.position += 3
			} else {
				l.addToken(TokenEq, "=", startPos)
				l.position++
			}

		case c == '<':
			// '<=>' before '<='.
			if l.peek(1) != '=' {
				return nil, l.errorAt(startPos, "'<=' or '<=>'")
			}
			if l.peek(2) == '>' {
				l.addToken(TokenIff, "<=>", startPos)
				l.position += 3
			} else {
				l.addToken(TokenLe, "<=", startPos)
				l.position += 2
			}

		case c == '@':
			switch l.peek(1) {
			case 'T', 'F':
				l.addToken(TokenTruth, l.input[startPos:startPos+2], startPos)
				l.position += 2
			default:
				return nil, l.errorAt(startPos, "'@T' or '@F'")
			}

		case c == '-':
			// The grammar has no subtraction; '-' only signs a literal.
			if !isDigit(l.peek(1)) {
				return nil, l.errorAt(startPos, "digit after '-'")
			}
			l.position++
			l.lexInt(startPos)

		case isDigit(c):
			l.lexInt(startPos)

		case isLower(c):
			l.lexIdent(startPos, TokenIdent)

		case isUpper(c):
			l.lexIdent(startPos, TokenPropIdent)

		default:
			return nil, l.errorAt(startPos, "a token")
		}
	}

	l.addToken(TokenEOF, "", l.position)
	return l.tokens, nil
}

// lexInt scans the digit run starting at the current position. startPos may
// precede it by one byte when a '-' sign was consumed.
func (l *Lexer) lexInt(startPos int) {
	for l.position < len(l.input) && isDigit(l.input[l.position]) {
		l.position++
	}
	l.addToken(TokenInt, l.input[startPos:l.position], startPos)
}

// lexIdent scans a run of letters. Identifiers are single-case: the first
// byte decides the class and mixing cases ends the identifier.
func (l *Lexer) lexIdent(startPos int, kind TokenType) {
	sameCase := isLower
	if kind == TokenPropIdent {
		sameCase = isUpper
	}
	for l.position < len(l.input) && sameCase(l.input[l.position]) {
		l.position++
	}
	l.addToken(kind, l.input[startPos:l.position], startPos)
}

func (l *Lexer) peek(offset int) byte {
	if l.position+offset >= len(l.input) {
		return 0
	}
	return l.input[l.position+offset]
}

func (l *Lexer) addToken(tokenType TokenType, value string, pos int) {
	l.tokens = append(l.tokens, Token{
		Type:     tokenType,
		Value:    value,
		Position: pos,
	})
}

func (l *Lexer) errorAt(pos int, expected string) error {
	got := "end of input"
	if pos < len(l.input) {
		got = "'" + string(l.input[pos]) + "'"
	}
	return &SyntaxError{Position: pos, Expected: expected, Got: got}
}

func isWhitespace(c byte) bool { return unicode.IsSpace(rune(c)) }
func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isLower(c byte) bool      { return c >= 'a' && c <= 'z' }
func isUpper(c byte) bool      { return c >= 'A' && c <= 'Z' }
