package query

import (
	"strings"
	"unicode"
)

// Lexer tokenizes DQML query strings
type Lexer struct {
	input string
	pos   int
	ch    rune
}

// NewLexer creates a new lexer
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// readChar reads the next character
func (l *Lexer) readChar() {
	if l.pos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = rune(l.input[l.pos])
	}
	l.pos++
}

// peekChar looks at the next character without advancing
func (l *Lexer) peekChar() rune {
	if l.pos >= len(l.input) {
		return 0
	}
	return rune(l.input[l.pos])
}

// skipWhitespaceAndComments skips whitespace, -- line comments and
// /* */ block comments. An unterminated block comment is a lex error.
func (l *Lexer) skipWhitespaceAndComments() error {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
			l.readChar()
		}

		if l.ch == '-' && l.peekChar() == '-' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}

		if l.ch == '/' && l.peekChar() == '*' {
			start := l.pos - 1
			l.readChar()
			l.readChar()
			closed := false
			for l.ch != 0 {
				if l.ch == '*' && l.peekChar() == '/' {
					l.readChar()
					l.readChar()
					closed = true
					break
				}
				l.readChar()
			}
			if !closed {
				return &LexError{Pos: start, Char: '/', Msg: "unterminated block comment"}
			}
			continue
		}

		return nil
	}
}

// readString reads a quoted string. A doubled quote character inside
// the string stands for one literal quote.
func (l *Lexer) readString(quote rune) (string, error) {
	start := l.pos - 1
	var result strings.Builder
	l.readChar() // skip opening quote

	for l.ch != 0 {
		if l.ch == quote {
			if l.peekChar() == quote {
				result.WriteByte(byte(quote))
				l.readChar()
				l.readChar()
				continue
			}
			l.readChar() // skip closing quote
			return result.String(), nil
		}
		result.WriteByte(byte(l.ch))
		l.readChar()
	}

	return "", &LexError{Pos: start, Char: quote, Msg: "unterminated string literal"}
}

// readNumber reads a numeric literal. A single dot with digits on both
// sides makes it a float, anything else stops the literal.
func (l *Lexer) readNumber() (string, bool) {
	var result strings.Builder
	for unicode.IsDigit(l.ch) {
		result.WriteRune(l.ch)
		l.readChar()
	}

	if l.ch == '.' && unicode.IsDigit(l.peekChar()) {
		result.WriteRune(l.ch)
		l.readChar()
		for unicode.IsDigit(l.ch) {
			result.WriteRune(l.ch)
			l.readChar()
		}
		return result.String(), true
	}

	return result.String(), false
}

// readIdentifier reads an identifier or keyword
func (l *Lexer) readIdentifier() string {
	var result strings.Builder
	for unicode.IsLetter(l.ch) || unicode.IsDigit(l.ch) || l.ch == '_' {
		result.WriteRune(l.ch)
		l.readChar()
	}
	return result.String()
}

// NextToken returns the next token
func (l *Lexer) NextToken() (Token, error) {
	if err := l.skipWhitespaceAndComments(); err != nil {
		return Token{}, err
	}

	start := l.pos - 1

	switch l.ch {
	case 0:
		return Token{Type: TokenEOF, Value: "", Pos: start}, nil
	case '=':
		l.readChar()
		return Token{Type: TokenEqual, Value: "=", Pos: start}, nil
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return Token{Type: TokenNotEqual, Value: "!=", Pos: start}, nil
		}
		return Token{}, &LexError{Pos: start, Char: '!'}
	case '<':
		switch l.peekChar() {
		case '=':
			l.readChar()
			l.readChar()
			return Token{Type: TokenLessEqual, Value: "<=", Pos: start}, nil
		case '>':
			l.readChar()
			l.readChar()
			return Token{Type: TokenNotEqual, Value: "<>", Pos: start}, nil
		}
		l.readChar()
		return Token{Type: TokenLess, Value: "<", Pos: start}, nil
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return Token{Type: TokenGreaterEqual, Value: ">=", Pos: start}, nil
		}
		l.readChar()
		return Token{Type: TokenGreater, Value: ">", Pos: start}, nil
	case '\'', '"':
		quote := l.ch
		value, err := l.readString(quote)
		if err != nil {
			return Token{}, err
		}
		return Token{Type: TokenString, Value: value, Pos: start}, nil
	case '+':
		l.readChar()
		return Token{Type: TokenPlus, Value: "+", Pos: start}, nil
	case '-':
		l.readChar()
		return Token{Type: TokenMinus, Value: "-", Pos: start}, nil
	case '*':
		l.readChar()
		return Token{Type: TokenStar, Value: "*", Pos: start}, nil
	case '/':
		l.readChar()
		return Token{Type: TokenSlash, Value: "/", Pos: start}, nil
	case ',':
		l.readChar()
		return Token{Type: TokenComma, Value: ",", Pos: start}, nil
	case '.':
		l.readChar()
		return Token{Type: TokenDot, Value: ".", Pos: start}, nil
	case ';':
		l.readChar()
		return Token{Type: TokenSemicolon, Value: ";", Pos: start}, nil
	case '(':
		l.readChar()
		return Token{Type: TokenLeftParen, Value: "(", Pos: start}, nil
	case ')':
		l.readChar()
		return Token{Type: TokenRightParen, Value: ")", Pos: start}, nil
	default:
		if unicode.IsDigit(l.ch) {
			value, isFloat := l.readNumber()
			if isFloat {
				return Token{Type: TokenFloat, Value: value, Pos: start}, nil
			}
			return Token{Type: TokenInt, Value: value, Pos: start}, nil
		}
		if unicode.IsLetter(l.ch) || l.ch == '_' {
			value := l.readIdentifier()
			return Token{Type: identifierType(value), Value: value, Pos: start}, nil
		}
		return Token{}, &LexError{Pos: start, Char: l.ch}
	}
}

var keywords = map[string]TokenType{
	"use":       TokenUse,
	"database":  TokenDatabase,
	"select":    TokenSelect,
	"relevance": TokenRelevance,
	"to":        TokenTo,
	"from":      TokenFrom,
	"where":     TokenWhere,
	"group":     TokenGroup,
	"by":        TokenBy,
	"order":     TokenOrder,
	"asc":       TokenAsc,
	"desc":      TokenDesc,
	"mine":      TokenMine,
	"with":      TokenWith,
	"display":   TokenDisplay,
	"as":        TokenAs,
	"and":       TokenAnd,
	"or":        TokenOr,
	"not":       TokenNot,
	"in":        TokenIn,
	"like":      TokenLike,
	"between":   TokenBetween,
	"is":        TokenIs,
	"null":      TokenNull,
	"true":      TokenBool,
	"false":     TokenBool,
}

// identifierType determines if an identifier is a keyword. Keywords
// are matched case-insensitively. Mining operation names (CLUSTER,
// STATISTICS, ...) and chart kinds are deliberately not keywords so
// they stay usable as column names.
func identifierType(ident string) TokenType {
	if tokType, ok := keywords[strings.ToLower(ident)]; ok {
		return tokType
	}
	return TokenIdent
}

// Tokenize returns all tokens from the input, ending with an EOF token
func Tokenize(input string) ([]Token, error) {
	lexer := NewLexer(input)
	var tokens []Token

	for {
		tok, err := lexer.NextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			break
		}
	}

	return tokens, nil
}
