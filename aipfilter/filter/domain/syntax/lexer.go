package syntax

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// TokenType represents the type of a token.
type TokenType string

const (
	TokenLParen     TokenType = "LPAREN"
	TokenRParen     TokenType = "RPAREN"
	TokenDot        TokenType = "DOT"
	TokenComparator TokenType = "COMPARATOR"
	TokenAnd        TokenType = "AND"
	TokenOr         TokenType = "OR"
	TokenNot        TokenType = "NOT"
	TokenMinus      TokenType = "MINUS"
	TokenString     TokenType = "STRING"
	TokenDatetime   TokenType = "DATETIME"
	TokenDuration   TokenType = "DURATION"
	TokenFloat      TokenType = "FLOAT"
	TokenInteger    TokenType = "INTEGER"
	TokenBoolean    TokenType = "BOOLEAN"
	TokenAsterisk   TokenType = "ASTERISK"
	TokenText       TokenType = "TEXT"
	TokenWhitespace TokenType = "WHITESPACE"
	TokenEOF        TokenType = "EOF"
)

// Token represents a token in the filter text.
type Token struct {
	Type     TokenType
	Value    string
	Position int
}

func (t Token) String() string {
	return fmt.Sprintf("Token(%s, %q)", t.Type, t.Value)
}

func (t Token) isValue() bool {
	switch t.Type {
	case TokenString, TokenDatetime, TokenDuration, TokenFloat, TokenInteger,
		TokenBoolean, TokenAsterisk, TokenText:
		return true
	}
	return false
}

// tokenPattern defines a token type and its regex pattern.
// A delimited pattern only matches when followed by a delimiter or the end of input,
// so that "ANDROID" or "12abc" fall through to TEXT.
type tokenPattern struct {
	Type      TokenType
	Pattern   *regexp.Regexp
	Delimited bool
}

const delimiters = " \t\r\n()=<>!:.,"

var patterns = []tokenPattern{
	{TokenWhitespace, regexp.MustCompile(`^\s+`), false},
	{TokenLParen, regexp.MustCompile(`^\(`), false},
	{TokenRParen, regexp.MustCompile(`^\)`), false},
	{TokenComparator, regexp.MustCompile(`^(<=|>=|!=|<|>|=|:)`), false}, // two-char comparators first
	{TokenDot, regexp.MustCompile(`^\.`), false},
	{TokenString, regexp.MustCompile(`^"(?:[^"\\]|\\.)*"`), false},
	{TokenAnd, regexp.MustCompile(`^AND`), true},
	{TokenOr, regexp.MustCompile(`^OR`), true},
	{TokenNot, regexp.MustCompile(`^NOT`), true},
	{TokenBoolean, regexp.MustCompile(`^(true|false)`), true},
	{TokenDatetime, regexp.MustCompile(`^\d{4}-\d{2}-\d{2}(?:[Tt]\d{2}:\d{2}(?::\d{2}(?:\.\d+)?)?(?:[Zz]|[+-]\d{2}:\d{2})?)?`), true},
	{TokenDuration, regexp.MustCompile(`^-?\d+(?:\.\d+)?s`), true},
	{TokenFloat, regexp.MustCompile(`^-?(?:\d+\.\d+(?:[eE][+-]?\d+)?|\d+[eE][+-]?\d+)`), true},
	{TokenInteger, regexp.MustCompile(`^-?\d+`), true},
	{TokenAsterisk, regexp.MustCompile(`^\*`), true},
	{TokenText, regexp.MustCompile(`^[^\s()=<>!:.,"\-][^\s()=<>!:.,"]*`), false},
}

// Lexer tokenizes AIP-160 filter text.
type Lexer struct {
	text     string
	position int
	tokens   []Token
}

// NewLexer creates a new Lexer for the given text.
func NewLexer(text string) *Lexer {
	return &Lexer{text: text}
}

// Tokenize tokenizes the input text. Every unexpected character is reported.
func (l *Lexer) Tokenize() ([]Token, error) {
	var errs *multierror.Error
	for l.position < len(l.text) {
		remaining := l.text[l.position:]

		if remaining[0] == '-' && !l.signedNumberAhead(remaining) {
			l.emit(TokenMinus, "-")
			l.position++
			continue
		}

		matched := false
		for _, p := range patterns {
			loc := p.Pattern.FindStringIndex(remaining)
			if loc == nil {
				continue
			}
			if p.Delimited && !isDelimited(remaining, loc[1]) {
				continue
			}
			if p.Type != TokenWhitespace {
				l.emit(p.Type, remaining[:loc[1]])
			}
			l.position += loc[1]
			matched = true
			break
		}

		if !matched {
			errs = multierror.Append(errs, &SyntaxError{
				Position: l.position,
				Message:  fmt.Sprintf("unexpected character %q", remaining[0]),
			})
			l.position++
		}
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	l.tokens = append(l.tokens, Token{Type: TokenEOF, Position: l.position})
	return l.tokens, nil
}

func (l *Lexer) emit(typ TokenType, value string) {
	l.tokens = append(l.tokens, Token{Type: typ, Value: value, Position: l.position})
}

// signedNumberAhead reports whether a leading '-' is the sign of a numeric argument.
// That is only the case right after a comparator.
func (l *Lexer) signedNumberAhead(remaining string) bool {
	if len(remaining) < 2 || remaining[1] < '0' || remaining[1] > '9' {
		return false
	}
	if len(l.tokens) == 0 {
		return false
	}
	return l.tokens[len(l.tokens)-1].Type == TokenComparator
}

func isDelimited(s string, end int) bool {
	return end == len(s) || strings.IndexByte(delimiters, s[end]) >= 0
}
