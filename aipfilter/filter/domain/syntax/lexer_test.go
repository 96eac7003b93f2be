package syntax

import (
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenTypes(tokens []Token) []TokenType {
	types := make([]TokenType, len(tokens))
	for i, t := range tokens {
		types[i] = t.Type
	}
	return types
}

func TestLexerTokenTypes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []TokenType
	}{
		{
			name:     "simple equality",
			input:    "a=1",
			expected: []TokenType{TokenText, TokenComparator, TokenInteger, TokenEOF},
		},
		{
			name:  "all comparators",
			input: "a<=1 b>=2 c!=3 d<4 e>5 f:6",
			expected: []TokenType{
				TokenText, TokenComparator, TokenInteger,
				TokenText, TokenComparator, TokenInteger,
				TokenText, TokenComparator, TokenInteger,
				TokenText, TokenComparator, TokenInteger,
				TokenText, TokenComparator, TokenInteger,
				TokenText, TokenComparator, TokenInteger,
				TokenEOF,
			},
		},
		{
			name:     "keywords and parens",
			input:    "NOT (a OR b) AND c",
			expected: []TokenType{TokenNot, TokenLParen, TokenText, TokenOr, TokenText, TokenRParen, TokenAnd, TokenText, TokenEOF},
		},
		{
			name:     "keyword prefix is text",
			input:    "ANDROID ORACLE NOTE",
			expected: []TokenType{TokenText, TokenText, TokenText, TokenEOF},
		},
		{
			name:     "leading minus negates",
			input:    "-x=5",
			expected: []TokenType{TokenMinus, TokenText, TokenComparator, TokenInteger, TokenEOF},
		},
		{
			name:     "minus after comparator is a sign",
			input:    "x>-5",
			expected: []TokenType{TokenText, TokenComparator, TokenInteger, TokenEOF},
		},
		{
			name:  "minus inside parentheses negates",
			input: "b=(-5 OR 3)",
			expected: []TokenType{
				TokenText, TokenComparator, TokenLParen, TokenMinus, TokenInteger,
				TokenOr, TokenInteger, TokenRParen, TokenEOF,
			},
		},
		{
			name:     "literal kinds",
			input:    `a=1.5 b=5s c=true d="x y" e=2024-01-02T03:04:05Z f=* g=abc*`,
			expected: []TokenType{
				TokenText, TokenComparator, TokenFloat,
				TokenText, TokenComparator, TokenDuration,
				TokenText, TokenComparator, TokenBoolean,
				TokenText, TokenComparator, TokenString,
				TokenText, TokenComparator, TokenDatetime,
				TokenText, TokenComparator, TokenAsterisk,
				TokenText, TokenComparator, TokenText,
				TokenEOF,
			},
		},
		{
			name:     "member path",
			input:    "address.city:Paris",
			expected: []TokenType{TokenText, TokenDot, TokenText, TokenComparator, TokenText, TokenEOF},
		},
		{
			name:     "digits followed by letters are text",
			input:    "a=12abc",
			expected: []TokenType{TokenText, TokenComparator, TokenText, TokenEOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := NewLexer(tt.input).Tokenize()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, tokenTypes(tokens))
		})
	}
}

func TestLexerKeepsRawText(t *testing.T) {
	tokens, err := NewLexer(`name = "Alice \"A\"" AND t >= 2024-13-40`).Tokenize()
	require.NoError(t, err)

	require.Len(t, tokens, 8)
	assert.Equal(t, `"Alice \"A\""`, tokens[2].Value)
	assert.Equal(t, TokenDatetime, tokens[6].Type)
	assert.Equal(t, "2024-13-40", tokens[6].Value)
	assert.Equal(t, 7, tokens[2].Position)
}

func TestLexerReportsEveryUnexpectedCharacter(t *testing.T) {
	_, err := NewLexer("a = 1 ! b = 2 !").Tokenize()
	require.Error(t, err)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	require.Len(t, merr.Errors, 2)

	var syntaxErr *SyntaxError
	require.ErrorAs(t, merr.Errors[0], &syntaxErr)
	assert.Equal(t, 6, syntaxErr.Position)
}
