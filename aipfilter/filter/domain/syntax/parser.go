// Package syntax provides the AIP-160 filter parse tree and a native
// recursive-descent parser producing it.
//
// Grammar:
//
//	expression  := sequence (AND sequence)*
//	sequence    := factor (factor)*
//	factor      := term (OR term)*
//	term        := [NOT | '-'] simple
//	simple      := restriction | '(' expression ')'
//	restriction := comparable [comparator arg]
//	comparable  := value ('.' value)*
//	comparator  := '=' | '<' | '<=' | '>=' | '>' | '!=' | ':'
//	arg         := '(' expression ')' | comparable
//	value       := INTEGER | FLOAT | BOOLEAN | DURATION | DATETIME | STRING | TEXT | '*'
package syntax

import (
	"fmt"
	"strings"
)

// Parse parses filter text into an expression tree.
// Blank input returns ErrEmptyFilter.
func Parse(filter string) (*Expression, error) {
	if strings.TrimSpace(filter) == "" {
		return nil, ErrEmptyFilter
	}
	tokens, err := NewLexer(filter).Tokenize()
	if err != nil {
		return nil, err
	}
	p := &Parser{tokens: tokens}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Type != TokenEOF {
		return nil, p.unexpected(tok)
	}
	return expr, nil
}

// Parser builds the parse tree from a token stream.
type Parser struct {
	tokens []Token
	pos    int
}

func (p *Parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *Parser) next() Token {
	tok := p.tokens[p.pos]
	if tok.Type != TokenEOF {
		p.pos++
	}
	return tok
}

func (p *Parser) unexpected(tok Token) error {
	if tok.Type == TokenEOF {
		return &SyntaxError{Position: tok.Position, Message: "unexpected end of filter"}
	}
	return &SyntaxError{Position: tok.Position, Message: fmt.Sprintf("unexpected %s %q", tok.Type, tok.Value)}
}

func (p *Parser) parseExpression() (*Expression, error) {
	seq, err := p.parseSequence()
	if err != nil {
		return nil, err
	}
	expr := &Expression{Sequences: []*Sequence{seq}}
	for p.peek().Type == TokenAnd {
		p.next()
		seq, err = p.parseSequence()
		if err != nil {
			return nil, err
		}
		expr.Sequences = append(expr.Sequences, seq)
	}
	return expr, nil
}

func (p *Parser) parseSequence() (*Sequence, error) {
	factor, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	seq := &Sequence{Factors: []*Factor{factor}}
	for p.startsTerm(p.peek()) {
		factor, err = p.parseFactor()
		if err != nil {
			return nil, err
		}
		seq.Factors = append(seq.Factors, factor)
	}
	return seq, nil
}

func (p *Parser) startsTerm(tok Token) bool {
	switch tok.Type {
	case TokenNot, TokenMinus, TokenLParen:
		return true
	}
	return tok.isValue()
}

func (p *Parser) parseFactor() (*Factor, error) {
	term, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	factor := &Factor{Terms: []*Term{term}}
	for p.peek().Type == TokenOr {
		p.next()
		term, err = p.parseTerm()
		if err != nil {
			return nil, err
		}
		factor.Terms = append(factor.Terms, term)
	}
	return factor, nil
}

func (p *Parser) parseTerm() (*Term, error) {
	term := &Term{}
	if tok := p.peek(); tok.Type == TokenNot || tok.Type == TokenMinus {
		p.next()
		term.Negated = true
	}
	simple, err := p.parseSimple()
	if err != nil {
		return nil, err
	}
	term.Simple = simple
	return term, nil
}

func (p *Parser) parseSimple() (Simple, error) {
	if p.peek().Type == TokenLParen {
		return p.parseComposite()
	}
	return p.parseRestriction()
}

func (p *Parser) parseComposite() (*Composite, error) {
	p.next()
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if tok := p.next(); tok.Type != TokenRParen {
		return nil, p.unexpected(tok)
	}
	return &Composite{Expression: expr}, nil
}

func (p *Parser) parseRestriction() (*Restriction, error) {
	comparable, err := p.parseMember()
	if err != nil {
		return nil, err
	}
	r := &Restriction{Comparable: comparable}
	if p.peek().Type != TokenComparator {
		return r, nil
	}
	r.Comparator = p.next().Value
	r.Arg, err = p.parseArg()
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (p *Parser) parseArg() (Arg, error) {
	if p.peek().Type == TokenLParen {
		return p.parseComposite()
	}
	return p.parseMember()
}

func (p *Parser) parseMember() (*Member, error) {
	value, err := p.parseValue(false)
	if err != nil {
		return nil, err
	}
	m := &Member{Value: value}
	for p.peek().Type == TokenDot {
		p.next()
		field, err := p.parseValue(true)
		if err != nil {
			return nil, err
		}
		m.Fields = append(m.Fields, field)
	}
	return m, nil
}

var valueKinds = map[TokenType]ValueKind{
	TokenInteger:  KindInteger,
	TokenFloat:    KindFloat,
	TokenBoolean:  KindBoolean,
	TokenDuration: KindDuration,
	TokenDatetime: KindDatetime,
	TokenString:   KindString,
	TokenText:     KindText,
	TokenAsterisk: KindAsterisk,
}

// parseValue reads one literal. Keywords are accepted as field names after a dot.
func (p *Parser) parseValue(field bool) (*Value, error) {
	tok := p.peek()
	if kind, ok := valueKinds[tok.Type]; ok {
		p.next()
		return &Value{Kind: kind, Text: tok.Value, Position: tok.Position}, nil
	}
	if field && (tok.Type == TokenAnd || tok.Type == TokenOr || tok.Type == TokenNot) {
		p.next()
		return &Value{Kind: KindText, Text: tok.Value, Position: tok.Position}, nil
	}
	return nil, p.unexpected(tok)
}
