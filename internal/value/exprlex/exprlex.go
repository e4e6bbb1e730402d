// Package exprlex tokenizes the bounded arithmetic/value-expression
// grammar used inside {{ ... }} tags and directive arguments (spec
// §4.4): string and backtick literals, numeric literals, identifiers/
// aliases, and the `+ - * / % **` operator set. Unlike the outer
// template scanner — which must interpret escapes and delimiters
// character by character as it streams — this sub-grammar is
// self-contained, so it is tokenized with a generated DFA lexer
// instead of hand-rolled lookahead.
package exprlex

import (
	"fmt"

	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// TokenKind enumerates the token classes produced by the expression
// lexer.
type TokenKind int

const (
	Number TokenKind = iota
	String
	Backtick
	Ident
	Plus
	Minus
	Star
	StarStar
	Slash
	Percent
	LParen
	RParen
	Whitespace
)

var kindNames = [...]string{
	Number:     "NUMBER",
	String:     "STRING",
	Backtick:   "BACKTICK",
	Ident:      "IDENT",
	Plus:       "PLUS",
	Minus:      "MINUS",
	Star:       "STAR",
	StarStar:   "STARSTAR",
	Slash:      "SLASH",
	Percent:    "PERCENT",
	LParen:     "LPAREN",
	RParen:     "RPAREN",
	Whitespace: "WS",
}

func (k TokenKind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "UNKNOWN"
}

// Token is one scanned unit of the expression grammar.
type Token struct {
	Kind  TokenKind
	Text  string
	Line  int
	Col   int
}

func tokenAction(kind TokenKind) lexmachine.Action {
	return func(scan *lexmachine.Scanner, match *machines.Match) (interface{}, error) {
		return &Token{
			Kind: kind,
			Text: string(match.Bytes),
			Line: match.StartLine,
			Col:  match.StartColumn,
		}, nil
	}
}

func skipAction() lexmachine.Action {
	return func(scan *lexmachine.Scanner, match *machines.Match) (interface{}, error) {
		return nil, nil
	}
}

func newLexer() (*lexmachine.Lexer, error) {
	lexer := lexmachine.NewLexer()

	lexer.Add([]byte(`\"([^\"\\]|\\.)*\"`), tokenAction(String))
	lexer.Add([]byte("`[^`]*`"), tokenAction(Backtick))
	lexer.Add([]byte(`([0-9])+(\.([0-9])+)?`), tokenAction(Number))
	lexer.Add([]byte(`([a-zA-Z_])([a-zA-Z0-9_.\[\]])*`), tokenAction(Ident))
	lexer.Add([]byte(`\*\*`), tokenAction(StarStar))
	lexer.Add([]byte(`\+`), tokenAction(Plus))
	lexer.Add([]byte(`-`), tokenAction(Minus))
	lexer.Add([]byte(`\*`), tokenAction(Star))
	lexer.Add([]byte(`/`), tokenAction(Slash))
	lexer.Add([]byte(`%`), tokenAction(Percent))
	lexer.Add([]byte(`\(`), tokenAction(LParen))
	lexer.Add([]byte(`\)`), tokenAction(RParen))
	lexer.Add([]byte(`( |\t|\n|\r)+`), skipAction())

	if err := lexer.Compile(); err != nil {
		return nil, fmt.Errorf("exprlex: compiling lexer: %w", err)
	}
	return lexer, nil
}

// Tokenize scans a single arithmetic expression (everything up to the
// directive's closing delimiter) into a flat token list.
func Tokenize(src string) ([]*Token, error) {
	lexer, err := newLexer()
	if err != nil {
		return nil, err
	}

	scanner, err := lexer.Scanner([]byte(src))
	if err != nil {
		return nil, fmt.Errorf("exprlex: scanning: %w", err)
	}

	var tokens []*Token
	for tok, err, eof := scanner.Next(); !eof; tok, err, eof = scanner.Next() {
		if err != nil {
			return nil, fmt.Errorf("exprlex: %w", err)
		}
		if t, ok := tok.(*Token); ok {
			tokens = append(tokens, t)
		}
	}
	return tokens, nil
}
