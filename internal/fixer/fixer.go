package fixer

import (
	"github.com/mcncl/jsonfixer/internal/token"
)

// Fix balances braces and brackets in a token sequence. Missing closers are
// synthesized, a closer of the wrong type is replaced by the expected one, and
// closers without an opener are dropped. The result always ends with Eof and
// has every opener matched.
func Fix(tokens []token.Token) []token.Token {
	fixed := make([]token.Token, 0, len(tokens)+16)
	stack := make([]token.Kind, 0, 32)
	eof := token.EOF()

	for _, tok := range tokens {
		switch tok.Kind {
		case token.Eof:
			eof = tok
		case token.LBrace:
			fixed = append(fixed, tok)
			stack = append(stack, token.RBrace)
		case token.LBracket:
			fixed = append(fixed, tok)
			stack = append(stack, token.RBracket)
		case token.RBrace, token.RBracket:
			if len(stack) == 0 {
				continue
			}
			expected := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if tok.Kind == expected {
				fixed = append(fixed, tok)
				continue
			}
			fixed = append(fixed, token.Closing(expected))
			// Only one level of mismatch is resolved: the stray closer
			// survives only if it closes the next enclosing structure.
			if len(stack) > 0 && stack[len(stack)-1] == tok.Kind {
				stack = stack[:len(stack)-1]
				fixed = append(fixed, tok)
			}
		default:
			fixed = append(fixed, tok)
		}
	}

	for len(stack) > 0 {
		fixed = append(fixed, token.Closing(stack[len(stack)-1]))
		stack = stack[:len(stack)-1]
	}

	return append(fixed, eof)
}

// Depth returns the maximum nesting depth reached in tokens, or -1 if a
// closer appears without a matching opener of the same type.
func Depth(tokens []token.Token) int {
	var stack []token.Kind
	maxDepth := 0
	for _, tok := range tokens {
		switch tok.Kind {
		case token.LBrace:
			stack = append(stack, token.RBrace)
		case token.LBracket:
			stack = append(stack, token.RBracket)
		case token.RBrace, token.RBracket:
			if len(stack) == 0 || stack[len(stack)-1] != tok.Kind {
				return -1
			}
			stack = stack[:len(stack)-1]
		}
		if len(stack) > maxDepth {
			maxDepth = len(stack)
		}
	}
	if len(stack) != 0 {
		return -1
	}
	return maxDepth
}
