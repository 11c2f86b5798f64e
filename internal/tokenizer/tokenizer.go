package tokenizer

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mcncl/jsonfixer/internal/token"
)

// Literal runs longer than this are never treated as partial true/false/null.
const maxPartialLiteralLen = 5

var (
	numberRegex     = regexp.MustCompile(`^-?\d+(\.\d+)?([eE][+-]?\d+)?$`)
	identifierRegex = regexp.MustCompile(`^[A-Za-z_]\w*$`)
)

// Tokenizer scans raw text into tokens. It keeps a scratch buffer for string
// assembly between calls, so a single Tokenizer must not be shared between
// goroutines.
type Tokenizer struct {
	buf strings.Builder
}

// NewTokenizer creates a new Tokenizer instance
func NewTokenizer() *Tokenizer {
	return &Tokenizer{}
}

// Tokenize never fails. The returned slice always ends with exactly one Eof token.
func (t *Tokenizer) Tokenize(input string) []token.Token {
	runes := []rune(input)
	n := len(runes)
	tokens := make([]token.Token, 0, n/4+1)

	for i := 0; i < n; {
		c := runes[i]

		if unicode.IsSpace(c) {
			i++
			continue
		}

		switch c {
		case '{':
			tokens = append(tokens, token.New(token.LBrace, "{"))
			i++
		case '}':
			tokens = append(tokens, token.New(token.RBrace, "}"))
			i++
		case '[':
			tokens = append(tokens, token.New(token.LBracket, "["))
			i++
		case ']':
			tokens = append(tokens, token.New(token.RBracket, "]"))
			i++
		case ':':
			tokens = append(tokens, token.New(token.Colon, ":"))
			i++
		case ',':
			tokens = append(tokens, token.New(token.Comma, ","))
			i++
		case '"':
			var text string
			text, i = t.scanString(runes, i+1)
			tokens = append(tokens, token.New(token.String, text))
		default:
			if !startsLiteral(c) {
				// Stray punctuation outside strings is dropped
				i++
				continue
			}
			start := i
			for i < n && continuesLiteral(runes[i]) {
				i++
			}
			tokens = append(tokens, classifyLiteral(string(runes[start:i])))
		}
	}

	return append(tokens, token.EOF())
}

// scanString copies runes verbatim up to the closing quote. A backslash and
// the rune after it are kept together as an undecoded pair. Input ending
// inside the string yields whatever was read so far.
func (t *Tokenizer) scanString(runes []rune, i int) (string, int) {
	t.buf.Reset()
	n := len(runes)

	for i < n {
		c := runes[i]
		switch {
		case c == '"':
			return t.buf.String(), i + 1
		case c == '\\':
			if i+1 >= n {
				// a dangling backslash at end of input is dropped
				return t.buf.String(), n
			}
			t.buf.WriteRune(c)
			t.buf.WriteRune(runes[i+1])
			i += 2
		default:
			t.buf.WriteRune(c)
			i++
		}
	}

	return t.buf.String(), i
}

func startsLiteral(c rune) bool {
	return isASCIIAlnum(c) || c == '-'
}

func continuesLiteral(c rune) bool {
	return isASCIIAlnum(c) || c == '-' || c == '+' || c == '.'
}

func isASCIIAlnum(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// classifyLiteral decides what a bare run of characters stands for: a
// possibly truncated true/false/null, a number, an unquoted identifier, or
// nothing recognisable.
func classifyLiteral(raw string) token.Token {
	if len(raw) <= maxPartialLiteralLen {
		switch raw[0] | 0x20 {
		case 't':
			if isPrefixFold(raw, "true") {
				return token.New(token.True, "true")
			}
		case 'f':
			if isPrefixFold(raw, "false") {
				return token.New(token.False, "false")
			}
		case 'n':
			if isPrefixFold(raw, "null") {
				return token.New(token.Null, "null")
			}
		}
	}

	if numberRegex.MatchString(raw) {
		return token.New(token.Number, raw)
	}
	if identifierRegex.MatchString(raw) {
		return token.New(token.String, raw)
	}
	return token.New(token.Unknown, raw)
}

// isPrefixFold reports whether raw is a case-insensitive prefix of the
// lowercase literal full.
func isPrefixFold(raw, full string) bool {
	if len(raw) > len(full) {
		return false
	}
	return strings.EqualFold(raw, full[:len(raw)])
}
