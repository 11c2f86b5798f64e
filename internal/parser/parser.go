package parser

import (
	"strconv"
	"strings"

	"github.com/mcncl/jsonfixer/internal/models"
	"github.com/mcncl/jsonfixer/internal/token"
)

// Parse reads one value starting at tokens[idx]. It never fails: where no
// value can be produced the result's Value is nil.
//
// Structural closers and Eof yield no value and are left unconsumed so the
// enclosing object or array can terminate on them. Stray colons, commas and
// unknown tokens yield no value but are consumed.
func Parse(tokens []token.Token, idx int) models.ParseResult {
	if idx >= len(tokens) {
		return models.ParseResult{Index: idx}
	}

	tok := tokens[idx]
	switch tok.Kind {
	case token.LBrace:
		return parseObject(tokens, idx+1)
	case token.LBracket:
		return parseArray(tokens, idx+1)
	case token.String:
		return models.ParseResult{Value: models.String(tok.Text), Index: idx + 1}
	case token.Number:
		return models.ParseResult{Value: parseNumber(tok.Text), Index: idx + 1}
	case token.True:
		return models.ParseResult{Value: models.Bool(true), Index: idx + 1}
	case token.False:
		return models.ParseResult{Value: models.Bool(false), Index: idx + 1}
	case token.Null:
		return models.ParseResult{Value: models.Null{}, Index: idx + 1}
	case token.RBrace, token.RBracket, token.Eof:
		return models.ParseResult{Index: idx}
	default:
		return models.ParseResult{Index: idx + 1}
	}
}

// parseNumber converts number text into Int or Float. Text the numeric types
// cannot hold (out of range) is kept as a string.
func parseNumber(raw string) models.Value {
	if strings.ContainsAny(raw, ".eE") {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return models.String(raw)
		}
		return models.Float(f)
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return models.String(raw)
	}
	return models.Int(n)
}

// parseObject collects members until a closing brace or Eof. Missing commas
// are tolerated, a key without a colon maps to null, and anything that cannot
// start a member is skipped.
func parseObject(tokens []token.Token, idx int) models.ParseResult {
	obj := models.NewObject()
	expectComma := false

	for idx < len(tokens) {
		tok := tokens[idx]

		if tok.Kind == token.RBrace || tok.Kind == token.Eof {
			return models.ParseResult{Value: obj, Index: idx + 1}
		}

		if expectComma {
			expectComma = false
			if tok.Kind == token.Comma {
				idx++
				continue
			}
		}

		if tok.Kind != token.String {
			idx++
			continue
		}

		key := tok.Text
		idx++
		if idx < len(tokens) && tokens[idx].Kind == token.Colon {
			res := Parse(tokens, idx+1)
			if res.Found() {
				obj.Set(key, res.Value)
			}
			idx = res.Index
		} else {
			obj.Set(key, models.Null{})
		}
		expectComma = true
	}

	return models.ParseResult{Value: obj, Index: idx}
}

// parseArray collects elements until a closing bracket or Eof. Unlike
// objects, an array ends silently at the first token that cannot start a
// value, leaving that token for the caller.
func parseArray(tokens []token.Token, idx int) models.ParseResult {
	arr := make(models.Array, 0, 16)
	expectComma := false

	for idx < len(tokens) {
		tok := tokens[idx]

		if tok.Kind == token.RBracket || tok.Kind == token.Eof {
			return models.ParseResult{Value: arr, Index: idx + 1}
		}

		if expectComma {
			expectComma = false
			if tok.Kind == token.Comma {
				idx++
				continue
			}
		}

		if !tok.Kind.StartsValue() {
			return models.ParseResult{Value: arr, Index: idx}
		}

		res := Parse(tokens, idx)
		if res.Found() {
			arr = append(arr, res.Value)
		}
		idx = res.Index
		expectComma = true
	}

	return models.ParseResult{Value: arr, Index: idx}
}
