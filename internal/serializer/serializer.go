package serializer

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"

	"github.com/mailru/easyjson/jwriter"
	"github.com/tidwall/pretty"

	"github.com/mcncl/jsonfixer/internal/models"
)

// DefaultIndent is used by pretty output unless overridden.
const DefaultIndent = "  "

// failedOutput is returned whenever a value cannot be rendered.
const failedOutput = "null"

// Serializer renders value trees as JSON text.
type Serializer struct {
	indent     string
	escapeHTML bool
}

// Option configures a Serializer.
type Option func(*Serializer)

// WithIndent sets the indentation unit of pretty output.
func WithIndent(indent string) Option {
	return func(s *Serializer) {
		s.indent = indent
	}
}

// WithEscapeHTML makes strings escape <, > and & as \u003c, \u003e and \u0026.
func WithEscapeHTML(escape bool) Option {
	return func(s *Serializer) {
		s.escapeHTML = escape
	}
}

// NewSerializer creates a new Serializer instance
func NewSerializer(opts ...Option) *Serializer {
	s := &Serializer{indent: DefaultIndent}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Serialize renders v without insignificant whitespace. It returns "null" if
// v cannot be rendered.
func (s *Serializer) Serialize(v models.Value) string {
	out, err := s.compact(v)
	if err != nil {
		return failedOutput
	}
	return string(out)
}

// SerializePretty renders v across multiple indented lines, one array element
// or object member per line. It returns "null" if v cannot be rendered.
func (s *Serializer) SerializePretty(v models.Value) string {
	out, err := s.compact(v)
	if err != nil {
		return failedOutput
	}
	indented := pretty.PrettyOptions(out, &pretty.Options{
		Width:  -1, // never keep arrays on a single line
		Indent: s.indent,
	})
	return string(bytes.TrimRight(indented, "\n"))
}

func (s *Serializer) compact(v models.Value) ([]byte, error) {
	w := &jwriter.Writer{NoEscapeHTML: !s.escapeHTML}
	writeValue(w, v)
	return w.BuildBytes()
}

var errUnsupportedValue = errors.New("unsupported value")

func writeValue(w *jwriter.Writer, v models.Value) {
	if w.Error != nil {
		return
	}

	switch val := v.(type) {
	case nil, models.Null:
		w.RawString("null")
	case models.Bool:
		w.Bool(bool(val))
	case models.Int:
		w.Int64(int64(val))
	case models.Float:
		f := float64(val)
		if math.IsInf(f, 0) || math.IsNaN(f) {
			w.Error = fmt.Errorf("%w: float %v", errUnsupportedValue, f)
			return
		}
		w.RawString(formatFloat(f))
	case models.String:
		w.String(Unescape(string(val)))
	case models.Array:
		w.RawByte('[')
		for i, elem := range val {
			if i > 0 {
				w.RawByte(',')
			}
			writeValue(w, elem)
		}
		w.RawByte(']')
	case *models.Object:
		w.RawByte('{')
		first := true
		val.Each(func(key string, elem models.Value) {
			if !first {
				w.RawByte(',')
			}
			first = false
			w.String(Unescape(key))
			w.RawByte(':')
			writeValue(w, elem)
		})
		w.RawByte('}')
	default:
		w.Error = fmt.Errorf("%w: %T", errUnsupportedValue, v)
	}
}

// formatFloat always marks the number as floating point: a fraction or an
// exponent is present in the result.
func formatFloat(f float64) string {
	format := byte('f')
	if abs := math.Abs(f); abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	s := strconv.FormatFloat(f, format, -1, 64)
	if format == 'e' {
		// 1e+21 -> 1e21, 1e-07 -> 1e-7
		mantissa, exp, _ := strings.Cut(s, "e")
		sign := ""
		if exp[0] == '-' {
			sign = "-"
		}
		return mantissa + "e" + sign + strings.TrimLeft(exp[1:], "0")
	}
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// Unescape resolves the escape sequences of raw string content. Sequences
// JSON does not define are kept as written, backslash included, and unpaired
// surrogates become U+FFFD.
func Unescape(raw string) string {
	if strings.IndexByte(raw, '\\') < 0 {
		return raw
	}

	var b strings.Builder
	b.Grow(len(raw))

	for i := 0; i < len(raw); {
		c := raw[i]
		if c != '\\' || i+1 >= len(raw) {
			b.WriteByte(c)
			i++
			continue
		}

		switch e := raw[i+1]; e {
		case '"', '\\', '/':
			b.WriteByte(e)
			i += 2
		case 'b':
			b.WriteByte('\b')
			i += 2
		case 'f':
			b.WriteByte('\f')
			i += 2
		case 'n':
			b.WriteByte('\n')
			i += 2
		case 'r':
			b.WriteByte('\r')
			i += 2
		case 't':
			b.WriteByte('\t')
			i += 2
		case 'u':
			r, ok := hex4(raw, i+2)
			if !ok {
				b.WriteByte('\\')
				i++
				continue
			}
			i += 6
			if utf16.IsSurrogate(r) {
				r2, ok := lowSurrogate(raw, i)
				if dec := utf16.DecodeRune(r, r2); ok && dec != unicode.ReplacementChar {
					r = dec
					i += 6
				} else {
					r = unicode.ReplacementChar
				}
			}
			b.WriteRune(r)
		default:
			b.WriteByte('\\')
			i++
		}
	}

	return b.String()
}

func lowSurrogate(s string, i int) (rune, bool) {
	if i+1 >= len(s) || s[i] != '\\' || s[i+1] != 'u' {
		return 0, false
	}
	return hex4(s, i+2)
}

func hex4(s string, i int) (rune, bool) {
	if i+4 > len(s) {
		return 0, false
	}
	var r rune
	for _, c := range []byte(s[i : i+4]) {
		switch {
		case c >= '0' && c <= '9':
			c -= '0'
		case c >= 'a' && c <= 'f':
			c = c - 'a' + 10
		case c >= 'A' && c <= 'F':
			c = c - 'A' + 10
		default:
			return 0, false
		}
		r = r<<4 | rune(c)
	}
	return r, true
}
