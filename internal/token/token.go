// Package token defines the lexical units shared by the tokenizer, fixer and parser.
package token

// Kind identifies the lexical class of a Token.
type Kind int

const (
	LBrace Kind = iota
	RBrace
	LBracket
	RBracket
	Colon
	Comma
	String
	Number
	True
	False
	Null
	Eof
	Unknown
)

var kindNames = [...]string{
	LBrace:   "LBrace",
	RBrace:   "RBrace",
	LBracket: "LBracket",
	RBracket: "RBracket",
	Colon:    "Colon",
	Comma:    "Comma",
	String:   "String",
	Number:   "Number",
	True:     "True",
	False:    "False",
	Null:     "Null",
	Eof:      "Eof",
	Unknown:  "Unknown",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Kind(?)"
	}
	return kindNames[k]
}

// IsCloser reports whether k closes an object or array.
func (k Kind) IsCloser() bool {
	return k == RBrace || k == RBracket
}

// StartsValue reports whether a token of kind k can begin a value.
func (k Kind) StartsValue() bool {
	switch k {
	case LBrace, LBracket, String, Number, True, False, Null:
		return true
	}
	return false
}

// Token is one lexical unit. Text holds the raw payload; for strings it is the
// content between the quotes with escape pairs left undecoded. Eof has no text.
type Token struct {
	Kind Kind
	Text string
}

// New creates a token of the given kind carrying text.
func New(kind Kind, text string) Token {
	return Token{Kind: kind, Text: text}
}

// EOF returns the sentinel that terminates every token sequence.
func EOF() Token {
	return Token{Kind: Eof}
}

// Closing returns the canonical closer token for kind (RBrace or RBracket).
func Closing(kind Kind) Token {
	switch kind {
	case RBrace:
		return Token{Kind: RBrace, Text: "}"}
	case RBracket:
		return Token{Kind: RBracket, Text: "]"}
	}
	return Token{Kind: Unknown}
}

func (t Token) String() string {
	if t.Text == "" {
		return t.Kind.String()
	}
	return t.Kind.String() + "(" + t.Text + ")"
}
