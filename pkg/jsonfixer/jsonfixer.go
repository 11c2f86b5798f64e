// Package jsonfixer repairs syntactically broken JSON: truncated documents,
// unbalanced brackets, missing commas or colons, partial true/false/null
// literals and trailing commas. Repair never fails; the worst case is an
// empty object.
//
//	fixed := jsonfixer.Correct(`{"items":[1,2,3`)
//	// fixed == `{"items":[1,2,3]}`
package jsonfixer

import (
	"log/slog"

	"github.com/mcncl/jsonfixer/internal/corrector"
)

var defaultPool = corrector.NewPool()

// Correct repairs input and returns compact JSON. It is safe for concurrent use.
func Correct(input string) string {
	return defaultPool.Correct(input)
}

// CorrectPretty repairs input and returns JSON indented with two spaces. It is
// safe for concurrent use.
func CorrectPretty(input string) string {
	return defaultPool.CorrectPretty(input)
}

// Option configures a Corrector.
type Option = corrector.Option

// WithIndent sets the indentation unit used by CorrectPretty.
func WithIndent(indent string) Option { return corrector.WithIndent(indent) }

// WithEscapeHTML escapes <, > and & inside output strings.
func WithEscapeHTML(escape bool) Option { return corrector.WithEscapeHTML(escape) }

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option { return corrector.WithLogger(logger) }

// Corrector is a configured, concurrency-safe repairer.
type Corrector struct {
	pool *corrector.Pool
}

// New returns a Corrector using opts.
func New(opts ...Option) *Corrector {
	return &Corrector{pool: corrector.NewPool(opts...)}
}

// Correct repairs input and returns compact JSON.
func (c *Corrector) Correct(input string) string {
	return c.pool.Correct(input)
}

// CorrectPretty repairs input and returns indented JSON.
func (c *Corrector) CorrectPretty(input string) string {
	return c.pool.CorrectPretty(input)
}
