package corrector

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mcncl/jsonfixer/internal/fixer"
	"github.com/mcncl/jsonfixer/internal/models"
	"github.com/mcncl/jsonfixer/internal/parser"
	"github.com/mcncl/jsonfixer/internal/serializer"
	"github.com/mcncl/jsonfixer/internal/tokenizer"
)

// Corrector turns broken JSON text into valid JSON text. It reuses the
// tokenizer's scratch buffer across calls and must not be used from more than
// one goroutine at a time; see Pool.
type Corrector struct {
	tokenizer  *tokenizer.Tokenizer
	serializer *serializer.Serializer
	logger     *slog.Logger
}

type settings struct {
	serializerOpts []serializer.Option
	logger         *slog.Logger
}

// Option configures a Corrector.
type Option func(*settings)

// WithIndent sets the indentation used by CorrectPretty.
func WithIndent(indent string) Option {
	return func(s *settings) {
		s.serializerOpts = append(s.serializerOpts, serializer.WithIndent(indent))
	}
}

// WithEscapeHTML escapes <, > and & inside output strings.
func WithEscapeHTML(escape bool) Option {
	return func(s *settings) {
		s.serializerOpts = append(s.serializerOpts, serializer.WithEscapeHTML(escape))
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// New creates a Corrector.
func New(opts ...Option) *Corrector {
	s := settings{}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	return &Corrector{
		tokenizer:  tokenizer.NewTokenizer(),
		serializer: serializer.NewSerializer(s.serializerOpts...),
		logger:     s.logger.With("component", "corrector"),
	}
}

// Correct repairs input and returns it as compact JSON. It never fails: input
// holding no value at all becomes {}.
func (c *Corrector) Correct(input string) string {
	return c.serializer.Serialize(c.Repair(input))
}

// CorrectPretty is Correct with indented, multi-line output.
func (c *Corrector) CorrectPretty(input string) string {
	return c.serializer.SerializePretty(c.Repair(input))
}

// Repair runs the tokenize, fix and parse stages and returns the value tree.
func (c *Corrector) Repair(input string) models.Value {
	tokens := c.tokenizer.Tokenize(input)
	fixed := fixer.Fix(tokens)

	result := parser.Parse(fixed, 0)

	if c.logger.Enabled(context.Background(), slog.LevelDebug) {
		c.logger.Debug("repaired input",
			"input_bytes", len(input),
			"tokens", len(tokens),
			"fixed_tokens", len(fixed),
			"depth", fixer.Depth(fixed),
			"consumed", result.Index,
		)
	}

	if !result.Found() {
		return models.NewObject()
	}
	return result.Value
}

// Pool hands out Correctors so that concurrent callers never share a
// tokenizer buffer. All Correctors of a Pool share the same options.
type Pool struct {
	pool sync.Pool
}

// NewPool creates a Pool whose Correctors are built with opts.
func NewPool(opts ...Option) *Pool {
	p := &Pool{}
	p.pool.New = func() any {
		return New(opts...)
	}
	return p
}

// Get borrows a Corrector. Return it with Put when done.
func (p *Pool) Get() *Corrector {
	return p.pool.Get().(*Corrector)
}

// Put returns a Corrector obtained from Get.
func (p *Pool) Put(c *Corrector) {
	p.pool.Put(c)
}

// Correct is safe for concurrent use.
func (p *Pool) Correct(input string) string {
	c := p.Get()
	defer p.Put(c)
	return c.Correct(input)
}

// CorrectPretty is safe for concurrent use.
func (p *Pool) CorrectPretty(input string) string {
	c := p.Get()
	defer p.Put(c)
	return c.CorrectPretty(input)
}
