package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/mcncl/jsonfixer/internal/corrector"
	"github.com/mcncl/jsonfixer/internal/errors"
	"github.com/mcncl/jsonfixer/internal/input"
)

// DefaultWorkers is the pool size used when WithWorkers is not given.
const DefaultWorkers = 4

// DefaultSuffix replaces the extension of each input to name its output.
const DefaultSuffix = ".fixed.json"

// Runner corrects many files concurrently on a bounded worker pool.
type Runner struct {
	workers        int
	pretty         bool
	suffix         string
	inPlace        bool
	correctorOpts  []corrector.Option
	logger         *slog.Logger
	pool           *ants.Pool
	correctorsPool *corrector.Pool
}

// Option configures a Runner.
type Option func(*Runner) error

// WithWorkers sets the number of files corrected at once.
func WithWorkers(n int) Option {
	return func(r *Runner) error {
		if n < 1 {
			return fmt.Errorf("workers must be at least 1, got %d", n)
		}
		r.workers = n
		return nil
	}
}

// WithPretty writes indented output.
func WithPretty(pretty bool) Option {
	return func(r *Runner) error {
		r.pretty = pretty
		return nil
	}
}

// WithSuffix sets the suffix that replaces each input's extension.
func WithSuffix(suffix string) Option {
	return func(r *Runner) error {
		if suffix == "" {
			return fmt.Errorf("suffix must not be empty")
		}
		r.suffix = suffix
		return nil
	}
}

// WithInPlace overwrites each input with its corrected form.
func WithInPlace(inPlace bool) Option {
	return func(r *Runner) error {
		r.inPlace = inPlace
		return nil
	}
}

// WithCorrectorOptions configures the correctors used by the workers.
func WithCorrectorOptions(opts ...corrector.Option) Option {
	return func(r *Runner) error {
		r.correctorOpts = append(r.correctorOpts, opts...)
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRunner creates a Runner. Call Release when done with it.
func NewRunner(opts ...Option) (*Runner, error) {
	r := &Runner{
		workers: DefaultWorkers,
		suffix:  DefaultSuffix,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, errors.NewBatchError("invalid batch option", err)
		}
	}
	r.logger = r.logger.With("component", "batch")

	pool, err := ants.NewPool(r.workers)
	if err != nil {
		return nil, errors.NewBatchError("failed to create worker pool", err)
	}
	r.pool = pool
	r.correctorsPool = corrector.NewPool(r.correctorOpts...)

	return r, nil
}

// Release releases the worker pool.
// The runner should not be used after calling Release.
func (r *Runner) Release() {
	if r.pool != nil {
		r.pool.Release()
	}
}

// Result is the outcome for one input file.
type Result struct {
	Path   string
	Target string
	Err    error
}

// Summary lists results in the order the paths were given.
type Summary struct {
	Results   []Result
	Succeeded int
	Failed    int
}

// Err returns a batch error when at least one file failed.
func (s Summary) Err() error {
	if s.Failed == 0 {
		return nil
	}
	return errors.NewBatchError(fmt.Sprintf("%d of %d files failed", s.Failed, len(s.Results)), nil)
}

// Target returns where the corrected form of path is written.
func (r *Runner) Target(path string) string {
	if r.inPlace {
		return path
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + r.suffix
}

// Run corrects every path. A path whose target was already claimed by an
// earlier path fails without being read. Once ctx is done no new files are
// started; files already being processed are finished. The returned error is ctx's error, if
// any; per-file failures are reported in the Summary.
func (r *Runner) Run(ctx context.Context, paths []string) (Summary, error) {
	results := make([]Result, len(paths))
	var wg sync.WaitGroup

	// target -> first input writing it
	claimed := make(map[string]string, len(paths))

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			results[i] = Result{Path: path, Err: errors.NewBatchError("cancelled before start", err)}
			continue
		}

		target := filepath.Clean(r.Target(path))
		if first, ok := claimed[target]; ok {
			results[i] = Result{
				Path:   path,
				Target: r.Target(path),
				Err:    errors.NewBatchError(fmt.Sprintf("output target collides with %s", first), errors.ErrTargetCollision),
			}
			continue
		}
		claimed[target] = path

		wg.Add(1)
		submitErr := r.pool.Submit(func() {
			defer wg.Done()
			results[i] = r.process(path)
		})
		if submitErr != nil {
			wg.Done()
			results[i] = Result{Path: path, Err: errors.NewBatchError("failed to schedule file", submitErr)}
		}
	}
	wg.Wait()

	summary := Summary{Results: results}
	for _, res := range results {
		if res.Err != nil {
			summary.Failed++
			r.logger.Error("failed to correct file", "path", res.Path, "err", res.Err)
			continue
		}
		summary.Succeeded++
	}
	r.logger.Info("batch finished", "files", len(paths), "succeeded", summary.Succeeded, "failed", summary.Failed)

	return summary, ctx.Err()
}

func (r *Runner) process(path string) Result {
	res := Result{Path: path, Target: r.Target(path)}

	text, err := input.ReadFile(path)
	if err != nil {
		res.Err = err
		return res
	}

	c := r.correctorsPool.Get()
	var out string
	if r.pretty {
		out = c.CorrectPretty(text)
	} else {
		out = c.Correct(text)
	}
	r.correctorsPool.Put(c)

	if err := os.WriteFile(res.Target, []byte(out+"\n"), 0o644); err != nil {
		res.Err = errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", res.Target), err)
		return res
	}

	r.logger.Debug("corrected file", "path", path, "target", res.Target, "bytes", len(out))
	return res
}
