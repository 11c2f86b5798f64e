package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/mcncl/jsonfixer/internal/batch"
	"github.com/mcncl/jsonfixer/internal/config"
	"github.com/mcncl/jsonfixer/internal/corrector"
	"github.com/mcncl/jsonfixer/internal/errors"
	"github.com/mcncl/jsonfixer/internal/input"
)

// CLI defines the command-line interface
var CLI struct {
	Files       []string `arg:"" optional:"" help:"JSON files to correct. More than one file switches to batch mode."`
	Input       string   `help:"Path to input JSON file. If not specified, reads from stdin." short:"i" type:"path"`
	Output      string   `help:"Path to output file. If not specified, writes to stdout. Single input only." short:"o" type:"path"`
	Pretty      bool     `help:"Indent the corrected JSON." short:"p" negatable:""`
	Indent      string   `help:"Indentation unit for pretty output (default two spaces)."`
	EscapeHTML  bool     `name:"escape-html" help:"Escape <, > and & in strings." negatable:""`
	Workers     int      `help:"Number of files corrected concurrently in batch mode." short:"w"`
	Suffix      string   `help:"Suffix replacing the extension of each input in batch mode (default .fixed.json)."`
	InPlace     bool     `name:"in-place" help:"Overwrite input files with their corrected form." negatable:""`
	Config      string   `help:"Path to config file. Defaults to the nearest .jsonfixer.yml." short:"c" type:"path"`
	EnvFile     string   `name:"env-file" help:"Read JSONFIXER_* settings from a dotenv file." type:"path"`
	LogLevel    string   `name:"log-level" help:"Logging level (debug, info, warn, error)."`
	Debug       bool     `help:"Enable debug logging." short:"d"`
	Version     bool     `help:"Show version information." short:"v"`
	Interactive bool     `help:"Run in interactive mode, allowing direct JSON input with Ctrl+D to process." short:"I"`
}

// setFlags holds the names of the flags given on the command line.
var setFlags = map[string]bool{}

// Context holds the runtime context
type Context struct {
	Config *config.Config
	Logger *slog.Logger
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Version information
const (
	Version = "0.1.0"
)

func main() {
	parser := kong.Must(&CLI,
		kong.Name("jsonfixer"),
		kong.Description("Repair broken, truncated or unbalanced JSON"),
		kong.UsageOnError(),
	)

	kctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		// kong.UsageOnError() has already printed the usage
		os.Exit(1)
	}
	for _, flag := range kctx.Flags() {
		if flag.Set {
			setFlags[flag.Name] = true
		}
	}

	// No arguments at all: read JSON interactively
	if len(os.Args) == 1 {
		CLI.Interactive = true
	}

	if CLI.Version {
		fmt.Printf("jsonfixer version %s\n", Version)
		return
	}

	ctx, err := newContext()
	if err == nil {
		err = run(ctx)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: jsonfixer --help\n")
		os.Exit(1)
	}
}

// newContext loads configuration and installs the default logger
func newContext() (*Context, error) {
	configPath := CLI.Config
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	cfg, err := config.LoadConfigWithCLI(configPath, CLI.EnvFile, overridesFromCLI())
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg, os.Stderr)
	slog.SetDefault(logger)
	if configPath != "" {
		logger.Debug("loaded config", "path", configPath)
	}

	return &Context{
		Config: cfg,
		Logger: logger,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}, nil
}

// overridesFromCLI collects the flags that were given; --debug wins over
// --log-level.
func overridesFromCLI() config.Overrides {
	o := config.Overrides{
		Pretty:     flagValue("pretty", CLI.Pretty),
		Indent:     flagValue("indent", CLI.Indent),
		EscapeHTML: flagValue("escape-html", CLI.EscapeHTML),
		Workers:    flagValue("workers", CLI.Workers),
		Suffix:     flagValue("suffix", CLI.Suffix),
		InPlace:    flagValue("in-place", CLI.InPlace),
		LogLevel:   flagValue("log-level", CLI.LogLevel),
	}
	if CLI.Debug {
		level := "debug"
		o.LogLevel = &level
	}
	return o
}

// flagValue returns v if the named flag was given, nil otherwise.
func flagValue[T any](name string, v T) *T {
	if !setFlags[name] {
		return nil
	}
	return &v
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: cfg.Log.SlogLevel(),
	}))
}

func correctorOptions(ctx *Context) []corrector.Option {
	return []corrector.Option{
		corrector.WithIndent(ctx.Config.Output.Indent),
		corrector.WithEscapeHTML(ctx.Config.Output.EscapeHTML),
		corrector.WithLogger(ctx.Logger),
	}
}

// run executes the main program logic
func run(ctx *Context) error {
	paths := inputPaths()

	if CLI.Output != "" && len(paths) > 1 {
		return errors.NewOutputError("--output can only be used with a single input", errors.ErrOutputConflict)
	}
	if len(paths) > 1 || (len(paths) == 1 && ctx.Config.Batch.InPlace) {
		return runBatch(ctx, paths)
	}

	// 1. Read input
	text, err := readInput(ctx, paths)
	if err != nil {
		return err
	}

	// 2. Correct it
	c := corrector.New(correctorOptions(ctx)...)
	var fixed string
	if ctx.Config.Output.Pretty {
		fixed = c.CorrectPretty(text)
	} else {
		fixed = c.Correct(text)
	}

	// 3. Output the result
	return writeOutput(ctx, fixed)
}

func inputPaths() []string {
	paths := make([]string, 0, len(CLI.Files)+1)
	if CLI.Input != "" {
		paths = append(paths, CLI.Input)
	}
	return append(paths, CLI.Files...)
}

// readInput reads JSON text from the single input file or stdin
func readInput(ctx *Context, paths []string) (string, error) {
	if len(paths) == 1 {
		return input.ReadFile(paths[0])
	}

	if f, ok := ctx.Stdin.(*os.File); ok {
		stdinInfo, err := f.Stat()
		if err != nil {
			return "", errors.NewInputError("failed to access stdin", err)
		}
		if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
			// Terminal is interactive (not piped)
			if CLI.Interactive {
				return input.ReadInteractive(f, ctx.Stderr)
			}
			return "", errors.NewInputError("no input provided", errors.ErrNoInput)
		}
	}

	return input.ReadAll(ctx.Stdin)
}

// writeOutput writes corrected JSON to file or stdout
func writeOutput(ctx *Context, fixed string) error {
	if CLI.Output != "" {
		err := os.WriteFile(CLI.Output, []byte(fixed+"\n"), 0o644)
		if err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", CLI.Output), err)
		}
		fmt.Fprintf(ctx.Stderr, "Corrected JSON written to %s\n", CLI.Output)
		return nil
	}

	_, err := fmt.Fprintln(ctx.Stdout, fixed)
	if err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}

// runBatch corrects several files concurrently and reports each outcome
func runBatch(ctx *Context, paths []string) error {
	cfg := ctx.Config
	runner, err := batch.NewRunner(
		batch.WithWorkers(cfg.Batch.Workers),
		batch.WithPretty(cfg.Output.Pretty),
		batch.WithSuffix(cfg.Batch.Suffix),
		batch.WithInPlace(cfg.Batch.InPlace),
		batch.WithCorrectorOptions(correctorOptions(ctx)...),
		batch.WithLogger(ctx.Logger),
	)
	if err != nil {
		return err
	}
	defer runner.Release()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	summary, err := runner.Run(sigCtx, paths)
	for _, res := range summary.Results {
		if res.Err != nil {
			fmt.Fprintf(ctx.Stderr, "FAIL %s: %s\n", res.Path, errors.UserFriendlyError(res.Err))
			continue
		}
		fmt.Fprintf(ctx.Stderr, "ok   %s -> %s\n", res.Path, res.Target)
	}
	if err != nil {
		return errors.NewBatchError("interrupted", err)
	}
	return summary.Err()
}
