// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/naka-gawa/gitorg/internal/config"
	"github.com/naka-gawa/gitorg/internal/domain"
	"github.com/naka-gawa/gitorg/internal/gateway"
	"github.com/naka-gawa/gitorg/internal/logging"
	"github.com/naka-gawa/gitorg/internal/render"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	json       bool
	verbose    bool
	configPath string

	// started is set once argument parsing succeeded and setup began.
	started bool
}

// streams are the process's standard streams, replaceable in tests.
type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

// app is built once per invocation and travels on the command context.
type app struct {
	cfg      *config.Config
	cfgPath  string
	renderer *render.Renderer
	logger   *slog.Logger
	streams  streams
	verbose  bool
	now      func() time.Time
}

type ctxAppKey struct{}

func withApp(ctx context.Context, a *app) context.Context {
	return context.WithValue(ctx, ctxAppKey{}, a)
}

func appFrom(ctx context.Context) *app {
	a, _ := ctx.Value(ctxAppKey{}).(*app)
	return a
}

// newGateway builds a gateway for the stored credential and the configured endpoint.
func (a *app) newGateway() (*gateway.GitHubGateway, error) {
	token, err := a.cfg.Token()
	if err != nil {
		return nil, err
	}
	return a.newGatewayWithToken(token)
}

func (a *app) newGatewayWithToken(token domain.Token) (*gateway.GitHubGateway, error) {
	var opts []gateway.Option
	if a.cfg.API.BaseURL != "" {
		opts = append(opts, gateway.WithBaseURL(a.cfg.API.BaseURL))
	}
	return gateway.NewGitHubGateway(token, a.logger, opts...)
}

// reportRate prints the last quota seen by gw when --verbose is set.
func (a *app) reportRate(gw *gateway.GitHubGateway) {
	if !a.verbose {
		return
	}
	if rate, ok := gw.LastRate(); ok {
		a.renderer.RateLimit(rate)
	}
}

func newRootCmd(s streams) (*cobra.Command, *globalFlags) {
	flags := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:   "gitorg",
		Short: "A CLI tool to inspect the GitHub organizations you belong to.",
		Long: `gitorg lists the organizations, repositories, stale repositories, and open
issues visible to one GitHub token, and summarizes them as statistics.
Output is an aligned table, or JSON with --json.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			flags.started = true
			a, err := setup(flags, s)
			if err != nil {
				return err
			}
			ctx := logging.With(withApp(cmd.Context(), a), a.logger)
			cmd.SetContext(ctx)
			return nil
		},
	}
	rootCmd.SetIn(s.in)
	rootCmd.SetOut(s.out)
	rootCmd.SetErr(s.err)
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	// Add persistent flags, available to all commands.
	rootCmd.PersistentFlags().BoolVar(&flags.json, "json", false, "Output JSON instead of tables")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose/debug logging and report the API quota")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Path to the config file (default $XDG_CONFIG_HOME/gitorg/config.toml)")

	rootCmd.AddCommand(
		newAuthCmd(),
		newOrgsCmd(),
		newReposCmd(),
		newStaleCmd(),
		newIssuesCmd(),
		newStatsCmd(),
		newOverviewCmd(),
	)
	return rootCmd, flags
}

func setup(flags *globalFlags, s streams) (*app, error) {
	logger := logging.New(s.err, flags.verbose)
	renderer := render.New(s.out, s.err, flags.json, colorEnabled(s.out))

	path := flags.configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	logger.Debug("Loading configuration...", slog.String("path", path))
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("Configuration loaded.", slog.Any("config", cfg))

	return &app{
		cfg:      cfg,
		cfgPath:  path,
		renderer: renderer,
		logger:   logger,
		streams:  s,
		verbose:  flags.verbose,
		now:      time.Now,
	}, nil
}

// colorEnabled reports whether w is a terminal that should receive ANSI colours.
func colorEnabled(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	os.Exit(run(context.Background(), os.Args[1:], streams{in: os.Stdin, out: os.Stdout, err: os.Stderr}))
}

// run executes one invocation and returns the process exit code.
func run(ctx context.Context, args []string, s streams) int {
	rootCmd, flags := newRootCmd(s)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	if !flags.started && domain.KindOf(err) == domain.KindUnknown {
		// Cobra's own errors, such as an unknown subcommand.
		err = &usageError{err: err}
	}

	var reported *reportedError
	if !errors.As(err, &reported) {
		render.New(s.out, s.err, flags.json, colorEnabled(s.err)).Error(err)
		var usage *usageError
		if errors.As(err, &usage) && !flags.json {
			_, _ = io.WriteString(s.err, "Run 'gitorg --help' for usage.\n")
		}
	}
	return exitCode(err)
}

// reportedError marks an error whose details were already written to the error stream.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// partialFailure reports every failed organization and returns the first
// failure so that the process exits non-zero.
func (a *app) partialFailure(failures []*domain.OrgError) error {
	if len(failures) == 0 {
		return nil
	}
	for _, f := range failures {
		a.renderer.Error(f)
	}
	return &reportedError{err: failures[0]}
}

// requireNoArgs rejects positional arguments as a usage error.
func requireNoArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		return &usageError{err: err}
	}
	return nil
}

func validateDays(days int) error {
	if days < 0 {
		return &usageError{err: goerr.New("--days must not be negative", goerr.V("days", days))}
	}
	return nil
}
