package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/layout-verifier/internal/bootstrap"
	"github.com/joseph-ayodele/layout-verifier/internal/common"
	"github.com/joseph-ayodele/layout-verifier/internal/profile"
)

// exitError carries a process exit code through cobra.
type exitError struct {
	code int
	msg  string
}

func (e exitError) Error() string { return e.msg }

type globals struct {
	envFile     string
	profilePath string
	overrides   overrides

	cfg     *common.Config
	logger  *slog.Logger
	app     *bootstrap.App
	appOpts []bootstrap.Option
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	if err == nil {
		return
	}
	var ee exitError
	if errors.As(err, &ee) {
		if ee.msg != "" {
			printError("%s\n", ee.msg)
		}
		os.Exit(ee.code)
	}
	printError("Error: %v\n", err)
	os.Exit(1)
}

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func newRootCmd(opts ...bootstrap.Option) *cobra.Command {
	g := &globals{appOpts: opts}
	root := &cobra.Command{
		Use:           "layoutverify",
		Short:         "Verify product layout documents against a catalog workbook",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return g.setup(cmd.Context())
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if g.app != nil {
				return g.app.Close()
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.envFile, "env-file", ".env", "dotenv file loaded before reading configuration (missing file is ignored)")
	pf.StringVar(&g.profilePath, "profile", "", "verification profile (yaml, json or toml)")
	g.overrides.register(root)

	root.AddCommand(
		newBatchCmd(g),
		newSingleCmd(g),
		newColorCmd(g),
		newWatchCmd(g),
		newHistoryCmd(g),
	)
	return root
}

func (g *globals) setup(ctx context.Context) error {
	if g.envFile != "" {
		if err := godotenv.Load(g.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", g.envFile, err)
		}
	}
	g.cfg = common.LoadConfig()
	g.logger = common.NewLogger(g.cfg.Log, os.Stderr)
	slog.SetDefault(g.logger)

	app, err := bootstrap.New(ctx, g.cfg, g.logger, g.appOpts...)
	if err != nil {
		return err
	}
	g.app = app
	return nil
}

// profile loads --profile (or the defaults) and applies flag overrides.
func (g *globals) profile() (profile.Profile, error) {
	p := profile.Default()
	if g.profilePath != "" {
		var err error
		if p, err = profile.Load(g.profilePath); err != nil {
			return p, err
		}
	}
	g.overrides.apply(&p)
	return p, p.MatcherOptions().Validate()
}
