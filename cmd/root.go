package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ghexplorer/config"
	"ghexplorer/logger"
	"ghexplorer/service"
)

// app holds what every subcommand shares once the root command has run.
type app struct {
	envFile string
	asJSON  bool

	cfg *config.Config
	svc *service.Service
}

func (a *app) now() time.Time { return time.Now() }

// execute runs the command line args. The service and logger are released
// whether or not the command succeeds.
func execute(ctx context.Context, a *app, args []string) (err error) {
	defer func() {
		if cerr := a.teardown(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	root := newRootCmd(a)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "ghexplorer",
		Short: "Explore GitHub repositories and users from the terminal",
		Long: `ghexplorer searches GitHub repositories, shows user profiles and
repository statistics, and keeps a local list of favorites. It can also
serve the same data over HTTP.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "Optional env file with configuration")
	root.PersistentFlags().BoolVar(&a.asJSON, "json", false, "Print JSON instead of formatted text")

	root.AddCommand(
		searchCmd(a),
		userCmd(a),
		repoCmd(a),
		favoritesCmd(a),
		serveCmd(a),
		browseCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	a.cfg = config.NewConfig()
	if err := a.cfg.Load(a.envFile); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := logger.Initialize(a.cfg.LogLevel, a.cfg.LogFormat); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	svc, err := service.New(cmd.Context(), a.cfg)
	if err != nil {
		return err
	}
	a.svc = svc
	logger.Debug("Command started", zap.String("command", cmd.CommandPath()))
	return nil
}

// teardown closes the service once; later calls are no-ops.
func (a *app) teardown() error {
	defer logger.Sync()
	if a.svc == nil {
		return nil
	}
	svc := a.svc
	a.svc = nil
	return svc.Close()
}

// print writes v as JSON when --json is set, otherwise the text from pretty.
func (a *app) print(w io.Writer, v interface{}, pretty func() string) error {
	if a.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(w, pretty())
	return err
}
