// Package cli is the storefront command-line client. Every command runs the
// client core against a Local Persistence directory and the storefront API.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"storefront/internal/client/remote"
	"storefront/internal/client/storage"
	"storefront/internal/client/storefront"
)

var version = "dev"

// SetVersion sets the version string printed by `storefront version`.
func SetVersion(v string) {
	version = v
}

type app struct {
	cfgFile string
	verbose bool

	v      *viper.Viper
	cfg    Config
	logger *slog.Logger
	out    printer

	api *remote.Client
	sf  *storefront.Storefront
}

// Execute runs the CLI with os.Args.
func Execute(ctx context.Context) error {
	return Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

func Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{v: viper.New()}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	return errors.Join(err, a.close())
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "storefront",
		Short: "Storefront client",
		Long: `storefront drives the storefront API from the terminal.

Identity, cart cache, wishlist, theme and queued analytics are kept in a
local data directory between runs.

Example usage:
  storefront login --email a@example.com --password secret
  storefront cart add <product-id> --qty 2
  storefront status
  storefront logout`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is .storefront.yaml)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")
	pf.String("api", "http://localhost:8080", "storefront API base URL")
	pf.String("data-dir", "", "local data directory (default is ~/.storefront)")
	pf.Duration("timeout", 0, "per-request timeout (default 10s)")
	pf.Bool("no-color", false, "disable colored output")

	_ = a.v.BindPFlag("api", pf.Lookup("api"))
	_ = a.v.BindPFlag("data_dir", pf.Lookup("data-dir"))
	_ = a.v.BindPFlag("timeout", pf.Lookup("timeout"))
	_ = a.v.BindPFlag("no_color", pf.Lookup("no-color"))

	root.AddCommand(
		a.registerCmd(),
		a.loginCmd(),
		a.logoutCmd(),
		a.statusCmd(),
		a.cartCmd(),
		a.wishlistCmd(),
		a.themeCmd(),
		a.dataCmd(),
		a.versionCmd(),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	a.out = printer{out: cmd.OutOrStdout(), err: cmd.ErrOrStderr()}

	cfg, err := loadConfig(a.v, a.cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.cfg = cfg
	if cfg.NoColor {
		color.NoColor = true
	}

	level := slog.LevelWarn
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q", cfg.LogLevel)
	}
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	a.logger.Debug("configuration loaded", "api", cfg.API, "data_dir", cfg.DataDir, "timeout", cfg.Timeout)
	return nil
}

// storefront opens Local Persistence and restores the client core. Commands
// that only print static information never call it.
func (a *app) storefront(ctx context.Context) (*storefront.Storefront, error) {
	if a.sf != nil {
		return a.sf, nil
	}

	if err := os.MkdirAll(a.cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	store, err := storage.Open(storage.Config{Path: a.cfg.DataDir, Logger: a.logger})
	if err != nil {
		return nil, fmt.Errorf("open data dir: %w", err)
	}

	a.api = remote.NewClient(a.cfg.API, &http.Client{Timeout: a.cfg.Timeout}, a.logger)
	sf, err := storefront.New(ctx, storefront.Config{
		Store:   store,
		Backend: a.api,
		Logger:  a.logger,
		Timeout: a.cfg.Timeout,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	if err := sf.Start(ctx); err != nil {
		_ = sf.Close()
		return nil, err
	}

	a.sf = sf
	return sf, nil
}

func (a *app) close() error {
	if a.sf == nil {
		return nil
	}
	err := a.sf.Close()
	a.sf = nil
	return err
}
