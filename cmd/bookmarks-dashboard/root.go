package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dastanaron/bookmarks/internal/client"
	"github.com/dastanaron/bookmarks/internal/commands"
	"github.com/dastanaron/bookmarks/internal/config"
	"github.com/dastanaron/bookmarks/internal/dashboard"
	"github.com/dastanaron/bookmarks/internal/logger"
	"github.com/dastanaron/bookmarks/internal/repository"
	"github.com/dastanaron/bookmarks/internal/server"
	"github.com/dastanaron/bookmarks/internal/service"
	"github.com/dastanaron/bookmarks/internal/session"
	"github.com/dastanaron/bookmarks/internal/ui"
)

type cliApp struct {
	cfg *config.Config

	dbPath   string
	backend  string
	logLevel string
	logFile  string
}

func newRootCmd() *cobra.Command {
	app := &cliApp{}

	cmd := &cobra.Command{
		Use:          "bookmarks-dashboard",
		Short:        "Personal bookmark dashboard: HTTP backend and terminal UI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Run the backend
  BOOKMARKS_ADMIN_PASSWORD=secret bookmarks-dashboard serve

  # Open the dashboard against it
  bookmarks-dashboard --backend http://localhost:8080

  # Maintain the local database
  bookmarks-dashboard import bookmarks.html
  bookmarks-dashboard clear-doubles
`),
		Args: cobra.NoArgs,
		// no subcommand => interactive TUI
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), app)
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		if flags.Changed("db") {
			cfg.WithDBPath(app.dbPath)
		}
		if flags.Changed("backend") {
			cfg.WithBackendURL(app.backend)
		}
		if flags.Changed("log-level") {
			cfg.WithLogLevel(app.logLevel)
		}
		if flags.Changed("log-file") {
			cfg.WithLogFile(app.logFile)
		}
		app.cfg = cfg
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.dbPath, "db", "", "Path to the SQLite database (default: ~/.bookmarks/dashboard.db)")
	cmd.PersistentFlags().StringVar(&app.backend, "backend", "", "Backend base URL used by the TUI")
	cmd.PersistentFlags().StringVar(&app.logLevel, "log-level", "", "Log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&app.logFile, "log-file", "", "Append logs to this file")

	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newTUICmd(app))
	cmd.AddCommand(newImportCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newClearDoublesCmd(app))

	return cmd
}

func newServeCmd(app *cliApp) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("listen") {
				app.cfg.WithListenAddr(listen)
			}
			return runServe(cmd.Context(), app.cfg)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (default :8080)")
	return cmd
}

func newTUICmd(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the dashboard in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), app)
		},
	}
}

func newImportCmd(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import a Netscape bookmarks HTML file into the local database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), app.cfg, func(ctx context.Context, svc *service.DashboardService) error {
				_, err := commands.NewImportCommand(svc, cmd.OutOrStdout()).Execute(ctx, args[0])
				return err
			})
		},
	}
}

func newExportCmd(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "export FILE",
		Short: "Export the local database as a Netscape bookmarks HTML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), app.cfg, func(ctx context.Context, svc *service.DashboardService) error {
				return commands.NewExportCommand(svc, cmd.OutOrStdout()).Execute(ctx, args[0])
			})
		},
	}
}

func newClearDoublesCmd(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-doubles",
		Short: "Remove bookmarks whose URL already appears earlier on the dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), app.cfg, func(ctx context.Context, svc *service.DashboardService) error {
				_, err := commands.NewClearDoublesCommand(svc, cmd.OutOrStdout()).Execute(ctx)
				return err
			})
		},
	}
}

// withService opens the local database for the duration of fn
func withService(ctx context.Context, cfg *config.Config, fn func(context.Context, *service.DashboardService) error) error {
	if err := cfg.EnsureDBDir(); err != nil {
		return err
	}
	repo, err := repository.NewSQLiteRepository(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer repo.Close()

	return fn(ctx, service.NewDashboardService(repo))
}

func runServe(ctx context.Context, cfg *config.Config) error {
	build := logger.New().WithLevel(cfg.LogLevel)
	if cfg.LogFile != "" {
		build.FromPath(cfg.LogFile)
	} else {
		build.FromWriter(os.Stdout)
	}
	logs, err := build.Make()
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer logs.Close()
	log := logs.Logger

	if err := cfg.EnsureDBDir(); err != nil {
		return err
	}
	repo, err := repository.NewSQLiteRepository(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer repo.Close()

	sessions, err := openSessions(cfg)
	if err != nil {
		return err
	}
	defer sessions.Close()

	if cfg.AdminPassword == "" {
		log.Warn().Str("env", config.EnvAdminPassword).Msg("no admin password set, login is disabled")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	auth := server.NewAuthenticator(cfg.AdminPassword, sessions, cfg.SessionTTL)
	srv := server.New(service.NewDashboardService(repo), auth, log)
	log.Info().Str("addr", cfg.ListenAddr).Str("db", cfg.DBPath).Msg("starting server")
	return srv.Run(ctx, cfg.ListenAddr)
}

func openSessions(cfg *config.Config) (server.SessionStore, error) {
	if cfg.SessionDir == "" {
		return server.NewMemorySessionStore(), nil
	}
	store, err := server.NewBadgerSessionStore(cfg.SessionDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	return store, nil
}

func runTUI(ctx context.Context, app *cliApp) error {
	cfg := app.cfg
	// the terminal belongs to tview, so logs go to a file or nowhere
	logs, err := logger.New().WithLevel(cfg.LogLevel).FromPath(cfg.LogFile).Make()
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer logs.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c := client.NewClient(cfg.BackendURL, session.New(""))
	if err := c.Health(ctx); err != nil {
		return fmt.Errorf("backend %s is not reachable: %w", cfg.BackendURL, err)
	}

	ctrl := dashboard.NewFromClient(ctx, c, logs.Logger)
	if err := ui.NewApp(ctx, ctrl).Run(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
