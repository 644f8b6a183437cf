package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"salesdash/internal/api"
	"salesdash/internal/config"
	"salesdash/internal/dashboard"
	"salesdash/internal/engine"
	"salesdash/internal/watch"
)

const shutdownTimeout = 5 * time.Second

func (a *App) newServeCmd() *cobra.Command {
	var (
		addr      string
		data      string
		watchFile bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if data != "" {
				cfg.Dataset.Path = data
			}
			if cmd.Flags().Changed("watch") {
				cfg.Dataset.Watch = watchFile
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return a.serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().StringVarP(&data, "data", "d", "", "dataset file (overrides dataset.path)")
	cmd.Flags().BoolVar(&watchFile, "watch", false, "reload the dataset when the file changes")

	return cmd
}

// serve starts the HTTP server at once and loads the dataset in the
// background; data routes answer 503 until it is ready. A load failure shuts
// the server down and is returned.
func (a *App) serve(ctx context.Context, cfg *config.Config) error {
	logger := a.newLogger(cfg.Logging.Level)

	h := api.NewHandler(nil, api.PageOptions{Title: cfg.Dashboard.Title, Theme: cfg.Dashboard.Theme})
	e, err := api.NewServer(h, logger)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Infof("Server ready on %s (data loading in background...)", cfg.Server.Addr)
		if err := e.Start(cfg.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		t0 := time.Now()
		session, err := openSession(cfg)
		if err != nil {
			return err
		}
		h.SetSession(session)
		logger.Infof("Dataset ready in %v. API is fully ready.", time.Since(t0))

		if !cfg.Dataset.Watch {
			return nil
		}
		w := &watch.Watcher{
			Path: cfg.Dataset.Path,
			Load: func(path string) (*engine.ColumnStore, error) {
				return engine.Load(path, cfg.LoadOptions())
			},
			Replace: func(store *engine.ColumnStore) error {
				_, err := session.Replace(store)
				return err
			},
		}
		return w.Run(ctx)
	})

	if err := g.Wait(); err != nil {
		log.Errorf("%v", err)
		return err
	}
	return nil
}

// openSession loads the dataset and starts a session with everything selected.
func openSession(cfg *config.Config) (*dashboard.Session, error) {
	store, err := engine.Load(cfg.Dataset.Path, cfg.LoadOptions())
	if err != nil {
		return nil, fmt.Errorf("loading dataset: %w", err)
	}
	session, err := dashboard.NewSession(store, dashboard.Options{HourOrder: cfg.HourOrder()})
	if err != nil {
		return nil, fmt.Errorf("loading dataset %s: %w", cfg.Dataset.Path, err)
	}
	return session, nil
}
