// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-agent/internal/chat"
	"github.com/pdiddy/research-agent/internal/pipeline"
	"github.com/pdiddy/research-agent/internal/server"
	"github.com/pdiddy/research-agent/internal/store"
)

const sessionPurgeInterval = time.Hour

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API with chat and background refresh",
	Long: `Serve starts the HTTP API. Users register and log in to obtain a session
cookie; authenticated routes fetch papers, analyze keywords, generate
proposals, chat, record feedback, and export the latest proposal.

When refresh is enabled, a background loop re-fetches papers for the
current settings every interval so chat can answer from the latest batch.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8000)")
	serveCmd.Flags().Bool("no-refresh", false, "disable the background refresh loop")
	serveCmd.Flags().Duration("refresh-interval", 0, "background refresh interval (default 10s)")

	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("refresh.interval", serveCmd.Flags().Lookup("refresh-interval"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if noRefresh, _ := cmd.Flags().GetBool("no-refresh"); noRefresh {
		cfg.Refresh.Enabled = false
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	orch, err := newOrchestrator(cfg, true, pipeline.WithActionRecorder(st))
	if err != nil {
		return err
	}
	cfgStore := settingsStore(cfg)

	var (
		refresher *pipeline.Refresher
		latest    chat.LatestBatch
	)
	if cfg.Refresh.Enabled {
		refresher = pipeline.NewRefresher(orch, cfgStore, logger,
			pipeline.WithInterval(cfg.Refresh.Interval),
			pipeline.WithPaperCache(st))
		latest = refresher
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go purgeSessions(ctx, st)

	srv := server.New(cfg.Server, server.Deps{
		Store:        st,
		Settings:     cfgStore,
		Orchestrator: orch,
		Chat:         chat.NewRouter(orch, cfgStore, latest, st, logger, chat.WithPaperCache(st)),
		Refresher:    refresher,
		Log:          logger,
	})
	return srv.Run(ctx)
}

// purgeSessions deletes expired sessions hourly until ctx is done.
func purgeSessions(ctx context.Context, st *store.Store) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := st.PurgeExpiredSessions(ctx)
			if err != nil {
				logger.Warn("purging sessions", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("purged expired sessions", "count", n)
			}
		}
	}
}
