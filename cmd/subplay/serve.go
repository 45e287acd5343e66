package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/subplay/subplay/internal/analytics"
	"github.com/subplay/subplay/internal/catalog"
	"github.com/subplay/subplay/internal/config"
	"github.com/subplay/subplay/internal/database"
	"github.com/subplay/subplay/internal/geoip"
	"github.com/subplay/subplay/internal/media"
	"github.com/subplay/subplay/internal/player"
	"github.com/subplay/subplay/internal/server"
)

const shutdownTimeout = 10 * time.Second

// listen opens the HTTP listener. Tests replace it.
var listen = net.Listen

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the player page, the video and its subtitle",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context(), cmd.OutOrStdout(), appConfig)
	},
}

func serve(ctx context.Context, out io.Writer, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	osfs := afero.NewOsFs()

	webFS, err := webRoot(osfs, cfg.WebDir)
	if err != nil {
		return err
	}
	m, err := bootstrapMount(webFS, cfg.MountAnchor)
	if err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	lister, source, err := openMedia(startCtx, osfs, cfg)
	if err != nil {
		return err
	}

	var prompter catalog.Prompter
	if cfg.Interactive {
		prompter = catalog.InteractivePrompter()
	}
	sel, err := selectMedia(startCtx, lister, cfg, prompter)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"video": sel.Video, "subtitle": sel.Subtitle}).Info("media selected")

	mediaHandler := media.NewHandler(source, sel.Video, sel.Subtitle)

	srvCfg := server.Config{
		Mount:       m,
		Renderer:    player.NewHTMLRenderer(cfg.Title),
		Media:       mediaHandler,
		WebFS:       webFS,
		BaseURL:     cfg.BaseURL,
		TrustProxy:  cfg.TrustProxy,
		CORSOrigins: cfg.CORSOrigins,
		EnableDocs:  cfg.DocsEnabled,
	}

	var recorder *analytics.Recorder
	if cfg.DatabaseURL != "" {
		dbCtx, cancelDB := context.WithTimeout(ctx, 10*time.Second)
		defer cancelDB()

		db, err := database.Connect(dbCtx, cfg.DatabaseURL)
		if err != nil {
			return errors.Wrap(err, "database connection")
		}
		defer db.Close()

		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			return errors.Wrap(err, "database migration")
		}
		log.Info("database migrations applied")

		geo := geoip.Open(cfg.GeoIPDB)
		defer func() { _ = geo.Close() }()

		store := analytics.NewStore(db.Pool)
		recorder = analytics.NewRecorder(store, geo, cfg.TrustProxy)
		mediaHandler.SetViewRecorder(recorder)
		srvCfg.Views = analytics.NewHandler(store)
		srvCfg.Pinger = db
	} else {
		log.Info("DATABASE_URL not set, view log disabled")
	}

	listener, err := listen("tcp", ":"+cfg.Port)
	if err != nil {
		return errors.Wrapf(err, "listen on port %s", cfg.Port)
	}

	httpServer := &http.Server{
		Handler:           server.New(ctx, srvCfg),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		// No WriteTimeout: a video response lasts as long as playback.
		IdleTimeout: 120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.Serve(listener)
	}()

	_, _ = fmt.Fprintf(out, "Server is running on http://%s:%s\n", localIP(), cfg.Port)

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "serve")
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down...")
	stopServer(httpServer, shutdownTimeout)
	if recorder != nil {
		recorder.Wait()
	}
	log.Info("shutdown complete")
	return nil
}

// stopServer drains in-flight requests for up to timeout and then drops the
// connections still open, which are usually viewers mid-playback.
func stopServer(srv *http.Server, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("graceful shutdown incomplete, closing open connections")
		if err := srv.Close(); err != nil {
			log.WithError(err).Warn("failed to close server")
		}
	}
}
