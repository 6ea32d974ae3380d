package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"scribe/app/config"
	"scribe/app/repositories"
	"scribe/app/routes"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// gcDiscardRatio is the share of a value log file that must be stale before
// badger rewrites it.
const gcDiscardRatio = 0.5

// RunAppServer serves the content API on cfg.Server.Addr until ctx is done,
// then drains in-flight requests for up to cfg.Server.ShutdownTimeout.
func RunAppServer(ctx context.Context, cfg *config.Config) error {
	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Server.Addr, err)
	}
	return serve(ctx, cfg, ln)
}

func serve(ctx context.Context, cfg *config.Config, ln net.Listener) error {
	store, err := openStore(cfg)
	if err != nil {
		ln.Close()
		return err
	}
	defer store.Close()

	router, err := routes.SetupRoutes(store, cfg)
	if err != nil {
		ln.Close()
		return err
	}

	quartz, err := scheduleGC(store, cfg.Database.GCSchedule)
	if err != nil {
		ln.Close()
		return err
	}
	quartz.Start()
	defer quartz.Stop()

	server := &http.Server{Handler: router}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", ln.Addr().String()).Str("prefix", cfg.Server.APIPrefix).Msg("Content API listening")
		errCh <- server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down content API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// scheduleGC registers value log garbage collection on schedule. An empty schedule
// disables it.
func scheduleGC(store *repositories.Store, schedule string) (*cron.Cron, error) {
	quartz := cron.New(
		cron.WithLogger(cron.VerbosePrintfLogger(&log.Logger)),
		cron.WithChain(cron.Recover(cron.PrintfLogger(&log.Logger))),
	)
	if schedule == "" {
		return quartz, nil
	}
	_, err := quartz.AddFunc(schedule, func() {
		if err := store.CollectGarbage(gcDiscardRatio); err != nil {
			log.Error().Err(err).Msg("Value log garbage collection failed")
			return
		}
		log.Debug().Msg("Value log garbage collection finished")
	})
	if err != nil {
		return nil, fmt.Errorf("invalid database.gc_schedule %q: %w", schedule, err)
	}
	return quartz, nil
}
