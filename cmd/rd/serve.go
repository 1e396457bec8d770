package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alfredjeanlab/records/internal/config"
	"github.com/alfredjeanlab/records/internal/events"
	"github.com/alfredjeanlab/records/internal/export"
	"github.com/alfredjeanlab/records/internal/logging"
	"github.com/alfredjeanlab/records/internal/server"
	"github.com/alfredjeanlab/records/internal/store"
	"github.com/alfredjeanlab/records/internal/store/postgres"
	"github.com/alfredjeanlab/records/internal/store/sqlite"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Start the records HTTP server",
	GroupID: "system",
	// Override PersistentPreRunE so we don't create an HTTP client.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	PersistentPostRun: func(cmd *cobra.Command, args []string) {},
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}

		logger, logCloser, err := logging.New(cfg.Log, os.Stderr)
		if err != nil {
			return err
		}
		defer logCloser.Close()
		slog.SetDefault(logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		svc, err := newService(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer svc.close()

		httpLis, err := net.Listen("tcp", cfg.HTTPAddr)
		if err != nil {
			return fmt.Errorf("listen %s: %w", cfg.HTTPAddr, err)
		}
		var grpcLis net.Listener
		if cfg.GRPCAddr != "" {
			grpcLis, err = net.Listen("tcp", cfg.GRPCAddr)
			if err != nil {
				httpLis.Close()
				return fmt.Errorf("listen %s: %w", cfg.GRPCAddr, err)
			}
		}

		return svc.run(ctx, httpLis, grpcLis)
	},
}

func init() {
	serveCmd.Flags().String("config", "", "path to a TOML config file (default "+config.DefaultPath+" if present)")
}

// service is the set of long-lived components behind "rd serve".
type service struct {
	store     store.Store
	publisher events.Publisher
	stream    *server.Stream
	writer    *export.Writer
	scheduler *export.Scheduler
	records   *server.RecordsServer
	logger    *slog.Logger
}

// newService opens the store and event bus and assembles the server.
// Nothing listens until run is called.
func newService(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*service, error) {
	st, err := openStore(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	logger.Info("store opened", "database_url", logging.RedactURL(cfg.DatabaseURL))

	var bus events.Publisher
	if cfg.NATSURL != "" {
		pub, err := events.NewNATSPublisher(cfg.NATSURL)
		if err != nil {
			st.Close()
			return nil, err
		}
		bus = pub
		logger.Info("events enabled", "nats_url", logging.RedactURL(cfg.NATSURL))
	} else {
		bus = &events.LogPublisher{Logger: logger}
		logger.Info("events logged only (RECORDS_NATS_URL not set)")
	}

	stream := server.NewStream()
	publisher := events.Fanout{bus, stream}

	writer := export.NewWriter(export.Config{
		Dir:   cfg.Export.Dir,
		CSV:   cfg.Export.CSV,
		JSON:  cfg.Export.JSON,
		Async: cfg.Export.Async,
	}, logger,
		export.WithDestinations(exportDestinations(ctx, cfg.Export, logger)...),
		export.WithNotify(server.SnapshotNotifier(publisher, logger)),
	)

	svc := &service{
		store:     st,
		publisher: publisher,
		stream:    stream,
		writer:    writer,
		records:   server.NewRecordsServer(st, writer, publisher, logger, server.WithStream(stream)),
		logger:    logger,
	}
	if cfg.Export.Interval > 0 {
		svc.scheduler = export.NewScheduler(st, writer, cfg.Export.Interval, logger)
	}
	return svc, nil
}

// openStore picks the backend named by the database URL.
func openStore(databaseURL string) (store.Store, error) {
	backend, dsn, err := store.ParseURL(databaseURL)
	if err != nil {
		return nil, err
	}
	switch backend {
	case store.BackendPostgres:
		return postgres.New(dsn)
	default:
		return sqlite.Open(dsn)
	}
}

// exportDestinations builds the remote copies configured for snapshots. A
// destination that cannot be set up is logged and skipped.
func exportDestinations(ctx context.Context, cfg config.ExportConfig, logger *slog.Logger) []export.Destination {
	var dests []export.Destination

	if cfg.S3.Bucket != "" {
		s3Dest, err := export.NewS3Destination(ctx, cfg.S3.Bucket, cfg.S3.Prefix, cfg.S3.Region, cfg.S3.Endpoint)
		if err != nil {
			logger.Error("failed to create S3 export destination", "error", err)
		} else {
			dests = append(dests, s3Dest)
			logger.Info("S3 export destination enabled", "bucket", cfg.S3.Bucket, "prefix", cfg.S3.Prefix)
		}
	}

	if cfg.Git.Repo != "" {
		dests = append(dests, export.NewGitDestination(cfg.Git.Repo, cfg.Git.Dir, cfg.Git.Branch))
		logger.Info("git export destination enabled", "repo", cfg.Git.Repo, "dir", cfg.Git.Dir)
	}

	return dests
}

// run serves HTTP on httpLis, and gRPC health on grpcLis when it is not
// nil, until ctx is done. It then shuts both down gracefully.
func (s *service) run(ctx context.Context, httpLis, grpcLis net.Listener) error {
	errCh := make(chan error, 2)

	httpServer := &http.Server{
		Handler:           s.records.NewHTTPHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	// Open event streams never finish on their own.
	httpServer.RegisterOnShutdown(func() { _ = s.stream.Close() })
	go func() {
		s.logger.Info("HTTP server listening", "addr", httpLis.Addr().String())
		if err := httpServer.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var (
		grpcServer *grpc.Server
		healthDone chan struct{}
		stopHealth context.CancelFunc
	)
	if grpcLis != nil {
		var hs *health.Server
		grpcServer, hs = server.NewGRPCServer()

		var healthCtx context.Context
		healthCtx, stopHealth = context.WithCancel(context.Background())
		healthDone = make(chan struct{})
		go func() {
			defer close(healthDone)
			server.WatchHealth(healthCtx, hs, s.store, server.HealthCheckInterval, s.logger)
		}()

		go func() {
			s.logger.Info("gRPC server listening", "addr", grpcLis.Addr().String())
			if err := grpcServer.Serve(grpcLis); err != nil {
				errCh <- fmt.Errorf("grpc server: %w", err)
			}
		}()
	}

	if s.scheduler != nil {
		s.scheduler.Start()
		s.logger.Info("export scheduler started")
	}

	s.logger.Info("records server started")

	var runErr error
	select {
	case <-ctx.Done():
		s.logger.Info("shutting down", "reason", context.Cause(ctx))
	case runErr = <-errCh:
		s.logger.Error("server failed, shutting down", "error", runErr)
	}

	// Graceful shutdown.
	if s.scheduler != nil {
		s.scheduler.Stop()
		s.logger.Info("export scheduler stopped")
	}

	if grpcServer != nil {
		stopHealth()
		<-healthDone
		grpcServer.GracefulStop()
		s.logger.Info("gRPC server stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}
	s.logger.Info("HTTP server stopped")

	s.writer.Wait()
	return runErr
}

// close releases the publisher and the store.
func (s *service) close() {
	if err := s.publisher.Close(); err != nil {
		s.logger.Error("error closing publisher", "error", err)
	}
	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing store", "error", err)
	}
	s.logger.Info("shutdown complete")
}
