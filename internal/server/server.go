package server

import (
	"context"
	"log/slog"

	"github.com/alfredjeanlab/records/internal/events"
	"github.com/alfredjeanlab/records/internal/export"
	"github.com/alfredjeanlab/records/internal/store"
)

// RecordsServer holds the dependencies shared by the HTTP and gRPC surfaces.
type RecordsServer struct {
	store     store.Store
	exporter  *export.Writer
	publisher events.Publisher
	stream    *Stream
	logger    *slog.Logger
}

// Option configures a RecordsServer.
type Option func(*RecordsServer)

// WithStream serves events published through stream on
// GET /api/events/stream. stream should also be one of the publishers
// passed to NewRecordsServer.
func WithStream(stream *Stream) Option {
	return func(s *RecordsServer) { s.stream = stream }
}

// NewRecordsServer returns a new RecordsServer backed by the given store,
// export writer, and publisher.
func NewRecordsServer(s store.Store, w *export.Writer, p events.Publisher, logger *slog.Logger, opts ...Option) *RecordsServer {
	if logger == nil {
		logger = slog.Default()
	}
	if p == nil {
		p = &events.LogPublisher{Logger: logger}
	}
	srv := &RecordsServer{
		store:     s,
		exporter:  w,
		publisher: p,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(srv)
	}
	return srv
}

// publish emits an event. It is best-effort; failures are logged but do not
// block the caller.
func (s *RecordsServer) publish(ctx context.Context, topic string, event any) {
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		s.logger.Warn("failed to publish event", "topic", topic, "error", err)
	}
}

// SnapshotNotifier returns an export.WithNotify callback that announces
// every written snapshot on p.
func SnapshotNotifier(p events.Publisher, logger *slog.Logger) func(*export.Snapshot) {
	return func(snap *export.Snapshot) {
		err := p.Publish(context.Background(), events.TopicSnapshotWritten, events.SnapshotWritten{
			ID:       snap.ID,
			Time:     snap.Time,
			Records:  snap.Records,
			CSVPath:  snap.CSVPath,
			JSONPath: snap.JSONPath,
			Warnings: len(snap.Warnings),
		})
		if err != nil {
			logger.Warn("failed to publish event", "topic", events.TopicSnapshotWritten, "snapshot", snap.ID, "error", err)
		}
	}
}
