package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/alfredjeanlab/records/internal/idgen"
	"github.com/alfredjeanlab/records/internal/model"
)

// Format names used in snapshots and warnings.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// FilePrefix starts every snapshot file name.
const FilePrefix = "records_export_"

const fileStampLayout = "20060102_150405"

// FileName returns the snapshot file name for format at time t, in UTC
// seconds.
func FileName(t time.Time, format string) string {
	return FilePrefix + t.UTC().Format(fileStampLayout) + "." + format
}

// Config controls what a Writer produces.
type Config struct {
	Dir   string // output directory, created if missing
	CSV   bool
	JSON  bool
	Async bool // Trigger returns immediately and writes in the background
}

// Snapshot describes one export run. A path is empty when its format is
// disabled or failed to write.
type Snapshot struct {
	ID       string     `json:"id"`
	Time     time.Time  `json:"time"`
	Records  int        `json:"records"`
	CSVPath  string     `json:"csv_path,omitempty"`
	JSONPath string     `json:"json_path,omitempty"`
	Warnings []*Warning `json:"warnings,omitempty"`
}

// Written reports whether at least one local file was produced.
func (s *Snapshot) Written() bool {
	return s.CSVPath != "" || s.JSONPath != ""
}

// Warning is a non-fatal export failure. It never fails the read that
// triggered the snapshot.
type Warning struct {
	Format string
	Path   string
	Err    error
}

func (w *Warning) Error() string {
	return fmt.Sprintf("export %s to %s: %v", w.Format, w.Path, w.Err)
}

func (w *Warning) Unwrap() error { return w.Err }

// MarshalJSON encodes the warning with its error as a message string.
func (w *Warning) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Format string `json:"format"`
		Path   string `json:"path"`
		Error  string `json:"error"`
	}{w.Format, w.Path, w.Err.Error()})
}

// Writer produces snapshot files. It is safe for concurrent use.
type Writer struct {
	cfg          Config
	destinations []Destination
	notify       func(*Snapshot)
	logger       *slog.Logger
	now          func() time.Time

	wg sync.WaitGroup
}

// Option configures a Writer.
type Option func(*Writer)

// WithDestinations mirrors every written file to dests.
func WithDestinations(dests ...Destination) Option {
	return func(w *Writer) { w.destinations = append(w.destinations, dests...) }
}

// WithNotify registers fn to run after every snapshot that wrote a file.
func WithNotify(fn func(*Snapshot)) Option {
	return func(w *Writer) { w.notify = fn }
}

// WithClock overrides the clock used to name snapshots.
func WithClock(now func() time.Time) Option {
	return func(w *Writer) { w.now = now }
}

// NewWriter creates a Writer for cfg.
func NewWriter(cfg Config, logger *slog.Logger, opts ...Option) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Writer{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Enabled reports whether any format is switched on.
func (w *Writer) Enabled() bool {
	return w.cfg.CSV || w.cfg.JSON
}

// Trigger snapshots records the way the configuration asks: synchronously,
// returning the result, or in the background, returning nil.
func (w *Writer) Trigger(ctx context.Context, records []*model.Record) *Snapshot {
	if !w.cfg.Async {
		return w.Snapshot(ctx, records)
	}
	if !w.Enabled() {
		return nil
	}
	cp := make([]*model.Record, len(records))
	copy(cp, records)
	bg := context.WithoutCancel(ctx)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.Snapshot(bg, cp)
	}()
	return nil
}

// Wait blocks until background snapshots started by Trigger finish.
func (w *Writer) Wait() {
	w.wg.Wait()
}

// Snapshot writes records to a new file per enabled format and mirrors
// each file to the configured destinations. Failures are collected as
// warnings on the returned Snapshot and logged; they are never returned.
func (w *Writer) Snapshot(ctx context.Context, records []*model.Record) *Snapshot {
	now := w.now().UTC()
	id, err := idgen.Snapshot(now)
	if err != nil {
		w.logger.Warn("snapshot id generation failed", "error", err)
		id = idgen.SnapshotPrefix + now.Format("20060102T150405")
	}
	snap := &Snapshot{ID: id, Time: now, Records: len(records)}
	if !w.Enabled() {
		return snap
	}

	if err := os.MkdirAll(w.cfg.Dir, 0o755); err != nil {
		for _, format := range w.formats() {
			w.warn(snap, format, filepath.Join(w.cfg.Dir, FileName(now, format)), err)
		}
		return snap
	}

	for _, format := range w.formats() {
		name := FileName(now, format)
		path := filepath.Join(w.cfg.Dir, name)

		var buf bytes.Buffer
		if err := encode(format, &buf, records); err != nil {
			w.warn(snap, format, path, err)
			continue
		}
		if err := writeFileAtomic(path, buf.Bytes()); err != nil {
			w.warn(snap, format, path, err)
			continue
		}
		switch format {
		case FormatCSV:
			snap.CSVPath = path
		case FormatJSON:
			snap.JSONPath = path
		}

		for _, dest := range w.destinations {
			if err := dest.Write(ctx, name, buf.Bytes()); err != nil {
				w.warn(snap, format, dest.Location(name), err)
			}
		}
	}

	w.logger.Info("export snapshot written",
		"id", snap.ID,
		"records", snap.Records,
		"csv", snap.CSVPath,
		"json", snap.JSONPath,
		"warnings", len(snap.Warnings),
	)

	if snap.Written() && w.notify != nil {
		w.notify(snap)
	}
	return snap
}

func (w *Writer) formats() []string {
	var formats []string
	if w.cfg.CSV {
		formats = append(formats, FormatCSV)
	}
	if w.cfg.JSON {
		formats = append(formats, FormatJSON)
	}
	return formats
}

func (w *Writer) warn(snap *Snapshot, format, path string, err error) {
	warning := &Warning{Format: format, Path: path, Err: err}
	snap.Warnings = append(snap.Warnings, warning)
	w.logger.Warn("export snapshot failed", "snapshot", snap.ID, "format", format, "path", path, "error", err)
}

func encode(format string, out io.Writer, records []*model.Record) error {
	switch format {
	case FormatCSV:
		return WriteCSV(out, records)
	case FormatJSON:
		return WriteJSON(out, records)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

// writeFileAtomic writes data to a temp file beside path and renames it into
// place, so readers never observe a partial file.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
