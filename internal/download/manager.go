package download

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/handiism/memefetch/internal/config"
	"github.com/handiism/memefetch/internal/http"
	ioutils "github.com/handiism/memefetch/internal/io"
	"github.com/handiism/memefetch/internal/model"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a download progress update.
//
// Entry names the catalog entry the event is about; it is empty for
// run-level events. Outcome is set on the event that finishes an entry.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
	Entry   string
	Outcome *model.Outcome
}

// Fetcher retrieves the payload at a URL. Errors are per-item failures.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FetcherFunc adapts an ordinary function to Fetcher.
type FetcherFunc func(ctx context.Context, url string) ([]byte, error)

// Fetch calls f(ctx, url).
func (f FetcherFunc) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}

// Option configures a Manager.
type Option func(*Manager)

// WithFetcher replaces the HTTP client built from settings.
func WithFetcher(f Fetcher) Option {
	return func(m *Manager) {
		m.fetcher = f
	}
}

// WithLogger sets the logger used for structured run logs.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// Manager coordinates one or more runs over a catalog.
type Manager struct {
	settings     *config.Settings
	catalog      *model.Catalog
	resolver     *ioutils.Resolver
	fetcher      Fetcher
	imageService *ioutils.ImageService
	logger       *slog.Logger

	totalFiles     int32
	processedFiles int32
	receivedBytes  int64

	onProgress func(ProgressEvent)
	mu         sync.Mutex
}

// NewManager creates a new download Manager.
//
// Unless WithFetcher is given, entries are fetched with an http.Client
// configured from settings (timeout, User-Agent and extra headers).
func NewManager(settings *config.Settings, catalog *model.Catalog, onProgress func(ProgressEvent), opts ...Option) *Manager {
	m := &Manager{
		settings:     settings,
		catalog:      catalog,
		resolver:     ioutils.NewResolver(settings.DownloadsPath),
		imageService: ioutils.NewImageService(),
		logger:       slog.Default(),
		onProgress:   onProgress,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.fetcher == nil {
		m.fetcher = http.NewClient(
			http.WithTimeout(settings.Timeout),
			http.WithHeaders(settings.RequestHeaders()),
			http.WithLogger(m.logger),
		)
	}
	return m
}

// Directory returns the destination directory.
func (m *Manager) Directory() string {
	return m.resolver.BaseDir()
}

// Run materializes every catalog entry and returns one result per entry, in
// catalog order.
//
// The error is non-nil only when the destination directory cannot be
// prepared (*ioutils.SetupError). If ctx is cancelled, entries not yet
// started are recorded as failed with reason "cancelled".
func (m *Manager) Run(ctx context.Context) (*model.Report, error) {
	report := &model.Report{
		RunID:     uuid.NewString(),
		Directory: m.resolver.BaseDir(),
		StartedAt: time.Now(),
	}
	logger := m.logger.With("run_id", report.RunID)

	if err := ioutils.EnsureDir(m.resolver.BaseDir()); err != nil {
		logger.Error("destination directory unusable", "dir", m.resolver.BaseDir(), "error", err)
		m.progress(ProgressEvent{Message: err.Error(), Level: LevelError})
		return nil, err
	}

	if removed, err := ioutils.RemovePartials(m.resolver.BaseDir()); err != nil {
		logger.Warn("could not remove unfinished downloads", "dir", m.resolver.BaseDir(), "error", err)
	} else if len(removed) > 0 {
		logger.Debug("removed unfinished downloads", "files", removed)
	}

	entries := m.catalog.Entries()
	atomic.StoreInt32(&m.totalFiles, int32(len(entries)))
	atomic.StoreInt32(&m.processedFiles, 0)
	atomic.StoreInt64(&m.receivedBytes, 0)

	m.progress(ProgressEvent{
		Message: fmt.Sprintf("Downloading %d files into %s", len(entries), m.resolver.BaseDir()),
		Level:   LevelInfo,
	})
	logger.Debug("run started", "dir", m.resolver.BaseDir(), "entries", len(entries), "workers", m.workers())

	// Each goroutine writes only its own slot, so results keep catalog order.
	results := make([]model.ItemResult, len(entries))

	var g errgroup.Group
	g.SetLimit(m.workers())
	for i, entry := range entries {
		if ctx.Err() != nil {
			results[i] = m.finish(logger, model.ItemResult{
				Entry:   entry,
				Path:    m.resolver.Resolve(entry.Name),
				Outcome: model.Failed("cancelled"),
			})
			continue
		}
		i, entry := i, entry
		g.Go(func() error {
			results[i] = m.finish(logger, m.processEntry(ctx, logger, entry))
			return nil
		})
	}
	_ = g.Wait()

	report.Results = results
	report.FinishedAt = time.Now()
	logger.Debug("run finished", "duration", report.Duration())

	return report, nil
}

// PlannedItem describes what Run would do with an entry.
type PlannedItem struct {
	Entry  model.Entry
	Path   string
	Exists bool
}

// Plan resolves every entry and checks for existing files without creating
// directories or making requests.
func (m *Manager) Plan() []PlannedItem {
	entries := m.catalog.Entries()
	plan := make([]PlannedItem, len(entries))
	for i, entry := range entries {
		plan[i] = PlannedItem{
			Entry:  entry,
			Path:   m.resolver.Resolve(entry.Name),
			Exists: m.resolver.Exists(entry.Name),
		}
	}
	return plan
}

// GetProgress returns current run progress.
func (m *Manager) GetProgress() (processed, total int32, received int64) {
	return atomic.LoadInt32(&m.processedFiles), atomic.LoadInt32(&m.totalFiles), atomic.LoadInt64(&m.receivedBytes)
}

// processEntry takes one entry from Pending to a terminal outcome.
func (m *Manager) processEntry(ctx context.Context, logger *slog.Logger, entry model.Entry) model.ItemResult {
	result := model.ItemResult{
		Entry: entry,
		Path:  m.resolver.Resolve(entry.Name),
	}

	if ctx.Err() != nil {
		result.Outcome = model.Failed("cancelled")
		return result
	}

	if m.resolver.Exists(entry.Name) {
		result.Outcome = model.Skipped()
		return result
	}

	m.progress(ProgressEvent{Message: fmt.Sprintf("Downloading %s", entry.Name), Level: LevelVerbose, Entry: entry.Name})
	logger.Debug("fetching", "entry", entry.Name, "url", entry.URL)

	data, err := m.fetcher.Fetch(ctx, entry.URL)
	if err != nil {
		result.Outcome = model.Failed(failureReason(err))
		return result
	}
	if len(data) == 0 {
		result.Outcome = model.Failed("empty response body")
		return result
	}

	data = m.prepare(ctx, logger, entry.Name, data)

	if err := ioutils.WriteFileAtomic(result.Path, data); err != nil {
		result.Outcome = model.Failed(errors.Wrap(err, "write").Error())
		return result
	}

	atomic.AddInt64(&m.receivedBytes, int64(len(data)))
	result.Outcome = model.Succeeded(int64(len(data)))
	return result
}

// prepare applies the configured image post-processing. Failures keep the
// original payload.
func (m *Manager) prepare(ctx context.Context, logger *slog.Logger, name string, data []byte) []byte {
	if !m.settings.ConvertImages && m.settings.MaxImageSize <= 0 {
		return data
	}

	maxSize := m.settings.MaxImageSize
	if !m.settings.ConvertImages {
		// Resizing alone must not change the stored format.
		info, err := m.imageService.Describe(data)
		if err != nil || info.Format != ioutils.FormatForName(name) {
			return data
		}
	}

	out, changed, err := m.imageService.Normalize(ctx, name, data, maxSize)
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Keeping %s as served: %v", name, err), Level: LevelWarning, Entry: name})
		return data
	}
	if changed {
		logger.Debug("image normalized", "entry", name, "before", len(data), "after", len(out))
	}
	return out
}

// finish records a terminal result and reports it.
func (m *Manager) finish(logger *slog.Logger, result model.ItemResult) model.ItemResult {
	atomic.AddInt32(&m.processedFiles, 1)

	name := result.Entry.Name
	outcome := result.Outcome
	event := ProgressEvent{Entry: name, Outcome: &outcome}

	switch outcome.Kind {
	case model.OutcomeSkipped:
		event.Message = fmt.Sprintf("Skipping existing: %s", name)
		event.Level = LevelVerbose
		logger.Debug("skipped", "entry", name, "path", result.Path)
	case model.OutcomeSucceeded:
		event.Message = fmt.Sprintf("Downloaded: %s (%d KB)", name, outcome.ByteSize/1024)
		event.Level = LevelSuccess
		logger.Debug("downloaded", "entry", name, "bytes", outcome.ByteSize)
	case model.OutcomeFailed:
		event.Message = fmt.Sprintf("Failed %s: %s", name, outcome.Reason)
		event.Level = LevelError
		logger.Debug("failed", "entry", name, "reason", outcome.Reason)
	}

	m.progress(event)
	return result
}

func (m *Manager) workers() int {
	if m.settings.MaxConcurrentDownloads < 1 {
		return 1
	}
	return m.settings.MaxConcurrentDownloads
}

// progress delivers events one at a time, even with several workers.
func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onProgress(event)
}

// failureReason extracts the human-readable cause from a fetch error.
func failureReason(err error) string {
	if errors.Is(err, context.Canceled) {
		return "cancelled"
	}
	var fe *http.FetchError
	if errors.As(err, &fe) {
		return fe.Reason
	}
	return err.Error()
}
