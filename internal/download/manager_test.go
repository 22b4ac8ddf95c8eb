package download

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/memefetch/internal/config"
	ioutils "github.com/handiism/memefetch/internal/io"
	memelog "github.com/handiism/memefetch/internal/log"
	"github.com/handiism/memefetch/internal/model"
	"github.com/handiism/memefetch/internal/report"
)

// assetServer serves fixed payloads by path and counts requests.
type assetServer struct {
	*httptest.Server
	hits      atomic.Int32
	userAgent atomic.Value
}

func newAssetServer(t *testing.T) *assetServer {
	t.Helper()
	s := &assetServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/ok/", func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		s.userAgent.Store(r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte("image bytes for " + r.URL.Path))
	})
	mux.HandleFunc("/missing/", func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		http.NotFound(w, r)
	})
	mux.HandleFunc("/empty/", func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/slow/", func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	})
	mux.HandleFunc("/png/", func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		img := image.NewRGBA(image.Rect(0, 0, 64, 32))
		_ = png.Encode(w, img)
	})
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func testSettings(t *testing.T) *config.Settings {
	t.Helper()
	s := config.DefaultSettings()
	s.DownloadsPath = filepath.Join(t.TempDir(), "public", "memes")
	s.Timeout = 2 * time.Second
	return s
}

func testCatalog(t *testing.T, entries ...model.Entry) *model.Catalog {
	t.Helper()
	c, err := model.NewCatalog(entries)
	require.NoError(t, err)
	return c
}

func newTestManager(settings *config.Settings, c *model.Catalog, onProgress func(ProgressEvent), opts ...Option) *Manager {
	opts = append([]Option{WithLogger(memelog.Discard())}, opts...)
	return NewManager(settings, c, onProgress, opts...)
}

func outcomes(r *model.Report) []model.OutcomeKind {
	kinds := make([]model.OutcomeKind, len(r.Results))
	for i, res := range r.Results {
		kinds[i] = res.Outcome.Kind
	}
	return kinds
}

func TestManager_ScenarioA_Downloads(t *testing.T) {
	srv := newAssetServer(t)
	settings := testSettings(t)
	c := testCatalog(t, model.Entry{Name: "a", URL: srv.URL + "/ok/a"})

	result, err := newTestManager(settings, c, nil).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Results, 1)
	assert.Equal(t, model.OutcomeSucceeded, result.Results[0].Outcome.Kind)
	assert.Greater(t, result.Results[0].Outcome.ByteSize, int64(0))

	data, err := os.ReadFile(filepath.Join(settings.DownloadsPath, "a"))
	require.NoError(t, err)
	assert.Equal(t, "image bytes for /ok/a", string(data))

	summary := report.Summarize(result.Results)
	assert.Equal(t, 1, summary.SucceededCount)
	assert.Empty(t, summary.FailedNames)
	assert.Equal(t, config.DefaultUserAgent, srv.userAgent.Load())
}

func TestManager_ScenarioB_SkipsExisting(t *testing.T) {
	srv := newAssetServer(t)
	settings := testSettings(t)
	require.NoError(t, os.MkdirAll(settings.DownloadsPath, 0755))
	path := filepath.Join(settings.DownloadsPath, "a")
	require.NoError(t, os.WriteFile(path, []byte("local copy"), 0644))
	c := testCatalog(t, model.Entry{Name: "a", URL: srv.URL + "/ok/a"})

	result, err := newTestManager(settings, c, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []model.OutcomeKind{model.OutcomeSkipped}, outcomes(result))
	assert.Zero(t, srv.hits.Load())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "local copy", string(data))
}

func TestManager_RemovesUnfinishedWrites(t *testing.T) {
	srv := newAssetServer(t)
	settings := testSettings(t)
	require.NoError(t, os.MkdirAll(settings.DownloadsPath, 0755))
	stale := filepath.Join(settings.DownloadsPath, ".a.jpg.3141592.part")
	require.NoError(t, os.WriteFile(stale, []byte("half an ima"), 0644))
	c := testCatalog(t, model.Entry{Name: "a.jpg", URL: srv.URL + "/ok/a.jpg"})

	result, err := newTestManager(settings, c, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []model.OutcomeKind{model.OutcomeSucceeded}, outcomes(result))
	assert.NoFileExists(t, stale)
	entries, err := os.ReadDir(settings.DownloadsPath)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.jpg", entries[0].Name())
}

func TestManager_ScenarioC_NotFound(t *testing.T) {
	srv := newAssetServer(t)
	settings := testSettings(t)
	c := testCatalog(t, model.Entry{Name: "a", URL: srv.URL + "/missing/a"})

	result, err := newTestManager(settings, c, nil).Run(context.Background())
	require.NoError(t, err)

	outcome := result.Results[0].Outcome
	assert.Equal(t, model.OutcomeFailed, outcome.Kind)
	assert.Contains(t, outcome.Reason, "404")
	assert.NoFileExists(t, filepath.Join(settings.DownloadsPath, "a"))
	assert.Equal(t, []string{"a"}, report.Summarize(result.Results).FailedNames)
}

func TestManager_ScenarioD_Unreachable(t *testing.T) {
	closed := httptest.NewServer(http.NotFoundHandler())
	addr := closed.URL
	closed.Close()

	settings := testSettings(t)
	c := testCatalog(t, model.Entry{Name: "a", URL: addr + "/a"})

	result, err := newTestManager(settings, c, nil).Run(context.Background())
	require.NoError(t, err)

	outcome := result.Results[0].Outcome
	assert.Equal(t, model.OutcomeFailed, outcome.Kind)
	assert.NotEmpty(t, outcome.Reason)
	assert.Equal(t, []string{"a"}, report.Summarize(result.Results).FailedNames)
	assert.NoFileExists(t, filepath.Join(settings.DownloadsPath, "a"))
}

func TestManager_Timeout(t *testing.T) {
	srv := newAssetServer(t)
	settings := testSettings(t)
	settings.Timeout = 100 * time.Millisecond
	c := testCatalog(t, model.Entry{Name: "a", URL: srv.URL + "/slow/a"})

	start := time.Now()
	result, err := newTestManager(settings, c, nil).Run(context.Background())
	require.NoError(t, err)

	outcome := result.Results[0].Outcome
	assert.Equal(t, model.OutcomeFailed, outcome.Kind)
	assert.Contains(t, outcome.Reason, "timeout")
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestManager_ScenarioE_FailureIsolation(t *testing.T) {
	srv := newAssetServer(t)
	settings := testSettings(t)
	c := testCatalog(t,
		model.Entry{Name: "first.jpg", URL: srv.URL + "/ok/first"},
		model.Entry{Name: "second.jpg", URL: srv.URL + "/missing/second"},
		model.Entry{Name: "third.jpg", URL: srv.URL + "/ok/third"},
	)

	result, err := newTestManager(settings, c, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []model.OutcomeKind{model.OutcomeSucceeded, model.OutcomeFailed, model.OutcomeSucceeded}, outcomes(result))
	summary := report.Summarize(result.Results)
	assert.Equal(t, 2, summary.SucceededCount)
	assert.Equal(t, []string{"second.jpg"}, summary.FailedNames)
	assert.FileExists(t, filepath.Join(settings.DownloadsPath, "first.jpg"))
	assert.NoFileExists(t, filepath.Join(settings.DownloadsPath, "second.jpg"))
	assert.FileExists(t, filepath.Join(settings.DownloadsPath, "third.jpg"))
}

func TestManager_Idempotent(t *testing.T) {
	srv := newAssetServer(t)
	settings := testSettings(t)
	c := testCatalog(t,
		model.Entry{Name: "a.jpg", URL: srv.URL + "/ok/a"},
		model.Entry{Name: "b.jpg", URL: srv.URL + "/missing/b"},
		model.Entry{Name: "c.jpg", URL: srv.URL + "/ok/c"},
	)

	first, err := newTestManager(settings, c, nil).Run(context.Background())
	require.NoError(t, err)
	before := readDir(t, settings.DownloadsPath)
	hitsAfterFirst := srv.hits.Load()

	second, err := newTestManager(settings, c, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []model.OutcomeKind{model.OutcomeSucceeded, model.OutcomeFailed, model.OutcomeSucceeded}, outcomes(first))
	assert.Equal(t, []model.OutcomeKind{model.OutcomeSkipped, model.OutcomeFailed, model.OutcomeSkipped}, outcomes(second))
	// Only the failed entry is requested again.
	assert.Equal(t, hitsAfterFirst+1, srv.hits.Load())
	assert.Equal(t, before, readDir(t, settings.DownloadsPath))
}

func TestManager_Completeness(t *testing.T) {
	srv := newAssetServer(t)
	settings := testSettings(t)
	require.NoError(t, os.MkdirAll(settings.DownloadsPath, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(settings.DownloadsPath, "kept"), []byte("x"), 0644))

	c := testCatalog(t,
		model.Entry{Name: "kept", URL: srv.URL + "/ok/kept"},
		model.Entry{Name: "new", URL: srv.URL + "/ok/new"},
		model.Entry{Name: "gone", URL: srv.URL + "/missing/gone"},
		model.Entry{Name: "blank", URL: srv.URL + "/empty/blank"},
	)

	result, err := newTestManager(settings, c, nil).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Results, c.Len())
	summary := report.Summarize(result.Results)
	assert.Equal(t, c.Len(), summary.DownloadedCount+summary.SkippedCount+summary.FailedCount())
	assert.Equal(t, c.Len(), summary.SucceededCount+summary.FailedCount())
	for i, name := range c.Names() {
		assert.Equal(t, name, result.Results[i].Entry.Name)
	}
}

func TestManager_EmptyBodyFails(t *testing.T) {
	srv := newAssetServer(t)
	settings := testSettings(t)
	c := testCatalog(t, model.Entry{Name: "blank.jpg", URL: srv.URL + "/empty/blank"})

	result, err := newTestManager(settings, c, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, model.Failed("empty response body"), result.Results[0].Outcome)
	assert.NoFileExists(t, filepath.Join(settings.DownloadsPath, "blank.jpg"))
}

func TestManager_WriteFailureLeavesNoFile(t *testing.T) {
	settings := testSettings(t)
	c := testCatalog(t, model.Entry{Name: "b.jpg", URL: "http://assets.test/b"})
	target := filepath.Join(settings.DownloadsPath, "b.jpg")

	m := newTestManager(settings, c, nil, WithFetcher(FetcherFunc(func(ctx context.Context, url string) ([]byte, error) {
		// A non-empty directory appearing after the existence check makes
		// the final rename fail.
		assert.NoError(t, os.MkdirAll(filepath.Join(target, "inner"), 0755))
		return []byte("payload"), nil
	})))

	result, err := m.Run(context.Background())
	require.NoError(t, err)

	outcome := result.Results[0].Outcome
	assert.Equal(t, model.OutcomeFailed, outcome.Kind)
	assert.Contains(t, outcome.Reason, "write")
	assert.Equal(t, map[string]string{"b.jpg": "<dir>"}, readDir(t, settings.DownloadsPath))
}

func TestManager_SetupError(t *testing.T) {
	settings := testSettings(t)
	blocker := filepath.Dir(settings.DownloadsPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(blocker), 0755))
	require.NoError(t, os.WriteFile(blocker, []byte("file"), 0644))

	var fetched atomic.Int32
	m := newTestManager(settings, testCatalog(t, model.Entry{Name: "a", URL: "http://example.invalid/a"}), nil,
		WithFetcher(FetcherFunc(func(ctx context.Context, url string) ([]byte, error) {
			fetched.Add(1)
			return []byte("x"), nil
		})))

	result, err := m.Run(context.Background())

	assert.Nil(t, result)
	var setupErr *ioutils.SetupError
	assert.True(t, errors.As(err, &setupErr))
	assert.Zero(t, fetched.Load())
}

func TestManager_ConcurrentPreservesOrder(t *testing.T) {
	settings := testSettings(t)
	settings.MaxConcurrentDownloads = 4

	entries := make([]model.Entry, 12)
	for i := range entries {
		entries[i] = model.Entry{Name: string(rune('a'+i)) + ".jpg", URL: "http://assets.test/" + string(rune('a'+i))}
	}
	c := testCatalog(t, entries...)

	var inFlight, peak atomic.Int32
	fetcher := FetcherFunc(func(ctx context.Context, url string) ([]byte, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		// Later entries finish first.
		idx := int(url[len(url)-1] - 'a')
		time.Sleep(time.Duration(len(entries)-idx) * 2 * time.Millisecond)
		if url == "http://assets.test/c" {
			return nil, errors.New("boom")
		}
		return []byte(url), nil
	})

	result, err := newTestManager(settings, c, nil, WithFetcher(fetcher)).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Results, len(entries))
	for i, r := range result.Results {
		assert.Equal(t, entries[i].Name, r.Entry.Name)
	}
	assert.Equal(t, []string{"c.jpg"}, report.Summarize(result.Results).FailedNames)
	assert.LessOrEqual(t, peak.Load(), int32(4))
}

func TestManager_Cancelled(t *testing.T) {
	settings := testSettings(t)
	c := testCatalog(t,
		model.Entry{Name: "a", URL: "http://assets.test/a"},
		model.Entry{Name: "b", URL: "http://assets.test/b"},
		model.Entry{Name: "c", URL: "http://assets.test/c"},
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fetcher := FetcherFunc(func(ctx context.Context, url string) ([]byte, error) {
		cancel()
		return []byte("x"), nil
	})

	result, err := newTestManager(settings, c, nil, WithFetcher(fetcher)).Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, []model.OutcomeKind{model.OutcomeSucceeded, model.OutcomeFailed, model.OutcomeFailed}, outcomes(result))
	assert.Equal(t, "cancelled", result.Results[1].Outcome.Reason)
	assert.FileExists(t, filepath.Join(settings.DownloadsPath, "a"))
}

func TestManager_ProgressEvents(t *testing.T) {
	srv := newAssetServer(t)
	settings := testSettings(t)
	c := testCatalog(t,
		model.Entry{Name: "a", URL: srv.URL + "/ok/a"},
		model.Entry{Name: "b", URL: srv.URL + "/missing/b"},
	)

	var mu sync.Mutex
	finished := map[string]model.OutcomeKind{}
	m := newTestManager(settings, c, func(e ProgressEvent) {
		if e.Outcome == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		finished[e.Entry] = e.Outcome.Kind
	})

	_, err := m.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, map[string]model.OutcomeKind{"a": model.OutcomeSucceeded, "b": model.OutcomeFailed}, finished)
	processed, total, received := m.GetProgress()
	assert.Equal(t, int32(2), processed)
	assert.Equal(t, int32(2), total)
	assert.Equal(t, int64(len("image bytes for /ok/a")), received)
}

func TestManager_Plan(t *testing.T) {
	settings := testSettings(t)
	require.NoError(t, os.MkdirAll(settings.DownloadsPath, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(settings.DownloadsPath, "a"), []byte("x"), 0644))
	c := testCatalog(t,
		model.Entry{Name: "a", URL: "http://assets.test/a"},
		model.Entry{Name: "b", URL: "http://assets.test/b"},
	)

	plan := newTestManager(settings, c, nil).Plan()

	require.Len(t, plan, 2)
	assert.True(t, plan[0].Exists)
	assert.False(t, plan[1].Exists)
	assert.Equal(t, filepath.Join(settings.DownloadsPath, "b"), plan[1].Path)
}

func TestManager_ConvertImages(t *testing.T) {
	srv := newAssetServer(t)
	settings := testSettings(t)
	settings.ConvertImages = true
	c := testCatalog(t, model.Entry{Name: "pepe_crying.jpg", URL: srv.URL + "/png/pepe"})

	result, err := newTestManager(settings, c, nil).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, model.OutcomeSucceeded, result.Results[0].Outcome.Kind)

	data, err := os.ReadFile(filepath.Join(settings.DownloadsPath, "pepe_crying.jpg"))
	require.NoError(t, err)
	info, err := ioutils.NewImageService().Describe(data)
	require.NoError(t, err)
	assert.Equal(t, ioutils.FormatJPEG, info.Format)
	assert.Equal(t, int64(len(data)), result.Results[0].Outcome.ByteSize)
}

func TestManager_ResizeKeepsFormat(t *testing.T) {
	srv := newAssetServer(t)
	settings := testSettings(t)
	settings.MaxImageSize = 16
	c := testCatalog(t,
		model.Entry{Name: "small.png", URL: srv.URL + "/png/small"},
		model.Entry{Name: "mismatch.jpg", URL: srv.URL + "/png/mismatch"},
	)

	_, err := newTestManager(settings, c, nil).Run(context.Background())
	require.NoError(t, err)

	svc := ioutils.NewImageService()
	resized, err := os.ReadFile(filepath.Join(settings.DownloadsPath, "small.png"))
	require.NoError(t, err)
	info, err := svc.Describe(resized)
	require.NoError(t, err)
	assert.Equal(t, ioutils.ImageInfo{Format: ioutils.FormatPNG, Width: 16, Height: 8}, info)

	untouched, err := os.ReadFile(filepath.Join(settings.DownloadsPath, "mismatch.jpg"))
	require.NoError(t, err)
	info, err = svc.Describe(untouched)
	require.NoError(t, err)
	assert.Equal(t, ioutils.FormatPNG, info.Format)
	assert.Equal(t, 64, info.Width)
}

func TestManager_UndecodableImageKeptAsServed(t *testing.T) {
	srv := newAssetServer(t)
	settings := testSettings(t)
	settings.ConvertImages = true
	c := testCatalog(t, model.Entry{Name: "a.jpg", URL: srv.URL + "/ok/a"})

	var warnings []string
	m := newTestManager(settings, c, func(e ProgressEvent) {
		if e.Level == LevelWarning {
			warnings = append(warnings, e.Message)
		}
	})

	result, err := m.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, model.OutcomeSucceeded, result.Results[0].Outcome.Kind)
	assert.Len(t, warnings, 1)
	data, err := os.ReadFile(filepath.Join(settings.DownloadsPath, "a.jpg"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("image bytes")))
}

func readDir(t *testing.T, dir string) map[string]string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			out[e.Name()] = "<dir>"
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		require.NoError(t, err)
		out[e.Name()] = string(data)
	}
	return out
}
