package gutenberg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/JayHzn/ai-story-generator/internal/domain/corpus"
	"github.com/JayHzn/ai-story-generator/internal/pkg/logger"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
)

const (
	// MetadataFileName is the per-run summary written next to the books.
	MetadataFileName = "metadata.json"

	// Files smaller than this are treated as error pages, not books.
	minBookBytes = 500

	// An existing file above this size is assumed to be a completed download.
	existingFileBytes = 1000

	defaultRetries     = 3
	defaultBackoff     = 2 * time.Second
	defaultConcurrency = 4
)

// Downloader fetches curated Project Gutenberg books over HTTP.
type Downloader struct {
	client      *http.Client
	logger      logger.Logger
	userAgent   string
	baseURL     string
	retries     int
	backoff     time.Duration
	concurrency int
}

// NewDownloader creates a new Downloader
func NewDownloader(userAgent string, timeout time.Duration, logger logger.Logger) (*Downloader, error) {
	if userAgent == "" {
		return nil, fmt.Errorf("user agent must not be empty")
	}
	return &Downloader{
		client:      &http.Client{Timeout: timeout},
		logger:      logger,
		userAgent:   userAgent,
		baseURL:     corpus.GutenbergBaseURL,
		retries:     defaultRetries,
		backoff:     defaultBackoff,
		concurrency: defaultConcurrency,
	}, nil
}

// DownloadCorpus fetches the curated books into opts.OutputDir, honoring the
// genre filter and the max-books cap, and writes a metadata summary next to
// the files. One BookMeta is returned per attempted book.
func (d *Downloader) DownloadCorpus(ctx context.Context, opts corpus.DownloadOptions) ([]corpus.BookMeta, error) {
	if opts.OutputDir == "" {
		return nil, fmt.Errorf("output directory must not be empty")
	}
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	keys := d.selectBooks(opts)
	if len(keys) == 0 {
		return nil, fmt.Errorf("no books match the requested genres")
	}

	d.logger.Info(fmt.Sprintf("Downloading %d books to %s", len(keys), opts.OutputDir))

	bar := progressbar.Default(int64(len(keys)), "downloading")
	results := make([]corpus.BookMeta, len(keys))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)

	for i, key := range keys {
		i, key := i, key
		g.Go(func() error {
			bookID := corpus.CuratedBooks[key]
			meta := corpus.BookMeta{
				BookID: bookID,
				Key:    key,
				Genre:  corpus.GenreOf(key),
			}

			path, err := d.DownloadBook(gctx, bookID, opts.OutputDir)
			if err != nil {
				d.logger.Warn(fmt.Sprintf("Failed to download %s (id=%d): %v", key, bookID, err))
				meta.Error = err.Error()
			} else {
				meta.FilePath = path
				meta.Success = true
				if info, statErr := os.Stat(path); statErr == nil {
					meta.FileSize = info.Size()
				}
			}

			mu.Lock()
			results[i] = meta
			_ = bar.Add(1)
			mu.Unlock()

			if opts.Delay > 0 {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case <-time.After(time.Duration(opts.Delay) * time.Second):
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}

	succeeded := 0
	var totalBytes int64
	for _, meta := range results {
		if meta.Success {
			succeeded++
			totalBytes += meta.FileSize
		}
	}
	d.logger.Info(fmt.Sprintf("Downloaded %d/%d books (%.1f MB)", succeeded, len(keys), float64(totalBytes)/1024/1024))

	if err := d.writeMetadata(opts.OutputDir, results); err != nil {
		return results, err
	}
	return results, nil
}

// DownloadBook fetches one book, retrying transient failures with a linear
// backoff. A pre-existing non-trivial file short-circuits the download.
func (d *Downloader) DownloadBook(ctx context.Context, bookID int, outputDir string) (string, error) {
	outputPath := filepath.Join(outputDir, fmt.Sprintf("pg%d.txt", bookID))

	if info, err := os.Stat(outputPath); err == nil && info.Size() > existingFileBytes {
		return outputPath, nil
	}

	url := corpus.BookURLAt(d.baseURL, bookID)

	var lastErr error
	for attempt := 1; attempt <= d.retries; attempt++ {
		content, err := d.fetch(ctx, url)
		if err == nil {
			if len(content) < minBookBytes {
				lastErr = fmt.Errorf("response too small (%d bytes)", len(content))
			} else {
				if err := os.WriteFile(outputPath, content, 0644); err != nil {
					return "", fmt.Errorf("failed to write %s: %w", outputPath, err)
				}
				return outputPath, nil
			}
		} else {
			var httpErr *statusError
			if errors.As(err, &httpErr) && httpErr.code == http.StatusNotFound {
				return "", err
			}
			lastErr = err
		}

		if attempt < d.retries {
			wait := time.Duration(attempt) * d.backoff
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(wait):
			}
		}
	}
	return "", fmt.Errorf("download failed after %d attempts: %w", d.retries, lastErr)
}

func (d *Downloader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{code: resp.StatusCode, url: url}
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return content, nil
}

func (d *Downloader) selectBooks(opts corpus.DownloadOptions) []string {
	wantGenre := make(map[string]bool, len(opts.Genres))
	for _, genre := range opts.Genres {
		wantGenre[genre] = true
	}

	keys := make([]string, 0, len(corpus.CuratedBooks))
	for _, key := range corpus.SortedBookKeys() {
		if len(wantGenre) > 0 && !wantGenre[corpus.GenreOf(key)] {
			continue
		}
		keys = append(keys, key)
		if opts.MaxBooks > 0 && len(keys) >= opts.MaxBooks {
			break
		}
	}
	return keys
}

func (d *Downloader) writeMetadata(outputDir string, results []corpus.BookMeta) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	metadataPath := filepath.Join(outputDir, MetadataFileName)
	if err := os.WriteFile(metadataPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata file: %w", err)
	}

	d.logger.Info(fmt.Sprintf("Metadata saved to %s", metadataPath))
	return nil
}

// statusError reports a non-200 HTTP response.
type statusError struct {
	code int
	url  string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.code, e.url)
}
