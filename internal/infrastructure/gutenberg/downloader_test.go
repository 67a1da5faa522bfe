//go:build unit
// +build unit

package gutenberg

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/JayHzn/ai-story-generator/internal/domain/corpus"
	"github.com/JayHzn/ai-story-generator/internal/pkg/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserAgent = "story-gen-corpus-builder/1.0 (test)"

func setupTestDownloader(t *testing.T, baseURL string) *Downloader {
	t.Helper()

	d, err := NewDownloader(testUserAgent, 0, testutil.SetupTestLogger(t))
	require.NoError(t, err)
	d.baseURL = baseURL
	d.backoff = 0
	return d
}

func bookBody() string {
	return strings.Repeat("Il était une fois un roman français. ", 40)
}

func TestNewDownloader_EmptyUserAgent(t *testing.T) {
	_, err := NewDownloader("", 0, testutil.SetupTestLogger(t))
	assert.Error(t, err)
}

func TestDownloadBook_WritesFile(t *testing.T) {
	var gotUA atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA.Store(r.Header.Get("User-Agent"))
		fmt.Fprint(w, bookBody())
	}))
	defer server.Close()

	d := setupTestDownloader(t, server.URL)
	outputDir := t.TempDir()

	path, err := d.DownloadBook(context.Background(), 798, outputDir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(outputDir, "pg798.txt"), path)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, bookBody(), string(content))
	assert.Equal(t, testUserAgent, gotUA.Load())
}

func TestDownloadBook_SkipsExistingFile(t *testing.T) {
	requests := int32(0)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		fmt.Fprint(w, bookBody())
	}))
	defer server.Close()

	d := setupTestDownloader(t, server.URL)
	outputDir := t.TempDir()
	existing := filepath.Join(outputDir, "pg798.txt")
	require.NoError(t, os.WriteFile(existing, []byte(bookBody()), 0644))

	path, err := d.DownloadBook(context.Background(), 798, outputDir)
	require.NoError(t, err)

	assert.Equal(t, existing, path)
	assert.Equal(t, int32(0), atomic.LoadInt32(&requests))
}

func TestDownloadBook_NotFoundDoesNotRetry(t *testing.T) {
	requests := int32(0)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	d := setupTestDownloader(t, server.URL)

	_, err := d.DownloadBook(context.Background(), 798, t.TempDir())
	require.Error(t, err)

	assert.Contains(t, err.Error(), "404")
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests))
}

func TestDownloadBook_RetriesOnServerError(t *testing.T) {
	requests := int32(0)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&requests, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, bookBody())
	}))
	defer server.Close()

	d := setupTestDownloader(t, server.URL)
	d.retries = 3

	path, err := d.DownloadBook(context.Background(), 798, t.TempDir())
	require.NoError(t, err)

	assert.FileExists(t, path)
	assert.Equal(t, int32(3), atomic.LoadInt32(&requests))
}

func TestDownloadBook_RejectsTinyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "oops")
	}))
	defer server.Close()

	d := setupTestDownloader(t, server.URL)
	d.retries = 1

	_, err := d.DownloadBook(context.Background(), 798, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too small")
}

func TestDownloadCorpus_WritesMetadata(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, bookBody())
	}))
	defer server.Close()

	d := setupTestDownloader(t, server.URL)
	outputDir := t.TempDir()

	results, err := d.DownloadCorpus(context.Background(), corpus.DownloadOptions{
		OutputDir: outputDir,
		MaxBooks:  3,
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	for _, meta := range results {
		assert.True(t, meta.Success)
		assert.FileExists(t, meta.FilePath)
		assert.Greater(t, meta.FileSize, int64(0))
		assert.NotEmpty(t, meta.Genre)
	}

	data, err := os.ReadFile(filepath.Join(outputDir, MetadataFileName))
	require.NoError(t, err)

	var stored []corpus.BookMeta
	require.NoError(t, json.Unmarshal(data, &stored))
	assert.Equal(t, results, stored)
}

func TestDownloadCorpus_GenreFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, bookBody())
	}))
	defer server.Close()

	d := setupTestDownloader(t, server.URL)

	results, err := d.DownloadCorpus(context.Background(), corpus.DownloadOptions{
		OutputDir: t.TempDir(),
		Genres:    []string{corpus.GenreThrillerPolicier},
	})
	require.NoError(t, err)
	require.NotEmpty(t, results)

	for _, meta := range results {
		assert.Equal(t, corpus.GenreThrillerPolicier, meta.Genre)
	}
}

func TestDownloadCorpus_UnknownGenre(t *testing.T) {
	d := setupTestDownloader(t, "http://unused.invalid")

	_, err := d.DownloadCorpus(context.Background(), corpus.DownloadOptions{
		OutputDir: t.TempDir(),
		Genres:    []string{"poesie"},
	})
	assert.Error(t, err)
}

func TestDownloadCorpus_EmptyOutputDir(t *testing.T) {
	d := setupTestDownloader(t, "http://unused.invalid")

	_, err := d.DownloadCorpus(context.Background(), corpus.DownloadOptions{})
	assert.Error(t, err)
}
