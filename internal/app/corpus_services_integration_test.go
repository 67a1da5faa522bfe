//go:build integration
// +build integration

package app

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JayHzn/ai-story-generator/internal/domain/corpus"
	"github.com/JayHzn/ai-story-generator/internal/infrastructure/collector"
	"github.com/JayHzn/ai-story-generator/internal/infrastructure/persistence"
	"github.com/JayHzn/ai-story-generator/internal/pkg/config"
	"github.com/JayHzn/ai-story-generator/internal/pkg/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnotationService_Annotate(t *testing.T) {
	services := SetupTestServices(t, config.SqliteDbType)
	ctx := context.Background()

	doc := persistence.CreateTestDocument(t, "gutenberg")
	require.NoError(t, services.DBContext.DocumentRepo.Create(ctx, doc))

	annotation, err := services.AnnotationService.Annotate(ctx, doc.ID)
	require.NoError(t, err)

	assert.Equal(t, doc.ID, annotation.DocumentID)
	assert.Greater(t, annotation.Sentences, 0)
	assert.Greater(t, annotation.Tokens, 0)
	assert.Greater(t, annotation.TypeTokenRatio, 0.0)
	assert.False(t, annotation.AnnotatedAt.IsZero())

	// Stored row matches the returned annotation
	stored, err := services.DBContext.AnnotationRepo.GetByDocumentID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, annotation.Tokens, stored.Tokens)
}

func TestAnnotationService_Annotate_MissingDocument(t *testing.T) {
	services := SetupTestServices(t, config.SqliteDbType)

	_, err := services.AnnotationService.Annotate(context.Background(), "7b6a4b23-2c3f-4f34-9f9a-0b1c2d3e4f5a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestAnnotationService_AnnotateAll(t *testing.T) {
	services := SetupTestServices(t, config.SqliteDbType)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		doc := persistence.CreateTestDocument(t, fmt.Sprintf("source-%d", i))
		require.NoError(t, services.DBContext.DocumentRepo.Create(ctx, doc))
	}

	annotations, err := services.AnnotationService.AnnotateAll(ctx)
	require.NoError(t, err)
	assert.Len(t, annotations, 3)
}

func TestCorpusMetadataService_ListAndGet(t *testing.T) {
	services := SetupTestServices(t, config.SqliteDbType)
	ctx := context.Background()

	doc := persistence.CreateTestDocument(t, "gutenberg")
	require.NoError(t, services.DBContext.DocumentRepo.Create(ctx, doc))

	query := corpus.NewDocumentQuery()
	query.Source = "guten"
	docs, err := services.CorpusMetadataService.List(ctx, query)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, doc.ID, docs[0].ID)

	fetched, err := services.CorpusMetadataService.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.Content, fetched.Content)
}

func TestCorpusMetadataService_DeleteByID_RemovesAnnotation(t *testing.T) {
	services := SetupTestServices(t, config.SqliteDbType)
	ctx := context.Background()

	doc := persistence.CreateTestDocument(t, "gutenberg")
	require.NoError(t, services.DBContext.DocumentRepo.Create(ctx, doc))
	_, err := services.AnnotationService.Annotate(ctx, doc.ID)
	require.NoError(t, err)

	require.NoError(t, services.CorpusMetadataService.DeleteByID(ctx, doc.ID))

	_, err = services.CorpusMetadataService.GetByID(ctx, doc.ID)
	require.Error(t, err)
	_, err = services.DBContext.AnnotationRepo.GetByDocumentID(ctx, doc.ID)
	require.Error(t, err)
}

func TestCollectorService_Collect(t *testing.T) {
	services := SetupTestServices(t, config.SqliteDbType)
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<html><head><title>Nouvelles</title></head><body><p>"+
			strings.Repeat("Une phrase française. ", 10)+"</p></body></html>")
	}))
	defer server.Close()

	fetcher, err := collector.NewFetcher("story-gen-collector/1.0 (test)", 5*time.Second, testutil.SetupTestLogger(t))
	require.NoError(t, err)

	collectorService, err := NewCollectorService(fetcher, services.DBContext.DocumentRepo, []string{server.URL}, testutil.SetupTestLogger(t))
	require.NoError(t, err)

	doc, err := collectorService.Collect(ctx, "test-site", server.URL)
	require.NoError(t, err)

	assert.Equal(t, "test-site", doc.Source)
	assert.Equal(t, "Nouvelles", doc.Title)
	assert.Contains(t, doc.Content, "Une phrase française.")

	stored, err := services.DBContext.DocumentRepo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.Content, stored.Content)
}

func TestCollectorService_CollectAll_SkipsDeadSources(t *testing.T) {
	services := SetupTestServices(t, config.SqliteDbType)
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, "Un texte collecté pour le corpus.\n")
	}))
	defer server.Close()

	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer dead.Close()

	fetcher, err := collector.NewFetcher("story-gen-collector/1.0 (test)", 5*time.Second, testutil.SetupTestLogger(t))
	require.NoError(t, err)

	collectorService, err := NewCollectorService(fetcher, services.DBContext.DocumentRepo, []string{server.URL, dead.URL}, testutil.SetupTestLogger(t))
	require.NoError(t, err)

	docs, err := collectorService.CollectAll(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}
