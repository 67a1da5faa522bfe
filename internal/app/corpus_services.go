package app

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/JayHzn/ai-story-generator/internal/domain/corpus"
	"github.com/JayHzn/ai-story-generator/internal/infrastructure/collector"
	"github.com/JayHzn/ai-story-generator/internal/infrastructure/gutenberg"
	"github.com/JayHzn/ai-story-generator/internal/infrastructure/textproc"
	"github.com/JayHzn/ai-story-generator/internal/pkg/logger"

	"github.com/google/uuid"
)

// collectorService implements the CollectorService interface for fetching web documents
type collectorService struct {
	fetcher      *collector.Fetcher
	documentRepo corpus.DocumentRepository
	sources      []string
	logger       logger.Logger
}

// NewCollectorService creates a new instance of CollectorService
func NewCollectorService(fetcher *collector.Fetcher, documentRepo corpus.DocumentRepository, sources []string, logger logger.Logger) (corpus.CollectorService, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher must not be nil")
	}
	return &collectorService{
		fetcher:      fetcher,
		documentRepo: documentRepo,
		sources:      sources,
		logger:       logger,
	}, nil
}

// Collect fetches a single URL, strips markup, fixes the text and persists
// the result as a Document.
func (s *collectorService) Collect(ctx context.Context, source, rawURL string) (*corpus.Document, error) {
	page, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}

	doc := &corpus.Document{
		ID:          uuid.New().String(),
		Source:      source,
		URL:         rawURL,
		Title:       page.Title,
		CollectedAt: time.Now().UTC(),
		Content:     page.Content,
	}

	if err := s.documentRepo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to persist document: %w", err)
	}

	s.logger.Info(fmt.Sprintf("Collected document %s from %s (%d bytes)", doc.ID, source, len(doc.Content)))
	return doc, nil
}

// CollectAll collects every configured source URL. Individual failures are
// logged and skipped so one dead source does not abort the run.
func (s *collectorService) CollectAll(ctx context.Context) ([]*corpus.Document, error) {
	if len(s.sources) == 0 {
		return nil, fmt.Errorf("no collection sources configured")
	}

	var docs []*corpus.Document
	for _, rawURL := range s.sources {
		doc, err := s.Collect(ctx, sourceName(rawURL), rawURL)
		if err != nil {
			s.logger.Warn(fmt.Sprintf("Skipping source %s: %v", rawURL, err))
			continue
		}
		docs = append(docs, doc)
	}

	s.logger.Info(fmt.Sprintf("Collection run completed: %d of %d sources collected", len(docs), len(s.sources)))
	return docs, nil
}

// sourceName derives a stable source label from a URL, falling back to the
// raw string when it does not parse.
func sourceName(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return rawURL
	}
	return parsed.Host
}

// corpusMetadataService implements the corpus MetadataService interface for
// retrieving and deleting collected documents
type corpusMetadataService struct {
	documentRepo   corpus.DocumentRepository
	annotationRepo corpus.AnnotationRepository
	logger         logger.Logger
}

// NewCorpusMetadataService creates a new instance of corpus MetadataService
func NewCorpusMetadataService(documentRepo corpus.DocumentRepository, annotationRepo corpus.AnnotationRepository, logger logger.Logger) (corpus.MetadataService, error) {
	return &corpusMetadataService{
		documentRepo:   documentRepo,
		annotationRepo: annotationRepo,
		logger:         logger,
	}, nil
}

// List retrieves documents' metadata considering a query filter when set
func (s *corpusMetadataService) List(ctx context.Context, query *corpus.DocumentQuery) ([]*corpus.Document, error) {
	docs, err := s.documentRepo.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	return docs, nil
}

// GetByID retrieves a document by ID
func (s *corpusMetadataService) GetByID(ctx context.Context, documentID string) (*corpus.Document, error) {
	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	return doc, nil
}

// DeleteByID deletes a document and its annotation by ID
func (s *corpusMetadataService) DeleteByID(ctx context.Context, documentID string) error {
	if err := s.annotationRepo.DeleteByDocumentID(ctx, documentID); err != nil {
		return fmt.Errorf("%w", err)
	}

	if err := s.documentRepo.DeleteByID(ctx, documentID); err != nil {
		return fmt.Errorf("%w", err)
	}

	s.logger.Info(fmt.Sprintf("Deleted document with id %s", documentID))
	return nil
}

// annotationService implements the AnnotationService interface for computing
// linguistic statistics over stored documents
type annotationService struct {
	documentRepo   corpus.DocumentRepository
	annotationRepo corpus.AnnotationRepository
	logger         logger.Logger
}

// NewAnnotationService creates a new instance of AnnotationService
func NewAnnotationService(documentRepo corpus.DocumentRepository, annotationRepo corpus.AnnotationRepository, logger logger.Logger) (corpus.AnnotationService, error) {
	return &annotationService{
		documentRepo:   documentRepo,
		annotationRepo: annotationRepo,
		logger:         logger,
	}, nil
}

// Annotate computes statistics for one document and persists them
func (s *annotationService) Annotate(ctx context.Context, documentID string) (*corpus.Annotation, error) {
	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	stats := textproc.Annotate(doc.Content)
	annotation := &corpus.Annotation{
		DocumentID:     doc.ID,
		Sentences:      stats.Sentences,
		Tokens:         stats.Tokens,
		TypeTokenRatio: stats.TypeTokenRatio,
		StopwordRatio:  stats.StopwordRatio,
		AnnotatedAt:    time.Now().UTC(),
	}

	if err := s.annotationRepo.Upsert(ctx, annotation); err != nil {
		return nil, fmt.Errorf("failed to persist annotation: %w", err)
	}

	s.logger.Info(fmt.Sprintf("Annotated document %s: %d sentences, %d tokens", doc.ID, stats.Sentences, stats.Tokens))
	return annotation, nil
}

// AnnotateAll annotates every stored document, paging through the repository.
func (s *annotationService) AnnotateAll(ctx context.Context) ([]*corpus.Annotation, error) {
	var annotations []*corpus.Annotation

	query := corpus.NewDocumentQuery()
	for {
		docs, err := s.documentRepo.List(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("%w", err)
		}

		for _, doc := range docs {
			annotation, err := s.Annotate(ctx, doc.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to annotate document %s: %w", doc.ID, err)
			}
			annotations = append(annotations, annotation)
		}

		if len(docs) < query.Limit {
			return annotations, nil
		}
		query.Offset += query.Limit
	}
}

// downloadService implements the DownloadService interface for fetching the
// curated Gutenberg corpus
type downloadService struct {
	downloader *gutenberg.Downloader
	logger     logger.Logger
}

// NewDownloadService creates a new instance of DownloadService
func NewDownloadService(downloader *gutenberg.Downloader, logger logger.Logger) (corpus.DownloadService, error) {
	if downloader == nil {
		return nil, fmt.Errorf("downloader must not be nil")
	}
	return &downloadService{downloader: downloader, logger: logger}, nil
}

// DownloadCorpus fetches the curated books, honoring genre filters and the
// max-books cap
func (s *downloadService) DownloadCorpus(ctx context.Context, opts corpus.DownloadOptions) ([]corpus.BookMeta, error) {
	results, err := s.downloader.DownloadCorpus(ctx, opts)
	if err != nil {
		return results, fmt.Errorf("%w", err)
	}
	return results, nil
}
