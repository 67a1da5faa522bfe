package corpus

import (
	"context"
)

// DownloadOptions controls a curated corpus download run.
type DownloadOptions struct {
	OutputDir string
	MaxBooks  int      // 0 means no cap
	Genres    []string // empty means all genres
	Delay     int      // seconds between downloads
}

// DownloadService defines methods for fetching the curated Gutenberg corpus.
type DownloadService interface {
	// DownloadCorpus fetches the curated books, honoring genre filters and
	// the max-books cap, and writes a metadata summary next to the files.
	// It returns one BookMeta per attempted book.
	DownloadCorpus(ctx context.Context, opts DownloadOptions) ([]BookMeta, error)
}

// CollectorService defines methods for collecting web documents into the corpus.
type CollectorService interface {
	// Collect fetches a single URL, strips markup, fixes the text and
	// persists the result as a Document.
	Collect(ctx context.Context, source, url string) (*Document, error)

	// CollectAll collects every configured source URL.
	CollectAll(ctx context.Context) ([]*Document, error)
}

// MetadataService defines read/delete access to collected documents.
type MetadataService interface {
	// List retrieves documents' metadata considering a query filter when set.
	List(ctx context.Context, query *DocumentQuery) ([]*Document, error)

	// GetByID retrieves a document by ID.
	GetByID(ctx context.Context, documentID string) (*Document, error)

	// DeleteByID deletes a document and its annotation by ID.
	DeleteByID(ctx context.Context, documentID string) error
}

// AnnotationService computes and stores linguistic statistics for documents.
type AnnotationService interface {
	// Annotate computes statistics for one document and persists them.
	Annotate(ctx context.Context, documentID string) (*Annotation, error)

	// AnnotateAll annotates every stored document.
	AnnotateAll(ctx context.Context) ([]*Annotation, error)
}

// DocumentRepository defines the interface for Document-related operations
type DocumentRepository interface {
	// Create adds a new Document to the database
	Create(ctx context.Context, doc *Document) error
	// List lists Documents in the database with optional filter
	List(ctx context.Context, query *DocumentQuery) ([]*Document, error)
	// GetByID retrieves a Document from the database by ID
	GetByID(ctx context.Context, documentID string) (*Document, error)
	// UpdateByID updates a Document in the database by ID
	UpdateByID(ctx context.Context, doc *Document) error
	// DeleteByID deletes a Document in the database by ID
	DeleteByID(ctx context.Context, documentID string) error
}

// AnnotationRepository defines the interface for Annotation persistence
type AnnotationRepository interface {
	// Upsert creates or replaces the annotation for a document
	Upsert(ctx context.Context, annotation *Annotation) error
	// GetByDocumentID retrieves the annotation for a document
	GetByDocumentID(ctx context.Context, documentID string) (*Annotation, error)
	// DeleteByDocumentID removes the annotation for a document
	DeleteByDocumentID(ctx context.Context, documentID string) error
}
