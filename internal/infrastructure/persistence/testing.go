//go:build integration
// +build integration

package persistence

import (
	"strings"
	"testing"
	"time"

	"github.com/JayHzn/ai-story-generator/internal/domain/corpus"
	"github.com/JayHzn/ai-story-generator/internal/domain/textgen"
	"github.com/JayHzn/ai-story-generator/internal/infrastructure/persistence/models"
	"github.com/JayHzn/ai-story-generator/internal/pkg/config"
	"github.com/JayHzn/ai-story-generator/internal/pkg/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// TestContext holds test database and repositories
type TestContext struct {
	DB             *gorm.DB
	DocumentRepo   corpus.DocumentRepository
	AnnotationRepo corpus.AnnotationRepository
	ModelRepo      textgen.ModelRepository
}

// SetupTestDB initializes test database with automatic cleanup
func SetupTestDB(t *testing.T, dbType string) *TestContext {
	t.Helper()

	var settings config.DatabaseSettings
	var cleanupFunc func()

	switch dbType {
	case config.SqliteDbType:
		settings = config.DatabaseSettings{
			Type: config.SqliteDbType,
			DSN:  ":memory:",
		}
		cleanupFunc = func() {
			// SQLite in-memory cleanup is automatic
		}

	case config.PostgresDbType:
		uniqueDBName := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
		settings = config.DatabaseSettings{
			Type: config.PostgresDbType,
			DSN:  "user=postgres password=postgres host=localhost port=5432 sslmode=disable",
			Name: uniqueDBName,
		}
		cleanupFunc = func() {
			adminDSN := "user=postgres password=postgres host=localhost port=5432 dbname=postgres sslmode=disable"
			_ = DropDatabase(adminDSN, uniqueDBName)
		}

	default:
		t.Fatalf("Unsupported database type: %s", dbType)
	}

	// Create connection
	db, err := NewDBConnection(settings)
	require.NoError(t, err, "Failed to create database connection")

	// Register cleanup
	t.Cleanup(func() {
		_ = CloseDB(db)
		cleanupFunc()
	})

	// Migrate schema
	err = db.AutoMigrate(&models.DocumentModel{}, &models.AnnotationModel{}, &models.ModelMetaModel{})
	require.NoError(t, err, "Failed to migrate schema")

	// Create repositories
	logger := testutil.SetupTestLogger(t)

	documentRepo, err := NewGormDocumentRepository(db, logger)
	require.NoError(t, err, "Failed to create document repository")

	annotationRepo, err := NewGormAnnotationRepository(db, logger)
	require.NoError(t, err, "Failed to create annotation repository")

	modelRepo, err := NewGormModelRepository(db, logger)
	require.NoError(t, err, "Failed to create model repository")

	return &TestContext{
		DB:             db,
		DocumentRepo:   documentRepo,
		AnnotationRepo: annotationRepo,
		ModelRepo:      modelRepo,
	}
}

// CreateTestDocument creates a test document with default values
func CreateTestDocument(t *testing.T, source string) *corpus.Document {
	t.Helper()

	if source == "" {
		source = "gutenberg"
	}

	return &corpus.Document{
		ID:          uuid.NewString(),
		Source:      source,
		URL:         "https://www.gutenberg.org/cache/epub/17489/pg17489.txt",
		Title:       "Les Miserables Tome I",
		Genre:       corpus.GenreLitteratureGenerale,
		CollectedAt: time.Now(),
		Content:     "En 1815, M. Charles-Francois-Bienvenu Myriel etait eveque de Digne.",
	}
}

// CreateTestDocumentWithOptions creates a test document with custom options
func CreateTestDocumentWithOptions(t *testing.T, source, genre, content string) *corpus.Document {
	t.Helper()

	return &corpus.Document{
		ID:          uuid.NewString(),
		Source:      source,
		URL:         "https://example.org/" + source,
		Genre:       genre,
		CollectedAt: time.Now(),
		Content:     content,
	}
}

// CreateTestAnnotation creates a test annotation for a document
func CreateTestAnnotation(t *testing.T, documentID string) *corpus.Annotation {
	t.Helper()

	return &corpus.Annotation{
		DocumentID:     documentID,
		Sentences:      12,
		Tokens:         240,
		TypeTokenRatio: 0.55,
		StopwordRatio:  0.38,
		AnnotatedAt:    time.Now(),
	}
}

// CreateTestModelMeta creates test model metadata with default values
func CreateTestModelMeta(t *testing.T, name string) *textgen.ModelMeta {
	t.Helper()

	if name == "" {
		name = "test-model"
	}

	return &textgen.ModelMeta{
		ID:              uuid.NewString(),
		DateTimeCreated: time.Now(),
		Name:            name,
		VocabSize:       512,
		SeqLen:          64,
		EmbedDim:        64,
		NumHeads:        4,
		NumLayers:       2,
		Parameters:      150000,
		FinalLoss:       2.31,
		CheckpointPath:  "/tmp/checkpoints/test-model.bin",
		TokenizerPath:   "/tmp/checkpoints/tokenizer.json",
	}
}
