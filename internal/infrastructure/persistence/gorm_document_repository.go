package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/JayHzn/ai-story-generator/internal/domain/corpus"
	"github.com/JayHzn/ai-story-generator/internal/infrastructure/persistence/models"
	"github.com/JayHzn/ai-story-generator/internal/pkg/logger"

	"gorm.io/gorm"
)

type gormDocumentRepository struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewGormDocumentRepository creates a new GORM-based DocumentRepository implementation
func NewGormDocumentRepository(db *gorm.DB, logger logger.Logger) (corpus.DocumentRepository, error) {
	return &gormDocumentRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *gormDocumentRepository) Create(ctx context.Context, doc *corpus.Document) error {
	// Validate domain entity (business rules)
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	// Convert to GORM model
	model := &models.DocumentModel{}
	model.FromDomain(doc)

	// Persist to database
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	r.logger.Info("Created document with id ", doc.ID)
	return nil
}

func (r *gormDocumentRepository) List(ctx context.Context, query *corpus.DocumentQuery) ([]*corpus.Document, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query parameters: %w", err)
	}

	var modelList []*models.DocumentModel
	dbQuery := r.db.WithContext(ctx).Model(&models.DocumentModel{})

	// Apply filters
	if query.Source != "" {
		dbQuery = dbQuery.Where("source LIKE ?", "%"+query.Source+"%")
	}
	if query.Genre != "" {
		dbQuery = dbQuery.Where("genre = ?", query.Genre)
	}
	if !query.CollectedAfter.IsZero() {
		dbQuery = dbQuery.Where("collected_at >= ?", query.CollectedAfter)
	}

	// Sorting
	if query.SortBy != "" {
		order := query.SortOrder
		if order == "" {
			order = "asc"
		}
		dbQuery = dbQuery.Order(fmt.Sprintf("%s %s", query.SortBy, order))
	}

	// Pagination
	if query.Limit > 0 {
		dbQuery = dbQuery.Limit(query.Limit)
	}
	if query.Offset > 0 {
		dbQuery = dbQuery.Offset(query.Offset)
	}

	if err := dbQuery.Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch documents: %w", err)
	}

	// Convert to domain models
	domainList := make([]*corpus.Document, len(modelList))
	for i, model := range modelList {
		domainList[i] = model.ToDomain()
	}

	return domainList, nil
}

func (r *gormDocumentRepository) GetByID(ctx context.Context, documentID string) (*corpus.Document, error) {
	var model models.DocumentModel
	if err := r.db.WithContext(ctx).Where("id = ?", documentID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("document with ID %s not found", documentID)
		}
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}
	return model.ToDomain(), nil
}

func (r *gormDocumentRepository) UpdateByID(ctx context.Context, doc *corpus.Document) error {
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	model := &models.DocumentModel{}
	model.FromDomain(doc)

	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}

	r.logger.Info("Updated document with id ", doc.ID)
	return nil
}

func (r *gormDocumentRepository) DeleteByID(ctx context.Context, documentID string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", documentID).Delete(&models.DocumentModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	r.logger.Info("Deleted document with id ", documentID)
	return nil
}
