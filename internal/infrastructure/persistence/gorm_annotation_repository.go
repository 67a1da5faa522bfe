package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/JayHzn/ai-story-generator/internal/domain/corpus"
	"github.com/JayHzn/ai-story-generator/internal/infrastructure/persistence/models"
	"github.com/JayHzn/ai-story-generator/internal/pkg/logger"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormAnnotationRepository struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewGormAnnotationRepository creates a new GORM-based AnnotationRepository implementation
func NewGormAnnotationRepository(db *gorm.DB, logger logger.Logger) (corpus.AnnotationRepository, error) {
	return &gormAnnotationRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *gormAnnotationRepository) Upsert(ctx context.Context, annotation *corpus.Annotation) error {
	if err := annotation.Validate(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	model := &models.AnnotationModel{}
	model.FromDomain(annotation)

	// Re-annotating a document replaces its previous statistics
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "document_id"}},
		UpdateAll: true,
	}).Create(model).Error; err != nil {
		return fmt.Errorf("failed to upsert annotation: %w", err)
	}

	r.logger.Info("Upserted annotation for document id ", annotation.DocumentID)
	return nil
}

func (r *gormAnnotationRepository) GetByDocumentID(ctx context.Context, documentID string) (*corpus.Annotation, error) {
	var model models.AnnotationModel
	if err := r.db.WithContext(ctx).Where("document_id = ?", documentID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("annotation for document ID %s not found", documentID)
		}
		return nil, fmt.Errorf("failed to fetch annotation: %w", err)
	}
	return model.ToDomain(), nil
}

func (r *gormAnnotationRepository) DeleteByDocumentID(ctx context.Context, documentID string) error {
	if err := r.db.WithContext(ctx).Where("document_id = ?", documentID).Delete(&models.AnnotationModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete annotation: %w", err)
	}

	r.logger.Info("Deleted annotation for document id ", documentID)
	return nil
}
