package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/JayHzn/ai-story-generator/internal/domain/textgen"
	"github.com/JayHzn/ai-story-generator/internal/infrastructure/persistence/models"
	"github.com/JayHzn/ai-story-generator/internal/pkg/logger"

	"gorm.io/gorm"
)

type gormModelRepository struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewGormModelRepository creates a new GORM-based ModelRepository implementation
func NewGormModelRepository(db *gorm.DB, logger logger.Logger) (textgen.ModelRepository, error) {
	return &gormModelRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *gormModelRepository) Create(ctx context.Context, meta *textgen.ModelMeta) error {
	if err := meta.Validate(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	model := &models.ModelMetaModel{}
	model.FromDomain(meta)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create model metadata: %w", err)
	}

	r.logger.Info("Created model metadata with id ", meta.ID)
	return nil
}

func (r *gormModelRepository) List(ctx context.Context, query *textgen.ModelMetaQuery) ([]*textgen.ModelMeta, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query parameters: %w", err)
	}

	var modelList []*models.ModelMetaModel
	dbQuery := r.db.WithContext(ctx).Model(&models.ModelMetaModel{})

	// Apply filters
	if query.Name != "" {
		dbQuery = dbQuery.Where("name LIKE ?", "%"+query.Name+"%")
	}
	if !query.CreatedAfter.IsZero() {
		dbQuery = dbQuery.Where("date_time_created >= ?", query.CreatedAfter)
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
		return nil, fmt.Errorf("failed to fetch model metadata: %w", err)
	}

	domainList := make([]*textgen.ModelMeta, len(modelList))
	for i, model := range modelList {
		domainList[i] = model.ToDomain()
	}

	return domainList, nil
}

func (r *gormModelRepository) GetByID(ctx context.Context, modelID string) (*textgen.ModelMeta, error) {
	var model models.ModelMetaModel
	if err := r.db.WithContext(ctx).Where("id = ?", modelID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("model with ID %s not found", modelID)
		}
		return nil, fmt.Errorf("failed to fetch model metadata: %w", err)
	}
	return model.ToDomain(), nil
}

func (r *gormModelRepository) DeleteByID(ctx context.Context, modelID string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", modelID).Delete(&models.ModelMetaModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete model metadata: %w", err)
	}

	r.logger.Info("Deleted model metadata with id ", modelID)
	return nil
}
