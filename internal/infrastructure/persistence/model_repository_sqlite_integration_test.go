//go:build integration
// +build integration

package persistence

import (
	"context"
	"fmt"
	"testing"

	"github.com/JayHzn/ai-story-generator/internal/domain/textgen"
	"github.com/JayHzn/ai-story-generator/internal/infrastructure/persistence/models"
	"github.com/JayHzn/ai-story-generator/internal/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelSqliteRepository_Create(t *testing.T) {
	ctx := SetupTestDB(t, config.SqliteDbType)

	meta := CreateTestModelMeta(t, "story-model")

	err := ctx.ModelRepo.Create(context.Background(), meta)
	require.NoError(t, err)

	var createdModel models.ModelMetaModel
	err = ctx.DB.First(&createdModel, "id = ?", meta.ID).Error
	require.NoError(t, err)
	assert.Equal(t, meta.ID, createdModel.ID)
	assert.Equal(t, meta.Name, createdModel.Name)
}

func TestModelSqliteRepository_GetByID(t *testing.T) {
	ctx := SetupTestDB(t, config.SqliteDbType)

	meta := CreateTestModelMeta(t, "story-model")

	err := ctx.ModelRepo.Create(context.Background(), meta)
	require.NoError(t, err)

	fetchedMeta, err := ctx.ModelRepo.GetByID(context.Background(), meta.ID)
	require.NoError(t, err)
	assert.NotNil(t, fetchedMeta)
	assert.Equal(t, meta.CheckpointPath, fetchedMeta.CheckpointPath)
}

func TestModelRepository_Create_InvalidMeta(t *testing.T) {
	ctx := SetupTestDB(t, config.SqliteDbType)

	meta := &textgen.ModelMeta{} // Invalid - missing required fields

	err := ctx.ModelRepo.Create(context.Background(), meta)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "validation")
}

func TestModelRepository_GetByID_NotFound(t *testing.T) {
	ctx := SetupTestDB(t, config.SqliteDbType)

	_, err := ctx.ModelRepo.GetByID(context.Background(), "non-existent-id")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestModelRepository_List_WithFilters(t *testing.T) {
	ctx := SetupTestDB(t, config.SqliteDbType)

	meta := CreateTestModelMeta(t, "special-model")

	err := ctx.ModelRepo.Create(context.Background(), meta)
	require.NoError(t, err)

	query := &textgen.ModelMetaQuery{
		Name: "special",
	}
	list, err := ctx.ModelRepo.List(context.Background(), query)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, "special-model", list[0].Name)
}

func TestModelRepository_List_SortAndPagination(t *testing.T) {
	ctx := SetupTestDB(t, config.SqliteDbType)

	for i := 1; i <= 2; i++ {
		meta := CreateTestModelMeta(t, fmt.Sprintf("model-%d", i))
		_ = ctx.ModelRepo.Create(context.Background(), meta)
	}

	query := &textgen.ModelMetaQuery{
		SortBy:    "date_time_created",
		SortOrder: "desc",
		Limit:     1,
		Offset:    1,
	}

	list, err := ctx.ModelRepo.List(context.Background(), query)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestModelSqliteRepository_DeleteByID(t *testing.T) {
	ctx := SetupTestDB(t, config.SqliteDbType)

	meta := CreateTestModelMeta(t, "story-model")

	require.NoError(t, ctx.ModelRepo.Create(context.Background(), meta))
	require.NoError(t, ctx.ModelRepo.DeleteByID(context.Background(), meta.ID))

	var deletedModel models.ModelMetaModel
	err := ctx.DB.First(&deletedModel, "id = ?", meta.ID).Error
	assert.Error(t, err)
}
