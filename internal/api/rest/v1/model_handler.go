package v1

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/JayHzn/ai-story-generator/internal/domain/textgen"

	"github.com/gin-gonic/gin"
)

// ModelHandler defines the interface for handling model metadata operations
type ModelHandler interface {
	ListMetadata(ctx *gin.Context)
	GetMetadataByID(ctx *gin.Context)
	DeleteByID(ctx *gin.Context)
}

// modelHandler struct holds the services
type modelHandler struct {
	modelMetadataService textgen.MetadataService
}

// NewModelHandler creates a new ModelHandler
func NewModelHandler(modelMetadataService textgen.MetadataService) ModelHandler {
	return &modelHandler{modelMetadataService: modelMetadataService}
}

// ListMetadata handles the GET request to list model metadata with optional query parameters
// @Summary List model metadata based on query parameters
// @Description Fetch a list of trained model metadata filtered by name and creation date, with pagination and sorting options.
// @Tags Model
// @Accept json
// @Produce json
// @Param name query string false "Model name filter"
// @Param createdAfter query string false "Creation date lower bound (RFC3339)"
// @Param limit query int false "Limit the number of results"
// @Param offset query int false "Offset the results"
// @Param sortBy query string false "Sort by a specific field"
// @Param sortOrder query string false "Sort order (asc/desc)"
// @Success 200 {array} ModelMetaResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /models [get]
func (handler *modelHandler) ListMetadata(ctx *gin.Context) {
	query := textgen.NewModelMetaQuery()

	if name := ctx.Query("name"); len(name) > 0 {
		query.Name = name
	}

	if createdAfter := ctx.Query("createdAfter"); len(createdAfter) > 0 {
		parsedTime, err := time.Parse(time.RFC3339, createdAfter)
		if err == nil {
			query.CreatedAfter = parsedTime
		}
	}

	if limit := ctx.Query("limit"); len(limit) > 0 {
		query.Limit = convertToInt(limit)
	}

	if offset := ctx.Query("offset"); len(offset) > 0 {
		query.Offset = convertToInt(offset)
	}

	if sortBy := ctx.Query("sortBy"); len(sortBy) > 0 {
		query.SortBy = sortBy
	}

	if sortOrder := ctx.Query("sortOrder"); len(sortOrder) > 0 {
		query.SortOrder = sortOrder
	}

	if err := query.Validate(); err != nil {
		var errorResponse ErrorResponse
		errorResponse.Message = fmt.Sprintf("validation failed: %v", err.Error())
		ctx.JSON(http.StatusBadRequest, errorResponse)
		return
	}

	modelMetas, err := handler.modelMetadataService.List(ctx, query)
	if err != nil {
		var errorResponse ErrorResponse
		errorResponse.Message = fmt.Sprintf("list query failed: %v", err.Error())
		ctx.JSON(http.StatusNotFound, errorResponse)
		return
	}

	var listResponse = []ModelMetaResponse{}
	for _, modelMeta := range modelMetas {
		listResponse = append(listResponse, toModelMetaResponse(modelMeta))
	}

	ctx.JSON(http.StatusOK, listResponse)
}

// GetMetadataByID handles the GET request to retrieve model metadata by ID
// @Summary Retrieve model metadata by ID
// @Description Fetch the metadata of a trained model by ID, including its architecture and final loss.
// @Tags Model
// @Accept json
// @Produce json
// @Param id path string true "Model ID"
// @Success 200 {object} ModelMetaResponse
// @Failure 404 {object} ErrorResponse
// @Router /models/{id} [get]
func (handler *modelHandler) GetMetadataByID(ctx *gin.Context) {
	modelID := ctx.Param("id")

	modelMeta, err := handler.modelMetadataService.GetByID(ctx, modelID)
	if err != nil {
		var errorResponse ErrorResponse
		errorResponse.Message = fmt.Sprintf("model with id %s not found", modelID)
		ctx.JSON(http.StatusNotFound, errorResponse)
		return
	}

	ctx.JSON(http.StatusOK, toModelMetaResponse(modelMeta))
}

// DeleteByID handles the DELETE request to delete model metadata by ID
// @Summary Delete model metadata by ID
// @Description Delete the metadata of a trained model by ID. Checkpoint files on disk are left untouched.
// @Tags Model
// @Accept json
// @Produce json
// @Param id path string true "Model ID"
// @Success 204 {object} InfoResponse
// @Failure 404 {object} ErrorResponse
// @Router /models/{id} [delete]
func (handler *modelHandler) DeleteByID(ctx *gin.Context) {
	modelID := ctx.Param("id")

	if err := handler.modelMetadataService.DeleteByID(ctx, modelID); err != nil {
		var errorResponse ErrorResponse
		errorResponse.Message = fmt.Sprintf("error deleting model with id %s", modelID)
		ctx.JSON(http.StatusNotFound, errorResponse)
		return
	}

	var infoResponse InfoResponse
	infoResponse.Message = fmt.Sprintf("deleted model with id %s", modelID)
	ctx.JSON(http.StatusNoContent, infoResponse)
}

func toModelMetaResponse(meta *textgen.ModelMeta) ModelMetaResponse {
	return ModelMetaResponse{
		ID:              meta.ID,
		DateTimeCreated: meta.DateTimeCreated,
		Name:            meta.Name,
		VocabSize:       meta.VocabSize,
		SeqLen:          meta.SeqLen,
		EmbedDim:        meta.EmbedDim,
		NumHeads:        meta.NumHeads,
		NumLayers:       meta.NumLayers,
		Parameters:      meta.Parameters,
		FinalLoss:       meta.FinalLoss,
	}
}

// convertToInt parses a query parameter, returning zero on malformed input.
func convertToInt(value string) int {
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return parsed
}
