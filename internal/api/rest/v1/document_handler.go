package v1

import (
	"fmt"
	"net/http"
	"time"

	"github.com/JayHzn/ai-story-generator/internal/domain/corpus"

	"github.com/gin-gonic/gin"
)

// DocumentHandler defines the interface for handling corpus document operations
type DocumentHandler interface {
	ListMetadata(ctx *gin.Context)
	GetByID(ctx *gin.Context)
	DeleteByID(ctx *gin.Context)
}

// documentHandler struct holds the services
type documentHandler struct {
	corpusMetadataService corpus.MetadataService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(corpusMetadataService corpus.MetadataService) DocumentHandler {
	return &documentHandler{corpusMetadataService: corpusMetadataService}
}

// ListMetadata handles the GET request to list collected documents with optional query parameters
// @Summary List collected corpus documents based on query parameters
// @Description Fetch a list of collected document metadata filtered by source, genre and collection date, with pagination and sorting options. Document content is omitted.
// @Tags Document
// @Accept json
// @Produce json
// @Param source query string false "Source filter"
// @Param genre query string false "Genre filter"
// @Param collectedAfter query string false "Collection date lower bound (RFC3339)"
// @Param limit query int false "Limit the number of results"
// @Param offset query int false "Offset the results"
// @Param sortBy query string false "Sort by a specific field"
// @Param sortOrder query string false "Sort order (asc/desc)"
// @Success 200 {array} DocumentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /documents [get]
func (handler *documentHandler) ListMetadata(ctx *gin.Context) {
	query := corpus.NewDocumentQuery()

	if source := ctx.Query("source"); len(source) > 0 {
		query.Source = source
	}

	if genre := ctx.Query("genre"); len(genre) > 0 {
		query.Genre = genre
	}

	if collectedAfter := ctx.Query("collectedAfter"); len(collectedAfter) > 0 {
		parsedTime, err := time.Parse(time.RFC3339, collectedAfter)
		if err == nil {
			query.CollectedAfter = parsedTime
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

	docs, err := handler.corpusMetadataService.List(ctx, query)
	if err != nil {
		var errorResponse ErrorResponse
		errorResponse.Message = fmt.Sprintf("list query failed: %v", err.Error())
		ctx.JSON(http.StatusNotFound, errorResponse)
		return
	}

	var listResponse = []DocumentResponse{}
	for _, doc := range docs {
		listResponse = append(listResponse, DocumentResponse{
			ID:          doc.ID,
			Source:      doc.Source,
			URL:         doc.URL,
			Title:       doc.Title,
			Genre:       doc.Genre,
			CollectedAt: doc.CollectedAt,
			Bytes:       len(doc.Content),
		})
	}

	ctx.JSON(http.StatusOK, listResponse)
}

// GetByID handles the GET request to retrieve a collected document by ID
// @Summary Retrieve a collected document by ID
// @Description Fetch one collected document by ID, including its full text content.
// @Tags Document
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} DocumentResponse
// @Failure 404 {object} ErrorResponse
// @Router /documents/{id} [get]
func (handler *documentHandler) GetByID(ctx *gin.Context) {
	documentID := ctx.Param("id")

	doc, err := handler.corpusMetadataService.GetByID(ctx, documentID)
	if err != nil {
		var errorResponse ErrorResponse
		errorResponse.Message = fmt.Sprintf("document with id %s not found", documentID)
		ctx.JSON(http.StatusNotFound, errorResponse)
		return
	}

	response := DocumentResponse{
		ID:          doc.ID,
		Source:      doc.Source,
		URL:         doc.URL,
		Title:       doc.Title,
		Genre:       doc.Genre,
		CollectedAt: doc.CollectedAt,
		Bytes:       len(doc.Content),
		Content:     doc.Content,
	}
	ctx.JSON(http.StatusOK, response)
}

// DeleteByID handles the DELETE request to delete a collected document by ID
// @Summary Delete a collected document by ID
// @Description Delete a collected document and its annotation by ID.
// @Tags Document
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Success 204 {object} InfoResponse
// @Failure 404 {object} ErrorResponse
// @Router /documents/{id} [delete]
func (handler *documentHandler) DeleteByID(ctx *gin.Context) {
	documentID := ctx.Param("id")

	if err := handler.corpusMetadataService.DeleteByID(ctx, documentID); err != nil {
		var errorResponse ErrorResponse
		errorResponse.Message = fmt.Sprintf("error deleting document with id %s", documentID)
		ctx.JSON(http.StatusNotFound, errorResponse)
		return
	}

	var infoResponse InfoResponse
	infoResponse.Message = fmt.Sprintf("deleted document with id %s", documentID)
	ctx.JSON(http.StatusNoContent, infoResponse)
}
