package v1

import (
	"github.com/JayHzn/ai-story-generator/internal/domain/corpus"
	"github.com/JayHzn/ai-story-generator/internal/domain/textgen"

	"github.com/gin-gonic/gin"
)

// SetupRoutes sets up all the API routes for version 1.
func SetupRoutes(r *gin.Engine,
	generationService textgen.GenerationService,
	modelMetadataService textgen.MetadataService,
	corpusMetadataService corpus.MetadataService) {

	v1 := r.Group(BasePath) // lookup in version file

	// Generation Routes
	generateHandler := NewGenerateHandler(generationService)
	v1.POST("/generate", generateHandler.Generate)
	v1.POST("/generate/stream", generateHandler.GenerateStream)

	// Model Routes
	modelHandler := NewModelHandler(modelMetadataService)
	v1.GET("/models", modelHandler.ListMetadata)
	v1.GET("/models/:id", modelHandler.GetMetadataByID)
	v1.DELETE("/models/:id", modelHandler.DeleteByID)

	// Document Routes
	documentHandler := NewDocumentHandler(corpusMetadataService)
	v1.GET("/documents", documentHandler.ListMetadata)
	v1.GET("/documents/:id", documentHandler.GetByID)
	v1.DELETE("/documents/:id", documentHandler.DeleteByID)
}
