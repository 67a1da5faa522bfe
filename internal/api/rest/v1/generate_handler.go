package v1

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/JayHzn/ai-story-generator/internal/domain/textgen"

	"github.com/gin-gonic/gin"
)

// GenerateHandler defines the interface for handling generation operations
type GenerateHandler interface {
	Generate(ctx *gin.Context)
	GenerateStream(ctx *gin.Context)
}

// generateHandler struct holds the services
type generateHandler struct {
	generationService textgen.GenerationService
}

// NewGenerateHandler creates a new GenerateHandler
func NewGenerateHandler(generationService textgen.GenerationService) GenerateHandler {
	return &generateHandler{generationService: generationService}
}

// Generate handles the POST request to produce a completion for a prompt
// @Summary Generate a story continuation
// @Description Produce a completion for the request prompt with optional sampling parameters.
// @Tags Generate
// @Accept json
// @Produce json
// @Param requestBody body GenerateTextRequest true "Generation parameters"
// @Success 200 {object} GenerateTextResponse
// @Failure 400 {object} ErrorResponse
// @Router /generate [post]
func (handler *generateHandler) Generate(ctx *gin.Context) {
	request, ok := bindGenerateRequest(ctx)
	if !ok {
		return
	}

	result, err := handler.generationService.Generate(ctx, request)
	if err != nil {
		var errorResponse ErrorResponse
		errorResponse.Message = fmt.Sprintf("generation failed: %v", err.Error())
		ctx.JSON(http.StatusBadRequest, errorResponse)
		return
	}

	response := GenerateTextResponse{
		Prompt:     result.Prompt,
		Completion: result.Completion,
		TokensUsed: result.TokensUsed,
	}
	ctx.JSON(http.StatusOK, response)
}

// GenerateStream handles the POST request to stream a completion token by token
// @Summary Stream a story continuation
// @Description Produce a completion as a newline-delimited stream of JSON chunks, one token each.
// @Tags Generate
// @Accept json
// @Produce json
// @Param requestBody body GenerateTextRequest true "Generation parameters"
// @Success 200 {object} StreamChunk
// @Failure 400 {object} ErrorResponse
// @Router /generate/stream [post]
func (handler *generateHandler) GenerateStream(ctx *gin.Context) {
	request, ok := bindGenerateRequest(ctx)
	if !ok {
		return
	}

	ctx.Writer.Header().Set("Content-Type", "application/x-ndjson")
	ctx.Writer.Header().Set("Transfer-Encoding", "chunked")
	ctx.Writer.WriteHeader(http.StatusOK)

	encoder := json.NewEncoder(ctx.Writer)
	err := handler.generationService.GenerateStream(ctx, request, func(token string) error {
		if err := encoder.Encode(StreamChunk{Token: token}); err != nil {
			return err
		}
		ctx.Writer.Flush()
		return nil
	})
	if err != nil {
		// The stream already started; terminate it without a trailing done chunk
		return
	}

	_ = encoder.Encode(StreamChunk{Done: true})
	ctx.Writer.Flush()
}

// bindGenerateRequest parses and validates the shared generation request body.
func bindGenerateRequest(ctx *gin.Context) (*textgen.GenerateRequest, bool) {
	var request GenerateTextRequest

	if err := ctx.ShouldBindJSON(&request); err != nil {
		var errorResponse ErrorResponse
		errorResponse.Message = fmt.Sprintf("invalid generation request: %v", err.Error())
		ctx.JSON(http.StatusBadRequest, errorResponse)
		return nil, false
	}

	if err := request.Validate(); err != nil {
		var errorResponse ErrorResponse
		errorResponse.Message = fmt.Sprintf("validation failed: %v", err.Error())
		ctx.JSON(http.StatusBadRequest, errorResponse)
		return nil, false
	}

	return &textgen.GenerateRequest{
		Prompt:      request.Prompt,
		MaxTokens:   request.MaxTokens,
		Temperature: request.Temperature,
		TopK:        request.TopK,
		TopP:        request.TopP,
	}, true
}
