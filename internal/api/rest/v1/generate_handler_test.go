//go:build unit
// +build unit

package v1

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JayHzn/ai-story-generator/internal/domain/textgen"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupGenerateRouter(service textgen.GenerationService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	handler := NewGenerateHandler(service)
	r.POST("/generate", handler.Generate)
	r.POST("/generate/stream", handler.GenerateStream)
	return r
}

func TestGenerateHandler_Generate(t *testing.T) {
	mockService := new(MockGenerationService)
	mockService.On("Generate", mock.Anything, mock.MatchedBy(func(req *textgen.GenerateRequest) bool {
		return req.Prompt == "Il était une fois" && req.MaxTokens == 32
	})).Return(&textgen.GenerateResult{
		Prompt:     "Il était une fois",
		Completion: " un chat qui dormait.",
		TokensUsed: 6,
	}, nil)

	router := setupGenerateRouter(mockService)

	body := `{"prompt":"Il était une fois","max_tokens":32}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response GenerateTextResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Il était une fois", response.Prompt)
	assert.Equal(t, " un chat qui dormait.", response.Completion)
	assert.Equal(t, 6, response.TokensUsed)
	mockService.AssertExpectations(t)
}

func TestGenerateHandler_Generate_MissingPrompt(t *testing.T) {
	mockService := new(MockGenerationService)
	router := setupGenerateRouter(mockService)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Contains(t, response.Message, "validation failed")
	mockService.AssertNotCalled(t, "Generate")
}

func TestGenerateHandler_Generate_MalformedBody(t *testing.T) {
	mockService := new(MockGenerationService)
	router := setupGenerateRouter(mockService)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(`{not json`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateHandler_Generate_ServiceError(t *testing.T) {
	mockService := new(MockGenerationService)
	mockService.On("Generate", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	router := setupGenerateRouter(mockService)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(`{"prompt":"Bonjour"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Contains(t, response.Message, "generation failed")
}

func TestGenerateHandler_GenerateStream(t *testing.T) {
	mockService := new(MockGenerationService)
	mockService.On("GenerateStream", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			emit := args.Get(2).(func(token string) error)
			require.NoError(t, emit("Le"))
			require.NoError(t, emit(" chat"))
		}).Return(nil)

	router := setupGenerateRouter(mockService)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/generate/stream", strings.NewReader(`{"prompt":"Bonjour"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/x-ndjson", w.Header().Get("Content-Type"))

	var chunks []StreamChunk
	scanner := bufio.NewScanner(bytes.NewReader(w.Body.Bytes()))
	for scanner.Scan() {
		var chunk StreamChunk
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &chunk))
		chunks = append(chunks, chunk)
	}

	require.Len(t, chunks, 3)
	assert.Equal(t, "Le", chunks[0].Token)
	assert.Equal(t, " chat", chunks[1].Token)
	assert.True(t, chunks[2].Done)
}

func TestGenerateHandler_GenerateStream_InvalidRequest(t *testing.T) {
	mockService := new(MockGenerationService)
	router := setupGenerateRouter(mockService)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/generate/stream", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "GenerateStream")
}
