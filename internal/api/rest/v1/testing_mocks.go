//go:build unit
// +build unit

package v1

import (
	"context"

	"github.com/JayHzn/ai-story-generator/internal/domain/corpus"
	"github.com/JayHzn/ai-story-generator/internal/domain/textgen"

	"github.com/stretchr/testify/mock"
)

// MockGenerationService is a mock implementation of GenerationService
type MockGenerationService struct {
	mock.Mock
}

func (m *MockGenerationService) Generate(ctx context.Context, req *textgen.GenerateRequest) (*textgen.GenerateResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*textgen.GenerateResult), args.Error(1)
}

func (m *MockGenerationService) GenerateStream(ctx context.Context, req *textgen.GenerateRequest, emit func(token string) error) error {
	args := m.Called(ctx, req, emit)
	return args.Error(0)
}

// MockModelMetadataService is a mock implementation of the textgen MetadataService
type MockModelMetadataService struct {
	mock.Mock
}

func (m *MockModelMetadataService) List(ctx context.Context, query *textgen.ModelMetaQuery) ([]*textgen.ModelMeta, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*textgen.ModelMeta), args.Error(1)
}

func (m *MockModelMetadataService) GetByID(ctx context.Context, modelID string) (*textgen.ModelMeta, error) {
	args := m.Called(ctx, modelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*textgen.ModelMeta), args.Error(1)
}

func (m *MockModelMetadataService) DeleteByID(ctx context.Context, modelID string) error {
	args := m.Called(ctx, modelID)
	return args.Error(0)
}

// MockCorpusMetadataService is a mock implementation of the corpus MetadataService
type MockCorpusMetadataService struct {
	mock.Mock
}

func (m *MockCorpusMetadataService) List(ctx context.Context, query *corpus.DocumentQuery) ([]*corpus.Document, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*corpus.Document), args.Error(1)
}

func (m *MockCorpusMetadataService) GetByID(ctx context.Context, documentID string) (*corpus.Document, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*corpus.Document), args.Error(1)
}

func (m *MockCorpusMetadataService) DeleteByID(ctx context.Context, documentID string) error {
	args := m.Called(ctx, documentID)
	return args.Error(0)
}
