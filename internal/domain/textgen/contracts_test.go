//go:build unit
// +build unit

package textgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validTrainRequest() *TrainRequest {
	return &TrainRequest{
		Name:          "conteur-v1",
		DatasetDir:    "data/dataset",
		TokenizerPath: "models/tokenizer.txt",
		OutputDir:     "models",
		EmbedDim:      128,
		NumHeads:      4,
		NumLayers:     4,
		Epochs:        3,
		BatchSize:     16,
		LearningRate:  3e-4,
	}
}

func TestTrainRequest_Validate(t *testing.T) {
	assert.NoError(t, validTrainRequest().Validate())
}

func TestTrainRequest_Validate_HeadDivision(t *testing.T) {
	req := validTrainRequest()
	req.EmbedDim = 100
	req.NumHeads = 3
	assert.Error(t, req.Validate())

	req.NumHeads = 4
	assert.NoError(t, req.Validate())
}

func TestTrainRequest_Validate_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *TrainRequest)
	}{
		{
			name:   "missing name",
			mutate: func(r *TrainRequest) { r.Name = "" },
		},
		{
			name:   "missing dataset dir",
			mutate: func(r *TrainRequest) { r.DatasetDir = "" },
		},
		{
			name:   "missing tokenizer path",
			mutate: func(r *TrainRequest) { r.TokenizerPath = "" },
		},
		{
			name:   "embedding too small",
			mutate: func(r *TrainRequest) { r.EmbedDim = 4 },
		},
		{
			name:   "zero epochs",
			mutate: func(r *TrainRequest) { r.Epochs = 0 },
		},
		{
			name:   "non-positive learning rate",
			mutate: func(r *TrainRequest) { r.LearningRate = 0 },
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			req := validTrainRequest()
			test.mutate(req)
			assert.Error(t, req.Validate())
		})
	}
}

func TestGenerateRequest_Validate(t *testing.T) {
	req := &GenerateRequest{Prompt: "Il était une fois"}
	assert.NoError(t, req.Validate())

	req.Temperature = 0.8
	req.TopK = 40
	req.TopP = 0.95
	req.MaxTokens = 256
	assert.NoError(t, req.Validate())
}

func TestGenerateRequest_Validate_Invalid(t *testing.T) {
	assert.Error(t, (&GenerateRequest{}).Validate())
	assert.Error(t, (&GenerateRequest{Prompt: "x", MaxTokens: 8192}).Validate())
	assert.Error(t, (&GenerateRequest{Prompt: "x", Temperature: 2.5}).Validate())
	assert.Error(t, (&GenerateRequest{Prompt: "x", TopP: 1.2}).Validate())
}
