package models

import (
	"time"

	"github.com/JayHzn/ai-story-generator/internal/domain/textgen"
)

// ModelMetaModel is the GORM database model for trained model metadata
type ModelMetaModel struct {
	ID              string    `gorm:"primaryKey;type:uuid"`
	DateTimeCreated time.Time `gorm:"not null;index"`
	Name            string    `gorm:"not null;index;type:varchar(255)"`
	VocabSize       int       `gorm:"not null"`
	SeqLen          int       `gorm:"not null"`
	EmbedDim        int       `gorm:"not null"`
	NumHeads        int       `gorm:"not null"`
	NumLayers       int       `gorm:"not null"`
	Parameters      int64     `gorm:"not null"`
	FinalLoss       float64   `gorm:"not null"`
	CheckpointPath  string    `gorm:"not null;type:varchar(2048)"`
	TokenizerPath   string    `gorm:"not null;type:varchar(2048)"`
}

// TableName specifies the table name for GORM
func (ModelMetaModel) TableName() string {
	return "model_metas"
}

// ToDomain converts GORM model to domain entity
func (m *ModelMetaModel) ToDomain() *textgen.ModelMeta {
	return &textgen.ModelMeta{
		ID:              m.ID,
		DateTimeCreated: m.DateTimeCreated,
		Name:            m.Name,
		VocabSize:       m.VocabSize,
		SeqLen:          m.SeqLen,
		EmbedDim:        m.EmbedDim,
		NumHeads:        m.NumHeads,
		NumLayers:       m.NumLayers,
		Parameters:      m.Parameters,
		FinalLoss:       m.FinalLoss,
		CheckpointPath:  m.CheckpointPath,
		TokenizerPath:   m.TokenizerPath,
	}
}

// FromDomain converts domain entity to GORM model
func (m *ModelMetaModel) FromDomain(meta *textgen.ModelMeta) {
	m.ID = meta.ID
	m.DateTimeCreated = meta.DateTimeCreated
	m.Name = meta.Name
	m.VocabSize = meta.VocabSize
	m.SeqLen = meta.SeqLen
	m.EmbedDim = meta.EmbedDim
	m.NumHeads = meta.NumHeads
	m.NumLayers = meta.NumLayers
	m.Parameters = meta.Parameters
	m.FinalLoss = meta.FinalLoss
	m.CheckpointPath = meta.CheckpointPath
	m.TokenizerPath = meta.TokenizerPath
}
