package models

import (
	"time"

	"github.com/JayHzn/ai-story-generator/internal/domain/corpus"
)

// AnnotationModel is the GORM database model for document annotations
type AnnotationModel struct {
	DocumentID     string    `gorm:"primaryKey;type:uuid"`
	Sentences      int       `gorm:"not null"`
	Tokens         int       `gorm:"not null"`
	TypeTokenRatio float64   `gorm:"not null"`
	StopwordRatio  float64   `gorm:"not null"`
	AnnotatedAt    time.Time `gorm:"not null"`
}

// TableName specifies the table name for GORM
func (AnnotationModel) TableName() string {
	return "annotations"
}

// ToDomain converts GORM model to domain entity
func (m *AnnotationModel) ToDomain() *corpus.Annotation {
	return &corpus.Annotation{
		DocumentID:     m.DocumentID,
		Sentences:      m.Sentences,
		Tokens:         m.Tokens,
		TypeTokenRatio: m.TypeTokenRatio,
		StopwordRatio:  m.StopwordRatio,
		AnnotatedAt:    m.AnnotatedAt,
	}
}

// FromDomain converts domain entity to GORM model
func (m *AnnotationModel) FromDomain(a *corpus.Annotation) {
	m.DocumentID = a.DocumentID
	m.Sentences = a.Sentences
	m.Tokens = a.Tokens
	m.TypeTokenRatio = a.TypeTokenRatio
	m.StopwordRatio = a.StopwordRatio
	m.AnnotatedAt = a.AnnotatedAt
}
