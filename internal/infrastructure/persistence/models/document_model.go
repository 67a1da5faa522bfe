package models

import (
	"time"

	"github.com/JayHzn/ai-story-generator/internal/domain/corpus"
)

// DocumentModel is the GORM database model for collected documents
// (infrastructure concern)
type DocumentModel struct {
	ID          string    `gorm:"primaryKey;type:uuid"`
	Source      string    `gorm:"not null;index;type:varchar(255)"`
	URL         string    `gorm:"not null;type:varchar(2048)"`
	Title       string    `gorm:"type:varchar(255)"`
	Genre       string    `gorm:"index;type:varchar(50)"`
	CollectedAt time.Time `gorm:"not null;index"`
	Content     string    `gorm:"not null;type:text"`
}

// TableName specifies the table name for GORM
func (DocumentModel) TableName() string {
	return "documents"
}

// ToDomain converts GORM model to domain entity
func (m *DocumentModel) ToDomain() *corpus.Document {
	return &corpus.Document{
		ID:          m.ID,
		Source:      m.Source,
		URL:         m.URL,
		Title:       m.Title,
		Genre:       m.Genre,
		CollectedAt: m.CollectedAt,
		Content:     m.Content,
	}
}

// FromDomain converts domain entity to GORM model
func (m *DocumentModel) FromDomain(d *corpus.Document) {
	m.ID = d.ID
	m.Source = d.Source
	m.URL = d.URL
	m.Title = d.Title
	m.Genre = d.Genre
	m.CollectedAt = d.CollectedAt
	m.Content = d.Content
}
