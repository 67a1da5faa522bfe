//go:build unit
// +build unit

package corpus

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func validDocument() *Document {
	return &Document{
		ID:          uuid.New().String(),
		Source:      "gutenberg",
		URL:         "https://www.gutenberg.org/cache/epub/5711/pg5711.txt",
		Title:       "Germinal",
		Genre:       GenreLitteratureGenerale,
		CollectedAt: time.Now().UTC(),
		Content:     "Dans la plaine rase, sous la nuit sans étoiles.",
	}
}

func TestDocument_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(d *Document)
		wantErr bool
	}{
		{
			name:    "valid document",
			mutate:  func(d *Document) {},
			wantErr: false,
		},
		{
			name:    "empty genre allowed",
			mutate:  func(d *Document) { d.Genre = "" },
			wantErr: false,
		},
		{
			name:    "invalid id",
			mutate:  func(d *Document) { d.ID = "not-a-uuid" },
			wantErr: true,
		},
		{
			name:    "missing source",
			mutate:  func(d *Document) { d.Source = "" },
			wantErr: true,
		},
		{
			name:    "unknown genre",
			mutate:  func(d *Document) { d.Genre = "poesie" },
			wantErr: true,
		},
		{
			name:    "missing content",
			mutate:  func(d *Document) { d.Content = "" },
			wantErr: true,
		},
		{
			name:    "missing collection time",
			mutate:  func(d *Document) { d.CollectedAt = time.Time{} },
			wantErr: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			doc := validDocument()
			test.mutate(doc)

			err := doc.Validate()
			if test.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDocumentQuery_Validate(t *testing.T) {
	query := NewDocumentQuery()
	assert.NoError(t, query.Validate())
	assert.Equal(t, 100, query.Limit)

	query.Genre = GenreFantasySF
	query.SortBy = "collected_at"
	query.SortOrder = "desc"
	assert.NoError(t, query.Validate())

	query.SortBy = "bogus"
	assert.Error(t, query.Validate())
}

func TestDocumentQuery_Validate_LimitBounds(t *testing.T) {
	query := NewDocumentQuery()
	query.Limit = 501
	assert.Error(t, query.Validate())

	query.Limit = 500
	assert.NoError(t, query.Validate())
}
