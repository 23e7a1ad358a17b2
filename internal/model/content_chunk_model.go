package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// ContentChunk is one retrievable fragment in the Content collection,
// scoped to its parent document by content hash.
type ContentChunk struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId     string          `gorm:"type:varchar(64);not null;index"`
	Text           string          `gorm:"type:text;not null"`
	Page           int             `gorm:"default:0"`
	SectionH1      string          `gorm:"type:varchar(255)"`
	SectionH2      string          `gorm:"type:varchar(255)"`
	ChunkType      string          `gorm:"type:varchar(50);default:'texto'"`
	ChunkIndex     int             `gorm:"default:0"` // 0-based index for ordering
	EmbeddingValue pgvector.Vector `gorm:"type:vector(768)"`
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
}

func (ContentChunk) TableName() string {
	return "content_chunks"
}
