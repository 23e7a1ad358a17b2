package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// LibraryCard is one row per manual version in the Library collection.
// DocumentId is the SHA-256 content hash of the source file, so the id is
// stable across renames and changes whenever the content changes.
type LibraryCard struct {
	Id               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId       string          `gorm:"type:varchar(64);not null;uniqueIndex"`
	DisplayName      string          `gorm:"type:varchar(255);not null"`
	FamilyId         string          `gorm:"type:varchar(255);not null;index"`
	Year             int             `gorm:"default:0"`
	VersionLabel     string          `gorm:"type:varchar(50)"`
	VersionNumber    int             `gorm:"default:0"`
	IsCurrentVersion bool            `gorm:"not null;index"`
	SourcePath       string          `gorm:"type:text"`
	Summary          string          `gorm:"type:text"`
	Metadata         datatypes.JSON  `gorm:"type:jsonb"`
	EmbeddingValue   pgvector.Vector `gorm:"type:vector(768)"` // Gemini text-embedding-004 uses 768 dimensions
	CreatedAt        time.Time       `gorm:"autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime"`
}

func (LibraryCard) TableName() string {
	return "library_cards"
}
