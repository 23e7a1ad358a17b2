package events

import "time"

const TopicManualIngested = "manual.ingested"

// ManualIngested is published after a manual is registered in the library:
// cards and chunks are committed and the document is searchable.
type ManualIngested struct {
	DocumentID  string    `json:"document_id"`
	DisplayName string    `json:"display_name"`
	SourcePath  string    `json:"source_path"`
	ChunkCount  int       `json:"chunk_count"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func (e ManualIngested) EventType() string {
	return TopicManualIngested
}
