package store

// Candidate is a Library-collection match: one versioned manual proposed
// as the answer source for a query.
type Candidate struct {
	DocumentID       string  `json:"document_id"` // content hash of the source file
	DisplayName      string  `json:"display_name"`
	FamilyID         string  `json:"family_id"` // logical family ignoring version/year tokens
	Year             int     `json:"year"`
	VersionLabel     string  `json:"version_label"`
	IsCurrentVersion bool    `json:"is_current_version"`
	RelevanceScore   float64 `json:"relevance_score"` // raw retrieval score
	RerankScore      float64 `json:"rerank_score"`    // signed logit, higher = more relevant
	Summary          string  `json:"summary"`
	SourcePath       string  `json:"source_path"`
}

// Evidence is a Content-collection match used to answer a query.
type Evidence struct {
	Text        string  `json:"text"`
	Page        int     `json:"page"`
	Section     string  `json:"section"` // hierarchical heading path
	ChunkType   string  `json:"chunk_type"`
	RerankScore float64 `json:"rerank_score"`
}

// Session is the per-conversation state held in memory.
type Session struct {
	ID      string `json:"id"`
	State   string `json:"state"`
	Profile string `json:"profile"` // answer style only, never routing

	// THE WORKBENCH (manual currently being read)
	ActiveDocument *Candidate `json:"active_document"`

	// THE WAITING ROOM (proposed but not yet confirmed)
	PendingCandidate *Candidate `json:"pending_candidate"`

	// Circuit breaker for stuck conversations
	FailedAttempts int `json:"failed_attempts"`

	LastQuery string `json:"last_query"`
}

const (
	StateExploring            = "EXPLORING"
	StateAwaitingConfirmation = "AWAITING_CONFIRMATION"
	StateDeepReading          = "DEEP_READING"

	ProfileAdmin     = "ADMIN"
	ProfileTechnical = "TECHNICAL"

	ChunkTypeText  = "texto"
	ChunkTypeTable = "tabla"
	ChunkTypeImage = "imagen_descrita"
)
