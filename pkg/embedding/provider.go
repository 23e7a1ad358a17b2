package embedding

import "context"

// Task types understood by the Gemini API; other providers may ignore them.
const (
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
)

type Result struct {
	Values []float32 `json:"values"`
}

// Provider defines the interface for generating text embeddings.
type Provider interface {
	Generate(ctx context.Context, text string, taskType string) (*Result, error)
}
