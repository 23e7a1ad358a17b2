package service

import (
	"context"

	"manual-assistant-be/internal/repository/contract"
	"manual-assistant-be/pkg/llm"
	"manual-assistant-be/pkg/rag/engine"
)

// chatHistoryAdapter bridges the persisted chat history repository to the
// engine's History port.
type chatHistoryAdapter struct {
	repo contract.ChatHistoryRepository
}

func NewChatHistory(repo contract.ChatHistoryRepository) engine.History {
	return &chatHistoryAdapter{repo: repo}
}

func (a *chatHistoryAdapter) Append(ctx context.Context, sessionID, role, content string) error {
	return a.repo.Append(ctx, sessionID, role, content)
}

func (a *chatHistoryAdapter) Recent(ctx context.Context, sessionID string, n int) ([]llm.Message, error) {
	stored, err := a.repo.Recent(ctx, sessionID, n)
	if err != nil {
		return nil, err
	}
	messages := make([]llm.Message, len(stored))
	for i, m := range stored {
		messages[i] = llm.Message{Role: m.Role, Content: m.Content}
	}
	return messages, nil
}
