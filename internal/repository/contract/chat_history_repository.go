package contract

import (
	"context"

	"manual-assistant-be/internal/model"
)

type ChatHistoryRepository interface {
	Append(ctx context.Context, sessionId, role, content string) error
	// Recent returns the last n messages in chronological order.
	Recent(ctx context.Context, sessionId string, n int) ([]*model.ChatMessage, error)
}
