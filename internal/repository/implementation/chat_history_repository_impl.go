package implementation

import (
	"context"

	"manual-assistant-be/internal/model"
	"manual-assistant-be/internal/repository/contract"

	"gorm.io/gorm"
)

type ChatHistoryRepositoryImpl struct {
	db *gorm.DB
}

func NewChatHistoryRepository(db *gorm.DB) contract.ChatHistoryRepository {
	return &ChatHistoryRepositoryImpl{db: db}
}

func (r *ChatHistoryRepositoryImpl) Append(ctx context.Context, sessionId, role, content string) error {
	msg := &model.ChatMessage{
		SessionId: sessionId,
		Role:      role,
		Content:   content,
	}
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *ChatHistoryRepositoryImpl) Recent(ctx context.Context, sessionId string, n int) ([]*model.ChatMessage, error) {
	if n <= 0 {
		n = 6
	}
	var messages []*model.ChatMessage
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionId).
		Order("created_at DESC").
		Limit(n).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	// Reverse to chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
