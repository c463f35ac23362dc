package repository

import (
	"context"

	"github.com/moai-app/moai-backend/internal/domain"
)

type ConversationRepository interface {
	// Create inserts a conversation for a normalized pair. The unique pair
	// constraint makes this the race guard: a second insert for the same
	// pair returns domain.ErrConversationExists.
	Create(ctx context.Context, conv *domain.Conversation) error

	GetByID(ctx context.Context, id string) (*domain.Conversation, error)

	// GetByUsers looks up the conversation for an unordered pair.
	GetByUsers(ctx context.Context, userA, userB string) (*domain.Conversation, error)

	ListByUser(ctx context.Context, userID string) ([]*domain.Conversation, error)

	// AppendMessage appends to the log and bumps last_activity_at.
	AppendMessage(ctx context.Context, msg *domain.Message) error

	ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]*domain.Message, error)
}
