package conversation

import (
	"context"
	"fmt"

	"github.com/moai-app/moai-backend/internal/domain"
	"github.com/moai-app/moai-backend/internal/repository"
)

type ConversationUseCase struct {
	convRepo repository.ConversationRepository
}

func NewConversationUseCase(convRepo repository.ConversationRepository) *ConversationUseCase {
	return &ConversationUseCase{convRepo: convRepo}
}

// ListMine returns the user's conversations, most recently active first.
func (uc *ConversationUseCase) ListMine(ctx context.Context, userID string) ([]*domain.Conversation, error) {
	return uc.convRepo.ListByUser(ctx, userID)
}

// Messages streams a page of the conversation log. Non-participants get
// ErrConversationNotFound rather than a hint the conversation exists.
func (uc *ConversationUseCase) Messages(ctx context.Context, conversationID, userID string, limit, offset int) ([]*domain.Message, error) {
	conv, err := uc.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasUser(userID) {
		return nil, domain.ErrConversationNotFound
	}

	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return uc.convRepo.ListMessages(ctx, conversationID, limit, offset)
}

// SendMessage appends a user message to the log and bumps the
// conversation's activity clock.
func (uc *ConversationUseCase) SendMessage(ctx context.Context, conversationID, userID, text string) (*domain.Message, error) {
	conv, err := uc.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasUser(userID) {
		return nil, domain.ErrConversationNotFound
	}
	if conv.Status != domain.ConversationActive {
		return nil, fmt.Errorf("conversation is %s", conv.Status)
	}

	msg := &domain.Message{
		ConversationID: conversationID,
		SenderType:     domain.SenderUser,
		SenderID:       &userID,
		Text:           text,
	}
	if err := uc.convRepo.AppendMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}
	return msg, nil
}
