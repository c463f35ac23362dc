package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/moai-app/moai-backend/internal/domain"
	"github.com/moai-app/moai-backend/internal/repository"
)

type conversationRepository struct {
	db *sqlx.DB
}

func NewConversationRepository(db *sqlx.DB) repository.ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) Create(ctx context.Context, conv *domain.Conversation) error {
	if conv.ID == "" {
		conv.ID = uuid.New().String()
	}
	conv.UserA, conv.UserB = domain.NormalizePair(conv.UserA, conv.UserB)

	// The unique (user_a, user_b) constraint is the only guard against two
	// concurrent mutual-consent checks creating two conversations; losing
	// the race is reported as ErrConversationExists, never as success.
	query := `
		INSERT INTO conversations (id, user_a, user_b, ai_present, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_a, user_b) DO NOTHING
		RETURNING opened_at, last_activity_at
	`
	err := r.db.QueryRowContext(ctx, query,
		conv.ID, conv.UserA, conv.UserB, conv.AIPresent, conv.Status,
	).Scan(&conv.OpenedAt, &conv.LastActivityAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrConversationExists
		}
		return err
	}
	return nil
}

func (r *conversationRepository) GetByID(ctx context.Context, id string) (*domain.Conversation, error) {
	var conv domain.Conversation
	query := `SELECT * FROM conversations WHERE id = $1`
	err := r.db.GetContext(ctx, &conv, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, err
	}
	return &conv, nil
}

func (r *conversationRepository) GetByUsers(ctx context.Context, userA, userB string) (*domain.Conversation, error) {
	userA, userB = domain.NormalizePair(userA, userB)

	var conv domain.Conversation
	query := `SELECT * FROM conversations WHERE user_a = $1 AND user_b = $2`
	err := r.db.GetContext(ctx, &conv, query, userA, userB)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, err
	}
	return &conv, nil
}

func (r *conversationRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Conversation, error) {
	var convs []*domain.Conversation
	query := `
		SELECT * FROM conversations
		WHERE user_a = $1 OR user_b = $1
		ORDER BY last_activity_at DESC
	`
	err := r.db.SelectContext(ctx, &convs, query, userID)
	return convs, err
}

func (r *conversationRepository) AppendMessage(ctx context.Context, msg *domain.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO messages (id, conversation_id, sender_type, sender_id, text)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	err = tx.QueryRowContext(ctx, query,
		msg.ID, msg.ConversationID, msg.SenderType, msg.SenderID, msg.Text,
	).Scan(&msg.CreatedAt)
	if err != nil {
		return err
	}

	touch := `UPDATE conversations SET last_activity_at = CURRENT_TIMESTAMP WHERE id = $1`
	if _, err := tx.ExecContext(ctx, touch, msg.ConversationID); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *conversationRepository) ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]*domain.Message, error) {
	var messages []*domain.Message
	query := `
		SELECT * FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`
	err := r.db.SelectContext(ctx, &messages, query, conversationID, limit, offset)
	return messages, err
}
