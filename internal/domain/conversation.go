package domain

import "time"

type ConversationStatus string

const (
	ConversationActive   ConversationStatus = "active"
	ConversationArchived ConversationStatus = "archived"
	ConversationBlocked  ConversationStatus = "blocked"
)

// Conversation is created exactly once per mutually-consented pair. The pair
// is stored normalized (UserA < UserB) so the unique constraint collapses the
// two directed candidate rows into one conversation.
type Conversation struct {
	ID             string             `json:"id" db:"id"`
	UserA          string             `json:"user_a" db:"user_a"`
	UserB          string             `json:"user_b" db:"user_b"`
	AIPresent      bool               `json:"ai_present" db:"ai_present"`
	Status         ConversationStatus `json:"status" db:"status"`
	OpenedAt       time.Time          `json:"opened_at" db:"opened_at"`
	LastActivityAt time.Time          `json:"last_activity_at" db:"last_activity_at"`
}

func (c *Conversation) HasUser(userID string) bool {
	return c.UserA == userID || c.UserB == userID
}

// NormalizePair orders two user IDs for the conversations unique constraint.
func NormalizePair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}

type SenderType string

const (
	SenderUser SenderType = "user"
	SenderAI   SenderType = "ai"
)

// Message is an append-only log entry in a conversation.
type Message struct {
	ID             string     `json:"id" db:"id"`
	ConversationID string     `json:"conversation_id" db:"conversation_id"`
	SenderType     SenderType `json:"sender_type" db:"sender_type"`
	SenderID       *string    `json:"sender_id,omitempty" db:"sender_id"`
	Text           string     `json:"text" db:"text"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}
