package domain

import "time"

type CandidateStatus string

const (
	CandidatePending  CandidateStatus = "pending"
	CandidateAccepted CandidateStatus = "accepted"
	CandidateRejected CandidateStatus = "rejected"
	CandidateExpired  CandidateStatus = "expired"
)

// CanTransition is the single authority on candidate status moves.
// Pending resolves to any terminal state. Rejected may still move to
// accepted: a party can flip a "no" to a "yes" while the window is open
// (the window check itself lives with the caller, which knows the clock).
// Accepted and expired admit nothing.
func (s CandidateStatus) CanTransition(next CandidateStatus) bool {
	switch s {
	case CandidatePending:
		return next == CandidateAccepted || next == CandidateRejected || next == CandidateExpired
	case CandidateRejected:
		return next == CandidateAccepted
	}
	return false
}

// Terminal reports whether the status resolves the candidate. Rejected is
// terminal for slate and cooldown purposes even though a consent flip can
// still revive it into accepted.
func (s CandidateStatus) Terminal() bool {
	return s == CandidateAccepted || s == CandidateRejected || s == CandidateExpired
}

// MatchReasons is the human-readable explanation attached to a candidate.
type MatchReasons struct {
	Overlaps   []string `json:"overlaps"`
	Complement string   `json:"complement"`
}

// MatchCandidate is one directed weekly introduction from UserA's slate.
// The same unordered pair may exist as two directed rows, one per side;
// conversations collapse them (see Conversation).
type MatchCandidate struct {
	ID        string          `json:"id" db:"id"`
	BatchWeek string          `json:"batch_week" db:"batch_week"`
	UserA     string          `json:"user_a" db:"user_a"`
	UserB     string          `json:"user_b" db:"user_b"`
	Score     float64         `json:"score" db:"score"`
	Reasons   MatchReasons    `json:"reasons"`
	Status    CandidateStatus `json:"status" db:"status"`
	ExpiresAt time.Time       `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// HasUser reports whether userID is a party to this candidate.
func (c *MatchCandidate) HasUser(userID string) bool {
	return c.UserA == userID || c.UserB == userID
}

// OtherUser returns the counterpart of userID in the pair.
func (c *MatchCandidate) OtherUser(userID string) (string, bool) {
	if c.UserA == userID {
		return c.UserB, true
	}
	if c.UserB == userID {
		return c.UserA, true
	}
	return "", false
}

// EffectiveStatus derives expiry at read time: a pending candidate past its
// window is expired without requiring a background sweep.
func (c *MatchCandidate) EffectiveStatus(now time.Time) CandidateStatus {
	if c.Status == CandidatePending && now.After(c.ExpiresAt) {
		return CandidateExpired
	}
	return c.Status
}
