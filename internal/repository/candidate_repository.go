package repository

import (
	"context"
	"time"

	"github.com/moai-app/moai-backend/internal/domain"
)

type CandidateRepository interface {
	// Create inserts a candidate row. A duplicate of (user_a, user_b,
	// batch_week) returns domain.ErrCandidateExists; callers treat that as
	// an already-done skip, not a failure.
	Create(ctx context.Context, candidate *domain.MatchCandidate) error

	GetByID(ctx context.Context, id string) (*domain.MatchCandidate, error)

	// ListPending returns unexpired pending candidates where the user is a
	// party, in either direction, newest first.
	ListPending(ctx context.Context, userID string, now time.Time) ([]*domain.MatchCandidate, error)

	// ListRecentPartnerIDs returns every user the given user was paired
	// with (either direction, any status) since the cutoff. Rows belonging
	// to excludeBatchWeek are left out: the current week's own slate must
	// not cool itself down, or a re-run would backfill different partners
	// instead of skipping on the uniqueness constraint.
	ListRecentPartnerIDs(ctx context.Context, userID string, since time.Time, excludeBatchWeek string) ([]string, error)

	// UpdateStatus applies a state-machine transition; it only succeeds
	// when the stored status admits the move, so concurrent resolvers
	// cannot overwrite each other and the loser gets
	// domain.ErrCandidateResolved.
	UpdateStatus(ctx context.Context, id string, status domain.CandidateStatus) error
}

type ConsentRepository interface {
	// Upsert records a response, overwriting the user's previous answer
	// for the same candidate.
	Upsert(ctx context.Context, consent *domain.Consent) error
	ListByCandidate(ctx context.Context, candidateID string) ([]*domain.Consent, error)
}
