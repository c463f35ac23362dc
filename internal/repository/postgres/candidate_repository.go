package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/moai-app/moai-backend/internal/domain"
	"github.com/moai-app/moai-backend/internal/repository"
)

type candidateRepository struct {
	db *sqlx.DB
}

func NewCandidateRepository(db *sqlx.DB) repository.CandidateRepository {
	return &candidateRepository{db: db}
}

func (r *candidateRepository) Create(ctx context.Context, candidate *domain.MatchCandidate) error {
	if candidate.ID == "" {
		candidate.ID = uuid.New().String()
	}

	// ON CONFLICT DO NOTHING + RETURNING: a duplicate batch pair produces
	// no row, which we surface as ErrCandidateExists for the caller to
	// treat as already-done.
	query := `
		INSERT INTO match_candidates
			(id, batch_week, user_a, user_b, score, overlaps, complement, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_a, user_b, batch_week) DO NOTHING
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		candidate.ID, candidate.BatchWeek, candidate.UserA, candidate.UserB,
		candidate.Score, pq.Array(candidate.Reasons.Overlaps),
		candidate.Reasons.Complement, candidate.Status, candidate.ExpiresAt,
	).Scan(&candidate.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrCandidateExists
		}
		return err
	}
	return nil
}

func (r *candidateRepository) GetByID(ctx context.Context, id string) (*domain.MatchCandidate, error) {
	query := `
		SELECT id, batch_week, user_a, user_b, score, overlaps, complement,
		       status, expires_at, created_at
		FROM match_candidates WHERE id = $1
	`
	candidate, err := scanCandidate(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCandidateNotFound
		}
		return nil, err
	}
	return candidate, nil
}

func (r *candidateRepository) ListPending(ctx context.Context, userID string, now time.Time) ([]*domain.MatchCandidate, error) {
	query := `
		SELECT id, batch_week, user_a, user_b, score, overlaps, complement,
		       status, expires_at, created_at
		FROM match_candidates
		WHERE (user_a = $1 OR user_b = $1)
		  AND status = 'pending'
		  AND expires_at >= $2
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []*domain.MatchCandidate
	for rows.Next() {
		candidate, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, candidate)
	}
	return candidates, rows.Err()
}

func (r *candidateRepository) ListRecentPartnerIDs(ctx context.Context, userID string, since time.Time, excludeBatchWeek string) ([]string, error) {
	var ids []string
	query := `
		SELECT DISTINCT CASE WHEN user_a = $1 THEN user_b ELSE user_a END
		FROM match_candidates
		WHERE (user_a = $1 OR user_b = $1)
		  AND created_at >= $2
		  AND batch_week <> $3
	`
	err := r.db.SelectContext(ctx, &ids, query, userID, since, excludeBatchWeek)
	return ids, err
}

func (r *candidateRepository) UpdateStatus(ctx context.Context, id string, status domain.CandidateStatus) error {
	// The WHERE guard restricts the update to statuses the state machine
	// admits as sources, so concurrent resolvers are first-writer-wins and
	// a lost race reports ErrCandidateResolved.
	var from []string
	for _, s := range []domain.CandidateStatus{
		domain.CandidatePending, domain.CandidateAccepted,
		domain.CandidateRejected, domain.CandidateExpired,
	} {
		if s.CanTransition(status) {
			from = append(from, string(s))
		}
	}
	if len(from) == 0 {
		return domain.ErrInvalidTransition
	}

	query := `UPDATE match_candidates SET status = $1 WHERE id = $2 AND status = ANY($3)`
	result, err := r.db.ExecContext(ctx, query, status, id, pq.Array(from))
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrCandidateResolved
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCandidate(row rowScanner) (*domain.MatchCandidate, error) {
	var candidate domain.MatchCandidate
	err := row.Scan(
		&candidate.ID, &candidate.BatchWeek, &candidate.UserA, &candidate.UserB,
		&candidate.Score, pq.Array(&candidate.Reasons.Overlaps),
		&candidate.Reasons.Complement, &candidate.Status,
		&candidate.ExpiresAt, &candidate.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &candidate, nil
}

type consentRepository struct {
	db *sqlx.DB
}

func NewConsentRepository(db *sqlx.DB) repository.ConsentRepository {
	return &consentRepository{db: db}
}

func (r *consentRepository) Upsert(ctx context.Context, consent *domain.Consent) error {
	query := `
		INSERT INTO consents (candidate_id, user_id, response)
		VALUES ($1, $2, $3)
		ON CONFLICT (candidate_id, user_id) DO UPDATE SET
			response = EXCLUDED.response,
			created_at = CURRENT_TIMESTAMP
		RETURNING created_at
	`
	return r.db.QueryRowContext(ctx, query,
		consent.CandidateID, consent.UserID, consent.Response,
	).Scan(&consent.CreatedAt)
}

func (r *consentRepository) ListByCandidate(ctx context.Context, candidateID string) ([]*domain.Consent, error) {
	var consents []*domain.Consent
	query := `
		SELECT candidate_id, user_id, response, created_at
		FROM consents WHERE candidate_id = $1
	`
	err := r.db.SelectContext(ctx, &consents, query, candidateID)
	return consents, err
}
