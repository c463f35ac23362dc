package query

import (
	"context"
	"time"

	"github.com/moai-app/moai-backend/internal/domain"
	"github.com/moai-app/moai-backend/internal/repository"
)

// QueryUseCase is the read surface of the engine: pending slates and
// mutual-consent status. It never mutates anything.
type QueryUseCase struct {
	candidateRepo repository.CandidateRepository
	consentRepo   repository.ConsentRepository
	now           func() time.Time
}

func NewQueryUseCase(
	candidateRepo repository.CandidateRepository,
	consentRepo repository.ConsentRepository,
) *QueryUseCase {
	return &QueryUseCase{
		candidateRepo: candidateRepo,
		consentRepo:   consentRepo,
		now:           time.Now,
	}
}

// PendingCandidates lists the user's open introductions, newest first.
// Expiry is applied at read time, so a stale pending row never leaks out.
func (uc *QueryUseCase) PendingCandidates(ctx context.Context, userID string) ([]*domain.MatchCandidate, error) {
	now := uc.now()
	candidates, err := uc.candidateRepo.ListPending(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	pending := make([]*domain.MatchCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.EffectiveStatus(now) == domain.CandidatePending {
			pending = append(pending, c)
		}
	}
	return pending, nil
}

// MutualStatus reports whether both parties of a candidate have said yes.
// The caller must be a party to the candidate.
func (uc *QueryUseCase) MutualStatus(ctx context.Context, candidateID, userID string) (bool, error) {
	candidate, err := uc.candidateRepo.GetByID(ctx, candidateID)
	if err != nil {
		return false, err
	}
	if !candidate.HasUser(userID) {
		return false, domain.ErrConsentNotAllowed
	}

	consents, err := uc.consentRepo.ListByCandidate(ctx, candidateID)
	if err != nil {
		return false, err
	}
	return domain.MutualConsent(consents), nil
}
