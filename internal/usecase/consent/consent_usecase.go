package consent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/moai-app/moai-backend/internal/domain"
	"github.com/moai-app/moai-backend/internal/repository"
)

// FallbackOpener seeds the conversation whenever the text-generation
// collaborator fails or times out. Creation never blocks on the model.
const FallbackOpener = "Hi! You two matched! 🎉 You have some things in common and could complement each other well. Why don't you start by sharing what you're up to this week?"

// OpenerGenerator is the text-generation collaborator contract.
type OpenerGenerator interface {
	GenerateOpener(ctx context.Context, candidate *domain.MatchCandidate) (string, error)
}

type ConsentUseCase struct {
	candidateRepo repository.CandidateRepository
	consentRepo   repository.ConsentRepository
	convRepo      repository.ConversationRepository
	opener        OpenerGenerator
	openerTimeout time.Duration
	now           func() time.Time
}

func NewConsentUseCase(
	candidateRepo repository.CandidateRepository,
	consentRepo repository.ConsentRepository,
	convRepo repository.ConversationRepository,
	opener OpenerGenerator,
	openerTimeout time.Duration,
) *ConsentUseCase {
	return &ConsentUseCase{
		candidateRepo: candidateRepo,
		consentRepo:   consentRepo,
		convRepo:      convRepo,
		opener:        opener,
		openerTimeout: openerTimeout,
		now:           time.Now,
	}
}

// ConsentResult reports what one recorded response led to.
type ConsentResult struct {
	Candidate    *domain.MatchCandidate `json:"candidate"`
	Mutual       bool                   `json:"mutual"`
	Conversation *domain.Conversation   `json:"conversation,omitempty"`
}

// RecordConsent upserts one party's response and re-evaluates mutual
// consent. The mutual check runs after every individual write, so whichever
// of two near-simultaneous submissions lands second sees both rows; the
// conversation pair constraint keeps the race down to one conversation.
func (uc *ConsentUseCase) RecordConsent(ctx context.Context, candidateID, userID string, response bool) (*ConsentResult, error) {
	candidate, err := uc.candidateRepo.GetByID(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if !candidate.HasUser(userID) {
		return nil, domain.ErrConsentNotAllowed
	}

	now := uc.now()
	status := candidate.EffectiveStatus(now)
	if status == domain.CandidateExpired {
		return nil, domain.ErrCandidateResolved
	}

	// Once the pair already has a conversation, answers still upsert (the
	// row is the user's record) but can no longer change anything.
	if conv, err := uc.convRepo.GetByUsers(ctx, candidate.UserA, candidate.UserB); err == nil {
		if err := uc.consentRepo.Upsert(ctx, &domain.Consent{
			CandidateID: candidateID, UserID: userID, Response: response,
		}); err != nil {
			return nil, fmt.Errorf("failed to record consent: %w", err)
		}
		return &ConsentResult{Candidate: candidate, Mutual: true, Conversation: conv}, nil
	} else if !errors.Is(err, domain.ErrConversationNotFound) {
		return nil, err
	}

	if err := uc.consentRepo.Upsert(ctx, &domain.Consent{
		CandidateID: candidateID, UserID: userID, Response: response,
	}); err != nil {
		return nil, fmt.Errorf("failed to record consent: %w", err)
	}

	if !response {
		// A single no resolves the directed row immediately.
		if err := uc.candidateRepo.UpdateStatus(ctx, candidateID, domain.CandidateRejected); err != nil &&
			!errors.Is(err, domain.ErrCandidateResolved) {
			return nil, fmt.Errorf("failed to reject candidate: %w", err)
		}
		candidate.Status = domain.CandidateRejected
		return &ConsentResult{Candidate: candidate, Mutual: false}, nil
	}

	mutual, err := uc.CheckMutualConsent(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if !mutual {
		return &ConsentResult{Candidate: candidate, Mutual: false}, nil
	}

	// A lost accept race means the other submission got here first; fall
	// through to the conversation lookup either way.
	if err := uc.candidateRepo.UpdateStatus(ctx, candidateID, domain.CandidateAccepted); err != nil &&
		!errors.Is(err, domain.ErrCandidateResolved) {
		return nil, fmt.Errorf("failed to accept candidate: %w", err)
	}
	candidate.Status = domain.CandidateAccepted

	conv, err := uc.initiateConversation(ctx, candidate)
	if err != nil {
		return nil, err
	}
	return &ConsentResult{Candidate: candidate, Mutual: true, Conversation: conv}, nil
}

// CheckMutualConsent requires at least two consent rows for the candidate,
// all of them true.
func (uc *ConsentUseCase) CheckMutualConsent(ctx context.Context, candidateID string) (bool, error) {
	consents, err := uc.consentRepo.ListByCandidate(ctx, candidateID)
	if err != nil {
		return false, fmt.Errorf("failed to load consents: %w", err)
	}
	return domain.MutualConsent(consents), nil
}

// initiateConversation creates the conversation exactly once per pair and
// seeds it with the AI opener. Losing the insert race to the concurrent
// mutual-consent check is the already-done path: return the existing row
// and do not seed a second opener.
func (uc *ConsentUseCase) initiateConversation(ctx context.Context, candidate *domain.MatchCandidate) (*domain.Conversation, error) {
	conv := &domain.Conversation{
		UserA:     candidate.UserA,
		UserB:     candidate.UserB,
		AIPresent: true,
		Status:    domain.ConversationActive,
	}

	err := uc.convRepo.Create(ctx, conv)
	if errors.Is(err, domain.ErrConversationExists) {
		return uc.convRepo.GetByUsers(ctx, candidate.UserA, candidate.UserB)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	opener := uc.generateOpener(ctx, candidate)
	msg := &domain.Message{
		ConversationID: conv.ID,
		SenderType:     domain.SenderAI,
		Text:           opener,
	}
	if err := uc.convRepo.AppendMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to seed conversation: %w", err)
	}

	return conv, nil
}

func (uc *ConsentUseCase) generateOpener(ctx context.Context, candidate *domain.MatchCandidate) string {
	if uc.opener == nil {
		return FallbackOpener
	}

	openerCtx, cancel := context.WithTimeout(ctx, uc.openerTimeout)
	defer cancel()

	text, err := uc.opener.GenerateOpener(openerCtx, candidate)
	if err != nil {
		fmt.Printf("consent: opener generation failed for candidate %s, using fallback: %v\n", candidate.ID, err)
		return FallbackOpener
	}
	return text
}
