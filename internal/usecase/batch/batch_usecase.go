package batch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/moai-app/moai-backend/internal/config"
	"github.com/moai-app/moai-backend/internal/domain"
	"github.com/moai-app/moai-backend/internal/matching"
	"github.com/moai-app/moai-backend/internal/repository"
)

type BatchUseCase struct {
	profileRepo   repository.ProfileRepository
	candidateRepo repository.CandidateRepository
	redisClient   *redis.Client
	cfg           config.MatchingConfig
	now           func() time.Time
}

func NewBatchUseCase(
	profileRepo repository.ProfileRepository,
	candidateRepo repository.CandidateRepository,
	redisClient *redis.Client,
	cfg config.MatchingConfig,
) *BatchUseCase {
	return &BatchUseCase{
		profileRepo:   profileRepo,
		candidateRepo: candidateRepo,
		redisClient:   redisClient,
		cfg:           cfg,
		now:           time.Now,
	}
}

// GenerateResult reports one weekly run for one user. Duplicate pairs are
// skips, not failures; failed inserts carry on to the next candidate.
type GenerateResult struct {
	BatchWeek string                  `json:"batch_week"`
	Created   []*domain.MatchCandidate `json:"created"`
	Skipped   int                      `json:"skipped"`
	Failed    []string                 `json:"failed,omitempty"`
}

type scoredCandidate struct {
	userID string
	result matching.Result
}

// GenerateWeeklyMatches scores the full eligible pool for one user and
// persists the top slate for the given batch week. batchWeek must be an
// already-normalized day key (YYYY-MM-DD); re-running for the same user and
// week is idempotent.
func (uc *BatchUseCase) GenerateWeeklyMatches(ctx context.Context, userID, batchWeek string) (*GenerateResult, error) {
	now := uc.now()
	result := &GenerateResult{BatchWeek: batchWeek}

	if uc.alreadyRan(ctx, userID, batchWeek) {
		return result, nil
	}

	me, err := uc.profileRepo.GetMatchInput(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load match input: %w", err)
	}
	if !me.Complete() || !me.Intake.Completed() {
		return nil, domain.ErrMissingPrerequisite
	}

	pool, err := uc.profileRepo.ListMatchablePool(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate pool: %w", err)
	}

	var scored []scoredCandidate
	for _, peer := range pool {
		if !peer.Complete() || !peer.Intake.Completed() {
			continue
		}
		res := matching.Score(me, peer)
		if res.Score <= uc.cfg.MinScore {
			continue
		}
		scored = append(scored, scoredCandidate{userID: peer.Profile.UserID, result: res})
	}

	// Score is the ordering authority; candidate ID breaks ties so runs
	// are reproducible.
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].result.Score != scored[j].result.Score {
			return scored[i].result.Score > scored[j].result.Score
		}
		return scored[i].userID < scored[j].userID
	})

	// Cooldown looks at prior weeks only. This week's own rows must reach
	// the insert and skip on the unique constraint, so a re-run reproduces
	// the same slate instead of backfilling new partners.
	cooldownSince := now.Add(-time.Duration(uc.cfg.CooldownWeeks) * 7 * 24 * time.Hour)
	recentIDs, err := uc.candidateRepo.ListRecentPartnerIDs(ctx, userID, cooldownSince, batchWeek)
	if err != nil {
		return nil, fmt.Errorf("failed to load cooldown window: %w", err)
	}
	recent := make(map[string]struct{}, len(recentIDs))
	for _, id := range recentIDs {
		recent[id] = struct{}{}
	}

	expiresAt := now.Add(uc.cfg.CandidateTTL)
	taken := 0
	for _, sc := range scored {
		if taken >= uc.cfg.SlateSize {
			break
		}
		if _, seen := recent[sc.userID]; seen {
			continue
		}
		taken++

		candidate := &domain.MatchCandidate{
			BatchWeek: batchWeek,
			UserA:     userID,
			UserB:     sc.userID,
			Score:     sc.result.Score,
			Reasons:   sc.result.Reasons,
			Status:    domain.CandidatePending,
			ExpiresAt: expiresAt,
		}

		err := uc.candidateRepo.Create(ctx, candidate)
		switch {
		case errors.Is(err, domain.ErrCandidateExists):
			// Already issued this week, e.g. a re-run of the batch.
			result.Skipped++
		case err != nil:
			fmt.Printf("batch: candidate insert failed for %s -> %s: %v\n", userID, sc.userID, err)
			result.Failed = append(result.Failed, sc.userID)
		default:
			result.Created = append(result.Created, candidate)
		}
	}

	uc.markRan(ctx, userID, batchWeek)
	return result, nil
}

// alreadyRan checks the Redis run marker. Redis is an optimization only;
// the (user_a, user_b, batch_week) constraint stays authoritative, so a
// missing or unreachable Redis just means a slower idempotent re-run.
func (uc *BatchUseCase) alreadyRan(ctx context.Context, userID, batchWeek string) bool {
	if uc.redisClient == nil {
		return false
	}
	n, err := uc.redisClient.Exists(ctx, runMarkerKey(userID, batchWeek)).Result()
	if err != nil {
		return false
	}
	return n > 0
}

// markRan is written only after a completed run, so a failed run (for
// example a missing prerequisite) stays retryable immediately.
func (uc *BatchUseCase) markRan(ctx context.Context, userID, batchWeek string) {
	if uc.redisClient == nil {
		return
	}
	uc.redisClient.SetNX(ctx, runMarkerKey(userID, batchWeek), 1, 8*24*time.Hour)
}

func runMarkerKey(userID, batchWeek string) string {
	return fmt.Sprintf("batch:%s:%s", batchWeek, userID)
}

// BatchWeekKey truncates t to day granularity in UTC, the normalized batch
// key the scheduler passes around.
func BatchWeekKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
