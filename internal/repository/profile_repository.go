package repository

import (
	"context"

	"github.com/moai-app/moai-backend/internal/domain"
)

type ProfileRepository interface {
	UpsertProfile(ctx context.Context, profile *domain.Profile) error
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
	UpsertPreferences(ctx context.Context, prefs *domain.PreferenceSet) error
	GetPreferences(ctx context.Context, userID string) (*domain.PreferenceSet, error)
	UpsertIntake(ctx context.Context, intake *domain.IntakeProfile) error
	GetIntake(ctx context.Context, userID string) (*domain.IntakeProfile, error)

	// GetMatchInput loads the full bundle for one user; missing parts are
	// returned as nil fields, not errors.
	GetMatchInput(ctx context.Context, userID string) (*domain.MatchInput, error)

	// ListMatchablePool returns the bundles of every active, unpaused user
	// except excludeUserID. Users with incomplete bundles are omitted.
	ListMatchablePool(ctx context.Context, excludeUserID string) ([]*domain.MatchInput, error)

	// ListMatchableUserIDs lists users eligible for a weekly batch run.
	ListMatchableUserIDs(ctx context.Context) ([]string, error)
}
