package profile

import (
	"context"
	"fmt"
	"time"

	"github.com/moai-app/moai-backend/internal/domain"
	"github.com/moai-app/moai-backend/internal/repository"
)

type ProfileUseCase struct {
	profileRepo repository.ProfileRepository
}

func NewProfileUseCase(profileRepo repository.ProfileRepository) *ProfileUseCase {
	return &ProfileUseCase{profileRepo: profileRepo}
}

// UpsertProfileRequest carries the user-owned profile fields.
type UpsertProfileRequest struct {
	Name     string  `json:"name" binding:"required,min=1,max=100"`
	City     *string `json:"city" binding:"omitempty,max=100"`
	Lat      float64 `json:"lat" binding:"min=-90,max=90"`
	Lng      float64 `json:"lng" binding:"min=-180,max=180"`
	RadiusKm float64 `json:"radius_km" binding:"required,gt=0,max=1000"`
	IsActive *bool   `json:"is_active"`
	IsPaused *bool   `json:"is_paused"`
}

// UpsertPreferencesRequest carries the PreferenceSet fields.
type UpsertPreferencesRequest struct {
	Languages         []string        `json:"languages" binding:"omitempty,max=20"`
	AvailabilitySlots map[string]bool `json:"availability_slots"`
	ReminderOptIn     bool            `json:"reminder_opt_in"`
}

// UpsertIntakeRequest carries incremental questionnaire answers. Completed
// marks the questionnaire finished and stamps completed_at, which is what
// makes the user eligible for matching.
type UpsertIntakeRequest struct {
	Hobbies     []string  `json:"hobbies" binding:"omitempty,max=50"`
	Topics      []string  `json:"topics" binding:"omitempty,max=50"`
	LifeStage   *string   `json:"life_stage" binding:"omitempty,max=50"`
	EmbedVector []float64 `json:"embed_vector" binding:"omitempty,max=1536"`
	Completed   bool      `json:"completed"`
}

// Bundle is the full read model for one user.
type Bundle struct {
	Profile     *domain.Profile       `json:"profile"`
	Preferences *domain.PreferenceSet `json:"preferences"`
	Intake      *domain.IntakeProfile `json:"intake"`
}

func (uc *ProfileUseCase) UpsertProfile(ctx context.Context, userID string, req *UpsertProfileRequest) (*domain.Profile, error) {
	profile := &domain.Profile{
		UserID:   userID,
		Name:     req.Name,
		City:     req.City,
		Lat:      req.Lat,
		Lng:      req.Lng,
		RadiusKm: req.RadiusKm,
		IsActive: true,
	}
	if req.IsActive != nil {
		profile.IsActive = *req.IsActive
	}
	if req.IsPaused != nil {
		profile.IsPaused = *req.IsPaused
	}

	if err := uc.profileRepo.UpsertProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to upsert profile: %w", err)
	}
	return profile, nil
}

func (uc *ProfileUseCase) UpsertPreferences(ctx context.Context, userID string, req *UpsertPreferencesRequest) (*domain.PreferenceSet, error) {
	prefs := &domain.PreferenceSet{
		UserID:            userID,
		Languages:         req.Languages,
		AvailabilitySlots: req.AvailabilitySlots,
		ReminderOptIn:     req.ReminderOptIn,
	}
	if err := uc.profileRepo.UpsertPreferences(ctx, prefs); err != nil {
		return nil, fmt.Errorf("failed to upsert preferences: %w", err)
	}
	return prefs, nil
}

func (uc *ProfileUseCase) UpsertIntake(ctx context.Context, userID string, req *UpsertIntakeRequest) (*domain.IntakeProfile, error) {
	intake := &domain.IntakeProfile{
		UserID:      userID,
		Hobbies:     req.Hobbies,
		Topics:      req.Topics,
		LifeStage:   req.LifeStage,
		EmbedVector: req.EmbedVector,
	}

	// Keep an existing completion stamp on incremental updates.
	if existing, err := uc.profileRepo.GetIntake(ctx, userID); err == nil {
		intake.CompletedAt = existing.CompletedAt
	}
	if req.Completed && intake.CompletedAt == nil {
		now := time.Now()
		intake.CompletedAt = &now
	}

	if err := uc.profileRepo.UpsertIntake(ctx, intake); err != nil {
		return nil, fmt.Errorf("failed to upsert intake: %w", err)
	}
	return intake, nil
}

func (uc *ProfileUseCase) GetBundle(ctx context.Context, userID string) (*Bundle, error) {
	input, err := uc.profileRepo.GetMatchInput(ctx, userID)
	if err != nil {
		return nil, err
	}
	if input.Profile == nil {
		return nil, domain.ErrProfileNotFound
	}
	return &Bundle{
		Profile:     input.Profile,
		Preferences: input.Prefs,
		Intake:      input.Intake,
	}, nil
}
