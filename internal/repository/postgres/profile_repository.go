package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/moai-app/moai-backend/internal/domain"
	"github.com/moai-app/moai-backend/internal/repository"
)

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) UpsertProfile(ctx context.Context, profile *domain.Profile) error {
	query := `
		INSERT INTO profiles (user_id, name, city, lat, lng, radius_km, is_active, is_paused)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			name = EXCLUDED.name,
			city = EXCLUDED.city,
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			radius_km = EXCLUDED.radius_km,
			is_active = EXCLUDED.is_active,
			is_paused = EXCLUDED.is_paused,
			updated_at = CURRENT_TIMESTAMP
		RETURNING created_at, updated_at
	`
	return r.db.QueryRowContext(ctx, query,
		profile.UserID, profile.Name, profile.City, profile.Lat, profile.Lng,
		profile.RadiusKm, profile.IsActive, profile.IsPaused,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)
}

func (r *profileRepository) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	var profile domain.Profile
	query := `SELECT * FROM profiles WHERE user_id = $1`
	err := r.db.GetContext(ctx, &profile, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) UpsertPreferences(ctx context.Context, prefs *domain.PreferenceSet) error {
	slots, err := json.Marshal(prefs.AvailabilitySlots)
	if err != nil {
		return fmt.Errorf("failed to encode availability slots: %w", err)
	}

	query := `
		INSERT INTO preference_sets (user_id, languages, availability_slots, reminder_opt_in)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			languages = EXCLUDED.languages,
			availability_slots = EXCLUDED.availability_slots,
			reminder_opt_in = EXCLUDED.reminder_opt_in,
			updated_at = CURRENT_TIMESTAMP
		RETURNING updated_at
	`
	return r.db.QueryRowContext(ctx, query,
		prefs.UserID, pq.Array(prefs.Languages), slots, prefs.ReminderOptIn,
	).Scan(&prefs.UpdatedAt)
}

func (r *profileRepository) GetPreferences(ctx context.Context, userID string) (*domain.PreferenceSet, error) {
	var prefs domain.PreferenceSet
	var slots []byte
	query := `
		SELECT languages, availability_slots, reminder_opt_in, updated_at
		FROM preference_sets WHERE user_id = $1
	`
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		pq.Array(&prefs.Languages), &slots, &prefs.ReminderOptIn, &prefs.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	prefs.UserID = userID
	if len(slots) > 0 {
		if err := json.Unmarshal(slots, &prefs.AvailabilitySlots); err != nil {
			return nil, fmt.Errorf("failed to decode availability slots: %w", err)
		}
	}
	return &prefs, nil
}

func (r *profileRepository) UpsertIntake(ctx context.Context, intake *domain.IntakeProfile) error {
	query := `
		INSERT INTO intake_profiles (user_id, hobbies, topics, life_stage, embed_vector, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			hobbies = EXCLUDED.hobbies,
			topics = EXCLUDED.topics,
			life_stage = EXCLUDED.life_stage,
			embed_vector = EXCLUDED.embed_vector,
			completed_at = EXCLUDED.completed_at,
			updated_at = CURRENT_TIMESTAMP
		RETURNING updated_at
	`
	return r.db.QueryRowContext(ctx, query,
		intake.UserID, pq.Array(intake.Hobbies), pq.Array(intake.Topics),
		intake.LifeStage, pq.Array(intake.EmbedVector), intake.CompletedAt,
	).Scan(&intake.UpdatedAt)
}

func (r *profileRepository) GetIntake(ctx context.Context, userID string) (*domain.IntakeProfile, error) {
	var intake domain.IntakeProfile
	query := `
		SELECT hobbies, topics, life_stage, embed_vector, completed_at, updated_at
		FROM intake_profiles WHERE user_id = $1
	`
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		pq.Array(&intake.Hobbies), pq.Array(&intake.Topics), &intake.LifeStage,
		pq.Array(&intake.EmbedVector), &intake.CompletedAt, &intake.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	intake.UserID = userID
	return &intake, nil
}

func (r *profileRepository) GetMatchInput(ctx context.Context, userID string) (*domain.MatchInput, error) {
	input := &domain.MatchInput{}

	profile, err := r.GetProfile(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrProfileNotFound) {
		return nil, err
	}
	input.Profile = profile

	intake, err := r.GetIntake(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrProfileNotFound) {
		return nil, err
	}
	input.Intake = intake

	prefs, err := r.GetPreferences(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrProfileNotFound) {
		return nil, err
	}
	input.Prefs = prefs

	return input, nil
}

func (r *profileRepository) ListMatchablePool(ctx context.Context, excludeUserID string) ([]*domain.MatchInput, error) {
	query := `
		SELECT p.user_id, p.name, p.city, p.lat, p.lng, p.radius_km,
		       p.is_active, p.is_paused, p.created_at, p.updated_at,
		       i.hobbies, i.topics, i.life_stage, i.embed_vector, i.completed_at, i.updated_at,
		       s.languages, s.availability_slots, s.reminder_opt_in, s.updated_at
		FROM profiles p
		JOIN intake_profiles i ON i.user_id = p.user_id
		JOIN preference_sets s ON s.user_id = p.user_id
		WHERE p.is_active = true AND p.is_paused = false AND p.user_id <> $1
		ORDER BY p.user_id
	`
	rows, err := r.db.QueryContext(ctx, query, excludeUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pool []*domain.MatchInput
	for rows.Next() {
		var (
			profile domain.Profile
			intake  domain.IntakeProfile
			prefs   domain.PreferenceSet
			slots   []byte
		)
		err := rows.Scan(
			&profile.UserID, &profile.Name, &profile.City, &profile.Lat, &profile.Lng,
			&profile.RadiusKm, &profile.IsActive, &profile.IsPaused,
			&profile.CreatedAt, &profile.UpdatedAt,
			pq.Array(&intake.Hobbies), pq.Array(&intake.Topics), &intake.LifeStage,
			pq.Array(&intake.EmbedVector), &intake.CompletedAt, &intake.UpdatedAt,
			pq.Array(&prefs.Languages), &slots, &prefs.ReminderOptIn, &prefs.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		intake.UserID = profile.UserID
		prefs.UserID = profile.UserID
		if len(slots) > 0 {
			if err := json.Unmarshal(slots, &prefs.AvailabilitySlots); err != nil {
				return nil, fmt.Errorf("failed to decode availability slots for %s: %w", profile.UserID, err)
			}
		}
		pool = append(pool, &domain.MatchInput{Profile: &profile, Intake: &intake, Prefs: &prefs})
	}
	return pool, rows.Err()
}

func (r *profileRepository) ListMatchableUserIDs(ctx context.Context) ([]string, error) {
	var ids []string
	query := `
		SELECT user_id FROM profiles
		WHERE is_active = true AND is_paused = false
		ORDER BY user_id
	`
	err := r.db.SelectContext(ctx, &ids, query)
	return ids, err
}
