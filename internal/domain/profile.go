package domain

import "time"

type Profile struct {
	UserID    string    `json:"user_id" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	City      *string   `json:"city" db:"city"`
	Lat       float64   `json:"lat" db:"lat"`
	Lng       float64   `json:"lng" db:"lng"`
	RadiusKm  float64   `json:"radius_km" db:"radius_km"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	IsPaused  bool      `json:"is_paused" db:"is_paused"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Matchable reports whether the profile may appear in a candidate pool.
func (p *Profile) Matchable() bool {
	return p.IsActive && !p.IsPaused
}

type PreferenceSet struct {
	UserID            string          `json:"user_id" db:"user_id"`
	Languages         []string        `json:"languages" db:"languages"`
	AvailabilitySlots map[string]bool `json:"availability_slots" db:"availability_slots"`
	ReminderOptIn     bool            `json:"reminder_opt_in" db:"reminder_opt_in"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

// MarkedSlots returns the time-bucket keys the user has marked available.
func (p *PreferenceSet) MarkedSlots() []string {
	slots := make([]string, 0, len(p.AvailabilitySlots))
	for key, marked := range p.AvailabilitySlots {
		if marked {
			slots = append(slots, key)
		}
	}
	return slots
}

type IntakeProfile struct {
	UserID      string     `json:"user_id" db:"user_id"`
	Hobbies     []string   `json:"hobbies" db:"hobbies"`
	Topics      []string   `json:"topics" db:"topics"`
	LifeStage   *string    `json:"life_stage" db:"life_stage"`
	EmbedVector []float64  `json:"embed_vector,omitempty" db:"embed_vector"`
	CompletedAt *time.Time `json:"completed_at" db:"completed_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// Completed reports whether the questionnaire is finished and ready for matching.
func (i *IntakeProfile) Completed() bool {
	return i.CompletedAt != nil
}

// MatchInput bundles everything the scorer needs about one user.
type MatchInput struct {
	Profile *Profile
	Intake  *IntakeProfile
	Prefs   *PreferenceSet
}

// Complete reports whether all three parts are present.
func (m *MatchInput) Complete() bool {
	return m.Profile != nil && m.Intake != nil && m.Prefs != nil
}
