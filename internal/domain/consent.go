package domain

import "time"

// Consent is one party's latest answer to a candidate. Re-submitting
// overwrites the previous answer (upsert on candidate_id+user_id).
type Consent struct {
	CandidateID string    `json:"candidate_id" db:"candidate_id"`
	UserID      string    `json:"user_id" db:"user_id"`
	Response    bool      `json:"response" db:"response"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// MutualConsent reports whether both parties of a candidate have said yes.
// It requires at least two consent rows and every one of them true.
func MutualConsent(consents []*Consent) bool {
	if len(consents) < 2 {
		return false
	}
	for _, c := range consents {
		if !c.Response {
			return false
		}
	}
	return true
}
