package matching

import (
	"fmt"
	"math"

	"github.com/moai-app/moai-backend/internal/domain"
)

// Sub-similarity weights. They sum to 1; the embedding term contributes 0
// when either party lacks a vector.
const (
	weightLanguages    = 0.2
	weightHobbies      = 0.3
	weightEmbedding    = 0.3
	weightAvailability = 0.2
)

// Disclosure thresholds control which overlap labels are surfaced to users.
// They gate the reasons text only, never the numeric score.
const (
	discloseLanguages    = 0.0
	discloseHobbies      = 0.3
	discloseEmbedding    = 0.5
	discloseAvailability = 0.5
)

const (
	maxDistancePenalty = 0.3
	penaltyPerKm       = 1.0 / 10.0
)

// Result is the scorer output for one candidate pair.
type Result struct {
	Score   float64
	Reasons domain.MatchReasons
}

// Score computes the compatibility of a pair. It is a pure function of its
// two inputs: same inputs, same output.
func Score(a, b *domain.MatchInput) Result {
	distance := HaversineKm(a.Profile.Lat, a.Profile.Lng, b.Profile.Lat, b.Profile.Lng)

	// Hard gate: out of range for either party means no match at all,
	// regardless of everything else.
	if distance > a.Profile.RadiusKm || distance > b.Profile.RadiusKm {
		return Result{
			Score:   0,
			Reasons: domain.MatchReasons{Overlaps: []string{}, Complement: "Too far apart"},
		}
	}

	distancePenalty := math.Min(distance*penaltyPerKm, maxDistancePenalty)

	languageOverlap := Jaccard(a.Prefs.Languages, b.Prefs.Languages)
	hobbyOverlap := Jaccard(a.Intake.Hobbies, b.Intake.Hobbies)

	embeddingSimilarity := 0.0
	hasEmbeddings := len(a.Intake.EmbedVector) > 0 && len(b.Intake.EmbedVector) > 0
	if hasEmbeddings {
		embeddingSimilarity = Cosine(a.Intake.EmbedVector, b.Intake.EmbedVector)
	}

	availabilityOverlap := Jaccard(a.Prefs.MarkedSlots(), b.Prefs.MarkedSlots())

	overlaps := []string{}
	if languageOverlap > discloseLanguages {
		overlaps = append(overlaps, "speak common languages")
	}
	if hobbyOverlap > discloseHobbies {
		overlaps = append(overlaps, "share hobbies")
	}
	if hasEmbeddings && embeddingSimilarity > discloseEmbedding {
		overlaps = append(overlaps, "similar communication style")
	}
	if availabilityOverlap > discloseAvailability {
		overlaps = append(overlaps, "similar availability")
	}

	weighted := languageOverlap*weightLanguages +
		hobbyOverlap*weightHobbies +
		embeddingSimilarity*weightEmbedding +
		availabilityOverlap*weightAvailability

	score := math.Max(0, weighted-distancePenalty)
	score = math.Round(score*100) / 100

	return Result{
		Score: score,
		Reasons: domain.MatchReasons{
			Overlaps:   overlaps,
			Complement: complementReason(a, b),
		},
	}
}

// complementReason builds a short asymmetry-driven sentence, or a neutral
// fallback when the pair has no usable asymmetry.
func complementReason(a, b *domain.MatchInput) string {
	var parts []string

	if len(a.Intake.Hobbies) > len(b.Intake.Hobbies) {
		parts = append(parts, fmt.Sprintf("%s could introduce %s to new activities",
			a.Profile.Name, b.Profile.Name))
	} else if len(b.Intake.Hobbies) > len(a.Intake.Hobbies) {
		parts = append(parts, fmt.Sprintf("%s could introduce %s to new activities",
			b.Profile.Name, a.Profile.Name))
	}

	if a.Profile.City != nil && b.Profile.City != nil && *a.Profile.City != *b.Profile.City {
		parts = append(parts, "different neighborhoods to explore together")
	}

	if len(parts) == 0 {
		return "complementary personalities"
	}

	out := parts[0]
	for _, p := range parts[1:] {
		out += ", " + p
	}
	return out
}
