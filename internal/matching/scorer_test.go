package matching

import (
	"math"
	"reflect"
	"testing"

	"github.com/moai-app/moai-backend/internal/domain"
)

func input(name string, lat, lng, radius float64, hobbies, languages []string, slots map[string]bool, vec []float64) *domain.MatchInput {
	city := "San Francisco"
	return &domain.MatchInput{
		Profile: &domain.Profile{
			UserID:   name,
			Name:     name,
			City:     &city,
			Lat:      lat,
			Lng:      lng,
			RadiusKm: radius,
			IsActive: true,
		},
		Intake: &domain.IntakeProfile{
			UserID:      name,
			Hobbies:     hobbies,
			EmbedVector: vec,
		},
		Prefs: &domain.PreferenceSet{
			UserID:            name,
			Languages:         languages,
			AvailabilitySlots: slots,
		},
	}
}

func TestScoreHardGateTooFarApart(t *testing.T) {
	// Roughly 50 km apart, radius 15 km for A: hard gate wins over any
	// similarity.
	a := input("a", 37.7749, -122.4194, 15,
		[]string{"hiking", "cooking"}, []string{"english"},
		map[string]bool{"sat_am": true}, nil)
	b := input("b", 38.2249, -122.4194, 100,
		[]string{"hiking", "cooking"}, []string{"english"},
		map[string]bool{"sat_am": true}, nil)

	res := Score(a, b)
	if res.Score != 0 {
		t.Fatalf("expected score 0 past radius, got %v", res.Score)
	}
	if res.Reasons.Complement != "Too far apart" {
		t.Fatalf("expected 'Too far apart', got %q", res.Reasons.Complement)
	}
	if len(res.Reasons.Overlaps) != 0 {
		t.Fatalf("expected no overlaps on hard gate, got %v", res.Reasons.Overlaps)
	}
}

func TestScoreZeroDistanceNoPenalty(t *testing.T) {
	a := input("a", 37.7749, -122.4194, 15,
		[]string{"hiking"}, []string{"english"},
		map[string]bool{"sat_am": true}, nil)
	b := input("b", 37.7749, -122.4194, 15,
		[]string{"hiking"}, []string{"english"},
		map[string]bool{"sat_am": true}, nil)

	// All Jaccards are 1, embedding skipped: 0.2 + 0.3 + 0 + 0.2, no
	// distance penalty at 0 km.
	res := Score(a, b)
	if res.Score != 0.7 {
		t.Fatalf("expected 0.7, got %v", res.Score)
	}
}

func TestScoreDocumentedScenario(t *testing.T) {
	// User B ~5 km north: hobby Jaccard 3/5, shared language, 50%
	// availability overlap, no embeddings. Weighted sum
	// 0.2*1 + 0.3*0.6 + 0 + 0.2*0.5 = 0.48, penalty capped at 0.3.
	a := input("Ana", 37.7749, -122.4194, 15,
		[]string{"hiking", "cooking", "chess", "climbing"},
		[]string{"english"},
		map[string]bool{"sat_am": true, "sun_pm": true}, nil)
	b := input("Ben", 37.8199, -122.4194, 15,
		[]string{"hiking", "cooking", "chess", "pottery"},
		[]string{"english"},
		map[string]bool{"sat_am": true}, nil)

	res := Score(a, b)
	if math.Abs(res.Score-0.18) > 1e-9 {
		t.Fatalf("expected 0.18, got %v", res.Score)
	}

	wantHobbies := false
	wantLanguages := false
	for _, o := range res.Reasons.Overlaps {
		switch o {
		case "share hobbies":
			wantHobbies = true
		case "speak common languages":
			wantLanguages = true
		case "similar availability":
			t.Fatalf("availability 0.5 must not cross the >0.5 disclosure gate")
		}
	}
	if !wantHobbies || !wantLanguages {
		t.Fatalf("missing expected overlap labels, got %v", res.Reasons.Overlaps)
	}
}

func TestScoreEmbeddingContribution(t *testing.T) {
	slots := map[string]bool{"sat_am": true}
	a := input("a", 37.7749, -122.4194, 15, nil, nil, slots, []float64{1, 0})
	b := input("b", 37.7749, -122.4194, 15, nil, nil, slots, []float64{1, 0})

	// Empty hobby and language sets are neutral-positive (Jaccard 1),
	// identical vectors add the full 0.3.
	res := Score(a, b)
	if res.Score != 1.0 {
		t.Fatalf("expected 1.0, got %v", res.Score)
	}

	found := false
	for _, o := range res.Reasons.Overlaps {
		if o == "similar communication style" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected communication-style disclosure, got %v", res.Reasons.Overlaps)
	}
}

func TestScoreEmbeddingSkippedWhenMissing(t *testing.T) {
	slots := map[string]bool{"sat_am": true}
	a := input("a", 37.7749, -122.4194, 15, nil, nil, slots, []float64{1, 0})
	b := input("b", 37.7749, -122.4194, 15, nil, nil, slots, nil)

	res := Score(a, b)
	if res.Score != 0.7 {
		t.Fatalf("expected 0.7 with embedding skipped, got %v", res.Score)
	}
	for _, o := range res.Reasons.Overlaps {
		if o == "similar communication style" {
			t.Fatalf("must not disclose embedding similarity when one side lacks a vector")
		}
	}
}

func TestScoreComplementAsymmetry(t *testing.T) {
	slots := map[string]bool{"sat_am": true}
	a := input("Ana", 37.7749, -122.4194, 15,
		[]string{"hiking", "cooking", "chess"}, []string{"english"}, slots, nil)
	b := input("Ben", 37.7749, -122.4194, 15,
		[]string{"hiking"}, []string{"english"}, slots, nil)

	res := Score(a, b)
	want := "Ana could introduce Ben to new activities"
	if res.Reasons.Complement != want {
		t.Fatalf("complement = %q, want %q", res.Reasons.Complement, want)
	}
}

func TestScoreComplementFallback(t *testing.T) {
	slots := map[string]bool{"sat_am": true}
	a := input("Ana", 37.7749, -122.4194, 15, []string{"hiking"}, []string{"english"}, slots, nil)
	b := input("Ben", 37.7749, -122.4194, 15, []string{"chess"}, []string{"english"}, slots, nil)

	res := Score(a, b)
	if res.Reasons.Complement != "complementary personalities" {
		t.Fatalf("expected neutral fallback, got %q", res.Reasons.Complement)
	}
}

func TestScoreDeterministic(t *testing.T) {
	slots := map[string]bool{"sat_am": true, "sun_pm": false}
	a := input("a", 37.77, -122.41, 20, []string{"hiking", "chess"}, []string{"english", "spanish"}, slots, []float64{0.3, 0.7})
	b := input("b", 37.78, -122.42, 20, []string{"hiking"}, []string{"english"}, slots, []float64{0.4, 0.6})

	r1 := Score(a, b)
	r2 := Score(a, b)
	if r1.Score != r2.Score || !reflect.DeepEqual(r1.Reasons, r2.Reasons) {
		t.Fatalf("scoring not deterministic: %+v vs %+v", r1, r2)
	}
}
