package domain

import (
	"testing"
	"time"
)

func TestCandidateStatusTransitions(t *testing.T) {
	statuses := []CandidateStatus{CandidatePending, CandidateAccepted, CandidateRejected, CandidateExpired}

	allowed := map[CandidateStatus]map[CandidateStatus]bool{
		CandidatePending:  {CandidateAccepted: true, CandidateRejected: true, CandidateExpired: true},
		CandidateRejected: {CandidateAccepted: true},
		CandidateAccepted: {},
		CandidateExpired:  {},
	}

	for _, from := range statuses {
		for _, to := range statuses {
			got := from.CanTransition(to)
			want := allowed[from][to]
			if got != want {
				t.Fatalf("CanTransition(%s -> %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestCandidateStatusTerminal(t *testing.T) {
	if CandidatePending.Terminal() {
		t.Fatalf("pending must not be terminal")
	}
	for _, s := range []CandidateStatus{CandidateAccepted, CandidateRejected, CandidateExpired} {
		if !s.Terminal() {
			t.Fatalf("%s must be terminal", s)
		}
	}
}

func TestEffectiveStatusDerivesExpiry(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	c := &MatchCandidate{
		Status:    CandidatePending,
		ExpiresAt: now.Add(-time.Minute),
	}
	if got := c.EffectiveStatus(now); got != CandidateExpired {
		t.Fatalf("expected expired past window, got %s", got)
	}

	c.ExpiresAt = now.Add(time.Minute)
	if got := c.EffectiveStatus(now); got != CandidatePending {
		t.Fatalf("expected pending inside window, got %s", got)
	}

	// Resolved candidates never flip to expired on read.
	c.Status = CandidateAccepted
	c.ExpiresAt = now.Add(-time.Hour)
	if got := c.EffectiveStatus(now); got != CandidateAccepted {
		t.Fatalf("accepted must stay accepted, got %s", got)
	}
}

func TestMutualConsent(t *testing.T) {
	yes := func(user string) *Consent { return &Consent{UserID: user, Response: true} }
	no := func(user string) *Consent { return &Consent{UserID: user, Response: false} }

	cases := []struct {
		name     string
		consents []*Consent
		want     bool
	}{
		{"no rows", nil, false},
		{"single yes", []*Consent{yes("a")}, false},
		{"both yes", []*Consent{yes("a"), yes("b")}, true},
		{"one no", []*Consent{yes("a"), no("b")}, false},
		{"both no", []*Consent{no("a"), no("b")}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MutualConsent(tc.consents); got != tc.want {
				t.Fatalf("MutualConsent = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNormalizePair(t *testing.T) {
	lo, hi := NormalizePair("b", "a")
	if lo != "a" || hi != "b" {
		t.Fatalf("expected (a,b), got (%s,%s)", lo, hi)
	}
	lo, hi = NormalizePair("a", "b")
	if lo != "a" || hi != "b" {
		t.Fatalf("expected (a,b), got (%s,%s)", lo, hi)
	}
}

func TestCandidateOtherUser(t *testing.T) {
	c := &MatchCandidate{UserA: "a", UserB: "b"}
	if other, ok := c.OtherUser("a"); !ok || other != "b" {
		t.Fatalf("expected b, got %s (%v)", other, ok)
	}
	if other, ok := c.OtherUser("b"); !ok || other != "a" {
		t.Fatalf("expected a, got %s (%v)", other, ok)
	}
	if _, ok := c.OtherUser("c"); ok {
		t.Fatalf("stranger must not resolve")
	}
}
