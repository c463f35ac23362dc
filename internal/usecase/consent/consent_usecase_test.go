package consent

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/moai-app/moai-backend/internal/domain"
)

type fakeCandidateRepo struct {
	candidates map[string]*domain.MatchCandidate
}

func (f *fakeCandidateRepo) Create(ctx context.Context, c *domain.MatchCandidate) error {
	f.candidates[c.ID] = c
	return nil
}

func (f *fakeCandidateRepo) GetByID(ctx context.Context, id string) (*domain.MatchCandidate, error) {
	if c, ok := f.candidates[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, domain.ErrCandidateNotFound
}

func (f *fakeCandidateRepo) ListPending(ctx context.Context, userID string, now time.Time) ([]*domain.MatchCandidate, error) {
	return nil, nil
}

func (f *fakeCandidateRepo) ListRecentPartnerIDs(ctx context.Context, userID string, since time.Time, excludeBatchWeek string) ([]string, error) {
	return nil, nil
}

func (f *fakeCandidateRepo) UpdateStatus(ctx context.Context, id string, status domain.CandidateStatus) error {
	c, ok := f.candidates[id]
	if !ok {
		return domain.ErrCandidateNotFound
	}
	if !c.Status.CanTransition(status) {
		return domain.ErrCandidateResolved
	}
	c.Status = status
	return nil
}

type fakeConsentRepo struct {
	rows map[string]map[string]*domain.Consent
}

func (f *fakeConsentRepo) Upsert(ctx context.Context, c *domain.Consent) error {
	if f.rows[c.CandidateID] == nil {
		f.rows[c.CandidateID] = map[string]*domain.Consent{}
	}
	f.rows[c.CandidateID][c.UserID] = c
	return nil
}

func (f *fakeConsentRepo) ListByCandidate(ctx context.Context, candidateID string) ([]*domain.Consent, error) {
	var out []*domain.Consent
	for _, c := range f.rows[candidateID] {
		out = append(out, c)
	}
	return out, nil
}

type fakeConvRepo struct {
	byPair map[string]*domain.Conversation
	msgs   map[string][]*domain.Message
	nextID int
}

func pairKey(a, b string) string {
	a, b = domain.NormalizePair(a, b)
	return a + "|" + b
}

func (f *fakeConvRepo) Create(ctx context.Context, conv *domain.Conversation) error {
	key := pairKey(conv.UserA, conv.UserB)
	if _, ok := f.byPair[key]; ok {
		return domain.ErrConversationExists
	}
	f.nextID++
	conv.ID = fmt.Sprintf("conv-%d", f.nextID)
	conv.UserA, conv.UserB = domain.NormalizePair(conv.UserA, conv.UserB)
	f.byPair[key] = conv
	return nil
}

func (f *fakeConvRepo) GetByID(ctx context.Context, id string) (*domain.Conversation, error) {
	for _, conv := range f.byPair {
		if conv.ID == id {
			return conv, nil
		}
	}
	return nil, domain.ErrConversationNotFound
}

func (f *fakeConvRepo) GetByUsers(ctx context.Context, userA, userB string) (*domain.Conversation, error) {
	if conv, ok := f.byPair[pairKey(userA, userB)]; ok {
		return conv, nil
	}
	return nil, domain.ErrConversationNotFound
}

func (f *fakeConvRepo) ListByUser(ctx context.Context, userID string) ([]*domain.Conversation, error) {
	var out []*domain.Conversation
	for _, conv := range f.byPair {
		if conv.HasUser(userID) {
			out = append(out, conv)
		}
	}
	return out, nil
}

func (f *fakeConvRepo) AppendMessage(ctx context.Context, msg *domain.Message) error {
	f.msgs[msg.ConversationID] = append(f.msgs[msg.ConversationID], msg)
	return nil
}

func (f *fakeConvRepo) ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]*domain.Message, error) {
	return f.msgs[conversationID], nil
}

type fakeOpener struct {
	text  string
	err   error
	calls int
}

func (f *fakeOpener) GenerateOpener(ctx context.Context, candidate *domain.MatchCandidate) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type consentFixture struct {
	uc         *ConsentUseCase
	candidates *fakeCandidateRepo
	consents   *fakeConsentRepo
	convs      *fakeConvRepo
	opener     *fakeOpener
	now        time.Time
}

func newConsentFixture(t *testing.T) *consentFixture {
	t.Helper()
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	f := &consentFixture{
		candidates: &fakeCandidateRepo{candidates: map[string]*domain.MatchCandidate{}},
		consents:   &fakeConsentRepo{rows: map[string]map[string]*domain.Consent{}},
		convs:      &fakeConvRepo{byPair: map[string]*domain.Conversation{}, msgs: map[string][]*domain.Message{}},
		opener:     &fakeOpener{text: "Hey Alice and Bob, you both love hiking!"},
		now:        now,
	}
	f.uc = NewConsentUseCase(f.candidates, f.consents, f.convs, f.opener, time.Second)
	f.uc.now = func() time.Time { return f.now }
	return f
}

func (f *consentFixture) addCandidate(id, userA, userB string) *domain.MatchCandidate {
	c := &domain.MatchCandidate{
		ID:        id,
		BatchWeek: "2026-08-23",
		UserA:     userA,
		UserB:     userB,
		Score:     0.58,
		Reasons:   domain.MatchReasons{Overlaps: []string{"share hobbies"}, Complement: "complementary personalities"},
		Status:    domain.CandidatePending,
		CreatedAt: f.now.Add(-time.Hour),
		ExpiresAt: f.now.Add(5 * 24 * time.Hour),
	}
	f.candidates.candidates[id] = c
	return c
}

func TestRecordConsentSingleYesIsNotMutual(t *testing.T) {
	f := newConsentFixture(t)
	f.addCandidate("c1", "alice", "bob")

	result, err := f.uc.RecordConsent(context.Background(), "c1", "alice", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Mutual || result.Conversation != nil {
		t.Fatalf("one yes must not be mutual: %+v", result)
	}
	if f.candidates.candidates["c1"].Status != domain.CandidatePending {
		t.Fatalf("candidate must stay pending, got %s", f.candidates.candidates["c1"].Status)
	}
	if len(f.convs.byPair) != 0 {
		t.Fatalf("no conversation expected yet")
	}
}

func TestRecordConsentMutualYesCreatesConversation(t *testing.T) {
	f := newConsentFixture(t)
	f.addCandidate("c1", "alice", "bob")

	if _, err := f.uc.RecordConsent(context.Background(), "c1", "alice", true); err != nil {
		t.Fatalf("first consent: %v", err)
	}
	result, err := f.uc.RecordConsent(context.Background(), "c1", "bob", true)
	if err != nil {
		t.Fatalf("second consent: %v", err)
	}

	if !result.Mutual || result.Conversation == nil {
		t.Fatalf("expected mutual with conversation, got %+v", result)
	}
	if f.candidates.candidates["c1"].Status != domain.CandidateAccepted {
		t.Fatalf("candidate must be accepted, got %s", f.candidates.candidates["c1"].Status)
	}

	msgs := f.convs.msgs[result.Conversation.ID]
	if len(msgs) != 1 {
		t.Fatalf("expected exactly one opener message, got %d", len(msgs))
	}
	if msgs[0].SenderType != domain.SenderAI || msgs[0].Text != f.opener.text {
		t.Fatalf("unexpected opener message: %+v", msgs[0])
	}
	if f.opener.calls != 1 {
		t.Fatalf("opener generated %d times, want 1", f.opener.calls)
	}
}

func TestRecordConsentNoRejectsRow(t *testing.T) {
	f := newConsentFixture(t)
	f.addCandidate("c1", "alice", "bob")

	result, err := f.uc.RecordConsent(context.Background(), "c1", "alice", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Mutual {
		t.Fatalf("a no can never be mutual")
	}
	if f.candidates.candidates["c1"].Status != domain.CandidateRejected {
		t.Fatalf("candidate must be rejected, got %s", f.candidates.candidates["c1"].Status)
	}

	// The other party's yes cannot resurrect the pair while the no stands.
	result, err = f.uc.RecordConsent(context.Background(), "c1", "bob", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Mutual || len(f.convs.byPair) != 0 {
		t.Fatalf("a standing no must block the conversation")
	}
}

func TestRecordConsentNoThenYesFlip(t *testing.T) {
	f := newConsentFixture(t)
	f.addCandidate("c1", "alice", "bob")

	if _, err := f.uc.RecordConsent(context.Background(), "c1", "bob", true); err != nil {
		t.Fatalf("bob consent: %v", err)
	}
	if _, err := f.uc.RecordConsent(context.Background(), "c1", "alice", false); err != nil {
		t.Fatalf("alice no: %v", err)
	}

	result, err := f.uc.RecordConsent(context.Background(), "c1", "alice", true)
	if err != nil {
		t.Fatalf("alice flip: %v", err)
	}
	if !result.Mutual || result.Conversation == nil {
		t.Fatalf("a flip to yes before expiry must complete the match, got %+v", result)
	}
	if f.candidates.candidates["c1"].Status != domain.CandidateAccepted {
		t.Fatalf("candidate must be accepted after flip, got %s", f.candidates.candidates["c1"].Status)
	}
}

func TestRecordConsentExactlyOneConversation(t *testing.T) {
	f := newConsentFixture(t)
	f.addCandidate("c1", "alice", "bob")

	if _, err := f.uc.RecordConsent(context.Background(), "c1", "alice", true); err != nil {
		t.Fatalf("alice consent: %v", err)
	}
	first, err := f.uc.RecordConsent(context.Background(), "c1", "bob", true)
	if err != nil {
		t.Fatalf("bob consent: %v", err)
	}

	// Double submissions from both parties after the match completed.
	for _, user := range []string{"alice", "bob", "alice"} {
		again, err := f.uc.RecordConsent(context.Background(), "c1", user, true)
		if err != nil {
			t.Fatalf("repeat consent from %s: %v", user, err)
		}
		if !again.Mutual || again.Conversation.ID != first.Conversation.ID {
			t.Fatalf("repeat consent must return the existing conversation")
		}
	}

	if len(f.convs.byPair) != 1 {
		t.Fatalf("expected exactly one conversation, got %d", len(f.convs.byPair))
	}
	if got := len(f.convs.msgs[first.Conversation.ID]); got != 1 {
		t.Fatalf("expected exactly one opener, got %d messages", got)
	}
	if f.opener.calls != 1 {
		t.Fatalf("opener generated %d times, want 1", f.opener.calls)
	}
}

func TestRecordConsentMirroredCandidateReusesConversation(t *testing.T) {
	f := newConsentFixture(t)
	f.addCandidate("c1", "alice", "bob")
	f.addCandidate("c2", "bob", "alice")

	if _, err := f.uc.RecordConsent(context.Background(), "c1", "alice", true); err != nil {
		t.Fatalf("c1 alice: %v", err)
	}
	first, err := f.uc.RecordConsent(context.Background(), "c1", "bob", true)
	if err != nil {
		t.Fatalf("c1 bob: %v", err)
	}

	// The mirrored directed row completes later; the pair still gets the
	// one conversation created for c1.
	if _, err := f.uc.RecordConsent(context.Background(), "c2", "bob", true); err != nil {
		t.Fatalf("c2 bob: %v", err)
	}
	second, err := f.uc.RecordConsent(context.Background(), "c2", "alice", true)
	if err != nil {
		t.Fatalf("c2 alice: %v", err)
	}

	if second.Conversation == nil || second.Conversation.ID != first.Conversation.ID {
		t.Fatalf("mirrored candidate must reuse the pair's conversation")
	}
	if len(f.convs.byPair) != 1 {
		t.Fatalf("expected one conversation for the pair, got %d", len(f.convs.byPair))
	}
	if f.opener.calls != 1 {
		t.Fatalf("expected a single opener for the pair, got %d", f.opener.calls)
	}
}

func TestRecordConsentOpenerFailureFallsBack(t *testing.T) {
	f := newConsentFixture(t)
	f.opener.err = errors.New("model unavailable")
	f.addCandidate("c1", "alice", "bob")

	if _, err := f.uc.RecordConsent(context.Background(), "c1", "alice", true); err != nil {
		t.Fatalf("alice consent: %v", err)
	}
	result, err := f.uc.RecordConsent(context.Background(), "c1", "bob", true)
	if err != nil {
		t.Fatalf("generation failure must not fail the match: %v", err)
	}

	msgs := f.convs.msgs[result.Conversation.ID]
	if len(msgs) != 1 || msgs[0].Text != FallbackOpener {
		t.Fatalf("expected fallback opener, got %+v", msgs)
	}
}

func TestRecordConsentNilGeneratorUsesFallback(t *testing.T) {
	f := newConsentFixture(t)
	f.uc.opener = nil
	f.addCandidate("c1", "alice", "bob")

	if _, err := f.uc.RecordConsent(context.Background(), "c1", "alice", true); err != nil {
		t.Fatalf("alice consent: %v", err)
	}
	result, err := f.uc.RecordConsent(context.Background(), "c1", "bob", true)
	if err != nil {
		t.Fatalf("bob consent: %v", err)
	}

	msgs := f.convs.msgs[result.Conversation.ID]
	if len(msgs) != 1 || msgs[0].Text != FallbackOpener {
		t.Fatalf("expected fallback opener, got %+v", msgs)
	}
}

func TestRecordConsentExpiredCandidate(t *testing.T) {
	f := newConsentFixture(t)
	c := f.addCandidate("c1", "alice", "bob")
	c.ExpiresAt = f.now.Add(-time.Minute)

	_, err := f.uc.RecordConsent(context.Background(), "c1", "alice", true)
	if !errors.Is(err, domain.ErrCandidateResolved) {
		t.Fatalf("expected ErrCandidateResolved for an expired candidate, got %v", err)
	}
}

func TestRecordConsentStrangerRejected(t *testing.T) {
	f := newConsentFixture(t)
	f.addCandidate("c1", "alice", "bob")

	_, err := f.uc.RecordConsent(context.Background(), "c1", "mallory", true)
	if !errors.Is(err, domain.ErrConsentNotAllowed) {
		t.Fatalf("expected ErrConsentNotAllowed, got %v", err)
	}
	if len(f.consents.rows["c1"]) != 0 {
		t.Fatalf("a stranger's response must not be recorded")
	}
}

func TestRecordConsentUnknownCandidate(t *testing.T) {
	f := newConsentFixture(t)

	_, err := f.uc.RecordConsent(context.Background(), "missing", "alice", true)
	if !errors.Is(err, domain.ErrCandidateNotFound) {
		t.Fatalf("expected ErrCandidateNotFound, got %v", err)
	}
}
