package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/pathwise/internal/curriculum"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "pathwise.db"), nil)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testSnapshot(topic string, completed ...string) curriculum.Snapshot {
	g := curriculum.New()
	g.Load(
		[]curriculum.Node{{ID: "A", Label: "Basics"}, {ID: "B", Label: "Next"}},
		[]curriculum.Edge{{Source: "A", Target: "B"}},
		topic, "Undergraduate",
	)
	for _, id := range completed {
		g.MarkCompleted(id)
	}
	return g.Snapshot()
}

func TestDSN(t *testing.T) {
	assert.Equal(t,
		"file:/tmp/x.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)",
		DSN("/tmp/x.db"))
	assert.Equal(t, "file:x.db?mode=ro", DSN("file:x.db?mode=ro"))
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.db

	tests := []struct {
		pragma string
		want   string
	}{
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
		{"journal_mode", "wal"},
		{"busy_timeout", "5000"},
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	for _, table := range []string{"curriculum_snapshots", "attempts", "llm_request_events", "global_sequence"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}
}

func TestReopenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pathwise.db")
	ctx := context.Background()

	s, err := Open(ctx, path, nil)
	require.NoError(t, err)
	require.NoError(t, s.Sessions("u1", 0).Save(ctx, "k", testSnapshot("Optics", "A")))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path, nil)
	require.NoError(t, err)
	defer s.Close()

	snap, err := s.Sessions("u1", 0).Load(ctx, "k")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, []string{"A"}, snap.CompletedNodes)
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sc, err := newSequenceCounter(ctx, s.db)
	require.NoError(t, err)

	var seqs []int64
	for i := 0; i < 5; i++ {
		seq, err := sc.Next(ctx)
		require.NoError(t, err)
		seqs = append(seqs, seq)
	}

	// Monotonically increasing starting from 1.
	for i, seq := range seqs {
		assert.Equal(t, int64(i+1), seq)
	}
}

func TestSessionLoadMissing(t *testing.T) {
	s := openTestStore(t)
	snap, err := s.Sessions("u1", 0).Load(context.Background(), "nothing-here")
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestSessionSaveAndLoadLatest(t *testing.T) {
	s := openTestStore(t)
	sessions := s.Sessions("u1", 0)
	ctx := context.Background()

	require.NoError(t, sessions.Save(ctx, "k", testSnapshot("Optics")))
	require.NoError(t, sessions.Save(ctx, "k", testSnapshot("Optics", "A")))
	require.NoError(t, sessions.Save(ctx, "other", testSnapshot("Acoustics", "A", "B")))

	snap, err := sessions.Load(ctx, "k")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "Optics", snap.Topic)
	assert.Equal(t, []string{"A"}, snap.CompletedNodes)

	g := curriculum.FromSnapshot(*snap)
	st, _ := g.StatusOf("A")
	assert.Equal(t, curriculum.StatusCompleted, st)
	st, _ = g.StatusOf("B")
	assert.Equal(t, curriculum.StatusAvailable, st)
}

func TestSessionRetentionPrunes(t *testing.T) {
	s := openTestStore(t)
	sessions := s.Sessions("u1", 2)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, sessions.Save(ctx, "k", testSnapshot("Optics")))
	}
	require.NoError(t, sessions.Save(ctx, "keep-me", testSnapshot("Acoustics")))

	var n int
	require.NoError(t, s.db.QueryRow(
		"SELECT COUNT(*) FROM curriculum_snapshots WHERE session_key = ?", "k").Scan(&n))
	assert.Equal(t, 2, n)

	require.NoError(t, s.db.QueryRow(
		"SELECT COUNT(*) FROM curriculum_snapshots WHERE session_key = ?", "keep-me").Scan(&n))
	assert.Equal(t, 1, n)
}

func TestAttemptsMostRecentFirst(t *testing.T) {
	s := openTestStore(t)
	sessions := s.Sessions("u1", 0)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, node := range []string{"A", "B", "C"} {
		require.NoError(t, sessions.AppendAttempt(ctx, curriculum.AttemptRecord{
			SessionKey: "k",
			NodeID:     node,
			Topic:      "Optics",
			Outcome:    curriculum.OutcomePass,
			Score:      0.9,
			Timestamp:  base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, sessions.AppendAttempt(ctx, curriculum.AttemptRecord{
		SessionKey: "k2", NodeID: "X", Topic: "Acoustics", Outcome: curriculum.OutcomeFail, Score: 0.2,
	}))

	got, err := sessions.RecentAttempts(ctx, "Optics", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "C", got[0].NodeID)
	assert.Equal(t, "B", got[1].NodeID)
	assert.NotEmpty(t, got[0].ID)
	assert.Equal(t, base.Add(2*time.Minute), got[0].Timestamp)
	assert.True(t, got[0].Passed())

	all, err := sessions.RecentAttempts(ctx, "Optics", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestAttemptsScopedToLearner(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := curriculum.AttemptRecord{SessionKey: "k", NodeID: "A", Topic: "Optics", Outcome: curriculum.OutcomeFail, Score: 0.3}
	require.NoError(t, s.Sessions("alice", 0).AppendAttempt(ctx, rec))

	got, err := s.Sessions("bob", 0).RecentAttempts(ctx, "Optics", 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = s.Sessions("alice", 0).RecentAttempts(ctx, "Optics", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, curriculum.OutcomeFail, got[0].Outcome)
	assert.InDelta(t, 0.3, got[0].Score, 1e-9)
}

func TestAppendAttemptRejectsUnknownOutcome(t *testing.T) {
	s := openTestStore(t)
	err := s.Sessions("u1", 0).AppendAttempt(context.Background(), curriculum.AttemptRecord{
		NodeID: "A", Topic: "Optics", Outcome: "MAYBE",
	})
	assert.Error(t, err)
}

func TestDeleteSession(t *testing.T) {
	s := openTestStore(t)
	sessions := s.Sessions("u1", 0)
	ctx := context.Background()

	require.NoError(t, sessions.Save(ctx, "k", testSnapshot("Optics")))
	require.NoError(t, sessions.AppendAttempt(ctx, curriculum.AttemptRecord{
		SessionKey: "k", NodeID: "A", Topic: "Optics", Outcome: curriculum.OutcomePass, Score: 1,
	}))

	deleted, err := sessions.DeleteSession(ctx, "k")
	require.NoError(t, err)
	assert.True(t, deleted)

	snap, err := sessions.Load(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, snap)

	attempts, err := sessions.RecentAttempts(ctx, "Optics", 10)
	require.NoError(t, err)
	assert.Empty(t, attempts)

	deleted, err = sessions.DeleteSession(ctx, "k")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestListSessionsScopedToLearner(t *testing.T) {
	s := openTestStore(t)
	ada := s.Sessions("ada", 0)
	ctx := context.Background()

	require.NoError(t, ada.Save(ctx, "ada/optics", testSnapshot("Optics")))
	require.NoError(t, ada.Save(ctx, "ada/quantum_field_theory", testSnapshot("Quantum Field Theory")))
	require.NoError(t, ada.Save(ctx, "ada/optics", testSnapshot("Optics", "A")))
	require.NoError(t, s.Sessions("bob", 0).Save(ctx, "bob/optics", testSnapshot("Optics")))
	require.NoError(t, s.Sessions("adam", 0).Save(ctx, "adam/optics", testSnapshot("Optics")))

	infos, err := ada.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "ada/optics", infos[0].Key, "last saved first")
	assert.Equal(t, "Optics", infos[0].Topic)
	assert.Equal(t, "ada/quantum_field_theory", infos[1].Key)
	assert.Equal(t, "Quantum Field Theory", infos[1].Topic)
	assert.False(t, infos[0].UpdatedAt.Before(infos[1].UpdatedAt))

	none, err := s.Sessions("carol", 0).ListSessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestEventLogAppendAndQuery(t *testing.T) {
	s := openTestStore(t)
	events := s.Events()
	ctx := context.Background()

	for _, ev := range []LLMRequestEventData{
		{Provider: "mock", Model: "m1", Purpose: "graph", InputTokens: 10, OutputTokens: 20, LatencyMs: 100, Success: true},
		{Provider: "mock", Model: "m1", Purpose: "quiz", InputTokens: 5, OutputTokens: 7, LatencyMs: 50, Success: false, ErrorMessage: "boom"},
		{Provider: "mock", Model: "m2", Purpose: "quiz", InputTokens: 1, OutputTokens: 1, LatencyMs: 150, Success: true, RequestBody: "{}", ResponseBody: "{}"},
	} {
		require.NoError(t, events.AppendLLMRequest(ctx, ev))
	}

	all, err := events.QueryLLMEvents(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "m2", all[0].Model)
	assert.Greater(t, all[0].Sequence, all[1].Sequence)
	assert.Equal(t, "{}", all[0].RequestBody)

	quiz, err := events.QueryLLMEvents(ctx, QueryOpts{Purpose: "quiz", Limit: 1})
	require.NoError(t, err)
	require.Len(t, quiz, 1)
	assert.Equal(t, "m2", quiz[0].Model)

	older, err := events.QueryLLMEvents(ctx, QueryOpts{Before: all[0].Sequence})
	require.NoError(t, err)
	assert.Len(t, older, 2)

	one, err := events.GetLLMEvent(ctx, all[1].ID)
	require.NoError(t, err)
	require.NotNil(t, one)
	assert.False(t, one.Success)
	assert.Equal(t, "boom", one.ErrorMessage)

	missing, err := events.GetLLMEvent(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestEventLogUsage(t *testing.T) {
	s := openTestStore(t)
	events := s.Events()
	ctx := context.Background()

	require.NoError(t, events.AppendLLMRequest(ctx, LLMRequestEventData{Model: "m1", Purpose: "quiz", InputTokens: 10, OutputTokens: 4, LatencyMs: 100, Success: true}))
	require.NoError(t, events.AppendLLMRequest(ctx, LLMRequestEventData{Model: "m1", Purpose: "quiz", InputTokens: 20, OutputTokens: 6, LatencyMs: 300, Success: false}))
	require.NoError(t, events.AppendLLMRequest(ctx, LLMRequestEventData{Model: "m2", Purpose: "graph", InputTokens: 1, OutputTokens: 2, LatencyMs: 10, Success: true}))

	byPurpose, err := events.LLMUsageByPurpose(ctx)
	require.NoError(t, err)
	require.Len(t, byPurpose, 2)
	assert.Equal(t, PurposeUsage{Purpose: "quiz", Calls: 2, InputTokens: 30, OutputTokens: 10, AvgLatencyMs: 200, Failures: 1}, byPurpose[0])
	assert.Equal(t, "graph", byPurpose[1].Purpose)
	assert.Equal(t, 0, byPurpose[1].Failures)

	byModel, err := events.LLMUsageByModel(ctx)
	require.NoError(t, err)
	require.Len(t, byModel, 2)
	assert.Equal(t, ModelUsage{Model: "m1", Calls: 2, InputTokens: 30, OutputTokens: 10}, byModel[0])
}
