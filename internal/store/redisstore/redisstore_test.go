package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/pathwise/internal/curriculum"
)

func openTestClient(t *testing.T, maxAttempts int) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := Open(context.Background(), Options{Addr: mr.Addr(), Prefix: "pw:", MaxAttempts: maxAttempts}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestOpenRequiresAddr(t *testing.T) {
	_, err := Open(context.Background(), Options{}, nil)
	assert.Error(t, err)
}

func TestSnapshotRoundTrip(t *testing.T) {
	c, mr := openTestClient(t, 0)
	g := c.Sessions("u1")
	ctx := context.Background()

	snap, err := g.Load(ctx, "u1/optics")
	require.NoError(t, err)
	assert.Nil(t, snap)

	graph := curriculum.New()
	graph.Load(
		[]curriculum.Node{{ID: "A", Label: "Rays"}, {ID: "B", Label: "Lenses"}},
		[]curriculum.Edge{{Source: "A", Target: "B"}},
		"Optics", "Graduate",
	)
	graph.MarkCompleted("A")
	require.NoError(t, g.Save(ctx, "u1/optics", graph.Snapshot()))
	assert.True(t, mr.Exists("pw:snapshot:u1/optics"))

	snap, err = g.Load(ctx, "u1/optics")
	require.NoError(t, err)
	require.NotNil(t, snap)
	restored := curriculum.FromSnapshot(*snap)
	assert.Equal(t, graph.RenderGraphDescription(), restored.RenderGraphDescription())
}

func TestAttemptsNewestFirstAndCapped(t *testing.T) {
	c, _ := openTestClient(t, 3)
	g := c.Sessions("u1")
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, node := range []string{"A", "B", "C", "D"} {
		require.NoError(t, g.AppendAttempt(ctx, curriculum.AttemptRecord{
			SessionKey: "u1/optics",
			NodeID:     node,
			Topic:      "Optics",
			Outcome:    curriculum.OutcomePass,
			Score:      0.8,
			Timestamp:  base.Add(time.Duration(i) * time.Second),
		}))
	}

	got, err := g.RecentAttempts(ctx, "Optics", 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"D", "C", "B"}, []string{got[0].NodeID, got[1].NodeID, got[2].NodeID})
	assert.NotEmpty(t, got[0].ID)
	assert.True(t, got[0].Timestamp.Equal(base.Add(3*time.Second)))

	two, err := g.RecentAttempts(ctx, "Optics", 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
}

func TestAttemptsScopedToLearner(t *testing.T) {
	c, _ := openTestClient(t, 0)
	ctx := context.Background()

	require.NoError(t, c.Sessions("alice").AppendAttempt(ctx, curriculum.AttemptRecord{
		NodeID: "A", Topic: "Optics", Outcome: curriculum.OutcomeFail, Score: 0.1,
	}))

	got, err := c.Sessions("bob").RecentAttempts(ctx, "Optics", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAppendAttemptRejectsUnknownOutcome(t *testing.T) {
	c, _ := openTestClient(t, 0)
	err := c.Sessions("u1").AppendAttempt(context.Background(), curriculum.AttemptRecord{Topic: "Optics", Outcome: "SKIP"})
	assert.Error(t, err)
}

func TestDeleteSession(t *testing.T) {
	c, mr := openTestClient(t, 0)
	g := c.Sessions("u1")
	ctx := context.Background()

	graph := curriculum.New()
	graph.Load([]curriculum.Node{{ID: "A", Label: "Rays"}}, nil, "Optics", "Graduate")
	require.NoError(t, g.Save(ctx, "u1/optics", graph.Snapshot()))
	require.NoError(t, g.AppendAttempt(ctx, curriculum.AttemptRecord{
		SessionKey: "u1/optics", NodeID: "A", Topic: "Optics", Outcome: curriculum.OutcomePass, Score: 1,
	}))

	deleted, err := g.DeleteSession(ctx, "u1/optics")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.False(t, mr.Exists("pw:snapshot:u1/optics"))
	assert.False(t, mr.Exists("pw:attempts:u1:Optics"))

	deleted, err = g.DeleteSession(ctx, "u1/optics")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestListSessionsScopedToLearner(t *testing.T) {
	c, mr := openTestClient(t, 0)
	ada := c.Sessions("ada")
	ctx := context.Background()

	save := func(g *Gateway, key, topic string) {
		graph := curriculum.New()
		graph.Load([]curriculum.Node{{ID: "A", Label: "Rays"}}, nil, topic, "Graduate")
		require.NoError(t, g.Save(ctx, key, graph.Snapshot()))
	}
	save(ada, "ada/optics", "Optics")
	save(c.Sessions("bob"), "bob/optics", "Optics")
	time.Sleep(2 * time.Millisecond)
	save(ada, "ada/acoustics", "Acoustics")

	infos, err := ada.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "ada/acoustics", infos[0].Key)
	assert.Equal(t, "Acoustics", infos[0].Topic)
	assert.Equal(t, "ada/optics", infos[1].Key)
	assert.True(t, mr.Exists("pw:sessions:ada"))

	deleted, err := ada.DeleteSession(ctx, "ada/acoustics")
	require.NoError(t, err)
	assert.True(t, deleted)

	infos, err = ada.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "ada/optics", infos[0].Key)
}
