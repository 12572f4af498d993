package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshharrison/ganttloom/internal/graph"
)

func snapshot(t *testing.T, ids ...string) Snapshot {
	t.Helper()
	var tasks []graph.Task
	for _, id := range ids {
		tasks = append(tasks, graph.Task{ID: id, Name: id, Section: "gc8", Duration: 1})
	}
	g, err := graph.New(tasks)
	require.NoError(t, err)
	return Snapshot{Graph: g, Source: "test"}
}

func TestApply_DiscardsStaleTicket(t *testing.T) {
	s := New()
	first := s.Begin()
	second := s.Begin()
	assert.Greater(t, second.Generation, first.Generation)
	assert.NotEqual(t, first.ID, second.ID)

	require.NoError(t, s.Apply(second, snapshot(t, "new")))

	err := s.Apply(first, snapshot(t, "old"))
	assert.ErrorIs(t, err, ErrStale)

	cur, err := s.Current()
	require.NoError(t, err)
	_, ok := cur.Graph.FindByID("new")
	assert.True(t, ok, "newer snapshot must survive a late stale result")
	assert.Equal(t, LoadApplied, s.LastLoad().Status)
	assert.Equal(t, 1, s.LastLoad().Tasks)
}

func TestFail_KeepsPreviousSnapshot(t *testing.T) {
	s := New()
	require.NoError(t, s.Reload(context.Background(), func(context.Context) (Snapshot, error) {
		return snapshot(t, "a"), nil
	}))

	boom := errors.New("export unavailable")
	err := s.Reload(context.Background(), func(context.Context) (Snapshot, error) {
		return Snapshot{}, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, s.LastError(), boom)
	assert.Equal(t, LoadFailed, s.LastLoad().Status)

	g := s.Graph()
	require.NotNil(t, g)
	_, ok := g.FindByID("a")
	assert.True(t, ok)
}

func TestCurrent_BeforeFirstLoad(t *testing.T) {
	s := New()
	assert.Nil(t, s.Graph())

	_, err := s.Current()
	assert.ErrorIs(t, err, ErrNotLoaded)

	boom := errors.New("headers missing")
	s.Fail(s.Begin(), boom)
	_, err = s.Current()
	assert.ErrorIs(t, err, ErrNotLoaded)
	assert.ErrorIs(t, err, boom)
}

func TestReload_LatestWins(t *testing.T) {
	s := New()
	release := make(chan struct{})
	started := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- s.Reload(context.Background(), func(context.Context) (Snapshot, error) {
			close(started)
			<-release
			return snapshot(t, "slow"), nil
		})
	}()
	<-started

	require.NoError(t, s.Reload(context.Background(), func(context.Context) (Snapshot, error) {
		return snapshot(t, "fast"), nil
	}))
	close(release)

	assert.ErrorIs(t, <-done, ErrStale)
	_, ok := s.Graph().FindByID("fast")
	assert.True(t, ok)
}
