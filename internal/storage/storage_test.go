package storage

import (
	"path/filepath"
	"testing"

	"github.com/SeamusWaldron/cubesim/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenAppliesMigrations(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "cubesim.db")

	db, err := Open(path)
	require.NoError(t, err)
	version, err := db.CurrentVersion()
	require.NoError(t, err)
	assert.Equal(t, 1, version)
	assert.Equal(t, path, db.Path())
	require.NoError(t, db.Close())

	// Reopening must not re-run applied migrations.
	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()
	version, err = db.CurrentVersion()
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}

func TestSessionLifecycle(t *testing.T) {
	db := openTestDB(t)
	sessions := NewSessionRepository(db)

	id, err := sessions.Create("play", 25)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	s, err := sessions.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "play", s.Host)
	assert.Equal(t, 25, s.FramesPerTurn)
	assert.Nil(t, s.EndedAt)
	assert.Nil(t, s.Solved)

	require.NoError(t, sessions.End(id, true))
	s, err = sessions.Get(id)
	require.NoError(t, err)
	require.NotNil(t, s.EndedAt)
	require.NotNil(t, s.Solved)
	assert.True(t, *s.Solved)
	require.NotNil(t, s.DurationMs)
	assert.GreaterOrEqual(t, *s.DurationMs, int64(0))

	_, err = sessions.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, sessions.End("missing", false), ErrNotFound)
}

func TestMovesRoundTrip(t *testing.T) {
	db := openTestDB(t)
	sessions := NewSessionRepository(db)
	moves := NewMoveRepository(db)

	id, err := sessions.Create("run", 2)
	require.NoError(t, err)

	next, err := moves.NextIndex(id)
	require.NoError(t, err)
	assert.Equal(t, 0, next)

	recorded := []types.Move{
		{Face: types.FaceQ, Direction: types.Forward},
		{Face: types.FaceX, Direction: types.Reversed},
	}
	for i, m := range recorded {
		_, err := moves.Create(id, i, int64(i*10), m, types.SourceLive)
		require.NoError(t, err)
	}
	_, err = moves.Create(id, 0, 99, recorded[0], types.SourceLive)
	assert.Error(t, err, "duplicate index must be rejected")

	got, err := moves.GetBySession(id)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "x'", got[1].Notation)
	assert.Equal(t, "live", got[1].Source)
	for i, row := range got {
		m, err := row.ToMove()
		require.NoError(t, err)
		assert.Equal(t, recorded[i], m)
	}

	next, err = moves.NextIndex(id)
	require.NoError(t, err)
	assert.Equal(t, 2, next)

	list, err := sessions.List(10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].MoveCount)
}

func TestCreateBatchIsAtomic(t *testing.T) {
	db := openTestDB(t)
	id, err := NewSessionRepository(db).Create("serve", 25)
	require.NoError(t, err)
	moves := NewMoveRepository(db)

	err = moves.CreateBatch([]Move{
		{SessionID: id, Index: 0, Face: "q", Direction: 1, Notation: "q", Source: "live"},
		{SessionID: id, Index: 0, Face: "w", Direction: 1, Notation: "w", Source: "live"},
	})
	require.Error(t, err)

	count, err := moves.Count(id)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMovesRequireSession(t *testing.T) {
	db := openTestDB(t)
	_, err := NewMoveRepository(db).Create("nope", 0, 0, types.Move{Face: types.FaceQ, Direction: types.Forward}, types.SourceLive)
	assert.Error(t, err)
}

func TestToMoveRejectsGarbage(t *testing.T) {
	_, err := Move{Face: "p", Direction: 1}.ToMove()
	assert.ErrorIs(t, err, types.ErrInvalidMove)
	_, err = Move{Face: "q", Direction: 3}.ToMove()
	assert.ErrorIs(t, err, types.ErrInvalidMove)
}
