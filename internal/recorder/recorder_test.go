package recorder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/SeamusWaldron/cubesim"
	"github.com/SeamusWaldron/cubesim/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "rec.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRecorderWritesCompletedTurns(t *testing.T) {
	db := openDB(t)
	sf, err := NewStateFile(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)

	rec := New(db, sf, nil)
	p := cubesim.New(cubesim.WithFramesPerTurn(1), cubesim.WithObserver(rec))
	defer p.Close()

	id, err := rec.Start("test", p.FramesPerTurn())
	require.NoError(t, err)
	assert.Equal(t, StateRecording, rec.State())
	assert.Equal(t, id, sf.Snapshot().LastSessionID)

	for _, f := range []cubesim.Face{cubesim.FaceQ, cubesim.FaceW, cubesim.FaceE} {
		require.True(t, p.SubmitKey(f, false))
		p.Tick()
	}
	require.NoError(t, rec.Close())
	assert.Equal(t, StateEnded, rec.State())

	rows, err := storage.NewMoveRepository(db).GetBySession(id)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "q", rows[0].Notation)
	assert.Equal(t, "e", rows[2].Notation)
	assert.Equal(t, "live", rows[2].Source)

	s, err := storage.NewSessionRepository(db).Get(id)
	require.NoError(t, err)
	require.NotNil(t, s.Solved)
	assert.False(t, *s.Solved)
	assert.Equal(t, 3, s.MoveCount)
}

func TestRecorderIgnoresTurnsWhenIdle(t *testing.T) {
	rec := New(openDB(t), nil, nil)
	rec.TurnCompleted(cubesim.Move{Face: cubesim.FaceQ, Direction: cubesim.Forward}, cubesim.SourceLive, cubesim.SolvedTable())
	assert.Zero(t, rec.MoveCount())
	assert.ErrorIs(t, rec.Close(), ErrNotRecording)
}

func TestRecorderRejectsDoubleStart(t *testing.T) {
	rec := New(openDB(t), nil, nil)
	_, err := rec.Start("a", 25)
	require.NoError(t, err)
	_, err = rec.Start("b", 25)
	assert.Error(t, err)
	require.NoError(t, rec.Close())
}

func TestStateFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	sf, err := NewStateFile(path)
	require.NoError(t, err)

	_, ok := sf.LastDevice()
	assert.False(t, ok)

	require.NoError(t, sf.SetDBPath("/tmp/x.db"))
	require.NoError(t, sf.SetLastDevice(DeviceRef{ID: "id-1", Name: "GoCube_1"}))

	loaded, err := NewStateFile(path)
	require.NoError(t, err)
	snap := loaded.Snapshot()
	assert.Equal(t, "/tmp/x.db", snap.DBPath)
	assert.False(t, snap.UpdatedAt.IsZero())

	d, ok := loaded.LastDevice()
	require.True(t, ok)
	assert.Equal(t, DeviceRef{ID: "id-1", Name: "GoCube_1"}, d)
}

func TestStateFileWritesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	sf, err := NewStateFile(path)
	require.NoError(t, err)

	require.NoError(t, sf.SetLastSession("s-1"))
	require.NoError(t, sf.SetLastSession("s-2"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "state.json", entries[0].Name())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"last_session_id": "s-2"`)
	assert.NotContains(t, string(data), "last_device")
}

func TestStateFileSnapshotIsCopy(t *testing.T) {
	sf, err := NewStateFile(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	require.NoError(t, sf.SetLastDevice(DeviceRef{ID: "a", Name: "GoCube_A"}))

	snap := sf.Snapshot()
	snap.LastDevice.Name = "changed"

	d, _ := sf.LastDevice()
	assert.Equal(t, "GoCube_A", d.Name)
}

func TestStateFileRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := NewStateFile(path)
	assert.Error(t, err)
}
