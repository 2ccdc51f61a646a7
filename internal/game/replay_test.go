package game

import (
	"bytes"
	"errors"
	"testing"

	"github.com/duelforge/duel-server-go/internal/game/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// recordedMatch plays a seeded match to the end, recording every accepted
// command.
func recordedMatch(t *testing.T) (*Match, *Replay) {
	t.Helper()
	m := newTestMatch(t)
	replay := NewReplay(m.ID(), m.Seed(), m.Settings(), DefaultCardTables())

	exec := func(cmd Command) bool {
		res, err := m.Apply(cmd)
		require.NoError(t, err)
		if res.Accepted {
			replay.RecordCommand(cmd)
		}
		return res.Accepted
	}
	autoplay(t, exec, func() MatchView { return m.View(rules.SideHuman, nil) })

	replay.Finish(m.Checksum(), m.Outcome())
	return m, replay
}

func TestReplayRebuildMatchesRecordedMatch(t *testing.T) {
	m, replay := recordedMatch(t)
	require.Greater(t, replay.Size(), 0)
	assert.NotEqual(t, OutcomeNone, replay.Outcome)

	rebuilt, err := replay.Rebuild()
	require.NoError(t, err)
	assert.Equal(t, m.Checksum(), rebuilt.Checksum())
	assert.Equal(t, m.Outcome(), rebuilt.Outcome())
	assert.Equal(t, m.Events(0), rebuilt.Events(0))
}

func TestReplayRebuildDetectsDivergence(t *testing.T) {
	_, replay := recordedMatch(t)
	replay.Checksum = "not-the-checksum"

	_, err := replay.Rebuild()
	assert.Error(t, err)
}

func TestReplayRebuildRejectsRefusedCommand(t *testing.T) {
	m := newTestMatch(t)
	replay := NewReplay(m.ID(), m.Seed(), m.Settings(), nil)
	replay.RecordCommand(Command{Type: CommandEndTurn, Side: rules.SideOpponent})

	_, err := replay.Rebuild()
	assert.Error(t, err)
}

func TestReplayPlayback(t *testing.T) {
	replay := NewReplay("m1", "seed", DefaultSettings(), nil)
	replay.RecordCommand(Command{Type: CommandDrawCard, Side: rules.SideHuman})
	replay.RecordCommand(Command{Type: CommandEndTurn, Side: rules.SideHuman})

	replay.Start()
	first, ok := replay.Next()
	require.True(t, ok)
	assert.Equal(t, CommandDrawCard, first.Type)
	second, ok := replay.Next()
	require.True(t, ok)
	assert.Equal(t, CommandEndTurn, second.Type)
	_, ok = replay.Next()
	assert.False(t, ok)

	replay.Start()
	again, ok := replay.Next()
	require.True(t, ok)
	assert.Equal(t, first, again)
}

// shortWriter accepts the first write and fails every later one.
type shortWriter struct {
	writes int
}

func (w *shortWriter) Write(p []byte) (int, error) {
	w.writes++
	if w.writes > 1 {
		return 0, errors.New("disk full")
	}
	return len(p), nil
}

func TestReplayEncodeReportsFlushFailure(t *testing.T) {
	_, replay := recordedMatch(t)

	var buf bytes.Buffer
	require.NoError(t, replay.encode(&buf))
	assert.NotZero(t, buf.Len())

	err := replay.encode(&shortWriter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestReplaySaveAndLoad(t *testing.T) {
	m, replay := recordedMatch(t)
	dir := t.TempDir()

	require.NoError(t, replay.SaveToFile(dir))

	loaded, err := LoadReplayFromFile(dir, m.ID())
	require.NoError(t, err)
	assert.Equal(t, replay.MatchID, loaded.MatchID)
	assert.Equal(t, replay.Seed, loaded.Seed)
	assert.Equal(t, replay.Settings, loaded.Settings)
	assert.Equal(t, replay.Commands, loaded.Commands)
	assert.Equal(t, replay.Checksum, loaded.Checksum)
	assert.Equal(t, replay.Outcome, loaded.Outcome)

	rebuilt, err := loaded.Rebuild()
	require.NoError(t, err)
	assert.Equal(t, m.Checksum(), rebuilt.Checksum())

	_, err = LoadReplayFromFile(dir, "missing")
	assert.Error(t, err)
}

func TestReplayRecorder(t *testing.T) {
	dir := t.TempDir()
	rr := NewReplayRecorder(zaptest.NewLogger(t), dir)
	m := newTestMatch(t)

	assert.False(t, rr.IsRecording(m.ID()))
	rr.StartRecording(m, DefaultCardTables())
	assert.True(t, rr.IsRecording(m.ID()))

	cmd := Command{Type: CommandDrawCard, Side: rules.SideHuman}
	require.True(t, m.DrawCard(rules.SideHuman).Accepted)
	rr.RecordCommand(m.ID(), cmd)
	rr.RecordCommand("unknown", cmd)

	replay, ok := rr.GetReplay(m.ID())
	require.True(t, ok)
	assert.Equal(t, 1, replay.Size())

	require.NoError(t, rr.FinishRecording(m))
	loaded, err := rr.LoadReplay(m.ID())
	require.NoError(t, err)
	assert.Equal(t, []Command{cmd}, loaded.Commands)
	assert.Equal(t, m.Checksum(), loaded.Checksum)

	rr.ClearReplay(m.ID())
	assert.False(t, rr.IsRecording(m.ID()))
	assert.Error(t, rr.FinishRecording(m))
}
