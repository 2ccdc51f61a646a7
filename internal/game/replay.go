package game

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Replay is the transcript of a match: its seed, its constants and every
// accepted command in order. Since the seed fixes all rolls, replaying the
// commands rebuilds the exact match.
type Replay struct {
	MatchID      string
	Seed         string
	Settings     Settings
	Tables       *CardTables
	Commands     []Command
	Checksum     string
	Outcome      Outcome
	CurrentIndex int
	mu           sync.RWMutex
}

// NewReplay creates an empty transcript.
func NewReplay(matchID, seed string, settings Settings, tables *CardTables) *Replay {
	return &Replay{
		MatchID:  matchID,
		Seed:     seed,
		Settings: settings,
		Tables:   tables,
		Commands: make([]Command, 0),
	}
}

// RecordCommand appends an accepted command.
func (r *Replay) RecordCommand(cmd Command) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Commands = append(r.Commands, cmd)
}

// Finish stores the final checksum and outcome.
func (r *Replay) Finish(checksum string, outcome Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Checksum = checksum
	r.Outcome = outcome
}

// Start resets playback to the first command.
func (r *Replay) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.CurrentIndex = 0
}

// Next returns the next command, or false at the end.
func (r *Replay) Next() (Command, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CurrentIndex < len(r.Commands) {
		cmd := r.Commands[r.CurrentIndex]
		r.CurrentIndex++
		return cmd, true
	}
	return Command{}, false
}

// Size returns the number of recorded commands.
func (r *Replay) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.Commands)
}

// Rebuild starts a new match from the seed and applies every command. If a
// final checksum was recorded the rebuilt match must hash to it.
func (r *Replay) Rebuild() (*Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, _, err := NewGame(MatchConfig{
		ID:       r.MatchID,
		Seed:     r.Seed,
		Settings: r.Settings,
		Tables:   r.Tables,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start replayed match: %w", err)
	}

	for i, cmd := range r.Commands {
		res, err := m.Apply(cmd)
		if err != nil {
			return nil, fmt.Errorf("command %d: %w", i, err)
		}
		if !res.Accepted {
			return nil, fmt.Errorf("command %d (%s) refused on replay: %s", i, cmd.Type, res.Reason)
		}
	}

	if r.Checksum != "" {
		if ok, err := m.VerifyChecksum(r.Checksum); err != nil {
			return nil, err
		} else if !ok {
			return nil, fmt.Errorf("replayed match %s diverged from recorded checksum", r.MatchID)
		}
	}
	return m, nil
}

// SaveToFile saves the replay to a gzipped file
func (r *Replay) SaveToFile(directory string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := os.MkdirAll(directory, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	filename := filepath.Join(directory, fmt.Sprintf("%s.replay", r.MatchID))
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := r.encode(file); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close replay file: %w", err)
	}
	return nil
}

// encode writes the gzipped metadata and body. The caller must hold r.mu.
func (r *Replay) encode(w io.Writer) error {
	gzipWriter := gzip.NewWriter(w)
	encoder := gob.NewEncoder(gzipWriter)

	metadata := replayMetadata{
		MatchID:      r.MatchID,
		Timestamp:    time.Now(),
		Version:      1,
		CommandCount: len(r.Commands),
	}
	if err := encoder.Encode(&metadata); err != nil {
		gzipWriter.Close()
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	body := replayBody{
		Seed:     r.Seed,
		Settings: r.Settings,
		Tables:   r.Tables,
		Commands: r.Commands,
		Checksum: r.Checksum,
		Outcome:  r.Outcome,
	}
	if err := encoder.Encode(&body); err != nil {
		gzipWriter.Close()
		return fmt.Errorf("failed to encode replay: %w", err)
	}

	if err := gzipWriter.Close(); err != nil {
		return fmt.Errorf("failed to flush replay: %w", err)
	}
	return nil
}

// LoadReplayFromFile loads a replay written by SaveToFile.
func LoadReplayFromFile(directory, matchID string) (*Replay, error) {
	filename := filepath.Join(directory, fmt.Sprintf("%s.replay", matchID))

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	gzipReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	decoder := gob.NewDecoder(gzipReader)

	var metadata replayMetadata
	if err := decoder.Decode(&metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	if metadata.Version != 1 {
		return nil, fmt.Errorf("unsupported replay version: %d", metadata.Version)
	}

	var body replayBody
	if err := decoder.Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode replay: %w", err)
	}
	if len(body.Commands) != metadata.CommandCount {
		return nil, fmt.Errorf("replay %s is truncated: %d of %d commands", matchID, len(body.Commands), metadata.CommandCount)
	}

	replay := NewReplay(metadata.MatchID, body.Seed, body.Settings, body.Tables)
	replay.Commands = append(replay.Commands, body.Commands...)
	replay.Checksum = body.Checksum
	replay.Outcome = body.Outcome
	return replay, nil
}

// replayMetadata contains information about a saved replay
type replayMetadata struct {
	MatchID      string
	Timestamp    time.Time
	Version      int
	CommandCount int
}

type replayBody struct {
	Seed     string
	Settings Settings
	Tables   *CardTables
	Commands []Command
	Checksum string
	Outcome  Outcome
}

// ReplayRecorder keeps the transcripts of running matches and writes them
// out when a match ends.
type ReplayRecorder struct {
	logger  *zap.Logger
	mu      sync.RWMutex
	replays map[string]*Replay
	saveDir string
}

// NewReplayRecorder creates a new replay recorder. An empty saveDir keeps
// replays in memory only.
func NewReplayRecorder(logger *zap.Logger, saveDir string) *ReplayRecorder {
	return &ReplayRecorder{
		logger:  logger,
		replays: make(map[string]*Replay),
		saveDir: saveDir,
	}
}

// StartRecording begins recording a match.
func (rr *ReplayRecorder) StartRecording(m *Match, tables *CardTables) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	rr.replays[m.ID()] = NewReplay(m.ID(), m.Seed(), m.Settings(), tables)

	if rr.logger != nil {
		rr.logger.Debug("started replay recording",
			zap.String("match_id", m.ID()),
		)
	}
}

// RecordCommand records an accepted command if the match is being recorded.
func (rr *ReplayRecorder) RecordCommand(matchID string, cmd Command) {
	rr.mu.RLock()
	replay := rr.replays[matchID]
	rr.mu.RUnlock()

	if replay == nil {
		return
	}
	replay.RecordCommand(cmd)
}

// GetReplay returns the replay for a match.
func (rr *ReplayRecorder) GetReplay(matchID string) (*Replay, bool) {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	replay, exists := rr.replays[matchID]
	return replay, exists
}

// FinishRecording seals the transcript of a finished match and saves it to
// disk when a directory is configured.
func (rr *ReplayRecorder) FinishRecording(m *Match) error {
	rr.mu.RLock()
	replay, exists := rr.replays[m.ID()]
	rr.mu.RUnlock()
	if !exists {
		return fmt.Errorf("no replay found for match %s", m.ID())
	}

	replay.Finish(m.Checksum(), m.Outcome())
	if rr.saveDir == "" {
		return nil
	}

	if err := replay.SaveToFile(rr.saveDir); err != nil {
		return fmt.Errorf("failed to save replay: %w", err)
	}

	if rr.logger != nil {
		rr.logger.Info("saved replay to disk",
			zap.String("match_id", m.ID()),
			zap.Int("command_count", replay.Size()),
			zap.String("directory", rr.saveDir),
		)
	}
	return nil
}

// LoadReplay loads a replay from disk
func (rr *ReplayRecorder) LoadReplay(matchID string) (*Replay, error) {
	replay, err := LoadReplayFromFile(rr.saveDir, matchID)
	if err != nil {
		return nil, err
	}

	if rr.logger != nil {
		rr.logger.Info("loaded replay from disk",
			zap.String("match_id", matchID),
			zap.Int("command_count", replay.Size()),
		)
	}

	return replay, nil
}

// ClearReplay removes a replay from memory without saving
func (rr *ReplayRecorder) ClearReplay(matchID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	delete(rr.replays, matchID)
}

// IsRecording returns whether a match is being recorded.
func (rr *ReplayRecorder) IsRecording(matchID string) bool {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	_, ok := rr.replays[matchID]
	return ok
}
