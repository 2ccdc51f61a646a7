package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/duelforge/duel-server-go/internal/game/rules"
	"github.com/duelforge/duel-server-go/internal/game/watchers"
	"go.uber.org/zap"
)

// ErrMatchNotFound is returned for unknown match ids.
var ErrMatchNotFound = errors.New("match not found")

// ImageAssigner resolves card illustrations in the background. URL must
// return the fallback image until a fetch has completed.
type ImageAssigner interface {
	Assign(matchID string, cardIDs []string)
	URL(cardID string) string
	Forget(matchID string)
}

// MatchResult is the summary stored when a match ends.
type MatchResult struct {
	MatchID       string             `json:"match_id"`
	Seed          string             `json:"seed"`
	Outcome       Outcome            `json:"outcome"`
	Turn          int                `json:"turn"`
	HumanHP       int                `json:"human_hp"`
	OpponentHP    int                `json:"opponent_hp"`
	HumanStats    watchers.SideStats `json:"human_stats"`
	OpponentStats watchers.SideStats `json:"opponent_stats"`
	EventCount    int                `json:"event_count"`
	Checksum      string             `json:"checksum"`
	StartedAt     time.Time          `json:"started_at"`
	FinishedAt    time.Time          `json:"finished_at"`
}

// ResultRecorder stores finished match summaries.
type ResultRecorder interface {
	RecordResult(ctx context.Context, result MatchResult) error
}

// GameOptions customizes one match. Zero values fall back to the engine
// defaults.
type GameOptions struct {
	Seed      string
	Settings  *Settings
	HumanName string
}

type matchEntry struct {
	mu        sync.Mutex
	match     *Match
	startedAt time.Time
	finished  bool
}

// Engine owns every running match and serializes the commands of each one.
type Engine struct {
	logger   *zap.Logger
	mu       sync.RWMutex
	matches  map[string]*matchEntry
	settings Settings
	tables   *CardTables
	images   ImageAssigner
	results  ResultRecorder
	replays  *ReplayRecorder
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithSettings sets the default match constants.
func WithSettings(settings Settings) EngineOption {
	return func(e *Engine) { e.settings = settings }
}

// WithCardTables sets the tables every match rolls cards from.
func WithCardTables(tables *CardTables) EngineOption {
	return func(e *Engine) {
		if tables != nil {
			e.tables = tables
		}
	}
}

// WithImageAssigner attaches the cosmetic image store.
func WithImageAssigner(images ImageAssigner) EngineOption {
	return func(e *Engine) { e.images = images }
}

// WithResultRecorder stores a summary of every finished match.
func WithResultRecorder(results ResultRecorder) EngineOption {
	return func(e *Engine) { e.results = results }
}

// WithReplayRecorder records a transcript of every match.
func WithReplayRecorder(replays *ReplayRecorder) EngineOption {
	return func(e *Engine) { e.replays = replays }
}

// NewEngine creates a new Engine instance.
func NewEngine(logger *zap.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		logger:   logger,
		matches:  make(map[string]*matchEntry),
		settings: DefaultSettings(),
		tables:   DefaultCardTables(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewGame creates and starts a match. The returned result holds the setup
// events.
func (e *Engine) NewGame(opts GameOptions) (*MatchView, Result, error) {
	settings := e.settings
	if opts.Settings != nil {
		settings = *opts.Settings
	}

	m, res, err := NewGame(MatchConfig{
		Seed:      opts.Seed,
		Settings:  settings,
		Tables:    e.tables,
		HumanName: opts.HumanName,
	})
	if err != nil {
		return nil, Result{}, fmt.Errorf("failed to start match: %w", err)
	}

	e.mu.Lock()
	if _, exists := e.matches[m.ID()]; exists {
		e.mu.Unlock()
		return nil, Result{}, fmt.Errorf("match %s already exists", m.ID())
	}
	e.matches[m.ID()] = &matchEntry{match: m, startedAt: time.Now()}
	e.mu.Unlock()

	if e.images != nil {
		e.images.Assign(m.ID(), m.AllCardIDs())
	}
	if e.replays != nil {
		e.replays.StartRecording(m, e.tables)
	}
	if e.logger != nil {
		e.logger.Info("match started",
			zap.String("match_id", m.ID()),
			zap.String("seed", m.Seed()),
			zap.Int("deck_size", settings.DeckSize),
		)
	}

	view := m.View(rules.SideHuman, e.imageLookup())
	return &view, res, nil
}

// Execute applies one command to a match. Refusals are reported in the
// Result; errors are reserved for unknown matches and malformed commands.
func (e *Engine) Execute(ctx context.Context, matchID string, cmd Command) (Result, error) {
	entry, err := e.lookup(matchID)
	if err != nil {
		return Result{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	res, err := entry.match.Apply(cmd)
	if err != nil {
		return Result{}, fmt.Errorf("match %s: %w", matchID, err)
	}
	if !res.Accepted {
		if e.logger != nil {
			e.logger.Debug("command refused",
				zap.String("match_id", matchID),
				zap.String("command", string(cmd.Type)),
				zap.String("side", cmd.Side.String()),
				zap.String("reason", string(res.Reason)),
			)
		}
		return res, nil
	}

	if e.replays != nil {
		e.replays.RecordCommand(matchID, cmd)
	}
	if e.logger != nil {
		e.logger.Debug("command applied",
			zap.String("match_id", matchID),
			zap.String("command", string(cmd.Type)),
			zap.Int("events", len(res.Events)),
		)
	}

	if entry.match.IsLocked() && !entry.finished {
		entry.finished = true
		e.finish(ctx, entry)
	}
	return res, nil
}

func (e *Engine) finish(ctx context.Context, entry *matchEntry) {
	m := entry.match
	result := MatchResult{
		MatchID:       m.ID(),
		Seed:          m.Seed(),
		Outcome:       m.Outcome(),
		Turn:          m.Turn(),
		HumanHP:       m.HP(rules.SideHuman),
		OpponentHP:    m.HP(rules.SideOpponent),
		HumanStats:    m.Stats(rules.SideHuman),
		OpponentStats: m.Stats(rules.SideOpponent),
		EventCount:    len(m.log),
		Checksum:      m.Checksum(),
		StartedAt:     entry.startedAt,
		FinishedAt:    time.Now(),
	}

	if e.logger != nil {
		e.logger.Info("match finished",
			zap.String("match_id", result.MatchID),
			zap.String("outcome", string(result.Outcome)),
			zap.Int("turn", result.Turn),
			zap.Int("human_hp", result.HumanHP),
			zap.Int("opponent_hp", result.OpponentHP),
		)
	}

	if e.results != nil {
		if err := e.results.RecordResult(ctx, result); err != nil && e.logger != nil {
			e.logger.Warn("failed to record match result",
				zap.String("match_id", result.MatchID),
				zap.Error(err),
			)
		}
	}
	if e.replays != nil {
		if err := e.replays.FinishRecording(m); err != nil && e.logger != nil {
			e.logger.Warn("failed to finish replay",
				zap.String("match_id", result.MatchID),
				zap.Error(err),
			)
		}
	}
}

// View returns the match as seen by viewer.
func (e *Engine) View(matchID string, viewer rules.Side) (*MatchView, error) {
	entry, err := e.lookup(matchID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	view := entry.match.View(viewer, e.imageLookup())
	return &view, nil
}

// Events returns the events of a match after sequence number since.
func (e *Engine) Events(matchID string, since int) ([]rules.Event, error) {
	entry, err := e.lookup(matchID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	return entry.match.Events(since), nil
}

// Checksum returns the current state hash of a match.
func (e *Engine) Checksum(matchID string) (string, error) {
	entry, err := e.lookup(matchID)
	if err != nil {
		return "", err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	return entry.match.Checksum(), nil
}

// EndGame drops a match and its cosmetic and replay state.
func (e *Engine) EndGame(matchID string) error {
	e.mu.Lock()
	_, exists := e.matches[matchID]
	delete(e.matches, matchID)
	e.mu.Unlock()

	if !exists {
		return fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	if e.images != nil {
		e.images.Forget(matchID)
	}
	if e.replays != nil {
		e.replays.ClearReplay(matchID)
	}
	if e.logger != nil {
		e.logger.Debug("match removed", zap.String("match_id", matchID))
	}
	return nil
}

// MatchCount returns the number of live matches.
func (e *Engine) MatchCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.matches)
}

func (e *Engine) lookup(matchID string) (*matchEntry, error) {
	e.mu.RLock()
	entry, exists := e.matches[matchID]
	e.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	return entry, nil
}

func (e *Engine) imageLookup() ImageLookup {
	if e.images == nil {
		return nil
	}
	return e.images.URL
}
