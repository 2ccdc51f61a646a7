package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/duelforge/duel-server-go/internal/game"
	"github.com/duelforge/duel-server-go/internal/game/rules"
	"go.uber.org/zap"
)

func main() {
	dir := flag.String("dir", "replays", "directory holding saved replays")
	matchID := flag.String("match", "", "id of the match to replay")
	asJSON := flag.Bool("json", false, "print events as JSON lines")
	flag.Parse()

	if *matchID == "" {
		fmt.Fprintln(os.Stderr, "usage: duel-replay -dir DIR -match MATCH_ID [-json]")
		os.Exit(2)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	recorder := game.NewReplayRecorder(logger, *dir)
	replay, err := recorder.LoadReplay(*matchID)
	if err != nil {
		logger.Fatal("failed to load replay", zap.Error(err))
	}

	m, err := replay.Rebuild()
	if err != nil {
		logger.Fatal("replay did not reproduce the match", zap.Error(err))
	}

	encoder := json.NewEncoder(os.Stdout)
	for _, evt := range m.Events(0) {
		if *asJSON {
			if err := encoder.Encode(evt); err != nil {
				logger.Fatal("failed to write event", zap.Error(err))
			}
			continue
		}
		fmt.Println(describe(evt))
	}

	logger.Info("replay verified",
		zap.String("match_id", replay.MatchID),
		zap.String("seed", replay.Seed),
		zap.Int("commands", replay.Size()),
		zap.String("outcome", string(m.Outcome())),
		zap.String("checksum", m.Checksum()),
	)
}

func describe(evt rules.Event) string {
	line := fmt.Sprintf("%4d %-9s %-19s", evt.Seq, evt.Side, evt.Type)
	if evt.SourceID != "" {
		line += " src=" + evt.SourceID
	}
	if evt.TargetID != "" {
		line += " dst=" + evt.TargetID
	}
	if evt.Amount != 0 {
		line += fmt.Sprintf(" amount=%d", evt.Amount)
	}
	if evt.Data != "" {
		line += " " + evt.Data
	}
	if evt.Description != "" {
		line += " (" + evt.Description + ")"
	}
	return line
}
