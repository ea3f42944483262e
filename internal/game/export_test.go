package game

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExportSummary(t *testing.T) {
	file := filepath.Join(t.TempDir(), "results.txt")

	winner := "player-a"
	name := "Aurora"
	summary := DuelSummary{
		RoomCode:   "ABCDE",
		WinnerID:   &winner,
		WinnerName: &name,
		Reason:     ReasonBeam,
		Rounds: []RoundRecap{{
			RoomCode:    "ABCDE",
			RoundNumber: 1,
			TotalRounds: 3,
			Spell:       "LUMOS",
			PlayerResults: []PlayerRoundResult{
				{PlayerID: "player-a", PlayerName: "Aurora", Guess: "LUMOS", Accuracy: 1, BaseScore: 120, BonusScore: 20, TotalScore: 140, DurationMs: 1200, CumulativeScore: 140},
			},
			WinningPlayerID: &winner,
		}},
		Players: []PlayerAggregate{
			{PlayerID: "player-a", PlayerName: "Aurora", AverageAccuracy: 1, AverageDurationMs: 1200, TotalScore: 140},
		},
	}

	if err := ExportSummary(summary, file); err != nil {
		t.Fatalf("export should succeed: %v", err)
	}
	// appending a second duel must not truncate the first
	if err := ExportSummary(summary, file); err != nil {
		t.Fatalf("second export should succeed: %v", err)
	}

	b, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("should be able to read export: %v", err)
	}
	content := string(b)
	if !strings.Contains(content, "Room ABCDE") {
		t.Fatal("export missing room code")
	}
	if !strings.Contains(content, "Winner: Aurora") {
		t.Fatal("export missing winner")
	}
	if strings.Count(content, "Room ABCDE") != 2 {
		t.Fatal("export should append, not overwrite")
	}
}
