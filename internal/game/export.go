package game

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ExportSummary appends a finished duel to a plain-text results file.
func ExportSummary(summary DuelSummary, filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Spellcaster Duel - Room %s\n", summary.RoomCode))
	sb.WriteString(fmt.Sprintf("Finished: %s (%s)\n", time.Now().Format("2006-01-02 15:04:05"), summary.Reason))
	sb.WriteString(strings.Repeat("=", 50) + "\n")

	if summary.WinnerName != nil {
		sb.WriteString(fmt.Sprintf("Winner: %s\n", *summary.WinnerName))
	} else {
		sb.WriteString("Winner: none (tie)\n")
	}

	for _, round := range summary.Rounds {
		sb.WriteString(fmt.Sprintf("\nRound %d/%d: \"%s\"\n", round.RoundNumber, round.TotalRounds, round.Spell))
		sb.WriteString(strings.Repeat("-", 40) + "\n")
		for _, result := range round.PlayerResults {
			sb.WriteString(fmt.Sprintf("- %s: \"%s\" accuracy=%.2f base=%d bonus=%d total=%d (%.1fs)\n",
				result.PlayerName, result.Guess, result.Accuracy,
				result.BaseScore, result.BonusScore, result.TotalScore,
				float64(result.DurationMs)/1000))
		}
		if round.WinningPlayerID == nil {
			sb.WriteString("Round winner: tie\n")
		}
	}

	sb.WriteString("\nFinal standings:\n")
	for _, agg := range summary.Players {
		sb.WriteString(fmt.Sprintf("- %s: %d points (avg accuracy %.2f, avg time %.1fs)\n",
			agg.PlayerName, agg.TotalScore, agg.AverageAccuracy, agg.AverageDurationMs/1000))
	}
	sb.WriteString("\n")

	if _, err := file.WriteString(sb.String()); err != nil {
		return fmt.Errorf("failed to write to file: %w", err)
	}

	return nil
}
