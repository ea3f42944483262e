package game

import (
	"math"
	"strings"
)

const (
	maxBaseScore  = 120
	maxBonusScore = 20
	bonusFullMs   = 3000
	bonusZeroMs   = 7000
	maxDurationMs = 60000
)

// RoundScore is the result of scoring a single guess against a spell.
type RoundScore struct {
	Accuracy   float64
	BaseScore  int
	BonusScore int
	TotalScore int
}

// LevenshteinDistance returns the case-insensitive edit distance between
// a and b (single character insertions, deletions and substitutions).
func LevenshteinDistance(a, b string) int {
	source := strings.ToUpper(a)
	target := strings.ToUpper(b)

	prev := make([]int, len(target)+1)
	curr := make([]int, len(target)+1)
	for j := 0; j <= len(target); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(source); i++ {
		curr[0] = i
		for j := 1; j <= len(target); j++ {
			cost := 1
			if source[i-1] == target[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(target)]
}

// ComputeAccuracy maps a guess to an accuracy in [0,1] and a base score.
// An empty spell always scores zero.
func ComputeAccuracy(spell, guess string) (float64, int) {
	if len(spell) == 0 {
		return 0, 0
	}

	distance := LevenshteinDistance(spell, guess)
	maxLen := len(spell)
	if len(guess) > maxLen {
		maxLen = len(guess)
	}
	if maxLen < 1 {
		maxLen = 1
	}

	accuracy := 1 - float64(distance)/float64(maxLen)
	if accuracy < 0 {
		accuracy = 0
	}
	return accuracy, int(math.Round(accuracy * maxBaseScore))
}

// ComputeSpeedBonus awards the full bonus up to bonusFullMs, nothing from
// bonusZeroMs on, and interpolates linearly in between.
func ComputeSpeedBonus(durationMs int) int {
	clamped := durationMs
	if clamped < 0 {
		clamped = 0
	}
	if clamped > maxDurationMs {
		clamped = maxDurationMs
	}

	if clamped <= bonusFullMs {
		return maxBonusScore
	}
	if clamped >= bonusZeroMs {
		return 0
	}

	ratio := float64(bonusZeroMs-clamped) / float64(bonusZeroMs-bonusFullMs)
	return int(math.Round(ratio * maxBonusScore))
}

// ComputeRoundScore is pure and deterministic for identical inputs.
func ComputeRoundScore(spell, guess string, durationMs int) RoundScore {
	accuracy, base := ComputeAccuracy(spell, guess)
	bonus := ComputeSpeedBonus(durationMs)
	return RoundScore{
		Accuracy:   accuracy,
		BaseScore:  base,
		BonusScore: bonus,
		TotalScore: base + bonus,
	}
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
