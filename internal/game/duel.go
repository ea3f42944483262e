package game

import (
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	beamThreshold   = 100.0
	beamDeltaFactor = 0.5

	maxGuessLen = 64
)

// Broadcaster delivers a named event to every connection in a room. Sends
// are fire-and-forget; the engine never waits for acknowledgment.
type Broadcaster interface {
	ToRoom(roomCode, event string, payload any)
}

// Registry is told to move a room back to its pregame phase once a duel
// has finished.
type Registry interface {
	ResetAfterDuel(roomCode string)
}

// Timings holds the fixed wall-clock delays driving the round state
// machine. They are constants in production; tests shrink them.
type Timings struct {
	Countdown     time.Duration
	RoundTimeout  time.Duration
	RecapDelay    time.Duration
	BetweenRounds time.Duration
}

func DefaultTimings() Timings {
	return Timings{
		Countdown:     3 * time.Second,
		RoundTimeout:  10 * time.Second,
		RecapDelay:    time.Second,
		BetweenRounds: 8 * time.Second,
	}
}

type submission struct {
	playerID    string
	guess       string
	durationMs  int
	submittedAt time.Time
}

type roundInFlight struct {
	roundNumber int
	promptID    string
	spell       Spell
	startedAt   time.Time
	submissions map[string]*submission

	timeoutTimer *time.Timer
	// recapTimer non-nil means the round is locked; it is armed exactly
	// once, by whichever of "all submitted" / "deadline" happens first.
	recapTimer *time.Timer
}

// Duel is the per-room session state. All transitions are serialized
// through mu; timer callbacks re-validate the session and prompt token
// before acting so a stale fire is a no-op.
type Duel struct {
	mu sync.Mutex

	roomCode          string
	players           []Player
	settings          GameSettings
	spellQueue        []Spell
	currentRoundIndex int
	beamOffset        float64
	totalScores       map[string]int
	rounds            []RoundRecap
	round             *roundInFlight

	countdownTimer    *time.Timer
	betweenRoundTimer *time.Timer
	completed         bool
}

type DuelManager struct {
	mu    sync.RWMutex
	duels map[string]*Duel

	emit        Broadcaster
	registry    Registry
	timings     Timings
	onCompleted func(DuelSummary)
}

func NewDuelManager(emit Broadcaster, registry Registry) *DuelManager {
	return &DuelManager{
		duels:    make(map[string]*Duel),
		emit:     emit,
		registry: registry,
		timings:  DefaultTimings(),
	}
}

// OnCompleted registers a hook invoked with every duel summary, after the
// summary has been emitted to the room.
func (dm *DuelManager) OnCompleted(fn func(DuelSummary)) {
	dm.onCompleted = fn
}

func (dm *DuelManager) get(roomCode string) *Duel {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.duels[roomCode]
}

// StartDuel snapshots the participant list and settings, builds the spell
// queue and schedules the countdown for round 1.
func (dm *DuelManager) StartDuel(roomCode string, players []Player, settings GameSettings) {
	queue := BuildSpellQueue(settings.Rounds, settings.Difficulty, settings.CustomWords)

	d := &Duel{
		roomCode:    roomCode,
		players:     append([]Player(nil), players...),
		settings:    settings,
		spellQueue:  queue,
		totalScores: make(map[string]int, len(players)),
	}
	for _, p := range d.players {
		d.totalScores[p.ID] = 0
	}

	dm.mu.Lock()
	dm.duels[roomCode] = d
	dm.mu.Unlock()

	log.Info().Str("room", roomCode).Int("rounds", settings.Rounds).
		Str("difficulty", string(settings.Difficulty)).Msg("duel started")

	dm.emit.ToRoom(roomCode, "duel:started", DuelState{
		RoomCode:    roomCode,
		Round:       1,
		TotalRounds: settings.Rounds,
		StartedAt:   time.Now().UTC().Format(time.RFC3339),
		Players:     d.players,
		Settings:    settings,
		BeamOffset:  0,
	})

	d.mu.Lock()
	dm.queueCountdown(d)
	d.mu.Unlock()
}

// HandleSubmission records a guess for the round in flight. It returns an
// empty string on acceptance, or the reason the submission was rejected.
func (dm *DuelManager) HandleSubmission(roomCode, playerID, promptID, guess string, durationMs int) string {
	d := dm.get(roomCode)
	if d == nil {
		return "no duel is active for this lobby"
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.completed {
		return "no duel is active for this lobby"
	}

	round := d.round
	if round == nil {
		return "no round in progress"
	}

	known := false
	for _, p := range d.players {
		if p.ID == playerID {
			known = true
			break
		}
	}
	if !known {
		return "you are not part of this duel"
	}

	if round.promptID != promptID {
		return "that prompt already expired"
	}

	if _, dup := round.submissions[playerID]; dup {
		return "you already submitted for this round"
	}

	sanitized := strings.ToUpper(guess)
	if len(sanitized) > maxGuessLen {
		sanitized = sanitized[:maxGuessLen]
	}
	if durationMs < 0 {
		durationMs = 0
	}
	if durationMs > maxDurationMs {
		durationMs = maxDurationMs
	}

	round.submissions[playerID] = &submission{
		playerID:    playerID,
		guess:       sanitized,
		durationMs:  durationMs,
		submittedAt: time.Now().UTC(),
	}

	dm.emit.ToRoom(roomCode, "duel:submitted", SubmittedPayload{
		RoundNumber: round.roundNumber,
		PlayerID:    playerID,
	})

	if len(round.submissions) == len(d.players) {
		dm.lockRound(d)
	}

	return ""
}

// HandlePlayerLeft runs the forfeit path when a participant drops while a
// duel is active for the room. Safe to call mid-round; no events are
// emitted for the session afterwards.
func (dm *DuelManager) HandlePlayerLeft(roomCode string) {
	d := dm.get(roomCode)
	if d == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	dm.completeDuel(d, ReasonForfeit)
}

// queueCountdown emits the pre-round countdown and arms the timer that
// starts the round. Caller holds d.mu.
func (dm *DuelManager) queueCountdown(d *Duel) {
	if d.completed {
		return
	}
	stopTimer(&d.countdownTimer)
	stopTimer(&d.betweenRoundTimer)

	roomCode := d.roomCode
	d.countdownTimer = time.AfterFunc(dm.timings.Countdown, func() {
		dm.startRound(roomCode)
	})

	var nextText string
	if d.currentRoundIndex < len(d.spellQueue) {
		nextText = d.spellQueue[d.currentRoundIndex].Text
	}

	dm.emit.ToRoom(roomCode, "duel:countdown", CountdownPayload{
		RoundNumber:  d.currentRoundIndex + 1,
		TotalRounds:  d.settings.Rounds,
		Seconds:      dm.timings.Countdown.Seconds(),
		SpellText:    nextText,
		ReadingSpeed: d.settings.ReadingSpeed,
	})
}

func (dm *DuelManager) startRound(roomCode string) {
	d := dm.get(roomCode)
	if d == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.completed || d.round != nil {
		return
	}

	if d.currentRoundIndex >= d.settings.Rounds {
		dm.completeDuel(d, ReasonRounds)
		return
	}

	spell := d.spellQueue[d.currentRoundIndex]
	promptID := uuid.NewString()
	roundNumber := d.currentRoundIndex + 1
	startedAt := time.Now().UTC()

	d.round = &roundInFlight{
		roundNumber: roundNumber,
		promptID:    promptID,
		spell:       spell,
		startedAt:   startedAt,
		submissions: make(map[string]*submission, len(d.players)),
	}
	d.currentRoundIndex++

	d.round.timeoutTimer = time.AfterFunc(dm.timings.RoundTimeout, func() {
		dm.forceRoundCompletion(roomCode, promptID)
	})

	dm.emit.ToRoom(roomCode, "duel:prompt", PromptPayload{
		RoundNumber:  roundNumber,
		TotalRounds:  d.settings.Rounds,
		PromptID:     promptID,
		SpellText:    spell.Text,
		ReadingSpeed: d.settings.ReadingSpeed,
		StartedAt:    startedAt.Format(time.RFC3339),
	})
}

// forceRoundCompletion fires on the submission deadline: whoever has not
// answered gets an empty guess at the full timeout duration, so scoring
// always sees a complete submission set.
func (dm *DuelManager) forceRoundCompletion(roomCode, promptID string) {
	d := dm.get(roomCode)
	if d == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	round := d.round
	if d.completed || round == nil || round.promptID != promptID {
		return
	}

	timeoutMs := int(dm.timings.RoundTimeout / time.Millisecond)
	for _, p := range d.players {
		if _, ok := round.submissions[p.ID]; !ok {
			round.submissions[p.ID] = &submission{
				playerID:    p.ID,
				guess:       "",
				durationMs:  timeoutMs,
				submittedAt: time.Now().UTC(),
			}
		}
	}

	dm.lockRound(d)
}

// lockRound transitions the round to locked at most once and arms the
// settle delay before the recap. Caller holds d.mu.
func (dm *DuelManager) lockRound(d *Duel) {
	round := d.round
	if round == nil {
		return
	}

	stopTimer(&round.timeoutTimer)

	if round.recapTimer != nil {
		return
	}

	roomCode := d.roomCode
	promptID := round.promptID
	round.recapTimer = time.AfterFunc(dm.timings.RecapDelay, func() {
		dm.completeRound(roomCode, promptID)
	})
}

func (dm *DuelManager) completeRound(roomCode, promptID string) {
	d := dm.get(roomCode)
	if d == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	round := d.round
	if d.completed || round == nil || round.promptID != promptID {
		return
	}

	stopTimer(&round.timeoutTimer)
	stopTimer(&round.recapTimer)

	timeoutMs := int(dm.timings.RoundTimeout / time.Millisecond)
	results := make([]PlayerRoundResult, 0, len(d.players))
	for _, p := range d.players {
		guess := ""
		durationMs := timeoutMs
		if sub := round.submissions[p.ID]; sub != nil {
			guess = sub.guess
			durationMs = sub.durationMs
		}

		score := ComputeRoundScore(round.spell.Text, guess, durationMs)
		cumulative := d.totalScores[p.ID] + score.TotalScore
		d.totalScores[p.ID] = cumulative

		results = append(results, PlayerRoundResult{
			PlayerID:        p.ID,
			PlayerName:      p.Name,
			Guess:           guess,
			Accuracy:        score.Accuracy,
			BaseScore:       score.BaseScore,
			BonusScore:      score.BonusScore,
			TotalScore:      score.TotalScore,
			DurationMs:      durationMs,
			CumulativeScore: cumulative,
		})
	}

	var winningPlayerID *string
	if best := bestResult(results); best != nil {
		id := best.PlayerID
		winningPlayerID = &id
	}

	if len(results) == 2 {
		delta := float64(results[0].TotalScore - results[1].TotalScore)
		d.beamOffset = clamp(d.beamOffset+delta*beamDeltaFactor, -beamThreshold, beamThreshold)
	}

	recap := RoundRecap{
		RoomCode:        roomCode,
		RoundNumber:     round.roundNumber,
		TotalRounds:     d.settings.Rounds,
		Spell:           round.spell.Text,
		PlayerResults:   results,
		WinningPlayerID: winningPlayerID,
		BeamOffset:      d.beamOffset,
	}

	d.rounds = append(d.rounds, recap)
	d.round = nil

	dm.emit.ToRoom(roomCode, "duel:roundRecap", recap)

	if math.Abs(d.beamOffset) >= beamThreshold {
		dm.completeDuel(d, ReasonBeam)
		return
	}

	if round.roundNumber >= d.settings.Rounds {
		dm.completeDuel(d, ReasonRounds)
		return
	}

	d.betweenRoundTimer = time.AfterFunc(dm.timings.BetweenRounds, func() {
		dm.nextCountdown(roomCode)
	})
}

func (dm *DuelManager) nextCountdown(roomCode string) {
	d := dm.get(roomCode)
	if d == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	dm.queueCountdown(d)
}

// completeDuel cancels every pending timer, emits the summary, resets the
// lobby and discards the session. Idempotent; caller holds d.mu.
func (dm *DuelManager) completeDuel(d *Duel, reason EndReason) {
	if d.completed {
		return
	}
	d.completed = true

	stopTimer(&d.countdownTimer)
	stopTimer(&d.betweenRoundTimer)
	if d.round != nil {
		stopTimer(&d.round.timeoutTimer)
		stopTimer(&d.round.recapTimer)
		d.round = nil
	}

	summary := dm.buildSummary(d, reason)

	log.Info().Str("room", d.roomCode).Str("reason", string(reason)).
		Int("rounds", len(d.rounds)).Msg("duel completed")

	dm.emit.ToRoom(d.roomCode, "duel:completed", summary)
	dm.registry.ResetAfterDuel(d.roomCode)

	if dm.onCompleted != nil {
		dm.onCompleted(summary)
	}

	dm.mu.Lock()
	delete(dm.duels, d.roomCode)
	dm.mu.Unlock()
}

func (dm *DuelManager) buildSummary(d *Duel, reason EndReason) DuelSummary {
	var winnerID, winnerName *string
	if len(d.players) > 0 {
		standings := append([]Player(nil), d.players...)
		for i := 0; i < len(standings); i++ {
			for j := i + 1; j < len(standings); j++ {
				if d.totalScores[standings[j].ID] > d.totalScores[standings[i].ID] {
					standings[i], standings[j] = standings[j], standings[i]
				}
			}
		}
		top := standings[0]
		tied := len(standings) > 1 && d.totalScores[standings[1].ID] == d.totalScores[top.ID]
		if !tied {
			id, name := top.ID, top.Name
			winnerID, winnerName = &id, &name
		}
	}

	aggregates := make([]PlayerAggregate, 0, len(d.players))
	for _, p := range d.players {
		var accuracySum, durationSum float64
		count := 0
		for _, recap := range d.rounds {
			for _, result := range recap.PlayerResults {
				if result.PlayerID == p.ID {
					accuracySum += result.Accuracy
					durationSum += float64(result.DurationMs)
					count++
				}
			}
		}

		agg := PlayerAggregate{
			PlayerID:   p.ID,
			PlayerName: p.Name,
			TotalScore: d.totalScores[p.ID],
		}
		if count > 0 {
			agg.AverageAccuracy = accuracySum / float64(count)
			agg.AverageDurationMs = durationSum / float64(count)
		}
		aggregates = append(aggregates, agg)
	}

	return DuelSummary{
		RoomCode:   d.roomCode,
		WinnerID:   winnerID,
		WinnerName: winnerName,
		Reason:     reason,
		Rounds:     append([]RoundRecap(nil), d.rounds...),
		Players:    aggregates,
	}
}

// bestResult returns the result with the strictly highest total, or nil
// on an exact tie.
func bestResult(results []PlayerRoundResult) *PlayerRoundResult {
	if len(results) == 0 {
		return nil
	}
	best := 0
	tie := false
	for i := 1; i < len(results); i++ {
		switch {
		case results[i].TotalScore > results[best].TotalScore:
			best = i
			tie = false
		case results[i].TotalScore == results[best].TotalScore:
			tie = true
		}
	}
	if tie {
		return nil
	}
	return &results[best]
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func stopTimer(t **time.Timer) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}
