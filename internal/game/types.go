package game

type Phase string

const (
	PhaseLobby Phase = "lobby"
	PhaseDuel  Phase = "duel"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyCustom Difficulty = "custom"
)

type EndReason string

const (
	ReasonBeam    EndReason = "beam"
	ReasonRounds  EndReason = "rounds"
	ReasonForfeit EndReason = "forfeit"
)

type GameSettings struct {
	Difficulty   Difficulty `json:"difficulty"`
	Rounds       int        `json:"rounds"`
	ReadingSpeed float64    `json:"readingSpeed"`
	CustomWords  []string   `json:"customWords,omitempty"`
}

type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	IsHost bool   `json:"isHost"`
	Ready  bool   `json:"ready"`
}

type LobbyState struct {
	RoomCode string       `json:"roomCode"`
	Phase    Phase        `json:"phase"`
	Players  []Player     `json:"players"`
	Settings GameSettings `json:"settings"`
}

// DuelState is the payload for duel:started.
type DuelState struct {
	RoomCode    string       `json:"roomCode"`
	Round       int          `json:"round"`
	TotalRounds int          `json:"totalRounds"`
	StartedAt   string       `json:"startedAt"`
	Players     []Player     `json:"players"`
	Settings    GameSettings `json:"settings"`
	BeamOffset  float64      `json:"beamOffset"`
}

type CountdownPayload struct {
	RoundNumber  int     `json:"roundNumber"`
	TotalRounds  int     `json:"totalRounds"`
	Seconds      float64 `json:"seconds"`
	SpellText    string  `json:"spellText"`
	ReadingSpeed float64 `json:"readingSpeed"`
}

type PromptPayload struct {
	RoundNumber  int     `json:"roundNumber"`
	TotalRounds  int     `json:"totalRounds"`
	PromptID     string  `json:"promptId"`
	SpellText    string  `json:"spellText"`
	ReadingSpeed float64 `json:"readingSpeed"`
	StartedAt    string  `json:"startedAt"`
}

type SubmittedPayload struct {
	RoundNumber int    `json:"roundNumber"`
	PlayerID    string `json:"playerId"`
}

type PlayerRoundResult struct {
	PlayerID        string  `json:"playerId"`
	PlayerName      string  `json:"playerName"`
	Guess           string  `json:"guess"`
	Accuracy        float64 `json:"accuracy"`
	BaseScore       int     `json:"baseScore"`
	BonusScore      int     `json:"bonusScore"`
	TotalScore      int     `json:"totalScore"`
	DurationMs      int     `json:"durationMs"`
	CumulativeScore int     `json:"cumulativeScore"`
}

type RoundRecap struct {
	RoomCode        string              `json:"roomCode"`
	RoundNumber     int                 `json:"roundNumber"`
	TotalRounds     int                 `json:"totalRounds"`
	Spell           string              `json:"spell"`
	PlayerResults   []PlayerRoundResult `json:"playerResults"`
	WinningPlayerID *string             `json:"winningPlayerId"`
	BeamOffset      float64             `json:"beamOffset"`
}

type PlayerAggregate struct {
	PlayerID          string  `json:"playerId"`
	PlayerName        string  `json:"playerName"`
	AverageAccuracy   float64 `json:"averageAccuracy"`
	AverageDurationMs float64 `json:"averageDurationMs"`
	TotalScore        int     `json:"totalScore"`
}

// DuelSummary is the terminal payload for duel:completed.
type DuelSummary struct {
	RoomCode   string            `json:"roomCode"`
	WinnerID   *string           `json:"winnerId"`
	WinnerName *string           `json:"winnerName"`
	Reason     EndReason         `json:"reason"`
	Rounds     []RoundRecap      `json:"rounds"`
	Players    []PlayerAggregate `json:"players"`
}
