package game

import (
	"errors"
	"math/rand"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrLobbyNotFound = errors.New("lobby not found")
	ErrLobbyFull     = errors.New("lobby is full")
	ErrLobbyInDuel   = errors.New("lobby is mid-duel")
	ErrNotHost       = errors.New("not host")
	ErrUnknownPlayer = errors.New("player not in lobby")
	ErrInvalidName   = errors.New("invalid name")
	ErrBadSettings   = errors.New("invalid settings")
)

const (
	maxLobbyPlayers = 2
	maxNameLen      = 24
)

var allowedRoundCounts = map[int]bool{3: true, 5: true, 7: true}

// Lobby owns room membership and pregame settings. The duel engine only
// ever reads a snapshot of it at duel start and asks for a reset at the
// end; it never mutates a lobby mid-duel.
type Lobby struct {
	RoomCode string
	Phase    Phase
	Players  []*Player
	Settings GameSettings

	mu sync.Mutex
}

type LobbyManager struct {
	mu      sync.RWMutex
	lobbies map[string]*Lobby
}

func NewLobbyManager() *LobbyManager {
	return &LobbyManager{lobbies: make(map[string]*Lobby)}
}

func defaultSettings() GameSettings {
	return GameSettings{
		Difficulty:   DifficultyEasy,
		Rounds:       3,
		ReadingSpeed: 0.75,
	}
}

// CreateLobby allocates a fresh room code and seats the creator as host.
func (lm *LobbyManager) CreateLobby(name, avatar string) (string, *Player, error) {
	name, err := sanitizeName(name)
	if err != nil {
		return "", nil, err
	}

	lm.mu.Lock()
	defer lm.mu.Unlock()

	code := randomCode(5)
	for lm.lobbies[code] != nil {
		code = randomCode(5)
	}

	host := &Player{ID: uuid.NewString(), Name: name, Avatar: avatar, IsHost: true}
	lm.lobbies[code] = &Lobby{
		RoomCode: code,
		Phase:    PhaseLobby,
		Players:  []*Player{host},
		Settings: defaultSettings(),
	}

	return code, host, nil
}

func (lm *LobbyManager) Get(code string) (*Lobby, error) {
	lm.mu.RLock()
	defer lm.mu.RUnlock()
	l := lm.lobbies[code]
	if l == nil {
		return nil, ErrLobbyNotFound
	}
	return l, nil
}

// Join seats a second player. Duels are strictly two-sided, so a full or
// mid-duel lobby rejects the join.
func (lm *LobbyManager) Join(code, name, avatar string) (*Player, error) {
	name, err := sanitizeName(name)
	if err != nil {
		return nil, err
	}

	l, err := lm.Get(code)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.Phase != PhaseLobby {
		return nil, ErrLobbyInDuel
	}
	if len(l.Players) >= maxLobbyPlayers {
		return nil, ErrLobbyFull
	}

	p := &Player{ID: uuid.NewString(), Name: name, Avatar: avatar}
	l.Players = append(l.Players, p)
	return p, nil
}

// SetReady flips a player's ready flag. The second return value reports
// whether the lobby just became ready to start (both players ready).
func (lm *LobbyManager) SetReady(code, playerID string, ready bool) (bool, error) {
	l, err := lm.Get(code)
	if err != nil {
		return false, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.Phase != PhaseLobby {
		return false, ErrLobbyInDuel
	}

	found := false
	for _, p := range l.Players {
		if p.ID == playerID {
			p.Ready = ready
			found = true
		}
	}
	if !found {
		return false, ErrUnknownPlayer
	}

	if len(l.Players) < maxLobbyPlayers {
		return false, nil
	}
	for _, p := range l.Players {
		if !p.Ready {
			return false, nil
		}
	}
	return true, nil
}

// UpdateSettings applies host-only settings changes, clamping rather than
// crashing on out-of-range values.
func (lm *LobbyManager) UpdateSettings(code, playerID string, settings GameSettings) error {
	l, err := lm.Get(code)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.Phase != PhaseLobby {
		return ErrLobbyInDuel
	}

	host := false
	for _, p := range l.Players {
		if p.ID == playerID && p.IsHost {
			host = true
		}
	}
	if !host {
		return ErrNotHost
	}

	switch settings.Difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyCustom:
	default:
		return ErrBadSettings
	}
	if !allowedRoundCounts[settings.Rounds] {
		return ErrBadSettings
	}
	if settings.ReadingSpeed < 0.25 {
		settings.ReadingSpeed = 0.25
	}
	if settings.ReadingSpeed > 1.0 {
		settings.ReadingSpeed = 1.0
	}
	settings.CustomWords = SanitizeCustomWords(settings.CustomWords)

	l.Settings = settings
	return nil
}

// BeginDuel flips the lobby to the duel phase and returns the snapshot
// handed to the engine: participant list and settings as of this moment.
func (lm *LobbyManager) BeginDuel(code string) ([]Player, GameSettings, error) {
	l, err := lm.Get(code)
	if err != nil {
		return nil, GameSettings{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.Phase != PhaseLobby {
		return nil, GameSettings{}, ErrLobbyInDuel
	}

	l.Phase = PhaseDuel
	players := make([]Player, len(l.Players))
	for i, p := range l.Players {
		players[i] = *p
	}
	return players, l.Settings, nil
}

// Leave removes a player. The host flag moves to the remaining player;
// an emptied lobby is discarded. Returns true while the lobby survives.
func (lm *LobbyManager) Leave(code, playerID string) bool {
	l, err := lm.Get(code)
	if err != nil {
		return false
	}

	l.mu.Lock()
	remaining := l.Players[:0]
	wasHost := false
	for _, p := range l.Players {
		if p.ID == playerID {
			wasHost = p.IsHost
			continue
		}
		remaining = append(remaining, p)
	}
	l.Players = remaining
	if wasHost && len(l.Players) > 0 {
		l.Players[0].IsHost = true
	}
	empty := len(l.Players) == 0
	l.mu.Unlock()

	if empty {
		lm.mu.Lock()
		delete(lm.lobbies, code)
		lm.mu.Unlock()
		return false
	}
	return true
}

// ResetAfterDuel returns the room to its pregame phase with all ready
// flags cleared.
func (lm *LobbyManager) ResetAfterDuel(code string) {
	l, err := lm.Get(code)
	if err != nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.Phase = PhaseLobby
	for _, p := range l.Players {
		p.Ready = false
	}
}

// State returns a copy safe to broadcast.
func (lm *LobbyManager) State(code string) (LobbyState, error) {
	l, err := lm.Get(code)
	if err != nil {
		return LobbyState{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	players := make([]Player, len(l.Players))
	for i, p := range l.Players {
		players[i] = *p
	}
	return LobbyState{
		RoomCode: l.RoomCode,
		Phase:    l.Phase,
		Players:  players,
		Settings: l.Settings,
	}, nil
}

func sanitizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidName
	}
	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}
	return name, nil
}

func randomCode(n int) string {
	letters := []rune("ABCDEFGHJKLMNPQRSTUVWXYZ23456789")
	b := make([]rune, n)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}
