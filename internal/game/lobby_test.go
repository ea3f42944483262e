package game

import (
	"testing"
)

func TestCreateLobby(t *testing.T) {
	lm := NewLobbyManager()

	code, host, err := lm.CreateLobby("Aurora", "owl")
	if err != nil {
		t.Fatalf("should be able to create lobby: %v", err)
	}
	if len(code) != 5 {
		t.Fatalf("expected 5-char room code, got %q", code)
	}
	if !host.IsHost {
		t.Fatal("creator should be host")
	}

	state, err := lm.State(code)
	if err != nil {
		t.Fatalf("should be able to read lobby state: %v", err)
	}
	if state.Phase != PhaseLobby {
		t.Fatalf("expected phase %s, got %s", PhaseLobby, state.Phase)
	}
	if state.Settings.Difficulty != DifficultyEasy || state.Settings.Rounds != 3 {
		t.Fatalf("unexpected default settings %+v", state.Settings)
	}
}

func TestCreateLobbyRejectsBlankName(t *testing.T) {
	lm := NewLobbyManager()
	if _, _, err := lm.CreateLobby("   ", ""); err != ErrInvalidName {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
}

func TestJoinLobby(t *testing.T) {
	lm := NewLobbyManager()
	code, host, _ := lm.CreateLobby("Aurora", "owl")

	guest, err := lm.Join(code, "Basil", "cat")
	if err != nil {
		t.Fatalf("should be able to join: %v", err)
	}
	if guest.ID == host.ID {
		t.Fatal("players should have distinct ids")
	}
	if guest.IsHost {
		t.Fatal("second player should not be host")
	}

	// duels are two-player; a third seat does not exist
	if _, err := lm.Join(code, "Casper", ""); err != ErrLobbyFull {
		t.Fatalf("expected ErrLobbyFull, got %v", err)
	}

	if _, err := lm.Join("ZZZZZ", "Nobody", ""); err != ErrLobbyNotFound {
		t.Fatalf("expected ErrLobbyNotFound, got %v", err)
	}
}

func TestReadyFlowStartsDuel(t *testing.T) {
	lm := NewLobbyManager()
	code, host, _ := lm.CreateLobby("Aurora", "")
	guest, _ := lm.Join(code, "Basil", "")

	allReady, err := lm.SetReady(code, host.ID, true)
	if err != nil {
		t.Fatalf("should be able to ready up: %v", err)
	}
	if allReady {
		t.Fatal("one ready player should not start the duel")
	}

	allReady, err = lm.SetReady(code, guest.ID, true)
	if err != nil {
		t.Fatalf("should be able to ready up: %v", err)
	}
	if !allReady {
		t.Fatal("both players ready should start the duel")
	}

	players, settings, err := lm.BeginDuel(code)
	if err != nil {
		t.Fatalf("should be able to begin duel: %v", err)
	}
	if len(players) != 2 {
		t.Fatalf("expected snapshot of 2 players, got %d", len(players))
	}
	if settings.Rounds != 3 {
		t.Fatalf("unexpected settings %+v", settings)
	}

	// lobby is now mid-duel
	if _, err := lm.Join(code, "Casper", ""); err != ErrLobbyInDuel {
		t.Fatalf("expected ErrLobbyInDuel, got %v", err)
	}
	if _, _, err := lm.BeginDuel(code); err != ErrLobbyInDuel {
		t.Fatalf("starting twice should fail, got %v", err)
	}
}

func TestSnapshotUnaffectedByLaterChanges(t *testing.T) {
	lm := NewLobbyManager()
	code, host, _ := lm.CreateLobby("Aurora", "")
	guest, _ := lm.Join(code, "Basil", "")
	lm.SetReady(code, host.ID, true)
	lm.SetReady(code, guest.ID, true)

	players, _, _ := lm.BeginDuel(code)

	// membership changes after the snapshot do not alter it
	lm.Leave(code, guest.ID)
	if len(players) != 2 {
		t.Fatalf("snapshot should keep 2 players, got %d", len(players))
	}
	if players[1].Name != "Basil" {
		t.Fatalf("snapshot mutated: %q", players[1].Name)
	}
}

func TestUpdateSettings(t *testing.T) {
	lm := NewLobbyManager()
	code, host, _ := lm.CreateLobby("Aurora", "")
	guest, _ := lm.Join(code, "Basil", "")

	err := lm.UpdateSettings(code, host.ID, GameSettings{
		Difficulty:   DifficultyHard,
		Rounds:       7,
		ReadingSpeed: 5.0,
	})
	if err != nil {
		t.Fatalf("host should be able to update settings: %v", err)
	}

	state, _ := lm.State(code)
	if state.Settings.Difficulty != DifficultyHard || state.Settings.Rounds != 7 {
		t.Fatalf("settings not applied: %+v", state.Settings)
	}
	if state.Settings.ReadingSpeed != 1.0 {
		t.Fatalf("reading speed should be clamped to 1.0, got %f", state.Settings.ReadingSpeed)
	}

	if err := lm.UpdateSettings(code, guest.ID, state.Settings); err != ErrNotHost {
		t.Fatalf("expected ErrNotHost, got %v", err)
	}
	if err := lm.UpdateSettings(code, host.ID, GameSettings{Difficulty: "nightmare", Rounds: 3, ReadingSpeed: 0.5}); err != ErrBadSettings {
		t.Fatalf("expected ErrBadSettings for bad difficulty, got %v", err)
	}
	if err := lm.UpdateSettings(code, host.ID, GameSettings{Difficulty: DifficultyEasy, Rounds: 4, ReadingSpeed: 0.5}); err != ErrBadSettings {
		t.Fatalf("expected ErrBadSettings for bad round count, got %v", err)
	}
}

func TestLeaveReassignsHost(t *testing.T) {
	lm := NewLobbyManager()
	code, host, _ := lm.CreateLobby("Aurora", "")
	guest, _ := lm.Join(code, "Basil", "")

	if !lm.Leave(code, host.ID) {
		t.Fatal("lobby should survive with one player left")
	}

	state, _ := lm.State(code)
	if len(state.Players) != 1 {
		t.Fatalf("expected 1 player, got %d", len(state.Players))
	}
	if !state.Players[0].IsHost {
		t.Fatal("remaining player should inherit host")
	}

	if lm.Leave(code, guest.ID) {
		t.Fatal("emptied lobby should be discarded")
	}
	if _, err := lm.State(code); err != ErrLobbyNotFound {
		t.Fatalf("expected ErrLobbyNotFound after discard, got %v", err)
	}
}

func TestResetAfterDuel(t *testing.T) {
	lm := NewLobbyManager()
	code, host, _ := lm.CreateLobby("Aurora", "")
	guest, _ := lm.Join(code, "Basil", "")
	lm.SetReady(code, host.ID, true)
	lm.SetReady(code, guest.ID, true)
	lm.BeginDuel(code)

	lm.ResetAfterDuel(code)

	state, _ := lm.State(code)
	if state.Phase != PhaseLobby {
		t.Fatalf("expected phase %s after reset, got %s", PhaseLobby, state.Phase)
	}
	for _, p := range state.Players {
		if p.Ready {
			t.Fatalf("ready flag should be cleared for %s", p.Name)
		}
	}

	// resetting an unknown room is a no-op
	lm.ResetAfterDuel("ZZZZZ")
}
