package ws

import (
	"net/http"

	"github.com/akaFM/spellcaster/internal/game"
	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"
	"github.com/rs/zerolog/log"
)

type ConnCtx struct {
	Code     string
	PlayerID string
}

type Server struct {
	lobbies *game.LobbyManager
	duels   *game.DuelManager
	io      *socketio.Server
}

func New(lobbies *game.LobbyManager) *Server {
	return &Server{lobbies: lobbies}
}

func (srv *Server) SetDuelManager(dm *game.DuelManager) { srv.duels = dm }

// ToRoom implements game.Broadcaster on top of the socket server.
func (srv *Server) ToRoom(roomCode, event string, payload any) {
	if srv.io == nil {
		return
	}
	srv.io.BroadcastToRoom("/", roomCode, event, payload)
}

// Mount attaches the Socket.IO server with handlers to the given Gin engine.
func (srv *Server) Mount(r *gin.Engine) *socketio.Server {
	io := socketio.NewServer(nil)
	srv.io = io

	io.OnConnect("/", func(s socketio.Conn) error {
		s.SetContext(&ConnCtx{})
		log.Info().Str("sid", s.ID()).Msg("socket connected")
		return nil
	})

	// lobby:create
	io.OnEvent("/", "lobby:create", func(s socketio.Conn, payload struct {
		Name   string `json:"name"`
		Avatar string `json:"avatar"`
	}) map[string]any {
		code, player, err := srv.lobbies.CreateLobby(payload.Name, payload.Avatar)
		if err != nil {
			return srv.err(s, "bad_request", err.Error())
		}
		s.SetContext(&ConnCtx{Code: code, PlayerID: player.ID})
		s.Join(code)
		log.Info().Str("sid", s.ID()).Str("code", code).Msg("lobby:create")
		srv.emitLobbyState(code)
		return map[string]any{"roomCode": code, "playerId": player.ID}
	})

	// lobby:join
	io.OnEvent("/", "lobby:join", func(s socketio.Conn, payload struct {
		RoomCode string `json:"roomCode"`
		Name     string `json:"name"`
		Avatar   string `json:"avatar"`
	}) map[string]any {
		player, err := srv.lobbies.Join(payload.RoomCode, payload.Name, payload.Avatar)
		if err != nil {
			return srv.err(s, "bad_request", err.Error())
		}
		s.SetContext(&ConnCtx{Code: payload.RoomCode, PlayerID: player.ID})
		s.Join(payload.RoomCode)
		log.Info().Str("sid", s.ID()).Str("code", payload.RoomCode).Str("playerId", player.ID).Msg("lobby:join")
		srv.emitLobbyState(payload.RoomCode)
		return map[string]any{"playerId": player.ID}
	})

	// lobby:settings (host only)
	io.OnEvent("/", "lobby:settings", func(s socketio.Conn, payload struct {
		Settings game.GameSettings `json:"settings"`
	}) map[string]any {
		ctx := s.Context().(*ConnCtx)
		if err := srv.lobbies.UpdateSettings(ctx.Code, ctx.PlayerID, payload.Settings); err != nil {
			return srv.err(s, "bad_request", err.Error())
		}
		log.Info().Str("code", ctx.Code).Msg("lobby:settings")
		srv.emitLobbyState(ctx.Code)
		return map[string]any{"ok": true}
	})

	// lobby:ready
	io.OnEvent("/", "lobby:ready", func(s socketio.Conn, payload struct {
		Ready bool `json:"ready"`
	}) map[string]any {
		ctx := s.Context().(*ConnCtx)
		allReady, err := srv.lobbies.SetReady(ctx.Code, ctx.PlayerID, payload.Ready)
		if err != nil {
			return srv.err(s, "bad_request", err.Error())
		}
		srv.emitLobbyState(ctx.Code)
		if allReady {
			players, settings, err := srv.lobbies.BeginDuel(ctx.Code)
			if err != nil {
				return srv.err(s, "bad_request", err.Error())
			}
			log.Info().Str("code", ctx.Code).Msg("both ready, starting duel")
			srv.emitLobbyState(ctx.Code)
			srv.duels.StartDuel(ctx.Code, players, settings)
		}
		return map[string]any{"ok": true}
	})

	// duel:submit
	io.OnEvent("/", "duel:submit", func(s socketio.Conn, payload struct {
		PromptID   string `json:"promptId"`
		Guess      string `json:"guess"`
		DurationMs int    `json:"durationMs"`
	}) map[string]any {
		ctx := s.Context().(*ConnCtx)
		reason := srv.duels.HandleSubmission(ctx.Code, ctx.PlayerID, payload.PromptID, payload.Guess, payload.DurationMs)
		if reason != "" {
			log.Info().Str("code", ctx.Code).Str("playerId", ctx.PlayerID).Str("reason", reason).Msg("submission rejected")
			return srv.err(s, "rejected", reason)
		}
		return map[string]any{"ok": true}
	})

	io.OnError("/", func(s socketio.Conn, e error) {
		log.Error().Str("sid", s.ID()).Err(e).Msg("socket error")
	})

	io.OnDisconnect("/", func(s socketio.Conn, reason string) {
		if ctx, ok := s.Context().(*ConnCtx); ok && ctx.Code != "" {
			survives := srv.lobbies.Leave(ctx.Code, ctx.PlayerID)
			srv.duels.HandlePlayerLeft(ctx.Code)
			if survives {
				srv.emitLobbyState(ctx.Code)
			}
		}
		log.Info().Str("sid", s.ID()).Str("reason", reason).Msg("socket disconnected")
	})

	go io.Serve()

	r.GET("/socket.io/*any", gin.WrapH(io))
	r.POST("/socket.io/*any", gin.WrapH(io))

	// Basic CORS preflight for Socket.IO POST
	r.OPTIONS("/socket.io/*any", func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		c.Status(http.StatusNoContent)
	})

	return io
}

func (srv *Server) emitLobbyState(code string) {
	state, err := srv.lobbies.State(code)
	if err != nil {
		return
	}
	srv.ToRoom(code, "lobby:state", state)
}

func (srv *Server) err(s socketio.Conn, code, message string) map[string]any {
	s.Emit("error", map[string]any{"code": code, "message": message})
	return map[string]any{"error": message}
}
