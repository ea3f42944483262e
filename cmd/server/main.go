package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/akaFM/spellcaster/internal/config"
	"github.com/akaFM/spellcaster/internal/game"
	"github.com/akaFM/spellcaster/internal/tts"
	"github.com/akaFM/spellcaster/internal/ws"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	zerologlog "github.com/rs/zerolog/log"
)

const version = "v1.0.0"

func main() {
	var (
		showHelp    = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
		portFlag    = flag.String("port", "", "Port to listen on (overrides PORT env var)")
	)
	flag.BoolVar(showHelp, "h", false, "Show help message (shorthand)")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Parse()

	if *showHelp {
		fmt.Printf(`Spellcaster - Real-time spell typing duel

Usage: %s [options]

Options:
  -h, --help      Show this help message
  -v, --version   Show version information
  --port PORT     Port to listen on (default: 4000 or PORT env var)

Environment Variables:
  PORT                 Port to listen on (default: 4000)
  CLIENT_ORIGIN        Allowed CORS origins, comma separated (default: http://localhost:5173)
  ELEVENLABS_API_KEY   ElevenLabs API key for spell narration (optional)
  ELEVENLABS_VOICE_ID  ElevenLabs voice to narrate with (optional)
  EXPORT_ENABLED       Export duel results to file (default: false)
  EXPORT_FILE          Path to export duel results (default: ./spellcaster-results.txt)
`, os.Args[0])
		return
	}

	if *showVersion {
		fmt.Printf("Spellcaster %s\n", version)
		return
	}

	cfg := config.FromEnv()
	if *portFlag != "" {
		cfg.Port = *portFlag
	}

	// zerolog setup (human-friendly console)
	zerolog.TimeFieldFormat = time.RFC3339
	cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	zerologlog.Logger = zerologlog.Output(cw)

	// Gin setup with custom logger (skip /socket.io noise)
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/socket.io") {
			return
		}
		status := c.Writer.Status()
		dur := time.Since(start)
		zerologlog.Info().Str("path", path).Int("status", status).Dur("dur", dur).Msg("http")
	})

	// CORS for the separately-hosted client
	allowedOrigins := make(map[string]bool)
	for _, origin := range strings.Split(cfg.ClientOrigin, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			allowedOrigins[origin] = true
		}
	}
	r.Use(func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); allowedOrigins[origin] {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
		}
		c.Next()
	})

	// Healthcheck
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC()})
	})

	// Lobby registry + duel engine wired to the socket server
	lobbies := game.NewLobbyManager()
	sock := ws.New(lobbies)
	duels := game.NewDuelManager(sock, lobbies)
	sock.SetDuelManager(duels)
	if cfg.ExportEnabled {
		duels.OnCompleted(func(summary game.DuelSummary) {
			if err := game.ExportSummary(summary, cfg.ExportFile); err != nil {
				zerologlog.Error().Err(err).Str("room", summary.RoomCode).Msg("failed to export duel results")
			}
		})
	}
	ioServer := sock.Mount(r)
	defer ioServer.Close()

	// Spell narration proxy
	narrator := tts.New(cfg.ElevenLabsKey, cfg.ElevenLabsVoice)
	r.POST("/tts", func(c *gin.Context) {
		var req struct {
			Text         string  `json:"text"`
			ReadingSpeed float64 `json:"readingSpeed"`
			VoiceID      string  `json:"voiceId"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
			return
		}
		text := strings.TrimSpace(req.Text)
		if text == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "text is required for tts"})
			return
		}
		if len(text) > tts.MaxTextLength {
			c.JSON(http.StatusBadRequest, gin.H{"message": "text is too long for tts"})
			return
		}

		audio, contentType, err := narrator.Synthesize(c.Request.Context(), text, req.ReadingSpeed, strings.TrimSpace(req.VoiceID))
		if err != nil {
			if errors.Is(err, tts.ErrNotConfigured) {
				c.JSON(http.StatusServiceUnavailable, gin.H{"message": "tts service not configured"})
				return
			}
			zerologlog.Error().Err(err).Msg("tts synthesis failed")
			c.JSON(http.StatusBadGateway, gin.H{"message": "failed to synthesize audio"})
			return
		}
		defer audio.Close()

		c.Header("Content-Type", contentType)
		c.Header("Cache-Control", "no-store")
		c.Status(http.StatusOK)
		_, _ = io.Copy(c.Writer, audio)
	})

	log.Printf("spellcaster server listening on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
