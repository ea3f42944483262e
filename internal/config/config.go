package config

import "os"

type Config struct {
	Port            string
	ClientOrigin    string
	ElevenLabsKey   string
	ElevenLabsVoice string
	ExportEnabled   bool
	ExportFile      string
}

func FromEnv() Config {
	c := Config{}
	c.Port = getenv("PORT", "4000")
	c.ClientOrigin = getenv("CLIENT_ORIGIN", "http://localhost:5173")
	c.ElevenLabsKey = os.Getenv("ELEVENLABS_API_KEY")
	c.ElevenLabsVoice = getenv("ELEVENLABS_VOICE_ID", "zNsotODqUhvbJ5wMG7Ei")
	c.ExportEnabled = getenv("EXPORT_ENABLED", "false") == "true"
	c.ExportFile = getenv("EXPORT_FILE", "./spellcaster-results.txt")
	return c
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
