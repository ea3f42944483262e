package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// MaxTextLength caps narration requests before they reach the upstream API.
const MaxTextLength = 200

var ErrNotConfigured = errors.New("tts service not configured")

// Client proxies narration requests to the ElevenLabs API.
type Client struct {
	APIKey  string
	VoiceID string
	BaseURL string
	http    *http.Client
}

func New(apiKey, voiceID string) *Client {
	return &Client{
		APIKey:  apiKey,
		VoiceID: voiceID,
		BaseURL: "https://api.elevenlabs.io",
		http:    &http.Client{Timeout: 20 * time.Second},
	}
}

func (c *Client) Configured() bool { return c.APIKey != "" }

// Synthesize streams audio for the given text. readingSpeed is mapped to
// the voice style parameter and clamped to [0,1]; zero falls back to the
// default style. The caller must close the returned body.
func (c *Client) Synthesize(ctx context.Context, text string, readingSpeed float64, voiceID string) (io.ReadCloser, string, error) {
	if !c.Configured() {
		return nil, "", ErrNotConfigured
	}

	style := 0.75
	if readingSpeed > 0 {
		style = readingSpeed
		if style > 1 {
			style = 1
		}
	}
	if voiceID == "" {
		voiceID = c.VoiceID
	}

	payload := map[string]any{
		"text":     text,
		"model_id": "eleven_multilingual_v2",
		"voice_settings": map[string]any{
			"stability":         0.35,
			"similarity_boost":  0.8,
			"style":             style,
			"use_speaker_boost": true,
		},
	}
	b, _ := json.Marshal(payload)
	req, _ := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/v1/text-to-speech/"+voiceID, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode/100 != 2 {
		resp.Body.Close()
		return nil, "", fmt.Errorf("elevenlabs status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/mpeg"
	}
	return resp.Body, contentType, nil
}
