package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TranscribeClient talks to an external speech-to-text service that shares a
// filesystem with this process (a local whisper server). Contract:
// POST {endpoint} with {"file","language","model"} returning
// {"text","detected_language"}.
type TranscribeClient struct {
	endpoint string
	model    string // ASR model size hint, e.g. "base", "small"
	client   *http.Client
}

// NewTranscribeClient returns nil when no endpoint is configured; the
// pipeline then rejects audio answers.
func NewTranscribeClient(endpoint, model string) *TranscribeClient {
	if endpoint == "" {
		return nil
	}
	if model == "" {
		model = "base"
	}
	return &TranscribeClient{
		endpoint: endpoint,
		model:    model,
		// transcription of long recordings is slow
		client: &http.Client{Timeout: 5 * time.Minute},
	}
}

func (c *TranscribeClient) Transcribe(ctx context.Context, audioPath, lang string) (Transcript, error) {
	payload, err := json.Marshal(map[string]string{
		"file":     audioPath,
		"language": lang,
		"model":    c.model,
	})
	if err != nil {
		return Transcript{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(payload))
	if err != nil {
		return Transcript{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Transcript{}, fmt.Errorf("transcribe %q: %w", audioPath, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Transcript{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return Transcript{}, fmt.Errorf("transcription service returned status %d for %q", resp.StatusCode, audioPath)
	}

	var t Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return Transcript{}, err
	}
	return t, nil
}
