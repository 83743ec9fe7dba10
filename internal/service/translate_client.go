package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// TranslateClient talks to an external translation service over HTTP.
// Contract: POST {endpoint} with {"text","source_language","target_language"}
// returning {"translated_text"}, and POST {endpoint}/detect with {"text"}
// returning {"language"}.
type TranslateClient struct {
	endpoint string
	client   *http.Client
}

// NewTranslateClient returns nil when no endpoint is configured; the pipeline
// then runs without translation.
func NewTranslateClient(endpoint string) *TranslateClient {
	if endpoint == "" {
		return nil
	}
	return &TranslateClient{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *TranslateClient) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	var out struct {
		TranslatedText string `json:"translated_text"`
	}
	err := c.post(ctx, c.endpoint, map[string]string{
		"text":            text,
		"source_language": sourceLang,
		"target_language": targetLang,
	}, &out)
	if err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}
	return out.TranslatedText, nil
}

func (c *TranslateClient) DetectLanguage(ctx context.Context, text string) (string, error) {
	var out struct {
		Language string `json:"language"`
	}
	err := c.post(ctx, c.endpoint+"/detect", map[string]string{"text": text}, &out)
	if err != nil {
		return "", fmt.Errorf("detect language: %w", err)
	}
	return out.Language, nil
}

func (c *TranslateClient) post(ctx context.Context, url string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("translation service returned status %d", resp.StatusCode)
	}
	return json.Unmarshal(data, out)
}
