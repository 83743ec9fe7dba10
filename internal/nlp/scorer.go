package nlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

// SimilarityScorer scores a piece of text against candidate texts. Two
// variants exist: the lexical scorer is always available, the embedding
// scorer only when an embedding endpoint is configured. Callers depend on
// this interface, never on a concrete variant.
type SimilarityScorer interface {
	// Score returns one similarity in [0,1] per candidate.
	Score(ctx context.Context, text string, candidates []string) ([]float64, error)
	Name() string
}

// LexicalScorer scores by recall-weighted token overlap. Deterministic and
// dependency-free; the fallback of record.
type LexicalScorer struct {
	Lang string
}

func (s *LexicalScorer) Name() string { return "lexical" }

func (s *LexicalScorer) Score(_ context.Context, text string, candidates []string) ([]float64, error) {
	answerSet := TokenSet(text, s.Lang)
	scores := make([]float64, len(candidates))
	for i, cand := range candidates {
		scores[i] = OverlapScore(answerSet, TokenSet(cand, s.Lang))
	}
	return scores, nil
}

// EmbeddingScorer scores by cosine similarity of vectors returned by an
// external embedding service. The service contract is a single POST taking
// {"texts": [...]} and returning {"embeddings": [[...], ...]}.
type EmbeddingScorer struct {
	endpoint string
	client   *http.Client
}

// NewEmbeddingScorer returns nil when no endpoint is configured; absence of
// the capability is not an error.
func NewEmbeddingScorer(endpoint string) *EmbeddingScorer {
	if endpoint == "" {
		return nil
	}
	return &EmbeddingScorer{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *EmbeddingScorer) Name() string { return "semantic" }

func (s *EmbeddingScorer) Score(ctx context.Context, text string, candidates []string) ([]float64, error) {
	texts := append([]string{text}, candidates...)
	vectors, err := s.embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedding service returned %d vectors for %d texts", len(vectors), len(texts))
	}

	scores := make([]float64, len(candidates))
	for i := range candidates {
		scores[i] = cosine(vectors[0], vectors[i+1])
	}
	return scores, nil
}

func (s *EmbeddingScorer) embed(ctx context.Context, texts []string) ([][]float64, error) {
	reqBody, err := json.Marshal(map[string]interface{}{"texts": texts})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding service returned status %d", resp.StatusCode)
	}

	var out struct {
		Embeddings [][]float64 `json:"embeddings"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	return out.Embeddings, nil
}

func cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	// clamp: embeddings can produce tiny negatives
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}
