package service

import (
	"context"

	"go.uber.org/zap"

	"sauti/internal/catalog"
	"sauti/internal/nlp"
)

// semanticConfidenceThreshold gates when a semantic-tier result may override
// the keyword tier. Semantic evidence is treated as higher-precision only
// when confident; the keyword heuristic is the fallback of record.
const semanticConfidenceThreshold = 0.5

// MatcherService resolves free-form answers to the most plausible question.
type MatcherService struct {
	cat      *catalog.Catalog
	semantic nlp.SimilarityScorer // nil when the capability is unavailable
	log      *zap.Logger
}

// NewMatcherService builds a matcher over the catalog. semantic may be nil;
// matching then runs on the keyword tier alone.
func NewMatcherService(cat *catalog.Catalog, semantic nlp.SimilarityScorer, log *zap.Logger) *MatcherService {
	if log == nil {
		log = zap.NewNop()
	}
	return &MatcherService{cat: cat, semantic: semantic, log: log}
}

// Tier names the matching tier this instance was constructed with, for
// auditability of degraded runs.
func (s *MatcherService) Tier() string {
	if s.semantic != nil {
		return s.semantic.Name()
	}
	return "lexical"
}

// Match returns the id of the question the text most plausibly answers and a
// confidence in [0,1]. Confidence 0.0 means unmatched, best-effort: the
// lexicographically smallest question id is returned rather than an error.
// Deterministic for identical (text, catalog, language) inputs.
func (s *MatcherService) Match(ctx context.Context, text, lang string) (string, float64) {
	questions := s.cat.Questions()
	candidates := make([]string, len(questions))
	for i, q := range questions {
		candidates[i] = s.cat.QuestionText(q, lang)
	}

	// Keyword overlap tier, always available. Ties keep the earliest
	// question in declaration order.
	lexical := &nlp.LexicalScorer{Lang: lang}
	kwScores, _ := lexical.Score(ctx, text, candidates)
	kwID, kwScore := "", 0.0
	for i, sc := range kwScores {
		if sc > kwScore {
			kwID, kwScore = questions[i].ID, sc
		}
	}

	// Semantic tier, consulted only when the capability is present.
	if s.semantic != nil {
		scores, err := s.semantic.Score(ctx, text, candidates)
		if err != nil {
			s.log.Warn("semantic scorer failed, keyword tier stands",
				zap.String("tier", s.semantic.Name()), zap.Error(err))
		} else if len(scores) == len(questions) {
			semID, semScore := "", 0.0
			for i, sc := range scores {
				if sc > semScore {
					semID, semScore = questions[i].ID, sc
				}
			}
			if semScore > semanticConfidenceThreshold && semID != kwID {
				s.log.Debug("semantic tier overrides keyword tier",
					zap.String("keyword_pick", kwID), zap.String("semantic_pick", semID),
					zap.Float64("score", semScore))
				return semID, semScore
			}
		}
	}

	if kwScore > 0 {
		return kwID, kwScore
	}

	// Nothing scored above zero under either tier: fall back to the
	// lowest question id with confidence 0.0.
	lowest := questions[0].ID
	for _, q := range questions[1:] {
		if q.ID < lowest {
			lowest = q.ID
		}
	}
	return lowest, 0.0
}
