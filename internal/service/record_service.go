package service

import (
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sauti/internal/catalog"
	"sauti/internal/errs"
	"sauti/internal/model"
	"sauti/internal/nlp"
)

// RecordService validates and normalizes raw answers against their question's
// type contract, producing immutable ResponseRecords.
type RecordService struct {
	cat *catalog.Catalog
	log *zap.Logger
}

func NewRecordService(cat *catalog.Catalog, log *zap.Logger) *RecordService {
	if log == nil {
		log = zap.NewNop()
	}
	return &RecordService{cat: cat, log: log}
}

// Build validates raw against q and returns the structured record.
// matchConfidence is non-nil only when the question was resolved by the
// matcher. Build never mutates the survey or prior records.
func (s *RecordService) Build(raw model.RawAnswer, q *model.Question, matchConfidence *float64) (*model.ResponseRecord, error) {
	if q == nil {
		return nil, errs.NotFound(raw.DeclaredQuestionID)
	}

	lang := raw.Language
	if lang == "" {
		lang = s.cat.DefaultLang()
	}

	var normalized string
	var err error
	switch q.Type {
	case model.TypeMultipleChoice:
		normalized, err = s.normalizeChoice(raw.Content, q, lang)
	case model.TypeYesNo:
		normalized, err = s.normalizeYesNo(raw.Content, q.ID)
	case model.TypeOpenEnded:
		normalized = strings.TrimSpace(raw.Content)
		if normalized == "" {
			err = errs.Validation(q.ID, "empty open-ended response")
		}
	default:
		// unreachable for catalog-validated questions
		err = errs.Validation(q.ID, "unrecognized question type %q", q.Type)
	}
	if err != nil {
		return nil, err
	}

	source := raw.Source
	if source == "" {
		source = model.SourceText
	}

	return &model.ResponseRecord{
		ID:              uuid.NewString(),
		QuestionID:      q.ID,
		ResponseType:    source,
		OriginalContent: raw.Content,
		NormalizedValue: normalized,
		Language:        lang,
		SessionID:       raw.SessionID,
		MatchConfidence: matchConfidence,
	}, nil
}

// normalizeChoice resolves a multiple-choice answer to an option id: exact
// id, case-insensitive id, case-insensitive display text, then token-subset
// match against the option text.
func (s *RecordService) normalizeChoice(content string, q *model.Question, lang string) (string, error) {
	answer := strings.TrimSpace(content)
	if answer == "" {
		return "", errs.Validation(q.ID, "empty multiple-choice response")
	}

	for _, opt := range q.Options {
		if opt.ID == answer {
			return opt.ID, nil
		}
	}
	lower := strings.ToLower(answer)
	for _, opt := range q.Options {
		if strings.ToLower(opt.ID) == lower {
			return opt.ID, nil
		}
	}
	for _, opt := range q.Options {
		optText := opt.Text.Get(lang, s.cat.DefaultLang())
		if optText != "" && strings.ToLower(optText) == lower {
			return opt.ID, nil
		}
	}

	// Spoken answers rarely repeat the option verbatim; accept when the
	// option's full vocabulary appears in the answer.
	answerSet := nlp.TokenSet(answer, lang)
	for _, opt := range q.Options {
		optText := opt.Text.Get(lang, s.cat.DefaultLang())
		optSet := nlp.TokenSet(optText, lang)
		if len(optSet) > 0 && nlp.OverlapScore(answerSet, optSet) == 1.0 {
			return opt.ID, nil
		}
	}

	return "", errs.Validation(q.ID, "%q does not match any option", answer)
}

// normalizeYesNo maps an answer onto "yes"/"no" using the fixed affirmative
// and negative vocabularies of both supported languages, case-insensitively.
func (s *RecordService) normalizeYesNo(content, questionID string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(content))
	if trimmed == "" {
		return "", errs.Validation(questionID, "empty yes/no response")
	}
	if nlp.Affirmative(trimmed) {
		return "yes", nil
	}
	if nlp.Negative(trimmed) {
		return "no", nil
	}
	for _, tok := range nlp.Fields(content) {
		if nlp.Affirmative(tok) {
			return "yes", nil
		}
		if nlp.Negative(tok) {
			return "no", nil
		}
	}
	return "", errs.Validation(questionID, "unrecognized yes/no token %q", trimmed)
}
