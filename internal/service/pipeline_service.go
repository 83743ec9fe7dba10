package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"sauti/internal/catalog"
	"sauti/internal/errs"
	"sauti/internal/model"
)

// Translator is the translation collaborator boundary. Implementations live
// outside the core; a nil Translator means answers are taken in the language
// they were declared in.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
	DetectLanguage(ctx context.Context, text string) (string, error)
}

// Transcript is the transcription collaborator's output.
type Transcript struct {
	Text             string `json:"text"`
	DetectedLanguage string `json:"detected_language"`
}

// Transcriber is the speech-to-text collaborator boundary.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, lang string) (Transcript, error)
}

// RunResult is one pipeline run's output: the ordered record set and the
// computed analysis document.
type RunResult struct {
	Records []*model.ResponseRecord
	Report  *model.AnalysisReport
}

// PipelineService sequences one survey run: transcription, translation,
// matching, record building, and analysis. The core computations it calls
// are pure; all I/O happens in the collaborators before data reaches them.
type PipelineService struct {
	matcher     *MatcherService
	records     *RecordService
	analysis    *AnalysisService
	translator  Translator  // nil disables translation
	transcriber Transcriber // nil disables audio answers
	workingLang string
	freeForm    bool
	log         *zap.Logger
}

func NewPipelineService(
	matcher *MatcherService,
	records *RecordService,
	analysis *AnalysisService,
	translator Translator,
	transcriber Transcriber,
	workingLang string,
	freeForm bool,
	log *zap.Logger,
) *PipelineService {
	if log == nil {
		log = zap.NewNop()
	}
	if workingLang == "" {
		workingLang = catalog.DefaultLanguage
	}
	return &PipelineService{
		matcher:     matcher,
		records:     records,
		analysis:    analysis,
		translator:  translator,
		transcriber: transcriber,
		workingLang: workingLang,
		freeForm:    freeForm,
		log:         log,
	}
}

// Run processes a batch of raw answers against the catalog. Invalid answers
// land in the report's rejected list; answers referencing unknown questions
// are logged and skipped. The analysis document always covers every catalog
// question.
func (s *PipelineService) Run(ctx context.Context, cat *catalog.Catalog, answers []model.RawAnswer) (*RunResult, error) {
	var records []*model.ResponseRecord
	var rejected []model.RejectedResponse

	for _, raw := range answers {
		rec, err := s.processOne(ctx, cat, raw)
		if err != nil {
			var ve *errs.ValidationError
			switch {
			case errs.IsNotFound(err):
				s.log.Warn("skipping answer for unknown question",
					zap.String("question_id", raw.DeclaredQuestionID))
			case errors.As(err, &ve):
				rejected = append(rejected, model.RejectedResponse{
					QuestionID:      ve.QuestionID,
					OriginalContent: raw.Content,
					Reason:          ve.Reason,
				})
			default:
				return nil, err
			}
			continue
		}
		records = append(records, rec)
	}

	report := s.analysis.Analyze(ctx, records, cat)
	report.GeneratedAt = time.Now().UTC()
	report.Rejected = rejected

	s.log.Info("pipeline run complete",
		zap.String("survey_id", cat.SurveyID()),
		zap.Int("records", len(records)),
		zap.Int("rejected", len(rejected)),
		zap.String("match_tier", s.matcher.Tier()))

	return &RunResult{Records: records, Report: report}, nil
}

// processOne takes a raw answer through transcription, translation, matching
// and record building.
func (s *PipelineService) processOne(ctx context.Context, cat *catalog.Catalog, raw model.RawAnswer) (*model.ResponseRecord, error) {
	if raw.Source == model.SourceAudio && raw.Content == "" {
		if s.transcriber == nil {
			return nil, errs.Validation(raw.DeclaredQuestionID, "audio answer %q but no transcriber configured", raw.SourceFile)
		}
		hint := raw.Language
		if hint == "" {
			hint = s.workingLang
		}
		transcript, err := s.transcriber.Transcribe(ctx, raw.SourceFile, hint)
		if err != nil {
			return nil, errs.Validation(raw.DeclaredQuestionID, "transcription of %q failed: %v", raw.SourceFile, err)
		}
		raw.Content = transcript.Text
		if transcript.DetectedLanguage != "" {
			raw.Language = transcript.DetectedLanguage
		}
	}

	if strings.TrimSpace(raw.Content) == "" {
		return nil, errs.Validation(raw.DeclaredQuestionID, "empty response")
	}

	if s.translator != nil {
		if raw.Language == "" {
			lang, err := s.translator.DetectLanguage(ctx, raw.Content)
			if err != nil {
				s.log.Warn("language detection failed, assuming working language", zap.Error(err))
				raw.Language = s.workingLang
			} else {
				raw.Language = lang
			}
		}
		if raw.Language != s.workingLang {
			translated, err := s.translator.Translate(ctx, raw.Content, raw.Language, s.workingLang)
			if err != nil {
				return nil, errs.Validation(raw.DeclaredQuestionID, "translation from %q failed: %v", raw.Language, err)
			}
			raw.Content = translated
			raw.Language = s.workingLang
		}
	} else if raw.Language == "" {
		raw.Language = s.workingLang
	}

	var question *model.Question
	var confidence *float64
	if raw.FreeForm() {
		if !s.freeForm {
			return nil, errs.Validation("", "free-form answers are disabled for this run")
		}
		qid, conf := s.matcher.Match(ctx, raw.Content, raw.Language)
		q, err := cat.Lookup(qid)
		if err != nil {
			return nil, err
		}
		question = q
		confidence = &conf
	} else {
		q, err := cat.Lookup(raw.DeclaredQuestionID)
		if err != nil {
			return nil, err
		}
		question = q
	}

	return s.records.Build(raw, question, confidence)
}
