// Package catalog holds the immutable in-memory representation of a loaded
// survey. Everything downstream (matching, record building, analysis) works
// against a Catalog and never mutates it, so a single instance is safe to
// share across workers.
package catalog

import (
	"encoding/json"
	"fmt"

	"sauti/internal/errs"
	"sauti/internal/model"
)

// DefaultLanguage is assumed when a survey does not declare one.
const DefaultLanguage = "en"

// Catalog wraps a validated Survey with id lookup and declaration order.
type Catalog struct {
	survey *model.Survey
	byID   map[string]*model.Question
	order  []*model.Question
}

// Parse decodes a survey definition document.
func Parse(data []byte) (*model.Survey, error) {
	var s model.Survey
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errs.Schema("", "cannot decode survey document: %v", err)
	}
	return &s, nil
}

// New validates the survey and builds the catalog. Validation fails fast on
// the first violation, naming the offending id; no partial catalog is ever
// returned.
func New(survey *model.Survey) (*Catalog, error) {
	if survey == nil {
		return nil, errs.Schema("", "survey is nil")
	}
	if survey.SurveyID == "" {
		return nil, errs.Schema("", "survey_id is empty")
	}
	if len(survey.Questions) == 0 {
		return nil, errs.Schema(survey.SurveyID, "survey has no questions")
	}
	if survey.DefaultLang == "" {
		survey.DefaultLang = DefaultLanguage
	}

	c := &Catalog{
		survey: survey,
		byID:   make(map[string]*model.Question, len(survey.Questions)),
		order:  make([]*model.Question, 0, len(survey.Questions)),
	}

	for i := range survey.Questions {
		q := &survey.Questions[i]
		if q.ID == "" {
			return nil, errs.Schema(survey.SurveyID, "question at index %d has no id", i)
		}
		if _, dup := c.byID[q.ID]; dup {
			return nil, errs.Schema(q.ID, "duplicate question id")
		}
		if !q.Type.Valid() {
			return nil, errs.Schema(q.ID, "unrecognized question type %q", q.Type)
		}
		if q.Text.Get(survey.DefaultLang, survey.DefaultLang) == "" {
			return nil, errs.Schema(q.ID, "question has no text in default language %q", survey.DefaultLang)
		}
		if q.Type == model.TypeMultipleChoice {
			if len(q.Options) == 0 {
				return nil, errs.Schema(q.ID, "multiple_choice question has no options")
			}
			seen := make(map[string]struct{}, len(q.Options))
			for _, opt := range q.Options {
				if opt.ID == "" {
					return nil, errs.Schema(q.ID, "option with empty id")
				}
				if _, dup := seen[opt.ID]; dup {
					return nil, errs.Schema(opt.ID, "duplicate option id in question %q", q.ID)
				}
				seen[opt.ID] = struct{}{}
			}
		}
		c.byID[q.ID] = q
		c.order = append(c.order, q)
	}

	return c, nil
}

// Load parses and validates a survey document in one step.
func Load(data []byte) (*Catalog, error) {
	s, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return New(s)
}

// Survey returns the underlying survey value.
func (c *Catalog) Survey() *model.Survey { return c.survey }

// SurveyID returns the survey identifier.
func (c *Catalog) SurveyID() string { return c.survey.SurveyID }

// DefaultLang returns the survey's declared fallback language.
func (c *Catalog) DefaultLang() string { return c.survey.DefaultLang }

// Lookup returns the question with the given id.
func (c *Catalog) Lookup(questionID string) (*model.Question, error) {
	q, ok := c.byID[questionID]
	if !ok {
		return nil, errs.NotFound(questionID)
	}
	return q, nil
}

// Questions returns all questions in declaration order. The slice must not
// be modified; declaration order drives tie-breaks and correlation ordering
// downstream.
func (c *Catalog) Questions() []*model.Question { return c.order }

// QuestionText returns a question's text in lang, falling back to the
// survey's default language.
func (c *Catalog) QuestionText(q *model.Question, lang string) string {
	return q.Text.Get(lang, c.survey.DefaultLang)
}

// String implements fmt.Stringer for debug logging.
func (c *Catalog) String() string {
	return fmt.Sprintf("catalog(%s, %d questions)", c.survey.SurveyID, len(c.order))
}
