package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sauti/internal/errs"
	"sauti/internal/model"
)

func validSurvey() *model.Survey {
	return &model.Survey{
		SurveyID:    "water-2026",
		DefaultLang: "en",
		Questions: []model.Question{
			{
				ID:   "q1",
				Type: model.TypeMultipleChoice,
				Text: model.LocalizedText{"en": "Where do you fetch water?", "sw": "Unachota maji wapi?"},
				Options: []model.Option{
					{ID: "opt1", Text: model.LocalizedText{"en": "Borehole"}},
					{ID: "opt2", Text: model.LocalizedText{"en": "River"}},
				},
			},
			{
				ID:   "q2",
				Type: model.TypeYesNo,
				Text: model.LocalizedText{"en": "Is the water safe to drink?"},
			},
			{
				ID:   "q3",
				Type: model.TypeOpenEnded,
				Text: model.LocalizedText{"en": "What is the biggest challenge with transport to the clinic?"},
			},
		},
	}
}

func TestNewValid(t *testing.T) {
	cat, err := New(validSurvey())
	require.NoError(t, err)

	assert.Equal(t, "water-2026", cat.SurveyID())
	assert.Equal(t, "en", cat.DefaultLang())
	assert.Len(t, cat.Questions(), 3)

	// declaration order is preserved
	ids := []string{}
	for _, q := range cat.Questions() {
		ids = append(ids, q.ID)
	}
	assert.Equal(t, []string{"q1", "q2", "q3"}, ids)
}

func TestNewRejectsInvalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *model.Survey)
		wantID string
	}{
		{
			name:   "empty survey id",
			mutate: func(s *model.Survey) { s.SurveyID = "" },
		},
		{
			name:   "no questions",
			mutate: func(s *model.Survey) { s.Questions = nil },
			wantID: "water-2026",
		},
		{
			name:   "duplicate question id",
			mutate: func(s *model.Survey) { s.Questions[1].ID = "q1" },
			wantID: "q1",
		},
		{
			name:   "unrecognized type",
			mutate: func(s *model.Survey) { s.Questions[0].Type = "rating" },
			wantID: "q1",
		},
		{
			name:   "missing default language text",
			mutate: func(s *model.Survey) { s.Questions[2].Text = model.LocalizedText{} },
			wantID: "q3",
		},
		{
			name:   "multiple choice without options",
			mutate: func(s *model.Survey) { s.Questions[0].Options = nil },
			wantID: "q1",
		},
		{
			name:   "duplicate option id",
			mutate: func(s *model.Survey) { s.Questions[0].Options[1].ID = "opt1" },
			wantID: "opt1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSurvey()
			tt.mutate(s)

			cat, err := New(s)
			require.Error(t, err)
			assert.Nil(t, cat)
			assert.True(t, errs.IsSchema(err))

			var se *errs.SchemaError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.wantID, se.ID)
		})
	}
}

func TestLookup(t *testing.T) {
	cat, err := New(validSurvey())
	require.NoError(t, err)

	q, err := cat.Lookup("q2")
	require.NoError(t, err)
	assert.Equal(t, model.TypeYesNo, q.Type)

	_, err = cat.Lookup("q99")
	assert.True(t, errs.IsNotFound(err))
}

func TestQuestionTextFallback(t *testing.T) {
	cat, err := New(validSurvey())
	require.NoError(t, err)

	q1, _ := cat.Lookup("q1")
	assert.Equal(t, "Unachota maji wapi?", cat.QuestionText(q1, "sw"))

	// q2 has no swahili text, falls back to the default language
	q2, _ := cat.Lookup("q2")
	assert.Equal(t, "Is the water safe to drink?", cat.QuestionText(q2, "sw"))
}

func TestLoad(t *testing.T) {
	doc := []byte(`{
		"survey_id": "s1",
		"questions": [
			{"id": "q1", "type": "open_ended", "text": {"en": "Any comments?"}}
		]
	}`)

	cat, err := Load(doc)
	require.NoError(t, err)
	assert.Equal(t, "s1", cat.SurveyID())
	// default language is assumed when the document omits it
	assert.Equal(t, "en", cat.DefaultLang())

	_, err = Load([]byte("not json"))
	assert.True(t, errs.IsSchema(err))
}
