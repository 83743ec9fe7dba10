package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sauti/internal/model"
)

func record(qid, value, session string) *model.ResponseRecord {
	return &model.ResponseRecord{
		ID:              uuid.NewString(),
		QuestionID:      qid,
		ResponseType:    model.SourceText,
		OriginalContent: value,
		NormalizedValue: value,
		Language:        "en",
		SessionID:       session,
	}
}

func TestAnalyzeMultipleChoice(t *testing.T) {
	cat := testCatalog(t)
	svc := NewAnalysisService(nil, nil)

	records := []*model.ResponseRecord{
		record("q1", "opt1", ""),
		record("q1", "opt1", ""),
		record("q1", "opt1", ""),
		record("q1", "opt2", ""),
	}

	report := svc.Analyze(context.Background(), records, cat)
	result := report.Results["q1"]

	assert.Equal(t, 4, result.ResponseCount)
	assert.Equal(t, map[string]int{"opt1": 3, "opt2": 1}, result.Counts)
	assert.Equal(t, map[string]float64{"opt1": 75.0, "opt2": 25.0}, result.Percentages)
	assert.Equal(t, "opt1", result.MostCommon)
}

func TestAnalyzeYesNo(t *testing.T) {
	cat := testCatalog(t)
	svc := NewAnalysisService(nil, nil)

	report := svc.Analyze(context.Background(), []*model.ResponseRecord{
		record("q2", "yes", ""),
		record("q2", "yes", ""),
		record("q2", "no", ""),
	}, cat)
	result := report.Results["q2"]

	assert.Equal(t, map[string]int{"yes": 2, "no": 1}, result.Counts)
	assert.Equal(t, 66.7, result.Percentages["yes"])
	assert.Equal(t, 33.3, result.Percentages["no"])
	assert.Equal(t, "yes", result.MostCommon)
}

func TestAnalyzeYesNoTie(t *testing.T) {
	cat := testCatalog(t)
	svc := NewAnalysisService(nil, nil)

	report := svc.Analyze(context.Background(), []*model.ResponseRecord{
		record("q2", "yes", ""),
		record("q2", "no", ""),
	}, cat)

	assert.Equal(t, "yes", report.Results["q2"].MostCommon)
}

func TestAnalyzeKeywords(t *testing.T) {
	cat := testCatalog(t)
	svc := NewAnalysisService(nil, nil)

	records := []*model.ResponseRecord{
		record("q3", "the cost of transport is high", ""),
		record("q3", "cost is the main problem", ""),
		record("q3", "fuel cost keeps rising", ""),
		record("q3", "cost again", ""),
		record("q3", "everything comes down to cost", ""),
		record("q3", "water shortage", ""),
		record("q3", "water pressure", ""),
	}

	report := svc.Analyze(context.Background(), records, cat)
	keywords := report.Results["q3"].Keywords

	require.NotEmpty(t, keywords)
	assert.Equal(t, "cost", keywords[0].Term)
	assert.Equal(t, 5, keywords[0].Frequency)
	assert.LessOrEqual(t, len(keywords), 10)

	// frequencies never increase down the list
	for i := 1; i < len(keywords); i++ {
		assert.GreaterOrEqual(t, keywords[i-1].Frequency, keywords[i].Frequency)
	}
}

func TestAnalyzeThemesKeywordTier(t *testing.T) {
	cat := testCatalog(t)
	svc := NewAnalysisService(nil, nil)

	records := []*model.ResponseRecord{
		record("q3", "water pump broken", ""),
		record("q3", "water pump leaking", ""),
		record("q3", "water pump slow", ""),
	}

	report := svc.Analyze(context.Background(), records, cat)
	themes := report.Results["q3"].Themes

	require.Len(t, themes, 1)
	assert.Equal(t, "pump", themes[0].Label)
	assert.Equal(t, 3, themes[0].Size)
	assert.False(t, report.SemanticTierUsed)
}

func TestAnalyzeSentiment(t *testing.T) {
	cat := testCatalog(t)
	svc := NewAnalysisService(nil, nil)

	report := svc.Analyze(context.Background(), []*model.ResponseRecord{
		record("q3", "the water is clean and safe", ""),
		record("q3", "the pump is broken", ""),
		record("q3", "it works", ""),
	}, cat)

	sentiment := report.Results["q3"].Sentiment
	require.NotNil(t, sentiment)
	assert.Equal(t, 33.3, sentiment.Positive)
	assert.Equal(t, 33.3, sentiment.Neutral)
	assert.Equal(t, 33.3, sentiment.Negative)
}

func TestAnalyzeEmptyQuestionPresent(t *testing.T) {
	cat := testCatalog(t)
	svc := NewAnalysisService(nil, nil)

	report := svc.Analyze(context.Background(), nil, cat)

	require.Len(t, report.Results, 3)
	q3 := report.Results["q3"]
	assert.Zero(t, q3.ResponseCount)
	assert.Empty(t, q3.Keywords)
	assert.Empty(t, q3.Themes)
	require.NotNil(t, q3.Sentiment)
	assert.Zero(t, q3.Sentiment.Positive)

	q1 := report.Results["q1"]
	assert.Equal(t, map[string]int{"opt1": 0, "opt2": 0}, q1.Counts)
	assert.Empty(t, q1.MostCommon)
}

func TestAnalyzeSkipsUnknownQuestions(t *testing.T) {
	cat := testCatalog(t)
	svc := NewAnalysisService(nil, nil)

	report := svc.Analyze(context.Background(), []*model.ResponseRecord{
		record("q1", "opt1", ""),
		record("q99", "stray", ""),
	}, cat)

	assert.Equal(t, 1, report.Overall.TotalResponses)
	assert.NotContains(t, report.Results, "q99")
}

func TestAnalyzeIdempotent(t *testing.T) {
	cat := testCatalog(t)
	svc := NewAnalysisService(nil, nil)

	records := []*model.ResponseRecord{
		record("q1", "opt1", "s1"),
		record("q1", "opt2", "s2"),
		record("q2", "yes", "s1"),
		record("q3", "the cost of transport is high", "s1"),
		record("q3", "transport cost is a big problem", "s2"),
	}

	first, err := json.Marshal(svc.Analyze(context.Background(), records, cat))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		next, err := json.Marshal(svc.Analyze(context.Background(), records, cat))
		require.NoError(t, err)
		assert.Equal(t, string(first), string(next))
	}
}

func TestAnalyzeIncremental(t *testing.T) {
	cat := testCatalog(t)
	svc := NewAnalysisService(nil, nil)

	records := []*model.ResponseRecord{
		record("q2", "yes", ""),
		record("q2", "no", ""),
	}
	before := svc.Analyze(context.Background(), records, cat)
	assert.Equal(t, 1, before.Results["q2"].Counts["yes"])

	after := svc.Analyze(context.Background(), append(records, record("q2", "yes", "")), cat)
	assert.Equal(t, 2, after.Results["q2"].Counts["yes"])
	assert.Equal(t, 1, after.Results["q2"].Counts["no"])
}

func TestCorrelationGate(t *testing.T) {
	cat := testCatalog(t)
	svc := NewAnalysisService(nil, nil)

	paired := func(n int) []*model.ResponseRecord {
		var recs []*model.ResponseRecord
		for i := 0; i < n; i++ {
			session := string(rune('a' + i))
			recs = append(recs,
				record("q1", "opt1", session),
				record("q2", "yes", session))
		}
		return recs
	}

	// four paired sessions stay below the reporting floor
	report := svc.Analyze(context.Background(), paired(4), cat)
	assert.Empty(t, report.Correlations)

	report = svc.Analyze(context.Background(), paired(5), cat)
	require.Len(t, report.Correlations, 1)
	corr := report.Correlations[0]
	assert.Equal(t, "q1", corr.QuestionA)
	assert.Equal(t, "q2", corr.QuestionB)
	assert.Equal(t, 5, corr.Observations)
	assert.Equal(t, map[string]int{"opt1|yes": 5}, corr.Counts)
}

func TestOverallStats(t *testing.T) {
	cat := testCatalog(t)
	svc := NewAnalysisService(nil, nil)

	// two sessions each answering two of three questions
	report := svc.Analyze(context.Background(), []*model.ResponseRecord{
		record("q1", "opt1", "s1"),
		record("q2", "yes", "s1"),
		record("q1", "opt2", "s2"),
		record("q3", "transport is hard", "s2"),
	}, cat)

	assert.Equal(t, 4, report.Overall.TotalResponses)
	assert.Equal(t, 66.7, report.Overall.CompletionRate)

	// without session ids: fraction of questions that got any response
	report = svc.Analyze(context.Background(), []*model.ResponseRecord{
		record("q1", "opt1", ""),
		record("q2", "yes", ""),
	}, cat)
	assert.Equal(t, 66.7, report.Overall.CompletionRate)
}
