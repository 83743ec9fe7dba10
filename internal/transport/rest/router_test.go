package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sauti/internal/model"
)

type memSurveyRepo struct {
	surveys map[string]*model.Survey
}

func (m *memSurveyRepo) Upsert(ctx context.Context, survey *model.Survey) error {
	m.surveys[survey.SurveyID] = survey
	return nil
}

func (m *memSurveyRepo) GetByID(ctx context.Context, surveyID string) (*model.Survey, error) {
	return m.surveys[surveyID], nil
}

func (m *memSurveyRepo) List(ctx context.Context) ([]*model.Survey, error) {
	out := []*model.Survey{}
	for _, s := range m.surveys {
		out = append(out, s)
	}
	return out, nil
}

type memResponseRepo struct {
	records map[string][]*model.ResponseRecord
}

func (m *memResponseRepo) SaveBatch(ctx context.Context, surveyID string, records []*model.ResponseRecord) error {
	m.records[surveyID] = append(m.records[surveyID], records...)
	return nil
}

func (m *memResponseRepo) ListBySurvey(ctx context.Context, surveyID string) ([]*model.ResponseRecord, error) {
	return m.records[surveyID], nil
}

func (m *memResponseRepo) DeleteBySurvey(ctx context.Context, surveyID string) error {
	delete(m.records, surveyID)
	return nil
}

type memAnalysisRepo struct {
	reports map[string]*model.AnalysisReport
}

func (m *memAnalysisRepo) Save(ctx context.Context, report *model.AnalysisReport) error {
	m.reports[report.SurveyID] = report
	return nil
}

func (m *memAnalysisRepo) GetBySurvey(ctx context.Context, surveyID string) (*model.AnalysisReport, error) {
	return m.reports[surveyID], nil
}

type memAnalysisCache struct {
	reports map[string]*model.AnalysisReport
}

func (m *memAnalysisCache) Get(ctx context.Context, surveyID string) (*model.AnalysisReport, error) {
	return m.reports[surveyID], nil
}

func (m *memAnalysisCache) Set(ctx context.Context, report *model.AnalysisReport) error {
	m.reports[report.SurveyID] = report
	return nil
}

func (m *memAnalysisCache) Invalidate(ctx context.Context, surveyID string) error {
	delete(m.reports, surveyID)
	return nil
}

func testRouter(t *testing.T) (http.Handler, *memAnalysisCache) {
	t.Helper()
	cache := &memAnalysisCache{reports: map[string]*model.AnalysisReport{}}
	container := &Container{
		SurveyRepo:    &memSurveyRepo{surveys: map[string]*model.Survey{}},
		ResponseRepo:  &memResponseRepo{records: map[string][]*model.ResponseRecord{}},
		AnalysisRepo:  &memAnalysisRepo{reports: map[string]*model.AnalysisReport{}},
		AnalysisCache: cache,
		WorkingLang:   "en",
		FreeForm:      true,
	}
	return NewRouter(container), cache
}

const surveyDoc = `{
	"survey_id": "water-2026",
	"default_language": "en",
	"questions": [
		{"id": "q1", "type": "yes_no", "text": {"en": "Is the water safe to drink?"}},
		{"id": "q2", "type": "open_ended", "text": {"en": "What is the biggest challenge with transport to the clinic?"}}
	]
}`

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	router, _ := testRouter(t)
	rr := do(t, router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestSurveyLifecycle(t *testing.T) {
	router, _ := testRouter(t)

	rr := do(t, router, http.MethodPost, "/v1/surveys", surveyDoc)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = do(t, router, http.MethodGet, "/v1/surveys/water-2026", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var survey model.Survey
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &survey))
	assert.Equal(t, "water-2026", survey.SurveyID)
	assert.Len(t, survey.Questions, 2)

	rr = do(t, router, http.MethodGet, "/v1/surveys/nope", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSurveyCreateRejectsBadSchema(t *testing.T) {
	router, _ := testRouter(t)

	bad := `{"survey_id": "s1", "questions": [{"id": "q1", "type": "rating", "text": {"en": "Rate us"}}]}`
	rr := do(t, router, http.MethodPost, "/v1/surveys", bad)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestIngestAndAnalyze(t *testing.T) {
	router, cache := testRouter(t)

	rr := do(t, router, http.MethodPost, "/v1/surveys", surveyDoc)
	require.Equal(t, http.StatusCreated, rr.Code)

	ingest := `{"answers": [
		{"content": "yes", "declared_question_id": "q1", "session_id": "s1"},
		{"content": "The road floods every rainy season.", "declared_question_id": "q2", "session_id": "s1"},
		{"content": "maybe", "declared_question_id": "q1", "session_id": "s2"}
	]}`
	rr = do(t, router, http.MethodPost, "/v1/surveys/water-2026/responses", ingest)
	require.Equal(t, http.StatusCreated, rr.Code)

	var ingested struct {
		Accepted int                      `json:"accepted"`
		Rejected []model.RejectedResponse `json:"rejected"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ingested))
	assert.Equal(t, 2, ingested.Accepted)
	require.Len(t, ingested.Rejected, 1)
	assert.Equal(t, "q1", ingested.Rejected[0].QuestionID)

	// no analysis computed yet
	rr = do(t, router, http.MethodGet, "/v1/surveys/water-2026/analysis", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, router, http.MethodPost, "/v1/surveys/water-2026/analysis", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var report model.AnalysisReport
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
	assert.Equal(t, 1, report.Results["q1"].Counts["yes"])
	assert.Equal(t, "yes", report.Results["q1"].MostCommon)

	// the computed report is now cached and served on reads
	assert.NotNil(t, cache.reports["water-2026"])
	rr = do(t, router, http.MethodGet, "/v1/surveys/water-2026/analysis", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestIngestUnknownSurvey(t *testing.T) {
	router, _ := testRouter(t)

	rr := do(t, router, http.MethodPost, "/v1/surveys/ghost/responses", `{"answers": [{"content": "yes", "declared_question_id": "q1"}]}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestClearResponses(t *testing.T) {
	router, cache := testRouter(t)

	do(t, router, http.MethodPost, "/v1/surveys", surveyDoc)
	do(t, router, http.MethodPost, "/v1/surveys/water-2026/responses",
		`{"answers": [{"content": "yes", "declared_question_id": "q1"}]}`)
	do(t, router, http.MethodPost, "/v1/surveys/water-2026/analysis", "")
	require.NotNil(t, cache.reports["water-2026"])

	rr := do(t, router, http.MethodDelete, "/v1/surveys/water-2026/responses", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Nil(t, cache.reports["water-2026"])

	rr = do(t, router, http.MethodGet, "/v1/surveys/water-2026/responses", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var listed struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listed))
	assert.Zero(t, listed.Count)
}

func TestListResponses(t *testing.T) {
	router, _ := testRouter(t)

	do(t, router, http.MethodPost, "/v1/surveys", surveyDoc)
	do(t, router, http.MethodPost, "/v1/surveys/water-2026/responses",
		`{"answers": [{"content": "yes", "declared_question_id": "q1"}]}`)

	rr := do(t, router, http.MethodGet, "/v1/surveys/water-2026/responses", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var listed struct {
		Count   int                     `json:"count"`
		Records []*model.ResponseRecord `json:"records"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listed))
	assert.Equal(t, 1, listed.Count)
	require.Len(t, listed.Records, 1)
	assert.Equal(t, "yes", listed.Records[0].NormalizedValue)
}
