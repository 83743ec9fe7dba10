package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"sauti/internal/cache"
	"sauti/internal/catalog"
	"sauti/internal/model"
	"sauti/internal/nlp"
	"sauti/internal/repository"
	"sauti/internal/service"
)

// ResponseHandler ingests raw answers for a survey and serves the stored
// record set back.
type ResponseHandler struct {
	surveys     repository.SurveyRepo
	responses   repository.ResponseRepo
	cache       cache.AnalysisCache
	scorer      nlp.SimilarityScorer
	translator  service.Translator
	workingLang string
	freeForm    bool
	log         *zap.Logger
}

func NewResponseHandler(
	surveys repository.SurveyRepo,
	responses repository.ResponseRepo,
	analysisCache cache.AnalysisCache,
	scorer nlp.SimilarityScorer,
	translator service.Translator,
	workingLang string,
	freeForm bool,
	log *zap.Logger,
) *ResponseHandler {
	return &ResponseHandler{
		surveys:     surveys,
		responses:   responses,
		cache:       analysisCache,
		scorer:      scorer,
		translator:  translator,
		workingLang: workingLang,
		freeForm:    freeForm,
		log:         log,
	}
}

type ingestRequest struct {
	Answers []model.RawAnswer `json:"answers"`
}

type ingestResponse struct {
	SurveyID string                   `json:"survey_id"`
	Accepted int                      `json:"accepted"`
	Records  []*model.ResponseRecord  `json:"records"`
	Rejected []model.RejectedResponse `json:"rejected,omitempty"`
}

// Ingest handles POST /v1/surveys/{surveyID}/responses. Answers run through
// the full pipeline; accepted records are persisted and any cached analysis
// for the survey is invalidated.
func (h *ResponseHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	surveyID := mux.Vars(r)["surveyID"]

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Answers) == 0 {
		writeError(w, http.StatusBadRequest, "no answers provided")
		return
	}

	survey, err := h.surveys.GetByID(r.Context(), surveyID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if survey == nil {
		writeError(w, http.StatusNotFound, "survey not found")
		return
	}

	cat, err := catalog.New(survey)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	matcher := service.NewMatcherService(cat, h.scorer, h.log)
	records := service.NewRecordService(cat, h.log)
	analysis := service.NewAnalysisService(h.scorer, h.log)
	pipeline := service.NewPipelineService(matcher, records, analysis, h.translator, nil, h.workingLang, h.freeForm, h.log)

	result, err := pipeline.Run(r.Context(), cat, req.Answers)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := h.responses.SaveBatch(r.Context(), surveyID, result.Records); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := h.cache.Invalidate(r.Context(), surveyID); err != nil {
		h.log.Warn("analysis cache invalidation failed", zap.String("survey_id", surveyID), zap.Error(err))
	}

	writeJSON(w, http.StatusCreated, ingestResponse{
		SurveyID: surveyID,
		Accepted: len(result.Records),
		Records:  result.Records,
		Rejected: result.Report.Rejected,
	})
}

// Clear handles DELETE /v1/surveys/{surveyID}/responses: removes every stored
// record for the survey along with its cached analysis.
func (h *ResponseHandler) Clear(w http.ResponseWriter, r *http.Request) {
	surveyID := mux.Vars(r)["surveyID"]

	survey, err := h.surveys.GetByID(r.Context(), surveyID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if survey == nil {
		writeError(w, http.StatusNotFound, "survey not found")
		return
	}

	if err := h.responses.DeleteBySurvey(r.Context(), surveyID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := h.cache.Invalidate(r.Context(), surveyID); err != nil {
		h.log.Warn("analysis cache invalidation failed", zap.String("survey_id", surveyID), zap.Error(err))
	}

	writeJSON(w, http.StatusOK, map[string]string{"survey_id": surveyID, "status": "cleared"})
}

// List handles GET /v1/surveys/{surveyID}/responses
func (h *ResponseHandler) List(w http.ResponseWriter, r *http.Request) {
	surveyID := mux.Vars(r)["surveyID"]

	survey, err := h.surveys.GetByID(r.Context(), surveyID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if survey == nil {
		writeError(w, http.StatusNotFound, "survey not found")
		return
	}

	records, err := h.responses.ListBySurvey(r.Context(), surveyID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"survey_id": surveyID,
		"count":     len(records),
		"records":   records,
	})
}
