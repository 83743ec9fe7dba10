package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"sauti/internal/cache"
	"sauti/internal/catalog"
	"sauti/internal/nlp"
	"sauti/internal/repository"
	"sauti/internal/service"
)

// AnalysisHandler computes and serves analysis reports.
type AnalysisHandler struct {
	surveys   repository.SurveyRepo
	responses repository.ResponseRepo
	analyses  repository.AnalysisRepo
	cache     cache.AnalysisCache
	scorer    nlp.SimilarityScorer
	log       *zap.Logger
}

func NewAnalysisHandler(
	surveys repository.SurveyRepo,
	responses repository.ResponseRepo,
	analyses repository.AnalysisRepo,
	analysisCache cache.AnalysisCache,
	scorer nlp.SimilarityScorer,
	log *zap.Logger,
) *AnalysisHandler {
	return &AnalysisHandler{
		surveys:   surveys,
		responses: responses,
		analyses:  analyses,
		cache:     analysisCache,
		scorer:    scorer,
		log:       log,
	}
}

// Compute handles POST /v1/surveys/{surveyID}/analysis: recomputes the
// report from every stored record, persists it and refreshes the cache.
func (h *AnalysisHandler) Compute(w http.ResponseWriter, r *http.Request) {
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

	cat, err := catalog.New(survey)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	records, err := h.responses.ListBySurvey(r.Context(), surveyID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	analysis := service.NewAnalysisService(h.scorer, h.log)
	report := analysis.Analyze(r.Context(), records, cat)
	report.GeneratedAt = time.Now().UTC()

	if err := h.analyses.Save(r.Context(), report); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := h.cache.Set(r.Context(), report); err != nil {
		h.log.Warn("analysis cache write failed", zap.String("survey_id", surveyID), zap.Error(err))
	}

	writeJSON(w, http.StatusOK, report)
}

// Get handles GET /v1/surveys/{surveyID}/analysis: cache first, then the
// stored report, 404 when no run has happened yet.
func (h *AnalysisHandler) Get(w http.ResponseWriter, r *http.Request) {
	surveyID := mux.Vars(r)["surveyID"]

	cached, err := h.cache.Get(r.Context(), surveyID)
	if err != nil {
		h.log.Warn("analysis cache read failed", zap.String("survey_id", surveyID), zap.Error(err))
	}
	if cached != nil {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	report, err := h.analyses.GetBySurvey(r.Context(), surveyID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if report == nil {
		writeError(w, http.StatusNotFound, "no analysis for survey")
		return
	}

	if err := h.cache.Set(r.Context(), report); err != nil {
		h.log.Warn("analysis cache write failed", zap.String("survey_id", surveyID), zap.Error(err))
	}

	writeJSON(w, http.StatusOK, report)
}
