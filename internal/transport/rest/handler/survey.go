package handler

import (
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"sauti/internal/catalog"
	"sauti/internal/errs"
	"sauti/internal/repository"
)

// SurveyHandler handles survey endpoints
type SurveyHandler struct {
	surveys repository.SurveyRepo
}

func NewSurveyHandler(surveys repository.SurveyRepo) *SurveyHandler {
	return &SurveyHandler{surveys: surveys}
}

// Create handles POST /v1/surveys: the body is a survey document, validated
// under catalog rules before it is stored.
func (h *SurveyHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "cannot read request body")
		return
	}

	cat, err := catalog.Load(body)
	if err != nil {
		if errs.IsSchema(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.surveys.Upsert(r.Context(), cat.Survey()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"survey_id": cat.SurveyID(),
		"questions": len(cat.Questions()),
	})
}

// Get handles GET /v1/surveys/{surveyID}
func (h *SurveyHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	writeJSON(w, http.StatusOK, survey)
}

// List handles GET /v1/surveys
func (h *SurveyHandler) List(w http.ResponseWriter, r *http.Request) {
	surveys, err := h.surveys.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, surveys)
}
