package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"sauti/internal/cache"
	"sauti/internal/nlp"
	"sauti/internal/repository"
	"sauti/internal/service"
	"sauti/internal/transport/rest/handler"
)

// Container holds all dependencies for the router
type Container struct {
	SurveyRepo    repository.SurveyRepo
	ResponseRepo  repository.ResponseRepo
	AnalysisRepo  repository.AnalysisRepo
	AnalysisCache cache.AnalysisCache
	Scorer        nlp.SimilarityScorer // nil keeps matching and clustering on the lexical tier
	Translator    service.Translator   // nil disables translation
	WorkingLang   string
	FreeForm      bool
	Log           *zap.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	if c.Log == nil {
		c.Log = zap.NewNop()
	}

	r := mux.NewRouter()

	surveyHandler := handler.NewSurveyHandler(c.SurveyRepo)
	responseHandler := handler.NewResponseHandler(
		c.SurveyRepo, c.ResponseRepo, c.AnalysisCache,
		c.Scorer, c.Translator, c.WorkingLang, c.FreeForm, c.Log)
	analysisHandler := handler.NewAnalysisHandler(
		c.SurveyRepo, c.ResponseRepo, c.AnalysisRepo,
		c.AnalysisCache, c.Scorer, c.Log)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/surveys", surveyHandler.Create).Methods("POST", "OPTIONS")
	v1.HandleFunc("/surveys", surveyHandler.List).Methods("GET", "OPTIONS")
	v1.HandleFunc("/surveys/{surveyID}", surveyHandler.Get).Methods("GET", "OPTIONS")

	v1.HandleFunc("/surveys/{surveyID}/responses", responseHandler.Ingest).Methods("POST", "OPTIONS")
	v1.HandleFunc("/surveys/{surveyID}/responses", responseHandler.List).Methods("GET", "OPTIONS")
	v1.HandleFunc("/surveys/{surveyID}/responses", responseHandler.Clear).Methods("DELETE", "OPTIONS")

	v1.HandleFunc("/surveys/{surveyID}/analysis", analysisHandler.Compute).Methods("POST", "OPTIONS")
	v1.HandleFunc("/surveys/{surveyID}/analysis", analysisHandler.Get).Methods("GET", "OPTIONS")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
