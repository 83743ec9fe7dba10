package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"sauti/internal/catalog"
	"sauti/internal/config"
	"sauti/internal/model"
	"sauti/internal/nlp"
	"sauti/internal/repository"
	"sauti/internal/service"
)

// audioExtensions are the container formats the transcriber accepts.
var audioExtensions = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".flac": true,
	".m4a":  true,
	".ogg":  true,
}

func main() {
	var (
		surveyPath   = flag.String("survey", "", "path to the survey definition JSON (required)")
		audioDir     = flag.String("audio-dir", "", "directory of audio answers to transcribe")
		responsesIn  = flag.String("responses", "", "path to a JSON array of text answers")
		outDir       = flag.String("out", ".", "directory for responses.json and analysis.json")
		lang         = flag.String("lang", "", "working language override (defaults to WORKING_LANG)")
		asrModel     = flag.String("asr-model", "", "transcription model override (defaults to ASR_MODEL)")
		freeForm     = flag.Bool("free-form", false, "match answers without a declared question to the closest question")
		verbose      = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *surveyPath == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *audioDir == "" && *responsesIn == "" {
		log.Fatal("nothing to do: pass -audio-dir and/or -responses")
	}

	cfg := config.Load()
	if *lang != "" {
		cfg.WorkingLang = *lang
	}
	if *asrModel != "" {
		cfg.ASRModel = *asrModel
	}

	logger := newLogger(*verbose)
	defer logger.Sync()

	data, err := os.ReadFile(*surveyPath)
	if err != nil {
		log.Fatalf("cannot read survey file: %v", err)
	}
	cat, err := catalog.Load(data)
	if err != nil {
		log.Fatalf("survey rejected: %v", err)
	}
	logger.Info("survey loaded",
		zap.String("survey_id", cat.SurveyID()),
		zap.Int("questions", len(cat.Questions())))

	answers, err := collectAnswers(*audioDir, *responsesIn)
	if err != nil {
		log.Fatal(err)
	}
	logger.Info("answers collected", zap.Int("count", len(answers)))

	scorer := semanticScorer(cfg, logger)
	var translator service.Translator
	if tc := service.NewTranslateClient(cfg.TranslateEndpoint); tc != nil {
		translator = tc
	}
	var transcriber service.Transcriber
	if asr := service.NewTranscribeClient(cfg.ASREndpoint, cfg.ASRModel); asr != nil {
		transcriber = asr
	}

	matcher := service.NewMatcherService(cat, scorer, logger)
	records := service.NewRecordService(cat, logger)
	analysis := service.NewAnalysisService(scorer, logger)
	pipeline := service.NewPipelineService(
		matcher, records, analysis, translator, transcriber,
		cfg.WorkingLang, *freeForm, logger)

	ctx := context.Background()
	result, err := pipeline.Run(ctx, cat, answers)
	if err != nil {
		log.Fatalf("pipeline failed: %v", err)
	}

	if err := writeOutputs(*outDir, result); err != nil {
		log.Fatal(err)
	}
	logger.Info("outputs written", zap.String("dir", *outDir))

	if cfg.MongoURI != "" {
		if err := persist(ctx, cfg.MongoURI, cat, result); err != nil {
			log.Fatalf("persistence failed: %v", err)
		}
		logger.Info("run persisted", zap.String("survey_id", cat.SurveyID()))
	}

	fmt.Printf("%d records accepted, %d rejected\n", len(result.Records), len(result.Report.Rejected))
}

// collectAnswers gathers audio files and text answers into one batch. Audio
// files named like q1_session7.wav carry a declared question id before the
// first underscore and a session id after it; anything else is free-form.
func collectAnswers(audioDir, responsesPath string) ([]model.RawAnswer, error) {
	var answers []model.RawAnswer

	if audioDir != "" {
		var files []string
		err := filepath.WalkDir(audioDir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if audioExtensions[strings.ToLower(filepath.Ext(path))] {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("cannot walk audio dir: %w", err)
		}
		sort.Strings(files)

		for _, f := range files {
			qid, session := parseAudioName(f)
			answers = append(answers, model.RawAnswer{
				Source:             model.SourceAudio,
				DeclaredQuestionID: qid,
				SessionID:          session,
				SourceFile:         f,
			})
		}
	}

	if responsesPath != "" {
		data, err := os.ReadFile(responsesPath)
		if err != nil {
			return nil, fmt.Errorf("cannot read responses file: %w", err)
		}
		var text []model.RawAnswer
		if err := json.Unmarshal(data, &text); err != nil {
			return nil, fmt.Errorf("cannot decode responses file: %w", err)
		}
		for i := range text {
			if text[i].Source == "" {
				text[i].Source = model.SourceText
			}
		}
		answers = append(answers, text...)
	}

	return answers, nil
}

// parseAudioName splits a file stem on its first underscore into question id
// and session id. A stem without an underscore is treated as free-form.
func parseAudioName(path string) (questionID, sessionID string) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	idx := strings.Index(stem, "_")
	if idx <= 0 {
		return "", ""
	}
	return stem[:idx], stem[idx+1:]
}

func writeOutputs(dir string, result *service.RunResult) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create output dir: %w", err)
	}
	if err := writeJSONFile(filepath.Join(dir, "responses.json"), result.Records); err != nil {
		return err
	}
	return writeJSONFile(filepath.Join(dir, "analysis.json"), result.Report)
}

func writeJSONFile(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	return nil
}

// persist stores the survey, records and report so the API can serve them.
func persist(ctx context.Context, mongoURI string, cat *catalog.Catalog, result *service.RunResult) error {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return err
	}
	defer client.Disconnect(ctx)

	db := client.Database("sauti")
	surveys := repository.NewSurveyRepo(db)
	responses := repository.NewResponseRepo(db)
	analyses := repository.NewAnalysisRepo(db)

	if err := surveys.Upsert(ctx, cat.Survey()); err != nil {
		return err
	}
	if err := responses.SaveBatch(ctx, cat.SurveyID(), result.Records); err != nil {
		return err
	}
	return analyses.Save(ctx, result.Report)
}

func semanticScorer(cfg *config.Config, logger *zap.Logger) nlp.SimilarityScorer {
	es := nlp.NewEmbeddingScorer(cfg.EmbedEndpoint)
	if es == nil {
		logger.Debug("EMBED_ENDPOINT not set, semantic tier disabled")
		return nil
	}
	logger.Info("semantic tier enabled", zap.String("endpoint", cfg.EmbedEndpoint))
	return es
}

func newLogger(verbose bool) *zap.Logger {
	zcfg := zap.NewDevelopmentConfig()
	if !verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	logger, err := zcfg.Build()
	if err != nil {
		log.Fatal(err)
	}
	return logger
}
