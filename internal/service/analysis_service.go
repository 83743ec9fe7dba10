package service

import (
	"context"
	"math"
	"sort"

	"go.uber.org/zap"

	"sauti/internal/catalog"
	"sauti/internal/model"
	"sauti/internal/nlp"
)

const (
	// defaultMaxKeywords caps the keyword list per open-ended question.
	defaultMaxKeywords = 10
	// minClusterSize drops clusters too small to report as themes.
	minClusterSize = 2
	// minSharedKeywords joins two responses into one degraded-tier cluster.
	minSharedKeywords = 2
	// clusterSimilarityThreshold joins responses in the semantic tier.
	clusterSimilarityThreshold = 0.5
	// minPairedObservations gates cross-question contingency tables.
	minPairedObservations = 5
	// maxCommonThemes caps the run-wide theme list.
	maxCommonThemes = 5
)

// AnalysisService aggregates validated records into per-question statistics.
// It is a pure function of its inputs: no state survives between Analyze
// calls, and re-running over the same records yields an identical report.
type AnalysisService struct {
	semantic    nlp.SimilarityScorer // nil degrades theme clustering to the keyword tier
	maxKeywords int
	log         *zap.Logger
}

func NewAnalysisService(semantic nlp.SimilarityScorer, log *zap.Logger) *AnalysisService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AnalysisService{semantic: semantic, maxKeywords: defaultMaxKeywords, log: log}
}

// Analyze recomputes the full report from scratch. Every catalog question
// appears in the result map, zero-valued when it received no records.
// Records referencing unknown questions are skipped.
func (s *AnalysisService) Analyze(ctx context.Context, records []*model.ResponseRecord, cat *catalog.Catalog) *model.AnalysisReport {
	byQuestion := make(map[string][]*model.ResponseRecord)
	total := 0
	for _, rec := range records {
		if _, err := cat.Lookup(rec.QuestionID); err != nil {
			s.log.Warn("skipping record for unknown question", zap.String("question_id", rec.QuestionID))
			continue
		}
		byQuestion[rec.QuestionID] = append(byQuestion[rec.QuestionID], rec)
		total++
	}

	report := &model.AnalysisReport{
		SurveyID:         cat.SurveyID(),
		Results:          make(map[string]model.AnalysisResult, len(cat.Questions())),
		SemanticTierUsed: s.semantic != nil,
	}

	for _, q := range cat.Questions() {
		recs := byQuestion[q.ID]
		switch q.Type {
		case model.TypeMultipleChoice:
			report.Results[q.ID] = s.analyzeChoice(q, recs)
		case model.TypeYesNo:
			report.Results[q.ID] = s.analyzeYesNo(q, recs)
		case model.TypeOpenEnded:
			report.Results[q.ID] = s.analyzeOpenEnded(ctx, q, recs)
		}
	}

	report.Correlations = s.correlate(cat, byQuestion)
	report.Overall = s.overall(cat, byQuestion, report, total)
	return report
}

func (s *AnalysisService) analyzeChoice(q *model.Question, recs []*model.ResponseRecord) model.AnalysisResult {
	counts := make(map[string]int, len(q.Options))
	for _, opt := range q.Options {
		counts[opt.ID] = 0
	}
	for _, rec := range recs {
		counts[rec.NormalizedValue]++
	}

	percentages := make(map[string]float64, len(counts))
	mostCommon, best := "", -1
	for _, opt := range q.Options { // declaration order breaks ties
		percentages[opt.ID] = percentage(counts[opt.ID], len(recs))
		if counts[opt.ID] > best {
			mostCommon, best = opt.ID, counts[opt.ID]
		}
	}
	if len(recs) == 0 {
		mostCommon = ""
	}

	return model.AnalysisResult{
		QuestionID:    q.ID,
		Type:          q.Type,
		ResponseCount: len(recs),
		Counts:        counts,
		Percentages:   percentages,
		MostCommon:    mostCommon,
	}
}

func (s *AnalysisService) analyzeYesNo(q *model.Question, recs []*model.ResponseRecord) model.AnalysisResult {
	counts := map[string]int{"yes": 0, "no": 0}
	for _, rec := range recs {
		counts[rec.NormalizedValue]++
	}

	percentages := map[string]float64{
		"yes": percentage(counts["yes"], len(recs)),
		"no":  percentage(counts["no"], len(recs)),
	}

	mostCommon := ""
	if len(recs) > 0 {
		mostCommon = "yes" // yes wins ties
		if counts["no"] > counts["yes"] {
			mostCommon = "no"
		}
	}

	return model.AnalysisResult{
		QuestionID:    q.ID,
		Type:          q.Type,
		ResponseCount: len(recs),
		Counts:        counts,
		Percentages:   percentages,
		MostCommon:    mostCommon,
	}
}

func (s *AnalysisService) analyzeOpenEnded(ctx context.Context, q *model.Question, recs []*model.ResponseRecord) model.AnalysisResult {
	result := model.AnalysisResult{
		QuestionID:    q.ID,
		Type:          q.Type,
		ResponseCount: len(recs),
		Keywords:      []model.KeywordCount{},
		Themes:        []model.Theme{},
		Sentiment:     &model.SentimentBreakdown{},
	}
	if len(recs) == 0 {
		return result
	}

	result.Keywords = s.extractKeywords(recs, s.maxKeywords)
	result.Themes = s.identifyThemes(ctx, recs, result.Keywords)

	pos, neg, neu := 0, 0, 0
	for _, rec := range recs {
		switch p := nlp.Polarity(rec.NormalizedValue, rec.Language); {
		case p > 0:
			pos++
		case p < 0:
			neg++
		default:
			neu++
		}
	}
	result.Sentiment = &model.SentimentBreakdown{
		Positive: percentage(pos, len(recs)),
		Neutral:  percentage(neu, len(recs)),
		Negative: percentage(neg, len(recs)),
	}

	return result
}

// extractKeywords counts stopword-filtered terms across the full response
// pool and returns the top max by frequency descending, ties broken
// lexicographically ascending.
func (s *AnalysisService) extractKeywords(recs []*model.ResponseRecord, max int) []model.KeywordCount {
	freq := make(map[string]int)
	for _, rec := range recs {
		for _, tok := range nlp.Tokenize(rec.NormalizedValue, rec.Language) {
			freq[tok]++
		}
	}

	keywords := make([]model.KeywordCount, 0, len(freq))
	for term, n := range freq {
		keywords = append(keywords, model.KeywordCount{Term: term, Frequency: n})
	}
	sort.Slice(keywords, func(i, j int) bool {
		if keywords[i].Frequency != keywords[j].Frequency {
			return keywords[i].Frequency > keywords[j].Frequency
		}
		return keywords[i].Term < keywords[j].Term
	})
	if len(keywords) > max {
		keywords = keywords[:max]
	}
	return keywords
}

// identifyThemes clusters responses and labels each cluster with its most
// frequent keyword. Clusters below minClusterSize are dropped, not reported.
func (s *AnalysisService) identifyThemes(ctx context.Context, recs []*model.ResponseRecord, top []model.KeywordCount) []model.Theme {
	var clusters [][]*model.ResponseRecord
	if s.semantic != nil {
		var err error
		clusters, err = s.clusterSemantic(ctx, recs)
		if err != nil {
			s.log.Warn("semantic clustering failed, using keyword clusters", zap.Error(err))
			clusters = s.clusterByKeywords(recs, top)
		}
	} else {
		clusters = s.clusterByKeywords(recs, top)
	}

	themes := []model.Theme{}
	for _, cluster := range clusters {
		if len(cluster) < minClusterSize {
			continue
		}
		label := s.clusterLabel(cluster)
		if label == "" {
			continue
		}
		themes = append(themes, model.Theme{Label: label, Size: len(cluster)})
	}
	sort.Slice(themes, func(i, j int) bool {
		if themes[i].Size != themes[j].Size {
			return themes[i].Size > themes[j].Size
		}
		return themes[i].Label < themes[j].Label
	})
	return themes
}

// clusterSemantic greedily assigns each response to the first cluster whose
// representative (first member) it resembles above the threshold.
func (s *AnalysisService) clusterSemantic(ctx context.Context, recs []*model.ResponseRecord) ([][]*model.ResponseRecord, error) {
	var clusters [][]*model.ResponseRecord
	for _, rec := range recs {
		placed := false
		if len(clusters) > 0 {
			reps := make([]string, len(clusters))
			for i, cluster := range clusters {
				reps[i] = cluster[0].NormalizedValue
			}
			scores, err := s.semantic.Score(ctx, rec.NormalizedValue, reps)
			if err != nil {
				return nil, err
			}
			for i, sc := range scores {
				if sc > clusterSimilarityThreshold {
					clusters[i] = append(clusters[i], rec)
					placed = true
					break
				}
			}
		}
		if !placed {
			clusters = append(clusters, []*model.ResponseRecord{rec})
		}
	}
	return clusters, nil
}

// clusterByKeywords is the degraded tier: responses sharing at least
// minSharedKeywords of the question's top keywords group together.
func (s *AnalysisService) clusterByKeywords(recs []*model.ResponseRecord, top []model.KeywordCount) [][]*model.ResponseRecord {
	topSet := make(map[string]struct{}, len(top))
	for _, kw := range top {
		topSet[kw.Term] = struct{}{}
	}

	kwOf := func(rec *model.ResponseRecord) map[string]struct{} {
		set := make(map[string]struct{})
		for _, tok := range nlp.Tokenize(rec.NormalizedValue, rec.Language) {
			if _, ok := topSet[tok]; ok {
				set[tok] = struct{}{}
			}
		}
		return set
	}

	var clusters [][]*model.ResponseRecord
	var clusterKeywords []map[string]struct{}
	for _, rec := range recs {
		recKw := kwOf(rec)
		placed := false
		for i, ck := range clusterKeywords {
			shared := 0
			for t := range recKw {
				if _, ok := ck[t]; ok {
					shared++
				}
			}
			if shared >= minSharedKeywords {
				clusters[i] = append(clusters[i], rec)
				for t := range recKw {
					ck[t] = struct{}{}
				}
				placed = true
				break
			}
		}
		if !placed {
			clusters = append(clusters, []*model.ResponseRecord{rec})
			clusterKeywords = append(clusterKeywords, recKw)
		}
	}
	return clusters
}

// clusterLabel is the most frequent keyword within the cluster, ties broken
// lexicographically.
func (s *AnalysisService) clusterLabel(cluster []*model.ResponseRecord) string {
	freq := make(map[string]int)
	for _, rec := range cluster {
		for _, tok := range nlp.Tokenize(rec.NormalizedValue, rec.Language) {
			freq[tok]++
		}
	}
	label, best := "", 0
	for term, n := range freq {
		if n > best || (n == best && term < label) {
			label, best = term, n
		}
	}
	return label
}

// correlate builds contingency tables for every pair of closed (multiple
// choice / yes-no) questions over records sharing a session id. Pairs with
// fewer than minPairedObservations paired observations are omitted.
func (s *AnalysisService) correlate(cat *catalog.Catalog, byQuestion map[string][]*model.ResponseRecord) []model.Correlation {
	closed := []*model.Question{}
	for _, q := range cat.Questions() {
		if q.Type == model.TypeMultipleChoice || q.Type == model.TypeYesNo {
			closed = append(closed, q)
		}
	}
	if len(closed) < 2 {
		return nil
	}

	// session -> question -> normalized value (first record wins)
	values := make(map[string]map[string]string)
	for _, q := range closed {
		for _, rec := range byQuestion[q.ID] {
			if rec.SessionID == "" {
				continue
			}
			if values[rec.SessionID] == nil {
				values[rec.SessionID] = make(map[string]string)
			}
			if _, exists := values[rec.SessionID][q.ID]; !exists {
				values[rec.SessionID][q.ID] = rec.NormalizedValue
			}
		}
	}

	var correlations []model.Correlation
	for i := 0; i < len(closed); i++ {
		for j := i + 1; j < len(closed); j++ {
			qa, qb := closed[i], closed[j]
			counts := make(map[string]int)
			observations := 0
			for _, perQuestion := range values {
				va, okA := perQuestion[qa.ID]
				vb, okB := perQuestion[qb.ID]
				if !okA || !okB {
					continue
				}
				counts[va+"|"+vb]++
				observations++
			}
			if observations < minPairedObservations {
				continue
			}
			correlations = append(correlations, model.Correlation{
				QuestionA:    qa.ID,
				QuestionB:    qb.ID,
				Counts:       counts,
				Observations: observations,
			})
		}
	}
	return correlations
}

func (s *AnalysisService) overall(cat *catalog.Catalog, byQuestion map[string][]*model.ResponseRecord, report *model.AnalysisReport, total int) model.OverallStats {
	stats := model.OverallStats{TotalResponses: total}

	questionCount := len(cat.Questions())

	// Completion per session when session ids exist, else the fraction of
	// questions that received any valid response.
	sessions := make(map[string]map[string]struct{})
	for qid, recs := range byQuestion {
		for _, rec := range recs {
			if rec.SessionID == "" {
				continue
			}
			if sessions[rec.SessionID] == nil {
				sessions[rec.SessionID] = make(map[string]struct{})
			}
			sessions[rec.SessionID][qid] = struct{}{}
		}
	}
	if len(sessions) > 0 {
		sum := 0.0
		for _, answered := range sessions {
			sum += float64(len(answered)) / float64(questionCount)
		}
		stats.CompletionRate = round1(sum / float64(len(sessions)) * 100)
	} else {
		answered := 0
		for _, q := range cat.Questions() {
			if len(byQuestion[q.ID]) > 0 {
				answered++
			}
		}
		stats.CompletionRate = percentage(answered, questionCount)
	}

	// Aggregate theme labels across open-ended questions.
	themeSize := make(map[string]int)
	for _, q := range cat.Questions() {
		if q.Type != model.TypeOpenEnded {
			continue
		}
		for _, theme := range report.Results[q.ID].Themes {
			themeSize[theme.Label] += theme.Size
		}
	}
	labels := make([]string, 0, len(themeSize))
	for label := range themeSize {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if themeSize[labels[i]] != themeSize[labels[j]] {
			return themeSize[labels[i]] > themeSize[labels[j]]
		}
		return labels[i] < labels[j]
	})
	if len(labels) > maxCommonThemes {
		labels = labels[:maxCommonThemes]
	}
	stats.CommonThemes = labels

	return stats
}

func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return round1(float64(count) / float64(total) * 100)
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
