package model

import "time"

// KeywordCount is a term with its frequency across a question's responses
type KeywordCount struct {
	Term      string `json:"term" bson:"term"`
	Frequency int    `json:"frequency" bson:"frequency"`
}

// Theme is a labeled cluster of similar open-ended responses
type Theme struct {
	Label string `json:"label" bson:"label"`
	Size  int    `json:"size" bson:"size"` // responses in the cluster
}

// SentimentBreakdown holds percentages of total responses, summing to 100
// within rounding.
type SentimentBreakdown struct {
	Positive float64 `json:"positive" bson:"positive"`
	Neutral  float64 `json:"neutral" bson:"neutral"`
	Negative float64 `json:"negative" bson:"negative"`
}

// AnalysisResult is the per-question aggregate. Type-specific fields are
// populated according to Type and zeroed otherwise. Fully recomputed on every
// analysis run, never partially updated.
type AnalysisResult struct {
	QuestionID    string       `json:"question_id" bson:"questionId"`
	Type          QuestionType `json:"type" bson:"type"`
	ResponseCount int          `json:"response_count" bson:"responseCount"`

	// multiple_choice / yes_no
	Counts      map[string]int     `json:"counts,omitempty" bson:"counts,omitempty"`
	Percentages map[string]float64 `json:"percentages,omitempty" bson:"percentages,omitempty"`
	MostCommon  string             `json:"most_common,omitempty" bson:"mostCommon,omitempty"`

	// open_ended
	Keywords  []KeywordCount      `json:"keywords,omitempty" bson:"keywords,omitempty"`
	Themes    []Theme             `json:"themes,omitempty" bson:"themes,omitempty"`
	Sentiment *SentimentBreakdown `json:"sentiment,omitempty" bson:"sentiment,omitempty"`
}

// Correlation is a contingency table for one pair of closed questions,
// paired by session id.
type Correlation struct {
	QuestionA    string         `json:"question_a" bson:"questionA"`
	QuestionB    string         `json:"question_b" bson:"questionB"`
	Counts       map[string]int `json:"counts" bson:"counts"` // "valueA|valueB" -> count
	Observations int            `json:"observations" bson:"observations"`
}

// OverallStats summarizes a full run
type OverallStats struct {
	TotalResponses int      `json:"total_responses" bson:"totalResponses"`
	CompletionRate float64  `json:"completion_rate" bson:"completionRate"` // 0-100
	CommonThemes   []string `json:"common_themes,omitempty" bson:"commonThemes,omitempty"`
}

// AnalysisReport is the analysis document for one survey run
type AnalysisReport struct {
	SurveyID         string                    `json:"survey_id" bson:"surveyId"`
	GeneratedAt      time.Time                 `json:"generated_at" bson:"generatedAt"`
	Results          map[string]AnalysisResult `json:"results" bson:"results"`
	Correlations     []Correlation             `json:"correlations,omitempty" bson:"correlations,omitempty"`
	Overall          OverallStats              `json:"overall" bson:"overall"`
	SemanticTierUsed bool                      `json:"semantic_tier_used" bson:"semanticTierUsed"`
	Rejected         []RejectedResponse        `json:"rejected,omitempty" bson:"rejected,omitempty"`
}
