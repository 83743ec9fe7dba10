package model

// Survey is the bilingual question set for one processing run.
// Immutable once loaded into a catalog.
type Survey struct {
	SurveyID    string        `json:"survey_id" bson:"_id"`
	Title       LocalizedText `json:"title" bson:"title"`
	Description LocalizedText `json:"description,omitempty" bson:"description,omitempty"`
	DefaultLang string        `json:"default_language,omitempty" bson:"defaultLang,omitempty"`
	Questions   []Question    `json:"questions" bson:"questions"`
}
