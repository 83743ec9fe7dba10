package model

// ResponseSource tells how an answer entered the system
type ResponseSource string

const (
	SourceText  ResponseSource = "text"
	SourceAudio ResponseSource = "audio"
)

// RawAnswer is an unprocessed answer as produced by the ingestion layer.
// Consumed once by the matcher/builder, never stored.
type RawAnswer struct {
	Source             ResponseSource `json:"source"`
	Content            string         `json:"content"`
	DeclaredQuestionID string         `json:"declared_question_id,omitempty"` // empty means free-form
	Language           string         `json:"language,omitempty"`
	SessionID          string         `json:"session_id,omitempty"` // respondent/session pairing key
	SourceFile         string         `json:"source_file,omitempty"`
}

// FreeForm reports whether the answer must be matched to a question.
func (a RawAnswer) FreeForm() bool {
	return a.DeclaredQuestionID == ""
}

// ResponseRecord is a validated, normalized answer bound to a question.
// Immutable after construction.
type ResponseRecord struct {
	ID              string         `json:"id" bson:"_id"`
	QuestionID      string         `json:"question_id" bson:"questionId"`
	ResponseType    ResponseSource `json:"response_type" bson:"responseType"`
	OriginalContent string         `json:"original_content" bson:"originalContent"`
	// NormalizedValue is an option id for multiple_choice, "yes"/"no" for
	// yes_no, and the verbatim text for open_ended.
	NormalizedValue string `json:"normalized_value" bson:"normalizedValue"`
	Language        string `json:"language" bson:"language"`
	SessionID       string `json:"session_id,omitempty" bson:"sessionId,omitempty"`
	// MatchConfidence is set only when the question was resolved by the
	// matcher; declared question ids leave it nil.
	MatchConfidence *float64 `json:"match_confidence,omitempty" bson:"matchConfidence,omitempty"`
}

// RejectedResponse reports an answer that failed its question's contract.
type RejectedResponse struct {
	QuestionID      string `json:"question_id,omitempty" bson:"questionId,omitempty"`
	OriginalContent string `json:"original_content" bson:"originalContent"`
	Reason          string `json:"reason" bson:"reason"`
}
