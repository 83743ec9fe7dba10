package model

// QuestionType defines the type of question
type QuestionType string

const (
	TypeMultipleChoice QuestionType = "multiple_choice" // pick one option
	TypeYesNo          QuestionType = "yes_no"          // affirmative/negative
	TypeOpenEnded      QuestionType = "open_ended"      // free text
)

// Valid reports whether t is one of the recognized question types.
func (t QuestionType) Valid() bool {
	switch t {
	case TypeMultipleChoice, TypeYesNo, TypeOpenEnded:
		return true
	}
	return false
}

// LocalizedText maps a language code ("en", "sw") to display text.
type LocalizedText map[string]string

// Get returns the text for lang, falling back to fallback, then to any entry.
func (lt LocalizedText) Get(lang, fallback string) string {
	if s, ok := lt[lang]; ok && s != "" {
		return s
	}
	if s, ok := lt[fallback]; ok && s != "" {
		return s
	}
	for _, s := range lt {
		if s != "" {
			return s
		}
	}
	return ""
}

// Option is a selectable choice of a multiple-choice question
type Option struct {
	ID   string        `json:"id" bson:"id"`
	Text LocalizedText `json:"text" bson:"text"`
}

// Question is a single survey question with bilingual text
type Question struct {
	ID      string        `json:"id" bson:"id"`
	Type    QuestionType  `json:"type" bson:"type"`
	Text    LocalizedText `json:"text" bson:"text"`
	Options []Option      `json:"options,omitempty" bson:"options,omitempty"` // multiple_choice only
}
