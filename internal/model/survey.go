package model

import (
	"time"

	"surveyeditor/internal/survey"
)

// DefaultSurveyTitle is given to freshly created surveys
const DefaultSurveyTitle = "Untitled survey"

// Survey is a persistent survey owned by one author
type Survey struct {
	ID      string `json:"id" bson:"_id,omitempty"`
	OwnerID string `json:"ownerId" bson:"ownerId"`
	Title   string `json:"title" bson:"title"`
	// Questions holds the interchange JSON as stored; older surveys may
	// still carry the legacy list of prompt strings.
	Questions string    `json:"-" bson:"questions"`
	IsActive  bool      `json:"isActive" bson:"isActive"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Document parses the stored questions, falling back to an empty document
func (s *Survey) Document() *survey.Document {
	return survey.ParseOrEmpty([]byte(s.Questions))
}

// SurveyView is a survey with its questions decoded
type SurveyView struct {
	*Survey
	Questions *survey.Document `json:"questions"`
}

// NewSurveyView decodes s for API output
func NewSurveyView(s *Survey) *SurveyView {
	return &SurveyView{Survey: s, Questions: s.Document()}
}
