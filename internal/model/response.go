package model

import "time"

// Response is one submitted set of answers to a survey.
// Answers are keyed by question index; single-valued answers hold one entry.
type Response struct {
	ID          string              `json:"id" bson:"_id,omitempty"`
	SurveyID    string              `json:"surveyId" bson:"surveyId"`
	UserID      string              `json:"userId,omitempty" bson:"userId,omitempty"`
	UserName    string              `json:"userName" bson:"userName"`
	Answers     map[string][]string `json:"answers" bson:"answers"`
	SubmittedAt time.Time           `json:"submittedAt" bson:"submittedAt"`
}

// QuestionStats aggregates the answers to one question
type QuestionStats struct {
	Index  int            `json:"index"`
	Prompt string         `json:"prompt"`
	Kind   string         `json:"kind"`
	Total  int            `json:"total"`
	Counts map[string]int `json:"counts,omitempty"` // choice questions
	Texts  []string       `json:"texts,omitempty"`  // text questions
}

// SurveyResults is the aggregate view of all responses to a survey
type SurveyResults struct {
	SurveyID      string          `json:"surveyId"`
	Title         string          `json:"title"`
	ResponseCount int             `json:"responseCount"`
	Questions     []QuestionStats `json:"questions"`
}
