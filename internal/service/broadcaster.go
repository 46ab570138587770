package service

// Message types pushed to survey owners
const (
	MsgResponseSubmitted = "response_submitted"
	MsgSurveyDeleted     = "survey_deleted"
)

// Broadcaster pushes live updates to a survey owner's open dashboards (avoids import cycle)
type Broadcaster interface {
	BroadcastToSurvey(surveyID string, msgType string, payload interface{})
	DisconnectSurvey(surveyID string)
}
