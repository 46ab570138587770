package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"surveyeditor/internal/cache"
	"surveyeditor/internal/metrics"
	"surveyeditor/internal/model"
	"surveyeditor/internal/repository"
	"surveyeditor/internal/survey"
)

const (
	// OtherValue marks the implicit "other" option in submitted answers
	OtherValue = "__other__"
	// OtherLabel replaces OtherValue when no free text was given
	OtherLabel = "Other"
)

// SubmitRequest carries one respondent's answers keyed by question index.
// Other holds the free text typed next to an "other" choice.
type SubmitRequest struct {
	Answers map[string][]string `json:"answers"`
	Other   map[string]string   `json:"other"`
}

// ResponseService accepts survey responses
type ResponseService struct {
	surveys      *SurveyService
	responseRepo repository.ResponseRepo
	results      cache.ResultsCache
	metrics      *metrics.Metrics
	broadcaster  Broadcaster
}

// NewResponseService creates a new response service
func NewResponseService(surveys *SurveyService, responseRepo repository.ResponseRepo, results cache.ResultsCache, m *metrics.Metrics) *ResponseService {
	return &ResponseService{
		surveys:      surveys,
		responseRepo: responseRepo,
		results:      results,
		metrics:      m,
	}
}

// SetBroadcaster sets the live update sink
func (s *ResponseService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Submit stores a response to an active survey.
// Answers to unknown indices and to questions hidden by display logic are discarded.
// respondent may be nil for guests.
func (s *ResponseService) Submit(ctx context.Context, surveyID string, respondent *model.User, req SubmitRequest) (*model.Response, error) {
	sv, err := s.surveys.GetForm(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	doc := sv.Document()

	answers := resolveAnswers(doc, req)
	visible := doc.Visibility(visibilityAnswers(answers))
	for idx := range answers {
		if !visible[idx] {
			delete(answers, idx)
			s.metrics.HiddenAnswers.Inc()
		}
	}

	resp := &model.Response{
		SurveyID: surveyID,
		UserName: model.GuestName,
		Answers:  make(map[string][]string, len(answers)),
	}
	if respondent != nil {
		resp.UserID = respondent.ID
		resp.UserName = respondent.Name
	}
	for idx, values := range answers {
		resp.Answers[strconv.Itoa(idx)] = values
	}

	if err := s.responseRepo.Create(ctx, resp); err != nil {
		return nil, fmt.Errorf("store response for %s: %w", surveyID, err)
	}
	s.metrics.Responses.Inc()

	if err := s.results.Invalidate(ctx, surveyID); err != nil {
		return nil, fmt.Errorf("invalidate results of %s: %w", surveyID, err)
	}
	if s.broadcaster != nil {
		count, err := s.responseRepo.CountBySurveyID(ctx, surveyID)
		if err == nil {
			s.broadcaster.BroadcastToSurvey(surveyID, MsgResponseSubmitted, map[string]interface{}{
				"surveyId":      surveyID,
				"responseCount": count,
			})
		}
	}
	return resp, nil
}

// resolveAnswers keeps answers addressed to existing questions, trims them
// and replaces the "other" marker with the respondent's text. The marker is
// dropped on questions that do not offer an "other" choice.
func resolveAnswers(doc *survey.Document, req SubmitRequest) map[int][]string {
	questions := doc.Questions()
	out := make(map[int][]string)
	for key, values := range req.Answers {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= len(questions) {
			continue
		}

		q := questions[idx]
		kept := make([]string, 0, len(values))
		for _, v := range values {
			v = strings.TrimSpace(v)
			if v == OtherValue {
				if !q.Kind.IsChoice() || !q.AllowOther {
					continue
				}
				v = strings.TrimSpace(req.Other[key])
				if v == "" {
					v = OtherLabel
				}
			}
			if v != "" {
				kept = append(kept, v)
			}
		}
		if len(kept) == 0 {
			continue
		}
		if q.Kind != survey.KindMultiChoice {
			kept = kept[:1]
		}
		out[idx] = kept
	}
	return out
}

// visibilityAnswers picks the single answer display logic compares against
func visibilityAnswers(answers map[int][]string) survey.Answers {
	out := make(survey.Answers, len(answers))
	for idx, values := range answers {
		out[idx] = values[0]
	}
	return out
}
