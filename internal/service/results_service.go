package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"surveyeditor/internal/cache"
	"surveyeditor/internal/model"
	"surveyeditor/internal/repository"
	"surveyeditor/internal/survey"
)

// ResultsService aggregates and exports survey responses
type ResultsService struct {
	surveys      *SurveyService
	responseRepo repository.ResponseRepo
	cache        cache.ResultsCache
}

// NewResultsService creates a new results service
func NewResultsService(surveys *SurveyService, responseRepo repository.ResponseRepo, resultsCache cache.ResultsCache) *ResultsService {
	return &ResultsService{
		surveys:      surveys,
		responseRepo: responseRepo,
		cache:        resultsCache,
	}
}

// Results returns per-question statistics of an owned survey
func (s *ResultsService) Results(ctx context.Context, owner model.User, surveyID string) (*model.SurveyResults, error) {
	sv, err := s.surveys.GetOwned(ctx, owner, surveyID)
	if err != nil {
		return nil, err
	}

	cached, err := s.cache.Get(ctx, surveyID)
	if err != nil {
		return nil, fmt.Errorf("load cached results of %s: %w", surveyID, err)
	}
	if cached != nil {
		return cached, nil
	}

	responses, err := s.responseRepo.ListBySurveyID(ctx, surveyID)
	if err != nil {
		return nil, fmt.Errorf("list responses of %s: %w", surveyID, err)
	}

	results := Aggregate(sv, responses)
	if err := s.cache.Set(ctx, surveyID, results); err != nil {
		return nil, fmt.Errorf("cache results of %s: %w", surveyID, err)
	}
	return results, nil
}

// Aggregate counts choice answers and collects text answers per question
func Aggregate(sv *model.Survey, responses []*model.Response) *model.SurveyResults {
	questions := sv.Document().Questions()
	results := &model.SurveyResults{
		SurveyID:      sv.ID,
		Title:         sv.Title,
		ResponseCount: len(responses),
		Questions:     make([]model.QuestionStats, len(questions)),
	}

	for i, q := range questions {
		stats := model.QuestionStats{Index: i, Prompt: q.Prompt, Kind: string(q.Kind)}
		if q.Kind.IsChoice() {
			stats.Counts = map[string]int{}
		}
		key := strconv.Itoa(i)
		for _, r := range responses {
			for _, v := range r.Answers[key] {
				if v == "" {
					continue
				}
				stats.Total++
				if q.Kind.IsChoice() {
					stats.Counts[v]++
				} else {
					stats.Texts = append(stats.Texts, v)
				}
			}
		}
		results.Questions[i] = stats
	}
	return results
}

// ExportCSV writes every response of an owned survey as CSV, newest first
func (s *ResultsService) ExportCSV(ctx context.Context, owner model.User, surveyID string, w io.Writer) error {
	sv, err := s.surveys.GetOwned(ctx, owner, surveyID)
	if err != nil {
		return err
	}
	responses, err := s.responseRepo.ListBySurveyID(ctx, surveyID)
	if err != nil {
		return fmt.Errorf("list responses of %s: %w", surveyID, err)
	}
	return WriteCSV(w, sv.Document(), responses)
}

// WriteCSV renders responses with one column per question; multiple answers are joined by ", "
func WriteCSV(w io.Writer, doc *survey.Document, responses []*model.Response) error {
	questions := doc.Questions()
	cw := csv.NewWriter(w)

	header := []string{"Submitted at", "Respondent"}
	for i, q := range questions {
		header = append(header, fmt.Sprintf("Q%d: %s", i+1, q.Prompt))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, r := range responses {
		row := []string{r.SubmittedAt.Format(time.DateTime), r.UserName}
		for i := range questions {
			row = append(row, strings.Join(r.Answers[strconv.Itoa(i)], ", "))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
