package service

import (
	"context"
	"fmt"
	"log"

	"surveyeditor/internal/cache"
	"surveyeditor/internal/model"
	"surveyeditor/internal/repository"
	"surveyeditor/internal/survey"
)

// recentOperations is how many log entries the dashboard shows
const recentOperations = 30

// SurveyService handles the survey lifecycle and ownership checks
type SurveyService struct {
	surveyRepo   repository.SurveyRepo
	responseRepo repository.ResponseRepo
	opLog        repository.OperationLogRepo
	drafts       cache.DraftCache
	results      cache.ResultsCache
	broadcaster  Broadcaster
}

// NewSurveyService creates a new survey service
func NewSurveyService(surveyRepo repository.SurveyRepo, responseRepo repository.ResponseRepo, opLog repository.OperationLogRepo, drafts cache.DraftCache, results cache.ResultsCache) *SurveyService {
	return &SurveyService{
		surveyRepo:   surveyRepo,
		responseRepo: responseRepo,
		opLog:        opLog,
		drafts:       drafts,
		results:      results,
	}
}

// SetBroadcaster sets the live update sink
func (s *SurveyService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// CreateNew stores an untitled, inactive survey with no questions
func (s *SurveyService) CreateNew(ctx context.Context, owner model.User) (string, error) {
	sv := &model.Survey{
		OwnerID:   owner.ID,
		Title:     model.DefaultSurveyTitle,
		Questions: "[]",
		IsActive:  false,
	}
	id, err := s.surveyRepo.Create(ctx, sv)
	if err != nil {
		return "", fmt.Errorf("create survey: %w", err)
	}
	s.logOperation(ctx, owner, model.OpCreate, fmt.Sprintf("ID:%s created", id))
	return id, nil
}

// Get returns any survey by id
func (s *SurveyService) Get(ctx context.Context, id string) (*model.Survey, error) {
	sv, err := s.surveyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get survey %s: %w", id, err)
	}
	if sv == nil {
		return nil, ErrSurveyNotFound
	}
	return sv, nil
}

// GetOwned returns a survey only when owner created it
func (s *SurveyService) GetOwned(ctx context.Context, owner model.User, id string) (*model.Survey, error) {
	sv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sv.OwnerID != owner.ID {
		return nil, ErrForbidden
	}
	return sv, nil
}

// GetForm returns a survey that is currently accepting responses
func (s *SurveyService) GetForm(ctx context.Context, id string) (*model.Survey, error) {
	sv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sv.IsActive {
		return nil, ErrSurveyInactive
	}
	return sv, nil
}

// ListOwned returns the owner's surveys, newest first
func (s *SurveyService) ListOwned(ctx context.Context, owner model.User) ([]*model.Survey, error) {
	return s.surveyRepo.GetByOwnerID(ctx, owner.ID)
}

// ListActive returns every survey accepting responses, newest first
func (s *SurveyService) ListActive(ctx context.Context) ([]*model.Survey, error) {
	return s.surveyRepo.ListActive(ctx)
}

// RecentOperations returns the latest audit entries
func (s *SurveyService) RecentOperations(ctx context.Context) ([]*model.OperationLog, error) {
	return s.opLog.Recent(ctx, recentOperations)
}

// Save replaces the title and questions of an owned survey. An open editor
// draft is dropped so the next editing session starts from the saved questions.
func (s *SurveyService) Save(ctx context.Context, owner model.User, id, title string, doc *survey.Document) (*model.Survey, error) {
	sv, err := s.persist(ctx, owner, id, title, doc)
	if err != nil {
		return nil, err
	}
	if err := s.drafts.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("drop draft of %s: %w", id, err)
	}
	return sv, nil
}

// persist stores doc as the survey's questions and invalidates cached results
func (s *SurveyService) persist(ctx context.Context, owner model.User, id, title string, doc *survey.Document) (*model.Survey, error) {
	sv, err := s.GetOwned(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	data, err := survey.Serialize(doc)
	if err != nil {
		return nil, fmt.Errorf("serialize survey %s: %w", id, err)
	}
	if title != "" {
		sv.Title = title
	}
	sv.Questions = string(data)

	if err := s.surveyRepo.Update(ctx, sv); err != nil {
		return nil, fmt.Errorf("update survey %s: %w", id, err)
	}
	if err := s.results.Invalidate(ctx, id); err != nil {
		return nil, fmt.Errorf("invalidate results of %s: %w", id, err)
	}
	s.logOperation(ctx, owner, model.OpUpdate, fmt.Sprintf("ID:%s updated", id))
	return sv, nil
}

// ToggleStatus opens or closes an owned survey for responses and returns the new state
func (s *SurveyService) ToggleStatus(ctx context.Context, owner model.User, id string) (bool, error) {
	sv, err := s.GetOwned(ctx, owner, id)
	if err != nil {
		return false, err
	}

	active := !sv.IsActive
	if err := s.surveyRepo.SetActive(ctx, id, active); err != nil {
		return false, fmt.Errorf("toggle survey %s: %w", id, err)
	}
	s.logOperation(ctx, owner, model.OpToggle, fmt.Sprintf("ID:%s status -> %t", id, active))
	return active, nil
}

// Delete removes an owned survey together with its responses
func (s *SurveyService) Delete(ctx context.Context, owner model.User, id string) error {
	if _, err := s.GetOwned(ctx, owner, id); err != nil {
		return err
	}

	if err := s.responseRepo.DeleteBySurveyID(ctx, id); err != nil {
		return fmt.Errorf("delete responses of %s: %w", id, err)
	}
	if err := s.surveyRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete survey %s: %w", id, err)
	}
	if err := s.results.Invalidate(ctx, id); err != nil {
		log.Printf("Failed to invalidate results of deleted survey %s: %v", id, err)
	}
	if err := s.drafts.Delete(ctx, id); err != nil {
		log.Printf("Failed to drop draft of deleted survey %s: %v", id, err)
	}
	s.logOperation(ctx, owner, model.OpDelete, fmt.Sprintf("ID:%s deleted", id))
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToSurvey(id, MsgSurveyDeleted, map[string]string{"surveyId": id})
		s.broadcaster.DisconnectSurvey(id)
	}
	return nil
}

// logOperation records an audit entry; failures are logged and ignored
func (s *SurveyService) logOperation(ctx context.Context, user model.User, command, detail string) {
	entry := &model.OperationLog{
		UserID:   user.ID,
		UserName: user.Name,
		Command:  command,
		Detail:   detail,
	}
	if err := s.opLog.Create(ctx, entry); err != nil {
		log.Printf("Failed to log operation %s: %v", command, err)
	}
}
