package main

import (
	"context"
	"log"
	"time"

	"surveyeditor/internal/app"
	"surveyeditor/internal/config"
	"surveyeditor/internal/model"
	"surveyeditor/internal/service"
	"surveyeditor/internal/survey"
)

// legacyQuestions is how surveys were stored before question kinds existed
const legacyQuestions = `["What is your name?", "Which team are you on?", "Anything else to share?"]`

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Storage == config.StorageMemory {
		log.Fatal("Seeding in-memory storage has no effect; set STORAGE=mongo")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stores, err := app.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer stores.Close(context.Background())

	owner := model.User{ID: service.OwnerID(cfg.OwnerUsername), Name: cfg.OwnerUsername}
	surveys := service.NewSurveyService(stores.SurveyRepo, stores.ResponseRepo, stores.OperationLogRepo, stores.Drafts, stores.Results)

	doc, err := eventDocument()
	if err != nil {
		log.Fatalf("Failed to build demo survey: %v", err)
	}
	id, err := surveys.CreateNew(ctx, owner)
	if err != nil {
		log.Fatalf("Failed to create survey: %v", err)
	}
	if _, err := surveys.Save(ctx, owner, id, "Team Offsite RSVP", doc); err != nil {
		log.Fatalf("Failed to save survey: %v", err)
	}
	if _, err := surveys.ToggleStatus(ctx, owner, id); err != nil {
		log.Fatalf("Failed to open survey: %v", err)
	}
	log.Printf("Seeded survey %s (%d questions, active)", id, doc.Len())

	legacyID, err := stores.SurveyRepo.Create(ctx, &model.Survey{
		OwnerID:   owner.ID,
		Title:     "Legacy Intake Form",
		Questions: legacyQuestions,
	})
	if err != nil {
		log.Fatalf("Failed to insert legacy survey: %v", err)
	}
	log.Printf("Seeded legacy survey %s for owner %s", legacyID, owner.Name)
}

func eventDocument() (*survey.Document, error) {
	doc := survey.NewDocument()

	attend := survey.NewQuestion(survey.KindSingleChoice)
	attend.Prompt = "Will you join the offsite?"
	attend.Options = []string{"Yes", "No"}
	if err := doc.Append(attend); err != nil {
		return nil, err
	}

	reason := survey.NewQuestion(survey.KindText)
	reason.Prompt = "What keeps you from joining?"
	reason.BranchRule = &survey.BranchRule{TriggerIndex: 0, TriggerValue: "No"}
	if err := doc.Append(reason); err != nil {
		return nil, err
	}

	food := survey.NewQuestion(survey.KindMultiChoice)
	food.Prompt = "Which meals should we plan for?"
	food.Options = []string{"Breakfast", "Lunch", "Dinner"}
	food.AllowOther = true
	food.BranchRule = &survey.BranchRule{TriggerIndex: 0, TriggerValue: "Yes"}
	if err := doc.Append(food); err != nil {
		return nil, err
	}
	return doc, nil
}
