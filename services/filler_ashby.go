package services

import (
	"context"
	"fmt"
	"log"

	"autoapply/models"

	"github.com/playwright-community/playwright-go"
)

// AshbyFiller drives jobs.ashbyhq.com forms. Ashby renders yes/no screening
// questions as button groups rather than radio inputs, and its file input
// hides behind a styled upload button.
type AshbyFiller struct {
	baseFiller
}

func (f *AshbyFiller) Platform() Platform {
	return PlatformAshby
}

func (f *AshbyFiller) Fill(ctx context.Context, page playwright.Page, fields []models.DetectedField, profile *models.ApplicantProfile) (*FillResult, error) {
	result, err := f.fillTextFields(page, fields, profile)
	if err != nil {
		return nil, err
	}

	f.fillYesNoButtonGroups(page, profile, result)
	f.answerScreeningQuestions(page, profile, result)
	f.attachDocuments(ctx, page, fields, profile, result)

	return result, nil
}

// fillYesNoButtonGroups handles Ashby's button-pair questions: a container
// holding the question text and two buttons labeled Yes and No.
func (f *AshbyFiller) fillYesNoButtonGroups(page playwright.Page, profile *models.ApplicantProfile, result *FillResult) {
	groups := []struct {
		logical string
		phrase  string
		answer  string
	}{
		{"work_authorization", "authorized to work", yesNo(profile.WorkAuthorization == "yes")},
		{"sponsorship", "require sponsorship", yesNo(profile.RequiresSponsorship)},
	}

	for _, group := range groups {
		if group.answer == "" {
			continue
		}
		selector := fmt.Sprintf(
			"div:has-text(\"%s\") button:has-text(\"%s\")", group.phrase, group.answer)
		button := page.Locator(selector).Last()
		if visible, _ := button.IsVisible(); !visible {
			continue
		}
		if err := button.Click(); err != nil {
			log.Printf("⚠️ Ashby button group %q: %v", group.phrase, err)
			continue
		}
		result.FieldsFilled++
		result.FilledFieldNames = append(result.FilledFieldNames, group.logical)
	}
}
