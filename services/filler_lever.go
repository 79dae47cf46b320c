package services

import (
	"context"
	"fmt"
	"log"

	"autoapply/models"

	"github.com/playwright-community/playwright-go"
)

// LeverFiller drives jobs.lever.co forms. Lever's markup is the flattest of
// the vendors: plain named inputs plus checkbox-style cards for the legally
// required questions.
type LeverFiller struct {
	baseFiller
}

func (f *LeverFiller) Platform() Platform {
	return PlatformLever
}

func (f *LeverFiller) Fill(ctx context.Context, page playwright.Page, fields []models.DetectedField, profile *models.ApplicantProfile) (*FillResult, error) {
	result, err := f.fillTextFields(page, fields, profile)
	if err != nil {
		return nil, err
	}

	f.fillConsentCheckboxes(page, profile, result)
	f.answerScreeningQuestions(page, profile, result)
	f.attachDocuments(ctx, page, fields, profile, result)

	return result, nil
}

// fillConsentCheckboxes checks the work-authorization style boxes Lever
// renders as labeled checkbox cards.
func (f *LeverFiller) fillConsentCheckboxes(page playwright.Page, profile *models.ApplicantProfile, result *FillResult) {
	if profile.WorkAuthorization != "yes" {
		return
	}
	selector := fmt.Sprintf("label:has-text(\"%s\") input[type='checkbox']", "authorized to work")
	checkbox := page.Locator(selector).First()
	if visible, _ := checkbox.IsVisible(); !visible {
		return
	}
	if err := checkbox.Check(); err != nil {
		log.Printf("⚠️ Lever consent checkbox: %v", err)
		return
	}
	result.FieldsFilled++
	result.FilledFieldNames = append(result.FilledFieldNames, "work_authorization")
}
