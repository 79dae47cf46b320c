package services

import (
	"context"

	"autoapply/models"

	"github.com/playwright-community/playwright-go"
)

// GenericFiller is the fallback for career pages the detector could not
// classify. It leans entirely on the detected mapping and the question
// matcher; there is no vendor-specific widget knowledge to apply.
type GenericFiller struct {
	baseFiller
}

func (f *GenericFiller) Platform() Platform {
	return PlatformGeneric
}

func (f *GenericFiller) Fill(ctx context.Context, page playwright.Page, fields []models.DetectedField, profile *models.ApplicantProfile) (*FillResult, error) {
	result, err := f.fillTextFields(page, fields, profile)
	if err != nil {
		return nil, err
	}

	f.answerScreeningQuestions(page, profile, result)
	f.attachDocuments(ctx, page, fields, profile, result)

	return result, nil
}
