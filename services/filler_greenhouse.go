package services

import (
	"context"
	"log"

	"autoapply/models"

	"github.com/playwright-community/playwright-go"
)

// GreenhouseFiller drives boards.greenhouse.io forms. Greenhouse still uses
// native <select> elements for the EEOC demographic block, which makes those
// the easy part; the custom questions section needs the generic matcher.
type GreenhouseFiller struct {
	baseFiller
}

func (f *GreenhouseFiller) Platform() Platform {
	return PlatformGreenhouse
}

func (f *GreenhouseFiller) Fill(ctx context.Context, page playwright.Page, fields []models.DetectedField, profile *models.ApplicantProfile) (*FillResult, error) {
	result, err := f.fillTextFields(page, fields, profile)
	if err != nil {
		return nil, err
	}

	f.fillDemographicSelects(page, profile, result)
	f.answerScreeningQuestions(page, profile, result)
	f.attachDocuments(ctx, page, fields, profile, result)

	return result, nil
}

// fillDemographicSelects sets the EEOC dropdowns by matching option labels.
func (f *GreenhouseFiller) fillDemographicSelects(page playwright.Page, profile *models.ApplicantProfile, result *FillResult) {
	selects := []struct {
		logical  string
		selector string
		value    string
	}{
		{"gender", "select#job_application_gender", profile.Gender},
		{"ethnicity", "select#job_application_race", profile.Ethnicity},
		{"veteran_status", "select#job_application_veteran_status", profile.VeteranStatus},
		{"disability_status", "select#job_application_disability_status", profile.DisabilityStatus},
	}

	for _, entry := range selects {
		if entry.value == "" {
			continue
		}
		dropdown := page.Locator(entry.selector).First()
		if visible, _ := dropdown.IsVisible(); !visible {
			continue
		}
		_, err := dropdown.SelectOption(playwright.SelectOptionValues{
			Labels: &[]string{entry.value},
		})
		if err != nil {
			log.Printf("⚠️ Greenhouse select %s: %v", entry.selector, err)
			continue
		}
		result.FieldsFilled++
		result.FilledFieldNames = append(result.FilledFieldNames, entry.logical)
	}
}
