package services

import (
	"context"
	"log"
	"time"

	"autoapply/models"

	"github.com/playwright-community/playwright-go"
)

// WorkableFiller drives apply.workable.com forms. Workable's questionnaire
// widgets are searchable comboboxes: click to open, type to filter, pick the
// first matching option from the popup listbox.
type WorkableFiller struct {
	baseFiller
}

func (f *WorkableFiller) Platform() Platform {
	return PlatformWorkable
}

func (f *WorkableFiller) Fill(ctx context.Context, page playwright.Page, fields []models.DetectedField, profile *models.ApplicantProfile) (*FillResult, error) {
	result, err := f.fillTextFields(page, fields, profile)
	if err != nil {
		return nil, err
	}

	f.fillComboboxes(page, profile, result)
	f.answerScreeningQuestions(page, profile, result)
	f.attachDocuments(ctx, page, fields, profile, result)

	return result, nil
}

// fillComboboxes types into Workable's searchable dropdowns and selects the
// best matching option.
func (f *WorkableFiller) fillComboboxes(page playwright.Page, profile *models.ApplicantProfile, result *FillResult) {
	combos := []struct {
		logical string
		dataUI  string
		value   string
	}{
		{"gender", "[data-ui='gender'] input[role='combobox']", profile.Gender},
		{"ethnicity", "[data-ui='race'] input[role='combobox']", profile.Ethnicity},
		{"veteran_status", "[data-ui='veteran-status'] input[role='combobox']", profile.VeteranStatus},
	}

	for _, combo := range combos {
		if combo.value == "" {
			continue
		}
		input := page.Locator(combo.dataUI).First()
		if visible, _ := input.IsVisible(); !visible {
			continue
		}
		if err := input.Click(); err != nil {
			continue
		}
		if err := input.Fill(combo.value); err != nil {
			continue
		}
		// The popup listbox lags the keystrokes slightly.
		time.Sleep(300 * time.Millisecond)

		options, err := page.Locator("[role='listbox'] [role='option']").All()
		if err != nil || len(options) == 0 {
			continue
		}
		texts := make([]string, len(options))
		for i, option := range options {
			text, _ := option.TextContent()
			texts[i] = text
		}
		index := pickOption(texts, combo.value)
		if index < 0 {
			continue
		}
		if err := options[index].Click(); err != nil {
			log.Printf("⚠️ Workable combobox %s: %v", combo.logical, err)
			continue
		}
		result.FieldsFilled++
		result.FilledFieldNames = append(result.FilledFieldNames, combo.logical)
	}
}
