package services

import (
	"fmt"
	"testing"

	"autoapply/models"

	"github.com/stretchr/testify/assert"
)

func sampleProfile() *models.ApplicantProfile {
	return &models.ApplicantProfile{
		FullName:          "Jordan Rivera",
		FirstName:         "Jordan",
		LastName:          "Rivera",
		Email:             "jordan@example.com",
		Phone:             "+1 555 0100",
		Location:          "Austin, TX",
		LinkedIn:          "https://linkedin.com/in/jordanrivera",
		GitHub:            "https://github.com/jordanr",
		CurrentCompany:    "Acme Corp",
		YearsOfExperience: "3-5",
		WorkAuthorization: "yes",
	}
}

func TestFillerForCoversEveryPlatform(t *testing.T) {
	deps := FillerDeps{}
	tests := []struct {
		platform Platform
		expected Platform
	}{
		{PlatformAshby, PlatformAshby},
		{PlatformGreenhouse, PlatformGreenhouse},
		{PlatformLever, PlatformLever},
		{PlatformWorkable, PlatformWorkable},
		{PlatformGeneric, PlatformGeneric},
		{Platform("brand-new-vendor"), PlatformGeneric},
	}
	for _, tt := range tests {
		filler := FillerFor(tt.platform, deps)
		assert.Equal(t, tt.expected, filler.Platform())
	}
}

func TestProfileValueFor(t *testing.T) {
	profile := sampleProfile()

	tests := []struct {
		logical  string
		expected string
	}{
		{"full_name", "Jordan Rivera"},
		{"first_name", "Jordan"},
		{"email", "jordan@example.com"},
		{"phone", "+1 555 0100"},
		{"location", "Austin, TX"},
		{"linkedin", "https://linkedin.com/in/jordanrivera"},
		{"current_company", "Acme Corp"},
		{"years_of_experience", "3-5"},
		{"work_authorization", "yes"},
	}
	for _, tt := range tests {
		value, ok := profileValueFor(tt.logical, profile)
		assert.True(t, ok, tt.logical)
		assert.Equal(t, tt.expected, value)
	}
}

func TestProfileValueForComposesFullName(t *testing.T) {
	profile := &models.ApplicantProfile{FirstName: "Jordan", LastName: "Rivera"}
	value, ok := profileValueFor("full_name", profile)
	assert.True(t, ok)
	assert.Equal(t, "Jordan Rivera", value)
}

func TestProfileValueForUnknownField(t *testing.T) {
	_, ok := profileValueFor("favorite_color", sampleProfile())
	assert.False(t, ok)

	// resume is a file field, never a text value.
	_, ok = profileValueFor("resume", sampleProfile())
	assert.False(t, ok)
}

func TestFillResultHealthy(t *testing.T) {
	assert.False(t, (&FillResult{FieldsFilled: 0}).Healthy())
	assert.False(t, (&FillResult{FieldsFilled: 4}).Healthy())
	assert.True(t, (&FillResult{FieldsFilled: 5}).Healthy())
	assert.True(t, (&FillResult{FieldsFilled: 12}).Healthy())
}

func TestIsFileField(t *testing.T) {
	assert.True(t, isFileField(models.DetectedField{LogicalName: "resume", Locator: "input[type='file']"}))
	assert.True(t, isFileField(models.DetectedField{LogicalName: "cover_letter", Locator: "input[type='file']"}))
	assert.False(t, isFileField(models.DetectedField{LogicalName: "cover_letter", Locator: "textarea[name='comments']"}))
	assert.False(t, isFileField(models.DetectedField{LogicalName: "email", Locator: "input[type='email']"}))
}

func TestYesNo(t *testing.T) {
	assert.Equal(t, "Yes", yesNo(true))
	assert.Equal(t, "No", yesNo(false))
}

func TestIsQuerySelectorCompatible(t *testing.T) {
	assert.True(t, isQuerySelectorCompatible("input[type='email']"))
	assert.True(t, isQuerySelectorCompatible("#email"))
	assert.True(t, isQuerySelectorCompatible("[name='github_url']"))

	// Playwright selector extensions blow up document.querySelector.
	assert.False(t, isQuerySelectorCompatible(`label:has-text("Email") input`))
	assert.False(t, isQuerySelectorCompatible(`label:has-text("Phone") >> xpath=following::*[self::input][1]`))
}

func TestFillTextFieldsRoutesExtendedSelectorsThroughLocator(t *testing.T) {
	page := newStubPage()
	page.evalResult = []interface{}{"email"}
	phoneSelector := `label:has-text("Phone") >> xpath=following::*[self::input or self::select or self::textarea][1]`
	page.elements[phoneSelector] = &stubElement{visible: true}

	b := &baseFiller{}
	fields := []models.DetectedField{
		{LogicalName: "email", Locator: "input[type='email']", Confidence: 1.0},
		{LogicalName: "phone", Locator: phoneSelector, Confidence: 0.7},
	}

	result, err := b.fillTextFields(page, fields, sampleProfile())
	assert.NoError(t, err)
	assert.Equal(t, 2, result.FieldsFilled)
	assert.ElementsMatch(t, []string{"email", "phone"}, result.FilledFieldNames)
	assert.Equal(t, 1, page.evaluations)
	assert.Equal(t, "+1 555 0100", page.filled[phoneSelector])
}

func TestFillTextFieldsSkipsBatchWhenAllSelectorsExtended(t *testing.T) {
	page := newStubPage()
	phoneSelector := `label:has-text("Phone") >> xpath=following::*[self::input or self::select or self::textarea][1]`
	page.elements[phoneSelector] = &stubElement{visible: true}

	b := &baseFiller{}
	fields := []models.DetectedField{
		{LogicalName: "phone", Locator: phoneSelector, Confidence: 0.7},
	}

	result, err := b.fillTextFields(page, fields, sampleProfile())
	assert.NoError(t, err)
	assert.Equal(t, 0, page.evaluations)
	assert.Equal(t, 1, result.FieldsFilled)
	assert.Equal(t, []string{"phone"}, result.FilledFieldNames)
}

func questionContainer(page *stubPage, phrase string, options ...string) {
	containerSelector := fmt.Sprintf(
		"fieldset:has-text(\"%s\"), [role='group']:has-text(\"%s\"), [role='radiogroup']:has-text(\"%s\")",
		phrase, phrase, phrase)
	page.elements[containerSelector] = &stubElement{visible: true}
	page.lists[containerSelector+" label, [role='option'], [role='radio'], button"] = options
}

func TestScreeningPassSkipsFieldsAnsweredEarlier(t *testing.T) {
	page := newStubPage()
	questionContainer(page, "authorized to work", "Yes", "No")
	questionContainer(page, "sponsorship", "Yes", "No")

	b := &baseFiller{deps: FillerDeps{Questions: NewFieldDetectionService(nil, nil)}}
	profile := sampleProfile()
	result := &FillResult{FieldsFilled: 1, FilledFieldNames: []string{"work_authorization"}}

	b.answerScreeningQuestions(page, profile, result)

	occurrences := 0
	for _, name := range result.FilledFieldNames {
		if name == "work_authorization" {
			occurrences++
		}
	}
	assert.Equal(t, 1, occurrences)
	assert.Contains(t, result.FilledFieldNames, "sponsorship")
	assert.Equal(t, 2, result.FieldsFilled)
	// Only the sponsorship option got clicked; work authorization was left alone.
	assert.Equal(t, []string{"No"}, page.clicked)
}
