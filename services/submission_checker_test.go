package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassifyPageTextSuccess(t *testing.T) {
	tests := []string{
		"Thank you for applying! We'll review your application shortly.",
		"Your application has been submitted.",
		"We have received your application for Senior Engineer.",
		"Application received. We'll be in touch.",
	}
	for _, text := range tests {
		outcome, matched := ClassifyPageText(text)
		assert.Equal(t, OutcomeSuccess, outcome, "text: %s", text)
		assert.NotEmpty(t, matched)
	}
}

func TestClassifyPageTextValidationError(t *testing.T) {
	tests := []string{
		"This field is required.",
		"Email address is invalid.",
		"Please correct the errors below and try again.",
	}
	for _, text := range tests {
		outcome, matched := ClassifyPageText(text)
		assert.Equal(t, OutcomeValidationError, outcome, "text: %s", text)
		assert.NotEmpty(t, matched)
	}
}

func TestClassifyPageTextSuccessBeatsError(t *testing.T) {
	// A confirmation page mentioning "error" in unrelated footer text is
	// still a confirmation page.
	text := "Thank you for applying! If you see an error, contact support@acme.com."
	outcome, matched := ClassifyPageText(text)
	assert.Equal(t, OutcomeSuccess, outcome)
	assert.Equal(t, "thank you", matched)
}

func TestClassifyPageTextIndeterminate(t *testing.T) {
	outcome, matched := ClassifyPageText("Senior Engineer - Acme Corp. Apply below.")
	assert.Equal(t, OutcomeIndeterminate, outcome)
	assert.Empty(t, matched)

	outcome, _ = ClassifyPageText("")
	assert.Equal(t, OutcomeIndeterminate, outcome)
}

func TestClassifyPageTextCaseInsensitive(t *testing.T) {
	outcome, _ := ClassifyPageText("THANK YOU FOR YOUR INTEREST")
	assert.Equal(t, OutcomeSuccess, outcome)
}

func TestNewSubmissionCheckerServiceDefaultsSettleDelay(t *testing.T) {
	assert.Equal(t, 3*time.Second, NewSubmissionCheckerService(0).SettleDelay)
	assert.Equal(t, 5*time.Second, NewSubmissionCheckerService(5*time.Second).SettleDelay)
}

func TestSubmitVocabularyOrdering(t *testing.T) {
	// Most specific first so "Submit application" wins over a bare "Submit".
	assert.Equal(t, "Submit application", submitVocabulary[0])
}
