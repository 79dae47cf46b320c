package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

// SubmissionOutcome classifies the page state after clicking submit.
type SubmissionOutcome string

const (
	OutcomeSuccess         SubmissionOutcome = "success"
	OutcomeValidationError SubmissionOutcome = "validation_error"
	OutcomeIndeterminate   SubmissionOutcome = "indeterminate"
)

// Button text the engine recognizes as the submit control, most specific
// first so "Submit Application" wins over a bare "Submit".
var submitVocabulary = []string{
	"Submit application",
	"Submit",
	"Apply",
	"Send",
}

var successVocabulary = []string{
	"thank you",
	"submitted",
	"received your application",
	"application received",
	"we'll be in touch",
	"application complete",
}

var errorVocabulary = []string{
	"required field",
	"this field is required",
	"is required",
	"invalid",
	"error",
	"please correct",
}

// SubmissionCheckerService triggers the submit action and judges the result.
type SubmissionCheckerService struct {
	SettleDelay time.Duration
}

func NewSubmissionCheckerService(settleDelay time.Duration) *SubmissionCheckerService {
	if settleDelay <= 0 {
		settleDelay = 3 * time.Second
	}
	return &SubmissionCheckerService{SettleDelay: settleDelay}
}

// SubmitAndVerify scrolls to the form's end, clicks the submit control, waits
// a settle interval, then classifies the resulting page text. An unmatched
// page is indeterminate and is treated as failure upstream; success is never
// assumed silently.
func (s *SubmissionCheckerService) SubmitAndVerify(page playwright.Page) (SubmissionOutcome, string, error) {
	// Submit buttons live at the bottom; scrolling also triggers any
	// lazy-rendered validation summary.
	page.Evaluate("window.scrollTo(0, document.body.scrollHeight)")

	if !s.clickSubmit(page) {
		return OutcomeIndeterminate, "", fmt.Errorf("no submit control matched the button vocabulary")
	}

	time.Sleep(s.SettleDelay)

	bodyText, err := page.Locator("body").TextContent()
	if err != nil {
		return OutcomeIndeterminate, "", fmt.Errorf("could not read page after submit: %w", err)
	}

	outcome, matched := ClassifyPageText(bodyText)
	switch outcome {
	case OutcomeSuccess:
		log.Printf("✅ Submission confirmed (matched %q)", matched)
	case OutcomeValidationError:
		// Logged with the matched vocabulary to aid selector-table tuning.
		log.Printf("❌ Validation error after submit (matched %q)", matched)
	default:
		log.Printf("❓ Submission outcome indeterminate")
	}
	return outcome, matched, nil
}

func (s *SubmissionCheckerService) clickSubmit(page playwright.Page) bool {
	for _, text := range submitVocabulary {
		selectors := []string{
			fmt.Sprintf("button:has-text(\"%s\")", text),
			fmt.Sprintf("input[type='submit'][value*='%s' i]", text),
			fmt.Sprintf("a[role='button']:has-text(\"%s\")", text),
		}
		for _, selector := range selectors {
			button := page.Locator(selector).First()
			if visible, _ := button.IsVisible(); !visible {
				continue
			}
			if disabled, _ := button.IsDisabled(); disabled {
				continue
			}
			if err := button.Click(); err != nil {
				log.Printf("⚠️ Submit click failed on %s: %v", selector, err)
				continue
			}
			log.Printf("🖱️ Clicked submit control: %s", selector)
			return true
		}
	}
	return false
}

// ClassifyPageText scans the post-submit page text for success vocabulary,
// then error vocabulary. Success is checked first: a validation page never
// thanks the applicant, but a confirmation page may mention "error" in
// unrelated footer text.
func ClassifyPageText(bodyText string) (SubmissionOutcome, string) {
	lower := strings.ToLower(bodyText)

	for _, phrase := range successVocabulary {
		if strings.Contains(lower, phrase) {
			return OutcomeSuccess, phrase
		}
	}
	for _, phrase := range errorVocabulary {
		if strings.Contains(lower, phrase) {
			return OutcomeValidationError, phrase
		}
	}
	return OutcomeIndeterminate, ""
}
