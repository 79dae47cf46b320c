package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"autoapply/models"

	"github.com/playwright-community/playwright-go"
)

// A form with at least this many logical fields populated counts as a healthy
// fill. Fewer is reported but still submitted; some minimal ATS forms truly
// only have a handful of inputs.
const minHealthyFieldCount = 5

// FillResult reports what a strategy managed to populate.
type FillResult struct {
	FieldsFilled     int
	FilledFieldNames []string
}

// Healthy reports whether the fill reached the minimum field count.
func (r *FillResult) Healthy() bool {
	return r.FieldsFilled >= minHealthyFieldCount
}

// FormFiller is the per-platform strategy contract. The set of
// implementations is closed; adding a vendor means adding a variant to
// FillerFor, never reflection.
type FormFiller interface {
	Platform() Platform
	Fill(ctx context.Context, page playwright.Page, fields []models.DetectedField, profile *models.ApplicantProfile) (*FillResult, error)
}

// FillerDeps are the collaborators every strategy shares.
type FillerDeps struct {
	Questions *FieldDetectionService
	Resumes   *ResumeUploader
	Letters   *CoverLetterWriter
}

// FillerFor returns the strategy for a platform tag. Unknown tags get the
// generic strategy, mirroring the detector's fallback.
func FillerFor(platform Platform, deps FillerDeps) FormFiller {
	base := baseFiller{deps: deps}
	switch platform {
	case PlatformAshby:
		return &AshbyFiller{baseFiller: base}
	case PlatformGreenhouse:
		return &GreenhouseFiller{baseFiller: base}
	case PlatformLever:
		return &LeverFiller{baseFiller: base}
	case PlatformWorkable:
		return &WorkableFiller{baseFiller: base}
	default:
		return &GenericFiller{baseFiller: base}
	}
}

// baseFiller carries the machinery common to all strategies.
type baseFiller struct {
	deps FillerDeps
}

type fieldAssignment struct {
	Name     string `json:"name"`
	Selector string `json:"selector"`
	Value    string `json:"value"`
}

// batchFillScript assigns all values in one page evaluation and dispatches
// native input/change events so framework-bound forms register the values.
// One round-trip also narrows the window for a detached-frame race against
// client-side re-renders.
const batchFillScript = `(assignments) => {
	const filled = [];
	const nativeInputSetter = Object.getOwnPropertyDescriptor(window.HTMLInputElement.prototype, 'value').set;
	const nativeTextareaSetter = Object.getOwnPropertyDescriptor(window.HTMLTextAreaElement.prototype, 'value').set;
	for (const a of assignments) {
		let el;
		try { el = document.querySelector(a.selector); } catch (e) { continue; }
		if (!el) continue;
		if (el.tagName === 'SELECT') {
			const option = Array.from(el.options).find(o =>
				o.text.trim().toLowerCase() === a.value.trim().toLowerCase());
			if (!option) continue;
			el.value = option.value;
		} else if (el.tagName === 'TEXTAREA') {
			nativeTextareaSetter.call(el, a.value);
		} else if (el.tagName === 'INPUT') {
			if (el.type === 'file') continue;
			nativeInputSetter.call(el, a.value);
		} else {
			continue;
		}
		el.dispatchEvent(new Event('input', { bubbles: true }));
		el.dispatchEvent(new Event('change', { bubbles: true }));
		filled.push(a.name);
	}
	return filled;
}`

// fillTextFields writes the non-file fields and returns the logical names
// that actually landed. Plain-CSS locators go through one batched evaluation;
// locators using playwright selector extensions cannot be resolved by
// document.querySelector inside the script, so those fill one by one through
// the locator API.
func (b *baseFiller) fillTextFields(page playwright.Page, fields []models.DetectedField, profile *models.ApplicantProfile) (*FillResult, error) {
	var batched []fieldAssignment
	var direct []fieldAssignment
	for _, field := range fields {
		if isFileField(field) {
			continue
		}
		value, ok := profileValueFor(field.LogicalName, profile)
		if !ok || value == "" {
			continue
		}
		assignment := fieldAssignment{
			Name:     field.LogicalName,
			Selector: field.Locator,
			Value:    value,
		}
		if isQuerySelectorCompatible(field.Locator) {
			batched = append(batched, assignment)
		} else {
			direct = append(direct, assignment)
		}
	}

	result := &FillResult{}
	if len(batched) > 0 {
		// playwright serializes the arg for us, but going through JSON first
		// keeps the payload free of Go-only types.
		encoded, err := json.Marshal(batched)
		if err != nil {
			return nil, fmt.Errorf("failed to encode assignments: %w", err)
		}
		var arg []map[string]interface{}
		if err := json.Unmarshal(encoded, &arg); err != nil {
			return nil, fmt.Errorf("failed to decode assignments: %w", err)
		}

		raw, err := page.Evaluate(batchFillScript, arg)
		if err != nil {
			return nil, fmt.Errorf("batched fill evaluation failed: %w", err)
		}

		if names, ok := raw.([]interface{}); ok {
			for _, name := range names {
				if s, ok := name.(string); ok {
					result.FilledFieldNames = append(result.FilledFieldNames, s)
				}
			}
		}
	}

	for _, assignment := range direct {
		if err := page.Locator(assignment.Selector).First().Fill(assignment.Value); err != nil {
			log.Printf("⚠️ Locator fill for %s failed: %v", assignment.Name, err)
			continue
		}
		result.FilledFieldNames = append(result.FilledFieldNames, assignment.Name)
	}

	result.FieldsFilled = len(result.FilledFieldNames)
	log.Printf("📝 Fill populated %d/%d fields", result.FieldsFilled, len(batched)+len(direct))
	return result, nil
}

// isQuerySelectorCompatible reports whether a locator is plain CSS.
// Playwright extensions (:has-text, >> chains) make document.querySelector
// throw a SyntaxError.
func isQuerySelectorCompatible(selector string) bool {
	return !strings.Contains(selector, ">>") && !strings.Contains(selector, ":has-text(")
}

// attachDocuments handles the file-upload fields outside the batched
// evaluation: the resume artifact and, when the form wants one, a generated
// cover-letter document.
func (b *baseFiller) attachDocuments(ctx context.Context, page playwright.Page, fields []models.DetectedField, profile *models.ApplicantProfile, result *FillResult) {
	for _, field := range fields {
		if !isFileField(field) {
			continue
		}
		switch field.LogicalName {
		case "resume":
			if b.deps.Resumes == nil {
				continue
			}
			if err := b.deps.Resumes.Attach(ctx, page, field.Locator, profile); err != nil {
				log.Printf("⚠️ Resume attach failed: %v", err)
				continue
			}
			result.FieldsFilled++
			result.FilledFieldNames = append(result.FilledFieldNames, "resume")
		case "cover_letter":
			if b.deps.Letters == nil || profile.CoverLetter == "" {
				continue
			}
			if err := b.deps.Letters.Attach(page, field.Locator, profile); err != nil {
				log.Printf("⚠️ Cover letter attach failed: %v", err)
				continue
			}
			result.FieldsFilled++
			result.FilledFieldNames = append(result.FilledFieldNames, "cover_letter")
		}
	}
}

// answerScreeningQuestions walks the questionnaire answers through the
// question/option matcher. Missing questions are not an error; most forms
// only ask a subset. Fields an earlier pass already populated are skipped so
// a question never gets answered or counted twice.
func (b *baseFiller) answerScreeningQuestions(page playwright.Page, profile *models.ApplicantProfile, result *FillResult) {
	if b.deps.Questions == nil {
		return
	}
	already := make(map[string]bool, len(result.FilledFieldNames))
	for _, name := range result.FilledFieldNames {
		already[name] = true
	}
	questions := []struct {
		logical string
		phrase  string
		answer  string
	}{
		{"work_authorization", "authorized to work", yesNo(profile.WorkAuthorization == "yes")},
		{"sponsorship", "sponsorship", yesNo(profile.RequiresSponsorship)},
		{"years_of_experience", "years of experience", profile.YearsOfExperience},
		{"gender", "Gender", profile.Gender},
		{"ethnicity", "Ethnicity", profile.Ethnicity},
		{"veteran_status", "Veteran", profile.VeteranStatus},
		{"disability_status", "Disability", profile.DisabilityStatus},
	}
	for _, q := range questions {
		if q.answer == "" || already[q.logical] {
			continue
		}
		answered, err := b.deps.Questions.AnswerQuestion(page, q.phrase, q.answer)
		if err != nil {
			log.Printf("⚠️ Question %q: %v", q.phrase, err)
			continue
		}
		if answered {
			result.FieldsFilled++
			result.FilledFieldNames = append(result.FilledFieldNames, q.logical)
		}
	}
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func isFileField(field models.DetectedField) bool {
	if field.LogicalName == "resume" {
		return true
	}
	return field.LogicalName == "cover_letter" && strings.Contains(field.Locator, "file")
}

// profileValueFor maps a logical field name to the applicant's value.
func profileValueFor(logicalName string, profile *models.ApplicantProfile) (string, bool) {
	switch logicalName {
	case "full_name":
		if profile.FullName != "" {
			return profile.FullName, true
		}
		return strings.TrimSpace(profile.FirstName + " " + profile.LastName), true
	case "first_name":
		return profile.FirstName, true
	case "last_name":
		return profile.LastName, true
	case "email":
		return profile.Email, true
	case "phone":
		return profile.Phone, true
	case "location":
		return profile.Location, true
	case "linkedin":
		return profile.LinkedIn, true
	case "github":
		return profile.GitHub, true
	case "portfolio":
		return profile.Portfolio, true
	case "cover_letter":
		return profile.CoverLetter, true
	case "current_company":
		return profile.CurrentCompany, true
	case "current_title":
		return profile.CurrentTitle, true
	case "years_of_experience":
		return profile.YearsOfExperience, true
	case "work_authorization":
		return profile.WorkAuthorization, true
	case "gender":
		return profile.Gender, true
	case "ethnicity":
		return profile.Ethnicity, true
	case "veteran_status":
		return profile.VeteranStatus, true
	case "disability_status":
		return profile.DisabilityStatus, true
	default:
		return "", false
	}
}
