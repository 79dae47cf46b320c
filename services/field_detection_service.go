package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode"

	"autoapply/models"

	"github.com/playwright-community/playwright-go"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Logical field vocabulary. The vision model is constrained to this set and
// the fillers map each entry to a profile value.
var fieldVocabulary = []string{
	"full_name", "first_name", "last_name", "email", "phone", "location",
	"resume", "linkedin", "github", "portfolio", "cover_letter",
	"current_company", "current_title", "work_authorization", "sponsorship",
	"years_of_experience", "gender", "ethnicity", "veteran_status",
	"disability_status",
}

// Confidence scores per association method. Explicit for= beats nesting beats
// proximity; fillers prefer the higher score when a field matched twice.
const (
	confidenceExplicitFor = 1.0
	confidenceNestedInput = 0.95
	confidenceNearest     = 0.7
)

type fieldSelectors struct {
	Logical   string
	Selectors []string
}

// FieldResolution is the outcome of one resolveFields call.
type FieldResolution struct {
	Fields    []models.DetectedField
	FormHash  string
	UsedCache bool
}

// MappingCache is the persistent (platform, formHash) -> fields store.
type MappingCache interface {
	Get(ctx context.Context, platform, formHash string) (*models.FieldMapping, error)
	Put(ctx context.Context, platform, formHash string, fields []models.DetectedField) error
	RecordUse(ctx context.Context, platform, formHash string, success bool) error
}

// VisionAnalyzer produces fields from a full-page screenshot.
type VisionAnalyzer interface {
	AnalyzeForm(ctx context.Context, screenshot []byte, platform Platform) ([]models.DetectedField, error)
}

// FieldDetectionService resolves logical profile attributes to page elements
// through three escalating tiers: static selector tables, label traversal,
// and cached vision analysis.
type FieldDetectionService struct {
	cache  MappingCache
	vision VisionAnalyzer
}

func NewFieldDetectionService(cache MappingCache, vision VisionAnalyzer) *FieldDetectionService {
	return &FieldDetectionService{
		cache:  cache,
		vision: vision,
	}
}

// ResolveFields runs the three tiers in order. The cache and the vision model
// are only consulted when tiers 1 and 2 leave gaps; a form fully covered by
// the static tables never touches either.
func (s *FieldDetectionService) ResolveFields(ctx context.Context, platform Platform, page playwright.Page) (*FieldResolution, error) {
	resolution := &FieldResolution{}
	found := make(map[string]bool)

	// Tier 1: static selector tables, priority order. Name, email and resume
	// come first so a partial fill under a timeout still captures them.
	for _, entry := range selectorTableFor(platform) {
		for _, selector := range entry.Selectors {
			locator := page.Locator(selector).First()
			if visible, _ := locator.IsVisible(); visible {
				resolution.Fields = append(resolution.Fields, models.DetectedField{
					LogicalName: entry.Logical,
					Locator:     selector,
					Confidence:  confidenceExplicitFor,
				})
				found[entry.Logical] = true
				break
			}
		}
	}

	// Tier 2: label traversal for everything the tables missed.
	for _, logical := range fieldVocabulary {
		if found[logical] {
			continue
		}
		if field, ok := s.traverseLabels(page, logical); ok {
			resolution.Fields = append(resolution.Fields, field)
			found[logical] = true
		}
	}

	formHash, err := s.hashCurrentForm(page)
	if err != nil {
		log.Printf("⚠️ Could not hash form markup: %v", err)
		return resolution, nil
	}
	resolution.FormHash = formHash

	missing := 0
	for _, logical := range fieldVocabulary {
		if !found[logical] {
			missing++
		}
	}
	if missing == 0 || s.cache == nil {
		return resolution, nil
	}

	// Tier 3: cached vision analysis. A cache hit costs zero model calls;
	// that hit rate is the engine's primary efficiency metric.
	mapping, err := s.cache.Get(ctx, string(platform), formHash)
	if err != nil {
		log.Printf("⚠️ Field mapping cache lookup failed: %v", err)
		return resolution, nil
	}
	if mapping != nil {
		resolution.UsedCache = true
		resolution.Fields = mergeFields(resolution.Fields, mapping.Fields, found)
		return resolution, nil
	}

	if s.vision == nil {
		return resolution, nil
	}

	screenshot, err := page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		log.Printf("⚠️ Screenshot for vision analysis failed: %v", err)
		return resolution, nil
	}

	visionFields, err := s.vision.AnalyzeForm(ctx, screenshot, platform)
	if err != nil {
		// Degrade to whatever tiers 1/2 produced rather than failing the attempt.
		log.Printf("⚠️ Vision analysis failed, continuing with %d fields: %v", len(resolution.Fields), err)
		return resolution, nil
	}

	if err := s.cache.Put(ctx, string(platform), formHash, visionFields); err != nil {
		log.Printf("⚠️ Failed to persist field mapping: %v", err)
	}
	resolution.Fields = mergeFields(resolution.Fields, visionFields, found)
	return resolution, nil
}

// hashCurrentForm hashes the first form's markup, falling back to the body
// for single-page apps that render form controls without a <form>.
func (s *FieldDetectionService) hashCurrentForm(page playwright.Page) (string, error) {
	form := page.Locator("form").First()
	if count, _ := form.Count(); count > 0 {
		html, err := form.InnerHTML()
		if err == nil && html != "" {
			return ComputeFormHash(html)
		}
	}
	html, err := page.Locator("body").InnerHTML()
	if err != nil {
		return "", err
	}
	return ComputeFormHash(html)
}

// traverseLabels locates a visible label containing the field's phrase and
// resolves its input via for= association, nesting, then proximity.
func (s *FieldDetectionService) traverseLabels(page playwright.Page, logical string) (models.DetectedField, bool) {
	for _, phrase := range labelPhrases[logical] {
		labelSelector := fmt.Sprintf("label:has-text(\"%s\")", phrase)
		label := page.Locator(labelSelector).First()
		if visible, _ := label.IsVisible(); !visible {
			continue
		}
		labelText, _ := label.TextContent()
		labelText = strings.TrimSpace(labelText)

		// (a) explicit label-to-input association
		if forValue, _ := label.GetAttribute("for"); forValue != "" {
			target := page.Locator("#" + forValue).First()
			if count, _ := target.Count(); count > 0 {
				return models.DetectedField{
					LogicalName:  logical,
					Locator:      "#" + forValue,
					Confidence:   confidenceExplicitFor,
					VisibleLabel: labelText,
				}, true
			}
		}

		// (b) input nested inside the label
		nestedSelector := labelSelector + " input, " + labelSelector + " select, " + labelSelector + " textarea"
		if count, _ := page.Locator(nestedSelector).Count(); count > 0 {
			return models.DetectedField{
				LogicalName:  logical,
				Locator:      addressableLocator(page.Locator(nestedSelector).First(), nestedSelector),
				Confidence:   confidenceNestedInput,
				VisibleLabel: labelText,
			}, true
		}

		// (c) nearest input after the label in document order
		nearestSelector := labelSelector + " >> xpath=following::*[self::input or self::select or self::textarea][1]"
		if count, _ := page.Locator(nearestSelector).Count(); count > 0 {
			return models.DetectedField{
				LogicalName:  logical,
				Locator:      addressableLocator(page.Locator(nearestSelector).First(), nearestSelector),
				Confidence:   confidenceNearest,
				VisibleLabel: labelText,
			}, true
		}
	}
	return models.DetectedField{}, false
}

// addressableLocator reduces a matched element to plain CSS via its id or
// name. The fill layer resolves most locators with document.querySelector,
// which cannot parse the traversal selectors used to find the element, so
// those only survive as a fallback for anonymous inputs.
func addressableLocator(target playwright.Locator, fallback string) string {
	if id, err := target.GetAttribute("id"); err == nil && id != "" {
		return "#" + id
	}
	if name, err := target.GetAttribute("name"); err == nil && name != "" {
		return fmt.Sprintf("[name='%s']", name)
	}
	return fallback
}

// AnswerQuestion resolves a yes/no or multiple-choice question: find the
// container whose text includes the question phrase, then click the option
// whose text best matches the answer. Exact match wins over substring.
func (s *FieldDetectionService) AnswerQuestion(page playwright.Page, questionPhrase, answer string) (bool, error) {
	containerSelector := fmt.Sprintf(
		"fieldset:has-text(\"%s\"), [role='group']:has-text(\"%s\"), [role='radiogroup']:has-text(\"%s\")",
		questionPhrase, questionPhrase, questionPhrase)
	container := page.Locator(containerSelector).Last()
	if count, _ := container.Count(); count == 0 {
		// Fall back to the nearest div containing the phrase.
		container = page.Locator(fmt.Sprintf("div:has-text(\"%s\")", questionPhrase)).Last()
		if count, _ := container.Count(); count == 0 {
			return false, nil
		}
	}

	options, err := container.Locator("label, [role='option'], [role='radio'], button").All()
	if err != nil {
		return false, err
	}

	texts := make([]string, len(options))
	for i, option := range options {
		text, _ := option.TextContent()
		texts[i] = text
	}

	index := pickOption(texts, answer)
	if index < 0 {
		return false, nil
	}
	if err := options[index].Click(); err != nil {
		return false, fmt.Errorf("failed to click option %q: %w", texts[index], err)
	}
	return true, nil
}

// pickOption chooses the option whose text matches the answer, preferring an
// exact normalized match over a substring match. Returns -1 if nothing fits.
func pickOption(options []string, answer string) int {
	want := normalizeText(answer)
	if want == "" {
		return -1
	}

	substringMatch := -1
	for i, option := range options {
		got := normalizeText(option)
		if got == want {
			return i
		}
		if substringMatch < 0 && got != "" && strings.Contains(got, want) {
			substringMatch = i
		}
	}
	return substringMatch
}

// normalizeText lowercases, strips accents and collapses whitespace so label
// comparisons survive cosmetic differences.
func normalizeText(str string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, str)
	return strings.Join(strings.Fields(strings.ToLower(result)), " ")
}

// mergeFields appends cached or vision fields that tiers 1/2 did not already
// resolve, keeping the earlier (higher-trust) result on collision.
func mergeFields(existing []models.DetectedField, extra []models.DetectedField, found map[string]bool) []models.DetectedField {
	for _, field := range extra {
		if found[field.LogicalName] {
			continue
		}
		existing = append(existing, field)
		found[field.LogicalName] = true
	}
	return existing
}

// labelPhrases drives tier-2 traversal: the visible text fragments that mean
// each logical field across vendors.
var labelPhrases = map[string][]string{
	"full_name":           {"Full name", "Your name", "Name"},
	"first_name":          {"First name", "Given name"},
	"last_name":           {"Last name", "Family name", "Surname"},
	"email":               {"Email"},
	"phone":               {"Phone", "Mobile"},
	"location":            {"Location", "City", "Current location"},
	"resume":              {"Resume", "Résumé", "CV"},
	"linkedin":            {"LinkedIn"},
	"github":              {"GitHub"},
	"portfolio":           {"Portfolio", "Website", "Personal site"},
	"cover_letter":        {"Cover letter"},
	"current_company":     {"Current company", "Employer"},
	"current_title":       {"Current title", "Job title"},
	"work_authorization":  {"authorized to work", "work authorization", "legally authorized"},
	"sponsorship":         {"sponsorship", "require visa"},
	"years_of_experience": {"years of experience", "experience level"},
	"gender":              {"Gender"},
	"ethnicity":           {"Ethnicity", "Race"},
	"veteran_status":      {"Veteran"},
	"disability_status":   {"Disability"},
}
