package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"autoapply/models"

	"github.com/xeipuuv/gojsonschema"
)

const defaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1/models"

// fieldListSchema is the strict contract for the vision model's reply.
// Anything that fails it is discarded; a hallucinated locator cached forever
// would poison every future visit to this form shape.
const fieldListSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["field", "label", "locator", "confidence"],
		"properties": {
			"field": {
				"type": "string",
				"enum": ["full_name", "first_name", "last_name", "email", "phone",
					"location", "resume", "linkedin", "github", "portfolio",
					"cover_letter", "current_company", "current_title",
					"work_authorization", "sponsorship", "years_of_experience",
					"gender", "ethnicity", "veteran_status", "disability_status"]
			},
			"label": {"type": "string"},
			"locator": {"type": "string", "minLength": 1},
			"confidence": {"type": "number", "minimum": 0, "maximum": 1},
			"position": {"type": "string"}
		},
		"additionalProperties": false
	}
}`

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// VisionFieldService sends a full-page screenshot to Gemini and turns the
// reply into DetectedFields. It is only invoked on a cache miss.
type VisionFieldService struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
	schema     *gojsonschema.Schema
}

func NewVisionFieldService(apiKey, model string) (*VisionFieldService, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(fieldListSchema))
	if err != nil {
		return nil, fmt.Errorf("invalid field list schema: %w", err)
	}
	return &VisionFieldService{
		endpoint:   defaultGeminiEndpoint,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{},
		schema:     schema,
	}, nil
}

// WithEndpoint overrides the API base URL (tests point it at a fake server).
func (s *VisionFieldService) WithEndpoint(endpoint string) *VisionFieldService {
	s.endpoint = strings.TrimRight(endpoint, "/")
	return s
}

// AnalyzeForm asks the model to read the screenshot and emit the field list.
// Every failure path returns ErrVisionAnalysis so the caller can degrade to
// tier-1/2 results.
func (s *VisionFieldService) AnalyzeForm(ctx context.Context, screenshot []byte, platform Platform) ([]models.DetectedField, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{
			{
				Role: "user",
				Parts: []geminiPart{
					{Text: buildVisionPrompt(platform)},
					{InlineData: &geminiInlineData{
						MimeType: "image/png",
						Data:     base64.StdEncoding.EncodeToString(screenshot),
					}},
				},
			},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVisionAnalysis, err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", s.endpoint, s.model, s.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVisionAnalysis, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVisionAnalysis, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: vision API returned %d: %s", ErrVisionAnalysis, resp.StatusCode, body)
	}

	var gemResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gemResp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVisionAnalysis, err)
	}
	if len(gemResp.Candidates) == 0 || len(gemResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: no candidates returned", ErrVisionAnalysis)
	}

	rawJSON := cleanMarkdownJSON(gemResp.Candidates[0].Content.Parts[0].Text)
	return s.parseAndValidate(rawJSON)
}

func (s *VisionFieldService) parseAndValidate(rawJSON string) ([]models.DetectedField, error) {
	result, err := s.schema.Validate(gojsonschema.NewStringLoader(rawJSON))
	if err != nil {
		return nil, fmt.Errorf("%w: reply is not valid JSON: %v", ErrVisionAnalysis, err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return nil, fmt.Errorf("%w: reply failed schema: %s", ErrVisionAnalysis, strings.Join(details, "; "))
	}

	var fields []models.DetectedField
	if err := json.Unmarshal([]byte(rawJSON), &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVisionAnalysis, err)
	}
	return fields, nil
}

func buildVisionPrompt(platform Platform) string {
	return fmt.Sprintf(`You are analyzing a screenshot of a job application form rendered by a %s applicant tracking system.

Identify every form input visible in the screenshot that corresponds to one of these logical fields:
%s

For each one, return an object with:
- "field": the logical field name, exactly from the list above
- "label": the visible label text next to the input
- "locator": a CSS selector that uniquely identifies the input
- "confidence": how certain you are, 0 to 1
- "position": "top", "middle" or "bottom" of the page

Return ONLY a raw JSON array of these objects. Do not wrap the JSON in markdown blocks. Output starts with [ and ends with ].`,
		platform, strings.Join(fieldVocabulary, ", "))
}

// cleanMarkdownJSON strips backtick fences if the model tries to be helpful.
func cleanMarkdownJSON(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}
	return strings.TrimSpace(content)
}
