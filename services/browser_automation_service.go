package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"autoapply/models"
	"autoapply/utils"

	"github.com/playwright-community/playwright-go"
)

// ApplyResult is what the engine hands back per attempt.
type ApplyResult struct {
	Success           bool     `json:"success"`
	FieldsFilledCount int      `json:"fields_filled_count"`
	FilledFieldNames  []string `json:"filled_field_names"`
	Message           string   `json:"message"`
	ScreenshotKey     string   `json:"screenshot_key,omitempty"`
	RequiresManual    bool     `json:"requires_manual"`
	Platform          string   `json:"platform"`
	UsedCache         bool     `json:"used_cache"`
}

// EngineDeps bundles the collaborators the pipeline needs.
type EngineDeps struct {
	Proxies     *ProxyManager
	Detection   *FieldDetectionService
	Checker     *SubmissionCheckerService
	Screenshots *ScreenshotService
	Cache       MappingCache
	Fillers     FillerDeps
	Logger      *utils.Logger
}

// BrowserAutomationService owns the shared browser process and runs the full
// apply pipeline: navigate through the current proxy, detect the platform,
// resolve fields, fill, submit, verify. Each attempt gets its own browser
// context, released on every exit path.
type BrowserAutomationService struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	deps    EngineDeps

	navigationTimeout time.Duration
}

func NewBrowserAutomationService(headless bool, navigationTimeout time.Duration, deps EngineDeps) (*BrowserAutomationService, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--no-sandbox",
		},
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	if navigationTimeout <= 0 {
		navigationTimeout = 30 * time.Second
	}
	return &BrowserAutomationService{
		pw:                pw,
		browser:           browser,
		deps:              deps,
		navigationTimeout: navigationTimeout,
	}, nil
}

func (s *BrowserAutomationService) Close() {
	if s.browser != nil {
		s.browser.Close()
	}
	if s.pw != nil {
		s.pw.Stop()
	}
}

// Apply runs one attempt end to end. Classified outcomes (success,
// validation error, bot wall) come back as results; returned errors are
// infrastructure failures that the retry processor should reschedule.
func (s *BrowserAutomationService) Apply(ctx context.Context, target models.ApplicationTarget, profile *models.ApplicantProfile) (*ApplyResult, error) {
	proxy := s.deps.Proxies.Current()
	contextOptions := playwright.BrowserNewContextOptions{
		UserAgent: playwright.String("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	}
	if proxy != nil {
		contextOptions.Proxy = &playwright.Proxy{
			Server:   "http://" + proxy.Endpoint,
			Username: playwright.String(proxy.Username),
			Password: playwright.String(proxy.Password),
		}
		log.Printf("🌐 Applying via proxy %s (%s)", proxy.ID, proxy.Country)
	} else {
		log.Printf("🌐 Applying via direct egress")
	}

	browserCtx, err := s.browser.NewContext(contextOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}
	defer browserCtx.Close()

	page, err := browserCtx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	s.logEvent("navigation started", map[string]string{"url": target.URL, "job_id": target.JobID})
	if _, err := page.Goto(target.URL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(s.navigationTimeout.Milliseconds())),
	}); err != nil {
		s.deps.Proxies.ReportFailure(ctx)
		return nil, fmt.Errorf("%w: %v", ErrNavigationTimeout, err)
	}

	if blocked, reason := s.detectBotWall(page); blocked {
		// Burned IPs and bot walls correlate; rotate away from this identity.
		s.deps.Proxies.ReportFailure(ctx)
		key := s.captureScreenshot(page, "bot_wall")
		return &ApplyResult{
			Success:        false,
			RequiresManual: true,
			Message:        fmt.Sprintf("%v: %s", ErrBotWall, reason),
			ScreenshotKey:  key,
		}, nil
	}

	content, err := page.Content()
	if err != nil {
		content = ""
	}
	platform := DetectPlatform(page.URL(), content)
	log.Printf("🏷️ Detected platform: %s", platform)

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	resolution, err := s.deps.Detection.ResolveFields(ctx, platform, page)
	if err != nil {
		return nil, fmt.Errorf("field resolution failed: %w", err)
	}
	log.Printf("🔍 Resolved %d fields (cache hit: %v)", len(resolution.Fields), resolution.UsedCache)

	filler := FillerFor(platform, s.deps.Fillers)
	fillResult, err := filler.Fill(ctx, page, resolution.Fields, profile)
	if err != nil {
		s.deps.Proxies.ReportFailure(ctx)
		return nil, fmt.Errorf("fill failed on %s: %w", platform, err)
	}

	lowConfidence := fillResult.FieldsFilled == 0
	if lowConfidence {
		// Still submitted: some minimal forms need nothing beyond the resume.
		log.Printf("⚠️ Zero fields filled, submitting anyway (low confidence)")
	} else if !fillResult.Healthy() {
		log.Printf("⚠️ Only %d fields filled (below healthy threshold)", fillResult.FieldsFilled)
	}

	outcome, matched, err := s.deps.Checker.SubmitAndVerify(page)
	if err != nil {
		s.deps.Proxies.ReportFailure(ctx)
		return nil, fmt.Errorf("%w: %v", ErrSubmissionIndeterminate, err)
	}

	key := s.captureScreenshot(page, "post_submit")
	success := outcome == OutcomeSuccess

	if success {
		s.deps.Proxies.ReportSuccess()
	} else {
		s.deps.Proxies.ReportFailure(ctx)
	}
	if s.deps.Cache != nil && resolution.FormHash != "" {
		if err := s.deps.Cache.RecordUse(ctx, string(platform), resolution.FormHash, success); err != nil {
			log.Printf("⚠️ Failed to record mapping use: %v", err)
		}
	}

	result := &ApplyResult{
		Success:           success,
		FieldsFilledCount: fillResult.FieldsFilled,
		FilledFieldNames:  fillResult.FilledFieldNames,
		ScreenshotKey:     key,
		Platform:          string(platform),
		UsedCache:         resolution.UsedCache,
	}
	switch outcome {
	case OutcomeSuccess:
		result.Message = fmt.Sprintf("application submitted (matched %q)", matched)
	case OutcomeValidationError:
		result.Message = fmt.Sprintf("form rejected with validation errors (matched %q)", matched)
	default:
		result.Message = "submission outcome indeterminate"
	}
	if lowConfidence {
		result.Message += "; zero fields detected, low confidence"
	}

	s.logEvent("attempt finished", map[string]string{
		"job_id":   target.JobID,
		"platform": string(platform),
		"outcome":  string(outcome),
	})
	return result, nil
}

// detectBotWall looks for CAPTCHA widgets and interstitial challenge pages.
// These are surfaced for manual handling, never solved or bypassed.
func (s *BrowserAutomationService) detectBotWall(page playwright.Page) (bool, string) {
	title, _ := page.Title()
	for _, marker := range []string{"Just a moment", "Attention Required", "Cloudflare"} {
		if strings.Contains(title, marker) {
			return true, "challenge page: " + title
		}
	}

	captchaCount, _ := page.Locator(
		".captcha, .g-recaptcha, [data-captcha], iframe[src*='recaptcha'], iframe[src*='hcaptcha']").Count()
	if captchaCount > 0 {
		return true, "captcha widget present"
	}
	return false, ""
}

func (s *BrowserAutomationService) captureScreenshot(page playwright.Page, kind string) string {
	if s.deps.Screenshots == nil {
		return ""
	}
	key, err := s.deps.Screenshots.CaptureAndUpload(page, kind)
	if err != nil {
		log.Printf("⚠️ Screenshot capture failed: %v", err)
		return ""
	}
	return key
}

func (s *BrowserAutomationService) logEvent(message string, data map[string]string) {
	if s.deps.Logger == nil {
		return
	}
	s.deps.Logger.Info(message, data)
}
