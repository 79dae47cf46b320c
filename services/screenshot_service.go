package services

import (
	"fmt"
	"log"
	"time"

	"github.com/playwright-community/playwright-go"
)

// ScreenshotService captures diagnostic screenshots and parks them in S3.
// Keys, not URLs, travel in results; the dashboard presigns on demand.
type ScreenshotService struct {
	S3Service *S3Service
}

func NewScreenshotService(s3 *S3Service) *ScreenshotService {
	return &ScreenshotService{S3Service: s3}
}

// CaptureAndUpload takes a full-page screenshot and uploads it, returning
// the S3 key. Without S3 configured it logs and returns empty; diagnostics
// are never worth failing an attempt over.
func (s *ScreenshotService) CaptureAndUpload(page playwright.Page, screenshotType string) (string, error) {
	log.Printf("📸 Taking screenshot: %s", screenshotType)

	if s.S3Service == nil {
		log.Printf("S3 service not available - screenshot will not be uploaded")
		return "", nil
	}

	screenshotBytes, err := page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("failed to take screenshot: %v", err)
	}

	key := fmt.Sprintf("screenshots/%s_%d.png", screenshotType, time.Now().Unix())
	if _, err := s.S3Service.UploadBytes(screenshotBytes, key, "image/png"); err != nil {
		return "", err
	}
	return key, nil
}
