package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"autoapply/models"

	"github.com/playwright-community/playwright-go"
)

// ResumeUploader transfers the stored resume artifact into a form's file
// input. Uploads need a real file handle, so this is the one step that
// cannot ride the batched JS evaluation: download to a temp file, attach,
// remove the temp file on every path.
type ResumeUploader struct {
	s3         *S3Service
	httpClient *http.Client
}

func NewResumeUploader(s3 *S3Service) *ResumeUploader {
	return &ResumeUploader{
		s3:         s3,
		httpClient: &http.Client{},
	}
}

func (u *ResumeUploader) Attach(ctx context.Context, page playwright.Page, locator string, profile *models.ApplicantProfile) error {
	if profile.ResumeURL == "" {
		return fmt.Errorf("%w: profile has no resume artifact", ErrUploadFailure)
	}

	content, err := u.download(ctx, profile.ResumeURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUploadFailure, err)
	}

	tempFile, err := os.CreateTemp("", "resume_*"+extensionFor(profile.ResumeContentType))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUploadFailure, err)
	}
	defer os.Remove(tempFile.Name())

	if _, err := tempFile.Write(content); err != nil {
		tempFile.Close()
		return fmt.Errorf("%w: %v", ErrUploadFailure, err)
	}
	tempFile.Close()

	fileInput := page.Locator(locator).First()
	if err := fileInput.SetInputFiles(tempFile.Name()); err != nil {
		return fmt.Errorf("%w: failed to attach file: %v", ErrUploadFailure, err)
	}

	log.Printf("📎 Attached resume to %s", locator)
	return nil
}

// download prefers the S3 client when the URL points into our bucket, and
// falls back to plain HTTP for externally hosted artifacts.
func (u *ResumeUploader) download(ctx context.Context, url string) ([]byte, error) {
	if u.s3 != nil {
		if key := u.s3.KeyFromURL(url); key != "" {
			return u.s3.DownloadBytes(key)
		}
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := u.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("resume download returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func extensionFor(contentType string) string {
	switch contentType {
	case "application/pdf":
		return ".pdf"
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return ".docx"
	case "application/msword":
		return ".doc"
	default:
		return ".pdf"
	}
}
