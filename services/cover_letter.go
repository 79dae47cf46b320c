package services

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"autoapply/models"
	"autoapply/utils"

	"github.com/playwright-community/playwright-go"
)

// CoverLetterWriter materializes the profile's free-text rationale as a
// .docx for the ATS forms that only accept a cover letter as an upload.
type CoverLetterWriter struct{}

func NewCoverLetterWriter() *CoverLetterWriter {
	return &CoverLetterWriter{}
}

func (w *CoverLetterWriter) Attach(page playwright.Page, locator string, profile *models.ApplicantProfile) error {
	if profile.CoverLetter == "" {
		return fmt.Errorf("profile has no cover letter text")
	}

	dir, err := os.MkdirTemp("", "cover_letter")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUploadFailure, err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "cover_letter.docx")
	if err := utils.GenerateWordFile(profile.CoverLetter, path); err != nil {
		return fmt.Errorf("%w: failed to generate document: %v", ErrUploadFailure, err)
	}

	fileInput := page.Locator(locator).First()
	if err := fileInput.SetInputFiles(path); err != nil {
		return fmt.Errorf("%w: failed to attach cover letter: %v", ErrUploadFailure, err)
	}

	log.Printf("📎 Attached generated cover letter to %s", locator)
	return nil
}
