package services

import "errors"

// Failure taxonomy for one apply attempt. Recoverable errors flow into the
// retry processor; the rest degrade in place (see each component).
var (
	ErrNavigationTimeout       = errors.New("page did not load in time")
	ErrUploadFailure           = errors.New("resume download or attach failed")
	ErrSubmissionIndeterminate = errors.New("no success or error vocabulary matched after submit")
	ErrVisionAnalysis          = errors.New("vision model call failed or returned invalid payload")
	ErrBotWall                 = errors.New("captcha or bot detection encountered")
)
