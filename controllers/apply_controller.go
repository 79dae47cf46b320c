package controllers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"autoapply/models"
	"autoapply/services"
	"autoapply/utils"

	"github.com/gin-gonic/gin"
)

// ApplyController exposes the apply pipeline over HTTP.
type ApplyController struct {
	attempts *models.AttemptModel
	engine   services.Pipeline
	ledger   services.Ledger
	notifier *services.NotificationClient

	retryBase time.Duration
	retryMax  time.Duration
}

func NewApplyController(attempts *models.AttemptModel, engine services.Pipeline, ledger services.Ledger, notifier *services.NotificationClient, retryBase, retryMax time.Duration) *ApplyController {
	return &ApplyController{
		attempts:  attempts,
		engine:    engine,
		ledger:    ledger,
		notifier:  notifier,
		retryBase: retryBase,
		retryMax:  retryMax,
	}
}

type ApplyRequest struct {
	Target  models.ApplicationTarget `json:"target"`
	Profile models.ApplicantProfile  `json:"profile"`
}

type BatchApplyRequest struct {
	Targets []models.ApplicationTarget `json:"targets"`
	Profile models.ApplicantProfile    `json:"profile"`
}

// AttemptResult is the per-target payload returned to the dashboard.
type AttemptResult struct {
	AttemptID     string `json:"attempt_id"`
	JobID         string `json:"job_id"`
	Status        string `json:"status"`
	Message       string `json:"message"`
	FieldsFilled  int    `json:"fields_filled"`
	Platform      string `json:"platform,omitempty"`
	ScreenshotKey string `json:"screenshot_key,omitempty"`
}

// HandleApply runs one application end to end and reports the outcome.
// Failures are persisted with a scheduled retry so the sweep picks them up.
func (ctrl *ApplyController) HandleApply(c *gin.Context) {
	var req ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestError(c, "Invalid request body", err)
		return
	}
	if err := validateApplyRequest(req.Target, &req.Profile); err != nil {
		utils.ValidationError(c, err)
		return
	}

	result := ctrl.applyOne(c.Request.Context(), req.Target, req.Profile)
	if result.Status == string(models.StatusApplied) {
		utils.SuccessResponse(c, http.StatusOK, "Application submitted", result)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Application not confirmed", result)
}

// HandleBatchApply runs the targets sequentially and pushes a summary
// notification when done. One shared profile covers the whole batch.
func (ctrl *ApplyController) HandleBatchApply(c *gin.Context) {
	var req BatchApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestError(c, "Invalid request body", err)
		return
	}
	if len(req.Targets) == 0 {
		utils.BadRequestError(c, "At least one target is required", nil)
		return
	}
	for _, target := range req.Targets {
		if err := validateApplyRequest(target, &req.Profile); err != nil {
			utils.ValidationError(c, err)
			return
		}
	}

	summary := services.BatchSummary{Total: len(req.Targets)}
	results := make([]AttemptResult, 0, len(req.Targets))
	for _, target := range req.Targets {
		if c.Request.Context().Err() != nil {
			break
		}
		result := ctrl.applyOne(c.Request.Context(), target, req.Profile)
		results = append(results, result)

		switch result.Status {
		case string(models.StatusApplied):
			summary.Applied++
		case string(models.StatusManualReview):
			summary.ManualReview++
		default:
			summary.Failed++
		}
	}

	if ctrl.notifier != nil {
		if err := ctrl.notifier.SendBatchSummary(c.Request.Context(), summary); err != nil {
			log.Printf("⚠️ Failed to send batch summary: %v", err)
		}
	}

	utils.SuccessResponse(c, http.StatusOK, "Batch processed", gin.H{
		"summary": summary,
		"results": results,
	})
}

// HandleGetAttempt returns the stored state of one attempt.
func (ctrl *ApplyController) HandleGetAttempt(c *gin.Context) {
	id := c.Param("id")
	attempt, err := ctrl.attempts.GetByID(c.Request.Context(), id)
	if err != nil {
		utils.NotFoundError(c, "Attempt not found")
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Attempt retrieved", attempt)
}

func (ctrl *ApplyController) applyOne(ctx context.Context, target models.ApplicationTarget, profile models.ApplicantProfile) AttemptResult {
	attempt, err := ctrl.attempts.Create(ctx, target, profile)
	if err != nil {
		log.Printf("❌ Failed to create attempt for job %s: %v", target.JobID, err)
		return AttemptResult{JobID: target.JobID, Status: "error", Message: "failed to record attempt"}
	}

	out := AttemptResult{AttemptID: attempt.ID, JobID: target.JobID}

	result, err := ctrl.engine.Apply(ctx, target, &profile)
	if err != nil {
		nextRetry := time.Now().Add(services.BackoffDelay(1, ctrl.retryBase, ctrl.retryMax))
		if failErr := ctrl.attempts.RecordFailure(ctx, attempt.ID, err.Error(), &nextRetry); failErr != nil {
			log.Printf("⚠️ Failed to record failure for attempt %s: %v", attempt.ID, failErr)
		}
		out.Status = string(models.StatusPending)
		out.Message = err.Error()
		return out
	}

	out.Message = result.Message
	out.FieldsFilled = result.FieldsFilledCount
	out.Platform = result.Platform
	out.ScreenshotKey = result.ScreenshotKey

	switch {
	case result.Success:
		if markErr := ctrl.attempts.MarkApplied(ctx, attempt.ID, result.FieldsFilledCount, result.Message); markErr != nil {
			log.Printf("⚠️ Failed to mark attempt %s applied: %v", attempt.ID, markErr)
			out.Status = "error"
			return out
		}
		if ctrl.ledger != nil {
			if debitErr := ctrl.ledger.Debit(ctx, attempt.ID, target.JobID); debitErr != nil {
				log.Printf("⚠️ Ledger debit failed for attempt %s: %v", attempt.ID, debitErr)
			}
		}
		out.Status = string(models.StatusApplied)
	case result.RequiresManual:
		if reviewErr := ctrl.attempts.MarkManualReview(ctx, attempt.ID, result.Message); reviewErr != nil {
			log.Printf("⚠️ Failed to flag attempt %s for review: %v", attempt.ID, reviewErr)
		}
		out.Status = string(models.StatusManualReview)
	default:
		nextRetry := time.Now().Add(services.BackoffDelay(1, ctrl.retryBase, ctrl.retryMax))
		if failErr := ctrl.attempts.RecordFailure(ctx, attempt.ID, result.Message, &nextRetry); failErr != nil {
			log.Printf("⚠️ Failed to record failure for attempt %s: %v", attempt.ID, failErr)
		}
		out.Status = string(models.StatusPending)
	}
	return out
}

func validateApplyRequest(target models.ApplicationTarget, profile *models.ApplicantProfile) error {
	if strings.TrimSpace(target.URL) == "" {
		return errMissingField("target.url")
	}
	if !strings.HasPrefix(target.URL, "http://") && !strings.HasPrefix(target.URL, "https://") {
		return errMissingField("target.url must be an absolute http(s) URL")
	}
	if strings.TrimSpace(profile.Email) == "" {
		return errMissingField("profile.email")
	}
	if strings.TrimSpace(profile.FullName) == "" && strings.TrimSpace(profile.FirstName) == "" {
		return errMissingField("profile.full_name")
	}
	return nil
}

type errMissingField string

func (e errMissingField) Error() string { return "missing or invalid field: " + string(e) }
