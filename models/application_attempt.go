package models

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type AttemptStatus string

const (
	StatusPending      AttemptStatus = "pending"
	StatusApplied      AttemptStatus = "applied"
	StatusManualReview AttemptStatus = "requires_manual_review"
	StatusRejected     AttemptStatus = "rejected"
)

// ApplicationAttempt tracks one logical apply action across retries.
type ApplicationAttempt struct {
	ID                string           `json:"id"`
	JobID             string           `json:"job_id"`
	TargetURL         string           `json:"target_url"`
	Profile           ApplicantProfile `json:"profile"`
	Status            AttemptStatus    `json:"status"`
	FieldsFilledCount int              `json:"fields_filled_count"`
	RetryCount        int              `json:"retry_count"`
	LastRetryAt       *time.Time       `json:"last_retry_at,omitempty"`
	NextRetryAt       *time.Time       `json:"next_retry_at,omitempty"`
	DiagnosticNotes   string           `json:"diagnostic_notes"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// Terminal reports whether no further automated work should happen.
func (a *ApplicationAttempt) Terminal(ceiling int) bool {
	return a.Status == StatusApplied || a.Status == StatusManualReview || a.RetryCount >= ceiling
}

type AttemptModel struct {
	DB *sql.DB
}

func NewAttemptModel(db *sql.DB) *AttemptModel {
	return &AttemptModel{DB: db}
}

func (m *AttemptModel) Create(ctx context.Context, target ApplicationTarget, profile ApplicantProfile) (*ApplicationAttempt, error) {
	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot profile: %w", err)
	}

	attempt := &ApplicationAttempt{
		ID:        uuid.NewString(),
		JobID:     target.JobID,
		TargetURL: target.URL,
		Profile:   profile,
		Status:    StatusPending,
	}

	query := `
		INSERT INTO application_attempts (id, job_id, target_url, profile_snapshot, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`
	err = m.DB.QueryRowContext(ctx, query, attempt.ID, attempt.JobID, attempt.TargetURL, string(profileJSON), attempt.Status).
		Scan(&attempt.CreatedAt, &attempt.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}
	return attempt, nil
}

func (m *AttemptModel) GetByID(ctx context.Context, id string) (*ApplicationAttempt, error) {
	query := `
		SELECT id, job_id, target_url, profile_snapshot, status, fields_filled_count,
		       retry_count, last_retry_at, next_retry_at, diagnostic_notes, created_at, updated_at
		FROM application_attempts WHERE id = $1`
	return m.scanOne(m.DB.QueryRowContext(ctx, query, id))
}

// DueForRetry selects pending attempts whose backoff has elapsed, bounded to
// limit rows so a sweep never spikes browser usage.
func (m *AttemptModel) DueForRetry(ctx context.Context, now time.Time, ceiling, limit int) ([]*ApplicationAttempt, error) {
	query := `
		SELECT id, job_id, target_url, profile_snapshot, status, fields_filled_count,
		       retry_count, last_retry_at, next_retry_at, diagnostic_notes, created_at, updated_at
		FROM application_attempts
		WHERE status = $1 AND retry_count < $2 AND next_retry_at IS NOT NULL AND next_retry_at <= $3
		ORDER BY next_retry_at ASC
		LIMIT $4`
	rows, err := m.DB.QueryContext(ctx, query, StatusPending, ceiling, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select due attempts: %w", err)
	}
	defer rows.Close()

	attempts := []*ApplicationAttempt{}
	for rows.Next() {
		attempt, err := m.scanRow(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, attempt)
	}
	return attempts, rows.Err()
}

// MarkApplied finalizes a successful attempt and clears any scheduled retry.
func (m *AttemptModel) MarkApplied(ctx context.Context, id string, fieldsFilled int, note string) error {
	query := `
		UPDATE application_attempts
		SET status = $1, fields_filled_count = $2, diagnostic_notes = $3,
		    next_retry_at = NULL, updated_at = NOW()
		WHERE id = $4`
	_, err := m.DB.ExecContext(ctx, query, StatusApplied, fieldsFilled, note, id)
	return err
}

// RecordFailure bumps the retry counter and schedules the next retry, or
// leaves next_retry_at cleared when the attempt just hit the ceiling.
func (m *AttemptModel) RecordFailure(ctx context.Context, id string, note string, nextRetryAt *time.Time) error {
	query := `
		UPDATE application_attempts
		SET retry_count = retry_count + 1, last_retry_at = NOW(), next_retry_at = $1,
		    diagnostic_notes = $2, updated_at = NOW()
		WHERE id = $3`
	_, err := m.DB.ExecContext(ctx, query, nextRetryAt, note, id)
	return err
}

// MarkManualReview makes the attempt terminal and visible to the user.
func (m *AttemptModel) MarkManualReview(ctx context.Context, id string, note string) error {
	query := `
		UPDATE application_attempts
		SET status = $1, diagnostic_notes = $2, next_retry_at = NULL, updated_at = NOW()
		WHERE id = $3`
	_, err := m.DB.ExecContext(ctx, query, StatusManualReview, note, id)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (m *AttemptModel) scanOne(row *sql.Row) (*ApplicationAttempt, error) {
	attempt, err := m.scanRow(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("attempt not found")
	}
	return attempt, err
}

func (m *AttemptModel) scanRow(row rowScanner) (*ApplicationAttempt, error) {
	var attempt ApplicationAttempt
	var profileJSON string
	var lastRetry, nextRetry sql.NullTime
	var notes sql.NullString

	err := row.Scan(
		&attempt.ID, &attempt.JobID, &attempt.TargetURL, &profileJSON, &attempt.Status,
		&attempt.FieldsFilledCount, &attempt.RetryCount, &lastRetry, &nextRetry,
		&notes, &attempt.CreatedAt, &attempt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(profileJSON), &attempt.Profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile snapshot for attempt %s: %w", attempt.ID, err)
	}
	if lastRetry.Valid {
		attempt.LastRetryAt = &lastRetry.Time
	}
	if nextRetry.Valid {
		attempt.NextRetryAt = &nextRetry.Time
	}
	if notes.Valid {
		attempt.DiagnosticNotes = notes.String
	}
	return &attempt, nil
}
