package models

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// DetectedField associates a logical profile attribute with a page element.
type DetectedField struct {
	LogicalName  string  `json:"field"`
	Locator      string  `json:"locator"`
	Confidence   float64 `json:"confidence"`
	VisibleLabel string  `json:"label"`
	Position     string  `json:"position"` // e.g. "top", "middle", "bottom"
}

// FieldMapping is a cached vision analysis for one form shape, keyed by
// (platform, form structural hash). Counters age it but never delete it; a
// structural change on the destination form produces a new hash instead.
type FieldMapping struct {
	Platform     string          `json:"platform"`
	FormHash     string          `json:"form_hash"`
	Fields       []DetectedField `json:"fields"`
	UsageCount   int             `json:"usage_count"`
	SuccessCount int             `json:"success_count"`
	LastUsedAt   time.Time       `json:"last_used_at"`
	CreatedAt    time.Time       `json:"created_at"`
}

// SuccessRate is successes over uses; zero uses reads as zero.
func (f *FieldMapping) SuccessRate() float64 {
	if f.UsageCount == 0 {
		return 0
	}
	return float64(f.SuccessCount) / float64(f.UsageCount)
}

type FieldMappingModel struct {
	DB *sql.DB
}

func NewFieldMappingModel(db *sql.DB) *FieldMappingModel {
	return &FieldMappingModel{DB: db}
}

// Get returns the cached mapping for the key, or nil on a miss.
func (m *FieldMappingModel) Get(ctx context.Context, platform, formHash string) (*FieldMapping, error) {
	mapping := &FieldMapping{Platform: platform, FormHash: formHash}
	var fieldsJSON string

	query := `
		SELECT fields, usage_count, success_count, last_used_at, created_at
		FROM field_mappings WHERE platform = $1 AND form_hash = $2`
	err := m.DB.QueryRowContext(ctx, query, platform, formHash).
		Scan(&fieldsJSON, &mapping.UsageCount, &mapping.SuccessCount, &mapping.LastUsedAt, &mapping.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load field mapping: %w", err)
	}

	if err := json.Unmarshal([]byte(fieldsJSON), &mapping.Fields); err != nil {
		return nil, fmt.Errorf("corrupt field mapping %s/%s: %w", platform, formHash, err)
	}
	return mapping, nil
}

// Put stores a freshly analyzed mapping. A concurrent writer for the same key
// wins harmlessly; both analyzed the same form shape.
func (m *FieldMappingModel) Put(ctx context.Context, platform, formHash string, fields []DetectedField) error {
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode fields: %w", err)
	}

	query := `
		INSERT INTO field_mappings (platform, form_hash, fields, usage_count, success_count, last_used_at)
		VALUES ($1, $2, $3, 0, 0, NOW())
		ON CONFLICT (platform, form_hash) DO UPDATE SET fields = EXCLUDED.fields`
	_, err = m.DB.ExecContext(ctx, query, platform, formHash, string(fieldsJSON))
	if err != nil {
		return fmt.Errorf("failed to store field mapping: %w", err)
	}
	return nil
}

// RecordUse bumps the usage counters atomically at the storage layer, so
// concurrent attempts against the same form never lose an increment.
func (m *FieldMappingModel) RecordUse(ctx context.Context, platform, formHash string, success bool) error {
	successInc := 0
	if success {
		successInc = 1
	}
	query := `
		UPDATE field_mappings
		SET usage_count = usage_count + 1, success_count = success_count + $1, last_used_at = NOW()
		WHERE platform = $2 AND form_hash = $3`
	_, err := m.DB.ExecContext(ctx, query, successInc, platform, formHash)
	return err
}
