package store

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

// marshalWarnings converts import warnings to JSON TEXT for storage.
// A nil slice is stored as "[]" so the column is never NULL.
func marshalWarnings(warnings []string) (string, error) {
	if warnings == nil {
		warnings = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(warnings); err != nil {
		return "", fmt.Errorf("marshal warnings: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// unmarshalWarnings parses JSON TEXT back into warnings. Never returns nil.
func unmarshalWarnings(data string) ([]string, error) {
	warnings := []string{}
	if data == "" {
		return warnings, nil
	}
	if err := json.Unmarshal([]byte(data), &warnings); err != nil {
		return nil, fmt.Errorf("unmarshal warnings: %w", err)
	}
	if warnings == nil {
		warnings = []string{}
	}
	return warnings, nil
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	i := v.Int64
	return &i
}
