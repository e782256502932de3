package litesoc

import (
	"errors"
	"fmt"
	"strings"
)

// Validation errors are shown to workflow users as-is, so they are written as
// sentences and keep their capital letter.
var (
	ErrEventTypeFormat = errors.New("Event type must be in format: category.action (e.g., auth.login_failed)")
	ErrSeverity        = fmt.Errorf("Invalid severity. Must be one of: %s", strings.Join(Severities, ", "))
)

// Severities accepted by ValidateSeverity, in ascending order.
var Severities = []string{"low", "medium", "high", "critical"}

// FormatEventType checks eventType follows category.action and normalizes it.
func FormatEventType(eventType string) (string, error) {
	if !strings.Contains(eventType, ".") {
		return "", ErrEventTypeFormat
	}
	return strings.TrimSpace(strings.ToLower(eventType)), nil
}

// ValidateSeverity normalizes severity and checks it is a known level.
func ValidateSeverity(severity string) (string, error) {
	normalized := strings.TrimSpace(strings.ToLower(severity))
	for _, s := range Severities {
		if s == normalized {
			return normalized, nil
		}
	}
	return "", ErrSeverity
}

// BuildActor returns the actor object of an event, or nil when neither id
// nor email is set.
func BuildActor(id, email string) map[string]any {
	if id == "" && email == "" {
		return nil
	}
	actor := map[string]any{}
	if id != "" {
		actor["id"] = id
	}
	if email != "" {
		actor["email"] = email
	}
	return actor
}

// MetadataEntry is one key/value pair of event metadata.
type MetadataEntry struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// ParseMetadata builds the metadata object from entries. Entries without a
// key are skipped; null, zero and false values are kept.
func ParseMetadata(entries []MetadataEntry) map[string]any {
	metadata := make(map[string]any, len(entries))
	for _, e := range entries {
		if e.Key == "" {
			continue
		}
		metadata[e.Key] = e.Value
	}
	return metadata
}
