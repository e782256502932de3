package litesoc

import (
	"net/http"
	"testing"
)

func TestParsePlanMetadata(t *testing.T) {
	intPtr := func(i int) *int { return &i }

	tests := []struct {
		name     string
		headers  http.Header
		expected *PlanMetadata
	}{
		{
			name:     "no headers",
			headers:  http.Header{},
			expected: nil,
		},
		{
			name: "all headers",
			headers: http.Header{
				"X-LiteSOC-Plan":      {"enterprise"},
				"X-LiteSOC-Retention": {"365"},
				"X-LiteSOC-Cutoff":    {"2025-10-18"},
			},
			expected: &PlanMetadata{Plan: "enterprise", RetentionDays: intPtr(365), CutoffDate: "2025-10-18"},
		},
		{
			name: "lower case header names",
			headers: http.Header{
				"x-litesoc-plan":      {"free"},
				"x-litesoc-retention": {"30 days"},
				"X-LITESOC-CUTOFF":    {"2026-09-18"},
			},
			expected: &PlanMetadata{Plan: "free", RetentionDays: intPtr(30), CutoffDate: "2026-09-18"},
		},
		{
			name: "retention with unit suffix",
			headers: http.Header{
				"X-LiteSOC-Retention": {"7days"},
			},
			expected: &PlanMetadata{RetentionDays: intPtr(7)},
		},
		{
			name: "retention without digits",
			headers: http.Header{
				"X-LiteSOC-Plan":      {"pro"},
				"X-LiteSOC-Retention": {"unlimited"},
			},
			expected: &PlanMetadata{Plan: "pro"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePlanMetadata(tt.headers)
			if tt.expected == nil {
				if got != nil {
					t.Errorf("Expected nil, got %+v", got)
				}
				return
			}
			if got == nil {
				t.Fatal("Expected plan metadata, got nil")
			}
			if got.Plan != tt.expected.Plan {
				t.Errorf("Expected plan %q, got %q", tt.expected.Plan, got.Plan)
			}
			if got.CutoffDate != tt.expected.CutoffDate {
				t.Errorf("Expected cutoff %q, got %q", tt.expected.CutoffDate, got.CutoffDate)
			}
			switch {
			case tt.expected.RetentionDays == nil && got.RetentionDays != nil:
				t.Errorf("Expected no retention, got %d", *got.RetentionDays)
			case tt.expected.RetentionDays != nil && (got.RetentionDays == nil || *got.RetentionDays != *tt.expected.RetentionDays):
				t.Errorf("Expected retention %d, got %v", *tt.expected.RetentionDays, got.RetentionDays)
			}
		})
	}
}
