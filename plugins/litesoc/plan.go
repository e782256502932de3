package litesoc

import (
	"net/http"
	"strconv"
	"strings"
	"unicode"
)

// Response headers carrying the account's plan information.
const (
	HeaderPlan      = "X-LiteSOC-Plan"
	HeaderRetention = "X-LiteSOC-Retention"
	HeaderCutoff    = "X-LiteSOC-Cutoff"
)

// PlanMetadata describes the subscription tier an API response was served under.
type PlanMetadata struct {
	Plan          string `json:"plan,omitempty"`
	RetentionDays *int   `json:"retention_days,omitempty"`
	CutoffDate    string `json:"cutoff_date,omitempty"`
}

// ParsePlanMetadata reads plan metadata from h. It returns nil when none of the
// plan headers is present.
//
// The retention header may carry a unit suffix ("30 days"); non-digits are
// dropped before parsing.
func ParsePlanMetadata(h http.Header) *PlanMetadata {
	if h == nil {
		return nil
	}

	plan := headerValue(h, HeaderPlan)
	retention := headerValue(h, HeaderRetention)
	cutoff := headerValue(h, HeaderCutoff)
	if plan == "" && retention == "" && cutoff == "" {
		return nil
	}

	meta := &PlanMetadata{Plan: plan, CutoffDate: cutoff}
	if digits := stripNonDigits(retention); digits != "" {
		if days, err := strconv.Atoi(digits); err == nil {
			meta.RetentionDays = &days
		}
	}
	return meta
}

// headerValue looks name up ignoring case. Hosts may hand over header maps
// whose keys were never canonicalized.
func headerValue(h http.Header, name string) string {
	if v := h.Get(name); v != "" {
		return strings.TrimSpace(v)
	}
	for k, vs := range h {
		if strings.EqualFold(k, name) && len(vs) > 0 {
			return strings.TrimSpace(vs[0])
		}
	}
	return ""
}

func stripNonDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}
