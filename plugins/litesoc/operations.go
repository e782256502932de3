package litesoc

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/Jeffail/gabs/v2"
)

// CreateEventInput is the input of event:create.
type CreateEventInput struct {
	EventType       string          `json:"event_type" default:"auth.login_failed" validate:"required"`
	CustomEventType string          `json:"custom_event_type"`
	ActorID         string          `json:"actor_id" validate:"required,max=255"`
	ActorEmail      string          `json:"actor_email" validate:"omitempty,email"`
	UserIP          string          `json:"user_ip" validate:"omitempty,ip"`
	Timestamp       string          `json:"timestamp"`
	Metadata        []MetadataEntry `json:"metadata"`
}

type GetEventInput struct {
	EventID string `json:"event_id" validate:"required"`
}

// ListEventsInput is the input of event:getAll. Without ReturnAll a single
// page of at most Limit events is returned.
type ListEventsInput struct {
	ReturnAll bool   `json:"return_all"`
	Limit     int    `json:"limit" default:"50" validate:"gte=1,lte=100"`
	EventType string `json:"event_type"`
	ActorID   string `json:"actor_id"`
	Severity  string `json:"severity"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type GetAlertInput struct {
	AlertID string `json:"alert_id" validate:"required"`
}

// ListAlertsInput is the input of alert:getAll.
type ListAlertsInput struct {
	ReturnAll bool   `json:"return_all"`
	Limit     int    `json:"limit" default:"100" validate:"gte=1,lte=500"`
	AlertType string `json:"alert_type"`
	Severity  string `json:"severity"`
	Status    string `json:"status"`
	ActorID   string `json:"actor_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type ResolveAlertInput struct {
	AlertID        string `json:"alert_id" validate:"required"`
	ResolutionType string `json:"resolution_type" default:"false_positive" validate:"required"`
	InternalNotes  string `json:"internal_notes" validate:"max=2000"`
}

type MarkAlertSafeInput struct {
	AlertID       string `json:"alert_id" validate:"required"`
	InternalNotes string `json:"internal_notes" validate:"max=2000"`
}

// ErrCustomEventType is user-facing text; the capital letter is intended.
var ErrCustomEventType = errors.New("Custom event type must be in format category.action (e.g., billing.payment_failed)")

// operations implements the node's resource operations on top of a Client.
type operations struct {
	client    *Client
	paginator *Paginator
}

func (o *operations) createEvent(ctx context.Context, in CreateEventInput) (Result, error) {
	eventType := in.EventType
	if eventType == CustomEventType {
		// custom types are sent as typed; only the category.action shape is checked
		if !strings.Contains(in.CustomEventType, ".") {
			return Result{}, ErrCustomEventType
		}
		eventType = in.CustomEventType
	}

	body := map[string]any{
		"event": eventType,
		"actor": BuildActor(in.ActorID, in.ActorEmail),
	}
	if in.UserIP != "" {
		body["user_ip"] = in.UserIP
	}
	if in.Timestamp != "" {
		body["timestamp"] = in.Timestamp
	}
	if len(in.Metadata) > 0 {
		body["metadata"] = ParseMetadata(in.Metadata)
	}

	return o.client.Request(ctx, http.MethodPost, "/collect", body, nil)
}

func (o *operations) getEvent(ctx context.Context, in GetEventInput) (Result, error) {
	return o.client.Request(ctx, http.MethodGet, "/events/"+url.PathEscape(in.EventID), nil, nil)
}

func (o *operations) listEvents(ctx context.Context, in ListEventsInput) ([]map[string]any, error) {
	if err := checkOption("severity", in.Severity, Description.EventSeverities); err != nil {
		return nil, err
	}

	query := nonEmpty(map[string]string{
		"event_type": in.EventType,
		"actor_id":   in.ActorID,
		"severity":   in.Severity,
		"start_date": in.StartDate,
		"end_date":   in.EndDate,
	})
	return o.list(ctx, "/events", "events", query, in.ReturnAll, in.Limit)
}

func (o *operations) getAlert(ctx context.Context, in GetAlertInput) (Result, error) {
	return o.client.Request(ctx, http.MethodGet, "/alerts/"+url.PathEscape(in.AlertID), nil, nil)
}

func (o *operations) listAlerts(ctx context.Context, in ListAlertsInput) ([]map[string]any, error) {
	checks := []struct {
		param   string
		value   string
		options []Option
	}{
		{"alert type", in.AlertType, Description.AlertTypes},
		{"severity", in.Severity, Description.AlertSeverities},
		{"status", in.Status, Description.AlertStatuses},
	}
	for _, c := range checks {
		if err := checkOption(c.param, c.value, c.options); err != nil {
			return nil, err
		}
	}

	query := nonEmpty(map[string]string{
		"alert_type": in.AlertType,
		"severity":   in.Severity,
		"status":     in.Status,
		"actor_id":   in.ActorID,
		"start_date": in.StartDate,
		"end_date":   in.EndDate,
	})
	return o.list(ctx, "/alerts/list", "alerts", query, in.ReturnAll, in.Limit)
}

func (o *operations) resolveAlert(ctx context.Context, in ResolveAlertInput) (Result, error) {
	if err := checkOption("resolution type", in.ResolutionType, Description.ResolutionTypes); err != nil {
		return Result{}, err
	}

	body := map[string]any{
		"action":          "resolve",
		"resolution_type": in.ResolutionType,
	}
	if in.InternalNotes != "" {
		body["internal_notes"] = in.InternalNotes
	}
	return o.client.Request(ctx, http.MethodPatch, "/alerts/"+url.PathEscape(in.AlertID), body, nil)
}

func (o *operations) markAlertSafe(ctx context.Context, in MarkAlertSafeInput) (Result, error) {
	body := map[string]any{"action": "mark_safe"}
	if in.InternalNotes != "" {
		body["internal_notes"] = in.InternalNotes
	}
	return o.client.Request(ctx, http.MethodPatch, "/alerts/"+url.PathEscape(in.AlertID), body, nil)
}

// list returns every item of endpoint when returnAll is set, otherwise a single
// page of at most limit items read from data, falling back to fallbackKey.
func (o *operations) list(ctx context.Context, endpoint, fallbackKey string, query map[string]any, returnAll bool, limit int) ([]map[string]any, error) {
	if returnAll {
		return o.paginator.CollectAll(ctx, http.MethodGet, endpoint, nil, query, 0)
	}

	result, err := o.client.Request(ctx, http.MethodGet, endpoint, nil, Query(query).With("limit", limit))
	if err != nil {
		return nil, err
	}

	parsed := gabs.Wrap(result.Body)
	for _, key := range []string{"data", fallbackKey} {
		if raw, ok := parsed.Path(key).Data().([]any); ok {
			return toObjects(raw), nil
		}
	}
	return []map[string]any{}, nil
}

func nonEmpty(values map[string]string) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

func toObjects(raw []any) []map[string]any {
	items := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			items = append(items, m)
		}
	}
	return items
}
