package litesoc

import (
	"fmt"
	"net/http"
)

// Option is one allowed value of an enumerated parameter.
type Option struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Operation is one action of a resource and the API call backing it.
type Operation struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Method   string `json:"method"`
	Endpoint string `json:"endpoint"`
}

type Resource struct {
	Name       string      `json:"name"`
	Value      string      `json:"value"`
	Operations []Operation `json:"operations"`
}

// NodeDescription declares what the node offers: resources, operations and
// the enumerations its parameters accept.
type NodeDescription struct {
	DisplayName string     `json:"display_name"`
	Name        string     `json:"name"`
	Version     string     `json:"version"`
	Subtitle    string     `json:"subtitle"`
	Credentials []string   `json:"credentials"`
	Resources   []Resource `json:"resources"`

	EventTypes      []Option `json:"event_types"`
	EventSeverities []Option `json:"event_severities"`
	AlertTypes      []Option `json:"alert_types"`
	AlertSeverities []Option `json:"alert_severities"`
	AlertStatuses   []Option `json:"alert_statuses"`
	ResolutionTypes []Option `json:"resolution_types"`
}

const (
	ResourceEvent = "event"
	ResourceAlert = "alert"

	OperationCreate   = "create"
	OperationGet      = "get"
	OperationGetAll   = "getAll"
	OperationResolve  = "resolve"
	OperationMarkSafe = "markSafe"

	// CustomEventType selects a free-form category.action event type.
	CustomEventType  = "custom"
	DefaultEventType = "auth.login_failed"
)

var Description = NodeDescription{
	DisplayName: "LiteSOC",
	Name:        "liteSoc",
	Version:     NodeVersion,
	Subtitle:    "{{operation}}: {{resource}}",
	Credentials: []string{CredentialName},
	Resources: []Resource{
		{
			Name:  "Event",
			Value: ResourceEvent,
			Operations: []Operation{
				{Name: "Create", Value: OperationCreate, Method: http.MethodPost, Endpoint: "/collect"},
				{Name: "Get", Value: OperationGet, Method: http.MethodGet, Endpoint: "/events/{eventId}"},
				{Name: "Get Many", Value: OperationGetAll, Method: http.MethodGet, Endpoint: "/events"},
			},
		},
		{
			Name:  "Alert",
			Value: ResourceAlert,
			Operations: []Operation{
				{Name: "Get", Value: OperationGet, Method: http.MethodGet, Endpoint: "/alerts/{alertId}"},
				{Name: "Get Many", Value: OperationGetAll, Method: http.MethodGet, Endpoint: "/alerts/list"},
				{Name: "Resolve", Value: OperationResolve, Method: http.MethodPatch, Endpoint: "/alerts/{alertId}"},
				{Name: "Mark Safe", Value: OperationMarkSafe, Method: http.MethodPatch, Endpoint: "/alerts/{alertId}"},
			},
		},
	},
	EventTypes: []Option{
		{"Auth: Login Success", "auth.login_success"},
		{"Auth: Login Failed", "auth.login_failed"},
		{"Auth: Logout", "auth.logout"},
		{"Auth: Password Reset", "auth.password_reset"},
		{"Auth: MFA Enabled", "auth.mfa_enabled"},
		{"Auth: MFA Disabled", "auth.mfa_disabled"},
		{"Auth: Session Expired", "auth.session_expired"},
		{"Auth: Token Refreshed", "auth.token_refreshed"},
		{"Authz: Access Denied", "authz.access_denied"},
		{"Authz: Role Changed", "authz.role_changed"},
		{"Authz: Permission Granted", "authz.permission_granted"},
		{"Authz: Permission Revoked", "authz.permission_revoked"},
		{"Admin: User Created", "admin.user_created"},
		{"Admin: User Deleted", "admin.user_deleted"},
		{"Admin: User Suspended", "admin.user_suspended"},
		{"Admin: Privilege Escalation", "admin.privilege_escalation"},
		{"Admin: Settings Changed", "admin.settings_changed"},
		{"Admin: API Key Created", "admin.api_key_created"},
		{"Admin: API Key Revoked", "admin.api_key_revoked"},
		{"Data: Export", "data.export"},
		{"Data: Bulk Delete", "data.bulk_delete"},
		{"Data: Sensitive Access", "data.sensitive_access"},
		{"Security: Suspicious Activity", "security.suspicious_activity"},
		{"Security: Rate Limit Exceeded", "security.rate_limit_exceeded"},
		{"Security: IP Blocked", "security.ip_blocked"},
		{"Security: Brute Force Detected", "security.brute_force_detected"},
		{"Custom Event", CustomEventType},
	},
	EventSeverities: []Option{
		{"Critical", "critical"},
		{"Warning", "warning"},
		{"Info", "info"},
	},
	AlertTypes: []Option{
		{"Brute Force Attack", "brute_force_attack"},
		{"Data Exfiltration", "data_exfiltration"},
		{"Geo Anomaly", "geo_anomaly"},
		{"Impossible Travel", "impossible_travel"},
		{"New Device", "new_device"},
		{"Privilege Escalation", "privilege_escalation"},
		{"Rate Limit Exceeded", "rate_limit_exceeded"},
		{"Suspicious Activity", "suspicious_activity"},
	},
	AlertSeverities: []Option{
		{"Low", "low"},
		{"Medium", "medium"},
		{"High", "high"},
		{"Critical", "critical"},
	},
	AlertStatuses: []Option{
		{"Open", "open"},
		{"Acknowledged", "acknowledged"},
		{"Resolved", "resolved"},
		{"Dismissed (Safe)", "dismissed"},
	},
	ResolutionTypes: []Option{
		{"Blocked IP", "blocked_ip"},
		{"Contacted User", "contacted_user"},
		{"False Positive", "false_positive"},
		{"Other", "other"},
		{"Reset Password", "reset_password"},
	},
}

// Operation returns the operation of resource named operation.
func (d NodeDescription) Operation(resource, operation string) (Operation, error) {
	for _, r := range d.Resources {
		if r.Value != resource {
			continue
		}
		for _, op := range r.Operations {
			if op.Value == operation {
				return op, nil
			}
		}
		// user-facing messages, capitalized on purpose
		return Operation{}, fmt.Errorf("Operation %q is not supported for %s resource", operation, resource)
	}
	return Operation{}, fmt.Errorf("Resource %q is not supported", resource)
}

// checkOption reports an error when value is set and not one of options.
func checkOption(param, value string, options []Option) error {
	if value == "" {
		return nil
	}
	for _, o := range options {
		if o.Value == value {
			return nil
		}
	}
	return fmt.Errorf("invalid %s %q", param, value)
}
