package litesoc

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Jeffail/gabs/v2"

	"github.com/litesoc/litesoc-flow/runtime/plugin"
)

// Backend error codes carried in error.code of a failed response body.
const (
	CodePlanRestricted    = "PLAN_RESTRICTED"
	CodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	CodeUnauthorized      = "UNAUTHORIZED"
)

const (
	MessagePlanRestricted = "This action requires a Pro or Enterprise plan. Please upgrade your LiteSOC account at https://www.litesoc.io/pricing"
	MessageUnauthorized   = "Invalid API Key. Please check your LiteSOC credentials."

	MessageInvalidKey         = "Invalid API Key. Please check your credentials."
	MessageFeatureRestricted  = "Feature Restricted. Your current LiteSOC plan does not support this action. Upgrade to Pro at https://www.litesoc.io/pricing"
	MessagePollingTooFast     = "Rate Limit Exceeded. The workflow is polling too fast. Please increase the polling interval."
	MessageServiceUnavailable = "LiteSOC API is currently unavailable. Please try again later."
	MessageNotFound           = "Resource not found. The requested alert or event does not exist."
	MessageInvalidRequest     = "Invalid request. Please check the parameters."
	MessageRequestFailed      = "LiteSOC API request failed"

	defaultRetryAfter = "60"
)

// ClassifiedError is the user-facing form of a failed call.
type ClassifiedError struct {
	Message  string
	HTTPCode string
}

func rateLimitMessage(retryAfter string) string {
	return fmt.Sprintf("Rate limit exceeded. Please wait %s seconds before retrying. Consider increasing your polling interval.", retryAfter)
}

// ClassifyError maps a failed call to a stable message and HTTP code.
//
// A backend error code wins over the HTTP status. The status is taken from the
// transport cause, then the status code, then the HTTP code field. When the API
// supplied a message of its own that the chosen message does not already
// contain, it is appended as " Details: <message>".
func ClassifyError(err error) ClassifiedError {
	raw := inspect(err)

	var c ClassifiedError
	switch raw.code {
	case CodePlanRestricted:
		c = ClassifiedError{Message: MessagePlanRestricted, HTTPCode: "403"}
	case CodeRateLimitExceeded:
		c = ClassifiedError{Message: rateLimitMessage(raw.retryAfter), HTTPCode: "429"}
	case CodeUnauthorized:
		c = ClassifiedError{Message: MessageUnauthorized, HTTPCode: "401"}
	default:
		c = classifyStatus(raw.status, raw.apiMessage)
	}

	if raw.apiMessage != "" && !strings.Contains(c.Message, raw.apiMessage) && raw.apiMessage != MessageRequestFailed {
		c.Message = c.Message + " Details: " + raw.apiMessage
	}
	return c
}

func classifyStatus(status int, apiMessage string) ClassifiedError {
	switch status {
	case 401:
		return ClassifiedError{Message: MessageInvalidKey, HTTPCode: "401"}
	case 403:
		return ClassifiedError{Message: MessageFeatureRestricted, HTTPCode: "403"}
	case 429:
		return ClassifiedError{Message: MessagePollingTooFast, HTTPCode: "429"}
	case 500, 502, 503, 504:
		return ClassifiedError{Message: MessageServiceUnavailable, HTTPCode: strconv.Itoa(status)}
	case 404:
		return ClassifiedError{Message: MessageNotFound, HTTPCode: "404"}
	case 400:
		return ClassifiedError{Message: firstNonEmpty(apiMessage, MessageInvalidRequest), HTTPCode: "400"}
	default:
		return ClassifiedError{Message: firstNonEmpty(apiMessage, MessageRequestFailed)}
	}
}

type rawError struct {
	status     int
	code       string
	retryAfter string
	apiMessage string
}

func inspect(err error) rawError {
	var reqErr *plugin.RequestError
	if !errors.As(err, &reqErr) {
		if err == nil {
			return rawError{}
		}
		return rawError{apiMessage: err.Error()}
	}

	var body map[string]any
	raw := rawError{}
	if reqErr.Cause != nil {
		raw.status = reqErr.Cause.Code
		body = reqErr.Cause.Body
	}
	if raw.status == 0 {
		raw.status = reqErr.StatusCode
	}
	if raw.status == 0 {
		raw.status = reqErr.HTTPCode
	}
	if body == nil {
		body = reqErr.ResponseBody
	}

	parsed := gabs.Wrap(body)
	raw.code, _ = parsed.Path("error.code").Data().(string)
	errorMessage, _ := parsed.Path("error.message").Data().(string)
	raw.retryAfter = retryAfter(parsed.Path("error.retry_after").Data())
	raw.apiMessage = firstNonEmpty(errorMessage, reqErr.Message, reqErr.Description)
	return raw
}

// retryAfter renders the retry_after value, falling back to 60 seconds when it
// is missing, zero or empty.
func retryAfter(v any) string {
	switch n := v.(type) {
	case float64:
		if n != 0 {
			return strconv.FormatFloat(n, 'f', -1, 64)
		}
	case int:
		if n != 0 {
			return strconv.Itoa(n)
		}
	case json.Number:
		if n != "" && n != "0" {
			return n.String()
		}
	case string:
		if n != "" {
			return n
		}
	}
	return defaultRetryAfter
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
