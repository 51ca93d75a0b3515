package format

import (
	"errors"
	"net/http"

	"pkt.systems/zscale/client"
	"pkt.systems/zscale/validate"
)

// Error codes reported to callers.
const (
	CodeInvalidArgument  = "invalid_argument"
	CodeUnauthorized     = "unauthorized"
	CodeNotFound         = "not_found"
	CodeBadRequest       = "bad_request"
	CodeClientError      = "client_error"
	CodeRemoteFailure    = "remote_failure"
	CodeSchemaMismatch   = "schema_mismatch"
	CodeTransportFailure = "transport_failure"
	CodeTimeout          = "timeout"
	CodeToolError        = "tool_error"
)

// Categories group codes by who has to act.
const (
	CategoryInput     = "input"
	CategoryAuth      = "authentication"
	CategoryNotFound  = "not_found"
	CategoryRequest   = "bad_request"
	CategoryRemote    = "remote"
	CategoryContract  = "contract"
	CategoryTransport = "connectivity"
	CategoryInternal  = "internal"
)

// Classification is the caller-facing description of a failure.
type Classification struct {
	Code       string
	Category   string
	Hint       string
	Detail     string
	HTTPStatus int
	Retryable  bool
	Fields     []string
}

// Classify maps an error returned by a validator or the gateway client to
// its caller-facing classification. A nil error yields the zero value.
func Classify(err error) Classification {
	if err == nil {
		return Classification{}
	}
	var (
		verr *validate.ValidationError
		cerr *client.ClientError
		terr *client.TransportError
	)
	switch {
	case errors.As(err, &verr):
		return Classification{
			Code:     CodeInvalidArgument,
			Category: CategoryInput,
			Hint:     "Correct the listed arguments and call again.",
			Detail:   err.Error(),
			Fields:   verr.Fields(),
		}
	case errors.As(err, &cerr):
		if cerr.Mismatch != nil {
			c := Classification{
				Code:       CodeSchemaMismatch,
				Category:   CategoryContract,
				Hint:       "The service answered with a shape this gateway does not accept; the API contract may have changed.",
				Detail:     err.Error(),
				HTTPStatus: cerr.Status,
			}
			if f := cerr.Mismatch.Err.Field(); f != "" {
				c.Fields = []string{f}
			}
			return c
		}
		return classifyStatus(cerr.Status, err.Error())
	case errors.As(err, &terr):
		if terr.Timeout {
			return Classification{
				Code:      CodeTimeout,
				Category:  CategoryTransport,
				Hint:      "The service did not answer in time. Try again or raise the HTTP timeout.",
				Detail:    err.Error(),
				Retryable: true,
			}
		}
		return Classification{
			Code:      CodeTransportFailure,
			Category:  CategoryTransport,
			Hint:      "The Zephyr Scale API could not be reached. Check the base URL and network connectivity.",
			Detail:    err.Error(),
			Retryable: true,
		}
	default:
		return Classification{
			Code:     CodeToolError,
			Category: CategoryInternal,
			Hint:     "Unexpected failure; see the detail.",
			Detail:   err.Error(),
		}
	}
}

func classifyStatus(status int, detail string) Classification {
	c := Classification{HTTPStatus: status, Detail: detail}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		c.Code, c.Category = CodeUnauthorized, CategoryAuth
		c.Hint = "Authentication failed. Check that ZEPHYR_SCALE_API_TOKEN is set to a valid token with access to the project."
	case status == http.StatusNotFound:
		c.Code, c.Category = CodeNotFound, CategoryNotFound
		c.Hint = "The requested resource was not found. Check the key or id and the project it belongs to."
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		c.Code, c.Category = CodeBadRequest, CategoryRequest
		c.Hint = "The service rejected the request. Check the argument values against the project's configuration."
	case status >= 500:
		c.Code, c.Category = CodeRemoteFailure, CategoryRemote
		c.Hint = "The Zephyr Scale service failed to handle the request. Try again later."
		c.Retryable = true
	default:
		c.Code, c.Category = CodeClientError, CategoryRequest
		c.Hint = "The service refused the request."
		c.Retryable = status == http.StatusTooManyRequests
	}
	return c
}
