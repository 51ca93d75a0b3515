package api

import "regexp"

const (
	// MaxNameLength bounds names of priorities, statuses, folders and other entities.
	MaxNameLength = 255
	// MaxDescriptionLength bounds free-text descriptions.
	MaxDescriptionLength = 255
	// MaxProjectKeyLength bounds Jira project keys.
	MaxProjectKeyLength = 10
)

var (
	// ProjectKeyPattern matches Jira project keys such as PROJ or MY_APP2.
	ProjectKeyPattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)
	// ColorPattern matches #RGB and #RRGGBB colors.
	ColorPattern = regexp.MustCompile(`^#([0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)
)

// Ref points at another resource by numeric id. Self is the API URL when the
// service includes it.
type Ref struct {
	// ID is the numeric identifier of the referenced resource.
	ID int64 `json:"id"`
	// Self is the canonical API URL of the referenced resource.
	Self Opt[string] `json:"self,omitzero"`
}

// IDRef is the request-side reference: only the id is sent.
type IDRef struct {
	ID int64 `json:"id"`
}

// Owner identifies a Jira user by Atlassian account id.
type Owner struct {
	// Self is the Jira user URL.
	Self Opt[string] `json:"self,omitzero"`
	// AccountID is the Atlassian account id.
	AccountID string `json:"accountId"`
}

// AccountRef is the request-side owner reference.
type AccountRef struct {
	AccountID string `json:"accountId"`
}

// SelfRef is a resource that is only addressable by URL, such as a test script.
type SelfRef struct {
	Self string `json:"self"`
}

// CreatedResource is returned by every create endpoint.
type CreatedResource struct {
	// ID is the server-assigned numeric id.
	ID int64 `json:"id"`
	// Key is the human-readable key for keyed entities (test case, cycle, plan).
	Key Opt[string] `json:"key,omitzero"`
	// Self is the API URL of the new resource.
	Self Opt[string] `json:"self,omitzero"`
}

// Health is the outcome of GET /healthcheck.
type Health struct {
	// Status is UP when the service answered 200.
	Status string `json:"status"`
	// HTTPStatus is the status code returned by the service.
	HTTPStatus int `json:"httpStatus"`
	// BaseURL is the API root that was probed.
	BaseURL string `json:"baseUrl"`
}

// ErrorResponse is the error body returned by the service on non-2xx replies.
// Different endpoints populate different members.
type ErrorResponse struct {
	ErrorCode     any      `json:"errorCode,omitempty"`
	Message       string   `json:"message,omitempty"`
	Error         string   `json:"error,omitempty"`
	ErrorMessages []string `json:"errorMessages,omitempty"`
}

var (
	refSchema = Output("Ref",
		Integer("id").Required(),
		String("self"),
	)
	ownerSchema = Output("Owner",
		String("self"),
		String("accountId").Required(),
	)
	selfRefSchema = Output("SelfRef",
		String("self").Required(),
	)
	createdResourceSchema = Output("CreatedResource",
		Integer("id").Required(),
		String("key"),
		String("self"),
	)

	idRefInputSchema = Input("IDRef",
		Integer("id").Required().AtLeast(1),
	)
	accountRefInputSchema = Input("AccountRef",
		String("accountId").Required().NotBlank(),
	)
)

// CreatedResourceSchema describes create responses.
func CreatedResourceSchema() *Schema { return createdResourceSchema }

func projectKeyField(name string) Field {
	return String(name).Length(0, MaxProjectKeyLength).Pattern(ProjectKeyPattern, "a Jira project key like PROJ")
}

func nameField() Field {
	return String("name").Required().NotBlank().Length(1, MaxNameLength)
}

func descriptionField(name string) Field {
	return String(name).Length(1, MaxDescriptionLength)
}

func colorField() Field {
	return String("color").Pattern(ColorPattern, "a hex color like #FF0000")
}
