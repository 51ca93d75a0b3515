package api

import (
	"net/url"
	"strconv"
	"strings"
)

// ListQuery is the canonical query of a list operation. ProjectKey may be
// empty until the client resolves the configured default.
type ListQuery struct {
	ProjectKey           string      `json:"projectKey,omitempty"`
	StatusType           string      `json:"statusType,omitempty"`
	FolderType           string      `json:"folderType,omitempty"`
	FolderID             Opt[int64]  `json:"folderId,omitzero"`
	JiraProjectVersionID Opt[int64]  `json:"jiraProjectVersionId,omitzero"`
	Page                 PageRequest `json:"page"`
}

// Values renders the query string. startAt and maxResults are always
// present; filters are added only when set.
func (q ListQuery) Values() url.Values {
	v := url.Values{}
	v.Set("startAt", strconv.FormatInt(q.Page.StartAt, 10))
	v.Set("maxResults", strconv.FormatInt(q.Page.MaxResults, 10))
	if q.ProjectKey != "" {
		v.Set("projectKey", q.ProjectKey)
	}
	if q.StatusType != "" {
		v.Set("statusType", q.StatusType)
	}
	if q.FolderType != "" {
		v.Set("folderType", q.FolderType)
	}
	if id, ok := q.FolderID.Get(); ok {
		v.Set("folderId", strconv.FormatInt(id, 10))
	}
	if id, ok := q.JiraProjectVersionID.Get(); ok {
		v.Set("jiraProjectVersionId", strconv.FormatInt(id, 10))
	}
	return v
}

// Check validates the page bounds and any filters present.
func (q ListQuery) Check() []FieldError {
	errs := q.Page.Check()
	for i := range errs {
		errs[i].Field = joinPath("page", errs[i].Field)
	}
	return append(errs, listQueryFilters.CheckValue(q.filters())...)
}

type listQueryFilterValues struct {
	ProjectKey           string     `json:"projectKey,omitempty"`
	StatusType           string     `json:"statusType,omitempty"`
	FolderType           string     `json:"folderType,omitempty"`
	FolderID             Opt[int64] `json:"folderId,omitzero"`
	JiraProjectVersionID Opt[int64] `json:"jiraProjectVersionId,omitzero"`
}

var listQueryFilters = Input("ListQueryFilters",
	projectKeyField("projectKey"),
	Enum("statusType", StatusTypes...),
	Enum("folderType", FolderTypes...),
	Integer("folderId").AtLeast(1),
	Integer("jiraProjectVersionId").AtLeast(1),
)

func (q ListQuery) filters() listQueryFilterValues {
	return listQueryFilterValues{
		ProjectKey:           q.ProjectKey,
		StatusType:           q.StatusType,
		FolderType:           q.FolderType,
		FolderID:             q.FolderID,
		JiraProjectVersionID: q.JiraProjectVersionID,
	}
}

// KeyedPage addresses a paginated sub-collection of one keyed entity.
type KeyedPage struct {
	Key  string      `json:"key"`
	Page PageRequest `json:"page"`
}

// Check validates the page bounds and that a key is present.
func (k KeyedPage) Check() []FieldError {
	var errs []FieldError
	if strings.TrimSpace(k.Key) == "" {
		errs = append(errs, FieldError{Field: "key", Message: "is required"})
	}
	for _, fe := range k.Page.Check() {
		fe.Field = joinPath("page", fe.Field)
		errs = append(errs, fe)
	}
	return errs
}
