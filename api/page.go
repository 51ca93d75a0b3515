package api

import "fmt"

const (
	// DefaultStartAt is the offset used when the caller does not supply one.
	DefaultStartAt = 0
	// DefaultMaxResults is the page size used when the caller does not supply one.
	DefaultMaxResults = 50
	// MinMaxResults is the smallest accepted page size.
	MinMaxResults = 1
	// MaxMaxResults is the largest page size the service honors.
	MaxMaxResults = 1000
	// MaxStartAt bounds the offset accepted from callers.
	MaxStartAt = 1_000_000
)

// PageRequest is a validated offset-pagination request.
type PageRequest struct {
	StartAt    int64 `json:"startAt"`
	MaxResults int64 `json:"maxResults"`
}

var pageRequestSchema = Input("PageRequest",
	Integer("startAt").Required().AtLeast(0).AtMost(MaxStartAt),
	Integer("maxResults").Required().AtLeast(MinMaxResults).AtMost(MaxMaxResults),
)

// DefaultPageRequest returns the request used when nothing was supplied.
func DefaultPageRequest() PageRequest {
	return PageRequest{StartAt: DefaultStartAt, MaxResults: DefaultMaxResults}
}

// Check validates the request bounds.
func (r PageRequest) Check() []FieldError { return pageRequestSchema.CheckValue(r) }

// Page is the offset-paginated list envelope. All members are reported
// verbatim from the service.
type Page[T any] struct {
	// Next is the URL of the following page, when the service provides one.
	Next Opt[string] `json:"next,omitzero"`
	// StartAt is the zero-based offset of the first value.
	StartAt int64 `json:"startAt"`
	// MaxResults is the page size the service applied.
	MaxResults int64 `json:"maxResults"`
	// Total is the number of matching entities across all pages.
	Total int64 `json:"total"`
	// IsLast is true when no further page exists.
	IsLast bool `json:"isLast"`
	// Values holds the entities on this page.
	Values []T `json:"values"`
}

// PageOf builds the envelope schema for a page of item.
func PageOf(item *Schema) *Schema {
	return Output("Page<"+item.Name()+">",
		String("next"),
		Integer("startAt").Required().AtLeast(0),
		Integer("maxResults").Required().AtLeast(0),
		Integer("total").Required().AtLeast(0),
		Boolean("isLast").Required(),
		ObjectList("values", item).Required(),
	)
}

// Consistent checks startAt + len(values) <= total unless the page is the
// last one. It never recomputes IsLast.
func (p Page[T]) Consistent(schema string) error {
	if p.IsLast {
		return nil
	}
	end := p.StartAt + int64(len(p.Values))
	if end > p.Total {
		return &MismatchError{
			Schema: schema,
			Problems: []FieldError{{
				Field:   "values",
				Message: fmt.Sprintf("page ends at %d but total is %d and isLast is false", end, p.Total),
			}},
		}
	}
	return nil
}

// HasMore reports whether the service announced a further page.
func (p Page[T]) HasMore() bool {
	return !p.IsLast
}

// PageMeta is the envelope of a page without its values.
type PageMeta struct {
	StartAt    int64
	MaxResults int64
	Total      int64
	IsLast     bool
	Returned   int
}

// Meta returns the envelope members and the number of values received.
func (p Page[T]) Meta() PageMeta {
	return PageMeta{
		StartAt:    p.StartAt,
		MaxResults: p.MaxResults,
		Total:      p.Total,
		IsLast:     p.IsLast,
		Returned:   len(p.Values),
	}
}
