package format

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"pkt.systems/zscale/api"
	"pkt.systems/zscale/client"
	"pkt.systems/zscale/validate"
)

// PageSummary describes one page of a list result.
type PageSummary struct {
	Returned   int   `json:"returned"`
	Total      int64 `json:"total"`
	StartAt    int64 `json:"startAt"`
	MaxResults int64 `json:"maxResults"`
	HasMore    bool  `json:"hasMore"`
}

// Summarize builds the summary of a page envelope. HasMore mirrors the
// service's isLast flag.
func Summarize(m api.PageMeta) PageSummary {
	return PageSummary{
		Returned:   m.Returned,
		Total:      m.Total,
		StartAt:    m.StartAt,
		MaxResults: m.MaxResults,
		HasMore:    !m.IsLast,
	}
}

type paged interface {
	Meta() api.PageMeta
}

// Outcome is the caller-facing result of one call.
type Outcome struct {
	// Op is the operation name.
	Op string
	// State is the terminal state the call reached before formatting.
	State State
	// Trail lists every state entered, ending in Formatted.
	Trail []State
	// Text is the human-readable rendering.
	Text string
	// Data is the parsed entity or page on success.
	Data any
	// Page is set for list results.
	Page *PageSummary
	// Err is the failure, nil on success.
	Err error
	// Class describes Err.
	Class Classification
}

// OK reports whether the call succeeded.
func (o Outcome) OK() bool { return o.State == Succeeded }

// Renderer turns a successful value into text.
type Renderer[T any] func(T) string

// Run drives one call through validation, dispatch and formatting. validated
// is evaluated once; dispatch only runs for a Valid result.
func Run[V, T any](ctx context.Context, op string, validated func() validate.Result[V], dispatch func(context.Context, V) (T, error), render Renderer[T]) Outcome {
	c := newCall()
	c.to(Validating)
	res := validated()
	if !res.OK() {
		c.to(Rejected)
		return finish(c, op, nil, res.Err(), nil)
	}
	c.to(Validated)
	v, _ := res.Value()

	c.to(Dispatching)
	out, err := dispatch(ctx, v)
	if err != nil {
		c.to(failureState(err))
		return finish(c, op, nil, err, nil)
	}
	c.to(Succeeded)
	if render == nil {
		render = renderJSON[T]
	}
	var page *PageSummary
	if p, ok := any(out).(paged); ok {
		s := Summarize(p.Meta())
		page = &s
	}
	o := finish(c, op, out, nil, page)
	o.Text = render(out)
	return o
}

// Failure formats an error raised outside Run, for example by argument
// decoding in the tool layer, as a Rejected outcome.
func Failure(op string, err error) Outcome {
	c := newCall()
	c.to(Validating)
	c.to(Rejected)
	return finish(c, op, nil, err, nil)
}

func failureState(err error) State {
	var (
		verr *validate.ValidationError
		cerr *client.ClientError
	)
	switch {
	case errors.As(err, &verr):
		return Rejected
	case errors.As(err, &cerr):
		return ClientFailed
	default:
		return TransportFailed
	}
}

func finish(c *call, op string, data any, err error, page *PageSummary) Outcome {
	terminal := c.current()
	c.to(Formatted)
	o := Outcome{
		Op:    op,
		State: terminal,
		Trail: c.trail,
		Data:  data,
		Page:  page,
		Err:   err,
	}
	if err != nil {
		o.Class = Classify(err)
		o.Text = failureText(op, terminal, err, o.Class)
	}
	return o
}

func failureText(op string, state State, err error, class Classification) string {
	var b strings.Builder
	switch state {
	case Rejected:
		fmt.Fprintf(&b, "Invalid arguments for %s:\n", op)
		var verr *validate.ValidationError
		if errors.As(err, &verr) {
			for _, fe := range verr.Errors {
				fmt.Fprintf(&b, "- %s\n", fe.String())
			}
		} else {
			fmt.Fprintf(&b, "- %v\n", err)
		}
		if verr != nil && verr.AfterRead {
			b.WriteString("The current entity was read; no change was written.")
			return b.String()
		}
		b.WriteString("No request was sent.")
		return b.String()
	case ClientFailed:
		var cerr *client.ClientError
		errors.As(err, &cerr)
		if cerr.Mismatch != nil {
			fmt.Fprintf(&b, "%s failed: the response (HTTP %d) did not match the %s contract.\n", op, cerr.Status, cerr.Mismatch.Err.Schema)
			b.WriteString("Problems:\n")
			for _, p := range cerr.Mismatch.Err.Problems {
				fmt.Fprintf(&b, "- %s\n", p.String())
			}
		} else {
			fmt.Fprintf(&b, "%s failed with HTTP %d (%s).\n", op, cerr.Status, class.Code)
			fmt.Fprintf(&b, "Message: %s\n", cerr.Message)
		}
	default:
		var terr *client.TransportError
		if errors.As(err, &terr) {
			verb := "could not reach the Zephyr Scale API"
			if terr.Timeout {
				verb = "timed out waiting for the Zephyr Scale API"
			}
			fmt.Fprintf(&b, "%s failed: %s (connectivity failure, no HTTP status).\n", op, verb)
			fmt.Fprintf(&b, "Cause: %v\n", terr.Err)
		} else {
			fmt.Fprintf(&b, "%s failed: %v\n", op, err)
		}
	}
	fmt.Fprintf(&b, "Hint: %s", class.Hint)
	return b.String()
}

func renderJSON[T any](v T) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(data)
}
