package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"pkt.systems/zscale/api"
	"pkt.systems/zscale/client"
	"pkt.systems/zscale/validate"
)

type seen struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

type stub struct {
	mu   sync.Mutex
	reqs []seen
}

func (s *stub) record(r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reqs = append(s.reqs, seen{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Header: r.Header.Clone(), Body: body})
}

func (s *stub) all() []seen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]seen(nil), s.reqs...)
}

// newServer starts a fake Zephyr API. Every request is recorded before
// handler runs.
func newServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *stub) {
	t.Helper()
	st := &stub{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st.record(r)
		if handler != nil {
			handler(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, st
}

func newClient(t *testing.T, srv *httptest.Server, settings client.Settings, opts ...client.Option) *client.Client {
	t.Helper()
	settings.BaseURL = srv.URL
	if settings.Token == "" {
		settings.Token = "secret-token"
	}
	opts = append([]client.Option{client.WithHTTPClient(srv.Client())}, opts...)
	cli, err := client.New(client.StaticSource(settings), opts...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return cli
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

const priorityJSON = `{"id":7,"project":{"id":10},"name":"High","index":1,"color":"#FF0000","default":false}`

func TestCreatePriorityEndToEnd(t *testing.T) {
	t.Parallel()
	srv, st := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, `{"id":42,"self":"https://example.test/priorities/42"}`)
	})
	cli := newClient(t, srv, client.Settings{})

	in, err := validate.CreatePriority(validate.CreatePriorityArgs{Name: "High", ProjectKey: "TEST"}).Unwrap()
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	created, err := cli.CreatePriority(context.Background(), in)
	if err != nil {
		t.Fatalf("create priority: %v", err)
	}
	if created.ID != 42 {
		t.Fatalf("expected id 42, got %d", created.ID)
	}

	reqs := st.all()
	if len(reqs) != 1 {
		t.Fatalf("expected exactly one request, got %d", len(reqs))
	}
	req := reqs[0]
	if req.Method != http.MethodPost || req.Path != "/priorities" {
		t.Fatalf("unexpected request %s %s", req.Method, req.Path)
	}
	if got := req.Header.Get("Authorization"); got != "Bearer secret-token" {
		t.Fatalf("authorization header = %q", got)
	}
	if req.Header.Get("Accept") != "application/json" || req.Header.Get("Content-Type") != "application/json" {
		t.Fatalf("unexpected content negotiation headers: %v", req.Header)
	}
	if ua := req.Header.Get("User-Agent"); !strings.HasPrefix(ua, "zscale/") {
		t.Fatalf("user agent = %q", ua)
	}
	rid, err := uuid.Parse(req.Header.Get("X-Request-Id"))
	if err != nil || rid.Version() != 7 {
		t.Fatalf("X-Request-Id %q is not a UUIDv7 (err=%v)", req.Header.Get("X-Request-Id"), err)
	}
	var body map[string]any
	if err := json.Unmarshal(req.Body, &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"projectKey": "TEST", "name": "High"}, body); diff != "" {
		t.Fatalf("request body mismatch (-want +got):\n%s", diff)
	}
}

func TestNotFoundAndUnauthorizedAreDistinct(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{name: "not found", status: http.StatusNotFound, body: `{"errorCode":404,"message":"Test case TEST-T9999 not found"}`, message: "Test case TEST-T9999 not found"},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"errorMessages":["Token expired"]}`, message: "Token expired"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tc.status, tc.body)
			})
			cli := newClient(t, srv, client.Settings{})
			_, err := cli.GetTestCase(context.Background(), "TEST-T9999")
			var ce *client.ClientError
			if !errors.As(err, &ce) {
				t.Fatalf("expected ClientError, got %T: %v", err, err)
			}
			if ce.Status != tc.status || ce.Message != tc.message {
				t.Fatalf("got status %d message %q", ce.Status, ce.Message)
			}
			if ce.Mismatch != nil || client.IsSchemaMismatch(err) {
				t.Fatalf("a rejection must not be reported as schema mismatch")
			}
			resp := client.NewResponse(api.TestCase{}, err)
			if _, ok := resp.TransportError(); ok {
				t.Fatalf("ClientError must not also be a TransportError")
			}
		})
	}
}

func TestInvalidInputNeverReachesServer(t *testing.T) {
	t.Parallel()
	srv, st := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{}`)
	})
	cli := newClient(t, srv, client.Settings{})
	ctx := context.Background()

	var verr *validate.ValidationError
	if _, err := cli.GetTestCase(ctx, "TEST-R1"); !errors.As(err, &verr) {
		t.Fatalf("expected validation error for wrong key prefix, got %v", err)
	}
	if _, err := cli.GetPriority(ctx, 0); !errors.As(err, &verr) {
		t.Fatalf("expected validation error for priority id 0, got %v", err)
	}
	_, err := cli.CreateFolder(ctx, api.CreateFolderInput{Name: "Regression", FolderType: api.FolderTypeTestCase})
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error without any project key, got %v", err)
	}
	if diff := cmp.Diff([]string{"projectKey"}, verr.Fields()); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	_, err = cli.ListStatuses(ctx, api.ListQuery{Page: api.PageRequest{StartAt: 0, MaxResults: 5000}})
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error for maxResults 5000, got %v", err)
	}
	if n := len(st.all()); n != 0 {
		t.Fatalf("server was contacted %d times", n)
	}
}

func TestDefaultProjectKeyIsSubstituted(t *testing.T) {
	t.Parallel()
	srv, st := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			writeJSON(w, http.StatusCreated, `{"id":5,"key":"DEF-P5"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"startAt":0,"maxResults":50,"total":0,"isLast":true,"values":[]}`)
	})
	cli := newClient(t, srv, client.Settings{DefaultProjectKey: "DEF"})
	ctx := context.Background()

	if _, err := cli.ListTestCases(ctx, api.ListQuery{Page: api.DefaultPageRequest()}); err != nil {
		t.Fatalf("list test cases: %v", err)
	}
	if _, err := cli.ListTestPlans(ctx, api.ListQuery{ProjectKey: "OWN", Page: api.DefaultPageRequest()}); err != nil {
		t.Fatalf("list test plans: %v", err)
	}
	created, err := cli.CreateTestPlan(ctx, api.CreateTestPlanInput{Name: "Release 1"})
	if err != nil {
		t.Fatalf("create test plan: %v", err)
	}
	if key, _ := created.Key.Get(); key != "DEF-P5" {
		t.Fatalf("unexpected created key %q", key)
	}

	reqs := st.all()
	if len(reqs) != 3 {
		t.Fatalf("expected 3 requests, got %d", len(reqs))
	}
	if got := reqs[0].Query; got != "maxResults=50&projectKey=DEF&startAt=0" {
		t.Fatalf("default key not applied to list query: %q", got)
	}
	if got := reqs[1].Query; got != "maxResults=50&projectKey=OWN&startAt=0" {
		t.Fatalf("explicit key must win over the default: %q", got)
	}
	if !strings.Contains(string(reqs[2].Body), `"projectKey":"DEF"`) {
		t.Fatalf("default key missing from create body: %s", reqs[2].Body)
	}
}

func TestSchemaMismatchIsClientError(t *testing.T) {
	t.Parallel()
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id":7,"name":"High"}`)
	})
	cli := newClient(t, srv, client.Settings{})
	_, err := cli.GetPriority(context.Background(), 7)
	var ce *client.ClientError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ClientError, got %T: %v", err, err)
	}
	if ce.Status != http.StatusOK || ce.Mismatch == nil {
		t.Fatalf("expected a 200 schema mismatch, got %+v", ce)
	}
	var mm *api.MismatchError
	if !errors.As(err, &mm) || mm.Schema != "Priority" {
		t.Fatalf("expected api.MismatchError for Priority, got %v", err)
	}
	if mm.Field() != "project" {
		t.Fatalf("expected first offending field project, got %q", mm.Field())
	}
}

func TestInconsistentPageIsSchemaMismatch(t *testing.T) {
	t.Parallel()
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"startAt":0,"maxResults":50,"total":1,"isLast":false,"values":[`+priorityJSON+`,`+priorityJSON+`]}`)
	})
	cli := newClient(t, srv, client.Settings{})
	_, err := cli.ListPriorities(context.Background(), api.ListQuery{Page: api.DefaultPageRequest()})
	if !client.IsSchemaMismatch(err) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}

func TestPageIsReportedVerbatim(t *testing.T) {
	t.Parallel()
	srv, st := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"next":"https://example.test/priorities?startAt=1","startAt":0,"maxResults":1,"total":2,"isLast":false,"values":[`+priorityJSON+`]}`)
	})
	cli := newClient(t, srv, client.Settings{})
	page, err := cli.ListPriorities(context.Background(), api.ListQuery{ProjectKey: "TEST", Page: api.PageRequest{StartAt: 0, MaxResults: 1}})
	if err != nil {
		t.Fatalf("list priorities: %v", err)
	}
	if page.IsLast || !page.HasMore() || page.Total != 2 || page.MaxResults != 1 || len(page.Values) != 1 {
		t.Fatalf("page not reported verbatim: %+v", page)
	}
	if next, ok := page.Next.Get(); !ok || !strings.Contains(next, "startAt=1") {
		t.Fatalf("next link lost: %v", page.Next)
	}
	if color, _ := page.Values[0].Color.Get(); color != "#FF0000" {
		t.Fatalf("unexpected color %q", color)
	}
	if got := st.all()[0].Query; got != "maxResults=1&projectKey=TEST&startAt=0" {
		t.Fatalf("unexpected query %q", got)
	}
}

func TestMalformedBodyIsTransportError(t *testing.T) {
	t.Parallel()
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `<html>maintenance</html>`)
	})
	cli := newClient(t, srv, client.Settings{})
	_, err := cli.GetStatus(context.Background(), 3)
	var te *client.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %T: %v", err, err)
	}
	if !errors.Is(err, api.ErrMalformedJSON) {
		t.Fatalf("expected ErrMalformedJSON in chain, got %v", err)
	}
	resp := client.NewResponse(api.Status{}, err)
	if _, ok := resp.ClientError(); ok {
		t.Fatalf("transport failures must not be client errors")
	}
}

func TestTimeoutIsTransportError(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	})
	defer close(release)
	cli := newClient(t, srv, client.Settings{}, client.WithHTTPTimeout(50*time.Millisecond))
	_, err := cli.GetFolder(context.Background(), 1)
	if !client.IsTimeout(err) {
		t.Fatalf("expected timeout TransportError, got %v", err)
	}
}

func TestUnreachableServerIsTransportError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()
	cli, err := client.New(client.StaticSource{Token: "t", BaseURL: base, Timeout: time.Second})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = cli.Healthcheck(context.Background())
	var te *client.TransportError
	if !errors.As(err, &te) || te.Timeout {
		t.Fatalf("expected non-timeout TransportError, got %v", err)
	}
	if te.Method != http.MethodGet || !strings.HasSuffix(te.URL, "/healthcheck") {
		t.Fatalf("unexpected transport error target %s %s", te.Method, te.URL)
	}
}

func TestHealthcheckAcceptsEmptyBody(t *testing.T) {
	t.Parallel()
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	cli := newClient(t, srv, client.Settings{})
	health, err := cli.Healthcheck(context.Background())
	if err != nil {
		t.Fatalf("healthcheck: %v", err)
	}
	if health.Status != "UP" || health.HTTPStatus != http.StatusOK || health.BaseURL != srv.URL {
		t.Fatalf("unexpected health %+v", health)
	}
}

func TestUpdatePriorityReadsMergesAndWrites(t *testing.T) {
	t.Parallel()
	srv, st := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			writeJSON(w, http.StatusOK, priorityJSON)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	cli := newClient(t, srv, client.Settings{})
	name := "Urgent"
	u, err := validate.UpdatePriority(validate.UpdatePriorityArgs{ID: 7, Name: &name}).Unwrap()
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	merged, err := cli.UpdatePriority(context.Background(), u)
	if err != nil {
		t.Fatalf("update priority: %v", err)
	}
	if merged.Name != "Urgent" || merged.Index != 1 {
		t.Fatalf("unexpected merged priority %+v", merged)
	}
	reqs := st.all()
	if len(reqs) != 2 || reqs[0].Method != http.MethodGet || reqs[1].Method != http.MethodPut {
		t.Fatalf("expected GET then PUT, got %+v", reqs)
	}
	if reqs[1].Path != "/priorities/7" {
		t.Fatalf("unexpected PUT path %q", reqs[1].Path)
	}
	var body map[string]any
	if err := json.Unmarshal(reqs[1].Body, &body); err != nil {
		t.Fatalf("decode PUT body: %v", err)
	}
	want := map[string]any{
		"id":      float64(7),
		"project": map[string]any{"id": float64(10)},
		"name":    "Urgent",
		"index":   float64(1),
		"color":   "#FF0000",
		"default": false,
	}
	if diff := cmp.Diff(want, body); diff != "" {
		t.Fatalf("PUT body mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateStopsWhenReadFails(t *testing.T) {
	t.Parallel()
	srv, st := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"message":"not here"}`)
	})
	cli := newClient(t, srv, client.Settings{})
	name := "Renamed"
	u, err := validate.UpdateTestCycle(validate.UpdateTestCycleArgs{Key: "TEST-R4", Name: &name}).Unwrap()
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if _, err := cli.UpdateTestCycle(context.Background(), u); err == nil {
		t.Fatalf("expected an error")
	}
	if n := len(st.all()); n != 1 {
		t.Fatalf("expected only the GET, got %d requests", n)
	}
}

func TestUpdateWritesBackStoredValuesOutsideInputBounds(t *testing.T) {
	t.Parallel()
	stored := `{"id":7,"project":{"id":10},"name":"High","description":"","index":1,"color":"red","default":false}`
	srv, st := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			writeJSON(w, http.StatusOK, stored)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	cli := newClient(t, srv, client.Settings{})
	name := "Urgent"
	u, err := validate.UpdatePriority(validate.UpdatePriorityArgs{ID: 7, Name: &name}).Unwrap()
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if _, err := cli.UpdatePriority(context.Background(), u); err != nil {
		t.Fatalf("update priority: %v", err)
	}
	reqs := st.all()
	if len(reqs) != 2 || reqs[1].Method != http.MethodPut {
		t.Fatalf("expected GET then PUT, got %+v", reqs)
	}
	var body map[string]any
	if err := json.Unmarshal(reqs[1].Body, &body); err != nil {
		t.Fatalf("decode PUT body: %v", err)
	}
	if body["description"] != "" || body["color"] != "red" || body["name"] != "Urgent" {
		t.Fatalf("stored values must be written back unchanged: %v", body)
	}
}

func TestUpdateRejectsMergedWindowAfterRead(t *testing.T) {
	t.Parallel()
	stored := `{"id":4,"key":"TEST-R4","name":"Sprint","project":{"id":10},"status":{"id":2},` +
		`"plannedStartDate":"2024-05-10T09:00:00Z","plannedEndDate":"2024-05-20T09:00:00Z"}`
	srv, st := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, stored)
	})
	cli := newClient(t, srv, client.Settings{})
	end := "2024-05-01T09:00:00Z"
	u, err := validate.UpdateTestCycle(validate.UpdateTestCycleArgs{Key: "TEST-R4", PlannedEndDate: &end}).Unwrap()
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	_, err = cli.UpdateTestCycle(context.Background(), u)
	var verr *validate.ValidationError
	if !errors.As(err, &verr) || !verr.AfterRead {
		t.Fatalf("expected a post-read ValidationError, got %v", err)
	}
	if fields := verr.Fields(); len(fields) != 1 || fields[0] != "plannedEndDate" {
		t.Fatalf("unexpected fields %v", fields)
	}
	if n := len(st.all()); n != 1 {
		t.Fatalf("expected only the GET, got %d requests", n)
	}
}

func TestUpdateSharesOneDeadline(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	srv, st := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(150 * time.Millisecond):
		case <-r.Context().Done():
			return
		case <-release:
			return
		}
		if r.Method == http.MethodGet {
			writeJSON(w, http.StatusOK, priorityJSON)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	defer close(release)
	cli := newClient(t, srv, client.Settings{}, client.WithHTTPTimeout(250*time.Millisecond))
	name := "Urgent"
	u, err := validate.UpdatePriority(validate.UpdatePriorityArgs{ID: 7, Name: &name}).Unwrap()
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	_, err = cli.UpdatePriority(context.Background(), u)
	if !client.IsTimeout(err) {
		t.Fatalf("expected the GET and PUT to share one timeout, got %v", err)
	}
	if n := len(st.all()); n != 2 {
		t.Fatalf("expected GET and PUT to be attempted, got %d requests", n)
	}
}

func TestKeyedCallsSendNormalizedKey(t *testing.T) {
	t.Parallel()
	srv, st := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/teststeps"):
			writeJSON(w, http.StatusOK, `{"startAt":0,"maxResults":10,"total":0,"isLast":true,"values":[]}`)
		case strings.HasSuffix(r.URL.Path, "/links"):
			writeJSON(w, http.StatusOK, `{"issues":[],"webLinks":[]}`)
		default:
			writeJSON(w, http.StatusNotFound, `{"message":"gone"}`)
		}
	})
	cli := newClient(t, srv, client.Settings{})
	ctx := context.Background()
	_, _ = cli.GetTestCase(ctx, " TEST-T1")
	_, _ = cli.GetTestCycle(ctx, "TEST-R2 ")
	_, _ = cli.GetTestPlan(ctx, "\tTEST-P3")
	_, _ = cli.GetTestScript(ctx, " TEST-T1 ")
	if _, err := cli.GetTestCaseLinks(ctx, " TEST-T1"); err != nil {
		t.Fatalf("links: %v", err)
	}
	if _, err := cli.ListTestSteps(ctx, api.KeyedPage{Key: " TEST-T1 ", Page: api.PageRequest{StartAt: 0, MaxResults: 10}}); err != nil {
		t.Fatalf("steps: %v", err)
	}
	var paths []string
	for _, r := range st.all() {
		paths = append(paths, r.Path)
	}
	want := []string{
		"/testcases/TEST-T1",
		"/testcycles/TEST-R2",
		"/testplans/TEST-P3",
		"/testcases/TEST-T1/testscript",
		"/testcases/TEST-T1/links",
		"/testcases/TEST-T1/teststeps",
	}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Fatalf("request paths mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateLinkRoutes(t *testing.T) {
	t.Parallel()
	desc := "release notes"
	cases := []struct {
		entity validate.Kind
		kind   validate.LinkKind
		args   validate.LinkArgs
		path   string
		body   string
	}{
		{validate.KindTestCase, validate.LinkIssue, validate.LinkArgs{Key: "TEST-T1", IssueID: float64(10100)}, "/testcases/TEST-T1/links/issues", `{"issueId":10100}`},
		{validate.KindTestCase, validate.LinkWeb, validate.LinkArgs{Key: "TEST-T1", URL: "https://example.test/a"}, "/testcases/TEST-T1/links/weblinks", `{"url":"https://example.test/a"}`},
		{validate.KindTestCycle, validate.LinkIssue, validate.LinkArgs{Key: "TEST-R2", IssueID: "10101"}, "/testcycles/TEST-R2/links/issues", `{"issueId":10101}`},
		{validate.KindTestCycle, validate.LinkWeb, validate.LinkArgs{Key: "TEST-R2", URL: "https://example.test/b"}, "/testcycles/TEST-R2/links/weblinks", `{"url":"https://example.test/b"}`},
		{validate.KindTestPlan, validate.LinkIssue, validate.LinkArgs{Key: "TEST-P3", IssueID: 10102}, "/testplans/TEST-P3/links/issues", `{"issueId":10102}`},
		{validate.KindTestPlan, validate.LinkWeb, validate.LinkArgs{Key: "TEST-P3", URL: "https://example.test/c", Description: &desc}, "/testplans/TEST-P3/links/weblinks", `{"url":"https://example.test/c","description":"release notes"}`},
		{validate.KindTestPlan, validate.LinkTestCycle, validate.LinkArgs{Key: "TEST-P3", TestCycleIDOrKey: "TEST-R2"}, "/testplans/TEST-P3/links/testcycles", `{"testCycleIdOrKey":"TEST-R2"}`},
	}
	for _, tc := range cases {
		srv, st := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusCreated, `{"id":1,"self":"https://example.test/links/1"}`)
		})
		cli := newClient(t, srv, client.Settings{})
		req, err := validate.Link(tc.entity, tc.kind, tc.args).Unwrap()
		if err != nil {
			t.Fatalf("%s/%s: validate: %v", tc.entity, tc.kind, err)
		}
		if _, err := cli.CreateLink(context.Background(), req); err != nil {
			t.Fatalf("%s/%s: create link: %v", tc.entity, tc.kind, err)
		}
		got := st.all()[0]
		if got.Method != http.MethodPost || got.Path != tc.path {
			t.Fatalf("%s/%s: unexpected request %s %s", tc.entity, tc.kind, got.Method, got.Path)
		}
		if string(got.Body) != tc.body {
			t.Fatalf("%s/%s: body %s, want %s", tc.entity, tc.kind, got.Body, tc.body)
		}
	}
}

func TestSettingsAreReadPerCall(t *testing.T) {
	t.Parallel()
	srv, st := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	src := &swappable{}
	src.set(client.Settings{Token: "first", BaseURL: srv.URL})
	cli, err := client.New(src, client.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	ctx := context.Background()
	if _, err := cli.Healthcheck(ctx); err != nil {
		t.Fatalf("first healthcheck: %v", err)
	}
	src.set(client.Settings{Token: "second", BaseURL: srv.URL})
	if _, err := cli.Healthcheck(ctx); err != nil {
		t.Fatalf("second healthcheck: %v", err)
	}
	reqs := st.all()
	if reqs[0].Header.Get("Authorization") != "Bearer first" || reqs[1].Header.Get("Authorization") != "Bearer second" {
		t.Fatalf("token swap not observed: %q then %q", reqs[0].Header.Get("Authorization"), reqs[1].Header.Get("Authorization"))
	}
}

type swappable struct {
	mu sync.Mutex
	s  client.Settings
}

func (s *swappable) set(v client.Settings) {
	s.mu.Lock()
	s.s = v
	s.mu.Unlock()
}

func (s *swappable) Current() client.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.s
}

func TestGatewaySpans(t *testing.T) {
	t.Parallel()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"message":"missing"}`)
	})
	cli, err := client.New(client.StaticSource{Token: "t", BaseURL: srv.URL}, client.WithTracerProvider(tp))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := cli.GetTestPlan(context.Background(), "TEST-P1"); err == nil {
		t.Fatalf("expected a 404 error")
	}
	var found bool
	for _, span := range recorder.Ended() {
		if span.Name() != "zscale.client.get_test_plan" {
			continue
		}
		found = true
		attrs := map[string]string{}
		for _, kv := range span.Attributes() {
			attrs[string(kv.Key)] = kv.Value.Emit()
		}
		if attrs["zscale.outcome"] != "client_error" || attrs["http.response.status_code"] != "404" {
			t.Fatalf("unexpected span attributes %v", attrs)
		}
	}
	if !found {
		t.Fatalf("gateway span not recorded")
	}
}

func TestNewRequiresSource(t *testing.T) {
	t.Parallel()
	if _, err := client.New(nil); err == nil {
		t.Fatalf("expected an error for a nil source")
	}
}
