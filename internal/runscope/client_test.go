package runscope

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type recordedRequest struct {
	Method        string
	Path          string
	RawQuery      string
	Authorization string
	ContentType   string
}

// recorder is an httptest handler that answers every request with body and
// remembers what it was asked.
type recorder struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	body     string
}

func (rec *recorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec.mu.Lock()
	rec.requests = append(rec.requests, recordedRequest{
		Method:        r.Method,
		Path:          r.URL.Path,
		RawQuery:      r.URL.RawQuery,
		Authorization: r.Header.Get("Authorization"),
		ContentType:   r.Header.Get("Content-Type"),
	})
	rec.mu.Unlock()

	status := rec.status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(rec.body))
}

func (rec *recorder) last(t *testing.T) recordedRequest {
	t.Helper()
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.requests) == 0 {
		t.Fatal("no request recorded")
	}
	return rec.requests[len(rec.requests)-1]
}

func newTestClient(t *testing.T, rec *recorder) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(rec)
	t.Cleanup(server.Close)

	client, err := New(server.URL, WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatal(err)
	}
	return client, server
}

func TestNew_RequiresBaseURL(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("expected error for empty baseURL")
	}
}

func TestNew_RejectsNegativeOptions(t *testing.T) {
	if _, err := New(DefaultBaseURL, WithRateLimit(-1)); err == nil {
		t.Error("expected error for negative rate limit")
	}
	if _, err := New(DefaultBaseURL, WithTimeout(-1)); err == nil {
		t.Error("expected error for negative timeout")
	}
	if _, err := New(DefaultBaseURL, WithPageBaseURL("")); err == nil {
		t.Error("expected error for empty page base URL")
	}
}

func TestNew_TrimsBaseURL(t *testing.T) {
	client, err := New("https://api.example.test/")
	if err != nil {
		t.Fatal(err)
	}
	if got := client.BaseURL(); got != "https://api.example.test" {
		t.Errorf("BaseURL() = %q", got)
	}
}

func TestNew_TimeoutLeavesCallerClientAlone(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}
	client, err := New(DefaultBaseURL, WithHTTPClient(shared), WithTimeout(5*time.Second))
	if err != nil {
		t.Fatal(err)
	}
	if shared.Timeout != time.Minute {
		t.Errorf("caller client Timeout = %v, want 1m", shared.Timeout)
	}
	if client.httpClient == shared {
		t.Fatal("client reuses the caller's *http.Client")
	}
	if client.httpClient.Timeout != 5*time.Second {
		t.Errorf("client Timeout = %v, want 5s", client.httpClient.Timeout)
	}
}

func TestClient_Endpoints(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		call func(c *Client) (*Response, error)
		want recordedRequest
	}{
		{
			name: "main info",
			call: func(c *Client) (*Response, error) { return c.GetMainInfo(ctx, "tok") },
			want: recordedRequest{Method: "GET", Path: "/"},
		},
		{
			name: "buckets",
			call: func(c *Client) (*Response, error) { return c.GetBuckets(ctx, "tok") },
			want: recordedRequest{Method: "GET", Path: "/buckets"},
		},
		{
			name: "shared environments",
			call: func(c *Client) (*Response, error) { return c.GetSharedEnvironments(ctx, "tok", "b1") },
			want: recordedRequest{Method: "GET", Path: "/buckets/b1/environments"},
		},
		{
			name: "bucket tests",
			call: func(c *Client) (*Response, error) { return c.GetBucketTestsLists(ctx, "tok", "b1") },
			want: recordedRequest{Method: "GET", Path: "/buckets/b1/tests", RawQuery: "count=1000"},
		},
		{
			name: "test information",
			call: func(c *Client) (*Response, error) { return c.GetTestInformationInBucket(ctx, "tok", "b1", "t1") },
			want: recordedRequest{Method: "GET", Path: "/buckets/b1/tests/t1"},
		},
		{
			name: "test results",
			call: func(c *Client) (*Response, error) { return c.GetTestResultsForTestInBucket(ctx, "tok", "b1", "t1") },
			want: recordedRequest{Method: "GET", Path: "/buckets/b1/tests/t1/results"},
		},
		{
			name: "latest test result",
			call: func(c *Client) (*Response, error) { return c.GetLatestTestResultsInBucket(ctx, "tok", "b1", "t1") },
			want: recordedRequest{Method: "GET", Path: "/buckets/b1/tests/t1/results/latest"},
		},
		{
			name: "test result by id",
			call: func(c *Client) (*Response, error) { return c.GetTestResultByResultID(ctx, "tok", "b1", "t1", "r1") },
			want: recordedRequest{Method: "GET", Path: "/buckets/b1/tests/t1/results/r1"},
		},
		{
			name: "trigger by id without environment",
			call: func(c *Client) (*Response, error) { return c.TriggerByID(ctx, "tok", "trig", "") },
			want: recordedRequest{Method: "POST", Path: "/radar/trig/trigger"},
		},
		{
			name: "trigger by id with environment",
			call: func(c *Client) (*Response, error) { return c.TriggerByID(ctx, "tok", "trig", "env1") },
			want: recordedRequest{Method: "POST", Path: "/radar/trig/trigger", RawQuery: "runscope_environment=env1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{body: `{"data":[]}`}
			client, _ := newTestClient(t, rec)

			resp, err := tt.call(client)
			if err != nil {
				t.Fatalf("call: %v", err)
			}
			if resp.Body != `{"data":[]}` {
				t.Errorf("Body = %q", resp.Body)
			}

			want := tt.want
			want.Authorization = "Bearer tok"
			want.ContentType = "application/json"
			if diff := cmp.Diff(want, rec.last(t)); diff != "" {
				t.Errorf("request mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClient_TriggerByURI(t *testing.T) {
	rec := &recorder{body: `{"data":{"runs":[]}}`}
	client, server := newTestClient(t, rec)
	triggerURI := server.URL + "/radar/abc-123/trigger"

	if _, err := client.TriggerByURI(context.Background(), "tok", triggerURI, ""); err != nil {
		t.Fatalf("TriggerByURI: %v", err)
	}
	got := rec.last(t)
	if got.Method != "POST" || got.Path != "/radar/abc-123/trigger" || got.RawQuery != "" {
		t.Errorf("unexpected request: %+v", got)
	}

	if _, err := client.TriggerByURI(context.Background(), "tok", triggerURI, "env9"); err != nil {
		t.Fatalf("TriggerByURI with env: %v", err)
	}
	if got := rec.last(t); got.RawQuery != "runscope_environment=env9" {
		t.Errorf("RawQuery = %q", got.RawQuery)
	}
}

func TestClient_IDsAreNotEscaped(t *testing.T) {
	client, err := New("https://api.example.test")
	if err != nil {
		t.Fatal(err)
	}
	got := client.TestResultByIDInBucketURI("b 1", "t?x", "r#1")
	want := "https://api.example.test/buckets/b 1/tests/t?x/results/r#1"
	if got != want {
		t.Errorf("URI = %q, want %q", got, want)
	}
}

func TestClient_APIError(t *testing.T) {
	rec := &recorder{
		status: http.StatusNotFound,
		body:   `{"data":null,"error":{"status":404,"message":"bucket not found"},"meta":{"status":"error"}}`,
	}
	client, _ := newTestClient(t, rec)

	_, err := client.GetBuckets(context.Background(), "tok")
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsNotFound(err) {
		t.Errorf("expected IsNotFound, got: %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message() != "bucket not found" {
		t.Errorf("unexpected error: %v", err)
	}
	if apiErr != nil && apiErr.Operation() != "get buckets" {
		t.Errorf("Operation() = %q, want %q", apiErr.Operation(), "get buckets")
	}
}

func TestClient_APIError_PlainBody(t *testing.T) {
	rec := &recorder{status: http.StatusUnauthorized}
	client, _ := newTestClient(t, rec)

	_, err := client.GetMainInfo(context.Background(), "bad")
	if !IsUnauthorized(err) {
		t.Fatalf("expected IsUnauthorized, got: %v", err)
	}
	if IsForbidden(err) {
		t.Error("401 must not be reported as forbidden")
	}
}

func TestClient_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	client, err := New(server.URL, WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatal(err)
	}
	server.Close()

	if _, err := client.GetBuckets(context.Background(), "tok"); err == nil {
		t.Fatal("expected network error")
	}
}

func TestClient_RateLimitedStillServes(t *testing.T) {
	rec := &recorder{body: `{}`}
	server := httptest.NewServer(rec)
	defer server.Close()

	client, err := New(server.URL, WithHTTPClient(server.Client()), WithRateLimit(1000))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if _, err := client.GetBuckets(context.Background(), "tok"); err != nil {
			t.Fatalf("GetBuckets #%d: %v", i, err)
		}
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.requests) != 3 {
		t.Errorf("requests = %d, want 3", len(rec.requests))
	}
}

func TestPages(t *testing.T) {
	p := NewPages("https://www.runscope.com/")
	if got := p.BucketPageURI("b1"); got != "https://www.runscope.com/radar/b1" {
		t.Errorf("BucketPageURI = %q", got)
	}
	if got := p.TestResultsInBucketPageURI("b1", "t1"); got != "https://www.runscope.com/radar/b1/t1/overview" {
		t.Errorf("TestResultsInBucketPageURI = %q", got)
	}
}

func TestReadToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".runscope-token")
	if err := os.WriteFile(path, []byte("  abc-123  \nsecond line\n"), 0600); err != nil {
		t.Fatal(err)
	}
	got, err := ReadToken(path)
	if err != nil {
		t.Fatalf("ReadToken: %v", err)
	}
	if got != "abc-123" {
		t.Errorf("token = %q, want abc-123", got)
	}
}

func TestDecodeEnvelope_LooseScalars(t *testing.T) {
	resp := &Response{Body: `{"data":[
		{"test_id":"t1","test_run_id":"r1","result":"pass","started_at":1000},
		{"test_id":42,"test_run_id":null,"result":"fail","started_at":"1406036406.5"},
		{"test_id":"t3"}
	]}`}

	env, err := DecodeEnvelope[[]ResultRecord](resp)
	if err != nil {
		t.Fatalf("DecodeEnvelope: %v", err)
	}
	want := []ResultRecord{
		{TestID: "t1", TestRunID: "r1", Result: "pass", StartedAt: 1000},
		{TestID: "42", Result: "fail", StartedAt: 1406036406.5},
		{TestID: "t3"},
	}
	if diff := cmp.Diff(want, env.Data); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeEnvelope_Invalid(t *testing.T) {
	if _, err := DecodeEnvelope[[]BucketRecord](&Response{Body: "not json"}); err == nil {
		t.Error("expected error for malformed body")
	}
	if _, err := DecodeEnvelope[[]BucketRecord](nil); err == nil {
		t.Error("expected error for nil response")
	}
}

func TestDecodeEnvelope_TriggerRunsNullVersusEmpty(t *testing.T) {
	absent, err := DecodeEnvelope[TriggerRecord](&Response{Body: `{"data":{"runs":null}}`})
	if err != nil {
		t.Fatal(err)
	}
	if absent.Data.Runs != nil {
		t.Errorf("null runs decoded as %#v, want nil", absent.Data.Runs)
	}

	empty, err := DecodeEnvelope[TriggerRecord](&Response{Body: `{"data":{"runs":[]}}`})
	if err != nil {
		t.Fatal(err)
	}
	if empty.Data.Runs == nil || len(empty.Data.Runs) != 0 {
		t.Errorf("empty runs decoded as %#v, want empty non-nil", empty.Data.Runs)
	}
}
