package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"apimonitor/internal/runscope"
)

// fakeTransport answers calls from a table keyed by "endpoint:arg:arg" and
// counts every call it receives, including unexpected ones.
type fakeTransport struct {
	mu      sync.Mutex
	replies map[string]fakeReply
	calls   []string
}

type fakeReply struct {
	body string
	err  error
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{replies: make(map[string]fakeReply)}
}

// reply registers data wrapped in a {"data": ...} envelope for key.
func (f *fakeTransport) reply(t *testing.T, key string, data any) {
	t.Helper()
	b, err := json.Marshal(map[string]any{"data": data})
	if err != nil {
		t.Fatal(err)
	}
	f.replies[key] = fakeReply{body: string(b)}
}

func (f *fakeTransport) fail(key string, err error) {
	f.replies[key] = fakeReply{err: err}
}

func (f *fakeTransport) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeTransport) called(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == key {
			n++
		}
	}
	return n
}

func (f *fakeTransport) answer(parts ...string) (*runscope.Response, error) {
	key := strings.Join(parts, ":")
	f.mu.Lock()
	f.calls = append(f.calls, key)
	r, ok := f.replies[key]
	f.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("unexpected call %q", key)
	}
	if r.err != nil {
		return nil, r.err
	}
	return &runscope.Response{StatusCode: 200, Body: r.body}, nil
}

func (f *fakeTransport) GetMainInfo(_ context.Context, _ string) (*runscope.Response, error) {
	return f.answer("main")
}

func (f *fakeTransport) GetBuckets(_ context.Context, _ string) (*runscope.Response, error) {
	return f.answer("buckets")
}

func (f *fakeTransport) GetSharedEnvironments(_ context.Context, _, bucketID string) (*runscope.Response, error) {
	return f.answer("environments", bucketID)
}

func (f *fakeTransport) GetBucketTestsLists(_ context.Context, _, bucketID string) (*runscope.Response, error) {
	return f.answer("tests", bucketID)
}

func (f *fakeTransport) GetTestInformationInBucket(_ context.Context, _, bucketID, testID string) (*runscope.Response, error) {
	return f.answer("test", bucketID, testID)
}

func (f *fakeTransport) GetTestResultsForTestInBucket(_ context.Context, _, bucketID, testID string) (*runscope.Response, error) {
	return f.answer("results", bucketID, testID)
}

func (f *fakeTransport) GetLatestTestResultsInBucket(_ context.Context, _, bucketID, testID string) (*runscope.Response, error) {
	return f.answer("latest", bucketID, testID)
}

func (f *fakeTransport) GetTestResultByResultID(_ context.Context, _, bucketID, testID, testResultID string) (*runscope.Response, error) {
	return f.answer("result", bucketID, testID, testResultID)
}

func (f *fakeTransport) TriggerByID(_ context.Context, _, triggerID, environmentID string) (*runscope.Response, error) {
	return f.answer("trigger", triggerID, environmentID)
}

func (f *fakeTransport) TriggerByURI(_ context.Context, _, triggerURI, environmentID string) (*runscope.Response, error) {
	return f.answer("triggeruri", triggerURI, environmentID)
}

func newTestService(t *testing.T, f *fakeTransport) *Service {
	t.Helper()
	svc, err := New(f, WithPages(runscopePages()))
	if err != nil {
		t.Fatal(err)
	}
	return svc
}

func runscopePages() runscope.Pages { return runscope.NewPages("https://pages.example") }

func decodeRecord[T any](t *testing.T, raw string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return v
}

func resultRecord(t *testing.T, raw string) runscope.ResultRecord {
	return decodeRecord[runscope.ResultRecord](t, raw)
}

func bucketRecord(t *testing.T, raw string) runscope.BucketRecord {
	return decodeRecord[runscope.BucketRecord](t, raw)
}

func testRecord(t *testing.T, raw string) runscope.TestRecord {
	return decodeRecord[runscope.TestRecord](t, raw)
}
