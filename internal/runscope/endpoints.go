package runscope

import (
	"context"
	"fmt"
	"net/http"
)

// testsPageSize is the fixed page size for test listing. Buckets with more
// tests than this are truncated; there is no pagination past the first page.
const testsPageSize = 1000

// latestSegment is the reserved result id for the most recent run.
const latestSegment = "latest"

// environmentParam selects a non-default environment when triggering a run.
const environmentParam = "runscope_environment"

// BucketURI returns the API location of a bucket.
func (c *Client) BucketURI(bucketID string) string {
	return fmt.Sprintf("%s/buckets/%s", c.baseURL, bucketID)
}

// TestInformationInBucketURI returns the API location of one test.
func (c *Client) TestInformationInBucketURI(bucketID, testID string) string {
	return fmt.Sprintf("%s/tests/%s", c.BucketURI(bucketID), testID)
}

// TestResultsForTestInBucketURI returns the API location of a test's result history.
func (c *Client) TestResultsForTestInBucketURI(bucketID, testID string) string {
	return fmt.Sprintf("%s/results", c.TestInformationInBucketURI(bucketID, testID))
}

// TestResultByIDInBucketURI returns the API location of one test result.
func (c *Client) TestResultByIDInBucketURI(bucketID, testID, testResultID string) string {
	return fmt.Sprintf("%s/%s", c.TestResultsForTestInBucketURI(bucketID, testID), testResultID)
}

// TriggerURI returns the API location that starts a run for triggerID.
func (c *Client) TriggerURI(triggerID string) string {
	return fmt.Sprintf("%s/radar/%s/trigger", c.baseURL, triggerID)
}

// GetMainInfo calls the service root.
func (c *Client) GetMainInfo(ctx context.Context, token string) (*Response, error) {
	return c.do(ctx, http.MethodGet, c.baseURL+"/", "get main info", token)
}

// GetBuckets lists the buckets visible to token.
func (c *Client) GetBuckets(ctx context.Context, token string) (*Response, error) {
	return c.do(ctx, http.MethodGet, c.baseURL+"/buckets", "get buckets", token)
}

// GetSharedEnvironments lists the shared environments of a bucket.
func (c *Client) GetSharedEnvironments(ctx context.Context, token, bucketID string) (*Response, error) {
	u := fmt.Sprintf("%s/environments", c.BucketURI(bucketID))
	return c.do(ctx, http.MethodGet, u, "get shared environments", token)
}

// GetBucketTestsLists lists the tests of a bucket, capped at the fixed page size.
func (c *Client) GetBucketTestsLists(ctx context.Context, token, bucketID string) (*Response, error) {
	u := fmt.Sprintf("%s/tests?count=%d", c.BucketURI(bucketID), testsPageSize)
	return c.do(ctx, http.MethodGet, u, "get bucket tests", token)
}

// GetTestInformationInBucket fetches one test's full descriptor.
func (c *Client) GetTestInformationInBucket(ctx context.Context, token, bucketID, testID string) (*Response, error) {
	return c.do(ctx, http.MethodGet, c.TestInformationInBucketURI(bucketID, testID), "get test information", token)
}

// GetTestResultsForTestInBucket fetches the result history of one test.
func (c *Client) GetTestResultsForTestInBucket(ctx context.Context, token, bucketID, testID string) (*Response, error) {
	return c.do(ctx, http.MethodGet, c.TestResultsForTestInBucketURI(bucketID, testID), "get test results", token)
}

// GetLatestTestResultsInBucket fetches the most recent result of one test.
func (c *Client) GetLatestTestResultsInBucket(ctx context.Context, token, bucketID, testID string) (*Response, error) {
	u := c.TestResultByIDInBucketURI(bucketID, testID, latestSegment)
	return c.do(ctx, http.MethodGet, u, "get latest test result", token)
}

// GetTestResultByResultID fetches one specific result of a test.
func (c *Client) GetTestResultByResultID(ctx context.Context, token, bucketID, testID, testResultID string) (*Response, error) {
	u := c.TestResultByIDInBucketURI(bucketID, testID, testResultID)
	return c.do(ctx, http.MethodGet, u, "get test result", token)
}

// TriggerByID starts a run by trigger id. An empty environmentID uses the
// bucket's default environment.
func (c *Client) TriggerByID(ctx context.Context, token, triggerID, environmentID string) (*Response, error) {
	u := withEnvironment(c.TriggerURI(triggerID), environmentID)
	return c.do(ctx, http.MethodPost, u, "trigger by id", token)
}

// TriggerByURI starts a run by posting to a caller-held trigger URI.
func (c *Client) TriggerByURI(ctx context.Context, token, triggerURI, environmentID string) (*Response, error) {
	return c.do(ctx, http.MethodPost, withEnvironment(triggerURI, environmentID), "trigger by uri", token)
}

func withEnvironment(uri, environmentID string) string {
	if environmentID == "" {
		return uri
	}
	return fmt.Sprintf("%s?%s=%s", uri, environmentParam, environmentID)
}
