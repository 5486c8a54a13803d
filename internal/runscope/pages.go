package runscope

import (
	"fmt"
	"strings"
)

// Pages builds links into the Runscope dashboard.
type Pages struct {
	baseURL string
}

// NewPages returns a page link builder rooted at baseURL.
func NewPages(baseURL string) Pages {
	return Pages{baseURL: strings.TrimSuffix(baseURL, "/")}
}

// DefaultPages links into the public Runscope dashboard.
func DefaultPages() Pages { return NewPages(DefaultPageBaseURL) }

// BucketPageURI is where a bucket lives on the dashboard.
func (p Pages) BucketPageURI(bucketID string) string {
	return fmt.Sprintf("%s/radar/%s", p.baseURL, bucketID)
}

// TestResultsInBucketPageURI is the results overview page of one test.
func (p Pages) TestResultsInBucketPageURI(bucketID, testID string) string {
	return fmt.Sprintf("%s/%s/overview", p.BucketPageURI(bucketID), testID)
}
