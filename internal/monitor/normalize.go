package monitor

import (
	"strings"

	"apimonitor/internal/runscope"
)

const (
	triggerHostPath = "api.runscope.com/radar/"
	triggerAction   = "/trigger"
)

// Normalizer turns raw Runscope records into internal records. Every method
// is total: absent or null fields become empty values.
type Normalizer struct {
	pages runscope.Pages
}

// NewNormalizer returns a Normalizer whose page links are built by pages.
func NewNormalizer(pages runscope.Pages) Normalizer {
	return Normalizer{pages: pages}
}

// Bucket converts one element of the bucket listing. The id comes from the
// record's key, falling back to its id.
func (n Normalizer) Bucket(raw runscope.BucketRecord) BucketInfo {
	id := raw.Key.String()
	if id == "" {
		id = raw.ID.String()
	}
	return BucketInfo{
		Name:                 raw.Name.String(),
		ID:                   id,
		URI:                  n.pages.BucketPageURI(id),
		DefaultEnvironmentID: raw.DefaultEnvironmentID.String(),
	}
}

// TestDescriptor converts a test record. A freshly normalized descriptor is
// never assumed to reflect a known outcome, so Success is SuccessNotRun.
func (n Normalizer) TestDescriptor(bucketID string, raw runscope.TestRecord) TestInfo {
	schedules := make([]Schedule, 0, len(raw.Schedules))
	for _, s := range raw.Schedules {
		schedules = append(schedules, Schedule{
			ID:            s.ID.String(),
			EnvironmentID: s.EnvironmentID.String(),
			Interval:      s.Interval.String(),
			Note:          s.Note.String(),
		})
	}

	id := raw.ID.String()
	return NewTestInfo(
		raw.Name.String(),
		id,
		schedules,
		SuccessNotRun,
		n.pages.TestResultsInBucketPageURI(bucketID, id),
		raw.DefaultEnvironmentID.String(),
		raw.TriggerURL.String(),
	)
}

// TestResult maps the external result fields onto a TestResult.
func (n Normalizer) TestResult(raw runscope.ResultRecord) TestResult {
	return TestResult{
		TestID:       raw.TestID.String(),
		TestResultID: raw.TestRunID.String(),
		Success:      SuccessType(raw.Result.String()),
		RunTick:      float64(raw.StartedAt),
	}
}

// Environment keeps only the id and name of an environment record.
func (n Normalizer) Environment(raw runscope.EnvironmentRecord) Environment {
	return Environment{ID: raw.ID.String(), Name: raw.Name.String()}
}

// TriggeredRun keeps only the bucket and test of a started run.
func (n Normalizer) TriggeredRun(raw runscope.TriggerRunRecord) TriggeredRun {
	return TriggeredRun{BucketID: raw.BucketKey.String(), TestID: raw.TestID.String()}
}

// ExtractTriggerID returns the trigger id embedded in a Runscope trigger URI,
// or "" when uri does not contain both the radar host path and the trigger action.
// Matching is case-insensitive substring matching, not URL parsing.
func ExtractTriggerID(uri string) string {
	if uri == "" {
		return ""
	}
	if indexFold(uri, triggerHostPath) < 0 || indexFold(uri, triggerAction) < 0 {
		return ""
	}

	rest := trimSchemeFold(uri)
	rest = removeFold(rest, triggerHostPath)
	rest = removeFold(rest, triggerAction)
	return rest
}

func trimSchemeFold(s string) string {
	for _, scheme := range []string{"https://", "http://"} {
		if len(s) >= len(scheme) && strings.EqualFold(s[:len(scheme)], scheme) {
			return s[len(scheme):]
		}
	}
	return s
}

// indexFold returns the byte offset in s of the first case-insensitive
// occurrence of the ASCII string sub, or -1. Offsets always index s itself.
func indexFold(s, sub string) int {
	for j := 0; j+len(sub) <= len(s); j++ {
		if strings.EqualFold(s[j:j+len(sub)], sub) {
			return j
		}
	}
	return -1
}

// removeFold drops the first case-insensitive occurrence of sub from s.
func removeFold(s, sub string) string {
	i := indexFold(s, sub)
	if i < 0 {
		return s
	}
	return s[:i] + s[i+len(sub):]
}
