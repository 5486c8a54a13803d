package monitor

import (
	"cmp"
	"slices"
)

// SuccessType is the outcome tag of a test or run. Remote status strings pass
// through unchanged, so values outside the constants below are possible.
type SuccessType string

const (
	SuccessPass    SuccessType = "pass"
	SuccessFail    SuccessType = "fail"
	SuccessWorking SuccessType = "working"
	SuccessNotRun  SuccessType = "not run"
	// SuccessRemoteServiceError marks a result whose fetch failed and was absorbed.
	SuccessRemoteServiceError SuccessType = "remote service error"
)

// sentinelID fills the id fields of a TestResult that stands for "no result".
const sentinelID = "-1"

// BucketInfo identifies a named container of tests.
type BucketInfo struct {
	Name                 string `json:"name"`
	ID                   string `json:"id"`
	URI                  string `json:"uri"`
	DefaultEnvironmentID string `json:"defaultEnvironmentId"`
}

// IsNew reports whether the bucket has no external id yet.
func (b BucketInfo) IsNew() bool { return b.ID == "" }

// SameBucket reports whether b and other refer to the same bucket. Names are not compared.
func (b BucketInfo) SameBucket(other BucketInfo) bool { return b.ID == other.ID }

// Schedule is one configured schedule of a test.
type Schedule struct {
	ID            string `json:"id"`
	EnvironmentID string `json:"environmentId"`
	Interval      string `json:"interval"`
	Note          string `json:"note"`
}

// TestInfo describes one configured test within a bucket.
type TestInfo struct {
	Name                 string       `json:"name"`
	ID                   string       `json:"id"`
	Schedules            []Schedule   `json:"schedules"`
	Success              SuccessType  `json:"success"`
	URI                  string       `json:"uri"`
	DefaultEnvironmentID string       `json:"defaultEnvironmentId"`
	TriggerURI           string       `json:"triggerUri"`
	TriggerID            string       `json:"triggerId"`
	Results              []TestResult `json:"results"`
}

// NewTestInfo builds a TestInfo with an empty result list and the trigger id
// derived from triggerURI.
func NewTestInfo(name, id string, schedules []Schedule, success SuccessType, uri, defaultEnvironmentID, triggerURI string) TestInfo {
	if schedules == nil {
		schedules = []Schedule{}
	}
	return TestInfo{
		Name:                 name,
		ID:                   id,
		Schedules:            schedules,
		Success:              success,
		URI:                  uri,
		DefaultEnvironmentID: defaultEnvironmentID,
		TriggerURI:           triggerURI,
		TriggerID:            ExtractTriggerID(triggerURI),
		Results:              []TestResult{},
	}
}

// HasSchedules reports whether the test runs on at least one schedule.
func (t TestInfo) HasSchedules() bool { return len(t.Schedules) > 0 }

// ResultsByDescTick returns a copy of the results, most recent run first.
// Results with equal ticks keep their relative order.
func (t TestInfo) ResultsByDescTick() []TestResult {
	sorted := slices.Clone(t.Results)
	slices.SortStableFunc(sorted, func(a, b TestResult) int {
		return cmp.Compare(b.RunTick, a.RunTick)
	})
	return sorted
}

// LatestResult is the most recent run, or the sentinel when there is none.
func (t TestInfo) LatestResult() TestResult {
	sorted := t.ResultsByDescTick()
	if len(sorted) == 0 {
		return NotRunResult()
	}
	return sorted[0]
}

// PreviousResult is the run before the latest one, or the sentinel when there
// are fewer than two.
func (t TestInfo) PreviousResult() TestResult {
	sorted := t.ResultsByDescTick()
	if len(sorted) <= 1 {
		return NotRunResult()
	}
	return sorted[1]
}

// TestResult is one historical run outcome.
type TestResult struct {
	TestID       string      `json:"testId"`
	RunTick      float64     `json:"runTick"`
	TestResultID string      `json:"testResultId"`
	Success      SuccessType `json:"success"`
}

// NotRunResult is the placeholder used wherever no matching result exists.
func NotRunResult() TestResult {
	return TestResult{
		TestID:       sentinelID,
		RunTick:      -1,
		TestResultID: sentinelID,
		Success:      SuccessNotRun,
	}
}

// IsNotRun reports whether r is the placeholder result.
func (r TestResult) IsNotRun() bool { return r == NotRunResult() }

// IsRemoteServiceError reports whether r stands for an absorbed fetch failure.
// Callers of the latest-result workflows must treat it as a failure.
func (r TestResult) IsRemoteServiceError() bool { return r.Success == SuccessRemoteServiceError }

// TestResultTimeFrame pairs a test's two most recent runs.
type TestResultTimeFrame struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	URI                string     `json:"uri"`
	PreviousTestResult TestResult `json:"previousTestResult"`
	CurrentTestResult  TestResult `json:"currentTestResult"`
}

// NewTimeFrame reduces a test's results into its previous and current runs.
func NewTimeFrame(t TestInfo) TestResultTimeFrame {
	return TestResultTimeFrame{
		ID:                 t.ID,
		Name:               t.Name,
		URI:                t.URI,
		PreviousTestResult: t.PreviousResult(),
		CurrentTestResult:  t.LatestResult(),
	}
}

// TestData is what a TestResultCollection can hold.
type TestData interface {
	TestInfo | TestResultTimeFrame
}

// TestResultCollection is a snapshot of one bucket's tests.
type TestResultCollection[T TestData] struct {
	BucketInfo BucketInfo `json:"bucketInfo"`
	TestData   []T        `json:"testData"`
}

// Environment is a shared environment of a bucket.
type Environment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TriggeredRun identifies one run started by a trigger.
type TriggeredRun struct {
	BucketID string `json:"bucketId"`
	TestID   string `json:"testId"`
}
