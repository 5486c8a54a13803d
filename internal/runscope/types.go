package runscope

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Text is a JSON scalar read as a string. Strings pass through, numbers and
// booleans keep their literal JSON text, null leaves it empty.
type Text string

// String returns the underlying value.
func (t Text) String() string { return string(t) }

// UnmarshalJSON accepts any JSON scalar.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*t = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("unmarshal text: %w", err)
		}
		*t = Text(s)
	case data[0] == '{' || data[0] == '[':
		return fmt.Errorf("unmarshal text: unexpected %s", data[:1])
	default:
		*t = Text(data)
	}
	return nil
}

// Tick is an epoch timestamp in (possibly fractional) seconds. It accepts a JSON
// number, a numeric string, or null.
type Tick float64

// UnmarshalJSON accepts numbers and numeric strings; anything else reads as zero.
func (t *Tick) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("unmarshal tick: %w", err)
		}
		data = []byte(s)
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		*t = 0
		return nil
	}
	*t = Tick(v)
	return nil
}

// --- Runscope response shapes (only the fields this module reads) ---

// Envelope is the wrapper around every Runscope response body.
type Envelope[T any] struct {
	Data  T          `json:"data"`
	Error *ErrorBody `json:"error"`
	Meta  Meta       `json:"meta"`
}

// ErrorBody is the error member of an envelope.
type ErrorBody struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Meta is the meta member of an envelope.
type Meta struct {
	Status string `json:"status"`
}

// BucketRecord is one element of GET /buckets.
type BucketRecord struct {
	Name                 Text `json:"name"`
	Key                  Text `json:"key"`
	ID                   Text `json:"id"`
	DefaultEnvironmentID Text `json:"default_environment_id"`
	Description          Text `json:"description"`
}

// ScheduleRecord is one schedule of a test.
type ScheduleRecord struct {
	ID            Text `json:"id"`
	EnvironmentID Text `json:"environment_id"`
	Interval      Text `json:"interval"`
	Note          Text `json:"note"`
}

// TestRecord is a test as returned by the test listing and test detail endpoints.
type TestRecord struct {
	Name                 Text             `json:"name"`
	ID                   Text             `json:"id"`
	Description          Text             `json:"description"`
	Schedules            []ScheduleRecord `json:"schedules"`
	TriggerURL           Text             `json:"trigger_url"`
	DefaultEnvironmentID Text             `json:"default_environment_id"`
}

// ResultRecord is one run outcome of a test.
type ResultRecord struct {
	TestID     Text `json:"test_id"`
	TestRunID  Text `json:"test_run_id"`
	Result     Text `json:"result"`
	StartedAt  Tick `json:"started_at"`
	FinishedAt Tick `json:"finished_at"`
	BucketKey  Text `json:"bucket_key"`
}

// EnvironmentRecord is one shared environment of a bucket.
type EnvironmentRecord struct {
	ID   Text `json:"id"`
	Name Text `json:"name"`
}

// TriggerRecord is the data member of a trigger response.
type TriggerRecord struct {
	Runs        []TriggerRunRecord `json:"runs"`
	RunsFailed  int                `json:"runs_failed"`
	RunsStarted int                `json:"runs_started"`
	RunsTotal   int                `json:"runs_total"`
}

// TriggerRunRecord is one run started by a trigger.
type TriggerRunRecord struct {
	BucketKey       Text `json:"bucket_key"`
	TestID          Text `json:"test_id"`
	TestRunID       Text `json:"test_run_id"`
	TestName        Text `json:"test_name"`
	Status          Text `json:"status"`
	EnvironmentID   Text `json:"environment_id"`
	EnvironmentName Text `json:"environment_name"`
}

// DecodeEnvelope parses a response body into an envelope whose data member is T.
func DecodeEnvelope[T any](resp *Response) (*Envelope[T], error) {
	if resp == nil {
		return nil, fmt.Errorf("decode envelope: nil response")
	}
	var env Envelope[T]
	if err := json.Unmarshal([]byte(resp.Body), &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	return &env, nil
}
