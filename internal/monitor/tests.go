package monitor

import (
	"context"
	"fmt"
	"strings"

	"apimonitor/internal/runscope"
)

// GetBucketTestsLists lists the tests of a bucket, in remote order.
func (s *Service) GetBucketTestsLists(ctx context.Context, token, bucketID string) ([]TestInfo, error) {
	if err := requireNonEmpty(arg{"token", token}, arg{"bucketId", bucketID}); err != nil {
		return nil, err
	}

	resp, err := s.transport.GetBucketTestsLists(ctx, token, bucketID)
	if err != nil {
		return nil, err
	}
	env, err := runscope.DecodeEnvelope[[]runscope.TestRecord](resp)
	if err != nil {
		return nil, fmt.Errorf("get bucket tests: %w", err)
	}

	tests := make([]TestInfo, 0, len(env.Data))
	for _, raw := range env.Data {
		tests = append(tests, s.normalize.TestDescriptor(bucketID, raw))
	}
	return tests, nil
}

// GetBucketTestsListsWithPrefix lists the tests of a bucket whose name contains
// prefix, ignoring case. An empty prefix keeps every test.
func (s *Service) GetBucketTestsListsWithPrefix(ctx context.Context, token, bucketID, prefix string) ([]TestInfo, error) {
	tests, err := s.GetBucketTestsLists(ctx, token, bucketID)
	if err != nil {
		return nil, err
	}
	return filterByName(tests, prefix), nil
}

// filterByName keeps the tests whose name contains prefix, ignoring case.
// The match is not anchored and relative order is preserved.
func filterByName(tests []TestInfo, prefix string) []TestInfo {
	if prefix == "" {
		return tests
	}
	needle := strings.ToLower(prefix)
	kept := make([]TestInfo, 0, len(tests))
	for _, t := range tests {
		if strings.Contains(strings.ToLower(t.Name), needle) {
			kept = append(kept, t)
		}
	}
	return kept
}

// GetTestInformationInBucket fetches one test's full descriptor.
func (s *Service) GetTestInformationInBucket(ctx context.Context, token, bucketID, testID string) (TestInfo, error) {
	if err := requireNonEmpty(arg{"token", token}, arg{"bucketId", bucketID}); err != nil {
		return TestInfo{}, err
	}

	resp, err := s.transport.GetTestInformationInBucket(ctx, token, bucketID, testID)
	if err != nil {
		return TestInfo{}, err
	}
	env, err := runscope.DecodeEnvelope[runscope.TestRecord](resp)
	if err != nil {
		return TestInfo{}, fmt.Errorf("get test information %s: %w", testID, err)
	}
	return s.normalize.TestDescriptor(bucketID, env.Data), nil
}

// GetTestResultsForTestInBucket fetches one test's result history in remote order.
func (s *Service) GetTestResultsForTestInBucket(ctx context.Context, token, bucketID, testID string) ([]TestResult, error) {
	if err := requireNonEmpty(arg{"token", token}, arg{"bucketId", bucketID}); err != nil {
		return nil, err
	}

	resp, err := s.transport.GetTestResultsForTestInBucket(ctx, token, bucketID, testID)
	if err != nil {
		return nil, err
	}
	env, err := runscope.DecodeEnvelope[[]runscope.ResultRecord](resp)
	if err != nil {
		return nil, fmt.Errorf("get test results %s: %w", testID, err)
	}

	results := make([]TestResult, 0, len(env.Data))
	for _, raw := range env.Data {
		results = append(results, s.normalize.TestResult(raw))
	}
	return results, nil
}

// GetTestResult fetches one specific result of a test.
func (s *Service) GetTestResult(ctx context.Context, token, bucketID, testID, testResultID string) (TestResult, error) {
	if err := requireNonEmpty(arg{"token", token}, arg{"bucketId", bucketID}, arg{"testResultId", testResultID}); err != nil {
		return TestResult{}, err
	}

	resp, err := s.transport.GetTestResultByResultID(ctx, token, bucketID, testID, testResultID)
	if err != nil {
		return TestResult{}, err
	}
	env, err := runscope.DecodeEnvelope[runscope.ResultRecord](resp)
	if err != nil {
		return TestResult{}, fmt.Errorf("get test result %s: %w", testResultID, err)
	}
	return s.normalize.TestResult(env.Data), nil
}

// GetLatestTestResultInBucket fetches the most recent result of one test.
//
// A failed fetch is not returned as an error: the result carries testID and
// SuccessRemoteServiceError instead, so one broken test cannot abort a bulk
// aggregation. Only precondition failures are returned as errors.
func (s *Service) GetLatestTestResultInBucket(ctx context.Context, token, bucketID, testID string) (TestResult, error) {
	if err := requireNonEmpty(arg{"token", token}, arg{"bucketId", bucketID}); err != nil {
		return TestResult{}, err
	}

	result := NotRunResult()
	result.TestID = testID

	resp, err := s.transport.GetLatestTestResultsInBucket(ctx, token, bucketID, testID)
	if err == nil {
		var env *runscope.Envelope[runscope.ResultRecord]
		env, err = runscope.DecodeEnvelope[runscope.ResultRecord](resp)
		if err == nil {
			result.Success = SuccessType(env.Data.Result.String())
			return result, nil
		}
	}

	s.logger.WarnContext(ctx, "latest result unavailable", "bucket_id", bucketID, "test_id", testID, "error", err)
	result.Success = SuccessRemoteServiceError
	return result, nil
}
