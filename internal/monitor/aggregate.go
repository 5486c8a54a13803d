package monitor

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// fanOut calls fetch once per id concurrently, without a concurrency cap, and
// waits for all of them. The first error cancels the group and is returned.
// An empty id list returns an empty slice without calling fetch.
func fanOut[T any](ctx context.Context, ids []string, fetch func(ctx context.Context, id string) (T, error)) ([]T, error) {
	out := make([]T, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			v, err := fetch(gctx, id)
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetAllTestResultsForTestInBucketByTestIDs fetches the result history of every
// test id in parallel. Each element is the history of the id at the same index.
func (s *Service) GetAllTestResultsForTestInBucketByTestIDs(ctx context.Context, token, bucketID string, testIDs []string) ([][]TestResult, error) {
	return fanOut(ctx, testIDs, func(ctx context.Context, id string) ([]TestResult, error) {
		return s.GetTestResultsForTestInBucket(ctx, token, bucketID, id)
	})
}

// GetAllTestInformationInBucketByTestIDs fetches the descriptor of every test id
// in parallel. One failed fetch fails the whole call.
func (s *Service) GetAllTestInformationInBucketByTestIDs(ctx context.Context, token, bucketID string, testIDs []string) ([]TestInfo, error) {
	return fanOut(ctx, testIDs, func(ctx context.Context, id string) (TestInfo, error) {
		return s.GetTestInformationInBucket(ctx, token, bucketID, id)
	})
}

// GetAllLatestTestResultsInBucketByTestIDs fetches the latest result of every
// test id in parallel. Fetch failures are absorbed per test, see
// GetLatestTestResultInBucket.
func (s *Service) GetAllLatestTestResultsInBucketByTestIDs(ctx context.Context, token, bucketID string, testIDs []string) ([]TestResult, error) {
	return fanOut(ctx, testIDs, func(ctx context.Context, id string) (TestResult, error) {
		return s.GetLatestTestResultInBucket(ctx, token, bucketID, id)
	})
}

// GetMostRecentResultsOfAllTestsInBucket returns the full descriptor of every
// test in the bucket whose name contains prefix (all tests when prefix is
// empty), each carrying its result history in Results.
func (s *Service) GetMostRecentResultsOfAllTestsInBucket(ctx context.Context, token, bucketID, prefix string) ([]TestInfo, error) {
	if err := requireNonEmpty(arg{"token", token}, arg{"bucketId", bucketID}); err != nil {
		return nil, err
	}

	listed, err := s.GetBucketTestsListsWithPrefix(ctx, token, bucketID, prefix)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(listed))
	for _, t := range listed {
		ids = append(ids, t.ID)
	}

	var (
		tests  []TestInfo
		groups [][]TestResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tests, err = s.GetAllTestInformationInBucketByTestIDs(gctx, token, bucketID, ids)
		return err
	})
	g.Go(func() error {
		var err error
		groups, err = s.GetAllTestResultsForTestInBucketByTestIDs(gctx, token, bucketID, ids)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	joinResults(tests, groups)
	s.logger.DebugContext(ctx, "joined results", "bucket_id", bucketID, "tests", len(tests), "result_groups", len(groups))
	return tests, nil
}

// joinResults appends to each test every result whose TestID equals the test's
// ID, scanning groups in order and each group in order.
func joinResults(tests []TestInfo, groups [][]TestResult) {
	for i := range tests {
		for _, group := range groups {
			for _, r := range group {
				if tests[i].ID == r.TestID {
					tests[i].Results = append(tests[i].Results, r)
				}
			}
		}
	}
}

// GetMostRecentResultsOfAllTestsInBucketByName resolves bucketName ignoring case
// and returns its tests with their result histories. See
// GetMostRecentResultsOfAllTestsInBucket for prefix.
func (s *Service) GetMostRecentResultsOfAllTestsInBucketByName(ctx context.Context, token, bucketName, prefix string) (TestResultCollection[TestInfo], error) {
	if err := requireNonEmpty(arg{"token", token}, arg{"bucketName", bucketName}); err != nil {
		return TestResultCollection[TestInfo]{}, err
	}

	bucket, err := s.FindBucketByName(ctx, token, bucketName)
	if err != nil {
		return TestResultCollection[TestInfo]{}, err
	}
	tests, err := s.GetMostRecentResultsOfAllTestsInBucket(ctx, token, bucket.ID, prefix)
	if err != nil {
		return TestResultCollection[TestInfo]{}, err
	}

	return TestResultCollection[TestInfo]{BucketInfo: bucket, TestData: tests}, nil
}

// GetTimeFrameOfTestsInBucketByName reduces each test of the named bucket to
// its previous and current runs.
func (s *Service) GetTimeFrameOfTestsInBucketByName(ctx context.Context, token, bucketName, prefix string) (TestResultCollection[TestResultTimeFrame], error) {
	recent, err := s.GetMostRecentResultsOfAllTestsInBucketByName(ctx, token, bucketName, prefix)
	if err != nil {
		return TestResultCollection[TestResultTimeFrame]{}, err
	}

	frames := make([]TestResultTimeFrame, 0, len(recent.TestData))
	for _, t := range recent.TestData {
		frames = append(frames, NewTimeFrame(t))
	}
	return TestResultCollection[TestResultTimeFrame]{BucketInfo: recent.BucketInfo, TestData: frames}, nil
}
