package main

import (
	"github.com/spf13/cobra"

	"apimonitor/internal/monitor"
	"apimonitor/internal/report"
)

// testFlags is shared by the commands that address a single test.
var testFlags struct {
	bucketID     string
	testID       string
	testResultID string
	prefix       string
}

var testsCmd = &cobra.Command{
	Use:   "tests",
	Short: "List the tests of a bucket",
	Args:  cobra.NoArgs,
	RunE:  runTests,
}

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Show one test's descriptor",
	Args:  cobra.NoArgs,
	RunE:  runTest,
}

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Show one test's result history, most recent first",
	Args:  cobra.NoArgs,
	RunE:  runResults,
}

var resultCmd = &cobra.Command{
	Use:   "result",
	Short: "Show one specific result of a test",
	Args:  cobra.NoArgs,
	RunE:  runResult,
}

var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Show the latest result of one or more tests",
	Long: `Show the latest result of each --test-id. A test whose result cannot be
fetched is reported as "remote service error" instead of failing the command.`,
	Args: cobra.NoArgs,
	RunE: runLatest,
}

var latestFlags struct {
	testIDs []string
}

func init() {
	for _, c := range []*cobra.Command{testsCmd, testCmd, resultsCmd, resultCmd, latestCmd} {
		c.Flags().StringVar(&testFlags.bucketID, "bucket-id", "", "Bucket key (required)")
		_ = c.MarkFlagRequired("bucket-id")
	}
	for _, c := range []*cobra.Command{testCmd, resultsCmd, resultCmd} {
		c.Flags().StringVar(&testFlags.testID, "test-id", "", "Test id (required)")
		_ = c.MarkFlagRequired("test-id")
	}
	testsCmd.Flags().StringVar(&testFlags.prefix, "prefix", "", "Keep tests whose name contains this (ignoring case)")
	resultCmd.Flags().StringVar(&testFlags.testResultID, "result-id", "", "Test run id (required)")
	_ = resultCmd.MarkFlagRequired("result-id")
	latestCmd.Flags().StringSliceVar(&latestFlags.testIDs, "test-id", nil, "Test id (repeatable, required)")
	_ = latestCmd.MarkFlagRequired("test-id")
}

func runTests(cmd *cobra.Command, _ []string) error {
	svc, token, err := newService()
	if err != nil {
		return err
	}
	tests, err := svc.GetBucketTestsListsWithPrefix(cmd.Context(), token, testFlags.bucketID, testFlags.prefix)
	if err != nil {
		return err
	}
	return render(cmd, tests, func(m report.Mode) string { return report.Tests(m, tests) })
}

func runTest(cmd *cobra.Command, _ []string) error {
	svc, token, err := newService()
	if err != nil {
		return err
	}
	test, err := svc.GetTestInformationInBucket(cmd.Context(), token, testFlags.bucketID, testFlags.testID)
	if err != nil {
		return err
	}
	return render(cmd, test, func(m report.Mode) string { return report.Tests(m, []monitor.TestInfo{test}) })
}

func runResults(cmd *cobra.Command, _ []string) error {
	svc, token, err := newService()
	if err != nil {
		return err
	}
	results, err := svc.GetTestResultsForTestInBucket(cmd.Context(), token, testFlags.bucketID, testFlags.testID)
	if err != nil {
		return err
	}
	return render(cmd, results, func(m report.Mode) string { return report.Results(m, results) })
}

func runResult(cmd *cobra.Command, _ []string) error {
	svc, token, err := newService()
	if err != nil {
		return err
	}
	result, err := svc.GetTestResult(cmd.Context(), token, testFlags.bucketID, testFlags.testID, testFlags.testResultID)
	if err != nil {
		return err
	}
	return render(cmd, result, func(m report.Mode) string { return report.Results(m, []monitor.TestResult{result}) })
}

func runLatest(cmd *cobra.Command, _ []string) error {
	svc, token, err := newService()
	if err != nil {
		return err
	}
	results, err := svc.GetAllLatestTestResultsInBucketByTestIDs(cmd.Context(), token, testFlags.bucketID, latestFlags.testIDs)
	if err != nil {
		return err
	}
	return render(cmd, results, func(m report.Mode) string { return report.Results(m, results) })
}
