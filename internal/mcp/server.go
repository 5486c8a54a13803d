// Package mcp exposes the monitor workflows as Model Context Protocol tools.
package mcp

import (
	"context"
	"fmt"
	"log/slog"

	"apimonitor/internal/logging"
	"apimonitor/internal/monitor"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP SDK server around a monitor.Service. Every tool call
// uses the token the server was created with.
type Server struct {
	MCPServer *sdkmcp.Server

	service *monitor.Service
	token   string
	logger  *slog.Logger
}

// NewServer creates an MCP server with the bucket, test, result and trigger tools.
func NewServer(service *monitor.Service, token, version string) *Server {
	if version == "" {
		version = "dev"
	}
	s := &Server{
		service: service,
		token:   token,
		logger:  logging.New("mcp"),
	}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "apimonitor", Version: version},
		nil,
	)
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_buckets",
		Description: "List every Runscope bucket visible to the configured token.",
	}, s.handleListBuckets)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "find_bucket",
		Description: "Look up a bucket by name, ignoring case.",
	}, s.handleFindBucket)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_tests",
		Description: "List the tests of a bucket, optionally keeping only names that contain prefix.",
	}, s.handleListTests)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "test_results",
		Description: "Get the result history of one test.",
	}, s.handleTestResults)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "latest_result",
		Description: "Get the latest result of one test. Fetch failures come back as success=\"remote service error\".",
	}, s.handleLatestResult)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "recent_results",
		Description: "Get every test of a named bucket with its result history attached.",
	}, s.handleRecentResults)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "time_frame",
		Description: "Get the previous and current run of every test in a named bucket.",
	}, s.handleTimeFrame)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_environments",
		Description: "List the shared environments of a bucket.",
	}, s.handleListEnvironments)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "trigger",
		Description: "Start the runs behind a trigger id, optionally against a specific environment.",
	}, s.handleTrigger)
}

// --- Tool input/output types ---

type emptyInput struct{}

type bucketNameInput struct {
	BucketName string `json:"bucket_name" jsonschema:"bucket name, matched ignoring case"`
}

type bucketInput struct {
	BucketID string `json:"bucket_id" jsonschema:"bucket key"`
}

type testsInput struct {
	BucketID string `json:"bucket_id" jsonschema:"bucket key"`
	Prefix   string `json:"prefix,omitempty" jsonschema:"keep tests whose name contains this, ignoring case"`
}

type testInput struct {
	BucketID string `json:"bucket_id" jsonschema:"bucket key"`
	TestID   string `json:"test_id" jsonschema:"test id"`
}

type collectionInput struct {
	BucketName string `json:"bucket_name" jsonschema:"bucket name, matched ignoring case"`
	Prefix     string `json:"prefix,omitempty" jsonschema:"keep tests whose name contains this, ignoring case"`
}

type triggerInput struct {
	TriggerID     string `json:"trigger_id" jsonschema:"trigger id from a test's trigger URL"`
	EnvironmentID string `json:"environment_id,omitempty" jsonschema:"environment to run against (default: the bucket default)"`
}

type bucketsOutput struct {
	Buckets []monitor.BucketInfo `json:"buckets"`
}

type bucketOutput struct {
	Bucket monitor.BucketInfo `json:"bucket"`
}

type testsOutput struct {
	Tests []monitor.TestInfo `json:"tests"`
}

type resultsOutput struct {
	Results []monitor.TestResult `json:"results"`
}

type resultOutput struct {
	Result monitor.TestResult `json:"result"`
}

type environmentsOutput struct {
	Environments []monitor.Environment `json:"environments"`
}

type triggerOutput struct {
	// RunsReported is false when the response carried no run list at all.
	RunsReported bool                   `json:"runs_reported"`
	Runs         []monitor.TriggeredRun `json:"runs,omitempty"`
	Started      int                    `json:"started"`
}

// --- Tool handlers ---

func (s *Server) handleListBuckets(ctx context.Context, _ *sdkmcp.CallToolRequest, _ emptyInput) (*sdkmcp.CallToolResult, bucketsOutput, error) {
	buckets, err := s.service.GetBuckets(ctx, s.token)
	if err != nil {
		return nil, bucketsOutput{}, s.toolError(ctx, "list_buckets", err)
	}
	return nil, bucketsOutput{Buckets: buckets}, nil
}

func (s *Server) handleFindBucket(ctx context.Context, _ *sdkmcp.CallToolRequest, input bucketNameInput) (*sdkmcp.CallToolResult, bucketOutput, error) {
	bucket, err := s.service.FindBucketByName(ctx, s.token, input.BucketName)
	if err != nil {
		return nil, bucketOutput{}, s.toolError(ctx, "find_bucket", err)
	}
	return nil, bucketOutput{Bucket: bucket}, nil
}

func (s *Server) handleListTests(ctx context.Context, _ *sdkmcp.CallToolRequest, input testsInput) (*sdkmcp.CallToolResult, testsOutput, error) {
	tests, err := s.service.GetBucketTestsListsWithPrefix(ctx, s.token, input.BucketID, input.Prefix)
	if err != nil {
		return nil, testsOutput{}, s.toolError(ctx, "list_tests", err)
	}
	return nil, testsOutput{Tests: tests}, nil
}

func (s *Server) handleTestResults(ctx context.Context, _ *sdkmcp.CallToolRequest, input testInput) (*sdkmcp.CallToolResult, resultsOutput, error) {
	results, err := s.service.GetTestResultsForTestInBucket(ctx, s.token, input.BucketID, input.TestID)
	if err != nil {
		return nil, resultsOutput{}, s.toolError(ctx, "test_results", err)
	}
	return nil, resultsOutput{Results: results}, nil
}

func (s *Server) handleLatestResult(ctx context.Context, _ *sdkmcp.CallToolRequest, input testInput) (*sdkmcp.CallToolResult, resultOutput, error) {
	result, err := s.service.GetLatestTestResultInBucket(ctx, s.token, input.BucketID, input.TestID)
	if err != nil {
		return nil, resultOutput{}, s.toolError(ctx, "latest_result", err)
	}
	return nil, resultOutput{Result: result}, nil
}

func (s *Server) handleRecentResults(ctx context.Context, _ *sdkmcp.CallToolRequest, input collectionInput) (*sdkmcp.CallToolResult, monitor.TestResultCollection[monitor.TestInfo], error) {
	c, err := s.service.GetMostRecentResultsOfAllTestsInBucketByName(ctx, s.token, input.BucketName, input.Prefix)
	if err != nil {
		return nil, monitor.TestResultCollection[monitor.TestInfo]{}, s.toolError(ctx, "recent_results", err)
	}
	return nil, c, nil
}

func (s *Server) handleTimeFrame(ctx context.Context, _ *sdkmcp.CallToolRequest, input collectionInput) (*sdkmcp.CallToolResult, monitor.TestResultCollection[monitor.TestResultTimeFrame], error) {
	c, err := s.service.GetTimeFrameOfTestsInBucketByName(ctx, s.token, input.BucketName, input.Prefix)
	if err != nil {
		return nil, monitor.TestResultCollection[monitor.TestResultTimeFrame]{}, s.toolError(ctx, "time_frame", err)
	}
	return nil, c, nil
}

func (s *Server) handleListEnvironments(ctx context.Context, _ *sdkmcp.CallToolRequest, input bucketInput) (*sdkmcp.CallToolResult, environmentsOutput, error) {
	envs, err := s.service.GetSharedEnvironments(ctx, s.token, input.BucketID)
	if err != nil {
		return nil, environmentsOutput{}, s.toolError(ctx, "list_environments", err)
	}
	return nil, environmentsOutput{Environments: envs}, nil
}

func (s *Server) handleTrigger(ctx context.Context, _ *sdkmcp.CallToolRequest, input triggerInput) (*sdkmcp.CallToolResult, triggerOutput, error) {
	runs, err := s.service.TriggerByID(ctx, s.token, input.TriggerID, input.EnvironmentID)
	if err != nil {
		return nil, triggerOutput{}, s.toolError(ctx, "trigger", err)
	}
	s.logger.InfoContext(ctx, "trigger started", "trigger_id", input.TriggerID, "runs", len(runs))
	return nil, triggerOutput{RunsReported: runs != nil, Runs: runs, Started: len(runs)}, nil
}

func (s *Server) toolError(ctx context.Context, tool string, err error) error {
	s.logger.WarnContext(ctx, "tool failed", "tool", tool, "error", err)
	return fmt.Errorf("%s: %w", tool, err)
}
