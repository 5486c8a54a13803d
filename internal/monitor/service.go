// Package monitor aggregates Runscope buckets, tests and results into report
// view models: bucket lookups, most recent results per test, and previous/current
// time frames.
//
// Every workflow is a one-shot pipeline over a Transport. Token and id
// preconditions are checked locally before any call is made.
package monitor

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"apimonitor/internal/runscope"
)

// Transport is the Runscope API surface the service depends on.
// *runscope.Client satisfies it.
type Transport interface {
	GetMainInfo(ctx context.Context, token string) (*runscope.Response, error)
	GetBuckets(ctx context.Context, token string) (*runscope.Response, error)
	GetSharedEnvironments(ctx context.Context, token, bucketID string) (*runscope.Response, error)
	GetBucketTestsLists(ctx context.Context, token, bucketID string) (*runscope.Response, error)
	GetTestInformationInBucket(ctx context.Context, token, bucketID, testID string) (*runscope.Response, error)
	GetTestResultsForTestInBucket(ctx context.Context, token, bucketID, testID string) (*runscope.Response, error)
	GetLatestTestResultsInBucket(ctx context.Context, token, bucketID, testID string) (*runscope.Response, error)
	GetTestResultByResultID(ctx context.Context, token, bucketID, testID, testResultID string) (*runscope.Response, error)
	TriggerByID(ctx context.Context, token, triggerID, environmentID string) (*runscope.Response, error)
	TriggerByURI(ctx context.Context, token, triggerURI, environmentID string) (*runscope.Response, error)
}

var _ Transport = (*runscope.Client)(nil)

// Service runs the aggregation workflows.
type Service struct {
	transport Transport
	normalize Normalizer
	logger    *slog.Logger
}

// Option configures the Service during construction.
type Option func(*Service)

// WithPages sets the page link builder used during normalization.
func WithPages(p runscope.Pages) Option {
	return func(s *Service) { s.normalize = NewNormalizer(p) }
}

// WithLogger configures structured logging.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns a Service that owns transport.
func New(transport Transport, opts ...Option) (*Service, error) {
	if transport == nil {
		return nil, fmt.Errorf("monitor: transport is required")
	}
	s := &Service{
		transport: transport,
		normalize: NewNormalizer(runscope.DefaultPages()),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// MainInfo calls the service root and returns its data member.
func (s *Service) MainInfo(ctx context.Context, token string) (map[string]any, error) {
	if err := requireNonEmpty(arg{"token", token}); err != nil {
		return nil, err
	}
	resp, err := s.transport.GetMainInfo(ctx, token)
	if err != nil {
		return nil, err
	}
	env, err := runscope.DecodeEnvelope[map[string]any](resp)
	if err != nil {
		return nil, fmt.Errorf("main info: %w", err)
	}
	if env.Data == nil {
		return map[string]any{}, nil
	}
	return env.Data, nil
}
