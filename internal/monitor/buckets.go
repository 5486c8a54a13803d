package monitor

import (
	"context"
	"fmt"
	"strings"

	"apimonitor/internal/runscope"
)

// GetBuckets lists every bucket visible to token, in remote order.
func (s *Service) GetBuckets(ctx context.Context, token string) ([]BucketInfo, error) {
	if err := requireNonEmpty(arg{"token", token}); err != nil {
		return nil, err
	}

	resp, err := s.transport.GetBuckets(ctx, token)
	if err != nil {
		return nil, err
	}
	env, err := runscope.DecodeEnvelope[[]runscope.BucketRecord](resp)
	if err != nil {
		return nil, fmt.Errorf("get buckets: %w", err)
	}

	buckets := make([]BucketInfo, 0, len(env.Data))
	for _, raw := range env.Data {
		buckets = append(buckets, s.normalize.Bucket(raw))
	}
	return buckets, nil
}

// FindBucketByName looks up a bucket whose name equals bucketName ignoring case.
func (s *Service) FindBucketByName(ctx context.Context, token, bucketName string) (BucketInfo, error) {
	if err := requireNonEmpty(arg{"token", token}, arg{"bucketName", bucketName}); err != nil {
		return BucketInfo{}, err
	}

	buckets, err := s.GetBuckets(ctx, token)
	if err != nil {
		return BucketInfo{}, err
	}
	bucket, ok := findByName(buckets, bucketName)
	if !ok {
		return BucketInfo{}, &BucketNotFoundError{Name: bucketName}
	}
	return bucket, nil
}

// findByName returns the first bucket whose name matches exactly, ignoring case.
func findByName(buckets []BucketInfo, name string) (BucketInfo, bool) {
	if name == "" {
		return BucketInfo{}, false
	}
	for _, b := range buckets {
		if strings.EqualFold(b.Name, name) {
			return b, true
		}
	}
	return BucketInfo{}, false
}

// GetSharedEnvironments lists a bucket's shared environments as id/name pairs.
func (s *Service) GetSharedEnvironments(ctx context.Context, token, bucketID string) ([]Environment, error) {
	if err := requireNonEmpty(arg{"token", token}, arg{"bucketId", bucketID}); err != nil {
		return nil, err
	}

	resp, err := s.transport.GetSharedEnvironments(ctx, token, bucketID)
	if err != nil {
		return nil, err
	}
	env, err := runscope.DecodeEnvelope[[]runscope.EnvironmentRecord](resp)
	if err != nil {
		return nil, fmt.Errorf("get shared environments: %w", err)
	}

	environments := make([]Environment, 0, len(env.Data))
	for _, raw := range env.Data {
		environments = append(environments, s.normalize.Environment(raw))
	}
	return environments, nil
}
