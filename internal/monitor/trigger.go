package monitor

import (
	"context"
	"fmt"

	"apimonitor/internal/runscope"
)

// TriggerByID starts a run by trigger id. An empty environmentID runs against
// the bucket's default environment.
func (s *Service) TriggerByID(ctx context.Context, token, triggerID, environmentID string) ([]TriggeredRun, error) {
	if err := requireNonEmpty(arg{"token", token}, arg{"triggerId", triggerID}); err != nil {
		return nil, err
	}
	resp, err := s.transport.TriggerByID(ctx, token, triggerID, environmentID)
	if err != nil {
		return nil, err
	}
	return s.triggeredRuns(resp)
}

// TriggerByTestInformation starts a run through the trigger URI of a test descriptor.
func (s *Service) TriggerByTestInformation(ctx context.Context, token string, test TestInfo, environmentID string) ([]TriggeredRun, error) {
	if err := requireNonEmpty(arg{"token", token}, arg{"triggerUri", test.TriggerURI}); err != nil {
		return nil, err
	}
	resp, err := s.transport.TriggerByURI(ctx, token, test.TriggerURI, environmentID)
	if err != nil {
		return nil, err
	}
	return s.triggeredRuns(resp)
}

// triggeredRuns projects the runs of a trigger response. An absent run list
// stays nil and an empty one stays empty.
func (s *Service) triggeredRuns(resp *runscope.Response) ([]TriggeredRun, error) {
	env, err := runscope.DecodeEnvelope[runscope.TriggerRecord](resp)
	if err != nil {
		return nil, fmt.Errorf("trigger: %w", err)
	}
	runs := env.Data.Runs
	if len(runs) == 0 {
		if runs == nil {
			return nil, nil
		}
		return []TriggeredRun{}, nil
	}

	projected := make([]TriggeredRun, 0, len(runs))
	for _, raw := range runs {
		projected = append(projected, s.normalize.TriggeredRun(raw))
	}
	return projected, nil
}
