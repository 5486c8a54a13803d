package main

import (
	"github.com/spf13/cobra"

	"apimonitor/internal/report"
)

var triggerFlags struct {
	triggerID     string
	bucketID      string
	testID        string
	environmentID string
}

var triggerCmd = &cobra.Command{
	Use:   "trigger",
	Short: "Start the runs behind a trigger id",
	Args:  cobra.NoArgs,
	RunE:  runTrigger,
}

var triggerTestCmd = &cobra.Command{
	Use:   "trigger-test",
	Short: "Start a run of one test through its trigger URL",
	Args:  cobra.NoArgs,
	RunE:  runTriggerTest,
}

func init() {
	f := triggerCmd.Flags()
	f.StringVar(&triggerFlags.triggerID, "trigger-id", "", "Trigger id (required)")
	f.StringVar(&triggerFlags.environmentID, "environment-id", "", "Environment to run against (default: the bucket default)")
	_ = triggerCmd.MarkFlagRequired("trigger-id")

	f = triggerTestCmd.Flags()
	f.StringVar(&triggerFlags.bucketID, "bucket-id", "", "Bucket key (required)")
	f.StringVar(&triggerFlags.testID, "test-id", "", "Test id (required)")
	f.StringVar(&triggerFlags.environmentID, "environment-id", "", "Environment to run against (default: the bucket default)")
	_ = triggerTestCmd.MarkFlagRequired("bucket-id")
	_ = triggerTestCmd.MarkFlagRequired("test-id")
}

func runTrigger(cmd *cobra.Command, _ []string) error {
	svc, token, err := newService()
	if err != nil {
		return err
	}
	runs, err := svc.TriggerByID(cmd.Context(), token, triggerFlags.triggerID, triggerFlags.environmentID)
	if err != nil {
		return err
	}
	return render(cmd, runs, func(m report.Mode) string { return report.TriggeredRuns(m, runs) })
}

func runTriggerTest(cmd *cobra.Command, _ []string) error {
	svc, token, err := newService()
	if err != nil {
		return err
	}
	test, err := svc.GetTestInformationInBucket(cmd.Context(), token, triggerFlags.bucketID, triggerFlags.testID)
	if err != nil {
		return err
	}
	runs, err := svc.TriggerByTestInformation(cmd.Context(), token, test, triggerFlags.environmentID)
	if err != nil {
		return err
	}
	return render(cmd, runs, func(m report.Mode) string { return report.TriggeredRuns(m, runs) })
}
