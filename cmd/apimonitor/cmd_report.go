package main

import (
	"github.com/spf13/cobra"

	"apimonitor/internal/report"
)

var collectionFlags struct {
	bucket string
	prefix string
}

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Show every test of a bucket with its result history",
	Args:  cobra.NoArgs,
	RunE:  runRecent,
}

var timeframeCmd = &cobra.Command{
	Use:   "timeframe",
	Short: "Compare the previous and current run of every test in a bucket",
	Long: `Compare the previous and current run of every test in a bucket. Tests with
fewer than two runs show "not run" for the missing side.`,
	Args: cobra.NoArgs,
	RunE: runTimeframe,
}

func init() {
	for _, c := range []*cobra.Command{recentCmd, timeframeCmd} {
		f := c.Flags()
		f.StringVar(&collectionFlags.bucket, "bucket", "", "Bucket name, matched ignoring case (required)")
		f.StringVar(&collectionFlags.prefix, "prefix", "", "Keep tests whose name contains this (ignoring case)")
		_ = c.MarkFlagRequired("bucket")
	}
}

func runRecent(cmd *cobra.Command, _ []string) error {
	svc, token, err := newService()
	if err != nil {
		return err
	}
	c, err := svc.GetMostRecentResultsOfAllTestsInBucketByName(cmd.Context(), token, collectionFlags.bucket, collectionFlags.prefix)
	if err != nil {
		return err
	}
	return render(cmd, c, func(m report.Mode) string { return report.Collection(m, c) })
}

func runTimeframe(cmd *cobra.Command, _ []string) error {
	svc, token, err := newService()
	if err != nil {
		return err
	}
	c, err := svc.GetTimeFrameOfTestsInBucketByName(cmd.Context(), token, collectionFlags.bucket, collectionFlags.prefix)
	if err != nil {
		return err
	}
	return render(cmd, c, func(m report.Mode) string { return report.TimeFrames(m, c) })
}
