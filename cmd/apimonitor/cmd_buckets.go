package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"apimonitor/internal/monitor"
	"apimonitor/internal/report"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check the token against the API root",
	Args:  cobra.NoArgs,
	RunE:  runPing,
}

func runPing(cmd *cobra.Command, _ []string) error {
	svc, token, err := newService()
	if err != nil {
		return err
	}
	info, err := svc.MainInfo(cmd.Context(), token)
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	if rootFlags.json {
		return render(cmd, info, nil)
	}

	keys := make([]string, 0, len(info))
	for k := range info {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "OK %s\n", app.cfg.APIBaseURL)
	for _, k := range keys {
		fmt.Fprintf(out, "  %s: %v\n", k, info[k])
	}
	return nil
}

var bucketsFlags struct {
	name string
}

var bucketsCmd = &cobra.Command{
	Use:   "buckets",
	Short: "List buckets, or look one up by name",
	Args:  cobra.NoArgs,
	RunE:  runBuckets,
}

func init() {
	bucketsCmd.Flags().StringVar(&bucketsFlags.name, "name", "", "Show only the bucket with this name (ignoring case)")
}

func runBuckets(cmd *cobra.Command, _ []string) error {
	svc, token, err := newService()
	if err != nil {
		return err
	}

	var buckets []monitor.BucketInfo
	if bucketsFlags.name != "" {
		b, err := svc.FindBucketByName(cmd.Context(), token, bucketsFlags.name)
		if err != nil {
			return err
		}
		buckets = []monitor.BucketInfo{b}
	} else {
		buckets, err = svc.GetBuckets(cmd.Context(), token)
		if err != nil {
			return err
		}
	}
	return render(cmd, buckets, func(m report.Mode) string { return report.Buckets(m, buckets) })
}

var environmentsFlags struct {
	bucketID string
}

var environmentsCmd = &cobra.Command{
	Use:   "environments",
	Short: "List the shared environments of a bucket",
	Args:  cobra.NoArgs,
	RunE:  runEnvironments,
}

func init() {
	environmentsCmd.Flags().StringVar(&environmentsFlags.bucketID, "bucket-id", "", "Bucket key (required)")
	_ = environmentsCmd.MarkFlagRequired("bucket-id")
}

func runEnvironments(cmd *cobra.Command, _ []string) error {
	svc, token, err := newService()
	if err != nil {
		return err
	}
	envs, err := svc.GetSharedEnvironments(cmd.Context(), token, environmentsFlags.bucketID)
	if err != nil {
		return err
	}
	return render(cmd, envs, func(m report.Mode) string { return report.Environments(m, envs) })
}
