// Package report renders monitor view models as terminal or Markdown tables.
package report

import (
	"fmt"
	"strings"
	"time"

	"apimonitor/internal/monitor"
)

// Buckets renders one row per bucket.
func Buckets(m Mode, buckets []monitor.BucketInfo) string {
	tb := NewTable(m)
	tb.Header("Name", "ID", "Default Env", "URI")
	for _, b := range buckets {
		tb.Row(b.Name, b.ID, orDash(b.DefaultEnvironmentID), b.URI)
	}
	tb.Footer("TOTAL", len(buckets), "", "")
	return tb.String()
}

// Tests renders test descriptors with their status and trigger id.
func Tests(m Mode, tests []monitor.TestInfo) string {
	tb := NewTable(m)
	tb.Header("Name", "ID", "Status", "Schedules", "Trigger ID", "Results")
	for _, t := range tests {
		tb.Row(t.Name, t.ID, StatusMark(t.Success), len(t.Schedules), orDash(t.TriggerID), len(t.Results))
	}
	tb.Columns(
		ColumnConfig{Number: 1, MaxWidth: 48},
		ColumnConfig{Number: 4, Align: AlignRight},
		ColumnConfig{Number: 6, Align: AlignRight},
	)
	return tb.String()
}

// Results renders a result history, most recent run first.
func Results(m Mode, results []monitor.TestResult) string {
	sorted := monitor.TestInfo{Results: results}.ResultsByDescTick()

	tb := NewTable(m)
	tb.Header("Run ID", "Test ID", "Started", "Status")
	for _, r := range sorted {
		tb.Row(r.TestResultID, r.TestID, FmtTick(r.RunTick), StatusMark(r.Success))
	}
	return tb.String()
}

// Collection renders a bucket heading followed by its tests and result counts.
func Collection(m Mode, c monitor.TestResultCollection[monitor.TestInfo]) string {
	var b strings.Builder
	writeHeading(&b, m, c.BucketInfo)
	b.WriteString(Tests(m, c.TestData))
	b.WriteString("\n")
	return b.String()
}

// TimeFrames renders a previous/current comparison per test, flagging status changes.
func TimeFrames(m Mode, c monitor.TestResultCollection[monitor.TestResultTimeFrame]) string {
	var b strings.Builder
	writeHeading(&b, m, c.BucketInfo)

	tb := NewTable(m)
	tb.Header("Test", "Previous", "Previous Run", "Current", "Current Run", "Changed")
	changed := 0
	for _, f := range c.TestData {
		prev, cur := f.PreviousTestResult, f.CurrentTestResult
		flip := prev.Success != cur.Success && !prev.IsNotRun()
		if flip {
			changed++
		}
		tb.Row(
			Truncate(f.Name, 48),
			StatusMark(prev.Success), FmtTick(prev.RunTick),
			StatusMark(cur.Success), FmtTick(cur.RunTick),
			BoolMark(flip),
		)
	}
	tb.Footer("TOTAL", len(c.TestData), "", "", "CHANGED", changed)
	b.WriteString(tb.String())
	b.WriteString("\n")
	return b.String()
}

// Environments renders shared environments.
func Environments(m Mode, envs []monitor.Environment) string {
	tb := NewTable(m)
	tb.Header("ID", "Name")
	for _, e := range envs {
		tb.Row(e.ID, e.Name)
	}
	return tb.String()
}

// TriggeredRuns renders the runs a trigger started. A nil list means the
// response carried no run list at all.
func TriggeredRuns(m Mode, runs []monitor.TriggeredRun) string {
	if runs == nil {
		return "no runs reported\n"
	}
	tb := NewTable(m)
	tb.Header("Bucket ID", "Test ID")
	for _, r := range runs {
		tb.Row(r.BucketID, r.TestID)
	}
	tb.Footer("STARTED", len(runs))
	return tb.String()
}

func writeHeading(b *strings.Builder, m Mode, bucket monitor.BucketInfo) {
	if m == Markdown {
		fmt.Fprintf(b, "## [%s](%s)\n\n", bucket.Name, bucket.URI)
		return
	}
	fmt.Fprintf(b, "%s (%s)\n%s\n", bucket.Name, bucket.ID, bucket.URI)
}

// FmtTick formats an epoch-seconds run tick as UTC RFC 3339, or "-" for
// ticks that are not real timestamps.
func FmtTick(tick float64) string {
	if tick <= 0 {
		return "-"
	}
	sec := int64(tick)
	nsec := int64((tick - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec).UTC().Format(time.RFC3339)
}

// StatusMark decorates a success tag for display.
func StatusMark(s monitor.SuccessType) string {
	switch s {
	case monitor.SuccessPass:
		return "✓ pass"
	case monitor.SuccessFail:
		return "✗ fail"
	case monitor.SuccessRemoteServiceError:
		return "! remote service error"
	case "":
		return "-"
	default:
		return string(s)
	}
}

// BoolMark returns "✓" for true and "✗" for false.
func BoolMark(v bool) string {
	if v {
		return "✓"
	}
	return "✗"
}

// Truncate shortens s to maxLen runes, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
