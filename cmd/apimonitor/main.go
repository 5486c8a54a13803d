// apimonitor reports on Runscope API monitoring: buckets, tests, result
// histories and previous/current time frames. It can also start trigger runs
// and serve the same workflows as MCP tools.
//
// Usage:
//
//	apimonitor buckets
//	apimonitor tests --bucket-id=<key> [--prefix=<text>]
//	apimonitor recent --bucket=<name> [--prefix=<text>]
//	apimonitor timeframe --bucket=<name> [--prefix=<text>] -o markdown
//	apimonitor trigger --trigger-id=<id> [--environment-id=<id>]
//	apimonitor serve
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
