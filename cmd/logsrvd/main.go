// Command logsrvd is the logging service daemon: it listens on a Unix
// domain socket, serves the wire protocol in internal/wire, and keeps
// per-channel logger state in memory in internal/logsvc.
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
