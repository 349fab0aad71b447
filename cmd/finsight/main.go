// Command finsight is the terminal client and local API server for the
// FinSight financial filings agent.
package main

import (
	"os"
)

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
