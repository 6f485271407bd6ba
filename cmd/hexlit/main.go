// Command hexlit expands .hexlit manifests into generated Go files.
package main

import (
	"os"

	"github.com/hexlit-dev/hexlit/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
