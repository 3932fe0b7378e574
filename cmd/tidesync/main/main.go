package main

import (
	"os"

	"github.com/arthur-debert/tidesync/cmd/tidesync"
)

func main() {
	rootCmd := tidesync.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		// Commands print their own styled error line; just exit non-zero
		os.Exit(1)
	}
}
