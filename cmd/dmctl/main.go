// Command dmctl is the administration tool of the data manager.
package main

import (
	"os"

	"github.com/qbic/datamanager/cmd/dmctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
