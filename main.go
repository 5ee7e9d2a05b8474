// The main package for the launchcrawler executable.
package main

import (
	"github.com/JakeFAU/launch-table-crawler/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
