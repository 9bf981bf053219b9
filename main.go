// The main package for the osintnator executable.
package main

import (
	"fmt"
	"os"

	"github.com/osintnator/osintnator/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
