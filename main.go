// The main package for the wikiharvest executable.
package main

import (
	"github.com/wikicorpus/wikiharvest/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
