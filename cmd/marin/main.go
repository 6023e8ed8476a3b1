// Command marin is the Marin compiler and VM's command-line entry point.
// It is a thin driver (§10.2): stage the standard library plus every file
// named on the command line, run the pipeline, render the diagnostic
// batch, run the VM when nothing failed, and set the process exit code.
// It owns no type-checking or VM logic of its own.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
