package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// warning prints a warning message to standard error.
func warning(message string) {
	fmt.Fprintln(color.Error, color.YellowString("Warning:"), message)
}

// fail prints an error message to standard error and terminates the process
// with a nonzero exit code.
func fail(err error) {
	fmt.Fprintln(color.Error, color.RedString("Error:"), err)
	os.Exit(1)
}
