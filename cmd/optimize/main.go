// Command optimize runs the resume optimizer from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "optimize",
		Short:         "Tailor a resume to a job description",
		Long:          "optimize extracts a resume, asks the configured model to tailor it to a job description, and renders the result as JSON, HTML or PDF.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newRenderCmd(), newVerifyCmd(), newPromptCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
