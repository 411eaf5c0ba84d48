package main

import (
	"github.com/spf13/cobra"

	"resume-optimizer/internal/shared/config"
)

type renderOptions struct {
	recordFile string
	format     string
	out        string
	chromePath string
}

func newRenderCmd() *cobra.Command {
	opts := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a resume record as PDF or HTML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			record, err := readRecord(opts.recordFile)
			if err != nil {
				return err
			}
			if err := record.Validate(); err != nil {
				return err
			}
			chrome := opts.chromePath
			if chrome == "" {
				chrome = config.Load().ChromePath
			}
			data, err := renderRecord(cmd.Context(), record, opts.format, chrome)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts.out, data)
		},
	}
	cmd.Flags().StringVarP(&opts.recordFile, "record", "r", "", "Path to the resume record JSON")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "pdf", "Output format: pdf or html")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Output path (stdout when empty)")
	cmd.Flags().StringVar(&opts.chromePath, "chrome", "", "Chrome executable (defaults to CHROME_PATH or the system browser)")
	_ = cmd.MarkFlagRequired("record")
	return cmd
}
