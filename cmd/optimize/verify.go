package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"resume-optimizer/resume/truth"
)

func newVerifyCmd() *cobra.Command {
	var recordFile, sourceFile string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that a record keeps the facts of its source resume",
		Long:  "Compares names, contact details, companies, roles, dates and education in the record against the source resume and lists every value that does not appear in it.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			record, err := readRecord(recordFile)
			if err != nil {
				return err
			}
			source, err := readSource(cmd.Context(), sourceFile)
			if err != nil {
				return err
			}
			violations := truth.Check(source, record)
			for _, v := range violations {
				fmt.Fprintln(cmd.OutOrStdout(), v.String())
			}
			if len(violations) > 0 {
				return fmt.Errorf("%d value(s) not found in source", len(violations))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return nil
		},
	}
	cmd.Flags().StringVarP(&recordFile, "record", "r", "", "Path to the resume record JSON")
	cmd.Flags().StringVarP(&sourceFile, "source", "s", "", "Path to the source resume (pdf, docx or txt)")
	_ = cmd.MarkFlagRequired("record")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}
