package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"resume-optimizer/internal/prompt"
)

func newPromptCmd() *cobra.Command {
	var resumeFile, jdFile, mode string
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the prompt that would be sent to the model",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := prompt.ParseMode(mode)
			if err != nil {
				return err
			}
			resume, err := readSource(cmd.Context(), resumeFile)
			if err != nil {
				return err
			}
			jd, err := readSource(cmd.Context(), jdFile)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), prompt.Build(m, resume, jd))
			return nil
		},
	}
	cmd.Flags().StringVarP(&resumeFile, "resume", "r", "", "Path to the resume")
	cmd.Flags().StringVarP(&jdFile, "jd", "j", "", "Path to the job description")
	cmd.Flags().StringVarP(&mode, "mode", "m", "initial", "Prompt mode: initial or refine")
	_ = cmd.MarkFlagRequired("resume")
	_ = cmd.MarkFlagRequired("jd")
	return cmd
}
