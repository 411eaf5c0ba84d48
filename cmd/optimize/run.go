package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"resume-optimizer/internal/bootstrap"
	"resume-optimizer/internal/optimize"
	"resume-optimizer/internal/prompt"
	"resume-optimizer/internal/shared/config"
	"resume-optimizer/internal/shared/telemetry"
)

type runOptions struct {
	resumeFile string
	jdFile     string
	jdText     string
	mode       string
	format     string
	out        string
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Optimize a resume against a job description",
		Long:  "Extracts the resume, calls the configured model once, validates the answer and writes it as JSON, HTML or PDF.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOptimize(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.resumeFile, "resume", "r", "", "Path to the resume (pdf, docx, txt, or a record JSON with --mode refine)")
	cmd.Flags().StringVarP(&opts.jdFile, "jd", "j", "", "Path to the job description")
	cmd.Flags().StringVar(&opts.jdText, "jd-text", "", "Job description text")
	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "initial", "Prompt mode: initial or refine")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "json", "Output format: json, html or pdf")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Output path (stdout when empty)")
	_ = cmd.MarkFlagRequired("resume")
	return cmd
}

func runOptimize(cmd *cobra.Command, opts *runOptions) error {
	ctx := cmd.Context()
	mode, err := prompt.ParseMode(opts.mode)
	if err != nil {
		return err
	}

	resumeText, err := readSource(ctx, opts.resumeFile)
	if err != nil {
		return fmt.Errorf("resume: %w", err)
	}
	jd := strings.TrimSpace(opts.jdText)
	if opts.jdFile != "" {
		if jd, err = readSource(ctx, opts.jdFile); err != nil {
			return fmt.Errorf("job description: %w", err)
		}
	}
	if jd == "" {
		return fmt.Errorf("one of --jd or --jd-text is required")
	}

	cfg := config.Load()
	telemetry.SetLevel(cfg.LogLevel)
	client, err := bootstrap.BuildLLM(ctx, cfg)
	if err != nil {
		return err
	}
	svc := optimize.NewService(client, nil, nil)
	svc.ModelTimeout = cfg.ModelTimeout

	result, err := svc.Optimize(ctx, optimize.Request{ResumeText: resumeText, JobDescription: jd, Mode: mode})
	if err != nil {
		if raw := optimize.RawOf(err); raw != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "raw model response:\n%s\n", raw)
		}
		return err
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s %s: %s\n", w.Code, w.Field, w.Message)
	}

	data, err := renderRecord(ctx, result.Record, opts.format, cfg.ChromePath)
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), opts.out, data)
}
