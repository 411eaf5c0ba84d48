// Package optimize runs the resume optimization flow: ingest a document,
// prompt the model, validate its answer and archive the artifacts.
package optimize

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"resume-optimizer/internal/archive"
	"resume-optimizer/internal/extract"
	"resume-optimizer/internal/llm"
	"resume-optimizer/internal/prompt"
	"resume-optimizer/internal/sequence"
	"resume-optimizer/internal/shared/metrics"
	"resume-optimizer/internal/shared/telemetry"
	"resume-optimizer/resume/contract"
	"resume-optimizer/resume/model"
)

// DefaultModelTimeout bounds a single model call.
const DefaultModelTimeout = 90 * time.Second

// Request is one optimize or refine call. For ModeRefine, ResumeText holds
// the previous record as JSON.
type Request struct {
	ResumeText     string      `validate:"required"`
	JobDescription string      `validate:"required"`
	Mode           prompt.Mode `validate:"omitempty,oneof=initial refine"`
	SubmissionID   string      `validate:"max=128"`
}

// Result is a validated record plus the warnings raised while producing it.
type Result struct {
	Record         model.ResumeRecord
	JobDescription string
	Mode           prompt.Mode
	Warnings       []contract.Warning
	SubmissionID   string
}

// Ingested is the text extracted from an upload and its submission id.
type Ingested struct {
	Text         string `json:"text"`
	SubmissionID string `json:"submissionId"`
}

// Service holds the collaborators of the flow. LLM is required; a nil
// Archiver or Sequencer disables archival or falls back to UUID ids.
type Service struct {
	LLM          llm.Client
	Archiver     *archive.Archiver
	Sequencer    sequence.Sequencer
	ModelTimeout time.Duration
	Observer     Observer
}

// requestValidator caches struct metadata and is safe for concurrent use.
var requestValidator = validator.New(validator.WithRequiredStructEnabled())

// NewService returns a Service with the default model timeout.
func NewService(client llm.Client, archiver *archive.Archiver, seq sequence.Sequencer) *Service {
	return &Service{
		LLM:          client,
		Archiver:     archiver,
		Sequencer:    seq,
		ModelTimeout: DefaultModelTimeout,
	}
}

// Ingest extracts text from an uploaded document and assigns it a
// submission id. The upload is archived as uploads/<id><ext>.
func (s *Service) Ingest(ctx context.Context, fileName, contentType string, data []byte) (Ingested, error) {
	r := newRun(ctx, "ingest", "", s.Observer)
	r.to(StateIngesting)

	id := s.nextSubmissionID(ctx)
	r.submissionID = id
	if len(data) > 0 {
		s.Archiver.ArchiveUpload(ctx, id, fileName, extract.DetectMimeType(contentType, fileName, data), data)
	}

	text, err := extract.Text(ctx, data, contentType, fileName)
	if err != nil {
		failure := &Failure{Kind: KindExtraction, Err: err}
		r.fail(failure.Kind, err)
		return Ingested{}, failure
	}

	r.to(StateDone)
	return Ingested{Text: text, SubmissionID: id}, nil
}

// Optimize prompts the model once and validates its answer. Raw model text
// is archived on success and on failure.
func (s *Service) Optimize(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	req.ResumeText = strings.TrimSpace(req.ResumeText)
	req.JobDescription = strings.TrimSpace(req.JobDescription)
	req.SubmissionID = strings.TrimSpace(req.SubmissionID)
	if req.Mode == "" {
		req.Mode = prompt.ModeInitial
	}

	r := newRun(ctx, "optimize", req.SubmissionID, s.Observer)
	metrics.IncOptimizeStarted()

	if err := requestValidator.Struct(req); err != nil {
		return Result{}, s.fail(r, start, &Failure{Kind: KindInvalidInput, Err: fmt.Errorf("%w: %s", ErrInvalidInput, describeValidation(err))})
	}

	r.to(StatePrompting)
	text := prompt.Build(req.Mode, req.ResumeText, req.JobDescription)

	r.to(StateAwaitingModel)
	raw, err := s.generate(ctx, text)
	if err != nil {
		s.archiveRaw(ctx, req.SubmissionID, raw)
		return Result{}, s.fail(r, start, &Failure{Kind: KindModel, Err: err, Raw: raw})
	}

	r.to(StateValidating)
	record, warnings, err := contract.Sanitize(raw)
	s.archiveRaw(ctx, req.SubmissionID, raw)
	if err != nil {
		return Result{}, s.fail(r, start, &Failure{Kind: KindMalformed, Err: err, Raw: raw})
	}

	warnings = append(warnings, contract.Warnings(record, req.ResumeText)...)
	if len(warnings) > 0 {
		metrics.IncLowConfidence()
		telemetry.Warn("optimize.low_confidence", map[string]any{
			"request_id":    telemetry.RequestID(ctx),
			"submission_id": req.SubmissionID,
			"warnings":      len(warnings),
		})
	}

	r.to(StateDone)
	metrics.IncOptimizeCompleted()
	metrics.ObserveOptimizeDurationMs(float64(time.Since(start).Milliseconds()))
	return Result{
		Record:         record,
		JobDescription: req.JobDescription,
		Mode:           req.Mode,
		Warnings:       warnings,
		SubmissionID:   req.SubmissionID,
	}, nil
}

func (s *Service) generate(ctx context.Context, text string) (string, error) {
	timeout := s.ModelTimeout
	if timeout <= 0 {
		timeout = DefaultModelTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	raw, err := s.LLM.Generate(callCtx, text)
	if err != nil {
		return raw, llm.Wrap("unknown", err)
	}
	return raw, nil
}

func (s *Service) fail(r *run, start time.Time, failure *Failure) error {
	r.fail(failure.Kind, failure.Err)
	metrics.IncOptimizeFailed(string(failure.Kind))
	metrics.ObserveOptimizeDurationMs(float64(time.Since(start).Milliseconds()))
	return failure
}

// archiveRaw stores raw under the submission id, or a fresh UUID when the
// caller did not send one.
func (s *Service) archiveRaw(ctx context.Context, submissionID, raw string) {
	if raw == "" || !s.Archiver.Enabled() {
		return
	}
	if submissionID == "" {
		submissionID = uuid.NewString()
	}
	s.Archiver.ArchiveResponse(ctx, submissionID, raw)
}

func (s *Service) nextSubmissionID(ctx context.Context) string {
	if s.Sequencer != nil {
		n, err := s.Sequencer.Next(ctx)
		if err == nil {
			return strconv.FormatInt(n, 10)
		}
		telemetry.Warn("sequence.failed", map[string]any{
			"request_id": telemetry.RequestID(ctx),
			"err":        err.Error(),
		})
	}
	return uuid.NewString()
}

func describeValidation(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, ", ")
}
