package optimize

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-optimizer/internal/prompt"
	"resume-optimizer/internal/shared/server/middleware"
	"resume-optimizer/internal/shared/server/respond"
	"resume-optimizer/resume/contract"
	"resume-optimizer/resume/model"
	"resume-optimizer/resume/render"
)

const (
	maxUploadSize = 10 << 20

	msgUnreadable = "Could not read your document"
	msgFailed     = "Optimization failed"

	warningsHeader = "X-Resume-Warnings"
)

// PDFRenderer turns a record into PDF bytes.
type PDFRenderer interface {
	Render(ctx context.Context, record model.ResumeRecord) ([]byte, error)
}

// Handler wires HTTP handlers to the optimize service.
type Handler struct {
	Svc *Service
	PDF PDFRenderer
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, pdf PDFRenderer) *Handler {
	return &Handler{Svc: svc, PDF: pdf}
}

// RegisterRoutes attaches the optimize routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/parse-pdf", h.parseDocument)
	rg.POST("/optimize", h.optimize)
	rg.POST("/render", h.render)
}

type optimizeRequest struct {
	ResumeText     string `json:"resumeText"`
	JobDescription string `json:"jobDescription"`
	Mode           string `json:"mode"`
	Type           string `json:"type"`
	SubmissionID   string `json:"submissionId"`
}

type optimizeEnvelope struct {
	Record       model.ResumeRecord `json:"record"`
	Warnings     []contract.Warning `json:"warnings"`
	SubmissionID string             `json:"submissionId,omitempty"`
	Mode         prompt.Mode        `json:"mode"`
}

type renderRequest struct {
	Record *model.ResumeRecord `json:"record"`
	Format string              `json:"format"`
}

func (h *Handler) parseDocument(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize+1<<20)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, string(KindInvalidInput), msgUnreadable, []map[string]string{
			{"field": "file", "issue": "missing"},
		})
		return
	}
	if fileHeader.Size > maxUploadSize {
		respond.Error(c, http.StatusBadRequest, string(KindInvalidInput), msgUnreadable, []map[string]string{
			{"field": "file", "issue": "too_large"},
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, string(KindExtraction), msgUnreadable, nil)
		return
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(file, maxUploadSize+1)); err != nil {
		respond.Error(c, http.StatusBadRequest, string(KindExtraction), msgUnreadable, nil)
		return
	}

	ingested, err := h.Svc.Ingest(c.Request.Context(), fileHeader.Filename, fileHeader.Header.Get("Content-Type"), buf.Bytes())
	if ingested.SubmissionID != "" {
		c.Set(middleware.SubmissionIDKey, ingested.SubmissionID)
	}
	if err != nil {
		c.Set(middleware.OutcomeKey, string(KindOf(err)))
		respond.Error(c, http.StatusBadRequest, string(KindOf(err)), msgUnreadable, nil)
		return
	}
	c.Set(middleware.OutcomeKey, "ok")
	respond.OK(c, ingested)
}

func (h *Handler) optimize(c *gin.Context) {
	var body optimizeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.Error(c, http.StatusBadRequest, string(KindInvalidInput), "request body must be JSON", nil)
		return
	}

	rawMode := body.Mode
	if rawMode == "" {
		rawMode = body.Type
	}
	mode, err := prompt.ParseMode(rawMode)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, string(KindInvalidInput), "mode must be initial or refine", []map[string]string{
			{"field": "mode", "issue": "invalid"},
		})
		return
	}
	c.Set(middleware.ModeKey, mode.String())
	if body.SubmissionID != "" {
		c.Set(middleware.SubmissionIDKey, body.SubmissionID)
	}

	result, err := h.Svc.Optimize(c.Request.Context(), Request{
		ResumeText:     body.ResumeText,
		JobDescription: body.JobDescription,
		Mode:           mode,
		SubmissionID:   body.SubmissionID,
	})
	if err != nil {
		h.optimizeFailed(c, err)
		return
	}
	c.Set(middleware.OutcomeKey, "ok")
	c.Header(warningsHeader, strconv.Itoa(len(result.Warnings)))

	if withWarnings, _ := strconv.ParseBool(c.Query("withWarnings")); withWarnings {
		warnings := result.Warnings
		if warnings == nil {
			warnings = []contract.Warning{}
		}
		respond.OK(c, optimizeEnvelope{
			Record:       result.Record,
			Warnings:     warnings,
			SubmissionID: result.SubmissionID,
			Mode:         result.Mode,
		})
		return
	}

	payload, err := contract.Marshal(result.Record)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, string(KindInternal), msgFailed, nil)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}

func (h *Handler) optimizeFailed(c *gin.Context, err error) {
	kind := KindOf(err)
	c.Set(middleware.OutcomeKey, string(kind))

	switch kind {
	case KindInvalidInput:
		respond.Error(c, http.StatusBadRequest, string(kind), "resumeText and jobDescription are required", nil)
	case KindMalformed:
		respond.Failure(c, http.StatusBadGateway, respond.ErrorResponse{Error: msgFailed, Code: string(kind), Raw: RawOf(err)})
	case KindModel:
		var failure *Failure
		if errors.As(err, &failure) && failure.Timeout() {
			respond.Error(c, http.StatusGatewayTimeout, string(kind), msgFailed, nil)
			return
		}
		respond.Error(c, http.StatusBadGateway, string(kind), msgFailed, nil)
	default:
		respond.Error(c, http.StatusInternalServerError, string(KindInternal), msgFailed, nil)
	}
}

func (h *Handler) render(c *gin.Context) {
	var body renderRequest
	if err := c.ShouldBindJSON(&body); err != nil || body.Record == nil {
		respond.Error(c, http.StatusBadRequest, string(KindInvalidInput), "record is required", nil)
		return
	}
	record := *body.Record
	record.Normalize()
	if err := record.Validate(); err != nil {
		respond.Error(c, http.StatusBadRequest, string(KindInvalidInput), err.Error(), []map[string]string{
			{"field": "record", "issue": "invalid"},
		})
		return
	}

	var (
		data        []byte
		err         error
		contentType string
		fileName    string
	)
	switch strings.ToLower(strings.TrimSpace(body.Format)) {
	case "", "pdf":
		if h.PDF == nil {
			err = errors.New("pdf renderer is not configured")
			break
		}
		data, err = h.PDF.Render(c.Request.Context(), record)
		contentType = "application/pdf"
		fileName = render.FileName(record)
	case "html":
		data, err = render.HTML(record)
		contentType = "text/html; charset=utf-8"
		fileName = render.FileNameWithExt(record, ".html")
	default:
		respond.Error(c, http.StatusBadRequest, string(KindInvalidInput), "format must be pdf or html", []map[string]string{
			{"field": "format", "issue": "invalid"},
		})
		return
	}
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "render_error", "Could not render your resume", nil)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, contentType, data)
}
