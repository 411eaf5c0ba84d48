package optimize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"resume-optimizer/internal/llm"
	"resume-optimizer/resume/model"
)

type stubPDF struct {
	data []byte
	err  error
}

func (s stubPDF) Render(ctx context.Context, record model.ResumeRecord) ([]byte, error) {
	return s.data, s.err
}

func newTestRouter(svc *Service, pdf PDFRenderer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(svc, pdf).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func postJSON(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func decodeBody(t *testing.T, resp *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	return body
}

func TestOptimizeRoute(t *testing.T) {
	client := &mockLLM{}
	client.On("Generate", mock.Anything, mock.Anything).Return(readFixture(t, "acme_response.json"), nil)
	svc, _ := newTestService(client, nil)
	router := newTestRouter(svc, nil)

	resp := postJSON(t, router, "/api/v1/optimize", map[string]string{
		"resumeText":     readFixture(t, "acme_resume.txt"),
		"jobDescription": "Kubernetes, Go",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "0", resp.Header().Get("X-Resume-Warnings"))

	var record model.ResumeRecord
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &record))
	assert.Equal(t, "Acme Corp", record.WorkExperience[0].Company)
}

func TestOptimizeRouteWithWarnings(t *testing.T) {
	client := &mockLLM{}
	client.On("Generate", mock.Anything, mock.Anything).Return(`{"personal_info":{"full_name":""},"metadata":{"estimated_ats_score":140}}`, nil)
	svc, _ := newTestService(client, nil)
	router := newTestRouter(svc, nil)

	resp := postJSON(t, router, "/api/v1/optimize?withWarnings=true", map[string]string{
		"resumeText":     "Jane Doe",
		"jobDescription": "Go",
		"type":           "boost",
		"submissionId":   "3",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	body := decodeBody(t, resp)
	assert.Equal(t, "refine", body["mode"])
	assert.Equal(t, "3", body["submissionId"])
	warnings, ok := body["warnings"].([]any)
	require.True(t, ok)
	assert.NotEmpty(t, warnings)
	assert.Equal(t, strconv.Itoa(len(warnings)), resp.Header().Get("X-Resume-Warnings"))
}

func TestOptimizeRouteFailures(t *testing.T) {
	tests := []struct {
		name    string
		body    map[string]string
		raw     string
		err     error
		status  int
		code    string
		wantRaw string
	}{
		{name: "missing jd", body: map[string]string{"resumeText": "x"}, status: http.StatusBadRequest, code: "invalid_input"},
		{name: "bad mode", body: map[string]string{"resumeText": "x", "jobDescription": "y", "mode": "rewrite"}, status: http.StatusBadRequest, code: "invalid_input"},
		{name: "malformed", body: map[string]string{"resumeText": "x", "jobDescription": "y"}, raw: "Sorry, I cannot help.", status: http.StatusBadGateway, code: "malformed_response", wantRaw: "Sorry, I cannot help."},
		{name: "model error", body: map[string]string{"resumeText": "x", "jobDescription": "y"}, err: errors.New("quota exceeded"), status: http.StatusBadGateway, code: "model_error"},
		{name: "timeout", body: map[string]string{"resumeText": "x", "jobDescription": "y"}, err: context.DeadlineExceeded, status: http.StatusGatewayTimeout, code: "model_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := llm.ClientFunc(func(ctx context.Context, p string) (string, error) {
				return tt.raw, tt.err
			})
			svc, _ := newTestService(client, nil)
			router := newTestRouter(svc, nil)

			resp := postJSON(t, router, "/api/v1/optimize", tt.body)
			require.Equal(t, tt.status, resp.Code, resp.Body.String())
			body := decodeBody(t, resp)
			assert.Equal(t, tt.code, body["code"])
			if tt.status == http.StatusBadGateway || tt.status == http.StatusGatewayTimeout {
				assert.Equal(t, "Optimization failed", body["error"])
			}
			if tt.wantRaw != "" {
				assert.Equal(t, tt.wantRaw, body["raw"])
			} else {
				assert.NotContains(t, body, "raw")
			}
		})
	}
}

func multipartUpload(t *testing.T, fileName, contentType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/parse-pdf", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestParseDocumentRoute(t *testing.T) {
	svc, _ := newTestService(&mockLLM{}, nil)
	router := newTestRouter(svc, nil)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, multipartUpload(t, "cv.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", buildDOCX(t, "Jane Doe")))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	body := decodeBody(t, resp)
	assert.Equal(t, "Jane Doe", body["text"])
	assert.Equal(t, "1", body["submissionId"])

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, multipartUpload(t, "cv.pdf", "application/pdf", []byte("%PDF-1.4 garbage")))
	require.Equal(t, http.StatusBadRequest, resp.Code)
	body = decodeBody(t, resp)
	assert.Equal(t, "Could not read your document", body["error"])
	assert.Equal(t, "extraction_error", body["code"])

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/parse-pdf", strings.NewReader("")))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestRenderRoute(t *testing.T) {
	svc, _ := newTestService(&mockLLM{}, nil)
	record := model.ResumeRecord{PersonalInfo: model.PersonalInfo{FullName: "Jane Doe"}}

	router := newTestRouter(svc, stubPDF{data: []byte("%PDF-fake")})
	resp := postJSON(t, router, "/api/v1/render", map[string]any{"record": record})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "application/pdf", resp.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Jane_Doe_resume.pdf"`, resp.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-fake", resp.Body.String())

	resp = postJSON(t, router, "/api/v1/render", map[string]any{"record": record, "format": "html"})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Jane Doe")
	assert.Equal(t, `attachment; filename="Jane_Doe_resume.html"`, resp.Header().Get("Content-Disposition"))

	resp = postJSON(t, router, "/api/v1/render", map[string]any{"record": model.ResumeRecord{}})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = postJSON(t, router, "/api/v1/render", map[string]any{"record": record, "format": "odt"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	broken := newTestRouter(svc, stubPDF{err: errors.New("chrome not found")})
	resp = postJSON(t, broken, "/api/v1/render", map[string]any{"record": record})
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
}
