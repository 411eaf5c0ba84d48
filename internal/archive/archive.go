// Package archive persists uploaded documents and raw model responses
// without ever blocking or failing the request that produced them.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"resume-optimizer/internal/shared/metrics"
	"resume-optimizer/internal/shared/storage/object"
	"resume-optimizer/internal/shared/telemetry"
)

const defaultTimeout = 30 * time.Second

// Archiver runs archival writes in the background. A nil store disables it.
type Archiver struct {
	store   object.Store
	timeout time.Duration
	wg      sync.WaitGroup

	// OnError, if set, observes every swallowed failure.
	OnError func(folder, name string, err error)
}

// New returns an Archiver writing to store with a per-write timeout.
func New(store object.Store, timeout time.Duration) *Archiver {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Archiver{store: store, timeout: timeout}
}

// Enabled reports whether writes go anywhere.
func (a *Archiver) Enabled() bool {
	return a != nil && a.store != nil
}

// ArchiveUpload stores the uploaded document as uploads/<id><ext>.
func (a *Archiver) ArchiveUpload(ctx context.Context, id, fileName, contentType string, data []byte) {
	name := id + uploadExt(fileName, contentType)
	a.put(ctx, object.FolderUploads, name, contentType, data)
}

// ArchiveResponse stores raw model output as responses/<id>_response.txt.
func (a *Archiver) ArchiveResponse(ctx context.Context, id, raw string) {
	a.put(ctx, object.FolderResponses, id+"_response.txt", "text/plain; charset=utf-8", []byte(raw))
}

// Wait blocks until in-flight writes finish or ctx is done.
func (a *Archiver) Wait(ctx context.Context) error {
	if a == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Archiver) put(ctx context.Context, folder, name, contentType string, data []byte) {
	if !a.Enabled() {
		return
	}
	bg := telemetry.Detach(ctx)
	payload := append([]byte(nil), data...)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				a.fail(bg, folder, name, fmt.Errorf("panic: %v", rec))
			}
		}()

		wctx, cancel := context.WithTimeout(bg, a.timeout)
		defer cancel()

		start := time.Now()
		key, err := a.store.Put(wctx, folder, name, contentType, bytes.NewReader(payload))
		if err != nil {
			a.fail(bg, folder, name, err)
			return
		}
		telemetry.Info("archive.stored", map[string]any{
			"request_id":  telemetry.RequestID(bg),
			"folder":      folder,
			"name":        name,
			"key":         key,
			"bytes":       len(payload),
			"duration_ms": time.Since(start).Milliseconds(),
		})
	}()
}

func (a *Archiver) fail(ctx context.Context, folder, name string, err error) {
	metrics.IncArchiveFailed()
	telemetry.Error("archive.failed", map[string]any{
		"request_id": telemetry.RequestID(ctx),
		"kind":       "archival_error",
		"folder":     folder,
		"name":       name,
		"err":        err.Error(),
	})
	if a.OnError != nil {
		a.OnError(folder, name, err)
	}
}

func uploadExt(fileName, contentType string) string {
	if ext := strings.ToLower(filepath.Ext(fileName)); ext != "" && len(ext) <= 6 {
		return ext
	}
	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch mediaType {
	case "application/pdf":
		return ".pdf"
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return ".docx"
	default:
		return ".bin"
	}
}
