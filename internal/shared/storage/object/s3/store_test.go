package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "uploads/1.pdf", want: "uploads/1.pdf"},
		{name: "simple prefix", prefix: "root", key: "uploads/1.pdf", want: "root/uploads/1.pdf"},
		{name: "prefix trailing slash", prefix: "root/", key: "uploads/1.pdf", want: "root/uploads/1.pdf"},
		{name: "prefix and key slashes", prefix: "/root/", key: "/uploads/1.pdf", want: "root/uploads/1.pdf"},
		{name: "nested prefix", prefix: "root/sub", key: "responses/1_response.txt", want: "root/sub/responses/1_response.txt"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

type fakeUploader struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakeUploader) Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	f.input = input
	data, _ := io.ReadAll(input.Body)
	f.body = string(data)
	return &manager.UploadOutput{}, f.err
}

func TestPutBuildsKeyAndEncryption(t *testing.T) {
	up := &fakeUploader{}
	store := &Store{uploader: up, bucket: "archive", prefix: "resume", kmsKeyID: "kms-1", sse: true}

	key, err := store.Put(context.Background(), "uploads", "12.pdf", "application/pdf", strings.NewReader("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if key != "uploads/12.pdf" {
		t.Fatalf("unexpected key %q", key)
	}
	if got := aws.ToString(up.input.Key); got != "resume/uploads/12.pdf" {
		t.Fatalf("unexpected object key %q", got)
	}
	if up.input.ServerSideEncryption != s3types.ServerSideEncryptionAwsKms {
		t.Fatalf("expected KMS encryption, got %q", up.input.ServerSideEncryption)
	}
	if up.body != "%PDF-1.4" {
		t.Fatalf("unexpected body %q", up.body)
	}
}

func TestPutWithoutSSEForCustomEndpoint(t *testing.T) {
	up := &fakeUploader{}
	store := &Store{uploader: up, bucket: "archive", sse: false}

	if _, err := store.Put(context.Background(), "responses", "1_response.txt", "text/plain", strings.NewReader("x")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if up.input.ServerSideEncryption != "" {
		t.Fatalf("expected no SSE header, got %q", up.input.ServerSideEncryption)
	}
}

func TestPutWrapsUploadError(t *testing.T) {
	up := &fakeUploader{err: errors.New("network down")}
	store := &Store{uploader: up, bucket: "archive"}

	_, err := store.Put(context.Background(), "responses", "1_response.txt", "text/plain", strings.NewReader("x"))
	if err == nil || !strings.Contains(err.Error(), "network down") {
		t.Fatalf("expected wrapped upload error, got %v", err)
	}
	if _, err := store.Put(context.Background(), "../x", "a.txt", "text/plain", strings.NewReader("x")); err == nil {
		t.Fatalf("expected traversal folder to be rejected")
	}
}
