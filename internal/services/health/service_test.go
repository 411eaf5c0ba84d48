package health

import "testing"

func TestStatus(t *testing.T) {
	got := NewService("gemini", "s3").Status()
	if got["ok"] != true || got["provider"] != "gemini" || got["archive"] != "s3" {
		t.Fatalf("unexpected status: %v", got)
	}

	var nilSvc *Service
	if nilSvc.Status()["ok"] != true {
		t.Fatalf("nil service should still report ok")
	}
}
