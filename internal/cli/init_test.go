package cli

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	applog "github.com/AdriBusse/FinanZApp2025-sub000/internal/log"
)

func TestGracefulShutdown_RunsCleanupOnSignal(t *testing.T) {
	logger := applog.New(applog.DefaultConfig())

	cleaned := make(chan struct{})
	ctx, done := GracefulShutdown(logger, time.Second, func() { close(cleaned) })

	if err := syscall.Kill(os.Getpid(), syscall.SIGINT); err != nil {
		t.Fatalf("sending signal failed: %v", err)
	}

	select {
	case <-cleaned:
	case <-time.After(5 * time.Second):
		t.Fatal("cleanup was not run on signal")
	}
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("context was not cancelled on signal")
	}
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("shutdown never completed")
	}
}

func TestReadUpload(t *testing.T) {
	upload, err := ReadUpload("")
	if err != nil || upload != nil {
		t.Fatalf("empty path must mean no attachment, got %v err=%v", upload, err)
	}

	path := filepath.Join(t.TempDir(), "receipt.png")
	if err := os.WriteFile(path, []byte("png-bytes"), 0644); err != nil {
		t.Fatalf("writing fixture failed: %v", err)
	}

	upload, err = ReadUpload(path)
	if err != nil {
		t.Fatalf("ReadUpload failed: %v", err)
	}
	if upload.FileName != "receipt.png" {
		t.Fatalf("unexpected file name %q", upload.FileName)
	}
	if upload.ContentType != "image/png" {
		t.Fatalf("unexpected content type %q", upload.ContentType)
	}

	if _, err := ReadUpload(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Fatal("missing file must be an error")
	}
}
