package storage

import (
	"errors"
	"fmt"
	"testing"
)

type timeoutErr struct{}

func (timeoutErr) Error() string { return "something slow" }
func (timeoutErr) Timeout() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind error
	}{
		{"deadline", errors.New("context deadline exceeded"), ErrTimeout},
		{"typed timeout", fmt.Errorf("get: %w", timeoutErr{}), ErrTimeout},
		{"AccessDenied", errors.New("AccessDenied: you do not have access"), ErrAccessDenied},
		{"HTTP 403", errors.New("received status 403"), ErrAccessDenied},
		{"permission denied", errors.New("open /data/out: permission denied"), ErrPermissionDenied},
		{"no space", errors.New("write /data/out: no space left on device"), ErrDiskFull},
		{"no such file", errors.New("open /missing: no such file or directory"), ErrNotFound},
		{"NoSuchKey", errors.New("NoSuchKey: The specified key does not exist"), ErrNotFound},
		{"exists", errors.New("path already exists"), ErrExists},
		{"SlowDown", errors.New("SlowDown: reduce your request rate"), ErrThrottled},
		{"credentials", errors.New("NoCredentialProviders: no valid providers"), ErrAuth},
		{"connection refused", errors.New("dial tcp 127.0.0.1:9000: connection refused"), ErrNetwork},
		{"unknown", errors.New("something odd"), ErrUnclassified},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(tt.err); got != tt.wantKind {
				t.Errorf("classify(%q) = %v, want %v", tt.err, got, tt.wantKind)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	if wrap("put", "x", nil) != nil {
		t.Error("wrap(nil) should be nil")
	}

	cause := errors.New("no space left on device")
	err := wrap("put", "a.png", cause)

	var se *StorageError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StorageError, got %T", err)
	}
	if se.Op != "put" || se.Name != "a.png" {
		t.Errorf("Op/Name = %s/%s", se.Op, se.Name)
	}
	if !errors.Is(err, ErrDiskFull) {
		t.Error("errors.Is(err, ErrDiskFull) = false")
	}
	if !errors.Is(err, cause) {
		t.Error("cause should remain in the chain")
	}
	if wrap("get", "b", err) != err {
		t.Error("already classified errors should pass through")
	}
}
