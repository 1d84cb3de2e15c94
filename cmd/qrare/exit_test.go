package main

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/qrare/types"
)

func TestExitErrHandler_NilError(_ *testing.T) {
	// Should not panic or exit on nil error
	exitErrHandler(nil, nil)
}

func TestReport(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{
			name:     "exit code with message",
			err:      cli.Exit("exactly one input file required", 2),
			wantCode: 2,
			wantMsg:  "exactly one input file required\n",
		},
		{
			name:     "exit code without message",
			err:      cli.Exit("", 5),
			wantCode: 5,
			wantMsg:  "",
		},
		{
			name:     "wrapped exit coder",
			err:      errors.Join(errors.New("context"), cli.Exit("inner error", 42)),
			wantCode: 42,
			wantMsg:  "inner error\n",
		},
		{
			name:     "classified error",
			err:      types.NewError(types.KindIntegrity, "verify", "content hash mismatch", nil),
			wantCode: 7,
			wantMsg:  "Error: verify: integrity: content hash mismatch\n",
		},
		{
			name:     "regular error",
			err:      errors.New("regular error"),
			wantCode: 1,
			wantMsg:  "Error: regular error\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if code := report(&buf, tt.err); code != tt.wantCode {
				t.Errorf("code = %d, want %d", code, tt.wantCode)
			}
			if buf.String() != tt.wantMsg {
				t.Errorf("stderr = %q, want %q", buf.String(), tt.wantMsg)
			}
		})
	}
}

func TestReport_MessageSuppression(t *testing.T) {
	for code := range 8 {
		var buf bytes.Buffer
		report(&buf, cli.Exit("", code))
		if strings.Contains(buf.String(), fmt.Sprintf("exit status %d", code)) {
			t.Errorf("code %d: placeholder message printed: %q", code, buf.String())
		}
	}
}
