package executor

import (
	"context"
	"os/exec"
	"strings"
	"testing"
)

func requireBinary(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available: %v", name, err)
	}
}

func TestExecute(t *testing.T) {
	requireBinary(t, "echo")

	out, err := New().Execute(context.Background(), "echo", "hello")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if strings.TrimSpace(out) != "hello" {
		t.Errorf("Execute() = %q, want hello", out)
	}
}

func TestExecuteCancelled(t *testing.T) {
	requireBinary(t, "sleep")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New().Execute(ctx, "sleep", "5"); err == nil {
		t.Error("Execute() should fail once ctx is cancelled")
	}
}

func TestExecuteWithInput(t *testing.T) {
	requireBinary(t, "cat")

	out, err := New().ExecuteWithInput(context.Background(), strings.NewReader("piped"), "cat")
	if err != nil {
		t.Fatalf("ExecuteWithInput() error = %v", err)
	}
	if string(out) != "piped" {
		t.Errorf("ExecuteWithInput() = %q, want piped", out)
	}
}

func TestExecuteFailure(t *testing.T) {
	requireBinary(t, "false")

	if _, err := New().Execute(context.Background(), "false"); err == nil {
		t.Error("Execute() should fail for a non-zero exit")
	}
}
