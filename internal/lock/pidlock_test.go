package lock

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestAcquirePIDLockWritesPID(t *testing.T) {
	t.Parallel()

	lockPath := filepath.Join(t.TempDir(), "com.webshell.app.lock")
	l, err := AcquirePIDLock(lockPath)
	if err != nil {
		t.Fatalf("AcquirePIDLock: %v", err)
	}
	t.Cleanup(func() { _ = l.Release() })

	pid, ok := Holder(lockPath)
	if !ok {
		t.Fatal("Holder found no pid")
	}
	if pid != os.Getpid() {
		t.Fatalf("holder pid = %d, want %d", pid, os.Getpid())
	}
}

func TestSecondAcquireReportsHolder(t *testing.T) {
	t.Parallel()

	lockPath := filepath.Join(t.TempDir(), "app.lock")
	l, err := AcquirePIDLock(lockPath)
	if err != nil {
		t.Fatalf("AcquirePIDLock: %v", err)
	}

	if _, err := AcquirePIDLock(lockPath); !errors.Is(err, ErrHeld) {
		t.Fatalf("second acquire error = %v, want ErrHeld", err)
	}

	if err := l.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, err := os.Stat(lockPath); !os.IsNotExist(err) {
		t.Fatalf("lock file still present after release: %v", err)
	}

	again, err := AcquirePIDLock(lockPath)
	if err != nil {
		t.Fatalf("reacquire: %v", err)
	}
	if err := again.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := again.Release(); err != nil {
		t.Fatalf("second Release: %v", err)
	}
}

func TestPathFor(t *testing.T) {
	tests := []struct {
		identifier string
		want       string
	}{
		{"com.example.app", filepath.Join("data", "com.example.app.lock")},
		{"a/b", filepath.Join("data", "a_b.lock")},
		{"", filepath.Join("data", "webshell.lock")},
	}
	for _, tt := range tests {
		if got := PathFor("data", tt.identifier); got != tt.want {
			t.Errorf("PathFor(%q) = %q, want %q", tt.identifier, got, tt.want)
		}
	}
}
