package export

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// newGitClone creates a bare remote with one commit on main and returns the
// path of a configured working clone.
func newGitClone(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not found in PATH")
	}

	remoteDir := t.TempDir()
	run(t, remoteDir, "git", "init", "--bare")

	workDir := t.TempDir()
	run(t, workDir, "git", "clone", remoteDir, "repo")
	repoDir := filepath.Join(workDir, "repo")

	run(t, repoDir, "git", "config", "user.email", "test@test.com")
	run(t, repoDir, "git", "config", "user.name", "Test")
	run(t, repoDir, "git", "branch", "-m", "main")

	if err := os.WriteFile(filepath.Join(repoDir, ".gitkeep"), []byte(""), 0o644); err != nil {
		t.Fatalf("write .gitkeep: %v", err)
	}
	run(t, repoDir, "git", "add", ".")
	run(t, repoDir, "git", "commit", "-m", "init")
	run(t, repoDir, "git", "push", "origin", "main")
	return repoDir
}

func TestGitDestination(t *testing.T) {
	repoDir := newGitClone(t)
	dest := NewGitDestination(repoDir, "exports", "main")
	name := "records_export_20240301_093000.csv"

	data1 := []byte("id,name,rights,status,remarks,timestamp\n")
	if err := dest.Write(context.Background(), name, data1); err != nil {
		t.Fatalf("first write: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(repoDir, "exports", name))
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if string(got) != string(data1) {
		t.Fatalf("file content mismatch: got %q", string(got))
	}

	// Same content again is a no-op (no commit).
	if err := dest.Write(context.Background(), name, data1); err != nil {
		t.Fatalf("second write (no-op): %v", err)
	}
	if n := commitCount(t, repoDir); n != 2 {
		t.Fatalf("commits = %d, want 2", n)
	}

	data2 := append(data1, []byte("1,A,User,Active,,2024-03-01T09:30:00Z\n")...)
	if err := dest.Write(context.Background(), name, data2); err != nil {
		t.Fatalf("third write: %v", err)
	}
	if n := commitCount(t, repoDir); n != 3 {
		t.Fatalf("commits = %d, want 3", n)
	}
}

func TestGitDestination_Location(t *testing.T) {
	dest := NewGitDestination("/srv/mirror", "data/exports", "main")
	want := filepath.Join("/srv/mirror", "data", "exports", "x.json")
	if got := dest.Location("x.json"); got != want {
		t.Fatalf("Location = %q, want %q", got, want)
	}
}

func commitCount(t *testing.T, dir string) int {
	t.Helper()
	cmd := exec.Command("git", "rev-list", "--count", "HEAD")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("git rev-list: %v", err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(out)))
	if err != nil {
		t.Fatalf("parse commit count %q: %v", out, err)
	}
	return n
}

func run(t *testing.T, dir string, name string, args ...string) {
	t.Helper()
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("%s %v failed: %v", name, args, err)
	}
}
