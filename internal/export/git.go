package export

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// GitDestination writes snapshot files into a directory of a local git
// clone, commits, and pushes.
type GitDestination struct {
	repo   string // path to the local clone
	dir    string // directory within the repo
	branch string // branch to commit and push to
}

// NewGitDestination creates a git destination. repo is the path to an
// existing local clone.
func NewGitDestination(repo, dir, branch string) *GitDestination {
	return &GitDestination{
		repo:   repo,
		dir:    dir,
		branch: branch,
	}
}

func (d *GitDestination) file(name string) string {
	return filepath.Join(d.dir, name)
}

// Location returns the path of name inside the clone.
func (d *GitDestination) Location(name string) string {
	return filepath.Join(d.repo, d.file(name))
}

// Write writes data to dir/name, commits, and pushes.
func (d *GitDestination) Write(ctx context.Context, name string, data []byte) error {
	if err := d.git(ctx, "checkout", d.branch); err != nil {
		return fmt.Errorf("git checkout: %w", err)
	}

	// The remote might not have the branch yet.
	_ = d.git(ctx, "pull", "--ff-only", "origin", d.branch)

	filePath := d.Location(name)
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	if err := d.git(ctx, "add", d.file(name)); err != nil {
		return fmt.Errorf("git add: %w", err)
	}

	// Same-second snapshots may rewrite a file with identical content.
	if err := d.git(ctx, "diff", "--cached", "--quiet"); err == nil {
		return nil
	}

	if err := d.git(ctx, "commit", "-m", "export: "+name); err != nil {
		return fmt.Errorf("git commit: %w", err)
	}

	if err := d.git(ctx, "push", "origin", d.branch); err != nil {
		return fmt.Errorf("git push: %w", err)
	}

	return nil
}

func (d *GitDestination) git(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = d.repo
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
