package gitops

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Init initializes a new git repository at dir.
func Init(dir string) error {
	cmd := exec.Command("git", "init")
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("git init: %w", err)
	}
	return nil
}

// CommitAll stages all files and creates a commit. Returns the short commit hash.
func CommitAll(dir, message, authorName, authorEmail string) (string, error) {
	return commit(dir, []string{"."}, message, authorName, authorEmail)
}

// CommitPaths stages the given paths and creates a commit. Paths outside the
// repository containing dir are ignored. Returns the short commit hash, or ""
// when none of the paths had changes.
func CommitPaths(dir string, paths []string, message, authorName, authorEmail string) (string, error) {
	top, err := Toplevel(dir)
	if err != nil {
		return "", err
	}

	var inside []string
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return "", fmt.Errorf("resolving %s: %w", p, err)
		}
		abs, err = filepath.EvalSymlinks(abs)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(top, abs)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		inside = append(inside, rel)
	}
	if len(inside) == 0 {
		return "", nil
	}

	changed, err := hasChanges(top, inside)
	if err != nil || !changed {
		return "", err
	}
	return commit(top, inside, message, authorName, authorEmail)
}

func commit(dir string, paths []string, message, authorName, authorEmail string) (string, error) {
	author := fmt.Sprintf("%s <%s>", authorName, authorEmail)

	// Stage.
	add := exec.Command("git", append([]string{"add", "-A", "--"}, paths...)...)
	add.Dir = dir
	if out, err := add.CombinedOutput(); err != nil {
		return "", fmt.Errorf("git add: %s: %w", out, err)
	}

	// Commit, with the author as committer so no git identity is needed.
	ci := exec.Command("git",
		"-c", "user.name="+authorName,
		"-c", "user.email="+authorEmail,
		"commit", "-m", message, "--author", author)
	ci.Dir = dir
	if out, err := ci.CombinedOutput(); err != nil {
		return "", fmt.Errorf("git commit: %s: %w", out, err)
	}

	// Get short hash.
	rev := exec.Command("git", "rev-parse", "--short", "HEAD")
	rev.Dir = dir
	out, err := rev.Output()
	if err != nil {
		return "", fmt.Errorf("git rev-parse: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

func hasChanges(dir string, paths []string) (bool, error) {
	status := exec.Command("git", append([]string{"status", "--porcelain", "--"}, paths...)...)
	status.Dir = dir
	out, err := status.Output()
	if err != nil {
		return false, fmt.Errorf("git status: %w", err)
	}
	return len(strings.TrimSpace(string(out))) > 0, nil
}

// Toplevel returns the root of the work tree containing dir.
func Toplevel(dir string) (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git rev-parse: %w", err)
	}
	top := strings.TrimSpace(string(out))
	// Symlinked temp dirs (macOS /var) make Rel against an unresolved path fail.
	if resolved, err := filepath.EvalSymlinks(top); err == nil {
		top = resolved
	}
	return top, nil
}

// IsRepo reports whether dir is inside a git repository.
func IsRepo(dir string) bool {
	_, err := Toplevel(dir)
	return err == nil
}

// RunMessage is the commit message for a resolution run.
func RunMessage(runID string, clones, rewrites int) string {
	return fmt.Sprintf("resolve: split shared accounts (%d created, %d records rewritten)\n\nRun: %s", clones, rewrites, runID)
}
