package gitops

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gitOutput(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	require.NoError(t, err)
	return string(out)
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	err := Init(dir)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, ".git"))
	require.NoError(t, err, ".git directory should exist")
}

func TestIsRepo(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, IsRepo(dir), "empty dir should not be a repo")

	require.NoError(t, Init(dir))
	assert.True(t, IsRepo(dir), "initialized dir should be a repo")

	sub := filepath.Join(dir, "database")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	assert.True(t, IsRepo(sub), "subdirectory of a repo is inside it")
}

func TestCommitAll(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(dir))

	// Create a file to commit.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.txt"), []byte("hello"), 0o644))

	hash, err := CommitAll(dir, "init: test commit", "Test Author", "test@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	assert.Contains(t, gitOutput(t, dir, "log", "--format=%s", "-1"), "init: test commit")
	assert.Contains(t, gitOutput(t, dir, "log", "--format=%an <%ae>", "-1"), "Test Author <test@example.com>")
}

func TestCommitPaths(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(dir))

	records := filepath.Join(dir, "database")
	require.NoError(t, os.MkdirAll(records, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(records, "a.xmo"), []byte("<Objects/>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0o644))
	outside := filepath.Join(t.TempDir(), "Accounts.xxa")
	require.NoError(t, os.WriteFile(outside, []byte("+Cf100 Bank\n"), 0o644))

	hash, err := CommitPaths(records, []string{records, outside}, RunMessage("run-1", 2, 1), "acctsplit", "acctsplit@cleared.dev")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	files := gitOutput(t, dir, "show", "--name-only", "--format=", "HEAD")
	assert.Contains(t, files, "database/a.xmo")
	assert.NotContains(t, files, "unrelated.txt", "only the given paths are staged")

	body := gitOutput(t, dir, "log", "--format=%B", "-1")
	assert.Contains(t, body, "2 created, 1 records rewritten")
	assert.Contains(t, body, "Run: run-1")

	// Nothing changed since the last commit.
	hash, err = CommitPaths(records, []string{records}, "again", "acctsplit", "acctsplit@cleared.dev")
	require.NoError(t, err)
	assert.Empty(t, hash)
}
