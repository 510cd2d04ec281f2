package resolve

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/acctsplit/internal/model"
	"github.com/cleared-dev/acctsplit/internal/runlog"
)

func TestOutputsCloseRecordsFailuresInLog(t *testing.T) {
	var logBuf bytes.Buffer
	out := DiscardOutputs(&logBuf, "   ")
	out.closers = append(out.closers, func() error { return errors.New("flushing updatedTree.txt: disk full") })
	require.NoError(t, out.Log.Write(runlog.Tree("AcAP_100", "Cf100")))

	err := out.Close()
	require.Error(t, err)
	assert.Equal(t,
		"[TREE] Added AcAP_100 under Cf100\n[ERROR] closing outputs: flushing updatedTree.txt: disk full\n",
		logBuf.String())
}

func TestOpenOutputsFlushFailureReachesLog(t *testing.T) {
	dir := t.TempDir()
	paths := OutputPaths{
		Definitions: filepath.Join(dir, "Accounts.xxa"),
		Tree:        filepath.Join(dir, "updatedTree.txt"),
		Created:     filepath.Join(dir, "createdAccounts.txt"),
		Matches:     filepath.Join(dir, "matches.txt"),
		Log:         filepath.Join(dir, "processing.log"),
	}
	out, err := OpenOutputs(paths, "   ")
	require.NoError(t, err)

	// Lines are buffered, so the broken file only shows up when flushed.
	require.NoError(t, out.Tree.(*lineFile).f.Close())
	require.NoError(t, out.WriteRelation(model.Relation{Parent: "+Cf100$ Bank", Child: "+AcAP_100$ Bank"}))
	require.NoError(t, out.Log.Write(runlog.Tree("AcAP_100", "Cf100")))
	require.NoError(t, out.Created.WriteLine("+AcAP_100$ Bank"))

	err = out.Close()
	require.Error(t, err)

	entries, err := runlog.Read(paths.Log)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, runlog.TagTree, entries[0].Tag)
	assert.Equal(t, runlog.TagError, entries[1].Tag)
	assert.Contains(t, entries[1].Message, "closing outputs: flushing "+paths.Tree)

	created, err := os.ReadFile(paths.Created)
	require.NoError(t, err)
	assert.Equal(t, "+AcAP_100$ Bank\n", string(created), "healthy outputs are still written")
}
