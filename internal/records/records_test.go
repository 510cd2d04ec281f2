package records

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const flatRecord = `<?xml version="1.0" encoding="utf-8"?>
<Objects>
  <!-- payables -->
  <Object>
    <Name>Accounts Payable</Name>
    <AccountID>Cf100</AccountID>
  </Object>
  <Object>
    <Name>No Reference</Name>
  </Object>
  <Object>
    <AccountID>Cf100</AccountID>
  </Object>
</Objects>
`

const nestedRecord = `<Database>
  <Group>
    <Object>
      <Name>Accounts-Receivable System</Name>
      <Account><ID> Cf100 </ID></Account>
      <Account><Name>Rv300</Name></Account>
      <AccountID>Co200</AccountID>
    </Object>
  </Group>
</Database>
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestOpenFlat(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.xmo", flatRecord)

	doc, err := Open(path)
	require.NoError(t, err)
	require.Len(t, doc.Objects, 1)
	assert.Equal(t, 2, doc.Skipped)

	obj := doc.Objects[0]
	assert.Equal(t, "Accounts Payable", obj.Name)
	assert.Equal(t, path, obj.File)
	require.Len(t, obj.References, 1)
	assert.Equal(t, "Cf100", obj.References[0].Value())
}

func TestOpenNested(t *testing.T) {
	path := writeFile(t, t.TempDir(), "b.xmo", nestedRecord)

	doc, err := Open(path)
	require.NoError(t, err)
	require.Len(t, doc.Objects, 1)

	refs := doc.Objects[0].References
	require.Len(t, refs, 3)
	assert.Equal(t, "Co200", refs[0].Value())
	assert.Equal(t, "Cf100", refs[1].Value())
	assert.Equal(t, "Rv300", refs[2].Value())
}

func TestSavePreservesLayout(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.xmo", flatRecord)

	doc, err := Open(path)
	require.NoError(t, err)
	doc.Objects[0].References[0].Set("AcAP_100")
	require.NoError(t, doc.Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<AccountID>AcAP_100</AccountID>")
	assert.Contains(t, string(data), "<!-- payables -->")
	assert.Contains(t, string(data), `<?xml version="1.0" encoding="utf-8"?>`)
	assert.Contains(t, string(data), "\n    <Name>Accounts Payable</Name>\n")

	// The unnamed object keeps its original reference.
	assert.Contains(t, string(data), "<AccountID>Cf100</AccountID>")
}

func TestBOMIsNotWritten(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.xmo", string(utf8BOM)+flatRecord)

	doc, err := Open(path)
	require.NoError(t, err)
	require.Len(t, doc.Objects, 1)
	require.NoError(t, doc.Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEqual(t, utf8BOM, data[:3])
	assert.Equal(t, byte('<'), data[0])
}

func TestRevertDiscardsEdits(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.xmo", flatRecord)

	doc, err := Open(path)
	require.NoError(t, err)
	doc.Objects[0].References[0].Set("changed")

	require.NoError(t, doc.Revert())
	assert.Equal(t, "Cf100", doc.Objects[0].References[0].Value())
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.xmo", nestedRecord)
	writeFile(t, dir, "A.XMO", flatRecord)
	writeFile(t, dir, "broken.xmo", "<<<not xml")
	writeFile(t, dir, "notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.xmo"), 0o755))

	var failed []string
	cat, err := LoadDir(dir, "*.xmo", func(path string, err error) {
		failed = append(failed, filepath.Base(path))
	})
	require.NoError(t, err)

	require.Len(t, cat.Docs, 2)
	assert.Equal(t, "A.XMO", filepath.Base(cat.Docs[0].Path))
	assert.Equal(t, "b.xmo", filepath.Base(cat.Docs[1].Path))
	assert.Equal(t, []string{"broken.xmo"}, failed)
	assert.Len(t, cat.Objects(), 2)

	doc, ok := cat.Document(filepath.Join(dir, "b.xmo"))
	require.True(t, ok)
	assert.Equal(t, "Accounts-Receivable System", doc.Objects[0].Name)
}

func TestLoadDirMissing(t *testing.T) {
	_, err := LoadDir(filepath.Join(t.TempDir(), "nope"), "*.xmo", nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
