package accounts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/acctsplit/internal/model"
)

const sampleDefinitions = `+Cf100$ Bank
+Co100$ Bank control
+Ap100$ Bank accrual
+cf100$ Duplicate bank
+Cf200 Petty cash
+Rv300% Sales
+Cf300% Sales cash
+Xx900 Misc
`

func sampleIndex(t *testing.T) *Index {
	t.Helper()
	defs, err := ReadDefinitions(strings.NewReader(sampleDefinitions))
	require.NoError(t, err)
	return NewIndex(defs)
}

func TestIndexFirstDefinitionWins(t *testing.T) {
	idx := sampleIndex(t)

	def, ok := idx.Get("CF100")
	require.True(t, ok)
	assert.Equal(t, "+Cf100$ Bank", def.RawLine)
	assert.Equal(t, 7, idx.Len())
	assert.True(t, idx.Exists("xx900"))
	assert.False(t, idx.Exists("Cf999"))
}

func TestIndexTriplicateGroups(t *testing.T) {
	idx := sampleIndex(t)

	g, ok := idx.Group("100$")
	require.True(t, ok)
	assert.Equal(t, []model.AccountType{model.AccountTypeCashflow, model.AccountTypeControl, model.AccountTypeAccrual}, g.Types())
	cf, _ := g.Member(model.AccountTypeCashflow)
	assert.Equal(t, "+Cf100$ Bank", cf.RawLine)

	g, ok = idx.Group("300%")
	require.True(t, ok)
	assert.Len(t, g, 2)

	// Modifiers are part of the group key.
	_, ok = idx.Group("100")
	assert.False(t, ok)

	// Non-triplicate types never form a group.
	_, ok = idx.Group("900")
	assert.False(t, ok)
}

func TestIndexGroupsIncludeShadowedKeys(t *testing.T) {
	defs, err := ReadDefinitions(strings.NewReader("+Cf100$ Bank\n+Cf100% Bank pct\n+Rv100% Rev\n+Cf100% Bank pct again\n"))
	require.NoError(t, err)
	idx := NewIndex(defs)

	def, _ := idx.Get("Cf100")
	assert.Equal(t, "+Cf100$ Bank", def.RawLine, "definitions stay first-wins")

	g, ok := idx.Group("100%")
	require.True(t, ok)
	assert.Equal(t, []model.AccountType{model.AccountTypeCashflow, model.AccountTypeRevenue}, g.Types())
	cf, _ := g.Member(model.AccountTypeCashflow)
	assert.Equal(t, "+Cf100% Bank pct", cf.RawLine, "first line of the group wins")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Accounts.xxa")
	require.NoError(t, os.WriteFile(path, []byte(sampleDefinitions), 0o644))

	idx, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, idx.All(), 7)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.xxa"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestAppender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Accounts.xxa")
	require.NoError(t, os.WriteFile(path, []byte("+Cf100$ Bank"), 0o644))

	a, err := OpenAppender(path)
	require.NoError(t, err)
	require.NoError(t, a.WriteLine("+AcAP_100$ Bank"))
	require.NoError(t, a.WriteLine("+AcARS_100$ Bank"))
	require.NoError(t, a.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "+Cf100$ Bank\n+AcAP_100$ Bank\n+AcARS_100$ Bank\n", string(data))
}

func TestAppenderKeepsCRLF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Accounts.xxa")
	require.NoError(t, os.WriteFile(path, []byte("+Cf100$ Bank\r\n"), 0o644))

	a, err := OpenAppender(path)
	require.NoError(t, err)
	require.NoError(t, a.WriteLine("+AcAP_100$ Bank"))
	require.NoError(t, a.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "+Cf100$ Bank\r\n+AcAP_100$ Bank\r\n", string(data))
}
