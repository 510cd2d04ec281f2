package accounts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/acctsplit/internal/model"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		line      string
		wantType  model.AccountType
		wantID    string
		wantMods  string
		wantCapt  string
		wantDir   model.Direction
		wantSuffx string
	}{
		{"+Cf100$ Bank", model.AccountTypeCashflow, "100", "$", "Bank", model.DirectionDebit, "$ Bank"},
		{"-Co200$%  Office rent ", model.AccountTypeControl, "200", "$%", "Office rent", model.DirectionCredit, "$%  Office rent"},
		{"+Rv7 Sales", model.AccountTypeRevenue, "7", "", "Sales", model.DirectionDebit, " Sales"},
		{"+Ap42#*", model.AccountTypeAccrual, "42", "#*", "", model.DirectionDebit, "#*"},
		{"+XyABC\tTabbed caption", model.AccountType("Xy"), "ABC", "", "Tabbed caption", model.DirectionDebit, "\tTabbed caption"},
		{"+Cf100$ Bank\r", model.AccountTypeCashflow, "100", "$", "Bank", model.DirectionDebit, "$ Bank"},
	}
	for _, tt := range tests {
		def, ok := ParseLine(tt.line)
		require.True(t, ok, "line %q should parse", tt.line)
		assert.Equal(t, tt.wantDir, def.Direction, "line %q", tt.line)
		assert.Equal(t, tt.wantType, def.Type, "line %q", tt.line)
		assert.Equal(t, tt.wantID, def.ID, "line %q", tt.line)
		assert.Equal(t, tt.wantMods, def.Modifiers, "line %q", tt.line)
		assert.Equal(t, tt.wantCapt, def.Caption, "line %q", tt.line)
		assert.Equal(t, tt.wantSuffx, def.Suffix(), "line %q", tt.line)
	}
}

func TestParseLine_Malformed(t *testing.T) {
	bad := []string{
		"",
		"   ",
		"+Cf",
		"Cf100$ Bank",
		"*Cf100 Bank",
		"+Cf $ no id",
		"+Cf$100",
	}
	for _, line := range bad {
		_, ok := ParseLine(line)
		assert.False(t, ok, "line %q should be skipped", line)
	}
}

func TestExtractModifiers(t *testing.T) {
	assert.Equal(t, "$%", ExtractModifiers("+Co200$% Rent"))
	assert.Equal(t, "", ExtractModifiers("+Co200 Rent"))
	assert.Equal(t, "", ExtractModifiers("junk"))
}

func TestReadDefinitions(t *testing.T) {
	input := strings.Join([]string{
		"; header comment",
		"+Cf100$ Bank",
		"",
		"-Co100$ Bank control",
		"+x",
		"+Rv300 Sales",
	}, "\n")

	defs, err := ReadDefinitions(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, defs, 3)
	assert.Equal(t, "Cf100", defs[0].Key())
	assert.Equal(t, "Co100", defs[1].Key())
	assert.Equal(t, "Rv300", defs[2].Key())
}
