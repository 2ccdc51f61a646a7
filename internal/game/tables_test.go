package game

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTables(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tables.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultCardTablesValidate(t *testing.T) {
	tables := DefaultCardTables()
	require.NoError(t, tables.Validate())
	assert.Equal(t, AllAbilities(), tables.Abilities)
	assert.Len(t, tables.Rarities, 4)
}

func TestLoadCardTablesOverridesDefaults(t *testing.T) {
	path := writeTables(t, `
abilities: ["Shield", " fury "]
names_first: ["Golem"]
names_second: ["Iron"]
cost_ceiling: 5
`)

	tables, err := LoadCardTables(path)
	require.NoError(t, err)

	assert.Equal(t, []AbilityKind{AbilityShield, AbilityFury}, tables.Abilities)
	assert.Equal(t, []string{"Golem"}, tables.NamesFirst)
	assert.Equal(t, 5, tables.CostCeiling)
	// untouched keys keep their defaults
	assert.Equal(t, 400, tables.BaseStat)
	assert.Equal(t, DefaultCardTables().Rarities, tables.Rarities)
}

func TestLoadCardTablesErrors(t *testing.T) {
	_, err := LoadCardTables(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadCardTables(writeTables(t, "abilities: [teleport]\n"))
	assert.Error(t, err)

	_, err = LoadCardTables(writeTables(t, "rarities: [\n"))
	assert.Error(t, err)
}

func TestCardTablesValidateRejects(t *testing.T) {
	cases := map[string]func(*CardTables){
		"empty rarities":    func(c *CardTables) { c.Rarities = nil },
		"negative weight":   func(c *CardTables) { c.Rarities[0].Weight = -1 },
		"zero multiplier":   func(c *CardTables) { c.Rarities[1].Multiplier = 0 },
		"empty abilities":   func(c *CardTables) { c.Abilities = nil },
		"empty names":       func(c *CardTables) { c.NamesSecond = nil },
		"inverted spread":   func(c *CardTables) { c.AttackSpread = Spread{Min: 5, Max: 1} },
		"zero cost ceiling": func(c *CardTables) { c.CostCeiling = 0 },
		"zero hp divisor":   func(c *CardTables) { c.HPDivisor = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			tables := DefaultCardTables()
			mutate(tables)
			assert.Error(t, tables.Validate())
		})
	}
}

func TestCardTablesNormalize(t *testing.T) {
	tables := DefaultCardTables()
	tables.Abilities = []AbilityKind{" Leech", "FURY"}

	assert.Error(t, tables.Validate())
	assert.Equal(t, []AbilityKind{" Leech", "FURY"}, tables.Abilities, "validate must not rewrite abilities")

	require.NoError(t, tables.Normalize())
	assert.Equal(t, []AbilityKind{AbilityLeech, AbilityFury}, tables.Abilities)
	assert.NoError(t, tables.Validate())

	tables.Abilities = []AbilityKind{"teleport"}
	assert.Error(t, tables.Normalize())
}
