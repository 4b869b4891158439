package danton

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrBuildMaterialsEmptyPathReturnsDefault(t *testing.T) {
	table, err := LoadOrBuildMaterials("")
	require.NoError(t, err)
	assert.Equal(t, DefaultMaterials(), table)
}

func TestLoadOrBuildMaterialsRoundTripsThroughCacheFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "materials.cache")

	first, err := LoadOrBuildMaterials(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaterials(), first)

	second, err := LoadOrBuildMaterials(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestLoadOrBuildMaterialsRejectsCorruptCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "materials.cache")
	require.NoError(t, os.WriteFile(path, []byte("not a gob stream"), 0o644))

	_, err := LoadOrBuildMaterials(path)
	assert.Error(t, err)
}
