package words

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLoadsEmbeddedCatalogs(t *testing.T) {
	require.NoError(t, Init())

	langs, total := Stats()
	assert.Equal(t, len(Languages), langs)
	assert.Greater(t, total, 0)

	// Every category has words in every language.
	for _, lang := range Languages {
		cat := Catalog(lang)
		require.NotNil(t, cat, "catalog %s", lang)
		for _, c := range Categories() {
			assert.NotEmpty(t, cat[c], "lang %s category %s", lang, c)
		}
	}
}

func TestCatalogFallsBackToDefaultLanguage(t *testing.T) {
	require.NoError(t, Init())
	assert.Equal(t, Catalog(DefaultLanguage), Catalog("fr"))
	assert.Equal(t, Catalog(DefaultLanguage), Catalog(""))
}

func TestIsCategory(t *testing.T) {
	require.NoError(t, Init())
	assert.True(t, IsCategory("ANIMALS"))
	assert.True(t, IsCategory("THINGS_IN_A_HOUSE"))
	assert.False(t, IsCategory("animals"))
	assert.False(t, IsCategory("PLANETS"))
	assert.False(t, IsCategory(""))
}

func TestParseCatalog(t *testing.T) {
	cat, err := parseCatalog([]string{
		"ANIMALS: cat , dog,FOX",
		"FRUITS:apple",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"CAT", "DOG", "FOX"}, cat["ANIMALS"])
	assert.Equal(t, []string{"APPLE"}, cat["FRUITS"])

	_, err = parseCatalog([]string{"no separator here"})
	assert.Error(t, err)
}
