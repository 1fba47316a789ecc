package resources

import (
	"testing"

	"mindbloom/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedCatalog(t *testing.T) {
	catalog, err := Load()
	require.NoError(t, err)

	for _, kind := range []string{models.KindBook, models.KindMovie, models.KindSong} {
		shelf, err := catalog.Shelf(kind, "")
		require.NoError(t, err, kind)
		assert.NotEmpty(t, shelf.Title, kind)
		assert.NotEmpty(t, shelf.Items, kind)
		assert.NotEmpty(t, shelf.Categories, kind)
	}

	songs, err := catalog.Shelf(models.KindSong, "")
	require.NoError(t, err)
	assert.NotEmpty(t, songs.Playlists)
}

func TestShelfFiltersBySymptom(t *testing.T) {
	catalog, err := Load()
	require.NoError(t, err)

	all, err := catalog.Shelf(models.KindBook, "")
	require.NoError(t, err)
	anxiety, err := catalog.Shelf(models.KindBook, "  ANXIETY ")
	require.NoError(t, err)

	assert.NotEmpty(t, anxiety.Items)
	assert.Less(t, len(anxiety.Items), len(all.Items))
	for _, item := range anxiety.Items {
		assert.Contains(t, normalize(joinSymptoms(item)), "anxiety", item.Title)
	}

	selfHelp, err := catalog.Shelf(models.KindBook, "self-discovery")
	require.NoError(t, err)
	require.Len(t, selfHelp.Items, 1)
	assert.Equal(t, "Maybe You Should Talk to Someone", selfHelp.Items[0].Title)

	none, err := catalog.Shelf(models.KindMovie, "no such symptom")
	require.NoError(t, err)
	assert.Empty(t, none.Items)
}

func TestShelfUnknownKind(t *testing.T) {
	catalog, err := Load()
	require.NoError(t, err)

	_, err = catalog.Shelf("podcasts", "")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestSymptomsAreDistinct(t *testing.T) {
	catalog, err := Load()
	require.NoError(t, err)

	symptoms := catalog.Symptoms(models.KindBook)
	assert.Equal(t, "Anxiety", symptoms[0])
	seen := map[string]bool{}
	for _, s := range symptoms {
		assert.False(t, seen[normalize(s)], s)
		seen[normalize(s)] = true
	}
}

func TestParseRequiresEveryShelf(t *testing.T) {
	_, err := Parse([]byte("books:\n  title: Books\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("books: [not, a, shelf"))
	assert.Error(t, err)
}

func joinSymptoms(r models.Resource) string {
	out := ""
	for _, s := range r.Symptoms {
		out += s + ","
	}
	return out
}
